package domain

import (
	"fmt"
	"time"

	"github.com/rickb777/date"
)

// RawRecord is one hourly observation as read from the source file.
type RawRecord struct {
	Timestamp             time.Time `json:"timestamp"`
	LocationName          string    `json:"location_name"`
	PedestriansCount      int64     `json:"pedestrians_count"`
	AdultPedestriansCount int64     `json:"adult_pedestrians_count"`
	ChildPedestriansCount int64     `json:"child_pedestrians_count"`
}

// DerivedRecord is a RawRecord with its calendar fields computed from Timestamp.
// Calendar fields use the offset carried by the timestamp.
type DerivedRecord struct {
	RawRecord

	Hour      int         `json:"hour"`
	Day       Weekday     `json:"day"`
	Month     FiscalMonth `json:"month"`
	Year      int         `json:"year"`
	Date      date.Date   `json:"date"`
	MonthYear string      `json:"month_year"`
	TimeOfDay TimeOfDay   `json:"time_of_day"`
}

// Derive computes the calendar fields of r.
func Derive(r RawRecord) (DerivedRecord, error) {
	ts := r.Timestamp
	tod, err := TimeOfDayForHour(ts.Hour())
	if err != nil {
		return DerivedRecord{}, err
	}
	return DerivedRecord{
		RawRecord: r,
		Hour:      ts.Hour(),
		Day:       Weekday(ts.Weekday()),
		Month:     FiscalMonthOf(ts.Month()),
		Year:      ts.Year(),
		Date:      date.New(ts.Year(), ts.Month(), ts.Day()),
		MonthYear: MonthYearLabel(ts.Month(), ts.Year()),
		TimeOfDay: tod,
	}, nil
}

// MonthYearLabel formats "<Month> <YYYY>".
func MonthYearLabel(m time.Month, year int) string {
	return fmt.Sprintf("%s %04d", m, year)
}

// WindowName identifies one of the two fiscal year windows.
type WindowName string

const (
	WindowLast     WindowName = "last"
	WindowPrevious WindowName = "previous"
)

// Valid reports whether w names a known window.
func (w WindowName) Valid() bool {
	return w == WindowLast || w == WindowPrevious
}

// Measure selects which count column a query reports.
type Measure string

const (
	MeasureAll      Measure = "all"
	MeasureAdults   Measure = "adults"
	MeasureChildren Measure = "children"
)

// Valid reports whether m is a known measure.
func (m Measure) Valid() bool {
	switch m {
	case MeasureAll, MeasureAdults, MeasureChildren:
		return true
	}
	return false
}

// Column is the source column name the measure reads.
func (m Measure) Column() string {
	switch m {
	case MeasureAdults:
		return "adult_pedestrians_count"
	case MeasureChildren:
		return "child_pedestrians_count"
	default:
		return "pedestrians_count"
	}
}
