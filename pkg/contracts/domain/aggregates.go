package domain

import (
	"time"

	"github.com/rickb777/date"
)

// MonthCount is one row of the by-month aggregation.
type MonthCount struct {
	Month            FiscalMonth `json:"month"`
	MonthYear        string      `json:"month_year"`
	PedestriansCount int64       `json:"pedestrians_count"`
}

// DayCount is one row of the by-date aggregation.
type DayCount struct {
	Date             date.Date   `json:"date"`
	Day              Weekday     `json:"day"`
	Month            FiscalMonth `json:"month"`
	MonthYear        string      `json:"month_year"`
	PedestriansCount int64       `json:"pedestrians_count"`
}

// LocationCount is one row of the by-location aggregation.
type LocationCount struct {
	LocationName     string `json:"location_name"`
	PedestriansCount int64  `json:"pedestrians_count"`
}

// LocationMonthTime is one (month, time of day, location) group.
type LocationMonthTime struct {
	Month                 FiscalMonth `json:"month"`
	TimeOfDay             TimeOfDay   `json:"time_of_day"`
	LocationName          string      `json:"location_name"`
	PedestriansCount      int64       `json:"pedestrians_count"`
	AdultPedestriansCount int64       `json:"adult_pedestrians_count"`
	ChildPedestriansCount int64       `json:"child_pedestrians_count"`
	MonthYear             string      `json:"month_year"`
}

// Value returns the count selected by m.
func (r LocationMonthTime) Value(m Measure) int64 {
	switch m {
	case MeasureAdults:
		return r.AdultPedestriansCount
	case MeasureChildren:
		return r.ChildPedestriansCount
	default:
		return r.PedestriansCount
	}
}

// LocationDayTime is one (weekday, time of day, location) group.
type LocationDayTime struct {
	Day              Weekday   `json:"day"`
	TimeOfDay        TimeOfDay `json:"time_of_day"`
	LocationName     string    `json:"location_name"`
	PedestriansCount int64     `json:"pedestrians_count"`
}

// WindowTotal is the pedestrian total of one window.
type WindowTotal struct {
	Window           WindowName `json:"window"`
	Start            time.Time  `json:"start"`
	End              time.Time  `json:"end"`
	PedestriansCount int64      `json:"pedestrians_count"`
}

// MonthComparison pairs one fiscal month across the previous and last windows.
type MonthComparison struct {
	Month         FiscalMonth `json:"month"`
	PreviousCount int64       `json:"previous_count"`
	LastCount     int64       `json:"last_count"`
	Change        int64       `json:"change"`
	ChangePercent float64     `json:"change_percent"`
}

// WeekdayStats summarises daily totals that fall on one weekday.
type WeekdayStats struct {
	Day    Weekday `json:"day"`
	Days   int     `json:"days"`
	Min    int64   `json:"min"`
	Max    int64   `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

// PeakPeriod is the busiest (month, time of day) group of a location.
type PeakPeriod struct {
	LocationName string      `json:"location_name"`
	Measure      Measure     `json:"measure"`
	Month        FiscalMonth `json:"month"`
	MonthYear    string      `json:"month_year"`
	TimeOfDay    TimeOfDay   `json:"time_of_day"`
	Count        int64       `json:"count"`
}
