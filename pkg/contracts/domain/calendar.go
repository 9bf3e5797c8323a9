package domain

import (
	"fmt"
	"time"
)

// FiscalMonth is a month name ordered by the fiscal year that starts in October.
// The zero value is October.
type FiscalMonth int

const (
	October FiscalMonth = iota
	November
	December
	January
	February
	March
	April
	May
	June
	July
	August
	September
)

// FiscalMonths lists every month in chart order.
var FiscalMonths = []FiscalMonth{
	October, November, December, January, February, March,
	April, May, June, July, August, September,
}

// FiscalMonthOf maps a calendar month onto its fiscal position.
func FiscalMonthOf(m time.Month) FiscalMonth {
	return FiscalMonth((int(m) + 2) % 12)
}

// Calendar returns the calendar month.
func (m FiscalMonth) Calendar() time.Month {
	return time.Month((int(m)+9)%12 + 1)
}

// Valid reports whether m is one of the twelve fiscal months.
func (m FiscalMonth) Valid() bool {
	return m >= October && m <= September
}

func (m FiscalMonth) String() string {
	if !m.Valid() {
		return fmt.Sprintf("FiscalMonth(%d)", int(m))
	}
	return m.Calendar().String()
}

// MarshalText encodes the English month name.
func (m FiscalMonth) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid fiscal month %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText accepts an English month name.
func (m *FiscalMonth) UnmarshalText(text []byte) error {
	parsed, err := ParseFiscalMonth(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseFiscalMonth parses an English month name such as "October".
func ParseFiscalMonth(name string) (FiscalMonth, error) {
	for _, m := range FiscalMonths {
		if m.String() == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown month %q", name)
}

// TimeOfDay is a six-hour slice of the day.
type TimeOfDay int

const (
	Night TimeOfDay = iota
	Morning
	Afternoon
	Evening
)

// TimesOfDay lists the buckets in chronological order.
var TimesOfDay = []TimeOfDay{Night, Morning, Afternoon, Evening}

var timeOfDayNames = [...]string{"Night", "Morning", "Afternoon", "Evening"}

// TimeOfDayForHour buckets an hour in [0,24). Boundary hours 6, 12 and 18
// belong to the later bucket.
func TimeOfDayForHour(hour int) (TimeOfDay, error) {
	switch {
	case hour < 0 || hour >= 24:
		return 0, fmt.Errorf("hour %d out of range [0,24)", hour)
	case hour < 6:
		return Night, nil
	case hour < 12:
		return Morning, nil
	case hour < 18:
		return Afternoon, nil
	default:
		return Evening, nil
	}
}

func (t TimeOfDay) String() string {
	if t < Night || t > Evening {
		return fmt.Sprintf("TimeOfDay(%d)", int(t))
	}
	return timeOfDayNames[t]
}

// MarshalText encodes the bucket name.
func (t TimeOfDay) MarshalText() ([]byte, error) {
	if t < Night || t > Evening {
		return nil, fmt.Errorf("invalid time of day %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText accepts a bucket name.
func (t *TimeOfDay) UnmarshalText(text []byte) error {
	for i, name := range timeOfDayNames {
		if name == string(text) {
			*t = TimeOfDay(i)
			return nil
		}
	}
	return fmt.Errorf("unknown time of day %q", string(text))
}

// Weekday is a day of the week that orders Monday first.
type Weekday time.Weekday

// Weekdays lists the days Monday through Sunday.
var Weekdays = []Weekday{
	Weekday(time.Monday), Weekday(time.Tuesday), Weekday(time.Wednesday),
	Weekday(time.Thursday), Weekday(time.Friday), Weekday(time.Saturday),
	Weekday(time.Sunday),
}

// Rank is the Monday-first position, 0 for Monday through 6 for Sunday.
func (d Weekday) Rank() int {
	return (int(d) + 6) % 7
}

func (d Weekday) String() string {
	return time.Weekday(d).String()
}

// MarshalText encodes the English day name.
func (d Weekday) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText accepts an English day name.
func (d *Weekday) UnmarshalText(text []byte) error {
	for _, w := range Weekdays {
		if w.String() == string(text) {
			*d = w
			return nil
		}
	}
	return fmt.Errorf("unknown weekday %q", string(text))
}
