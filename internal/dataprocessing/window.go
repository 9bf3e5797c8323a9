package dataprocessing

import (
	"time"

	"streetpulse/pkg/contracts/domain"
)

// YearWindow is the half-open interval [Start, End) of one fiscal year,
// anchored at October 1st UTC.
type YearWindow struct {
	Name  domain.WindowName `json:"name"`
	Start time.Time         `json:"start"`
	End   time.Time         `json:"end"`
}

// Contains reports whether t falls in [Start, End).
func (w YearWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Days is the length of the window in days.
func (w YearWindow) Days() int {
	return int(w.End.Sub(w.Start).Hours() / 24)
}

func fiscalYearStart(year int) time.Time {
	return time.Date(year, time.October, 1, 0, 0, 0, 0, time.UTC)
}

// WindowsFor returns the previous and last windows for a last window that
// starts on October 1st of lastYearStart.
func WindowsFor(lastYearStart int) (previous, last YearWindow) {
	previous = YearWindow{
		Name:  domain.WindowPrevious,
		Start: fiscalYearStart(lastYearStart - 1),
		End:   fiscalYearStart(lastYearStart),
	}
	last = YearWindow{
		Name:  domain.WindowLast,
		Start: fiscalYearStart(lastYearStart),
		End:   fiscalYearStart(lastYearStart + 1),
	}
	return previous, last
}

// Window is an immutable view of the derived records inside a YearWindow.
type Window struct {
	YearWindow
	records []domain.DerivedRecord
}

func newWindow(w YearWindow, records []domain.DerivedRecord) *Window {
	if records == nil {
		records = []domain.DerivedRecord{}
	}
	return &Window{YearWindow: w, records: records}
}

// Len is the number of records in the window.
func (w *Window) Len() int {
	return len(w.records)
}

// Empty reports whether no record fell inside the window.
func (w *Window) Empty() bool {
	return len(w.records) == 0
}

// recordsCopy returns a copy of the window's records.
func (w *Window) recordsCopy() []domain.DerivedRecord {
	out := make([]domain.DerivedRecord, len(w.records))
	copy(out, w.records)
	return out
}

// CountByMonth aggregates the window by fiscal month.
func (w *Window) CountByMonth() []domain.MonthCount {
	return CountByMonth(w.records)
}

// CountByDay aggregates the window by calendar date.
func (w *Window) CountByDay() []domain.DayCount {
	return CountByDay(w.records)
}

// CountByLocation aggregates the window by location.
func (w *Window) CountByLocation() []domain.LocationCount {
	return CountByLocation(w.records)
}

// LocationDateTime aggregates the window by month, time of day and location.
func (w *Window) LocationDateTime() []domain.LocationMonthTime {
	return LocationDateTime(w.records)
}

// LocationDayTime aggregates the window by weekday, time of day and location.
func (w *Window) LocationDayTime() []domain.LocationDayTime {
	return LocationDayTime(w.records)
}

// Total sums the pedestrian count of every record in the window.
func (w *Window) Total() int64 {
	var total int64
	for _, r := range w.records {
		total += r.PedestriansCount
	}
	return total
}
