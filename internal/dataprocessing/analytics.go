package dataprocessing

import (
	"sort"

	"streetpulse/pkg/contracts/domain"
)

// LocationDateTimeLastYear is LocationDateTime over the last window.
func (d *Dataset) LocationDateTimeLastYear() []domain.LocationMonthTime {
	return d.Last.LocationDateTime()
}

// CountByMonthLastYear is CountByMonth over the last window.
func (d *Dataset) CountByMonthLastYear() []domain.MonthCount {
	return d.Last.CountByMonth()
}

// CountByMonthPreviousYear is CountByMonth over the previous window.
func (d *Dataset) CountByMonthPreviousYear() []domain.MonthCount {
	return d.Previous.CountByMonth()
}

// CountByDayLastYear is CountByDay over the last window.
func (d *Dataset) CountByDayLastYear() []domain.DayCount {
	return d.Last.CountByDay()
}

// LocationDayTimeLastYear is LocationDayTime over the last window.
func (d *Dataset) LocationDayTimeLastYear() []domain.LocationDayTime {
	return d.Last.LocationDayTime()
}

// CountByLocationLastYear is CountByLocation over the last window.
func (d *Dataset) CountByLocationLastYear() []domain.LocationCount {
	return d.Last.CountByLocation()
}

// YearTotals reports the pedestrian total of the last and previous windows.
func (d *Dataset) YearTotals() []domain.WindowTotal {
	out := make([]domain.WindowTotal, 0, 2)
	for _, w := range []*Window{d.Last, d.Previous} {
		out = append(out, domain.WindowTotal{
			Window:           w.Name,
			Start:            w.Start,
			End:              w.End,
			PedestriansCount: w.Total(),
		})
	}
	return out
}

// CompareMonths joins two by-month tables on month. Months missing from
// either side are left out.
func CompareMonths(previous, last []domain.MonthCount) []domain.MonthComparison {
	prev := make(map[domain.FiscalMonth]int64, len(previous))
	for _, m := range previous {
		prev[m.Month] = m.PedestriansCount
	}

	out := make([]domain.MonthComparison, 0, len(last))
	for _, m := range last {
		p, ok := prev[m.Month]
		if !ok {
			continue
		}
		c := domain.MonthComparison{
			Month:         m.Month,
			PreviousCount: p,
			LastCount:     m.PedestriansCount,
			Change:        m.PedestriansCount - p,
		}
		if p != 0 {
			c.ChangePercent = float64(c.Change) / float64(p) * 100
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Month < out[j].Month
	})
	return out
}

// WeekdayDistribution summarises daily totals per weekday, Monday first.
func WeekdayDistribution(days []domain.DayCount) []domain.WeekdayStats {
	values := make(map[domain.Weekday][]int64)
	for _, d := range days {
		values[d.Day] = append(values[d.Day], d.PedestriansCount)
	}

	out := make([]domain.WeekdayStats, 0, len(values))
	for _, day := range domain.Weekdays {
		v := values[day]
		if len(v) == 0 {
			continue
		}
		sorted := append([]int64(nil), v...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, x := range sorted {
			sum += x
		}
		out = append(out, domain.WeekdayStats{
			Day:    day,
			Days:   len(sorted),
			Min:    sorted[0],
			Max:    sorted[len(sorted)-1],
			Mean:   float64(sum) / float64(len(sorted)),
			Median: median(sorted),
		})
	}
	return out
}

func median(sorted []int64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return float64(sorted[n/2-1]+sorted[n/2]) / 2
}

// FilterLocation keeps the rows of one location.
func FilterLocation(rows []domain.LocationMonthTime, location string) []domain.LocationMonthTime {
	out := make([]domain.LocationMonthTime, 0, len(rows))
	for _, r := range rows {
		if r.LocationName == location {
			out = append(out, r)
		}
	}
	return out
}

// Locations lists the distinct locations of rows in name order.
func Locations(rows []domain.LocationMonthTime) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, r := range rows {
		if !seen[r.LocationName] {
			seen[r.LocationName] = true
			out = append(out, r.LocationName)
		}
	}
	sort.Strings(out)
	return out
}

// PeakPeriod finds the (month, time of day) group of location with the highest
// count for measure. Ties go to the earlier fiscal month, then time of day.
// ok is false when the location has no rows.
func PeakPeriod(rows []domain.LocationMonthTime, location string, measure domain.Measure) (peak domain.PeakPeriod, ok bool) {
	for _, r := range rows {
		if r.LocationName != location {
			continue
		}
		v := r.Value(measure)
		better := !ok || v > peak.Count ||
			(v == peak.Count && (r.Month < peak.Month ||
				(r.Month == peak.Month && r.TimeOfDay < peak.TimeOfDay)))
		if better {
			peak = domain.PeakPeriod{
				LocationName: location,
				Measure:      measure,
				Month:        r.Month,
				MonthYear:    r.MonthYear,
				TimeOfDay:    r.TimeOfDay,
				Count:        v,
			}
			ok = true
		}
	}
	return peak, ok
}
