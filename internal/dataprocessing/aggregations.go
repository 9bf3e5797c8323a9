package dataprocessing

import (
	"sort"

	"github.com/rickb777/date"

	"streetpulse/pkg/contracts/domain"
)

// Every query builds a key → accumulator map, keeps the first row's value for
// group-invariant fields, then sorts explicitly. Empty input gives an empty,
// non-nil slice.

// CountByMonth sums pedestrians per month, in fiscal month order.
func CountByMonth(records []domain.DerivedRecord) []domain.MonthCount {
	groups := make(map[domain.FiscalMonth]*domain.MonthCount)
	for _, r := range records {
		g, ok := groups[r.Month]
		if !ok {
			g = &domain.MonthCount{Month: r.Month, MonthYear: r.MonthYear}
			groups[r.Month] = g
		}
		g.PedestriansCount += r.PedestriansCount
	}

	out := make([]domain.MonthCount, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Month < out[j].Month
	})
	return out
}

// CountByDay sums pedestrians per calendar date, in ascending date order.
func CountByDay(records []domain.DerivedRecord) []domain.DayCount {
	groups := make(map[date.Date]*domain.DayCount)
	for _, r := range records {
		g, ok := groups[r.Date]
		if !ok {
			g = &domain.DayCount{
				Date:      r.Date,
				Day:       r.Day,
				Month:     r.Month,
				MonthYear: r.MonthYear,
			}
			groups[r.Date] = g
		}
		g.PedestriansCount += r.PedestriansCount
	}

	out := make([]domain.DayCount, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// CountByLocation sums pedestrians per location. The result is ordered by
// location name so repeated calls compare equal.
func CountByLocation(records []domain.DerivedRecord) []domain.LocationCount {
	groups := make(map[string]int64)
	for _, r := range records {
		groups[r.LocationName] += r.PedestriansCount
	}

	out := make([]domain.LocationCount, 0, len(groups))
	for name, total := range groups {
		out = append(out, domain.LocationCount{LocationName: name, PedestriansCount: total})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LocationName < out[j].LocationName
	})
	return out
}

type monthTimeKey struct {
	month    domain.FiscalMonth
	tod      domain.TimeOfDay
	location string
}

// LocationDateTime sums total, adult and child counts per
// (month, time of day, location).
func LocationDateTime(records []domain.DerivedRecord) []domain.LocationMonthTime {
	groups := make(map[monthTimeKey]*domain.LocationMonthTime)
	for _, r := range records {
		key := monthTimeKey{r.Month, r.TimeOfDay, r.LocationName}
		g, ok := groups[key]
		if !ok {
			g = &domain.LocationMonthTime{
				Month:        r.Month,
				TimeOfDay:    r.TimeOfDay,
				LocationName: r.LocationName,
				MonthYear:    r.MonthYear,
			}
			groups[key] = g
		}
		g.PedestriansCount += r.PedestriansCount
		g.AdultPedestriansCount += r.AdultPedestriansCount
		g.ChildPedestriansCount += r.ChildPedestriansCount
	}

	out := make([]domain.LocationMonthTime, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Month != b.Month {
			return a.Month < b.Month
		}
		if a.TimeOfDay != b.TimeOfDay {
			return a.TimeOfDay < b.TimeOfDay
		}
		return a.LocationName < b.LocationName
	})
	return out
}

type dayTimeKey struct {
	day      domain.Weekday
	tod      domain.TimeOfDay
	location string
}

// LocationDayTime sums pedestrians per (weekday, time of day, location).
func LocationDayTime(records []domain.DerivedRecord) []domain.LocationDayTime {
	groups := make(map[dayTimeKey]int64)
	for _, r := range records {
		groups[dayTimeKey{r.Day, r.TimeOfDay, r.LocationName}] += r.PedestriansCount
	}

	out := make([]domain.LocationDayTime, 0, len(groups))
	for k, total := range groups {
		out = append(out, domain.LocationDayTime{
			Day:              k.day,
			TimeOfDay:        k.tod,
			LocationName:     k.location,
			PedestriansCount: total,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Day != b.Day {
			return a.Day.Rank() < b.Day.Rank()
		}
		if a.TimeOfDay != b.TimeOfDay {
			return a.TimeOfDay < b.TimeOfDay
		}
		return a.LocationName < b.LocationName
	})
	return out
}
