package exporter

import (
	"streetpulse/pkg/contracts/domain"
)

// Table is one aggregate rendered as text cells.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// MonthTable renders CountByMonth rows.
func MonthTable(name string, rows []domain.MonthCount, l Labels) Table {
	t := Table{Name: name, Headers: []string{"month", "month_year", "pedestrians_count"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{l.Month(r.Month), r.MonthYear, formatInt(r.PedestriansCount)})
	}
	return t
}

// DayTable renders CountByDay rows.
func DayTable(name string, rows []domain.DayCount, l Labels) Table {
	t := Table{Name: name, Headers: []string{"date", "day", "month", "month_year", "pedestrians_count"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.Date.String(), l.Weekday(r.Day), l.Month(r.Month), r.MonthYear, formatInt(r.PedestriansCount),
		})
	}
	return t
}

// LocationTable renders CountByLocation rows.
func LocationTable(name string, rows []domain.LocationCount) Table {
	t := Table{Name: name, Headers: []string{"location_name", "pedestrians_count"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.LocationName, formatInt(r.PedestriansCount)})
	}
	return t
}

// LocationMonthTimeTable renders LocationDateTime rows.
func LocationMonthTimeTable(name string, rows []domain.LocationMonthTime, l Labels) Table {
	t := Table{Name: name, Headers: []string{
		"month", "time_of_day", "location_name", "month_year",
		"pedestrians_count", "adult_pedestrians_count", "child_pedestrians_count",
	}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			l.Month(r.Month), r.TimeOfDay.String(), r.LocationName, r.MonthYear,
			formatInt(r.PedestriansCount), formatInt(r.AdultPedestriansCount), formatInt(r.ChildPedestriansCount),
		})
	}
	return t
}

// LocationDayTimeTable renders LocationDayTime rows.
func LocationDayTimeTable(name string, rows []domain.LocationDayTime, l Labels) Table {
	t := Table{Name: name, Headers: []string{"day", "time_of_day", "location_name", "pedestrians_count"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			l.Weekday(r.Day), r.TimeOfDay.String(), r.LocationName, formatInt(r.PedestriansCount),
		})
	}
	return t
}

// WeekdayTable renders WeekdayDistribution rows.
func WeekdayTable(name string, rows []domain.WeekdayStats, l Labels) Table {
	t := Table{Name: name, Headers: []string{"day", "days", "min", "max", "mean", "median"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			l.Weekday(r.Day), formatInt(int64(r.Days)), formatInt(r.Min), formatInt(r.Max),
			formatFloat(r.Mean), formatFloat(r.Median),
		})
	}
	return t
}

// TotalsTable renders YearTotals rows.
func TotalsTable(name string, rows []domain.WindowTotal) Table {
	t := Table{Name: name, Headers: []string{"window", "start", "end", "pedestrians_count"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			string(r.Window), r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"), formatInt(r.PedestriansCount),
		})
	}
	return t
}

// CompareMonthsTable renders CompareMonths rows.
func CompareMonthsTable(name string, rows []domain.MonthComparison, l Labels) Table {
	t := Table{Name: name, Headers: []string{"month", "previous_count", "last_count", "change", "change_percent"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			l.Month(r.Month), formatInt(r.PreviousCount), formatInt(r.LastCount),
			formatInt(r.Change), formatFloat(r.ChangePercent),
		})
	}
	return t
}
