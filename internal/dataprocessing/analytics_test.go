package dataprocessing

import (
	"context"
	"testing"
	"time"

	"github.com/rickb777/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streetpulse/pkg/contracts/domain"
)

func TestYearTotals(t *testing.T) {
	raws := []domain.RawRecord{
		raw(t, "2021-11-01T10:00:00Z", "A", 7, 7, 0),
		raw(t, "2022-11-01T10:00:00Z", "A", 11, 10, 1),
		raw(t, "2022-11-02T10:00:00Z", "B", 4, 4, 0),
	}
	ds, err := LoadRecords(context.Background(), raws, testOptions())
	require.NoError(t, err)

	totals := ds.YearTotals()
	require.Len(t, totals, 2)
	assert.Equal(t, domain.WindowLast, totals[0].Window)
	assert.Equal(t, int64(15), totals[0].PedestriansCount)
	assert.Equal(t, domain.WindowPrevious, totals[1].Window)
	assert.Equal(t, int64(7), totals[1].PedestriansCount)
	assert.Equal(t, totals[1].End, totals[0].Start)
}

func TestCompareMonths(t *testing.T) {
	previous := []domain.MonthCount{
		{Month: domain.October, PedestriansCount: 100},
		{Month: domain.November, PedestriansCount: 0},
		{Month: domain.January, PedestriansCount: 50},
	}
	last := []domain.MonthCount{
		{Month: domain.January, PedestriansCount: 75},
		{Month: domain.October, PedestriansCount: 80},
		{Month: domain.November, PedestriansCount: 10},
		{Month: domain.May, PedestriansCount: 5},
	}

	got := CompareMonths(previous, last)
	assert.Equal(t, []domain.MonthComparison{
		{Month: domain.October, PreviousCount: 100, LastCount: 80, Change: -20, ChangePercent: -20},
		{Month: domain.November, PreviousCount: 0, LastCount: 10, Change: 10, ChangePercent: 0},
		{Month: domain.January, PreviousCount: 50, LastCount: 75, Change: 25, ChangePercent: 50},
	}, got)

	assert.Empty(t, CompareMonths(nil, last))
}

func TestWeekdayDistribution(t *testing.T) {
	monday := domain.Weekday(time.Monday)
	sunday := domain.Weekday(time.Sunday)
	days := []domain.DayCount{
		{Date: date.New(2022, time.October, 2), Day: sunday, PedestriansCount: 10},
		{Date: date.New(2022, time.October, 3), Day: monday, PedestriansCount: 30},
		{Date: date.New(2022, time.October, 10), Day: monday, PedestriansCount: 10},
		{Date: date.New(2022, time.October, 17), Day: monday, PedestriansCount: 20},
		{Date: date.New(2022, time.October, 24), Day: monday, PedestriansCount: 50},
	}

	got := WeekdayDistribution(days)
	require.Len(t, got, 2)

	assert.Equal(t, domain.WeekdayStats{
		Day: monday, Days: 4, Min: 10, Max: 50, Mean: 27.5, Median: 25,
	}, got[0])
	assert.Equal(t, domain.WeekdayStats{
		Day: sunday, Days: 1, Min: 10, Max: 10, Mean: 10, Median: 10,
	}, got[1])
}

func TestFilterLocationAndLocations(t *testing.T) {
	rows := []domain.LocationMonthTime{
		{Month: domain.October, LocationName: "B"},
		{Month: domain.October, LocationName: "A"},
		{Month: domain.November, LocationName: "B"},
	}

	filtered := FilterLocation(rows, "B")
	require.Len(t, filtered, 2)
	assert.Equal(t, domain.November, filtered[1].Month)

	assert.Empty(t, FilterLocation(rows, "C"))
	assert.Equal(t, []string{"A", "B"}, Locations(rows))
	assert.Equal(t, []string{}, Locations(nil))
}

func TestPeakPeriod(t *testing.T) {
	rows := []domain.LocationMonthTime{
		{Month: domain.October, TimeOfDay: domain.Morning, LocationName: "A", MonthYear: "October 2022",
			PedestriansCount: 50, AdultPedestriansCount: 40, ChildPedestriansCount: 10},
		{Month: domain.October, TimeOfDay: domain.Afternoon, LocationName: "A", MonthYear: "October 2022",
			PedestriansCount: 90, AdultPedestriansCount: 85, ChildPedestriansCount: 5},
		{Month: domain.December, TimeOfDay: domain.Morning, LocationName: "A", MonthYear: "December 2022",
			PedestriansCount: 90, AdultPedestriansCount: 60, ChildPedestriansCount: 30},
		{Month: domain.October, TimeOfDay: domain.Evening, LocationName: "B", MonthYear: "October 2022",
			PedestriansCount: 500, AdultPedestriansCount: 500},
	}

	tests := []struct {
		name      string
		location  string
		measure   domain.Measure
		wantMonth domain.FiscalMonth
		wantTOD   domain.TimeOfDay
		wantCount int64
	}{
		{"tie goes to earlier month", "A", domain.MeasureAll, domain.October, domain.Afternoon, 90},
		{"adults", "A", domain.MeasureAdults, domain.October, domain.Afternoon, 85},
		{"children", "A", domain.MeasureChildren, domain.December, domain.Morning, 30},
		{"other location", "B", domain.MeasureAll, domain.October, domain.Evening, 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			peak, ok := PeakPeriod(rows, tt.location, tt.measure)
			require.True(t, ok)
			assert.Equal(t, tt.location, peak.LocationName)
			assert.Equal(t, tt.measure, peak.Measure)
			assert.Equal(t, tt.wantMonth, peak.Month)
			assert.Equal(t, tt.wantTOD, peak.TimeOfDay)
			assert.Equal(t, tt.wantCount, peak.Count)
		})
	}

	_, ok := PeakPeriod(rows, "missing", domain.MeasureAll)
	assert.False(t, ok)
}
