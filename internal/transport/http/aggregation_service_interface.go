package http

import (
	"context"

	"streetpulse/internal/services"
	"streetpulse/pkg/contracts/domain"
)

// AggregationServiceInterface defines the queries the aggregates handler serves
type AggregationServiceInterface interface {
	Windows(ctx context.Context) ([]services.WindowSummary, error)
	CountByMonth(ctx context.Context, window domain.WindowName) ([]domain.MonthCount, error)
	CountByDay(ctx context.Context, window domain.WindowName) ([]domain.DayCount, error)
	CountByLocation(ctx context.Context, window domain.WindowName) ([]domain.LocationCount, error)
	LocationDateTime(ctx context.Context, window domain.WindowName, location string) ([]domain.LocationMonthTime, error)
	Locations(ctx context.Context, window domain.WindowName) ([]string, error)
	LocationDayTime(ctx context.Context, window domain.WindowName) ([]domain.LocationDayTime, error)
	WeekdayDistribution(ctx context.Context, window domain.WindowName) ([]domain.WeekdayStats, error)
	PeakPeriod(ctx context.Context, window domain.WindowName, location string, measure domain.Measure) (domain.PeakPeriod, error)
	YearTotals(ctx context.Context) ([]domain.WindowTotal, error)
	CompareMonths(ctx context.Context) ([]domain.MonthComparison, error)
}

var _ AggregationServiceInterface = (*services.AggregationService)(nil)
