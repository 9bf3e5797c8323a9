package exporter

import (
	"strconv"
	"time"

	"github.com/goodsign/monday"

	"streetpulse/pkg/contracts/domain"
)

// formatFloat formats a float64 value for CSV output with exactly 2 decimal places
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// Labels renders month and weekday names in table cells.
type Labels struct {
	Month   func(domain.FiscalMonth) string
	Weekday func(domain.Weekday) string
}

// EnglishLabels uses the names the source data carries.
func EnglishLabels() Labels {
	return Labels{
		Month:   domain.FiscalMonth.String,
		Weekday: domain.Weekday.String,
	}
}

// LocalizedLabels translates month and weekday names with goodsign/monday.
// Unsupported locales fall back to English.
func LocalizedLabels(locale string) Labels {
	loc := monday.Locale(locale)
	if !isSupportedLocale(loc) || loc == monday.LocaleEnUS {
		return EnglishLabels()
	}
	return Labels{
		Month: func(m domain.FiscalMonth) string {
			return monday.Format(time.Date(2000, m.Calendar(), 1, 0, 0, 0, 0, time.UTC), "January", loc)
		},
		Weekday: func(d domain.Weekday) string {
			// 2023-01-01 is a Sunday; offsetting by the weekday lands on it.
			day := time.Date(2023, time.January, 1+int(d), 0, 0, 0, 0, time.UTC)
			return monday.Format(day, "Monday", loc)
		},
	}
}

func isSupportedLocale(loc monday.Locale) bool {
	for _, l := range monday.ListLocales() {
		if l == loc {
			return true
		}
	}
	return false
}
