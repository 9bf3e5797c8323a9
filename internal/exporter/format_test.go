package exporter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"streetpulse/pkg/contracts/domain"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "13.40", formatFloat(13.4))
	assert.Equal(t, "-2.00", formatFloat(-2))
	assert.Equal(t, "1234567", formatInt(1234567))
}

func TestLabels(t *testing.T) {
	tests := []struct {
		locale  string
		month   string
		weekday string
	}{
		{"en_US", "October", "Monday"},
		{"de_DE", "Oktober", "Montag"},
		{"fr_FR", "octobre", "lundi"},
		{"xx_XX", "October", "Monday"},
	}
	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			l := LocalizedLabels(tt.locale)
			assert.Equal(t, tt.month, l.Month(domain.October))
			assert.Equal(t, tt.weekday, l.Weekday(domain.Weekday(time.Monday)))
		})
	}
}

func TestCellValue(t *testing.T) {
	assert.Equal(t, int64(42), cellValue("42"))
	assert.Equal(t, 77.5, cellValue("77.50"))
	assert.Equal(t, "October 2022", cellValue("October 2022"))
}
