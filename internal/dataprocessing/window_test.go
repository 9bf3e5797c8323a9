package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"streetpulse/pkg/contracts/domain"
)

func TestWindowsFor(t *testing.T) {
	previous, last := WindowsFor(2022)

	assert.Equal(t, domain.WindowPrevious, previous.Name)
	assert.Equal(t, time.Date(2021, time.October, 1, 0, 0, 0, 0, time.UTC), previous.Start)
	assert.Equal(t, time.Date(2022, time.October, 1, 0, 0, 0, 0, time.UTC), previous.End)
	assert.Equal(t, domain.WindowLast, last.Name)
	assert.Equal(t, previous.End, last.Start)
	assert.Equal(t, time.Date(2023, time.October, 1, 0, 0, 0, 0, time.UTC), last.End)

	assert.Equal(t, 365, previous.Days())
	// 2024 is a leap year.
	_, leap := WindowsFor(2023)
	assert.Equal(t, 366, leap.Days())
}

func TestYearWindow_Contains(t *testing.T) {
	_, last := WindowsFor(2022)

	tests := []struct {
		name string
		ts   time.Time
		want bool
	}{
		{"start is inclusive", last.Start, true},
		{"end is exclusive", last.End, false},
		{"just before end", last.End.Add(-time.Nanosecond), true},
		{"just before start", last.Start.Add(-time.Second), false},
		{"offset timestamp before start in UTC", time.Date(2022, time.October, 1, 1, 0, 0, 0, time.FixedZone("CEST", 2*3600)), false},
		{"offset timestamp after start in UTC", time.Date(2022, time.October, 1, 3, 0, 0, 0, time.FixedZone("CEST", 2*3600)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, last.Contains(tt.ts))
		})
	}
}
