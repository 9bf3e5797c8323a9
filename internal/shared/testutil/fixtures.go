package testutil

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"streetpulse/internal/dataprocessing"
	"streetpulse/pkg/contracts/domain"
)

// Fixture locations.
const (
	LocationMitte = "Bahnhofstrasse (Mitte)"
	LocationSued  = "Bahnhofstrasse (Süd)"
)

// SampleCSV is a semicolon separated source covering both default windows.
const SampleCSV = `timestamp;location_name;pedestrians_count;adult_pedestrians_count;child_pedestrians_count
2021-10-04T08:00:00+02:00;Bahnhofstrasse (Mitte);100;90;10
2021-12-11T14:00:00+01:00;Bahnhofstrasse (Süd);60;50;10
2022-10-03T08:00:00+02:00;Bahnhofstrasse (Mitte);120;100;20
2022-10-03T19:00:00+02:00;Bahnhofstrasse (Süd);30;30;0
2022-12-10T14:00:00+01:00;Bahnhofstrasse (Mitte);80;60;20
2022-12-10T14:00:00+01:00;Bahnhofstrasse (Nord);999;999;0
2023-03-06T03:00:00+01:00;Bahnhofstrasse (Süd);5;5;0
`

// SampleRecords returns the raw records of SampleCSV.
func SampleRecords(t *testing.T) []domain.RawRecord {
	t.Helper()
	ts := func(value string) time.Time {
		parsed, err := time.Parse(time.RFC3339, value)
		if err != nil {
			t.Fatalf("fixture timestamp %q: %v", value, err)
		}
		return parsed
	}
	return []domain.RawRecord{
		{Timestamp: ts("2021-10-04T08:00:00+02:00"), LocationName: LocationMitte, PedestriansCount: 100, AdultPedestriansCount: 90, ChildPedestriansCount: 10},
		{Timestamp: ts("2021-12-11T14:00:00+01:00"), LocationName: LocationSued, PedestriansCount: 60, AdultPedestriansCount: 50, ChildPedestriansCount: 10},
		{Timestamp: ts("2022-10-03T08:00:00+02:00"), LocationName: LocationMitte, PedestriansCount: 120, AdultPedestriansCount: 100, ChildPedestriansCount: 20},
		{Timestamp: ts("2022-10-03T19:00:00+02:00"), LocationName: LocationSued, PedestriansCount: 30, AdultPedestriansCount: 30},
		{Timestamp: ts("2022-12-10T14:00:00+01:00"), LocationName: LocationMitte, PedestriansCount: 80, AdultPedestriansCount: 60, ChildPedestriansCount: 20},
		{Timestamp: ts("2022-12-10T14:00:00+01:00"), LocationName: dataprocessing.DefaultExcludedLocation, PedestriansCount: 999, AdultPedestriansCount: 999},
		{Timestamp: ts("2023-03-06T03:00:00+01:00"), LocationName: LocationSued, PedestriansCount: 5, AdultPedestriansCount: 5},
	}
}

// SampleDataset loads SampleRecords with the default options.
func SampleDataset(t *testing.T) *dataprocessing.Dataset {
	t.Helper()
	opts := dataprocessing.DefaultOptions()
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	ds, err := dataprocessing.LoadRecords(context.Background(), SampleRecords(t), opts)
	if err != nil {
		t.Fatalf("load sample dataset: %v", err)
	}
	return ds
}
