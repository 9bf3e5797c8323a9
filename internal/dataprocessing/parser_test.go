package dataprocessing

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const header = "timestamp,location_name,pedestrians_count,adult_pedestrians_count,child_pedestrians_count"

func TestParseTimestamp(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	tests := []struct {
		name     string
		value    string
		loc      *time.Location
		wantUTC  time.Time
		wantHour int
	}{
		{
			name:     "rfc3339 with offset",
			value:    "2022-10-01T05:00:00+02:00",
			wantUTC:  time.Date(2022, 10, 1, 3, 0, 0, 0, time.UTC),
			wantHour: 5,
		},
		{
			name:     "space separated with offset",
			value:    "2022-10-01 05:00:00+02:00",
			wantUTC:  time.Date(2022, 10, 1, 3, 0, 0, 0, time.UTC),
			wantHour: 5,
		},
		{
			name:     "fractional seconds",
			value:    "2022-10-01T05:00:00.000+00:00",
			wantUTC:  time.Date(2022, 10, 1, 5, 0, 0, 0, time.UTC),
			wantHour: 5,
		},
		{
			name:     "no offset defaults to UTC",
			value:    "2022-10-01T05:00",
			wantUTC:  time.Date(2022, 10, 1, 5, 0, 0, 0, time.UTC),
			wantHour: 5,
		},
		{
			name:     "no offset in configured location",
			value:    "2022-10-01 05:00:00",
			loc:      berlin,
			wantUTC:  time.Date(2022, 10, 1, 3, 0, 0, 0, time.UTC),
			wantHour: 5,
		},
		{
			name:     "date only",
			value:    " 2022-10-01 ",
			wantUTC:  time.Date(2022, 10, 1, 0, 0, 0, 0, time.UTC),
			wantHour: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.value, tt.loc)
			require.NoError(t, err)
			assert.True(t, tt.wantUTC.Equal(got), "got %s", got)
			assert.Equal(t, tt.wantHour, got.Hour())
		})
	}
}

func TestParseTimestamp_Invalid(t *testing.T) {
	for _, value := range []string{"", "yesterday", "01/10/2022 05:00", "2022-13-01T00:00"} {
		_, err := ParseTimestamp(value, time.UTC)
		assert.Error(t, err, value)
	}
}

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		delimiter rune
		wantLen   int
		wantErr   string
	}{
		{
			name:    "comma",
			input:   header + "\n2022-10-01T05:00,A,10,8,2\n2022-10-01T06:00,B,3,3,0\n",
			wantLen: 2,
		},
		{
			name:    "semicolon sniffed",
			input:   strings.ReplaceAll(header, ",", ";") + "\n2022-10-01T05:00;A;10;8;2\n",
			wantLen: 1,
		},
		{
			name:      "explicit delimiter",
			input:     strings.ReplaceAll(header, ",", "\t") + "\n2022-10-01T05:00\tA\t10\t8\t2\n",
			delimiter: '\t',
			wantLen:   1,
		},
		{
			name:    "byte order mark and mixed case header",
			input:   "\ufeffTimestamp,Location_Name,PEDESTRIANS_COUNT,adult_pedestrians_count,child_pedestrians_count\n2022-10-01T05:00,A,10,8,2\n",
			wantLen: 1,
		},
		{
			name:    "extra columns and blank lines",
			input:   header + ",weather\n2022-10-01T05:00,A,10,8,2,rain\n,,,,,\n2022-10-01T06:00,A,1,1,0,dry\n",
			wantLen: 2,
		},
		{
			name:    "empty source",
			input:   "",
			wantErr: "source is empty",
		},
		{
			name:    "missing column",
			input:   "timestamp,location_name,pedestrians_count,adult_pedestrians_count\n",
			wantErr: "child_pedestrians_count",
		},
		{
			name:    "negative count",
			input:   header + "\n2022-10-01T05:00,A,-1,0,0\n",
			wantErr: "count is negative",
		},
		{
			name:    "non integer count",
			input:   header + "\n2022-10-01T05:00,A,1.5,0,0\n",
			wantErr: "count is not an integer",
		},
		{
			name:    "empty count",
			input:   header + "\n2022-10-01T05:00,A,1,,0\n",
			wantErr: "count is empty",
		},
		{
			name:    "bad timestamp",
			input:   header + "\nnot-a-time,A,1,1,0\n",
			wantErr: "unparsable timestamp at row 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := ReadCSV(strings.NewReader(tt.input), tt.delimiter, time.UTC)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, records, tt.wantLen)
		})
	}
}

func TestReadCSV_Fields(t *testing.T) {
	records, err := ReadCSV(strings.NewReader(header+"\n2022-10-01T05:00, Bahnhofstrasse (Mitte) ,10,8,2\n"), 0, time.UTC)
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "Bahnhofstrasse (Mitte)", r.LocationName)
	assert.Equal(t, int64(10), r.PedestriansCount)
	assert.Equal(t, int64(8), r.AdultPedestriansCount)
	assert.Equal(t, int64(2), r.ChildPedestriansCount)
	assert.Equal(t, 5, r.Timestamp.Hour())
}

func TestReadCSV_ErrorTypes(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(header+"\n2022-10-01T05:00,A,x,0,0\n"), 0, time.UTC)
	var malformed *MalformedInputError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 1, malformed.Row)
	assert.Equal(t, ColumnPedestrians, malformed.Column)
	assert.Equal(t, "x", malformed.Value)

	_, err = ReadCSV(strings.NewReader(header+"\n2022-10-01T05:00,A,1,0,0\nnever,A,1,0,0\n"), 0, time.UTC)
	var ts *UnparsableTimestampError
	require.ErrorAs(t, err, &ts)
	assert.Equal(t, 2, ts.Row)
	assert.Equal(t, "never", ts.Value)
}

func TestReadWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counts.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"timestamp", "location_name", "pedestrians_count", "adult_pedestrians_count", "child_pedestrians_count"},
		{"2022-10-01T05:00:00+02:00", "A", 10, 8, 2},
		{"2022-10-01T07:00:00+02:00", "B", 20, 15, 5},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	records, err := ReadWorkbook(path, time.UTC)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "B", records[1].LocationName)
	assert.Equal(t, int64(15), records[1].AdultPedestriansCount)
	assert.Equal(t, 7, records[1].Timestamp.Hour())
}

func TestReadWorkbook_NativeCells(t *testing.T) {
	path := filepath.Join(t.TempDir(), "native.xlsx")
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	cols := []interface{}{"timestamp", "location_name", "pedestrians_count", "adult_pedestrians_count", "child_pedestrians_count"}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &cols))
	row := []interface{}{time.Date(2022, 10, 1, 5, 0, 0, 0, time.UTC), "Mitte", 1234, 1000, 234}
	require.NoError(t, f.SetSheetRow(sheet, "A2", &row))

	// #,##0 renders 1234 as "1,234" and the date style renders the
	// timestamp as text; neither form should reach the decoder.
	thousands, err := f.NewStyle(&excelize.Style{NumFmt: 3})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(sheet, "C2", "E2", thousands))
	dated, err := f.NewStyle(&excelize.Style{NumFmt: 17})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(sheet, "A2", "A2", dated))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	records, err := ReadWorkbook(path, berlin)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "Mitte", rec.LocationName)
	assert.Equal(t, int64(1234), rec.PedestriansCount)
	assert.Equal(t, int64(1000), rec.AdultPedestriansCount)
	assert.Equal(t, int64(234), rec.ChildPedestriansCount)
	assert.True(t, rec.Timestamp.Equal(time.Date(2022, 10, 1, 5, 0, 0, 0, berlin)), "got %s", rec.Timestamp)
}

func TestParseCount_IntegralFloat(t *testing.T) {
	n, err := parseCount(1, ColumnPedestrians, "1234.0")
	require.NoError(t, err)
	assert.Equal(t, int64(1234), n)

	_, err = parseCount(1, ColumnPedestrians, "12.5")
	var malformed *MalformedInputError
	assert.ErrorAs(t, err, &malformed)
}

func TestReadWorkbook_Missing(t *testing.T) {
	_, err := ReadWorkbook(filepath.Join(t.TempDir(), "missing.xlsx"), time.UTC)
	assert.Error(t, err)
}
