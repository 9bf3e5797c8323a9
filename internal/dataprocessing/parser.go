package dataprocessing

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"streetpulse/pkg/contracts/domain"
)

// Source column names.
const (
	ColumnTimestamp   = "timestamp"
	ColumnLocation    = "location_name"
	ColumnPedestrians = "pedestrians_count"
	ColumnAdults      = "adult_pedestrians_count"
	ColumnChildren    = "child_pedestrians_count"
)

var requiredColumns = []string{
	ColumnTimestamp,
	ColumnLocation,
	ColumnPedestrians,
	ColumnAdults,
	ColumnChildren,
}

// Layouts that carry their own UTC offset.
var offsetLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
}

// Layouts interpreted in the configured source location.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 style timestamp. Values without an offset
// are read in loc.
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("no layout matches %q", value)
}

// rowReader yields raw rows, returning io.EOF when exhausted.
type rowReader interface {
	Next() ([]string, error)
}

type csvRows struct {
	r *csv.Reader
}

func (c *csvRows) Next() ([]string, error) {
	return c.r.Read()
}

type sliceRows struct {
	rows [][]string
	pos  int
}

func (s *sliceRows) Next() ([]string, error) {
	if s.pos >= len(s.rows) {
		return nil, io.EOF
	}
	row := s.rows[s.pos]
	s.pos++
	return row, nil
}

// ReadCSV decodes delimited text into raw records. A zero delimiter is sniffed
// from the header line.
func ReadCSV(r io.Reader, delimiter rune, loc *time.Location) ([]domain.RawRecord, error) {
	br := bufio.NewReader(r)
	if delimiter == 0 {
		delimiter = sniffDelimiter(br)
	}
	cr := csv.NewReader(br)
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return decodeRows(&csvRows{r: cr}, loc)
}

// ReadWorkbook decodes the first sheet of an XLSX workbook into raw records.
func ReadWorkbook(path string, loc *time.Location) ([]domain.RawRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &MalformedInputError{Column: ColumnTimestamp, Reason: "workbook has no sheets"}
	}
	// Raw values keep dates as serial numbers and counts free of
	// thousands separators.
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return decodeRows(&sliceRows{rows: rows}, loc)
}

func sniffDelimiter(br *bufio.Reader) rune {
	line, err := br.Peek(br.Size())
	if err != nil && len(line) == 0 {
		return ','
	}
	if i := strings.IndexByte(string(line), '\n'); i >= 0 {
		line = line[:i]
	}
	if strings.Count(string(line), ";") > strings.Count(string(line), ",") {
		return ';'
	}
	return ','
}

func decodeRows(rr rowReader, loc *time.Location) ([]domain.RawRecord, error) {
	header, err := rr.Next()
	if errors.Is(err, io.EOF) {
		return nil, &MalformedInputError{Column: ColumnTimestamp, Reason: "source is empty"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var records []domain.RawRecord
	for row := 1; ; row++ {
		fields, err := rr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", row, err)
		}
		if blank(fields) {
			continue
		}
		rec, err := decodeRecord(row, fields, index, loc)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, &MalformedInputError{Column: col, Reason: "required column missing"}
		}
	}
	return index, nil
}

func decodeRecord(row int, fields []string, index map[string]int, loc *time.Location) (domain.RawRecord, error) {
	field := func(col string) string {
		if i := index[col]; i < len(fields) {
			return strings.TrimSpace(fields[i])
		}
		return ""
	}

	rawTS := field(ColumnTimestamp)
	ts, err := ParseTimestamp(rawTS, loc)
	if err != nil {
		serial, ferr := strconv.ParseFloat(rawTS, 64)
		if ferr != nil {
			return domain.RawRecord{}, &UnparsableTimestampError{Row: row, Value: rawTS}
		}
		if ts, err = fromExcelSerial(serial, loc); err != nil {
			return domain.RawRecord{}, &UnparsableTimestampError{Row: row, Value: rawTS}
		}
	}

	rec := domain.RawRecord{
		Timestamp:    ts,
		LocationName: field(ColumnLocation),
	}
	counts := []struct {
		col string
		dst *int64
	}{
		{ColumnPedestrians, &rec.PedestriansCount},
		{ColumnAdults, &rec.AdultPedestriansCount},
		{ColumnChildren, &rec.ChildPedestriansCount},
	}
	for _, c := range counts {
		v, err := parseCount(row, c.col, field(c.col))
		if err != nil {
			return domain.RawRecord{}, err
		}
		*c.dst = v
	}
	return rec, nil
}

// fromExcelSerial reads a spreadsheet date serial as wall-clock time in loc.
// Workbooks carry no zone, so the serial is the local reading.
func fromExcelSerial(serial float64, loc *time.Location) (time.Time, error) {
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = time.UTC
	}
	t = t.Round(time.Second)
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
}

func parseCount(row int, col, value string) (int64, error) {
	if value == "" {
		return 0, &MalformedInputError{Row: row, Column: col, Value: value, Reason: "count is empty"}
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		// Numeric workbook cells may come back as "1234.0".
		f, ferr := strconv.ParseFloat(value, 64)
		if ferr != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
			return 0, &MalformedInputError{Row: row, Column: col, Value: value, Reason: "count is not an integer"}
		}
		n = int64(f)
	}
	if n < 0 {
		return 0, &MalformedInputError{Row: row, Column: col, Value: value, Reason: "count is negative"}
	}
	return n, nil
}

func blank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
