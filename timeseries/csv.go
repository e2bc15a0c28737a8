package timeseries

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// CSVOptions holds options for CSV loading.
type CSVOptions struct {
	DateColumn  string // Column name for timestamps (default: first date-like header)
	ValueColumn string // Column name for values (default: "value")
	DateFormat  string // Preferred timestamp layout, tried before the fallbacks
	HasHeader   bool   // Whether CSV has header row (default: true)
	Delimiter   rune   // Field delimiter (default: ',')
	SkipRows    int    // Number of rows to skip at start
	KeepColumns bool   // Load the remaining columns: numeric ones as Columns, the rest as Labels
	SkipMissing bool   // Drop rows whose value is missing instead of loading NaN
}

// DefaultCSVOptions returns default options for CSV loading.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		ValueColumn: "value",
		DateFormat:  time.RFC3339,
		HasHeader:   true,
		Delimiter:   ',',
	}
}

var fallbackDateFormats = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
}

// LoadCSV loads a time series from a CSV file.
func LoadCSV(filename string, opts *CSVOptions) (*Series, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadCSVFromReader(file, opts)
}

// LoadCSVFromReader loads a time series from an io.Reader.
func LoadCSVFromReader(r io.Reader, opts *CSVOptions) (*Series, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.TrimLeadingSpace = true

	for i := 0; i < opts.SkipRows; i++ {
		if _, err := reader.Read(); err != nil {
			return nil, err
		}
	}

	valueIdx, dateIdx := -1, -1
	valueName := opts.ValueColumn
	extra := map[int]string{}

	if opts.HasHeader {
		headers, err := reader.Read()
		if err != nil {
			return nil, err
		}

		for i, h := range headers {
			h = cleanCell(h)
			switch {
			case opts.ValueColumn != "" && h == opts.ValueColumn:
				valueIdx = i
			case opts.ValueColumn == "" && valueIdx == -1 && (h == "value" || h == "y"):
				valueIdx = i
				valueName = h
			case opts.DateColumn != "" && h == opts.DateColumn:
				dateIdx = i
			case opts.DateColumn == "" && dateIdx == -1 && isDateHeader(h):
				dateIdx = i
			default:
				extra[i] = h
			}
		}

		if valueIdx == -1 {
			return nil, fmt.Errorf("value column %q not found in header", opts.ValueColumn)
		}
		if dateIdx == -1 {
			return nil, errors.New("no timestamp column found in header")
		}
		delete(extra, valueIdx)
		delete(extra, dateIdx)
	} else {
		dateIdx = 0
		valueIdx = 1
	}

	var values []float64
	var timestamps []time.Time
	raw := map[string][]string{}

	line := opts.SkipRows
	if opts.HasHeader {
		line++
	}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		if valueIdx >= len(record) || dateIdx >= len(record) {
			return nil, fmt.Errorf("line %d: expected at least %d fields, got %d", line, max(valueIdx, dateIdx)+1, len(record))
		}

		val, ok := parseValue(record[valueIdx])
		if !ok && opts.SkipMissing {
			continue
		}

		ts, err := parseTimestamp(cleanCell(record[dateIdx]), opts.DateFormat)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		values = append(values, val)
		timestamps = append(timestamps, ts)

		if opts.KeepColumns {
			for idx, name := range extra {
				cell := ""
				if idx < len(record) {
					cell = cleanCell(record[idx])
				}
				raw[name] = append(raw[name], cell)
			}
		}
	}

	if len(values) == 0 {
		return nil, errors.New("no valid data found in CSV")
	}

	series := &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       valueName,
	}
	for name, cells := range raw {
		var err error
		if col, ok := parseColumn(cells); ok {
			err = series.AddColumn(name, col)
		} else {
			err = series.AddLabel(name, cells)
		}
		if err != nil {
			return nil, err
		}
	}
	return series, nil
}

// parseColumn parses cells as numbers. It reports false if any non-missing
// cell is not numeric.
func parseColumn(cells []string) ([]float64, bool) {
	col := make([]float64, len(cells))
	for i, cell := range cells {
		v, ok := parseValue(cell)
		if !ok && !isMissing(cell) {
			return nil, false
		}
		col[i] = v
	}
	return col, true
}

// SaveCSV saves a time series to a CSV file.
func SaveCSV(series *Series, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}

	if err := WriteCSV(file, series); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// WriteCSV writes a time series as CSV: a timestamp column, the primary
// value column, then the numeric and text auxiliary columns in name order.
func WriteCSV(w io.Writer, series *Series) error {
	if err := series.Validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	cw := csv.NewWriter(bw)

	name := series.Name
	if name == "" {
		name = "value"
	}
	aux := append(series.ColumnNames(), series.LabelNames()...)
	sort.Strings(aux)

	header := append([]string{"timestamp", name}, aux...)
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, len(header))
	for i, v := range series.Values {
		record[0] = series.Timestamps[i].Format(time.RFC3339Nano)
		record[1] = formatValue(v)
		for j, col := range aux {
			if values, ok := series.Columns[col]; ok {
				record[2+j] = formatValue(values[i])
			} else {
				record[2+j] = series.Labels[col][i]
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return bw.Flush()
}

func cleanCell(s string) string {
	return strings.TrimSpace(strings.Trim(s, "\""))
}

func isDateHeader(h string) bool {
	switch strings.ToLower(h) {
	case "ds", "date", "time", "datetime", "timestamp":
		return true
	}
	return false
}

func isMissing(cell string) bool {
	switch cleanCell(cell) {
	case "", "NA", "NaN", "nan", "null":
		return true
	}
	return false
}

// parseValue parses a numeric cell. Missing markers yield NaN and false.
func parseValue(cell string) (float64, bool) {
	if isMissing(cell) {
		return math.NaN(), false
	}
	s := cleanCell(cell)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return math.NaN(), false
	}
	return v, true
}

func parseTimestamp(s, preferred string) (time.Time, error) {
	if preferred != "" {
		if ts, err := time.Parse(preferred, s); err == nil {
			return ts, nil
		}
	}
	for _, layout := range fallbackDateFormats {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp %q", s)
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
