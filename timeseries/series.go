// Package timeseries provides core time series data structures and operations.
package timeseries

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// ErrUnknownColumn is returned when a named column does not exist in a series.
var ErrUnknownColumn = errors.New("unknown column")

// Series represents a time series with timestamps and values.
//
// Values is the primary column. Columns holds auxiliary numeric columns and
// Labels holds auxiliary text columns. Both are row-aligned with Values and
// are carried along by every row selection.
type Series struct {
	Timestamps []time.Time
	Values     []float64
	Name       string
	Columns    map[string][]float64
	Labels     map[string][]string
}

// New creates a new time series from values, spaced one second apart
// starting at the Unix epoch.
func New(values []float64) *Series {
	return NewEvenlySpaced(time.Unix(0, 0).UTC(), time.Second, values)
}

// NewEvenlySpaced creates a time series whose timestamps start at start and
// advance by step.
func NewEvenlySpaced(start time.Time, step time.Duration, values []float64) *Series {
	timestamps := make([]time.Time, len(values))
	for i := range timestamps {
		timestamps[i] = start.Add(time.Duration(i) * step)
	}
	return &Series{
		Timestamps: timestamps,
		Values:     values,
	}
}

// NewWithTimestamps creates a time series with explicit timestamps.
func NewWithTimestamps(timestamps []time.Time, values []float64) (*Series, error) {
	if len(timestamps) != len(values) {
		return nil, errors.New("timestamps and values must have the same length")
	}
	return &Series{
		Timestamps: timestamps,
		Values:     values,
	}, nil
}

// Len returns the length of the series.
func (s *Series) Len() int {
	return len(s.Values)
}

// AddColumn attaches an auxiliary column. It must have one entry per row.
func (s *Series) AddColumn(name string, values []float64) error {
	if len(values) != len(s.Values) {
		return fmt.Errorf("column %q has %d rows, series has %d", name, len(values), len(s.Values))
	}
	if err := s.checkNewColumn(name); err != nil {
		return err
	}
	if s.Columns == nil {
		s.Columns = make(map[string][]float64)
	}
	s.Columns[name] = values
	return nil
}

// AddLabel attaches an auxiliary text column. It must have one entry per row.
func (s *Series) AddLabel(name string, values []string) error {
	if len(values) != len(s.Values) {
		return fmt.Errorf("label %q has %d rows, series has %d", name, len(values), len(s.Values))
	}
	if err := s.checkNewColumn(name); err != nil {
		return err
	}
	if s.Labels == nil {
		s.Labels = make(map[string][]string)
	}
	s.Labels[name] = values
	return nil
}

func (s *Series) checkNewColumn(name string) error {
	if name == "" || name == s.Name {
		return fmt.Errorf("column name %q collides with the primary column", name)
	}
	if _, ok := s.Columns[name]; ok {
		return fmt.Errorf("column %q already exists", name)
	}
	if _, ok := s.Labels[name]; ok {
		return fmt.Errorf("column %q already exists as a label", name)
	}
	return nil
}

// ColumnNames returns the auxiliary numeric column names in sorted order.
func (s *Series) ColumnNames() []string {
	return sortedKeys(s.Columns)
}

// LabelNames returns the auxiliary text column names in sorted order.
func (s *Series) LabelNames() []string {
	return sortedKeys(s.Labels)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that the timestamps and every auxiliary column have one
// entry per value.
func (s *Series) Validate() error {
	if len(s.Timestamps) != len(s.Values) {
		return fmt.Errorf("series has %d timestamps for %d values", len(s.Timestamps), len(s.Values))
	}
	for name, col := range s.Columns {
		if len(col) != len(s.Values) {
			return fmt.Errorf("column %q has %d rows, series has %d", name, len(col), len(s.Values))
		}
	}
	for name, col := range s.Labels {
		if len(col) != len(s.Values) {
			return fmt.Errorf("label %q has %d rows, series has %d", name, len(col), len(s.Values))
		}
	}
	return nil
}

// Column returns the values of the named column. An empty name, or the
// series name, selects the primary Values.
func (s *Series) Column(name string) ([]float64, error) {
	if name == "" || name == s.Name {
		return s.Values, nil
	}
	col, ok := s.Columns[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	return col, nil
}

// IsSorted reports whether the timestamps are in non-decreasing order.
func (s *Series) IsSorted() bool {
	for i := 1; i < len(s.Timestamps); i++ {
		if s.Timestamps[i].Before(s.Timestamps[i-1]) {
			return false
		}
	}
	return true
}

// Select returns a new series holding the rows where keep is true, in their
// original order. Every column is copied; the result never shares storage
// with s.
func (s *Series) Select(keep []bool) (*Series, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if len(keep) != len(s.Values) {
		return nil, fmt.Errorf("mask has %d entries, series has %d rows", len(keep), len(s.Values))
	}

	n := 0
	for _, k := range keep {
		if k {
			n++
		}
	}

	values := make([]float64, 0, n)
	timestamps := make([]time.Time, 0, n)
	for i, k := range keep {
		if !k {
			continue
		}
		values = append(values, s.Values[i])
		timestamps = append(timestamps, s.Timestamps[i])
	}

	out := &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       s.Name,
	}
	if len(s.Columns) > 0 {
		out.Columns = make(map[string][]float64, len(s.Columns))
		for name, col := range s.Columns {
			selected := make([]float64, 0, n)
			for i, k := range keep {
				if k {
					selected = append(selected, col[i])
				}
			}
			out.Columns[name] = selected
		}
	}
	if len(s.Labels) > 0 {
		out.Labels = make(map[string][]string, len(s.Labels))
		for name, col := range s.Labels {
			selected := make([]string, 0, n)
			for i, k := range keep {
				if k {
					selected = append(selected, col[i])
				}
			}
			out.Labels[name] = selected
		}
	}
	return out, nil
}

// Summary describes the primary column of a series.
type Summary struct {
	Rows    int
	Missing int
	Min     float64
	Max     float64
	Mean    float64
}

// Summarize returns row count, missing count and the NaN-aware min, max and
// mean of the primary column. Min, Max and Mean are NaN when no value is
// present.
func (s *Series) Summarize() Summary {
	sum := Summary{
		Rows:    s.Len(),
		Missing: s.Missing(),
		Min:     s.Min(),
		Max:     s.Max(),
		Mean:    math.NaN(),
	}
	if sum.Missing < sum.Rows {
		sum.Mean = s.Mean()
	}
	return sum
}

// Mean calculates the arithmetic mean of the series, ignoring NaN values.
func (s *Series) Mean() float64 {
	sum := 0.0
	n := 0
	for _, v := range s.Values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Min returns the minimum non-NaN value in the series.
func (s *Series) Min() float64 {
	min := math.NaN()
	for _, v := range s.Values {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(min) || v < min {
			min = v
		}
	}
	return min
}

// Max returns the maximum non-NaN value in the series.
func (s *Series) Max() float64 {
	max := math.NaN()
	for _, v := range s.Values {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(max) || v > max {
			max = v
		}
	}
	return max
}

// Missing returns the number of NaN values in the series.
func (s *Series) Missing() int {
	n := 0
	for _, v := range s.Values {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}

// Copy creates a deep copy of the series.
func (s *Series) Copy() *Series {
	values := make([]float64, len(s.Values))
	copy(values, s.Values)

	timestamps := make([]time.Time, len(s.Timestamps))
	copy(timestamps, s.Timestamps)

	out := &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       s.Name,
	}
	if s.Columns != nil {
		out.Columns = make(map[string][]float64, len(s.Columns))
		for name, col := range s.Columns {
			c := make([]float64, len(col))
			copy(c, col)
			out.Columns[name] = c
		}
	}
	if s.Labels != nil {
		out.Labels = make(map[string][]string, len(s.Labels))
		for name, col := range s.Labels {
			c := make([]string, len(col))
			copy(c, col)
			out.Labels[name] = c
		}
	}
	return out
}
