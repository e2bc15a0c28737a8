package filter

import (
	"fmt"
	"math"
	"time"

	"github.com/sartorproj/sensorclean/timeseries"
)

// Window is an inclusive time range.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies within [Start, End].
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// ThresholdOptions configures Threshold. At least one of Min and Max must be
// set.
type ThresholdOptions struct {
	Field  string   // value column; empty selects the primary values
	Min    *float64 // lowest allowed value, inclusive
	Max    *float64 // highest allowed value, inclusive
	Exempt *Window  // rows inside this window are kept regardless of value
}

// Bound is a convenience for filling ThresholdOptions.Min and Max.
func Bound(v float64) *float64 {
	return &v
}

// Validate checks the bounds and exempt window.
func (o ThresholdOptions) Validate() error {
	if o.Min == nil && o.Max == nil {
		return ErrNoBounds
	}
	if o.Min != nil && math.IsNaN(*o.Min) {
		return fmt.Errorf("%w: min is NaN", ErrInvalidBounds)
	}
	if o.Max != nil && math.IsNaN(*o.Max) {
		return fmt.Errorf("%w: max is NaN", ErrInvalidBounds)
	}
	if o.Min != nil && o.Max != nil && *o.Min > *o.Max {
		return fmt.Errorf("%w: min %g exceeds max %g", ErrInvalidBounds, *o.Min, *o.Max)
	}
	if o.Exempt != nil && o.Exempt.End.Before(o.Exempt.Start) {
		return fmt.Errorf("%w: end %s before start %s", ErrInvalidWindow,
			o.Exempt.End.Format(time.RFC3339), o.Exempt.Start.Format(time.RFC3339))
	}
	return nil
}

// Threshold keeps the rows whose value lies within the configured bounds.
// When an exempt window is given, a row is kept if its value is in bounds
// or its timestamp is inside the window:
//
//	(value >= min AND value <= max) OR (start <= t <= end)
//
// With a single bound the window is ORed against that bound alone. NaN
// values never satisfy a bound.
func Threshold(s *timeseries.Series, opts ThresholdOptions) (*timeseries.Series, error) {
	if err := checkSeries(s); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("threshold: %w", err)
	}
	values, err := s.Column(opts.Field)
	if err != nil {
		return nil, fmt.Errorf("threshold: %w", err)
	}

	keep := make([]bool, len(values))
	for i, v := range values {
		inRange := !math.IsNaN(v)
		if opts.Min != nil {
			inRange = inRange && v >= *opts.Min
		}
		if opts.Max != nil {
			inRange = inRange && v <= *opts.Max
		}

		exempt := opts.Exempt != nil && opts.Exempt.Contains(s.Timestamps[i])
		keep[i] = inRange || exempt
	}

	return s.Select(keep)
}
