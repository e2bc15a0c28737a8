package filter

import (
	"fmt"
	"math"

	"github.com/sartorproj/sensorclean/stats"
	"github.com/sartorproj/sensorclean/timeseries"
)

// Window radii of the two despike presets.
const (
	ShortRadius = 1
	LongRadius  = 6
)

// DespikeOptions configures the local-deviation despike filters.
type DespikeOptions struct {
	Field     string  // value column; empty selects the primary values
	Threshold float64 // rows deviating this much or more from their neighbours are dropped
}

// Despike removes single-point spikes by comparing each value with the
// average of its two direct neighbours (radius 1). The first and last rows
// are always kept.
func Despike(s *timeseries.Series, opts DespikeOptions) (*timeseries.Series, error) {
	return DespikeWindow(s, ShortRadius, opts)
}

// DespikeMovingAverage removes spikes by comparing each value with the
// average of its 12 surrounding neighbours (radius 6). The first and last
// six rows are always kept.
func DespikeMovingAverage(s *timeseries.Series, opts DespikeOptions) (*timeseries.Series, error) {
	return DespikeWindow(s, LongRadius, opts)
}

// DespikeWindow drops row i when |v[i] - ref| >= opts.Threshold, where ref
// is the mean of the k values on either side of i. Rows within k of either
// end have no reference and are kept, as are rows whose deviation is
// undefined because the value or a neighbour is missing.
func DespikeWindow(s *timeseries.Series, k int, opts DespikeOptions) (*timeseries.Series, error) {
	if err := checkSeries(s); err != nil {
		return nil, err
	}
	if err := ValidateRadius(k); err != nil {
		return nil, fmt.Errorf("despike: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("despike: %w", err)
	}
	values, err := s.Column(opts.Field)
	if err != nil {
		return nil, fmt.Errorf("despike: %w", err)
	}
	if len(values) < 2*k+1 {
		return nil, fmt.Errorf("despike: %w: radius %d needs %d rows, got %d",
			ErrWindowTooLarge, k, 2*k+1, len(values))
	}

	deviation := stats.Deviation(values, stats.NeighborMean(values, k))

	keep := make([]bool, len(values))
	for i, d := range deviation {
		keep[i] = math.IsNaN(d) || d < opts.Threshold
	}

	return s.Select(keep)
}

// Validate checks that the threshold is a positive number.
func (o DespikeOptions) Validate() error {
	return checkThreshold(o.Threshold)
}

// ValidateRadius checks that k is usable as a despike window radius.
func ValidateRadius(k int) error {
	if k < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidRadius, k)
	}
	return nil
}

func checkThreshold(v float64) error {
	if math.IsNaN(v) || v <= 0 {
		return fmt.Errorf("%w: got %g", ErrInvalidThreshold, v)
	}
	return nil
}
