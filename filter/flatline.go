package filter

import (
	"fmt"

	"github.com/sartorproj/sensorclean/stats"
	"github.com/sartorproj/sensorclean/timeseries"
)

// DefaultMaxRun is the run length used when FlatlineOptions.MaxRun is zero.
const DefaultMaxRun = 10

// FlatlineOptions configures Flatline.
type FlatlineOptions struct {
	Field  string // value column; empty selects the primary values
	MaxRun int    // run length at which rows start being dropped (default 10)
}

// Validate checks the run length. Zero selects DefaultMaxRun.
func (o FlatlineOptions) Validate() error {
	if n := o.runLength(); n < 2 {
		return fmt.Errorf("%w: got %d", ErrInvalidRunLength, n)
	}
	return nil
}

func (o FlatlineOptions) runLength() int {
	if o.MaxRun == 0 {
		return DefaultMaxRun
	}
	return o.MaxRun
}

// Flatline removes stuck-sensor segments. Within a run of identical
// consecutive values the first MaxRun-1 rows are kept and every row from the
// MaxRun-th onward is dropped, so no output run reaches MaxRun.
func Flatline(s *timeseries.Series, opts FlatlineOptions) (*timeseries.Series, error) {
	if err := checkSeries(s); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("flatline: %w", err)
	}
	maxRun := opts.runLength()
	values, err := s.Column(opts.Field)
	if err != nil {
		return nil, fmt.Errorf("flatline: %w", err)
	}

	counts := stats.RunCounts(values)
	keep := make([]bool, len(values))
	for i, c := range counts {
		keep[i] = c < maxRun-1
	}

	return s.Select(keep)
}
