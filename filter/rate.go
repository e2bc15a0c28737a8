package filter

import (
	"fmt"
	"math"
	"time"

	"github.com/sartorproj/sensorclean/stats"
	"github.com/sartorproj/sensorclean/timeseries"
)

// RateOptions configures RateOfRise.
type RateOptions struct {
	Field     string  // value column; empty selects the primary values
	Threshold float64 // maximum allowed change per second, exclusive
}

// Validate checks that the threshold is a positive number.
func (o RateOptions) Validate() error {
	return checkThreshold(o.Threshold)
}

// Rates calculates the absolute rate of change per second between each row
// and the row before it. The first row has rate 0. A non-positive
// elapsed time yields +Inf; a missing value on either side yields NaN.
func Rates(values []float64, timestamps []time.Time) []float64 {
	dv := stats.AbsDiff(values)
	dt := stats.ElapsedSeconds(timestamps)

	rates := make([]float64, len(values))
	for i := 1; i < len(values) && i < len(dt); i++ {
		if dt[i] <= 0 {
			rates[i] = math.Inf(1)
			continue
		}
		rates[i] = dv[i] / dt[i]
	}
	return rates
}

// RateOfRise keeps the rows whose rate of change from the preceding input
// row is strictly below opts.Threshold. Rates are computed on the input
// sequence, not on surviving rows. Duplicate or out-of-order timestamps give
// an infinite rate and the row is dropped. A rate involving a missing value
// is undefined and the row is kept.
func RateOfRise(s *timeseries.Series, opts RateOptions) (*timeseries.Series, error) {
	if err := checkSeries(s); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("rate of rise: %w", err)
	}
	values, err := s.Column(opts.Field)
	if err != nil {
		return nil, fmt.Errorf("rate of rise: %w", err)
	}

	keep := make([]bool, len(values))
	for i, r := range Rates(values, s.Timestamps) {
		keep[i] = math.IsNaN(r) || r < opts.Threshold
	}

	return s.Select(keep)
}
