package stats

import (
	"math"
	"time"
)

// AbsDiff calculates the absolute first difference |values[i] - values[i-1]|.
// The first element has no predecessor and is defined as 0.
func AbsDiff(values []float64) []float64 {
	result := make([]float64, len(values))
	for i := 1; i < len(values); i++ {
		result[i] = math.Abs(values[i] - values[i-1])
	}
	return result
}

// ElapsedSeconds calculates the time between consecutive timestamps in
// seconds. The first element is defined as 0. Out-of-order timestamps give
// negative values.
func ElapsedSeconds(timestamps []time.Time) []float64 {
	result := make([]float64, len(timestamps))
	for i := 1; i < len(timestamps); i++ {
		result[i] = timestamps[i].Sub(timestamps[i-1]).Seconds()
	}
	return result
}
