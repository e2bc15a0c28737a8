package stats

import (
	"math"
)

// NeighborMean calculates, for every index with k full neighbours on each
// side, the mean of values[i-k..i-1] and values[i+1..i+k]. The centre value
// is excluded. Indices without a complete neighbourhood are NaN, as is any
// mean that includes a NaN neighbour. Neighbours are summed left to right.
func NeighborMean(values []float64, k int) []float64 {
	n := len(values)
	result := make([]float64, n)
	for i := range result {
		result[i] = math.NaN()
	}
	if k < 1 || n < 2*k+1 {
		return result
	}

	width := float64(2 * k)
	for i := k; i < n-k; i++ {
		sum := 0.0
		for j := i - k; j <= i+k; j++ {
			if j == i {
				continue
			}
			sum += values[j]
		}
		result[i] = sum / width
	}

	return result
}

// Deviation returns |values[i] - ref[i]| for each index. A NaN on either
// side yields NaN.
func Deviation(values, ref []float64) []float64 {
	n := len(values)
	if len(ref) < n {
		n = len(ref)
	}
	result := make([]float64, n)
	for i := 0; i < n; i++ {
		result[i] = math.Abs(values[i] - ref[i])
	}
	return result
}
