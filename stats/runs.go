package stats

import "math"

// RunCounts returns, for each index, the number of immediately preceding
// values equal to values[i]: 0 for the first element of a run, 1 for the
// second, and so on. Equality is bit-exact, so -0 and +0 differ; NaN never
// continues a run.
func RunCounts(values []float64) []int {
	counts := make([]int, len(values))
	for i := 1; i < len(values); i++ {
		if sameBits(values[i], values[i-1]) {
			counts[i] = counts[i-1] + 1
		}
	}
	return counts
}

// LongestRun returns the length of the longest run of equal consecutive
// values, or 0 for an empty slice.
func LongestRun(values []float64) int {
	if len(values) == 0 {
		return 0
	}
	longest := 0
	for _, c := range RunCounts(values) {
		if c > longest {
			longest = c
		}
	}
	return longest + 1
}

func sameBits(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return false
	}
	return math.Float64bits(a) == math.Float64bits(b)
}
