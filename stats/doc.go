// Package stats provides windowed statistics used by the series filters.
//
// The functions here operate on plain float64 slices and never modify their
// input. Each returns a fresh slice aligned index-for-index with the input,
// using NaN (or 0 for differences) where a value is undefined.
//
// # Local Deviation
//
// Compare each point with the mean of its k neighbours on either side:
//
//	ref := stats.NeighborMean(values, 6)   // NaN for the first and last 6
//	dev := stats.Deviation(values, ref)
//
// # Differencing
//
// First differences of values and timestamps, with index 0 defined as 0:
//
//	dv := stats.AbsDiff(values)
//	dt := stats.ElapsedSeconds(timestamps)
//
// # Run Length
//
// Count repeated consecutive values in a single pass:
//
//	counts := stats.RunCounts(values) // 0 at the start of each run
//	longest := stats.LongestRun(values)
package stats
