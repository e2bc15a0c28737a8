// Package filter provides row filters for cleaning time series sensor data.
//
// Each filter takes a *timeseries.Series and returns a new series holding a
// subset of its rows in their original order, with every column preserved.
// The input series is never modified. Invalid parameters are reported as
// errors wrapping the sentinel errors in this package; a filter never returns
// a partial result.
//
// # Filters
//
//   - Threshold: drop values outside [min, max], optionally exempting a time window
//   - Despike: drop points far from the mean of their two neighbours
//   - DespikeMovingAverage: drop points far from the mean of their 12 neighbours
//   - RateOfRise: drop points that change faster than a limit per second
//   - Flatline: drop the tail of runs of identical values (stuck sensors)
//
// # Usage
//
// Filters compose in any order:
//
//	s, err := filter.Threshold(s, filter.ThresholdOptions{
//	    Min: filter.Bound(-40),
//	    Max: filter.Bound(120),
//	})
//	s, err = filter.Despike(s, filter.DespikeOptions{Threshold: 3})
//	s, err = filter.RateOfRise(s, filter.RateOptions{Threshold: 50})
//	s, err = filter.Flatline(s, filter.FlatlineOptions{MaxRun: 10})
//
// # Missing Values
//
// NaN values fail threshold bounds. In the despike and rate filters a NaN
// deviation or rate means there is not enough evidence to drop the row, so
// it is kept. NaN never forms part of a flatline run.
package filter
