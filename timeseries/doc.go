// Package timeseries provides time series data structures and utilities.
//
// This package includes the Series type for representing sensor readings
// together with their timestamps, along with CSV loading and export.
//
// # Creating a Series
//
// Create a time series from a slice (one-second spacing from the Unix epoch):
//
//	values := []float64{20.1, 20.3, 20.2, 35.0, 20.4}
//	series := timeseries.New(values)
//
// Or with explicit timestamps:
//
//	series, err := timeseries.NewWithTimestamps(timestamps, values)
//
// # Loading from CSV
//
// Load time series data from CSV files:
//
//	// Load the "value" column with a date-like timestamp column
//	series, err := timeseries.LoadCSV("boiler.csv", nil)
//
//	// Carry the other columns along
//	opts := timeseries.DefaultCSVOptions()
//	opts.ValueColumn = "temperature"
//	opts.DateColumn = "ts"
//	opts.KeepColumns = true
//	series, err := timeseries.LoadCSV("boiler.csv", opts)
//
// Missing cells (empty, NA, NaN, null) are loaded as NaN unless
// SkipMissing is set. With KeepColumns, columns whose cells are all numeric
// or missing go to Columns; any other column is kept verbatim in Labels.
//
// # Row Selection
//
// Filters produce row subsets with Select, which copies every column:
//
//	keep := make([]bool, series.Len())
//	// ... mark rows to keep
//	subset, err := series.Select(keep)
//
// # Exporting
//
//	err := timeseries.SaveCSV(subset, "boiler_clean.csv")
package timeseries
