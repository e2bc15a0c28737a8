// Package sensorclean removes bad readings from time series sensor data.
//
// Sensorclean is a set of Go packages for preprocessing instrument data before
// analysis. It drops out-of-range readings, transient spikes, excessive rates
// of change and flat-lined segments from a sensor's value column, keeping
// every surviving row and its other columns unchanged.
//
// # Features
//
//   - Threshold filtering with an optional exempt time window
//   - Spike removal against 2-neighbour and 12-neighbour averages
//   - Rate-of-rise limiting using actual elapsed time between readings
//   - Stuck-sensor (flatline) detection in a single linear pass
//   - YAML-configured pipelines with structured logging and Prometheus
//     textfile metrics
//
// # Quick Start
//
// Filter a series directly:
//
//	opts := timeseries.DefaultCSVOptions()
//	opts.ValueColumn = "temperature"
//	series, _ := timeseries.LoadCSV("boiler.csv", opts)
//	series, _ = filter.Threshold(series, filter.ThresholdOptions{Max: filter.Bound(120)})
//	series, _ = filter.Despike(series, filter.DespikeOptions{Threshold: 3})
//	series, _ = filter.Flatline(series, filter.FlatlineOptions{MaxRun: 10})
//
// Or describe the steps in YAML and run a pipeline:
//
//	cfg, _ := pipeline.Load("clean.yaml")
//	p, _ := pipeline.FromConfig(cfg, slog.Default())
//	cleaned, report, _ := p.Run(ctx, series)
//
// # Packages
//
// The library is organized into the following packages:
//
//   - timeseries: Series type, row selection, CSV loading and export
//   - stats: Windowed means, differences and run-length counts
//   - filter: The five cleaning filters
//   - pipeline: Configured filter sequences, run reports and metrics
//
// The sensorclean command in cmd/sensorclean cleans CSV files from the shell.
package sensorclean
