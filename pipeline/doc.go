// Package pipeline composes the series filters into a configured sequence.
//
// A Pipeline applies its steps in order, logs each step through log/slog
// and returns a Report with per-step row counts. Pipelines are usually built
// from a YAML file:
//
//	input:
//	  value_column: temperature
//	  date_column: timestamp
//	steps:
//	  - type: threshold
//	    min: -40
//	    max: 120
//	    exempt: {start: "2024-03-01T00:00:00Z", end: "2024-03-02T00:00:00Z"}
//	  - type: despike
//	    threshold: 3
//	  - type: despike_moving_average
//	    threshold: 5
//	  - type: rate_of_rise
//	    threshold: 50
//	  - type: flatline
//	    max_run: 10
//
// and run with:
//
//	cfg, err := pipeline.Load("clean.yaml")
//	p, err := pipeline.FromConfig(cfg, logger)
//	cleaned, report, err := p.Run(ctx, series)
//
// Reports can be exported for the Prometheus node_exporter textfile
// collector with WriteMetricsFile.
package pipeline
