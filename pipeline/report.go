package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/sartorproj/sensorclean/timeseries"
)

// Report summarises one pipeline run over a single series.
type Report struct {
	RunID    uuid.UUID
	Series   string
	Started  time.Time
	Duration time.Duration
	Input    int
	Output   int
	Steps    []StepReport

	// Primary column before and after cleaning.
	InputSummary  timeseries.Summary
	OutputSummary timeseries.Summary
}

// StepReport records how many rows one step removed.
type StepReport struct {
	Name     string
	Type     string
	Input    int
	Output   int
	Duration time.Duration
}

// Removed returns the number of rows the step dropped.
func (s StepReport) Removed() int {
	return s.Input - s.Output
}

// Removed returns the number of rows the whole run dropped.
func (r *Report) Removed() int {
	return r.Input - r.Output
}

// RemovedFraction returns the share of input rows that were dropped, or 0
// for an empty input.
func (r *Report) RemovedFraction() float64 {
	if r.Input == 0 {
		return 0
	}
	return float64(r.Removed()) / float64(r.Input)
}
