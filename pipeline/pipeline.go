package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sartorproj/sensorclean/timeseries"
)

// Pipeline applies a fixed sequence of steps to a series.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// New creates a pipeline. A nil logger uses slog.Default().
func New(steps []Step, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		steps:  steps,
		logger: logger,
	}
}

// FromConfig builds a pipeline from the steps section of cfg.
func FromConfig(cfg *Config, logger *slog.Logger) (*Pipeline, error) {
	steps := make([]Step, 0, len(cfg.Steps))
	for i, sc := range cfg.Steps {
		step, err := StepFromConfig(sc)
		if err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
		steps = append(steps, step)
	}
	return New(steps, logger), nil
}

// Steps returns the pipeline's steps in order.
func (p *Pipeline) Steps() []Step {
	out := make([]Step, len(p.steps))
	copy(out, p.steps)
	return out
}

// Run applies every step in order and returns the cleaned series with a
// report. The input series is not modified. The context is checked between
// steps; on any error no series is returned.
func (p *Pipeline) Run(ctx context.Context, s *timeseries.Series) (*timeseries.Series, *Report, error) {
	if s == nil {
		return nil, nil, errors.New("pipeline: nil series")
	}

	report := &Report{
		RunID:   uuid.New(),
		Series:  s.Name,
		Started: time.Now(),
		Input:   s.Len(),
		Steps:   make([]StepReport, 0, len(p.steps)),

		InputSummary: s.Summarize(),
	}
	logger := p.logger.With("run_id", report.RunID.String(), "series", s.Name)

	if !s.IsSorted() {
		logger.Warn("timestamps are not in ascending order")
	}

	current := s
	for i, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}

		start := time.Now()
		next, err := step.Apply(current)
		if err != nil {
			logger.Error("step failed", "step", step.Name(), "index", i, "error", err)
			return nil, report, fmt.Errorf("step %d (%s): %w", i, step.Name(), err)
		}

		sr := StepReport{
			Name:     step.Name(),
			Type:     step.Type(),
			Input:    current.Len(),
			Output:   next.Len(),
			Duration: time.Since(start),
		}
		report.Steps = append(report.Steps, sr)

		logger.Debug("step applied",
			"step", sr.Name,
			"type", sr.Type,
			"in", sr.Input,
			"out", sr.Output,
			"removed", sr.Removed(),
			"duration", sr.Duration,
		)
		current = next
	}

	report.Output = current.Len()
	report.OutputSummary = current.Summarize()
	report.Duration = time.Since(report.Started)

	logger.Info("pipeline finished",
		"steps", len(p.steps),
		"in", report.Input,
		"out", report.Output,
		"removed", report.Removed(),
		"missing_in", report.InputSummary.Missing,
		"missing_out", report.OutputSummary.Missing,
		"duration", report.Duration,
	)
	logger.Debug("value range",
		"min_in", report.InputSummary.Min,
		"max_in", report.InputSummary.Max,
		"min_out", report.OutputSummary.Min,
		"max_out", report.OutputSummary.Max,
		"mean_out", report.OutputSummary.Mean,
	)

	// With no steps the result must still be a fresh series.
	if current == s {
		current = s.Copy()
	}
	return current, report, nil
}
