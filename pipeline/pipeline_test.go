package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/sartorproj/sensorclean/filter"
	"github.com/sartorproj/sensorclean/timeseries"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sensorSeries() *timeseries.Series {
	values := []float64{
		20, 21, 20, 95, 21, 22, 21, // spike at 3
		-80, 21, 20, 21, 22, 21, 20, // out of range at 7
		23, 23, 23, 23, 23, 23, 23, // flat run of 7
		22, 21, 20,
	}
	s := timeseries.New(values)
	s.Name = "temperature"
	return s
}

func TestRun(t *testing.T) {
	cfg, err := Parse([]byte(`
steps:
  - type: threshold
    min: -40
    max: 120
  - type: despike
    threshold: 10
  - type: flatline
    max_run: 5
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	p, err := FromConfig(cfg, discardLogger())
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}

	in := sensorSeries()
	out, report, err := p.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// threshold drops -80; despike drops 95 and both of its neighbours,
	// whose references include the spike; flatline drops the last 3 of 7.
	wantRemoved := []int{1, 3, 3}
	if len(report.Steps) != len(wantRemoved) {
		t.Fatalf("Expected %d step reports, got %d", len(wantRemoved), len(report.Steps))
	}
	for i, want := range wantRemoved {
		if got := report.Steps[i].Removed(); got != want {
			t.Errorf("Step %d (%s) removed %d rows, want %d", i, report.Steps[i].Name, got, want)
		}
	}

	if report.Input != in.Len() || report.Output != out.Len() {
		t.Errorf("Report counts %d -> %d, series %d -> %d", report.Input, report.Output, in.Len(), out.Len())
	}
	if report.Removed() != 7 {
		t.Errorf("Expected 7 rows removed, got %d", report.Removed())
	}
	if report.Series != "temperature" {
		t.Errorf("Report.Series = %q, want temperature", report.Series)
	}
	if report.RunID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("Expected a run ID")
	}
	for _, v := range out.Values {
		if v == 95 || v == -80 {
			t.Errorf("Value %f should have been removed", v)
		}
	}
	if in.Len() != 24 {
		t.Errorf("Input series was modified: %d rows", in.Len())
	}
}

func TestRunSummaries(t *testing.T) {
	threshold, _ := ThresholdStep(filter.ThresholdOptions{Min: filter.Bound(-40), Max: filter.Bound(120)})
	despike, _ := DespikeStep(filter.ShortRadius, filter.DespikeOptions{Threshold: 10})
	p := New([]Step{threshold, despike}, discardLogger())

	in := sensorSeries()
	in.Values[10] = math.NaN()
	_, report, err := p.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.InputSummary.Min != -80 || report.InputSummary.Max != 95 {
		t.Errorf("Expected input range [-80, 95], got [%f, %f]", report.InputSummary.Min, report.InputSummary.Max)
	}
	if report.OutputSummary.Min != 20 || report.OutputSummary.Max != 23 {
		t.Errorf("Expected output range [20, 23], got [%f, %f]", report.OutputSummary.Min, report.OutputSummary.Max)
	}
	// A missing reading fails the threshold bounds.
	if report.InputSummary.Missing != 1 || report.OutputSummary.Missing != 0 {
		t.Errorf("Expected 1 -> 0 missing readings, got %d -> %d", report.InputSummary.Missing, report.OutputSummary.Missing)
	}
	if report.OutputSummary.Rows != report.Output {
		t.Errorf("Summary rows %d, report output %d", report.OutputSummary.Rows, report.Output)
	}
}

func TestSteps(t *testing.T) {
	flatline, _ := FlatlineStep(filter.FlatlineOptions{})
	despike, _ := DespikeStep(filter.LongRadius, filter.DespikeOptions{Threshold: 5})
	p := New([]Step{flatline, Named("spikes", despike)}, nil)

	steps := p.Steps()
	if len(steps) != 2 {
		t.Fatalf("Expected 2 steps, got %d", len(steps))
	}
	if steps[0].Type() != TypeFlatline || steps[1].Name() != "spikes" || steps[1].Type() != TypeDespikeMovingAverage {
		t.Errorf("Unexpected steps %s/%s, %s/%s", steps[0].Name(), steps[0].Type(), steps[1].Name(), steps[1].Type())
	}

	steps[0] = nil
	if p.Steps()[0] == nil {
		t.Error("Steps returned the pipeline's own slice")
	}
}

func TestRunMatchesManualComposition(t *testing.T) {
	threshold, _ := ThresholdStep(filter.ThresholdOptions{Max: filter.Bound(50)})
	rate, _ := RateOfRiseStep(filter.RateOptions{Threshold: 5})
	p := New([]Step{threshold, rate}, discardLogger())

	in := sensorSeries()
	out, _, err := p.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	manual, _ := filter.Threshold(in, filter.ThresholdOptions{Max: filter.Bound(50)})
	manual, _ = filter.RateOfRise(manual, filter.RateOptions{Threshold: 5})

	if out.Len() != manual.Len() {
		t.Fatalf("Pipeline gave %d rows, manual composition %d", out.Len(), manual.Len())
	}
	for i := range out.Values {
		if out.Values[i] != manual.Values[i] {
			t.Errorf("Index %d: pipeline %f, manual %f", i, out.Values[i], manual.Values[i])
		}
	}
}

func TestRunStepError(t *testing.T) {
	step, _ := DespikeStep(filter.LongRadius, filter.DespikeOptions{Threshold: 1})
	p := New([]Step{step}, discardLogger())

	out, _, err := p.Run(context.Background(), timeseries.New([]float64{1, 2, 3}))
	if !errors.Is(err, filter.ErrWindowTooLarge) {
		t.Errorf("Expected ErrWindowTooLarge, got %v", err)
	}
	if out != nil {
		t.Error("Expected no series on error")
	}
	if !strings.Contains(err.Error(), TypeDespikeMovingAverage) {
		t.Errorf("Error %q does not name the step", err)
	}
}

func TestRunCanceled(t *testing.T) {
	step, _ := FlatlineStep(filter.FlatlineOptions{})
	p := New([]Step{step}, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := p.Run(ctx, sensorSeries()); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestRunNoSteps(t *testing.T) {
	p := New(nil, nil)
	in := sensorSeries()

	out, report, err := p.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out == in {
		t.Error("Expected a copy of the input, not the input itself")
	}
	if out.Len() != in.Len() || report.Removed() != 0 {
		t.Errorf("Expected no rows removed, got %d", report.Removed())
	}
}

func TestRunNilSeries(t *testing.T) {
	if _, _, err := New(nil, discardLogger()).Run(context.Background(), nil); err == nil {
		t.Error("Expected error for nil series")
	}
}

func TestRunLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	step, _ := FlatlineStep(filter.FlatlineOptions{MaxRun: 3})
	p := New([]Step{Named("stuck", step)}, logger)

	if _, _, err := p.Run(context.Background(), sensorSeries()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	logs := buf.String()
	for _, want := range []string{`"msg":"step applied"`, `"step":"stuck"`, `"type":"flatline"`, `"msg":"pipeline finished"`, `"run_id"`} {
		if !strings.Contains(logs, want) {
			t.Errorf("Logs missing %s:\n%s", want, logs)
		}
	}
}

func TestStepFromConfigDespikeRadius(t *testing.T) {
	tests := []struct {
		name     string
		sc       StepConfig
		wantType string
	}{
		{"default radius", StepConfig{Type: TypeDespike, Threshold: 1}, TypeDespike},
		{"custom radius", StepConfig{Type: TypeDespike, Threshold: 1, Radius: 3}, TypeDespike},
		{"radius six", StepConfig{Type: TypeDespike, Threshold: 1, Radius: 6}, TypeDespikeMovingAverage},
		{"moving average", StepConfig{Type: TypeDespikeMovingAverage, Threshold: 1}, TypeDespikeMovingAverage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			step, err := StepFromConfig(tt.sc)
			if err != nil {
				t.Fatalf("StepFromConfig failed: %v", err)
			}
			if step.Type() != tt.wantType {
				t.Errorf("Type() = %q, want %q", step.Type(), tt.wantType)
			}
		})
	}

	if _, err := StepFromConfig(StepConfig{Type: TypeDespike, Threshold: 1, Radius: -1}); !errors.Is(err, filter.ErrInvalidRadius) {
		t.Errorf("Expected ErrInvalidRadius, got %v", err)
	}
}
