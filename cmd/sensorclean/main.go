// Command sensorclean removes bad readings from sensor CSV files.
//
// Usage:
//
//	sensorclean -config clean.yaml [-v] [-summary results.json] file.csv...
//
// Each input is loaded, passed through the configured filter steps and
// written to the output directory as <name><suffix>.csv.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/sartorproj/sensorclean/pipeline"
	"github.com/sartorproj/sensorclean/timeseries"
)

// FileResult holds the outcome for one input file for JSON export
type FileResult struct {
	Input    string       `json:"input"`
	Output   string       `json:"output"`
	RunID    string       `json:"run_id"`
	Rows     int          `json:"rows"`
	Kept     int          `json:"kept"`
	Removed  int          `json:"removed"`
	Fraction float64      `json:"removed_fraction"`
	Steps    []StepResult `json:"steps"`

	// Missing readings before and after cleaning, and the range of the
	// cleaned values. Min, Max and Mean are omitted when no value remains.
	MissingIn  int      `json:"missing_in"`
	MissingOut int      `json:"missing_out"`
	Min        *float64 `json:"min,omitempty"`
	Max        *float64 `json:"max,omitempty"`
	Mean       *float64 `json:"mean,omitempty"`
}

// StepResult holds per-step row counts for JSON export
type StepResult struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Removed int    `json:"removed"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stderr))
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("sensorclean", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "sensorclean.yaml", "path to config file")
	summaryPath := fs.String("summary", "", "write a JSON summary of every run to this file")
	verbose := fs.Bool("v", false, "log every filter step")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	inputs := fs.Args()
	if len(inputs) == 0 {
		logger.Error("no input files given")
		return 2
	}

	cfg, err := pipeline.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "path", *configPath, "error", err)
		return 1
	}
	logger.Info("config loaded",
		"path", *configPath,
		"steps", len(cfg.Steps),
		"inputs", len(inputs),
		"concurrency", cfg.Concurrency,
	)

	p, err := pipeline.FromConfig(cfg, logger)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		return 1
	}
	for i, step := range p.Steps() {
		logger.Debug("pipeline step", "index", i, "name", step.Name(), "type", step.Type())
	}

	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		logger.Error("failed to create output directory", "dir", cfg.Output.Dir, "error", err)
		return 1
	}

	results, reports, err := cleanAll(ctx, p, cfg, inputs)
	if err != nil {
		logger.Error("cleaning failed", "error", err)
		return 1
	}

	if cfg.Metrics.Path != "" {
		if err := pipeline.WriteMetricsFile(cfg.Metrics.Path, reports...); err != nil {
			logger.Error("failed to write metrics", "path", cfg.Metrics.Path, "error", err)
			return 1
		}
	}

	if *summaryPath != "" {
		if err := writeSummary(*summaryPath, results); err != nil {
			logger.Error("failed to write summary", "path", *summaryPath, "error", err)
			return 1
		}
	}

	total, kept := 0, 0
	for _, r := range results {
		total += r.Rows
		kept += r.Kept
	}
	logger.Info("done", "files", len(results), "rows", total, "kept", kept, "removed", total-kept)
	return 0
}

// cleanAll runs the pipeline over every input, up to cfg.Concurrency at a
// time. Results keep the order of inputs.
func cleanAll(ctx context.Context, p *pipeline.Pipeline, cfg *pipeline.Config, inputs []string) ([]FileResult, []*pipeline.Report, error) {
	outputs, err := outputPaths(cfg, inputs)
	if err != nil {
		return nil, nil, err
	}

	results := make([]FileResult, len(inputs))
	reports := make([]*pipeline.Report, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)

	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			result, report, err := cleanFile(ctx, p, cfg, input, outputs[i])
			if err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}
			results[i] = result
			reports[i] = report
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return results, reports, nil
}

// outputPaths maps every input to <dir>/<base><suffix>.csv. Two inputs
// writing the same output, or an output that is also an input, is an error:
// the files would overwrite each other and share a metrics series label.
func outputPaths(cfg *pipeline.Config, inputs []string) ([]string, error) {
	sources := make(map[string]string, len(inputs))
	for _, input := range inputs {
		if prev, ok := sources[abs(input)]; ok {
			return nil, fmt.Errorf("input %s given twice (as %s and %s)", abs(input), prev, input)
		}
		sources[abs(input)] = input
	}

	outputs := make([]string, len(inputs))
	written := make(map[string]string, len(inputs))
	for i, input := range inputs {
		output := filepath.Join(cfg.Output.Dir, seriesName(input)+cfg.Output.Suffix+".csv")
		key := abs(output)
		if src, ok := sources[key]; ok {
			return nil, fmt.Errorf("%s: output %s would overwrite input %s", input, output, src)
		}
		if prev, ok := written[key]; ok {
			return nil, fmt.Errorf("%s and %s would both write %s", prev, input, output)
		}
		written[key] = input
		outputs[i] = output
	}
	return outputs, nil
}

func seriesName(input string) string {
	return strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
}

func cleanFile(ctx context.Context, p *pipeline.Pipeline, cfg *pipeline.Config, input, output string) (FileResult, *pipeline.Report, error) {
	series, err := timeseries.LoadCSV(input, cfg.Input.CSVOptions())
	if err != nil {
		return FileResult{}, nil, fmt.Errorf("load: %w", err)
	}

	cleaned, report, err := p.Run(ctx, series)
	if err != nil {
		return FileResult{}, nil, err
	}

	report.Series = seriesName(input)

	if err := timeseries.SaveCSV(cleaned, output); err != nil {
		return FileResult{}, nil, fmt.Errorf("save: %w", err)
	}

	result := FileResult{
		Input:    input,
		Output:   output,
		RunID:    report.RunID.String(),
		Rows:     report.Input,
		Kept:     report.Output,
		Removed:  report.Removed(),
		Fraction: report.RemovedFraction(),

		MissingIn:  report.InputSummary.Missing,
		MissingOut: report.OutputSummary.Missing,
		Min:        finite(report.OutputSummary.Min),
		Max:        finite(report.OutputSummary.Max),
		Mean:       finite(report.OutputSummary.Mean),
	}
	for _, sr := range report.Steps {
		result.Steps = append(result.Steps, StepResult{Name: sr.Name, Type: sr.Type, Removed: sr.Removed()})
	}
	return result, report, nil
}

func writeSummary(path string, results []FileResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func abs(path string) string {
	if a, err := filepath.Abs(path); err == nil {
		return a
	}
	return filepath.Clean(path)
}
