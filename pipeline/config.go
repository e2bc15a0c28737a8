package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/sartorproj/sensorclean/timeseries"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultConcurrency = 1
	DefaultOutputDir   = "."
	DefaultSuffix      = "_clean"
)

// Step types accepted in StepConfig.Type.
const (
	TypeThreshold            = "threshold"
	TypeDespike              = "despike"
	TypeDespikeMovingAverage = "despike_moving_average"
	TypeRateOfRise           = "rate_of_rise"
	TypeFlatline             = "flatline"
)

// Config is the top-level configuration of a cleaning run.
type Config struct {
	// Input controls how CSV files are read.
	Input InputConfig `yaml:"input"`

	// Output controls where cleaned CSV files are written.
	Output OutputConfig `yaml:"output"`

	// Metrics optionally writes a Prometheus textfile after the run.
	Metrics MetricsConfig `yaml:"metrics"`

	// Concurrency is the number of input files cleaned at once.
	Concurrency int `yaml:"concurrency"`

	// Steps are applied in order to every input.
	Steps []StepConfig `yaml:"steps"`
}

// InputConfig maps onto timeseries.CSVOptions.
type InputConfig struct {
	ValueColumn string `yaml:"value_column"`
	DateColumn  string `yaml:"date_column"`
	DateFormat  string `yaml:"date_format"`
	Delimiter   string `yaml:"delimiter"`
	SkipRows    int    `yaml:"skip_rows"`
	KeepColumns bool   `yaml:"keep_columns"`
	SkipMissing bool   `yaml:"skip_missing"`
}

// OutputConfig holds the cleaned-file destination.
type OutputConfig struct {
	Dir    string `yaml:"dir"`
	Suffix string `yaml:"suffix"`
}

// MetricsConfig holds the metrics textfile destination. An empty Path
// disables metrics output.
type MetricsConfig struct {
	Path string `yaml:"path"`
}

// StepConfig describes one filter in the pipeline. Which fields apply
// depends on Type.
type StepConfig struct {
	// Type is one of: threshold | despike | despike_moving_average |
	// rate_of_rise | flatline.
	Type string `yaml:"type"`

	// Name labels the step in logs and metrics. Defaults to Type.
	Name string `yaml:"name"`

	// Field selects the value column; empty means the primary column.
	Field string `yaml:"field"`

	// Threshold bounds, used by threshold.
	Min    *float64      `yaml:"min"`
	Max    *float64      `yaml:"max"`
	Exempt *WindowConfig `yaml:"exempt"`

	// Threshold is the spike or rate limit, used by the despike and
	// rate_of_rise steps.
	Threshold float64 `yaml:"threshold"`

	// Radius overrides the neighbourhood radius of despike (default 1).
	Radius int `yaml:"radius"`

	// MaxRun is the flatline run length (default 10).
	MaxRun int `yaml:"max_run"`
}

// WindowConfig is an inclusive time range in RFC 3339 form.
type WindowConfig struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// Bounds parses the window.
func (w WindowConfig) Bounds() (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339Nano, w.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("exempt.start: %w", err)
	}
	end, err := time.Parse(time.RFC3339Nano, w.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("exempt.end: %w", err)
	}
	return start, end, nil
}

// CSVOptions converts the input section to loader options.
func (c InputConfig) CSVOptions() *timeseries.CSVOptions {
	opts := timeseries.DefaultCSVOptions()
	if c.ValueColumn != "" {
		opts.ValueColumn = c.ValueColumn
	}
	if c.DateFormat != "" {
		opts.DateFormat = c.DateFormat
	}
	if c.Delimiter != "" {
		opts.Delimiter, _ = utf8.DecodeRuneInString(c.Delimiter)
	}
	opts.DateColumn = c.DateColumn
	opts.SkipRows = c.SkipRows
	opts.KeepColumns = c.KeepColumns
	opts.SkipMissing = c.SkipMissing
	return opts
}

// Load reads a YAML config file, expands ${VAR} environment references,
// applies defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse([]byte(os.ExpandEnv(string(data))))
}

// Parse decodes a YAML config, applies defaults and validates it. Unknown
// keys are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("parse config yaml: empty document")
		}
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Concurrency == 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.Output.Dir == "" {
		c.Output.Dir = DefaultOutputDir
	}
	if c.Output.Suffix == "" {
		c.Output.Suffix = DefaultSuffix
	}
	for i := range c.Steps {
		if c.Steps[i].Name == "" {
			c.Steps[i].Name = c.Steps[i].Type
		}
	}
}

// Validate checks that all required fields are set and every step can be
// built.
func (c *Config) Validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be >= 1, got %d", c.Concurrency)
	}
	if c.Input.SkipRows < 0 {
		return fmt.Errorf("input.skip_rows must be >= 0, got %d", c.Input.SkipRows)
	}
	if utf8.RuneCountInString(c.Input.Delimiter) > 1 {
		return fmt.Errorf("input.delimiter must be a single character, got %q", c.Input.Delimiter)
	}
	if len(c.Steps) == 0 {
		return errors.New("at least one step is required")
	}

	seen := make(map[string]int, len(c.Steps))
	for i, sc := range c.Steps {
		if j, dup := seen[sc.Name]; dup {
			return fmt.Errorf("steps[%d].name %q duplicates steps[%d]", i, sc.Name, j)
		}
		seen[sc.Name] = i

		if _, err := StepFromConfig(sc); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}
	return nil
}
