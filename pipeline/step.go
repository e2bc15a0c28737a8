package pipeline

import (
	"errors"
	"fmt"

	"github.com/sartorproj/sensorclean/filter"
	"github.com/sartorproj/sensorclean/timeseries"
)

// Step is one stage of a pipeline.
type Step interface {
	Name() string
	Type() string
	Apply(s *timeseries.Series) (*timeseries.Series, error)
}

type filterStep struct {
	name  string
	kind  string
	apply func(*timeseries.Series) (*timeseries.Series, error)
}

func (f *filterStep) Name() string { return f.name }
func (f *filterStep) Type() string { return f.kind }

func (f *filterStep) Apply(s *timeseries.Series) (*timeseries.Series, error) {
	return f.apply(s)
}

// Named returns step under a different name.
func Named(name string, step Step) Step {
	return &filterStep{name: name, kind: step.Type(), apply: step.Apply}
}

// ThresholdStep returns a step running filter.Threshold.
func ThresholdStep(opts filter.ThresholdOptions) (Step, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &filterStep{
		name: TypeThreshold,
		kind: TypeThreshold,
		apply: func(s *timeseries.Series) (*timeseries.Series, error) {
			return filter.Threshold(s, opts)
		},
	}, nil
}

// DespikeStep returns a step running filter.DespikeWindow with radius k.
// Radius 1 and 6 report the despike and despike_moving_average types.
func DespikeStep(k int, opts filter.DespikeOptions) (Step, error) {
	if err := filter.ValidateRadius(k); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	kind := TypeDespike
	if k == filter.LongRadius {
		kind = TypeDespikeMovingAverage
	}
	return &filterStep{
		name: kind,
		kind: kind,
		apply: func(s *timeseries.Series) (*timeseries.Series, error) {
			return filter.DespikeWindow(s, k, opts)
		},
	}, nil
}

// RateOfRiseStep returns a step running filter.RateOfRise.
func RateOfRiseStep(opts filter.RateOptions) (Step, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &filterStep{
		name: TypeRateOfRise,
		kind: TypeRateOfRise,
		apply: func(s *timeseries.Series) (*timeseries.Series, error) {
			return filter.RateOfRise(s, opts)
		},
	}, nil
}

// FlatlineStep returns a step running filter.Flatline.
func FlatlineStep(opts filter.FlatlineOptions) (Step, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &filterStep{
		name: TypeFlatline,
		kind: TypeFlatline,
		apply: func(s *timeseries.Series) (*timeseries.Series, error) {
			return filter.Flatline(s, opts)
		},
	}, nil
}

// StepFromConfig builds the step described by sc.
func StepFromConfig(sc StepConfig) (Step, error) {
	var (
		step Step
		err  error
	)

	switch sc.Type {
	case TypeThreshold:
		opts := filter.ThresholdOptions{Field: sc.Field, Min: sc.Min, Max: sc.Max}
		if sc.Exempt != nil {
			start, end, perr := sc.Exempt.Bounds()
			if perr != nil {
				return nil, perr
			}
			opts.Exempt = &filter.Window{Start: start, End: end}
		}
		step, err = ThresholdStep(opts)
	case TypeDespike:
		radius := sc.Radius
		if radius == 0 {
			radius = filter.ShortRadius
		}
		step, err = DespikeStep(radius, filter.DespikeOptions{Field: sc.Field, Threshold: sc.Threshold})
	case TypeDespikeMovingAverage:
		if sc.Radius != 0 && sc.Radius != filter.LongRadius {
			return nil, fmt.Errorf("radius is fixed at %d for %s", filter.LongRadius, sc.Type)
		}
		step, err = DespikeStep(filter.LongRadius, filter.DespikeOptions{Field: sc.Field, Threshold: sc.Threshold})
	case TypeRateOfRise:
		step, err = RateOfRiseStep(filter.RateOptions{Field: sc.Field, Threshold: sc.Threshold})
	case TypeFlatline:
		step, err = FlatlineStep(filter.FlatlineOptions{Field: sc.Field, MaxRun: sc.MaxRun})
	case "":
		return nil, errors.New("type is required")
	default:
		return nil, fmt.Errorf("unknown step type %q", sc.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sc.Type, err)
	}

	if sc.Name != "" && sc.Name != step.Name() {
		step = Named(sc.Name, step)
	}
	return step, nil
}
