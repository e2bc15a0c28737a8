package filter

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/sartorproj/sensorclean/timeseries"
)

func TestRateOfRise(t *testing.T) {
	out, err := RateOfRise(timeseries.New([]float64{0, 1, 100, 101}), RateOptions{Threshold: 50})
	if err != nil {
		t.Fatalf("RateOfRise failed: %v", err)
	}
	// Row 3 is compared with row 2 of the input, not with the surviving row 1.
	assertValues(t, out, []float64{0, 1, 101})
}

func TestRateOfRiseUsesElapsedSeconds(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := timeseries.NewEvenlySpaced(base, time.Minute, []float64{0, 30, 90, 100})

	// Rates per second: 0, 0.5, 1, 0.1667.
	out, err := RateOfRise(s, RateOptions{Threshold: 1})
	if err != nil {
		t.Fatalf("RateOfRise failed: %v", err)
	}
	assertValues(t, out, []float64{0, 30, 100})
}

func TestRateOfRiseStrictThreshold(t *testing.T) {
	out, err := RateOfRise(timeseries.New([]float64{0, 5, 5}), RateOptions{Threshold: 5})
	if err != nil {
		t.Fatalf("RateOfRise failed: %v", err)
	}
	assertValues(t, out, []float64{0, 5})
}

func TestRateOfRiseDuplicateTimestamp(t *testing.T) {
	s := timeseries.New([]float64{1, 1, 1, 1})
	s.Timestamps[2] = s.Timestamps[1]

	out, err := RateOfRise(s, RateOptions{Threshold: 1000})
	if err != nil {
		t.Fatalf("RateOfRise failed: %v", err)
	}
	// Zero elapsed time is an infinite rate even with no change in value.
	assertValues(t, out, []float64{1, 1, 1})
	if !out.Timestamps[2].Equal(s.Timestamps[3]) {
		t.Error("Expected the row with the duplicated timestamp to be dropped")
	}
}

func TestRateOfRiseMissingValue(t *testing.T) {
	out, err := RateOfRise(timeseries.New([]float64{1, math.NaN(), 500}), RateOptions{Threshold: 10})
	if err != nil {
		t.Fatalf("RateOfRise failed: %v", err)
	}
	assertValues(t, out, []float64{1, math.NaN(), 500})
}

func TestRates(t *testing.T) {
	s := timeseries.New([]float64{4, 2, 2, 8})
	s.Timestamps[3] = s.Timestamps[2].Add(-time.Second)

	rates := Rates(s.Values, s.Timestamps)

	if rates[0] != 0 || rates[1] != 2 || rates[2] != 0 {
		t.Errorf("Unexpected rates %v", rates)
	}
	if !math.IsInf(rates[3], 1) {
		t.Errorf("Expected +Inf for out-of-order timestamp, got %f", rates[3])
	}
}

func TestRateOfRiseInvalidOptions(t *testing.T) {
	s := timeseries.New([]float64{1, 2})

	if _, err := RateOfRise(s, RateOptions{}); !errors.Is(err, ErrInvalidThreshold) {
		t.Errorf("Expected ErrInvalidThreshold, got %v", err)
	}

	s.Timestamps = s.Timestamps[:1]
	if _, err := RateOfRise(s, RateOptions{Threshold: 1}); !errors.Is(err, ErrMisaligned) {
		t.Errorf("Expected ErrMisaligned for missing timestamps, got %v", err)
	}
}
