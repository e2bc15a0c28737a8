package filter

import (
	"errors"
	"fmt"

	"github.com/sartorproj/sensorclean/timeseries"
)

// Errors returned for invalid filter parameters. Filters wrap them with
// context; test with errors.Is.
var (
	ErrNilSeries        = errors.New("filter: nil series")
	ErrMisaligned       = errors.New("filter: series columns are not row-aligned")
	ErrNoBounds         = errors.New("filter: at least one of min or max is required")
	ErrInvalidBounds    = errors.New("filter: invalid bounds")
	ErrInvalidWindow    = errors.New("filter: invalid exempt window")
	ErrInvalidThreshold = errors.New("filter: threshold must be a positive number")
	ErrInvalidRadius    = errors.New("filter: window radius must be >= 1")
	ErrWindowTooLarge   = errors.New("filter: window radius larger than available data")
	ErrInvalidRunLength = errors.New("filter: max run must be >= 2")
)

func checkSeries(s *timeseries.Series) error {
	if s == nil {
		return ErrNilSeries
	}
	if err := s.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrMisaligned, err)
	}
	return nil
}
