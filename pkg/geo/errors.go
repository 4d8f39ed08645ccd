package geo

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCoordinate  = errors.New("coordinate out of range")
	ErrInvalidBox         = errors.New("invalid bounding box")
	ErrDegeneratePolygon  = errors.New("degenerate polygon")
	ErrAntimeridian       = errors.New("bounding box crosses the antimeridian")
	ErrInvalidArea        = errors.New("invalid area")
	ErrInvalidBucketEdges = errors.New("invalid bucket edges")
)

// ValidationError reports input rejected before any computation runs
type ValidationError struct {
	Field  string
	Value  float64
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s=%g: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(kind error, field string, value float64, reason string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason, Err: kind}
}

// ComputationError reports a non-finite result on input that passed validation
type ComputationError struct {
	Op  string
	Err error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ComputationError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is (or wraps) a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
