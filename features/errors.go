package features

import (
	"errors"
	"fmt"
)

// ErrExtraction indicates an underlying transform could not be computed,
// for example a signal shorter than one analysis frame. Unlike the audio
// package errors this is an internal processing fault: the input already
// passed load validation.
var ErrExtraction = errors.New("feature extraction failed")

// ExtractionError carries the failing feature group alongside the
// underlying cause.
type ExtractionError struct {
	Feature string // feature group being computed
	Err     error  // underlying error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Feature, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

func newExtractionError(feature string, err error) *ExtractionError {
	return &ExtractionError{Feature: feature, Err: fmt.Errorf("%w: %v", ErrExtraction, err)}
}
