package audio

import (
	"errors"
	"fmt"
)

// Classification of audio input failures. Both are client-input errors:
// the caller supplied a payload that could not be turned into a usable
// signal.
var (
	// ErrDecode indicates the base64 payload was malformed or too short
	ErrDecode = errors.New("invalid base64 audio payload")

	// ErrAudioLoad indicates the decoded bytes could not be parsed as
	// audio, or the audio was shorter than the minimum duration
	ErrAudioLoad = errors.New("unable to load audio")
)

// LoadError carries the failing pipeline operation alongside the
// underlying cause.
type LoadError struct {
	Op  string // operation that caused the error
	Err error  // underlying error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("audio %s: %v", e.Op, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func newLoadError(op string, err error) *LoadError {
	return &LoadError{Op: op, Err: err}
}
