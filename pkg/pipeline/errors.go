package pipeline

import (
	"errors"
	"fmt"
)

// Error categories for items that are skipped rather than aborting a run.
var (
	// ErrMalformed marks a file or line that does not parse.
	ErrMalformed = errors.New("malformed input")
	// ErrMissingField marks a record lacking a required field.
	ErrMissingField = errors.New("missing field")
)

// MissingFieldError names the absent field.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string { return fmt.Sprintf("missing key %q", e.Field) }

func (e *MissingFieldError) Unwrap() error { return ErrMissingField }
