package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrEngineCreation is matched by every engine creation failure.
	ErrEngineCreation = errors.New("engine creation failed")
	// ErrLibraryNotFound is returned when the engine library cannot be loaded.
	ErrLibraryNotFound = errors.New("engine library not found")
	// ErrNoFactory is returned when a handle has no way to create engines.
	ErrNoFactory = errors.New("no engine factory configured")
)

// CreationError describes a failed engine creation.
type CreationError struct {
	SampleRate uint32
	Cause      error
}

func (e *CreationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%v at %d Hz: %v", ErrEngineCreation, e.SampleRate, e.Cause)
	}
	return fmt.Sprintf("%v at %d Hz", ErrEngineCreation, e.SampleRate)
}

// Unwrap returns the underlying cause.
func (e *CreationError) Unwrap() error {
	return e.Cause
}

// Is makes errors.Is(err, ErrEngineCreation) hold for every CreationError.
func (e *CreationError) Is(target error) bool {
	return target == ErrEngineCreation
}
