package debate

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrDebateNotFound is returned when an operation targets an unknown id.
	ErrDebateNotFound = errors.New("debate not found")
	// ErrDebateExists is returned when creating an id that is already taken.
	ErrDebateExists = errors.New("debate already exists")
	// ErrDebateClosed is returned when mutating a completed or failed debate.
	ErrDebateClosed = errors.New("debate is closed")
	// ErrStatusRegression is returned when a status update would move backwards.
	ErrStatusRegression = errors.New("debate status cannot move backwards")
)

// PreconditionError reports that a phase cannot start with the current
// state, e.g. topic analysis did not yield a pro and a con position.
type PreconditionError struct {
	Phase  Status
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition failed before %s: %s", e.Phase, e.Reason)
}

// TimeoutError reports that a phase did not finish within its bound.
type TimeoutError struct {
	Phase Status
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("phase %s timed out after %s", e.Phase, e.After)
}

// GenerationError wraps a failed generation call.
type GenerationError struct {
	Phase Status
	Step  string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed in %s (%s): %v", e.Phase, e.Step, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
