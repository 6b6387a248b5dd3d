package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParams indicates a run parameter outside its valid range.
	ErrInvalidParams = errors.New("engine: invalid run parameters")

	// ErrSourceIndex indicates a cell referencing a source that does not exist.
	ErrSourceIndex = errors.New("engine: cell references unknown source")

	// ErrPhase indicates an operation called in the wrong phase.
	ErrPhase = errors.New("engine: operation not allowed in current phase")
)

// StepError wraps a failure with the step it happened on.
type StepError struct {
	Step    int
	Time    float32
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%g): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
