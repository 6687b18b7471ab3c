package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrConfiguration indicates an unknown potential or ensemble name, or
	// malformed initial vectors.
	ErrConfiguration = errors.New("dynamo: configuration error")

	// ErrInvalidParameter indicates a parameter value is outside its valid range.
	ErrInvalidParameter = errors.New("dynamo: invalid parameter")

	// ErrInvalidState indicates an operation on a system that was never
	// initialized, or state vectors of mismatched length.
	ErrInvalidState = errors.New("dynamo: invalid state")

	// ErrIO indicates the record sink failed to accept a line.
	ErrIO = errors.New("dynamo: io error")
)

// SimulationError wraps an error with the step at which it happened.
type SimulationError struct {
	Step    int
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d: %v", e.Step, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

// Invalidf returns an ErrInvalidParameter carrying a formatted reason.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
}
