package hanoi

import (
	"errors"
	"fmt"
)

// ErrInvalidOperation is matched by every InvalidOperationError.
var ErrInvalidOperation = errors.New("invalid operation")

// InvalidOperationError reports a move that cannot be applied to a state.
type InvalidOperationError struct {
	Move   Move
	Reason string
}

func (e *InvalidOperationError) Error() string {
	return fmt.Sprintf("invalid operation %s: %s", e.Move, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidOperation) succeed.
func (e *InvalidOperationError) Is(target error) bool {
	return target == ErrInvalidOperation
}

func invalid(m Move, format string, args ...any) error {
	return &InvalidOperationError{Move: m, Reason: fmt.Sprintf(format, args...)}
}
