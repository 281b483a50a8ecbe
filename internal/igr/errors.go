package igr

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownFunction is returned when a function name is not registered.
	ErrUnknownFunction = errors.New("unknown function")
	// ErrDuplicateFunction is returned when a function name is registered twice.
	ErrDuplicateFunction = errors.New("duplicate function")
)

// InvariantError reports a broken graph invariant. It signals a bug in the
// compiler rather than in the compiled program and is raised with panic.
type InvariantError struct {
	Msg string
}

func (e InvariantError) Error() string {
	return "igr: invariant violated: " + e.Msg
}

func invariant(format string, args ...any) {
	panic(InvariantError{Msg: fmt.Sprintf(format, args...)})
}
