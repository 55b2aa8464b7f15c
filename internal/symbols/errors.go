package symbols

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned when a required symbol, attribute or
	// root is nil.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnsupportedArgument is returned when a pointer-shaped type appears
	// as a generic argument.
	ErrUnsupportedArgument = errors.New("unsupported generic argument")
)

// TypeMismatchError is returned by typed lookups when the symbol at a path
// is not of the requested kind.
type TypeMismatchError struct {
	Path string
	Want Kind
	Got  Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("symbol %q is a %s, not a %s", e.Path, e.Got, e.Want)
}
