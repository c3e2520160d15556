package template

import (
	"errors"
	"fmt"
)

// Error is returned for templates that cannot be rendered: syntax errors,
// calls to unknown helpers and unknown faker generators.
type Error struct {
	// Offset is the byte offset of the failing expression in the template.
	Offset int
	Msg    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("template error at offset %d: %s", e.Offset, e.Msg)
}

// IsError reports whether err is (or wraps) a *Error.
func IsError(err error) bool {
	var te *Error
	return errors.As(err, &te)
}

func errorf(offset int, format string, args ...any) *Error {
	return &Error{Offset: offset, Msg: fmt.Sprintf(format, args...)}
}
