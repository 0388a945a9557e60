package xip

import "fmt"

// ValidationError reports a violation of a catalog invariant: a dangling
// reference, an absolute bitstream path, an unsupported fixity algorithm, or
// an invalid representation type. The catalog is left unchanged when one of
// these is returned.
type ValidationError struct {
	Op  string
	Msg string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("xip: %s: %s", e.Op, e.Msg)
}

func validationErrorf(op, format string, args ...any) *ValidationError {
	return &ValidationError{Op: op, Msg: fmt.Sprintf(format, args...)}
}
