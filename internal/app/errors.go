package app

import (
	"errors"
	"fmt"
)

// AppError pairs an error with the process exit code it should produce.
// The CLI distinguishes invalid usage (2), a date or resource the service
// does not know (4), and an unreachable or failing service (6); anything
// else exits 1. Printed marks errors that were already rendered through the
// printer so Execute does not repeat them on stderr.
type AppError struct {
	Code    int
	Err     error
	Printed bool
}

func (e AppError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit %d", e.Code)
	}
	return e.Err.Error()
}

func (e AppError) Unwrap() error { return e.Err }

// Wrap attaches an exit code to err. A nil err stays nil so call sites can
// wrap unconditionally.
func Wrap(code int, err error) error {
	if err == nil {
		return nil
	}
	return AppError{Code: code, Err: err}
}

// WrapPrinted is Wrap for errors the command has already written to the
// user in the selected output mode.
func WrapPrinted(code int, err error) error {
	if err == nil {
		return nil
	}
	return AppError{Code: code, Err: err, Printed: true}
}

// ExitCode resolves err to a process exit code, unwrapping through
// fmt.Errorf chains to find the nearest AppError.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return 1
}
