package interp

import "fmt"

// ExitRequest is returned as an error when the shell must terminate: the
// exit builtin, set -e, a fatal expansion error, or a special builtin
// failure in a non-interactive shell. It unwinds execution up to Run.
type ExitRequest struct {
	Status int
	Cause  error
}

func (e *ExitRequest) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return fmt.Sprintf("exit %d", e.Status)
}

func (e *ExitRequest) Unwrap() error {
	return e.Cause
}

// ReadonlyError reports an assignment or unset of a readonly variable.
type ReadonlyError struct {
	Name string
}

func (e *ReadonlyError) Error() string {
	return e.Name + ": readonly variable"
}

// RedirectionError reports a redirection that could not be applied. The
// command it belongs to is skipped; only special builtins treat it as
// fatal.
type RedirectionError struct {
	Err error
}

func (e *RedirectionError) Error() string {
	return e.Err.Error()
}

func (e *RedirectionError) Unwrap() error {
	return e.Err
}

// NoClobberError reports a > redirection refused because the target exists
// and noclobber is set.
type NoClobberError struct {
	Name string
}

func (e *NoClobberError) Error() string {
	return "cannot overwrite existing file " + e.Name
}

// NotFoundError reports a command that could not be located on PATH.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return e.Name + ": command not found"
}
