package cmdutil

import (
	"errors"
	"fmt"
)

// SilentError signals that a command already printed its own failure
// output. Main() exits 1 without printing anything further.
var SilentError = errors.New("SilentError")

// ExitError carries an explicit exit status out of a command. Returning
// it instead of calling os.Exit() lets deferred cleanup (log flush,
// Docker client close) run before the process ends.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// FlagError marks bad flags or arguments. Main() prints the message and
// the command's usage string, then exits 2 instead of 1.
type FlagError struct {
	err error
}

func (e *FlagError) Error() string { return e.err.Error() }
func (e *FlagError) Unwrap() error { return e.err }

// FlagErrorf creates a FlagError with a formatted message.
func FlagErrorf(format string, args ...any) error {
	return &FlagError{err: fmt.Errorf(format, args...)}
}

// FlagErrorWrap wraps an existing error, typically one returned by flag
// parsing, as a FlagError.
func FlagErrorWrap(err error) error {
	return &FlagError{err: err}
}
