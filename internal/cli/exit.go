package cli

import (
	"errors"
	"fmt"
)

// Exit codes of the jv command.
const (
	exitValid   = 0
	exitInvalid = 1 // some instance does not conform
	exitSchema  = 2 // schema failed to compile
	exitUsage   = 3 // bad flags or config, unreadable instance
)

// ExitError is an error that carries a specific process exit code.
// Cobra's RunE returns this to signal the desired exit code to main.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// exitError creates a new ExitError with the given code and formatted message.
func exitError(code int, format string, args ...any) *ExitError {
	return &ExitError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Code maps err returned by the root command to a process exit code.
// Errors other than ExitError come from cobra's argument checks.
func Code(err error) int {
	if err == nil {
		return exitValid
	}
	var e *ExitError
	if errors.As(err, &e) {
		return e.Code
	}
	return exitUsage
}
