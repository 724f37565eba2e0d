package cli

import (
	"errors"
	"fmt"

	"github.com/thenoetrevino/kanbot/internal/board"
)

// Exit codes for CLI commands.
// These codes follow Unix conventions and provide consistent error reporting
// across all CLI commands.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitError indicates a general error occurred.
	// Use for: Database errors, daemon errors, unexpected failures,
	// or any error that doesn't fit the specific categories below.
	ExitError = 1

	// ExitUsage indicates incorrect command usage.
	// Use for: Missing required flags or malformed flag values.
	ExitUsage = 2

	// ExitNotFound indicates a requested resource was not found.
	// Use for: Unknown board, list, card, label, checklist or item ids.
	ExitNotFound = 3

	// ExitDataErr indicates invalid or malformed data.
	// Use for: A stored board state that fails verification.
	ExitDataErr = 4

	// ExitValidation indicates a validation error.
	// Use for: Invalid status, provider, color, empty names, or any input
	// the engine rejects.
	ExitValidation = 5
)

// ExitCodeError carries the process exit code for a failed command.
// The error has already been reported to the user.
type ExitCodeError struct {
	Code int
	Err  error
}

func (e *ExitCodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitCodeError) Unwrap() error {
	return e.Err
}

// ExitCode maps an error to its exit code
func ExitCode(err error) int {
	var exitErr *ExitCodeError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &exitErr):
		return exitErr.Code
	case errors.Is(err, board.ErrNotFound):
		return ExitNotFound
	case errors.Is(err, board.ErrInvalidArgument):
		return ExitValidation
	case errors.Is(err, board.ErrCorruptState):
		return ExitDataErr
	default:
		return ExitError
	}
}

// ErrorCode maps an error to the code reported in JSON output
func ErrorCode(err error) string {
	switch ExitCode(err) {
	case ExitNotFound:
		return "NOT_FOUND"
	case ExitValidation:
		return "VALIDATION_ERROR"
	case ExitDataErr:
		return "CORRUPT_STATE"
	case ExitUsage:
		return "USAGE_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}
