package board

import (
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is to test an engine error against them.
var (
	// ErrNotFound means a referenced board, list, card, checklist or label does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument means the request is malformed or not allowed in the current state
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrCorruptState means a snapshot violates the ordering invariants
	ErrCorruptState = errors.New("corrupt board state")
)

// Error describes a failed engine operation
type Error struct {
	Op     string // Operation name, e.g. "moveCard"
	Kind   error  // One of the sentinel errors above
	Entity string // "card", "list", ... (NotFound only)
	ID     string // Offending identifier (NotFound only)
	Msg    string
}

func (e *Error) Error() string {
	if e.Kind == ErrNotFound {
		return fmt.Sprintf("%s: %s %q not found", e.Op, e.Entity, e.ID)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Msg)
}

// Unwrap exposes the error kind to errors.Is
func (e *Error) Unwrap() error {
	return e.Kind
}

func notFound[T ~string](op, entity string, id T) error {
	return &Error{Op: op, Kind: ErrNotFound, Entity: entity, ID: string(id)}
}

func invalidArgument(op, format string, args ...any) error {
	return &Error{Op: op, Kind: ErrInvalidArgument, Msg: fmt.Sprintf(format, args...)}
}

func corrupt(format string, args ...any) error {
	return &Error{Op: "verify", Kind: ErrCorruptState, Msg: fmt.Sprintf(format, args...)}
}

// IsNotFound reports whether err is a not-found engine error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidArgument reports whether err is an invalid-argument engine error
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}
