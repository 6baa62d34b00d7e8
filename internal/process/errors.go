package process

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyRegistry reports an operation that needs at least one entry.
	ErrEmptyRegistry = errors.New("registry is empty")
	// ErrNotFound reports an ID with no matching registry entry.
	ErrNotFound = errors.New("process not found")
	// ErrAlreadyTracked reports a name collision on add or import.
	ErrAlreadyTracked = errors.New("process already tracked")
	// ErrSingleEntry reports a move attempted on a one-entry registry.
	ErrSingleEntry = errors.New("registry has a single entry")
	// ErrAtExtreme reports a move toward an end the entry already occupies.
	ErrAtExtreme = errors.New("process already at requested position")
	// ErrInvalidInput reports a malformed duration, date or ID-set expression.
	ErrInvalidInput = errors.New("invalid input")
)

// Error carries a user-facing message while still matching a sentinel via
// errors.Is.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
