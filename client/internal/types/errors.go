package types

import (
	"errors"
	"fmt"
)

// ------------------------------
// Shared Errors
// ------------------------------

// Kind classifies why a style operation did not succeed.
type Kind int

const (
	// KindValidation marks a request rejected before any network call.
	KindValidation Kind = iota + 1
	// KindConflict marks a style that already exists (publish) or is missing
	// (update, remove).
	KindConflict
	// KindOperation marks a remote call that failed or returned no response.
	KindOperation
)

var (
	ErrValidation = errors.New("invalid style request")
	ErrConflict   = errors.New("style conflict")
	ErrOperation  = errors.New("style operation failed")
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindOperation:
		return "operation"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindConflict:
		return ErrConflict
	case KindOperation:
		return ErrOperation
	}
	return nil
}

// StyleError reports a failed style operation together with its cause.
type StyleError struct {
	Op        string // publish, update, remove
	Style     string
	Workspace string
	Kind      Kind
	Msg       string
	Err       error
}

func (e *StyleError) Error() string {
	msg := fmt.Sprintf("%s style %q: %s", e.Op, e.Style, e.Msg)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StyleError) Unwrap() error { return e.Err }

// Is lets errors.Is match a StyleError against ErrValidation, ErrConflict or
// ErrOperation according to its Kind.
func (e *StyleError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// NewStyleError builds a StyleError of the given kind.
func NewStyleError(kind Kind, op, style, workspace, msg string, cause error) *StyleError {
	return &StyleError{Op: op, Style: style, Workspace: workspace, Kind: kind, Msg: msg, Err: cause}
}

// KindOf returns the Kind carried by err, or 0 when err is not a StyleError.
func KindOf(err error) Kind {
	var se *StyleError
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}
