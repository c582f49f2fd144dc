package client

import (
	"errors"

	gserrors "github.com/dcfaria/GeoServer/client/internal/errors"
	"github.com/dcfaria/GeoServer/client/internal/types"
)

// Re-export shared SDK errors so callers compare against a single symbol.
var (
	ErrValidation = types.ErrValidation
	ErrConflict   = types.ErrConflict
	ErrOperation  = types.ErrOperation
)

// IsValidation reports whether err is an input validation failure.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsConflict reports whether err means the style already exists or is missing.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

// IsOperation reports whether err is a failed or unanswered remote call.
func IsOperation(err error) bool { return errors.Is(err, ErrOperation) }

// StatusCode returns the HTTP status GeoServer answered with, or 0 when err
// carries none.
func StatusCode(err error) int { return gserrors.StatusCode(err) }

// IsTransient reports whether the remote failure behind err might not repeat
// (5xx, 408, 429, network faults). The client itself never retries.
func IsTransient(err error) bool {
	var ce *gserrors.ClassifiedError
	if !errors.As(err, &ce) {
		return false
	}
	return ce.Category == gserrors.Recoverable
}
