package services

import (
	"errors"
	"fmt"
)

// Workflow error kinds. Controllers translate these to HTTP statuses;
// services wrap them with detail via %w so errors.Is keeps matching.
var (
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrNotFound               = errors.New("not found")
	ErrForbidden              = errors.New("forbidden")
	ErrConflict               = errors.New("conflict")
	ErrNotEligible            = errors.New("not eligible")
	ErrAlreadyFinalized       = errors.New("review already finalized")
	ErrAwaitingAuthorRevision = errors.New("awaiting author revision")
	ErrPreconditionFailed     = errors.New("precondition failed")
)

// ErrorCode returns the machine-readable code for a workflow error, or ""
// when err is not one of the workflow kinds.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrNotEligible):
		return "not_eligible"
	case errors.Is(err, ErrAlreadyFinalized):
		return "already_finalized"
	case errors.Is(err, ErrAwaitingAuthorRevision):
		return "awaiting_author_revision"
	case errors.Is(err, ErrPreconditionFailed):
		return "precondition_failed"
	default:
		return ""
	}
}

func invalidArgumentf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalidArgument}, args...)...)
}
