// Package apperr is the error taxonomy shared by the policy, services and
// repositories. Callers wrap these sentinels with fmt.Errorf("%w: ...") to add
// detail; pkg/resp maps them to HTTP status codes.
package apperr

import "errors"

var (
	ErrUnauthenticated     = errors.New("authentication credentials were not provided")
	ErrForbidden           = errors.New("you do not have permission to perform this action")
	ErrNotFound            = errors.New("not found")
	ErrInvalidPatch        = errors.New("invalid fields for this role")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrConflictRetry       = errors.New("concurrent update, retry the request")
	ErrConstraintViolation = errors.New("constraint violation")
)

// Code returns a short machine readable code for err, or "internal_error".
func Code(err error) string {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidPatch):
		return "invalid_patch"
	case errors.Is(err, ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, ErrConflictRetry):
		return "conflict_retry"
	case errors.Is(err, ErrConstraintViolation):
		return "constraint_violation"
	default:
		return "internal_error"
	}
}
