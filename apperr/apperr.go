package apperr

import (
	"errors"
	"net/http"
)

// Sentinel errors for the failure taxonomy. Business code wraps them with
// fmt.Errorf("%w: ...") and handlers translate them to HTTP statuses.
var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrExternalService  = errors.New("external service error")
)

// HTTPStatus maps a domain error to a response status code.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInvalidOperation):
		return http.StatusConflict
	case errors.Is(err, ErrExternalService):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
