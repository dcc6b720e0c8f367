// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/odyssey-erp/masterdesk/internal/backend"
)

// Sentinel errors for handlers.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
)

// RespondError maps errors to HTTP responses using RFC7807. Backend failures
// keep the backend's first message.
func RespondError(w http.ResponseWriter, err error) {
	var apiErr *backend.APIError
	switch {
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrUnauthorized), backend.IsUnauthorized(err):
		Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
	case errors.Is(err, backend.ErrUnavailable):
		Problem(w, http.StatusBadGateway, "Backend Unavailable", "cannot connect to the data service")
	case errors.As(err, &apiErr):
		Problem(w, http.StatusUnprocessableEntity, "Rejected", apiErr.Message)
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
