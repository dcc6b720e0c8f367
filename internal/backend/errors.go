package backend

import (
	"errors"
	"net/http"
)

// ErrUnavailable reports that the API could not be reached.
var ErrUnavailable = errors.New("backend: cannot connect")

// APIError is a failure reported by the API itself.
type APIError struct {
	StatusCode int
	Message    string
	Messages   []string
}

func newAPIError(status int, messages []string, fallback string) *APIError {
	msg := fallback
	if len(messages) > 0 && messages[0] != "" {
		msg = messages[0]
	}
	return &APIError{StatusCode: status, Message: msg, Messages: messages}
}

func (e *APIError) Error() string {
	return e.Message
}

// Unauthorized reports whether the API rejected the bearer token.
func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsUnauthorized reports whether err is an API rejection of the token.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Unauthorized()
}

// Message returns the text shown to the user for err: the first backend
// message for API errors, unavailable for transport failures and fallback
// otherwise.
func Message(err error, unavailable, fallback string) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &apiErr):
		if len(apiErr.Messages) > 0 && apiErr.Messages[0] != "" {
			return apiErr.Messages[0]
		}
		return fallback
	case errors.Is(err, ErrUnavailable):
		return unavailable
	default:
		return fallback
	}
}
