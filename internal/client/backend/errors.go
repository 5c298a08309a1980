package backend

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable        = errors.New("backend unavailable")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")
	ErrRejected           = errors.New("request rejected")
)

// APIError is an error response returned by the backend.
type APIError struct {
	Status  int
	Code    string
	Message string

	kind error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("backend returned status %d", e.Status)
}

// Unwrap exposes the sentinel the response was classified as. Errors built
// without a classification are classified from Status and Code.
func (e *APIError) Unwrap() error {
	if e.kind == nil {
		return classify(e.Status, e.Code)
	}
	return e.kind
}

// Message returns the backend's message carried by err, falling back to
// err's own text.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
