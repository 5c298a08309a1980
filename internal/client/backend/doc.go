// Package backend is the client's view of the hosted EduXperience backend:
// an auth service (sign-up, sign-in, verification resend, current user) and
// a row-level data API (user roles, profiles).
//
// # Error Handling
//
// Failures are reported as sentinel errors that callers match with
// errors.Is: ErrUnavailable, ErrUnauthorized, ErrInvalidCredentials,
// ErrEmailNotConfirmed, ErrNotFound, ErrConflict and ErrRejected. Errors
// that came from a backend response also carry an *APIError with the
// backend's own message, to be shown to the user as is.
//
// No call is ever retried. Timeouts are the transport's own.
package backend
