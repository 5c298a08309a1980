package services

import (
	"errors"

	"github.com/eduxperience/eduxperience/internal/client/credentials"
)

// Failure taxonomy of the client flows. Every one of them is recoverable:
// the user retries, or the failure is tolerated and reported.
var (
	ErrInvalidCredentials           = errors.New("invalid email or password")
	ErrEmailUnverified              = errors.New("email address not verified")
	ErrBackendUnavailable           = errors.New("service temporarily unavailable")
	ErrStorageUnavailable           = credentials.ErrStorageUnavailable
	ErrUnknownRole                  = errors.New("unknown role")
	ErrProfileMaterializationFailed = errors.New("profile materialization failed")
	ErrResendFailed                 = errors.New("resend verification failed")
	ErrInvalidSignUp                = errors.New("invalid sign-up")
	ErrAccountExists                = errors.New("account already exists")
	ErrNotSignedIn                  = errors.New("not signed in")
)

// ResendError reports a failed verification resend. Reason is the
// backend's message, unaltered.
type ResendError struct {
	Reason string
	Err    error
}

func (e *ResendError) Error() string {
	return ErrResendFailed.Error() + ": " + e.Reason
}

func (e *ResendError) Is(target error) bool { return target == ErrResendFailed }

func (e *ResendError) Unwrap() error { return e.Err }
