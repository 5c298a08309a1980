package cli

import (
	"errors"

	"github.com/eduxperience/eduxperience/internal/client/backend"
	"github.com/eduxperience/eduxperience/internal/client/services"
)

// userMessage turns a service error into the line shown to the user.
func userMessage(err error) string {
	var resendErr *services.ResendError

	switch {
	case errors.As(err, &resendErr):
		return "Could not resend the verification email: " + resendErr.Reason
	case errors.Is(err, services.ErrEmailUnverified):
		return "Your email address is not verified yet. Type 'resend' to get a new verification link."
	case errors.Is(err, services.ErrInvalidCredentials):
		return "Invalid email or password."
	case errors.Is(err, services.ErrUnknownRole):
		return "Your account has no dashboard assigned. Please contact support."
	case errors.Is(err, services.ErrAccountExists):
		return "An account with this email already exists."
	case errors.Is(err, services.ErrInvalidSignUp):
		return "Sign-up rejected: " + backend.Message(err)
	case errors.Is(err, services.ErrNotSignedIn):
		return "You are not signed in."
	case errors.Is(err, services.ErrProfileMaterializationFailed):
		return "Warning: your profile could not be created yet, it will be retried on next login."
	case errors.Is(err, services.ErrStorageUnavailable):
		return "Warning: remembered logins on this device could not be updated."
	case errors.Is(err, services.ErrBackendUnavailable):
		return "The service is temporarily unavailable. Please try again."
	default:
		return err.Error()
	}
}
