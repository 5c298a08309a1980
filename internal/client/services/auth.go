// Package services contains the application services of the EduXperience
// client: the session authenticator, the role router, the admin
// authenticator and the login flow that ties them to the credential store.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/eduxperience/eduxperience/internal/client/backend"
	"github.com/eduxperience/eduxperience/internal/client/models"
	"github.com/eduxperience/eduxperience/internal/client/pending"
	"github.com/eduxperience/eduxperience/internal/common"
	"github.com/eduxperience/eduxperience/internal/logging"
)

// AuthService performs credential exchange against the backend.
//
// Contract:
//   - SignIn: exactly one backend call, no retries; failures are classified
//     as ErrInvalidCredentials, ErrEmailUnverified or ErrBackendUnavailable.
//   - ResendVerification: asks the backend to send the sign-up confirmation
//     again; failures are *ResendError.
//   - SignUp: creates the account and stages the role's pending profile.
//   - CurrentUser: fetches the identity behind an access token.
//   - Ping: checks backend liveness.
type AuthService interface {
	SignIn(ctx context.Context, email, password string) (*models.Identity, error)
	ResendVerification(ctx context.Context, email string) error
	SignUp(ctx context.Context, req SignUpRequest) (*models.Identity, error)
	CurrentUser(ctx context.Context, accessToken string) (*models.Identity, error)
	Ping(ctx context.Context) error
}

// SignUpRequest is what the sign-up form collects.
type SignUpRequest struct {
	Email    string      `validate:"required,email"`
	Password string      `validate:"required,min=8,max=72"`
	Role     models.Role `validate:"required,oneof=student tutor institution"`
	// Profile is the draft profile created once the email is confirmed.
	Profile json.RawMessage
}

type authService struct {
	client   backend.Client
	pending  *pending.Store
	validate *validator.Validate
	log      logging.Logger
}

func NewAuthService(client backend.Client, pending *pending.Store, log logging.Logger) AuthService {
	return &authService{
		client:   client,
		pending:  pending,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log.With("module", "auth"),
	}
}

// SignIn exchanges credentials for an identity. Malformed credentials the
// backend rejects count as invalid credentials. A rejected password for an
// email that still has a staged profile means the account exists but was
// never confirmed, so it is reported as ErrEmailUnverified.
func (a *authService) SignIn(ctx context.Context, email, password string) (*models.Identity, error) {
	email = common.NormalizeEmail(email)

	id, err := a.client.SignIn(ctx, email, password)
	if err == nil {
		if id.Email == "" {
			id.Email = email
		}
		a.log.Info(ctx, "signed in", "email", email, "user_id", id.ID)
		return id, nil
	}

	switch {
	case errors.Is(err, backend.ErrInvalidCredentials), errors.Is(err, backend.ErrRejected):
		if a.pending.Exists(ctx, email) {
			return nil, fmt.Errorf("%w: %w", ErrEmailUnverified, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	case errors.Is(err, backend.ErrEmailNotConfirmed):
		return nil, fmt.Errorf("%w: %w", ErrEmailUnverified, err)
	default:
		a.log.Warn(ctx, "sign in failed", "email", email, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}
}

func (a *authService) ResendVerification(ctx context.Context, email string) error {
	email = common.NormalizeEmail(email)
	if err := a.client.Resend(ctx, backend.ResendSignup, email); err != nil {
		return &ResendError{Reason: backend.Message(err), Err: err}
	}
	a.log.Info(ctx, "verification resent", "email", email)
	return nil
}

func (a *authService) SignUp(ctx context.Context, req SignUpRequest) (*models.Identity, error) {
	req.Email = common.NormalizeEmail(req.Email)
	if err := a.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignUp, err)
	}
	if len(req.Profile) > 0 && !json.Valid(req.Profile) {
		return nil, fmt.Errorf("%w: profile is not valid JSON", ErrInvalidSignUp)
	}

	id, err := a.client.SignUp(ctx, req.Email, req.Password, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, backend.ErrConflict):
			return nil, fmt.Errorf("%w: %w", ErrAccountExists, err)
		case errors.Is(err, backend.ErrRejected):
			return nil, fmt.Errorf("%w: %w", ErrInvalidSignUp, err)
		default:
			return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
		}
	}

	if kind, ok := models.ProfileKindForRole(req.Role); ok {
		draft := models.PendingProfile{Kind: kind, Email: req.Email, Payload: req.Profile}
		if err := a.pending.Stage(ctx, draft); err != nil {
			return id, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
		}
	}

	a.log.Info(ctx, "signed up", "email", req.Email, "role", req.Role)
	return id, nil
}

func (a *authService) CurrentUser(ctx context.Context, accessToken string) (*models.Identity, error) {
	id, err := a.client.GetUser(ctx, accessToken)
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			return nil, fmt.Errorf("%w: %w", ErrNotSignedIn, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}
	return id, nil
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}
