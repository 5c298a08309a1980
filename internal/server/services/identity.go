// Package services contains server-side business logic. IdentityService
// handles sign-up, sign-in, email verification and profile creation, and
// issues the JWT access tokens the REST API accepts.
package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/eduxperience/eduxperience/internal/common"
	"github.com/eduxperience/eduxperience/internal/dbx"
	"github.com/eduxperience/eduxperience/internal/logging"
	"github.com/eduxperience/eduxperience/internal/server/auth"
	"github.com/eduxperience/eduxperience/internal/server/config"
	"github.com/eduxperience/eduxperience/internal/server/models"
	"github.com/eduxperience/eduxperience/internal/server/notifications"
	"github.com/eduxperience/eduxperience/internal/server/repositories/repomanager"
	"github.com/eduxperience/eduxperience/internal/server/verifications"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is a seam so tests can hash quickly.
var bcryptCost = bcrypt.DefaultCost

// dummyHash is compared against when the email is unknown, so a failed
// sign-in takes as long whether or not the account exists.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("eduxperience-dummy-password"), bcrypt.MinCost)

// MinPasswordLength is the shortest password SignUp accepts.
const MinPasswordLength = 8

// Token is an issued access token together with the user it was issued to.
type Token struct {
	AccessToken string
	ExpiresIn   time.Duration
	User        *models.User
}

// IdentityService provides the account operations behind /auth and /rest.
type IdentityService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	verifications verifications.Store
	notifier      notifications.Notifier
	log           logging.Logger

	jwtSecret                         []byte
	accessTokenValidityDuration       time.Duration
	verificationTokenValidityDuration time.Duration
	publicBaseURL                     string

	now func() time.Time
}

// NewIdentityService constructs an IdentityService using repositories and
// server config.
func NewIdentityService(
	db *sql.DB,
	m repomanager.RepositoryManager,
	vs verifications.Store,
	n notifications.Notifier,
	cfg *config.Config,
	log logging.Logger,
) *IdentityService {
	return &IdentityService{
		db:                                db,
		repomanager:                       m,
		verifications:                     vs,
		notifier:                          n,
		log:                               log.With("module", "identity"),
		jwtSecret:                         []byte(cfg.SecretKey),
		accessTokenValidityDuration:       cfg.AccessTokenValidityDuration,
		verificationTokenValidityDuration: cfg.VerificationTokenValidityDuration,
		publicBaseURL:                     strings.TrimRight(cfg.PublicBaseURL, "/"),
		now:                               time.Now,
	}
}

// SignUp creates an unconfirmed account and sends its verification link.
// A taken email yields common.ErrorAlreadyExists. The account is kept when
// the link cannot be sent; Resend can be used later.
func (s *IdentityService) SignUp(ctx context.Context, email, password, role string) (*models.User, error) {
	email = common.NormalizeEmail(email)
	if email == "" || len(password) < MinPasswordLength {
		return nil, common.ErrorValidation
	}
	switch role {
	case models.RoleStudent, models.RoleTutor, models.RoleInstitution:
	default:
		return nil, fmt.Errorf("%w: role %q cannot sign up", common.ErrorValidation, role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorValidation, err)
	}

	repo := s.repomanager.Users(s.db)
	u, err := repo.Create(ctx, &models.User{Email: email, PasswordHash: hash, Role: role})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	if err := s.sendVerification(ctx, u); err != nil {
		s.log.Warn(ctx, "verification not sent", "user_id", u.ID, "error", err)
	}

	s.log.Info(ctx, "user signed up", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// SignIn checks email and password and issues an access token. Unknown
// emails and wrong passwords both yield common.ErrorUnauthorized; a correct
// password on an unconfirmed account yields common.ErrEmailNotConfirmed.
func (s *IdentityService) SignIn(ctx context.Context, email, password string) (*Token, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, common.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return nil, common.ErrorUnauthorized
	}
	if !user.EmailConfirmed() {
		return nil, common.ErrEmailNotConfirmed
	}

	access, err := auth.GenerateToken(auth.Subject{UserID: user.ID, Email: user.Email, Role: user.Role},
		s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	return &Token{AccessToken: access, ExpiresIn: s.accessTokenValidityDuration, User: user}, nil
}

// Resend sends a fresh verification link to an unconfirmed account. Unknown
// emails yield common.ErrorNotFound, confirmed ones common.ErrorAlreadyExists.
func (s *IdentityService) Resend(ctx context.Context, email string) error {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, common.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	if user.EmailConfirmed() {
		return fmt.Errorf("%w: email already confirmed", common.ErrorAlreadyExists)
	}

	if err := s.sendVerification(ctx, user); err != nil {
		return fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	return nil
}

// Verify redeems a verification token and confirms the owner's email.
// Unknown, used and expired tokens yield common.ErrInvalidToken.
func (s *IdentityService) Verify(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.verifications.Take(ctx, token)
	if err != nil {
		if errors.Is(err, verifications.ErrTokenNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	repo := s.repomanager.Users(s.db)
	u, err := repo.ConfirmEmail(ctx, userID, s.now().UTC())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	s.log.Info(ctx, "email confirmed", "user_id", u.ID)
	return u, nil
}

// Authenticate validates an access token and returns its claims.
func (s *IdentityService) Authenticate(token string) (*auth.Claims, error) {
	return auth.ParseToken(token, s.jwtSecret)
}

func (s *IdentityService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	return u, nil
}

// GetRole returns the role stored for userID.
func (s *IdentityService) GetRole(ctx context.Context, userID string) (string, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}
	return u.Role, nil
}

// CreateProfile stores the kind profile of userID. The owner must have
// confirmed their email. A second profile of the same kind yields
// common.ErrorAlreadyExists.
func (s *IdentityService) CreateProfile(ctx context.Context, userID, kind string, payload json.RawMessage) (*models.Profile, error) {
	switch kind {
	case models.ProfileTutor, models.ProfileStudent, models.ProfileInstitution:
	default:
		return nil, fmt.Errorf("%w: unknown profile kind %q", common.ErrorValidation, kind)
	}
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}
	if !json.Valid(payload) {
		return nil, fmt.Errorf("%w: payload is not valid JSON", common.ErrorValidation)
	}

	var profile *models.Profile
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		user, err := s.repomanager.Users(tx).GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if !user.EmailConfirmed() {
			return common.ErrEmailNotConfirmed
		}

		profile, err = s.repomanager.Profiles(tx).Create(ctx, &models.Profile{UserID: userID, Kind: kind, Payload: payload})
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound),
			errors.Is(err, common.ErrorAlreadyExists),
			errors.Is(err, common.ErrEmailNotConfirmed):
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	s.log.Info(ctx, "profile created", "user_id", userID, "kind", kind)
	return profile, nil
}

func (s *IdentityService) sendVerification(ctx context.Context, u *models.User) error {
	token, err := verifications.NewToken()
	if err != nil {
		return fmt.Errorf("generate token: %w", err)
	}
	if err := s.verifications.Put(ctx, token, u.ID, s.verificationTokenValidityDuration); err != nil {
		return fmt.Errorf("store token: %w", err)
	}

	link := s.publicBaseURL + "/auth/v1/verify?token=" + url.QueryEscape(token)
	return s.notifier.SendVerification(ctx, notifications.VerificationInput{Email: u.Email, Link: link})
}
