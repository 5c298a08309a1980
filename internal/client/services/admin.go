package services

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/eduxperience/eduxperience/internal/client/models"
	"github.com/eduxperience/eduxperience/internal/client/storage/kv"
	"github.com/eduxperience/eduxperience/internal/logging"
)

const adminSessionKey = "admin/session"

const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "eduxperience-admin"
	DefaultAdminEmail    = "admin@eduxperience.com"
)

// AdminCredentials is the single admin account. When PasswordHash (bcrypt)
// is set it is checked instead of Password.
type AdminCredentials struct {
	Username     string
	Password     string
	PasswordHash string
	Email        string
}

// AdminService guards the admin dashboard with one session slot in local
// storage.
type AdminService struct {
	creds AdminCredentials
	kv    kv.Store
	log   logging.Logger
	now   func() time.Time
}

func NewAdminService(creds AdminCredentials, store kv.Store, log logging.Logger) *AdminService {
	if creds.Username == "" {
		creds.Username = DefaultAdminUsername
	}
	if creds.Password == "" && creds.PasswordHash == "" {
		creds.Password = DefaultAdminPassword
	}
	if creds.Email == "" {
		creds.Email = DefaultAdminEmail
	}
	return &AdminService{creds: creds, kv: store, log: log.With("module", "admin"), now: time.Now}
}

// WithClock replaces the time source.
func (s *AdminService) WithClock(now func() time.Time) *AdminService {
	s.now = now
	return s
}

func (s *AdminService) match(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.creds.Username)) == 1

	var passOK bool
	if s.creds.PasswordHash != "" {
		passOK = bcrypt.CompareHashAndPassword([]byte(s.creds.PasswordHash), []byte(password)) == nil
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(password), []byte(s.creds.Password)) == 1
	}
	return userOK && passOK
}

// Login checks the admin credentials and, on a match, starts a session.
func (s *AdminService) Login(ctx context.Context, username, password string) bool {
	if !s.match(username, password) {
		s.log.Warn(ctx, "admin login rejected", "username", username)
		return false
	}

	session := models.AdminSession{
		Username:        s.creds.Username,
		Email:           s.creds.Email,
		Role:            models.RoleAdmin,
		LoginTime:       s.now().UTC(),
		IsAuthenticated: true,
	}
	blob, err := json.Marshal(session)
	if err != nil {
		s.log.Error(ctx, "encode admin session", "error", err)
		return false
	}
	if err := s.kv.Set(ctx, adminSessionKey, blob); err != nil {
		s.log.Error(ctx, "write admin session", "error", err)
		return false
	}

	s.log.Info(ctx, "admin logged in", "username", session.Username)
	return true
}

// Session returns the stored session. Unreadable sessions are absent.
func (s *AdminService) Session(ctx context.Context) (*models.AdminSession, bool) {
	blob, err := s.kv.Get(ctx, adminSessionKey)
	if err != nil {
		s.log.Warn(ctx, "read admin session", "error", err)
		return nil, false
	}
	if blob == nil {
		return nil, false
	}

	var session models.AdminSession
	if err := json.Unmarshal(blob, &session); err != nil {
		s.log.Warn(ctx, "corrupt admin session", "error", err)
		return nil, false
	}
	return &session, true
}

// IsAuthenticated reports whether a session exists with its flag set.
// It does not look at the session's age; see Validate.
func (s *AdminService) IsAuthenticated(ctx context.Context) bool {
	session, ok := s.Session(ctx)
	return ok && session.IsAuthenticated
}

// Validate is IsAuthenticated plus expiry: a session at least
// models.AdminSessionTTL old is deleted.
func (s *AdminService) Validate(ctx context.Context) bool {
	session, ok := s.Session(ctx)
	if !ok || !session.IsAuthenticated {
		return false
	}
	if session.Expired(s.now()) {
		s.log.Info(ctx, "admin session expired", "login_time", session.LoginTime)
		s.Logout(ctx)
		return false
	}
	return true
}

// Logout deletes the session unconditionally.
func (s *AdminService) Logout(ctx context.Context) {
	if err := s.kv.Delete(ctx, adminSessionKey); err != nil {
		s.log.Warn(ctx, "delete admin session", "error", err)
	}
}
