package http

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/eduxperience/eduxperience/internal/common"
	"github.com/eduxperience/eduxperience/internal/logging"
	"github.com/eduxperience/eduxperience/internal/server/auth"
	"github.com/eduxperience/eduxperience/internal/server/models"
	"github.com/eduxperience/eduxperience/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
)

// fakeIdentity is a small in-memory account service. Tokens are
// "tok-<userID>".
type fakeIdentity struct {
	mu       sync.Mutex
	users    map[string]*models.User // by email
	passwd   map[string]string
	profiles map[string]json.RawMessage
	verify   map[string]string // token -> email
	nextID   int

	resendErr error
	internal  error
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{
		users:    map[string]*models.User{},
		passwd:   map[string]string{},
		profiles: map[string]json.RawMessage{},
		verify:   map[string]string{},
	}
}

func (f *fakeIdentity) SignUp(_ context.Context, email, password, role string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.internal != nil {
		return nil, f.internal
	}
	email = common.NormalizeEmail(email)
	if _, ok := f.users[email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	f.nextID++
	u := &models.User{ID: fmt.Sprintf("u%d", f.nextID), Email: email, Role: role, CreatedAt: time.Now()}
	f.users[email] = u
	f.passwd[email] = password
	f.verify["verify-"+u.ID] = email
	return u, nil
}

func (f *fakeIdentity) SignIn(_ context.Context, email, password string) (*services.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.internal != nil {
		return nil, f.internal
	}
	email = common.NormalizeEmail(email)
	u, ok := f.users[email]
	if !ok || f.passwd[email] != password {
		return nil, common.ErrorUnauthorized
	}
	if !u.EmailConfirmed() {
		return nil, common.ErrEmailNotConfirmed
	}
	return &services.Token{AccessToken: "tok-" + u.ID, ExpiresIn: time.Hour, User: u}, nil
}

func (f *fakeIdentity) Resend(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resendErr != nil {
		return f.resendErr
	}
	u, ok := f.users[common.NormalizeEmail(email)]
	if !ok {
		return common.ErrorNotFound
	}
	if u.EmailConfirmed() {
		return common.ErrorAlreadyExists
	}
	return nil
}

func (f *fakeIdentity) Verify(_ context.Context, token string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email, ok := f.verify[token]
	if !ok {
		return nil, common.ErrInvalidToken
	}
	delete(f.verify, token)
	u := f.users[email]
	now := time.Now().UTC()
	u.EmailConfirmedAt = &now
	return u, nil
}

func (f *fakeIdentity) Authenticate(token string) (*auth.Claims, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if "tok-"+u.ID == token {
			return &auth.Claims{UserID: u.ID, Email: u.Email, Role: u.Role}, nil
		}
	}
	return nil, common.ErrInvalidToken
}

func (f *fakeIdentity) byID(id string) (*models.User, error) {
	if f.internal != nil {
		return nil, f.internal
	}
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeIdentity) GetUser(_ context.Context, userID string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID(userID)
}

func (f *fakeIdentity) GetRole(_ context.Context, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, err := f.byID(userID)
	if err != nil {
		return "", err
	}
	return u.Role, nil
}

func (f *fakeIdentity) CreateProfile(_ context.Context, userID, kind string, payload json.RawMessage) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch kind {
	case models.ProfileTutor, models.ProfileStudent, models.ProfileInstitution:
	default:
		return nil, common.ErrorValidation
	}
	u, err := f.byID(userID)
	if err != nil {
		return nil, err
	}
	if !u.EmailConfirmed() {
		return nil, common.ErrEmailNotConfirmed
	}
	k := userID + "/" + kind
	if _, ok := f.profiles[k]; ok {
		return nil, common.ErrorAlreadyExists
	}
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}
	f.profiles[k] = payload
	return &models.Profile{UserID: userID, Kind: kind, Payload: payload, CreatedAt: time.Now()}, nil
}

// confirmed adds a confirmed account and returns its access token.
func (f *fakeIdentity) confirmed(t *testing.T, email, password, role string) (*models.User, string) {
	t.Helper()
	u, err := f.SignUp(context.Background(), email, password, role)
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if _, err := f.Verify(context.Background(), "verify-"+u.ID); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	return u, "tok-" + u.ID
}

func newTestServer(t *testing.T) (*Server, *fakeIdentity, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	id := newFakeIdentity()
	return NewServer("127.0.0.1:0", id, logging.Nop(), reg, reg), id, reg
}
