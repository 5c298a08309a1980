package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/eduxperience/eduxperience/internal/client/backend"
	"github.com/eduxperience/eduxperience/internal/client/credentials"
	"github.com/eduxperience/eduxperience/internal/client/models"
	"github.com/eduxperience/eduxperience/internal/client/pending"
	"github.com/eduxperience/eduxperience/internal/client/storage/kv"
	"github.com/eduxperience/eduxperience/internal/logging"
)

// fakeBackend implements backend.Client for unit tests.
type fakeBackend struct {
	mu sync.Mutex

	SignUpRet *models.Identity
	SignUpErr error

	SignInRet *models.Identity
	SignInErr error

	ResendErr error

	GetUserRet *models.Identity
	GetUserErr error

	GetRoleRet models.Role
	GetRoleErr error

	// CreateProfileErr is keyed by kind.
	CreateProfileErr map[models.ProfileKind]error

	PingErr error

	SignInCalls      int
	LastSignInEmail  string
	LastSignInPass   string
	LastSignUpEmail  string
	LastSignUpRole   models.Role
	LastResendType   backend.ResendType
	LastResendEmail  string
	LastRoleToken    string
	LastRoleUserID   string
	CreatedProfiles  []createdProfile
	CreateProfileTry int
}

type createdProfile struct {
	Token   string
	Kind    models.ProfileKind
	UserID  string
	Payload json.RawMessage
}

func (f *fakeBackend) SignUp(_ context.Context, email, _ string, role models.Role) (*models.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastSignUpEmail = email
	f.LastSignUpRole = role
	return f.SignUpRet, f.SignUpErr
}

func (f *fakeBackend) SignIn(_ context.Context, email, password string) (*models.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SignInCalls++
	f.LastSignInEmail = email
	f.LastSignInPass = password
	if f.SignInErr != nil {
		return nil, f.SignInErr
	}
	id := *f.SignInRet
	return &id, nil
}

func (f *fakeBackend) Resend(_ context.Context, kind backend.ResendType, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastResendType = kind
	f.LastResendEmail = email
	return f.ResendErr
}

func (f *fakeBackend) GetUser(context.Context, string) (*models.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.GetUserRet, f.GetUserErr
}

func (f *fakeBackend) GetRole(_ context.Context, token, userID string) (models.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastRoleToken = token
	f.LastRoleUserID = userID
	return f.GetRoleRet, f.GetRoleErr
}

func (f *fakeBackend) CreateProfile(_ context.Context, token string, kind models.ProfileKind, userID string, payload json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreateProfileTry++
	if err := f.CreateProfileErr[kind]; err != nil {
		return err
	}
	f.CreatedProfiles = append(f.CreatedProfiles, createdProfile{Token: token, Kind: kind, UserID: userID, Payload: payload})
	return nil
}

func (f *fakeBackend) Ping(context.Context) error { return f.PingErr }

// fakeNavigator records destinations.
type fakeNavigator struct {
	mu      sync.Mutex
	Visited []models.Destination
	Err     error
}

func (n *fakeNavigator) Navigate(_ context.Context, to models.Destination) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	n.Visited = append(n.Visited, to)
	return nil
}

func (n *fakeNavigator) Last() models.Destination {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.Visited) == 0 {
		return ""
	}
	return n.Visited[len(n.Visited)-1]
}

type fixture struct {
	kv      *kv.MemoryStore
	backend *fakeBackend
	nav     *fakeNavigator
	pending *pending.Store
	creds   *credentials.Store
	auth    AuthService
	router  *Router
	flow    *LoginFlow
}

func newFixture() *fixture {
	log := logging.Nop()
	f := &fixture{
		kv:      kv.NewMemoryStore(),
		backend: &fakeBackend{},
		nav:     &fakeNavigator{},
	}
	f.pending = pending.NewStore(f.kv, log)
	f.creds = credentials.NewStore(f.kv, log)
	f.auth = NewAuthService(f.backend, f.pending, log)
	f.router = NewRouter(f.backend, f.pending, f.nav, log)
	f.flow = NewLoginFlow(f.auth, f.creds, f.router, f.nav, log)
	return f
}
