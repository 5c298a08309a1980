package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/eduxperience/eduxperience/internal/client/credentials"
	"github.com/eduxperience/eduxperience/internal/client/models"
	"github.com/eduxperience/eduxperience/internal/common"
	"github.com/eduxperience/eduxperience/internal/logging"
)

type LoginRequest struct {
	Email    string
	Password string
	Remember bool
}

// LoginResult is a successful sign-in. Warnings collects failures that did
// not abort the flow: credential writes and profile materialization.
type LoginResult struct {
	Identity *models.Identity
	Route    *RouteReport
	Warnings []error
}

// LoginFlow runs sign-in, remember-me persistence and role routing in that
// order, and holds the signed-in identity of this process.
type LoginFlow struct {
	auth   AuthService
	creds  *credentials.Store
	router *Router
	nav    Navigator
	log    logging.Logger

	mu      sync.RWMutex
	current *models.Identity
}

func NewLoginFlow(auth AuthService, creds *credentials.Store, router *Router, nav Navigator, log logging.Logger) *LoginFlow {
	return &LoginFlow{auth: auth, creds: creds, router: router, nav: nav, log: log.With("module", "login")}
}

// Login signs in and routes the user. Sign-in errors abort before anything
// is persisted. A routing error is returned together with the result, as
// the user is signed in by then.
func (f *LoginFlow) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	email := common.NormalizeEmail(req.Email)

	id, err := f.auth.SignIn(ctx, email, req.Password)
	if err != nil {
		return nil, err
	}

	res := &LoginResult{Identity: id}

	if req.Remember {
		err = f.creds.Save(ctx, email, req.Password)
	} else {
		err = f.creds.Clear(ctx, email)
	}
	if err != nil {
		f.log.Warn(ctx, "remember-me update failed", "email", email, "remember", req.Remember, "error", err)
		res.Warnings = append(res.Warnings, err)
	}

	f.mu.Lock()
	f.current = id
	f.mu.Unlock()

	route, err := f.router.ResolveAndNavigate(ctx, id)
	res.Route = route
	if route != nil {
		res.Warnings = append(res.Warnings, route.Failures...)
	}
	if err != nil {
		return res, err
	}
	return res, nil
}

// Current returns the signed-in identity.
func (f *LoginFlow) Current() (*models.Identity, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.current, f.current != nil
}

// Refresh re-reads the signed-in identity from the backend, picking up a
// confirmation that happened since login.
func (f *LoginFlow) Refresh(ctx context.Context) (*models.Identity, error) {
	id, ok := f.Current()
	if !ok {
		return nil, ErrNotSignedIn
	}
	fresh, err := f.auth.CurrentUser(ctx, id.AccessToken)
	if err != nil {
		return nil, err
	}
	fresh.AccessToken = id.AccessToken

	f.mu.Lock()
	f.current = fresh
	f.mu.Unlock()
	return fresh, nil
}

// SavedLogin returns the most recently remembered credential for
// auto-filling the login form.
func (f *LoginFlow) SavedLogin(ctx context.Context) (*models.SavedCredential, bool) {
	return f.creds.LoadMostRecent(ctx)
}

// SavedLoginFor returns the credential remembered for email.
func (f *LoginFlow) SavedLoginFor(ctx context.Context, email string) (*models.SavedCredential, bool) {
	return f.creds.LoadByEmail(ctx, email)
}

// SavedEmails lists remembered emails, most recent first.
func (f *LoginFlow) SavedEmails(ctx context.Context) []string {
	return f.creds.ListEmails(ctx)
}

// Logout forgets the signed-in identity and returns to the login view.
// Remembered credentials stay.
func (f *LoginFlow) Logout(ctx context.Context) error {
	f.mu.Lock()
	f.current = nil
	f.mu.Unlock()

	if err := f.nav.Navigate(ctx, models.DestinationLogin); err != nil {
		return fmt.Errorf("navigate to %s: %w", models.DestinationLogin, err)
	}
	return nil
}

// ForgetSaved removes remembered credentials: the given emails, or all of
// them.
func (f *LoginFlow) ForgetSaved(ctx context.Context, emails ...string) error {
	return f.creds.Clear(ctx, emails...)
}
