package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/eduxperience/eduxperience/internal/common"
	"github.com/eduxperience/eduxperience/internal/dbx"
	"github.com/eduxperience/eduxperience/internal/logging"
	"github.com/eduxperience/eduxperience/internal/server/config"
	"github.com/eduxperience/eduxperience/internal/server/models"
	"github.com/eduxperience/eduxperience/internal/server/notifications"
	"github.com/eduxperience/eduxperience/internal/server/repositories/profiles"
	"github.com/eduxperience/eduxperience/internal/server/repositories/users"
	"github.com/eduxperience/eduxperience/internal/server/verifications"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeUsersRepo struct {
	mu      sync.Mutex
	byID    map[string]*models.User
	getErr  error
	saveErr error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: map[string]*models.User{}}
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now()
	cp := *u
	f.byID[u.ID] = &cp
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsersRepo) ConfirmEmail(_ context.Context, id string, at time.Time) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if u.EmailConfirmedAt == nil {
		u.EmailConfirmedAt = &at
	}
	cp := *u
	return &cp, nil
}

type fakeProfilesRepo struct {
	mu   sync.Mutex
	rows map[string]*models.Profile
	err  error
}

func (f *fakeProfilesRepo) Create(_ context.Context, p *models.Profile) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	k := p.UserID + "/" + p.Kind
	if _, ok := f.rows[k]; ok {
		return nil, common.ErrorAlreadyExists
	}
	p.CreatedAt = time.Now()
	f.rows[k] = p
	return p, nil
}

func (f *fakeProfilesRepo) Get(_ context.Context, userID, kind string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[userID+"/"+kind]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return p, nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	p *fakeProfilesRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository             { return m.u }
func (m *fakeRepoManager) Profiles(dbx.DBTX) profiles.Repository       { return m.p }

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notifications.VerificationInput
	err  error
}

func (n *fakeNotifier) SendVerification(_ context.Context, in notifications.VerificationInput) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, in)
	return nil
}

func (n *fakeNotifier) last() notifications.VerificationInput {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return notifications.VerificationInput{}
	}
	return n.sent[len(n.sent)-1]
}

type failingVerifications struct{ err error }

func (f failingVerifications) Put(context.Context, string, string, time.Duration) error { return f.err }
func (f failingVerifications) Take(context.Context, string) (string, error)           { return "", f.err }

var errBoom = errors.New("boom")

type fixture struct {
	svc      *IdentityService
	users    *fakeUsersRepo
	profiles *fakeProfilesRepo
	notifier *fakeNotifier
	mock     sqlmock.Sqlmock
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                         "k",
		AccessTokenValidityDuration:       time.Hour,
		VerificationTokenValidityDuration: time.Hour,
		PublicBaseURL:                     "https://edux.example/",
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	orig := bcryptCost
	bcryptCost = bcrypt.MinCost
	t.Cleanup(func() { bcryptCost = orig })

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &fixture{
		users:    newFakeUsersRepo(),
		profiles: &fakeProfilesRepo{rows: map[string]*models.Profile{}},
		notifier: &fakeNotifier{},
		mock:     mock,
	}
	rm := &fakeRepoManager{u: f.users, p: f.profiles}
	f.svc = NewIdentityService(db, rm, verifications.NewMemoryStore(), f.notifier, testConfig(), logging.Nop())
	return f
}

// confirmedUser signs up email with role and confirms it.
func (f *fixture) confirmedUser(t *testing.T, email, password, role string) *models.User {
	t.Helper()
	u, err := f.svc.SignUp(context.Background(), email, password, role)
	require.NoError(t, err)
	_, err = f.svc.Verify(context.Background(), tokenFromLink(t, f.notifier.last().Link))
	require.NoError(t, err)
	return u
}

func tokenFromLink(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	token := u.Query().Get("token")
	require.NotEmpty(t, token, "no token in link %q", link)
	return token
}

var emptyPayload = json.RawMessage(`{}`)
