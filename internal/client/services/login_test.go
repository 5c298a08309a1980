package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduxperience/eduxperience/internal/client/backend"
	"github.com/eduxperience/eduxperience/internal/client/credentials"
	"github.com/eduxperience/eduxperience/internal/client/models"
	"github.com/eduxperience/eduxperience/internal/client/pending"
	"github.com/eduxperience/eduxperience/internal/client/storage/kv"
	"github.com/eduxperience/eduxperience/internal/logging"
)

func TestLogin_RememberLogoutForget(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.backend.SignInRet = confirmedIdentity("a@x.io")
	f.backend.GetRoleRet = models.RoleStudent

	res, err := f.flow.Login(ctx, LoginRequest{Email: "a@x.io", Password: "pw", Remember: true})
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, models.DestinationStudentDashboard, res.Route.Destination)

	saved, ok := f.flow.SavedLogin(ctx)
	require.True(t, ok)
	assert.Equal(t, "a@x.io", saved.Email)
	assert.Equal(t, "pw", saved.Password)

	require.NoError(t, f.flow.Logout(ctx))
	_, signedIn := f.flow.Current()
	assert.False(t, signedIn)
	assert.Equal(t, models.DestinationLogin, f.nav.Last())

	saved, ok = f.flow.SavedLogin(ctx)
	require.True(t, ok, "remembered credentials survive logout")
	assert.Equal(t, "a@x.io", saved.Email)

	require.NoError(t, f.flow.ForgetSaved(ctx))
	_, ok = f.flow.SavedLogin(ctx)
	assert.False(t, ok)
	assert.Empty(t, f.flow.SavedEmails(ctx))
}

func TestLogin_RememberOffClearsThatEmailOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.backend.GetRoleRet = models.RoleTutor
	require.NoError(t, f.creds.Save(ctx, "a@x.io", "old"))
	require.NoError(t, f.creds.Save(ctx, "b@x.io", "pw-b"))

	f.backend.SignInRet = confirmedIdentity("a@x.io")
	_, err := f.flow.Login(ctx, LoginRequest{Email: "A@x.io", Password: "new", Remember: false})
	require.NoError(t, err)

	_, ok := f.creds.LoadByEmail(ctx, "a@x.io")
	assert.False(t, ok)
	_, ok = f.creds.LoadByEmail(ctx, "b@x.io")
	assert.True(t, ok)
}

func TestLogin_SignInErrorAbortsBeforePersisting(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.backend.SignInErr = backend.ErrInvalidCredentials

	res, err := f.flow.Login(ctx, LoginRequest{Email: "a@x.io", Password: "pw", Remember: true})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, res)

	_, ok := f.flow.SavedLogin(ctx)
	assert.False(t, ok)
	assert.Empty(t, f.nav.Visited)
	_, signedIn := f.flow.Current()
	assert.False(t, signedIn)
}

type readOnlyKV struct{ *kv.MemoryStore }

func (readOnlyKV) Set(context.Context, string, []byte) error { return errors.New("quota exceeded") }

func TestLogin_StorageWriteFailureIsWarning(t *testing.T) {
	ctx := context.Background()
	log := logging.Nop()
	store := readOnlyKV{kv.NewMemoryStore()}
	be := &fakeBackend{SignInRet: confirmedIdentity("a@x.io"), GetRoleRet: models.RoleStudent}
	nav := &fakeNavigator{}
	pend := pending.NewStore(store, log)
	flow := NewLoginFlow(
		NewAuthService(be, pend, log),
		credentials.NewStore(store, log),
		NewRouter(be, pend, nav, log),
		nav, log,
	)

	res, err := flow.Login(ctx, LoginRequest{Email: "a@x.io", Password: "pw", Remember: true})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.ErrorIs(t, res.Warnings[0], ErrStorageUnavailable)
	assert.Equal(t, models.DestinationStudentDashboard, nav.Last(), "navigation still happens")
}

func TestLogin_UnknownRoleKeepsSessionAndReportsError(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.backend.SignInRet = confirmedIdentity("a@x.io")
	f.backend.GetRoleRet = "guest"

	res, err := f.flow.Login(ctx, LoginRequest{Email: "a@x.io", Password: "pw"})
	require.ErrorIs(t, err, ErrUnknownRole)
	require.NotNil(t, res)
	assert.False(t, res.Route.Navigated)
	assert.Empty(t, f.nav.Visited)
}

func TestLogin_MaterializationFailureSurfacesAsWarning(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.backend.SignInRet = confirmedIdentity("a@x.io")
	f.backend.GetRoleRet = models.RoleTutor
	f.backend.CreateProfileErr = map[models.ProfileKind]error{models.ProfileTutor: backend.ErrUnavailable}
	require.NoError(t, f.pending.Stage(ctx, models.PendingProfile{Kind: models.ProfileTutor, Email: "a@x.io"}))

	res, err := f.flow.Login(ctx, LoginRequest{Email: "a@x.io", Password: "pw"})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.ErrorIs(t, res.Warnings[0], ErrProfileMaterializationFailed)
	assert.Equal(t, models.DestinationTutorDashboard, f.nav.Last())
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.flow.Refresh(ctx)
	require.ErrorIs(t, err, ErrNotSignedIn)

	unconfirmed := confirmedIdentity("a@x.io")
	unconfirmed.EmailConfirmedAt = nil
	f.backend.SignInRet = unconfirmed
	f.backend.GetRoleRet = models.RoleStudent
	_, err = f.flow.Login(ctx, LoginRequest{Email: "a@x.io", Password: "pw"})
	require.NoError(t, err)

	f.backend.GetUserRet = confirmedIdentity("a@x.io")
	f.backend.GetUserRet.AccessToken = ""
	id, err := f.flow.Refresh(ctx)
	require.NoError(t, err)
	assert.True(t, id.EmailConfirmed())
	assert.Equal(t, "tok", id.AccessToken)

	cur, ok := f.flow.Current()
	require.True(t, ok)
	assert.True(t, cur.EmailConfirmed())
}
