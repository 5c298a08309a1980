package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDestinationFor(t *testing.T) {
	cases := map[Role]Destination{
		RoleStudent:     DestinationStudentDashboard,
		RoleTutor:       DestinationTutorDashboard,
		RoleInstitution: DestinationInstitutionDashboard,
		RoleAdmin:       DestinationAdminDashboard,
	}
	for role, want := range cases {
		got, ok := DestinationFor(role)
		require.True(t, ok, role)
		assert.Equal(t, want, got)
	}

	_, ok := DestinationFor(Role("parent"))
	assert.False(t, ok)
	_, ok = DestinationFor("")
	assert.False(t, ok)
}

func TestParseRole(t *testing.T) {
	for _, r := range Roles {
		got, err := ParseRole(string(r))
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}
	_, err := ParseRole("Student")
	assert.Error(t, err)
}

func TestParseProfileKind(t *testing.T) {
	for _, k := range ProfileKinds {
		got, err := ParseProfileKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseProfileKind("admin")
	assert.Error(t, err)
}

func TestProfileKindForRole(t *testing.T) {
	k, ok := ProfileKindForRole(RoleTutor)
	assert.True(t, ok)
	assert.Equal(t, ProfileTutor, k)

	_, ok = ProfileKindForRole(RoleAdmin)
	assert.False(t, ok)
}

func TestIdentity_EmailConfirmed(t *testing.T) {
	var nilID *Identity
	assert.False(t, nilID.EmailConfirmed())
	assert.False(t, (&Identity{}).EmailConfirmed())
	assert.False(t, (&Identity{EmailConfirmedAt: &time.Time{}}).EmailConfirmed())

	now := time.Now()
	assert.True(t, (&Identity{EmailConfirmedAt: &now}).EmailConfirmed())
}

func TestAdminSession_Expired(t *testing.T) {
	login := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	s := &AdminSession{LoginTime: login, IsAuthenticated: true}

	assert.False(t, s.Expired(login))
	assert.False(t, s.Expired(login.Add(AdminSessionTTL-time.Second)))
	assert.True(t, s.Expired(login.Add(AdminSessionTTL)))
	assert.True(t, s.Expired(login.Add(48*time.Hour)))
}
