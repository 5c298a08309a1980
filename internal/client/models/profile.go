package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// ProfileKind names the profile table a pending profile materialises into.
type ProfileKind string

const (
	ProfileTutor       ProfileKind = "tutor"
	ProfileStudent     ProfileKind = "student"
	ProfileInstitution ProfileKind = "institution"
)

// ProfileKinds lists the kinds in the order the router materialises them.
var ProfileKinds = []ProfileKind{ProfileTutor, ProfileStudent, ProfileInstitution}

// ParseProfileKind converts s into a ProfileKind, rejecting unknown values.
func ParseProfileKind(s string) (ProfileKind, error) {
	switch k := ProfileKind(s); k {
	case ProfileTutor, ProfileStudent, ProfileInstitution:
		return k, nil
	}
	return "", fmt.Errorf("unknown profile kind %q", s)
}

// ProfileKindForRole maps a sign-up role to the profile it stages. Admins
// have no profile.
func ProfileKindForRole(r Role) (ProfileKind, bool) {
	switch r {
	case RoleTutor:
		return ProfileTutor, true
	case RoleStudent:
		return ProfileStudent, true
	case RoleInstitution:
		return ProfileInstitution, true
	}
	return "", false
}

// PendingProfile is a draft profile staged at sign-up, waiting for the
// email to be confirmed before it is created on the backend.
type PendingProfile struct {
	Kind      ProfileKind     `json:"kind"`
	Email     string          `json:"email"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}
