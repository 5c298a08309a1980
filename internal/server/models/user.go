// Package models holds the rows the backend stores in PostgreSQL.
package models

import (
	"encoding/json"
	"time"
)

// Roles a user can sign up with. Admin accounts are never self-registered.
const (
	RoleStudent     = "student"
	RoleTutor       = "tutor"
	RoleInstitution = "institution"
	RoleAdmin       = "admin"
)

type User struct {
	ID               string
	Email            string
	PasswordHash     []byte
	Role             string
	EmailConfirmedAt *time.Time
	CreatedAt        time.Time
}

// EmailConfirmed reports whether the verification link has been followed.
func (u *User) EmailConfirmed() bool {
	return u.EmailConfirmedAt != nil
}

// Profile kinds; each maps to one profile row per user.
const (
	ProfileTutor       = "tutor"
	ProfileStudent     = "student"
	ProfileInstitution = "institution"
)

type Profile struct {
	UserID    string
	Kind      string
	Payload   json.RawMessage
	CreatedAt time.Time
}
