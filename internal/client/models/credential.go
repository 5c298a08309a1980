package models

import "time"

// SavedCredential is a remembered login kept on this device only.
// At most one exists per email.
type SavedCredential struct {
	Email    string    `json:"email"`
	Password string    `json:"password"`
	SavedAt  time.Time `json:"saved_at"`
}
