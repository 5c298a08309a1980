package models

import "time"

// Identity is the authenticated principal returned by the backend.
type Identity struct {
	ID    string
	Email string
	Role  Role

	// EmailConfirmedAt is nil until the user followed the verification link.
	EmailConfirmedAt *time.Time

	// AccessToken authorises data calls made on behalf of this identity.
	AccessToken string
}

// EmailConfirmed reports whether the identity's email has been verified.
func (i *Identity) EmailConfirmed() bool {
	return i != nil && i.EmailConfirmedAt != nil && !i.EmailConfirmedAt.IsZero()
}
