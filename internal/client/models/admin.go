package models

import "time"

// AdminSessionTTL is how long an admin session stays valid after login.
const AdminSessionTTL = 24 * time.Hour

// AdminSession occupies the single admin session slot.
type AdminSession struct {
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	Role            Role      `json:"role"`
	LoginTime       time.Time `json:"login_time"`
	IsAuthenticated bool      `json:"is_authenticated"`
}

// Expired reports whether the session is at least AdminSessionTTL old at now.
func (s *AdminSession) Expired(now time.Time) bool {
	return now.Sub(s.LoginTime) >= AdminSessionTTL
}
