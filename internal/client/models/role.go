// Package models defines the client-side data models of EduXperience:
// identities and roles returned by the backend, plus the records the client
// keeps in local storage (saved credentials, the admin session and pending
// profiles).
package models

import "fmt"

// Role governs which dashboard an identity lands on.
type Role string

const (
	RoleStudent     Role = "student"
	RoleTutor       Role = "tutor"
	RoleInstitution Role = "institution"
	RoleAdmin       Role = "admin"
)

// Roles lists every recognised role.
var Roles = []Role{RoleStudent, RoleTutor, RoleInstitution, RoleAdmin}

// Valid reports whether r is one of the four recognised roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTutor, RoleInstitution, RoleAdmin:
		return true
	}
	return false
}

// ParseRole converts s into a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Destination is a view the client can navigate to.
type Destination string

const (
	DestinationLogin                Destination = "/login"
	DestinationStudentDashboard     Destination = "/student-dashboard"
	DestinationTutorDashboard       Destination = "/tutor-dashboard"
	DestinationInstitutionDashboard Destination = "/institution-dashboard"
	DestinationAdminDashboard       Destination = "/admin-dashboard"
)

// DestinationFor returns the fixed dashboard for r. ok is false for
// unrecognised roles.
func DestinationFor(r Role) (d Destination, ok bool) {
	switch r {
	case RoleStudent:
		return DestinationStudentDashboard, true
	case RoleTutor:
		return DestinationTutorDashboard, true
	case RoleInstitution:
		return DestinationInstitutionDashboard, true
	case RoleAdmin:
		return DestinationAdminDashboard, true
	}
	return "", false
}
