package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/eduxperience/eduxperience/internal/client/models"
	"github.com/eduxperience/eduxperience/internal/client/services"
	"github.com/eduxperience/eduxperience/internal/common"
)

// SignUp creates an account. The profile details collected here are staged
// on this device and created on the backend at the first login after the
// email is verified.
func (a *App) SignUp(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, "Choose a password (min 8 characters)", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword(a.reader, "Repeat password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if string(password) != string(confirm) {
		fmt.Fprintln(a.out, "Passwords do not match.")
		return nil
	}

	roleText, err := getSimpleText(a.reader, "I am a (student/tutor/institution)", a.out)
	if err != nil {
		return err
	}
	role := models.Role(strings.ToLower(roleText))

	profile, err := a.collectProfile(role)
	if err != nil {
		return err
	}

	_, err = a.auth.SignUp(ctx, services.SignUpRequest{
		Email:    email,
		Password: string(password),
		Role:     role,
		Profile:  profile,
	})
	if err != nil {
		fmt.Fprintln(a.out, userMessage(err))
		return nil
	}

	a.lastUnverified = common.NormalizeEmail(email)
	fmt.Fprintf(a.out, "Account created. Check %s for a verification link, then log in.\n", a.lastUnverified)
	return nil
}

// collectProfile asks for the fields of the role's profile. Unknown roles
// collect nothing and are rejected by sign-up validation.
func (a *App) collectProfile(role models.Role) (json.RawMessage, error) {
	fields := map[string]any{}

	switch role {
	case models.RoleStudent, models.RoleTutor:
		name, err := getSimpleText(a.reader, "Full name", a.out)
		if err != nil {
			return nil, err
		}
		fields["full_name"] = name
	case models.RoleInstitution:
		name, err := getSimpleText(a.reader, "Institution name", a.out)
		if err != nil {
			return nil, err
		}
		fields["name"] = name
	default:
		return nil, nil
	}

	if role == models.RoleTutor {
		subjects, err := getSimpleText(a.reader, "Subjects (comma separated)", a.out)
		if err != nil {
			return nil, err
		}
		var list []string
		for _, s := range strings.Split(subjects, ",") {
			if s = strings.TrimSpace(s); s != "" {
				list = append(list, s)
			}
		}
		fields["subjects"] = list

		bio, err := GetMultiline(a.reader, "Short bio", a.out)
		if err != nil {
			return nil, err
		}
		fields["bio"] = bio
	}

	return json.Marshal(fields)
}
