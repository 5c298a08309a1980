package backend

import (
	"context"
	"encoding/json"

	"github.com/eduxperience/eduxperience/internal/client/models"
)

// ResendType selects which confirmation message the backend sends again.
type ResendType string

const ResendSignup ResendType = "signup"

type Client interface {
	SignUp(ctx context.Context, email, password string, role models.Role) (*models.Identity, error)
	SignIn(ctx context.Context, email, password string) (*models.Identity, error)
	Resend(ctx context.Context, kind ResendType, email string) error
	GetUser(ctx context.Context, accessToken string) (*models.Identity, error)
	GetRole(ctx context.Context, accessToken, userID string) (models.Role, error)
	CreateProfile(ctx context.Context, accessToken string, kind models.ProfileKind, userID string, payload json.RawMessage) error
	Ping(ctx context.Context) error
}
