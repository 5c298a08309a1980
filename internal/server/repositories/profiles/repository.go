// Package profiles persists role profiles created after email confirmation.
package profiles

import (
	"context"

	"github.com/eduxperience/eduxperience/internal/server/models"
)

type Repository interface {
	// Create inserts p. A profile of the same kind for the same user yields
	// common.ErrorAlreadyExists and leaves the stored one untouched.
	Create(ctx context.Context, p *models.Profile) (*models.Profile, error)
	Get(ctx context.Context, userID, kind string) (*models.Profile, error)
}
