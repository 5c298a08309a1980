// Package users persists accounts in the users table.
package users

import (
	"context"
	"time"

	"github.com/eduxperience/eduxperience/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	ConfirmEmail(ctx context.Context, id string, at time.Time) (*models.User, error)
}
