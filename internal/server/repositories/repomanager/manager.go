package repomanager

import (
	"context"
	"database/sql"

	"github.com/eduxperience/eduxperience/internal/dbx"
	"github.com/eduxperience/eduxperience/internal/server/repositories/profiles"
	"github.com/eduxperience/eduxperience/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Profiles(db dbx.DBTX) profiles.Repository
}
