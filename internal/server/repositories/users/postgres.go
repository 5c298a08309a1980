package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/eduxperience/eduxperience/internal/common"
	"github.com/eduxperience/eduxperience/internal/dbx"
	"github.com/eduxperience/eduxperience/internal/server/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts user, assigning a fresh UUID when ID is empty. A duplicate
// email yields common.ErrorAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO users (id, email, password_hash, role)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Role).Scan(&user.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT id, email, password_hash, role, email_confirmed_at, created_at FROM users
		 WHERE email = $1
		 `
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}

	query :=
		`SELECT id, email, password_hash, role, email_confirmed_at, created_at FROM users
		 WHERE id = $1
		 `
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// ConfirmEmail stamps email_confirmed_at unless it is already set, and
// returns the updated row.
func (r *PostgresRepository) ConfirmEmail(ctx context.Context, id string, at time.Time) (*models.User, error) {
	query :=
		`UPDATE users SET email_confirmed_at = COALESCE(email_confirmed_at, $2)
		 WHERE id = $1
		 RETURNING id, email, password_hash, role, email_confirmed_at, created_at
		 `
	return r.scanOne(r.db.QueryRowContext(ctx, query, id, at))
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var confirmed sql.NullTime

	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Role, &confirmed, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if confirmed.Valid {
		t := confirmed.Time
		user.EmailConfirmedAt = &t
	}
	return user, nil
}
