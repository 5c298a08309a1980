package profiles

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/eduxperience/eduxperience/internal/common"
	"github.com/eduxperience/eduxperience/internal/dbx"
	"github.com/eduxperience/eduxperience/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	payload := p.Payload
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}

	query :=
		`INSERT INTO profiles (user_id, kind, payload)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, kind) DO NOTHING
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query, p.UserID, p.Kind, []byte(payload)).Scan(&p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	p.Payload = payload
	return p, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, kind string) (*models.Profile, error) {
	query :=
		`SELECT user_id, kind, payload, created_at FROM profiles
		 WHERE user_id = $1 AND kind = $2
		 `

	p := &models.Profile{}
	var payload []byte
	err := r.db.QueryRowContext(ctx, query, userID, kind).Scan(&p.UserID, &p.Kind, &payload, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	p.Payload = payload
	return p, nil
}
