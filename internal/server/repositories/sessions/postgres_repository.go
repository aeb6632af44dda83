package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/thriveos/thriveremote/internal/common"
	"github.com/thriveos/thriveremote/internal/dbx"
	"github.com/thriveos/thriveremote/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, session *models.Session) error {

	query :=
		`INSERT INTO sessions (token, user_id, created_at, last_used, expires_at, active)
         VALUES ($1, $2, $3, $4, $5, $6)
		 `

	_, err := r.db.ExecContext(ctx, query,
		session.Token, session.UserID, session.CreatedAt, session.LastUsed,
		session.ExpiresAt, session.Active)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) FindActive(ctx context.Context, token string) (*models.Session, error) {
	query :=
		`SELECT token, user_id, created_at, last_used, expires_at, active FROM sessions
		 WHERE token = $1 AND active = TRUE
		 `

	session := &models.Session{}
	err := r.db.QueryRowContext(ctx, query, token).Scan(&session.Token, &session.UserID,
		&session.CreatedAt, &session.LastUsed, &session.ExpiresAt, &session.Active)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return session, nil
}

func (r *PostgresRepository) TouchLastUsed(ctx context.Context, token string, now time.Time) error {
	query := `UPDATE sessions SET last_used = $2 WHERE token = $1`

	if _, err := r.db.ExecContext(ctx, query, token, now); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Deactivate(ctx context.Context, token string) error {
	query := `UPDATE sessions SET active = FALSE WHERE token = $1`

	if _, err := r.db.ExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
