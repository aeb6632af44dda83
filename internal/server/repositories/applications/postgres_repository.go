package applications

import (
	"context"
	"fmt"

	"github.com/thriveos/thriveremote/internal/dbx"
	"github.com/thriveos/thriveremote/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, application *models.Application) error {

	query :=
		`INSERT INTO applications (id, user_id, job_title, company, status, applied_date, notes)
         VALUES ($1, $2, $3, $4, $5, $6, $7)
		 `

	_, err := r.db.ExecContext(ctx, query,
		application.ID, application.UserID, application.JobTitle, application.Company,
		application.Status, application.AppliedDate, application.Notes)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	query := `SELECT COUNT(*) FROM applications WHERE user_id = $1`

	var count int64
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return count, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Application, error) {
	query :=
		`SELECT id, user_id, job_title, company, status, applied_date, notes FROM applications
		 WHERE user_id = $1
		 ORDER BY applied_date DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Application
	for rows.Next() {
		a := &models.Application{}
		if err := rows.Scan(&a.ID, &a.UserID, &a.JobTitle, &a.Company,
			&a.Status, &a.AppliedDate, &a.Notes); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
