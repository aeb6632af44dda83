package ledger

import (
	"context"
	"encoding/json"
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

func (r *PostgresRepository) Append(ctx context.Context, entry *models.ProductivityLogEntry) error {

	metadata := entry.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	payload, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("metadata marshal error: %w", err)
	}

	query :=
		`INSERT INTO productivity_logs (id, user_id, action, points, ts, metadata)
         VALUES ($1, $2, $3, $4, $5, $6)
		 `

	_, err = r.db.ExecContext(ctx, query,
		entry.ID, entry.UserID, entry.Action, entry.Points, entry.Timestamp, payload)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*models.ProductivityLogEntry, error) {
	query :=
		`SELECT id, user_id, action, points, ts, metadata FROM productivity_logs
		 WHERE user_id = $1
		 ORDER BY ts DESC
		 LIMIT $2
		 `

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var entries []*models.ProductivityLogEntry
	for rows.Next() {
		entry := &models.ProductivityLogEntry{}
		var payload []byte
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Action,
			&entry.Points, &entry.Timestamp, &payload); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &entry.Metadata); err != nil {
				return nil, fmt.Errorf("metadata unmarshal error: %w", err)
			}
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return entries, nil
}

func (r *PostgresRepository) SumPoints(ctx context.Context, userID string) (int64, error) {
	query := `SELECT COALESCE(SUM(points), 0) FROM productivity_logs WHERE user_id = $1`

	var sum int64
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return sum, nil
}
