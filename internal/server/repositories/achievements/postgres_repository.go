package achievements

import (
	"context"
	"fmt"
	"time"

	"github.com/thriveos/thriveremote/internal/dbx"
	"github.com/thriveos/thriveremote/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Provision(ctx context.Context, userID string, catalog []*models.Achievement) error {

	query :=
		`INSERT INTO achievements (id, user_id, achievement_type, title, description, icon, unlocked)
         VALUES ($1, $2, $3, $4, $5, $6, FALSE)
		 ON CONFLICT (user_id, id) DO NOTHING
		 `

	for _, a := range catalog {
		_, err := r.db.ExecContext(ctx, query,
			a.ID, userID, a.Type, a.Title, a.Description, a.Icon)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}

	return nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Achievement, error) {
	query :=
		`SELECT id, user_id, achievement_type, title, description, icon, unlocked, unlock_date
		 FROM achievements
		 WHERE user_id = $1
		 ORDER BY unlocked DESC, id ASC
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Achievement
	for rows.Next() {
		a := &models.Achievement{}
		if err := rows.Scan(&a.ID, &a.UserID, &a.Type, &a.Title,
			&a.Description, &a.Icon, &a.Unlocked, &a.UnlockDate); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

// Unlock is the idempotency mechanism for the whole achievement flow: the
// "AND unlocked = FALSE" guard means that of N concurrent callers exactly one
// observes an affected row.
func (r *PostgresRepository) Unlock(ctx context.Context, userID, achievementID string, now time.Time) (bool, error) {
	query :=
		`UPDATE achievements
		 SET unlocked = TRUE, unlock_date = $3
		 WHERE user_id = $1 AND id = $2 AND unlocked = FALSE
		 `

	res, err := r.db.ExecContext(ctx, query, userID, achievementID, now)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}
