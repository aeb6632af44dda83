// Package achievements declares the repository contract for per-user
// achievement rows.
package achievements

import (
	"context"
	"time"

	"github.com/thriveos/thriveremote/internal/server/models"
)

type Repository interface {
	// Provision inserts the catalog rows for a user, skipping rows that
	// already exist.
	Provision(ctx context.Context, userID string, catalog []*models.Achievement) error

	ListByUser(ctx context.Context, userID string) ([]*models.Achievement, error)

	// Unlock flips unlocked to true, guarded by "only if currently false".
	// Returns whether this call performed the transition; zero rows affected
	// means already unlocked or no such row, and is not an error.
	Unlock(ctx context.Context, userID, achievementID string, now time.Time) (bool, error)
}
