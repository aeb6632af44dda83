// Package ledger declares the repository contract for the append-only
// productivity log.
package ledger

import (
	"context"

	"github.com/thriveos/thriveremote/internal/server/models"
)

type Repository interface {
	// Append inserts one immutable log entry. Entries are never updated or
	// deleted.
	Append(ctx context.Context, entry *models.ProductivityLogEntry) error

	// ListByUser returns a user's entries, newest first, for display.
	ListByUser(ctx context.Context, userID string, limit int) ([]*models.ProductivityLogEntry, error)

	// SumPoints returns the point-in-time sum of a user's entries. Display
	// only; the running aggregate lives on the user row.
	SumPoints(ctx context.Context, userID string) (int64, error)
}
