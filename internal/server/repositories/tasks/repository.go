// Package tasks declares the repository contract for user tasks.
package tasks

import (
	"context"
	"time"

	"github.com/thriveos/thriveremote/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, task *models.Task) error

	// Complete transitions a pending task to completed. Returns whether a row
	// changed, so completing twice cannot double-award points.
	Complete(ctx context.Context, userID, taskID string, now time.Time) (bool, error)

	CountCompleted(ctx context.Context, userID string) (int64, error)

	ListByUser(ctx context.Context, userID string) ([]*models.Task, error)
}
