// Package applications declares the repository contract for job applications.
package applications

import (
	"context"

	"github.com/thriveos/thriveremote/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, application *models.Application) error

	CountByUser(ctx context.Context, userID string) (int64, error)

	ListByUser(ctx context.Context, userID string) ([]*models.Application, error)
}
