// Package sessions declares the repository contract for the persistent tier
// of session storage.
package sessions

import (
	"context"
	"time"

	"github.com/thriveos/thriveremote/internal/server/models"
)

type Repository interface {
	// Create stores a new session row.
	Create(ctx context.Context, session *models.Session) error

	// FindActive looks up an active session by token. Inactive or absent
	// tokens yield a not-found error; expiry is checked by the caller.
	FindActive(ctx context.Context, token string) (*models.Session, error)

	// TouchLastUsed updates last_used. Best-effort callers may ignore the error.
	TouchLastUsed(ctx context.Context, token string, now time.Time) error

	// Deactivate marks the session inactive. Unknown tokens are a no-op.
	Deactivate(ctx context.Context, token string) error
}
