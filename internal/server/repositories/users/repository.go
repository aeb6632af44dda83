// Package users declares the repository contract for user rows, including
// the conditional and delta updates the gamification engine depends on.
package users

import (
	"context"
	"time"

	"github.com/thriveos/thriveremote/internal/server/models"
)

type Repository interface {
	// Create inserts a fully populated user row.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// TouchLastActive sets last_active_at unconditionally.
	TouchLastActive(ctx context.Context, id string, now time.Time) error

	// ContinueStreak increments daily_streak, guarded by
	// last_streak_date = yesterday. Returns whether a row was updated.
	ContinueStreak(ctx context.Context, id string, today, yesterday time.Time) (bool, error)

	// RestartStreak sets daily_streak to 1, guarded by last_streak_date being
	// absent or older than yesterday. Returns whether a row was updated.
	RestartStreak(ctx context.Context, id string, today, yesterday time.Time) (bool, error)

	// AddScore applies a relative productivity_score update.
	AddScore(ctx context.Context, id string, delta int64) error

	// IncrementAchievements bumps achievements_unlocked by one.
	IncrementAchievements(ctx context.Context, id string) error

	UpdateSavings(ctx context.Context, id string, amount float64) error

	// AddCommandsExecuted / AddEasterEggs apply delta updates and return the
	// new counter value for threshold checks.
	AddCommandsExecuted(ctx context.Context, id string, delta int64) (int64, error)
	AddEasterEggs(ctx context.Context, id string, delta int64) (int64, error)

	// RaisePongHighScore stores score if it beats the stored one and returns
	// the resulting high score.
	RaisePongHighScore(ctx context.Context, id string, score int64) (int64, error)
}
