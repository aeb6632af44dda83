package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/thriveos/thriveremote/internal/logging"
	"github.com/thriveos/thriveremote/internal/server/repositories/repomanager"
)

// ActivityService tracks per-user activity and drives the daily streak state
// machine. The date comparisons live in the repository's conditional updates,
// so two touches racing across a midnight boundary cannot double-increment
// the streak.
type ActivityService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	achievements *AchievementService
	logger       logging.Logger
	now          func() time.Time
}

func NewActivityService(db *sql.DB, m repomanager.RepositoryManager, achievements *AchievementService, logger logging.Logger) *ActivityService {
	return &ActivityService{db: db, repomanager: m, achievements: achievements, logger: logger, now: time.Now}
}

// dateOf truncates a time to its UTC calendar date. Streak transitions
// compare whole dates, never clock times.
func dateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Touch records activity for a user. The precise last-active timestamp moves
// on every call; the streak only moves when the calendar date does:
//
//   - last streak date is today: streak unchanged
//   - last streak date is yesterday: streak + 1
//   - anything older, or never set: streak restarts at 1
//
// A date-boundary transition also counts one visit (total_sessions), and a
// continued streak is checked against the weekly threshold.
func (s *ActivityService) Touch(ctx context.Context, userID string) error {
	now := s.now()
	today := dateOf(now)
	yesterday := today.AddDate(0, 0, -1)

	repo := s.repomanager.Users(s.db)

	if err := repo.TouchLastActive(ctx, userID, now); err != nil {
		return err
	}

	continued, err := repo.ContinueStreak(ctx, userID, today, yesterday)
	if err != nil {
		return err
	}
	if continued {
		if err := s.achievements.Evaluate(ctx, userID, AchievementStreakWeek); err != nil {
			s.logger.Warn(ctx, "streak achievement evaluation failed", "user_id", userID, "error", err)
		}
		return nil
	}

	// Not yesterday: either today already (both guards miss, no-op) or the
	// streak is broken and restarts.
	if _, err := repo.RestartStreak(ctx, userID, today, yesterday); err != nil {
		return err
	}
	return nil
}
