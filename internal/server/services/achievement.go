package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/thriveos/thriveremote/internal/dbx"
	"github.com/thriveos/thriveremote/internal/logging"
	"github.com/thriveos/thriveremote/internal/metrics"
	"github.com/thriveos/thriveremote/internal/server/models"
	"github.com/thriveos/thriveremote/internal/server/repositories/repomanager"
)

// AchievementService owns the unlock path. The conditional update in the
// achievements repository is the only authority on whether an unlock
// happened; the counter bump and the bonus award ride in the same
// transaction, so a crash cannot leave an unlocked achievement without its
// bonus or vice versa.
type AchievementService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	ledger      *LedgerService
	logger      logging.Logger
	now         func() time.Time
}

func NewAchievementService(db *sql.DB, m repomanager.RepositoryManager, ledger *LedgerService, logger logging.Logger) *AchievementService {
	return &AchievementService{db: db, repomanager: m, ledger: ledger, logger: logger, now: time.Now}
}

// TryUnlock attempts the locked-to-unlocked transition for one achievement.
// It reports whether this call performed the transition; repeated or
// concurrent calls for the same achievement yield true exactly once, and only
// that call increments achievements_unlocked and awards the bonus points.
func (s *AchievementService) TryUnlock(ctx context.Context, userID, achievementID string) (bool, error) {
	var unlocked bool
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		ok, err := s.repomanager.Achievements(tx).Unlock(ctx, userID, achievementID, s.now())
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := s.repomanager.Users(tx).IncrementAchievements(ctx, userID); err != nil {
			return err
		}
		if err := s.ledger.award(ctx, tx, userID, ActionAchievementUnlocked, AchievementBonusPoints,
			map[string]any{"achievement_id": achievementID}); err != nil {
			return err
		}
		unlocked = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if unlocked {
		metrics.RecordAchievementUnlock(achievementID)
		s.logger.Info(ctx, "achievement unlocked", "user_id", userID, "achievement_id", achievementID)
	}
	return unlocked, nil
}

// Evaluate checks the given catalog keys against the user's current counters
// and unlocks every one whose threshold is met. The bonus award itself is a
// plain ledger entry, not a counter any predicate reads, so evaluation never
// cascades into further unlocks.
func (s *AchievementService) Evaluate(ctx context.Context, userID string, achievementIDs ...string) error {
	stats, err := s.collectStats(ctx, userID)
	if err != nil {
		return err
	}

	for _, id := range achievementIDs {
		predicate, ok := unlockPredicates[id]
		if !ok || !predicate(stats) {
			continue
		}
		if _, err := s.TryUnlock(ctx, userID, id); err != nil {
			return err
		}
	}
	return nil
}

// ListByUser returns the user's full catalog with unlock state.
func (s *AchievementService) ListByUser(ctx context.Context, userID string) ([]*models.Achievement, error) {
	return s.repomanager.Achievements(s.db).ListByUser(ctx, userID)
}

func (s *AchievementService) collectStats(ctx context.Context, userID string) (UserStats, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return UserStats{}, err
	}
	tasksCompleted, err := s.repomanager.Tasks(s.db).CountCompleted(ctx, userID)
	if err != nil {
		return UserStats{}, err
	}
	applications, err := s.repomanager.Applications(s.db).CountByUser(ctx, userID)
	if err != nil {
		return UserStats{}, err
	}

	return UserStats{
		DailyStreak:       user.DailyStreak,
		ProductivityScore: user.ProductivityScore,
		SavingsGoal:       user.SavingsGoal,
		CurrentSavings:    user.CurrentSavings,
		PongHighScore:     user.PongHighScore,
		CommandsExecuted:  user.CommandsExecuted,
		EasterEggsFound:   user.EasterEggsFound,
		TasksCompleted:    tasksCompleted,
		Applications:      applications,
	}, nil
}
