package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/thriveos/thriveremote/internal/common"
	"github.com/thriveos/thriveremote/internal/dbx"
	"github.com/thriveos/thriveremote/internal/metrics"
	"github.com/thriveos/thriveremote/internal/server/models"
	"github.com/thriveos/thriveremote/internal/server/repositories/repomanager"
)

// Action tags recorded in the productivity log.
const (
	ActionTaskCreated         = "task_created"
	ActionTaskCompleted       = "task_completed"
	ActionJobApplication      = "job_application"
	ActionSavingsUpdate       = "savings_update"
	ActionTerminalCommand     = "terminal_command"
	ActionPongScore           = "pong_score"
	ActionEasterEgg           = "easter_egg_found"
	ActionRelocationExplored  = "relocation_explored"
	ActionAchievementUnlocked = "achievement_unlocked"
)

// LedgerService is the single write path to the productivity log and, with
// it, the only component allowed to change productivity_score. Every award
// appends one immutable entry and applies the score delta in the same
// transaction, keeping the two representations in lockstep.
type LedgerService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewLedgerService(db *sql.DB, m repomanager.RepositoryManager) *LedgerService {
	return &LedgerService{db: db, repomanager: m, now: time.Now}
}

// Award logs one scored action and bumps the user's aggregate score by
// points. Negative points are rejected: no correction or refund actions
// exist in this design.
func (s *LedgerService) Award(ctx context.Context, userID, action string, points int64, metadata map[string]any) error {
	if points < 0 {
		return common.ErrNegativePoints
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.award(ctx, tx, userID, action, points, metadata)
	})
}

// award runs inside an existing transaction. The score update is a relative
// (delta) write, never read-then-write-absolute, so concurrent awards for
// one user converge regardless of interleaving.
func (s *LedgerService) award(ctx context.Context, tx dbx.DBTX, userID, action string, points int64, metadata map[string]any) error {
	entry := &models.ProductivityLogEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Action:    action,
		Points:    points,
		Timestamp: s.now(),
		Metadata:  metadata,
	}

	if err := s.repomanager.Ledger(tx).Append(ctx, entry); err != nil {
		return err
	}
	if err := s.repomanager.Users(tx).AddScore(ctx, userID, points); err != nil {
		return err
	}

	metrics.RecordPointsAwarded(action, int(points))
	return nil
}

// History returns a user's most recent ledger entries for display.
func (s *LedgerService) History(ctx context.Context, userID string, limit int) ([]*models.ProductivityLogEntry, error) {
	return s.repomanager.Ledger(s.db).ListByUser(ctx, userID, limit)
}
