package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/thriveos/thriveremote/internal/common"
	"github.com/thriveos/thriveremote/internal/cryptox"
	"github.com/thriveos/thriveremote/internal/dbx"
	"github.com/thriveos/thriveremote/internal/logging"
	"github.com/thriveos/thriveremote/internal/server/models"
	"github.com/thriveos/thriveremote/internal/server/repositories/repomanager"
)

// defaultSavingsGoal seeds new accounts with a relocation target to measure
// savings milestones against.
const defaultSavingsGoal = 5000

// UserService handles account lifecycle: registration, login, and on-demand
// provisioning of demo identities.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	sessions    *SessionService
	logger      logging.Logger
	now         func() time.Time
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, sessions *SessionService, logger logging.Logger) *UserService {
	return &UserService{db: db, repomanager: m, sessions: sessions, logger: logger, now: time.Now}
}

// Register creates an account and opens its first session. The user starts
// with a streak of 1 anchored to today, so the first login already counts as
// a day of activity.
func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, string, error) {
	if _, err := s.repomanager.Users(s.db).GetByUsername(ctx, username); err == nil {
		return nil, "", common.ErrorUserAlreadyExists
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, "", err
	}

	user, err := s.provision(ctx, uuid.NewString(), username, cryptox.HashPassword(password))
	if err != nil {
		return nil, "", err
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID, "username", username)
	return user, token, nil
}

// Login verifies credentials and opens a new session. A wrong password and an
// unknown username both return ErrorWrongCredentials.
func (s *UserService) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	user, err := s.repomanager.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", common.ErrorWrongCredentials
		}
		return nil, "", err
	}

	ok, err := cryptox.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, "", common.ErrorInternal
	}
	if !ok {
		return nil, "", common.ErrorWrongCredentials
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// GetOrCreate fetches a user by id, provisioning a passwordless demo account
// on first sight. Demo identities come from the session fallback and carry a
// derived display name.
func (s *UserService) GetOrCreate(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	return s.provision(ctx, userID, demoUsername(userID), "")
}

// provision inserts the user row and its achievement catalog in one
// transaction.
func (s *UserService) provision(ctx context.Context, id, username, passwordHash string) (*models.User, error) {
	now := s.now()
	today := dateOf(now)
	user := &models.User{
		ID:             id,
		Username:       username,
		PasswordHash:   passwordHash,
		CreatedAt:      now,
		LastActiveAt:   now,
		TotalSessions:  1,
		DailyStreak:    1,
		LastStreakDate: &today,
		SavingsGoal:    defaultSavingsGoal,
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		created, err := s.repomanager.Users(tx).Create(ctx, user)
		if err != nil {
			return err
		}
		user = created
		return s.repomanager.Achievements(tx).Provision(ctx, id, achievementCatalog())
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// demoUsername derives a stable display name from the tail of the user id.
func demoUsername(userID string) string {
	suffix := userID
	if len(suffix) > 6 {
		suffix = suffix[len(suffix)-6:]
	}
	return "User_" + suffix
}
