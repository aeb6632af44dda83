package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/thriveos/thriveremote/internal/common"
	"github.com/thriveos/thriveremote/internal/dbx"
	"github.com/thriveos/thriveremote/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, username, password_hash, created_at, last_active_at,
	total_sessions, productivity_score, daily_streak, last_streak_date,
	savings_goal, current_savings, achievements_unlocked,
	pong_high_score, commands_executed, easter_eggs_found`

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var streakDate sql.NullTime

	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash,
		&user.CreatedAt, &user.LastActiveAt, &user.TotalSessions,
		&user.ProductivityScore, &user.DailyStreak, &streakDate,
		&user.SavingsGoal, &user.CurrentSavings, &user.AchievementsUnlocked,
		&user.PongHighScore, &user.CommandsExecuted, &user.EasterEggsFound)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if streakDate.Valid {
		d := streakDate.Time
		user.LastStreakDate = &d
	}
	return user, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (id, username, password_hash, created_at, last_active_at,
             total_sessions, productivity_score, daily_streak, last_streak_date,
             savings_goal, current_savings, achievements_unlocked,
             pong_high_score, commands_executed, easter_eggs_found)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 `

	var streakDate any
	if user.LastStreakDate != nil {
		streakDate = *user.LastStreakDate
	}

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Username, user.PasswordHash, user.CreatedAt, user.LastActiveAt,
		user.TotalSessions, user.ProductivityScore, user.DailyStreak, streakDate,
		user.SavingsGoal, user.CurrentSavings, user.AchievementsUnlocked,
		user.PongHighScore, user.CommandsExecuted, user.EasterEggsFound)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, username))
}

func (r *PostgresRepository) TouchLastActive(ctx context.Context, id string, now time.Time) error {
	query := `UPDATE users SET last_active_at = $2 WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id, now); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ContinueStreak and RestartStreak express the streak transition as
// conditional writes: the date guard makes the second of two concurrent
// touches a no-op instead of a double increment.

func (r *PostgresRepository) ContinueStreak(ctx context.Context, id string, today, yesterday time.Time) (bool, error) {
	query :=
		`UPDATE users
		 SET daily_streak = daily_streak + 1, last_streak_date = $2,
		     total_sessions = total_sessions + 1
		 WHERE id = $1 AND last_streak_date = $3
		 `

	res, err := r.db.ExecContext(ctx, query, id, today, yesterday)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepository) RestartStreak(ctx context.Context, id string, today, yesterday time.Time) (bool, error) {
	query :=
		`UPDATE users
		 SET daily_streak = 1, last_streak_date = $2,
		     total_sessions = total_sessions + 1
		 WHERE id = $1 AND (last_streak_date IS NULL OR last_streak_date < $3)
		 `

	res, err := r.db.ExecContext(ctx, query, id, today, yesterday)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepository) AddScore(ctx context.Context, id string, delta int64) error {
	query := `UPDATE users SET productivity_score = productivity_score + $2 WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id, delta); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) IncrementAchievements(ctx context.Context, id string) error {
	query := `UPDATE users SET achievements_unlocked = achievements_unlocked + 1 WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdateSavings(ctx context.Context, id string, amount float64) error {
	query := `UPDATE users SET current_savings = $2 WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id, amount); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) AddCommandsExecuted(ctx context.Context, id string, delta int64) (int64, error) {
	query :=
		`UPDATE users SET commands_executed = commands_executed + $2
		 WHERE id = $1
		 RETURNING commands_executed
		 `

	var total int64
	if err := r.db.QueryRowContext(ctx, query, id, delta).Scan(&total); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return total, nil
}

func (r *PostgresRepository) AddEasterEggs(ctx context.Context, id string, delta int64) (int64, error) {
	query :=
		`UPDATE users SET easter_eggs_found = easter_eggs_found + $2
		 WHERE id = $1
		 RETURNING easter_eggs_found
		 `

	var total int64
	if err := r.db.QueryRowContext(ctx, query, id, delta).Scan(&total); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return total, nil
}

func (r *PostgresRepository) RaisePongHighScore(ctx context.Context, id string, score int64) (int64, error) {
	query :=
		`UPDATE users SET pong_high_score = GREATEST(pong_high_score, $2)
		 WHERE id = $1
		 RETURNING pong_high_score
		 `

	var best int64
	if err := r.db.QueryRowContext(ctx, query, id, score).Scan(&best); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return best, nil
}
