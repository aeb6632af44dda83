// Package models holds the persistent entities of the gamification engine.
package models

import "time"

// User carries the per-user gamification state. ProductivityScore is kept
// consistent with the productivity log by delta updates only; DailyStreak and
// LastStreakDate change together through the activity tracker.
type User struct {
	ID                   string
	Username             string
	PasswordHash         string
	CreatedAt            time.Time
	LastActiveAt         time.Time
	TotalSessions        int64
	ProductivityScore    int64
	DailyStreak          int64
	LastStreakDate       *time.Time // calendar date, nil until first touch
	SavingsGoal          float64
	CurrentSavings       float64
	AchievementsUnlocked int64
	PongHighScore        int64
	CommandsExecuted     int64
	EasterEggsFound      int64
}
