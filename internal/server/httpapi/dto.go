package httpapi

import (
	"time"

	"github.com/thriveos/thriveremote/internal/server/models"
	"github.com/thriveos/thriveremote/internal/server/services"
)

// Wire representations. The persistence models stay JSON-free; this package
// owns the field names the frontend sees.

type userJSON struct {
	ID                   string     `json:"id"`
	Username             string     `json:"username"`
	CreatedAt            time.Time  `json:"created_at"`
	LastActiveAt         time.Time  `json:"last_active_at"`
	TotalSessions        int64      `json:"total_sessions"`
	ProductivityScore    int64      `json:"productivity_score"`
	DailyStreak          int64      `json:"daily_streak"`
	LastStreakDate       *time.Time `json:"last_streak_date,omitempty"`
	AchievementsUnlocked int64      `json:"achievements_unlocked"`
	PongHighScore        int64      `json:"pong_high_score"`
	CommandsExecuted     int64      `json:"commands_executed"`
	EasterEggsFound      int64      `json:"easter_eggs_found"`
}

func toUserJSON(u *models.User) userJSON {
	return userJSON{
		ID:                   u.ID,
		Username:             u.Username,
		CreatedAt:            u.CreatedAt,
		LastActiveAt:         u.LastActiveAt,
		TotalSessions:        u.TotalSessions,
		ProductivityScore:    u.ProductivityScore,
		DailyStreak:          u.DailyStreak,
		LastStreakDate:       u.LastStreakDate,
		AchievementsUnlocked: u.AchievementsUnlocked,
		PongHighScore:        u.PongHighScore,
		CommandsExecuted:     u.CommandsExecuted,
		EasterEggsFound:      u.EasterEggsFound,
	}
}

type savingsJSON struct {
	Current     float64 `json:"current"`
	StreakBonus float64 `json:"streak_bonus"`
	Total       float64 `json:"total"`
	Goal        float64 `json:"goal"`
	Progress    float64 `json:"progress"`
}

func toSavingsJSON(v services.SavingsView) savingsJSON {
	return savingsJSON{
		Current:     v.Current,
		StreakBonus: v.StreakBonus,
		Total:       v.Total,
		Goal:        v.Goal,
		Progress:    v.Progress,
	}
}

type taskJSON struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedDate *time.Time `json:"completed_date,omitempty"`
}

func toTaskJSON(t *models.Task) taskJSON {
	return taskJSON{
		ID:            t.ID,
		Title:         t.Title,
		Status:        t.Status,
		CreatedAt:     t.CreatedAt,
		CompletedDate: t.CompletedDate,
	}
}

func toTasksJSON(tasks []*models.Task) []taskJSON {
	out := make([]taskJSON, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskJSON(t))
	}
	return out
}

type applicationJSON struct {
	ID          string    `json:"id"`
	JobTitle    string    `json:"job_title"`
	Company     string    `json:"company"`
	Status      string    `json:"status"`
	AppliedDate time.Time `json:"applied_date"`
	Notes       string    `json:"notes,omitempty"`
}

func toApplicationJSON(a *models.Application) applicationJSON {
	return applicationJSON{
		ID:          a.ID,
		JobTitle:    a.JobTitle,
		Company:     a.Company,
		Status:      a.Status,
		AppliedDate: a.AppliedDate,
		Notes:       a.Notes,
	}
}

func toApplicationsJSON(apps []*models.Application) []applicationJSON {
	out := make([]applicationJSON, 0, len(apps))
	for _, a := range apps {
		out = append(out, toApplicationJSON(a))
	}
	return out
}

type achievementJSON struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	Unlocked    bool       `json:"unlocked"`
	UnlockDate  *time.Time `json:"unlock_date,omitempty"`
}

func toAchievementsJSON(list []*models.Achievement) []achievementJSON {
	out := make([]achievementJSON, 0, len(list))
	for _, a := range list {
		out = append(out, achievementJSON{
			ID:          a.ID,
			Type:        a.Type,
			Title:       a.Title,
			Description: a.Description,
			Icon:        a.Icon,
			Unlocked:    a.Unlocked,
			UnlockDate:  a.UnlockDate,
		})
	}
	return out
}

type logEntryJSON struct {
	ID        string         `json:"id"`
	Action    string         `json:"action"`
	Points    int64          `json:"points"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

func toLogJSON(entries []*models.ProductivityLogEntry) []logEntryJSON {
	out := make([]logEntryJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, logEntryJSON{
			ID:        e.ID,
			Action:    e.Action,
			Points:    e.Points,
			Timestamp: e.Timestamp,
			Metadata:  e.Metadata,
		})
	}
	return out
}
