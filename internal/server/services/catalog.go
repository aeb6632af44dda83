package services

import "github.com/thriveos/thriveremote/internal/server/models"

// AchievementBonusPoints is awarded once per unlock, tagged
// ActionAchievementUnlocked.
const AchievementBonusPoints = 50

// Catalog keys.
const (
	AchievementFirstJobApply      = "first_job_apply"
	AchievementSavingsMilestone25 = "savings_milestone_25"
	AchievementSavingsMilestone50 = "savings_milestone_50"
	AchievementTaskMaster         = "task_master"
	AchievementTerminalNinja      = "terminal_ninja"
	AchievementPongChampion       = "pong_champion"
	AchievementEasterHunter       = "easter_hunter"
	AchievementStreakWeek         = "streak_week"
	AchievementRelocationExplorer = "relocation_explorer"
)

// achievementCatalog is the fixed set provisioned for every user at
// creation.
func achievementCatalog() []*models.Achievement {
	return []*models.Achievement{
		{
			ID:          AchievementFirstJobApply,
			Type:        "job_application",
			Title:       "First Step",
			Description: "Applied to your first job",
			Icon:        "🎯",
		},
		{
			ID:          AchievementSavingsMilestone25,
			Type:        "savings",
			Title:       "Quarter Way There",
			Description: "Reached 25% of savings goal",
			Icon:        "💰",
		},
		{
			ID:          AchievementSavingsMilestone50,
			Type:        "savings",
			Title:       "Halfway Hero",
			Description: "Reached 50% of savings goal",
			Icon:        "💎",
		},
		{
			ID:          AchievementTaskMaster,
			Type:        "tasks",
			Title:       "Task Master",
			Description: "Completed 10 tasks",
			Icon:        "✅",
		},
		{
			ID:          AchievementTerminalNinja,
			Type:        "terminal",
			Title:       "Terminal Ninja",
			Description: "Executed 50 terminal commands",
			Icon:        "⚡",
		},
		{
			ID:          AchievementPongChampion,
			Type:        "gaming",
			Title:       "Pong Champion",
			Description: "Score 200 points in Pong",
			Icon:        "🏆",
		},
		{
			ID:          AchievementEasterHunter,
			Type:        "easter_eggs",
			Title:       "Easter Egg Hunter",
			Description: "Found 5 easter eggs",
			Icon:        "🥚",
		},
		{
			ID:          AchievementStreakWeek,
			Type:        "streak",
			Title:       "Weekly Warrior",
			Description: "Maintained 7-day streak",
			Icon:        "🔥",
		},
		{
			ID:          AchievementRelocationExplorer,
			Type:        "relocation",
			Title:       "Relocation Explorer",
			Description: "Explored relocation data and properties",
			Icon:        "🏡",
		},
	}
}

// UserStats is the snapshot unlock predicates are evaluated against.
type UserStats struct {
	DailyStreak       int64
	ProductivityScore int64
	SavingsGoal       float64
	CurrentSavings    float64
	PongHighScore     int64
	CommandsExecuted  int64
	EasterEggsFound   int64
	TasksCompleted    int64
	Applications      int64
}

// unlockPredicates maps each catalog key to its threshold check. All
// predicates are simple thresholds over existing counters; none inspects
// other achievements, so a single evaluation pass cannot cascade.
// AchievementRelocationExplorer has no counter and unlocks directly on the
// explore action.
var unlockPredicates = map[string]func(UserStats) bool{
	AchievementFirstJobApply: func(s UserStats) bool { return s.Applications >= 1 },
	AchievementSavingsMilestone25: func(s UserStats) bool {
		return s.SavingsGoal > 0 && s.CurrentSavings/s.SavingsGoal >= 0.25
	},
	AchievementSavingsMilestone50: func(s UserStats) bool {
		return s.SavingsGoal > 0 && s.CurrentSavings/s.SavingsGoal >= 0.50
	},
	AchievementTaskMaster:    func(s UserStats) bool { return s.TasksCompleted >= 10 },
	AchievementTerminalNinja: func(s UserStats) bool { return s.CommandsExecuted >= 50 },
	AchievementPongChampion:  func(s UserStats) bool { return s.PongHighScore >= 200 },
	AchievementEasterHunter:  func(s UserStats) bool { return s.EasterEggsFound >= 5 },
	AchievementStreakWeek:    func(s UserStats) bool { return s.DailyStreak >= 7 },
}
