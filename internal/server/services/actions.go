package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/thriveos/thriveremote/internal/logging"
	"github.com/thriveos/thriveremote/internal/server/models"
	"github.com/thriveos/thriveremote/internal/server/repositories/repomanager"
)

// Points per scored action.
const (
	PointsTaskCreated    = 5
	PointsTaskCompleted  = 20
	PointsJobApplication = 15
	PointsSavingsUpdate  = 10
)

// streakSavingsBonus is the per-day virtual bonus applied when presenting
// savings. It is display-only and never written back to current_savings.
const streakSavingsBonus = 25

// SavingsView is the derived presentation of a user's savings progress.
type SavingsView struct {
	Current     float64
	StreakBonus float64
	Total       float64
	Goal        float64
	Progress    float64 // percent of goal, capped at 100
}

// Dashboard aggregates the state the frontend renders on one screen.
type Dashboard struct {
	User         *models.User
	Savings      SavingsView
	Tasks        []*models.Task
	Applications []*models.Application
	Achievements []*models.Achievement
	RecentLog    []*models.ProductivityLogEntry
}

// ActionService implements the user-facing domain actions. Each scored action
// goes through the ledger for its points and then re-evaluates only the
// achievements whose counters it could have moved.
type ActionService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	ledger       *LedgerService
	achievements *AchievementService
	logger       logging.Logger
	now          func() time.Time
}

func NewActionService(db *sql.DB, m repomanager.RepositoryManager, ledger *LedgerService, achievements *AchievementService, logger logging.Logger) *ActionService {
	return &ActionService{db: db, repomanager: m, ledger: ledger, achievements: achievements, logger: logger, now: time.Now}
}

// CreateTask records a new pending task and awards its creation points.
func (s *ActionService) CreateTask(ctx context.Context, userID, title string) (*models.Task, error) {
	task := &models.Task{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Status:    "pending",
		CreatedAt: s.now(),
	}
	if err := s.repomanager.Tasks(s.db).Create(ctx, task); err != nil {
		return nil, err
	}
	if err := s.ledger.Award(ctx, userID, ActionTaskCreated, PointsTaskCreated, map[string]any{"task_id": task.ID}); err != nil {
		return nil, err
	}
	return task, nil
}

// CompleteTask transitions a task to completed. Points and the task-count
// achievement check only fire when this call performed the transition, so
// completing the same task twice scores once.
func (s *ActionService) CompleteTask(ctx context.Context, userID, taskID string) (bool, error) {
	completed, err := s.repomanager.Tasks(s.db).Complete(ctx, userID, taskID, s.now())
	if err != nil {
		return false, err
	}
	if !completed {
		return false, nil
	}

	if err := s.ledger.Award(ctx, userID, ActionTaskCompleted, PointsTaskCompleted, map[string]any{"task_id": taskID}); err != nil {
		return true, err
	}
	if err := s.achievements.Evaluate(ctx, userID, AchievementTaskMaster); err != nil {
		s.logger.Warn(ctx, "task achievement evaluation failed", "user_id", userID, "error", err)
	}
	return true, nil
}

// ApplyToJob records a job application, awards points, and checks the
// first-application achievement.
func (s *ActionService) ApplyToJob(ctx context.Context, userID, jobTitle, company, notes string) (*models.Application, error) {
	application := &models.Application{
		ID:          uuid.NewString(),
		UserID:      userID,
		JobTitle:    jobTitle,
		Company:     company,
		Status:      "applied",
		AppliedDate: s.now(),
		Notes:       notes,
	}
	if err := s.repomanager.Applications(s.db).Create(ctx, application); err != nil {
		return nil, err
	}

	if err := s.ledger.Award(ctx, userID, ActionJobApplication, PointsJobApplication,
		map[string]any{"company": company, "job_title": jobTitle}); err != nil {
		return nil, err
	}
	if err := s.achievements.Evaluate(ctx, userID, AchievementFirstJobApply); err != nil {
		s.logger.Warn(ctx, "application achievement evaluation failed", "user_id", userID, "error", err)
	}
	return application, nil
}

// UpdateSavings sets the stored savings amount, awards update points, and
// checks the milestone achievements against the new amount.
func (s *ActionService) UpdateSavings(ctx context.Context, userID string, amount float64) (SavingsView, error) {
	repo := s.repomanager.Users(s.db)
	if err := repo.UpdateSavings(ctx, userID, amount); err != nil {
		return SavingsView{}, err
	}

	if err := s.ledger.Award(ctx, userID, ActionSavingsUpdate, PointsSavingsUpdate, map[string]any{"amount": amount}); err != nil {
		return SavingsView{}, err
	}
	if err := s.achievements.Evaluate(ctx, userID, AchievementSavingsMilestone25, AchievementSavingsMilestone50); err != nil {
		s.logger.Warn(ctx, "savings achievement evaluation failed", "user_id", userID, "error", err)
	}

	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		return SavingsView{}, err
	}
	return savingsView(user), nil
}

// Savings returns the derived savings view without changing anything.
func (s *ActionService) Savings(ctx context.Context, userID string) (SavingsView, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return SavingsView{}, err
	}
	return savingsView(user), nil
}

func savingsView(user *models.User) SavingsView {
	view := SavingsView{
		Current:     user.CurrentSavings,
		StreakBonus: float64(user.DailyStreak) * streakSavingsBonus,
		Goal:        user.SavingsGoal,
	}
	view.Total = view.Current + view.StreakBonus
	if view.Goal > 0 {
		view.Progress = view.Total / view.Goal * 100
		if view.Progress > 100 {
			view.Progress = 100
		}
	}
	return view
}

// RecordCommand bumps the terminal command counter and checks the related
// achievement once the counter crosses its threshold.
func (s *ActionService) RecordCommand(ctx context.Context, userID string) (int64, error) {
	count, err := s.repomanager.Users(s.db).AddCommandsExecuted(ctx, userID, 1)
	if err != nil {
		return 0, err
	}
	if err := s.achievements.Evaluate(ctx, userID, AchievementTerminalNinja); err != nil {
		s.logger.Warn(ctx, "terminal achievement evaluation failed", "user_id", userID, "error", err)
	}
	return count, nil
}

// RecordPongScore stores a new high score if score beats the stored one and
// checks the gaming achievement.
func (s *ActionService) RecordPongScore(ctx context.Context, userID string, score int64) (int64, error) {
	high, err := s.repomanager.Users(s.db).RaisePongHighScore(ctx, userID, score)
	if err != nil {
		return 0, err
	}
	if err := s.achievements.Evaluate(ctx, userID, AchievementPongChampion); err != nil {
		s.logger.Warn(ctx, "pong achievement evaluation failed", "user_id", userID, "error", err)
	}
	return high, nil
}

// RecordEasterEgg bumps the easter egg counter and checks the hunter
// achievement.
func (s *ActionService) RecordEasterEgg(ctx context.Context, userID string) (int64, error) {
	count, err := s.repomanager.Users(s.db).AddEasterEggs(ctx, userID, 1)
	if err != nil {
		return 0, err
	}
	if err := s.achievements.Evaluate(ctx, userID, AchievementEasterHunter); err != nil {
		s.logger.Warn(ctx, "easter egg achievement evaluation failed", "user_id", userID, "error", err)
	}
	return count, nil
}

// ExploreRelocation unlocks the explorer achievement directly; it has no
// counter or threshold, visiting the relocation view once is enough.
func (s *ActionService) ExploreRelocation(ctx context.Context, userID string) (bool, error) {
	return s.achievements.TryUnlock(ctx, userID, AchievementRelocationExplorer)
}

// GetDashboard collects everything the main screen shows.
func (s *ActionService) GetDashboard(ctx context.Context, userID string) (*Dashboard, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.repomanager.Tasks(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	applications, err := s.repomanager.Applications(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	achievements, err := s.repomanager.Achievements(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	log, err := s.ledger.History(ctx, userID, 20)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		User:         user,
		Savings:      savingsView(user),
		Tasks:        tasks,
		Applications: applications,
		Achievements: achievements,
		RecentLog:    log,
	}, nil
}

// ListTasks returns a user's tasks.
func (s *ActionService) ListTasks(ctx context.Context, userID string) ([]*models.Task, error) {
	return s.repomanager.Tasks(s.db).ListByUser(ctx, userID)
}

// ListApplications returns a user's job applications.
func (s *ActionService) ListApplications(ctx context.Context, userID string) ([]*models.Application, error) {
	return s.repomanager.Applications(s.db).ListByUser(ctx, userID)
}
