// Package httpapi exposes the gamification engine over HTTP. Handlers work
// against narrow service interfaces; all state changes go through the
// services package.
package httpapi

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/thriveos/thriveremote/internal/logging"
	"github.com/thriveos/thriveremote/internal/metrics"
	"github.com/thriveos/thriveremote/internal/server/models"
	"github.com/thriveos/thriveremote/internal/server/services"
)

// SessionService resolves and invalidates session tokens.
type SessionService interface {
	Resolve(ctx context.Context, token string) (string, error)
	Invalidate(ctx context.Context, token string) error
}

// UserService handles accounts.
type UserService interface {
	Register(ctx context.Context, username, password string) (*models.User, string, error)
	Login(ctx context.Context, username, password string) (*models.User, string, error)
	GetOrCreate(ctx context.Context, userID string) (*models.User, error)
}

// ActivityService tracks per-request user activity.
type ActivityService interface {
	Touch(ctx context.Context, userID string) error
}

// LedgerService reads the productivity log.
type LedgerService interface {
	History(ctx context.Context, userID string, limit int) ([]*models.ProductivityLogEntry, error)
}

// AchievementService lists a user's achievement catalog.
type AchievementService interface {
	ListByUser(ctx context.Context, userID string) ([]*models.Achievement, error)
}

// ActionService implements the user-facing domain actions.
type ActionService interface {
	CreateTask(ctx context.Context, userID, title string) (*models.Task, error)
	CompleteTask(ctx context.Context, userID, taskID string) (bool, error)
	ListTasks(ctx context.Context, userID string) ([]*models.Task, error)
	ApplyToJob(ctx context.Context, userID, jobTitle, company, notes string) (*models.Application, error)
	ListApplications(ctx context.Context, userID string) ([]*models.Application, error)
	UpdateSavings(ctx context.Context, userID string, amount float64) (services.SavingsView, error)
	Savings(ctx context.Context, userID string) (services.SavingsView, error)
	RecordCommand(ctx context.Context, userID string) (int64, error)
	RecordPongScore(ctx context.Context, userID string, score int64) (int64, error)
	RecordEasterEgg(ctx context.Context, userID string) (int64, error)
	ExploreRelocation(ctx context.Context, userID string) (bool, error)
	GetDashboard(ctx context.Context, userID string) (*services.Dashboard, error)
}

type Handler struct {
	sessions     SessionService
	users        UserService
	activity     ActivityService
	ledger       LedgerService
	achievements AchievementService
	actions      ActionService
	logger       logging.Logger
}

func NewHandler(
	sessions SessionService,
	users UserService,
	activity ActivityService,
	ledger LedgerService,
	achievements AchievementService,
	actions ActionService,
	logger logging.Logger,
) *Handler {
	return &Handler{
		sessions:     sessions,
		users:        users,
		activity:     activity,
		ledger:       ledger,
		achievements: achievements,
		actions:      actions,
		logger:       logger,
	}
}

// NewRouter builds the full route table. Everything under /api except
// register and login runs behind the session middleware.
func (h *Handler) NewRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.observeMiddleware)

	r.HandleFunc("/healthz", h.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/api/register", h.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/api/login", h.handleLogin).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(h.sessionMiddleware)

	api.HandleFunc("/logout", h.handleLogout).Methods(http.MethodPost)
	api.HandleFunc("/me", h.handleMe).Methods(http.MethodGet)
	api.HandleFunc("/dashboard", h.handleDashboard).Methods(http.MethodGet)

	api.HandleFunc("/tasks", h.handleListTasks).Methods(http.MethodGet)
	api.HandleFunc("/tasks", h.handleCreateTask).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{id}/complete", h.handleCompleteTask).Methods(http.MethodPost)

	api.HandleFunc("/applications", h.handleListApplications).Methods(http.MethodGet)
	api.HandleFunc("/applications", h.handleCreateApplication).Methods(http.MethodPost)

	api.HandleFunc("/savings", h.handleGetSavings).Methods(http.MethodGet)
	api.HandleFunc("/savings", h.handleUpdateSavings).Methods(http.MethodPost)

	api.HandleFunc("/achievements", h.handleListAchievements).Methods(http.MethodGet)
	api.HandleFunc("/productivity/log", h.handleProductivityLog).Methods(http.MethodGet)

	api.HandleFunc("/terminal/command", h.handleTerminalCommand).Methods(http.MethodPost)
	api.HandleFunc("/pong/score", h.handlePongScore).Methods(http.MethodPost)
	api.HandleFunc("/easter-egg", h.handleEasterEgg).Methods(http.MethodPost)
	api.HandleFunc("/relocation/explore", h.handleExploreRelocation).Methods(http.MethodPost)

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
