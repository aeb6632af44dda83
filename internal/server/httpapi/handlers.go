package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/thriveos/thriveremote/internal/common"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	User  userJSON `json:"user"`
	Token string   `json:"token"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "username and password required")
		return
	}

	user, token, err := h.users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUserAlreadyExists) {
			respondError(w, http.StatusConflict, "username taken")
			return
		}
		respondError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	respondJSON(w, http.StatusCreated, authResponse{User: toUserJSON(user), Token: token})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, token, err := h.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorWrongCredentials) {
			respondError(w, http.StatusUnauthorized, "wrong credentials")
			return
		}
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	respondJSON(w, http.StatusOK, authResponse{User: toUserJSON(user), Token: token})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Invalidate(r.Context(), tokenFromRequest(r)); err != nil {
		respondError(w, http.StatusInternalServerError, "logout failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}

	user, err := h.users.GetOrCreate(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "user lookup failed")
		return
	}
	respondJSON(w, http.StatusOK, toUserJSON(user))
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}

	dashboard, err := h.actions.GetDashboard(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "dashboard load failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"user":         toUserJSON(dashboard.User),
		"savings":      toSavingsJSON(dashboard.Savings),
		"tasks":        toTasksJSON(dashboard.Tasks),
		"applications": toApplicationsJSON(dashboard.Applications),
		"achievements": toAchievementsJSON(dashboard.Achievements),
		"recent_log":   toLogJSON(dashboard.RecentLog),
	})
}

func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}

	tasks, err := h.actions.ListTasks(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "task list failed")
		return
	}
	respondJSON(w, http.StatusOK, toTasksJSON(tasks))
}

func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		respondError(w, http.StatusBadRequest, "title required")
		return
	}

	task, err := h.actions.CreateTask(r.Context(), userID, req.Title)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "task creation failed")
		return
	}
	respondJSON(w, http.StatusCreated, toTaskJSON(task))
}

func (h *Handler) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}

	taskID := mux.Vars(r)["id"]
	completed, err := h.actions.CompleteTask(r.Context(), userID, taskID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "task completion failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"completed": completed})
}

func (h *Handler) handleListApplications(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}

	apps, err := h.actions.ListApplications(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "application list failed")
		return
	}
	respondJSON(w, http.StatusOK, toApplicationsJSON(apps))
}

func (h *Handler) handleCreateApplication(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}

	var req struct {
		JobTitle string `json:"job_title"`
		Company  string `json:"company"`
		Notes    string `json:"notes"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.JobTitle) == "" || strings.TrimSpace(req.Company) == "" {
		respondError(w, http.StatusBadRequest, "job_title and company required")
		return
	}

	application, err := h.actions.ApplyToJob(r.Context(), userID, req.JobTitle, req.Company, req.Notes)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "application failed")
		return
	}
	respondJSON(w, http.StatusCreated, toApplicationJSON(application))
}

func (h *Handler) handleGetSavings(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}

	view, err := h.actions.Savings(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "savings load failed")
		return
	}
	respondJSON(w, http.StatusOK, toSavingsJSON(view))
}

func (h *Handler) handleUpdateSavings(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}

	var req struct {
		Amount float64 `json:"amount"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Amount < 0 {
		respondError(w, http.StatusBadRequest, "amount must not be negative")
		return
	}

	view, err := h.actions.UpdateSavings(r.Context(), userID, req.Amount)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "savings update failed")
		return
	}
	respondJSON(w, http.StatusOK, toSavingsJSON(view))
}

func (h *Handler) handleListAchievements(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}

	list, err := h.achievements.ListByUser(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "achievement list failed")
		return
	}
	respondJSON(w, http.StatusOK, toAchievementsJSON(list))
}

func (h *Handler) handleProductivityLog(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}

	entries, err := h.ledger.History(r.Context(), userID, 50)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "log load failed")
		return
	}
	respondJSON(w, http.StatusOK, toLogJSON(entries))
}

func (h *Handler) handleTerminalCommand(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}

	count, err := h.actions.RecordCommand(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "command record failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"commands_executed": count})
}

func (h *Handler) handlePongScore(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}

	var req struct {
		Score int64 `json:"score"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Score < 0 {
		respondError(w, http.StatusBadRequest, "score must not be negative")
		return
	}

	high, err := h.actions.RecordPongScore(r.Context(), userID, req.Score)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "score record failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"high_score": high})
}

func (h *Handler) handleEasterEgg(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}

	count, err := h.actions.RecordEasterEgg(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "easter egg record failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"easter_eggs_found": count})
}

func (h *Handler) handleExploreRelocation(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}

	unlocked, err := h.actions.ExploreRelocation(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "relocation record failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"achievement_unlocked": unlocked})
}
