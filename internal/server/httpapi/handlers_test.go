package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thriveos/thriveremote/internal/common"
	"github.com/thriveos/thriveremote/internal/logging"
	"github.com/thriveos/thriveremote/internal/server/models"
	"github.com/thriveos/thriveremote/internal/server/services"
)

// Stub services with overridable function fields. The zero behavior is a
// happy path for user "u-1".

type stubSessions struct {
	resolveFn    func(ctx context.Context, token string) (string, error)
	invalidated  []string
	lastResolved string
}

func (s *stubSessions) Resolve(ctx context.Context, token string) (string, error) {
	s.lastResolved = token
	if s.resolveFn != nil {
		return s.resolveFn(ctx, token)
	}
	return "u-1", nil
}

func (s *stubSessions) Invalidate(_ context.Context, token string) error {
	s.invalidated = append(s.invalidated, token)
	return nil
}

type stubUsers struct {
	registerFn func(ctx context.Context, username, password string) (*models.User, string, error)
	loginFn    func(ctx context.Context, username, password string) (*models.User, string, error)
}

func (s *stubUsers) Register(ctx context.Context, username, password string) (*models.User, string, error) {
	if s.registerFn != nil {
		return s.registerFn(ctx, username, password)
	}
	return &models.User{ID: "u-1", Username: username}, "tok-1", nil
}

func (s *stubUsers) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	if s.loginFn != nil {
		return s.loginFn(ctx, username, password)
	}
	return &models.User{ID: "u-1", Username: username}, "tok-1", nil
}

func (s *stubUsers) GetOrCreate(_ context.Context, userID string) (*models.User, error) {
	return &models.User{ID: userID, Username: "alice"}, nil
}

type stubActivity struct{ touched []string }

func (s *stubActivity) Touch(_ context.Context, userID string) error {
	s.touched = append(s.touched, userID)
	return nil
}

type stubLedger struct{}

func (stubLedger) History(context.Context, string, int) ([]*models.ProductivityLogEntry, error) {
	return []*models.ProductivityLogEntry{{ID: "e-1", Action: "task_created", Points: 5}}, nil
}

type stubAchievements struct{}

func (stubAchievements) ListByUser(context.Context, string) ([]*models.Achievement, error) {
	return []*models.Achievement{{ID: "task_master", Title: "Task Master"}}, nil
}

type stubActions struct {
	completeFn func(ctx context.Context, userID, taskID string) (bool, error)
	lastTaskID string
}

func (s *stubActions) CreateTask(_ context.Context, userID, title string) (*models.Task, error) {
	return &models.Task{ID: "t-1", UserID: userID, Title: title, Status: "pending"}, nil
}

func (s *stubActions) CompleteTask(ctx context.Context, userID, taskID string) (bool, error) {
	s.lastTaskID = taskID
	if s.completeFn != nil {
		return s.completeFn(ctx, userID, taskID)
	}
	return true, nil
}

func (s *stubActions) ListTasks(context.Context, string) ([]*models.Task, error) {
	return []*models.Task{{ID: "t-1", Title: "a", Status: "pending"}}, nil
}

func (s *stubActions) ApplyToJob(_ context.Context, userID, jobTitle, company, notes string) (*models.Application, error) {
	return &models.Application{ID: "a-1", UserID: userID, JobTitle: jobTitle, Company: company, Status: "applied", Notes: notes}, nil
}

func (s *stubActions) ListApplications(context.Context, string) ([]*models.Application, error) {
	return nil, nil
}

func (s *stubActions) UpdateSavings(_ context.Context, _ string, amount float64) (services.SavingsView, error) {
	return services.SavingsView{Current: amount, Goal: 5000, Total: amount}, nil
}

func (s *stubActions) Savings(context.Context, string) (services.SavingsView, error) {
	return services.SavingsView{Current: 1000, StreakBonus: 100, Total: 1100, Goal: 5000, Progress: 22}, nil
}

func (s *stubActions) RecordCommand(context.Context, string) (int64, error) { return 7, nil }

func (s *stubActions) RecordPongScore(_ context.Context, _ string, v int64) (int64, error) {
	return v, nil
}

func (s *stubActions) RecordEasterEgg(context.Context, string) (int64, error) { return 2, nil }

func (s *stubActions) ExploreRelocation(context.Context, string) (bool, error) { return true, nil }
func (s *stubActions) GetDashboard(_ context.Context, userID string) (*services.Dashboard, error) {
	return &services.Dashboard{
		User:    &models.User{ID: userID, Username: "alice"},
		Savings: services.SavingsView{Goal: 5000},
	}, nil
}

type testServer struct {
	sessions *stubSessions
	users    *stubUsers
	activity *stubActivity
	actions  *stubActions
	srv      *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ts := &testServer{
		sessions: &stubSessions{},
		users:    &stubUsers{},
		activity: &stubActivity{},
		actions:  &stubActions{},
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	h := NewHandler(ts.sessions, ts.users, ts.activity, stubLedger{}, stubAchievements{}, ts.actions, logger)
	ts.srv = httptest.NewServer(h.NewRouter())
	t.Cleanup(ts.srv.Close)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set(common.SessionTokenHeaderName, "tok-1")

	resp, err := ts.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestHandleRegister(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodPost, "/api/register", `{"username":"alice","password":"pw"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "tok-1", body["token"])
	assert.Equal(t, "alice", body["user"].(map[string]any)["username"])
}

func TestHandleRegister_Validation(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.do(t, http.MethodPost, "/api/register", `{"username":"  ","password":"pw"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodPost, "/api/register", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleRegister_Conflict(t *testing.T) {
	ts := newTestServer(t)
	ts.users.registerFn = func(context.Context, string, string) (*models.User, string, error) {
		return nil, "", common.ErrorUserAlreadyExists
	}

	resp, body := ts.do(t, http.MethodPost, "/api/register", `{"username":"alice","password":"pw"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "username taken", body["error"])
}

func TestHandleLogin_WrongCredentials(t *testing.T) {
	ts := newTestServer(t)
	ts.users.loginFn = func(context.Context, string, string) (*models.User, string, error) {
		return nil, "", common.ErrorWrongCredentials
	}

	resp, _ := ts.do(t, http.MethodPost, "/api/login", `{"username":"alice","password":"bad"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSessionMiddleware_TouchesActivity(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.do(t, http.MethodGet, "/api/me", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"u-1"}, ts.activity.touched)
	assert.Equal(t, "tok-1", ts.sessions.lastResolved)
}

func TestSessionMiddleware_Unauthorized(t *testing.T) {
	ts := newTestServer(t)
	ts.sessions.resolveFn = func(context.Context, string) (string, error) {
		return "", common.ErrorUnauthorized
	}

	resp, body := ts.do(t, http.MethodGet, "/api/me", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid session", body["error"])
	assert.Empty(t, ts.activity.touched)
}

func TestSessionMiddleware_QueryParamToken(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, ts.srv.URL+"/api/me?session_token=tok-q", nil)
	require.NoError(t, err)
	resp, err := ts.srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "tok-q", ts.sessions.lastResolved)
}

func TestHandleLogout(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.do(t, http.MethodPost, "/api/logout", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"tok-1"}, ts.sessions.invalidated)
}

func TestHandleCreateTask(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodPost, "/api/tasks", `{"title":"write cover letter"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "write cover letter", body["title"])
	assert.Equal(t, "pending", body["status"])
}

func TestHandleCreateTask_EmptyTitle(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.do(t, http.MethodPost, "/api/tasks", `{"title":"  "}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleCompleteTask(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodPost, "/api/tasks/t-42/complete", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["completed"])
	assert.Equal(t, "t-42", ts.actions.lastTaskID)
}

func TestHandleCompleteTask_AlreadyCompleted(t *testing.T) {
	ts := newTestServer(t)
	ts.actions.completeFn = func(context.Context, string, string) (bool, error) {
		return false, nil
	}

	resp, body := ts.do(t, http.MethodPost, "/api/tasks/t-42/complete", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["completed"])
}

func TestHandleCreateApplication_Validation(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.do(t, http.MethodPost, "/api/applications", `{"job_title":"","company":"Acme"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleUpdateSavings(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodPost, "/api/savings", `{"amount":1250}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1250), body["current"])

	resp, _ = ts.do(t, http.MethodPost, "/api/savings", `{"amount":-1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleGetSavings(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodGet, "/api/savings", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1100), body["total"])
	assert.Equal(t, float64(100), body["streak_bonus"])
}

func TestHandleDashboard(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodGet, "/api/dashboard", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice", body["user"].(map[string]any)["username"])
	assert.Contains(t, body, "savings")
	assert.Contains(t, body, "achievements")
}

func TestHandlePongScore(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodPost, "/api/pong/score", `{"score":150}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(150), body["high_score"])

	resp, _ = ts.do(t, http.MethodPost, "/api/pong/score", `{"score":-3}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleExploreRelocation(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodPost, "/api/relocation/explore", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["achievement_unlocked"])
}

func TestHandleHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := ts.srv.Client().Get(ts.srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsEndpointExposed(t *testing.T) {
	ts := newTestServer(t)

	resp, err := ts.srv.Client().Get(ts.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
