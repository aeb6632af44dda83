package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/thriveos/thriveremote/internal/common"
	"github.com/thriveos/thriveremote/internal/dbx"
	"github.com/thriveos/thriveremote/internal/logging"
	"github.com/thriveos/thriveremote/internal/server/config"
	"github.com/thriveos/thriveremote/internal/server/models"
	"github.com/thriveos/thriveremote/internal/server/repositories/achievements"
	"github.com/thriveos/thriveremote/internal/server/repositories/applications"
	"github.com/thriveos/thriveremote/internal/server/repositories/ledger"
	"github.com/thriveos/thriveremote/internal/server/repositories/sessions"
	"github.com/thriveos/thriveremote/internal/server/repositories/tasks"
	"github.com/thriveos/thriveremote/internal/server/repositories/users"
	"github.com/thriveos/thriveremote/internal/sessioncache"
)

// fakeStore is an in-memory backing store shared by the fake repositories.
// It reproduces the conditional-update and delta-update semantics the
// services rely on, guarded by one mutex so concurrent service calls see
// atomic repository operations, same as single SQL statements would be.
type fakeStore struct {
	mu           sync.Mutex
	users        map[string]*models.User
	sessions     map[string]*models.Session
	entries      []*models.ProductivityLogEntry
	achievements map[string]map[string]*models.Achievement
	tasks        map[string]*models.Task
	applications map[string]*models.Application
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:        make(map[string]*models.User),
		sessions:     make(map[string]*models.Session),
		achievements: make(map[string]map[string]*models.Achievement),
		tasks:        make(map[string]*models.Task),
		applications: make(map[string]*models.Application),
	}
}

type fakeUsersRepo struct{ s *fakeStore }

func (r *fakeUsersRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	clone := *user
	r.s.users[user.ID] = &clone
	out := clone
	return &out, nil
}

func (r *fakeUsersRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *fakeUsersRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *fakeUsersRepo) TouchLastActive(_ context.Context, id string, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		u.LastActiveAt = now
	}
	return nil
}

func (r *fakeUsersRepo) ContinueStreak(_ context.Context, id string, today, yesterday time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok || u.LastStreakDate == nil || !u.LastStreakDate.Equal(yesterday) {
		return false, nil
	}
	u.DailyStreak++
	u.TotalSessions++
	d := today
	u.LastStreakDate = &d
	return true, nil
}

func (r *fakeUsersRepo) RestartStreak(_ context.Context, id string, today, yesterday time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return false, nil
	}
	if u.LastStreakDate != nil && !u.LastStreakDate.Before(yesterday) {
		return false, nil
	}
	u.DailyStreak = 1
	u.TotalSessions++
	d := today
	u.LastStreakDate = &d
	return true, nil
}

func (r *fakeUsersRepo) AddScore(_ context.Context, id string, delta int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.ProductivityScore += delta
	return nil
}

func (r *fakeUsersRepo) IncrementAchievements(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.AchievementsUnlocked++
	return nil
}

func (r *fakeUsersRepo) UpdateSavings(_ context.Context, id string, amount float64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.CurrentSavings = amount
	return nil
}

func (r *fakeUsersRepo) AddCommandsExecuted(_ context.Context, id string, delta int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return 0, common.ErrorNotFound
	}
	u.CommandsExecuted += delta
	return u.CommandsExecuted, nil
}

func (r *fakeUsersRepo) AddEasterEggs(_ context.Context, id string, delta int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return 0, common.ErrorNotFound
	}
	u.EasterEggsFound += delta
	return u.EasterEggsFound, nil
}

func (r *fakeUsersRepo) RaisePongHighScore(_ context.Context, id string, score int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return 0, common.ErrorNotFound
	}
	if score > u.PongHighScore {
		u.PongHighScore = score
	}
	return u.PongHighScore, nil
}

type fakeSessionsRepo struct {
	s *fakeStore

	// failures makes every call return an error, to exercise degraded paths.
	failures bool
}

var errFakeStore = sql.ErrConnDone

func (r *fakeSessionsRepo) Create(_ context.Context, session *models.Session) error {
	if r.failures {
		return errFakeStore
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	clone := *session
	r.s.sessions[session.Token] = &clone
	return nil
}

func (r *fakeSessionsRepo) FindActive(_ context.Context, token string) (*models.Session, error) {
	if r.failures {
		return nil, errFakeStore
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sess, ok := r.s.sessions[token]
	if !ok || !sess.Active {
		return nil, common.ErrorNotFound
	}
	clone := *sess
	return &clone, nil
}

func (r *fakeSessionsRepo) TouchLastUsed(_ context.Context, token string, now time.Time) error {
	if r.failures {
		return errFakeStore
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if sess, ok := r.s.sessions[token]; ok {
		sess.LastUsed = now
	}
	return nil
}

func (r *fakeSessionsRepo) Deactivate(_ context.Context, token string) error {
	if r.failures {
		return errFakeStore
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if sess, ok := r.s.sessions[token]; ok {
		sess.Active = false
	}
	return nil
}

type fakeLedgerRepo struct{ s *fakeStore }

func (r *fakeLedgerRepo) Append(_ context.Context, entry *models.ProductivityLogEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	clone := *entry
	r.s.entries = append(r.s.entries, &clone)
	return nil
}

func (r *fakeLedgerRepo) ListByUser(_ context.Context, userID string, limit int) ([]*models.ProductivityLogEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.ProductivityLogEntry
	for _, e := range r.s.entries {
		if e.UserID == userID {
			clone := *e
			out = append(out, &clone)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeLedgerRepo) SumPoints(_ context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var sum int64
	for _, e := range r.s.entries {
		if e.UserID == userID {
			sum += e.Points
		}
	}
	return sum, nil
}

type fakeAchievementsRepo struct{ s *fakeStore }

func (r *fakeAchievementsRepo) Provision(_ context.Context, userID string, catalog []*models.Achievement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byID, ok := r.s.achievements[userID]
	if !ok {
		byID = make(map[string]*models.Achievement)
		r.s.achievements[userID] = byID
	}
	for _, a := range catalog {
		if _, exists := byID[a.ID]; exists {
			continue
		}
		clone := *a
		clone.UserID = userID
		byID[a.ID] = &clone
	}
	return nil
}

func (r *fakeAchievementsRepo) ListByUser(_ context.Context, userID string) ([]*models.Achievement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Achievement
	for _, a := range r.s.achievements[userID] {
		clone := *a
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeAchievementsRepo) Unlock(_ context.Context, userID, achievementID string, now time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.achievements[userID][achievementID]
	if !ok || a.Unlocked {
		return false, nil
	}
	a.Unlocked = true
	t := now
	a.UnlockDate = &t
	return true, nil
}

type fakeTasksRepo struct{ s *fakeStore }

func (r *fakeTasksRepo) Create(_ context.Context, task *models.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	clone := *task
	r.s.tasks[task.ID] = &clone
	return nil
}

func (r *fakeTasksRepo) Complete(_ context.Context, userID, taskID string, now time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	task, ok := r.s.tasks[taskID]
	if !ok || task.UserID != userID || task.Status == "completed" {
		return false, nil
	}
	task.Status = "completed"
	t := now
	task.CompletedDate = &t
	return true, nil
}

func (r *fakeTasksRepo) CountCompleted(_ context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, task := range r.s.tasks {
		if task.UserID == userID && task.Status == "completed" {
			n++
		}
	}
	return n, nil
}

func (r *fakeTasksRepo) ListByUser(_ context.Context, userID string) ([]*models.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Task
	for _, task := range r.s.tasks {
		if task.UserID == userID {
			clone := *task
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type fakeApplicationsRepo struct{ s *fakeStore }

func (r *fakeApplicationsRepo) Create(_ context.Context, application *models.Application) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	clone := *application
	r.s.applications[application.ID] = &clone
	return nil
}

func (r *fakeApplicationsRepo) CountByUser(_ context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, a := range r.s.applications {
		if a.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *fakeApplicationsRepo) ListByUser(_ context.Context, userID string) ([]*models.Application, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Application
	for _, a := range r.s.applications {
		if a.UserID == userID {
			clone := *a
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppliedDate.Before(out[j].AppliedDate) })
	return out, nil
}

// fakeRepoManager hands out the fake repositories regardless of the handle,
// mirroring how the real manager works inside and outside transactions.
type fakeRepoManager struct {
	store    *fakeStore
	sessions *fakeSessionsRepo
}

func newFakeRepoManager(store *fakeStore) *fakeRepoManager {
	return &fakeRepoManager{store: store, sessions: &fakeSessionsRepo{s: store}}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return &fakeUsersRepo{s: m.store} }
func (m *fakeRepoManager) Sessions(dbx.DBTX) sessions.Repository        { return m.sessions }
func (m *fakeRepoManager) Ledger(dbx.DBTX) ledger.Repository            { return &fakeLedgerRepo{s: m.store} }
func (m *fakeRepoManager) Achievements(dbx.DBTX) achievements.Repository {
	return &fakeAchievementsRepo{s: m.store}
}
func (m *fakeRepoManager) Tasks(dbx.DBTX) tasks.Repository { return &fakeTasksRepo{s: m.store} }
func (m *fakeRepoManager) Applications(dbx.DBTX) applications.Repository {
	return &fakeApplicationsRepo{s: m.store}
}

// testEnv bundles the full service stack over the fake store. The *sql.DB is
// a throwaway in-memory database used only to carry transactions.
type testEnv struct {
	db      *sql.DB
	store   *fakeStore
	manager *fakeRepoManager
	cfg     *config.Config

	sessions     *SessionService
	users        *UserService
	activity     *ActivityService
	ledger       *LedgerService
	achievements *AchievementService
	actions      *ActionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	store := newFakeStore()
	manager := newFakeRepoManager(store)
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	cfg := &config.Config{}
	cfg.LoadDefaults()

	env := &testEnv{db: db, store: store, manager: manager, cfg: cfg}
	env.sessions = NewSessionService(db, manager, sessioncache.New(), cfg, logger)
	env.ledger = NewLedgerService(db, manager)
	env.achievements = NewAchievementService(db, manager, env.ledger, logger)
	env.activity = NewActivityService(db, manager, env.achievements, logger)
	env.users = NewUserService(db, manager, env.sessions, logger)
	env.actions = NewActionService(db, manager, env.ledger, env.achievements, logger)
	return env
}

// setNow pins the clock of every service to the same instant.
func (e *testEnv) setNow(now time.Time) {
	fn := func() time.Time { return now }
	e.sessions.now = fn
	e.ledger.now = fn
	e.achievements.now = fn
	e.activity.now = fn
	e.users.now = fn
	e.actions.now = fn
}

// seedUser inserts a user with its achievement catalog, bypassing services.
func (e *testEnv) seedUser(t *testing.T, user *models.User) {
	t.Helper()
	ctx := context.Background()
	_, err := e.manager.Users(nil).Create(ctx, user)
	require.NoError(t, err)
	require.NoError(t, e.manager.Achievements(nil).Provision(ctx, user.ID, achievementCatalog()))
}

func (e *testEnv) user(t *testing.T, id string) *models.User {
	t.Helper()
	u, err := e.manager.Users(nil).GetByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

func (e *testEnv) achievement(t *testing.T, userID, id string) *models.Achievement {
	t.Helper()
	list, err := e.manager.Achievements(nil).ListByUser(context.Background(), userID)
	require.NoError(t, err)
	for _, a := range list {
		if a.ID == id {
			return a
		}
	}
	t.Fatalf("achievement %q not provisioned for %q", id, userID)
	return nil
}
