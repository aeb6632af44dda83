// Package services contains the server-side business logic of the
// gamification engine: sessions, activity/streak tracking, the productivity
// ledger, achievements, and the user-facing domain actions built on them.
package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/thriveos/thriveremote/internal/common"
	"github.com/thriveos/thriveremote/internal/logging"
	"github.com/thriveos/thriveremote/internal/metrics"
	"github.com/thriveos/thriveremote/internal/server/config"
	"github.com/thriveos/thriveremote/internal/server/models"
	"github.com/thriveos/thriveremote/internal/server/repositories/repomanager"
	"github.com/thriveos/thriveremote/internal/sessioncache"
)

// tokenSize is the number of random bytes per session token (256 bits).
const tokenSize = 32

// SessionService issues, resolves, and invalidates session tokens. Tokens
// live in two tiers: the injected process-local cache and the sessions table.
// The cache is an optimization only; a cold cache is repopulated lazily from
// the store on resolution.
type SessionService struct {
	db                *sql.DB
	repomanager       repomanager.RepositoryManager
	cache             *sessioncache.Cache
	validity          time.Duration
	demoUserID        string
	anonymousFallback bool
	logger            logging.Logger
	now               func() time.Time
}

func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, cache *sessioncache.Cache, cfg *config.Config, logger logging.Logger) *SessionService {
	return &SessionService{
		db:                db,
		repomanager:       m,
		cache:             cache,
		validity:          cfg.SessionValidityDuration,
		demoUserID:        cfg.DemoUserID,
		anonymousFallback: cfg.AnonymousFallback,
		logger:            logger,
		now:               time.Now,
	}
}

// Create generates a fresh token for userID, stores the session durably, and
// caches it. Expiry is absolute: now + validity.
func (s *SessionService) Create(ctx context.Context, userID string) (string, error) {
	token, err := common.MakeRandHexString(tokenSize)
	if err != nil {
		return "", common.ErrorInternal
	}

	now := s.now()
	session := &models.Session{
		Token:     token,
		UserID:    userID,
		CreatedAt: now,
		LastUsed:  now,
		ExpiresAt: now.Add(s.validity),
		Active:    true,
	}

	repo := s.repomanager.Sessions(s.db)
	if err := repo.Create(ctx, session); err != nil {
		return "", err
	}

	s.cache.Put(token, sessioncache.Entry{
		UserID:    userID,
		CreatedAt: session.CreatedAt,
		LastUsed:  session.LastUsed,
		ExpiresAt: session.ExpiresAt,
	})

	return token, nil
}

// Resolve maps a token to a user id. An empty token, an unknown or expired
// token, and a store failure on the cache-miss path all degrade to the demo
// identity when the anonymous fallback is enabled; with the fallback off they
// return ErrorUnauthorized instead.
//
// On a cache hit the last-used update is best-effort in both tiers: a store
// outage must not fail a request the cache can answer.
func (s *SessionService) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return s.fallback(ctx, "empty token", nil)
	}

	now := s.now()

	if entry, ok := s.cache.Get(token, now); ok {
		s.cache.Touch(token, now)
		repo := s.repomanager.Sessions(s.db)
		if err := repo.TouchLastUsed(ctx, token, now); err != nil {
			s.logger.Warn(ctx, "session last-used update failed", "error", err)
		}
		metrics.RecordSessionResolution("cache_hit")
		return entry.UserID, nil
	}

	repo := s.repomanager.Sessions(s.db)
	session, err := repo.FindActive(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return s.fallback(ctx, "unknown token", nil)
		}
		return s.fallback(ctx, "store lookup failed", err)
	}
	if !now.Before(session.ExpiresAt) {
		return s.fallback(ctx, "session expired", nil)
	}

	// Lazy rehydration: a restart empties the cache, not the store.
	s.cache.Put(token, sessioncache.Entry{
		UserID:    session.UserID,
		CreatedAt: session.CreatedAt,
		LastUsed:  now,
		ExpiresAt: session.ExpiresAt,
	})
	if err := repo.TouchLastUsed(ctx, token, now); err != nil {
		s.logger.Warn(ctx, "session last-used update failed", "error", err)
	}

	metrics.RecordSessionResolution("rehydrated")
	return session.UserID, nil
}

func (s *SessionService) fallback(ctx context.Context, reason string, cause error) (string, error) {
	if !s.anonymousFallback {
		return "", common.ErrorUnauthorized
	}
	if cause != nil {
		s.logger.Warn(ctx, "session resolution degraded to demo identity", "reason", reason, "error", cause)
	}
	metrics.RecordSessionResolution("fallback")
	return s.demoUserID, nil
}

// Invalidate evicts the cache entry and marks the store row inactive.
// Idempotent: unknown or already-invalid tokens are a no-op.
func (s *SessionService) Invalidate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	s.cache.Delete(token)

	repo := s.repomanager.Sessions(s.db)
	return repo.Deactivate(ctx, token)
}
