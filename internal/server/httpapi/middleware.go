package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/thriveos/thriveremote/internal/common"
	"github.com/thriveos/thriveremote/internal/metrics"
)

type contextKey int

const userIDKey contextKey = iota

func userIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}

// requireUserID reads the user id the session middleware stored; a miss means
// the route was wired outside the authenticated subrouter.
func (h *Handler) requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := userIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "no session")
		return "", false
	}
	return id, true
}

// tokenFromRequest accepts the token from the header or, for clients that
// cannot set headers, the query string.
func tokenFromRequest(r *http.Request) string {
	if token := r.Header.Get(common.SessionTokenHeaderName); token != "" {
		return token
	}
	return r.URL.Query().Get(common.SessionTokenQueryParam)
}

// sessionMiddleware resolves the session token to a user, provisioning the
// user row on first sight, and records the activity touch that drives the
// daily streak. Resolution itself decides whether a missing or bad token
// degrades to the demo identity or is rejected.
func (h *Handler) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, err := h.sessions.Resolve(ctx, tokenFromRequest(r))
		if err != nil {
			if errors.Is(err, common.ErrorUnauthorized) {
				respondError(w, http.StatusUnauthorized, "invalid session")
				return
			}
			respondError(w, http.StatusInternalServerError, "session resolution failed")
			return
		}

		if _, err := h.users.GetOrCreate(ctx, userID); err != nil {
			h.logger.Error(ctx, "user provisioning failed", "user_id", userID, "error", err)
			respondError(w, http.StatusInternalServerError, "user lookup failed")
			return
		}

		if err := h.activity.Touch(ctx, userID); err != nil {
			// The streak is bookkeeping; the request itself can proceed.
			h.logger.Warn(ctx, "activity touch failed", "user_id", userID, "error", err)
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, userIDKey, userID)))
	})
}

// responseWriter captures the status code for logs and metrics.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// observeMiddleware logs each request and feeds the HTTP metrics, labeled by
// route pattern rather than raw path to keep cardinality bounded.
func (h *Handler) observeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if pattern, err := route.GetPathTemplate(); err == nil {
				path = pattern
			}
		}

		duration := time.Since(start)
		metrics.RecordHTTPRequest(r.Method, path, strconv.Itoa(wrapped.statusCode), duration)
		h.logger.Info(r.Context(), "http request",
			"method", r.Method, "path", path,
			"status", wrapped.statusCode, "duration", duration)
	})
}
