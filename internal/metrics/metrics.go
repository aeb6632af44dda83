// Package metrics exposes Prometheus collectors for the gamification engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "thriveremote",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "thriveremote",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	sessionResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "thriveremote",
			Subsystem: "sessions",
			Name:      "resolutions_total",
			Help:      "Session token resolutions by outcome.",
		},
		[]string{"outcome"}, // cache_hit, rehydrated, fallback
	)

	pointsAwarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "thriveremote",
			Subsystem: "ledger",
			Name:      "points_awarded_total",
			Help:      "Productivity points awarded, by action tag.",
		},
		[]string{"action"},
	)

	achievementUnlocks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "thriveremote",
			Subsystem: "achievements",
			Name:      "unlocks_total",
			Help:      "Achievement unlocks that actually happened.",
		},
		[]string{"achievement_id"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		sessionResolutions,
		pointsAwarded,
		achievementUnlocks,
	)
}

// RecordHTTPRequest records one handled HTTP request.
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequests.WithLabelValues(method, path, status).Inc()
	httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordSessionResolution records the outcome of one session resolution.
func RecordSessionResolution(outcome string) {
	sessionResolutions.WithLabelValues(outcome).Inc()
}

// RecordPointsAwarded accumulates awarded points per action tag.
func RecordPointsAwarded(action string, points int) {
	pointsAwarded.WithLabelValues(action).Add(float64(points))
}

// RecordAchievementUnlock records a successful unlock.
func RecordAchievementUnlock(achievementID string) {
	achievementUnlocks.WithLabelValues(achievementID).Inc()
}

// Handler returns the HTTP handler serving the registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
