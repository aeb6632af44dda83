package models

import "time"

// ProductivityLogEntry is one append-only scored action. Rows are never
// mutated or deleted; the per-user sum of Points equals the user's
// ProductivityScore at all times.
type ProductivityLogEntry struct {
	ID        string
	UserID    string
	Action    string
	Points    int64
	Timestamp time.Time
	Metadata  map[string]any
}
