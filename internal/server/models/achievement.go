package models

import "time"

// Achievement is one (catalog entry × user) row, provisioned at user
// creation. Unlocked transitions false→true at most once; UnlockDate is nil
// until then.
type Achievement struct {
	ID          string // catalog key, e.g. "first_job_apply"
	UserID      string
	Type        string
	Title       string
	Description string
	Icon        string
	Unlocked    bool
	UnlockDate  *time.Time
}
