package models

import "time"

// Session is one issued session token. Expiry is absolute (CreatedAt + TTL),
// not sliding; Active flips to false on logout and never back.
type Session struct {
	Token     string
	UserID    string
	CreatedAt time.Time
	LastUsed  time.Time
	ExpiresAt time.Time
	Active    bool
}
