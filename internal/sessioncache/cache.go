// Package sessioncache implements the process-local tier of session storage:
// a mutex-guarded map from session token to session state. It is an
// optimization layer only; entries can be dropped at any time and rebuilt
// from the persistent store.
package sessioncache

import (
	"sync"
	"time"
)

// Entry is the cached state of one session.
type Entry struct {
	UserID    string
	CreatedAt time.Time
	LastUsed  time.Time
	ExpiresAt time.Time
}

// Cache is safe for concurrent use by multiple request handlers.
type Cache struct {
	mu       sync.Mutex
	sessions map[string]Entry
}

func New() *Cache {
	return &Cache{sessions: make(map[string]Entry)}
}

// Get returns the entry for token. Expired entries are evicted and reported
// as absent.
func (c *Cache) Get(token string, now time.Time) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.sessions[token]
	if !ok {
		return Entry{}, false
	}
	if !now.Before(e.ExpiresAt) {
		delete(c.sessions, token)
		return Entry{}, false
	}
	return e, true
}

// Put inserts or replaces the entry for token.
func (c *Cache) Put(token string, e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[token] = e
}

// Touch updates LastUsed for token if it is present.
func (c *Cache) Touch(token string, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.sessions[token]; ok {
		e.LastUsed = now
		c.sessions[token] = e
	}
}

// Delete evicts token. Deleting an absent token is a no-op.
func (c *Cache) Delete(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, token)
}

// Len reports the number of cached sessions, expired entries included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}
