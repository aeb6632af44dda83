package models

import "time"

// Task is a user to-do item; completion is a scored action.
type Task struct {
	ID            string
	UserID        string
	Title         string
	Status        string // "pending" or "completed"
	CreatedAt     time.Time
	CompletedDate *time.Time
}
