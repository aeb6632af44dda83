package models

import "time"

// Application records one job application made by a user.
type Application struct {
	ID          string
	UserID      string
	JobTitle    string
	Company     string
	Status      string
	AppliedDate time.Time
	Notes       string
}
