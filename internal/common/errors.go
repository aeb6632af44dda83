// Package common defines shared constants and sentinel errors used across
// the ThriveRemote server layers. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Account errors.
	ErrorUserAlreadyExists = errors.New("user already exists")
	ErrorWrongCredentials  = errors.New("wrong credentials")

	// Session lifecycle errors.
	ErrInvalidToken   = errors.New("invalid token")
	ErrSessionExpired = errors.New("session expired")

	// Ledger validation errors.
	ErrNegativePoints = errors.New("negative points")
)
