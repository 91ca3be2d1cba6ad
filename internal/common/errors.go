// Package common defines shared constants and sentinel errors used across
// rfile components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")

	// User registration errors.
	ErrorUserAlreadyExists = errors.New("user already exists")

	// Transfer-state errors. ErrChecksumMismatch carries the exact wire
	// message clients match on.
	ErrorFileNotPending = errors.New("file is not pending")
	ErrChecksumMismatch = errors.New("wrong checksum")
)
