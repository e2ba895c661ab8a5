package domain

import "errors"

// Authorization errors
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("insufficient privileges")
	ErrInvalidToken    = errors.New("invalid token")
)

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Entity errors
var (
	ErrMemberNotFound     = errors.New("member not found")
	ErrChurchNotFound     = errors.New("church not found")
	ErrChurchExists       = errors.New("church slug already exists")
	ErrMembershipNotFound = errors.New("membership not found")
	ErrRequestNotFound    = errors.New("membership request not found")
)

// Validation errors
var (
	ErrInvalidDecision = errors.New("invalid decision")
	ErrInvalidRole     = errors.New("invalid role")
)
