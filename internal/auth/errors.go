package auth

import "errors"

// Every failure of the auth core maps onto one of these sentinels so handlers
// can pick a status with errors.Is. Storage failures are returned wrapped and
// match none of them.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTenantNotFound     = errors.New("tenant not found")
	ErrTenantRequired     = errors.New("tenant id required")
	ErrNoSession          = errors.New("no session")
	ErrSessionExpired     = errors.New("session expired")
	ErrForbidden          = errors.New("forbidden")
)
