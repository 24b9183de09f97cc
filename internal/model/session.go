package model

import "time"

// Session binds an opaque token to an actor and (except for super admins) a
// tenant. ActorKind and TenantID are fixed at creation; there is no tenant
// switching mid-session.
type Session struct {
	ID        int64     `json:"id"`
	Token     string    `json:"token"`
	ActorKind ActorKind `json:"actor_kind"`
	ActorID   int64     `json:"actor_id"`
	TenantID  *int64    `json:"tenant_id"` // nil only for super_admin
	Username  string    `json:"username"`  // display name for admin sessions
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the session is no longer valid at time now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
