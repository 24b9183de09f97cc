package model

import "time"

// Admin is a staff login. Role is either ActorAdmin (bound to one tenant) or
// ActorSuperAdmin (TenantID nil, acts across tenants one request at a time).
type Admin struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         ActorKind `json:"role"`
	TenantID     *int64    `json:"tenant_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
