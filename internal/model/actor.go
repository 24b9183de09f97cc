package model

import "fmt"

// ActorKind is the closed set of principal categories that can hold a session.
type ActorKind string

const (
	ActorCustomer   ActorKind = "customer"
	ActorAdmin      ActorKind = "admin"
	ActorSuperAdmin ActorKind = "super_admin"
)

// Valid reports whether k is one of the three known kinds.
func (k ActorKind) Valid() bool {
	switch k {
	case ActorCustomer, ActorAdmin, ActorSuperAdmin:
		return true
	}
	return false
}

// ParseActorKind converts a stored string back into an ActorKind.
func ParseActorKind(s string) (ActorKind, error) {
	k := ActorKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown actor kind %q", s)
	}
	return k, nil
}
