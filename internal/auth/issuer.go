package auth

import (
	"fmt"
	"time"

	"github.com/takasakimo/kirei/internal/model"
)

// Session lifetimes. Customers stay signed in across visits; staff sessions
// are short because they can see every customer of the tenant.
const (
	CustomerSessionTTL = 7 * 24 * time.Hour
	StaffSessionTTL    = 12 * time.Hour
)

func sessionTTL(kind model.ActorKind) time.Duration {
	if kind == model.ActorCustomer {
		return CustomerSessionTTL
	}
	return StaffSessionTTL
}

// issue creates exactly one fresh session for a verified identity. Earlier
// sessions for the same actor stay valid until their own expiry or logout.
func (s *Service) issue(identity *VerifiedIdentity) (*model.Session, error) {
	sess, err := s.sessions.Create(identity.Kind, identity.ActorID, identity.TenantID, identity.Username, sessionTTL(identity.Kind))
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}
	return sess, nil
}
