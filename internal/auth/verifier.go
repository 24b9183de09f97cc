package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/takasakimo/kirei/internal/model"
)

// dummyHash is a real bcrypt hash (of a throwaway string) compared against
// when no account matches, so a miss costs the same as a wrong password.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// VerifiedIdentity is the outcome of a successful credential check, before any
// session exists.
type VerifiedIdentity struct {
	Kind     model.ActorKind
	ActorID  int64
	TenantID *int64
	Username string
}

// verifyCustomer checks email-or-phone + password within the tenant named by
// tenantCode. Customer identifiers are unique per tenant only, so the code is
// mandatory.
func (s *Service) verifyCustomer(identifier, secret, tenantCode string) (*VerifiedIdentity, error) {
	if tenantCode == "" {
		return nil, ErrTenantNotFound
	}
	tenant, err := s.tenants.GetByCode(tenantCode)
	if err != nil {
		return nil, fmt.Errorf("lookup tenant: %w", err)
	}
	if tenant == nil || !tenant.IsActive {
		return nil, ErrTenantNotFound
	}

	customer, err := s.customers.GetByIdentifier(tenant.ID, identifier)
	if err != nil {
		return nil, fmt.Errorf("lookup customer: %w", err)
	}
	if customer == nil {
		// Burn a hash comparison anyway so a missing account costs the same
		// as a wrong password.
		bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(secret))
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte(secret)) != nil {
		return nil, ErrInvalidCredentials
	}

	tenantID := tenant.ID
	return &VerifiedIdentity{
		Kind:     model.ActorCustomer,
		ActorID:  customer.ID,
		TenantID: &tenantID,
		Username: customer.Name,
	}, nil
}

// verifyStaff checks username + password against the admins table. The row's
// role decides whether the resulting identity is admin or super_admin.
func (s *Service) verifyStaff(username, secret string) (*VerifiedIdentity, error) {
	admin, err := s.admins.GetByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("lookup admin: %w", err)
	}
	if admin == nil {
		bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(secret))
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(secret)) != nil {
		return nil, ErrInvalidCredentials
	}

	return &VerifiedIdentity{
		Kind:     admin.Role,
		ActorID:  admin.ID,
		TenantID: admin.TenantID,
		Username: admin.Username,
	}, nil
}

// HashPassword is the single place passwords are hashed, so cost stays uniform.
func HashPassword(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
