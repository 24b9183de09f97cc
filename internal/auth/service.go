package auth

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/takasakimo/kirei/internal/model"
	"github.com/takasakimo/kirei/internal/store"
)

// Service is the authentication and tenant-resolution core. Every protected
// handler goes through Authenticate before touching tenant data; the
// AuthContext it returns carries the only tenant id those queries may use.
type Service struct {
	sessions  *store.SessionStore
	tenants   *store.TenantStore
	customers *store.CustomerStore
	admins    *store.AdminStore
	logger    *slog.Logger
}

func NewService(sessions *store.SessionStore, tenants *store.TenantStore, customers *store.CustomerStore, admins *store.AdminStore, logger *slog.Logger) *Service {
	return &Service{
		sessions:  sessions,
		tenants:   tenants,
		customers: customers,
		admins:    admins,
		logger:    logger,
	}
}

// LoginResult is handed back to the login handlers, which place Token in the
// actor kind's cookie.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Context   AuthContext
}

// Login verifies credentials for the given actor kind and issues a session.
// tenantSelector is the tenant code; it is required for customers and ignored
// for staff. kind names the login surface: customers cannot sign in through
// the staff endpoint and vice versa.
func (s *Service) Login(kind model.ActorKind, identifier, secret, tenantSelector string) (*LoginResult, error) {
	var identity *VerifiedIdentity
	var err error

	switch kind {
	case model.ActorCustomer:
		identity, err = s.verifyCustomer(identifier, secret, tenantSelector)
	case model.ActorAdmin, model.ActorSuperAdmin:
		identity, err = s.verifyStaff(identifier, secret)
	default:
		return nil, fmt.Errorf("login: unknown actor kind %q", kind)
	}
	if err != nil {
		return nil, err
	}

	// The staff endpoint serves both admin and super_admin rows, but a
	// customer row must never come out of it.
	if kind == model.ActorCustomer && identity.Kind != model.ActorCustomer {
		return nil, ErrInvalidCredentials
	}

	sess, err := s.issue(identity)
	if err != nil {
		return nil, err
	}

	ac := AuthContext{
		Kind:     sess.ActorKind,
		ActorID:  sess.ActorID,
		Username: sess.Username,
	}
	if sess.TenantID != nil {
		ac.TenantID = *sess.TenantID
	}

	s.logger.Info("login", "kind", sess.ActorKind, "actor_id", sess.ActorID)
	return &LoginResult{Token: sess.Token, ExpiresAt: sess.ExpiresAt, Context: ac}, nil
}

// Authenticate resolves a raw token into an AuthContext for a tenant-scoped
// request. tenantHint is the explicit tenant id a super-admin must supply;
// for other kinds it is ignored by the resolver. If kinds is non-empty the
// session's actor kind must be one of them.
func (s *Service) Authenticate(token string, tenantHint *int64, kinds ...model.ActorKind) (*AuthContext, error) {
	sess, err := s.lookup(token)
	if err != nil {
		return nil, err
	}

	if len(kinds) > 0 && !slices.Contains(kinds, sess.ActorKind) {
		return nil, ErrForbidden
	}

	tenantID, err := ResolveTenant(sess, tenantHint)
	if err != nil {
		return nil, err
	}

	return &AuthContext{
		Kind:     sess.ActorKind,
		ActorID:  sess.ActorID,
		TenantID: tenantID,
		Username: sess.Username,
	}, nil
}

// AuthenticateActor is Authenticate without tenant resolution, for the
// platform surface (tenant management itself) where no target tenant exists.
// The returned context has TenantID 0 and must not be used for tenant-scoped
// queries.
func (s *Service) AuthenticateActor(token string, kinds ...model.ActorKind) (*AuthContext, error) {
	sess, err := s.lookup(token)
	if err != nil {
		return nil, err
	}

	if len(kinds) > 0 && !slices.Contains(kinds, sess.ActorKind) {
		return nil, ErrForbidden
	}

	return &AuthContext{
		Kind:     sess.ActorKind,
		ActorID:  sess.ActorID,
		Username: sess.Username,
	}, nil
}

// lookup fetches the session and applies expiry. Expired rows are deleted
// lazily here; a failed delete only logs, since the row can never
// authenticate again anyway.
func (s *Service) lookup(token string) (*model.Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}

	sess, err := s.sessions.GetByToken(token)
	if err != nil {
		return nil, fmt.Errorf("session lookup: %w", err)
	}
	if sess == nil {
		return nil, ErrNoSession
	}
	if sess.Expired(time.Now()) {
		s.logger.Debug("expired session", "kind", sess.ActorKind, "actor_id", sess.ActorID, "expired_at", sess.ExpiresAt)
		if err := s.sessions.DeleteByToken(token); err != nil {
			s.logger.Warn("evict expired session", "error", err)
		}
		return nil, ErrSessionExpired
	}
	return sess, nil
}

// Logout deletes the session for token. Idempotent: a missing or already
// deleted token is not an error.
func (s *Service) Logout(token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.DeleteByToken(token); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}
