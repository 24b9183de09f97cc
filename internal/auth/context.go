package auth

import (
	"context"

	"github.com/takasakimo/kirei/internal/model"
)

type contextKey struct{}

// AuthContext is the per-request result of authentication: who is calling and
// which tenant's data the request may touch. TenantID is the resolved tenant
// and is the only tenant id downstream queries may use.
type AuthContext struct {
	Kind     model.ActorKind
	ActorID  int64
	TenantID int64
	Username string
}

// IsSuperAdmin reports whether the caller is a platform operator.
func (ac AuthContext) IsSuperAdmin() bool {
	return ac.Kind == model.ActorSuperAdmin
}

func WithAuth(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

func FromContext(ctx context.Context) (AuthContext, bool) {
	ac, ok := ctx.Value(contextKey{}).(AuthContext)
	return ac, ok
}

// TenantID returns the resolved tenant id for the request, or 0 when the
// request was not authenticated through the tenant-scoped path.
func TenantID(ctx context.Context) int64 {
	ac, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return ac.TenantID
}

func ActorID(ctx context.Context) int64 {
	ac, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return ac.ActorID
}
