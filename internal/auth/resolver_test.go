package auth

import (
	"errors"
	"testing"

	"github.com/takasakimo/kirei/internal/model"
)

func int64ptr(v int64) *int64 { return &v }

func TestResolveTenantSuperAdminRequiresHint(t *testing.T) {
	sess := &model.Session{ID: 1, ActorKind: model.ActorSuperAdmin}

	_, err := ResolveTenant(sess, nil)
	if !errors.Is(err, ErrTenantRequired) {
		t.Errorf("err = %v, want ErrTenantRequired", err)
	}
}

func TestResolveTenantSuperAdminHintWins(t *testing.T) {
	sess := &model.Session{ID: 1, ActorKind: model.ActorSuperAdmin}

	got, err := ResolveTenant(sess, int64ptr(42))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != 42 {
		t.Errorf("tenant = %d, want 42", got)
	}
}

func TestResolveTenantAdminIgnoresHint(t *testing.T) {
	sess := &model.Session{ID: 1, ActorKind: model.ActorAdmin, TenantID: int64ptr(5)}

	// An admin bound to tenant 5 asking for tenant 9 still gets 5. No error,
	// no escalation.
	got, err := ResolveTenant(sess, int64ptr(9))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != 5 {
		t.Errorf("tenant = %d, want 5", got)
	}
}

func TestResolveTenantCustomerIgnoresHint(t *testing.T) {
	sess := &model.Session{ID: 1, ActorKind: model.ActorCustomer, TenantID: int64ptr(5)}

	got, err := ResolveTenant(sess, int64ptr(9))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != 5 {
		t.Errorf("tenant = %d, want 5", got)
	}
}

func TestResolveTenantAdminNoHint(t *testing.T) {
	sess := &model.Session{ID: 1, ActorKind: model.ActorAdmin, TenantID: int64ptr(5)}

	got, err := ResolveTenant(sess, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != 5 {
		t.Errorf("tenant = %d, want 5", got)
	}
}

func TestResolveTenantScopedKindWithoutTenant(t *testing.T) {
	for _, kind := range []model.ActorKind{model.ActorAdmin, model.ActorCustomer} {
		sess := &model.Session{ID: 1, ActorKind: kind}
		if _, err := ResolveTenant(sess, nil); err == nil {
			t.Errorf("kind %s with nil tenant: expected error", kind)
		}
	}
}

func TestResolveTenantUnknownKind(t *testing.T) {
	sess := &model.Session{ID: 1, ActorKind: model.ActorKind("robot"), TenantID: int64ptr(5)}

	if _, err := ResolveTenant(sess, nil); err == nil {
		t.Error("expected error for unknown actor kind")
	}
}
