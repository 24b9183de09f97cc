package store

import (
	"testing"
	"time"

	"github.com/takasakimo/kirei/internal/database"
	"github.com/takasakimo/kirei/internal/model"
)

func setupStoreDB(t *testing.T) (*SessionStore, *TenantStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSessionStore(db), NewTenantStore(db)
}

func seedTenant(t *testing.T, ts *TenantStore, code string) *model.Tenant {
	t.Helper()
	tenant, err := ts.Create(code, code+" salon")
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	return tenant
}

func TestSessionCreate(t *testing.T) {
	ss, ts := setupStoreDB(t)
	tenant := seedTenant(t, ts, "SALON1")

	sess, err := ss.Create(model.ActorCustomer, 7, &tenant.ID, "Alice", time.Hour)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if len(sess.Token) != 64 { // 32 bytes hex-encoded
		t.Errorf("token length = %d, want 64", len(sess.Token))
	}
	if sess.ActorKind != model.ActorCustomer {
		t.Errorf("actor_kind = %q, want customer", sess.ActorKind)
	}
	if sess.ActorID != 7 {
		t.Errorf("actor_id = %d, want 7", sess.ActorID)
	}
	if sess.TenantID == nil || *sess.TenantID != tenant.ID {
		t.Errorf("tenant_id = %v, want %d", sess.TenantID, tenant.ID)
	}
	if !sess.ExpiresAt.After(time.Now()) {
		t.Error("expected expiry in the future")
	}
}

func TestSessionCreateSuperAdminNoTenant(t *testing.T) {
	ss, _ := setupStoreDB(t)

	sess, err := ss.Create(model.ActorSuperAdmin, 1, nil, "root", time.Hour)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if sess.TenantID != nil {
		t.Errorf("tenant_id = %v, want nil", sess.TenantID)
	}
}

func TestSessionTokensUnique(t *testing.T) {
	ss, ts := setupStoreDB(t)
	tenant := seedTenant(t, ts, "SALON1")

	s1, _ := ss.Create(model.ActorCustomer, 1, &tenant.ID, "", time.Hour)
	s2, _ := ss.Create(model.ActorCustomer, 1, &tenant.ID, "", time.Hour)
	if s1.Token == s2.Token {
		t.Error("two logins produced the same token")
	}
}

func TestSessionGetByToken(t *testing.T) {
	ss, ts := setupStoreDB(t)
	tenant := seedTenant(t, ts, "SALON1")
	created, _ := ss.Create(model.ActorAdmin, 3, &tenant.ID, "owner", time.Hour)

	sess, err := ss.GetByToken(created.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if sess == nil {
		t.Fatal("expected session, got nil")
	}
	if sess.ID != created.ID {
		t.Errorf("id = %d, want %d", sess.ID, created.ID)
	}
	if sess.Username != "owner" {
		t.Errorf("username = %q, want %q", sess.Username, "owner")
	}
}

func TestSessionGetByTokenNotFound(t *testing.T) {
	ss, _ := setupStoreDB(t)

	sess, err := ss.GetByToken("nonexistent")
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if sess != nil {
		t.Error("expected nil for nonexistent token")
	}
}

func TestSessionGetByTokenReturnsExpired(t *testing.T) {
	ss, ts := setupStoreDB(t)
	tenant := seedTenant(t, ts, "SALON1")
	created, _ := ss.Create(model.ActorCustomer, 1, &tenant.ID, "", -time.Minute)

	// The store hands expired rows back; expiry is the authenticator's call.
	sess, err := ss.GetByToken(created.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if sess == nil {
		t.Fatal("expected expired session to still be returned")
	}
	if !sess.Expired(time.Now()) {
		t.Error("expected session to report expired")
	}
}

func TestSessionDeleteByTokenIdempotent(t *testing.T) {
	ss, ts := setupStoreDB(t)
	tenant := seedTenant(t, ts, "SALON1")
	created, _ := ss.Create(model.ActorCustomer, 1, &tenant.ID, "", time.Hour)

	if err := ss.DeleteByToken(created.Token); err != nil {
		t.Fatalf("delete: %v", err)
	}
	sess, _ := ss.GetByToken(created.Token)
	if sess != nil {
		t.Error("expected nil after delete")
	}

	// Second delete of the same token must not error.
	if err := ss.DeleteByToken(created.Token); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestSessionDeleteExpired(t *testing.T) {
	ss, ts := setupStoreDB(t)
	tenant := seedTenant(t, ts, "SALON1")

	ss.Create(model.ActorCustomer, 1, &tenant.ID, "", -time.Minute)
	ss.Create(model.ActorCustomer, 2, &tenant.ID, "", -time.Minute)
	live, _ := ss.Create(model.ActorCustomer, 3, &tenant.ID, "", time.Hour)

	n, err := ss.DeleteExpired()
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted = %d, want 2", n)
	}

	sess, _ := ss.GetByToken(live.Token)
	if sess == nil {
		t.Error("live session swept away")
	}
}

func TestSessionDeleteByActor(t *testing.T) {
	ss, ts := setupStoreDB(t)
	tenant := seedTenant(t, ts, "SALON1")

	s1, _ := ss.Create(model.ActorCustomer, 1, &tenant.ID, "", time.Hour)
	s2, _ := ss.Create(model.ActorCustomer, 1, &tenant.ID, "", time.Hour)
	other, _ := ss.Create(model.ActorAdmin, 1, &tenant.ID, "", time.Hour)

	if err := ss.DeleteByActor(model.ActorCustomer, 1); err != nil {
		t.Fatalf("delete by actor: %v", err)
	}

	for _, token := range []string{s1.Token, s2.Token} {
		if sess, _ := ss.GetByToken(token); sess != nil {
			t.Error("customer session survived revoke-all")
		}
	}
	// Same actor id, different kind: untouched.
	if sess, _ := ss.GetByToken(other.Token); sess == nil {
		t.Error("admin session was wrongly revoked")
	}
}

func TestSessionDeleteByTenant(t *testing.T) {
	ss, ts := setupStoreDB(t)
	t1 := seedTenant(t, ts, "SALON1")
	t2 := seedTenant(t, ts, "SALON2")

	victim, _ := ss.Create(model.ActorCustomer, 1, &t1.ID, "", time.Hour)
	survivor, _ := ss.Create(model.ActorCustomer, 1, &t2.ID, "", time.Hour)

	if err := ss.DeleteByTenant(t1.ID); err != nil {
		t.Fatalf("delete by tenant: %v", err)
	}
	if sess, _ := ss.GetByToken(victim.Token); sess != nil {
		t.Error("session of deactivated tenant survived")
	}
	if sess, _ := ss.GetByToken(survivor.Token); sess == nil {
		t.Error("other tenant's session was revoked")
	}
}
