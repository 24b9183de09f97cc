package middleware

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/takasakimo/kirei/internal/auth"
	"github.com/takasakimo/kirei/internal/database"
	"github.com/takasakimo/kirei/internal/model"
	"github.com/takasakimo/kirei/internal/store"
)

type authFixture struct {
	svc           *auth.Service
	tenantID      int64
	customerToken string
	adminToken    string
	rootToken     string
}

func setupAuth(t *testing.T) *authFixture {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	tenants := store.NewTenantStore(db)
	customers := store.NewCustomerStore(db)
	admins := store.NewAdminStore(db)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := auth.NewService(store.NewSessionStore(db), tenants, customers, admins, logger)

	tenant, err := tenants.Create("SALON1", "Salon One")
	if err != nil {
		t.Fatalf("seed tenant: %v", err)
	}
	hash, err := auth.HashPassword("p")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if _, err := customers.Create(tenant.ID, "Alice", "a@x.com", "", hash); err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	if _, err := admins.Create("owner", hash, model.ActorAdmin, &tenant.ID); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	if _, err := admins.Create("root", hash, model.ActorSuperAdmin, nil); err != nil {
		t.Fatalf("seed super admin: %v", err)
	}

	custRes, err := svc.Login(model.ActorCustomer, "a@x.com", "p", "SALON1")
	if err != nil {
		t.Fatalf("customer login: %v", err)
	}
	adminRes, err := svc.Login(model.ActorAdmin, "owner", "p", "")
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	rootRes, err := svc.Login(model.ActorAdmin, "root", "p", "")
	if err != nil {
		t.Fatalf("root login: %v", err)
	}

	return &authFixture{
		svc:           svc,
		tenantID:      tenant.ID,
		customerToken: custRes.Token,
		adminToken:    adminRes.Token,
		rootToken:     rootRes.Token,
	}
}

// captureHandler records the AuthContext the middleware stored on the request.
func captureHandler(got *auth.AuthContext) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ac, ok := auth.FromContext(r.Context()); ok {
			*got = ac
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireCustomerNoCookie(t *testing.T) {
	f := setupAuth(t)
	var ac auth.AuthContext
	h := RequireCustomer(f.svc)(captureHandler(&ac))

	req := httptest.NewRequest("GET", "/api/bookings", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body["error"] == "" {
		t.Error("expected a JSON error body")
	}
}

func TestRequireCustomerInvalidToken(t *testing.T) {
	f := setupAuth(t)
	h := RequireCustomer(f.svc)(captureHandler(&auth.AuthContext{}))

	req := httptest.NewRequest("GET", "/api/bookings", nil)
	req.AddCookie(&http.Cookie{Name: CustomerCookieName, Value: "bogus"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireCustomerValid(t *testing.T) {
	f := setupAuth(t)
	var ac auth.AuthContext
	h := RequireCustomer(f.svc)(captureHandler(&ac))

	req := httptest.NewRequest("GET", "/api/bookings", nil)
	req.AddCookie(&http.Cookie{Name: CustomerCookieName, Value: f.customerToken})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ac.Kind != model.ActorCustomer {
		t.Errorf("kind = %s, want customer", ac.Kind)
	}
	if ac.TenantID != f.tenantID {
		t.Errorf("tenant = %d, want %d", ac.TenantID, f.tenantID)
	}
}

func TestRequireCustomerRejectsStaffCookie(t *testing.T) {
	f := setupAuth(t)
	h := RequireCustomer(f.svc)(captureHandler(&auth.AuthContext{}))

	// A staff token in the customer cookie is a kind mismatch.
	req := httptest.NewRequest("GET", "/api/bookings", nil)
	req.AddCookie(&http.Cookie{Name: CustomerCookieName, Value: f.adminToken})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestRequireStaffAdminHintIgnored(t *testing.T) {
	f := setupAuth(t)
	var ac auth.AuthContext
	h := RequireStaff(f.svc)(captureHandler(&ac))

	// The crafted tenant_id must not move the admin off their own tenant.
	req := httptest.NewRequest("GET", "/api/admin/bookings?tenant_id=999", nil)
	req.AddCookie(&http.Cookie{Name: StaffCookieName, Value: f.adminToken})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ac.TenantID != f.tenantID {
		t.Errorf("tenant = %d, want %d", ac.TenantID, f.tenantID)
	}
}

func TestRequireStaffSuperAdminNeedsHint(t *testing.T) {
	f := setupAuth(t)
	var ac auth.AuthContext
	h := RequireStaff(f.svc)(captureHandler(&ac))

	req := httptest.NewRequest("GET", "/api/admin/bookings", nil)
	req.AddCookie(&http.Cookie{Name: StaffCookieName, Value: f.rootToken})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("no hint: status = %d, want 400", rec.Code)
	}

	req = httptest.NewRequest("GET", "/api/admin/bookings?tenant_id=1", nil)
	req.AddCookie(&http.Cookie{Name: StaffCookieName, Value: f.rootToken})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("with hint: status = %d, want 200", rec.Code)
	}
	if ac.TenantID != 1 {
		t.Errorf("tenant = %d, want 1", ac.TenantID)
	}
}

func TestRequireStaffRejectsCustomer(t *testing.T) {
	f := setupAuth(t)
	h := RequireStaff(f.svc)(captureHandler(&auth.AuthContext{}))

	req := httptest.NewRequest("GET", "/api/admin/bookings", nil)
	req.AddCookie(&http.Cookie{Name: StaffCookieName, Value: f.customerToken})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestRequireSuperAdmin(t *testing.T) {
	f := setupAuth(t)
	var ac auth.AuthContext
	h := RequireSuperAdmin(f.svc)(captureHandler(&ac))

	// No tenant hint required on the platform surface.
	req := httptest.NewRequest("GET", "/api/admin/tenants", nil)
	req.AddCookie(&http.Cookie{Name: StaffCookieName, Value: f.rootToken})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !ac.IsSuperAdmin() {
		t.Error("expected super admin context")
	}

	req = httptest.NewRequest("GET", "/api/admin/tenants", nil)
	req.AddCookie(&http.Cookie{Name: StaffCookieName, Value: f.adminToken})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("tenant admin: status = %d, want 403", rec.Code)
	}
}

func TestTenantHint(t *testing.T) {
	tests := []struct {
		name   string
		target string
		header string
		want   *int64
	}{
		{"absent", "/x", "", nil},
		{"query", "/x?tenant_id=7", "", int64ptr(7)},
		{"header", "/x", "7", int64ptr(7)},
		{"malformed", "/x?tenant_id=abc", "", nil},
		{"zero", "/x?tenant_id=0", "", nil},
		{"negative", "/x?tenant_id=-3", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.target, nil)
			if tt.header != "" {
				req.Header.Set("X-Tenant-ID", tt.header)
			}
			got := TenantHint(req)
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("hint = %d, want nil", *got)
			case tt.want != nil && got == nil:
				t.Errorf("hint = nil, want %d", *tt.want)
			case tt.want != nil && *got != *tt.want:
				t.Errorf("hint = %d, want %d", *got, *tt.want)
			}
		})
	}
}

func TestQueryHintBeatsHeader(t *testing.T) {
	req := httptest.NewRequest("GET", "/x?tenant_id=3", nil)
	req.Header.Set("X-Tenant-ID", "9")
	got := TenantHint(req)
	if got == nil || *got != 3 {
		t.Errorf("hint = %v, want 3", got)
	}
}

func int64ptr(v int64) *int64 { return &v }
