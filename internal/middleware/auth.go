package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/takasakimo/kirei/internal/auth"
	"github.com/takasakimo/kirei/internal/model"
)

// Two cookie names so a browser can hold a customer session and a staff
// session at the same time (salon owners are customers somewhere too).
const (
	StaffCookieName    = "session_token"
	CustomerCookieName = "customer_session_token"
)

// TenantHint extracts the explicit tenant a super-admin is acting on, from
// the tenant_id query parameter or the X-Tenant-ID header. Returns nil when
// absent or malformed; the resolver treats both the same.
func TenantHint(r *http.Request) *int64 {
	raw := r.URL.Query().Get("tenant_id")
	if raw == "" {
		raw = r.Header.Get("X-Tenant-ID")
	}
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil
	}
	return &id
}

// RequireCustomer authenticates the customer cookie and stores the resolved
// AuthContext on the request context.
func RequireCustomer(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := cookieToken(r, CustomerCookieName)
			ac, err := svc.Authenticate(token, nil, model.ActorCustomer)
			if err != nil {
				writeAuthError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithAuth(r.Context(), *ac)))
		})
	}
}

// RequireStaff authenticates the staff cookie for tenant-scoped admin
// endpoints. Admin sessions resolve to their bound tenant; super-admin
// sessions must carry a tenant hint (and only they may).
func RequireStaff(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := cookieToken(r, StaffCookieName)
			ac, err := svc.Authenticate(token, TenantHint(r), model.ActorAdmin, model.ActorSuperAdmin)
			if err != nil {
				writeAuthError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithAuth(r.Context(), *ac)))
		})
	}
}

// RequireSuperAdmin guards the platform surface (tenant management). No
// tenant resolution happens here; the resulting context has no tenant and
// handlers must not run tenant-scoped queries with it.
func RequireSuperAdmin(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := cookieToken(r, StaffCookieName)
			ac, err := svc.AuthenticateActor(token, model.ActorSuperAdmin)
			if err != nil {
				writeAuthError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithAuth(r.Context(), *ac)))
		})
	}
}

func cookieToken(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// writeAuthError maps auth core failures onto HTTP statuses. Expired and
// missing sessions look identical to the client.
func writeAuthError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, auth.ErrNoSession), errors.Is(err, auth.ErrSessionExpired):
		status = http.StatusUnauthorized
		message = "authentication required"
	case errors.Is(err, auth.ErrForbidden):
		status = http.StatusForbidden
		message = "forbidden"
	case errors.Is(err, auth.ErrTenantRequired):
		status = http.StatusBadRequest
		message = "tenant_id required"
	default:
		slog.Error("authenticate", "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
