package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/takasakimo/kirei/internal/auth"
	"github.com/takasakimo/kirei/internal/model"
	"github.com/takasakimo/kirei/internal/store"
)

// TenantHandler serves the public salon lookup and the super-admin platform
// surface. Platform endpoints run without a tenant scope; everything here
// addresses tenants by explicit id or code, never through the resolver.
type TenantHandler struct {
	tenants  *store.TenantStore
	admins   *store.AdminStore
	sessions *store.SessionStore
	logger   *slog.Logger
}

func NewTenantHandler(ts *store.TenantStore, as *store.AdminStore, ss *store.SessionStore, logger *slog.Logger) *TenantHandler {
	return &TenantHandler{tenants: ts, admins: as, sessions: ss, logger: logger}
}

type tenantResponse struct {
	ID        int64  `json:"id"`
	Code      string `json:"code"`
	SalonName string `json:"salon_name"`
	IsActive  bool   `json:"is_active"`
}

func toTenantResponse(t *model.Tenant) tenantResponse {
	return tenantResponse{ID: t.ID, Code: t.Code, SalonName: t.SalonName, IsActive: t.IsActive}
}

// Lookup is the anonymous salon-by-code endpoint used before login. Inactive
// salons look identical to missing ones.
func (h *TenantHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	tenant, err := h.tenants.GetByCode(code)
	if err != nil {
		h.logger.Error("tenant lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if tenant == nil || !tenant.IsActive {
		writeError(w, http.StatusNotFound, "unknown salon code")
		return
	}
	writeJSON(w, http.StatusOK, toTenantResponse(tenant))
}

// List returns every tenant, active or not. Super-admin only.
func (h *TenantHandler) List(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.tenants.List()
	if err != nil {
		h.logger.Error("list tenants", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	out := make([]tenantResponse, 0, len(tenants))
	for _, t := range tenants {
		out = append(out, toTenantResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

// Create registers a new salon. Super-admin only.
func (h *TenantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code      string `json:"code"`
		SalonName string `json:"salon_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Code = strings.TrimSpace(req.Code)
	req.SalonName = strings.TrimSpace(req.SalonName)
	if req.Code == "" || req.SalonName == "" {
		writeError(w, http.StatusBadRequest, "code and salon_name are required")
		return
	}

	if existing, err := h.tenants.GetByCode(req.Code); err != nil {
		h.logger.Error("check tenant code", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	} else if existing != nil {
		writeError(w, http.StatusConflict, "salon code already in use")
		return
	}

	tenant, err := h.tenants.Create(req.Code, req.SalonName)
	if err != nil {
		h.logger.Error("create tenant", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, toTenantResponse(tenant))
}

// Update renames or (de)activates a salon. Super-admin only.
func (h *TenantHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tenant id")
		return
	}

	var req struct {
		SalonName string `json:"salon_name"`
		IsActive  *bool  `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tenant, err := h.tenants.GetByID(id)
	if err != nil {
		h.logger.Error("get tenant", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if tenant == nil {
		writeError(w, http.StatusNotFound, "tenant not found")
		return
	}

	name := tenant.SalonName
	if strings.TrimSpace(req.SalonName) != "" {
		name = strings.TrimSpace(req.SalonName)
	}
	active := tenant.IsActive
	if req.IsActive != nil {
		active = *req.IsActive
	}

	updated, err := h.tenants.Update(id, name, active)
	if err != nil {
		h.logger.Error("update tenant", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	// Deactivating a salon revokes every live session bound to it so neither
	// its staff nor its customers can keep acting on stale cookies.
	if tenant.IsActive && !updated.IsActive {
		if err := h.sessions.DeleteByTenant(id); err != nil {
			h.logger.Error("revoke tenant sessions", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, toTenantResponse(updated))
}

// CreateAdmin provisions a staff login: a tenant-bound admin, or another
// super-admin when tenant_id is omitted and role says so. Super-admin only.
func (h *TenantHandler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
		TenantID *int64 `json:"tenant_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	role := model.ActorAdmin
	if req.Role != "" {
		parsed, err := model.ParseActorKind(req.Role)
		if err != nil || parsed == model.ActorCustomer {
			writeError(w, http.StatusBadRequest, "role must be admin or super_admin")
			return
		}
		role = parsed
	}

	switch role {
	case model.ActorAdmin:
		if req.TenantID == nil {
			writeError(w, http.StatusBadRequest, "tenant_id is required for admin role")
			return
		}
		tenant, err := h.tenants.GetByID(*req.TenantID)
		if err != nil {
			h.logger.Error("get tenant", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if tenant == nil {
			writeError(w, http.StatusBadRequest, "tenant not found")
			return
		}
	case model.ActorSuperAdmin:
		if req.TenantID != nil {
			writeError(w, http.StatusBadRequest, "super_admin must not have a tenant_id")
			return
		}
	}

	if existing, err := h.admins.GetByUsername(req.Username); err != nil {
		h.logger.Error("check username", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	} else if existing != nil {
		writeError(w, http.StatusConflict, "username already in use")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	admin, err := h.admins.Create(req.Username, hash, role, req.TenantID)
	if err != nil {
		h.logger.Error("create admin", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":        admin.ID,
		"username":  admin.Username,
		"role":      admin.Role,
		"tenant_id": admin.TenantID,
	})
}
