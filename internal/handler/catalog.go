package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/takasakimo/kirei/internal/auth"
	"github.com/takasakimo/kirei/internal/store"
)

// CatalogHandler serves the service menu and staff roster. Customers see the
// active subset of their own salon; staff manage the full set of theirs.
type CatalogHandler struct {
	services *store.ServiceStore
	staff    *store.StaffStore
	logger   *slog.Logger
}

func NewCatalogHandler(sv *store.ServiceStore, st *store.StaffStore, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{services: sv, staff: st, logger: logger}
}

// ListServices returns active services for the caller's tenant.
func (h *CatalogHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	h.listServices(w, r, true)
}

// AdminListServices returns all services, including deactivated ones.
func (h *CatalogHandler) AdminListServices(w http.ResponseWriter, r *http.Request) {
	h.listServices(w, r, false)
}

func (h *CatalogHandler) listServices(w http.ResponseWriter, r *http.Request, activeOnly bool) {
	tenantID := auth.TenantID(r.Context())
	services, err := h.services.ListByTenant(tenantID, activeOnly)
	if err != nil {
		h.logger.Error("list services", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, services)
}

// CreateService adds a menu item to the caller's tenant.
func (h *CatalogHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		DurationMin int    `json:"duration_min"`
		PriceYen    int64  `json:"price_yen"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.DurationMin <= 0 {
		writeError(w, http.StatusBadRequest, "name and a positive duration_min are required")
		return
	}

	service, err := h.services.Create(auth.TenantID(r.Context()), req.Name, req.DurationMin, req.PriceYen)
	if err != nil {
		h.logger.Error("create service", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, service)
}

// UpdateService edits a menu item. A service id belonging to another tenant
// is a 404, not a cross-tenant write.
func (h *CatalogHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid service id")
		return
	}
	tenantID := auth.TenantID(r.Context())

	existing, err := h.services.GetByID(tenantID, id)
	if err != nil {
		h.logger.Error("get service", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "service not found")
		return
	}

	var req struct {
		Name        *string `json:"name"`
		DurationMin *int    `json:"duration_min"`
		PriceYen    *int64  `json:"price_yen"`
		IsActive    *bool   `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name, duration, price, active := existing.Name, existing.DurationMin, existing.PriceYen, existing.IsActive
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		name = strings.TrimSpace(*req.Name)
	}
	if req.DurationMin != nil && *req.DurationMin > 0 {
		duration = *req.DurationMin
	}
	if req.PriceYen != nil {
		price = *req.PriceYen
	}
	if req.IsActive != nil {
		active = *req.IsActive
	}

	service, err := h.services.Update(tenantID, id, name, duration, price, active)
	if err != nil {
		h.logger.Error("update service", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, service)
}

// DeleteService removes a menu item from the caller's tenant.
func (h *CatalogHandler) DeleteService(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid service id")
		return
	}
	if err := h.services.Delete(auth.TenantID(r.Context()), id); err != nil {
		h.logger.Error("delete service", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListStaff returns active stylists for the caller's tenant.
func (h *CatalogHandler) ListStaff(w http.ResponseWriter, r *http.Request) {
	h.listStaff(w, r, true)
}

// AdminListStaff returns the full roster.
func (h *CatalogHandler) AdminListStaff(w http.ResponseWriter, r *http.Request) {
	h.listStaff(w, r, false)
}

func (h *CatalogHandler) listStaff(w http.ResponseWriter, r *http.Request, activeOnly bool) {
	tenantID := auth.TenantID(r.Context())
	staff, err := h.staff.ListByTenant(tenantID, activeOnly)
	if err != nil {
		h.logger.Error("list staff", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, staff)
}

// CreateStaff adds a stylist to the caller's tenant.
func (h *CatalogHandler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	staff, err := h.staff.Create(auth.TenantID(r.Context()), req.Name)
	if err != nil {
		h.logger.Error("create staff", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, staff)
}

// UpdateStaff renames or (de)activates a stylist.
func (h *CatalogHandler) UpdateStaff(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid staff id")
		return
	}
	tenantID := auth.TenantID(r.Context())

	existing, err := h.staff.GetByID(tenantID, id)
	if err != nil {
		h.logger.Error("get staff", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "staff not found")
		return
	}

	var req struct {
		Name     *string `json:"name"`
		IsActive *bool   `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name, active := existing.Name, existing.IsActive
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		name = strings.TrimSpace(*req.Name)
	}
	if req.IsActive != nil {
		active = *req.IsActive
	}

	staff, err := h.staff.Update(tenantID, id, name, active)
	if err != nil {
		h.logger.Error("update staff", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, staff)
}
