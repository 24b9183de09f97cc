package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/takasakimo/kirei/internal/auth"
	"github.com/takasakimo/kirei/internal/model"
	"github.com/takasakimo/kirei/internal/store"
)

type CustomerHandler struct {
	tenants   *store.TenantStore
	customers *store.CustomerStore
	logger    *slog.Logger
}

func NewCustomerHandler(ts *store.TenantStore, cs *store.CustomerStore, logger *slog.Logger) *CustomerHandler {
	return &CustomerHandler{tenants: ts, customers: cs, logger: logger}
}

type customerResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

func toCustomerResponse(c *model.Customer) customerResponse {
	return customerResponse{ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone}
}

// Signup registers a customer with the salon named in the path. Anonymous
// endpoint: the tenant comes from the code, not from any session.
func (h *CustomerHandler) Signup(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	tenant, err := h.tenants.GetByCode(code)
	if err != nil {
		h.logger.Error("signup tenant lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if tenant == nil || !tenant.IsActive {
		writeError(w, http.StatusNotFound, "unknown salon code")
		return
	}

	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Name == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "name and password are required")
		return
	}
	if req.Email == "" && req.Phone == "" {
		writeError(w, http.StatusBadRequest, "email or phone is required")
		return
	}

	for _, identifier := range []string{req.Email, req.Phone} {
		if identifier == "" {
			continue
		}
		existing, err := h.customers.GetByIdentifier(tenant.ID, identifier)
		if err != nil {
			h.logger.Error("signup identifier check", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if existing != nil {
			writeError(w, http.StatusConflict, "account already exists")
			return
		}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	customer, err := h.customers.Create(tenant.ID, req.Name, req.Email, req.Phone, hash)
	if err != nil {
		h.logger.Error("create customer", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, toCustomerResponse(customer))
}

// List returns the tenant's customers for staff. The tenant id comes from
// the resolved auth context, never from the request.
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	tenantID := auth.TenantID(r.Context())
	customers, err := h.customers.ListByTenant(tenantID)
	if err != nil {
		h.logger.Error("list customers", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	out := make([]customerResponse, 0, len(customers))
	for _, c := range customers {
		out = append(out, toCustomerResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}
