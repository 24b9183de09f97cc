package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/takasakimo/kirei/internal/auth"
	"github.com/takasakimo/kirei/internal/middleware"
	"github.com/takasakimo/kirei/internal/model"
)

type AuthHandler struct {
	svc           *auth.Service
	secureCookies bool
	logger        *slog.Logger
}

func NewAuthHandler(svc *auth.Service, secureCookies bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, secureCookies: secureCookies, logger: logger}
}

type contextResponse struct {
	ActorKind model.ActorKind `json:"actor_kind"`
	ActorID   int64           `json:"actor_id"`
	TenantID  int64           `json:"tenant_id,omitempty"`
	Username  string          `json:"username,omitempty"`
}

func toContextResponse(ac auth.AuthContext) contextResponse {
	return contextResponse{
		ActorKind: ac.Kind,
		ActorID:   ac.ActorID,
		TenantID:  ac.TenantID,
		Username:  ac.Username,
	}
}

// CustomerLogin signs a customer in with email or phone, password, and the
// salon's code. The session token goes into the customer cookie.
func (h *AuthHandler) CustomerLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
		TenantCode string `json:"tenant_code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Identifier == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "identifier and password are required")
		return
	}

	res, err := h.svc.Login(model.ActorCustomer, req.Identifier, req.Password, req.TenantCode)
	if err != nil {
		h.logLoginFailure("customer", err)
		writeAuthError(w, err)
		return
	}

	h.setSessionCookie(w, r, middleware.CustomerCookieName, res.Token, res.ExpiresAt)
	writeJSON(w, http.StatusOK, toContextResponse(res.Context))
}

// StaffLogin signs an admin or super-admin in with username and password.
// The session token goes into the staff cookie, distinct from the customer
// one so a browser can hold both.
func (h *AuthHandler) StaffLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	res, err := h.svc.Login(model.ActorAdmin, req.Username, req.Password, "")
	if err != nil {
		h.logLoginFailure("staff", err)
		writeAuthError(w, err)
		return
	}

	h.setSessionCookie(w, r, middleware.StaffCookieName, res.Token, res.ExpiresAt)
	writeJSON(w, http.StatusOK, toContextResponse(res.Context))
}

// CustomerLogout deletes the customer session. Safe to call twice.
func (h *AuthHandler) CustomerLogout(w http.ResponseWriter, r *http.Request) {
	h.logout(w, r, middleware.CustomerCookieName)
}

// StaffLogout deletes the staff session. Safe to call twice.
func (h *AuthHandler) StaffLogout(w http.ResponseWriter, r *http.Request) {
	h.logout(w, r, middleware.StaffCookieName)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request, cookieName string) {
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		if err := h.svc.Logout(cookie.Value); err != nil {
			h.logger.Error("logout", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
	}
	h.clearSessionCookie(w, cookieName)
	w.WriteHeader(http.StatusNoContent)
}

// Me echoes the authenticated context back to the caller.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, toContextResponse(ac))
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, r *http.Request, name, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.secureCookies || r.TLS != nil,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

func (h *AuthHandler) logLoginFailure(surface string, err error) {
	if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrTenantNotFound) {
		h.logger.Info("login rejected", "surface", surface, "reason", err)
		return
	}
	h.logger.Error("login", "surface", surface, "error", err)
}
