package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/takasakimo/kirei/internal/auth"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeAuthError maps the auth error taxonomy onto HTTP statuses. Invalid
// credentials, missing and expired sessions all collapse to 401 so callers
// learn nothing about which account exists.
func writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrNoSession),
		errors.Is(err, auth.ErrSessionExpired):
		writeError(w, http.StatusUnauthorized, "authentication failed")
	case errors.Is(err, auth.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, auth.ErrTenantRequired):
		writeError(w, http.StatusBadRequest, "tenant_id required")
	case errors.Is(err, auth.ErrTenantNotFound):
		writeError(w, http.StatusBadRequest, "unknown salon code")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
