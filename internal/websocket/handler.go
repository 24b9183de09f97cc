package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/takasakimo/kirei/internal/auth"
)

// Handler upgrades an authenticated staff request to a WebSocket and runs it
// as a hub client for the request's resolved tenant. Must sit behind the
// staff auth middleware: the tenant binding comes from the AuthContext.
func Handler(hub *Hub, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ac, ok := auth.FromContext(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := ws.Accept(w, r, nil)
		if err != nil {
			logger.Warn("websocket accept", "error", err)
			return
		}

		client := NewClient(hub, conn, ac.TenantID)
		client.Run(r.Context())
	}
}
