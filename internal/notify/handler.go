package notify

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"
)

// Handler upgrades the connection and runs it as a hub client for the
// given account. The accountID func reads the authenticated account
// from the request; auth middleware runs before this handler.
func Handler(hub *Hub, accountID func(*http.Request) int64, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, nil)
		if err != nil {
			logger.Error("websocket accept", "error", err)
			return
		}

		client := NewClient(hub, conn, accountID(r))
		client.Run(r.Context())
	}
}
