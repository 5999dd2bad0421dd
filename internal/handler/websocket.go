package handler

import (
	"net/http"

	"github.com/gorilla/websocket"
)

// HistoryFeed upgrades to a websocket and streams the caller's newly persisted
// records as JSON. The connection is scoped to the resolved identity, so one
// owner never sees another's traffic.
func (h *Handler) HistoryFeed(w http.ResponseWriter, r *http.Request) {
	owner, created := h.Identity.ResolveOrCreate(r)

	// A fresh identity must ride the handshake itself: the upgrader hijacks
	// the connection and only writes headers passed to it, so anything staged
	// on w is lost.
	var respHeader http.Header
	if created {
		cookie, err := h.Identity.Cookie(r, owner)
		if err != nil {
			h.Logger.Error().Err(err).Msg("encoding identity cookie")
			writePlainError(w, http.StatusInternalServerError, "Error occurred while processing request")
			return
		}
		respHeader = http.Header{"Set-Cookie": {cookie.String()}}
	}

	conn, err := upgrader.Upgrade(w, r, respHeader)
	if err != nil {
		h.Logger.Error().Err(err).Msg("websocket upgrade")
		return
	}

	h.clientsMu.Lock()
	h.clients[owner] = append(h.clients[owner], conn)
	h.clientsMu.Unlock()

	defer func() {
		h.clientsMu.Lock()
		clients := h.clients[owner]
		for i, c := range clients {
			if c == conn {
				h.clients[owner] = append(clients[:i], clients[i+1:]...)
				break
			}
		}
		h.clientsMu.Unlock()
		conn.Close()
	}()

	// Drain control frames until the peer goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.Logger.Debug().Err(err).Msg("websocket closed")
			}
			return
		}
	}
}
