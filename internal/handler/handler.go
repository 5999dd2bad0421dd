package handler

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/proxybin/proxybin/internal/executor"
	"github.com/proxybin/proxybin/internal/identity"
	"github.com/proxybin/proxybin/internal/store"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler wires the proxy pipeline: validate → execute → classify → persist →
// respond, under a per-caller identity. All collaborators are injected at
// construction.
type Handler struct {
	Store    store.Store
	Executor *executor.Client
	Identity *identity.Manager
	Logger   zerolog.Logger

	clients   map[string][]*websocket.Conn // owner token -> live feed connections
	clientsMu sync.Mutex
}

func NewHandler(s store.Store, exec *executor.Client, ident *identity.Manager, logger zerolog.Logger) *Handler {
	return &Handler{
		Store:    s,
		Executor: exec,
		Identity: ident,
		Logger:   logger,
		clients:  make(map[string][]*websocket.Conn),
	}
}

// Health is the liveness endpoint.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("Server is up!!"))
}

// resolveIdentity returns the caller's owner token, setting the signed cookie
// when a fresh identity was issued.
func (h *Handler) resolveIdentity(w http.ResponseWriter, r *http.Request) string {
	token, created := h.Identity.ResolveOrCreate(r)
	if created {
		if err := h.Identity.SetCookie(w, r, token); err != nil {
			h.Logger.Error().Err(err).Msg("encoding identity cookie")
		}
	}
	return token
}

// broadcastWriteWait bounds each live-feed write; the mutex below is shared
// across owners, so a stalled peer must not hold it indefinitely.
const broadcastWriteWait = 5 * time.Second

// broadcast pushes a newly persisted record to the owner's live feed. A
// connection that cannot take the write in time is evicted.
func (h *Handler) broadcast(owner string, rec *store.Record) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	clients := h.clients[owner]
	for i := len(clients) - 1; i >= 0; i-- {
		conn := clients[i]
		conn.SetWriteDeadline(time.Now().Add(broadcastWriteWait))
		if err := conn.WriteJSON(rec); err != nil {
			clients = append(clients[:i], clients[i+1:]...)
			conn.Close()
		}
	}
	h.clients[owner] = clients
}
