package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter assembles the HTTP surface around a constructed Handler.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(ResponseTime)
	r.Use(RequestLogger(h.Logger))
	r.Use(CORS)

	r.Get("/", h.Health)
	r.Post("/api/request", h.ExecuteRequest)
	r.Get("/api/history", h.History)
	r.Get("/api/history/ws", h.HistoryFeed)

	return r
}
