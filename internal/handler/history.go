package handler

import (
	"net/http"

	"github.com/proxybin/proxybin/internal/store"
)

type historyResponse struct {
	Records []*store.Record `json:"records"`
	Total   int             `json:"total"`
	Page    int             `json:"page"`
	Limit   int             `json:"limit"`
}

// History serves the caller's paginated execution history, newest first.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	owner := h.resolveIdentity(w, r)

	q := r.URL.Query()
	page := store.NormalizePage(q.Get("page"), q.Get("limit"))

	records, total, err := h.Store.ListByOwner(r.Context(), owner, page)
	if err != nil {
		h.Logger.Error().Err(err).Msg("querying history")
		writePlainError(w, http.StatusInternalServerError, "Error occurred while fetching request history")
		return
	}
	if records == nil {
		records = []*store.Record{}
	}

	writeJSON(w, http.StatusOK, historyResponse{
		Records: records,
		Total:   total,
		Page:    page.Number,
		Limit:   page.Limit,
	})
}
