package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/proxybin/proxybin/internal/bodycodec"
	"github.com/proxybin/proxybin/internal/store"
)

var allowedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodDelete: true,
}

type executeRequest struct {
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers"`
	Body    json.RawMessage   `json:"body"`
}

func (req *executeRequest) validate() error {
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	req.Method = strings.ToUpper(req.Method)
	if !allowedMethods[req.Method] {
		return fmt.Errorf("method must be one of GET, POST, PUT, DELETE")
	}

	u, err := url.Parse(req.URL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("url must be a valid absolute URL")
	}
	return nil
}

// contentType finds the caller-declared content-type header, whatever its
// casing.
func (req *executeRequest) contentType() string {
	for k, v := range req.Headers {
		if strings.EqualFold(k, "Content-Type") {
			return v
		}
	}
	return ""
}

// ExecuteRequest runs one proxied call: validate the request, resolve the caller
// identity, perform the outbound request, classify both bodies, persist the
// record, and answer with it under the origin's status code.
func (h *Handler) ExecuteRequest(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}
	if err := req.validate(); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	owner := h.resolveIdentity(w, r)

	// A body on GET is ignored outright: never sent, never stored.
	var reqBody bodycodec.Value
	hasBody := len(req.Body) > 0 && string(req.Body) != "null" && req.Method != http.MethodGet
	if hasBody {
		reqBody = bodycodec.ClassifyRequest(req.Body, req.contentType())
	}

	// The pipeline outlives a client disconnect so a completed outbound call
	// is never persisted half-way.
	ctx := context.WithoutCancel(r.Context())

	var outbound []byte
	if hasBody {
		outbound = reqBody.Outbound()
	}
	res, err := h.Executor.Execute(ctx, req.Method, req.URL, req.Headers, outbound)
	if err != nil {
		h.Logger.Error().Err(err).Str("method", req.Method).Str("url", req.URL).
			Msg("outbound request failed")
		writePlainError(w, http.StatusBadGateway, "Error occurred while processing request")
		return
	}

	rec := &store.Record{
		Owner:           owner,
		Method:          req.Method,
		URL:             req.URL,
		Status:          res.Status,
		RequestHeaders:  req.Headers,
		ResponseHeaders: res.Headers,
	}
	if hasBody {
		rec.RequestBody, rec.RequestBodyType = reqBody.Stored()
	}
	rec.ResponseBody, rec.ResponseBodyType = bodycodec.EncodeResponse(res.Body, res.ContentType)

	if err := h.Store.Append(ctx, rec); err != nil {
		h.Logger.Error().Err(err).Msg("persisting history record")
		writePlainError(w, http.StatusInternalServerError, "Error occurred while processing request")
		return
	}

	h.broadcast(owner, rec)

	// The origin's status becomes this call's status, except where that
	// status forbids a body (204, 304, 1xx): the record must always reach the
	// caller, and its status field carries the real value regardless.
	status := res.Status
	if status == http.StatusNoContent || status == http.StatusNotModified || status < http.StatusOK {
		status = http.StatusOK
	}
	writeJSON(w, status, rec)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writePlainError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(msg))
}
