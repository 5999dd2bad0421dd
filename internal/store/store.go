package store

import (
	"context"
	"strconv"
	"time"

	"github.com/proxybin/proxybin/internal/bodycodec"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
)

// Record is one persisted proxied-request outcome. Records are append-only:
// the store assigns id and createdAt, and nothing updates them afterward.
type Record struct {
	ID               int64              `json:"id"`
	Owner            string             `json:"owner"`
	Method           string             `json:"method"`
	URL              string             `json:"url"`
	Status           int                `json:"status"`
	RequestHeaders   map[string]string  `json:"requestHeaders,omitempty"`
	ResponseHeaders  map[string]string  `json:"responseHeaders,omitempty"`
	RequestBody      string             `json:"requestBody,omitempty"`
	RequestBodyType  bodycodec.BodyType `json:"requestBodyType,omitempty"`
	ResponseBody     string             `json:"responseBody,omitempty"`
	ResponseBodyType bodycodec.BodyType `json:"responseBodyType,omitempty"`
	CreatedAt        time.Time          `json:"createdAt"`
}

// Page is a 1-based pagination window.
type Page struct {
	Number int
	Limit  int
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// NormalizePage parses page/limit query values, falling back to the defaults
// on anything missing, non-numeric, or non-positive.
func NormalizePage(pageStr, limitStr string) Page {
	p := Page{Number: DefaultPage, Limit: DefaultLimit}
	if n, err := strconv.Atoi(pageStr); err == nil && n > 0 {
		p.Number = n
	}
	if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
		p.Limit = n
	}
	return p
}

type Store interface {
	// Append persists rec atomically, assigning ID and CreatedAt on it.
	Append(ctx context.Context, rec *Record) error

	// ListByOwner returns the owner's records ordered by descending id, plus
	// the total owner-scoped count regardless of the pagination window.
	ListByOwner(ctx context.Context, owner string, page Page) ([]*Record, int, error)

	Close() error
}
