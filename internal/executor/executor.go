// Package executor issues the outbound HTTP call described by a validated
// request spec and normalizes the raw response for classification and storage.
package executor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const maxRedirects = 10

// Result is the normalized outcome of one outbound call: the terminal status
// after any redirects, flattened headers, the full body, and the declared
// content type handed on to the body codec.
type Result struct {
	Status      int
	Headers     map[string]string
	Body        []byte
	ContentType string
}

// Client performs outbound calls with a bounded timeout.
type Client struct {
	httpClient *http.Client
}

func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
	}
}

// Execute performs a single HTTP request. The body is attached only when
// non-empty; callers enforce method semantics (no body on GET) before this
// point. The entire response body is read into memory.
func (c *Client) Execute(ctx context.Context, method, target string, headers map[string]string, body []byte) (*Result, error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	flat := make(map[string]string, len(resp.Header))
	for k, vals := range resp.Header {
		flat[strings.ToLower(k)] = strings.Join(vals, ", ")
	}

	return &Result{
		Status:      resp.StatusCode,
		Headers:     flat,
		Body:        respBody,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}
