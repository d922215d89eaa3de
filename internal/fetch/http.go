// Package fetch talks to the external sources: a plain HTTP client for
// the CSV and HTML endpoints and a headless-browser session for the
// download-only CSV export.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrUnavailable marks transport failures and non-2xx responses. The
// jobs treat it as fatal: abort the run, leave the previous snapshot
// untouched.
var ErrUnavailable = errors.New("source unavailable")

// Client is a one-attempt HTTP fetcher with a fixed deadline and the
// browser-ish headers the Tesouro endpoints expect. No retries by
// design.
type Client struct {
	http    *http.Client
	headers map[string]string
}

// NewClient builds a client with the given per-request deadline.
// Headers are sent on every request.
func NewClient(timeout time.Duration, headers map[string]string) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		headers: headers,
	}
}

// Get fetches url and returns the body. Any transport error or non-2xx
// status wraps ErrUnavailable.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: HTTP %d from %s", ErrUnavailable, resp.StatusCode, url)
	}
	return io.ReadAll(resp.Body)
}
