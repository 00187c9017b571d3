// Package upstream holds HTTP clients for the rate and region services.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/twostep/pkg/metrics"
)

const (
	defaultTimeout = 10 * time.Second

	// maxErrorBody caps how much of a failed response is kept for the error.
	maxErrorBody = 512
)

// HTTPClient wraps http.Client with JSON decoding and upstream metrics.
type HTTPClient struct {
	client *http.Client
}

// NewHTTPClient creates a client whose requests are bounded by timeout.
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// WithHTTPClient wraps an existing http.Client, e.g. one from httptest.
func WithHTTPClient(c *http.Client) *HTTPClient {
	return &HTTPClient{client: c}
}

// GetJSON issues a GET to rawURL and decodes a 2xx JSON body into v. source
// labels the request in metrics.
func (c *HTTPClient) GetJSON(ctx context.Context, source, rawURL string, v any) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordUpstreamRequest(source, metrics.Outcome(err), float64(time.Since(start).Milliseconds()))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrRequest, source, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrRequest, source, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: %s: %d %s", ErrStatus, source, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDecode, source, err)
	}
	return nil
}
