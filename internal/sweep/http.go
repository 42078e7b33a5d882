package sweep

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// HTTPClient wraps http.Client with a timeout and a base URL.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// Get performs a GET request bound to ctx.
func (c *HTTPClient) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Layout fetches /layout for v and returns the decoded body and the
// round-trip time.
func (c *HTTPClient) Layout(ctx context.Context, v View) (Layout, time.Duration, error) {
	q := url.Values{}
	q.Set("k", strconv.FormatFloat(v.K, 'f', -1, 64))
	q.Set("x", strconv.FormatFloat(v.X, 'f', -1, 64))
	q.Set("width", strconv.FormatFloat(v.Width, 'f', -1, 64))
	q.Set("height", strconv.FormatFloat(v.Height, 'f', -1, 64))

	start := time.Now()
	resp, err := c.Get(ctx, "/layout?"+q.Encode())
	if err != nil {
		return Layout{}, 0, err
	}
	body, err := readResponseBody(resp)
	took := time.Since(start)
	if err != nil {
		return Layout{}, took, fmt.Errorf("failed to read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Layout{}, took, fmt.Errorf("status %d: %s", resp.StatusCode, body)
	}

	var l Layout
	if err := json.Unmarshal(body, &l); err != nil {
		return Layout{}, took, fmt.Errorf("failed to decode layout: %w", err)
	}
	return l, took, nil
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
