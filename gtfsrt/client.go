package gtfsrt

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout bounds a single feed fetch. Callers treat any failure
// as terminal for that poll cycle; there is no retry.
const DefaultTimeout = 30 * time.Second

// Client fetches GTFS-RT feed bytes over HTTP.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a feed client with the default timeout.
func NewClient() *Client {
	return NewClientWithTimeout(DefaultTimeout)
}

// NewClientWithTimeout creates a feed client with an explicit timeout.
func NewClientWithTimeout(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Endpoint builds a feed URL from a base endpoint and the static API
// key the upstream requires as a query parameter. Returns
// ErrInvalidEndpoint when the base cannot be parsed.
func Endpoint(base, key string) (string, error) {
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidEndpoint, base)
	}
	if key != "" {
		q := u.Query()
		q.Set("key", key)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// Fetch performs a single GET against the feed URL and returns the raw
// response bytes. Returns nil bytes and nil error for an empty URL so
// optional feeds can be skipped. All failure modes (DNS, connection,
// timeout, non-2xx status) surface as a *TransportError; the status
// code is recorded but not otherwise interpreted.
func (c *Client) Fetch(ctx context.Context, feedURL string) ([]byte, error) {
	if feedURL == "" {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, &TransportError{URL: feedURL, Err: err}
	}
	req.Header.Set("Accept", "application/json, application/x-protobuf")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: feedURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &TransportError{URL: feedURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: feedURL, Err: err}
	}
	return body, nil
}

// FetchFeed fetches and decodes in one step.
func (c *Client) FetchFeed(ctx context.Context, feedURL string) (*Feed, error) {
	data, err := c.Fetch(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	return Decode(data)
}
