// Package openf1 is a thin client for the OpenF1 live-telemetry API.
// Every operation is a keyed list-read returning loosely-typed records;
// field names vary between schema versions, so callers resolve values
// through the alias helpers in records.go.
package openf1

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/okian/boxbox/pkg/metrics"
)

const providerName = "openf1"

// defaultTimeout bounds each request; there is no retry.
const defaultTimeout = 90 * time.Second

// ResponseCache stores raw response bodies keyed by request URL. A nil cache
// disables caching. Implementations swallow their own storage errors.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Put(ctx context.Context, key string, body []byte)
}

// Client provides access to the OpenF1 API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      ResponseCache
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithCache attaches a response cache.
func WithCache(cache ResponseCache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// New creates an OpenF1 client.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("%w: base url required", ErrBadRequest)
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Sessions lists the year's sessions filtered by session name (e.g. "Race").
func (c *Client) Sessions(ctx context.Context, year int, sessionName string) ([]Record, error) {
	return c.get(ctx, "sessions", url.Values{
		"year":         []string{strconv.Itoa(year)},
		"session_name": []string{sessionName},
	})
}

// Drivers returns the session roster.
func (c *Client) Drivers(ctx context.Context, sessionKey int) ([]Record, error) {
	return c.get(ctx, "drivers", sessionURL(sessionKey))
}

// PitStops returns the session's raw pit records.
func (c *Client) PitStops(ctx context.Context, sessionKey int) ([]Record, error) {
	return c.get(ctx, "pit", sessionURL(sessionKey))
}

// Positions returns the session's position snapshots.
func (c *Client) Positions(ctx context.Context, sessionKey int) ([]Record, error) {
	return c.get(ctx, "position", sessionURL(sessionKey))
}

// CarData returns the session's raw car-signal samples (used for the DRS proxy).
func (c *Client) CarData(ctx context.Context, sessionKey int) ([]Record, error) {
	return c.get(ctx, "car_data", sessionURL(sessionKey))
}

func sessionURL(sessionKey int) url.Values {
	return url.Values{"session_key": []string{strconv.Itoa(sessionKey)}}
}

// get performs one keyed list-read, consulting the cache first.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]Record, error) {
	requestURL := c.baseURL + "/" + endpoint
	if encoded := params.Encode(); encoded != "" {
		requestURL += "?" + encoded
	}

	if c.cache != nil {
		if body, ok := c.cache.Get(ctx, requestURL); ok {
			metrics.RecordCacheHit()
			return decodeRecords(body)
		}
		metrics.RecordCacheMiss()
	}

	metrics.RecordProviderRequest(providerName, endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		metrics.RecordProviderError(providerName, endpoint)
		return nil, fmt.Errorf("%w: build request: %w", ErrBadRequest, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordProviderError(providerName, endpoint)
		return nil, fmt.Errorf("%w: %s: %w", ErrRequestFailed, endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordProviderError(providerName, endpoint)
		return nil, fmt.Errorf("%w: %s returned status %d", ErrRequestFailed, endpoint, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordProviderError(providerName, endpoint)
		return nil, fmt.Errorf("%w: read %s body: %w", ErrRequestFailed, endpoint, err)
	}

	records, err := decodeRecords(body)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.Put(ctx, requestURL, body)
	}
	return records, nil
}

func decodeRecords(body []byte) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadPayload, err)
	}
	return records, nil
}
