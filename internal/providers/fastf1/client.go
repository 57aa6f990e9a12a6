// Package fastf1 is a client for the FastF1 HTTP bridge, the authoritative
// source for the season schedule, session results and per-lap timing. Unlike
// the telemetry provider its tables are keyed by (year, round, session).
package fastf1

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

const providerName = "fastf1"

// defaultTimeout bounds each request; there is no retry.
const defaultTimeout = 60 * time.Second

// sessionRace selects the race session in results/laps queries.
const sessionRace = "R"

// ResponseCache stores raw response bodies keyed by request URL. A nil cache
// disables caching. Implementations swallow their own storage errors.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Put(ctx context.Context, key string, body []byte)
}

// Client provides access to the FastF1 bridge.
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

// New creates a FastF1 bridge client.
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

// Schedule fetches the season's event schedule. A schedule without the
// required columns is a hard error: nothing downstream has meaning without it.
func (c *Client) Schedule(ctx context.Context, year int) ([]ScheduleEntry, error) {
	params := url.Values{"year": []string{strconv.Itoa(year)}}

	var entries []ScheduleEntry
	if err := c.get(ctx, "schedule", params, &entries); err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if entry.RoundNumber == 0 && strings.TrimSpace(entry.EventName) == "" {
			return nil, fmt.Errorf("%w: schedule rows missing round_number and event_name", ErrMissingColumns)
		}
	}
	return entries, nil
}

// Results fetches the race results table for one round.
func (c *Client) Results(ctx context.Context, year, round int) ([]ResultRow, error) {
	params := url.Values{
		"year":    []string{strconv.Itoa(year)},
		"round":   []string{strconv.Itoa(round)},
		"session": []string{sessionRace},
	}

	var rows []ResultRow
	if err := c.get(ctx, "results", params, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Laps fetches the per-lap timing table for one round, including pit
// entry/exit timestamps where recorded.
func (c *Client) Laps(ctx context.Context, year, round int) ([]LapRow, error) {
	params := url.Values{
		"year":    []string{strconv.Itoa(year)},
		"round":   []string{strconv.Itoa(round)},
		"session": []string{sessionRace},
	}

	var rows []LapRow
	if err := c.get(ctx, "laps", params, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// get performs one list-read into out, consulting the cache first.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	requestURL := c.baseURL + "/" + endpoint
	if encoded := params.Encode(); encoded != "" {
		requestURL += "?" + encoded
	}

	if c.cache != nil {
		if body, ok := c.cache.Get(ctx, requestURL); ok {
			metrics.RecordCacheHit()
			return decodeInto(body, out)
		}
		metrics.RecordCacheMiss()
	}

	metrics.RecordProviderRequest(providerName, endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		metrics.RecordProviderError(providerName, endpoint)
		return fmt.Errorf("%w: build request: %w", ErrBadRequest, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordProviderError(providerName, endpoint)
		return fmt.Errorf("%w: %s: %w", ErrRequestFailed, endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordProviderError(providerName, endpoint)
		return fmt.Errorf("%w: %s returned status %d", ErrRequestFailed, endpoint, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordProviderError(providerName, endpoint)
		return fmt.Errorf("%w: read %s body: %w", ErrRequestFailed, endpoint, err)
	}

	if err := decodeInto(body, out); err != nil {
		return err
	}

	if c.cache != nil {
		c.cache.Put(ctx, requestURL, body)
	}
	return nil
}

func decodeInto(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %w", ErrBadPayload, err)
	}
	return nil
}
