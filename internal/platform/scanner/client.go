// Package scanner is the REST client for the external catalog service that
// tracks item listings, prices, and container memberships.
package scanner

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/cs2trade/tradeupbot/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config holds the scanner API connection settings.
type Config struct {
	// BaseURL is the scanner service root, e.g. "http://scanner:8000".
	BaseURL string
	// APIKey is sent as the X-API-KEY header on every request.
	APIKey string
	// MergeDuplicates asks the scanner to collapse duplicate listings
	// server-side before responding.
	MergeDuplicates bool
	// Timeout bounds each request. Zero means 30 seconds.
	Timeout time.Duration
}

// Client fetches the catalog from the scanner API. It implements
// catalog.Provider: one request per endpoint per run, no retries.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a scanner API client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Items returns the full item catalog. Rows with a tier the engine does not
// know are dropped rather than failing the run.
func (c *Client) Items(ctx context.Context) ([]domain.Item, error) {
	body, err := c.doGet(ctx, "/api/scanner/items/")
	if err != nil {
		return nil, fmt.Errorf("scanner: get items: %w", err)
	}

	var resp itemsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("scanner: decode items: %w", err)
	}

	items := make([]domain.Item, 0, len(resp.Items))
	for i := range resp.Items {
		it, err := resp.Items[i].toDomain()
		if err != nil {
			continue
		}
		items = append(items, it)
	}
	return items, nil
}

// Sources returns every known container keyed by ID.
func (c *Client) Sources(ctx context.Context) (map[string]domain.Source, error) {
	body, err := c.doGet(ctx, "/api/scanner/sources/")
	if err != nil {
		return nil, fmt.Errorf("scanner: get sources: %w", err)
	}

	var resp sourcesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("scanner: decode sources: %w", err)
	}

	sources := make(map[string]domain.Source, len(resp.Sources))
	for id, src := range resp.Sources {
		sources[id] = domain.Source{ID: id, Type: src.Type, ItemIDs: src.Items}
	}
	return sources, nil
}

// doGet sends an authenticated GET request to the scanner API.
func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	params := url.Values{}
	params.Set("merge_duplicates", strconv.FormatBool(c.cfg.MergeDuplicates))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-KEY", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}

	return body, nil
}

// checkHTTPStatus maps non-2xx status codes to domain errors.
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	bodyStr := string(body)
	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, bodyStr)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, bodyStr)
	default:
		return fmt.Errorf("HTTP %d: %s", statusCode, bodyStr)
	}
}
