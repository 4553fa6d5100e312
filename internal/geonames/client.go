// Package geonames attaches GeoNames identifiers to the origin region of
// structured records.
package geonames

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"fjacquet/tering/internal/logging"
	"fjacquet/tering/internal/store"

	"golang.org/x/time/rate"
)

// Geocoder finds the GeoNames ID of a place name. A nil ID means no match.
type Geocoder interface {
	Search(ctx context.Context, name string) (*int, error)
}

type searchResponse struct {
	TotalResultsCount int `json:"totalResultsCount"`
	Geonames          []struct {
		GeonameID int    `json:"geonameId"`
		Name      string `json:"name"`
	} `json:"geonames"`
	Status *struct {
		Message string `json:"message"`
		Value   int    `json:"value"`
	} `json:"status"`
}

// Client queries the GeoNames searchJSON endpoint for administrative
// divisions. Answers, including misses, are kept in the cache; requests
// are paced by the limiter.
type Client struct {
	baseURL    string
	username   string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *store.GeocodeCache
	logger     logging.Logger
}

// NewClient creates a Client allowing requestsPerSecond requests.
func NewClient(baseURL, username string, requestsPerSecond float64, cache *store.GeocodeCache, logger logging.Logger) (*Client, error) {
	if username == "" {
		return nil, fmt.Errorf("GEONAMES_USERNAME is not set")
	}
	if requestsPerSecond <= 0 {
		return nil, fmt.Errorf("requests per second must be positive, got %g", requestsPerSecond)
	}
	if cache == nil {
		cache = store.NewGeocodeCache()
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Client{
		baseURL:    baseURL,
		username:   username,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		cache:      cache,
		logger:     logger,
	}, nil
}

// Search returns the ID of the best administrative-division match for name.
func (c *Client) Search(ctx context.Context, name string) (*int, error) {
	if name == "" {
		return nil, nil
	}
	if id, ok := c.cache.Lookup(name); ok {
		return id, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", name)
	params.Set("featureClass", "A")
	params.Set("maxRows", "1")
	params.Set("username", c.username)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build GeoNames request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GeoNames request for %q failed: %w", name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GeoNames request for %q failed: %s", name, resp.Status)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode GeoNames response: %w", err)
	}
	if body.Status != nil {
		return nil, fmt.Errorf("GeoNames error %d: %s", body.Status.Value, body.Status.Message)
	}

	if body.TotalResultsCount == 0 || len(body.Geonames) == 0 {
		c.logger.Warn("No GeoNames match", logging.F(logging.FieldRegion, name))
		c.cache.Store(name, nil)
		return nil, nil
	}

	id := body.Geonames[0].GeonameID
	c.cache.Store(name, &id)
	c.logger.Info("GeoNames match",
		logging.F(logging.FieldRegion, name),
		logging.F("geonames_id", id))
	return &id, nil
}
