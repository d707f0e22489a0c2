// Package nominatim implements geo.Geocoder against an OpenStreetMap
// Nominatim-compatible search endpoint.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"marketplace_backend/internal/geo"
	"marketplace_backend/platform/config"
	"marketplace_backend/platform/logger"
)

const (
	defaultEndpoint  = "https://nominatim.openstreetmap.org/search"
	defaultUserAgent = "MarketplaceDirectory/1.0"
	defaultTimeout   = 3 * time.Second
	countryCodes     = "us"
)

// searchResult mirrors the relevant parts of the search payload.
type searchResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Client looks up addresses. The usage policy requires an identifying
// User-Agent, which every request carries.
type Client struct {
	endpoint   string
	userAgent  string
	httpClient *http.Client
	log        *logger.Logger
}

// New creates a client from configuration. Empty values fall back to the
// public endpoint and a 3s timeout.
func New(cfg config.GeocodingConfig, log *logger.Logger) *Client {
	endpoint := strings.TrimSpace(cfg.GetGeocoderURL())
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	userAgent := strings.TrimSpace(cfg.GetGeocoderUserAgent())
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	timeout := cfg.GetGeocoderTimeout()
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		endpoint:   endpoint,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// Lookup returns the best match for address. found is false when the service
// answered with an empty list.
func (c *Client) Lookup(ctx context.Context, address string) (geo.GeocodeResult, bool, error) {
	params := url.Values{}
	params.Set("q", address)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("countrycodes", countryCodes)

	reqURL := fmt.Sprintf("%s?%s", c.endpoint, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return geo.GeocodeResult{}, false, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("nominatim request failed", "error", err)
		return geo.GeocodeResult{}, false, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Error("nominatim upstream error", "status", resp.StatusCode)
		return geo.GeocodeResult{}, false, fmt.Errorf("upstream api error: %d", resp.StatusCode)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		c.log.Error("failed to decode nominatim payload", "error", err)
		return geo.GeocodeResult{}, false, err
	}
	if len(results) == 0 {
		return geo.GeocodeResult{}, false, nil
	}

	return parseResult(results[0])
}

func parseResult(raw searchResult) (geo.GeocodeResult, bool, error) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(raw.Lat), 64)
	if err != nil {
		return geo.GeocodeResult{}, false, fmt.Errorf("invalid latitude %q: %w", raw.Lat, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(raw.Lon), 64)
	if err != nil {
		return geo.GeocodeResult{}, false, fmt.Errorf("invalid longitude %q: %w", raw.Lon, err)
	}

	return geo.GeocodeResult{
		Coordinate:  geo.Coordinate{Lat: lat, Lng: lng},
		DisplayName: raw.DisplayName,
	}, true, nil
}

var _ geo.Geocoder = (*Client)(nil)
