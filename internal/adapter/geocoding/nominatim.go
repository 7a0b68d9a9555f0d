// Package geocoding resolves postal addresses through a Nominatim-compatible
// search endpoint.
package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/V4T54L/rentwise/internal/adapter/metrics"
	"github.com/V4T54L/rentwise/internal/domain"
)

// Config configures the Nominatim client.
type Config struct {
	BaseURL   string
	UserAgent string
	// RPS caps upstream requests per second. The public Nominatim service
	// allows one.
	RPS     float64
	Timeout time.Duration
}

// Client implements domain.Geocoder.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	cache   domain.GeocodeCache
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a Nominatim client. cache and m may be nil.
func New(cfg Config, cache domain.GeocodeCache, m *metrics.Metrics, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 1
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RPS), 1),
		cache:   cache,
		metrics: m,
		logger:  logger.With("component", "geocoder"),
	}
}

type place struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode returns the coordinates of the best match for addr.
func (c *Client) Geocode(ctx context.Context, addr domain.Address) (domain.Coordinates, bool, error) {
	if cached := c.lookup(ctx, addr); cached != nil {
		return cached.Coordinates, cached.Found, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("geocoder rate limit: %w", err)
	}

	res, err := c.search(ctx, addr)
	if err != nil {
		c.count("error")
		return domain.Coordinates{}, false, err
	}
	if res.Found {
		c.count("found")
	} else {
		c.count("empty")
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, addr, res); err != nil {
			c.logger.Warn("failed to cache geocode result", "error", err)
		}
	}
	return res.Coordinates, res.Found, nil
}

func (c *Client) lookup(ctx context.Context, addr domain.Address) *domain.GeocodeResult {
	if c.cache == nil {
		return nil
	}
	cached, err := c.cache.Get(ctx, addr)
	if err != nil {
		c.logger.Warn("geocode cache unavailable", "error", err)
	}
	if cached == nil {
		if c.metrics != nil {
			c.metrics.GeocodeCacheMisses.Inc()
		}
		return nil
	}
	if c.metrics != nil {
		c.metrics.GeocodeCacheHits.Inc()
	}
	return cached
}

func (c *Client) search(ctx context.Context, addr domain.Address) (domain.GeocodeResult, error) {
	q := url.Values{}
	q.Set("street", addr.Street)
	q.Set("city", addr.City)
	q.Set("country", addr.Country)
	q.Set("postalcode", addr.PostalCode)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return domain.GeocodeResult{}, fmt.Errorf("build geocode request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.GeocodeResult{}, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.GeocodeResult{}, fmt.Errorf("geocode request: unexpected status %d", resp.StatusCode)
	}

	var places []place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return domain.GeocodeResult{}, fmt.Errorf("decode geocode response: %w", err)
	}
	if len(places) == 0 || places[0].Lat == "" || places[0].Lon == "" {
		return domain.GeocodeResult{}, nil
	}

	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return domain.GeocodeResult{}, fmt.Errorf("parse longitude %q: %w", places[0].Lon, err)
	}
	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return domain.GeocodeResult{}, fmt.Errorf("parse latitude %q: %w", places[0].Lat, err)
	}
	return domain.GeocodeResult{
		Coordinates: domain.Coordinates{Longitude: lon, Latitude: lat},
		Found:       true,
	}, nil
}

func (c *Client) count(result string) {
	if c.metrics != nil {
		c.metrics.GeocodeRequests.WithLabelValues(result).Inc()
	}
}
