// Package ymaps provides clients for the geocoder, organization search and
// static map HTTP APIs.
package ymaps

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/NERVsystems/geoviewport/pkg/cache"
	"github.com/NERVsystems/geoviewport/pkg/config"
	"github.com/NERVsystems/geoviewport/pkg/geo"
	"github.com/NERVsystems/geoviewport/pkg/version"
)

const (
	// Service names for rate limiting and error reporting
	ServiceGeocoder   = "geocoder"
	ServiceSearch     = "search"
	ServiceStaticMaps = "static_maps"

	// maxBodySize caps how much of a response body is read.
	maxBodySize = 16 << 20
)

// Endpoint describes one remote API.
type Endpoint struct {
	URL    string
	APIKey string
	RPS    float64
	Burst  int
}

// Config holds everything the client needs. There is no package-level
// state; each Client carries its own keys, limits and cache.
type Config struct {
	Geocoder   Endpoint
	Search     Endpoint
	StaticMaps Endpoint

	Timeout   time.Duration
	UserAgent string
	Lang      string

	CacheTTL      time.Duration
	CacheMaxItems int

	Viewport geo.ViewportConfig
}

// ConfigFrom builds a client configuration from the application config.
func ConfigFrom(c *config.Config) Config {
	ep := func(e config.EndpointConfig) Endpoint {
		return Endpoint{URL: e.URL, APIKey: e.APIKey, RPS: e.RPS, Burst: e.Burst}
	}
	return Config{
		Geocoder:      ep(c.Geocoder),
		Search:        ep(c.Search),
		StaticMaps:    ep(c.StaticMaps),
		Timeout:       c.HTTP.Timeout,
		UserAgent:     c.HTTP.UserAgent,
		Lang:          c.HTTP.Lang,
		CacheTTL:      c.Cache.TTL,
		CacheMaxItems: c.Cache.MaxItems,
		Viewport:      c.Viewport,
	}
}

// Client talks to the geocoder, search and static map APIs.
type Client struct {
	cfg      Config
	http     *http.Client
	limiter  *RateLimiter
	geocodes *cache.TTLCache[string, []Toponym]
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the pooled HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger for the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a client with connection pooling and per-service rate
// limits.
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = version.UserAgent()
	}
	if cfg.Viewport == (geo.ViewportConfig{}) {
		cfg.Viewport = geo.DefaultViewportConfig()
	}

	c := &Client{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
			Timeout: cfg.Timeout,
		},
		limiter: NewRateLimiter(map[string]Endpoint{
			ServiceGeocoder:   cfg.Geocoder,
			ServiceSearch:     cfg.Search,
			ServiceStaticMaps: cfg.StaticMaps,
		}),
		geocodes: cache.NewTTLCache[string, []Toponym](cfg.CacheTTL, cfg.CacheMaxItems),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Viewport returns the viewport settings the client was configured with.
func (c *Client) Viewport() geo.ViewportConfig {
	return c.cfg.Viewport
}

func (c *Client) endpoint(service string) Endpoint {
	switch service {
	case ServiceGeocoder:
		return c.cfg.Geocoder
	case ServiceSearch:
		return c.cfg.Search
	default:
		return c.cfg.StaticMaps
	}
}

// requestURL joins the service endpoint with params and the API key.
func (c *Client) requestURL(service string, params url.Values) (string, error) {
	ep := c.endpoint(service)
	u, err := url.Parse(ep.URL)
	if err != nil {
		return "", fmt.Errorf("parse %s url: %w", service, err)
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	if ep.APIKey != "" {
		q.Set("apikey", ep.APIKey)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// get performs a rate-limited GET and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, service string, params url.Values) ([]byte, error) {
	logger := c.logger.With("service", service)

	reqURL, err := c.requestURL(service, params)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", service, err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	if err := c.limiter.Wait(ctx, service); err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Error("request failed", "error", err)
		return nil, &APIError{
			Service:     service,
			Message:     err.Error(),
			Recoverable: true,
			Guidance:    GuidanceNetworkError,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", service, err)
	}

	logger.Debug("request completed",
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Error("service returned error", "status", resp.StatusCode)
		return nil, NewAPIError(service, resp.StatusCode, errorMessage(body, resp.Status), "")
	}
	return body, nil
}
