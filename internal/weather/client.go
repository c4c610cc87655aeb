// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/mdcscry/thread/internal/cache"
	"github.com/mdcscry/thread/internal/logging"
	"github.com/mdcscry/thread/internal/metrics"
	"github.com/mdcscry/thread/internal/recommend"
)

const breakerName = "weather-api"

// maxErrorBodySize limits how much of an error response is read.
const maxErrorBodySize = 4 * 1024

var (
	// ErrLocationRequired is returned for an empty location.
	ErrLocationRequired = errors.New("location is required")

	// ErrUnknownLocation is returned when the service does not know the location.
	ErrUnknownLocation = errors.New("unknown location")

	// ErrRateLimited is returned when the local request budget is spent.
	ErrRateLimited = errors.New("weather lookups rate limited")

	// ErrUnavailable is returned while the circuit breaker is open.
	ErrUnavailable = errors.New("weather service unavailable")
)

// Config holds weather client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration

	// CacheTTL is how long a temperature is reused for the same location.
	CacheTTL      time.Duration
	CacheCapacity int

	// RequestsPerSecond and Burst bound outgoing lookups.
	RequestsPerSecond float64
	Burst             int

	// FailureThreshold consecutive failures open the breaker for OpenTimeout.
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:           "http://127.0.0.1:8088",
		Timeout:           3 * time.Second,
		CacheTTL:          15 * time.Minute,
		CacheCapacity:     1000,
		RequestsPerSecond: 5,
		Burst:             10,
		FailureThreshold:  5,
		OpenTimeout:       30 * time.Second,
	}
}

// currentResponse is the JSON body of GET /current.
type currentResponse struct {
	Location     string   `json:"location"`
	TemperatureF *float64 `json:"temperature_f"`
	TemperatureC *float64 `json:"temperature_c"`
}

// Client resolves current temperatures over HTTP. Lookups are cached per
// location, rate limited, and guarded by a circuit breaker.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[float64]
	cache   *cache.LRU[float64]
}

var _ recommend.WeatherProvider = (*Client)(nil)

// NewClient creates a weather client.
func NewClient(cfg Config) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid weather base url %q", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.CacheCapacity < 1 {
		cfg.CacheCapacity = DefaultConfig().CacheCapacity
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultConfig().FailureThreshold
	}
	limit := rate.Limit(cfg.RequestsPerSecond)
	if cfg.RequestsPerSecond <= 0 {
		limit = rate.Inf
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[float64](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// An unknown location is an answer, not an outage.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrUnknownLocation)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("Weather circuit breaker state changed")
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String(), stateToFloat(to))
		},
	})

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, burst),
		cb:      cb,
		cache:   cache.New[float64](cfg.CacheCapacity, cfg.CacheTTL),
	}, nil
}

// CurrentTemperatureF returns the current temperature at location in Fahrenheit.
func (c *Client) CurrentTemperatureF(ctx context.Context, location string) (float64, error) {
	key := strings.ToLower(strings.TrimSpace(location))
	if key == "" {
		return 0, ErrLocationRequired
	}

	if temp, ok := c.cache.Get(key); ok {
		metrics.RecordWeatherLookup("hit")
		return temp, nil
	}

	if !c.limiter.Allow() {
		metrics.RecordWeatherLookup("rejected")
		return 0, ErrRateLimited
	}

	temp, err := c.cb.Execute(func() (float64, error) {
		return c.fetch(ctx, location)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
			metrics.RecordWeatherLookup("rejected")
			return 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
		metrics.RecordWeatherLookup("error")
		return 0, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()
	metrics.RecordWeatherLookup("miss")
	c.cache.Add(key, temp)
	return temp, nil
}

func (c *Client) fetch(ctx context.Context, location string) (float64, error) {
	params := url.Values{}
	params.Set("location", location)
	reqURL := fmt.Sprintf("%s/current?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("weather request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return 0, fmt.Errorf("%w: %s", ErrUnknownLocation, location)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return 0, fmt.Errorf("weather request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var body currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("failed to decode weather response: %w", err)
	}

	switch {
	case body.TemperatureF != nil:
		return *body.TemperatureF, nil
	case body.TemperatureC != nil:
		return *body.TemperatureC*9/5 + 32, nil
	default:
		return 0, fmt.Errorf("weather response for %s has no temperature", location)
	}
}

// State returns the breaker state, for health reporting.
func (c *Client) State() gobreaker.State {
	return c.cb.State()
}

// Check reports ErrUnavailable while the breaker is open.
func (c *Client) Check(_ context.Context) error {
	if c.cb.State() == gobreaker.StateOpen {
		return fmt.Errorf("%w: circuit breaker open", ErrUnavailable)
	}
	return nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
