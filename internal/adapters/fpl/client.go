// Package fpl is a client for the public Fantasy Premier League API.
package fpl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/okian/fplsquad/pkg/logger"
	"github.com/okian/fplsquad/pkg/metrics"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public FPL API root.
	DefaultBaseURL = "https://fantasy.premierleague.com/api"

	defaultRateLimit  = 5.0 // requests per second
	defaultBurst      = 2
	defaultTimeout    = 20 * time.Second
	defaultUserAgent  = "fplsquad/1.0"
	maxErrorBodyBytes = 512

	defaultBreakerMinRequests = 5
	defaultBreakerRatio       = 0.6
	defaultBreakerOpenTimeout = 30 * time.Second

	endpointBootstrap = "bootstrap-static"
	endpointFixtures  = "fixtures"
)

// Client fetches bootstrap-static and fixtures.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	timeout    time.Duration
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	log        logger.Logger

	breakerMinRequests uint32
	breakerRatio       float64
	breakerOpenTimeout time.Duration
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		if url != "" {
			c.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client. A client passed
// through WithHTTPClient keeps its own timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRateLimit sets custom rate limiting.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) {
		if rps > 0 && burst > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithBreaker tunes the circuit breaker: it opens after minRequests with a failure
// ratio of at least ratio and stays open for openTimeout.
func WithBreaker(minRequests uint32, ratio float64, openTimeout time.Duration) ClientOption {
	return func(c *Client) {
		if minRequests > 0 {
			c.breakerMinRequests = minRequests
		}
		if ratio > 0 && ratio <= 1 {
			c.breakerRatio = ratio
		}
		if openTimeout > 0 {
			c.breakerOpenTimeout = openTimeout
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient creates a new FPL API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:            DefaultBaseURL,
		userAgent:          defaultUserAgent,
		timeout:            defaultTimeout,
		limiter:            rate.NewLimiter(rate.Limit(defaultRateLimit), defaultBurst),
		log:                logger.NewNop(),
		breakerMinRequests: defaultBreakerMinRequests,
		breakerRatio:       defaultBreakerRatio,
		breakerOpenTimeout: defaultBreakerOpenTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout: c.timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "fpl",
		Timeout: c.breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < c.breakerMinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= c.breakerRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.UpdateBreakerState(name, int(to))
			c.log.Warn(context.Background(), "circuit breaker state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	})

	return c
}

// Bootstrap fetches players, teams and gameweeks.
func (c *Client) Bootstrap(ctx context.Context) (*Bootstrap, error) {
	var b Bootstrap
	if err := c.get(ctx, endpointBootstrap, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Fixtures fetches every fixture of the season.
func (c *Client) Fixtures(ctx context.Context) ([]Fixture, error) {
	var fx []Fixture
	if err := c.get(ctx, endpointFixtures, &fx); err != nil {
		return nil, err
	}
	return fx, nil
}

// BreakerState returns the circuit breaker state name.
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}

func (c *Client) get(ctx context.Context, endpoint string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	start := time.Now()
	status := "error"
	defer func() {
		metrics.RecordUpstreamRequest(endpoint, status, float64(time.Since(start).Milliseconds()))
	}()

	body, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+endpoint+"/", nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: GET %s: %w", ErrUpstream, endpoint, err)
		}
		defer resp.Body.Close()

		status = strconv.Itoa(resp.StatusCode)
		if resp.StatusCode != http.StatusOK {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
			return nil, fmt.Errorf("%w: GET %s: status %d: %s", ErrUpstream, endpoint, resp.StatusCode, strings.TrimSpace(string(snippet)))
		}
		return io.ReadAll(resp.Body)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			status = "breaker_open"
			return fmt.Errorf("%w: %w", ErrUpstream, ErrBreakerOpen)
		}
		return err
	}

	if err := json.Unmarshal(body.([]byte), out); err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrUpstream, endpoint, err)
	}
	return nil
}
