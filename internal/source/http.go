package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// ClientConfig controls how a Client talks to one site.
type ClientConfig struct {
	UserAgent    string
	Timeout      time.Duration
	MaxBodyBytes int64

	// RatePerSecond <= 0 disables the limiter.
	RatePerSecond float64
	Burst         int
}

// DefaultClientConfig mirrors what the sites tolerate from a browser: a
// browser-like User-Agent and a 10s ceiling per request.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		UserAgent:     "Mozilla/5.0",
		Timeout:       10 * time.Second,
		MaxBodyBytes:  8 << 20, // 8 MiB
		RatePerSecond: 1,
		Burst:         2,
	}
}

// Client is a small HTTP GET helper shared by the adapters.
// Give each adapter its own Client so the rate limit is per site.
type Client struct {
	http    *http.Client
	cfg     ClientConfig
	limiter *rate.Limiter
}

// NewClient builds a Client. Zero fields in cfg fall back to the defaults.
func NewClient(cfg ClientConfig) *Client {
	def := DefaultClientConfig()
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = def.MaxBodyBytes
	}

	c := &Client{
		http: &http.Client{Timeout: cfg.Timeout},
		cfg:  cfg,
	}
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}
	return c
}

// Get fetches url and returns the body. Non-2xx responses become *HTTPError.
// Bodies larger than MaxBodyBytes are an error rather than silently truncated,
// since a truncated HTML page or JSON document would not parse anyway.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: url}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	if int64(len(body)) > c.cfg.MaxBodyBytes {
		return nil, fmt.Errorf("response from %s exceeds %d bytes", url, c.cfg.MaxBodyBytes)
	}
	return body, nil
}
