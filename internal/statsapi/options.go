package statsapi

import (
	"log/slog"
	"net/http"
	"time"

	"mohaa-portal/internal/cache"
)

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithToken sets the X-Server-Token header value.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithCache enables response caching; ttl applies to regular endpoints and
// liveTTL to live match endpoints. A zero ttl disables that tier.
func WithCache(store cache.Cache, ttl, liveTTL time.Duration) Option {
	return func(c *Client) {
		c.cache = store
		c.ttl = ttl
		c.liveTTL = liveTTL
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithParallelism bounds concurrent requests in GetMultiple.
func WithParallelism(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.parallel = n
		}
	}
}
