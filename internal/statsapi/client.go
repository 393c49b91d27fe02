package statsapi

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mohaa-portal/internal/cache"
)

const (
	apiPrefix      = "/api/v1"
	cacheKeyPrefix = "mohaa_api_"
	maxErrorBody   = 4 << 10

	// maxRetryWait bounds how long a request sleeps on Retry-After. Longer
	// waits fail straight away so a page never stalls on a throttled API.
	maxRetryWait = 2 * time.Second
)

// Client talks to the MOHAA stats backend and caches GET responses.
type Client struct {
	baseURL  string
	token    string
	http     *http.Client
	cache    cache.Cache
	ttl      time.Duration
	liveTTL  time.Duration
	logger   *slog.Logger
	parallel int
}

// New creates a client for baseURL (without the /api/v1 suffix).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/") + apiPrefix,
		http:     &http.Client{Timeout: 3 * time.Second},
		ttl:      60 * time.Second,
		liveTTL:  10 * time.Second,
		logger:   slog.Default(),
		parallel: 8,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) cacheKey(u string) string {
	sum := sha1.Sum([]byte(u))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

func (c *Client) buildURL(path string, q url.Values) string {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// get fetches path into out, serving from cache when possible.
func (c *Client) get(ctx context.Context, path string, q url.Values, ttl time.Duration, out any) error {
	u := c.buildURL(path, q)
	key := c.cacheKey(u)

	if c.cache != nil && ttl > 0 {
		if body, ok, err := c.cache.Get(ctx, key); err == nil && ok {
			if err := json.Unmarshal(body, out); err == nil {
				return nil
			}
		} else if err != nil {
			c.logger.Warn("Cache read failed", "component", "STATSAPI", "error", err)
		}
	}

	body, err := c.do(ctx, http.MethodGet, u, nil, true)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("statsapi: decode %s: %w", path, err)
	}

	if c.cache != nil && ttl > 0 {
		if err := c.cache.Set(ctx, key, body, ttl); err != nil {
			c.logger.Warn("Cache write failed", "component", "STATSAPI", "error", err)
		}
	}
	return nil
}

// post sends a JSON body; responses are never cached.
func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("statsapi: encode %s: %w", path, err)
	}
	body, err := c.do(ctx, http.MethodPost, c.buildURL(path, nil), data, true)
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("statsapi: decode %s: %w", path, err)
	}
	return nil
}

// do performs one request, retrying once on 429 with a Retry-After header.
func (c *Client) do(ctx context.Context, method, u string, payload []byte, retry bool) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("statsapi: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("X-Server-Token", c.token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("statsapi http: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusTooManyRequests && retry {
		wait, ok := retryAfter(res.Header.Get("Retry-After"), time.Now())
		if ok && wait <= maxRetryWait {
			timer := time.NewTimer(wait)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			return c.do(ctx, method, u, payload, false)
		}
		c.logger.Debug("Not retrying throttled request", "component", "STATSAPI", "url", u, "retry_after", res.Header.Get("Retry-After"))
	}

	if res.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return nil, &APIError{Status: res.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("statsapi: read body: %w", err)
	}
	return body, nil
}

// retryAfter parses a Retry-After header given in seconds or as an HTTP date.
func retryAfter(v string, now time.Time) (time.Duration, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	if sec, err := strconv.Atoi(v); err == nil {
		return time.Duration(max(sec, 0)) * time.Second, true
	}
	if at, err := http.ParseTime(v); err == nil {
		return max(at.Sub(now), 0), true
	}
	return 0, false
}

// ClearCache drops every cached response and reports how many were removed.
func (c *Client) ClearCache(ctx context.Context) (int, error) {
	if c.cache == nil {
		return 0, nil
	}
	return c.cache.DeletePrefix(ctx, cacheKeyPrefix)
}

// Ping checks that the backend answers its health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	u := strings.TrimSuffix(c.baseURL, apiPrefix) + "/health"
	_, err := c.do(ctx, http.MethodGet, u, nil, false)
	return err
}
