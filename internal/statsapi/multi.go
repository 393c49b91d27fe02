package statsapi

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Request names one GET in a GetMultiple batch.
type Request struct {
	Path   string
	Params url.Values
	// Live selects the short cache tier.
	Live bool
}

// GetMultiple runs the batch concurrently and returns the raw JSON of every
// request that succeeded. Failed requests are absent from the result and
// never fail the batch; their errors are returned in the second map.
func (c *Client) GetMultiple(ctx context.Context, reqs map[string]Request) (map[string]json.RawMessage, map[string]error) {
	results := make(map[string]json.RawMessage, len(reqs))
	failures := make(map[string]error)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.parallel)

	for key, req := range reqs {
		g.Go(func() error {
			ttl := c.ttl
			if req.Live {
				ttl = c.liveTTL
			}

			var raw json.RawMessage
			err := c.get(gctx, req.Path, req.Params, ttl, &raw)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures[key] = err
				c.logger.Debug("Batch request failed", "component", "STATSAPI", "key", key, "path", req.Path, "error", err)
				return nil
			}
			results[key] = raw
			return nil
		})
	}

	_ = g.Wait()
	return results, failures
}

// Decode unmarshals one GetMultiple result into out, reporting whether it was present.
func Decode(results map[string]json.RawMessage, key string, out any) bool {
	raw, ok := results[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

// DecodeList is Decode for list endpoints that may be wrapped in an envelope.
func DecodeList[T any](results map[string]json.RawMessage, key string) []T {
	var l list[T]
	if !Decode(results, key, &l) {
		return nil
	}
	return l.Items
}
