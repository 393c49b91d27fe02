package statsapi

import (
	"context"
	"net/url"
	"strconv"
)

func serverPath(id, sub string) string {
	p := "/servers/" + pathEscape(id)
	if sub != "" {
		p += "/" + sub
	}
	return p
}

func (c *Client) GetServers(ctx context.Context) ([]Server, error) {
	var out list[Server]
	if err := c.get(ctx, "/servers", nil, c.liveTTL, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) GetServerGlobalStats(ctx context.Context) (*ServerGlobalStats, error) {
	var out ServerGlobalStats
	if err := c.get(ctx, "/servers/stats", nil, c.liveTTL, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetServerRankings(ctx context.Context, limit int) ([]Server, error) {
	var out list[Server]
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	if err := c.get(ctx, "/servers/rankings", q, c.ttl, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) GetServer(ctx context.Context, id string) (*Server, error) {
	var out Server
	if err := c.get(ctx, serverPath(id, ""), nil, c.ttl, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetServerLive(ctx context.Context, id string) (*ServerLive, error) {
	var out ServerLive
	if err := c.get(ctx, serverPath(id, "live"), nil, c.liveTTL, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetServerPlayerHistory returns player counts over the last days.
func (c *Client) GetServerPlayerHistory(ctx context.Context, id string, days int) ([]ActivityPoint, error) {
	var out list[ActivityPoint]
	q := url.Values{"days": {strconv.Itoa(days)}}
	if err := c.get(ctx, serverPath(id, "player-history"), q, c.ttl, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) GetServerPeakHours(ctx context.Context, id string, days int) ([]HourBucket, error) {
	var out list[HourBucket]
	q := url.Values{"days": {strconv.Itoa(days)}}
	if err := c.get(ctx, serverPath(id, "peak-hours"), q, c.ttl, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) GetServerTopPlayers(ctx context.Context, id string, limit int) ([]ServerLeaderboardEntry, error) {
	var out list[ServerLeaderboardEntry]
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	if err := c.get(ctx, serverPath(id, "top-players"), q, c.ttl, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) GetServerMaps(ctx context.Context, id string) ([]MapStats, error) {
	var out list[MapStats]
	if err := c.get(ctx, serverPath(id, "maps"), nil, c.ttl, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) GetServerWeapons(ctx context.Context, id string) ([]WeaponStats, error) {
	var out list[WeaponStats]
	if err := c.get(ctx, serverPath(id, "weapons"), nil, c.ttl, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) GetServerMatches(ctx context.Context, id string, limit, offset int) ([]MatchSummary, error) {
	var out list[MatchSummary]
	if err := c.get(ctx, serverPath(id, "matches"), limitOffset(limit, offset), c.ttl, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) GetServerActivityTimeline(ctx context.Context, id string, days int) ([]ActivityPoint, error) {
	var out list[ActivityPoint]
	q := url.Values{"days": {strconv.Itoa(days)}}
	if err := c.get(ctx, serverPath(id, "activity-timeline"), q, c.ttl, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}
