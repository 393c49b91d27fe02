package statsapi

import (
	"context"
	"net/url"
	"strconv"
)

func pathEscape(s string) string {
	return url.PathEscape(s)
}

func limitOffset(limit, offset int) url.Values {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	return q
}

func (c *Client) GetGlobalStats(ctx context.Context) (*GlobalStats, error) {
	var out GlobalStats
	if err := c.get(ctx, "/stats/global", nil, c.ttl, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetGlobalActivity(ctx context.Context) ([]ActivityPoint, error) {
	var out list[ActivityPoint]
	if err := c.get(ctx, "/stats/global/activity", nil, c.ttl, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// GetLeaderboard returns one page of the global board ordered by stat.
// period is one of all, week, month, year.
func (c *Client) GetLeaderboard(ctx context.Context, stat string, limit, offset int, period string) (*Leaderboard, error) {
	q := limitOffset(limit, offset)
	q.Set("stat", stat)
	q.Set("period", period)

	var out Leaderboard
	if err := c.get(ctx, "/stats/leaderboard/global", q, c.ttl, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetLeaderboardCount returns the number of ranked players for stat.
func (c *Client) GetLeaderboardCount(ctx context.Context, stat, period string) (int, error) {
	q := url.Values{}
	q.Set("stat", stat)
	q.Set("period", period)
	q.Set("limit", "1")

	var out Leaderboard
	if err := c.get(ctx, "/stats/leaderboard/global", q, c.ttl, &out); err != nil {
		return 0, err
	}
	return out.Total, nil
}

func (c *Client) GetLeaderboardCards(ctx context.Context) (*LeaderboardDashboard, error) {
	var out LeaderboardDashboard
	if err := c.get(ctx, "/stats/leaderboard/cards", nil, c.ttl, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetWeaponLeaderboard(ctx context.Context, weapon string, limit int) ([]LeaderboardEntry, error) {
	var out list[LeaderboardEntry]
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	if err := c.get(ctx, "/stats/leaderboard/weapon/"+pathEscape(weapon), q, c.ttl, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) GetMapLeaderboard(ctx context.Context, mapName string, limit int) ([]LeaderboardEntry, error) {
	var out list[LeaderboardEntry]
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	if err := c.get(ctx, "/stats/leaderboard/map/"+pathEscape(mapName), q, c.ttl, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// GetContextualLeaderboard ranks stat within one dimension value, e.g.
// kills on a single map.
func (c *Client) GetContextualLeaderboard(ctx context.Context, stat, dimension, value string, limit int) ([]BoardEntry, error) {
	q := url.Values{
		"stat":      {stat},
		"dimension": {dimension},
		"value":     {value},
		"limit":     {strconv.Itoa(limit)},
	}
	var out list[BoardEntry]
	if err := c.get(ctx, "/stats/leaderboard/contextual", q, c.ttl, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// GetComboLeaderboard ranks players by a combined metric (run_gun, clutch,
// consistency).
func (c *Client) GetComboLeaderboard(ctx context.Context, metric string, limit int) ([]BoardEntry, error) {
	q := url.Values{"metric": {metric}, "limit": {strconv.Itoa(limit)}}
	var out list[BoardEntry]
	if err := c.get(ctx, "/stats/leaderboard/combos", q, c.ttl, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// GetPeakPerformanceLeaderboard ranks K/D within a time window (morning,
// afternoon, evening, night, weekend).
func (c *Client) GetPeakPerformanceLeaderboard(ctx context.Context, dimension string, limit int) ([]BoardEntry, error) {
	q := url.Values{"dimension": {dimension}, "limit": {strconv.Itoa(limit)}}
	var out list[BoardEntry]
	if err := c.get(ctx, "/stats/leaderboard/peak", q, c.ttl, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) GetRecentMatches(ctx context.Context, limit, offset int) ([]MatchSummary, error) {
	var out list[MatchSummary]
	if err := c.get(ctx, "/stats/matches", limitOffset(limit, offset), c.ttl, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// GetMatchCount returns the total number of recorded matches.
func (c *Client) GetMatchCount(ctx context.Context) (int, error) {
	var out struct {
		Total int `json:"total"`
	}
	q := url.Values{"count_only": {"1"}}
	if err := c.get(ctx, "/stats/matches", q, c.ttl, &out); err != nil {
		return 0, err
	}
	return out.Total, nil
}

func (c *Client) GetMatchDetails(ctx context.Context, matchID string) (*MatchDetails, error) {
	var out MatchDetails
	if err := c.get(ctx, "/stats/match/"+pathEscape(matchID), nil, c.ttl, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetMatchAdvanced(ctx context.Context, matchID string) (Object, error) {
	var out Object
	if err := c.get(ctx, "/stats/match/"+pathEscape(matchID)+"/advanced", nil, c.ttl, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetMatchHeatmap(ctx context.Context, matchID string) (*HeatmapData, error) {
	var out HeatmapData
	if err := c.get(ctx, "/stats/match/"+pathEscape(matchID)+"/heatmap", nil, c.ttl, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetLiveMatches uses the short live cache tier.
func (c *Client) GetLiveMatches(ctx context.Context) ([]LiveMatch, error) {
	var out list[LiveMatch]
	if err := c.get(ctx, "/stats/live/matches", nil, c.liveTTL, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) GetMapStats(ctx context.Context) ([]MapStats, error) {
	var out list[MapStats]
	if err := c.get(ctx, "/stats/maps", nil, c.ttl, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// GetMapList returns the bare map names for pickers.
func (c *Client) GetMapList(ctx context.Context) ([]string, error) {
	var out list[string]
	if err := c.get(ctx, "/stats/maps/list", nil, c.ttl, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) GetMapPopularity(ctx context.Context) ([]MapStats, error) {
	var out list[MapStats]
	if err := c.get(ctx, "/stats/maps/popularity", nil, c.ttl, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) GetMapDetails(ctx context.Context, mapName string) (*MapDetails, error) {
	var out MapDetails
	if err := c.get(ctx, "/stats/map/"+pathEscape(mapName), nil, c.ttl, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetMapHeatmap returns kill or death positions; kind is "kills" or "deaths".
func (c *Client) GetMapHeatmap(ctx context.Context, mapName, kind string) (*HeatmapData, error) {
	var out HeatmapData
	q := url.Values{"type": {kind}}
	if err := c.get(ctx, "/stats/map/"+pathEscape(mapName)+"/heatmap", q, c.ttl, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetWeaponStats(ctx context.Context) ([]WeaponStats, error) {
	var out list[WeaponStats]
	if err := c.get(ctx, "/stats/weapons", nil, c.ttl, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) GetWeaponList(ctx context.Context) ([]string, error) {
	var out list[string]
	if err := c.get(ctx, "/stats/weapons/list", nil, c.ttl, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) GetWeaponDetails(ctx context.Context, weapon string) (*WeaponDetails, error) {
	var out WeaponDetails
	if err := c.get(ctx, "/stats/weapon/"+pathEscape(weapon), nil, c.ttl, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetGametypeStats(ctx context.Context) ([]GametypeStats, error) {
	var out list[GametypeStats]
	if err := c.get(ctx, "/stats/gametypes", nil, c.ttl, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) GetGametypeDetails(ctx context.Context, gametype string) (*GametypeDetails, error) {
	var out GametypeDetails
	if err := c.get(ctx, "/stats/gametype/"+pathEscape(gametype), nil, c.ttl, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
