package statsapi

import (
	"context"
	"net/url"
	"strconv"
)

func playerPath(guid string, sub string) string {
	p := "/stats/player/" + pathEscape(guid)
	if sub != "" {
		p += "/" + sub
	}
	return p
}

func (c *Client) GetPlayerStats(ctx context.Context, guid string) (*PlayerStats, error) {
	var out struct {
		Player *PlayerStats `json:"player"`
		PlayerStats
	}
	if err := c.get(ctx, playerPath(guid, ""), nil, c.ttl, &out); err != nil {
		return nil, err
	}
	// the backend wraps the record in {"player": ...} on newer builds
	if out.Player != nil {
		return out.Player, nil
	}
	return &out.PlayerStats, nil
}

// GetPlayerDeepStats returns the nested combat/movement/stance breakdown.
func (c *Client) GetPlayerDeepStats(ctx context.Context, guid string) (Object, error) {
	return c.playerObject(ctx, guid, "deep", nil)
}

func (c *Client) GetPlayerWeapons(ctx context.Context, guid string) ([]WeaponStats, error) {
	var out list[WeaponStats]
	if err := c.get(ctx, playerPath(guid, "weapons"), nil, c.ttl, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) GetPlayerMatches(ctx context.Context, guid string, limit, offset int) ([]MatchSummary, error) {
	var out list[MatchSummary]
	if err := c.get(ctx, playerPath(guid, "matches"), limitOffset(limit, offset), c.ttl, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) GetPlayerMaps(ctx context.Context, guid string) ([]MapStats, error) {
	var out list[MapStats]
	if err := c.get(ctx, playerPath(guid, "maps"), nil, c.ttl, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) GetPlayerGametypes(ctx context.Context, guid string) ([]GametypeStats, error) {
	var out list[GametypeStats]
	if err := c.get(ctx, playerPath(guid, "gametypes"), nil, c.ttl, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// GetPlayerPerformance returns per-day performance points for the last days.
func (c *Client) GetPlayerPerformance(ctx context.Context, guid string, days int) ([]Object, error) {
	var out list[Object]
	q := url.Values{"days": {strconv.Itoa(days)}}
	if err := c.get(ctx, playerPath(guid, "performance"), q, c.ttl, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) GetPlayerPlaystyle(ctx context.Context, guid string) (Object, error) {
	return c.playerObject(ctx, guid, "playstyle", nil)
}

func (c *Client) GetPlayerPeakPerformance(ctx context.Context, guid string) (Object, error) {
	return c.playerObject(ctx, guid, "peak-performance", nil)
}

func (c *Client) GetPlayerCombos(ctx context.Context, guid string) (Object, error) {
	return c.playerObject(ctx, guid, "combos", nil)
}

// GetPlayerDrilldown breaks a stat down along a dimension (weapon, map,
// time_of_day, day_of_week, server).
func (c *Client) GetPlayerDrilldown(ctx context.Context, guid, stat, dimension string) (Object, error) {
	q := url.Values{"stat": {stat}}
	if dimension != "" {
		q.Set("dimensions", dimension)
	}
	return c.playerObject(ctx, guid, "drilldown", q)
}

func (c *Client) GetPlayerVehicles(ctx context.Context, guid string) (Object, error) {
	return c.playerObject(ctx, guid, "vehicles", nil)
}

func (c *Client) GetPlayerGameFlow(ctx context.Context, guid string) (Object, error) {
	return c.playerObject(ctx, guid, "game-flow", nil)
}

func (c *Client) GetPlayerWorld(ctx context.Context, guid string) (Object, error) {
	return c.playerObject(ctx, guid, "world", nil)
}

func (c *Client) GetPlayerBots(ctx context.Context, guid string) (Object, error) {
	return c.playerObject(ctx, guid, "bots", nil)
}

// GetPlayerWarRoom returns the combined dashboard payload for a player.
func (c *Client) GetPlayerWarRoom(ctx context.Context, guid string) (Object, error) {
	return c.playerObject(ctx, guid, "war-room", nil)
}

func (c *Client) playerObject(ctx context.Context, guid, sub string, q url.Values) (Object, error) {
	var out Object
	if err := c.get(ctx, playerPath(guid, sub), q, c.ttl, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = Object{}
	}
	return out, nil
}

func (c *Client) GetPlayerAchievements(ctx context.Context, guid string) ([]PlayerAchievement, error) {
	var out list[PlayerAchievement]
	if err := c.get(ctx, "/achievements/player/"+pathEscape(guid), nil, c.ttl, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// SearchPlayers resolves a (partial) player name to candidate players.
func (c *Client) SearchPlayers(ctx context.Context, name string, limit int) ([]LeaderboardEntry, error) {
	var out list[LeaderboardEntry]
	q := url.Values{"q": {name}, "limit": {strconv.Itoa(limit)}}
	if err := c.get(ctx, "/stats/players/search", q, c.ttl, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}
