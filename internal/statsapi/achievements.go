package statsapi

import (
	"context"
	"net/url"
	"strconv"
)

func (c *Client) GetAchievements(ctx context.Context) ([]Achievement, error) {
	var out list[Achievement]
	if err := c.get(ctx, "/achievements/", nil, c.ttl, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) GetAchievement(ctx context.Context, id string) (*Achievement, error) {
	var out Achievement
	if err := c.get(ctx, "/achievements/"+pathEscape(id), nil, c.ttl, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetRecentAchievements(ctx context.Context, limit int) ([]PlayerAchievement, error) {
	var out list[PlayerAchievement]
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	if err := c.get(ctx, "/achievements/recent", q, c.liveTTL, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) GetAchievementLeaderboard(ctx context.Context, limit int) ([]AchievementLeader, error) {
	var out list[AchievementLeader]
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	if err := c.get(ctx, "/achievements/leaderboard", q, c.ttl, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}
