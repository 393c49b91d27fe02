package statsapi

import "context"

func (c *Client) GetTournaments(ctx context.Context) ([]Tournament, error) {
	var out list[Tournament]
	if err := c.get(ctx, "/tournaments/", nil, c.ttl, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) GetTournament(ctx context.Context, id string) (*TournamentDetails, error) {
	var out TournamentDetails
	if err := c.get(ctx, "/tournaments/"+pathEscape(id), nil, c.ttl, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetTournamentStats(ctx context.Context, id string) (*TournamentStats, error) {
	var out TournamentStats
	if err := c.get(ctx, "/tournaments/"+pathEscape(id)+"/stats", nil, c.ttl, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
