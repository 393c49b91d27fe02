package handlers

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"mohaa-portal/internal/stats"
	"mohaa-portal/internal/statsapi"

	"github.com/pocketbase/pocketbase/core"
)

type matchesData struct {
	Matches    []statsapi.MatchSummary
	Pagination stats.Pagination
	Map        string
	Gametype   string
}

func (h *Handlers) statsMatches(re *core.RequestEvent) error {
	data := h.matchList(re, "/stats?sa=matches")
	page := h.page(re, "stats", "matches", "Recent Matches", data)
	page.Crumb("Matches", "/stats?sa=matches")
	return h.render(re, page, "matches.html")
}

// statsBattles is the match list narrowed by map and gametype.
func (h *Handlers) statsBattles(re *core.RequestEvent) error {
	data := h.matchList(re, "/stats?sa=battles")

	data.Map = queryString(re, "map")
	data.Gametype = queryString(re, "gametype")
	if data.Map != "" || data.Gametype != "" {
		data.Matches = filterMatches(data.Matches, data.Map, data.Gametype)
	}

	page := h.page(re, "stats", "battles", "Battles", data)
	page.Crumb("Battles", "/stats?sa=battles")
	return h.render(re, page, "battles.html")
}

func (h *Handlers) matchList(re *core.RequestEvent, base string) matchesData {
	perPage := h.perPage()
	start := queryInt(re, "start", 0)
	var data matchesData
	var total int

	h.fetchAll(re, fetches{
		"matches": func(ctx context.Context) (err error) {
			data.Matches, err = h.api.GetRecentMatches(ctx, perPage, start)
			return err
		},
		"count": func(ctx context.Context) (err error) {
			total, err = h.api.GetMatchCount(ctx)
			return err
		},
	})

	if total < start+len(data.Matches) {
		total = start + len(data.Matches)
	}
	data.Pagination = stats.PageIndex(base, start, total, perPage)
	return data
}

func filterMatches(matches []statsapi.MatchSummary, mapName, gametype string) []statsapi.MatchSummary {
	var out []statsapi.MatchSummary
	for _, m := range matches {
		if mapName != "" && !strings.EqualFold(m.MapName, mapName) {
			continue
		}
		if gametype != "" && !strings.EqualFold(m.Gametype, gametype) {
			continue
		}
		out = append(out, m)
	}
	return out
}

type teamSide struct {
	Name    string
	Score   int
	Players []statsapi.MatchPlayer
	Kills   int64
	Deaths  int64
}

type matchData struct {
	Match     statsapi.MatchDetails
	Teams     []teamSide
	Advanced  statsapi.Object
	Heatmap   []map[string]any
	Weapons   stats.Chart
	IsPartial bool
}

func (h *Handlers) statsMatch(re *core.RequestEvent) error {
	return h.showMatch(re, "match", "matches")
}

// statsBattle is a match view with the advanced report.
func (h *Handlers) statsBattle(re *core.RequestEvent) error {
	return h.showMatch(re, "battle", "battles")
}

func (h *Handlers) showMatch(re *core.RequestEvent, action, listAction string) error {
	id := queryString(re, "id")
	if id == "" {
		return re.Redirect(http.StatusFound, "/stats?sa="+listAction)
	}

	var data matchData
	var details *statsapi.MatchDetails
	var heatmap *statsapi.HeatmapData
	calls := fetches{
		"details": func(ctx context.Context) (err error) {
			details, err = h.api.GetMatchDetails(ctx, id)
			return err
		},
		"heatmap": func(ctx context.Context) (err error) {
			heatmap, err = h.api.GetMatchHeatmap(ctx, id)
			return err
		},
	}
	if action == "battle" {
		calls["advanced"] = func(ctx context.Context) (err error) {
			data.Advanced, err = h.api.GetMatchAdvanced(ctx, id)
			return err
		}
	}
	failed := h.fetchAll(re, calls)

	if details == nil {
		return h.missing(re, failed["details"], "Match")
	}

	data.Match = *details
	data.Teams = splitTeams(details)
	data.Heatmap = heatmapPoints(heatmap)
	data.Weapons = weaponDonut(details.Weapons, 8)
	data.IsPartial = len(failed) > 0

	title := stats.MapLabel(details.MapName) + " - " + stats.Default(details.Gametype, "Match")
	page := h.page(re, "stats", action, title, data)
	page.Crumb(strings.ToUpper(listAction[:1])+listAction[1:], "/stats?sa="+listAction).
		Crumb(title, "/stats?sa="+action+"&id="+url.QueryEscape(id))
	return h.render(re, page, "match.html")
}

// splitTeams groups a match roster into allies, axis and everyone else,
// each sorted by score.
func splitTeams(m *statsapi.MatchDetails) []teamSide {
	order := []string{"allies", "axis", ""}
	sides := map[string]*teamSide{
		"allies": {Name: "Allies", Score: m.AlliesScore},
		"axis":   {Name: "Axis", Score: m.AxisScore},
		"":       {Name: "Players"},
	}
	for _, p := range m.Players {
		key := strings.ToLower(p.Team)
		side, ok := sides[key]
		if !ok {
			side = sides[""]
		}
		side.Players = append(side.Players, p)
		side.Kills += p.Kills
		side.Deaths += p.Deaths
	}

	var out []teamSide
	for _, key := range order {
		side := sides[key]
		if len(side.Players) == 0 {
			continue
		}
		sort.SliceStable(side.Players, func(i, j int) bool {
			if side.Players[i].Score != side.Players[j].Score {
				return side.Players[i].Score > side.Players[j].Score
			}
			return side.Players[i].Kills > side.Players[j].Kills
		})
		out = append(out, *side)
	}
	return out
}
