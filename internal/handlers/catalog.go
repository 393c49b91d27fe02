package handlers

import (
	"context"
	"net/http"
	"net/url"
	"sort"

	"mohaa-portal/internal/stats"
	"mohaa-portal/internal/statsapi"

	"github.com/pocketbase/pocketbase/core"
)

type weaponsData struct {
	Weapons     []statsapi.WeaponStats
	Global      statsapi.GlobalStats
	Selected    string
	Details     *statsapi.WeaponDetails
	Leaderboard []statsapi.LeaderboardEntry
	Chart       stats.Chart
}

func (h *Handlers) statsWeapons(re *core.RequestEvent) error {
	data := weaponsData{Selected: queryString(re, "weapon")}
	calls := fetches{
		"weapons": func(ctx context.Context) (err error) {
			data.Weapons, err = h.api.GetWeaponStats(ctx)
			return err
		},
		"global": func(ctx context.Context) error {
			g, err := h.api.GetGlobalStats(ctx)
			if err == nil {
				data.Global = *g
			}
			return err
		},
	}
	if data.Selected != "" {
		h.addWeaponCalls(calls, &data)
	}
	h.fetchAll(re, calls)

	sortWeapons(data.Weapons)
	data.Chart = weaponDonut(data.Weapons, 10)

	page := h.page(re, "stats", "weapons", "Weapons", data)
	page.Crumb("Weapons", "/stats?sa=weapons")
	return h.render(re, page, "weapons.html")
}

func (h *Handlers) statsWeapon(re *core.RequestEvent) error {
	data := weaponsData{Selected: queryString(re, "weapon")}
	if data.Selected == "" {
		return re.Redirect(http.StatusFound, "/stats?sa=weapons")
	}

	calls := fetches{}
	h.addWeaponCalls(calls, &data)
	failed := h.fetchAll(re, calls)

	if data.Details == nil {
		return h.missing(re, failed["details"], "Weapon")
	}

	page := h.page(re, "stats", "weapon", data.Selected, data)
	page.Crumb("Weapons", "/stats?sa=weapons").
		Crumb(data.Selected, "/stats?sa=weapon&weapon="+url.QueryEscape(data.Selected))
	return h.render(re, page, "weapon.html")
}

func (h *Handlers) addWeaponCalls(calls fetches, data *weaponsData) {
	calls["details"] = func(ctx context.Context) (err error) {
		data.Details, err = h.api.GetWeaponDetails(ctx, data.Selected)
		return err
	}
	calls["leaderboard"] = func(ctx context.Context) (err error) {
		data.Leaderboard, err = h.api.GetWeaponLeaderboard(ctx, data.Selected, 25)
		return err
	}
}

func sortWeapons(weapons []statsapi.WeaponStats) {
	sort.SliceStable(weapons, func(i, j int) bool {
		return weapons[i].Kills > weapons[j].Kills
	})
}

type mapsData struct {
	Maps        []statsapi.MapStats
	Popularity  stats.Chart
	Selected    string
	Details     *statsapi.MapDetails
	Leaderboard []statsapi.LeaderboardEntry
	Kills       []map[string]any
	Deaths      []map[string]any
}

func (h *Handlers) statsMaps(re *core.RequestEvent) error {
	data := mapsData{Selected: queryString(re, "map")}
	var popularity []statsapi.MapStats

	calls := fetches{
		"maps": func(ctx context.Context) (err error) {
			data.Maps, err = h.api.GetMapStats(ctx)
			return err
		},
		"popularity": func(ctx context.Context) (err error) {
			popularity, err = h.api.GetMapPopularity(ctx)
			return err
		},
	}
	if data.Selected != "" {
		calls["details"] = func(ctx context.Context) (err error) {
			data.Details, err = h.api.GetMapDetails(ctx, data.Selected)
			return err
		}
		calls["leaderboard"] = func(ctx context.Context) (err error) {
			data.Leaderboard, err = h.api.GetMapLeaderboard(ctx, data.Selected, 25)
			return err
		}
	}
	h.fetchAll(re, calls)

	if len(popularity) == 0 {
		popularity = data.Maps
	}
	sort.SliceStable(popularity, func(i, j int) bool {
		return popularity[i].MatchesPlayed > popularity[j].MatchesPlayed
	})
	data.Popularity = mapPopularityDonut(popularity, 10)

	page := h.page(re, "stats", "maps", "Maps", data)
	page.Crumb("Maps", "/stats?sa=maps")
	return h.render(re, page, "maps.html")
}

func (h *Handlers) statsMap(re *core.RequestEvent) error {
	data := mapsData{Selected: queryString(re, "id")}
	if data.Selected == "" {
		data.Selected = queryString(re, "map")
	}
	if data.Selected == "" {
		return re.Redirect(http.StatusFound, "/stats?sa=maps")
	}

	var kills, deaths *statsapi.HeatmapData
	failed := h.fetchAll(re, fetches{
		"details": func(ctx context.Context) (err error) {
			data.Details, err = h.api.GetMapDetails(ctx, data.Selected)
			return err
		},
		"leaderboard": func(ctx context.Context) (err error) {
			data.Leaderboard, err = h.api.GetMapLeaderboard(ctx, data.Selected, 25)
			return err
		},
		"kills": func(ctx context.Context) (err error) {
			kills, err = h.api.GetMapHeatmap(ctx, data.Selected, "kills")
			return err
		},
		"deaths": func(ctx context.Context) (err error) {
			deaths, err = h.api.GetMapHeatmap(ctx, data.Selected, "deaths")
			return err
		},
	})

	if data.Details == nil {
		return h.missing(re, failed["details"], "Map")
	}
	data.Kills = heatmapPoints(kills)
	data.Deaths = heatmapPoints(deaths)

	title := stats.MapLabel(data.Selected)
	page := h.page(re, "stats", "map", title, data)
	page.Crumb("Maps", "/stats?sa=maps").
		Crumb(title, "/stats?sa=map&id="+url.QueryEscape(data.Selected))
	return h.render(re, page, "map.html")
}

type gametypesData struct {
	Gametypes []statsapi.GametypeStats
	Selected  string
	Details   *statsapi.GametypeDetails
	Chart     stats.Chart
}

func (h *Handlers) statsGametypes(re *core.RequestEvent) error {
	data := gametypesData{Selected: queryString(re, "gametype")}
	calls := fetches{
		"gametypes": func(ctx context.Context) (err error) {
			data.Gametypes, err = h.api.GetGametypeStats(ctx)
			return err
		},
	}
	if data.Selected != "" {
		calls["details"] = func(ctx context.Context) (err error) {
			data.Details, err = h.api.GetGametypeDetails(ctx, data.Selected)
			return err
		}
	}
	h.fetchAll(re, calls)

	data.Chart = gametypeChart(data.Gametypes)

	page := h.page(re, "stats", "gametypes", "Game Types", data)
	page.Crumb("Game Types", "/stats?sa=gametypes")
	return h.render(re, page, "gametypes.html")
}

func (h *Handlers) statsGametype(re *core.RequestEvent) error {
	data := gametypesData{Selected: queryString(re, "gametype")}
	if data.Selected == "" {
		data.Selected = queryString(re, "id")
	}
	if data.Selected == "" {
		return re.Redirect(http.StatusFound, "/stats?sa=gametypes")
	}

	failed := h.fetchAll(re, fetches{
		"details": func(ctx context.Context) (err error) {
			data.Details, err = h.api.GetGametypeDetails(ctx, data.Selected)
			return err
		},
	})
	if data.Details == nil {
		return h.missing(re, failed["details"], "Game type")
	}

	page := h.page(re, "stats", "gametype", data.Selected, data)
	page.Crumb("Game Types", "/stats?sa=gametypes").
		Crumb(data.Selected, "/stats?sa=gametype&gametype="+url.QueryEscape(data.Selected))
	return h.render(re, page, "gametype.html")
}

func gametypeChart(gametypes []statsapi.GametypeStats) stats.Chart {
	c := stats.Chart{Kind: stats.ChartBar, Height: 260}
	played := stats.Series{Name: "Matches"}
	for _, g := range gametypes {
		c.Labels = append(c.Labels, g.Gametype)
		played.Data = append(played.Data, float64(g.MatchesPlayed))
	}
	c.Series = []stats.Series{played}
	return c
}

// missing renders the 404 page when the backend said the entity does not
// exist, and a 502 page when it failed to answer at all.
func (h *Handlers) missing(re *core.RequestEvent, err error, what string) error {
	if err != nil && !statsapi.IsNotFound(err) {
		return h.errorPage(re, http.StatusBadGateway, "Statistics unavailable",
			"The statistics service did not answer. Please try again later.")
	}
	return h.notFound(re, what)
}
