package handlers

import (
	"context"
	"net/url"

	"mohaa-portal/internal/stats"
	"mohaa-portal/internal/statsapi"

	"github.com/pocketbase/pocketbase/core"
)

var leaderboardPeriods = []string{"all", "week", "month", "year"}

func (h *Handlers) statsArea() *Dispatcher {
	return NewDispatcher("stats", "main").
		On("main", h.statsMain).
		On("leaderboards", h.statsLeaderboards).
		On("battles", h.statsBattles).
		On("battle", h.statsBattle).
		On("matches", h.statsMatches).
		On("match", h.statsMatch).
		On("weapons", h.statsWeapons).
		On("weapon", h.statsWeapon).
		On("maps", h.statsMaps).
		On("map", h.statsMap).
		On("gametypes", h.statsGametypes).
		On("gametype", h.statsGametype).
		On("player", h.statsPlayer).
		On("warroom", h.statsWarRoom).
		On("records", h.statsRecords).
		On("live", h.statsLive).
		On("comparison", h.statsComparison).
		On("predictions", h.statsPredictions)
}

type statsMainData struct {
	Global   statsapi.GlobalStats
	Top      []statsapi.LeaderboardEntry
	Recent   []statsapi.MatchSummary
	Live     []statsapi.LiveMatch
	Activity stats.Chart
}

func (h *Handlers) statsMain(re *core.RequestEvent) error {
	var data statsMainData
	var activity []statsapi.ActivityPoint

	h.fetchAll(re, fetches{
		"global": func(ctx context.Context) error {
			g, err := h.api.GetGlobalStats(ctx)
			if err == nil {
				data.Global = *g
			}
			return err
		},
		"leaderboard": func(ctx context.Context) error {
			board, err := h.api.GetLeaderboard(ctx, "kills", 10, 0, "all")
			if err == nil {
				data.Top = board.Players
			}
			return err
		},
		"recent": func(ctx context.Context) (err error) {
			data.Recent, err = h.api.GetRecentMatches(ctx, 5, 0)
			return err
		},
		"live": func(ctx context.Context) (err error) {
			data.Live, err = h.api.GetLiveMatches(ctx)
			return err
		},
		"activity": func(ctx context.Context) (err error) {
			activity, err = h.api.GetGlobalActivity(ctx)
			return err
		},
	})

	stats.AssignRanks(data.Top, "kills", 0)
	data.Activity = activityChart(activity, "15:04")

	page := h.page(re, "stats", "main", "Statistics", data)
	return h.render(re, page, "stats_main.html")
}

type leaderboardData struct {
	Cards      *statsapi.LeaderboardDashboard
	Stat       stats.StatDef
	Period     string
	Periods    []string
	Groups     []stats.StatGroup
	Entries    []statsapi.LeaderboardEntry
	Pagination stats.Pagination
}

func (h *Handlers) statsLeaderboards(re *core.RequestEvent) error {
	ctx := re.Request.Context()
	data := leaderboardData{
		Periods: leaderboardPeriods,
		Groups:  stats.GroupStats(stats.Stats()),
	}

	// The dashboard of cards is the landing view; picking a stat or paging
	// switches to the full table.
	if queryString(re, "stat") == "" && queryString(re, "start") == "" {
		cards, err := h.api.GetLeaderboardCards(ctx)
		if err != nil {
			h.warn(re, "Failed to load leaderboard cards", err)
			cards = &statsapi.LeaderboardDashboard{}
		}
		data.Cards = cards
		page := h.page(re, "stats", "leaderboards", "Leaderboards", data)
		page.Crumb("Leaderboards", "/stats?sa=leaderboards")
		return h.render(re, page, "leaderboard_cards.html")
	}

	data.Stat, _ = stats.LookupStat(queryString(re, "stat"))
	data.Period = oneOf(queryString(re, "period"), leaderboardPeriods, "all")
	perPage := h.perPage()
	start := queryInt(re, "start", 0)

	board, err := h.api.GetLeaderboard(ctx, data.Stat.Key, perPage, start, data.Period)
	if err != nil {
		h.warn(re, "Failed to load leaderboard", err, "stat", data.Stat.Key)
		board = &statsapi.Leaderboard{}
	}
	// Some boards omit the total; ask for the count before falling back to
	// what this page holds.
	total := board.Total
	if total == 0 && len(board.Players) > 0 {
		if total, err = h.api.GetLeaderboardCount(ctx, data.Stat.Key, data.Period); err != nil {
			h.warn(re, "Failed to count leaderboard", err, "stat", data.Stat.Key)
		}
	}
	if total == 0 {
		total = start + len(board.Players)
	}

	data.Entries = board.Players
	if len(data.Entries) > 0 && data.Entries[0].Rank == 0 {
		stats.AssignRanks(data.Entries, data.Stat.Key, start)
	}

	base := "/stats?sa=leaderboards&stat=" + url.QueryEscape(data.Stat.Key) + "&period=" + data.Period
	data.Pagination = stats.PageIndex(base, start, total, perPage)

	page := h.page(re, "stats", "leaderboards", data.Stat.Label+" Leaderboard", data)
	page.Crumb("Leaderboards", "/stats?sa=leaderboards").Crumb(data.Stat.Label, base)
	return h.render(re, page, "leaderboard.html")
}

type liveData struct {
	Matches []statsapi.LiveMatch
	Servers []statsapi.Server
}

func (h *Handlers) statsLive(re *core.RequestEvent) error {
	var data liveData

	h.fetchAll(re, fetches{
		"live": func(ctx context.Context) (err error) {
			data.Matches, err = h.api.GetLiveMatches(ctx)
			return err
		},
		"servers": func(ctx context.Context) (err error) {
			data.Servers, err = h.api.GetServers(ctx)
			return err
		},
	})

	page := h.page(re, "stats", "live", "Live Matches", data)
	if isFragmentRequest(re) {
		return h.renderFragment(re, page, "live_matches.html")
	}
	page.Crumb("Live", "/stats?sa=live")
	return h.render(re, page, "live.html")
}
