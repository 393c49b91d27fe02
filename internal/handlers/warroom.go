package handlers

import (
	"context"
	"net/http"
	"net/url"

	"mohaa-portal/internal/stats"
	"mohaa-portal/internal/statsapi"

	"github.com/pocketbase/pocketbase/core"
)

var (
	drilldownStats      = []string{"kd", "kills", "headshots", "accuracy", "winrate"}
	drilldownDimensions = []string{"weapon", "map", "time_of_day", "day_of_week", "server"}

	comboMetrics = []string{"clutch", "run_gun", "consistency"}
	peakWindows  = []string{"evening", "morning", "afternoon", "night", "weekend"}
)

type warRoomData struct {
	GUID       string
	Name       string
	WarRoom    statsapi.Object
	Gametypes  []statsapi.GametypeStats
	Vehicles   statsapi.Object
	GameFlow   statsapi.Object
	World      statsapi.Object
	Bots       statsapi.Object
	Drilldown  statsapi.Object
	Stat       string
	Stats      []string
	Dimension  string
	Dimensions []string
}

// statsWarRoom is the extended player dashboard: combat breakdowns by
// vehicle, game flow, world interaction and bots, plus one drilldown.
func (h *Handlers) statsWarRoom(re *core.RequestEvent) error {
	guid := h.resolveGUID(re, true)
	if guid == "" {
		return re.Redirect(http.StatusFound, "/stats?sa=leaderboards")
	}

	data := warRoomData{
		GUID:       guid,
		Stat:       oneOf(queryString(re, "stat"), drilldownStats, "kd"),
		Stats:      drilldownStats,
		Dimension:  oneOf(queryString(re, "dimension"), drilldownDimensions, "weapon"),
		Dimensions: drilldownDimensions,
	}

	failed := h.fetchAll(re, fetches{
		"warroom": func(ctx context.Context) (err error) {
			data.WarRoom, err = h.api.GetPlayerWarRoom(ctx, guid)
			return err
		},
		"gametypes": func(ctx context.Context) (err error) {
			data.Gametypes, err = h.api.GetPlayerGametypes(ctx, guid)
			return err
		},
		"vehicles": func(ctx context.Context) (err error) {
			data.Vehicles, err = h.api.GetPlayerVehicles(ctx, guid)
			return err
		},
		"gameflow": func(ctx context.Context) (err error) {
			data.GameFlow, err = h.api.GetPlayerGameFlow(ctx, guid)
			return err
		},
		"world": func(ctx context.Context) (err error) {
			data.World, err = h.api.GetPlayerWorld(ctx, guid)
			return err
		},
		"bots": func(ctx context.Context) (err error) {
			data.Bots, err = h.api.GetPlayerBots(ctx, guid)
			return err
		},
		"drilldown": func(ctx context.Context) (err error) {
			data.Drilldown, err = h.api.GetPlayerDrilldown(ctx, guid, data.Stat, data.Dimension)
			return err
		},
	})

	if data.WarRoom == nil {
		return h.missing(re, failed["warroom"], "Player")
	}

	data.Name = stats.Default(stats.StripColors(data.WarRoom.String("", "player_name")), "Unknown")
	page := h.page(re, "stats", "warroom", data.Name+" - War Room", data)
	page.Crumb("Leaderboards", "/stats?sa=leaderboards").
		Crumb(data.Name, "/stats?sa=player&guid="+url.QueryEscape(guid)).
		Crumb("War Room", "/stats?sa=warroom&guid="+url.QueryEscape(guid))
	return h.render(re, page, "warroom.html")
}

type recordsData struct {
	Metric     string
	Metrics    []string
	Window     string
	Windows    []string
	Map        string
	Maps       []string
	Combos     []statsapi.BoardEntry
	Peak       []statsapi.BoardEntry
	Contextual []statsapi.BoardEntry
}

// statsRecords shows the combo, peak-hours and per-map kill boards.
func (h *Handlers) statsRecords(re *core.RequestEvent) error {
	data := recordsData{
		Metric:  oneOf(queryString(re, "metric"), comboMetrics, comboMetrics[0]),
		Metrics: comboMetrics,
		Window:  oneOf(queryString(re, "window"), peakWindows, peakWindows[0]),
		Windows: peakWindows,
		Map:     queryString(re, "map"),
	}

	h.fetchAll(re, fetches{
		"maps": func(ctx context.Context) (err error) {
			data.Maps, err = h.api.GetMapList(ctx)
			return err
		},
		"combos": func(ctx context.Context) (err error) {
			data.Combos, err = h.api.GetComboLeaderboard(ctx, data.Metric, 10)
			return err
		},
		"peak": func(ctx context.Context) (err error) {
			data.Peak, err = h.api.GetPeakPerformanceLeaderboard(ctx, data.Window, 10)
			return err
		},
	})

	if data.Map == "" && len(data.Maps) > 0 {
		data.Map = data.Maps[0]
	}
	if data.Map != "" {
		var err error
		data.Contextual, err = h.api.GetContextualLeaderboard(re.Request.Context(), "kills", "map", data.Map, 10)
		if err != nil {
			h.warn(re, "Failed to load map leaders", err, "map", data.Map)
		}
	}

	page := h.page(re, "stats", "records", "Records", data)
	page.Crumb("Leaderboards", "/stats?sa=leaderboards").Crumb("Records", "/stats?sa=records")
	return h.render(re, page, "records.html")
}
