package handlers

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"mohaa-portal/internal/database"
	"mohaa-portal/internal/query"
	"mohaa-portal/internal/stats"
	"mohaa-portal/internal/statsapi"

	"github.com/pocketbase/pocketbase/core"
)

var historyPeriods = map[string]int{
	"day":   1,
	"week":  7,
	"month": 30,
	"year":  365,
}

func (h *Handlers) serversArea() *Dispatcher {
	return NewDispatcher("servers", "list").
		On("list", h.serversList).
		On("live", h.serversLive).
		On("server", h.serversServer).
		On("history", h.serversHistory).
		On("rankings", h.serversRankings)
}

// serverAddress is the host:port form used for local polling.
func serverAddress(s statsapi.Server) string {
	if _, _, err := net.SplitHostPort(s.Address); err == nil || s.Port == 0 {
		return s.Address
	}
	return net.JoinHostPort(s.Address, strconv.Itoa(s.Port))
}

type serversListData struct {
	Online   []statsapi.Server
	Offline  []statsapi.Server
	Global   statsapi.ServerGlobalStats
	Rankings []statsapi.Server
	Local    []database.GameServer
}

func (h *Handlers) serversList(re *core.RequestEvent) error {
	ctx := re.Request.Context()
	var data serversListData

	results, failed := h.api.GetMultiple(ctx, map[string]statsapi.Request{
		"servers":  {Path: "/servers", Live: true},
		"stats":    {Path: "/servers/stats", Live: true},
		"rankings": {Path: "/servers/rankings", Params: url.Values{"limit": {"10"}}},
	})
	for name, err := range failed {
		h.warn(re, "Stats API call failed", err, "call", name)
	}

	for _, s := range statsapi.DecodeList[statsapi.Server](results, "servers") {
		if s.IsOnline {
			data.Online = append(data.Online, s)
		} else {
			data.Offline = append(data.Offline, s)
		}
	}
	statsapi.Decode(results, "stats", &data.Global)
	data.Rankings = statsapi.DecodeList[statsapi.Server](results, "rankings")

	local, err := database.GetServers(ctx, h.app)
	if err != nil {
		h.warn(re, "Failed to load monitored servers", err)
	}
	data.Local = local

	page := h.page(re, "servers", "list", "Game Servers", data)
	return h.render(re, page, "servers.html")
}

type liveServer struct {
	Server statsapi.Server
	Live   *statsapi.ServerLive
}

type serversLiveData struct {
	Servers []liveServer
	Players int
}

func (h *Handlers) serversLive(re *core.RequestEvent) error {
	ctx := re.Request.Context()
	var data serversLiveData

	servers, err := h.api.GetServers(ctx)
	if err != nil {
		h.warn(re, "Failed to load servers", err)
	}

	for _, s := range servers {
		if s.IsOnline {
			data.Servers = append(data.Servers, liveServer{Server: s})
		}
	}
	calls := fetches{}
	for i := range data.Servers {
		id := data.Servers[i].Server.ID
		calls["live:"+id] = func(ctx context.Context) (err error) {
			data.Servers[i].Live, err = h.api.GetServerLive(ctx, id)
			return err
		}
	}
	h.fetchAll(re, calls)

	for _, s := range data.Servers {
		if s.Live != nil {
			data.Players += len(s.Live.Players)
		} else {
			data.Players += s.Server.CurrentPlayers
		}
	}

	page := h.page(re, "servers", "live", "Live Servers", data)
	if isFragmentRequest(re) {
		return h.renderFragment(re, page, "servers_live_fragment.html")
	}
	page.Crumb("Live", "/servers?sa=live")
	return h.render(re, page, "servers_live.html")
}

type serverData struct {
	Server        statsapi.Server
	TopPlayers    []statsapi.ServerLeaderboardEntry
	Maps          []statsapi.MapStats
	Weapons       []statsapi.WeaponStats
	Matches       []statsapi.MatchSummary
	Live          *statsapi.ServerLive
	PeakHours     stats.Chart
	PlayerHistory stats.Chart
	Local         *database.GameServer
	LocalUptime   float64
	LocalStatus   *query.Status
	LocalQueried  time.Time
}

func (h *Handlers) serversServer(re *core.RequestEvent) error {
	id := queryString(re, "id")
	if id == "" {
		return re.Redirect(http.StatusFound, "/servers")
	}

	var data serverData
	var server *statsapi.Server
	var peak []statsapi.HourBucket
	var history []statsapi.ActivityPoint

	failed := h.fetchAll(re, fetches{
		"server": func(ctx context.Context) (err error) {
			server, err = h.api.GetServer(ctx, id)
			return err
		},
		"top": func(ctx context.Context) (err error) {
			data.TopPlayers, err = h.api.GetServerTopPlayers(ctx, id, 10)
			return err
		},
		"maps": func(ctx context.Context) (err error) {
			data.Maps, err = h.api.GetServerMaps(ctx, id)
			return err
		},
		"weapons": func(ctx context.Context) (err error) {
			data.Weapons, err = h.api.GetServerWeapons(ctx, id)
			return err
		},
		"peak": func(ctx context.Context) (err error) {
			peak, err = h.api.GetServerPeakHours(ctx, id, 7)
			return err
		},
		"history": func(ctx context.Context) (err error) {
			history, err = h.api.GetServerPlayerHistory(ctx, id, 1)
			return err
		},
		"matches": func(ctx context.Context) (err error) {
			data.Matches, err = h.api.GetServerMatches(ctx, id, 10, 0)
			return err
		},
		"live": func(ctx context.Context) (err error) {
			data.Live, err = h.api.GetServerLive(ctx, id)
			return err
		},
	})

	if server == nil {
		return h.missing(re, failed["server"], "Server")
	}
	data.Server = *server
	data.PeakHours = peakHoursChart(peak)
	data.PlayerHistory = activityChart(history, "15:04")
	h.attachLocal(re, &data, 7)

	name := stats.StripColors(server.Label())
	page := h.page(re, "servers", "server", name, data)
	page.Crumb(name, "/servers?sa=server&id="+url.QueryEscape(id))
	return h.render(re, page, "server.html")
}

// attachLocal adds what this portal recorded itself about the server: the
// polled row, uptime over the last days and the latest query result.
func (h *Handlers) attachLocal(re *core.RequestEvent, data *serverData, days int) {
	ctx := re.Request.Context()
	addr := serverAddress(data.Server)

	local, err := database.GetServerByAddress(ctx, h.app, addr)
	if err == nil {
		data.Local = local
		since := time.Now().AddDate(0, 0, -days)
		if data.LocalUptime, err = database.Uptime(ctx, h.app, local.ID, since); err != nil {
			h.warn(re, "Failed to compute uptime", err, "address", addr)
		}
	}

	if h.pool != nil {
		if s, err := h.pool.GetServer(addr); err == nil {
			data.LocalStatus, data.LocalQueried = s.LastStatus()
		}
	}
}

type historyData struct {
	Period        string
	Days          int
	Periods       []string
	Server        *statsapi.Server
	Servers       []statsapi.Server
	Timeline      stats.Chart
	PlayerHistory stats.Chart
	PeakHours     stats.Chart
	LocalHistory  stats.Chart
	LocalPeak     stats.Chart
	HasLocal      bool
}

func (h *Handlers) serversHistory(re *core.RequestEvent) error {
	period := queryString(re, "period")
	days, ok := historyPeriods[period]
	if !ok {
		period, days = "week", 7
	}
	data := historyData{
		Period:  period,
		Days:    days,
		Periods: []string{"day", "week", "month", "year"},
	}

	id := queryString(re, "id")
	if id == "" {
		servers, err := h.api.GetServers(re.Request.Context())
		if err != nil {
			h.warn(re, "Failed to load servers", err)
		}
		data.Servers = servers
		page := h.page(re, "servers", "history", "Server History", data)
		page.Crumb("History", "/servers?sa=history")
		return h.render(re, page, "server_history.html")
	}

	var timeline, history []statsapi.ActivityPoint
	var peak []statsapi.HourBucket
	failed := h.fetchAll(re, fetches{
		"server": func(ctx context.Context) (err error) {
			data.Server, err = h.api.GetServer(ctx, id)
			return err
		},
		"timeline": func(ctx context.Context) (err error) {
			timeline, err = h.api.GetServerActivityTimeline(ctx, id, days)
			return err
		},
		"history": func(ctx context.Context) (err error) {
			history, err = h.api.GetServerPlayerHistory(ctx, id, days)
			return err
		},
		"peak": func(ctx context.Context) (err error) {
			peak, err = h.api.GetServerPeakHours(ctx, id, days)
			return err
		},
	})
	if data.Server == nil {
		return h.missing(re, failed["server"], "Server")
	}

	layout := "Jan 2 15:04"
	if days > 7 {
		layout = "Jan 2"
	}
	data.Timeline = activityChart(timeline, layout)
	data.PlayerHistory = activityChart(history, layout)
	data.PeakHours = peakHoursChart(peak)

	ctx := re.Request.Context()
	if local, err := database.GetServerByAddress(ctx, h.app, serverAddress(*data.Server)); err == nil {
		since := time.Now().AddDate(0, 0, -days)
		snaps, err := database.PlayerHistory(ctx, h.app, local.ID, since)
		if err != nil {
			h.warn(re, "Failed to load local history", err)
		}
		buckets, err := database.PeakHours(ctx, h.app, local.ID, since)
		if err != nil {
			h.warn(re, "Failed to load local peak hours", err)
		}
		data.HasLocal = len(snaps) > 0
		data.LocalHistory = snapshotChart(snaps, layout)
		data.LocalPeak = peakHoursChart(localPeakHours(buckets))
	}

	name := stats.StripColors(data.Server.Label())
	page := h.page(re, "servers", "history", name+" History", data)
	page.Crumb(name, "/servers?sa=server&id="+url.QueryEscape(id)).
		Crumb("History", "/servers?sa=history&id="+url.QueryEscape(id)+"&period="+period)
	return h.render(re, page, "server_history.html")
}

type rankingsData struct {
	Servers []statsapi.Server
	Global  statsapi.ServerGlobalStats
}

func (h *Handlers) serversRankings(re *core.RequestEvent) error {
	var data rankingsData

	h.fetchAll(re, fetches{
		"rankings": func(ctx context.Context) (err error) {
			data.Servers, err = h.api.GetServerRankings(ctx, 100)
			return err
		},
		"stats": func(ctx context.Context) error {
			g, err := h.api.GetServerGlobalStats(ctx)
			if err == nil {
				data.Global = *g
			}
			return err
		},
	})

	page := h.page(re, "servers", "rankings", "Server Rankings", data)
	page.Crumb("Rankings", "/servers?sa=rankings")
	return h.render(re, page, "server_rankings.html")
}
