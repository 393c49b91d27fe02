package handlers

import (
	"context"
	"net/http"

	"mohaa-portal/internal/stats"

	"github.com/pocketbase/pocketbase/core"
)

// proxyEndpoint answers one /mohaaapi endpoint.
type proxyEndpoint func(ctx context.Context, re *core.RequestEvent) (any, error)

func (h *Handlers) proxyEndpoints() map[string]proxyEndpoint {
	return map[string]proxyEndpoint{
		"global-stats": func(ctx context.Context, re *core.RequestEvent) (any, error) {
			return h.api.GetGlobalStats(ctx)
		},
		"leaderboard": func(ctx context.Context, re *core.RequestEvent) (any, error) {
			stat, _ := stats.LookupStat(queryString(re, "stat"))
			limit := stats.Clamp(queryInt(re, "limit", 25), 1, 100)
			offset := queryInt(re, "offset", 0)
			period := oneOf(queryString(re, "period"), leaderboardPeriods, "all")
			return h.api.GetLeaderboard(ctx, stat.Key, limit, offset, period)
		},
		"player": func(ctx context.Context, re *core.RequestEvent) (any, error) {
			return h.api.GetPlayerStats(ctx, queryString(re, "guid"))
		},
		"matches": func(ctx context.Context, re *core.RequestEvent) (any, error) {
			limit := stats.Clamp(queryInt(re, "limit", 20), 1, 50)
			return h.api.GetRecentMatches(ctx, limit, queryInt(re, "offset", 0))
		},
		"match": func(ctx context.Context, re *core.RequestEvent) (any, error) {
			return h.api.GetMatchDetails(ctx, queryString(re, "id"))
		},
		"maps": func(ctx context.Context, re *core.RequestEvent) (any, error) {
			return h.api.GetMapStats(ctx)
		},
		"live": func(ctx context.Context, re *core.RequestEvent) (any, error) {
			return h.api.GetLiveMatches(ctx)
		},
		"drilldown": func(ctx context.Context, re *core.RequestEvent) (any, error) {
			stat := oneOf(queryString(re, "stat"), drilldownStats, "kd")
			dimension := oneOf(queryString(re, "dimension"), drilldownDimensions, "weapon")
			return h.api.GetPlayerDrilldown(ctx, queryString(re, "guid"), stat, dimension)
		},
		"map-list": func(ctx context.Context, re *core.RequestEvent) (any, error) {
			return h.api.GetMapList(ctx)
		},
		"weapon-list": func(ctx context.Context, re *core.RequestEvent) (any, error) {
			return h.api.GetWeaponList(ctx)
		},
	}
}

// apiProxy exposes a read-only subset of the stats API as JSON for page
// scripts.
func (h *Handlers) apiProxy(re *core.RequestEvent) error {
	if !h.cfg.Site.Enabled {
		return re.JSON(http.StatusServiceUnavailable, map[string]string{"error": "disabled"})
	}

	name := queryString(re, "endpoint")
	endpoint, ok := h.proxyEndpoints()[name]
	if !ok {
		return re.JSON(http.StatusBadRequest, map[string]string{"error": "unknown endpoint"})
	}

	result, err := endpoint(re.Request.Context(), re)
	if err != nil {
		h.warn(re, "API proxy request failed", err, "endpoint", name)
		return re.JSON(http.StatusInternalServerError, map[string]string{"error": "API failed"})
	}
	return re.JSON(http.StatusOK, result)
}
