package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"mohaa-portal/internal/analysis"
	"mohaa-portal/internal/database"
	"mohaa-portal/internal/stats"
	"mohaa-portal/internal/statsapi"

	"github.com/pocketbase/pocketbase/core"
)

// resolveGUID finds the player a request names: an explicit guid or id, a
// name search, or a member's first linked identity. With self set the
// signed-in member is the last fallback.
func (h *Handlers) resolveGUID(re *core.RequestEvent, self bool) string {
	for _, key := range []string{"guid", "id"} {
		if g := queryString(re, key); g != "" {
			return g
		}
	}
	ctx := re.Request.Context()

	if name := queryString(re, "name"); name != "" {
		found, err := h.api.SearchPlayers(ctx, name, 1)
		if err != nil {
			h.warn(re, "Player search failed", err, "name", name)
		} else if len(found) > 0 {
			return found[0].PlayerID
		}
	}

	member := queryString(re, "u")
	if member == "" && self && re.Auth != nil {
		member = re.Auth.Id
	}
	if member == "" {
		return ""
	}
	guid, err := database.PrimaryGUID(ctx, h.app, member)
	if err != nil {
		h.warn(re, "Failed to load linked identity", err, "member", member)
	}
	return guid
}

type playerData struct {
	GUID         string
	Stats        statsapi.PlayerStats
	Deep         statsapi.Object
	Playstyle    statsapi.Object
	Weapons      []statsapi.WeaponStats
	Matches      []statsapi.MatchSummary
	Achievements []statsapi.PlayerAchievement
	Peak         statsapi.Object
	Combos       statsapi.Object
	WeaponChart  stats.Chart
	IsOwn        bool
}

func (h *Handlers) statsPlayer(re *core.RequestEvent) error {
	guid := h.resolveGUID(re, false)
	if guid == "" {
		return re.Redirect(http.StatusFound, "/stats?sa=leaderboards")
	}

	data := playerData{GUID: guid}
	var info *statsapi.PlayerStats

	failed := h.fetchAll(re, fetches{
		"info": func(ctx context.Context) (err error) {
			info, err = h.api.GetPlayerStats(ctx, guid)
			return err
		},
		"deep": func(ctx context.Context) (err error) {
			data.Deep, err = h.api.GetPlayerDeepStats(ctx, guid)
			return err
		},
		"playstyle": func(ctx context.Context) (err error) {
			data.Playstyle, err = h.api.GetPlayerPlaystyle(ctx, guid)
			return err
		},
		"weapons": func(ctx context.Context) (err error) {
			data.Weapons, err = h.api.GetPlayerWeapons(ctx, guid)
			return err
		},
		"matches": func(ctx context.Context) (err error) {
			data.Matches, err = h.api.GetPlayerMatches(ctx, guid, 10, 0)
			return err
		},
		"achievements": func(ctx context.Context) (err error) {
			data.Achievements, err = h.api.GetPlayerAchievements(ctx, guid)
			return err
		},
		"peak": func(ctx context.Context) (err error) {
			data.Peak, err = h.api.GetPlayerPeakPerformance(ctx, guid)
			return err
		},
		"combos": func(ctx context.Context) (err error) {
			data.Combos, err = h.api.GetPlayerCombos(ctx, guid)
			return err
		},
	})

	if info == nil {
		return h.missing(re, failed["info"], "Player")
	}
	data.Stats = *info

	sortWeapons(data.Weapons)
	data.WeaponChart = weaponDonut(data.Weapons, 6)

	if re.Auth != nil {
		owner, _ := database.MemberForGUID(re.Request.Context(), h.app, guid)
		data.IsOwn = owner != "" && owner == re.Auth.Id
	}

	name := stats.Default(stats.StripColors(info.PlayerName), "Unknown")
	page := h.page(re, "stats", "player", name, data)
	page.Crumb("Leaderboards", "/stats?sa=leaderboards").
		Crumb(name, "/stats?sa=player&guid="+url.QueryEscape(guid))
	return h.render(re, page, "player.html")
}

type comparisonData struct {
	Selected  []string
	Available []database.LinkedPlayer
	Missing   []string
	Result    *analysis.Comparison
}

// comparedGUIDs reads p1..p4 (or player1..player4), dropping blanks and
// duplicates.
func comparedGUIDs(re *core.RequestEvent) []string {
	var out []string
	for i := 1; i <= analysis.MaxCompared; i++ {
		n := strconv.Itoa(i)
		g := queryString(re, "p"+n)
		if g == "" {
			g = queryString(re, "player"+n)
		}
		if g != "" && !slices.Contains(out, g) {
			out = append(out, g)
		}
	}
	return out
}

func (h *Handlers) statsComparison(re *core.RequestEvent) error {
	data := comparisonData{Selected: comparedGUIDs(re)}
	profiles := make([]*analysis.Profile, len(data.Selected))

	calls := fetches{
		"available": func(ctx context.Context) (err error) {
			data.Available, err = database.LinkedPlayers(ctx, h.app, 100)
			return err
		},
	}
	for i, guid := range data.Selected {
		calls["player:"+guid] = func(ctx context.Context) error {
			p, err := h.api.GetPlayerStats(ctx, guid)
			if err != nil {
				return err
			}
			prof := analysis.ProfileFromStats(*p)
			if prof.GUID == "" {
				prof.GUID = guid
			}
			profiles[i] = &prof
			return nil
		}
	}
	h.fetchAll(re, calls)

	var compared []analysis.Profile
	for i, p := range profiles {
		if p == nil {
			data.Missing = append(data.Missing, data.Selected[i])
			continue
		}
		compared = append(compared, *p)
	}

	page := h.page(re, "stats", "comparison", "Player Comparison", &data)
	page.Crumb("Comparison", "/stats?sa=comparison")

	if len(data.Selected) > 0 {
		result, err := analysis.Compare(compared)
		switch {
		case errors.Is(err, analysis.ErrTooFewPlayers):
			page.Error = "Select at least two players to compare."
		case err != nil:
			page.Error = err.Error()
		default:
			data.Result = result
		}
	}
	return h.render(re, page, "comparison.html")
}

type predictionsData struct {
	GUID   string
	Map    string
	Maps   []statsapi.MapStats
	Result *analysis.Predictions
}

func (h *Handlers) statsPredictions(re *core.RequestEvent) error {
	data := predictionsData{
		GUID: h.resolveGUID(re, true),
		Map:  queryString(re, "map"),
	}
	page := h.page(re, "stats", "predictions", "Performance Predictions", &data)
	page.Crumb("Predictions", "/stats?sa=predictions")

	if data.GUID == "" {
		page.Error = "No player selected. Link your game identity or pick a player."
		return h.render(re, page, "predictions.html")
	}

	var info *statsapi.PlayerStats
	var performance []statsapi.Object
	var peak statsapi.Object

	failed := h.fetchAll(re, fetches{
		"info": func(ctx context.Context) (err error) {
			info, err = h.api.GetPlayerStats(ctx, data.GUID)
			return err
		},
		"performance": func(ctx context.Context) (err error) {
			performance, err = h.api.GetPlayerPerformance(ctx, data.GUID, 30)
			return err
		},
		"peak": func(ctx context.Context) (err error) {
			peak, err = h.api.GetPlayerPeakPerformance(ctx, data.GUID)
			return err
		},
		"maps": func(ctx context.Context) (err error) {
			data.Maps, err = h.api.GetPlayerMaps(ctx, data.GUID)
			return err
		},
	})

	if info == nil {
		if err := failed["info"]; err != nil && !statsapi.IsNotFound(err) {
			page.Error = "Unable to generate predictions: the statistics service did not answer."
		} else {
			page.Error = "Unable to generate predictions: player not found."
		}
		return h.render(re, page, "predictions.html")
	}

	profile := analysis.ProfileFromStats(*info)
	history := buildHistory(performance, peak, data.Maps, data.Map)
	result := h.predictor.All(profile, history)
	data.Result = &result

	page.Title = "Predictions for " + profile.Name
	return h.render(re, page, "predictions.html")
}

// buildHistory assembles the forecast inputs. Performance points arrive
// oldest first; the forecast wants the newest first.
func buildHistory(performance []statsapi.Object, peak statsapi.Object, maps []statsapi.MapStats, mapName string) analysis.History {
	h := analysis.History{PeakHour: -1, Map: mapName}

	for i := len(performance) - 1; i >= 0; i-- {
		p := performance[i]
		if p.Int("kills") == 0 && p.Int("deaths") == 0 && p.Float("kd") == 0 {
			continue
		}
		h.RecentKDs = append(h.RecentKDs, pointKD(p))
	}

	if peak != nil {
		if v := peak.String("", "best_hour"); v != "" {
			h.PeakHour = int(peak.Int("best_hour")) % 24
		}
	}

	if mapName != "" {
		for _, m := range maps {
			if strings.EqualFold(m.MapName, mapName) {
				h.MapKD = stats.KD(m.Kills, m.Deaths)
				break
			}
		}
	}
	return h
}
