package handlers

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"mohaa-portal/internal/database"
	"mohaa-portal/internal/stats"
	"mohaa-portal/internal/statsapi"

	"github.com/pocketbase/pocketbase/core"
)

const achievementsPerPage = 24

func (h *Handlers) achievementsArea() *Dispatcher {
	return NewDispatcher("achievements", "list").
		On("list", h.achievementsList).
		On("recent", h.achievementsRecent).
		On("leaderboard", h.achievementsLeaderboard).
		On("player", h.achievementsPlayer).
		On("view", h.achievementsView)
}

// AchievementFilter narrows the achievement list.
type AchievementFilter struct {
	Search   string
	Category string
	Tier     int
	// Unlocked is "", "yes" or "no"; it needs the viewer's unlocked set.
	Unlocked string
}

type AchievementGroup struct {
	Category     string
	Achievements []statsapi.Achievement
}

// FilterAchievements applies f. Hidden achievements are only listed once
// unlocked.
func FilterAchievements(all []statsapi.Achievement, f AchievementFilter, unlocked map[string]bool) []statsapi.Achievement {
	search := strings.ToLower(f.Search)
	var out []statsapi.Achievement
	for _, a := range all {
		have := unlocked[a.ID]
		if a.IsHidden && !have {
			continue
		}
		if f.Category != "" && !strings.EqualFold(a.Category, f.Category) {
			continue
		}
		if f.Tier > 0 && a.Tier != f.Tier {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(a.Name), search) &&
			!strings.Contains(strings.ToLower(a.Description), search) {
			continue
		}
		if (f.Unlocked == "yes" && !have) || (f.Unlocked == "no" && have) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// GroupAchievements groups by category in first-seen order, each group
// sorted by tier then name.
func GroupAchievements(list []statsapi.Achievement) []AchievementGroup {
	var groups []AchievementGroup
	index := map[string]int{}
	for _, a := range list {
		cat := stats.Default(a.Category, "General")
		i, ok := index[cat]
		if !ok {
			i = len(groups)
			index[cat] = i
			groups = append(groups, AchievementGroup{Category: cat})
		}
		groups[i].Achievements = append(groups[i].Achievements, a)
	}
	for _, g := range groups {
		sort.SliceStable(g.Achievements, func(i, j int) bool {
			if g.Achievements[i].Tier != g.Achievements[j].Tier {
				return g.Achievements[i].Tier < g.Achievements[j].Tier
			}
			return g.Achievements[i].Name < g.Achievements[j].Name
		})
	}
	return groups
}

type achievementsData struct {
	Filter     AchievementFilter
	Categories []string
	Groups     []AchievementGroup
	Unlocked   map[string]bool
	Total      int
	Points     int
	Pagination stats.Pagination
}

func (h *Handlers) achievementsList(re *core.RequestEvent) error {
	ctx := re.Request.Context()
	data := achievementsData{
		Filter: AchievementFilter{
			Search:   queryString(re, "search"),
			Category: queryString(re, "cat"),
			Tier:     queryInt(re, "tier", 0),
			Unlocked: oneOf(queryString(re, "unlocked"), []string{"yes", "no"}, ""),
		},
		Unlocked: map[string]bool{},
	}

	all, err := h.api.GetAchievements(ctx)
	if err != nil {
		h.warn(re, "Failed to load achievements", err)
	}

	if re.Auth != nil {
		if guid, _ := database.PrimaryGUID(ctx, h.app, re.Auth.Id); guid != "" {
			mine, err := h.api.GetPlayerAchievements(ctx, guid)
			if err != nil {
				h.warn(re, "Failed to load player achievements", err)
			}
			for _, pa := range mine {
				data.Unlocked[pa.AchievementID] = true
			}
		}
	}

	seen := map[string]bool{}
	for _, a := range all {
		if a.Category != "" && !seen[a.Category] {
			seen[a.Category] = true
			data.Categories = append(data.Categories, a.Category)
		}
		if data.Unlocked[a.ID] {
			data.Points += a.Points
		}
	}
	sort.Strings(data.Categories)

	filtered := FilterAchievements(all, data.Filter, data.Unlocked)
	data.Total = len(filtered)

	// Page links carry start; a 1-based page is accepted for old links.
	start := queryInt(re, "start", (max(queryInt(re, "page", 1), 1)-1)*achievementsPerPage)
	start = stats.NormalizeStart(start, len(filtered), achievementsPerPage)
	end := min(start+achievementsPerPage, len(filtered))
	data.Groups = GroupAchievements(filtered[start:end])
	data.Pagination = stats.PageIndex(achievementsURL(data.Filter), start, len(filtered), achievementsPerPage)

	page := h.page(re, "achievements", "list", "Achievements", data)
	return h.render(re, page, "achievements.html")
}

func achievementsURL(f AchievementFilter) string {
	q := url.Values{"sa": {"list"}}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Category != "" {
		q.Set("cat", f.Category)
	}
	if f.Tier > 0 {
		q.Set("tier", strconv.Itoa(f.Tier))
	}
	if f.Unlocked != "" {
		q.Set("unlocked", f.Unlocked)
	}
	return "/achievements?" + q.Encode()
}

type recentAchievementsData struct {
	Unlocks []statsapi.PlayerAchievement
}

func (h *Handlers) achievementsRecent(re *core.RequestEvent) error {
	unlocks, err := h.api.GetRecentAchievements(re.Request.Context(), 50)
	if err != nil {
		h.warn(re, "Failed to load recent achievements", err)
	}
	page := h.page(re, "achievements", "recent", "Recent Achievements", recentAchievementsData{Unlocks: unlocks})
	page.Crumb("Recent", "/achievements?sa=recent")
	return h.render(re, page, "achievements_recent.html")
}

type achievementLeadersData struct {
	Leaders []statsapi.AchievementLeader
}

func (h *Handlers) achievementsLeaderboard(re *core.RequestEvent) error {
	leaders, err := h.api.GetAchievementLeaderboard(re.Request.Context(), 50)
	if err != nil {
		h.warn(re, "Failed to load achievement leaderboard", err)
	}
	for i := range leaders {
		if leaders[i].Rank == 0 {
			leaders[i].Rank = i + 1
		}
	}
	page := h.page(re, "achievements", "leaderboard", "Achievement Leaders", achievementLeadersData{Leaders: leaders})
	page.Crumb("Leaderboard", "/achievements?sa=leaderboard")
	return h.render(re, page, "achievements_leaderboard.html")
}

type playerAchievementsData struct {
	GUID     string
	Name     string
	Unlocked []statsapi.PlayerAchievement
	Locked   []statsapi.Achievement
	Points   int
	Progress float64
}

func (h *Handlers) achievementsPlayer(re *core.RequestEvent) error {
	guid := h.resolveGUID(re, true)
	if guid == "" {
		return re.Redirect(http.StatusFound, "/achievements")
	}

	data := playerAchievementsData{GUID: guid}
	var all []statsapi.Achievement
	var info *statsapi.PlayerStats

	failed := h.fetchAll(re, fetches{
		"unlocked": func(ctx context.Context) (err error) {
			data.Unlocked, err = h.api.GetPlayerAchievements(ctx, guid)
			return err
		},
		"all": func(ctx context.Context) (err error) {
			all, err = h.api.GetAchievements(ctx)
			return err
		},
		"info": func(ctx context.Context) (err error) {
			info, err = h.api.GetPlayerStats(ctx, guid)
			return err
		},
	})
	if info == nil {
		return h.missing(re, failed["info"], "Player")
	}
	data.Name = stats.Default(stats.StripColors(info.PlayerName), "Unknown")

	have := map[string]bool{}
	byID := map[string]statsapi.Achievement{}
	for _, a := range all {
		byID[a.ID] = a
	}
	for i, pa := range data.Unlocked {
		have[pa.AchievementID] = true
		if pa.Achievement == nil {
			if a, ok := byID[pa.AchievementID]; ok {
				data.Unlocked[i].Achievement = &a
			}
		}
		if data.Unlocked[i].Achievement != nil {
			data.Points += data.Unlocked[i].Achievement.Points
		}
	}
	for _, a := range all {
		if !have[a.ID] && !a.IsHidden {
			data.Locked = append(data.Locked, a)
		}
	}
	if len(all) > 0 {
		data.Progress = stats.Round(float64(len(data.Unlocked))/float64(len(all))*100, 1)
	}

	page := h.page(re, "achievements", "player", data.Name+"'s Achievements", data)
	page.Crumb(data.Name, "/achievements?sa=player&guid="+url.QueryEscape(guid))
	return h.render(re, page, "achievements_player.html")
}

type achievementData struct {
	Achievement statsapi.Achievement
	Unlocked    bool
}

func (h *Handlers) achievementsView(re *core.RequestEvent) error {
	id := queryString(re, "id")
	if id == "" {
		return re.Redirect(http.StatusFound, "/achievements")
	}
	ctx := re.Request.Context()

	a, err := h.api.GetAchievement(ctx, id)
	if a == nil {
		return h.missing(re, err, "Achievement")
	}
	data := achievementData{Achievement: *a}

	if re.Auth != nil {
		if guid, _ := database.PrimaryGUID(ctx, h.app, re.Auth.Id); guid != "" {
			mine, err := h.api.GetPlayerAchievements(ctx, guid)
			if err != nil {
				h.warn(re, "Failed to load player achievements", err)
			}
			for _, pa := range mine {
				if pa.AchievementID == a.ID {
					data.Unlocked = true
				}
			}
		}
	}

	page := h.page(re, "achievements", "view", a.Name, data)
	page.Crumb(a.Name, "/achievements?sa=view&id="+url.QueryEscape(a.ID))
	return h.render(re, page, "achievement.html")
}
