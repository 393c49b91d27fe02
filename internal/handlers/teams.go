package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"sync"

	"mohaa-portal/internal/analysis"
	"mohaa-portal/internal/database"
	"mohaa-portal/internal/stats"
	"mohaa-portal/internal/statsapi"

	"github.com/pocketbase/pocketbase/core"
)

const teamRankingsLimit = 50

func (h *Handlers) teamsArea() *Dispatcher {
	return NewDispatcher("teams", "list").
		On("list", h.teamsList).
		On("view", h.teamsView).
		On("rankings", h.teamsRankings)
}

type teamsListData struct {
	Teams      []database.Team
	MyTeam     string
	Pagination stats.Pagination
}

func (h *Handlers) teamsList(re *core.RequestEvent) error {
	return h.renderTeamsList(re, http.StatusOK, "")
}

func (h *Handlers) renderTeamsList(re *core.RequestEvent, status int, errMsg string) error {
	ctx := re.Request.Context()
	perPage := h.perPage()
	start := queryInt(re, "start", 0)

	var data teamsListData
	total, err := database.CountTeams(ctx, h.app)
	if err != nil {
		h.warn(re, "Failed to count teams", err)
	}
	start = stats.NormalizeStart(start, total, perPage)
	if data.Teams, err = database.ListTeams(ctx, h.app, perPage, start); err != nil {
		h.warn(re, "Failed to list teams", err)
	}
	if re.Auth != nil {
		data.MyTeam = database.TeamOf(ctx, h.app, re.Auth.Id)
	}
	data.Pagination = stats.PageIndex("/teams?sa=list", start, total, perPage)

	page := h.page(re, "teams", "list", "Teams", data)
	page.Error = errMsg
	return h.renderStatus(re, status, page, "teams.html")
}

type rosterLine struct {
	database.TeamMember
	Stats *statsapi.PlayerStats
}

type teamViewData struct {
	Team      *database.Team
	Roster    []rosterLine
	Kills     int64
	Deaths    int64
	Strength  float64
	IsMember  bool
	IsCaptain bool
	CanJoin   bool
}

func (h *Handlers) teamsView(re *core.RequestEvent) error {
	id := queryString(re, "id")
	if id == "" {
		return re.Redirect(http.StatusFound, "/teams")
	}
	ctx := re.Request.Context()

	team, err := database.GetTeam(ctx, h.app, id)
	if errors.Is(err, database.ErrTeamNotFound) {
		return h.notFound(re, "Team")
	}
	if err != nil {
		return re.InternalServerError("Failed to load team", err)
	}

	data := teamViewData{Team: team}
	data.Roster = make([]rosterLine, len(team.Members))
	calls := fetches{}
	for i, m := range team.Members {
		data.Roster[i].TeamMember = m
		if m.PlayerGUID == "" {
			continue
		}
		calls["member:"+m.MemberID] = func(ctx context.Context) (err error) {
			data.Roster[i].Stats, err = h.api.GetPlayerStats(ctx, m.PlayerGUID)
			return err
		}
	}
	h.fetchAll(re, calls)

	var profiles []analysis.Profile
	for _, line := range data.Roster {
		if line.Stats == nil {
			continue
		}
		data.Kills += line.Stats.TotalKills
		data.Deaths += line.Stats.TotalDeaths
		profiles = append(profiles, analysis.ProfileFromStats(*line.Stats))
	}
	data.Strength = analysis.TeamStrength(profiles)

	if re.Auth != nil {
		for _, m := range team.Members {
			if m.MemberID == re.Auth.Id {
				data.IsMember = true
				data.IsCaptain = m.Role == database.RoleCaptain
			}
		}
		data.CanJoin = !data.IsMember && database.TeamOf(ctx, h.app, re.Auth.Id) == ""
	}

	page := h.page(re, "teams", "view", team.Name, data)
	page.Crumb(team.Name, "/teams?sa=view&id="+url.QueryEscape(team.ID))
	return h.render(re, page, "team.html")
}

// TeamStanding is one row of the team rankings.
type TeamStanding struct {
	Rank     int
	Team     database.Team
	Kills    int64
	Deaths   int64
	KD       float64
	Strength float64
	Linked   int
}

type teamRankingsData struct {
	Standings []TeamStanding
}

// teamsRankings rates every team from its linked members' lifetime stats.
func (h *Handlers) teamsRankings(re *core.RequestEvent) error {
	ctx := re.Request.Context()

	teams, err := database.ListTeams(ctx, h.app, teamRankingsLimit, 0)
	if err != nil {
		h.warn(re, "Failed to list teams", err)
	}

	rosters := make([][]string, len(teams))
	guids := map[string]bool{}
	for i, t := range teams {
		full, err := database.GetTeam(ctx, h.app, t.ID)
		if err != nil {
			h.warn(re, "Failed to load team roster", err, "team", t.ID)
			continue
		}
		rosters[i] = full.GUIDs()
		for _, g := range rosters[i] {
			guids[g] = true
		}
	}

	results := make(map[string]*statsapi.PlayerStats, len(guids))
	calls := fetches{}
	var mu sync.Mutex
	for g := range guids {
		calls["player:"+g] = func(ctx context.Context) error {
			p, err := h.api.GetPlayerStats(ctx, g)
			if err != nil {
				return err
			}
			mu.Lock()
			results[g] = p
			mu.Unlock()
			return nil
		}
	}
	h.fetchAll(re, calls)

	data := teamRankingsData{Standings: RankTeams(teams, rosters, results)}
	page := h.page(re, "teams", "rankings", "Team Rankings", data)
	page.Crumb("Rankings", "/teams?sa=rankings")
	return h.render(re, page, "team_rankings.html")
}

// RankTeams orders teams by strength, then kills, then member count.
// rosters[i] lists the GUIDs of teams[i].
func RankTeams(teams []database.Team, rosters [][]string, players map[string]*statsapi.PlayerStats) []TeamStanding {
	out := make([]TeamStanding, 0, len(teams))
	for i, t := range teams {
		s := TeamStanding{Team: t}
		var profiles []analysis.Profile
		if i < len(rosters) {
			for _, g := range rosters[i] {
				p := players[g]
				if p == nil {
					continue
				}
				s.Linked++
				s.Kills += p.TotalKills
				s.Deaths += p.TotalDeaths
				profiles = append(profiles, analysis.ProfileFromStats(*p))
			}
		}
		s.KD = stats.Round(stats.KD(s.Kills, s.Deaths), 2)
		s.Strength = stats.Round(analysis.TeamStrength(profiles), 0)
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Strength != b.Strength {
			return a.Strength > b.Strength
		}
		if a.Kills != b.Kills {
			return a.Kills > b.Kills
		}
		return a.Team.MemberCount > b.Team.MemberCount
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// teamsPost handles the create, join and leave forms.
func (h *Handlers) teamsPost(re *core.RequestEvent) error {
	member, err := h.requireMember(re)
	if member == nil {
		return err
	}
	ctx := re.Request.Context()

	switch re.Request.FormValue("action_type") {
	case "create":
		team, err := database.CreateTeam(ctx, h.app,
			re.Request.FormValue("name"),
			re.Request.FormValue("tag"),
			re.Request.FormValue("description"),
			member.Id,
		)
		if err != nil {
			return h.renderTeamsList(re, http.StatusBadRequest, teamErrorMessage(err))
		}
		h.logger.Info("Team created", "team", team.ID, "member", member.Id)
		return re.Redirect(http.StatusSeeOther, "/teams?sa=view&id="+url.QueryEscape(team.ID))

	case "join":
		teamID := re.Request.FormValue("team")
		if err := database.JoinTeam(ctx, h.app, teamID, member.Id); err != nil {
			return h.renderTeamsList(re, http.StatusBadRequest, teamErrorMessage(err))
		}
		return re.Redirect(http.StatusSeeOther, "/teams?sa=view&id="+url.QueryEscape(teamID))

	case "leave":
		teamID := re.Request.FormValue("team")
		if err := database.LeaveTeam(ctx, h.app, teamID, member.Id); err != nil {
			return h.renderTeamsList(re, http.StatusBadRequest, teamErrorMessage(err))
		}
		return re.Redirect(http.StatusSeeOther, "/teams")
	}

	return h.renderTeamsList(re, http.StatusBadRequest, "Unknown team action.")
}

func teamErrorMessage(err error) string {
	switch {
	case errors.Is(err, database.ErrAlreadyInTeam):
		return "You already belong to a team. Leave it first."
	case errors.Is(err, database.ErrTeamNotFound):
		return "That team no longer exists."
	case errors.Is(err, database.ErrNotTeamMember):
		return "You are not on that team."
	case errors.Is(err, database.ErrInvalidTeam):
		return fmt.Sprintf("A team needs a name, and its tag can be at most %d characters.", database.MaxTagLength)
	}
	return "The team could not be saved."
}
