package handlers

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"mohaa-portal/internal/statsapi"

	"github.com/pocketbase/pocketbase/core"
)

func (h *Handlers) tournamentsArea() *Dispatcher {
	return NewDispatcher("tournaments", "list").
		On("list", h.tournamentsList).
		On("view", h.tournamentsView)
}

type tournamentsListData struct {
	Active   []statsapi.Tournament
	Upcoming []statsapi.Tournament
	Finished []statsapi.Tournament
}

func (h *Handlers) tournamentsList(re *core.RequestEvent) error {
	all, err := h.api.GetTournaments(re.Request.Context())
	if err != nil {
		h.warn(re, "Failed to load tournaments", err)
	}

	var data tournamentsListData
	for _, t := range all {
		switch t.Status {
		case "active", "running", "in_progress":
			data.Active = append(data.Active, t)
		case "completed", "finished", "cancelled":
			data.Finished = append(data.Finished, t)
		default:
			data.Upcoming = append(data.Upcoming, t)
		}
	}

	page := h.page(re, "tournaments", "list", "Tournaments", data)
	return h.render(re, page, "tournaments.html")
}

// BracketRound is one column of a bracket.
type BracketRound struct {
	Number  int
	Name    string
	Matches []statsapi.BracketMatch
}

// GroupBracket splits matches into rounds ordered by round number, each
// round ordered by bracket position. The last round is the final.
func GroupBracket(matches []statsapi.BracketMatch) []BracketRound {
	byRound := map[int][]statsapi.BracketMatch{}
	for _, m := range matches {
		byRound[m.Round] = append(byRound[m.Round], m)
	}

	numbers := make([]int, 0, len(byRound))
	for n := range byRound {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	rounds := make([]BracketRound, 0, len(numbers))
	for i, n := range numbers {
		ms := byRound[n]
		sort.SliceStable(ms, func(a, b int) bool { return ms[a].Position < ms[b].Position })
		rounds = append(rounds, BracketRound{
			Number:  n,
			Name:    roundName(len(numbers)-i, n),
			Matches: ms,
		})
	}
	return rounds
}

// roundName labels a round by its distance from the final.
func roundName(fromEnd, number int) string {
	switch fromEnd {
	case 1:
		return "Final"
	case 2:
		return "Semi-finals"
	case 3:
		return "Quarter-finals"
	}
	return "Round " + strconv.Itoa(number)
}

type tournamentData struct {
	Tournament statsapi.TournamentDetails
	Rounds     []BracketRound
	Stats      *statsapi.TournamentStats
}

func (h *Handlers) tournamentsView(re *core.RequestEvent) error {
	id := queryString(re, "id")
	if id == "" {
		return re.Redirect(http.StatusFound, "/tournaments")
	}

	var details *statsapi.TournamentDetails
	var data tournamentData
	failed := h.fetchAll(re, fetches{
		"tournament": func(ctx context.Context) (err error) {
			details, err = h.api.GetTournament(ctx, id)
			return err
		},
		"stats": func(ctx context.Context) (err error) {
			data.Stats, err = h.api.GetTournamentStats(ctx, id)
			return err
		},
	})
	if details == nil {
		return h.missing(re, failed["tournament"], "Tournament")
	}

	data.Tournament = *details
	data.Rounds = GroupBracket(details.Matches)

	page := h.page(re, "tournaments", "view", details.Name, data)
	page.Crumb(details.Name, "/tournaments?sa=view&id="+url.QueryEscape(id))
	return h.render(re, page, "tournament.html")
}
