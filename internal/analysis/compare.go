package analysis

import (
	"errors"
	"sort"

	"mohaa-portal/internal/stats"
)

const (
	MinCompared = 2
	MaxCompared = 4
)

var ErrTooFewPlayers = errors.New("analysis: at least two players are required")

// Score categories in radar order.
var Categories = []string{"Combat", "Movement", "Tactical", "Survival", "Efficiency", "Objectives"}

// categoryMetrics lists the raw metrics normalized under each heading.
var categoryMetrics = []struct {
	Name    string
	Metrics []string
}{
	{"combat", []string{"kills", "deaths", "kd_ratio", "headshots", "accuracy"}},
	{"movement", []string{"distance_walked", "distance_sprinted", "jump_count"}},
	{"objectives", []string{"objective_captures", "objective_time"}},
	{"survival", []string{"playtime_minutes", "win_rate"}},
	{"efficiency", []string{"kills_per_minute", "deaths_per_minute", "score_per_minute"}},
}

// differentialMetrics are compared against the first player.
var differentialMetrics = []string{"kills", "deaths", "kd_ratio", "accuracy", "headshots", "win_rate"}

// lowerIsBetter marks metrics where a smaller value wins.
var lowerIsBetter = map[string]bool{"deaths": true, "deaths_per_minute": true}

func CombatScore(p Profile) float64 {
	s := capped(float64(p.Kills)/10)*0.3 +
		capped(p.KD*20)*0.3 +
		p.Accuracy*0.2 +
		capped(float64(p.Headshots)/2)*0.2
	return stats.Round(s, 2)
}

func MovementScore(p Profile) float64 {
	distance := p.DistanceWalked + p.DistanceSprinted
	return stats.Round(capped(distance/100000*50+float64(p.Jumps)/500*50), 2)
}

func TacticalScore(p Profile) float64 {
	kills := p.Kills
	if kills == 0 {
		kills = 1
	}
	hs := float64(p.Headshots) / float64(kills) * 100
	return stats.Round(capped(hs*0.6+p.ReloadEfficiency*0.4), 2)
}

func SurvivalScore(p Profile) float64 {
	return stats.Round(p.WinRate*0.6+capped(p.KD*20)*0.4, 2)
}

func EfficiencyScore(p Profile) float64 {
	return stats.Round(capped(p.KillsPerMinute*10)*0.5+capped(p.ScorePerMinute/5)*0.5, 2)
}

func ObjectiveScore(p Profile) float64 {
	return stats.Round(capped(float64(p.ObjectiveCaptures)*5)*0.6+capped(p.ObjectiveTime/600)*0.4, 2)
}

// Scores returns the six category scores in Categories order.
func Scores(p Profile) []float64 {
	return []float64{
		CombatScore(p),
		MovementScore(p),
		TacticalScore(p),
		SurvivalScore(p),
		EfficiencyScore(p),
		ObjectiveScore(p),
	}
}

var scoreWeights = []float64{0.3, 0.1, 0.2, 0.2, 0.1, 0.1}

// OverallScore is the weighted sum used to pick a winner.
func OverallScore(p Profile) float64 {
	total := 0.0
	for i, s := range Scores(p) {
		total += s * scoreWeights[i]
	}
	return stats.Round(total, 2)
}

// NormalizedValue is one player's raw metric and its 0-100 position in the group.
type NormalizedValue struct {
	Metric     string
	Raw        float64
	Normalized float64
}

type Standing struct {
	Index int
	GUID  string
	Name  string
	Score float64
}

type Differential struct {
	Metric      string
	Base        float64
	Compare     float64
	Absolute    float64
	PercentDiff float64
	Better      bool
}

// PlayerDiff holds one challenger's differentials against the first player.
type PlayerDiff struct {
	Name  string
	GUID  string
	Stats []Differential
}

// Comparison is everything the comparison page renders.
type Comparison struct {
	Players       []Profile
	Normalized    map[string][][]NormalizedValue // category -> player -> metrics
	Rankings      []Standing
	Winner        Standing
	Differentials []PlayerDiff
	Radar         stats.Chart
	Bars          stats.Chart
}

// Compare scores 2 to 4 players against each other. Extra players past the
// fourth are ignored.
func Compare(players []Profile) (*Comparison, error) {
	if len(players) < MinCompared {
		return nil, ErrTooFewPlayers
	}
	if len(players) > MaxCompared {
		players = players[:MaxCompared]
	}

	c := &Comparison{
		Players:    players,
		Normalized: Normalize(players),
	}

	for i, p := range players {
		c.Rankings = append(c.Rankings, Standing{Index: i, GUID: p.GUID, Name: p.Name, Score: OverallScore(p)})
	}
	sort.SliceStable(c.Rankings, func(i, j int) bool {
		return c.Rankings[i].Score > c.Rankings[j].Score
	})
	c.Winner = c.Rankings[0]

	c.Differentials = Differentials(players)
	c.Radar = radarChart(players)
	c.Bars = barChart(players)
	return c, nil
}

// Normalize min-max scales every metric across the group. When all players
// share a value the metric sits at 50.
func Normalize(players []Profile) map[string][][]NormalizedValue {
	out := make(map[string][][]NormalizedValue, len(categoryMetrics))
	for _, cat := range categoryMetrics {
		rows := make([][]NormalizedValue, len(players))
		for _, key := range cat.Metrics {
			lo, hi := players[0].metric(key), players[0].metric(key)
			for _, p := range players[1:] {
				v := p.metric(key)
				if v < lo {
					lo = v
				}
				if v > hi {
					hi = v
				}
			}
			span := hi - lo
			for i, p := range players {
				raw := p.metric(key)
				norm := 50.0
				if span > 0 {
					norm = (raw - lo) / span * 100
				}
				rows[i] = append(rows[i], NormalizedValue{Metric: key, Raw: raw, Normalized: stats.Round(norm, 2)})
			}
		}
		out[cat.Name] = rows
	}
	return out
}

// Differentials compares every other player with the first. Metrics where
// the first player has no value are skipped since a percentage is undefined.
func Differentials(players []Profile) []PlayerDiff {
	if len(players) < 2 {
		return nil
	}
	base := players[0]
	var out []PlayerDiff
	for _, p := range players[1:] {
		d := PlayerDiff{Name: p.Name, GUID: p.GUID}
		for _, key := range differentialMetrics {
			b, v := base.metric(key), p.metric(key)
			if b <= 0 {
				continue
			}
			better := v > b
			if lowerIsBetter[key] {
				better = v < b
			}
			d.Stats = append(d.Stats, Differential{
				Metric:      key,
				Base:        b,
				Compare:     v,
				Absolute:    stats.Round(v-b, 2),
				PercentDiff: stats.Round((v-b)/b*100, 2),
				Better:      better,
			})
		}
		out = append(out, d)
	}
	return out
}

func radarChart(players []Profile) stats.Chart {
	c := stats.Chart{Kind: stats.ChartRadar, Height: 380, Labels: Categories, YMax: 100}
	for _, p := range players {
		c.Series = append(c.Series, stats.Series{Name: p.Name, Data: Scores(p)})
	}
	return c
}

func barChart(players []Profile) stats.Chart {
	c := stats.Chart{Kind: stats.ChartBar, Height: 340}
	for _, p := range players {
		c.Labels = append(c.Labels, p.Name)
	}
	rows := []struct {
		label string
		key   string
	}{
		{"Kills", "kills"},
		{"Deaths", "deaths"},
		{"K/D", "kd_ratio"},
		{"Headshots", "headshots"},
		{"Accuracy", "accuracy"},
		{"Win Rate", "win_rate"},
	}
	for _, r := range rows {
		s := stats.Series{Name: r.label}
		for _, p := range players {
			s.Data = append(s.Data, p.metric(r.key))
		}
		c.Series = append(c.Series, s)
	}
	return c
}
