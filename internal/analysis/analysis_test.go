package analysis

import (
	"testing"
	"time"

	"mohaa-portal/internal/statsapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileFromStatsDerivesRatios(t *testing.T) {
	p := ProfileFromStats(statsapi.PlayerStats{
		PlayerID:      "g1",
		PlayerName:    "^1Sgt^7Rock",
		TotalKills:    10,
		ShotsFired:    200,
		ShotsHit:      50,
		PlayTime:      600,
		MatchesWon:    1,
		MatchesPlayed: 4,
	})
	assert.Equal(t, "SgtRock", p.Name)
	assert.Equal(t, 10.0, p.KD)
	assert.Equal(t, 25.0, p.Accuracy)
	assert.Equal(t, 25.0, p.WinRate)
	assert.Equal(t, 1.0, p.KillsPerMinute)
	assert.Equal(t, 50.0, p.ReloadEfficiency)
}

func TestCombatScore(t *testing.T) {
	p := Profile{Kills: 1000, KD: 2, Accuracy: 30, Headshots: 200}
	assert.Equal(t, 68.0, CombatScore(p))
}

func TestCompareRequiresTwoPlayers(t *testing.T) {
	_, err := Compare([]Profile{{Name: "solo"}})
	assert.ErrorIs(t, err, ErrTooFewPlayers)
}

func TestCompare(t *testing.T) {
	strong := Profile{GUID: "a", Name: "Strong", Kills: 300, Deaths: 5, KD: 3, Accuracy: 40, Headshots: 90, WinRate: 70}
	weak := Profile{GUID: "b", Name: "Weak", Kills: 100, Deaths: 10, KD: 1, Accuracy: 20, Headshots: 10, WinRate: 40}

	c, err := Compare([]Profile{weak, strong})
	require.NoError(t, err)

	assert.Equal(t, "Strong", c.Winner.Name)
	assert.Equal(t, 1, c.Winner.Index)
	require.Len(t, c.Rankings, 2)

	combat := c.Normalized["combat"]
	require.Len(t, combat, 2)
	assert.Equal(t, "kills", combat[0][0].Metric)
	assert.Equal(t, 0.0, combat[0][0].Normalized)
	assert.Equal(t, 100.0, combat[1][0].Normalized)

	// Neither player has objectives, so both sit in the middle.
	for _, row := range c.Normalized["objectives"] {
		for _, v := range row {
			assert.Equal(t, 50.0, v.Normalized)
		}
	}

	require.Len(t, c.Differentials, 1)
	d := c.Differentials[0]
	assert.Equal(t, "Strong", d.Name)
	for _, s := range d.Stats {
		if s.Metric == "deaths" {
			assert.Equal(t, -50.0, s.PercentDiff)
			assert.True(t, s.Better, "fewer deaths is better")
		}
		if s.Metric == "kills" {
			assert.Equal(t, 200.0, s.PercentDiff)
		}
	}

	assert.Len(t, c.Radar.Series, 2)
	assert.Len(t, c.Radar.Series[0].Data, len(Categories))
	assert.Equal(t, []string{"Weak", "Strong"}, c.Bars.Labels)
}

func TestCompareCapsAtFour(t *testing.T) {
	players := make([]Profile, 6)
	for i := range players {
		players[i] = Profile{Name: string(rune('A' + i)), Kills: int64(i)}
	}
	c, err := Compare(players)
	require.NoError(t, err)
	assert.Len(t, c.Players, MaxCompared)
}

func TestDifferentialsSkipZeroBaseline(t *testing.T) {
	diffs := Differentials([]Profile{{Name: "zero"}, {Name: "other", Kills: 5}})
	require.Len(t, diffs, 1)
	assert.Empty(t, diffs[0].Stats)
}

func TestWinChance(t *testing.T) {
	w := WinChance(Profile{KD: 1, WinRate: 50}, nil, nil)
	assert.Equal(t, 59.8, w.Probability)
	assert.Equal(t, 1100.0, w.TeamStrength)
	assert.Equal(t, 1000.0, w.OpponentStrength)
	assert.Equal(t, "Even", w.Outlook)

	w = WinChance(Profile{KD: 4, WinRate: 90}, nil, []Profile{{KD: 0.5, WinRate: 20}})
	assert.Equal(t, "Favorable", w.Outlook)

	w = WinChance(Profile{KD: 0.2, WinRate: 10}, nil, []Profile{{KD: 5, WinRate: 95}})
	assert.Equal(t, "Challenging", w.Outlook)
}

func TestOptimalPlaytime(t *testing.T) {
	w := OptimalPlaytime(History{PeakHour: 1})
	assert.Equal(t, 0, w.Start)
	assert.Equal(t, 3, w.End)

	w = OptimalPlaytime(History{PeakHour: -1})
	assert.Equal(t, DefaultPeakHour, w.PeakHour)
	assert.Equal(t, "You perform best between 18:00 and 22:00", w.Recommendation)

	w = OptimalPlaytime(History{PeakHour: 23})
	assert.Equal(t, 23, w.End)
}

func TestTimeFactorWrapsMidnight(t *testing.T) {
	assert.Equal(t, 1.0, TimeFactor(20, 20))
	assert.InDelta(t, 0.975, TimeFactor(23, 1), 1e-9)
	assert.InDelta(t, 0.85, TimeFactor(8, 20), 1e-9)
}

func TestTimeFactorMidnightPeak(t *testing.T) {
	assert.Equal(t, 1.0, TimeFactor(0, 0))
	assert.InDelta(t, 0.85, TimeFactor(12, 0), 1e-9)
	assert.InDelta(t, 0.9875, TimeFactor(23, 0), 1e-9)
	assert.Equal(t, 1.0, TimeFactor(12, -1), "unknown peak")

	noon := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	pr := &Predictor{Now: func() time.Time { return noon }}
	m := pr.PredictNextMatch(Profile{KD: 2}, History{PeakHour: 0})
	assert.Less(t, m.KD.Value, 2.0, "noon is far from a midnight peak")
}

func TestConfidenceIsDeterministic(t *testing.T) {
	assert.Equal(t, 100.0, Confidence(nil))
	assert.Equal(t, 100.0, Confidence([]float64{1, 1, 1}))
	assert.Equal(t, 90.0, Confidence([]float64{0, 2}))
	assert.Equal(t, Confidence([]float64{0.5, 1.5, 3}), Confidence([]float64{0.5, 1.5, 3}))
}

func TestForecastTrend(t *testing.T) {
	now := time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)
	pr := &Predictor{Now: func() time.Time { return now }}

	f := pr.ForecastTrend(Profile{KD: 1}, History{RecentKDs: []float64{1.2, 1.2}})
	assert.Equal(t, 20.0, f.Trend)
	assert.Equal(t, "upward", f.Direction)
	assert.Equal(t, "Strong improvement expected", f.Outlook)
	require.Len(t, f.Days, 7)
	assert.Equal(t, 1.2, f.Days[6].ProjectedKD)
	assert.Equal(t, now.AddDate(0, 0, 1), f.Days[0].Date)
	assert.Len(t, f.Chart.Series[0].Data, 7)
}

func TestPredictNextMatch(t *testing.T) {
	now := time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)
	pr := &Predictor{Now: func() time.Time { return now }}

	p := Profile{Name: "Rock", KD: 2, Accuracy: 30, KillsPerMinute: 1.5}
	m := pr.PredictNextMatch(p, History{PeakHour: 20, Map: "obj/obj_team2", MapKD: 3})

	assert.Equal(t, "Peak performance time", m.TimeOfDay.Description)
	assert.Equal(t, 50.0, m.MapFamiliarity.Impact)
	assert.Equal(t, 3.0, m.KD.Value)
	assert.Equal(t, 2.4, m.KD.Range.Min)
	assert.Equal(t, 3.6, m.KD.Range.Max)
	assert.Equal(t, 33.0, m.Accuracy.Range.Max)
	assert.Equal(t, "Stable", m.RecentTrend.Description)
	assert.Empty(t, m.Recommendations)
}

func TestRecommendations(t *testing.T) {
	recs := Recommendations(Profile{KD: 0.5, Accuracy: 10}, -10)
	require.Len(t, recs, 3)
	assert.Equal(t, "warning", recs[0].Type)
	assert.Equal(t, "tip", recs[1].Type)
	assert.Equal(t, "tip", recs[2].Type)

	recs = Recommendations(Profile{KD: 2, Accuracy: 40}, 12)
	require.Len(t, recs, 1)
	assert.Equal(t, "success", recs[0].Type)
}
