// Package analysis derives comparison scores and performance forecasts from
// player aggregates returned by the stats API. Everything here is pure: the
// handlers fetch, this package computes.
package analysis

import (
	"math"

	"mohaa-portal/internal/stats"
	"mohaa-portal/internal/statsapi"
)

// Profile is the flat view of a player the scoring functions read.
type Profile struct {
	GUID string
	Name string

	Kills     int64
	Deaths    int64
	Headshots int64
	KD        float64
	Accuracy  float64
	WinRate   float64

	DistanceWalked   float64 // metres
	DistanceSprinted float64 // metres
	Jumps            int64

	ObjectiveCaptures int64
	ObjectiveTime     float64 // seconds

	PlaytimeMinutes  float64
	KillsPerMinute   float64
	DeathsPerMinute  float64
	ScorePerMinute   float64
	ReloadEfficiency float64
}

// ProfileFromStats flattens an API player record, filling in derived ratios
// the backend left at zero.
func ProfileFromStats(p statsapi.PlayerStats) Profile {
	minutes := p.PlayTime / 60
	prof := Profile{
		GUID:              p.PlayerID,
		Name:              stats.Default(stats.StripColors(p.PlayerName), "Unknown"),
		Kills:             p.TotalKills,
		Deaths:            p.TotalDeaths,
		Headshots:         p.TotalHeadshots,
		KD:                p.KDRatio,
		Accuracy:          p.Accuracy,
		WinRate:           p.WinRate,
		DistanceWalked:    p.TotalDistance * 1000,
		DistanceSprinted:  p.SprintDistance * 1000,
		Jumps:             p.JumpCount,
		ObjectiveCaptures: p.ObjectivesCaptured,
		ObjectiveTime:     p.ObjectiveTime,
		PlaytimeMinutes:   minutes,
		KillsPerMinute:    stats.PerMinute(p.TotalKills, p.PlayTime),
		DeathsPerMinute:   stats.PerMinute(p.TotalDeaths, p.PlayTime),
		ScorePerMinute:    stats.PerMinute(p.Score, p.PlayTime),
		ReloadEfficiency:  50,
	}
	if prof.KD == 0 {
		prof.KD = stats.KD(p.TotalKills, p.TotalDeaths)
	}
	if prof.Accuracy == 0 {
		prof.Accuracy = stats.Accuracy(p.ShotsHit, p.ShotsFired)
	}
	if prof.WinRate == 0 {
		prof.WinRate = stats.WinRate(p.MatchesWon, p.MatchesPlayed)
	}
	return prof
}

// metric returns a named raw value, used by normalization and differentials.
func (p Profile) metric(key string) float64 {
	switch key {
	case "kills":
		return float64(p.Kills)
	case "deaths":
		return float64(p.Deaths)
	case "kd_ratio":
		return p.KD
	case "headshots":
		return float64(p.Headshots)
	case "accuracy":
		return p.Accuracy
	case "win_rate":
		return p.WinRate
	case "distance_walked":
		return p.DistanceWalked
	case "distance_sprinted":
		return p.DistanceSprinted
	case "jump_count":
		return float64(p.Jumps)
	case "objective_captures":
		return float64(p.ObjectiveCaptures)
	case "objective_time":
		return p.ObjectiveTime
	case "playtime_minutes":
		return p.PlaytimeMinutes
	case "kills_per_minute":
		return p.KillsPerMinute
	case "deaths_per_minute":
		return p.DeathsPerMinute
	case "score_per_minute":
		return p.ScorePerMinute
	}
	return 0
}

func capped(v float64) float64 {
	return math.Min(100, v)
}
