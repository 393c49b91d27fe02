// Package stats holds the presentation arithmetic shared by handlers and
// templates: ratios, formatting, pagination, leaderboard ordering and chart
// payloads.
package stats

import "math"

// Round rounds v to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// KD is kills/deaths to 2 decimals; with no deaths the ratio is the kill count.
func KD(kills, deaths int64) float64 {
	if deaths == 0 {
		return float64(kills)
	}
	return Round(float64(kills)/float64(deaths), 2)
}

// KDClass maps a ratio to the css class used to colour it.
func KDClass(kd float64) string {
	switch {
	case kd >= 2:
		return "stat-good"
	case kd >= 1:
		return "stat-warn"
	default:
		return "stat-bad"
	}
}

func percent(part, whole int64) float64 {
	if whole <= 0 {
		return 0
	}
	return Round(float64(part)/float64(whole)*100, 1)
}

// Accuracy is shots hit as a percentage of shots fired.
func Accuracy(hit, fired int64) float64 {
	return percent(hit, fired)
}

// HeadshotPercent is headshot kills as a percentage of all kills.
func HeadshotPercent(headshots, kills int64) float64 {
	return percent(headshots, kills)
}

// WinRate is matches won as a percentage of matches played.
func WinRate(won, played int64) float64 {
	return percent(won, played)
}

// PerMinute converts a total over seconds of play to a per-minute rate.
func PerMinute(count int64, seconds float64) float64 {
	if seconds <= 0 {
		return 0
	}
	return Round(float64(count)/(seconds/60), 2)
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
