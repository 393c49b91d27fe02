package handlers

import (
	"fmt"

	"mohaa-portal/internal/database"
	"mohaa-portal/internal/stats"
	"mohaa-portal/internal/statsapi"
)

func activityChart(points []statsapi.ActivityPoint, layout string) stats.Chart {
	c := stats.Chart{Kind: stats.ChartArea, Height: 250}
	players := stats.Series{Name: "Players"}
	for _, p := range points {
		c.Labels = append(c.Labels, p.Timestamp.Local().Format(layout))
		players.Data = append(players.Data, float64(p.Players))
	}
	c.Series = []stats.Series{players}
	return c
}

// snapshotChart plots locally recorded player counts.
func snapshotChart(snaps []database.Snapshot, layout string) stats.Chart {
	c := stats.Chart{Kind: stats.ChartLine, Height: 250, Colors: []string{"#2196f3"}}
	players := stats.Series{Name: "Players (local)"}
	for _, s := range snaps {
		c.Labels = append(c.Labels, s.Created.Local().Format(layout))
		players.Data = append(players.Data, float64(s.Players))
	}
	c.Series = []stats.Series{players}
	return c
}

func peakHoursChart(buckets []statsapi.HourBucket) stats.Chart {
	c := stats.Chart{Kind: stats.ChartBar, Height: 250}
	avg := stats.Series{Name: "Average"}
	peak := stats.Series{Name: "Peak"}
	for _, b := range buckets {
		c.Labels = append(c.Labels, fmt.Sprintf("%02d:00", b.Hour))
		avg.Data = append(avg.Data, stats.Round(b.AvgPlayers, 1))
		peak.Data = append(peak.Data, float64(b.MaxPlayers))
	}
	c.Series = []stats.Series{avg, peak}
	return c
}

// localPeakHours adapts locally aggregated buckets to the API shape so both
// sources share one chart.
func localPeakHours(buckets []database.HourBucket) []statsapi.HourBucket {
	out := make([]statsapi.HourBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, statsapi.HourBucket{Hour: b.Hour, AvgPlayers: b.AvgPlayers, MaxPlayers: b.MaxPlayers})
	}
	return out
}

func weaponDonut(weapons []statsapi.WeaponStats, top int) stats.Chart {
	c := stats.Chart{Kind: stats.ChartDonut, Height: 280}
	kills := stats.Series{Name: "Kills"}
	var other float64
	for i, w := range weapons {
		if i >= top {
			other += float64(w.Kills)
			continue
		}
		c.Labels = append(c.Labels, w.Weapon)
		kills.Data = append(kills.Data, float64(w.Kills))
	}
	if other > 0 {
		c.Labels = append(c.Labels, "Other")
		kills.Data = append(kills.Data, other)
	}
	c.Series = []stats.Series{kills}
	return c
}

func mapPopularityDonut(maps []statsapi.MapStats, top int) stats.Chart {
	c := stats.Chart{Kind: stats.ChartDonut, Height: 280}
	played := stats.Series{Name: "Matches"}
	for i, m := range maps {
		if i >= top {
			break
		}
		c.Labels = append(c.Labels, stats.MapLabel(m.MapName))
		played.Data = append(played.Data, float64(m.MatchesPlayed))
	}
	c.Series = []stats.Series{played}
	return c
}

// performanceChart draws the daily K/D line from performance points.
func performanceChart(points []statsapi.Object) stats.Chart {
	c := stats.Chart{Kind: stats.ChartLine, Height: 250}
	kd := stats.Series{Name: "K/D"}
	for _, p := range points {
		c.Labels = append(c.Labels, p.String("", "date"))
		kd.Data = append(kd.Data, stats.Round(pointKD(p), 2))
	}
	c.Series = []stats.Series{kd}
	return c
}

// pointKD reads a K/D from a performance point, computing it from kills and
// deaths when the backend did not include the ratio.
func pointKD(p statsapi.Object) float64 {
	if kd := p.Float("kd"); kd > 0 {
		return kd
	}
	return stats.KD(p.Int("kills"), p.Int("deaths"))
}

// heatmapPoints reshapes heatmap cells for the canvas renderer in the page
// script.
func heatmapPoints(h *statsapi.HeatmapData) []map[string]any {
	if h == nil {
		return nil
	}
	out := make([]map[string]any, 0, len(h.Points))
	for _, p := range h.Points {
		out = append(out, map[string]any{"x": p.X, "y": p.Y, "value": p.Count})
	}
	return out
}
