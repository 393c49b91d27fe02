package stats

import (
	"encoding/json"
	"strings"
	"testing"

	"mohaa-portal/internal/statsapi"
)

func TestKD(t *testing.T) {
	tests := []struct {
		kills, deaths int64
		want          float64
	}{
		{0, 0, 0},
		{15, 0, 15},
		{10, 4, 2.5},
		{1, 3, 0.33},
		{2, 3, 0.67},
	}
	for _, tt := range tests {
		if got := KD(tt.kills, tt.deaths); got != tt.want {
			t.Errorf("KD(%d, %d) = %v, want %v", tt.kills, tt.deaths, got, tt.want)
		}
	}
}

func TestKDClass(t *testing.T) {
	tests := map[float64]string{
		3.1:  "stat-good",
		2:    "stat-good",
		1.99: "stat-warn",
		1:    "stat-warn",
		0.5:  "stat-bad",
	}
	for kd, want := range tests {
		if got := KDClass(kd); got != want {
			t.Errorf("KDClass(%v) = %q, want %q", kd, got, want)
		}
	}
}

func TestPercentages(t *testing.T) {
	if got := Accuracy(1, 3); got != 33.3 {
		t.Errorf("Accuracy(1,3) = %v", got)
	}
	if got := Accuracy(5, 0); got != 0 {
		t.Errorf("Accuracy with no shots = %v, want 0", got)
	}
	if got := HeadshotPercent(25, 100); got != 25 {
		t.Errorf("HeadshotPercent = %v", got)
	}
	if got := WinRate(2, 3); got != 66.7 {
		t.Errorf("WinRate(2,3) = %v", got)
	}
	if got := PerMinute(30, 600); got != 3 {
		t.Errorf("PerMinute(30, 600s) = %v", got)
	}
}

func TestFormatting(t *testing.T) {
	tests := []struct {
		name, got, want string
	}{
		{"number", Number(1234567), "1,234,567"},
		{"fixed", Fixed(2, 2), "2.00"},
		{"percent", Percent(12.345), "12.3%"},
		{"compact thousands", Compact(1500), "1.5K"},
		{"compact millions", Compact(2_000_000), "2M"},
		{"compact small", Compact(999), "999"},
		{"duration hours", Duration(3900), "1h 05m"},
		{"duration minutes", Duration(750), "12m 30s"},
		{"duration seconds", Duration(45), "45s"},
		{"duration days", Duration(90000), "1d 01h"},
		{"duration zero", Duration(0), "0s"},
		{"ordinal", Ordinal(22), "22nd"},
		{"default blank", Default("  ", "Unknown"), "Unknown"},
		{"default set", Default("Sgt", "Unknown"), "Sgt"},
		{"map label", MapLabel("obj/obj_team2"), "obj_team2"},
		{"strip colors", StripColors("^1Red^7Baron"), "RedBaron"},
		{"strip trailing caret", StripColors("abc^"), "abc^"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestPageIndex(t *testing.T) {
	p := PageIndex("/stats?sa=matches", 0, 10, 25)
	if p.HasPages() {
		t.Fatalf("single page should not render an index: %+v", p)
	}

	p = PageIndex("/stats?sa=matches", 130, 250, 25)
	if p.Start != 125 || p.Current != 6 || p.NumPages != 10 {
		t.Fatalf("unexpected page state: start=%d current=%d pages=%d", p.Start, p.Current, p.NumPages)
	}

	var numbers []int
	gaps := 0
	for _, l := range p.Links {
		if l.Gap {
			gaps++
			continue
		}
		numbers = append(numbers, l.Number)
	}
	want := []int{1, 4, 5, 6, 7, 8, 10}
	if len(numbers) != len(want) {
		t.Fatalf("page numbers = %v, want %v", numbers, want)
	}
	for i := range want {
		if numbers[i] != want[i] {
			t.Fatalf("page numbers = %v, want %v", numbers, want)
		}
	}
	if gaps != 2 {
		t.Errorf("gaps = %d, want 2", gaps)
	}
	if p.Prev == nil || p.Prev.Start != 100 {
		t.Errorf("prev = %+v, want start 100", p.Prev)
	}
	if p.Next == nil || !strings.Contains(p.Next.URL, "start=150") {
		t.Errorf("next = %+v, want start=150", p.Next)
	}
	if !strings.Contains(p.Links[0].URL, "sa=matches") || strings.Contains(p.Links[0].URL, "start=") {
		t.Errorf("first page url = %q, want sa kept and no start", p.Links[0].URL)
	}
}

func TestNormalizeStart(t *testing.T) {
	tests := []struct {
		start, total, perPage, want int
	}{
		{-5, 100, 25, 0},
		{30, 100, 25, 25},
		{500, 100, 25, 75},
		{10, 0, 25, 0},
	}
	for _, tt := range tests {
		if got := NormalizeStart(tt.start, tt.total, tt.perPage); got != tt.want {
			t.Errorf("NormalizeStart(%d,%d,%d) = %d, want %d", tt.start, tt.total, tt.perPage, got, tt.want)
		}
	}
}

func TestSortAndRank(t *testing.T) {
	entries := []statsapi.LeaderboardEntry{
		{PlayerName: "charlie", Kills: 10},
		{PlayerName: "Alpha", Kills: 20},
		{PlayerName: "bravo", Kills: 10},
		{PlayerName: "delta", Kills: 5},
	}
	SortEntries(entries, "kills")
	AssignRanks(entries, "kills", 25)

	wantNames := []string{"Alpha", "bravo", "charlie", "delta"}
	wantRanks := []int{26, 27, 27, 29}
	for i := range entries {
		if entries[i].PlayerName != wantNames[i] || entries[i].Rank != wantRanks[i] {
			t.Errorf("entry %d = %s/#%d, want %s/#%d", i, entries[i].PlayerName, entries[i].Rank, wantNames[i], wantRanks[i])
		}
	}
}

func TestValueFallsBackToServerValue(t *testing.T) {
	e := statsapi.LeaderboardEntry{Kills: 9, Deaths: 0, Value: 42}
	if got := Value(e, "kd"); got != 9 {
		t.Errorf("kd value = %v, want 9", got)
	}
	if got := Value(e, "telefrags"); got != 42 {
		t.Errorf("telefrags value = %v, want 42", got)
	}
}

func TestLookupStatAndGroups(t *testing.T) {
	if d, ok := LookupStat("KD"); !ok || d.Label != "K/D Ratio" {
		t.Errorf("LookupStat(KD) = %+v, %v", d, ok)
	}
	if d, ok := LookupStat("bogus"); ok || d.Key != "kills" {
		t.Errorf("LookupStat(bogus) = %+v, %v; want kills fallback", d, ok)
	}

	groups := GroupStats(Stats())
	if groups[0].Category != "Combat" {
		t.Errorf("first group = %q, want Combat", groups[0].Category)
	}
	total := 0
	for _, g := range groups {
		total += len(g.Stats)
	}
	if total != len(Stats()) {
		t.Errorf("grouped %d stats, catalogue has %d", total, len(Stats()))
	}
}

func TestRankIcon(t *testing.T) {
	tests := map[int64]string{
		0:      "🎖️",
		99:     "🎖️",
		100:    "🥉",
		1000:   "🥈",
		5000:   "🥇",
		10000:  "💎",
		50000:  "🏆",
		250000: "👑",
	}
	for kills, want := range tests {
		if got := RankIcon(kills); got != want {
			t.Errorf("RankIcon(%d) = %s, want %s", kills, got, want)
		}
	}
}

func TestChartOptions(t *testing.T) {
	c := Chart{Kind: ChartDonut, Labels: []string{"Allies", "Axis"}, Series: []Series{{Data: []float64{3, 5}}}}
	var opts map[string]any
	if err := json.Unmarshal([]byte(c.JSON()), &opts); err != nil {
		t.Fatalf("chart json invalid: %v", err)
	}
	if series, ok := opts["series"].([]any); !ok || len(series) != 2 {
		t.Errorf("donut series = %v, want flat list of 2", opts["series"])
	}

	c = Chart{Kind: ChartLine, Labels: []string{"a"}}
	opts = c.Options()
	if s := opts["series"].([]map[string]any); len(s) != 0 {
		t.Errorf("empty line chart series = %v", s)
	}

	h := HourlyHeatmap([7][24]float64{})
	if len(h.Series) != 7 || h.Series[0].Name != "Sat" || h.Series[6].Points[9].X != "09" {
		t.Errorf("heatmap layout unexpected: %+v", h.Series[0].Name)
	}
}
