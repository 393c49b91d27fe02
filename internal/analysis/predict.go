package analysis

import (
	"fmt"
	"math"
	"time"

	"mohaa-portal/internal/stats"
)

// DefaultPeakHour is assumed when the backend has no hourly breakdown.
const DefaultPeakHour = 20

// History is the per-player context a forecast needs beyond the aggregate.
type History struct {
	// RecentKDs holds per-match K/D ratios, newest first.
	RecentKDs []float64
	// PeakHour is the hour of day (0-23) with the best results, -1 if unknown.
	PeakHour int
	// MapKD is the player's K/D on the requested map, 0 if unknown.
	MapKD float64
	Map   string
}

type Range struct {
	Min float64
	Max float64
}

type Estimate struct {
	Value      float64
	Range      Range
	Confidence float64
}

type Factor struct {
	Impact      float64
	Description string
}

type Recommendation struct {
	Type    string // warning, success, tip
	Message string
}

// NextMatch is the single-match outlook.
type NextMatch struct {
	PlayerName      string
	KD              Estimate
	Accuracy        Estimate
	KillsPerMinute  Estimate
	TimeOfDay       Factor
	RecentTrend     Factor
	MapFamiliarity  Factor
	Recommendations []Recommendation
}

type PlayWindow struct {
	PeakHour       int
	Start          int
	End            int
	Recommendation string
}

type ForecastDay struct {
	Day         int
	Date        time.Time
	ProjectedKD float64
}

type Forecast struct {
	CurrentKD float64
	Trend     float64
	Direction string
	Strength  float64
	Days      []ForecastDay
	Outlook   string
	Chart     stats.Chart
}

type WinProbability struct {
	Probability      float64
	TeamStrength     float64
	OpponentStrength float64
	Advantage        float64
	Outlook          string
}

// Predictions bundles every forecast for one player.
type Predictions struct {
	NextMatch      NextMatch
	OptimalTime    PlayWindow
	Forecast       Forecast
	WinProbability WinProbability
}

// Predictor builds forecasts relative to a clock.
type Predictor struct {
	Now func() time.Time
}

func NewPredictor() *Predictor {
	return &Predictor{Now: time.Now}
}

func (pr *Predictor) now() time.Time {
	if pr.Now == nil {
		return time.Now()
	}
	return pr.Now()
}

// All generates every prediction for p. Win probability is computed against
// an empty opposing side.
func (pr *Predictor) All(p Profile, h History) Predictions {
	return Predictions{
		NextMatch:      pr.PredictNextMatch(p, h),
		OptimalTime:    OptimalPlaytime(h),
		Forecast:       pr.ForecastTrend(p, h),
		WinProbability: WinChance(p, nil, nil),
	}
}

// Trend compares the mean of recent match K/Ds with the lifetime K/D, as a
// percentage. No recent matches means no trend.
func Trend(p Profile, h History) float64 {
	base := baseKD(p)
	if len(h.RecentKDs) == 0 || base == 0 {
		return 0
	}
	return stats.Round((mean(h.RecentKDs)-base)/base*100, 2)
}

// Variance is the population variance of recent match K/Ds.
func Variance(kds []float64) float64 {
	if len(kds) < 2 {
		return 0
	}
	m := mean(kds)
	sum := 0.0
	for _, v := range kds {
		sum += (v - m) * (v - m)
	}
	return sum / float64(len(kds))
}

// Confidence maps consistency to 0-100; a steadier player is easier to call.
func Confidence(kds []float64) float64 {
	return stats.Round(math.Max(0, math.Min(100, 100-Variance(kds)*10)), 1)
}

func (pr *Predictor) PredictNextMatch(p Profile, h History) NextMatch {
	base := baseKD(p)
	baseAcc := p.Accuracy
	if baseAcc == 0 {
		baseAcc = 20
	}
	baseKPM := p.KillsPerMinute
	if baseKPM == 0 {
		baseKPM = 1
	}

	kdMod := 1.0

	hour := pr.now().Hour()
	peak := peakHour(h)
	timeMod := TimeFactor(hour, peak)
	kdMod *= timeMod

	mapImpact := 0.0
	mapDesc := "Unknown"
	if h.Map != "" {
		mapDesc = "Known map"
		if h.MapKD > 0 {
			kdMod *= h.MapKD / base
			mapImpact = stats.Round((h.MapKD/base-1)*100, 1)
		} else {
			mapDesc = "New map"
		}
	}

	trend := Trend(p, h)
	kdMod *= 1 + trend/100

	kd := base * kdMod
	acc := math.Min(100, baseAcc)
	kpm := baseKPM
	conf := Confidence(h.RecentKDs)

	timeDesc := "Off-peak hours"
	if hour == peak {
		timeDesc = "Peak performance time"
	}

	return NextMatch{
		PlayerName: p.Name,
		KD: Estimate{
			Value:      stats.Round(kd, 2),
			Range:      Range{Min: stats.Round(kd*0.8, 2), Max: stats.Round(kd*1.2, 2)},
			Confidence: conf,
		},
		Accuracy: Estimate{
			Value:      stats.Round(acc, 1),
			Range:      Range{Min: stats.Round(acc*0.9, 1), Max: math.Min(100, stats.Round(acc*1.1, 1))},
			Confidence: conf,
		},
		KillsPerMinute: Estimate{
			Value:      stats.Round(kpm, 2),
			Range:      Range{Min: stats.Round(kpm*0.85, 2), Max: stats.Round(kpm*1.15, 2)},
			Confidence: conf,
		},
		TimeOfDay:       Factor{Impact: stats.Round((timeMod-1)*100, 1), Description: timeDesc},
		RecentTrend:     Factor{Impact: stats.Round(trend, 1), Description: trendWord(trend, "Improving", "Declining", "Stable")},
		MapFamiliarity:  Factor{Impact: mapImpact, Description: mapDesc},
		Recommendations: Recommendations(p, trend),
	}
}

// TimeFactor penalises play away from the peak hour by up to 30%, measured
// around the clock so 23:00 and 01:00 are two hours apart.
// Midnight is a valid peak; only an out-of-range peak leaves the factor at 1.
func TimeFactor(hour, peak int) float64 {
	if peak < 0 || peak > 23 {
		return 1
	}
	diff := hour - peak
	if diff < 0 {
		diff = -diff
	}
	if diff > 12 {
		diff = 24 - diff
	}
	return 1 - float64(diff)/24*0.3
}

// OptimalPlaytime is the peak hour with two hours either side, clamped to the day.
func OptimalPlaytime(h History) PlayWindow {
	peak := peakHour(h)
	start := stats.Clamp(peak-2, 0, 23)
	end := stats.Clamp(peak+2, 0, 23)
	return PlayWindow{
		PeakHour:       peak,
		Start:          start,
		End:            end,
		Recommendation: fmt.Sprintf("You perform best between %02d:00 and %02d:00", start, end),
	}
}

// ForecastTrend projects the K/D linearly over the next week.
func (pr *Predictor) ForecastTrend(p Profile, h History) Forecast {
	kd := baseKD(p)
	trend := Trend(p, h)
	today := pr.now()

	f := Forecast{
		CurrentKD: kd,
		Trend:     trend,
		Direction: trendWord(trend, "upward", "downward", "stable"),
		Strength:  math.Abs(trend),
	}
	switch {
	case trend > 5:
		f.Outlook = "Strong improvement expected"
	case trend < -5:
		f.Outlook = "Decline expected"
	default:
		f.Outlook = "Stable performance"
	}

	f.Chart = stats.Chart{Kind: stats.ChartLine, Height: 260}
	series := stats.Series{Name: "Projected K/D"}
	for day := 1; day <= 7; day++ {
		projected := stats.Round(kd+trend/100*kd*float64(day)/7, 2)
		date := today.AddDate(0, 0, day)
		f.Days = append(f.Days, ForecastDay{Day: day, Date: date, ProjectedKD: projected})
		f.Chart.Labels = append(f.Chart.Labels, date.Format("Jan 2"))
		series.Data = append(series.Data, projected)
	}
	f.Chart.Series = []stats.Series{series}
	return f
}

// TeamStrength converts K/D and win rate to an ELO-like rating averaged
// over the team. An empty team rates 1000.
func TeamStrength(team []Profile) float64 {
	if len(team) == 0 {
		return 1000
	}
	total := 0.0
	for _, p := range team {
		wr := p.WinRate
		if wr == 0 {
			wr = 50
		}
		total += 1000 + baseKD(p)*100 + (wr-50)*5
	}
	return total / float64(len(team))
}

// WinChance blends an ELO expectation for p's side with p's own win rate.
func WinChance(p Profile, teammates, opponents []Profile) WinProbability {
	team := TeamStrength(append([]Profile{p}, teammates...))
	opp := TeamStrength(opponents)
	diff := team - opp

	prob := 1 / (1 + math.Pow(10, -diff/400)) * 100
	wr := p.WinRate
	if wr == 0 {
		wr = 50
	}
	prob = prob*0.7 + wr*0.3

	outlook := "Challenging"
	switch {
	case prob > 60:
		outlook = "Favorable"
	case prob > 40:
		outlook = "Even"
	}
	return WinProbability{
		Probability:      stats.Round(prob, 1),
		TeamStrength:     math.Round(team),
		OpponentStrength: math.Round(opp),
		Advantage:        math.Round(diff),
		Outlook:          outlook,
	}
}

func Recommendations(p Profile, trend float64) []Recommendation {
	var out []Recommendation
	switch {
	case trend < -5:
		out = append(out, Recommendation{"warning", "Your performance is declining. Consider taking a short break or changing your playstyle."})
	case trend > 5:
		out = append(out, Recommendation{"success", "You're on fire! Keep up the current strategy."})
	}
	if p.Accuracy < 15 {
		out = append(out, Recommendation{"tip", "Low accuracy detected. Try burst firing instead of full auto."})
	}
	if baseKD(p) < 0.8 {
		out = append(out, Recommendation{"tip", "Focus on survival. Choose defensive positions and avoid rushing."})
	}
	return out
}

func baseKD(p Profile) float64 {
	if p.KD > 0 {
		return p.KD
	}
	return 1
}

func peakHour(h History) int {
	if h.PeakHour < 0 || h.PeakHour > 23 {
		return DefaultPeakHour
	}
	return h.PeakHour
}

func trendWord(trend float64, up, down, flat string) string {
	switch {
	case trend > 0:
		return up
	case trend < 0:
		return down
	default:
		return flat
	}
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}
