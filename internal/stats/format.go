package stats

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Number renders an integer with thousands separators: 1234567 -> "1,234,567".
func Number(n int64) string {
	return humanize.Comma(n)
}

// Decimal renders v with a fixed number of decimals and thousands separators.
func Decimal(v float64, decimals int) string {
	return humanize.CommafWithDigits(Round(v, decimals), decimals)
}

// Fixed renders v with exactly decimals digits after the point.
func Fixed(v float64, decimals int) string {
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// Percent renders v as "12.5%".
func Percent(v float64) string {
	return Fixed(v, 1) + "%"
}

// Compact abbreviates large counts: 1500 -> "1.5K", 2300000 -> "2.3M".
func Compact(n int64) string {
	abs := n
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1_000_000:
		return strings.TrimSuffix(Fixed(float64(n)/1_000_000, 1), ".0") + "M"
	case abs >= 1_000:
		return strings.TrimSuffix(Fixed(float64(n)/1_000, 1), ".0") + "K"
	default:
		return strconv.FormatInt(n, 10)
	}
}

// Duration renders seconds of play time: "2h 05m", "12m 30s", "45s".
func Duration(seconds float64) string {
	if seconds <= 0 {
		return "0s"
	}
	d := time.Duration(seconds * float64(time.Second))
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	switch {
	case h >= 24:
		return fmt.Sprintf("%dd %02dh", h/24, h%24)
	case h > 0:
		return fmt.Sprintf("%dh %02dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm %02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// Hours renders play time as whole hours, the unit leaderboards use.
func Hours(seconds float64) string {
	return Number(int64(seconds/3600)) + "h"
}

// Kilometers renders a distance given in metres.
func Kilometers(metres float64) string {
	return Decimal(metres/1000, 1) + " km"
}

// TimeAgo renders t relative to now, "never" for the zero time.
func TimeAgo(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}

// Date renders t in the forum's date style.
func Date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("Jan 2, 2006 15:04")
}

// Ordinal renders 1 -> "1st", 22 -> "22nd".
func Ordinal(n int) string {
	return humanize.Ordinal(n)
}

// Default returns s, or def when s is blank.
func Default(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// MapLabel strips the folder prefix of a map path: "obj/obj_team2" -> "obj_team2".
func MapLabel(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// StripColors removes Quake style ^N colour codes from a player or server name.
func StripColors(name string) string {
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		if name[i] == '^' && i+1 < len(name) && name[i+1] != '^' {
			i++
			continue
		}
		b.WriteByte(name[i])
	}
	return b.String()
}
