package render

import (
	"fmt"
	"html/template"
	"time"

	"mohaa-portal/internal/stats"

	"github.com/spf13/cast"
)

// Funcs is the function map every page template can use. Numeric helpers
// accept any integer or float type so templates can pass API fields as-is.
func Funcs() map[string]any {
	return map[string]any{
		"number": func(v any) string {
			return stats.Number(cast.ToInt64(v))
		},
		"decimal": func(v any, decimals int) string {
			return stats.Decimal(cast.ToFloat64(v), decimals)
		},
		"fixed": func(v any, decimals int) string {
			return stats.Fixed(cast.ToFloat64(v), decimals)
		},
		"percent": func(v any) string {
			return stats.Percent(cast.ToFloat64(v))
		},
		"compact": func(v any) string {
			return stats.Compact(cast.ToInt64(v))
		},
		"duration": func(seconds any) string {
			return stats.Duration(cast.ToFloat64(seconds))
		},
		"hours": func(seconds any) string {
			return stats.Hours(cast.ToFloat64(seconds))
		},
		"km": func(metres any) string {
			return stats.Kilometers(cast.ToFloat64(metres))
		},
		"timeAgo": stats.TimeAgo,
		"date":    stats.Date,
		"ordinal": func(n any) string {
			return stats.Ordinal(cast.ToInt(n))
		},
		"kd": func(kills, deaths any) string {
			return stats.Fixed(stats.KD(cast.ToInt64(kills), cast.ToInt64(deaths)), 2)
		},
		"kdClass": func(kd any) string {
			return stats.KDClass(cast.ToFloat64(kd))
		},
		"accuracy": func(hit, fired any) string {
			return stats.Percent(stats.Accuracy(cast.ToInt64(hit), cast.ToInt64(fired)))
		},
		"rankIcon": func(kills any) string {
			return stats.RankIcon(cast.ToInt64(kills))
		},
		"rankTitle": func(kills any) string {
			return stats.RankTitle(cast.ToInt64(kills))
		},
		"medal": func(rank any) string {
			return stats.MedalClass(cast.ToInt(rank))
		},
		"statValue": func(def stats.StatDef, v any) string {
			return stats.FormatValue(def, cast.ToFloat64(v))
		},
		"statOf":      stats.Value,
		"mapLabel":    stats.MapLabel,
		"stripColors": stats.StripColors,
		"default": func(def string, v any) string {
			return stats.Default(cast.ToString(v), def)
		},
		"json": stats.ToJS,
		"add": func(a, b any) int64 {
			return cast.ToInt64(a) + cast.ToInt64(b)
		},
		"sub": func(a, b any) int64 {
			return cast.ToInt64(a) - cast.ToInt64(b)
		},
		"seq": func(n any) []int {
			out := make([]int, max(cast.ToInt(n), 0))
			for i := range out {
				out[i] = i
			}
			return out
		},
		"dict":   dict,
		"now":    time.Now,
		"safeJS": func(s string) template.JS { return template.JS(s) },
	}
}

// dict builds a map from alternating keys and values, for passing several
// values into a sub-template.
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("dict expects an even number of arguments, got %d", len(pairs))
	}
	out := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict key %v is not a string", pairs[i])
		}
		out[key] = pairs[i+1]
	}
	return out, nil
}
