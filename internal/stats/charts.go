package stats

import (
	"encoding/json"
	"html/template"
)

// ChartKind selects the ApexCharts chart type.
type ChartKind string

const (
	ChartLine    ChartKind = "line"
	ChartArea    ChartKind = "area"
	ChartBar     ChartKind = "bar"
	ChartRadar   ChartKind = "radar"
	ChartDonut   ChartKind = "donut"
	ChartHeatmap ChartKind = "heatmap"
)

// Series is one named data series.
type Series struct {
	Name string    `json:"name"`
	Data []float64 `json:"data,omitempty"`

	// Points is used by heatmaps, whose cells carry their own x label.
	Points []Point `json:"-"`
}

type Point struct {
	X string  `json:"x"`
	Y float64 `json:"y"`
}

// Chart is the subset of an ApexCharts options object the portal emits.
type Chart struct {
	Kind       ChartKind
	Height     int
	Labels     []string // x axis categories, or slice labels for donuts
	Series     []Series
	Colors     []string
	Stacked    bool
	Horizontal bool
	YMax       float64
}

var defaultColors = []string{"#4caf50", "#2196f3", "#ff9800", "#f44336", "#9c27b0", "#00bcd4"}

// Options builds the options object handed to `new ApexCharts(el, opts)`.
func (c Chart) Options() map[string]any {
	height := c.Height
	if height <= 0 {
		height = 300
	}
	colors := c.Colors
	if len(colors) == 0 {
		colors = defaultColors
	}

	opts := map[string]any{
		"chart": map[string]any{
			"type":       string(c.Kind),
			"height":     height,
			"stacked":    c.Stacked,
			"background": "transparent",
			"toolbar":    map[string]any{"show": false},
		},
		"colors": colors,
		"theme":  map[string]any{"mode": "dark"},
	}

	switch c.Kind {
	case ChartDonut:
		// Donuts take a flat series and separate labels.
		var flat []float64
		if len(c.Series) > 0 {
			flat = c.Series[0].Data
		}
		opts["series"] = nonNil(flat)
		opts["labels"] = nonNilStrings(c.Labels)
		opts["legend"] = map[string]any{"position": "bottom"}
		return opts

	case ChartHeatmap:
		series := make([]map[string]any, 0, len(c.Series))
		for _, s := range c.Series {
			pts := s.Points
			if pts == nil {
				pts = []Point{}
			}
			series = append(series, map[string]any{"name": s.Name, "data": pts})
		}
		opts["series"] = series
		opts["dataLabels"] = map[string]any{"enabled": false}
		return opts
	}

	series := make([]map[string]any, 0, len(c.Series))
	for _, s := range c.Series {
		series = append(series, map[string]any{"name": s.Name, "data": nonNil(s.Data)})
	}
	opts["series"] = series
	opts["xaxis"] = map[string]any{"categories": nonNilStrings(c.Labels)}

	switch c.Kind {
	case ChartBar:
		opts["plotOptions"] = map[string]any{"bar": map[string]any{"horizontal": c.Horizontal, "borderRadius": 3}}
	case ChartRadar:
		opts["yaxis"] = map[string]any{"show": false, "max": orDefault(c.YMax, 100)}
		opts["markers"] = map[string]any{"size": 3}
	case ChartLine, ChartArea:
		opts["stroke"] = map[string]any{"curve": "smooth", "width": 2}
		if c.YMax > 0 {
			opts["yaxis"] = map[string]any{"max": c.YMax}
		}
	}
	return opts
}

// JSON renders the options for inline script use.
func (c Chart) JSON() template.JS {
	return ToJS(c.Options())
}

// ToJS marshals v for embedding inside a <script> block. Marshal failures
// yield "null" so a broken chart never breaks the page.
func ToJS(v any) template.JS {
	b, err := json.Marshal(v)
	if err != nil {
		return template.JS("null")
	}
	return template.JS(b)
}

func nonNil(v []float64) []float64 {
	if v == nil {
		return []float64{}
	}
	return v
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

// HourlyHeatmap turns a day-of-week by hour matrix into heatmap series, one
// row per weekday.
func HourlyHeatmap(matrix [7][24]float64) Chart {
	days := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	c := Chart{Kind: ChartHeatmap, Height: 260, Colors: []string{"#4caf50"}}
	for d := 6; d >= 0; d-- {
		s := Series{Name: days[d], Points: make([]Point, 24)}
		for h := 0; h < 24; h++ {
			s.Points[h] = Point{X: twoDigit(h), Y: matrix[d][h]}
		}
		c.Series = append(c.Series, s)
	}
	return c
}

func twoDigit(h int) string {
	return string([]byte{byte('0' + h/10), byte('0' + h%10)})
}
