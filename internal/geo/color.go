package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ScoreColors runs from poor to good review scores.
	ScoreColors = []string{"red", "orange", "lightblue", "green", "darkgreen"}
	// YlGn is the ColorBrewer yellow-green sequential palette used for prices.
	YlGn = []string{"#ffffcc", "#d9f0a3", "#addd8e", "#78c679", "#31a354", "#006837"}
)

var namedColors = map[string]string{
	"red":       "#ff0000",
	"orange":    "#ffa500",
	"lightblue": "#add8e6",
	"green":     "#008000",
	"darkgreen": "#006400",
	"white":     "#ffffff",
	"black":     "#000000",
}

type rgb struct {
	r, g, b float64
}

// ColorScale maps a value in [Min, Max] onto evenly spaced color stops.
type ColorScale struct {
	Min   float64
	Max   float64
	stops []rgb
}

// LinearColorScale builds a scale over colors given as names or #rrggbb.
func LinearColorScale(min, max float64, colors []string) (ColorScale, error) {
	if len(colors) < 2 {
		return ColorScale{}, fmt.Errorf("color scale needs at least two colors")
	}
	if math.IsNaN(min) || math.IsNaN(max) || max < min {
		return ColorScale{}, fmt.Errorf("invalid color scale range [%v, %v]", min, max)
	}

	stops := make([]rgb, 0, len(colors))
	for _, color := range colors {
		parsed, err := parseColor(color)
		if err != nil {
			return ColorScale{}, err
		}
		stops = append(stops, parsed)
	}
	return ColorScale{Min: min, Max: max, stops: stops}, nil
}

// ScaleFor builds a scale spanning the values in the map.
func ScaleFor(values map[string]float64, colors []string) (ColorScale, error) {
	if len(values) == 0 {
		return LinearColorScale(0, 0, colors)
	}
	min, max := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	return LinearColorScale(min, max, colors)
}

// Color returns the #rrggbb color for value, clamped to the scale range.
func (s ColorScale) Color(value float64) string {
	if len(s.stops) == 0 {
		return Transparent
	}
	t := 0.0
	if s.Max > s.Min {
		t = (value - s.Min) / (s.Max - s.Min)
	}
	t = math.Max(0, math.Min(1, t))

	segments := float64(len(s.stops) - 1)
	pos := t * segments
	idx := int(math.Floor(pos))
	if idx >= len(s.stops)-1 {
		return s.stops[len(s.stops)-1].hex()
	}
	frac := pos - float64(idx)
	a, b := s.stops[idx], s.stops[idx+1]
	return rgb{
		r: a.r + (b.r-a.r)*frac,
		g: a.g + (b.g-a.g)*frac,
		b: a.b + (b.b-a.b)*frac,
	}.hex()
}

func (c rgb) hex() string {
	return fmt.Sprintf("#%02x%02x%02x", int(math.Round(c.r)), int(math.Round(c.g)), int(math.Round(c.b)))
}

func parseColor(raw string) (rgb, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if named, ok := namedColors[value]; ok {
		value = named
	}
	if len(value) != 7 || value[0] != '#' {
		return rgb{}, fmt.Errorf("unsupported color %q", raw)
	}
	n, err := strconv.ParseUint(value[1:], 16, 32)
	if err != nil {
		return rgb{}, fmt.Errorf("unsupported color %q: %w", raw, err)
	}
	return rgb{
		r: float64((n >> 16) & 0xff),
		g: float64((n >> 8) & 0xff),
		b: float64(n & 0xff),
	}, nil
}
