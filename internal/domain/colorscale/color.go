// Package colorscale maps observation values onto choropleth and chart
// colors. The scale strategy is picked from the dynamic range of the value
// set: wide ranges switch to a logarithmic gradient so a few large economies
// do not flatten the long tail into one band.
package colorscale

import (
	"encoding/json"
	"fmt"
	"math"
)

// Color is an opaque sRGB color.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hex renders the color as a lowercase #rrggbb string.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// MarshalJSON emits the hex form; chart and map clients consume strings.
func (c Color) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.Hex() + `"`), nil
}

// UnmarshalJSON parses the hex form back. Memoized pipeline results round-trip
// through JSON, so the codec must be symmetric.
func (c *Color) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if len(s) != 7 || s[0] != '#' {
		return fmt.Errorf("colorscale: %q is not a #rrggbb color", s)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return fmt.Errorf("colorscale: %q is not a #rrggbb color", s)
	}
	c.R, c.G, c.B = r, g, b
	return nil
}

// lerp interpolates between two colors in sRGB space. t is clamped to [0,1].
func lerp(a, b Color, t float64) Color {
	t = clamp01(t)
	return Color{
		R: uint8(math.Round(float64(a.R) + t*(float64(b.R)-float64(a.R)))),
		G: uint8(math.Round(float64(a.G) + t*(float64(b.G)-float64(a.G)))),
		B: uint8(math.Round(float64(a.B) + t*(float64(b.B)-float64(a.B)))),
	}
}

func clamp01(t float64) float64 {
	switch {
	case t < 0 || math.IsNaN(t):
		return 0
	case t > 1:
		return 1
	}
	return t
}

// hsl converts hue (degrees), saturation and lightness (both 0..1) to sRGB.
// Used to derive the per-sector band colors from one base hue.
func hsl(h, s, l float64) Color {
	h = math.Mod(math.Mod(h, 360)+360, 360)

	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - c/2

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return Color{
		R: uint8(math.Round((r + m) * 255)),
		G: uint8(math.Round((g + m) * 255)),
		B: uint8(math.Round((b + m) * 255)),
	}
}
