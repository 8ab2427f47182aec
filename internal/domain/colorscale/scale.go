package colorscale

import (
	"math"

	"github.com/turtacn/RD-Observatory/internal/domain/stats"
)

// logScaleRatio is the max/min dynamic-range threshold above which the
// logarithmic strategy takes over. Linear scales compress visual distinction
// when a few large values dominate a long tail of small ones.
const logScaleRatio = 15.0

// logScaleFloor is the lower domain bound used when min is zero or tiny,
// keeping log(min) finite.
const logScaleFloor = 0.1

// ColorFor maps one value onto the palette. hasValue=false is the "no data"
// state; a measured zero gets its own fixpoint color.
func ColorFor(value float64, hasValue bool, st stats.ValueStatistics, p Palette) Color {
	if !hasValue || math.IsNaN(value) {
		return p.Null
	}
	if value == 0 {
		return p.Zero
	}
	if useLogScale(st) {
		return logColor(value, st, p)
	}
	return quartileColor(value, st, p)
}

// useLogScale reports whether the value set's dynamic range calls for the
// logarithmic strategy.
func useLogScale(st stats.ValueStatistics) bool {
	if st.Min <= 0 {
		return true
	}
	return st.Max/st.Min > logScaleRatio
}

// logColor maps value onto a two-point gradient [MIN, MAX] over the log
// domain [max(min, 0.1), max], clamped.
func logColor(value float64, st stats.ValueStatistics, p Palette) Color {
	lo := math.Max(st.Min, logScaleFloor)
	hi := st.Max
	if hi <= lo {
		return p.Bands[4]
	}

	v := math.Min(math.Max(value, lo), hi)
	t := (math.Log(v) - math.Log(lo)) / (math.Log(hi) - math.Log(lo))
	return lerp(p.Bands[0], p.Bands[4], t)
}

// quartileColor maps value onto the five-color gradient whose domain
// breakpoints are the quartile 5-tuple, clamped at both ends.
func quartileColor(value float64, st stats.ValueStatistics, p Palette) Color {
	q := st.Quartiles
	if value <= q[0] {
		return p.Bands[0]
	}
	if value >= q[4] {
		return p.Bands[4]
	}
	for i := 0; i < 4; i++ {
		if value > q[i+1] {
			continue
		}
		width := q[i+1] - q[i]
		if width <= 0 {
			return p.Bands[i+1]
		}
		return lerp(p.Bands[i], p.Bands[i+1], (value-q[i])/width)
	}
	return p.Bands[4]
}
