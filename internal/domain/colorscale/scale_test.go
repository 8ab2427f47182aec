package colorscale

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/RD-Observatory/internal/domain/observation"
	"github.com/turtacn/RD-Observatory/internal/domain/stats"
)

func TestPaletteFor_Deterministic(t *testing.T) {
	t.Parallel()

	a := PaletteFor(observation.SectorBusiness)
	b := PaletteFor(observation.SectorBusiness)
	assert.Equal(t, a, b)

	// Different sectors get visibly different band colors.
	c := PaletteFor(observation.SectorGovernment)
	assert.NotEqual(t, a.Bands, c.Bands)

	// Fixpoints are shared.
	assert.Equal(t, a.Null, c.Null)
	assert.Equal(t, a.Zero, c.Zero)

	// Bands run light to dark: monotone decreasing perceived intensity.
	for i := 1; i < 5; i++ {
		prev := int(a.Bands[i-1].R) + int(a.Bands[i-1].G) + int(a.Bands[i-1].B)
		cur := int(a.Bands[i].R) + int(a.Bands[i].G) + int(a.Bands[i].B)
		assert.Less(t, cur, prev, "band %d", i)
	}
}

func TestPaletteFor_UnknownSectorFallsBack(t *testing.T) {
	t.Parallel()

	assert.Equal(t, PaletteFor(observation.SectorTotal), PaletteFor(observation.Sector("bogus")))
}

func TestColorFor_Fixpoints(t *testing.T) {
	t.Parallel()

	p := PaletteFor(observation.SectorTotal)
	st := stats.Compute([]float64{10, 20, 30, 40, 100})

	assert.Equal(t, p.Null, ColorFor(0, false, st, p))
	assert.Equal(t, p.Zero, ColorFor(0, true, st, p))
}

func TestColorFor_LinearPath(t *testing.T) {
	t.Parallel()

	p := PaletteFor(observation.SectorTotal)

	// Ratio 100/10 = 10 <= 15: quartile scale.
	st := stats.Compute([]float64{10, 20, 30, 40, 100})
	assert.False(t, useLogScale(st))

	// Exact breakpoints hit the exact band colors.
	assert.Equal(t, p.Bands[0], ColorFor(10, true, st, p))
	assert.Equal(t, p.Bands[2], ColorFor(30, true, st, p))
	assert.Equal(t, p.Bands[4], ColorFor(100, true, st, p))

	// Out-of-domain values clamp to the end bands.
	assert.Equal(t, p.Bands[0], ColorFor(1, true, st, p))
	assert.Equal(t, p.Bands[4], ColorFor(5000, true, st, p))

	// A midpoint interpolates between its surrounding bands.
	mid := ColorFor(25, true, st, p)
	assert.Equal(t, lerp(p.Bands[1], p.Bands[2], 0.5), mid)
}

func TestColorFor_LogPath(t *testing.T) {
	t.Parallel()

	p := PaletteFor(observation.SectorTotal)

	// Ratio 200/5 = 40 > 15: logarithmic scale.
	st := stats.Compute([]float64{5, 6, 7, 8, 200})
	assert.True(t, useLogScale(st))

	assert.Equal(t, p.Bands[0], ColorFor(5, true, st, p))
	assert.Equal(t, p.Bands[4], ColorFor(200, true, st, p))

	// Values beyond the domain clamp, never extrapolate.
	assert.Equal(t, p.Bands[0], ColorFor(0.001, true, st, p))
	assert.Equal(t, p.Bands[4], ColorFor(1e9, true, st, p))
}

func TestColorFor_DegenerateStatisticsNeverPanics(t *testing.T) {
	t.Parallel()

	p := PaletteFor(observation.SectorTotal)
	st := stats.Degenerate()

	// min=0 forces the log path with the 0.1 floor; any value maps to a band.
	c := ColorFor(0.5, true, st, p)
	assert.NotEqual(t, p.Null, c)
}

func TestColorHex(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "#000000", Color{}.Hex())
	assert.Equal(t, "#ff8001", Color{R: 255, G: 128, B: 1}.Hex())

	data, err := Color{R: 255, G: 0, B: 0}.MarshalJSON()
	assert.NoError(t, err)
	assert.Equal(t, `"#ff0000"`, string(data))
}
