package colorscale

import (
	"github.com/turtacn/RD-Observatory/internal/domain/observation"
)

// Palette is the color set for one sector. Bands runs light to dark:
// [MIN, LOW, MID, HIGH, MAX].
type Palette struct {
	Null  Color    `json:"null"`
	Zero  Color    `json:"zero"`
	Bands [5]Color `json:"bands"`
}

// Null ("no data") and zero ("measured as zero") are deliberately distinct
// fixpoints shared by every palette.
var (
	nullColor = Color{R: 0xd5, G: 0xd5, B: 0xd5}
	zeroColor = Color{R: 0xf4, G: 0xf4, B: 0xf4}
)

// sectorHues assigns one base hue per sector. The five bands are derived
// from it at fixed lightness steps, so (sector, band index) fully determines
// the color.
var sectorHues = map[observation.Sector]float64{
	observation.SectorTotal:      214, // blue
	observation.SectorBusiness:   28,  // orange
	observation.SectorGovernment: 145, // green
	observation.SectorEducation:  276, // purple
	observation.SectorNonprofit:  350, // red
}

const (
	bandSaturation = 0.62
	fallbackHue    = 214
)

// bandLightness steps light to dark; index 0 is MIN, index 4 is MAX.
var bandLightness = [5]float64{0.86, 0.70, 0.54, 0.40, 0.27}

// PaletteFor derives the deterministic palette for a sector. Unknown sectors
// get the TOTAL hue.
func PaletteFor(sector observation.Sector) Palette {
	hue, ok := sectorHues[sector]
	if !ok {
		hue = fallbackHue
	}

	p := Palette{Null: nullColor, Zero: zeroColor}
	for i, l := range bandLightness {
		p.Bands[i] = hsl(hue, bandSaturation, l)
	}
	return p
}
