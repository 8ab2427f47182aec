package geomap

import (
	"context"
	"strings"

	"github.com/turtacn/RD-Observatory/internal/application/dashboard"
	"github.com/turtacn/RD-Observatory/internal/domain/colorscale"
	"github.com/turtacn/RD-Observatory/internal/domain/geo"
	"github.com/turtacn/RD-Observatory/internal/domain/observation"
	"github.com/turtacn/RD-Observatory/internal/infrastructure/monitoring/logging"
)

// Service maps pipeline results onto map features.
type Service struct {
	pipeline *dashboard.Service
	resolver *geo.Resolver
	log      logging.Logger
}

// NewService wires the choropleth layer on top of the dashboard pipeline.
func NewService(pipeline *dashboard.Service, resolver *geo.Resolver, log logging.Logger) *Service {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Service{pipeline: pipeline, resolver: resolver, log: log.Named("geomap")}
}

// ColorEntry is the fill color for one entity.
type ColorEntry struct {
	Code  string           `json:"code"`
	ISO2  string           `json:"iso2,omitempty"`
	ISO3  string           `json:"iso3,omitempty"`
	Value float64          `json:"value"`
	Color colorscale.Color `json:"color"`
}

// ColorIndex is everything a map client needs to fill its features: one
// entry per entity with data, plus the shared fixpoint colors for features
// without data.
type ColorIndex struct {
	DatasetVersion string             `json:"datasetVersion"`
	Year           int                `json:"year"`
	Sector         observation.Sector `json:"sector"`

	NoData colorscale.Color `json:"noData"`
	Zero   colorscale.Color `json:"zero"`

	Entries []ColorEntry `json:"entries"`
}

// ColorIndex computes the choropleth fill colors for one selection.
func (s *Service) ColorIndex(ctx context.Context, year int, sector observation.Sector, lang geo.Language) (*ColorIndex, error) {
	full, err := s.pipeline.Result(ctx, year, sector, lang)
	if err != nil {
		return nil, err
	}
	palette := colorscale.PaletteFor(sector)

	idx := &ColorIndex{
		DatasetVersion: full.DatasetVersion,
		Year:           year,
		Sector:         sector,
		NoData:         palette.Null,
		Zero:           palette.Zero,
		Entries:        make([]ColorEntry, 0, len(full.Items)),
	}
	for _, it := range full.Items {
		idx.Entries = append(idx.Entries, ColorEntry{
			Code:  it.Code,
			ISO2:  it.ISO2,
			ISO3:  it.ISO3,
			Value: it.DisplayValue,
			Color: it.Color,
		})
	}
	return idx, nil
}

// FeatureColor returns the fill color for one GeoJSON properties bag under
// the given selection. Features that cannot be identified or have no
// observation get the palette's no-data color; that is a normal map state,
// not an error.
func (s *Service) FeatureColor(ctx context.Context, properties map[string]interface{}, year int, sector observation.Sector) (colorscale.Color, error) {
	full, err := s.pipeline.Result(ctx, year, sector, geo.LangEnglish)
	if err != nil {
		return colorscale.Color{}, err
	}
	palette := colorscale.PaletteFor(sector)

	ref := ExtractRef(properties)
	code := ref.Code()
	if code == "" {
		return palette.Null, nil
	}

	if it, ok := matchItem(full.Items, ref, s.resolver.Resolve(code)); ok {
		return it.Color, nil
	}
	return palette.Null, nil
}

// matchItem locates the ranked item behind a feature: ISO3, then ISO2, then
// the resolved canonical code.
func matchItem(items []dashboard.RankedItem, ref FeatureRef, entity geo.CanonicalEntity) (dashboard.RankedItem, bool) {
	for _, it := range items {
		if ref.ISO3 != "" && strings.EqualFold(it.ISO3, ref.ISO3) {
			return it, true
		}
		if ref.ISO2 != "" && strings.EqualFold(it.ISO2, ref.ISO2) {
			return it, true
		}
		if entity.ISO2 != "" && it.ISO2 == entity.ISO2 {
			return it, true
		}
		if it.Code == entity.Code {
			return it, true
		}
	}
	return dashboard.RankedItem{}, false
}
