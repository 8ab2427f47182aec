package dashboard

import (
	"context"
	"strings"

	"github.com/turtacn/RD-Observatory/internal/domain/geo"
	"github.com/turtacn/RD-Observatory/internal/domain/observation"
)

// Tooltip is the data bundle behind one hovered or selected entity.
type Tooltip struct {
	Code        string `json:"code"`
	DisplayName string `json:"displayName"`

	// FormattedValue is the localized number, or the localized "no data"
	// text when the entity has no observation for the selection.
	FormattedValue string `json:"formattedValue"`
	HasValue       bool   `json:"hasValue"`

	// IsAveraged marks per-member averages; the value line carries the
	// localized "average per country" qualifier.
	IsAveraged bool `json:"isAveraged"`

	FlagURL  string `json:"flagUrl,omitempty"`
	RankText string `json:"rankText,omitempty"`

	ComparisonLines []string `json:"comparisonLines,omitempty"`

	// FlagDescription explains the observation's data-quality flag, when one
	// is present ("estimated", "provisional", ...).
	FlagDescription string `json:"flagDescription,omitempty"`
}

// Tooltip builds the tooltip bundle for one entity code under the given
// selection. Unknown codes and missing observations produce a "no data"
// tooltip, never an error: hovering an unmapped polygon is a normal state.
func (s *Service) Tooltip(ctx context.Context, code string, year int, sector observation.Sector, lang geo.Language) (*Tooltip, error) {
	full, err := s.Result(ctx, year, sector, lang)
	if err != nil {
		return nil, err
	}

	entity := s.resolver.Resolve(code)
	text := textFor(lang)

	tip := &Tooltip{
		Code:        entity.Code,
		DisplayName: entity.DisplayName(lang),
		FlagURL:     s.resolver.FlagURL(entity),
	}

	item, ok := findItem(full.Items, entity)
	if !ok {
		tip.FormattedValue = text.noData
		return tip, nil
	}

	tip.HasValue = true
	tip.IsAveraged = item.IsAveraged
	tip.FormattedValue = formatNumber(item.DisplayValue, lang)
	if item.IsAveraged {
		tip.FormattedValue += " (" + text.averaged + ")"
	}
	if item.FlagURL != "" {
		tip.FlagURL = item.FlagURL
	}
	if item.Rank > 0 {
		tip.RankText = rankText(item.Rank, full.TotalRanked, lang)
	}
	tip.ComparisonLines = s.comparisonLines(item.Comparisons, lang)
	tip.FlagDescription = observation.FlagDescription(item.Flag, string(lang))

	return tip, nil
}

// comparisonLines renders each comparison as one localized line, e.g.
// "+12,5 % vs Unión Europea (27)" or "-3,0 % vs año anterior".
func (s *Service) comparisonLines(comparisons []Comparison, lang geo.Language) []string {
	if len(comparisons) == 0 {
		return nil
	}
	text := textFor(lang)

	lines := make([]string, 0, len(comparisons))
	for _, c := range comparisons {
		var ref string
		switch c.Kind {
		case CompareYearOverYear:
			ref = text.previousYear
		default:
			ref = s.resolver.Resolve(c.ReferenceCode).DisplayName(lang)
		}
		if !c.Comparable {
			lines = append(lines, text.noComparison+" ("+text.vs+" "+ref+")")
			continue
		}
		lines = append(lines, formatPercent(c.PercentDiff, lang)+" "+text.vs+" "+ref)
	}
	return lines
}

// findItem locates an entity inside a computed series, matching by ISO2
// first and normalized code second.
func findItem(items []RankedItem, e geo.CanonicalEntity) (RankedItem, bool) {
	for _, it := range items {
		if sameEntity(it, e) {
			return it, true
		}
	}
	// Reference-resolved entities may expose ISO3 only.
	if e.ISO3 != "" {
		for _, it := range items {
			if strings.EqualFold(it.ISO3, e.ISO3) {
				return it, true
			}
		}
	}
	return RankedItem{}, false
}
