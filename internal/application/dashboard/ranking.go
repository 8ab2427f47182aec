// Package dashboard orchestrates the data-to-visualization pipeline: it
// filters the active dataset by (year, sector), resolves geography, derives
// statistics and colors, and produces the ranked comparable series the chart,
// map and tooltip surfaces render.
package dashboard

import (
	"math"
	"sort"

	"github.com/turtacn/RD-Observatory/internal/domain/colorscale"
	"github.com/turtacn/RD-Observatory/internal/domain/geo"
	"github.com/turtacn/RD-Observatory/internal/domain/observation"
	"github.com/turtacn/RD-Observatory/internal/domain/stats"
)

// ComparisonKind names the reference an item is compared against.
type ComparisonKind string

const (
	// CompareHome compares against the configured home entity (e.g. Spain).
	CompareHome ComparisonKind = "HOME"
	// CompareUnion compares against the configured union aggregate's
	// per-member average.
	CompareUnion ComparisonKind = "UNION"
	// CompareYearOverYear compares against the same entity one year earlier.
	CompareYearOverYear ComparisonKind = "YOY"
)

// Comparison is one computed percentage difference. Comparable=false is the
// explicit "no comparison" state used when the reference value is zero; an
// absent reference observation produces no Comparison at all.
type Comparison struct {
	Kind          ComparisonKind `json:"kind"`
	ReferenceCode string         `json:"referenceCode,omitempty"`
	ReferenceYear int            `json:"referenceYear,omitempty"`
	PercentDiff   float64        `json:"percentDiff"`
	IsPositive    bool           `json:"isPositive"`
	Comparable    bool           `json:"comparable"`
}

// RankedItem is one entry of the ranked series.
type RankedItem struct {
	Code        string         `json:"code"`
	ISO2        string         `json:"iso2,omitempty"`
	ISO3        string         `json:"iso3,omitempty"`
	DisplayName string         `json:"displayName"`
	Kind        geo.EntityKind `json:"kind"`

	// Value is the observed figure; DisplayValue is what the chart shows —
	// identical except for aggregates with a known member count, which are
	// averaged per member.
	Value        float64 `json:"value"`
	DisplayValue float64 `json:"displayValue"`
	IsAveraged   bool    `json:"isAveraged"`

	// Rank is 1-based over countries only; zero for aggregates, which are
	// displayed but never counted.
	Rank int `json:"rank,omitempty"`

	Color   colorscale.Color `json:"color"`
	FlagURL string           `json:"flagUrl,omitempty"`
	Flag    string           `json:"flag,omitempty"`

	Comparisons []Comparison `json:"comparisons,omitempty"`
}

// RankingResult is the fully computed pipeline output for one
// (dataset version, year, sector, language) selection. Items carries the
// complete ranked series; chart surfaces truncate it afterwards.
type RankingResult struct {
	DatasetVersion string                `json:"datasetVersion"`
	Year           int                   `json:"year"`
	Sector         observation.Sector    `json:"sector"`
	Language       geo.Language          `json:"language"`
	Items          []RankedItem          `json:"items"`
	Statistics     stats.ValueStatistics `json:"statistics"`

	// TotalRanked is the N of "rank X of N": countries with a value, before
	// any truncation.
	TotalRanked int `json:"totalRanked"`
}

// toRankedValue derives the displayed value for an entity. Aggregates with a
// known member count show the per-member average, rounded to the nearest
// integer; everything else shows the value as observed.
func toRankedValue(e geo.CanonicalEntity, value float64) (float64, bool) {
	if e.IsAggregate() && e.MemberCount > 0 {
		return math.Round(value / float64(e.MemberCount)), true
	}
	return value, false
}

// buildRanking sorts items descending by display value (stable, so equal
// values keep input order) and assigns 1-based ranks counting countries only.
// The slice is sorted in place and returned.
func buildRanking(items []RankedItem) []RankedItem {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].DisplayValue > items[j].DisplayValue
	})

	rank := 0
	for i := range items {
		if items[i].Kind == geo.KindAggregate {
			items[i].Rank = 0
			continue
		}
		rank++
		items[i].Rank = rank
	}
	return items
}

// capItems bounds a sorted series for chart rendering. Always applied after
// sorting, never before, so truncation removes the tail, not arbitrary rows.
func capItems(items []RankedItem, max int) []RankedItem {
	if max <= 0 || len(items) <= max {
		return items
	}
	return items[:max]
}

// compare computes the percentage difference of value against reference.
// A zero reference yields the explicit non-comparable state instead of a
// division by zero.
func compare(kind ComparisonKind, value, reference float64) Comparison {
	c := Comparison{Kind: kind}
	if reference == 0 {
		return c
	}
	c.Comparable = true
	c.PercentDiff = (value - reference) / reference * 100
	c.IsPositive = value-reference > 0
	return c
}
