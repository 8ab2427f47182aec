// Package observation defines the normalized statistical fact — one
// (entity, year, sector, value) observation — together with the sector and
// observation-flag vocabularies and the in-memory dataset the visualization
// pipeline reads from.
package observation

import (
	"sort"
	"time"

	"github.com/turtacn/RD-Observatory/internal/infrastructure/monitoring/logging"
)

// Observation is one normalized statistical fact.
type Observation struct {
	// EntityCode is the raw geographic identifier as supplied by the source
	// (ISO2, ISO3, or a named aggregate token). Canonicalization is the geo
	// resolver's job, not the observation's.
	EntityCode string `json:"entityCode"`

	Year   int    `json:"year"`
	Sector Sector `json:"sector"`

	// Value is the observed figure. Valid only when HasValue is true; sources
	// legitimately omit values for some (entity, year, sector) combinations.
	Value    float64 `json:"value"`
	HasValue bool    `json:"hasValue"`

	// Flag is the optional data-quality annotation code ("e", "p", "b", ...).
	Flag string `json:"flag,omitempty"`
}

// Key identifies an observation within a dataset. At most one value exists
// per key; duplicates are last-write-wins.
type Key struct {
	EntityCode string
	Year       int
	Sector     Sector
}

// Key returns the identity of o.
func (o Observation) Key() Key {
	return Key{EntityCode: o.EntityCode, Year: o.Year, Sector: o.Sector}
}

// flagDescriptions carries the bilingual descriptions of the observation
// flags used by the source datasets.
var flagDescriptions = map[string]map[string]string{
	"e":  {"es": "estimado", "en": "estimated"},
	"p":  {"es": "provisional", "en": "provisional"},
	"b":  {"es": "ruptura de serie", "en": "break in series"},
	"d":  {"es": "definición diferente", "en": "definition differs"},
	"bd": {"es": "ruptura de serie, definición diferente", "en": "break in series, definition differs"},
	"be": {"es": "ruptura de serie, estimado", "en": "break in series, estimated"},
	"ep": {"es": "estimado, provisional", "en": "estimated, provisional"},
	"u":  {"es": "baja fiabilidad", "en": "low reliability"},
}

// FlagDescription returns the localized description for a flag code, or the
// empty string when the code is empty or unknown.
func FlagDescription(code, lang string) string {
	descs, ok := flagDescriptions[code]
	if !ok {
		return ""
	}
	if d, ok := descs[lang]; ok {
		return d
	}
	return descs["en"]
}

// Dataset is an immutable-once-built collection of observations for one
// loaded source version. Building deduplicates on Key with last-write-wins,
// logging each collision as a data-quality warning.
type Dataset struct {
	Version  string
	Source   string
	LoadedAt time.Time

	ordered []Observation
	byKey   map[Key]int // index into ordered
}

// NewDataset builds a Dataset from raw observations. Later rows replace
// earlier rows with the same (entity, year, sector) key; the replacement is
// logged because duplicate keys indicate a source-data problem.
func NewDataset(version, source string, obs []Observation, log logging.Logger) *Dataset {
	if log == nil {
		log = logging.NewNopLogger()
	}
	d := &Dataset{
		Version:  version,
		Source:   source,
		LoadedAt: time.Now().UTC(),
		ordered:  make([]Observation, 0, len(obs)),
		byKey:    make(map[Key]int, len(obs)),
	}
	for _, o := range obs {
		k := o.Key()
		if idx, dup := d.byKey[k]; dup {
			log.Warn("duplicate observation, keeping last value",
				logging.String("entity", k.EntityCode),
				logging.Int("year", k.Year),
				logging.String("sector", string(k.Sector)),
			)
			d.ordered[idx] = o
			continue
		}
		d.byKey[k] = len(d.ordered)
		d.ordered = append(d.ordered, o)
	}
	return d
}

// Observations returns all observations in source order. The returned slice
// is shared; callers must not mutate it.
func (d *Dataset) Observations() []Observation {
	return d.ordered
}

// Find returns the observation for the given key, if present.
func (d *Dataset) Find(entityCode string, year int, sector Sector) (Observation, bool) {
	idx, ok := d.byKey[Key{EntityCode: entityCode, Year: year, Sector: sector}]
	if !ok {
		return Observation{}, false
	}
	return d.ordered[idx], true
}

// Len returns the number of distinct observations.
func (d *Dataset) Len() int {
	return len(d.ordered)
}

// Years returns the distinct years present, ascending.
func (d *Dataset) Years() []int {
	seen := make(map[int]struct{})
	for _, o := range d.ordered {
		seen[o.Year] = struct{}{}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}
