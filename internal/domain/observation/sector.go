package observation

import (
	"strings"

	"github.com/turtacn/RD-Observatory/pkg/errors"
)

// Sector is the sector-of-performance classification: who performs the R&D
// activity. Source tables spell sectors several ways (short Eurostat codes,
// long English names, "All Sectors"); everything is normalized to this enum
// at the ingestion boundary and core logic never branches on raw strings.
type Sector string

const (
	SectorTotal      Sector = "TOTAL"
	SectorBusiness   Sector = "BUSINESS"
	SectorGovernment Sector = "GOVERNMENT"
	SectorEducation  Sector = "EDUCATION"
	SectorNonprofit  Sector = "NONPROFIT"
)

// AllSectors lists every sector in presentation order.
var AllSectors = []Sector{
	SectorTotal,
	SectorBusiness,
	SectorGovernment,
	SectorEducation,
	SectorNonprofit,
}

// sectorAliases maps every known source spelling (lower-cased, trimmed) to
// its sector. The table is exhaustive for the source datasets in use; new
// spellings belong here, never in call sites.
var sectorAliases = map[string]Sector{
	// Short Eurostat codes.
	"total": SectorTotal,
	"bes":   SectorBusiness,
	"gov":   SectorGovernment,
	"hes":   SectorEducation,
	"pnp":   SectorNonprofit,

	// Long English names.
	"all sectors":                SectorTotal,
	"business enterprise sector": SectorBusiness,
	"government sector":          SectorGovernment,
	"higher education sector":    SectorEducation,
	"private non-profit sector":  SectorNonprofit,
	"private nonprofit sector":   SectorNonprofit,

	// Internal tokens round-trip too.
	"business":   SectorBusiness,
	"government": SectorGovernment,
	"education":  SectorEducation,
	"nonprofit":  SectorNonprofit,
}

// ParseSector normalizes a source sector label to its Sector. Matching is
// case-insensitive and ignores surrounding whitespace and hyphen/underscore
// variation ("Private non profit sector" == "private non-profit sector").
func ParseSector(raw string) (Sector, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if s, ok := sectorAliases[key]; ok {
		return s, nil
	}
	// Retry with separator variants collapsed.
	collapsed := strings.NewReplacer("_", " ", "-", " ").Replace(key)
	collapsed = strings.Join(strings.Fields(collapsed), " ")
	if s, ok := sectorAliases[collapsed]; ok {
		return s, nil
	}
	if s, ok := sectorAliases[strings.ReplaceAll(collapsed, "non profit", "non-profit")]; ok {
		return s, nil
	}
	return "", errors.Newf(errors.ErrCodeUnknownSector, "unknown sector label %q", raw)
}

// sectorLabels holds the bilingual display names.
var sectorLabels = map[Sector]map[string]string{
	SectorTotal:      {"es": "Todos los sectores", "en": "All sectors"},
	SectorBusiness:   {"es": "Empresas", "en": "Business enterprise"},
	SectorGovernment: {"es": "Administración Pública", "en": "Government"},
	SectorEducation:  {"es": "Enseñanza superior", "en": "Higher education"},
	SectorNonprofit:  {"es": "Instituciones privadas sin fines de lucro", "en": "Private non-profit"},
}

// Label returns the display name for the sector in the given language
// ("es" or "en"); unknown languages fall back to English.
func (s Sector) Label(lang string) string {
	labels, ok := sectorLabels[s]
	if !ok {
		return string(s)
	}
	if name, ok := labels[lang]; ok {
		return name
	}
	return labels["en"]
}

// Valid reports whether s is one of the defined sectors.
func (s Sector) Valid() bool {
	_, ok := sectorLabels[s]
	return ok
}
