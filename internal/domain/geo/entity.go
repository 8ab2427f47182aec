// Package geo resolves the heterogeneous geographic identifiers used by the
// source datasets (ISO2, ISO3, Eurostat variants, supranational aggregate
// tokens) into canonical entities with bilingual display names.
package geo

import (
	"strings"

	"github.com/turtacn/RD-Observatory/pkg/errors"
)

// Language selects the display language for resolved names.
type Language string

const (
	LangSpanish Language = "es"
	LangEnglish Language = "en"
)

// ParseLanguage normalizes a language tag; empty input yields the fallback.
func ParseLanguage(raw string, fallback Language) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return fallback, nil
	case "es", "spa", "es-es":
		return LangSpanish, nil
	case "en", "eng", "en-gb", "en-us":
		return LangEnglish, nil
	}
	return "", errors.Newf(errors.ErrCodeInvalidLanguage, "unsupported language %q", raw)
}

// EntityKind distinguishes individual countries from multi-country blocs.
type EntityKind string

const (
	KindCountry EntityKind = "COUNTRY"

	// KindAggregate marks supranational blocs (EU-27, Euro Area) whose value
	// is a bloc-wide total, not a per-country figure.
	KindAggregate EntityKind = "SUPRANATIONAL_AGGREGATE"
)

// CanonicalEntity is the resolved identity of a raw source code. Resolution
// is a pure function of the code: the same input always yields the same
// entity regardless of dataset position.
type CanonicalEntity struct {
	// Code is the normalized form of the raw identifier the entity was
	// resolved from.
	Code string `json:"code"`

	ISO2 string     `json:"iso2,omitempty"`
	ISO3 string     `json:"iso3,omitempty"`
	Kind EntityKind `json:"kind"`

	// MemberCount is the number of bloc members, set only for aggregates
	// whose coverage is known. Zero means unknown: downstream never averages
	// without it.
	MemberCount int `json:"memberCount,omitempty"`

	// NameES / NameEN are the resolved display names. When resolution falls
	// all the way through, both carry the raw code.
	NameES string `json:"nameEs"`
	NameEN string `json:"nameEn"`

	// FlagURL points at the entity's flag image when the reference dataset
	// supplied one.
	FlagURL string `json:"flagUrl,omitempty"`
}

// DisplayName returns the entity name in the requested language.
func (e CanonicalEntity) DisplayName(lang Language) string {
	if lang == LangSpanish && e.NameES != "" {
		return e.NameES
	}
	if e.NameEN != "" {
		return e.NameEN
	}
	if e.NameES != "" {
		return e.NameES
	}
	return e.Code
}

// IsAggregate reports whether the entity is a supranational bloc.
func (e CanonicalEntity) IsAggregate() bool {
	return e.Kind == KindAggregate
}

// ReferenceEntry is one row of the external flag/name reference dataset,
// consulted only when the static code tables miss.
type ReferenceEntry struct {
	Code    string `json:"code"`
	ISO3    string `json:"iso3"`
	NameES  string `json:"nameEs"`
	NameEN  string `json:"nameEn"`
	FlagURL string `json:"flagUrl"`
}
