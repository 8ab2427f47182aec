package geo

import (
	"strings"
	"sync"
)

// Resolver canonicalizes raw geographic codes. Resolution is pure — the
// outcome depends only on the code and the reference data the resolver was
// built with — so results are memoized per code.
//
// The lookup order is a fixed chain of strategies:
//
//  1. aggregate allowlist (exact token match)
//  2. aggregate heuristic (EU/EA prefix, length <= 5)
//  3. static ISO3 table via the ISO3→ISO2 cross-reference
//  4. static ISO2 table (Eurostat EL/UK variants included)
//  5. external flag/name reference list, matched by iso3 or code
//  6. best-effort fallback: raw code as display name, COUNTRY kind
type Resolver struct {
	reference []ReferenceEntry

	mu    sync.RWMutex
	cache map[string]CanonicalEntity
}

// NewResolver builds a Resolver. reference may be nil; it is only consulted
// when the static tables miss.
func NewResolver(reference []ReferenceEntry) *Resolver {
	return &Resolver{
		reference: reference,
		cache:     make(map[string]CanonicalEntity),
	}
}

// normalizeCode upper-cases and strips the separator variants seen in source
// data ("EU27-2020", "eu27_2020" → "EU272020").
func normalizeCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	return strings.NewReplacer("-", "", "_", "").Replace(code)
}

// Resolve canonicalizes a raw entity code.
func (r *Resolver) Resolve(code string) CanonicalEntity {
	norm := normalizeCode(code)

	r.mu.RLock()
	if e, ok := r.cache[norm]; ok {
		r.mu.RUnlock()
		return e
	}
	r.mu.RUnlock()

	e := r.resolve(code, norm)

	r.mu.Lock()
	r.cache[norm] = e
	r.mu.Unlock()
	return e
}

func (r *Resolver) resolve(raw, norm string) CanonicalEntity {
	if e, ok := resolveAggregateToken(norm); ok {
		return e
	}
	if e, ok := resolveAggregateHeuristic(norm); ok {
		return e
	}
	if e, ok := resolveISO3(norm); ok {
		return e
	}
	if e, ok := resolveISO2(norm); ok {
		return e
	}
	if e, ok := r.resolveFromReference(norm); ok {
		return e
	}

	// Nothing matched: keep the raw code visible rather than dropping the
	// entity. Kind defaults to COUNTRY so the value still participates in
	// ranking and statistics.
	return CanonicalEntity{
		Code:   strings.ToUpper(strings.TrimSpace(raw)),
		Kind:   KindCountry,
		NameES: raw,
		NameEN: raw,
	}
}

func resolveAggregateToken(norm string) (CanonicalEntity, bool) {
	info, ok := aggregateTokens[norm]
	if !ok {
		return CanonicalEntity{}, false
	}
	return CanonicalEntity{
		Code:        norm,
		Kind:        KindAggregate,
		MemberCount: info.memberCount,
		NameES:      info.names.es,
		NameEN:      info.names.en,
	}, true
}

// resolveAggregateHeuristic guesses that short EU*/EA* codes outside the
// allowlist are aggregates. This is a documented approximation: a future
// token like "EU30" is classified as an aggregate but gets no member count,
// so its value is never averaged.
func resolveAggregateHeuristic(norm string) (CanonicalEntity, bool) {
	if len(norm) > 5 || len(norm) < 2 {
		return CanonicalEntity{}, false
	}
	if !strings.HasPrefix(norm, "EU") && !strings.HasPrefix(norm, "EA") {
		return CanonicalEntity{}, false
	}
	return CanonicalEntity{
		Code:   norm,
		Kind:   KindAggregate,
		NameES: norm,
		NameEN: norm,
	}, true
}

func resolveISO3(norm string) (CanonicalEntity, bool) {
	if len(norm) != 3 {
		return CanonicalEntity{}, false
	}
	iso2, ok := iso3ToIso2[norm]
	if !ok {
		return CanonicalEntity{}, false
	}
	n := countryNames[iso2]
	return CanonicalEntity{
		Code:   norm,
		ISO2:   iso2,
		ISO3:   norm,
		Kind:   KindCountry,
		NameES: n.es,
		NameEN: n.en,
	}, true
}

func resolveISO2(norm string) (CanonicalEntity, bool) {
	if len(norm) != 2 {
		return CanonicalEntity{}, false
	}
	iso2 := norm
	if alias, ok := iso2Aliases[iso2]; ok {
		iso2 = alias
	}
	n, ok := countryNames[iso2]
	if !ok {
		return CanonicalEntity{}, false
	}
	return CanonicalEntity{
		Code:   norm,
		ISO2:   iso2,
		ISO3:   iso2ToIso3[iso2],
		Kind:   KindCountry,
		NameES: n.es,
		NameEN: n.en,
	}, true
}

func (r *Resolver) resolveFromReference(norm string) (CanonicalEntity, bool) {
	for _, ref := range r.reference {
		if normalizeCode(ref.ISO3) == norm || normalizeCode(ref.Code) == norm {
			nameES := ref.NameES
			if nameES == "" {
				nameES = ref.NameEN
			}
			nameEN := ref.NameEN
			if nameEN == "" {
				nameEN = ref.NameES
			}
			return CanonicalEntity{
				Code:    norm,
				ISO3:    strings.ToUpper(ref.ISO3),
				Kind:    KindCountry,
				NameES:  nameES,
				NameEN:  nameEN,
				FlagURL: ref.FlagURL,
			}, true
		}
	}
	return CanonicalEntity{}, false
}

// FlagURL returns the flag image reference for an entity, consulting the
// reference dataset by ISO3 and code. Static-table entities carry no flag of
// their own, so this lookup is the tooltip layer's source for flag images.
func (r *Resolver) FlagURL(e CanonicalEntity) string {
	if e.FlagURL != "" {
		return e.FlagURL
	}
	for _, ref := range r.reference {
		if e.ISO3 != "" && strings.EqualFold(ref.ISO3, e.ISO3) {
			return ref.FlagURL
		}
		if strings.EqualFold(ref.Code, e.Code) {
			return ref.FlagURL
		}
	}
	return ""
}
