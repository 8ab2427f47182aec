// Package geomap colors GeoJSON map features from the computed pipeline
// results. Geometry passes through untouched; only the properties bag is
// inspected to identify which entity a feature represents.
package geomap

import (
	"encoding/json"
	"strings"

	"github.com/turtacn/RD-Observatory/pkg/errors"
)

// FeatureCollection is a GeoJSON feature collection. Geometries are kept as
// raw JSON: the service never interprets coordinates.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is one GeoJSON feature with an opaque geometry.
type Feature struct {
	Type       string                 `json:"type"`
	ID         interface{}            `json:"id,omitempty"`
	Properties map[string]interface{} `json:"properties"`
	Geometry   json.RawMessage        `json:"geometry"`
}

// ParseFeatureCollection decodes a GeoJSON document.
func ParseFeatureCollection(data []byte) (*FeatureCollection, error) {
	var fc FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSourceParseFailed, "invalid GeoJSON document")
	}
	if !strings.EqualFold(fc.Type, "FeatureCollection") {
		return nil, errors.Newf(errors.ErrCodeSourceParseFailed, "unexpected GeoJSON type %q", fc.Type)
	}
	return &fc, nil
}

// FeatureRef is the geographic identity extracted from a feature's
// properties bag.
type FeatureRef struct {
	ISO3 string
	ISO2 string
	Name string
}

// Code returns the best identifier for resolution: ISO3, then ISO2, then the
// feature name.
func (r FeatureRef) Code() string {
	switch {
	case r.ISO3 != "":
		return r.ISO3
	case r.ISO2 != "":
		return r.ISO2
	}
	return r.Name
}

// Property key spellings seen across map sources (Natural Earth, Eurostat
// GISCO, hand-maintained files). Checked in order; first non-empty wins.
var (
	iso3Keys = []string{"iso_a3", "ISO_A3", "iso3", "ISO3", "ISO3_CODE", "adm0_a3", "ADM0_A3", "CNTR_ID3"}
	iso2Keys = []string{"iso_a2", "ISO_A2", "iso2", "ISO2", "ISO2_CODE", "CNTR_ID", "CNTR_CODE"}
	nameKeys = []string{"name", "NAME", "name_long", "NAME_LONG", "NAME_EN", "admin", "ADMIN", "CNTR_NAME"}
)

// ExtractRef pulls the feature identity out of a properties bag, tolerating
// the key-spelling differences between map sources. Natural Earth uses "-99"
// as its missing-code marker; it is treated as absent.
func ExtractRef(properties map[string]interface{}) FeatureRef {
	return FeatureRef{
		ISO3: firstProperty(properties, iso3Keys),
		ISO2: firstProperty(properties, iso2Keys),
		Name: firstProperty(properties, nameKeys),
	}
}

func firstProperty(properties map[string]interface{}, keys []string) string {
	for _, k := range keys {
		raw, ok := properties[k]
		if !ok {
			continue
		}
		s, ok := raw.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" || s == "-99" {
			continue
		}
		return s
	}
	return ""
}
