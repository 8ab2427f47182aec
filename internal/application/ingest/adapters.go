package ingest

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/turtacn/RD-Observatory/internal/domain/geo"
	"github.com/turtacn/RD-Observatory/internal/domain/observation"
	"github.com/turtacn/RD-Observatory/pkg/errors"
)

// ParseStats summarizes one adapter run.
type ParseStats struct {
	Rows     int `json:"rows"`
	Accepted int `json:"accepted"`
	Skipped  int `json:"skipped"`
}

// Adapter normalizes one source table layout into observations.
type Adapter interface {
	// Name identifies the adapter in logs, metrics and events.
	Name() string
	// Detect reports whether the header row belongs to this adapter's layout.
	Detect(header []string) bool
	// Parse converts the full record set (header included) into observations.
	// Rows with unusable values are skipped, not fatal.
	Parse(records [][]string) ([]observation.Observation, ParseStats, error)
}

// adapters in detection order; the regional layout is checked before the
// long layout because both carry a value column.
func allAdapters() []Adapter {
	return []Adapter{wideAdapter{}, regionalAdapter{}, longAdapter{}}
}

// DetectAdapter picks the adapter for a CSV document.
func DetectAdapter(records [][]string) (Adapter, error) {
	if len(records) == 0 {
		return nil, errors.New(errors.ErrCodeSourceParseFailed, "empty source document")
	}
	for _, a := range allAdapters() {
		if a.Detect(records[0]) {
			return a, nil
		}
	}
	return nil, errors.Newf(errors.ErrCodeSourceParseFailed, "unrecognized source layout: %v", records[0])
}

// ReadCSV decodes raw CSV bytes, tolerating a UTF-8 BOM and both comma and
// semicolon delimiters (Spanish exports use semicolons).
func ReadCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	delimiter := ','
	if i := bytes.IndexByte(data, '\n'); i > 0 {
		first := data[:i]
		if bytes.Count(first, []byte{';'}) > bytes.Count(first, []byte{','}) {
			delimiter = ';'
		}
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delimiter
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSourceParseFailed, "reading CSV failed")
	}
	return records, nil
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

func headerIndex(header []string, names ...string) int {
	for i, h := range header {
		n := normalizeHeader(h)
		for _, want := range names {
			if n == want {
				return i
			}
		}
	}
	return -1
}

// ─────────────────────────────────────────────────────────────────────────────
// Wide layout: one row per (entity, year), one column per short sector code.
//
//	geo,year,TOTAL,BES,GOV,HES,PNP
//	ES,2023,15000 p,8000,3000,3500,:
// ─────────────────────────────────────────────────────────────────────────────

type wideAdapter struct{}

func (wideAdapter) Name() string { return "wide" }

func (wideAdapter) Detect(header []string) bool {
	return headerIndex(header, "geo", "country", "entity") >= 0 &&
		headerIndex(header, "total") >= 0 &&
		headerIndex(header, "bes") >= 0
}

func (a wideAdapter) Parse(records [][]string) ([]observation.Observation, ParseStats, error) {
	header := records[0]
	geoIdx := headerIndex(header, "geo", "country", "entity")
	yearIdx := headerIndex(header, "year", "time")
	if geoIdx < 0 || yearIdx < 0 {
		return nil, ParseStats{}, errors.New(errors.ErrCodeSourceParseFailed, "wide layout is missing geo/year columns")
	}

	// Map each remaining column to its sector, in column order.
	type sectorCol struct {
		col    int
		sector observation.Sector
	}
	var sectorCols []sectorCol
	for i, h := range header {
		if i == geoIdx || i == yearIdx {
			continue
		}
		if s, err := observation.ParseSector(h); err == nil {
			sectorCols = append(sectorCols, sectorCol{col: i, sector: s})
		}
	}

	var (
		obs   []observation.Observation
		stats ParseStats
	)
	for _, row := range records[1:] {
		stats.Rows++
		if geoIdx >= len(row) || yearIdx >= len(row) {
			stats.Skipped++
			continue
		}
		year, err := strconv.Atoi(strings.TrimSpace(row[yearIdx]))
		if err != nil {
			stats.Skipped++
			continue
		}
		entity := strings.TrimSpace(row[geoIdx])
		if entity == "" {
			stats.Skipped++
			continue
		}

		for _, sc := range sectorCols {
			if sc.col >= len(row) {
				continue
			}
			value, flag, ok := parseValue(row[sc.col])
			obs = append(obs, observation.Observation{
				EntityCode: entity,
				Year:       year,
				Sector:     sc.sector,
				Value:      value,
				HasValue:   ok,
				Flag:       flag,
			})
		}
		stats.Accepted++
	}
	return obs, stats, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Long layout: one row per (entity, year, sector), sectors spelled out.
//
//	country,year,sector,value,flag
//	ESP,2023,Business enterprise sector,8000,e
// ─────────────────────────────────────────────────────────────────────────────

type longAdapter struct{}

func (longAdapter) Name() string { return "long" }

func (longAdapter) Detect(header []string) bool {
	return headerIndex(header, "geo", "country", "entity") >= 0 &&
		headerIndex(header, "sector", "sectperf") >= 0 &&
		headerIndex(header, "value", "obs_value") >= 0
}

func (a longAdapter) Parse(records [][]string) ([]observation.Observation, ParseStats, error) {
	header := records[0]
	geoIdx := headerIndex(header, "geo", "country", "entity")
	yearIdx := headerIndex(header, "year", "time")
	sectorIdx := headerIndex(header, "sector", "sectperf")
	valueIdx := headerIndex(header, "value", "obs_value")
	flagIdx := headerIndex(header, "flag", "obs_flag")
	if geoIdx < 0 || yearIdx < 0 || sectorIdx < 0 || valueIdx < 0 {
		return nil, ParseStats{}, errors.New(errors.ErrCodeSourceParseFailed, "long layout is missing required columns")
	}

	var (
		obs   []observation.Observation
		stats ParseStats
	)
	for _, row := range records[1:] {
		stats.Rows++
		if geoIdx >= len(row) || yearIdx >= len(row) || sectorIdx >= len(row) || valueIdx >= len(row) {
			stats.Skipped++
			continue
		}
		year, err := strconv.Atoi(strings.TrimSpace(row[yearIdx]))
		if err != nil {
			stats.Skipped++
			continue
		}
		sector, err := observation.ParseSector(row[sectorIdx])
		if err != nil {
			stats.Skipped++
			continue
		}
		entity := strings.TrimSpace(row[geoIdx])
		if entity == "" {
			stats.Skipped++
			continue
		}

		value, flag, ok := parseValue(row[valueIdx])
		if flagIdx >= 0 && flagIdx < len(row) && strings.TrimSpace(row[flagIdx]) != "" {
			flag = strings.ToLower(strings.TrimSpace(row[flagIdx]))
		}
		obs = append(obs, observation.Observation{
			EntityCode: entity,
			Year:       year,
			Sector:     sector,
			Value:      value,
			HasValue:   ok,
			Flag:       flag,
		})
		stats.Accepted++
	}
	return obs, stats, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Regional layout: Spanish sub-national data, R&D intensity as % of GDP.
//
//	Comunidad;Año;% PIB I+D
//	Andalucía;2023;1,05
// ─────────────────────────────────────────────────────────────────────────────

type regionalAdapter struct{}

func (regionalAdapter) Name() string { return "regional" }

func (regionalAdapter) Detect(header []string) bool {
	return headerIndex(header, "comunidad", "comunidad autónoma", "region") >= 0 &&
		headerIndex(header, "% pib i+d", "pib_id", "gasto_pib") >= 0
}

func (a regionalAdapter) Parse(records [][]string) ([]observation.Observation, ParseStats, error) {
	header := records[0]
	regionIdx := headerIndex(header, "comunidad", "comunidad autónoma", "region")
	yearIdx := headerIndex(header, "año", "ano", "year")
	valueIdx := headerIndex(header, "% pib i+d", "pib_id", "gasto_pib")
	if regionIdx < 0 || yearIdx < 0 || valueIdx < 0 {
		return nil, ParseStats{}, errors.New(errors.ErrCodeSourceParseFailed, "regional layout is missing required columns")
	}

	var (
		obs   []observation.Observation
		stats ParseStats
	)
	for _, row := range records[1:] {
		stats.Rows++
		if regionIdx >= len(row) || yearIdx >= len(row) || valueIdx >= len(row) {
			stats.Skipped++
			continue
		}
		year, err := strconv.Atoi(strings.TrimSpace(row[yearIdx]))
		if err != nil {
			stats.Skipped++
			continue
		}
		region := strings.TrimSpace(row[regionIdx])
		if region == "" {
			stats.Skipped++
			continue
		}

		// Regional data carries no sector split; it lands under TOTAL.
		value, flag, ok := parseValue(row[valueIdx])
		obs = append(obs, observation.Observation{
			EntityCode: region,
			Year:       year,
			Sector:     observation.SectorTotal,
			Value:      value,
			HasValue:   ok,
			Flag:       flag,
		})
		stats.Accepted++
	}
	return obs, stats, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Reference list: flags and display names, consulted when static tables miss.
//
//	code,iso3,name_es,name_en,flag_url
// ─────────────────────────────────────────────────────────────────────────────

// ParseReferenceList decodes the geographic reference table.
func ParseReferenceList(data []byte) ([]geo.ReferenceEntry, error) {
	records, err := ReadCSV(data)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New(errors.ErrCodeSourceParseFailed, "empty reference list")
	}

	header := records[0]
	codeIdx := headerIndex(header, "code", "id")
	iso3Idx := headerIndex(header, "iso3", "iso_a3")
	nameESIdx := headerIndex(header, "name_es", "nombre")
	nameENIdx := headerIndex(header, "name_en", "name")
	flagIdx := headerIndex(header, "flag_url", "flag")
	if codeIdx < 0 && iso3Idx < 0 {
		return nil, errors.New(errors.ErrCodeSourceParseFailed, "reference list has no code column")
	}

	cell := func(row []string, idx int) string {
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var entries []geo.ReferenceEntry
	for _, row := range records[1:] {
		e := geo.ReferenceEntry{
			Code:    cell(row, codeIdx),
			ISO3:    cell(row, iso3Idx),
			NameES:  cell(row, nameESIdx),
			NameEN:  cell(row, nameENIdx),
			FlagURL: cell(row, flagIdx),
		}
		if e.Code == "" && e.ISO3 == "" {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}
