// Package ingest normalizes the heterogeneous source tables (wide and long
// Eurostat-style CSV, Spanish regional CSV) into observations, and manages
// dataset activation with last-request-wins semantics.
package ingest

import (
	"strconv"
	"strings"
)

// missing markers seen in source exports.
var missingMarkers = map[string]struct{}{
	"":    {},
	":":   {},
	"..":  {},
	"n/a": {},
	"na":  {},
	"-":   {},
}

// parseValue interprets one value cell. Eurostat exports append flag letters
// to the number ("15000 p"); Spanish exports use comma decimals and dot
// thousands ("1.234,5"). Returns ok=false for a missing value and keeps the
// flag either way.
func parseValue(cell string) (value float64, flag string, ok bool) {
	cell = strings.TrimSpace(cell)

	// Split a trailing alphabetic flag off the number.
	if i := strings.LastIndexByte(cell, ' '); i >= 0 {
		tail := strings.TrimSpace(cell[i+1:])
		if tail != "" && isAlpha(tail) {
			flag = strings.ToLower(tail)
			cell = strings.TrimSpace(cell[:i])
		}
	}

	if _, missing := missingMarkers[strings.ToLower(cell)]; missing {
		return 0, flag, false
	}

	v, err := strconv.ParseFloat(normalizeDecimal(cell), 64)
	if err != nil || v < 0 {
		// Expenditure and intensity figures are non-negative; a negative
		// number is a source defect, dropped like any unparseable cell.
		return 0, flag, false
	}
	return v, flag, true
}

// normalizeDecimal converts Spanish number spelling to Go syntax: "1.234,5"
// becomes "1234.5". A lone dot is kept as the decimal mark.
func normalizeDecimal(s string) string {
	hasComma := strings.Contains(s, ",")
	if hasComma {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
		return s
	}
	// "1.234.567" with no comma is dot-grouped thousands.
	if strings.Count(s, ".") > 1 {
		return strings.ReplaceAll(s, ".", "")
	}
	return s
}

func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
