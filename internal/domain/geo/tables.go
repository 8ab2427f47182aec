package geo

// Static lookup tables for European geography. The resolver consults these
// before any external reference data; they are the authoritative spellings
// for everything the dashboard displays.

type names struct {
	es string
	en string
}

// countryNames keys by ISO2. Covers EU/EFTA/candidate countries present in
// the source datasets.
var countryNames = map[string]names{
	"AT": {"Austria", "Austria"},
	"BE": {"Bélgica", "Belgium"},
	"BG": {"Bulgaria", "Bulgaria"},
	"HR": {"Croacia", "Croatia"},
	"CY": {"Chipre", "Cyprus"},
	"CZ": {"Chequia", "Czechia"},
	"DK": {"Dinamarca", "Denmark"},
	"EE": {"Estonia", "Estonia"},
	"FI": {"Finlandia", "Finland"},
	"FR": {"Francia", "France"},
	"DE": {"Alemania", "Germany"},
	"GR": {"Grecia", "Greece"},
	"HU": {"Hungría", "Hungary"},
	"IE": {"Irlanda", "Ireland"},
	"IT": {"Italia", "Italy"},
	"LV": {"Letonia", "Latvia"},
	"LT": {"Lituania", "Lithuania"},
	"LU": {"Luxemburgo", "Luxembourg"},
	"MT": {"Malta", "Malta"},
	"NL": {"Países Bajos", "Netherlands"},
	"PL": {"Polonia", "Poland"},
	"PT": {"Portugal", "Portugal"},
	"RO": {"Rumanía", "Romania"},
	"SK": {"Eslovaquia", "Slovakia"},
	"SI": {"Eslovenia", "Slovenia"},
	"ES": {"España", "Spain"},
	"SE": {"Suecia", "Sweden"},
	"NO": {"Noruega", "Norway"},
	"IS": {"Islandia", "Iceland"},
	"CH": {"Suiza", "Switzerland"},
	"GB": {"Reino Unido", "United Kingdom"},
	"TR": {"Turquía", "Türkiye"},
	"RS": {"Serbia", "Serbia"},
	"ME": {"Montenegro", "Montenegro"},
	"MK": {"Macedonia del Norte", "North Macedonia"},
	"BA": {"Bosnia y Herzegovina", "Bosnia and Herzegovina"},
	"AL": {"Albania", "Albania"},
	"UA": {"Ucrania", "Ukraine"},
	"MD": {"Moldavia", "Moldova"},
	"XK": {"Kosovo", "Kosovo"},
}

// iso3ToIso2 is the cross-reference table for the three-letter codes the
// long-format sources use.
var iso3ToIso2 = map[string]string{
	"AUT": "AT", "BEL": "BE", "BGR": "BG", "HRV": "HR", "CYP": "CY",
	"CZE": "CZ", "DNK": "DK", "EST": "EE", "FIN": "FI", "FRA": "FR",
	"DEU": "DE", "GRC": "GR", "HUN": "HU", "IRL": "IE", "ITA": "IT",
	"LVA": "LV", "LTU": "LT", "LUX": "LU", "MLT": "MT", "NLD": "NL",
	"POL": "PL", "PRT": "PT", "ROU": "RO", "SVK": "SK", "SVN": "SI",
	"ESP": "ES", "SWE": "SE", "NOR": "NO", "ISL": "IS", "CHE": "CH",
	"GBR": "GB", "TUR": "TR", "SRB": "RS", "MNE": "ME", "MKD": "MK",
	"BIH": "BA", "ALB": "AL", "UKR": "UA", "MDA": "MD",
}

// iso2ToIso3 is derived once at init for reverse lookups.
var iso2ToIso3 = func() map[string]string {
	m := make(map[string]string, len(iso3ToIso2))
	for iso3, iso2 := range iso3ToIso2 {
		m[iso2] = iso3
	}
	return m
}()

// iso2Aliases maps the Eurostat code variants onto ISO2: Eurostat reports
// Greece as EL and the United Kingdom as UK.
var iso2Aliases = map[string]string{
	"EL": "GR",
	"UK": "GB",
}

// aggregateInfo describes one known supranational token.
type aggregateInfo struct {
	memberCount int // 0 = unknown coverage, no averaging
	names       names
}

// aggregateTokens is the explicit allowlist of supranational codes, keyed by
// the normalized form (upper case, separators stripped). Member counts are
// static per the entity's defined coverage.
var aggregateTokens = map[string]aggregateInfo{
	"EU272020": {27, names{"Unión Europea (27)", "European Union (27)"}},
	"EU27":     {27, names{"Unión Europea (27)", "European Union (27)"}},
	"EU":       {27, names{"Unión Europea", "European Union"}},
	"EU28":     {28, names{"Unión Europea (28)", "European Union (28)"}},
	"EA19":     {19, names{"Zona Euro (19)", "Euro Area (19)"}},
	"EA20":     {20, names{"Zona Euro (20)", "Euro Area (20)"}},
	// Bare "EA" has no fixed coverage year, so no member count: the value is
	// shown as the bloc total without averaging.
	"EA": {0, names{"Zona Euro", "Euro Area"}},
}
