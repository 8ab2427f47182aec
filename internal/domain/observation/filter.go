package observation

// Filter selects the observations matching year and sector exactly. Order is
// preserved from the input. An empty result is a normal outcome — callers
// render a "no data" state, they never treat it as an error.
func Filter(obs []Observation, year int, sector Sector) []Observation {
	out := make([]Observation, 0, len(obs))
	for _, o := range obs {
		if o.Year == year && o.Sector == sector {
			out = append(out, o)
		}
	}
	return out
}

// FilterBySelector is the boundary-facing variant of Filter: it accepts any
// known source spelling of the sector (short code, long English name,
// "All Sectors") and normalizes it before filtering.
func FilterBySelector(obs []Observation, year int, sectorSelector string) ([]Observation, error) {
	sector, err := ParseSector(sectorSelector)
	if err != nil {
		return nil, err
	}
	return Filter(obs, year, sector), nil
}
