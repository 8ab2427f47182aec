package observation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/RD-Observatory/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RD-Observatory/pkg/errors"
)

func obs(entity string, year int, sector Sector, value float64) Observation {
	return Observation{EntityCode: entity, Year: year, Sector: sector, Value: value, HasValue: true}
}

func TestParseSector_AllAliases(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want Sector
	}{
		{"TOTAL", SectorTotal},
		{"total", SectorTotal},
		{"All Sectors", SectorTotal},
		{"all sectors", SectorTotal},
		{"BES", SectorBusiness},
		{"Business enterprise sector", SectorBusiness},
		{"GOV", SectorGovernment},
		{"Government sector", SectorGovernment},
		{"HES", SectorEducation},
		{"Higher education sector", SectorEducation},
		{"PNP", SectorNonprofit},
		{"Private non-profit sector", SectorNonprofit},
		{"Private non profit sector", SectorNonprofit},
		{"private_non-profit_sector", SectorNonprofit},
		{"  gov  ", SectorGovernment},
		{"BUSINESS", SectorBusiness},
	}

	for _, tc := range cases {
		got, err := ParseSector(tc.raw)
		require.NoError(t, err, "raw=%q", tc.raw)
		assert.Equal(t, tc.want, got, "raw=%q", tc.raw)
	}
}

func TestParseSector_Unknown(t *testing.T) {
	t.Parallel()

	_, err := ParseSector("household sector")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnknownSector))
}

func TestSectorLabel_Bilingual(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Empresas", SectorBusiness.Label("es"))
	assert.Equal(t, "Business enterprise", SectorBusiness.Label("en"))
	// Unknown language falls back to English.
	assert.Equal(t, "All sectors", SectorTotal.Label("de"))
}

func TestFlagDescription(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "estimated", FlagDescription("e", "en"))
	assert.Equal(t, "provisional", FlagDescription("p", "es"))
	assert.Equal(t, "break in series, definition differs", FlagDescription("bd", "en"))
	assert.Empty(t, FlagDescription("", "en"))
	assert.Empty(t, FlagDescription("zz", "en"))
}

func TestNewDataset_LastWriteWinsOnDuplicates(t *testing.T) {
	t.Parallel()

	d := NewDataset("v1", "test", []Observation{
		obs("ES", 2023, SectorTotal, 100),
		obs("DE", 2023, SectorTotal, 200),
		obs("ES", 2023, SectorTotal, 150), // duplicate key, must win
	}, logging.NewNopLogger())

	assert.Equal(t, 2, d.Len())
	got, ok := d.Find("ES", 2023, SectorTotal)
	require.True(t, ok)
	assert.Equal(t, 150.0, got.Value)

	// Position of the replaced row is preserved.
	all := d.Observations()
	assert.Equal(t, "ES", all[0].EntityCode)
	assert.Equal(t, 150.0, all[0].Value)
}

func TestDataset_Years(t *testing.T) {
	t.Parallel()

	d := NewDataset("v1", "test", []Observation{
		obs("ES", 2022, SectorTotal, 1),
		obs("ES", 2020, SectorTotal, 1),
		obs("DE", 2022, SectorBusiness, 1),
	}, nil)

	assert.Equal(t, []int{2020, 2022}, d.Years())
}

func TestFilter_ExactYearAndSector(t *testing.T) {
	t.Parallel()

	input := []Observation{
		obs("ES", 2023, SectorTotal, 1),
		obs("ES", 2022, SectorTotal, 2),
		obs("DE", 2023, SectorBusiness, 3),
		obs("FR", 2023, SectorTotal, 4),
	}

	got := Filter(input, 2023, SectorTotal)
	require.Len(t, got, 2)
	assert.Equal(t, "ES", got[0].EntityCode)
	assert.Equal(t, "FR", got[1].EntityCode)
}

func TestFilter_EmptyResultIsNotAnError(t *testing.T) {
	t.Parallel()

	got := Filter([]Observation{obs("ES", 2023, SectorTotal, 1)}, 1999, SectorTotal)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilter_Idempotent(t *testing.T) {
	t.Parallel()

	input := []Observation{
		obs("ES", 2023, SectorTotal, 1),
		obs("DE", 2023, SectorTotal, 2),
	}

	first := Filter(input, 2023, SectorTotal)
	second := Filter(input, 2023, SectorTotal)
	assert.Equal(t, first, second)
}

func TestFilterBySelector_NormalizesBeforeComparing(t *testing.T) {
	t.Parallel()

	input := []Observation{
		obs("ES", 2023, SectorBusiness, 1),
		obs("DE", 2023, SectorTotal, 2),
	}

	got, err := FilterBySelector(input, 2023, "Business enterprise sector")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ES", got[0].EntityCode)

	_, err = FilterBySelector(input, 2023, "bogus")
	assert.Error(t, err)
}
