package dashboard

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/RD-Observatory/internal/config"
	"github.com/turtacn/RD-Observatory/internal/domain/geo"
	"github.com/turtacn/RD-Observatory/internal/domain/observation"
	"github.com/turtacn/RD-Observatory/pkg/errors"
)

type stubProvider struct {
	ds  *observation.Dataset
	err error
}

func (p stubProvider) Current() (*observation.Dataset, error) { return p.ds, p.err }

// memoryCache is a minimal in-process Cache for tests. Holding the mutex
// across the loader gives it the same one-load-per-key guarantee the redis
// implementation gets from singleflight.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	hits    int
	loads   int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) GetOrSet(ctx context.Context, key string, dest interface{}, _ time.Duration, loader func(ctx context.Context) (interface{}, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if raw, ok := c.entries[key]; ok {
		c.hits++
		return json.Unmarshal(raw, dest)
	}
	v, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	c.loads++
	return json.Unmarshal(raw, dest)
}

func testConfig() config.DashboardConfig {
	return config.DashboardConfig{
		HomeEntityCode:     "ES",
		UnionAggregateCode: "EU27_2020",
		MaxChartEntities:   25,
		DefaultLanguage:    "es",
	}
}

func testDataset(t *testing.T, obs []observation.Observation) *observation.Dataset {
	t.Helper()
	return observation.NewDataset("v1", "test", obs, nil)
}

func obsValue(code string, year int, sector observation.Sector, value float64) observation.Observation {
	return observation.Observation{EntityCode: code, Year: year, Sector: sector, Value: value, HasValue: true}
}

func TestResult_AggregateAveragedAndExcludedFromRank(t *testing.T) {
	t.Parallel()

	ds := testDataset(t, []observation.Observation{
		obsValue("EU27_2020", 2023, observation.SectorTotal, 270000),
		obsValue("ES", 2023, observation.SectorTotal, 15000),
		obsValue("DE", 2023, observation.SectorTotal, 50000),
	})
	svc := NewService(stubProvider{ds: ds}, geo.NewResolver(nil), nil, testConfig(), nil, nil)

	res, err := svc.Result(context.Background(), 2023, observation.SectorTotal, geo.LangEnglish)
	require.NoError(t, err)
	require.Len(t, res.Items, 3)

	// Descending by display value: DE 50000, ES 15000, EU27 averaged 10000.
	de, es, eu := res.Items[0], res.Items[1], res.Items[2]

	assert.Equal(t, "DE", de.ISO2)
	assert.Equal(t, 1, de.Rank)

	assert.Equal(t, "ES", es.ISO2)
	assert.Equal(t, 2, es.Rank)

	assert.Equal(t, geo.KindAggregate, eu.Kind)
	assert.True(t, eu.IsAveraged)
	assert.Equal(t, 10000.0, eu.DisplayValue)
	assert.Equal(t, 270000.0, eu.Value)
	assert.Zero(t, eu.Rank)

	assert.Equal(t, 2, res.TotalRanked)

	// Statistics cover countries only: the 270000 bloc total never enters.
	assert.Equal(t, 15000.0, res.Statistics.Min)
	assert.Equal(t, 50000.0, res.Statistics.Max)
}

func TestResult_Comparisons(t *testing.T) {
	t.Parallel()

	ds := testDataset(t, []observation.Observation{
		obsValue("EU27_2020", 2023, observation.SectorTotal, 270000),
		obsValue("ES", 2023, observation.SectorTotal, 15000),
		obsValue("DE", 2023, observation.SectorTotal, 50000),
		obsValue("DE", 2022, observation.SectorTotal, 40000),
	})
	svc := NewService(stubProvider{ds: ds}, geo.NewResolver(nil), nil, testConfig(), nil, nil)

	res, err := svc.Result(context.Background(), 2023, observation.SectorTotal, geo.LangEnglish)
	require.NoError(t, err)

	de := res.Items[0]
	require.Equal(t, "DE", de.ISO2)
	byKind := comparisonsByKind(de.Comparisons)

	home := byKind[CompareHome]
	assert.True(t, home.Comparable)
	assert.InDelta(t, (50000.0-15000.0)/15000.0*100, home.PercentDiff, 1e-9)

	// Union comparison runs against the per-member average, not the total.
	union := byKind[CompareUnion]
	assert.True(t, union.Comparable)
	assert.InDelta(t, 400.0, union.PercentDiff, 1e-9)

	yoy := byKind[CompareYearOverYear]
	assert.True(t, yoy.Comparable)
	assert.Equal(t, 2022, yoy.ReferenceYear)
	assert.InDelta(t, 25.0, yoy.PercentDiff, 1e-9)

	// The home entity never compares against itself.
	es := res.Items[1]
	require.Equal(t, "ES", es.ISO2)
	_, hasHome := comparisonsByKind(es.Comparisons)[CompareHome]
	assert.False(t, hasHome)
}

func TestResult_ZeroReferenceIsSentinelNotError(t *testing.T) {
	t.Parallel()

	ds := testDataset(t, []observation.Observation{
		obsValue("ES", 2023, observation.SectorTotal, 0),
		obsValue("DE", 2023, observation.SectorTotal, 15000),
	})
	svc := NewService(stubProvider{ds: ds}, geo.NewResolver(nil), nil, testConfig(), nil, nil)

	res, err := svc.Result(context.Background(), 2023, observation.SectorTotal, geo.LangEnglish)
	require.NoError(t, err)

	de := res.Items[0]
	require.Equal(t, "DE", de.ISO2)
	home, ok := comparisonsByKind(de.Comparisons)[CompareHome]
	require.True(t, ok, "zero reference still produces a comparison entry")
	assert.False(t, home.Comparable)
}

func TestResult_AbsentReferenceOmitsComparison(t *testing.T) {
	t.Parallel()

	// No ES and no EU27 observation at all.
	ds := testDataset(t, []observation.Observation{
		obsValue("DE", 2023, observation.SectorTotal, 15000),
	})
	svc := NewService(stubProvider{ds: ds}, geo.NewResolver(nil), nil, testConfig(), nil, nil)

	res, err := svc.Result(context.Background(), 2023, observation.SectorTotal, geo.LangEnglish)
	require.NoError(t, err)
	assert.Empty(t, res.Items[0].Comparisons)
}

func TestResult_SkipsAbsentValues(t *testing.T) {
	t.Parallel()

	ds := testDataset(t, []observation.Observation{
		{EntityCode: "ES", Year: 2023, Sector: observation.SectorTotal},
		obsValue("DE", 2023, observation.SectorTotal, 15000),
	})
	svc := NewService(stubProvider{ds: ds}, geo.NewResolver(nil), nil, testConfig(), nil, nil)

	res, err := svc.Result(context.Background(), 2023, observation.SectorTotal, geo.LangEnglish)
	require.NoError(t, err)
	assert.Equal(t, []string{"DE"}, codesOf(res.Items))
}

func TestResult_SkipsNegativeValues(t *testing.T) {
	t.Parallel()

	ds := testDataset(t, []observation.Observation{
		obsValue("ES", 2023, observation.SectorTotal, -5),
		obsValue("DE", 2023, observation.SectorTotal, 10),
	})
	svc := NewService(stubProvider{ds: ds}, geo.NewResolver(nil), nil, testConfig(), nil, nil)

	res, err := svc.Result(context.Background(), 2023, observation.SectorTotal, geo.LangEnglish)
	require.NoError(t, err)

	// The negative figure is dropped entirely: no rank, no entry, and no
	// influence on the statistics that drive the color scale.
	assert.Equal(t, []string{"DE"}, codesOf(res.Items))
	assert.Equal(t, 1, res.TotalRanked)
	assert.Equal(t, 10.0, res.Statistics.Min)
	assert.Equal(t, 10.0, res.Statistics.Max)
}

func TestResult_EmptySelectionIsNotAnError(t *testing.T) {
	t.Parallel()

	ds := testDataset(t, []observation.Observation{
		obsValue("ES", 2023, observation.SectorTotal, 15000),
	})
	svc := NewService(stubProvider{ds: ds}, geo.NewResolver(nil), nil, testConfig(), nil, nil)

	res, err := svc.Result(context.Background(), 1999, observation.SectorTotal, geo.LangEnglish)
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Zero(t, res.TotalRanked)
	// Degenerate statistics keep downstream color scales well-defined.
	assert.Equal(t, 1.0, res.Statistics.Max)
}

func TestResult_NoDatasetFails(t *testing.T) {
	t.Parallel()

	svc := NewService(stubProvider{err: errors.NotFound("dataset")}, geo.NewResolver(nil), nil, testConfig(), nil, nil)

	_, err := svc.Result(context.Background(), 2023, observation.SectorTotal, geo.LangEnglish)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDatasetNotFound, errors.GetCode(err))
}

func TestResult_InvalidSector(t *testing.T) {
	t.Parallel()

	ds := testDataset(t, nil)
	svc := NewService(stubProvider{ds: ds}, geo.NewResolver(nil), nil, testConfig(), nil, nil)

	_, err := svc.Result(context.Background(), 2023, observation.Sector("bogus"), geo.LangEnglish)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUnknownSector, errors.GetCode(err))
}

func TestResult_CachedPerSelection(t *testing.T) {
	t.Parallel()

	ds := testDataset(t, []observation.Observation{
		obsValue("ES", 2023, observation.SectorTotal, 15000),
	})
	cache := newMemoryCache()
	svc := NewService(stubProvider{ds: ds}, geo.NewResolver(nil), cache, testConfig(), nil, nil)

	first, err := svc.Result(context.Background(), 2023, observation.SectorTotal, geo.LangSpanish)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.loads)

	second, err := svc.Result(context.Background(), 2023, observation.SectorTotal, geo.LangSpanish)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, first.Items, second.Items)

	// A different language is a different cache entry.
	_, err = svc.Result(context.Background(), 2023, observation.SectorTotal, geo.LangEnglish)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.loads)
}

func TestResult_ConcurrentMissesComputeOnce(t *testing.T) {
	t.Parallel()

	ds := testDataset(t, []observation.Observation{
		obsValue("ES", 2023, observation.SectorTotal, 15000),
	})
	cache := newMemoryCache()
	svc := NewService(stubProvider{ds: ds}, geo.NewResolver(nil), cache, testConfig(), nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.Result(context.Background(), 2023, observation.SectorTotal, geo.LangSpanish)
			assert.NoError(t, err)
			assert.Len(t, res.Items, 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, cache.loads, "same selection computes once across concurrent callers")
	assert.Equal(t, 7, cache.hits)
}

func TestRanking_CapsSeries(t *testing.T) {
	t.Parallel()

	obs := make([]observation.Observation, 0, 30)
	codes := []string{
		"AT", "BE", "BG", "HR", "CY", "CZ", "DK", "EE", "FI", "FR",
		"DE", "GR", "HU", "IE", "IT", "LV", "LT", "LU", "MT", "NL",
		"PL", "PT", "RO", "SK", "SI", "ES", "SE", "NO", "IS", "CH",
	}
	for i, code := range codes {
		obs = append(obs, obsValue(code, 2023, observation.SectorTotal, float64(1000+i)))
	}
	cfg := testConfig()
	cfg.MaxChartEntities = 25
	svc := NewService(stubProvider{ds: testDataset(t, obs)}, geo.NewResolver(nil), nil, cfg, nil, nil)

	res, err := svc.Ranking(context.Background(), 2023, observation.SectorTotal, geo.LangEnglish)
	require.NoError(t, err)
	assert.Len(t, res.Items, 25)
	// The cap keeps the head of the sorted series: highest values survive.
	assert.Equal(t, "CH", res.Items[0].ISO2)
	assert.Equal(t, 30, res.TotalRanked, "rank denominator ignores truncation")
}

func TestSectorsAndYears(t *testing.T) {
	t.Parallel()

	ds := testDataset(t, []observation.Observation{
		obsValue("ES", 2021, observation.SectorTotal, 1),
		obsValue("ES", 2023, observation.SectorTotal, 2),
	})
	svc := NewService(stubProvider{ds: ds}, geo.NewResolver(nil), nil, testConfig(), nil, nil)

	years, err := svc.Years(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{2021, 2023}, years)

	sectors := svc.Sectors(geo.LangSpanish)
	require.Len(t, sectors, 5)
	assert.Equal(t, observation.SectorTotal, sectors[0].Code)
	assert.Equal(t, "Todos los sectores", sectors[0].Label)
}

func TestTooltip(t *testing.T) {
	t.Parallel()

	ds := testDataset(t, []observation.Observation{
		obsValue("EU27_2020", 2023, observation.SectorTotal, 270000),
		obsValue("ES", 2023, observation.SectorTotal, 15000),
		{EntityCode: "DE", Year: 2023, Sector: observation.SectorTotal, Value: 50000, HasValue: true, Flag: "p"},
	})
	svc := NewService(stubProvider{ds: ds}, geo.NewResolver(nil), nil, testConfig(), nil, nil)

	tip, err := svc.Tooltip(context.Background(), "DE", 2023, observation.SectorTotal, geo.LangSpanish)
	require.NoError(t, err)

	assert.Equal(t, "Alemania", tip.DisplayName)
	assert.Equal(t, "50.000", tip.FormattedValue)
	assert.Equal(t, "1º de 2", tip.RankText)
	assert.Equal(t, "provisional", tip.FlagDescription)
	assert.NotEmpty(t, tip.ComparisonLines)

	// The averaged union aggregate carries the qualifier and no rank text.
	tip, err = svc.Tooltip(context.Background(), "EU27_2020", 2023, observation.SectorTotal, geo.LangSpanish)
	require.NoError(t, err)
	assert.True(t, tip.IsAveraged)
	assert.Contains(t, tip.FormattedValue, "media por país")
	assert.Empty(t, tip.RankText)
}

func TestTooltip_NoDataState(t *testing.T) {
	t.Parallel()

	ds := testDataset(t, []observation.Observation{
		obsValue("ES", 2023, observation.SectorTotal, 15000),
	})
	svc := NewService(stubProvider{ds: ds}, geo.NewResolver(nil), nil, testConfig(), nil, nil)

	tip, err := svc.Tooltip(context.Background(), "FR", 2023, observation.SectorTotal, geo.LangEnglish)
	require.NoError(t, err)
	assert.False(t, tip.HasValue)
	assert.Equal(t, "no data", tip.FormattedValue)
	assert.Equal(t, "France", tip.DisplayName)
}

func comparisonsByKind(comparisons []Comparison) map[ComparisonKind]Comparison {
	m := make(map[ComparisonKind]Comparison, len(comparisons))
	for _, c := range comparisons {
		m[c.Kind] = c
	}
	return m
}
