package dashboard

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/turtacn/RD-Observatory/internal/config"
	"github.com/turtacn/RD-Observatory/internal/domain/colorscale"
	"github.com/turtacn/RD-Observatory/internal/domain/geo"
	"github.com/turtacn/RD-Observatory/internal/domain/observation"
	"github.com/turtacn/RD-Observatory/internal/domain/stats"
	"github.com/turtacn/RD-Observatory/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RD-Observatory/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/RD-Observatory/pkg/errors"
)

// resultCacheTTL bounds how long a computed pipeline result is reused. The
// cache key carries the dataset version, so a fresh import is never served a
// stale result; the TTL only caps memory held for abandoned selections.
const resultCacheTTL = 5 * time.Minute

// DatasetProvider hands out the active dataset. Implementations replace the
// whole dataset atomically on import (last request wins), so a returned
// dataset is immutable and safe to read without locking.
type DatasetProvider interface {
	Current() (*observation.Dataset, error)
}

// Cache memoizes computed pipeline results. GetOrSet serves dest from the
// cache on a hit and otherwise runs loader exactly once per key across
// concurrent callers, storing the result for ttl.
type Cache interface {
	GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error
}

// Service computes ranked, colored, comparable series from the active
// dataset. All computation is pure given (dataset version, year, sector,
// language); results are memoized on that key.
type Service struct {
	provider DatasetProvider
	resolver *geo.Resolver
	cache    Cache
	cfg      config.DashboardConfig
	log      logging.Logger
	metrics  *prometheus.AppMetrics
}

// NewService wires the pipeline. cache may be nil to disable memoization;
// metrics and log fall back to no-ops.
func NewService(provider DatasetProvider, resolver *geo.Resolver, cache Cache, cfg config.DashboardConfig, log logging.Logger, metrics *prometheus.AppMetrics) *Service {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = prometheus.NewAppMetrics(prometheus.NewNopCollector())
	}
	return &Service{
		provider: provider,
		resolver: resolver,
		cache:    cache,
		cfg:      cfg,
		log:      log.Named("dashboard"),
		metrics:  metrics,
	}
}

// Result returns the full computed pipeline output for one selection,
// serving from cache when the same (dataset version, year, sector, language)
// was computed before.
func (s *Service) Result(ctx context.Context, year int, sector observation.Sector, lang geo.Language) (*RankingResult, error) {
	if !sector.Valid() {
		return nil, errors.Newf(errors.ErrCodeUnknownSector, "unknown sector %q", sector)
	}

	ds, err := s.provider.Current()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatasetNotFound, "no active dataset")
	}

	key := fmt.Sprintf("ranking:%s:%d:%s:%s", ds.Version, year, sector, lang)
	if s.cache == nil {
		return s.computeTimed(ds, year, sector, lang), nil
	}

	var cached RankingResult
	computed := false
	cacheErr := s.cache.GetOrSet(ctx, key, &cached, resultCacheTTL, func(context.Context) (interface{}, error) {
		computed = true
		s.metrics.PipelineCacheMissTotal.WithLabelValues("ranking").Inc()
		return s.computeTimed(ds, year, sector, lang), nil
	})
	if cacheErr != nil {
		// A broken cache degrades to direct computation, never to an error.
		s.log.Warn("pipeline result cache unavailable", logging.String("key", key), logging.Err(cacheErr))
		return s.computeTimed(ds, year, sector, lang), nil
	}
	if !computed {
		s.metrics.PipelineCacheHitsTotal.WithLabelValues("ranking").Inc()
	}
	return &cached, nil
}

// computeTimed runs the pipeline and records the rebuild metrics.
func (s *Service) computeTimed(ds *observation.Dataset, year int, sector observation.Sector, lang geo.Language) *RankingResult {
	started := time.Now()
	result := s.compute(ds, year, sector, lang)
	s.metrics.PipelineRebuildDuration.WithLabelValues(string(sector)).Observe(time.Since(started).Seconds())
	s.metrics.PipelineRebuildsTotal.WithLabelValues(string(sector), "ok").Inc()
	s.metrics.PipelineEntityCount.WithLabelValues(string(sector)).Set(float64(len(result.Items)))
	return result
}

// Ranking returns the chart series for one selection: the full ranking
// truncated to the configured maximum entity count. Truncation happens after
// sorting, so it drops the tail of the distribution, never arbitrary rows.
func (s *Service) Ranking(ctx context.Context, year int, sector observation.Sector, lang geo.Language) (*RankingResult, error) {
	full, err := s.Result(ctx, year, sector, lang)
	if err != nil {
		return nil, err
	}
	capped := *full
	capped.Items = capItems(full.Items, s.cfg.MaxChartEntities)
	return &capped, nil
}

// Statistics returns the color-scale statistics for one selection.
func (s *Service) Statistics(ctx context.Context, year int, sector observation.Sector) (stats.ValueStatistics, error) {
	full, err := s.Result(ctx, year, sector, geo.Language(s.cfg.DefaultLanguage))
	if err != nil {
		return stats.ValueStatistics{}, err
	}
	return full.Statistics, nil
}

// Years lists the years available in the active dataset, ascending.
func (s *Service) Years(ctx context.Context) ([]int, error) {
	ds, err := s.provider.Current()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatasetNotFound, "no active dataset")
	}
	return ds.Years(), nil
}

// SectorOption is one entry of the sector picker.
type SectorOption struct {
	Code  observation.Sector `json:"code"`
	Label string             `json:"label"`
}

// Sectors lists the selectable sectors with localized labels.
func (s *Service) Sectors(lang geo.Language) []SectorOption {
	opts := make([]SectorOption, 0, len(observation.AllSectors))
	for _, sec := range observation.AllSectors {
		opts = append(opts, SectorOption{Code: sec, Label: sec.Label(string(lang))})
	}
	return opts
}

// compute runs the full pipeline for one selection. Deterministic given the
// dataset contents and the selection.
func (s *Service) compute(ds *observation.Dataset, year int, sector observation.Sector, lang geo.Language) *RankingResult {
	filtered := observation.Filter(ds.Observations(), year, sector)

	items := make([]RankedItem, 0, len(filtered))
	rawCodes := make([]string, 0, len(filtered))
	var countryValues []float64

	for _, o := range filtered {
		// Absent, non-finite and negative values never reach aggregation:
		// expenditure figures are non-negative, so anything below zero is a
		// source defect dropped like an unparseable cell.
		if !o.HasValue || o.Value < 0 || math.IsNaN(o.Value) || math.IsInf(o.Value, 0) {
			continue
		}
		e := s.resolver.Resolve(o.EntityCode)
		displayValue, averaged := toRankedValue(e, o.Value)
		if !e.IsAggregate() {
			countryValues = append(countryValues, o.Value)
		}
		items = append(items, RankedItem{
			Code:         e.Code,
			ISO2:         e.ISO2,
			ISO3:         e.ISO3,
			DisplayName:  e.DisplayName(lang),
			Kind:         e.Kind,
			Value:        o.Value,
			DisplayValue: displayValue,
			IsAveraged:   averaged,
			FlagURL:      s.resolver.FlagURL(e),
			Flag:         o.Flag,
		})
		rawCodes = append(rawCodes, o.EntityCode)
	}

	st := stats.Compute(countryValues)
	palette := colorscale.PaletteFor(sector)
	for i := range items {
		items[i].Color = colorscale.ColorFor(items[i].DisplayValue, true, st, palette)
	}

	s.attachComparisons(ds, items, rawCodes, year, sector)

	items = buildRanking(items)
	totalRanked := 0
	for _, it := range items {
		if it.Kind != geo.KindAggregate {
			totalRanked++
		}
	}

	return &RankingResult{
		DatasetVersion: ds.Version,
		Year:           year,
		Sector:         sector,
		Language:       lang,
		Items:          items,
		Statistics:     st,
		TotalRanked:    totalRanked,
	}
}

// attachComparisons adds the home, union and year-over-year comparisons to
// each item. Comparisons use display values on both sides, so a country is
// measured against the union's per-member average rather than the bloc total.
// An absent reference observation contributes no comparison at all; a zero
// reference contributes the explicit non-comparable state.
func (s *Service) attachComparisons(ds *observation.Dataset, items []RankedItem, rawCodes []string, year int, sector observation.Sector) {
	home := s.resolver.Resolve(s.cfg.HomeEntityCode)
	union := s.resolver.Resolve(s.cfg.UnionAggregateCode)

	homeValue, homeOK := s.referenceValue(items, home)
	unionValue, unionOK := s.referenceValue(items, union)

	for i := range items {
		it := &items[i]

		if homeOK && !sameEntity(*it, home) {
			c := compare(CompareHome, it.DisplayValue, homeValue)
			c.ReferenceCode = home.Code
			it.Comparisons = append(it.Comparisons, c)
		}
		if unionOK && !sameEntity(*it, union) {
			c := compare(CompareUnion, it.DisplayValue, unionValue)
			c.ReferenceCode = union.Code
			it.Comparisons = append(it.Comparisons, c)
		}

		prev, ok := ds.Find(rawCodes[i], year-1, sector)
		if ok && prev.HasValue && prev.Value >= 0 && !math.IsNaN(prev.Value) {
			e := s.resolver.Resolve(rawCodes[i])
			prevDisplay, _ := toRankedValue(e, prev.Value)
			c := compare(CompareYearOverYear, it.DisplayValue, prevDisplay)
			c.ReferenceYear = year - 1
			it.Comparisons = append(it.Comparisons, c)
		}
	}
}

// referenceValue finds the display value of the reference entity within the
// computed items.
func (s *Service) referenceValue(items []RankedItem, ref geo.CanonicalEntity) (float64, bool) {
	for _, it := range items {
		if sameEntity(it, ref) {
			return it.DisplayValue, true
		}
	}
	return 0, false
}

// sameEntity matches a ranked item against a resolved entity by ISO2 when
// both sides carry one, falling back to the normalized code.
func sameEntity(it RankedItem, e geo.CanonicalEntity) bool {
	if it.ISO2 != "" && e.ISO2 != "" {
		return it.ISO2 == e.ISO2
	}
	return it.Code == e.Code
}
