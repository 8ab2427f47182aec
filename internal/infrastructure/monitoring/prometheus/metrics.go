package prometheus

// AppMetrics holds every metric vector the observatory emits.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Pipeline layer
	PipelineRebuildsTotal   CounterVec
	PipelineRebuildDuration HistogramVec
	PipelineEntityCount     GaugeVec
	PipelineCacheHitsTotal  CounterVec
	PipelineCacheMissTotal  CounterVec

	// Ingestion layer
	ImportsTotal        CounterVec
	ImportDuration      HistogramVec
	ImportRowsTotal     CounterVec
	ImportRowsSkipped   CounterVec
	DatasetObservations GaugeVec

	// Infrastructure
	DBQueryDuration  HistogramVec
	EventsPublished  CounterVec
	SourceFetchTotal CounterVec
}

// Default histogram buckets, in seconds.
var (
	DefaultHTTPDurationBuckets   = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}
	DefaultImportDurationBuckets = []float64{.1, .5, 1, 5, 10, 30, 60, 120}
	DefaultDBDurationBuckets     = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1}
)

// NewAppMetrics registers all observatory metrics on the given collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "In-flight HTTP requests", "method")

	m.PipelineRebuildsTotal = collector.RegisterCounter("pipeline_rebuilds_total", "Full pipeline recomputations", "sector", "result")
	m.PipelineRebuildDuration = collector.RegisterHistogram("pipeline_rebuild_duration_seconds", "Pipeline recomputation duration", DefaultHTTPDurationBuckets, "sector")
	m.PipelineEntityCount = collector.RegisterGauge("pipeline_entity_count", "Entities in the last computed ranking", "sector")
	m.PipelineCacheHitsTotal = collector.RegisterCounter("pipeline_cache_hits_total", "Memoized pipeline results served", "kind")
	m.PipelineCacheMissTotal = collector.RegisterCounter("pipeline_cache_misses_total", "Pipeline results recomputed", "kind")

	m.ImportsTotal = collector.RegisterCounter("imports_total", "Dataset import attempts", "source", "status")
	m.ImportDuration = collector.RegisterHistogram("import_duration_seconds", "Dataset import duration", DefaultImportDurationBuckets, "source")
	m.ImportRowsTotal = collector.RegisterCounter("import_rows_total", "Rows accepted during import", "source")
	m.ImportRowsSkipped = collector.RegisterCounter("import_rows_skipped_total", "Rows skipped during import", "source", "reason")
	m.DatasetObservations = collector.RegisterGauge("dataset_observations", "Observations in the active dataset version", "source")

	m.DBQueryDuration = collector.RegisterHistogram("db_query_duration_seconds", "Database query duration", DefaultDBDurationBuckets, "operation")
	m.EventsPublished = collector.RegisterCounter("events_published_total", "Kafka events published", "topic", "status")
	m.SourceFetchTotal = collector.RegisterCounter("source_fetch_total", "Object storage fetches", "bucket", "status")

	return m
}
