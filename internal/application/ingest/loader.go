package ingest

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/RD-Observatory/internal/domain/observation"
	"github.com/turtacn/RD-Observatory/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/RD-Observatory/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RD-Observatory/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/RD-Observatory/pkg/errors"
)

// ObjectFetcher reads one source object from the object store.
type ObjectFetcher interface {
	Fetch(ctx context.Context, objectName string) ([]byte, error)
}

// DatasetSaver persists an imported dataset version.
type DatasetSaver interface {
	Save(ctx context.Context, ds *observation.Dataset) error
}

// ResultInvalidator drops memoized pipeline results after activation.
type ResultInvalidator interface {
	DeleteByPrefix(ctx context.Context, prefix string) (int64, error)
}

// EventPublisher announces dataset lifecycle events.
type EventPublisher interface {
	DatasetRefreshed(ctx context.Context, payload kafka.DatasetRefreshedPayload) error
	ImportFailed(ctx context.Context, payload kafka.ImportFailedPayload) error
}

// ImportReport summarizes one import.
type ImportReport struct {
	Version    string     `json:"version"`
	Source     string     `json:"source"`
	Adapter    string     `json:"adapter"`
	Stats      ParseStats `json:"stats"`
	Activated  bool       `json:"activated"`
	Duration   time.Duration
	ObsCount   int `json:"observationCount"`
	YearsCount int `json:"yearsCount"`
}

// Loader runs imports end to end: fetch, parse, build, persist, activate,
// invalidate, announce. Any of saver, invalidator and publisher may be nil
// for reduced deployments (e.g. the one-shot CLI importer).
type Loader struct {
	fetcher     ObjectFetcher
	saver       DatasetSaver
	store       *Store
	invalidator ResultInvalidator
	publisher   EventPublisher
	log         logging.Logger
	metrics     *prometheus.AppMetrics
}

// NewLoader wires an import pipeline around the given store.
func NewLoader(fetcher ObjectFetcher, saver DatasetSaver, store *Store, invalidator ResultInvalidator, publisher EventPublisher, log logging.Logger, metrics *prometheus.AppMetrics) *Loader {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = prometheus.NewAppMetrics(prometheus.NewNopCollector())
	}
	return &Loader{
		fetcher:     fetcher,
		saver:       saver,
		store:       store,
		invalidator: invalidator,
		publisher:   publisher,
		log:         log.Named("ingest"),
		metrics:     metrics,
	}
}

// ImportObject fetches objectName from the object store and imports it.
func (l *Loader) ImportObject(ctx context.Context, objectName string) (*ImportReport, error) {
	if l.fetcher == nil {
		return nil, errors.New(errors.ErrCodeImportFailed, "no object fetcher configured")
	}
	data, err := l.fetcher.Fetch(ctx, objectName)
	if err != nil {
		l.reportFailure(ctx, objectName, err)
		return nil, err
	}
	return l.ImportBytes(ctx, objectName, data)
}

// ImportFile imports a local CSV file, used by the CLI and the spool
// watcher.
func (l *Loader) ImportFile(ctx context.Context, path string) (*ImportReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		wrapped := errors.Wrap(err, errors.ErrCodeSourceFetchFailed, "reading source file failed").WithDetail(path)
		l.reportFailure(ctx, path, wrapped)
		return nil, wrapped
	}
	return l.ImportBytes(ctx, filepath.Base(path), data)
}

// ImportBytes runs the import pipeline on raw CSV content. source names the
// origin for logs, metrics and events.
func (l *Loader) ImportBytes(ctx context.Context, source string, data []byte) (*ImportReport, error) {
	started := time.Now()
	gen := l.store.Begin()

	report, err := l.runImport(ctx, source, data, gen)
	l.metrics.ImportDuration.WithLabelValues(source).Observe(time.Since(started).Seconds())
	if err != nil {
		l.metrics.ImportsTotal.WithLabelValues(source, "error").Inc()
		l.reportFailure(ctx, source, err)
		return nil, err
	}
	report.Duration = time.Since(started)

	if !report.Activated {
		l.metrics.ImportsTotal.WithLabelValues(source, "superseded").Inc()
		l.log.Warn("import superseded by a newer load, result discarded",
			logging.String("source", source),
			logging.String("version", report.Version),
		)
		return report, nil
	}

	l.metrics.ImportsTotal.WithLabelValues(source, "ok").Inc()
	return report, nil
}

func (l *Loader) runImport(ctx context.Context, source string, data []byte, gen uint64) (*ImportReport, error) {
	records, err := ReadCSV(data)
	if err != nil {
		return nil, err
	}
	adapter, err := DetectAdapter(records)
	if err != nil {
		return nil, err
	}

	obs, stats, err := adapter.Parse(records)
	if err != nil {
		return nil, err
	}
	if len(obs) == 0 {
		return nil, errors.New(errors.ErrCodeDatasetEmpty, "source contains no usable observations").WithDetail(source)
	}

	l.metrics.ImportRowsTotal.WithLabelValues(source).Add(float64(stats.Accepted))
	l.metrics.ImportRowsSkipped.WithLabelValues(source, "unparseable").Add(float64(stats.Skipped))

	version := uuid.NewString()
	ds := observation.NewDataset(version, source, obs, l.log)

	if l.saver != nil {
		if err := l.saver.Save(ctx, ds); err != nil {
			return nil, err
		}
	}

	report := &ImportReport{
		Version:    version,
		Source:     source,
		Adapter:    adapter.Name(),
		Stats:      stats,
		ObsCount:   ds.Len(),
		YearsCount: len(ds.Years()),
	}

	// Last request wins: if a newer import began while this one was being
	// parsed or persisted, its result must not be activated.
	if !l.store.Activate(gen, ds) {
		return report, nil
	}
	report.Activated = true

	l.metrics.DatasetObservations.WithLabelValues(source).Set(float64(ds.Len()))

	if l.invalidator != nil {
		if n, err := l.invalidator.DeleteByPrefix(ctx, "ranking:"); err != nil {
			l.log.Warn("invalidating memoized results failed", logging.Err(err))
		} else if n > 0 {
			l.log.Debug("memoized results invalidated", logging.Int64("keys", n))
		}
	}

	if l.publisher != nil {
		payload := kafka.DatasetRefreshedPayload{
			Version:          version,
			Source:           source,
			ObservationCount: ds.Len(),
			Years:            ds.Years(),
			LoadedAt:         ds.LoadedAt,
		}
		if err := l.publisher.DatasetRefreshed(ctx, payload); err != nil {
			l.log.Warn("publishing dataset event failed", logging.Err(err))
		}
	}

	l.log.Info("dataset imported",
		logging.String("source", source),
		logging.String("adapter", adapter.Name()),
		logging.String("version", version),
		logging.Int("observations", ds.Len()),
		logging.Int("skipped", stats.Skipped),
	)
	return report, nil
}

func (l *Loader) reportFailure(ctx context.Context, source string, cause error) {
	l.log.Error("import failed", logging.String("source", source), logging.Err(cause))
	if l.publisher == nil {
		return
	}
	payload := kafka.ImportFailedPayload{
		Source:   source,
		Reason:   cause.Error(),
		FailedAt: time.Now().UTC(),
	}
	if err := l.publisher.ImportFailed(ctx, payload); err != nil {
		l.log.Warn("publishing failure event failed", logging.Err(err))
	}
}
