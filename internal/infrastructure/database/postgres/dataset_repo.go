package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turtacn/RD-Observatory/internal/domain/observation"
	"github.com/turtacn/RD-Observatory/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RD-Observatory/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/RD-Observatory/pkg/errors"
)

// DatasetMeta describes one persisted dataset version.
type DatasetMeta struct {
	Version          string    `json:"version"`
	Source           string    `json:"source"`
	LoadedAt         time.Time `json:"loadedAt"`
	ObservationCount int       `json:"observationCount"`
}

// DatasetRepository persists imported observation sets. Each import is a new
// immutable version; serving always reads the most recent one.
type DatasetRepository struct {
	pool    *pgxpool.Pool
	log     logging.Logger
	metrics *prometheus.AppMetrics
}

// NewDatasetRepository builds the repository.
func NewDatasetRepository(pool *pgxpool.Pool, log logging.Logger, metrics *prometheus.AppMetrics) *DatasetRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = prometheus.NewAppMetrics(prometheus.NewNopCollector())
	}
	return &DatasetRepository{pool: pool, log: log.Named("dataset_repo"), metrics: metrics}
}

// Save stores a dataset version and its observations in one transaction.
// Observations are bulk-loaded with COPY.
func (r *DatasetRepository) Save(ctx context.Context, ds *observation.Dataset) error {
	started := time.Now()
	defer func() {
		r.metrics.DBQueryDuration.WithLabelValues("dataset_save").Observe(time.Since(started).Seconds())
	}()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "starting transaction failed")
	}
	defer tx.Rollback(ctx)

	const insertDataset = `
		INSERT INTO datasets (version, source, loaded_at, observation_count)
		VALUES ($1, $2, $3, $4)`
	if _, err := tx.Exec(ctx, insertDataset, ds.Version, ds.Source, ds.LoadedAt, ds.Len()); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "inserting dataset row failed")
	}

	obs := ds.Observations()
	rows := make([][]interface{}, 0, len(obs))
	for _, o := range obs {
		var value interface{}
		if o.HasValue {
			value = o.Value
		}
		rows = append(rows, []interface{}{ds.Version, o.EntityCode, o.Year, string(o.Sector), value, o.Flag})
	}

	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"observations"},
		[]string{"dataset_version", "entity_code", "year", "sector", "value", "flag"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "bulk-loading observations failed")
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "committing dataset failed")
	}

	r.log.Info("dataset persisted",
		logging.String("version", ds.Version),
		logging.String("source", ds.Source),
		logging.Int("observations", ds.Len()),
	)
	return nil
}

// LoadLatest returns the most recently loaded dataset, rebuilt into its
// in-memory form.
func (r *DatasetRepository) LoadLatest(ctx context.Context) (*observation.Dataset, error) {
	started := time.Now()
	defer func() {
		r.metrics.DBQueryDuration.WithLabelValues("dataset_load").Observe(time.Since(started).Seconds())
	}()

	const latest = `
		SELECT version, source, loaded_at
		FROM datasets
		ORDER BY loaded_at DESC
		LIMIT 1`
	var meta DatasetMeta
	if err := r.pool.QueryRow(ctx, latest).Scan(&meta.Version, &meta.Source, &meta.LoadedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.New(errors.ErrCodeDatasetNotFound, "no dataset has been imported")
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "querying latest dataset failed")
	}

	const selectObs = `
		SELECT entity_code, year, sector, value, flag
		FROM observations
		WHERE dataset_version = $1`
	rows, err := r.pool.Query(ctx, selectObs, meta.Version)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "querying observations failed")
	}
	defer rows.Close()

	var obs []observation.Observation
	for rows.Next() {
		var (
			o      observation.Observation
			sector string
			value  *float64
		)
		if err := rows.Scan(&o.EntityCode, &o.Year, &sector, &value, &o.Flag); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "scanning observation failed")
		}
		o.Sector = observation.Sector(sector)
		if value != nil {
			o.Value = *value
			o.HasValue = true
		}
		obs = append(obs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "reading observations failed")
	}

	return observation.NewDataset(meta.Version, meta.Source, obs, r.log), nil
}

// Versions lists the persisted dataset versions, newest first.
func (r *DatasetRepository) Versions(ctx context.Context, limit int) ([]DatasetMeta, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
		SELECT version, source, loaded_at, observation_count
		FROM datasets
		ORDER BY loaded_at DESC
		LIMIT $1`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "querying dataset versions failed")
	}
	defer rows.Close()

	var metas []DatasetMeta
	for rows.Next() {
		var m DatasetMeta
		if err := rows.Scan(&m.Version, &m.Source, &m.LoadedAt, &m.ObservationCount); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "scanning dataset version failed")
		}
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

// Prune deletes all but the newest keep versions. Observations cascade.
func (r *DatasetRepository) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 1 {
		return 0, errors.Newf(errors.ErrCodeBadRequest, "keep must be >= 1, got %d", keep)
	}
	const q = `
		DELETE FROM datasets
		WHERE version NOT IN (
			SELECT version FROM datasets ORDER BY loaded_at DESC LIMIT $1
		)`
	tag, err := r.pool.Exec(ctx, q, keep)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "pruning datasets failed")
	}
	return tag.RowsAffected(), nil
}
