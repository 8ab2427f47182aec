package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/RD-Observatory/internal/application/dashboard"
	"github.com/turtacn/RD-Observatory/internal/application/geomap"
	"github.com/turtacn/RD-Observatory/internal/application/ingest"
	"github.com/turtacn/RD-Observatory/internal/config"
	"github.com/turtacn/RD-Observatory/internal/domain/geo"
	"github.com/turtacn/RD-Observatory/internal/infrastructure/database/postgres"
	"github.com/turtacn/RD-Observatory/internal/infrastructure/database/redis"
	"github.com/turtacn/RD-Observatory/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/RD-Observatory/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RD-Observatory/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/RD-Observatory/internal/infrastructure/storage/minio"
	interfacehttp "github.com/turtacn/RD-Observatory/internal/interfaces/http"
)

// NewServeCmd builds the long-running server command.
func NewServeCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard API server",
		Long:  "serve starts the HTTP API, loads the latest persisted dataset,\nand watches the spool directory for new source files when one is\nconfigured.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			reference, err := loadReference(opts)
			if err != nil {
				return err
			}

			// With a config file, log-level changes take effect without a
			// restart. Everything else requires one.
			if opts.ConfigPath != "" {
				if lv, ok := log.(logging.LevelSetter); ok {
					config.Watch(opts.ConfigPath, func(next *config.Config) {
						lv.SetLevel(next.Log.Level)
						log.Info("config reloaded", logging.String("log_level", next.Log.Level))
					})
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return RunServer(ctx, cfg, reference, log)
		},
	}
}

// RunServer wires the full service and blocks until ctx is canceled: metrics,
// postgres (with migrations), redis, minio, kafka, the import pipeline and
// the HTTP server.
func RunServer(ctx context.Context, cfg *config.Config, reference []geo.ReferenceEntry, log logging.Logger) error {
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            "rdobs",
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	})
	if err != nil {
		return err
	}
	metrics := prometheus.NewAppMetrics(collector)

	dbURL := postgres.ConnectionURL(cfg.Database)
	if err := postgres.RunMigrations(dbURL, "file://"+cfg.Database.MigrationPath); err != nil {
		return err
	}
	pool, err := postgres.NewPool(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer pool.Close()
	repo := postgres.NewDatasetRepository(pool, log, metrics)

	redisClient, err := redis.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		return err
	}
	defer redisClient.Close()
	cache := redis.NewCache(redisClient, log,
		redis.WithPrefix(cfg.Redis.KeyPrefix),
		redis.WithDefaultTTL(cfg.Redis.DefaultTTL),
	)

	producer := kafka.NewProducer(cfg.Kafka, log, metrics)
	defer producer.Close()

	store := ingest.NewStore()
	if ds, err := repo.LoadLatest(ctx); err == nil {
		store.Activate(store.Begin(), ds)
		log.Info("restored persisted dataset",
			logging.String("version", ds.Version),
			logging.Int("observations", ds.Len()),
		)
	} else {
		log.Warn("no persisted dataset; serving starts after the first import", logging.Err(err))
	}

	// The object store is optional: without credentials the importer only
	// accepts local files and the spool directory.
	loader := ingest.NewLoader(nil, repo, store, cache, producer, log, metrics)
	if cfg.MinIO.AccessKey != "" {
		object, err := minio.NewClient(ctx, cfg.MinIO, log, metrics)
		if err != nil {
			return err
		}
		loader = ingest.NewLoader(object, repo, store, cache, producer, log, metrics)
	}

	resolver := geo.NewResolver(reference)
	pipeline := dashboard.NewService(store, resolver, cache, cfg.Dashboard, log, metrics)
	maps := geomap.NewService(pipeline, resolver, log)

	engine := interfacehttp.NewRouter(cfg.Server, interfacehttp.RouterDeps{
		Pipeline:  pipeline,
		Geomap:    maps,
		Provider:  store,
		CachePing: cache,
		Dashboard: cfg.Dashboard,
		Logger:    log,
		Metrics:   metrics,
		Collector: collector,
	})
	server := interfacehttp.NewServer(cfg.Server, engine, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Run(gctx) })
	if cfg.Ingest.SpoolDir != "" {
		watcher := ingest.NewWatcher(loader, log)
		g.Go(func() error {
			err := watcher.Watch(gctx, cfg.Ingest.SpoolDir)
			if gctx.Err() != nil {
				return nil
			}
			return err
		})
	}

	return g.Wait()
}
