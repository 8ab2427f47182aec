package cli

import (
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turtacn/RD-Observatory/internal/application/ingest"
	"github.com/turtacn/RD-Observatory/internal/infrastructure/database/postgres"
	"github.com/turtacn/RD-Observatory/internal/infrastructure/database/redis"
	"github.com/turtacn/RD-Observatory/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/RD-Observatory/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/RD-Observatory/internal/infrastructure/storage/minio"
	"github.com/turtacn/RD-Observatory/pkg/errors"
)

// NewImportCmd builds the one-shot dataset importer.
func NewImportCmd(opts *RootOptions) *cobra.Command {
	var (
		objectName string
		dryRun     bool
		watch      bool
	)

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a source CSV into a new dataset version",
		Long:  "import parses a source table (local file or --object from the\nconfigured bucket), persists it as a new dataset version, invalidates\nmemoized results and announces the refresh. With --dry-run the file is\nonly parsed and reported; with --watch the configured spool directory\nis imported continuously instead.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && objectName == "" && !watch {
				return errors.InvalidParam("a file argument, --object or --watch is required")
			}

			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			metrics := prometheus.NewAppMetrics(prometheus.NewNopCollector())

			store := ingest.NewStore()
			var loader *ingest.Loader
			if dryRun {
				loader = ingest.NewLoader(nil, nil, store, nil, nil, log, metrics)
			} else {
				dbURL := postgres.ConnectionURL(cfg.Database)
				if err := postgres.RunMigrations(dbURL, "file://"+cfg.Database.MigrationPath); err != nil {
					return err
				}
				pool, err := postgres.NewPool(ctx, cfg.Database, log)
				if err != nil {
					return err
				}
				defer pool.Close()

				redisClient, err := redis.NewClient(ctx, cfg.Redis, log)
				if err != nil {
					return err
				}
				defer redisClient.Close()
				cache := redis.NewCache(redisClient, log, redis.WithPrefix(cfg.Redis.KeyPrefix))

				producer := kafka.NewProducer(cfg.Kafka, log, metrics)
				defer producer.Close()

				var fetcher ingest.ObjectFetcher
				if objectName != "" {
					object, err := minio.NewClient(ctx, cfg.MinIO, log, metrics)
					if err != nil {
						return err
					}
					fetcher = object
				}
				loader = ingest.NewLoader(fetcher, postgres.NewDatasetRepository(pool, log, metrics), store, cache, producer, log, metrics)
			}

			if watch {
				if cfg.Ingest.SpoolDir == "" {
					return errors.InvalidParam("--watch requires ingest.spool_dir to be configured")
				}
				wctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
				defer stop()
				err := ingest.NewWatcher(loader, log).Watch(wctx, cfg.Ingest.SpoolDir)
				if wctx.Err() != nil {
					return nil
				}
				return err
			}

			var report *ingest.ImportReport
			if objectName != "" {
				report, err = loader.ImportObject(ctx, objectName)
			} else {
				report, err = loader.ImportFile(ctx, args[0])
			}
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
			if dryRun {
				fmt.Fprintln(cmd.OutOrStdout(), "dry run: nothing persisted")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&objectName, "object", "", "import this object from the configured bucket instead of a local file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and report without persisting or announcing")
	cmd.Flags().BoolVar(&watch, "watch", false, "watch the configured spool directory and import continuously")
	return cmd
}
