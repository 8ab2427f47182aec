// apiserver runs only the dashboard API server, configured entirely from a
// config file or RDOBS_* environment variables. Deployments that want the
// full command tree use cmd/rdobs instead.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/RD-Observatory/internal/application/ingest"
	"github.com/turtacn/RD-Observatory/internal/config"
	"github.com/turtacn/RD-Observatory/internal/domain/geo"
	"github.com/turtacn/RD-Observatory/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RD-Observatory/internal/interfaces/cli"
)

func main() {
	configPath := flag.String("config", "", "config file path (default: env-only configuration)")
	referencePath := flag.String("reference", "", "supplementary territory reference CSV")
	flag.Parse()

	if err := run(*configPath, *referencePath); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, referencePath string) error {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return err
	}

	log, err := logging.NewLogger(logging.Config{
		Level:            cfg.Log.Level,
		Format:           cfg.Log.Format,
		OutputPaths:      cfg.Log.OutputPaths,
		ErrorOutputPaths: cfg.Log.ErrorOutputPaths,
	})
	if err != nil {
		return err
	}

	var reference []geo.ReferenceEntry
	if referencePath != "" {
		data, err := os.ReadFile(referencePath)
		if err != nil {
			return err
		}
		reference, err = ingest.ParseReferenceList(data)
		if err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return cli.RunServer(ctx, cfg, reference, log)
}
