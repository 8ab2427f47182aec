// Package cli defines the rdobs command tree: the long-running server, the
// one-shot dataset importer and the offline ranking preview.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/RD-Observatory/internal/application/ingest"
	"github.com/turtacn/RD-Observatory/internal/config"
	"github.com/turtacn/RD-Observatory/internal/domain/geo"
	"github.com/turtacn/RD-Observatory/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RD-Observatory/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// RootOptions holds the global flags shared by every subcommand.
type RootOptions struct {
	ConfigPath    string
	ReferencePath string
	LogLevel      string
}

// NewRootCommand builds the rdobs root command with its global flags and
// subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "rdobs",
		Short:   "R&D Observatory — R&D expenditure dashboard service",
		Long:    "rdobs serves the R&D expenditure dashboard API and manages its\ndataset imports: ranked country series, choropleth color scales and\nbilingual tooltips derived from Eurostat-style source tables.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),

		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: env-only configuration)")
	pf.StringVar(&opts.ReferencePath, "reference", "", "supplementary territory reference CSV")
	pf.StringVar(&opts.LogLevel, "log-level", "", "override the configured log level")

	cmd.AddCommand(
		NewServeCmd(opts),
		NewImportCmd(opts),
		NewRankCmd(opts),
	)
	return cmd
}

// loadConfig loads configuration from the --config file when given, from
// RDOBS_* environment variables otherwise.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if opts.ConfigPath != "" {
		cfg, err = config.Load(opts.ConfigPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return nil, err
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	return cfg, nil
}

// newLogger builds the process logger from the loaded configuration.
func newLogger(cfg *config.Config) (logging.Logger, error) {
	return logging.NewLogger(logging.Config{
		Level:            cfg.Log.Level,
		Format:           cfg.Log.Format,
		OutputPaths:      cfg.Log.OutputPaths,
		ErrorOutputPaths: cfg.Log.ErrorOutputPaths,
	})
}

// loadReference reads the optional supplementary territory list.
func loadReference(opts *RootOptions) ([]geo.ReferenceEntry, error) {
	if opts.ReferencePath == "" {
		return nil, nil
	}
	data, err := os.ReadFile(opts.ReferencePath)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSourceFetchFailed, "reading reference list failed").WithDetail(opts.ReferencePath)
	}
	return ingest.ParseReferenceList(data)
}

// Execute runs the rdobs CLI.
func Execute() error {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(root.ErrOrStderr(), "Error: %s\n", err.Error())
		return err
	}
	return nil
}
