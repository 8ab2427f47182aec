// rdobs is the R&D Observatory command-line entry point: the API server,
// the dataset importer and the offline ranking preview.
package main

import (
	"os"

	"github.com/turtacn/RD-Observatory/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
