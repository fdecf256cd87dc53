// Command bdst turns plant records into decision-support risk cards and
// runs the batch, summary, and acceptance tooling around the rule engine.
package main

import (
	"os"

	"github.com/verdantlab/bdst/internal/interfaces/cli"
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
	// cli.Execute already reports the error on stderr.
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
