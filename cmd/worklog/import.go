package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"
	"github.com/nao1215/worklog/domain/model"
)

// importCmd imports extracts into the cache.
type importCmd struct {
	quiet bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import extracts and store them in the cache" }
func (*importCmd) Usage() string {
	return `worklog import [-q] <path>...

  Imports every extract found at the given files or directories and
  prints the import statistics of each run. With WORKLOG_CACHE_PATH set
  the rows are stored for later reports.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.quiet, "q", false, "Do not report progress")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "at least one extract path is required")
		return subcommands.ExitUsageError
	}

	a, err := loadApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.close()

	var progress func(model.Progress)
	if !c.quiet {
		progress = func(p model.Progress) {
			fmt.Fprintf(os.Stderr, "\r%5.1f%% (%d/%d rows, eta %s)", p.Percent(), p.Processed, p.Total, p.ETA().Round(100*time.Millisecond))
		}
	}

	p, err := a.open(ctx, f.Args(), progress)
	if !c.quiet {
		fmt.Fprintln(os.Stderr)
	}
	if p != nil {
		printStats(os.Stdout, p.Stats())
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	counts := p.Counts()
	fmt.Fprintf(os.Stdout, "%d rows in %d groups\n", counts.Raw, counts.Groups)
	return subcommands.ExitSuccess
}
