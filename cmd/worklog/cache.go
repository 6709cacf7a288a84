package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

// cacheClearCmd empties the row cache.
type cacheClearCmd struct{}

func (*cacheClearCmd) Name() string     { return "cache-clear" }
func (*cacheClearCmd) Synopsis() string { return "remove the cached rows" }
func (*cacheClearCmd) Usage() string {
	return `worklog cache-clear

  Empties the cache at WORKLOG_CACHE_PATH.
`
}

func (*cacheClearCmd) SetFlags(*flag.FlagSet) {}

func (*cacheClearCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := loadApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.close()

	if a.store == nil {
		fmt.Fprintln(os.Stderr, "WORKLOG_CACHE_PATH is not set")
		return subcommands.ExitUsageError
	}
	if err := a.store.Clear(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stdout, "cleared %s\n", a.cfg.CachePath)
	return subcommands.ExitSuccess
}
