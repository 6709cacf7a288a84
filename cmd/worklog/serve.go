package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"
	"github.com/nao1215/worklog/server"
)

// serveCmd serves the grid API.
type serveCmd struct {
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the grid API over HTTP and websockets" }
func (*serveCmd) Usage() string {
	return `worklog serve [-addr <host:port>] [<path>...]

  Imports the given extracts, or restores the cache, and serves the
  aggregate grid until interrupted.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Listen address (default WORKLOG_ADDR)")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := loadApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.close()

	p, err := a.open(ctx, f.Args(), nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	addr := c.addr
	if addr == "" {
		addr = a.cfg.Addr
	}
	srv := server.New(p,
		server.WithLogger(a.logger),
		server.WithSearchDebounce(a.cfg.SearchDebounce),
		server.WithScrollThrottle(a.cfg.ScrollThrottle))
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
