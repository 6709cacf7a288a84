// Command worklog imports time-tracking extracts and reports, exports or
// serves the aggregated hours.
//
// Configuration is read from WORKLOG_* environment variables, see the
// config package.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

func register(c *subcommands.Commander) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(c.CommandsCommand(), "")

	c.Register(&importCmd{}, "data")
	c.Register(&cacheClearCmd{}, "data")

	c.Register(&reportCmd{}, "output")
	c.Register(&exportCmd{}, "output")
	c.Register(&serveCmd{}, "output")
}
