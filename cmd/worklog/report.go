package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/google/subcommands"
	"github.com/nao1215/worklog"
	"github.com/nao1215/worklog/domain/model"
)

// reportCmd prints the top groups of the aggregate grid.
type reportCmd struct {
	query queryFlags
	top   int
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "print aggregated hours" }
func (*reportCmd) Usage() string {
	return `worklog report [-top <n>] [-from <date>] [-to <date>] [-where <dim>=<values>] [-search <text>] [-sort <column> [-reverse]] [<path>...]

  Aggregates hours by employee, project, activity, cost center and
  employee group and prints the first groups. Without paths the rows
  are restored from the cache.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	c.query.setFlags(f)
	f.IntVar(&c.top, "top", 20, "Number of groups to print, 0 for all")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.top < 0 {
		fmt.Fprintln(os.Stderr, "-top must not be negative")
		return subcommands.ExitUsageError
	}

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
	if err := c.query.apply(p); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	if err := writeReport(os.Stdout, p, c.top); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// writeReport renders the first top result groups as an aligned table
// followed by the totals.
func writeReport(w io.Writer, p *worklog.Pipeline, top int) error {
	results := p.Results()
	shown := results
	if top > 0 && len(shown) > top {
		shown = shown[:top]
	}
	format := p.Formatter()

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, col := range model.Columns() {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, col.String())
	}
	fmt.Fprintln(tw)
	for _, row := range shown {
		for _, d := range model.Dimensions() {
			fmt.Fprint(tw, row.Value(d), "\t")
		}
		fmt.Fprint(tw, format.Format(row.Hours), "\t", strconv.Itoa(row.Entries))
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	counts := p.Counts()
	_, err := fmt.Fprintf(w, "\n%d of %d groups, %d of %d rows, %s hours\n",
		len(shown), counts.Refined, counts.Filtered, counts.Raw, format.Format(worklog.TotalHours(p.Results())))
	return err
}
