package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/nao1215/worklog/domain/model"
)

// exportCmd writes the aggregate grid to a file.
type exportCmd struct {
	query       queryFlags
	output      string
	format      string
	compression string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export aggregated hours to a file" }
func (*exportCmd) Usage() string {
	return `worklog export -o <path> [-format csv|tsv|ltsv|parquet|xlsx] [-compression gz|xz|zst] [query flags] [<path>...]

  Writes the filtered, searched and sorted groups to a file. The format
  extension is appended to -o unless present.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	c.query.setFlags(f)
	f.StringVar(&c.output, "o", "", "Output path")
	f.StringVar(&c.format, "format", "csv", "Output format (csv, tsv, ltsv, parquet, xlsx)")
	f.StringVar(&c.compression, "compression", "", "Output compression (gz, xz, zst)")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.output == "" {
		fmt.Fprintln(os.Stderr, "-o is required")
		return subcommands.ExitUsageError
	}
	format, err := model.ParseOutputFormat(c.format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	compression, err := model.ParseCompressionType(c.compression)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
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

	opts := model.NewExportOptions().WithFormat(format).WithCompression(compression)
	path, err := p.Export(c.output, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stdout, "wrote %d groups to %s\n", len(p.Results()), path)
	return subcommands.ExitSuccess
}
