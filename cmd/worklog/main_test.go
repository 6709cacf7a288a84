package main

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/subcommands"
	"github.com/nao1215/worklog"
	"github.com/nao1215/worklog/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func extract(rows ...[3]string) string {
	names := make([]string, model.FieldCount)
	for i, f := range model.Fields() {
		names[i] = f.Column()
	}
	lines := []string{strings.Join(names, ";")}
	for _, r := range rows {
		fields := make([]string, model.FieldCount)
		fields[model.FieldRecordID] = "id"
		fields[model.FieldEmployeeName] = r[0]
		fields[model.FieldEmployeeGroup] = r[1]
		fields[model.FieldDuration] = r[2]
		fields[model.FieldWorkDate] = "15.01.2024"
		lines = append(lines, strings.Join(fields, ";"))
	}
	return strings.Join(lines, "\r\n") + "\r\n"
}

func teamPipeline(t *testing.T) *worklog.Pipeline {
	t.Helper()
	p, err := worklog.NewPipeline()
	require.NoError(t, err)
	_, err = p.Import(context.Background(), "team.csv", extract(
		[3]string{"Anna", "IT", "1,5"},
		[3]string{"Anna", "IT", "2,5"},
		[3]string{"Bernd", "Sales", "8"},
		[3]string{"Clara", "Sales", "0,5"},
	))
	require.NoError(t, err)
	return p
}

func TestCategoryFlag(t *testing.T) {
	t.Parallel()

	c := categoryFlag{}
	require.NoError(t, c.Set("employee_group=IT,Sales"))
	require.NoError(t, c.Set("Employee=Anna"))
	assert.Equal(t, []string{"IT", "Sales"}, c["employee_group"])
	assert.Equal(t, []string{"Anna"}, c["employee"])
	assert.Equal(t, "employee=Anna employee_group=IT,Sales", c.String())

	assert.Error(t, c.Set("employee"))
	assert.Error(t, c.Set("=x"))
	assert.ErrorIs(t, c.Set("salary=1"), model.ErrUnknownDimension)
}

func TestQueryFlags_Apply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		want    []string
		wantErr error
	}{
		{name: "no flags keeps first-seen order", want: []string{"Anna", "Bernd", "Clara"}},
		{name: "sort hours", args: []string{"-sort", "hours"}, want: []string{"Bernd", "Anna", "Clara"}},
		{name: "sort hours reversed", args: []string{"-sort", "hours", "-reverse"}, want: []string{"Clara", "Anna", "Bernd"}},
		{name: "where", args: []string{"-where", "employee_group=Sales", "-sort", "employee"}, want: []string{"Bernd", "Clara"}},
		{name: "search", args: []string{"-search", "CLA"}, want: []string{"Clara"}},
		{name: "date range", args: []string{"-from", "01/02/2024"}, want: []string{}},
		{name: "bad date", args: []string{"-to", "2024"}, wantErr: worklog.ErrInvalidFilterBound},
		{name: "bad column", args: []string{"-sort", "salary"}, wantErr: worklog.ErrUnknownColumn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var q queryFlags
			f := flag.NewFlagSet("test", flag.ContinueOnError)
			q.setFlags(f)
			require.NoError(t, f.Parse(tt.args))

			p := teamPipeline(t)
			err := q.apply(p)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			got := []string{}
			for _, row := range p.Results() {
				got = append(got, row.Value(model.DimensionEmployee))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteReport(t *testing.T) {
	t.Parallel()

	p := teamPipeline(t)
	p.ClickSort(model.ColumnHours)

	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, p, 2))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "employee"))
	assert.Contains(t, lines[1], "Bernd")
	assert.Contains(t, lines[1], "8.00")
	assert.Contains(t, lines[2], "Anna")
	assert.Equal(t, "2 of 3 groups, 4 of 4 rows, 12.50 hours", lines[4])
}

func run(t *testing.T, cmd subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	f := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(f)
	require.NoError(t, f.Parse(args))
	return cmd.Execute(context.Background(), f)
}

func TestCommands_ThroughCache(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("WORKLOG_CACHE_PATH", filepath.Join(dir, "cache.db"))
	t.Setenv("WORKLOG_LOG_LEVEL", "error")

	input := filepath.Join(dir, "team.csv")
	require.NoError(t, os.WriteFile(input, []byte(extract([3]string{"Anna", "IT", "7,5"})), 0o600))

	assert.Equal(t, subcommands.ExitUsageError, run(t, &importCmd{}))
	assert.Equal(t, subcommands.ExitSuccess, run(t, &importCmd{}, "-q", input))

	// no paths: restored from the cache
	assert.Equal(t, subcommands.ExitSuccess, run(t, &reportCmd{}, "-top", "5"))

	output := filepath.Join(dir, "out")
	assert.Equal(t, subcommands.ExitSuccess, run(t, &exportCmd{}, "-o", output, "-format", "tsv"))
	data, err := os.ReadFile(output + ".tsv")
	require.NoError(t, err)
	assert.Contains(t, string(data), "Anna\t")

	assert.Equal(t, subcommands.ExitUsageError, run(t, &exportCmd{}))
	assert.Equal(t, subcommands.ExitUsageError, run(t, &exportCmd{}, "-o", output, "-format", "pdf"))

	assert.Equal(t, subcommands.ExitSuccess, run(t, &cacheClearCmd{}))
	assert.Equal(t, subcommands.ExitSuccess, run(t, &reportCmd{}), "an empty cache gives an empty report")
}

func TestCacheClear_WithoutCache(t *testing.T) {
	t.Setenv("WORKLOG_CACHE_PATH", "")
	t.Setenv("WORKLOG_LOG_LEVEL", "error")

	assert.Equal(t, subcommands.ExitUsageError, run(t, &cacheClearCmd{}))
}
