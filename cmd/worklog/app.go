package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/nao1215/worklog"
	"github.com/nao1215/worklog/cache"
	"github.com/nao1215/worklog/config"
	"github.com/nao1215/worklog/domain/model"
	"github.com/nao1215/worklog/logging"
	"golang.org/x/text/language"
)

// app is the environment shared by the subcommands.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	settings model.Settings
	locale   language.Tag
	store    *cache.SQLite
}

func loadApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	settings, err := config.LoadSettings(cfg.SettingsFile)
	if err != nil {
		return nil, err
	}
	locale, err := cfg.LocaleTag()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, settings: settings, locale: locale}
	if cfg.CachePath != "" {
		if a.store, err = cache.OpenSQLite(ctx, cfg.CachePath); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *app) close() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close cache", slog.String("error", err.Error()))
	}
}

// open builds a pipeline over paths. Without paths the pipeline is
// restored from the cache.
func (a *app) open(ctx context.Context, paths []string, progress func(model.Progress)) (*worklog.Pipeline, error) {
	b := worklog.NewBuilder().
		AddPaths(paths...).
		WithBatchSize(a.cfg.BatchSize).
		WithMinColumns(a.cfg.MinColumns).
		WithErrorLogCap(a.cfg.ErrorLogCap).
		WithMemoryLimit(a.cfg.MemoryLimitMB).
		WithMemoryWarning(a.cfg.MemoryWarning).
		WithViewport(a.cfg.RowHeight, a.cfg.ViewportRows).
		WithLogger(a.logger).
		WithSettings(a.settings).
		WithLocale(a.locale).
		WithProgress(progress)
	if a.store != nil {
		b = b.WithCache(a.store)
	}

	validated, err := b.Build(ctx)
	if err != nil {
		if errors.Is(err, worklog.ErrNoSource) {
			return nil, fmt.Errorf("%w: pass extract paths or set WORKLOG_CACHE_PATH", err)
		}
		return nil, err
	}
	return validated.Open(ctx)
}

// categoryFlag collects repeated -where dimension=value[,value] flags.
type categoryFlag map[string][]string

func (c categoryFlag) String() string {
	parts := make([]string, 0, len(c))
	for k, v := range c {
		parts = append(parts, k+"="+strings.Join(v, ","))
	}
	sort.Strings(parts)
	return strings.Join(parts, " ")
}

func (c categoryFlag) Set(s string) error {
	name, values, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(name) == "" {
		return fmt.Errorf("expected dimension=value[,value], got %q", s)
	}
	if _, err := model.ParseDimension(name); err != nil {
		return err
	}
	name = strings.ToLower(strings.TrimSpace(name))
	c[name] = append(c[name], strings.Split(values, ",")...)
	return nil
}

// queryFlags select and order the groups of a report or export.
type queryFlags struct {
	from    string
	to      string
	search  string
	sortBy  string
	reverse bool
	where   categoryFlag
}

func (q *queryFlags) setFlags(f *flag.FlagSet) {
	q.where = categoryFlag{}
	f.StringVar(&q.from, "from", "", "First work date to include (DD/MM/YYYY or DD.MM.YYYY)")
	f.StringVar(&q.to, "to", "", "Last work date to include (DD/MM/YYYY or DD.MM.YYYY)")
	f.StringVar(&q.search, "search", "", "Keep groups containing this text")
	f.StringVar(&q.sortBy, "sort", "", "Sort column (employee, project, activity, cost_center, employee_group, hours, entries)")
	f.BoolVar(&q.reverse, "reverse", false, "Reverse the default direction of -sort")
	f.Var(q.where, "where", "Restrict a dimension, e.g. -where employee_group=IT,Sales (repeatable)")
}

// apply drives p the way a grid user would: filter, search, then header clicks.
func (q *queryFlags) apply(p *worklog.Pipeline) error {
	criteria, err := model.ParseFilterCriteria(q.from, q.to, q.where)
	if err != nil {
		return err
	}
	p.SetFilter(criteria)
	p.Search(q.search)

	if q.sortBy == "" {
		return nil
	}
	col, err := model.ParseColumn(q.sortBy)
	if err != nil {
		return err
	}
	p.ClickSort(col)
	if q.reverse {
		p.ClickSort(col)
	}
	return nil
}

// printStats writes one summary line per import run.
func printStats(w io.Writer, runs []model.ImportStats) {
	for _, run := range runs {
		fmt.Fprintf(w, "run %s: %s\n", run.RunID, run.Summary())
		for _, rec := range run.Errors {
			fmt.Fprintf(w, "  line %d: %s: %s\n", rec.Line, rec.Type, rec.Message)
		}
		if run.Truncated {
			fmt.Fprintf(w, "  (more rejections not shown)\n")
		}
	}
}
