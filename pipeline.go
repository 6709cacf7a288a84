package worklog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/nao1215/worklog/domain/model"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

// Cache persists the raw row store between sessions.
type Cache interface {
	// Put replaces the cached rows.
	Put(ctx context.Context, rows []model.RawRow) error
	// Get returns the cached rows. found is false when nothing is cached.
	Get(ctx context.Context) (rows []model.RawRow, found bool, err error)
	// Clear removes the cached rows.
	Clear(ctx context.Context) error
}

// Counts are the sizes of every stage output.
type Counts struct {
	Raw      int `json:"raw"`
	Filtered int `json:"filtered"`
	Groups   int `json:"groups"`
	Refined  int `json:"refined"`
}

// View is what a grid renders: the visible slice of the sorted result and
// the figures around it.
type View struct {
	Rows       []model.AggregateRow
	Window     model.ViewWindow
	Counts     Counts
	TotalHours decimal.Decimal
	Sort       model.SortState
	Term       string
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*pipelineConfig)

type pipelineConfig struct {
	cache        Cache
	logger       *slog.Logger
	settings     model.Settings
	locale       language.Tag
	rowHeight    int
	viewportRows int
	pagerOpts    []PagerOption
	importOpts   []ImportOption
}

// WithCache persists the raw store after every successful import. A
// Builder writes it once after all of its sources were imported.
func WithCache(c Cache) PipelineOption {
	return func(cfg *pipelineConfig) {
		cfg.cache = c
	}
}

// WithLogger sets the logger of the pipeline and its import runs.
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(cfg *pipelineConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithSettings sets the display settings.
func WithSettings(settings model.Settings) PipelineOption {
	return func(cfg *pipelineConfig) {
		cfg.settings = settings
	}
}

// WithLocale sets the collation language of the sort.
func WithLocale(tag language.Tag) PipelineOption {
	return func(cfg *pipelineConfig) {
		cfg.locale = tag
	}
}

// WithViewport sets the row height in pixels and the visible row count.
func WithViewport(rowHeight, viewportRows int, opts ...PagerOption) PipelineOption {
	return func(cfg *pipelineConfig) {
		cfg.rowHeight = rowHeight
		cfg.viewportRows = viewportRows
		cfg.pagerOpts = append(cfg.pagerOpts, opts...)
	}
}

// WithImportOptions adds options applied to every import run.
func WithImportOptions(opts ...ImportOption) PipelineOption {
	return func(cfg *pipelineConfig) {
		cfg.importOpts = append(cfg.importOpts, opts...)
	}
}

// Pipeline owns every stage output of the chain
//
//	raw store -> filtered -> baseline -> refined -> sorted -> window
//
// and recomputes the downstream stages whenever an input changes. Each
// stage produces a new slice; a slice handed out is never modified
// afterwards. A Pipeline has a single owner and is not safe for
// concurrent use.
type Pipeline struct {
	raw      []model.RawRow
	runs     []model.ImportStats
	criteria model.FilterCriteria
	filtered []model.RawRow
	baseline []model.AggregateRow
	sorted   []model.AggregateRow
	refined  []model.AggregateRow
	term     string
	order    model.SortState
	offset   int

	sorter     *Sorter
	searcher   *Searcher
	formatter  MeasureFormatter
	pager      *Pager
	cache      Cache
	logger     *slog.Logger
	settings   model.Settings
	importOpts []ImportOption
}

// NewPipeline returns an empty pipeline.
func NewPipeline(opts ...PipelineOption) (*Pipeline, error) {
	cfg := pipelineConfig{
		logger:       slog.New(slog.DiscardHandler),
		settings:     model.DefaultSettings(),
		locale:       language.Und,
		rowHeight:    DefaultRowHeight,
		viewportRows: DefaultViewportRows,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	pager, err := NewPager(cfg.rowHeight, cfg.viewportRows, cfg.pagerOpts...)
	if err != nil {
		return nil, err
	}
	formatter := NewMeasureFormatter(cfg.settings)
	p := &Pipeline{
		sorter:     NewSorter(cfg.locale),
		searcher:   NewSearcher(formatter),
		formatter:  formatter,
		pager:      pager,
		cache:      cfg.cache,
		logger:     cfg.logger,
		settings:   cfg.settings,
		importOpts: cfg.importOpts,
	}
	p.refilter()
	return p, nil
}

// Import runs one import over text and appends the accepted rows to the
// raw store. After a terminal failure the rows accepted before it are
// kept and the error is returned together with the stats of the run; use
// Reset to discard them. The cache is only written after a clean run.
func (p *Pipeline) Import(ctx context.Context, name, text string, opts ...ImportOption) (model.ImportStats, error) {
	stats, err := p.importText(ctx, name, text, opts...)
	if err != nil {
		return stats, err
	}
	p.store(ctx)
	return stats, nil
}

// importText runs one import and appends its rows without touching the cache.
func (p *Pipeline) importText(ctx context.Context, name, text string, opts ...ImportOption) (model.ImportStats, error) {
	all := make([]ImportOption, 0, len(p.importOpts)+len(opts)+2)
	all = append(all, WithImportLogger(p.logger), WithSourceName(name))
	all = append(all, p.importOpts...)
	all = append(all, opts...)

	result, err := NewImporter(text, all...).Run(ctx)
	p.raw = append(slices.Clip(p.raw), result.Rows...)
	p.runs = append(p.runs, result.Stats)
	p.refilter()
	return result.Stats, err
}

// ImportReader reads a document from r and imports it. name is used for
// decompression and in error messages.
func (p *Pipeline) ImportReader(ctx context.Context, r io.Reader, name string, opts ...ImportOption) (model.ImportStats, error) {
	text, err := readerSource(r, name).read(ctx)
	if err != nil {
		return model.ImportStats{}, err
	}
	return p.Import(ctx, SourceName(name), text, opts...)
}

// ImportFile reads and imports the extract at path.
func (p *Pipeline) ImportFile(ctx context.Context, path string, opts ...ImportOption) (model.ImportStats, error) {
	text, err := pathSource(path).read(ctx)
	if err != nil {
		return model.ImportStats{}, err
	}
	return p.Import(ctx, SourceName(path), text, opts...)
}

func (p *Pipeline) store(ctx context.Context) {
	if p.cache == nil {
		return
	}
	if err := p.cache.Put(ctx, p.raw); err != nil {
		p.logger.Warn("failed to write cache", slog.String("error", err.Error()))
	}
}

// Restore replaces the raw store with the cached rows. It reports whether
// the cache held anything.
func (p *Pipeline) Restore(ctx context.Context) (bool, error) {
	if p.cache == nil {
		return false, nil
	}
	rows, found, err := p.cache.Get(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to restore cached rows: %w", err)
	}
	if !found {
		return false, nil
	}
	p.raw = rows
	p.refilter()
	p.logger.Info("restored rows from cache", slog.Int("rows", len(rows)))
	return true, nil
}

// ClearCache empties the cache without touching the loaded rows.
func (p *Pipeline) ClearCache(ctx context.Context) error {
	if p.cache == nil {
		return nil
	}
	return p.cache.Clear(ctx)
}

// Reset discards every row and run. Filter, search and sort settings stay.
func (p *Pipeline) Reset() {
	p.raw = nil
	p.runs = nil
	p.offset = 0
	p.refilter()
}

// SetFilter replaces the filter criteria and recomputes everything
// downstream of the raw store.
func (p *Pipeline) SetFilter(criteria model.FilterCriteria) {
	p.criteria = criteria
	p.refilter()
}

// Search replaces the search term. A blank term shows the whole baseline.
func (p *Pipeline) Search(term string) {
	p.term = term
	p.refine()
}

// ClickSort applies a click on a column header.
func (p *Pipeline) ClickSort(col model.Column) model.SortState {
	p.order = p.order.Toggle(col)
	p.resort()
	return p.order
}

// Scroll moves the viewport to a pixel offset and reports whether the
// rendered window changed.
func (p *Pipeline) Scroll(offset int) (model.ViewWindow, bool) {
	p.offset = max(0, offset)
	return p.pager.Update(len(p.sorted), p.offset)
}

// View returns the rows inside the current window.
func (p *Pipeline) View() View {
	w, _ := p.pager.Update(len(p.sorted), p.offset)
	return View{
		Rows:       p.sorted[w.Start:w.End],
		Window:     w,
		Counts:     p.Counts(),
		TotalHours: TotalHours(p.refined),
		Sort:       p.order,
		Term:       p.term,
	}
}

// Counts returns the size of every stage output.
func (p *Pipeline) Counts() Counts {
	return Counts{
		Raw:      len(p.raw),
		Filtered: len(p.filtered),
		Groups:   len(p.baseline),
		Refined:  len(p.refined),
	}
}

// Stats returns the statistics of every import run, oldest first.
func (p *Pipeline) Stats() []model.ImportStats {
	return slices.Clone(p.runs)
}

// Rows returns the raw store.
func (p *Pipeline) Rows() []model.RawRow { return p.raw }

// Filtered returns the rows that pass the current criteria.
func (p *Pipeline) Filtered() []model.RawRow { return p.filtered }

// Baseline returns the aggregate of the filtered rows in first-seen order.
func (p *Pipeline) Baseline() []model.AggregateRow { return p.baseline }

// Results returns the refined and sorted groups.
func (p *Pipeline) Results() []model.AggregateRow { return p.sorted }

// Criteria returns the active filter criteria.
func (p *Pipeline) Criteria() model.FilterCriteria { return p.criteria }

// Formatter returns the display formatter of hours.
func (p *Pipeline) Formatter() MeasureFormatter { return p.formatter }

// Settings returns the display settings.
func (p *Pipeline) Settings() model.Settings { return p.settings }

func (p *Pipeline) refilter() {
	p.filtered = Filter(p.raw, p.criteria)
	p.baseline = Aggregate(p.filtered)
	p.refine()
}

func (p *Pipeline) refine() {
	p.refined = p.searcher.Refine(p.baseline, p.term)
	p.resort()
}

func (p *Pipeline) resort() {
	p.sorted = p.sorter.Sort(p.refined, p.order)
	p.pager.Reset()
}
