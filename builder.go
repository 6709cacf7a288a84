package worklog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"slices"

	"github.com/nao1215/worklog/domain/model"
	"golang.org/x/text/language"
)

// Builder collects extract sources and options for a Pipeline.
// Use NewBuilder to create a new instance, then chain method calls to
// configure it.
//
// The typical usage pattern is:
//
//	validated, err := worklog.NewBuilder().
//		AddPath("exports/").
//		WithCache(store).
//		Build(ctx)
//	if err != nil {
//		return err
//	}
//	p, err := validated.Open(ctx)
type Builder struct {
	paths       []string
	readers     []source
	filesystems []fs.FS

	batchSize    int
	rowHeight    int
	viewportRows int
	minColumns   int
	logCap       int
	cache        Cache
	logger       *slog.Logger
	settings     model.Settings
	locale       language.Tag
	memory       *MemoryLimit
	memWarning   float64
	progress     func(model.Progress)

	// collected during Build
	collectedPaths []string
	fsSources      []source
	built          bool
}

// NewBuilder creates a builder with default options and no sources.
func NewBuilder() *Builder {
	return &Builder{
		batchSize:    DefaultRowsPerBatch,
		rowHeight:    DefaultRowHeight,
		viewportRows: DefaultViewportRows,
		minColumns:   DefaultMinColumns,
		logCap:       DefaultErrorLogCap,
		logger:       slog.New(slog.DiscardHandler),
		settings:     model.DefaultSettings(),
		locale:       language.Und,
	}
}

// AddPath adds an extract file or a directory of extracts. Directories
// are searched recursively for .csv, .txt and .dat files and their
// compressed variants.
func (b *Builder) AddPath(path string) *Builder {
	b.paths = append(b.paths, path)
	return b
}

// AddPaths adds several paths at once, following the rules of AddPath.
func (b *Builder) AddPaths(paths ...string) *Builder {
	b.paths = append(b.paths, paths...)
	return b
}

// AddReader adds an extract read from r. name identifies the source in
// logs and decides decompression, e.g. "march.csv.gz".
func (b *Builder) AddReader(r io.Reader, name string) *Builder {
	b.readers = append(b.readers, readerSource(r, name))
	return b
}

// AddFS adds every extract found in filesystem.
func (b *Builder) AddFS(filesystem fs.FS) *Builder {
	b.filesystems = append(b.filesystems, filesystem)
	return b
}

// WithBatchSize sets the number of logical rows handled per import step.
func (b *Builder) WithBatchSize(size int) *Builder {
	b.batchSize = size
	return b
}

// WithMinColumns raises the minimum field count of an accepted row.
func (b *Builder) WithMinColumns(n int) *Builder {
	b.minColumns = n
	return b
}

// WithErrorLogCap sets how many rejection records each run keeps.
func (b *Builder) WithErrorLogCap(n int) *Builder {
	b.logCap = n
	return b
}

// WithCache sets the cache the pipeline restores from and writes to.
func (b *Builder) WithCache(c Cache) *Builder {
	b.cache = c
	return b
}

// WithLogger sets the logger of the pipeline.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// WithSettings sets the display settings.
func (b *Builder) WithSettings(settings model.Settings) *Builder {
	b.settings = settings
	return b
}

// WithLocale sets the collation language of the sort.
func (b *Builder) WithLocale(tag language.Tag) *Builder {
	b.locale = tag
	return b
}

// WithMemoryLimit stops imports once the heap grows past maxMB megabytes.
// Zero or less disables the guard.
func (b *Builder) WithMemoryLimit(maxMB int64) *Builder {
	if maxMB <= 0 {
		b.memory = nil
		return b
	}
	b.memory = NewMemoryLimit(maxMB)
	return b
}

// WithMemoryWarning sets the share of the memory limit, in (0, 1], at
// which imports start logging warnings. It has no effect without a limit.
func (b *Builder) WithMemoryWarning(threshold float64) *Builder {
	b.memWarning = threshold
	return b
}

// WithProgress registers a callback invoked after every import batch.
func (b *Builder) WithProgress(fn func(model.Progress)) *Builder {
	b.progress = fn
	return b
}

// WithViewport sets the row height in pixels and the visible row count.
func (b *Builder) WithViewport(rowHeight, viewportRows int) *Builder {
	b.rowHeight = rowHeight
	b.viewportRows = viewportRows
	return b
}

// Build validates the options and every source. Directories are expanded
// and filesystems are scanned here, so Open only has to read. A builder
// without sources is valid when it has a cache to restore from.
func (b *Builder) Build(_ context.Context) (*Builder, error) {
	v := newValidator()
	if err := v.validateOptions(b.batchSize, b.rowHeight, b.viewportRows); err != nil {
		return nil, err
	}
	for _, r := range b.readers {
		if err := v.validateReader(r); err != nil {
			return nil, err
		}
	}

	fp := newFileProcessor()
	collected, err := fp.collectFilesFromPaths(b.paths)
	if err != nil {
		return nil, err
	}
	fsSources, err := fp.processFilesystems(b.filesystems)
	if err != nil {
		return nil, err
	}
	if err := v.validateFinalState(collected, slices.Concat(b.readers, fsSources), b.paths, b.cache != nil); err != nil {
		closeSources(fsSources)
		return nil, err
	}

	b.collectedPaths = collected
	b.fsSources = fsSources
	b.built = true
	return b, nil
}

// Open creates the pipeline and imports every source in the order it was
// added: paths first, then readers, then filesystems. Each source is its
// own import run. Without sources the pipeline is restored from the cache.
//
// An import failure stops Open. The pipeline is still returned together
// with the error so the rows imported so far remain available. The cache
// is written once, after every source was imported cleanly.
func (b *Builder) Open(ctx context.Context) (*Pipeline, error) {
	if !b.built {
		return nil, errors.New("worklog: no validated inputs, did you call Build()?")
	}

	p, err := NewPipeline(b.pipelineOptions()...)
	if err != nil {
		return nil, err
	}

	sources := make([]source, 0, len(b.collectedPaths)+len(b.readers)+len(b.fsSources))
	for _, path := range b.collectedPaths {
		sources = append(sources, pathSource(path))
	}
	sources = append(sources, b.readers...)
	sources = append(sources, b.fsSources...)

	if len(sources) == 0 {
		if _, err := p.Restore(ctx); err != nil {
			return p, err
		}
		return p, nil
	}

	for i, src := range sources {
		text, err := src.read(ctx)
		if err != nil {
			closeSources(sources[i+1:])
			return p, err
		}
		stats, err := p.importText(ctx, SourceName(src.name), text)
		if err != nil {
			closeSources(sources[i+1:])
			return p, fmt.Errorf("failed to import %s: %w", src.name, err)
		}
		b.logger.Info("source imported",
			slog.String("source", src.name),
			slog.String("summary", stats.Summary()))
	}
	p.store(ctx)
	return p, nil
}

func (b *Builder) pipelineOptions() []PipelineOption {
	importOpts := []ImportOption{
		WithBatchSize(b.batchSize),
		WithMinColumns(b.minColumns),
		WithErrorLogCap(b.logCap),
	}
	if b.memory != nil {
		b.memory.SetWarningThreshold(b.memWarning)
		importOpts = append(importOpts, WithMemoryLimit(b.memory))
	}
	if b.progress != nil {
		importOpts = append(importOpts, WithProgress(b.progress))
	}
	return []PipelineOption{
		WithLogger(b.logger),
		WithSettings(b.settings),
		WithLocale(b.locale),
		WithViewport(b.rowHeight, b.viewportRows),
		WithCache(b.cache),
		WithImportOptions(importOpts...),
	}
}
