package worklog

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nao1215/worklog/domain/model"
)

// Cursor is the continuation of an import run.
type Cursor struct {
	// Next is the index of the next logical row to classify. It equals the
	// number of rows processed so far, header included.
	Next int
	// Batch is the number of completed batches.
	Batch int
}

// ImportResult is the outcome of an import run: the raw row store and the
// statistics of the run. After a terminal failure it holds the rows that
// were accepted before the failure.
type ImportResult struct {
	Rows  []model.RawRow
	Stats model.ImportStats
}

// ImportOption configures an Importer.
type ImportOption func(*Importer)

// WithBatchSize sets the number of logical rows handled per step.
func WithBatchSize(size int) ImportOption {
	return func(im *Importer) {
		im.batchSize = NewBatchSize(size)
	}
}

// WithMinColumns raises the minimum field count of an accepted row.
// Values below the catalog minimum are ignored.
func WithMinColumns(n int) ImportOption {
	return func(im *Importer) {
		if n >= model.MinColumnCount {
			im.minColumns = n
		}
	}
}

// WithErrorLogCap sets how many rejection records are kept.
func WithErrorLogCap(n int) ImportOption {
	return func(im *Importer) {
		if n >= 0 {
			im.logCap = n
		}
	}
}

// WithProgress registers a callback invoked after every batch.
func WithProgress(fn func(model.Progress)) ImportOption {
	return func(im *Importer) {
		im.progress = fn
	}
}

// WithImportLogger sets the logger of the run.
func WithImportLogger(logger *slog.Logger) ImportOption {
	return func(im *Importer) {
		if logger != nil {
			im.logger = logger
		}
	}
}

// WithMemoryLimit stops the run when the heap exceeds limit.
func WithMemoryLimit(limit *MemoryLimit) ImportOption {
	return func(im *Importer) {
		im.memory = limit
	}
}

// WithClock replaces time.Now for elapsed time measurement.
func WithClock(now func() time.Time) ImportOption {
	return func(im *Importer) {
		if now != nil {
			im.now = now
		}
	}
}

// WithSourceName names the document in errors and log lines.
func WithSourceName(name string) ImportOption {
	return func(im *Importer) {
		im.source = name
	}
}

// Importer turns a document into raw rows in bounded batches.
//
// Step processes exactly one batch and returns the continuation cursor;
// Run drives Step to completion and yields the processor between
// batches. Cancellation is only observed before a batch starts, so a
// batch is never interrupted. An Importer is not safe for concurrent use.
type Importer struct {
	batchSize  BatchSize
	minColumns int
	logCap     int
	progress   func(model.Progress)
	logger     *slog.Logger
	memory     *MemoryLimit
	now        func() time.Time
	source     string

	rows    []string
	cursor  Cursor
	store   []model.RawRow
	stats   model.ImportStats
	started bool
	done    bool
	err     error
}

// NewImporter splits text into logical rows and prepares a run over them.
func NewImporter(text string, opts ...ImportOption) *Importer {
	im := &Importer{
		batchSize:  NewBatchSize(DefaultRowsPerBatch),
		minColumns: DefaultMinColumns,
		logCap:     DefaultErrorLogCap,
		logger:     slog.New(slog.DiscardHandler),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(im)
	}
	im.rows = SplitRows(text)
	im.stats = model.ImportStats{
		RunID:      uuid.NewString(),
		TotalLines: len(im.rows),
	}
	im.logger = im.logger.With(slog.String("run_id", im.stats.RunID))
	return im
}

// Total returns the number of logical rows of the document, header included.
func (im *Importer) Total() int {
	return len(im.rows)
}

// Cursor returns the current continuation.
func (im *Importer) Cursor() Cursor {
	return im.cursor
}

// Done reports whether the run has completed or failed.
func (im *Importer) Done() bool {
	return im.done
}

// Step processes one batch. It returns the cursor after the batch and
// whether the run is over. A non-nil error is terminal; rows accepted
// before it remain in Result.
func (im *Importer) Step(ctx context.Context) (Cursor, bool, error) {
	if im.done {
		return im.cursor, true, im.err
	}
	if !im.started {
		im.started = true
		im.stats.StartedAt = im.now()
		im.logger.Info("import started",
			slog.String("source", im.source),
			slog.Int("lines", len(im.rows)),
			slog.Int("batch_size", im.batchSize.Int()))
	}

	if err := ctx.Err(); err != nil {
		return im.cursor, true, im.fail(NewErrorContext("import", im.source).
			WithLine(im.cursor.Next + 1).
			WithDetails("cancelled before batch").
			Error(fmt.Errorf("%w: %w", ErrContextCancelled, err)))
	}

	end := min(im.cursor.Next+im.batchSize.Int(), len(im.rows))
	if err := im.processBatch(end); err != nil {
		return im.cursor, true, im.fail(err)
	}
	im.cursor.Batch++
	im.emitProgress()
	im.logger.Debug("batch processed",
		slog.Int("batch", im.cursor.Batch),
		slog.Int("processed", im.cursor.Next),
		slog.Int("imported", im.stats.ImportedRows))

	if im.cursor.Next >= len(im.rows) {
		im.finish()
		return im.cursor, true, nil
	}

	if im.memory != nil {
		switch im.memory.CheckMemoryUsage() {
		case MemoryStatusExceeded:
			return im.cursor, true, im.fail(NewErrorContext("import", im.source).
				WithLine(im.cursor.Next).
				Error(im.memory.CreateMemoryError("import")))
		case MemoryStatusWarning:
			info := im.memory.GetMemoryInfo()
			im.logger.Warn("memory usage approaching limit",
				slog.Int64("current_mb", info.CurrentMB),
				slog.Int64("limit_mb", info.LimitMB))
		}
	}
	return im.cursor, false, nil
}

// Run drives Step until the run is over, yielding between batches.
// The result is never nil; after a failure it carries the partial rows.
func (im *Importer) Run(ctx context.Context) (*ImportResult, error) {
	for {
		_, done, err := im.Step(ctx)
		if err != nil || done {
			return im.Result(), err
		}
		runtime.Gosched()
	}
}

// Result returns the raw rows and a snapshot of the statistics. The rows
// are handed over by reference and must not be modified.
func (im *Importer) Result() *ImportResult {
	return &ImportResult{
		Rows:  im.store,
		Stats: im.stats.Snapshot(),
	}
}

func (im *Importer) processBatch(end int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewErrorContext("import", im.source).
				WithLine(im.cursor.Next + 1).
				WithDetails(fmt.Sprint(r)).
				Error(ErrParseFailure)
		}
	}()
	for im.cursor.Next < end {
		if err := im.processRow(im.cursor.Next); err != nil {
			return err
		}
		im.cursor.Next++
	}
	return nil
}

func (im *Importer) processRow(i int) error {
	if i == 0 {
		im.stats.HeaderRows++
		return nil
	}
	line := im.rows[i]
	if strings.IndexByte(line, 0) >= 0 {
		return NewErrorContext("import", im.source).
			WithLine(i + 1).
			WithDetails("binary content in row").
			Error(ErrParseFailure)
	}

	fields := SplitFields(line)
	if isEmptyRow(fields) {
		im.stats.EmptyRows++
		im.stats.RejectedRows++
		return nil
	}
	if len(fields) < im.minColumns {
		im.rejectInvalid(i+1, len(fields))
		return nil
	}
	row, err := model.NewRawRow(fields)
	if err != nil {
		im.rejectInvalid(i+1, len(fields))
		return nil
	}
	im.store = append(im.store, row)
	im.stats.ImportedRows++
	return nil
}

func (im *Importer) rejectInvalid(line, observed int) {
	im.stats.InvalidRows++
	im.stats.RejectedRows++
	if len(im.stats.Errors) >= im.logCap {
		im.stats.Truncated = true
		return
	}
	im.stats.Errors = append(im.stats.Errors, model.RejectionRecord{
		Line:          line,
		Type:          model.RejectionInvalidColumnCount,
		Message:       fmt.Sprintf("expected at least %d columns, found %d", im.minColumns, observed),
		ObservedCount: observed,
	})
}

func (im *Importer) emitProgress() {
	if im.progress == nil {
		return
	}
	im.progress(model.Progress{
		Processed: im.cursor.Next,
		Total:     len(im.rows),
		Elapsed:   im.now().Sub(im.stats.StartedAt),
	})
}

func (im *Importer) finish() {
	im.done = true
	im.stats.FinishedAt = im.now()
	im.logger.Info("import finished",
		slog.Int("imported", im.stats.ImportedRows),
		slog.Int("rejected", im.stats.RejectedRows),
		slog.Int("empty", im.stats.EmptyRows),
		slog.Int("invalid", im.stats.InvalidRows),
		slog.Duration("elapsed", im.stats.Duration()))
}

func (im *Importer) fail(err error) error {
	im.done = true
	im.err = err
	im.stats.FinishedAt = im.now()
	im.logger.Error("import aborted",
		slog.String("error", err.Error()),
		slog.Int("processed", im.cursor.Next),
		slog.Int("imported", im.stats.ImportedRows))
	return err
}
