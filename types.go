package worklog

import (
	"strconv"

	"github.com/nao1215/worklog/domain/model"
)

// Processing constants (rows-based)
const (
	// DefaultRowsPerBatch is the number of logical rows an import step handles
	DefaultRowsPerBatch = 1000
	// MinBatchSize is the minimum allowed rows per batch
	MinBatchSize = 1
	// DefaultMinColumns is the minimum field count of an accepted data row
	DefaultMinColumns = model.MinColumnCount
	// DefaultErrorLogCap is the number of rejection records kept per run
	DefaultErrorLogCap = model.DefaultErrorLogCap
)

// Document format constants
const (
	// FieldSeparator separates fields of a logical row
	FieldSeparator = ';'
	// quoteChar opens and closes a quoted field
	quoteChar = '"'
	// byteOrderMark is stripped from the start of a document
	byteOrderMark = "\uFEFF"
)

// Pager defaults
const (
	// DefaultRowHeight is the approximate grid row height in pixels
	DefaultRowHeight = 40
	// DefaultViewportRows is the number of rows a viewport shows
	DefaultViewportRows = 20
	// DefaultBuffer is the number of rows rendered beyond each viewport edge
	DefaultBuffer = 5
	// DefaultRecomputeThreshold is how far start must move before a window is recomputed
	DefaultRecomputeThreshold = 5
)

// BatchSize represents a batch size with validation
type BatchSize int

// NewBatchSize creates a new BatchSize, falling back to the default for values below the minimum
func NewBatchSize(size int) BatchSize {
	if size < MinBatchSize {
		return BatchSize(DefaultRowsPerBatch)
	}
	return BatchSize(size)
}

// Int returns the int value of BatchSize
func (bs BatchSize) Int() int {
	return int(bs)
}

// String returns the string representation of BatchSize
func (bs BatchSize) String() string {
	return strconv.Itoa(int(bs))
}

// IsValid checks if the batch size is valid
func (bs BatchSize) IsValid() bool {
	return int(bs) >= MinBatchSize
}
