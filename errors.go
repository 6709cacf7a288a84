package worklog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nao1215/worklog/domain/model"
)

// Standard error messages and error creation functions for consistency
var (
	// ErrParseFailure indicates the document cannot be tokenized; it ends an import run
	ErrParseFailure = errors.New("worklog: parse failure")

	// ErrEmptyData indicates that there is nothing to work on
	ErrEmptyData = errors.New("worklog: empty data")

	// ErrUnsupportedFormat indicates an unsupported file format
	ErrUnsupportedFormat = errors.New("worklog: unsupported file format")

	// ErrFileNotFound indicates file not found
	ErrFileNotFound = errors.New("worklog: file not found")

	// ErrPermissionDenied indicates permission denied
	ErrPermissionDenied = errors.New("worklog: permission denied")

	// ErrMemoryLimit indicates memory limit exceeded
	ErrMemoryLimit = errors.New("worklog: memory limit exceeded")

	// ErrContextCancelled indicates context was cancelled
	ErrContextCancelled = errors.New("worklog: context cancelled")

	// ErrNoSource indicates a builder without any input
	ErrNoSource = errors.New("worklog: no input source")

	// ErrInvalidConfig indicates an out of range option value
	ErrInvalidConfig = errors.New("worklog: invalid configuration")

	// ErrInvalidFilterBound indicates a malformed date filter bound
	ErrInvalidFilterBound = model.ErrInvalidFilterBound

	// ErrUnknownColumn indicates a sort column that does not exist
	ErrUnknownColumn = model.ErrUnknownColumn
)

// ErrorContext provides context for where an error occurred
type ErrorContext struct {
	Operation string
	FilePath  string
	Line      int
	Details   string
}

// NewErrorContext creates a new error context
func NewErrorContext(operation, filePath string) *ErrorContext {
	return &ErrorContext{
		Operation: operation,
		FilePath:  filePath,
	}
}

// WithLine adds the logical row number to the error context
func (ec *ErrorContext) WithLine(line int) *ErrorContext {
	ec.Line = line
	return ec
}

// WithDetails adds details to the error context
func (ec *ErrorContext) WithDetails(details string) *ErrorContext {
	ec.Details = details
	return ec
}

// Error creates a formatted error with context
func (ec *ErrorContext) Error(baseErr error) error {
	var parts []string
	parts = append(parts, fmt.Sprintf("worklog: %s failed", ec.Operation))

	if ec.FilePath != "" {
		parts = append(parts, "file: "+ec.FilePath)
	}

	if ec.Line > 0 {
		parts = append(parts, fmt.Sprintf("line: %d", ec.Line))
	}

	if ec.Details != "" {
		parts = append(parts, "details: "+ec.Details)
	}

	context := strings.Join(parts, ", ")
	if baseErr != nil {
		return fmt.Errorf("%s: %w", context, baseErr)
	}
	return fmt.Errorf("%s", context)
}
