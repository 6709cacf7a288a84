package worklog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/nao1215/worklog/domain/model"
)

// validator handles validation logic for Builder
type validator struct{}

// newValidator creates a new validator instance
func newValidator() *validator {
	return &validator{}
}

// validatePath validates a single file or directory path
func (v *validator) validatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: path cannot be empty", ErrInvalidConfig)
	}

	info, err := os.Stat(path)
	if err != nil {
		return classifyOpenError(path, err)
	}

	if !info.IsDir() && !model.IsSupportedFile(path) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	return nil
}

// validateReader validates a reader input
func (v *validator) validateReader(src source) error {
	if src.reader == nil {
		return fmt.Errorf("%w: reader cannot be nil", ErrInvalidConfig)
	}
	if strings.TrimSpace(src.name) == "" {
		return fmt.Errorf("%w: reader input needs a name", ErrInvalidConfig)
	}
	if s, ok := src.reader.(*strings.Reader); ok && s.Len() == 0 {
		return NewErrorContext("build", src.name).Error(ErrEmptyData)
	}
	return nil
}

// validateOptions checks the numeric builder options.
func (v *validator) validateOptions(batchSize, rowHeight, viewportRows int) error {
	var errs []error
	if !BatchSize(batchSize).IsValid() {
		errs = append(errs, fmt.Errorf("batch size must be at least %d, got %d", MinBatchSize, batchSize))
	}
	if rowHeight <= 0 {
		errs = append(errs, fmt.Errorf("row height must be positive, got %d", rowHeight))
	}
	if viewportRows <= 0 {
		errs = append(errs, fmt.Errorf("viewport rows must be positive, got %d", viewportRows))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// validateFinalState performs final validation to ensure we have valid inputs
func (v *validator) validateFinalState(collectedPaths []string, readers []source, originalPaths []string, hasCache bool) error {
	if len(collectedPaths) > 0 || len(readers) > 0 || hasCache {
		return nil
	}
	for _, path := range originalPaths {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return fmt.Errorf("%w: no supported files found in directory", ErrNoSource)
		}
	}
	return ErrNoSource
}
