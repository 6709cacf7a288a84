package worklog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/nao1215/worklog/domain/model"
)

// fileProcessor expands builder inputs into a de-duplicated list of sources
type fileProcessor struct {
	validator *validator
}

// newFileProcessor creates a new file processor instance
func newFileProcessor() *fileProcessor {
	return &fileProcessor{validator: newValidator()}
}

// collectFilesFromPaths validates and collects all files from the given paths
func (fp *fileProcessor) collectFilesFromPaths(paths []string) ([]string, error) {
	var collectedPaths []string
	processedFiles := make(map[string]bool)

	for _, path := range paths {
		if err := fp.validator.validatePath(path); err != nil {
			return nil, err
		}

		info, err := os.Stat(path)
		if err != nil {
			return nil, classifyOpenError(path, err)
		}

		if info.IsDir() {
			dirFiles, err := fp.collectFilesFromDirectory(path, processedFiles)
			if err != nil {
				return nil, err
			}
			collectedPaths = append(collectedPaths, dirFiles...)
			continue
		}
		if err := fp.addSingleFile(path, processedFiles, &collectedPaths); err != nil {
			return nil, err
		}
	}

	return collectedPaths, nil
}

// collectFilesFromDirectory recursively collects all supported files from a directory
func (fp *fileProcessor) collectFilesFromDirectory(dirPath string, processedFiles map[string]bool) ([]string, error) {
	var found []string

	err := filepath.WalkDir(dirPath, func(filePath string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !model.IsSupportedFile(filePath) {
			return nil
		}
		found = append(found, filePath)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", dirPath, err)
	}

	var collectedPaths []string
	for _, filePath := range fp.deduplicateCompressedFiles(found) {
		absPath, err := filepath.Abs(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for %s: %w", filePath, err)
		}
		if !processedFiles[absPath] {
			processedFiles[absPath] = true
			collectedPaths = append(collectedPaths, filePath)
		}
	}
	return collectedPaths, nil
}

// addSingleFile validates and adds a single file to the collected paths
func (fp *fileProcessor) addSingleFile(filePath string, processedFiles map[string]bool, collectedPaths *[]string) error {
	if !model.IsSupportedFile(filePath) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filePath)
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for %s: %w", filePath, err)
	}

	if !processedFiles[absPath] {
		processedFiles[absPath] = true
		*collectedPaths = append(*collectedPaths, filePath)
	}
	return nil
}

// processFilesystems opens every supported extract of each filesystem.
func (fp *fileProcessor) processFilesystems(filesystems []fs.FS) ([]source, error) {
	var sources []source
	for _, filesystem := range filesystems {
		if filesystem == nil {
			closeSources(sources)
			return nil, errors.New("worklog: FS cannot be nil")
		}
		fsSources, err := fp.processFS(filesystem)
		if err != nil {
			closeSources(sources)
			return nil, fmt.Errorf("failed to process FS input: %w", err)
		}
		sources = append(sources, fsSources...)
	}
	return sources, nil
}

func (fp *fileProcessor) processFS(filesystem fs.FS) ([]source, error) {
	var matches []string
	err := fs.WalkDir(filesystem, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && model.IsSupportedFile(path) {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk filesystem: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: no extract found in filesystem", ErrNoSource)
	}

	sources := make([]source, 0, len(matches))
	for _, match := range fp.deduplicateCompressedFiles(matches) {
		f, err := filesystem.Open(match)
		if err != nil {
			closeSources(sources)
			return nil, fmt.Errorf("failed to open FS file %s: %w", match, err)
		}
		sources = append(sources, readerSource(f, match))
	}
	return sources, nil
}

// deduplicateCompressedFiles drops a compressed extract when the same
// extract is also present uncompressed. The result is sorted by path.
func (fp *fileProcessor) deduplicateCompressedFiles(files []string) []string {
	plain := make(map[string]bool)
	for _, file := range files {
		if !fp.isCompressedFile(file) {
			plain[file] = true
		}
	}

	result := make([]string, 0, len(files))
	for _, file := range files {
		if fp.isCompressedFile(file) {
			base := strings.TrimSuffix(file, filepath.Ext(file))
			if plain[base] {
				continue
			}
		}
		result = append(result, file)
	}
	slices.Sort(result)
	return slices.Compact(result)
}

// isCompressedFile checks if a file path represents a compressed file
func (fp *fileProcessor) isCompressedFile(filePath string) bool {
	return model.DetectCompression(filePath) != model.CompressionNone
}
