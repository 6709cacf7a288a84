package worklog

import (
	"compress/bzip2"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/nao1215/worklog/domain/model"
	"github.com/ulikunitz/xz"
)

// CompressionHandler wraps readers and writers for one compression type.
type CompressionHandler interface {
	// CreateReader wraps an io.Reader with a decompression reader if needed
	CreateReader(reader io.Reader) (io.Reader, func() error, error)
	// CreateWriter wraps an io.Writer with a compression writer if needed
	CreateWriter(writer io.Writer) (io.Writer, func() error, error)
	// Extension returns the file extension for this compression type (e.g., ".gz")
	Extension() string
}

type compressionHandler struct {
	compression model.CompressionType
}

// NewCompressionHandler creates a handler for the given compression type.
func NewCompressionHandler(compression model.CompressionType) CompressionHandler {
	return &compressionHandler{compression: compression}
}

func nopCleanup() error { return nil }

// CreateReader creates a decompression reader based on the compression type
func (h *compressionHandler) CreateReader(reader io.Reader) (io.Reader, func() error, error) {
	switch h.compression {
	case model.CompressionNone:
		return reader, nopCleanup, nil

	case model.CompressionGZ:
		gzReader, err := gzip.NewReader(reader)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return gzReader, gzReader.Close, nil

	case model.CompressionBZ2:
		return bzip2.NewReader(reader), nopCleanup, nil

	case model.CompressionXZ:
		xzReader, err := xz.NewReader(reader)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		return xzReader, nopCleanup, nil

	case model.CompressionZSTD:
		decoder, err := zstd.NewReader(reader)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		return decoder, func() error {
			decoder.Close()
			return nil
		}, nil

	default:
		return nil, nil, fmt.Errorf("%w: compression %v", ErrUnsupportedFormat, h.compression)
	}
}

// CreateWriter creates a compression writer based on the compression type
func (h *compressionHandler) CreateWriter(writer io.Writer) (io.Writer, func() error, error) {
	switch h.compression {
	case model.CompressionNone:
		return writer, nopCleanup, nil

	case model.CompressionGZ:
		gzWriter := gzip.NewWriter(writer)
		return gzWriter, gzWriter.Close, nil

	case model.CompressionBZ2:
		return nil, nil, fmt.Errorf("%w: bzip2 is read only", ErrUnsupportedFormat)

	case model.CompressionXZ:
		xzWriter, err := xz.NewWriter(writer)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create xz writer: %w", err)
		}
		return xzWriter, xzWriter.Close, nil

	case model.CompressionZSTD:
		zstdWriter, err := zstd.NewWriter(writer)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		return zstdWriter, zstdWriter.Close, nil

	default:
		return nil, nil, fmt.Errorf("%w: compression %v", ErrUnsupportedFormat, h.compression)
	}
}

// Extension returns the file extension for this compression type
func (h *compressionHandler) Extension() string {
	return h.compression.Extension()
}

// openFile opens path and decompresses it according to its name.
func openFile(path string) (io.Reader, func() error, error) {
	f, err := os.Open(path) //nolint:gosec // reading user supplied extracts is the point
	if err != nil {
		return nil, nil, classifyOpenError(path, err)
	}

	reader, cleanup, err := NewCompressionHandler(model.DetectCompression(path)).CreateReader(f)
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	return reader, func() error {
		return errors.Join(cleanup(), f.Close())
	}, nil
}

// createFile creates path and compresses everything written to it.
func createFile(path string, compression model.CompressionType) (io.Writer, func() error, error) {
	handler := NewCompressionHandler(compression)
	if compression == model.CompressionBZ2 {
		// fail before truncating anything on disk
		if _, _, err := handler.CreateWriter(io.Discard); err != nil {
			return nil, nil, err
		}
	}

	f, err := os.Create(path) //nolint:gosec // output path is chosen by the caller
	if err != nil {
		return nil, nil, classifyOpenError(path, err)
	}

	writer, cleanup, err := handler.CreateWriter(f)
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	return writer, func() error {
		var cleanupErr error
		if cleanupErr = cleanup(); cleanupErr == nil {
			cleanupErr = f.Sync()
		}
		return errors.Join(cleanupErr, f.Close())
	}, nil
}

// classifyOpenError maps os errors onto the package sentinels.
func classifyOpenError(path string, err error) error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return NewErrorContext("open", path).Error(errors.Join(ErrFileNotFound, err))
	case errors.Is(err, os.ErrPermission):
		return NewErrorContext("open", path).Error(errors.Join(ErrPermissionDenied, err))
	default:
		return NewErrorContext("open", path).Error(err)
	}
}
