package worklog

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/nao1215/worklog/domain/model"
)

// source is one extract document waiting to be imported. It is either a
// path on disk or a reader with a name; the name decides decompression.
type source struct {
	name   string
	path   string
	reader io.Reader
}

func pathSource(path string) source {
	return source{name: path, path: path}
}

func readerSource(reader io.Reader, name string) source {
	return source{name: name, reader: reader}
}

// open returns the decompressed document stream.
func (s source) open() (io.Reader, func() error, error) {
	if s.reader == nil {
		return openFile(s.path)
	}
	reader, cleanup, err := NewCompressionHandler(model.DetectCompression(s.name)).CreateReader(s.reader)
	if err != nil {
		return nil, nil, NewErrorContext("open", s.name).Error(err)
	}
	return reader, cleanup, nil
}

// read loads the whole document. Readers that also implement io.Closer
// are closed afterwards, also when reading fails.
func (s source) read(ctx context.Context) (text string, err error) {
	defer func() {
		if closeErr := s.close(); closeErr != nil && err == nil {
			text, err = "", NewErrorContext("read", s.name).Error(closeErr)
		}
	}()
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrContextCancelled, err)
	}
	reader, cleanup, err := s.open()
	if err != nil {
		return "", err
	}
	text, readErr := readAll(reader, s.name)
	if closeErr := cleanup(); readErr == nil && closeErr != nil {
		return "", NewErrorContext("read", s.name).Error(closeErr)
	}
	if readErr != nil {
		return "", readErr
	}
	return text, nil
}

// close closes the reader of the source when it is an io.Closer.
func (s source) close() error {
	if c, ok := s.reader.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// closeSources closes the readers of sources that will not be read.
func closeSources(sources []source) {
	for _, s := range sources {
		_ = s.close()
	}
}

// ReadDocument reads an extract from r and decompresses it when name ends
// in a compression extension such as ".gz" or ".zst".
func ReadDocument(r io.Reader, name string) (string, error) {
	if r == nil {
		return "", NewErrorContext("read", name).Error(ErrNoSource)
	}
	return readerSource(r, name).read(context.Background())
}

// ReadDocumentFile reads the extract stored at path.
func ReadDocumentFile(path string) (string, error) {
	return pathSource(path).read(context.Background())
}

func readAll(r io.Reader, name string) (string, error) {
	var b strings.Builder
	if _, err := io.Copy(&b, r); err != nil {
		return "", NewErrorContext("read", name).Error(err)
	}
	return b.String(), nil
}

// SourceName strips directories and compression extensions so the name
// reads well in logs, e.g. "exports/march.csv.gz" becomes "march.csv".
func SourceName(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, model.DetectCompression(base).Extension())
}
