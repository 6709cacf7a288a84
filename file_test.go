package worklog

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closeTracker struct {
	io.Reader
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return nil
}

func TestReadDocument(t *testing.T) {
	t.Parallel()

	text := document(line(56, entry{employee: "Anna", hours: "1"}))

	tests := []struct {
		name   string
		reader func(t *testing.T) io.Reader
		source string
	}{
		{
			name:   "plain",
			reader: func(*testing.T) io.Reader { return strings.NewReader(text) },
			source: "march.csv",
		},
		{
			name:   "gzip by name",
			reader: func(t *testing.T) io.Reader { return bytes.NewReader(gzipText(t, text)) },
			source: "march.csv.gz",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ReadDocument(tt.reader(t), tt.source)
			require.NoError(t, err)
			assert.Equal(t, text, got)
		})
	}
}

func TestReadDocument_Errors(t *testing.T) {
	t.Parallel()

	_, err := ReadDocument(nil, "x.csv")
	assert.ErrorIs(t, err, ErrNoSource)

	_, err = ReadDocument(strings.NewReader("not gzip"), "x.csv.gz")
	assert.Error(t, err)

	_, err = ReadDocumentFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestReadDocumentFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "april.txt.gz")
	require.NoError(t, os.WriteFile(path, gzipText(t, "header\r\n"), 0o600))

	got, err := ReadDocumentFile(path)
	require.NoError(t, err)
	assert.Equal(t, "header\r\n", got)
}

func TestSource_ReadClosesReader(t *testing.T) {
	t.Parallel()

	tracker := &closeTracker{Reader: strings.NewReader("header\r\n")}
	got, err := readerSource(tracker, "upload.csv").read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "header\r\n", got)
	assert.True(t, tracker.closed)
}

func TestSource_ReadCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := readerSource(strings.NewReader("x"), "x.csv").read(ctx)
	assert.ErrorIs(t, err, ErrContextCancelled)
}

func TestSourceName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "march.csv", want: "march.csv"},
		{in: "exports/march.csv.gz", want: "march.csv"},
		{in: "/data/2024/q1.txt.zst", want: "q1.txt"},
		{in: "upload.dat.xz", want: "upload.dat"},
		{in: "legacy.csv.bz2", want: "legacy.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SourceName(tt.in))
		})
	}
}
