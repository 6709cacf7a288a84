package model

import (
	"errors"
	"testing"
)

func TestExportOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts ExportOptions
		want string
	}{
		{name: "default", opts: NewExportOptions(), want: ".csv"},
		{name: "tsv gz", opts: NewExportOptions().WithFormat(OutputFormatTSV).WithCompression(CompressionGZ), want: ".tsv.gz"},
		{name: "ltsv zstd", opts: NewExportOptions().WithFormat(OutputFormatLTSV).WithCompression(CompressionZSTD), want: ".ltsv.zst"},
		{name: "parquet", opts: NewExportOptions().WithFormat(OutputFormatParquet), want: ".parquet"},
		{name: "xlsx xz", opts: NewExportOptions().WithFormat(OutputFormatXLSX).WithCompression(CompressionXZ), want: ".xlsx.xz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.opts.FileExtension(); got != tt.want {
				t.Errorf("FileExtension() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParseOutputFormat(t *testing.T) {
	t.Parallel()

	for _, f := range []OutputFormat{OutputFormatCSV, OutputFormatTSV, OutputFormatLTSV, OutputFormatParquet, OutputFormatXLSX} {
		got, err := ParseOutputFormat(f.Extension())
		if err != nil || got != f {
			t.Errorf("ParseOutputFormat(%s) = %v, %v", f.Extension(), got, err)
		}
	}
	if _, err := ParseOutputFormat("json"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestParseCompressionType(t *testing.T) {
	t.Parallel()

	tests := map[string]CompressionType{
		"":     CompressionNone,
		"none": CompressionNone,
		"gzip": CompressionGZ,
		".gz":  CompressionGZ,
		"bz2":  CompressionBZ2,
		"xz":   CompressionXZ,
		"zstd": CompressionZSTD,
		".zst": CompressionZSTD,
	}
	for in, want := range tests {
		got, err := ParseCompressionType(in)
		if err != nil || got != want {
			t.Errorf("ParseCompressionType(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseCompressionType("rar"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}
