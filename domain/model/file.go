package model

import (
	"path/filepath"
	"strings"
)

// FileType is the kind of extract document a path refers to.
type FileType int

const (
	// FileTypeCSV is a semicolon separated .csv extract
	FileTypeCSV FileType = iota
	// FileTypeText is a semicolon separated .txt or .dat extract
	FileTypeText
	// FileTypeUnsupported is anything else
	FileTypeUnsupported
)

// File extensions
const (
	// ExtCSV is the CSV file extension
	ExtCSV = ".csv"
	// ExtTXT is the plain text file extension
	ExtTXT = ".txt"
	// ExtDAT is the data file extension some exporters use
	ExtDAT = ".dat"
	// ExtGZ is the gzip compression extension
	ExtGZ = ".gz"
	// ExtBZ2 is the bzip2 compression extension
	ExtBZ2 = ".bz2"
	// ExtXZ is the xz compression extension
	ExtXZ = ".xz"
	// ExtZSTD is the zstd compression extension
	ExtZSTD = ".zst"
)

// File describes an extract document on disk or an uploaded document name.
type File struct {
	path        string
	fileType    FileType
	compression CompressionType
}

// NewFile classifies path by its extensions.
func NewFile(path string) *File {
	compression := DetectCompression(path)
	return &File{
		path:        path,
		fileType:    detectFileType(strings.TrimSuffix(strings.ToLower(path), compression.Extension())),
		compression: compression,
	}
}

// IsSupportedFile checks if the file has a supported extension
func IsSupportedFile(fileName string) bool {
	return NewFile(fileName).Type() != FileTypeUnsupported
}

// Path returns file path
func (f *File) Path() string {
	return f.path
}

// Type returns file type
func (f *File) Type() FileType {
	return f.fileType
}

// Compression returns the compression detected from the name.
func (f *File) Compression() CompressionType {
	return f.compression
}

// IsCompressed returns true if file is compressed
func (f *File) IsCompressed() bool {
	return f.compression != CompressionNone
}

// DetectCompression detects the compression from the file name suffix.
func DetectCompression(path string) CompressionType {
	path = strings.ToLower(path)
	switch {
	case strings.HasSuffix(path, ExtGZ):
		return CompressionGZ
	case strings.HasSuffix(path, ExtBZ2):
		return CompressionBZ2
	case strings.HasSuffix(path, ExtXZ):
		return CompressionXZ
	case strings.HasSuffix(path, ExtZSTD):
		return CompressionZSTD
	default:
		return CompressionNone
	}
}

func detectFileType(path string) FileType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtCSV:
		return FileTypeCSV
	case ExtTXT, ExtDAT:
		return FileTypeText
	default:
		return FileTypeUnsupported
	}
}
