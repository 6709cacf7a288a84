package worklog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/nao1215/worklog/domain/model"
	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Worklog"

// exportHeader returns the grid column names in display order.
func exportHeader() []string {
	cols := model.Columns()
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.String()
	}
	return header
}

// exportRecord renders one group as text cells.
func exportRecord(row model.AggregateRow, format MeasureFormatter) []string {
	record := make([]string, 0, model.DimensionCount+2)
	for _, d := range model.Dimensions() {
		record = append(record, row.Value(d))
	}
	return append(record, format.Format(row.Hours), strconv.Itoa(row.Entries))
}

// ExportRows writes rows to w in the format and compression of opts.
// Text formats render hours with format; Parquet and XLSX store numbers.
func ExportRows(w io.Writer, rows []model.AggregateRow, opts model.ExportOptions, format MeasureFormatter) (err error) {
	if len(rows) == 0 {
		return ErrEmptyData
	}

	cw, cleanup, err := NewCompressionHandler(opts.Compression).CreateWriter(w)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, cleanup())
	}()

	// encoders that close their sink must not close the compressor
	sink := struct{ io.Writer }{cw}

	switch opts.Format {
	case model.OutputFormatCSV:
		return writeDelimited(sink, ',', rows, format)
	case model.OutputFormatTSV:
		return writeDelimited(sink, '\t', rows, format)
	case model.OutputFormatLTSV:
		return writeLTSV(sink, rows, format)
	case model.OutputFormatParquet:
		return writeParquet(sink, rows)
	case model.OutputFormatXLSX:
		return writeXLSX(sink, rows)
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, opts.Format)
	}
}

// ExportFile writes rows to path. The file is compressed when
// opts.Compression is set, independent of the name.
func ExportFile(path string, rows []model.AggregateRow, opts model.ExportOptions, format MeasureFormatter) (err error) {
	if len(rows) == 0 {
		return NewErrorContext("export", path).Error(ErrEmptyData)
	}
	f, closeFile, err := createFile(path, model.CompressionNone)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := closeFile(); closeErr != nil {
			err = errors.Join(err, NewErrorContext("export", path).Error(closeErr))
		}
	}()
	if err := ExportRows(f, rows, opts, format); err != nil {
		return NewErrorContext("export", path).WithDetails(opts.Format.String()).Error(err)
	}
	return nil
}

// Export writes the refined and sorted groups to path and returns the
// written path. The extension of opts is appended unless path has it.
func (p *Pipeline) Export(path string, opts model.ExportOptions) (string, error) {
	if ext := opts.FileExtension(); !strings.HasSuffix(strings.ToLower(path), ext) {
		path += ext
	}
	if err := ExportFile(path, p.sorted, opts, p.formatter); err != nil {
		return "", err
	}
	p.logger.Info("exported groups",
		slog.String("path", path),
		slog.String("format", opts.Format.String()),
		slog.Int("groups", len(p.sorted)))
	return path, nil
}

func writeDelimited(w io.Writer, comma rune, rows []model.AggregateRow, format MeasureFormatter) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if err := cw.Write(exportHeader()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(exportRecord(row, format)); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

var ltsvEscaper = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ")

func writeLTSV(w io.Writer, rows []model.AggregateRow, format MeasureFormatter) error {
	header := exportHeader()
	var b strings.Builder
	for _, row := range rows {
		b.Reset()
		for i, v := range exportRecord(row, format) {
			if i > 0 {
				b.WriteByte('\t')
			}
			b.WriteString(header[i])
			b.WriteByte(':')
			b.WriteString(ltsvEscaper.Replace(v))
		}
		b.WriteByte('\n')
		if _, err := io.WriteString(w, b.String()); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	return nil
}

// parquetSchema mirrors the grid columns with typed measures.
func parquetSchema() *arrow.Schema {
	fields := make([]arrow.Field, 0, model.DimensionCount+2)
	for _, d := range model.Dimensions() {
		fields = append(fields, arrow.Field{Name: d.String(), Type: arrow.BinaryTypes.String})
	}
	fields = append(fields,
		arrow.Field{Name: model.ColumnHours.String(), Type: arrow.PrimitiveTypes.Float64},
		arrow.Field{Name: model.ColumnEntries.String(), Type: arrow.PrimitiveTypes.Int64},
	)
	return arrow.NewSchema(fields, nil)
}

func writeParquet(w io.Writer, rows []model.AggregateRow) error {
	schema := parquetSchema()
	builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer builder.Release()

	dims := model.Dimensions()
	for _, row := range rows {
		for i, d := range dims {
			builder.Field(i).(*array.StringBuilder).Append(row.Value(d))
		}
		builder.Field(len(dims)).(*array.Float64Builder).Append(row.HoursFloat())
		builder.Field(len(dims) + 1).(*array.Int64Builder).Append(int64(row.Entries))
	}
	record := builder.NewRecord()
	defer record.Release()

	fw, err := pqarrow.NewFileWriter(schema, w, parquet.NewWriterProperties(), pqarrow.DefaultWriterProps())
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	if err := fw.Write(record); err != nil {
		return errors.Join(fmt.Errorf("failed to write parquet record: %w", err), fw.Close())
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

func writeXLSX(w io.Writer, rows []model.AggregateRow) (err error) {
	f := excelize.NewFile()
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := exportHeader()
	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &cells); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	dims := model.Dimensions()
	for r, row := range rows {
		values := make([]any, 0, len(header))
		for _, d := range dims {
			values = append(values, row.Value(d))
		}
		values = append(values, row.HoursFloat(), row.Entries)

		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}
