package worklog

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	pqfile "github.com/apache/arrow/go/v18/parquet/file"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/nao1215/worklog/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func exportGroups() []model.AggregateRow {
	return []model.AggregateRow{
		group("Anna Schmidt", "4711", "7.5", 2),
		group("", "4712", "1.25", 1),
	}
}

func TestExportRows_Delimited(t *testing.T) {
	t.Parallel()

	format := NewMeasureFormatter(model.Settings{DecimalSeparator: ",", Decimals: 2})

	tests := []struct {
		name   string
		format model.OutputFormat
		comma  rune
	}{
		{name: "csv", format: model.OutputFormatCSV, comma: ','},
		{name: "tsv", format: model.OutputFormatTSV, comma: '\t'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			opts := model.NewExportOptions().WithFormat(tt.format)
			require.NoError(t, ExportRows(&buf, exportGroups(), opts, format))

			r := csv.NewReader(&buf)
			r.Comma = tt.comma
			records, err := r.ReadAll()
			require.NoError(t, err)
			require.Len(t, records, 3)
			assert.Equal(t, []string{"employee", "project", "activity", "cost_center", "employee_group", "hours", "entries"}, records[0])
			assert.Equal(t, []string{"Anna Schmidt", "P", "A", "4711", "G", "7,50", "2"}, records[1])
			assert.Equal(t, model.Placeholder, records[2][0])
		})
	}
}

func TestExportRows_LTSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	opts := model.NewExportOptions().WithFormat(model.OutputFormatLTSV)
	require.NoError(t, ExportRows(&buf, exportGroups(), opts, NewMeasureFormatter(model.DefaultSettings())))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "employee:Anna Schmidt\tproject:P\tactivity:A\tcost_center:4711\temployee_group:G\thours:7.50\tentries:2", lines[0])
}

func TestExportRows_Gzip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	opts := model.NewExportOptions().WithCompression(model.CompressionGZ)
	require.NoError(t, ExportRows(&buf, exportGroups(), opts, NewMeasureFormatter(model.DefaultSettings())))

	zr, err := gzip.NewReader(&buf)
	require.NoError(t, err)
	data, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "employee,project,"))
}

func TestExportRows_Parquet(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	opts := model.NewExportOptions().WithFormat(model.OutputFormatParquet)
	require.NoError(t, ExportRows(&buf, exportGroups(), opts, NewMeasureFormatter(model.DefaultSettings())))

	pqReader, err := pqfile.NewParquetReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer pqReader.Close()

	arrowReader, err := pqarrow.NewFileReader(pqReader, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	require.NoError(t, err)

	table, err := arrowReader.ReadTable(context.Background())
	require.NoError(t, err)
	defer table.Release()

	assert.Equal(t, int64(2), table.NumRows())
	assert.Equal(t, "employee", table.Schema().Field(0).Name)

	tr := array.NewTableReader(table, 0)
	defer tr.Release()
	require.True(t, tr.Next())
	rec := tr.Record()
	assert.Equal(t, "Anna Schmidt", rec.Column(0).(*array.String).Value(0))
	assert.InDelta(t, 7.5, rec.Column(5).(*array.Float64).Value(0), 1e-9)
	assert.Equal(t, int64(1), rec.Column(6).(*array.Int64).Value(1))
}

func TestExportRows_XLSX(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	opts := model.NewExportOptions().WithFormat(model.OutputFormatXLSX)
	require.NoError(t, ExportRows(&buf, exportGroups(), opts, NewMeasureFormatter(model.DefaultSettings())))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(xlsxSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "employee", rows[0][0])
	assert.Equal(t, "Anna Schmidt", rows[1][0])
	assert.Equal(t, "7.5", rows[1][5])
}

func TestExportRows_Errors(t *testing.T) {
	t.Parallel()

	format := NewMeasureFormatter(model.DefaultSettings())

	err := ExportRows(io.Discard, nil, model.NewExportOptions(), format)
	assert.ErrorIs(t, err, ErrEmptyData)

	err = ExportRows(io.Discard, exportGroups(), model.NewExportOptions().WithFormat(model.OutputFormat(99)), format)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	err = ExportRows(io.Discard, exportGroups(), model.NewExportOptions().WithCompression(model.CompressionBZ2), format)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestPipeline_Export(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p, err := NewPipeline()
	require.NoError(t, err)

	dir := t.TempDir()
	_, err = p.Export(filepath.Join(dir, "empty"), model.NewExportOptions())
	assert.ErrorIs(t, err, ErrEmptyData)

	_, err = p.Import(ctx, "march.csv", document(
		line(model.FieldCount, entry{employee: "Anna", project: "Apollo", activity: "Dev", cost: "10", group: "IT", date: "15.01.2024", hours: "7,5"}),
	))
	require.NoError(t, err)

	opts := model.NewExportOptions().WithFormat(model.OutputFormatTSV).WithCompression(model.CompressionZSTD)
	path, err := p.Export(filepath.Join(dir, "report"), opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report.tsv.zst"), path)

	_, err = os.Stat(path)
	require.NoError(t, err)

	text, err := ReadDocumentFile(path)
	require.NoError(t, err)
	assert.Contains(t, text, "Anna\tApollo\tDev\t10\tIT\t7.50\t1")
}
