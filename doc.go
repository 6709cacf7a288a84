// Package worklog imports semicolon separated time-tracking extracts and
// turns them into an interactive grid of aggregated hours.
//
// The processing chain is
//
//	document -> tokenizer -> chunked import -> raw store
//	raw store -> filter -> aggregate -> search -> sort -> window
//
// and is owned by a Pipeline. Every stage produces a new slice, so a slice
// handed out by the Pipeline is never modified afterwards. Changing an
// input (filter criteria, search term, sort column, scroll offset)
// recomputes the stages downstream of it.
//
// # Documents
//
// An extract has one header row and semicolon separated data rows of at
// least 50 fields, with optional double quoted fields that may contain
// separators and line breaks. Durations use a decimal comma; dates use
// DD/MM/YYYY or DD.MM.YYYY. Files ending in .gz, .bz2, .xz or .zst are
// decompressed transparently.
//
// Rows that are empty or too short are rejected and recorded in the
// ImportStats of the run. Only a malformed document (ErrParseFailure) or
// cancellation stops an import; the rows accepted before that stay in the
// raw store.
//
// # Basic Usage
//
//	validated, err := worklog.NewBuilder().
//		AddPath("exports/").
//		WithCache(store).
//		Build(ctx)
//	if err != nil {
//		return err
//	}
//	p, err := validated.Open(ctx)
//	if err != nil {
//		return err
//	}
//
//	p.Search("apollo")
//	p.ClickSort(model.ColumnHours)
//	view := p.View()
//
// # Aggregation
//
// Rows are grouped by employee, project, activity, cost center and employee
// group. Blank values are grouped under model.Placeholder. Hours are summed
// with exact decimal arithmetic.
//
// # Export
//
// Pipeline.Export and ExportRows write the refined and sorted groups as
// CSV, TSV, LTSV, Parquet or XLSX, optionally compressed.
package worklog
