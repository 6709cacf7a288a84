package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/render"
	"github.com/nao1215/worklog"
	"github.com/nao1215/worklog/domain/model"
)

type importRequest struct {
	Name string `query:"name" validate:"required,max=255"`
}

// FilterRequest sets the filter criteria. Dates use DD/MM/YYYY or
// DD.MM.YYYY; categories map dimension names to allowed values.
type FilterRequest struct {
	From       string              `json:"from" validate:"omitempty,max=10"`
	To         string              `json:"to" validate:"omitempty,max=10"`
	Categories map[string][]string `json:"categories" validate:"omitempty,max=5,dive,keys,oneof=employee project activity cost_center employee_group,endkeys,max=10000"`
}

// SearchRequest sets the search term.
type SearchRequest struct {
	Term string `json:"term" validate:"max=200"`
}

// SortRequest clicks a column header.
type SortRequest struct {
	Column string `json:"column" validate:"required,oneof=employee project activity cost_center employee_group hours entries"`
}

type viewRequest struct {
	Offset int `query:"offset" validate:"min=0"`
}

type exportRequest struct {
	Format      string `query:"format" validate:"omitempty,oneof=csv tsv ltsv parquet xlsx"`
	Compression string `query:"compression" validate:"omitempty,oneof=none gz gzip xz zst zstd"`
}

// ImportResponse reports a finished import run.
type ImportResponse struct {
	Stats  model.ImportStats `json:"stats"`
	Counts worklog.Counts    `json:"counts"`
}

func (s *Server) decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return s.validate.Struct(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

// handleImport imports the request body as one extract. The name query
// parameter identifies the source and selects decompression.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	req := importRequest{Name: r.URL.Query().Get("name")}
	if err := s.validate.Struct(req); err != nil {
		s.fail(w, r, err)
		return
	}

	ctx := r.Context()
	body := http.MaxBytesReader(w, r.Body, maxUploadSize)
	source := worklog.SourceName(req.Name)

	var (
		stats  model.ImportStats
		counts worklog.Counts
		err    error
	)
	// runs on the coordinator goroutine while the import is running
	progress := func(p model.Progress) {
		s.hub.publish(ServerMessage{Type: MessageProgress, Progress: newProgressResponse(source, p)})
	}

	view, doErr := s.apply(func(p *worklog.Pipeline) {
		stats, err = p.ImportReader(ctx, body, req.Name, worklog.WithProgress(progress))
		counts = p.Counts()
	})
	if doErr != nil {
		s.fail(w, r, doErr)
		return
	}

	logger := s.requestLogger(r).With(slog.String("source", source))
	if err != nil {
		logger.Warn("import failed", slog.String("error", err.Error()), slog.Int("imported", stats.ImportedRows))
		apiErr := errorFor(err)
		apiErr.Details = ImportResponse{Stats: stats, Counts: counts}
		_ = render.Render(w, r, apiErr)
		return
	}
	logger.Info("import finished", slog.String("summary", stats.Summary()), slog.Int("groups", view.Counts.Groups))

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, ImportResponse{Stats: stats, Counts: counts})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var resp StatsResponse
	err := s.coord.do(func(p *worklog.Pipeline) {
		resp = StatsResponse{Runs: p.Stats(), Counts: p.Counts()}
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if resp.Runs == nil {
		resp.Runs = []model.ImportStats{}
	}
	render.JSON(w, r, resp)
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	var req FilterRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	criteria, err := model.ParseFilterCriteria(req.From, req.To, req.Categories)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	view, err := s.apply(func(p *worklog.Pipeline) { p.SetFilter(criteria) })
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

// handleSearch applies the term at once. Keystroke pacing belongs to the
// websocket sessions.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	view, err := s.apply(func(p *worklog.Pipeline) { p.Search(req.Term) })
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	var req SortRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	col, err := model.ParseColumn(req.Column)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	view, err := s.apply(func(p *worklog.Pipeline) { p.ClickSort(col) })
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			s.fail(w, r, &APIError{Status: http.StatusBadRequest, Code: CodeBadRequest, Message: fmt.Sprintf("offset %q is not a number", raw)})
			return
		}
		req.Offset = offset
	}
	if err := s.validate.Struct(req); err != nil {
		s.fail(w, r, err)
		return
	}
	view, err := s.scroll(req.Offset)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

// handleExport streams the refined and sorted groups as a file download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := exportRequest{Format: q.Get("format"), Compression: q.Get("compression")}
	if err := s.validate.Struct(req); err != nil {
		s.fail(w, r, err)
		return
	}
	format, err := model.ParseOutputFormat(req.Format)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	compression, err := model.ParseCompressionType(req.Compression)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	opts := model.NewExportOptions().WithFormat(format).WithCompression(compression)

	var (
		rows      []model.AggregateRow
		formatter worklog.MeasureFormatter
	)
	if err := s.coord.do(func(p *worklog.Pipeline) {
		rows, formatter = p.Results(), p.Formatter()
	}); err != nil {
		s.fail(w, r, err)
		return
	}
	if len(rows) == 0 {
		s.fail(w, r, worklog.ErrEmptyData)
		return
	}

	w.Header().Set("Content-Type", contentType(opts))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "worklog"+opts.FileExtension()))
	if err := worklog.ExportRows(w, rows, opts, formatter); err != nil {
		// headers are gone once the body started, so only log
		s.requestLogger(r).Error("export failed", slog.String("error", err.Error()))
		return
	}
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	var err error
	if doErr := s.coord.do(func(p *worklog.Pipeline) {
		err = p.ClearCache(r.Context())
	}); doErr != nil {
		err = doErr
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func contentType(opts model.ExportOptions) string {
	if opts.Compression != model.CompressionNone {
		return "application/octet-stream"
	}
	switch opts.Format {
	case model.OutputFormatCSV:
		return "text/csv; charset=utf-8"
	case model.OutputFormatTSV:
		return "text/tab-separated-values; charset=utf-8"
	case model.OutputFormatLTSV:
		return "text/plain; charset=utf-8"
	case model.OutputFormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}
