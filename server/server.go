// Package server exposes a worklog pipeline to browser grids over HTTP and
// websockets.
//
// Every pipeline operation is funnelled through a single coordinator
// goroutine, so the pipeline keeps its single owner while many requests
// and sessions are served concurrently. State changes are pushed to all
// connected grids as view messages.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/nao1215/worklog"
	"github.com/nao1215/worklog/logging"
)

// maxUploadSize bounds the body of an import request.
const maxUploadSize = 256 << 20

// Option configures a Server.
type Option func(*options)

type options struct {
	logger         *slog.Logger
	searchDebounce time.Duration
	scrollThrottle time.Duration
}

// WithLogger sets the logger of the server.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithSearchDebounce sets how long a session waits for typing to stop.
func WithSearchDebounce(d time.Duration) Option {
	return func(o *options) {
		o.searchDebounce = d
	}
}

// WithScrollThrottle sets the minimum interval between window updates of a session.
func WithScrollThrottle(d time.Duration) Option {
	return func(o *options) {
		o.scrollThrottle = d
	}
}

// Server serves one pipeline.
type Server struct {
	router   chi.Router
	coord    *coordinator
	hub      *hub
	validate *validator.Validate
	logger   *slog.Logger
	opts     options
}

// New starts the coordinator and session hub for p. The server takes
// ownership of p; callers must not use it until Close returns.
func New(p *worklog.Pipeline, opts ...Option) *Server {
	o := options{
		logger:         slog.New(slog.DiscardHandler),
		searchDebounce: worklog.DefaultSearchDebounce,
		scrollThrottle: worklog.DefaultScrollThrottle,
	}
	for _, opt := range opts {
		opt(&o)
	}

	logger := logging.Component(o.logger, "server")
	s := &Server{
		coord:    newCoordinator(p),
		hub:      newHub(logging.Component(o.logger, "hub")),
		validate: newValidator(),
		logger:   logger,
		opts:     o,
	}
	s.router = s.routes()
	return s
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report JSON names instead of Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	return v
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/import", s.handleImport)
		r.Get("/stats", s.handleStats)
		r.Post("/filter", s.handleFilter)
		r.Post("/search", s.handleSearch)
		r.Post("/sort", s.handleSort)
		r.Get("/view", s.handleView)
		r.Get("/export", s.handleExport)
		r.Delete("/cache", s.handleClearCache)
		r.Get("/ws", s.handleWebSocket)
	})
	return r
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close disconnects every session and stops the coordinator.
func (s *Server) Close() {
	s.hub.close()
	s.coord.close()
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully and closes the server.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve on %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.hub.close()
	err := srv.Shutdown(shutdownCtx)
	s.coord.close()
	if err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) requestLogger(r *http.Request) *slog.Logger {
	return logging.FromContext(r.Context(), s.logger)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.requestLogger(r).Info("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Int("bytes", ww.BytesWritten()),
			slog.Duration("duration", time.Since(start)))
	})
}

// fail renders err as an APIError.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := errorFor(err)
	if apiErr.Status >= http.StatusInternalServerError {
		s.requestLogger(r).Error("request failed", slog.String("error", err.Error()))
	}
	_ = render.Render(w, r, apiErr)
}

// view renders the current view on the coordinator.
func (s *Server) view() (*ViewResponse, error) {
	var view *ViewResponse
	err := s.coord.do(func(p *worklog.Pipeline) {
		view = newViewResponse(p)
	})
	return view, err
}

// apply runs fn on the coordinator and pushes the resulting view to every
// session.
func (s *Server) apply(fn func(p *worklog.Pipeline)) (*ViewResponse, error) {
	var view *ViewResponse
	err := s.coord.do(func(p *worklog.Pipeline) {
		fn(p)
		view = newViewResponse(p)
	})
	if err != nil {
		return nil, err
	}
	s.hub.publish(ServerMessage{Type: MessageView, View: view})
	return view, nil
}

// scroll moves the shared viewport and pushes the view when the rendered
// window changed.
func (s *Server) scroll(offset int) (*ViewResponse, error) {
	var (
		view    *ViewResponse
		changed bool
	)
	err := s.coord.do(func(p *worklog.Pipeline) {
		_, changed = p.Scroll(offset)
		view = newViewResponse(p)
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.hub.publish(ServerMessage{Type: MessageView, View: view})
	}
	return view, nil
}
