// Package httpapi exposes the annotation reader and the page layouts over
// HTTP.
package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/goliatone/go-editorschema/pkg/editor"
	"github.com/goliatone/go-editorschema/pkg/pages"
)

// DefaultMaxBodyBytes caps request bodies on the JSON endpoints.
const DefaultMaxBodyBytes int64 = 1 << 20

// Option customises a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRegistry replaces the built-in page layouts.
func WithRegistry(registry *pages.Registry) Option {
	return func(s *Server) {
		if registry != nil {
			s.registry = registry
		}
	}
}

// WithHeadRenderer overrides the renderer used for page heads.
func WithHeadRenderer(head *pages.HeadRenderer) Option {
	return func(s *Server) {
		if head != nil {
			s.head = head
		}
	}
}

// WithMetrics shares a metrics set with the caller.
func WithMetrics(metrics *Metrics) Option {
	return func(s *Server) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

// WithMaxBodyBytes caps JSON request bodies.
func WithMaxBodyBytes(limit int64) Option {
	return func(s *Server) {
		if limit > 0 {
			s.maxBody = limit
		}
	}
}

// Server wires the HTTP handlers.
type Server struct {
	logger   *zap.Logger
	registry *pages.Registry
	head     *pages.HeadRenderer
	metrics  *Metrics
	maxBody  int64
}

// New builds a Server. Without options it serves the built-in layouts and
// discards logs.
func New(options ...Option) (*Server, error) {
	s := &Server{
		logger:  zap.NewNop(),
		maxBody: DefaultMaxBodyBytes,
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}

	if s.registry == nil {
		registry, err := pages.LoadDefault()
		if err != nil {
			return nil, fmt.Errorf("httpapi: load layouts: %w", err)
		}
		s.registry = registry
	}
	if s.head == nil {
		head, err := pages.NewHeadRenderer(nil)
		if err != nil {
			return nil, fmt.Errorf("httpapi: head renderer: %w", err)
		}
		s.head = head
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	return s, nil
}

// Metrics returns the counters updated by the handlers.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Handler returns the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	for _, layout := range s.registry.Layouts() {
		r.Method(http.MethodGet, layout.Route, layout.Wrap(http.HandlerFunc(s.page)))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/components", s.components)
		r.Post("/bindings", s.bindings)
		r.Get("/pages", s.pages)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok")
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
	return r
}

func (s *Server) page(w http.ResponseWriter, r *http.Request) {
	meta, _ := pages.MetadataFromContext(r.Context())
	head, err := s.head.Render(meta)
	if err != nil {
		s.logger.Error("render page head", zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	s.metrics.pageRendered(pages.NormalizeRoute(r.URL.Path))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = fmt.Fprintf(w, "<!doctype html>\n<html>\n<head>\n%s</head>\n<body>\n<main id=\"app\"></main>\n</body>\n</html>\n", head)
}

type componentsResponse struct {
	Components []editor.Component `json:"components"`
	Multiple   bool               `json:"multiple"`
	Annotated  bool               `json:"annotated"`
}

func (s *Server) components(w http.ResponseWriter, r *http.Request) {
	schema, ok := s.readSchema(w, r)
	if !ok {
		return
	}
	annotation := editor.ParseAnnotation(schema)
	s.metrics.schemaInspected("components", len(annotation.Dropped))

	s.writeJSON(w, http.StatusOK, componentsResponse{
		Components: editor.Components(schema),
		Multiple:   editor.HasMultipleComponents(schema),
		Annotated:  editor.IsSchemaWithExtension(schema),
	})
}

func (s *Server) bindings(w http.ResponseWriter, r *http.Request) {
	schema, ok := s.readSchema(w, r)
	if !ok {
		return
	}
	bindings := editor.Collect(schema)
	if bindings == nil {
		bindings = []editor.Binding{}
	}
	dropped := 0
	for _, binding := range bindings {
		dropped += len(binding.Dropped)
	}
	s.metrics.schemaInspected("bindings", dropped)
	s.writeJSON(w, http.StatusOK, bindings)
}

func (s *Server) pages(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.registry.Layouts())
}

func (s *Server) readSchema(w http.ResponseWriter, r *http.Request) (editor.Schema, bool) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return nil, false
		}
		s.writeError(w, http.StatusBadRequest, "failed to read request body")
		return nil, false
	}

	var schema editor.Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		s.logger.Debug("invalid schema payload", zap.String("path", r.URL.Path), zap.Error(err))
		s.writeError(w, http.StatusBadRequest, "request body must be a JSON object")
		return nil, false
	}
	if schema == nil {
		s.writeError(w, http.StatusBadRequest, "request body must be a JSON object")
		return nil, false
	}
	return schema, true
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encode response", zap.Error(err))
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
