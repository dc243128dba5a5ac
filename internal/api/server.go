// Package api provides the RESTful HTTP API server for contract-desk.
//
// SYSTEM ARCHITECTURE ROLE:
// This module implements the HTTP interface layer. Every endpoint runs a named
// command through the CommandExecutor, so the API, CLI and TUI share the same
// drafting and review semantics.
//
// KEY RESPONSIBILITIES:
// - Expose matter sessions, the clause library and the playbook over HTTP
// - Apply the middleware stack (recovery, logging, CORS, JSON content type)
// - Validate route params, queries and bodies before commands run
// - Serve Prometheus metrics and the OpenAPI documentation
//
// INTEGRATION POINTS:
// - internal/commands/types.go: APIServer.executor executes all operations through CommandExecutor
// - internal/errors/handlers.go: APIServer.errorHandler (HTTPErrorHandler) formats error responses
// - internal/validation/middleware.go: routes are wrapped with RequestValidator.ValidateRequest
// - internal/metrics: request counts by route pattern, /metrics exposition
// - internal/api/openapi.go: Self-documenting API with OpenAPI spec at /api/docs and /api/openapi.json
//
// MIDDLEWARE STACK:
// - Recovery: panics become INTERNAL_ERROR responses
// - Logging: zap request log with route pattern, status and duration
// - CORS: Cross-origin resource sharing for browser clients
// - Content-Type: JSON by default; downloads override it
//
// ENDPOINT STRUCTURE:
// - /api/v1/matters: matter sessions, drafting and review
// - /api/v1/clauses, /drafts, /playbook, /positions: the library
// - /api/v1/health and /health: health report
// - /metrics: Prometheus exposition
// - /api/docs: Interactive API documentation
package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"mime"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/dpshade/contract-desk/internal/commands"
	"github.com/dpshade/contract-desk/internal/errors"
	"github.com/dpshade/contract-desk/internal/metrics"
	"github.com/dpshade/contract-desk/internal/service"
	"github.com/dpshade/contract-desk/internal/validation"
)

// DefaultPort is used when no port is configured
const DefaultPort = 8080

// Options configures an APIServer
type Options struct {
	Port    int
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// APIServer serves the HTTP API
type APIServer struct {
	service      *service.Service
	executor     *commands.CommandExecutor
	errorHandler *errors.HTTPErrorHandler
	validator    *validation.RequestValidator
	metrics      *metrics.Metrics
	logger       *zap.Logger
	port         int
	server       *http.Server
}

// NewAPIServer creates a new API server instance
func NewAPIServer(svc *service.Service, opts Options) *APIServer {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	port := opts.Port
	if port == 0 {
		port = DefaultPort
	}
	logger = logger.Named("api")

	s := &APIServer{
		service:      svc,
		executor:     commands.NewCommandExecutor(svc),
		errorHandler: errors.NewHTTPErrorHandler(true, logger),
		validator:    validation.NewRequestValidator(logger),
		metrics:      opts.Metrics,
		logger:       logger,
		port:         port,
	}
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Router builds the chi route tree
func (s *APIServer) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.errorMiddleware, s.loggingMiddleware, s.corsMiddleware)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, errors.NotFoundError("route '"+r.URL.Path+"'"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, errors.NewAppError(errors.ErrCodeInvalidCommand, "Method not allowed"))
	})

	v := s.validator.ValidateRequest

	r.Get("/health", s.command("health", http.StatusOK))
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	r.Get("/api/docs", s.handleOpenAPI)
	r.Get("/api/openapi.json", s.handleOpenAPISpec)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.contentTypeMiddleware)

		r.Get("/health", s.command("health", http.StatusOK))

		r.Get("/matters", s.handleListMatters)
		r.With(v("create_matter")).Post("/matters", s.command("create-matter", http.StatusCreated))

		r.Route("/matters/{matter_id}", func(r chi.Router) {
			r.With(v("matter_ref")).Get("/", s.command("get-matter", http.StatusOK))
			r.With(v("matter_ref")).Delete("/", s.command("delete-matter", http.StatusOK))
			r.With(v("set_fields")).Patch("/fields", s.command("set-fields", http.StatusOK))
			r.With(v("matter_ref")).Post("/generate", s.command("generate", http.StatusOK))
			r.With(v("insert_clause")).Post("/clauses/{clause_id}", s.command("insert-clause", http.StatusOK))
			r.With(v("load_draft")).Post("/drafts/{draft_id}", s.command("load-draft", http.StatusOK))
			r.With(v("matter_ref")).Get("/readiness", s.command("readiness", http.StatusOK))
			r.With(v("replace_document")).Put("/document", s.command("replace-document", http.StatusOK))
			r.With(v("export")).Get("/export", s.download("export"))
			r.With(v("upload")).Post("/upload", s.command("upload", http.StatusOK))
			r.With(v("matter_ref")).Post("/analysis", s.command("analyze", http.StatusOK))
			r.With(v("matter_ref")).Get("/report", s.download("report"))
		})

		r.Get("/clauses", s.command("list-clauses", http.StatusOK))
		r.With(aliasQuery("q", "query"), v("search_clauses")).Get("/clauses/search", s.command("search-clauses", http.StatusOK))
		r.Get("/drafts", s.command("list-drafts", http.StatusOK))
		r.Get("/playbook", s.command("playbook", http.StatusOK))
		r.Get("/positions", s.command("list-positions", http.StatusOK))
		r.With(v("copy_position")).Post("/positions/{position_id}/copy", s.command("copy-position", http.StatusOK))
	})

	return r
}

// aliasQuery copies a short query parameter onto the name a schema expects
func aliasQuery(from, to string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if q.Has(from) && !q.Has(to) {
				q.Set(to, q.Get(from))
				q.Del(from)
				r.URL.RawQuery = q.Encode()
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Start serves until the server is shut down
func (s *APIServer) Start() error {
	s.logger.Info("API server starting",
		zap.String("url", fmt.Sprintf("http://localhost:%d", s.port)),
		zap.String("docs", fmt.Sprintf("http://localhost:%d/api/docs", s.port)))

	if err := s.server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the server
func (s *APIServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Run serves until ctx is done, then shuts down within ten seconds
func (s *APIServer) Run(ctx context.Context) error {
	s.server.BaseContext = func(net.Listener) context.Context { return ctx }

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("api shutdown: %w", err)
		}
		return <-errCh
	}
}

// loggingMiddleware logs requests and counts them by route pattern
func (s *APIServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := ""
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.ObserveHTTP(route, status)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote", r.RemoteAddr))
	})
}

// corsMiddleware handles CORS headers
func (s *APIServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Notice")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// contentTypeMiddleware sets default content type
func (s *APIServer) contentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// errorMiddleware recovers from panics
func (s *APIServer) errorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.logger.Error("panic in handler", zap.Any("panic", rec), zap.String("path", r.URL.Path))
				s.writeError(w, errors.InternalError("Internal server error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// APIResponse represents a standardized API response
type APIResponse struct {
	Success   bool      `json:"success"`
	Data      any       `json:"data,omitempty"`
	Message   string    `json:"message,omitempty"`
	Notice    string    `json:"notice,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// writeResponse writes a standardized JSON response
func (s *APIServer) writeResponse(w http.ResponseWriter, result *commands.CommandResult, statusCode int) {
	response := APIResponse{
		Success:   true,
		Data:      result.Data,
		Message:   result.Message,
		Notice:    result.Notice,
		Timestamp: s.service.Now(),
	}

	w.WriteHeader(statusCode)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(response); err != nil {
		s.logger.Warn("failed to encode response", zap.Error(err))
	}
}

// writeError writes an error response using the error handler
func (s *APIServer) writeError(w http.ResponseWriter, err error) {
	s.errorHandler.WriteHTTPError(w, err)
}

// run executes a command with the request's validated data
func (s *APIServer) run(w http.ResponseWriter, r *http.Request, name string) (*commands.CommandResult, bool) {
	result, err := s.executor.Execute(r.Context(), name, validation.ValidatedData(r))
	if err != nil {
		s.writeError(w, errors.CancelledError(name, err))
		return nil, false
	}
	if !result.Success {
		if result.Error != nil {
			s.writeError(w, result.Error.AppError())
		} else {
			s.writeError(w, errors.InternalError("Command failed"))
		}
		return nil, false
	}
	return result, true
}

// command returns a handler that runs name and writes a JSON envelope
func (s *APIServer) command(name string, status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if result, ok := s.run(w, r, name); ok {
			s.writeResponse(w, result, status)
		}
	}
}

// download returns a handler that runs name and writes the export as a file
func (s *APIServer) download(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, ok := s.run(w, r, name)
		if !ok {
			return
		}
		export, ok := result.Data.(service.Export)
		if !ok {
			s.writeError(w, errors.InternalError("unexpected export payload"))
			return
		}
		w.Header().Set("Content-Type", export.ContentType)
		w.Header().Set("Content-Disposition",
			mime.FormatMediaType("attachment", map[string]string{"filename": export.Filename}))
		w.Header().Set("X-Notice", export.Notice.Message)
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(export.Content)); err != nil {
			s.logger.Warn("failed to write download", zap.String("command", name), zap.Error(err))
		}
	}
}

// handleListMatters handles GET /api/v1/matters
func (s *APIServer) handleListMatters(w http.ResponseWriter, r *http.Request) {
	matters := s.service.ListMatters()
	s.writeResponse(w, &commands.CommandResult{
		Success: true,
		Data:    matters,
		Message: fmt.Sprintf("%d matters", len(matters)),
	}, http.StatusOK)
}
