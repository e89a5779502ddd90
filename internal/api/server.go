package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mattjoyce/hmacsvc/internal/signer"
)

//go:generate mockgen -destination=mocks/mock_auditor.go -package=mocks github.com/mattjoyce/hmacsvc/internal/api Auditor

// Auditor receives one record per successful sign/verify request.
// Implementations must not need the message, the signature or the secret.
type Auditor interface {
	RecordSign(ctx context.Context, msgLen int)
	RecordVerify(ctx context.Context, msgLen int, ok bool)
}

// Config holds API server configuration
type Config struct {
	Listen string
	// MaxMsgSizeBytes bounds both the message and the decoded signature.
	MaxMsgSizeBytes int
}

// Server represents the HTTP API server
type Server struct {
	config    Config
	signer    *signer.Signer
	auditor   Auditor
	logger    *slog.Logger
	server    *http.Server
	startedAt time.Time
}

// New creates a new API server instance. The signer and config are shared
// read-only by every request.
func New(config Config, s *signer.Signer, auditor Auditor, logger *slog.Logger) *Server {
	return &Server{
		config:    config,
		signer:    s,
		auditor:   auditor,
		logger:    logger,
		startedAt: time.Now(),
	}
}

// Start starts the HTTP server (blocking)
func (s *Server) Start(ctx context.Context) error {
	router := s.setupRoutes()

	s.server = &http.Server{
		Addr:              s.config.Listen,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.logger.Info("API server starting", "listen", s.config.Listen, "max_msg_size_bytes", s.config.MaxMsgSizeBytes)

	// Run server in a goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for context cancellation or server error
	select {
	case <-ctx.Done():
		s.logger.Info("API server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
}

// setupRoutes configures the HTTP router
func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Post("/sign", s.handleSign)
	r.Post("/verify", s.handleVerify)

	return r
}

// loggingMiddleware logs HTTP requests. Bodies are never logged.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
