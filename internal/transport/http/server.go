package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/allisson/secrets/internal/httputil"
	invocationHTTP "github.com/allisson/secrets/internal/invocation/http"
	auditlogHTTP "github.com/allisson/secrets/internal/auditlog/http"
	skillvaultHTTP "github.com/allisson/secrets/internal/skillvault/http"
)

// Server is the HTTP binding for the skill security subsystem's core
// operations. It is a reference transport, not a hardened public API: callers
// authenticate with a bare X-Caller-ID header rather than any token scheme.
type Server struct {
	server *http.Server
	logger *slog.Logger
	mux    *http.ServeMux
}

// NewServer creates a new HTTP server bound to host:port.
func NewServer(host string, port int, logger *slog.Logger) *Server {
	return &Server{
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRoutes wires every route onto the server's mux: health/readiness
// outside versioning, and the vault/invocation/audit operations under /v1.
func (s *Server) SetupRoutes(
	packageHandler *skillvaultHTTP.PackageHandler,
	invokeHandler *invocationHTTP.InvokeHandler,
	auditHandler *auditlogHTTP.AuditHandler,
) {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /ready", s.readinessHandler)

	mux.HandleFunc("POST /v1/packages/{id}/upload", packageHandler.UploadHandler)
	mux.HandleFunc("GET /v1/packages/{id}", packageHandler.ReadHandler)
	mux.HandleFunc("DELETE /v1/packages/{id}", packageHandler.RevokeHandler)

	mux.HandleFunc("POST /v1/packages/{id}/invoke", invokeHandler.InvokeHandler)

	mux.HandleFunc("GET /v1/packages/{id}/audit/verify", auditHandler.VerifyHandler)

	s.mux = mux
	s.server.Handler = ChainMiddleware(
		RecoveryMiddleware(s.logger),
		LoggingMiddleware(s.logger),
	)(mux)
}

// Handler returns the underlying http.Handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start runs the HTTP server until it is shut down or fails.
func (s *Server) Start(ctx context.Context) error {
	if s.mux == nil {
		return fmt.Errorf("routes not initialized - call SetupRoutes first")
	}

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	httputil.MakeJSONResponse(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	httputil.MakeJSONResponse(w, http.StatusOK, map[string]string{"status": "ready"})
}
