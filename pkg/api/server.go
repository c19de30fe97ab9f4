package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/goran-ethernal/RWAListener/internal/common"
	"github.com/goran-ethernal/RWAListener/internal/logger"
	"github.com/goran-ethernal/RWAListener/pkg/api/docs"
	"github.com/goran-ethernal/RWAListener/pkg/config"
)

// Ensure docs are initialized
var _ = docs.SwaggerInfo

const shutdownCtxTimeout = 10 * time.Second

// Server represents the API HTTP server.
type Server struct {
	config  *config.APIConfig
	handler *Handler
	server  *http.Server
	log     *logger.Logger
}

// NewServer creates a new API server.
func NewServer(cfg *config.APIConfig, processors ProcessorRegistry, contracts ContractRegistry,
	checkpoints CheckpointReader, log *logger.Logger) *Server {
	log = log.WithComponent(common.ComponentAPI)
	handler := NewHandler(processors, contracts, checkpoints, log)

	httpServer := &http.Server{
		Addr:         cfg.ListenAddress,
		ReadTimeout:  cfg.ReadTimeout.Duration,
		WriteTimeout: cfg.WriteTimeout.Duration,
		IdleTimeout:  cfg.IdleTimeout.Duration,
	}

	s := &Server{
		config:  cfg,
		handler: handler,
		server:  httpServer,
		log:     log,
	}
	httpServer.Handler = s.Routes()

	return s
}

// Routes returns the API routes wrapped in the middleware chain.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handler.Health)
	mux.HandleFunc("GET /api/v1/status", s.handler.Status)
	mux.HandleFunc("GET /api/v1/processors", s.handler.ListProcessors)

	// Tracked contracts and their projections
	mux.HandleFunc("GET /api/v1/contracts", s.handler.ListContracts)
	mux.HandleFunc("GET /api/v1/contracts/{index}/{subindex}", s.handler.GetContract)
	mux.HandleFunc("GET /api/v1/contracts/{index}/{subindex}/{projection}", s.handler.QueryProjection)

	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
	))

	var h http.Handler = mux
	h = RecoveryMiddleware(s.log)(h)
	h = LoggingMiddleware(s.log)(h)

	if s.config.CORS.Enabled {
		h = CORSMiddleware(s.config.CORS.AllowedOrigins)(h)
	}

	return h
}

// Start runs the API server until ctx is cancelled, then shuts it down gracefully.
func (s *Server) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.log.Info("API server is disabled")
		return nil
	}

	s.log.Infof("Starting API server on %s", s.config.ListenAddress)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("API server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownCtxTimeout)
	defer cancel()

	s.log.Info("Shutting down API server...")
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("API server shutdown error: %w", err)
	}

	s.log.Info("API server stopped")
	return nil
}
