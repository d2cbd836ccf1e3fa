package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/seekframe/indexd/api/handlers"
	"github.com/seekframe/indexd/config"
	"github.com/seekframe/indexd/core"
	"github.com/seekframe/indexd/index"
	"github.com/seekframe/indexd/ingest"
	"github.com/seekframe/indexd/internal/metrics"
	"github.com/seekframe/indexd/internal/server"
	"github.com/seekframe/indexd/internal/telemetry"
	"github.com/seekframe/indexd/params"
	"github.com/seekframe/indexd/update"
)

// =============================================================================
// 🖥️ Server
// =============================================================================

// endpoint binds an update path to the parameters its URL implies.
// Presets sit between explicit request parameters and loader defaults.
type endpoint struct {
	path    string
	presets params.MapParams
}

// updateEndpoints is the fixed endpoint table. Each path pins the
// content type (and JSON parsing mode) the way its suffix promises.
var updateEndpoints = []endpoint{
	{path: "/update", presets: nil},
	{path: "/update/json", presets: params.MapParams{
		params.AssumeContentType: ingest.TypeJSON,
	}},
	{path: "/update/csv", presets: params.MapParams{
		params.AssumeContentType: ingest.TypeCSV,
	}},
	{path: "/update/json/docs", presets: params.MapParams{
		params.AssumeContentType: ingest.TypeJSON,
		params.JSONCommand:       "false",
	}},
}

// Server is the IndexD main server.
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	// Server managers
	httpManager    *server.Manager
	metricsManager *server.Manager

	// Document pipeline
	store index.Store
	core  *core.Core

	// Handlers
	healthHandler *handlers.HealthHandler

	// Metrics collector
	metricsCollector *metrics.Collector

	// Telemetry providers
	otelProviders *telemetry.Providers

	// Rate limiter lifecycle
	rateLimiterCancel context.CancelFunc

	wg sync.WaitGroup
}

// NewServer creates a new server instance.
func NewServer(cfg *config.Config, logger *zap.Logger, providers *telemetry.Providers) *Server {
	return &Server{
		cfg:           cfg,
		logger:        logger,
		otelProviders: providers,
	}
}

// =============================================================================
// 🚀 Startup
// =============================================================================

// Start brings up all services.
func (s *Server) Start() error {
	// 1. Metrics collector
	s.metricsCollector = metrics.NewCollector(s.cfg.Metrics.Namespace, s.logger)

	// 2. Document store and core
	if err := s.initCore(); err != nil {
		return fmt.Errorf("failed to init core: %w", err)
	}

	// 3. Handlers
	s.initHandlers()

	// 4. HTTP server
	if err := s.startHTTPServer(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	// 5. Metrics server
	if err := s.startMetricsServer(); err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}

	s.logger.Info("All servers started",
		zap.Int("http_port", s.cfg.Server.HTTPPort),
		zap.Int("metrics_port", s.cfg.Server.MetricsPort),
		zap.String("store_backend", s.cfg.Store.Backend),
	)

	return nil
}

// =============================================================================
// 🔧 Initialization
// =============================================================================

// initCore opens the configured store and assembles the core around it.
func (s *Server) initCore() error {
	store, err := index.Open(&s.cfg.Store, s.logger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	s.store = metrics.NewInstrumentedStore(store, s.metricsCollector)

	chain := update.Chain{
		update.LogFactory(s.logger),
		metrics.ProcessorFactory(s.metricsCollector),
		update.UUIDFactory(),
	}

	c, err := core.New(&s.cfg.Update, s.store, s.logger,
		core.WithName("indexd"),
		core.WithChain(chain),
		core.WithObserver(s.metricsCollector),
	)
	if err != nil {
		return fmt.Errorf("failed to assemble core: %w", err)
	}
	s.core = c

	return nil
}

// initHandlers initializes the shared handlers.
func (s *Server) initHandlers() {
	s.healthHandler = handlers.NewHealthHandler(s.logger)
	s.healthHandler.RegisterCheck(
		handlers.NewStoreHealthCheck(s.store.Name(), s.store.Ping),
	)

	s.logger.Info("Handlers initialized")
}

// =============================================================================
// 🌐 HTTP server
// =============================================================================

// startHTTPServer wires the routes and starts the HTTP server.
func (s *Server) startHTTPServer() error {
	mux := http.NewServeMux()

	// ========================================
	// Health endpoints
	// ========================================
	mux.HandleFunc("/health", s.healthHandler.HandleHealth)
	mux.HandleFunc("/healthz", s.healthHandler.HandleHealthz)
	mux.HandleFunc("/ready", s.healthHandler.HandleReady)
	mux.HandleFunc("/readyz", s.healthHandler.HandleReady)

	// Version endpoint
	mux.HandleFunc("/version", s.healthHandler.HandleVersion(Version, BuildTime, GitCommit))

	// ========================================
	// Update endpoints, one handler per descriptor
	// ========================================
	for _, ep := range updateEndpoints {
		mux.Handle(ep.path, handlers.NewUpdateHandler(s.core, ep.presets, s.logger))
	}

	// Realtime get endpoint
	mux.Handle("/get", handlers.NewGetHandler(s.core, s.logger))

	// ========================================
	// Middleware chain
	// ========================================
	skipAuthPaths := []string{"/health", "/healthz", "/ready", "/readyz", "/version", "/metrics"}
	rateLimiterCtx, rateLimiterCancel := context.WithCancel(context.Background())
	s.rateLimiterCancel = rateLimiterCancel
	handler := Chain(mux,
		Recovery(s.logger),
		RequestID(),
		SecurityHeaders(),
		RequestLogger(s.logger),
		MetricsMiddleware(s.metricsCollector),
		OTelTracing(),
		CORS(s.cfg.Server.CORSOrigin),
		BodyLimit(s.cfg.Server.MaxBodyBytes),
		RateLimiter(rateLimiterCtx, s.cfg.Server.RateLimitRPS, s.cfg.Server.RateLimitBurst, s.logger),
		APIKeyAuth(s.cfg.Server.APIKey, skipAuthPaths, s.logger),
		JWTAuth(s.cfg.Server.JWTSecret, s.cfg.Server.JWTPublicKey, skipAuthPaths, s.logger),
	)

	// ========================================
	// internal/server.Manager
	// ========================================
	serverConfig := server.Config{
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.HTTPPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		IdleTimeout:     2 * s.cfg.Server.ReadTimeout,
		MaxHeaderBytes:  1 << 20, // 1 MB
		MaxConns:        s.cfg.Server.MaxConns,
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}

	s.httpManager = server.NewManager(handler, serverConfig, s.logger)

	if err := s.httpManager.Start(); err != nil {
		return err
	}

	s.logger.Info("HTTP server started", zap.Int("port", s.cfg.Server.HTTPPort))
	return nil
}

// =============================================================================
// 📊 Metrics server
// =============================================================================

// startMetricsServer exposes /metrics on its own port.
func (s *Server) startMetricsServer() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	serverConfig := server.Config{
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.MetricsPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}

	s.metricsManager = server.NewManager(mux, serverConfig, s.logger)

	if err := s.metricsManager.Start(); err != nil {
		return err
	}

	s.logger.Info("Metrics server started", zap.Int("port", s.cfg.Server.MetricsPort))
	return nil
}

// =============================================================================
// 🛑 Shutdown
// =============================================================================

// WaitForShutdown blocks until a signal arrives, then shuts down.
func (s *Server) WaitForShutdown() {
	if s.httpManager != nil {
		s.httpManager.WaitForShutdown()
	}

	s.Shutdown()
}

// Shutdown gracefully stops all services.
func (s *Server) Shutdown() {
	s.logger.Info("Starting graceful shutdown...")

	ctx := context.Background()

	// 1. Stop the rate limiter cleanup goroutine
	if s.rateLimiterCancel != nil {
		s.rateLimiterCancel()
	}

	// 2. Stop the HTTP server
	if s.httpManager != nil {
		if err := s.httpManager.Shutdown(ctx); err != nil {
			s.logger.Error("HTTP server shutdown error", zap.Error(err))
		}
	}

	// 3. Stop the metrics server
	if s.metricsManager != nil {
		if err := s.metricsManager.Shutdown(ctx); err != nil {
			s.logger.Error("Metrics server shutdown error", zap.Error(err))
		}
	}

	// 4. Release the store
	if s.core != nil {
		if err := s.core.Close(); err != nil {
			s.logger.Error("Store close error", zap.Error(err))
		}
	}

	// 5. Flush telemetry
	if s.otelProviders != nil {
		if err := s.otelProviders.Shutdown(ctx); err != nil {
			s.logger.Error("Telemetry shutdown error", zap.Error(err))
		}
	}

	// 6. Wait for remaining goroutines
	s.wg.Wait()

	s.logger.Info("Graceful shutdown completed")
}
