package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"ordermetrics/internal/config"
	apierrors "ordermetrics/internal/errors"
	"ordermetrics/internal/exporter"
	"ordermetrics/internal/files"
	"ordermetrics/internal/infrastructure"
	customMiddleware "ordermetrics/internal/middleware"
	"ordermetrics/internal/services"
	"ordermetrics/internal/storage"
	handlers "ordermetrics/internal/transport/http"
	ws "ordermetrics/internal/websocket"
	"ordermetrics/pkg/contracts"
)

// rateLimiterPruneInterval is how often idle rate limiter buckets are dropped
const rateLimiterPruneInterval = time.Minute

// compressionLevel is the gzip level used for JSON and CSV responses
const compressionLevel = 5

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	SystemMetrics *infrastructure.SystemMetrics
	Store         *storage.MemoryStore
	WebSocketHub  *ws.Hub
	RateLimiter   *customMiddleware.RateLimiter
	Services      *ServiceContainer
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Ingestion *services.IngestionService
	Metrics   *services.MetricsService
	Health    *services.HealthService
}

// NewApplication loads configuration, initializes the global logger and
// wires the application
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, apierrors.NewConfigError("failed to load configuration", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// New wires an application around an explicit configuration and logger
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.Int("port", cfg.Server.Port))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	businessMetrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	systemMetrics, err := infrastructure.NewSystemMetrics(otelProviders.Meter, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to create system metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       businessMetrics,
		SystemMetrics: systemMetrics,
	}

	app.initializeServices()
	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices creates the store, the event hub and the services
func (a *Application) initializeServices() {
	a.Store = storage.NewMemoryStore(storage.DefaultShards)
	a.WebSocketHub = ws.NewHub(a.Logger, a.Metrics)

	downloader := files.NewDownloader(a.Config.Ingest, a.Logger)

	a.Services = &ServiceContainer{
		Ingestion: services.NewIngestionService(downloader, a.Store, services.IngestionOptions{
			Encodings: a.Config.Ingest.Encodings,
			Publisher: a.WebSocketHub,
			Metrics:   a.Metrics,
			Tracer:    a.OTelProviders.Tracer,
		}, a.Logger),
		Metrics: services.NewMetricsService(a.Store, services.MetricsOptions{
			Exporter: exporter.New(a.Logger),
			Metrics:  a.Metrics,
			Tracer:   a.OTelProviders.Tracer,
		}, a.Logger),
		Health: services.NewHealthService(a.Store, a.SystemMetrics, a.WebSocketHub, a.Logger),
	}

	if rl := a.Config.Security.RateLimit; rl.Enabled {
		a.RateLimiter = customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.Logger)
	}

	a.Logger.Info("Services initialized",
		slog.Int("store_shards", storage.DefaultShards),
		slog.Any("encodings", a.Config.Ingest.Encodings),
		slog.Bool("rate_limit", a.RateLimiter != nil))
}

// setupRouter configures the chi router with middleware and routes.
// CORS runs on the root mux so preflights reach it before method matching.
// The WebSocket and Prometheus endpoints sit outside the API middleware
// stack so that response wrapping does not break the upgrade.
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	errorHandler := apierrors.NewErrorHandler(a.Logger, a.Config.Logging.Development)

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(a.getCORSConfig()))
	}

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	r.With(customMiddleware.WebSocketTraceMiddleware(a.Logger)).
		Handle(config.WebSocketEndpoint, ws.NewHandler(a.WebSocketHub, a.Config.WebSocket, a.Config.Security.AllowedOrigins, a.Logger))

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle(config.MetricsEndpoint, a.OTelProviders.PrometheusHTTP)
	}

	secureHeaders := customMiddleware.DefaultSecureHeaders()
	secureHeaders.DevMode = a.Config.Logging.Development

	validator := customMiddleware.NewValidator(a.Logger)
	healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
	orderItems := handlers.OrderItemsRoutes(
		handlers.NewUploadHandler(a.Services.Ingestion, validator, a.Logger, errorHandler),
		handlers.NewMetricsHandler(a.Services.Metrics, validator, a.Logger, errorHandler),
	)

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(secureHeaders.Handler)
		if a.RateLimiter != nil {
			r.Use(a.RateLimiter.Handler)
		}
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))
		r.Use(customMiddleware.Compress(compressionLevel))
		r.Use(customMiddleware.AuditLog(a.Logger))

		r.Mount(config.HealthEndpoint, healthHandler.Routes())
		r.Get(config.APIBasePath+"/version", healthHandler.Version)

		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.ContentTypeValidator(
				"application/x-www-form-urlencoded",
				"multipart/form-data",
				"application/json",
				"text/plain",
			))
			r.Use(customMiddleware.TraceMiddleware(a.OTelProviders.Tracer, "order_items"))
			r.Use(apierrors.NewErrorMiddleware(errorHandler, a.Logger).Handler)
			r.Group(orderItems)
			r.Route(config.OrderItemsPath, orderItems)
		})
	})

	a.Router = r
}

// getCORSConfig returns the CORS configuration built from the security settings
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			customMiddleware.RequestIDHeader,
			"X-Requested-With",
		},
		ExposedHeaders: []string{
			customMiddleware.RequestIDHeader,
			"Content-Disposition",
		},
		MaxAge: 300,
		Logger: a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Run listens on the configured port and serves until ctx is cancelled or
// SIGINT/SIGTERM is received
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}

	return a.Serve(ctx, ln)
}

// Serve runs the HTTP server on ln together with the background workers.
// When ctx is done the application is stopped gracefully.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	ctx = infrastructure.EnsureTraceID(ctx)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.WebSocketHub.Run(gctx)
	})

	if a.RateLimiter != nil {
		g.Go(func() error {
			return a.RateLimiter.Run(gctx, rateLimiterPruneInterval)
		})
	}

	g.Go(func() error {
		a.Logger.InfoContext(ctx, "Application started",
			slog.String("address", ln.Addr().String()),
			slog.String("version", contracts.Version))

		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.Stop(context.WithoutCancel(ctx))
	})

	return g.Wait()
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}

	cleared := a.Store.Clear()
	infrastructure.RecordStoredUploadChange(ctx, a.Metrics, -int64(cleared))
	a.Logger.InfoContext(ctx, "Upload store cleared", slog.Int("uploads", cleared))

	if err := a.SystemMetrics.Close(); err != nil {
		a.Logger.ErrorContext(ctx, "Error closing system metrics", slog.String("error", err.Error()))
	}

	if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}
