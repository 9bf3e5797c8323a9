package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"streetpulse/internal/config"
	"streetpulse/internal/dataprocessing"
	apierrors "streetpulse/internal/errors"
	"streetpulse/internal/files"
	"streetpulse/internal/infrastructure"
	customMiddleware "streetpulse/internal/middleware"
	"streetpulse/internal/services"
	handlers "streetpulse/internal/transport/http"
	"streetpulse/pkg/contracts"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	Services      *ServiceContainer
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.DatasetMetrics
	ErrorHandler  *apierrors.ErrorHandler

	logCloser io.Closer
	listener  net.Listener
	serveErr  chan error
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Dataset     *dataprocessing.Dataset
	Aggregation *services.AggregationService
	Health      *services.HealthService
}

// NewApplication loads configuration from the environment and builds the
// application around it.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, closer, err := infrastructure.NewLogger(cfg.Logging, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a, err := NewApplicationWithConfig(cfg, logger)
	if err != nil {
		closer.Close()
		return nil, err
	}
	a.logCloser = closer
	return a, nil
}

// NewApplicationWithConfig wires the application from an already loaded
// configuration. The dataset is read once; a load failure is fatal.
func NewApplicationWithConfig(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.String("source", cfg.Dataset.SourcePath))

	otelProviders, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.NewDatasetMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}
	if err := infrastructure.RegisterRuntimeMetrics(otelProviders.Meter); err != nil {
		return nil, fmt.Errorf("failed to register runtime metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Development),
		logCloser:     nopCloser{},
	}

	if err := app.initializeServices(context.Background()); err != nil {
		otelProviders.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// loadDataset reads the configured source and records load metrics.
func (a *Application) loadDataset(ctx context.Context) (*dataprocessing.Dataset, error) {
	ds := a.Config.Dataset
	loc, err := ds.Location()
	if err != nil {
		return nil, apierrors.NewConfigError("invalid dataset timezone", err)
	}

	opts := dataprocessing.Options{
		ExcludedLocation: ds.ExcludedLocation,
		LastYearStart:    ds.LastYearStart,
		Delimiter:        ds.DelimiterRune(),
		Location:         loc,
		Logger:           a.Logger,
	}

	src, err := files.NewDiscovery("").Resolve(ds.SourcePath)
	if err != nil {
		return nil, apierrors.NewStorageError("failed to locate dataset", err).
			WithContext("source", ds.SourcePath)
	}

	ctx, span := a.OTelProviders.Tracer.Start(ctx, "dataset.load")
	defer span.End()

	start := time.Now()
	dataset, err := dataprocessing.Load(ctx, src.Path, opts)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, classifyLoadError(err).WithContext("source", src.Path)
	}
	a.Metrics.RecordLoad(ctx, time.Since(start),
		dataset.Stats.PreviousRows+dataset.Stats.LastRows, dataset.Stats.RowsExcluded)
	return dataset, nil
}

// classifyLoadError separates rejected values in readable rows from
// sources that could not be decoded at all.
func classifyLoadError(err error) *apierrors.AppError {
	var malformed *dataprocessing.MalformedInputError
	var timestamp *dataprocessing.UnparsableTimestampError
	if errors.As(err, &timestamp) || (errors.As(err, &malformed) && malformed.Row > 0) {
		return apierrors.NewDataValidationError("dataset contains invalid rows", err)
	}
	return apierrors.NewParsingError("failed to load dataset", err)
}

// initializeServices loads the dataset and builds the services over it.
func (a *Application) initializeServices(ctx context.Context) error {
	dataset, err := a.loadDataset(ctx)
	if err != nil {
		return err
	}

	aggregation := services.NewAggregationService(dataset, services.AggregationOptions{
		CacheEnabled:    a.Config.Cache.Enabled,
		CacheTTL:        a.Config.Cache.TTL,
		CleanupInterval: a.Config.Cache.CleanupInterval,
		Metrics:         a.Metrics,
		Tracer:          a.OTelProviders.Tracer,
		Logger:          a.Logger,
	})

	a.Services = &ServiceContainer{
		Dataset:     dataset,
		Aggregation: aggregation,
		Health:      services.NewHealthService(dataset, a.Logger),
	}
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	// RequestID → chi RealIP → OTel → Logger → Recoverer → Security → CORS → RateLimit → Timeout
	r.Use(customMiddleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics, a.Logger).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(a.ErrorHandler.Recover)
	r.Use(customMiddleware.SecurityHeaders)

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(a.Config.Security))
	}

	// Prometheus scrapes are not rate limited.
	r.Handle(config.MetricsEndpoint, handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, a.ErrorHandler))

	r.Group(func(r chi.Router) {
		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
				a.ErrorHandler,
			).Handler)
		}
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))
		a.setupAPIRoutes(r)
	})

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route(config.APIBasePath, func(r chi.Router) {
		r.NotFound(a.ErrorHandler.NotFound)
		r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

		handlers.NewHealthHandler(a.Services.Health, a.Logger).RegisterRoutes(r)
		handlers.NewAggregatesHandler(a.Services.Aggregation, a.Logger, a.ErrorHandler).RegisterRoutes(r)
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         a.Config.Server.Addr(),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(a.Logger.Handler(), slog.LevelError),
	}
}

// Addr is the address the server listens on once started.
func (a *Application) Addr() string {
	if a.listener != nil {
		return a.listener.Addr().String()
	}
	return a.Server.Addr
}

// Start binds the listener and serves in the background. A serve failure
// cancels the context through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	a.listener = ln
	a.serveErr = make(chan error, 1)

	go func() {
		err := a.Server.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			a.serveErr <- err
			cancel()
		}
		close(a.serveErr)
	}()

	if err := a.performStartupHealthCheck(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Startup health check warnings", slog.String("warnings", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", ln.Addr().String()),
		slog.Int("previous_rows", a.Services.Dataset.Stats.PreviousRows),
		slog.Int("last_rows", a.Services.Dataset.Stats.LastRows))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	if err := a.logCloser.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close log file: %w", err))
	}
	return errors.Join(errs...)
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	<-ctx.Done()
	a.Logger.Info("Received shutdown signal")

	stopErr := a.Stop(context.Background())
	if serveErr := <-a.serveErr; serveErr != nil {
		return errors.Join(serveErr, stopErr)
	}
	return stopErr
}

// performStartupHealthCheck reports windows that ended up without data.
func (a *Application) performStartupHealthCheck(ctx context.Context) error {
	status := a.Services.Health.ReadinessCheck(ctx)
	if status.Status == services.StatusReady {
		return nil
	}

	var warnings []error
	for name, svc := range status.Services {
		if svc.Status != services.StatusReady {
			warnings = append(warnings, fmt.Errorf("%s: %s", name, svc.Message))
		}
	}
	return errors.Join(warnings...)
}
