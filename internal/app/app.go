package app

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"datacleanr/internal/config"
	apierrors "datacleanr/internal/errors"
	"datacleanr/internal/exporter"
	"datacleanr/internal/industry"
	"datacleanr/internal/infrastructure"
	customMiddleware "datacleanr/internal/middleware"
	"datacleanr/internal/services"
	"datacleanr/internal/session"
	handlers "datacleanr/internal/transport/http"
	ws "datacleanr/internal/websocket"
	"datacleanr/pkg/contracts"
)

var (
	// BuildTime is set at compile time
	BuildTime = time.Now().Format(time.RFC3339)
	// BuildID is a unique identifier for this build
	BuildID = generateBuildID()
)

func generateBuildID() string {
	h := sha256.New()
	h.Write([]byte(contracts.Version))
	h.Write([]byte(time.Now().Format("2006-01-02")))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// Application represents the main application container
type Application struct {
	Config          *config.Config
	Router          *chi.Mux
	Server          *http.Server
	Logger          *slog.Logger
	OTelProviders   *infrastructure.OTelProviders
	Metrics         *infrastructure.BusinessMetrics
	ErrorHandler    *apierrors.ErrorHandler
	Store           session.Store
	Exporter        *exporter.Exporter
	Rules           *industry.RuleSet
	WebSocketHub    *ws.Hub
	CleaningService *services.CleaningService
	HealthService   *services.HealthService
	Sweeper         *session.Sweeper

	stopSweeper context.CancelFunc
	sweeperDone chan struct{}
}

// NewApplication loads the configuration and the global logger, then
// builds the application
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// New wires every component for cfg
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.String("storage_backend", cfg.Storage.Backend))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Development),
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	store, err := session.Open(context.Background(), a.Config.Storage.Backend, a.Config.Storage.DSN)
	if err != nil {
		return apierrors.NewStorageError("failed to open session store", err).
			WithContext("backend", a.Config.Storage.Backend)
	}
	a.Store = store

	a.Rules = industry.DefaultRuleSet()
	if a.Config.Rules.File != "" {
		rules, err := industry.LoadRuleSet(a.Config.Rules.File)
		if err != nil {
			return apierrors.NewParsingError("failed to load industry rules", err).
				WithContext("file", a.Config.Rules.File)
		}
		a.Rules = rules
		a.Logger.Info("Industry rules loaded", slog.String("file", a.Config.Rules.File))
	}

	exp, err := exporter.New(filepath.Join(a.Config.Storage.ScratchDir, "datacleanr"), a.Logger)
	if err != nil {
		return apierrors.NewExportError("failed to prepare export directory", err)
	}
	a.Exporter = exp

	a.WebSocketHub = ws.NewHub(ws.Options{
		PingPeriod: a.Config.WebSocket.PingPeriod,
		PongWait:   a.Config.WebSocket.PongWait,
	}, a.Logger)

	a.CleaningService = services.NewCleaningService(store, exp, a.Rules, a.WebSocketHub, a.Metrics, a.Logger)

	a.HealthService = services.NewHealthService(
		contracts.Version,
		BuildTime,
		BuildID,
		store,
		exp.Dir(),
		a.WebSocketHub,
		a.Logger,
	)

	a.Sweeper = session.NewSweeper(store,
		a.Config.Storage.SessionTTL,
		a.Config.Storage.SweepInterval,
		a.Logger,
		a.CleaningService.ExpireSession,
	)

	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(apierrors.RecoveryMiddleware(a.ErrorHandler))

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	// The upgrade must see the raw ResponseWriter, so /ws skips the
	// wrapping middleware below
	wsHandler := ws.NewHandler(a.WebSocketHub,
		a.Config.WebSocket.ReadBufferSize,
		a.Config.WebSocket.WriteBufferSize,
		a.Config.Security.AllowedOrigins,
		a.Logger,
		a.ErrorHandler,
	)
	r.Handle("/ws", wsHandler)

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	} else {
		r.Handle("/metrics", handlers.NewMetricsHandler(nil, a.ErrorHandler))
	}

	r.Group(func(r chi.Router) {
		// RequestID → RealIP → OTel → Logger → Recoverer → Timeout
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.getCORSConfig()))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
				a.ErrorHandler,
			).Handler)
		}

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			render.JSON(w, r, map[string]string{"message": "DataCleanr API is running"})
		})

		a.setupAPIRoutes(r)
	})

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout))
		r.Use(customMiddleware.Compress(5, "application/json", "text/csv"))

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger, a.ErrorHandler)
		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)

		cleaningHandler := handlers.NewCleaningHandler(
			a.CleaningService,
			customMiddleware.NewValidator(),
			a.Config.Server.MaxUploadBytes,
			a.Logger,
			a.ErrorHandler,
		)
		r.Mount("/", cleaningHandler.Routes())
	})
}

// getCORSConfig builds the CORS settings from the security config
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	cfg := customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{
			"X-Request-ID",
			"Content-Disposition",
		},
		MaxAge: 300,
		Logger: a.Logger,
	}

	a.Logger.Info("CORS configured", slog.Any("allowed_origins", cfg.AllowedOrigins))
	return cfg
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Addr(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the background services and the HTTP server. A listen
// failure calls cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.String("address", a.Server.Addr),
		slog.String("scratch_dir", a.Exporter.Dir()),
		slog.String("level", a.Config.Logging.Level))

	a.WebSocketHub.Start()
	a.startSweeper(ctx)

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	if status := a.HealthService.ReadinessCheck(ctx); status.Status != "ready" {
		a.Logger.WarnContext(ctx, "Startup readiness check failed", slog.Any("services", status.Services))
	}

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://%s", a.Server.Addr)))
	return nil
}

func (a *Application) startSweeper(ctx context.Context) {
	sweepCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	a.stopSweeper = stop
	a.sweeperDone = make(chan struct{})
	go func() {
		defer close(a.sweeperDone)
		a.Sweeper.Run(sweepCtx)
	}()
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.Server.ShutdownTimeout)
	defer cancel()

	var shutdownErr error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		shutdownErr = fmt.Errorf("server shutdown error: %w", err)
	}

	if a.stopSweeper != nil {
		a.stopSweeper()
		<-a.sweeperDone
	}
	a.WebSocketHub.Stop()

	if err := a.Store.Close(); err != nil {
		a.Logger.ErrorContext(ctx, "Error closing session store", slog.String("error", err.Error()))
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return shutdownErr
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
		a.Logger.ErrorContext(ctx, "Server stopped unexpectedly")
	}

	return a.Stop(ctx)
}
