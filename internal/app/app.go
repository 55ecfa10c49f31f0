package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/Merco74/ScoutPlateform/common/logger"
	"github.com/Merco74/ScoutPlateform/common/telemetry"
	"github.com/Merco74/ScoutPlateform/internal/auth"
	"github.com/Merco74/ScoutPlateform/internal/config"
	"github.com/Merco74/ScoutPlateform/internal/db"
	"github.com/Merco74/ScoutPlateform/internal/document"
	"github.com/Merco74/ScoutPlateform/internal/grpcserver"
	"github.com/Merco74/ScoutPlateform/internal/health"
	"github.com/Merco74/ScoutPlateform/internal/legal"
	"github.com/Merco74/ScoutPlateform/internal/metrics"
	"github.com/Merco74/ScoutPlateform/internal/middleware"
	"github.com/Merco74/ScoutPlateform/internal/registration"
	"github.com/Merco74/ScoutPlateform/internal/storage"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
)

type App struct {
	config     *config.Config
	router     chi.Router
	server     *http.Server
	grpcServer *grpcserver.Server
	database   *bun.DB
	redis      *redis.Client
	publisher  eventPublisher
	telemetry  *telemetry.Telemetry
	logger     *slog.Logger
}

func New(ctx context.Context) (*App, error) {
	slogLogger := logger.NewWithServiceContext(ServiceName, Version)

	// Set as default logger so slog.Info() uses the same handler
	slog.SetDefault(slogLogger)

	slogLogger.InfoContext(ctx, "initializing application", "commit", GitCommit, "built", BuildTime)

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	slogLogger.InfoContext(ctx, "config loaded", "env", cfg.Env)

	app := &App{
		config: cfg,
		router: chi.NewRouter(),
		logger: slogLogger,
	}
	if err := app.init(ctx); err != nil {
		app.close(ctx)
		return nil, err
	}

	slogLogger.InfoContext(ctx, "application initialized successfully")
	return app, nil
}

func (a *App) init(ctx context.Context) error {
	cfg := a.config

	tel, err := telemetry.Init(ctx, ServiceName, Version, cfg.Env, a.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	a.telemetry = tel

	domainMetrics, err := metrics.New(otel.Meter(ServiceName))
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	categories, err := CategoryTable(cfg.Categories)
	if err != nil {
		return fmt.Errorf("invalid category table: %w", err)
	}

	loc, err := time.LoadLocation(cfg.Documents.Timezone)
	if err != nil {
		return fmt.Errorf("invalid documents timezone: %w", err)
	}

	a.database, err = db.New(cfg.Database)
	if err != nil {
		return err
	}
	if err := registration.Migrate(ctx, a.database); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	dependencies := []health.Dependency{{Name: "postgres", Check: a.database.PingContext}}

	sessions, redisClient, err := newSessionStore(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		a.redis = redisClient
		dependencies = append(dependencies, health.Dependency{Name: "redis", Check: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}})
	}

	publisher, publisherDep, err := newPublisher(cfg.Events, a.logger, tel.Metrics)
	if err != nil {
		return fmt.Errorf("failed to initialize events publisher: %w", err)
	}
	a.publisher = publisher
	if publisherDep != nil {
		dependencies = append(dependencies, *publisherDep)
	}

	names := make([]string, 0, len(dependencies))
	for _, dep := range dependencies {
		names = append(names, dep.Name)
	}
	if err := tel.Metrics.Health.RegisterDependencies(otel.Meter(ServiceName), names...); err != nil {
		a.logger.WarnContext(ctx, "failed to register dependency metrics", "error", err)
	}

	fs := afero.NewOsFs()
	documents, err := storage.NewDocumentStore(fs, cfg.Documents.Dir, cfg.Documents.URLPrefix, a.logger)
	if err != nil {
		return err
	}
	uploads, err := storage.NewUploadStore(fs, cfg.Uploads.Dir, cfg.Uploads.URLPrefix, cfg.Uploads.MaxFileSize, a.logger)
	if err != nil {
		return err
	}
	renderer := document.NewRenderer(fs, cfg.Documents.LogoPath, categories, a.logger, domainMetrics,
		document.WithLocation(loc),
	)

	opts := []registration.Option{
		registration.WithLocation(loc),
		registration.WithRegistrationPlace(cfg.Documents.IssuePlace),
	}
	if publisher != nil {
		opts = append(opts, registration.WithPublisher(publisher))
	}
	repo := registration.NewRepository(a.database, tel.Metrics)
	registrationService := registration.NewService(repo, renderer, documents, uploads, categories, a.logger, opts...)
	registrationHandler := registration.NewHandler(registrationService, a.logger, domainMetrics, cfg.Uploads.MaxFileSize)

	legalHandler, err := legal.NewHandler(legal.Notice{
		Organization: cfg.Legal.Organization,
		Manager:      cfg.Legal.Manager,
		Host:         cfg.Legal.Host,
		Contact:      cfg.Legal.Contact,
	})
	if err != nil {
		return fmt.Errorf("failed to render legal notice: %w", err)
	}

	authService, err := newAuthService(cfg.Auth, sessions, a.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize staff auth: %w", err)
	}

	// Global middleware
	a.router.Use(chimiddleware.RealIP)
	a.router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	health.NewHandler(a.logger, tel.Metrics, dependencies...).RegisterRoutes(a.router)
	legalHandler.RegisterRoutes(a.router)
	registrationHandler.RegisterRoutes(a.router)
	storage.Mount(a.router, cfg.Documents.URLPrefix, fs, cfg.Documents.Dir)
	storage.Mount(a.router, cfg.Uploads.URLPrefix, fs, cfg.Uploads.Dir)

	if authService != nil {
		loginLimiter := middleware.NewRateLimiter(cfg.Auth.LoginRate, cfg.Auth.LoginBurst, a.logger)
		a.router.Group(func(r chi.Router) {
			r.Use(loginLimiter.Middleware)
			auth.NewHandler(authService, a.logger, domainMetrics).RegisterRoutes(r)
		})

		// Staff endpoints (auth required)
		a.router.Route("/api", func(r chi.Router) {
			r.Use(auth.AuthMiddleware(authService, a.logger))
			registrationHandler.RegisterStaffRoutes(r)
		})
	} else {
		a.logger.WarnContext(ctx, "no admin password hash configured, staff routes disabled")
	}

	a.grpcServer = grpcserver.New(a.logger, tel.Metrics)
	return nil
}

func (a *App) Run() error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", a.config.GRPC.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on gRPC port: %w", err)
	}
	go func() {
		if err := a.grpcServer.Serve(lis); err != nil {
			a.logger.Error("gRPC server error", "error", err)
		}
	}()

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", a.config.Server.Port),
		Handler:      otelhttp.NewHandler(a.router, ServiceName),
		ReadTimeout:  time.Duration(a.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.config.Server.IdleTimeout) * time.Second,
	}

	a.logger.Info("server starting", "port", a.config.Server.Port)
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.InfoContext(ctx, "shutting down servers")

	var err error
	if a.grpcServer != nil {
		a.grpcServer.Stop()
	}
	if a.server != nil {
		err = a.server.Shutdown(ctx)
	}
	a.close(ctx)
	return err
}

// close releases the outbound connections in reverse order of creation.
func (a *App) close(ctx context.Context) {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.ErrorContext(ctx, "events publisher close error", "error", err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.ErrorContext(ctx, "redis close error", "error", err)
		}
	}
	db.Close(a.database)
	if err := a.telemetry.Shutdown(ctx, a.logger); err != nil {
		a.logger.ErrorContext(ctx, "telemetry shutdown error", "error", err)
	}
}
