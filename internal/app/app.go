package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"team-service/internal/cache"
	"team-service/internal/config"
	"team-service/internal/db"
	"team-service/internal/game"
	"team-service/internal/health"
	"team-service/internal/messaging"
	"team-service/internal/metrics"
	"team-service/internal/middleware"
	"team-service/internal/player"
	"team-service/internal/team"
	"team-service/internal/telemetry"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/uptrace/bun"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

type App struct {
	config        *config.Config
	router        chi.Router
	server        *http.Server
	logger        *slog.Logger
	db            *bun.DB
	cache         cache.Cache
	meterProvider *sdkmetric.MeterProvider
	producer      *messaging.Producer
	consumer      *messaging.Consumer
	cancel        context.CancelFunc
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	logger.Info("initializing application", "env", cfg.Env)

	app := &App{
		config: cfg,
		router: chi.NewRouter(),
		logger: logger,
	}

	meterProvider, err := telemetry.InitMeterProvider(ctx, cfg.Telemetry, ServiceName, Version, logger)
	if err != nil {
		logger.Warn("failed to initialize telemetry, metrics disabled", "error", err)
	}
	app.meterProvider = meterProvider

	m, err := metrics.New(ServiceName, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	database, err := db.New(cfg.Database)
	if err != nil {
		return nil, err
	}
	app.db = database

	if err := m.Database.RegisterDB(database.DB, m.Meter()); err != nil {
		logger.Warn("failed to register database pool metrics", "error", err)
	}

	if err := db.Migrate(ctx, database); err != nil {
		return nil, err
	}

	teamCache, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}
	app.cache = teamCache
	logger.Info("cache initialized", "backend", cfg.Cache.Backend)

	// Roster changes fan out over NATS so every instance drops its cached
	// entries; without NATS only the local cache is invalidated.
	var producer *messaging.Producer
	if cfg.NATS.URL != "" {
		producer, err = messaging.NewProducer(cfg.NATS.URL, cfg.NATS.Subject, m.Messaging, logger)
		if err != nil {
			logger.Warn("failed to initialize NATS producer", "error", err)
			producer = nil
		}
	}

	teamOpts := []team.Option{team.WithCacheTTL(time.Duration(cfg.Cache.TTLSeconds) * time.Second)}
	if producer != nil {
		teamOpts = append(teamOpts, team.WithRosterNotifier(producer))
	}
	teamRepo := team.NewRepository(database, m)
	teamService := team.NewService(teamRepo, teamCache, logger, m, teamOpts...)

	var notifier player.RosterNotifier = teamService
	if producer != nil {
		consumer, err := messaging.NewConsumer(cfg.NATS.URL, cfg.NATS.Subject, teamService, m.Messaging, logger)
		if err != nil {
			logger.Warn("failed to initialize NATS consumer", "error", err)
			producer.Close()
			teamService = team.NewService(teamRepo, teamCache, logger, m, teamOpts[:1]...)
			notifier = teamService
		} else {
			app.producer = producer
			app.consumer = consumer
			notifier = producer
		}
	}

	playerService := player.NewService(player.NewRepository(database, m), notifier, logger)
	gameService := game.NewService(game.NewRepository(database, m))

	app.router.Use(chimiddleware.RequestID)
	app.router.Use(chimiddleware.Recoverer)
	app.router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	checks := map[string]health.Check{
		"database": database.PingContext,
		"cache":    teamCache.Ping,
	}
	if app.consumer != nil {
		checks["nats"] = func(context.Context) error { return app.consumer.HealthCheck() }
	}
	health.NewHandler(checks).RegisterRoutes(app.router)

	teamHandler := team.NewHandler(teamService, logger)
	teamHandler.RegisterPageRoutes(app.router)

	app.router.Route("/api", func(r chi.Router) {
		teamHandler.RegisterRoutes(r)
		player.NewHandler(playerService, logger).RegisterRoutes(r)
		game.NewHandler(gameService, logger).RegisterRoutes(r)
	})

	logger.Info("application initialized successfully")

	return app, nil
}

func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.consumer != nil {
		go func() {
			if err := a.consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("NATS consumer error", "error", err)
			}
		}()
	}

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", a.config.Server.Port),
		Handler:      a.router,
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
	a.logger.Info("shutting down server")

	var errs []error
	if a.server != nil {
		errs = append(errs, a.server.Shutdown(ctx))
	}
	if a.cancel != nil {
		a.cancel()
	}
	if a.consumer != nil {
		errs = append(errs, a.consumer.Close())
	}
	if a.producer != nil {
		errs = append(errs, a.producer.Close())
	}
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	db.Close(a.db)
	errs = append(errs, telemetry.Shutdown(ctx, a.meterProvider, a.logger))

	return errors.Join(errs...)
}
