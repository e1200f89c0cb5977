package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"computing-marketplace/api/internal/cache"
	"computing-marketplace/api/internal/config"
	"computing-marketplace/api/internal/content"
	"computing-marketplace/api/internal/database"
	"computing-marketplace/api/internal/handlers"
	"computing-marketplace/api/internal/jobs"
	"computing-marketplace/api/internal/log"
	"computing-marketplace/api/internal/middleware"
	"computing-marketplace/api/internal/repository"
	"computing-marketplace/api/internal/security"
	"computing-marketplace/api/internal/server"
	"computing-marketplace/api/internal/service"
	"computing-marketplace/api/internal/session"
	"computing-marketplace/api/internal/storage"
	"computing-marketplace/api/internal/worker/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.Logging.Level)

	ctx := context.Background()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}

	if cfg.Postgres.AutoMigrate {
		migrator, err := database.NewMigrator(dbPool, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init migrator")
		}
		if err := migrator.Up(ctx); err != nil {
			logger.Fatal().Err(err).Msg("migrations failed")
		}
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		// The session policy decides what a missing store means per request.
		if cfg.Session.Policy == config.SessionPolicyStrict {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
		logger.Warn().Err(err).Msg("redis unreachable at startup, continuing under permissive session policy")
		redisClient = cache.NewLazyRedisClient(cfg.Redis)
	}

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store")
	}
	if err := objectStore.EnsureBuckets(ctx); err != nil {
		logger.Warn().Err(err).Msg("ensure buckets failed")
	}

	tokens := security.NewTokenIssuer(
		cfg.Security.JWTAccessSecret,
		cfg.Security.JWTRefreshSecret,
		cfg.Security.JWTAccessTTL,
		cfg.Security.JWTRefreshTTL,
	)
	guard := session.NewGuard(session.NewRedisStore(redisClient), session.Policy(cfg.Session.Policy), logger)
	producer := queue.NewProducer(redisClient, cfg.Worker.Stream)

	users := repository.NewUserRepository(dbPool)
	products := repository.NewProductRepository(dbPool)
	inquiries := repository.NewInquiryRepository(dbPool)
	activityRepo := repository.NewActivityRepository(dbPool)
	activity := service.NewActivityRecorder(activityRepo, logger)
	renderer := content.NewRenderer()

	services := handlers.Services{
		Auth:       service.NewAuthService(users, security.NewPasswordHasher(security.DefaultArgon2Params), tokens, guard, activity, logger),
		Catalog:    service.NewCatalogService(products, repository.NewCategoryRepository(dbPool), activity),
		Inquiries:  service.NewInquiryService(inquiries, products, producer, activity, logger),
		Orders:     service.NewOrderService(repository.NewOrderRepository(dbPool), activity),
		News:       service.NewNewsService(repository.NewNewsRepository(dbPool), renderer, activity),
		Solutions:  service.NewSolutionService(repository.NewSolutionRepository(dbPool), renderer, activity),
		Navigation: service.NewNavigationService(repository.NewNavigationRepository(dbPool), activity),
		Dashboard:  service.NewDashboardService(repository.NewDashboardRepository(dbPool), inquiries, activityRepo),
		Uploads: service.NewUploadService(
			repository.NewImageRepository(dbPool),
			objectStore,
			producer,
			cfg.Upload.MaxBytes,
			cfg.Security.SignatureSecret,
			logger,
		),
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(redisClient, cfg.RateLimit, logger)
	}

	handlerSet := handlers.NewHandlerSet(logger, cfg.Environment, tokens, services, limiter,
		handlers.HealthCheck{Name: "postgres", Ping: dbPool.Ping},
		handlers.HealthCheck{Name: "redis", Ping: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }},
		handlers.HealthCheck{Name: "storage", Ping: objectStore.Ping},
	)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	scheduler := jobs.NewScheduler(producer, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, dbPool, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	scheduler.Stop()

	db.Close()
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("server exited cleanly")
}
