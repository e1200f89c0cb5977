package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/gomail.v2"

	"computing-marketplace/api/internal/cache"
	"computing-marketplace/api/internal/config"
	"computing-marketplace/api/internal/database"
	"computing-marketplace/api/internal/log"
	"computing-marketplace/api/internal/repository"
	"computing-marketplace/api/internal/storage"
	"computing-marketplace/api/internal/worker/queue"
	"computing-marketplace/api/internal/worker/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer client.Close()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connection failed")
	}
	defer dbPool.Close()

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store")
	}

	var mailer tasks.Mailer
	if cfg.SMTP.Host != "" {
		mailer = gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password)
	} else {
		logger.Info().Msg("smtp host not set, inquiry notifications disabled")
	}

	processor := tasks.NewProcessor(
		objectStore,
		repository.NewImageRepository(dbPool),
		repository.NewInquiryRepository(dbPool),
		repository.NewActivityRepository(dbPool),
		mailer,
		tasks.Options{
			SigningSecret:     cfg.Security.SignatureSecret,
			ThumbnailWidth:    cfg.Upload.ThumbnailWidth,
			MaxObjectBytes:    cfg.Upload.MaxBytes,
			ActivityRetention: cfg.Activity.Retention,
			MailFrom:          cfg.SMTP.From,
			SalesInbox:        cfg.SMTP.SalesInbox,
		},
		logger,
	)
	consumer := queue.NewConsumer(
		client,
		cfg.Worker.Stream,
		cfg.Worker.Group,
		cfg.Worker.Consumer,
		cfg.Worker.ClaimInterval,
		logger,
		processor,
	)
	consumer.SetMaxDeliveries(cfg.Worker.MaxDeliveries)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Fatal().Err(err).Msg("consumer stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		logger.Warn().Msg("consumer did not stop in time")
	}
}
