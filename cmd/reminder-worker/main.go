package main

import (
	"context"
	"os"
	"time"

	"renewme/internal/amqp"
	"renewme/internal/backend"
	"renewme/internal/cache"
	"renewme/internal/cli"
	applog "renewme/internal/log"
	"renewme/internal/metrics"
	"renewme/internal/services"
	"renewme/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)
	cli.Require(logger, cfg.RequireAMQP)
	cli.Require(logger, cfg.RequireSharedStore)

	logger.InfoContext(context.Background(), "Starting reminder-worker",
		applog.FieldOperation, applog.OpStartup,
		"schedule", cfg.ReminderSchedule)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.ErrorContext(context.Background(), "Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.Logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.ErrorContext(context.Background(), "Failed to initialize backend", "error", err)
		os.Exit(1)
	}

	broker, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPChangesQueue, cfg.AMQPRemindersQueue)
	if err != nil {
		logger.ErrorContext(context.Background(), "Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}

	m := metrics.New()
	sent := cache.NewLRUCache[time.Time](10000, 24*time.Hour)
	m.RegisterCacheStats("reminders_sent", sent.Stats)
	caches := cache.NewManager()
	caches.Register("reminders_sent", sent)

	processor := services.NewReminderProcessor(result.Store, broker, sent)
	processor.OnPublish(m.IncReminderPublished)
	scheduler := worker.NewReminderScheduler(processor, cfg.ReminderSchedule, logger.Logger)

	metricsSrv := cli.StartMetricsServer(logger, cfg.WorkerMetricsPort, m.Handler())

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		select {
		case <-scheduler.Stop().Done():
		case <-shutdownCtx.Done():
		}
		caches.Stop()
		if metricsSrv != nil {
			_ = metricsSrv.Shutdown(shutdownCtx)
		}
		if err := broker.Close(); err != nil {
			logger.ErrorContext(shutdownCtx, "AMQP close error", "error", err)
		}
		if err := result.Close(); err != nil {
			logger.ErrorContext(shutdownCtx, "Backend close error", "error", err)
		}
	})

	caches.Start(ctx, time.Hour)

	// Catch up on reminders whose window opened while the worker was down.
	if _, err := scheduler.RunNow(ctx); err != nil {
		logger.ErrorContext(ctx, "Startup reminder run failed", applog.FieldOperation, applog.OpRemind, "error", err)
	}
	if err := scheduler.Start(ctx); err != nil {
		logger.ErrorContext(ctx, "Failed to start reminder scheduler", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.InfoContext(context.Background(), "Reminder worker stopped")
}
