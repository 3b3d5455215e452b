package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"renewme/internal/amqp"
	"renewme/internal/backend"
	"renewme/internal/cache"
	"renewme/internal/cli"
	"renewme/internal/core"
	apphttp "renewme/internal/http"
	applog "renewme/internal/log"
	"renewme/internal/metrics"
	"renewme/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.ErrorContext(context.Background(), "Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.Logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.ErrorContext(context.Background(), "Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	m := metrics.New()
	caches := cache.NewManager()
	opts := []services.ServiceOption{services.WithObserver(m)}

	if cfg.DashboardCacheTTL > 0 {
		dashboards := cache.NewLRUCache[core.Dashboard](64, cfg.DashboardCacheTTL)
		caches.Register("dashboard", dashboards)
		m.RegisterCacheStats("dashboard", dashboards.Stats)
		opts = append(opts, services.WithDashboardCache(dashboards))
	}

	var broker *amqp.Client
	if cfg.AMQPURL != "" {
		broker, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPChangesQueue, cfg.AMQPRemindersQueue)
		if err != nil {
			logger.ErrorContext(context.Background(), "Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		opts = append(opts, services.WithPublisher(broker))
		logger.InfoContext(context.Background(), "Publishing subscription changes", "exchange", cfg.AMQPExchange)
	} else {
		logger.InfoContext(context.Background(), "AMQP disabled - no AMQP_URL provided")
	}

	svc := services.NewSubscriptionService(result.Store, opts...)
	srv := apphttp.NewServer(apphttp.Config{
		Addr:               ":" + cfg.Port,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}, svc, m, logger.WithComponent(applog.ComponentHTTP))

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.ErrorContext(shutdownCtx, "Server shutdown error", "error", err)
		}
		caches.Stop()
		if broker != nil {
			if err := broker.Close(); err != nil {
				logger.ErrorContext(shutdownCtx, "AMQP close error", "error", err)
			}
		}
		if err := result.Close(); err != nil {
			logger.ErrorContext(shutdownCtx, "Backend close error", "error", err)
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.InfoContext(gctx, "Starting renewme server",
			applog.FieldOperation, applog.OpStartup,
			"port", cfg.Port,
			"backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		caches.Start(gctx, time.Minute)
		<-gctx.Done()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.ErrorContext(context.Background(), "Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-done
	logger.InfoContext(context.Background(), "Server stopped gracefully")
}
