package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"renewme/internal/amqp"
	"renewme/internal/backend"
	"renewme/internal/cli"
	applog "renewme/internal/log"
	"renewme/internal/metrics"
	ports "renewme/internal/sheets"
	gsheet "renewme/internal/sheets/google"
	mem "renewme/internal/sheets/memory"
	"renewme/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentSheets)
	cfg := cli.LoadAndValidateConfig(logger)
	cli.Require(logger, cfg.RequireAMQP)
	cli.Require(logger, cfg.RequireSharedStore)

	logger.InfoContext(context.Background(), "Starting sheets-worker", applog.FieldOperation, applog.OpStartup)

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

	var writer ports.ReportWriter
	if cfg.GoogleSpreadsheetID != "" {
		cli.Require(logger, cfg.RequireSheets)
		client, err := gsheet.New(context.Background(), gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			logger.ErrorContext(context.Background(), "Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		writer = client
	} else {
		logger.InfoContext(context.Background(), "Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided, reports kept in memory")
		writer = mem.New()
	}

	broker, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPChangesQueue, cfg.AMQPRemindersQueue)
	if err != nil {
		logger.ErrorContext(context.Background(), "Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}

	m := metrics.New()
	syncer := worker.NewSheetsSync(result.Store, writer)
	syncer.OnSync(m.IncSheetSync)

	metricsSrv := cli.StartMetricsServer(logger, cfg.WorkerMetricsPort, m.Handler())

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
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

	// Bring the sheet up to date with changes made while the worker was down.
	if err := syncer.Sync(ctx); err != nil {
		logger.ErrorContext(ctx, "Startup sync failed", applog.FieldOperation, applog.OpSync, "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := broker.ConsumeSubscriptionChanges(gctx, syncer.HandleSubscriptionChanged)
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("consume subscription changes: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.ErrorContext(context.Background(), "Message consumption failed", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.InfoContext(context.Background(), "Sheets worker stopped")
}
