package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"wallet/internal/amqp"
	"wallet/internal/cli"
	applog "wallet/internal/log"
	"wallet/internal/services"
	gsheet "wallet/internal/sheets/google"
	"wallet/internal/storage"
	"wallet/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap(applog.ComponentWorker)
	logger.Info("Starting wallet-worker")

	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required for wallet-worker")
		os.Exit(1)
	}
	if !cfg.SheetsEnabled() {
		logger.Error("GOOGLE_SPREADSHEET_ID is required for wallet-worker")
		os.Exit(1)
	}

	// The worker reads the ledger the server writes, so it needs the SQLite file.
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", applog.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	exporter, err := gsheet.NewExporter(context.Background(), gsheet.Config{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		SheetName:          cfg.GoogleSheetName,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
	}, logger)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets exporter", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets exporter initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	resolver := services.NewCachedCategoryResolver(repo, cfg.CategoryCacheSize, cfg.CategoryCacheTTL)
	exportWorker := worker.NewExportWorker(repo, resolver, exporter, logger)

	root, stop := context.WithCancel(context.Background())
	defer stop()
	ctx, done := cli.GracefulShutdown(root, logger, 30*time.Second, nil)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeTransactionRecorded(gctx, exportWorker.HandleTransactionRecorded)
	})
	g.Go(func() error {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if n := resolver.Cache().CleanExpired(); n > 0 {
					logger.Debug("Expired category cache entries removed", "count", n)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", applog.FieldError, err)
	}
	stop()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}
