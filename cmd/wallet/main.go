package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"wallet/internal/backend"
	"wallet/internal/cache"
	"wallet/internal/cli"
	apphttp "wallet/internal/http"
	applog "wallet/internal/log"
	"wallet/internal/services"
)

func main() {
	cfg, logger := cli.Bootstrap(applog.ComponentApp)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}

	result, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	ledger := services.NewLedger(result.Store, result.Publisher, services.LedgerOptions{
		CategoryCacheSize: cfg.CategoryCacheSize,
		CategoryCacheTTL:  cfg.CategoryCacheTTL,
	}, logger)

	caches := cache.NewManager(logger)
	caches.Register(ledger.Resolver.Cache())
	caches.StartCleanup(10 * time.Minute)

	srv := apphttp.NewServer(":"+cfg.Port, ledger, apphttp.Options{
		RequestTimeout:     cfg.RequestTimeout,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}, logger)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = cfg.RequestTimeout + 5*time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(context.Background(), logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		caches.Stop()
		if err := ledger.Close(); err != nil {
			logger.Error("Failed to close ledger", applog.FieldError, err)
		}
	})

	go func() {
		logger.Info("Starting wallet server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"events", cfg.AMQPEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
			os.Exit(1)
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
