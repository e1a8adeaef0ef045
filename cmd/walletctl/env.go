package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"wallet/internal/backend"
	"wallet/internal/cli"
	"wallet/internal/config"
	applog "wallet/internal/log"
	"wallet/internal/services"
)

// loadConfig reads .env and the environment, then applies --db.
func loadConfig() *config.Config {
	cli.LoadEnvFile()
	cfg := config.Load()
	if dbPath != "" {
		cfg.SQLiteDBPath = dbPath
	}
	return cfg
}

// newLogger logs to stderr so command output stays clean on stdout.
func newLogger(cfg *config.Config) *applog.Logger {
	return applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: applog.ComponentCLI,
		Output:    os.Stderr,
	})
}

// openLedger wires a ledger over the SQLite file. Events are published when
// AMQP_URL is set, exactly as the server does.
func openLedger(ctx context.Context) (*services.Ledger, *applog.Logger, error) {
	cfg := loadConfig()
	logger := newLogger(cfg)

	result, err := backend.NewFactory(logger).CreateBackend(ctx, backend.Config{
		Type:         backend.SQLiteBackend,
		SQLiteDBPath: cfg.SQLiteDBPath,
		AMQPURL:      cfg.AMQPURL,
		AMQPExchange: cfg.AMQPExchange,
		AMQPQueue:    cfg.AMQPQueue,
	})
	if err != nil {
		return nil, nil, err
	}

	ledger := services.NewLedger(result.Store, result.Publisher, services.LedgerOptions{
		CategoryCacheSize: cfg.CategoryCacheSize,
		CategoryCacheTTL:  cfg.CategoryCacheTTL,
	}, logger)
	return ledger, logger, nil
}

// withLedger runs fn against a freshly opened ledger and closes it afterwards.
func withLedger(cmd *cobra.Command, fn func(ctx context.Context, ledger *services.Ledger) error) error {
	ctx := cmd.Context()
	ledger, logger, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := ledger.Close(); err != nil {
			logger.Warn("Failed to close ledger", applog.FieldError, err)
		}
	}()
	return fn(ctx, ledger)
}

func requireOwner() (string, error) {
	owner := strings.TrimSpace(ownerID)
	if owner == "" {
		return "", errors.New("--owner is required")
	}
	return owner, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
