package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"wallet/internal/core"
	applog "wallet/internal/log"
	"wallet/internal/services"
	"wallet/internal/sheets"
	gsheet "wallet/internal/sheets/google"
	"wallet/internal/sheets/memory"
	"wallet/internal/storage"
	"wallet/internal/worker"
)

func migrateCmd() *cobra.Command {
	var (
		down        int
		showVersion bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply (or roll back) SQLite schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			logger := newLogger(cfg)
			path := cfg.SQLiteDBPath

			switch {
			case showVersion:
			case down > 0:
				if err := storage.RollbackMigrations(path, down); err != nil {
					return err
				}
				logger.Info("Migrations rolled back", "steps", down, "db_path", path)
			default:
				if err := storage.RunMigrations(path); err != nil {
					return err
				}
				logger.Info("Migrations applied", "db_path", path)
			}

			version, dirty, err := storage.SchemaVersion(path)
			if err != nil {
				return err
			}
			fmt.Printf("schema version %d (dirty=%t)\n", version, dirty)
			return nil
		},
	}

	cmd.Flags().IntVar(&down, "down", 0, "roll back this many migrations instead of applying")
	cmd.Flags().BoolVar(&showVersion, "version", false, "only print the current schema version")
	return cmd
}

func exportCmd() *cobra.Command {
	var (
		from, to string
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Append the transactions of --owner to the configured Google Sheet",
		Long: `export replays the ledger of --owner into the spreadsheet the worker writes to,
oldest first. Use it to backfill a new sheet. With --dry-run the rows are only printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := requireOwner()
			if err != nil {
				return err
			}
			var f core.TransactionFilter
			if f.From, err = core.ParseTimeBound("from", from, false); err != nil {
				return err
			}
			if f.To, err = core.ParseTimeBound("to", to, true); err != nil {
				return err
			}

			ctx := cmd.Context()
			cfg := loadConfig()
			logger := newLogger(cfg)

			repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			var (
				exporter sheets.TransactionExporter
				dry      *memory.Exporter
			)
			if dryRun {
				dry = memory.New()
				exporter = dry
			} else {
				if !cfg.SheetsEnabled() {
					return errors.New("GOOGLE_SPREADSHEET_ID is not set (use --dry-run to preview)")
				}
				exporter, err = gsheet.NewExporter(ctx, gsheet.Config{
					SpreadsheetID:      cfg.GoogleSpreadsheetID,
					SheetName:          cfg.GoogleSheetName,
					ServiceAccountFile: cfg.GoogleServiceAccountFile,
					ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
				}, logger)
				if err != nil {
					return err
				}
			}

			resolver := services.NewCachedCategoryResolver(repo, cfg.CategoryCacheSize, cfg.CategoryCacheTTL)
			n, err := worker.NewExportWorker(repo, resolver, exporter, logger).Backfill(ctx, owner, f)
			if err != nil {
				return err
			}

			if dry != nil {
				printRows(dry.Rows())
			}
			logger.Info("Export finished", applog.FieldOwnerID, owner, "rows", n, "dry_run", dryRun)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "lower bound, RFC 3339 or YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "upper bound, RFC 3339 or YYYY-MM-DD (whole day)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print rows instead of writing to the sheet")
	return cmd
}

func printRows(rows []sheets.Row) {
	if asJSON {
		_ = printJSON(rows)
		return
	}
	for _, r := range rows {
		fmt.Println(r.Values()...)
	}
}
