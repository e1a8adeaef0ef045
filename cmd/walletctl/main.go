package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"wallet/internal/core"
)

var (
	dbPath  string
	ownerID string
	asJSON  bool

	rootCmd = &cobra.Command{
		Use:           "walletctl",
		Short:         "Operate the wallet ledger",
		Long:          `walletctl runs migrations, opens wallets, records transactions and prints reports straight against the SQLite ledger.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (default: $SQLITE_DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&ownerID, "owner", "", "owner id the command acts for")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print results as JSON")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(openWalletCmd())
	rootCmd.AddCommand(balanceCmd())
	rootCmd.AddCommand(recordCmd())
	rootCmd.AddCommand(transactionsCmd())
	rootCmd.AddCommand(payCmd())
	rootCmd.AddCommand(paymentsCmd())
	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(categoriesCmd())
	rootCmd.AddCommand(exportCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		if code := core.ErrorCode(err); code != core.CodeInternal {
			fmt.Fprintf(os.Stderr, "error [%s]: %v\n", code, err)
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}
