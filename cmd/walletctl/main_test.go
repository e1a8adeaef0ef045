package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet/internal/core"
)

func run(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestWalletctlRoundTrip(t *testing.T) {
	t.Setenv("AMQP_URL", "")
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")
	t.Setenv("LOG_LEVEL", "error")
	db := filepath.Join(t.TempDir(), "wallet.db")
	common := []string{"--db", db, "--owner", "alice"}

	require.NoError(t, run(t, append([]string{"migrate"}, common...)...))
	require.NoError(t, run(t, append([]string{"open-wallet"}, common...)...))

	err := run(t, append([]string{"open-wallet"}, common...)...)
	assert.ErrorIs(t, err, core.ErrWalletExists)

	require.NoError(t, run(t, append([]string{"record", "--kind", "income", "--amount", "100.00", "--description", "salary"}, common...)...))

	err = run(t, append([]string{"record", "--kind", "expense", "--amount", "100.01"}, common...)...)
	var funds *core.InsufficientFundsError
	require.ErrorAs(t, err, &funds)
	assert.Equal(t, "100.00", funds.Current.String())

	require.NoError(t, run(t, append([]string{"pay", "--amount", "40", "--method", "PIX", "--recipient", "Bob"}, common...)...))
	require.NoError(t, run(t, append([]string{"balance"}, common...)...))
	require.NoError(t, run(t, append([]string{"transactions", "--kind", "expense"}, common...)...))
	require.NoError(t, run(t, append([]string{"payments"}, common...)...))
	require.NoError(t, run(t, append([]string{"summary", "--json"}, common...)...))
	require.NoError(t, run(t, append([]string{"categories", "--kind", "income"}, common...)...))
	require.NoError(t, run(t, append([]string{"export", "--dry-run"}, common...)...))

	// flag values persist across Execute calls on the shared root command
	err = run(t, append([]string{"export", "--dry-run=false"}, common...)...)
	assert.ErrorContains(t, err, "GOOGLE_SPREADSHEET_ID")
}

func TestWalletctlRequiresOwner(t *testing.T) {
	db := filepath.Join(t.TempDir(), "wallet.db")
	ownerID = ""
	err := run(t, "balance", "--db", db, "--owner", "")
	assert.ErrorContains(t, err, "--owner is required")
}
