package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet/internal/core"
	"wallet/internal/storage"
	"wallet/internal/storage/storagetest"
)

func TestStore(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store { return New() })
}

func TestStoreTiesOrderedByID(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := New(WithClock(func() time.Time { return fixed }))
	ctx := context.Background()

	var w core.Wallet
	require.NoError(t, s.WithinUnitOfWork(ctx, func(ctx context.Context, tx storage.Tx) error {
		var err error
		w, err = tx.SaveWallet(ctx, core.Wallet{OwnerID: "o"})
		if err != nil {
			return err
		}
		for i := 0; i < 3; i++ {
			if _, err := tx.AppendTransaction(ctx, core.Transaction{WalletID: w.ID, Kind: core.Income, Amount: core.Money{Cents: 1}}); err != nil {
				return err
			}
		}
		return nil
	}))

	txs, err := s.QueryTransactions(ctx, w.ID, core.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Greater(t, txs[0].ID, txs[1].ID)
	assert.Greater(t, txs[1].ID, txs[2].ID)
	assert.Equal(t, 3, s.TransactionCount())
}

func TestAppendRequiresWallet(t *testing.T) {
	s := New()
	err := s.WithinUnitOfWork(context.Background(), func(ctx context.Context, tx storage.Tx) error {
		_, err := tx.AppendTransaction(ctx, core.Transaction{WalletID: 42, Kind: core.Income, Amount: core.Money{Cents: 1}})
		return err
	})
	require.ErrorIs(t, err, core.ErrWalletNotFound)
	assert.Zero(t, s.TransactionCount())
}
