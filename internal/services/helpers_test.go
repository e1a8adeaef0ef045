package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"wallet/internal/core"
	"wallet/internal/storage"
	"wallet/internal/storage/memory"
)

// countingStore records how often the ledger touched the store.
type countingStore struct {
	storage.Store
	calls atomic.Int64
}

func (c *countingStore) WithinUnitOfWork(ctx context.Context, fn func(context.Context, storage.Tx) error) error {
	c.calls.Add(1)
	return c.Store.WithinUnitOfWork(ctx, fn)
}

func (c *countingStore) GetWallet(ctx context.Context, ownerID string) (core.Wallet, error) {
	c.calls.Add(1)
	return c.Store.GetWallet(ctx, ownerID)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []core.Transaction
	fail   bool
}

func (p *recordingPublisher) PublishTransactionRecorded(_ context.Context, _ string, t core.Transaction) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.events = append(p.events, t)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func newMemoryLedger(t *testing.T) (*Ledger, *memory.Store) {
	t.Helper()
	store := memory.New()
	return NewLedger(store, nil, LedgerOptions{}, nil), store
}

func newSQLiteLedger(t *testing.T) *Ledger {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "wallet.db"))
	require.NoError(t, err)
	l := NewLedger(repo, nil, LedgerOptions{}, nil)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func openWith(t *testing.T, l *Ledger, owner, balance string) core.Wallet {
	t.Helper()
	ctx := context.Background()
	w, err := l.Wallets.OpenWallet(ctx, owner)
	require.NoError(t, err)
	if balance != "" && balance != "0" {
		_, err := l.Transactions.CreateTransaction(ctx, owner, NewTransaction{Kind: core.Income, Amount: core.MustParseMoney(balance)})
		require.NoError(t, err)
		w, err = l.Wallets.GetBalance(ctx, owner)
		require.NoError(t, err)
	}
	return w
}

func money(s string) core.Money { return core.MustParseMoney(s) }

func fixedClock(ts time.Time) func() time.Time { return func() time.Time { return ts } }
