package services

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet/internal/core"
	"wallet/internal/storage/memory"
)

func TestCreateTransaction_IncomeOnNewWallet(t *testing.T) {
	l, _ := newMemoryLedger(t)
	ctx := context.Background()

	w, err := l.Wallets.OpenWallet(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "0.00", w.Balance.String())

	tx, err := l.Transactions.CreateTransaction(ctx, "alice", NewTransaction{Kind: core.Income, Amount: money("100.00")})
	require.NoError(t, err)
	assert.NotZero(t, tx.ID)
	assert.False(t, tx.CreatedAt.IsZero())
	assert.Equal(t, "100.00", tx.Amount.String())
	assert.Equal(t, w.ID, tx.WalletID)

	got, err := l.Wallets.GetBalance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "100.00", got.Balance.String())
}

func TestCreateTransaction_ExpenseToZeroAllowed(t *testing.T) {
	l, _ := newMemoryLedger(t)
	ctx := context.Background()
	openWith(t, l, "bob", "100.00")

	_, err := l.Transactions.CreateTransaction(ctx, "bob", NewTransaction{Kind: core.Expense, Amount: money("100.00")})
	require.NoError(t, err)

	got, err := l.Wallets.GetBalance(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, got.Balance.IsZero())
}

func TestCreateTransaction_InsufficientFunds(t *testing.T) {
	l, store := newMemoryLedger(t)
	ctx := context.Background()
	openWith(t, l, "carol", "100.00")
	before := store.TransactionCount()

	_, err := l.Transactions.CreateTransaction(ctx, "carol", NewTransaction{Kind: core.Expense, Amount: money("100.01")})
	require.ErrorIs(t, err, core.ErrInsufficientFunds)

	var ife *core.InsufficientFundsError
	require.True(t, errors.As(err, &ife))
	assert.Equal(t, "100.00", ife.Current.String())
	assert.Equal(t, "100.01", ife.Requested.String())
	assert.Equal(t, core.CodeInsufficientFunds, core.ErrorCode(err))

	got, err := l.Wallets.GetBalance(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, "100.00", got.Balance.String())
	assert.Equal(t, before, store.TransactionCount())
}

func TestCreateTransaction_ValidationNeverTouchesStore(t *testing.T) {
	counting := &countingStore{Store: memory.New()}
	l := NewLedger(counting, nil, LedgerOptions{}, nil)
	ctx := context.Background()

	cases := []struct {
		name string
		in   NewTransaction
		want error
	}{
		{"zero amount", NewTransaction{Kind: core.Expense, Amount: core.Zero}, core.ErrInvalidAmount},
		{"negative amount", NewTransaction{Kind: core.Income, Amount: core.Money{Cents: -100}}, core.ErrInvalidAmount},
		{"bad kind", NewTransaction{Kind: "PAYMENT", Amount: money("1")}, core.ErrInvalidKind},
		{"long description", NewTransaction{Kind: core.Income, Amount: money("1"), Description: strings.Repeat("x", 501)}, core.ErrDescriptionTooLong},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := l.Transactions.CreateTransaction(ctx, "dave", tc.in)
			require.ErrorIs(t, err, tc.want)
			assert.True(t, core.IsValidation(err))
		})
	}
	assert.Zero(t, counting.calls.Load(), "validation must reject before any store access")
}

func TestCreateTransaction_WalletNotFound(t *testing.T) {
	l, store := newMemoryLedger(t)

	_, err := l.Transactions.CreateTransaction(context.Background(), "ghost", NewTransaction{Kind: core.Income, Amount: money("1")})
	require.ErrorIs(t, err, core.ErrWalletNotFound)
	assert.Zero(t, store.TransactionCount())
}

func TestCreateTransaction_CancelledContextLeavesNothing(t *testing.T) {
	l, store := newMemoryLedger(t)
	openWith(t, l, "erin", "10.00")
	before := store.TransactionCount()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := l.Transactions.CreateTransaction(ctx, "erin", NewTransaction{Kind: core.Income, Amount: money("5")})
	require.ErrorIs(t, err, context.Canceled)

	got, err := l.Wallets.GetBalance(context.Background(), "erin")
	require.NoError(t, err)
	assert.Equal(t, "10.00", got.Balance.String())
	assert.Equal(t, before, store.TransactionCount())
}

func TestCreateTransaction_BalanceInvariant(t *testing.T) {
	l, store := newMemoryLedger(t)
	ctx := context.Background()
	openWith(t, l, "frank", "")
	rng := rand.New(rand.NewSource(7))

	expected := core.Zero
	for i := 0; i < 200; i++ {
		kind := core.Income
		if rng.Intn(2) == 0 {
			kind = core.Expense
		}
		amount := core.Money{Cents: int64(rng.Intn(5000) + 1)}
		countBefore := store.TransactionCount()

		_, err := l.Transactions.CreateTransaction(ctx, "frank", NewTransaction{Kind: kind, Amount: amount})

		got, gerr := l.Wallets.GetBalance(ctx, "frank")
		require.NoError(t, gerr)
		require.False(t, got.Balance.IsNegative(), "balance went negative at step %d", i)

		if err != nil {
			require.ErrorIs(t, err, core.ErrInsufficientFunds)
			require.Equal(t, countBefore, store.TransactionCount())
			require.True(t, got.Balance.Equal(expected))
			continue
		}
		next, aerr := kind.Apply(expected, amount)
		require.NoError(t, aerr)
		expected = next
		require.True(t, got.Balance.Equal(expected), "step %d: expected %s, got %s", i, expected, got.Balance)
	}
}

func TestCreateTransaction_ConcurrentExpenses(t *testing.T) {
	backends := map[string]func(t *testing.T) *Ledger{
		"memory": func(t *testing.T) *Ledger { l, _ := newMemoryLedger(t); return l },
		"sqlite": newSQLiteLedger,
	}
	for name, newLedger := range backends {
		t.Run(name, func(t *testing.T) {
			l := newLedger(t)
			ctx := context.Background()
			openWith(t, l, "gina", "100.00")

			var (
				wg        sync.WaitGroup
				successes int
				shortages int
				mu        sync.Mutex
			)
			for i := 0; i < 2; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := l.Transactions.CreateTransaction(ctx, "gina", NewTransaction{Kind: core.Expense, Amount: money("60.00")})
					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						successes++
					case errors.Is(err, core.ErrInsufficientFunds):
						shortages++
					default:
						t.Errorf("unexpected error: %v", err)
					}
				}()
			}
			wg.Wait()

			assert.Equal(t, 1, successes)
			assert.Equal(t, 1, shortages)

			got, err := l.Wallets.GetBalance(ctx, "gina")
			require.NoError(t, err)
			assert.Equal(t, "40.00", got.Balance.String())
		})
	}
}

func TestCreateTransaction_ManyConcurrentExpensesNeverOverdraw(t *testing.T) {
	l := newSQLiteLedger(t)
	ctx := context.Background()
	openWith(t, l, "hank", "10.00")

	var (
		wg sync.WaitGroup
		ok sync.Map
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := l.Transactions.CreateTransaction(ctx, "hank", NewTransaction{Kind: core.Expense, Amount: money("1.00")}); err == nil {
				ok.Store(i, true)
			}
		}(i)
	}
	wg.Wait()

	n := 0
	ok.Range(func(_, _ any) bool { n++; return true })
	assert.Equal(t, 10, n)

	got, err := l.Wallets.GetBalance(ctx, "hank")
	require.NoError(t, err)
	assert.True(t, got.Balance.IsZero())
}

func TestCreateTransaction_PublishesAfterCommit(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	l := NewLedger(memory.New(), pub, LedgerOptions{}, nil)
	openWith(t, l, "ivy", "50.00")

	_, err := l.Transactions.CreateTransaction(ctx, "ivy", NewTransaction{Kind: core.Expense, Amount: money("60.00")})
	require.Error(t, err)

	assert.Equal(t, 1, pub.count(), "only the committed income is published")
}

func TestCreateTransaction_PublishFailureDoesNotFail(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{fail: true}
	l := NewLedger(memory.New(), pub, LedgerOptions{}, nil)
	_, err := l.Wallets.OpenWallet(ctx, "jack")
	require.NoError(t, err)

	tx, err := l.Transactions.CreateTransaction(ctx, "jack", NewTransaction{Kind: core.Income, Amount: money("1")})
	require.NoError(t, err)
	assert.NotZero(t, tx.ID)
}

func TestListTransactions(t *testing.T) {
	l, _ := newMemoryLedger(t)
	ctx := context.Background()
	openWith(t, l, "kate", "")
	food := int64(4)

	_, err := l.Transactions.CreateTransaction(ctx, "kate", NewTransaction{Kind: core.Income, Amount: money("100")})
	require.NoError(t, err)
	lunch, err := l.Transactions.CreateTransaction(ctx, "kate", NewTransaction{Kind: core.Expense, Amount: money("12.50"), Description: "lunch", CategoryID: &food})
	require.NoError(t, err)
	bus, err := l.Transactions.CreateTransaction(ctx, "kate", NewTransaction{Kind: core.Expense, Amount: money("2")})
	require.NoError(t, err)

	all, err := l.Transactions.ListTransactions(ctx, "kate", core.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, bus.ID, all[0].ID)

	again, err := l.Transactions.ListTransactions(ctx, "kate", core.TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, all, again)

	byCat, err := l.Transactions.ListTransactions(ctx, "kate", core.TransactionFilter{Kind: core.Expense, CategoryID: &food})
	require.NoError(t, err)
	require.Len(t, byCat, 1)
	assert.Equal(t, lunch.ID, byCat[0].ID)

	_, err = l.Transactions.ListTransactions(ctx, "kate", core.TransactionFilter{From: lunch.CreatedAt, To: lunch.CreatedAt.Add(-1)})
	require.ErrorIs(t, err, core.ErrInvalidPeriod)

	_, err = l.Transactions.ListTransactions(ctx, "nobody", core.TransactionFilter{})
	require.ErrorIs(t, err, core.ErrWalletNotFound)

	none, err := l.Transactions.ListTransactions(ctx, "kate", core.TransactionFilter{From: bus.CreatedAt.Add(1)})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
