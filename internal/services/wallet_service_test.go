package services

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet/internal/core"
	"wallet/internal/storage"
	"wallet/internal/storage/memory"
)

func TestOpenWallet(t *testing.T) {
	l, _ := newMemoryLedger(t)
	ctx := context.Background()

	w, err := l.Wallets.OpenWallet(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, w.Balance.IsZero())

	_, err = l.Wallets.OpenWallet(ctx, "alice")
	require.ErrorIs(t, err, core.ErrWalletExists)

	_, err = l.Wallets.OpenWallet(ctx, "  ")
	require.ErrorIs(t, err, core.ErrInvalidOwner)

	_, err = l.Wallets.GetBalance(ctx, "bob")
	require.ErrorIs(t, err, core.ErrWalletNotFound)
}

func TestApplyDelta(t *testing.T) {
	l, store := newMemoryLedger(t)
	ctx := context.Background()
	opened, err := l.Wallets.OpenWallet(ctx, "carol")
	require.NoError(t, err)

	w, err := l.Wallets.ApplyDelta(ctx, "carol", money("25.50"), core.Income)
	require.NoError(t, err)
	assert.Equal(t, "25.50", w.Balance.String())
	assert.Greater(t, w.Version, opened.Version)
	assert.False(t, w.UpdatedAt.Before(opened.UpdatedAt))

	_, err = l.Wallets.ApplyDelta(ctx, "carol", money("25.51"), core.Expense)
	require.ErrorIs(t, err, core.ErrInsufficientFunds)

	w, err = l.Wallets.ApplyDelta(ctx, "carol", money("25.50"), core.Expense)
	require.NoError(t, err)
	assert.True(t, w.Balance.IsZero())

	_, err = l.Wallets.ApplyDelta(ctx, "carol", core.Zero, core.Income)
	require.ErrorIs(t, err, core.ErrInvalidAmount)

	assert.Zero(t, store.TransactionCount(), "ApplyDelta alone never appends")
}

func TestApplyDelta_BalanceOverflow(t *testing.T) {
	l, store := newMemoryLedger(t)
	ctx := context.Background()
	_, err := l.Wallets.OpenWallet(ctx, "dora")
	require.NoError(t, err)

	// Seed a balance a single further income cannot fit on top of.
	full := core.Money{Cents: math.MaxInt64}
	require.NoError(t, store.WithinUnitOfWork(ctx, func(ctx context.Context, tx storage.Tx) error {
		w, err := tx.GetWallet(ctx, "dora")
		if err != nil {
			return err
		}
		w.Balance = full
		_, err = tx.SaveWallet(ctx, w)
		return err
	}))

	_, err = l.Transactions.CreateTransaction(ctx, "dora", NewTransaction{Kind: core.Income, Amount: money("1.00")})
	require.ErrorIs(t, err, core.ErrAmountOverflow)
	assert.NotErrorIs(t, err, core.ErrInsufficientFunds)
	assert.True(t, core.IsValidation(err))
	assert.Equal(t, core.CodeInvalidAmount, core.ErrorCode(err))

	w, err := l.Wallets.GetBalance(ctx, "dora")
	require.NoError(t, err)
	assert.True(t, w.Balance.Equal(full), "rejected income leaves the balance untouched")
	assert.Zero(t, store.TransactionCount())

	_, err = l.Transactions.CreateTransaction(ctx, "dora", NewTransaction{Kind: core.Income, Amount: core.Money{Cents: core.MaxAmount*100 + 1}})
	require.ErrorIs(t, err, core.ErrInvalidAmount)
}

func TestCachedCategoryResolver(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	counting := &countingResolver{next: store}
	r := NewCachedCategoryResolver(counting, 8, time.Minute)

	for i := 0; i < 3; i++ {
		c, err := r.ResolveCategory(ctx, 4)
		require.NoError(t, err)
		assert.Equal(t, "Food", c.Name)
	}
	for i := 0; i < 3; i++ {
		_, err := r.ResolveCategory(ctx, 404)
		require.ErrorIs(t, err, core.ErrCategoryNotFound)
	}
	assert.Equal(t, 2, counting.calls, "hits and misses are both cached")

	r.Invalidate(4)
	_, err := r.ResolveCategory(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 3, counting.calls)
	assert.Equal(t, uint64(4), r.Stats().Hits)
}

type countingResolver struct {
	next  *memory.Store
	calls int
}

func (c *countingResolver) ResolveCategory(ctx context.Context, id int64) (core.Category, error) {
	c.calls++
	return c.next.ResolveCategory(ctx, id)
}

func TestCategoryService(t *testing.T) {
	l, _ := newMemoryLedger(t)
	ctx := context.Background()

	_, err := l.Categories.ListCategories(ctx, "alice", "LOAN")
	require.ErrorIs(t, err, core.ErrInvalidKind)

	_, err = l.Categories.CreateCategory(ctx, core.Category{Name: " ", Kind: core.Expense})
	require.ErrorIs(t, err, core.ErrInvalidCategory)

	c, err := l.Categories.CreateCategory(ctx, core.Category{Name: "Gifts", Kind: core.Expense})
	require.NoError(t, err)
	assert.Equal(t, core.DefaultCategoryColor, c.Color)

	cats, err := l.Categories.ListCategories(ctx, "alice", core.Expense)
	require.NoError(t, err)
	found := false
	for _, cat := range cats {
		found = found || cat.Name == "Gifts"
	}
	assert.True(t, found, "global categories are visible to every owner")

	require.NoError(t, l.Categories.DeleteCategory(ctx, c.ID))
	require.ErrorIs(t, l.Categories.DeleteCategory(ctx, c.ID), core.ErrCategoryNotFound)
}
