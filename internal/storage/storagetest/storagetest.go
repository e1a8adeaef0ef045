// Package storagetest holds behaviour tests shared by every storage.Store.
package storagetest

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet/internal/core"
	"wallet/internal/storage"
)

// Run exercises newStore against the Store contract. Each subtest gets a fresh store.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	t.Run("OpenAndFetchWallet", func(t *testing.T) { testOpenWallet(t, newStore(t)) })
	t.Run("UnitOfWorkRollback", func(t *testing.T) { testRollback(t, newStore(t)) })
	t.Run("CancelledContextRollsBack", func(t *testing.T) { testCancelled(t, newStore(t)) })
	t.Run("StaleVersion", func(t *testing.T) { testStaleVersion(t, newStore(t)) })
	t.Run("QueryOrderingAndFilters", func(t *testing.T) { testQuery(t, newStore(t)) })
	t.Run("Sums", func(t *testing.T) { testSums(t, newStore(t)) })
	t.Run("SumOverflow", func(t *testing.T) { testSumOverflow(t, newStore(t)) })
	t.Run("StoredRowsDetachedFromCaller", func(t *testing.T) { testDetached(t, newStore(t)) })
	t.Run("Categories", func(t *testing.T) { testCategories(t, newStore(t)) })
}

func openWallet(t *testing.T, s storage.Store, owner string) core.Wallet {
	t.Helper()
	var w core.Wallet
	err := s.WithinUnitOfWork(context.Background(), func(ctx context.Context, tx storage.Tx) error {
		var err error
		w, err = tx.SaveWallet(ctx, core.Wallet{OwnerID: owner})
		return err
	})
	require.NoError(t, err)
	return w
}

// record moves the balance and appends a row in one unit of work without any invariant checks.
func record(t *testing.T, s storage.Store, w core.Wallet, kind core.Kind, amount string, cat *int64) core.Transaction {
	t.Helper()
	var out core.Transaction
	err := s.WithinUnitOfWork(context.Background(), func(ctx context.Context, tx storage.Tx) error {
		cur, err := tx.GetWalletByID(ctx, w.ID)
		if err != nil {
			return err
		}
		amt := core.MustParseMoney(amount)
		if cur.Balance, err = kind.Apply(cur.Balance, amt); err != nil {
			return err
		}
		if _, err := tx.SaveWallet(ctx, cur); err != nil {
			return err
		}
		out, err = tx.AppendTransaction(ctx, core.Transaction{
			WalletID: w.ID, Kind: kind, Amount: amt, CategoryID: cat,
		})
		return err
	})
	require.NoError(t, err)
	return out
}

func testOpenWallet(t *testing.T, s storage.Store) {
	ctx := context.Background()

	_, err := s.GetWallet(ctx, "alice")
	require.ErrorIs(t, err, core.ErrWalletNotFound)

	w := openWallet(t, s, "alice")
	assert.NotZero(t, w.ID)
	assert.True(t, w.Balance.IsZero())
	assert.False(t, w.CreatedAt.IsZero())

	got, err := s.GetWallet(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, w.ID, got.ID)

	byID, err := s.GetWalletByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.OwnerID)

	err = s.WithinUnitOfWork(ctx, func(ctx context.Context, tx storage.Tx) error {
		_, err := tx.SaveWallet(ctx, core.Wallet{OwnerID: "alice"})
		return err
	})
	require.ErrorIs(t, err, core.ErrWalletExists)

	_, err = s.GetWalletByID(ctx, w.ID+1000)
	require.ErrorIs(t, err, core.ErrWalletNotFound)
}

func testRollback(t *testing.T, s storage.Store) {
	ctx := context.Background()
	w := openWallet(t, s, "bob")
	boom := errors.New("boom")

	err := s.WithinUnitOfWork(ctx, func(ctx context.Context, tx storage.Tx) error {
		cur, err := tx.GetWalletByID(ctx, w.ID)
		if err != nil {
			return err
		}
		cur.Balance = core.MustParseMoney("10.00")
		if _, err := tx.SaveWallet(ctx, cur); err != nil {
			return err
		}
		if _, err := tx.AppendTransaction(ctx, core.Transaction{WalletID: w.ID, Kind: core.Income, Amount: cur.Balance}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.GetWalletByID(ctx, w.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.IsZero(), "balance must roll back")

	txs, err := s.QueryTransactions(ctx, w.ID, core.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, txs, "append must roll back")
}

func testCancelled(t *testing.T, s storage.Store) {
	w := openWallet(t, s, "carol")
	ctx, cancel := context.WithCancel(context.Background())

	err := s.WithinUnitOfWork(ctx, func(ctx context.Context, tx storage.Tx) error {
		cur, err := tx.GetWalletByID(ctx, w.ID)
		if err != nil {
			return err
		}
		cur.Balance = core.MustParseMoney("5.00")
		if _, err := tx.SaveWallet(ctx, cur); err != nil {
			return err
		}
		cancel()
		return nil
	})
	require.Error(t, err)

	got, err := s.GetWalletByID(context.Background(), w.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.IsZero())
}

func testStaleVersion(t *testing.T, s storage.Store) {
	ctx := context.Background()
	w := openWallet(t, s, "dave")

	err := s.WithinUnitOfWork(ctx, func(ctx context.Context, tx storage.Tx) error {
		first := w
		first.Balance = core.MustParseMoney("1.00")
		saved, err := tx.SaveWallet(ctx, first)
		if err != nil {
			return err
		}
		assert.Equal(t, w.Version+1, saved.Version)

		// w still carries the old version
		_, err = tx.SaveWallet(ctx, w)
		return err
	})
	require.ErrorIs(t, err, storage.ErrStaleWallet)
}

func testQuery(t *testing.T, s storage.Store) {
	ctx := context.Background()
	w := openWallet(t, s, "erin")
	other := openWallet(t, s, "frank")
	food := int64(4)

	t1 := record(t, s, w, core.Income, "100.00", nil)
	t2 := record(t, s, w, core.Expense, "20.00", &food)
	t3 := record(t, s, w, core.Expense, "5.00", nil)
	record(t, s, other, core.Income, "1.00", nil)

	all, err := s.QueryTransactions(ctx, w.ID, core.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{t3.ID, t2.ID, t1.ID}, ids(all), "newest first")

	expenses, err := s.QueryTransactions(ctx, w.ID, core.TransactionFilter{Kind: core.Expense})
	require.NoError(t, err)
	assert.Equal(t, []int64{t3.ID, t2.ID}, ids(expenses))

	byCat, err := s.QueryTransactions(ctx, w.ID, core.TransactionFilter{Kind: core.Expense, CategoryID: &food})
	require.NoError(t, err)
	require.Len(t, byCat, 1)
	assert.Equal(t, t2.ID, byCat[0].ID)
	require.NotNil(t, byCat[0].CategoryID)
	assert.Equal(t, food, *byCat[0].CategoryID)

	exact, err := s.QueryTransactions(ctx, w.ID, core.TransactionFilter{From: t2.CreatedAt, To: t2.CreatedAt})
	require.NoError(t, err)
	assert.Contains(t, ids(exact), t2.ID, "bounds are inclusive")

	future, err := s.QueryTransactions(ctx, w.ID, core.TransactionFilter{From: time.Now().Add(time.Hour)})
	require.NoError(t, err)
	assert.Empty(t, future)

	got, err := s.GetTransaction(ctx, t1.ID)
	require.NoError(t, err)
	assert.Equal(t, core.Income, got.Kind)
	assert.Equal(t, int64(10000), got.Amount.Cents)

	_, err = s.GetTransaction(ctx, t1.ID+1000)
	require.ErrorIs(t, err, core.ErrTransactionNotFound)
}

func testSums(t *testing.T, s storage.Store) {
	ctx := context.Background()
	w := openWallet(t, s, "gina")
	food := int64(4)
	transport := int64(5)
	whole := core.Period{}

	zero, err := s.SumAmount(ctx, w.ID, core.Income, whole)
	require.NoError(t, err)
	assert.True(t, zero.IsZero(), "empty sum is zero")

	empty, err := s.SumAmountByCategory(ctx, w.ID, core.Expense, whole)
	require.NoError(t, err)
	assert.Empty(t, empty)

	record(t, s, w, core.Income, "100.00", nil)
	record(t, s, w, core.Income, "0.10", nil)
	record(t, s, w, core.Expense, "10.00", &food)
	record(t, s, w, core.Expense, "2.50", &food)
	record(t, s, w, core.Expense, "7.00", &transport)
	record(t, s, w, core.Expense, "1.00", nil)

	income, err := s.SumAmount(ctx, w.ID, core.Income, whole)
	require.NoError(t, err)
	assert.Equal(t, "100.10", income.String())

	expense, err := s.SumAmount(ctx, w.ID, core.Expense, whole)
	require.NoError(t, err)
	assert.Equal(t, "20.50", expense.String())

	groups, err := s.SumAmountByCategory(ctx, w.ID, core.Expense, whole)
	require.NoError(t, err)
	got := map[int64]string{}
	for _, g := range groups {
		key := int64(-1)
		if g.CategoryID != nil {
			key = *g.CategoryID
		}
		got[key] = g.Amount.String()
	}
	assert.Equal(t, map[int64]string{food: "12.50", transport: "7.00", -1: "1.00"}, got)

	past := core.Period{From: time.Now().Add(-48 * time.Hour), To: time.Now().Add(-24 * time.Hour)}
	none, err := s.SumAmount(ctx, w.ID, core.Expense, past)
	require.NoError(t, err)
	assert.True(t, none.IsZero())
}

func testSumOverflow(t *testing.T, s storage.Store) {
	ctx := context.Background()
	w := openWallet(t, s, "olga")
	half := core.Money{Cents: math.MaxInt64/2 + 1}

	// Appended directly: the balance never sees these amounts.
	err := s.WithinUnitOfWork(ctx, func(ctx context.Context, tx storage.Tx) error {
		for range 2 {
			if _, err := tx.AppendTransaction(ctx, core.Transaction{WalletID: w.ID, Kind: core.Income, Amount: half}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	_, err = s.SumAmount(ctx, w.ID, core.Income, core.Period{})
	require.ErrorIs(t, err, core.ErrAmountOverflow)
	assert.Equal(t, core.CodeInvalidAmount, core.ErrorCode(err))

	_, err = s.SumAmountByCategory(ctx, w.ID, core.Income, core.Period{})
	require.ErrorIs(t, err, core.ErrAmountOverflow)
}

func testDetached(t *testing.T, s storage.Store) {
	ctx := context.Background()
	w := openWallet(t, s, "pablo")
	cat := int64(4)

	stored := record(t, s, w, core.Income, "5.00", &cat)
	cat = 99
	*stored.CategoryID = 98

	got, err := s.GetTransaction(ctx, stored.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CategoryID)
	assert.Equal(t, int64(4), *got.CategoryID)

	*got.CategoryID = 97
	listed, err := s.QueryTransactions(ctx, w.ID, core.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, int64(4), *listed[0].CategoryID)

	owner := "pablo"
	c, err := s.CreateCategory(ctx, core.Category{Name: "Garden", Color: "#00ff00", Kind: core.Expense, OwnerID: &owner})
	require.NoError(t, err)
	owner = "mallory"

	resolved, err := s.ResolveCategory(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, resolved.OwnerID)
	assert.Equal(t, "pablo", *resolved.OwnerID)
}

func testCategories(t *testing.T, s storage.Store) {
	ctx := context.Background()

	global, err := s.ListCategories(ctx, "henry", "")
	require.NoError(t, err)
	require.NotEmpty(t, global)

	owner := "henry"
	mine, err := s.CreateCategory(ctx, core.Category{Name: "Pets", Color: "#000000", Kind: core.Expense, OwnerID: &owner})
	require.NoError(t, err)
	assert.NotZero(t, mine.ID)

	expenses, err := s.ListCategories(ctx, "henry", core.Expense)
	require.NoError(t, err)
	assert.Contains(t, names(expenses), "Pets")
	for _, c := range expenses {
		assert.Equal(t, core.Expense, c.Kind)
	}

	others, err := s.ListCategories(ctx, "ivy", "")
	require.NoError(t, err)
	assert.NotContains(t, names(others), "Pets", "owner categories are private")

	resolved, err := s.ResolveCategory(ctx, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pets", resolved.Name)

	require.NoError(t, s.DeleteCategory(ctx, mine.ID))
	_, err = s.ResolveCategory(ctx, mine.ID)
	require.ErrorIs(t, err, core.ErrCategoryNotFound)
	require.ErrorIs(t, s.DeleteCategory(ctx, mine.ID), core.ErrCategoryNotFound)
}

func ids(txs []core.Transaction) []int64 {
	out := make([]int64, len(txs))
	for i, t := range txs {
		out[i] = t.ID
	}
	return out
}

func names(cats []core.Category) []string {
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = c.Name
	}
	return out
}
