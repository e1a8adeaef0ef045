// Package memory is an in-process storage.Store for tests and DATA_BACKEND=memory.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"wallet/internal/core"
	"wallet/internal/storage"
)

type Store struct {
	// uow serialises units of work; mu guards the committed state.
	uow sync.Mutex
	mu  sync.RWMutex

	wallets      map[int64]core.Wallet
	byOwner      map[string]int64
	txs          []core.Transaction
	categories   map[int64]core.Category
	nextWalletID int64
	nextTxID     int64
	nextCatID    int64

	now func() time.Time
}

type Option func(*Store)

// WithClock replaces time.Now for timestamps assigned by the store.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns an empty store seeded with the default global categories.
func New(opts ...Option) *Store {
	s := &Store{
		wallets:    map[int64]core.Wallet{},
		byOwner:    map[string]int64{},
		categories: map[int64]core.Category{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, c := range DefaultCategories() {
		s.nextCatID++
		c.ID = s.nextCatID
		s.categories[c.ID] = c
	}
	return s
}

// DefaultCategories mirrors the rows seeded by the SQLite migration.
func DefaultCategories() []core.Category {
	return []core.Category{
		{Name: "Salary", Color: "#10b981", Kind: core.Income},
		{Name: "Freelance", Color: "#3b82f6", Kind: core.Income},
		{Name: "Investments", Color: "#8b5cf6", Kind: core.Income},
		{Name: "Food", Color: "#ef4444", Kind: core.Expense},
		{Name: "Transport", Color: "#f59e0b", Kind: core.Expense},
		{Name: "Housing", Color: "#6366f1", Kind: core.Expense},
		{Name: "Utilities", Color: "#14b8a6", Kind: core.Expense},
		{Name: "Health", Color: "#ec4899", Kind: core.Expense},
		{Name: "Entertainment", Color: "#a855f7", Kind: core.Expense},
		{Name: "Shopping", Color: "#f97316", Kind: core.Expense},
	}
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) Close() error { return nil }

// WithinUnitOfWork stages every write on a private copy and publishes it only
// when fn succeeds and ctx is still live.
func (s *Store) WithinUnitOfWork(ctx context.Context, fn func(ctx context.Context, tx storage.Tx) error) error {
	s.uow.Lock()
	defer s.uow.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	stage := &memTx{
		wallets:      maps.Clone(s.wallets),
		byOwner:      maps.Clone(s.byOwner),
		nextWalletID: s.nextWalletID,
		nextTxID:     s.nextTxID,
		now:          s.now,
	}
	s.mu.RUnlock()

	if err := fn(ctx, stage); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.wallets = stage.wallets
	s.byOwner = stage.byOwner
	s.txs = append(s.txs, stage.appended...)
	s.nextWalletID = stage.nextWalletID
	s.nextTxID = stage.nextTxID
	s.mu.Unlock()
	return nil
}

func (s *Store) GetWallet(_ context.Context, ownerID string) (core.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byOwner[ownerID]
	if !ok {
		return core.Wallet{}, core.ErrWalletNotFound
	}
	return s.wallets[id], nil
}

func (s *Store) GetWalletByID(_ context.Context, id int64) (core.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.wallets[id]
	if !ok {
		return core.Wallet{}, core.ErrWalletNotFound
	}
	return w, nil
}

func (s *Store) QueryTransactions(_ context.Context, walletID int64, f core.TransactionFilter) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Transaction
	for _, t := range s.txs {
		if t.WalletID == walletID && f.Matches(t) {
			out = append(out, cloneTransaction(t))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) GetTransaction(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.txs {
		if t.ID == id {
			return cloneTransaction(t), nil
		}
	}
	return core.Transaction{}, core.ErrTransactionNotFound
}

func (s *Store) SumAmount(_ context.Context, walletID int64, kind core.Kind, p core.Period) (core.Money, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := core.Zero
	for _, t := range s.txs {
		if t.WalletID == walletID && t.Kind == kind && p.Contains(t.CreatedAt) {
			var err error
			if total, err = total.CheckedAdd(t.Amount); err != nil {
				return core.Zero, fmt.Errorf("sum %s amount: %w", kind, err)
			}
		}
	}
	return total, nil
}

func (s *Store) SumAmountByCategory(_ context.Context, walletID int64, kind core.Kind, p core.Period) ([]core.CategoryTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		order    []*int64
		byID     = map[int64]core.Money{}
		noCat    core.Money
		hasNoCat bool
	)
	for _, t := range s.txs {
		if t.WalletID != walletID || t.Kind != kind || !p.Contains(t.CreatedAt) {
			continue
		}
		var err error
		if t.CategoryID == nil {
			if !hasNoCat {
				order = append(order, nil)
				hasNoCat = true
			}
			if noCat, err = noCat.CheckedAdd(t.Amount); err != nil {
				return nil, fmt.Errorf("sum %s amount by category: %w", kind, err)
			}
			continue
		}
		id := *t.CategoryID
		if _, seen := byID[id]; !seen {
			order = append(order, &id)
		}
		if byID[id], err = byID[id].CheckedAdd(t.Amount); err != nil {
			return nil, fmt.Errorf("sum %s amount by category: %w", kind, err)
		}
	}

	out := make([]core.CategoryTotal, 0, len(order))
	for _, id := range order {
		if id == nil {
			out = append(out, core.CategoryTotal{Amount: noCat})
			continue
		}
		out = append(out, core.CategoryTotal{CategoryID: id, Amount: byID[*id]})
	}
	return out, nil
}

func (s *Store) ResolveCategory(_ context.Context, id int64) (core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return core.Category{}, core.ErrCategoryNotFound
	}
	return cloneCategory(c), nil
}

func (s *Store) ListCategories(_ context.Context, ownerID string, kind core.Kind) ([]core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Category
	for _, c := range s.categories {
		if c.OwnerID != nil && *c.OwnerID != ownerID {
			continue
		}
		if kind != "" && c.Kind != kind {
			continue
		}
		out = append(out, cloneCategory(c))
	}
	sort.Slice(out, func(i, j int) bool {
		gi, gj := out[i].OwnerID == nil, out[j].OwnerID == nil
		if gi != gj {
			return gi
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) CreateCategory(_ context.Context, c core.Category) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextCatID++
	c.ID = s.nextCatID
	s.categories[c.ID] = cloneCategory(c)
	return c, nil
}

func (s *Store) DeleteCategory(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return core.ErrCategoryNotFound
	}
	delete(s.categories, id)
	return nil
}

// TransactionCount is a test helper.
func (s *Store) TransactionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.txs)
}

type memTx struct {
	wallets      map[int64]core.Wallet
	byOwner      map[string]int64
	appended     []core.Transaction
	nextWalletID int64
	nextTxID     int64
	now          func() time.Time
}

func (t *memTx) GetWallet(_ context.Context, ownerID string) (core.Wallet, error) {
	id, ok := t.byOwner[ownerID]
	if !ok {
		return core.Wallet{}, core.ErrWalletNotFound
	}
	return t.wallets[id], nil
}

func (t *memTx) GetWalletByID(_ context.Context, id int64) (core.Wallet, error) {
	w, ok := t.wallets[id]
	if !ok {
		return core.Wallet{}, core.ErrWalletNotFound
	}
	return w, nil
}

func (t *memTx) SaveWallet(_ context.Context, w core.Wallet) (core.Wallet, error) {
	ts := t.now().UTC()

	if w.ID == 0 {
		if _, exists := t.byOwner[w.OwnerID]; exists {
			return core.Wallet{}, core.ErrWalletExists
		}
		t.nextWalletID++
		w.ID = t.nextWalletID
		w.Version = 0
		w.CreatedAt = ts
		w.UpdatedAt = ts
		t.wallets[w.ID] = w
		t.byOwner[w.OwnerID] = w.ID
		return w, nil
	}

	cur, ok := t.wallets[w.ID]
	if !ok {
		return core.Wallet{}, core.ErrWalletNotFound
	}
	if cur.Version != w.Version {
		return core.Wallet{}, storage.ErrStaleWallet
	}
	cur.Balance = w.Balance
	cur.Version++
	cur.UpdatedAt = ts
	t.wallets[w.ID] = cur
	return cur, nil
}

func (t *memTx) AppendTransaction(_ context.Context, tr core.Transaction) (core.Transaction, error) {
	if _, ok := t.wallets[tr.WalletID]; !ok {
		return core.Transaction{}, core.ErrWalletNotFound
	}
	t.nextTxID++
	tr.ID = t.nextTxID
	tr.CreatedAt = t.now().UTC()
	tr = cloneTransaction(tr)
	t.appended = append(t.appended, tr)
	return cloneTransaction(tr), nil
}

// Stored rows never share pointers with callers.
func cloneTransaction(t core.Transaction) core.Transaction {
	if t.CategoryID != nil {
		id := *t.CategoryID
		t.CategoryID = &id
	}
	return t
}

func cloneCategory(c core.Category) core.Category {
	if c.OwnerID != nil {
		owner := *c.OwnerID
		c.OwnerID = &owner
	}
	return c
}
