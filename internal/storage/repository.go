package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"wallet/internal/core"
)

// SQLiteRepository is the durable Store. Units of work run as BEGIN IMMEDIATE
// transactions on a single connection, so wallet mutations are serialised.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Run migrations before the pool exists so it never competes for the write lock.
	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}, nil
}

func dsn(dbPath string) string {
	return "file:" + dbPath + "?_txlock=immediate&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// WithinUnitOfWork implements UnitOfWork. fn must use tx for every store call;
// the pool has a single connection and reaching for r would block forever.
func (r *SQLiteRepository) WithinUnitOfWork(ctx context.Context, fn func(ctx context.Context, tx Tx) error) (err error) {
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin unit of work: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				slog.ErrorContext(ctx, "Rollback failed", "error", rbErr)
			}
		}
	}()

	if err = fn(ctx, &sqliteTx{queries: r.queries.WithTx(sqlTx), now: r.now}); err != nil {
		return err
	}
	if err = ctx.Err(); err != nil {
		return err
	}
	if err = sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit unit of work: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetWallet(ctx context.Context, ownerID string) (core.Wallet, error) {
	return getWallet(ctx, r.queries, ownerID)
}

func (r *SQLiteRepository) GetWalletByID(ctx context.Context, id int64) (core.Wallet, error) {
	return getWalletByID(ctx, r.queries, id)
}

func (r *SQLiteRepository) QueryTransactions(ctx context.Context, walletID int64, f core.TransactionFilter) ([]core.Transaction, error) {
	params := ListTransactionsParams{
		WalletID:   walletID,
		Kind:       nullString(string(f.Kind)),
		CategoryID: nullInt64(f.CategoryID),
		From:       nullTime(f.From),
		To:         nullTime(f.To),
	}
	rows, err := r.queries.ListTransactions(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	out := make([]core.Transaction, len(rows))
	for i, row := range rows {
		out[i] = row.toCore()
	}
	return out, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrTransactionNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return row.toCore(), nil
}

func (r *SQLiteRepository) SumAmount(ctx context.Context, walletID int64, kind core.Kind, p core.Period) (core.Money, error) {
	total, err := r.queries.SumAmount(ctx, sumParams(walletID, kind, p))
	if err != nil {
		return core.Zero, fmt.Errorf("sum %s amount: %w", kind, sumError(err))
	}
	return core.Money{Cents: total}, nil
}

func (r *SQLiteRepository) SumAmountByCategory(ctx context.Context, walletID int64, kind core.Kind, p core.Period) ([]core.CategoryTotal, error) {
	rows, err := r.queries.SumAmountByCategory(ctx, sumParams(walletID, kind, p))
	if err != nil {
		return nil, fmt.Errorf("sum %s amount by category: %w", kind, sumError(err))
	}

	out := make([]core.CategoryTotal, len(rows))
	for i, row := range rows {
		out[i] = core.CategoryTotal{
			CategoryID: int64Ptr(row.CategoryID),
			Amount:     core.Money{Cents: row.TotalAmount},
		}
	}
	return out, nil
}

// sumError maps SQLite's integer overflow in SUM to core.ErrAmountOverflow.
func sumError(err error) error {
	if strings.Contains(err.Error(), "integer overflow") {
		return core.ErrAmountOverflow
	}
	return err
}

func sumParams(walletID int64, kind core.Kind, p core.Period) SumAmountParams {
	return SumAmountParams{
		WalletID: walletID,
		Kind:     string(kind),
		From:     nullTime(p.From),
		To:       nullTime(p.To),
	}
}

func (r *SQLiteRepository) ResolveCategory(ctx context.Context, id int64) (core.Category, error) {
	row, err := r.queries.GetCategory(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrCategoryNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %d: %w", id, err)
	}
	return row.toCore(), nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, ownerID string, kind core.Kind) ([]core.Category, error) {
	rows, err := r.queries.ListCategories(ctx, ListCategoriesParams{
		OwnerID: ownerID,
		Kind:    nullString(string(kind)),
	})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	out := make([]core.Category, len(rows))
	for i, row := range rows {
		out[i] = row.toCore()
	}
	return out, nil
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	params := CreateCategoryParams{
		Name:  c.Name,
		Color: c.Color,
		Kind:  string(c.Kind),
	}
	if c.OwnerID != nil {
		params.OwnerID = nullString(*c.OwnerID)
	}
	row, err := r.queries.CreateCategory(ctx, params)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}

	slog.InfoContext(ctx, "Category created", "id", row.ID, "name", row.Name, "kind", row.Kind)
	return row.toCore(), nil
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	if n == 0 {
		return core.ErrCategoryNotFound
	}

	slog.InfoContext(ctx, "Category deleted", "id", id)
	return nil
}

// sqliteTx is the Tx handed to unit-of-work callbacks.
type sqliteTx struct {
	queries *Queries
	now     func() time.Time
}

func (t *sqliteTx) GetWallet(ctx context.Context, ownerID string) (core.Wallet, error) {
	return getWallet(ctx, t.queries, ownerID)
}

func (t *sqliteTx) GetWalletByID(ctx context.Context, id int64) (core.Wallet, error) {
	return getWalletByID(ctx, t.queries, id)
}

func (t *sqliteTx) SaveWallet(ctx context.Context, w core.Wallet) (core.Wallet, error) {
	ts := t.now().UnixNano()

	if w.ID == 0 {
		row, err := t.queries.CreateWallet(ctx, CreateWalletParams{
			OwnerID:      w.OwnerID,
			BalanceCents: w.Balance.Cents,
			CreatedAt:    ts,
		})
		if isUniqueViolation(err) {
			return core.Wallet{}, core.ErrWalletExists
		}
		if err != nil {
			return core.Wallet{}, fmt.Errorf("create wallet: %w", err)
		}
		return row.toCore(), nil
	}

	row, err := t.queries.UpdateWalletBalance(ctx, UpdateWalletBalanceParams{
		BalanceCents: w.Balance.Cents,
		UpdatedAt:    ts,
		ID:           w.ID,
		Version:      w.Version,
	})
	if errors.Is(err, sql.ErrNoRows) {
		if _, getErr := getWalletByID(ctx, t.queries, w.ID); getErr != nil {
			return core.Wallet{}, getErr
		}
		return core.Wallet{}, ErrStaleWallet
	}
	if err != nil {
		return core.Wallet{}, fmt.Errorf("update wallet %d: %w", w.ID, err)
	}
	return row.toCore(), nil
}

func (t *sqliteTx) AppendTransaction(ctx context.Context, tr core.Transaction) (core.Transaction, error) {
	row, err := t.queries.CreateTransaction(ctx, CreateTransactionParams{
		WalletID:    tr.WalletID,
		Kind:        string(tr.Kind),
		AmountCents: tr.Amount.Cents,
		Description: tr.Description,
		CategoryID:  nullInt64(tr.CategoryID),
		CreatedAt:   t.now().UnixNano(),
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("append transaction: %w", err)
	}
	return row.toCore(), nil
}

func getWallet(ctx context.Context, q *Queries, ownerID string) (core.Wallet, error) {
	row, err := q.GetWalletByOwner(ctx, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Wallet{}, core.ErrWalletNotFound
	}
	if err != nil {
		return core.Wallet{}, fmt.Errorf("get wallet for owner %s: %w", ownerID, err)
	}
	return row.toCore(), nil
}

func getWalletByID(ctx context.Context, q *Queries, id int64) (core.Wallet, error) {
	row, err := q.GetWalletByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Wallet{}, core.ErrWalletNotFound
	}
	if err != nil {
		return core.Wallet{}, fmt.Errorf("get wallet %d: %w", id, err)
	}
	return row.toCore(), nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
