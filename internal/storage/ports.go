package storage

import (
	"context"
	"errors"

	"wallet/internal/core"
)

// ErrStaleWallet means a wallet row changed between read and write.
var ErrStaleWallet = errors.New("wallet modified concurrently")

type WalletReader interface {
	GetWallet(ctx context.Context, ownerID string) (core.Wallet, error)
	GetWalletByID(ctx context.Context, id int64) (core.Wallet, error)
}

// Tx is the view of the store available inside a unit of work.
type Tx interface {
	WalletReader
	// SaveWallet inserts a wallet with ID 0 and updates any other, checking
	// Version. It returns the persisted copy with a refreshed UpdatedAt.
	SaveWallet(ctx context.Context, w core.Wallet) (core.Wallet, error)
	// AppendTransaction assigns ID and CreatedAt and returns the persisted copy.
	AppendTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
}

type LedgerReader interface {
	WalletReader
	// QueryTransactions returns matching rows, newest first.
	QueryTransactions(ctx context.Context, walletID int64, f core.TransactionFilter) ([]core.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	SumAmount(ctx context.Context, walletID int64, kind core.Kind, p core.Period) (core.Money, error)
	SumAmountByCategory(ctx context.Context, walletID int64, kind core.Kind, p core.Period) ([]core.CategoryTotal, error)
}

// CategoryResolver looks up a category by id, failing with core.ErrCategoryNotFound.
type CategoryResolver interface {
	ResolveCategory(ctx context.Context, id int64) (core.Category, error)
}

type CategoryStore interface {
	CategoryResolver
	// ListCategories returns global categories plus the owner's own.
	// An empty kind lists both kinds.
	ListCategories(ctx context.Context, ownerID string, kind core.Kind) ([]core.Category, error)
	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

// UnitOfWork runs fn atomically. Returning an error from fn, or a
// cancelled ctx, rolls back everything fn wrote.
type UnitOfWork interface {
	WithinUnitOfWork(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type Store interface {
	LedgerReader
	CategoryStore
	UnitOfWork
	Ping(ctx context.Context) error
	Close() error
}
