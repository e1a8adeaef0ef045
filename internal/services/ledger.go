package services

import (
	"context"
	"fmt"
	"io"
	"time"

	applog "wallet/internal/log"
	"wallet/internal/storage"
)

type LedgerOptions struct {
	CategoryCacheSize int
	CategoryCacheTTL  time.Duration
}

// Ledger bundles the services that make up the balance-ledger engine over
// one store.
type Ledger struct {
	Wallets      *WalletService
	Transactions *TransactionService
	Dashboard    *DashboardService
	Payments     *PaymentService
	Categories   *CategoryService
	Resolver     *CachedCategoryResolver

	store     storage.Store
	publisher EventPublisher
}

// NewLedger wires every service. publisher may be nil; if it implements
// io.Closer it is closed with the ledger.
func NewLedger(store storage.Store, publisher EventPublisher, opts LedgerOptions, logger *applog.Logger) *Ledger {
	if opts.CategoryCacheSize <= 0 {
		opts.CategoryCacheSize = 256
	}
	if opts.CategoryCacheTTL <= 0 {
		opts.CategoryCacheTTL = 5 * time.Minute
	}

	resolver := NewCachedCategoryResolver(store, opts.CategoryCacheSize, opts.CategoryCacheTTL)
	wallets := NewWalletService(store, logger)
	recorder := NewTransactionService(store, wallets, publisher, logger)

	return &Ledger{
		Wallets:      wallets,
		Transactions: recorder,
		Dashboard:    NewDashboardService(store, resolver, logger),
		Payments:     NewPaymentService(recorder, logger),
		Categories:   NewCategoryService(store, resolver, logger),
		Resolver:     resolver,
		store:        store,
		publisher:    publisher,
	}
}

// Ready reports whether the backing store answers.
func (l *Ledger) Ready(ctx context.Context) error {
	return l.store.Ping(ctx)
}

// Close closes the publisher and the store.
func (l *Ledger) Close() error {
	var errs []error

	if c, ok := l.publisher.(io.Closer); ok && c != nil {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}

	if l.store != nil {
		if err := l.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger: %v", errs)
	}
	return nil
}
