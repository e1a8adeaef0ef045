package services

import (
	"context"
	"errors"
	"fmt"

	"wallet/internal/core"
	applog "wallet/internal/log"
	"wallet/internal/storage"
)

// EventPublisher announces committed ledger entries. Implementations must not
// assume the caller retries.
type EventPublisher interface {
	PublishTransactionRecorded(ctx context.Context, ownerID string, t core.Transaction) error
}

// NewTransaction is the input to CreateTransaction.
type NewTransaction struct {
	Kind        core.Kind
	Amount      core.Money
	Description string
	CategoryID  *int64
}

// TransactionService records ledger entries and applies them to the wallet atomically.
type TransactionService struct {
	store     storage.Store
	wallets   *WalletService
	publisher EventPublisher
	logger    *applog.Logger
	slog      *applog.StructuredLogger
}

// NewTransactionService wires the recorder. publisher may be nil.
func NewTransactionService(store storage.Store, wallets *WalletService, publisher EventPublisher, logger *applog.Logger) *TransactionService {
	if logger == nil {
		logger = applog.Nop()
	}
	return &TransactionService{
		store:     store,
		wallets:   wallets,
		publisher: publisher,
		logger:    logger.WithComponent(applog.ComponentLedger),
		slog:      applog.NewStructuredLogger(logger),
	}
}

// CreateTransaction validates the entry, moves the balance and appends the row
// in one unit of work. Validation failures never reach the store.
func (s *TransactionService) CreateTransaction(ctx context.Context, ownerID string, in NewTransaction) (core.Transaction, error) {
	if err := core.ValidateOwner(ownerID); err != nil {
		return core.Transaction{}, err
	}
	if err := core.ValidateEntry(in.Kind, in.Amount, in.Description); err != nil {
		return core.Transaction{}, err
	}

	var (
		recorded core.Transaction
		wallet   core.Wallet
	)
	err := s.store.WithinUnitOfWork(ctx, func(ctx context.Context, tx storage.Tx) error {
		var err error
		wallet, err = s.wallets.ApplyDeltaIn(ctx, tx, ownerID, in.Amount, in.Kind)
		if err != nil {
			return err
		}

		recorded, err = tx.AppendTransaction(ctx, core.Transaction{
			WalletID:    wallet.ID,
			Kind:        in.Kind,
			Amount:      in.Amount,
			Description: in.Description,
			CategoryID:  in.CategoryID,
		})
		return err
	})
	if err != nil {
		s.logFailure(ctx, ownerID, in, err)
		return core.Transaction{}, err
	}

	s.slog.LogTransactionRecorded(ctx, ownerID, recorded.ID, recorded.Kind.String(), recorded.Amount.String(), wallet.Balance.String())
	s.publish(ctx, ownerID, recorded)
	return recorded, nil
}

func (s *TransactionService) logFailure(ctx context.Context, ownerID string, in NewTransaction, err error) {
	fields := applog.NewFields().WithOwner(ownerID).WithTransaction(0, in.Kind.String(), in.Amount.String())
	switch {
	case errors.Is(err, core.ErrInsufficientFunds), errors.Is(err, core.ErrWalletNotFound):
		s.logger.WarnContext(ctx, "Transaction rejected", fields.WithError(err, core.ErrorCode(err)).ToSlice()...)
	default:
		s.slog.LogError(ctx, "Failed to record transaction", err, core.ErrorCode(err), applog.ComponentLedger, applog.OpRecord, fields)
	}
}

// publish runs after commit; failures are logged and never undo the entry.
func (s *TransactionService) publish(ctx context.Context, ownerID string, t core.Transaction) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "No event publisher configured, skipping transaction event")
		return
	}
	if err := s.publisher.PublishTransactionRecorded(ctx, ownerID, t); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish transaction event",
			applog.NewFields().WithTransaction(t.ID, t.Kind.String(), t.Amount.String()).WithError(err, "").ToSlice()...)
	}
}

// ListTransactions returns the owner's entries matching f, newest first.
func (s *TransactionService) ListTransactions(ctx context.Context, ownerID string, f core.TransactionFilter) ([]core.Transaction, error) {
	if err := core.ValidateOwner(ownerID); err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}

	w, err := s.store.GetWallet(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	txs, err := s.store.QueryTransactions(ctx, w.ID, f)
	if err != nil {
		return nil, fmt.Errorf("query transactions for wallet %d: %w", w.ID, err)
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	return txs, nil
}

// GetTransaction loads a single entry by id.
func (s *TransactionService) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}
