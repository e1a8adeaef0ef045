package services

import (
	"context"
	"errors"
	"fmt"

	"wallet/internal/core"
	applog "wallet/internal/log"
	"wallet/internal/storage"
)

// WalletService is the only writer of wallet balances.
type WalletService struct {
	store  storage.Store
	logger *applog.Logger
}

func NewWalletService(store storage.Store, logger *applog.Logger) *WalletService {
	if logger == nil {
		logger = applog.Nop()
	}
	return &WalletService{
		store:  store,
		logger: logger.WithComponent(applog.ComponentWallet),
	}
}

// OpenWallet creates the owner's wallet with a zero balance.
func (s *WalletService) OpenWallet(ctx context.Context, ownerID string) (core.Wallet, error) {
	if err := core.ValidateOwner(ownerID); err != nil {
		return core.Wallet{}, err
	}

	var w core.Wallet
	err := s.store.WithinUnitOfWork(ctx, func(ctx context.Context, tx storage.Tx) error {
		if _, err := tx.GetWallet(ctx, ownerID); err == nil {
			return core.ErrWalletExists
		} else if !errors.Is(err, core.ErrWalletNotFound) {
			return err
		}

		var err error
		w, err = tx.SaveWallet(ctx, core.Wallet{OwnerID: ownerID, Balance: core.Zero})
		return err
	})
	if err != nil {
		if !errors.Is(err, core.ErrWalletExists) {
			s.logger.ErrorContext(ctx, "Failed to open wallet", applog.NewFields().WithOwner(ownerID).WithError(err, core.ErrorCode(err)).ToSlice()...)
		}
		return core.Wallet{}, err
	}

	s.logger.InfoContext(ctx, "Wallet opened", applog.NewFields().
		WithOwner(ownerID).
		WithWallet(w.ID, w.Balance.String()).
		WithOperation(applog.OpOpenWallet).ToSlice()...)
	return w, nil
}

// GetBalance returns the owner's wallet as currently stored.
func (s *WalletService) GetBalance(ctx context.Context, ownerID string) (core.Wallet, error) {
	if err := core.ValidateOwner(ownerID); err != nil {
		return core.Wallet{}, err
	}
	return s.store.GetWallet(ctx, ownerID)
}

// ApplyDelta moves the owner's balance in its own unit of work.
func (s *WalletService) ApplyDelta(ctx context.Context, ownerID string, amount core.Money, kind core.Kind) (core.Wallet, error) {
	if err := core.ValidateEntry(kind, amount, ""); err != nil {
		return core.Wallet{}, err
	}

	var w core.Wallet
	err := s.store.WithinUnitOfWork(ctx, func(ctx context.Context, tx storage.Tx) error {
		var err error
		w, err = s.ApplyDeltaIn(ctx, tx, ownerID, amount, kind)
		return err
	})
	return w, err
}

// ApplyDeltaIn moves the owner's balance inside an existing unit of work.
// An expense that would take the balance below zero fails with
// *core.InsufficientFundsError before anything is written.
func (s *WalletService) ApplyDeltaIn(ctx context.Context, tx storage.Tx, ownerID string, amount core.Money, kind core.Kind) (core.Wallet, error) {
	w, err := tx.GetWallet(ctx, ownerID)
	if err != nil {
		return core.Wallet{}, err
	}

	next, err := kind.Apply(w.Balance, amount)
	if err != nil {
		return core.Wallet{}, &core.ValidationError{Field: "amount", Value: amount.String(), Err: err}
	}
	if next.IsNegative() {
		s.logger.WarnContext(ctx, "Insufficient funds", applog.NewFields().
			WithOwner(ownerID).
			WithWallet(w.ID, w.Balance.String()).
			WithTransaction(0, kind.String(), amount.String()).
			WithOperation(applog.OpApplyDelta).ToSlice()...)
		return core.Wallet{}, &core.InsufficientFundsError{Current: w.Balance, Requested: amount}
	}

	w.Balance = next
	saved, err := tx.SaveWallet(ctx, w)
	if err != nil {
		return core.Wallet{}, fmt.Errorf("save wallet %d: %w", w.ID, err)
	}
	return saved, nil
}
