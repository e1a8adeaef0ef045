package services

import (
	"context"

	"wallet/internal/core"
	applog "wallet/internal/log"
)

// PaymentService maps payment intents onto expense entries.
type PaymentService struct {
	recorder *TransactionService
	logger   *applog.Logger
}

func NewPaymentService(recorder *TransactionService, logger *applog.Logger) *PaymentService {
	if logger == nil {
		logger = applog.Nop()
	}
	return &PaymentService{
		recorder: recorder,
		logger:   logger.WithComponent(applog.ComponentPayment),
	}
}

// ProcessPayment records req as an uncategorised expense. Balance checks are
// the recorder's; an overdraft surfaces as *core.InsufficientFundsError.
func (s *PaymentService) ProcessPayment(ctx context.Context, ownerID string, req core.PaymentRequest) (core.PaymentResult, error) {
	desc := core.BuildPaymentDescription(req)

	t, err := s.recorder.CreateTransaction(ctx, ownerID, NewTransaction{
		Kind:        core.Expense,
		Amount:      req.Amount,
		Description: desc,
	})
	if err != nil {
		return core.PaymentResult{}, err
	}

	s.logger.InfoContext(ctx, "Payment processed", applog.NewFields().
		WithOwner(ownerID).
		WithTransaction(t.ID, t.Kind.String(), t.Amount.String()).
		WithOperation(applog.OpPay).ToSlice()...)

	return core.PaymentResult{
		ID:          t.ID,
		Amount:      t.Amount,
		Method:      req.Method,
		Recipient:   req.Recipient,
		Description: desc,
		Status:      core.PaymentStatusCompleted,
		CreatedAt:   t.CreatedAt,
	}, nil
}

// ListPayments re-derives payments from the owner's expenses, newest first.
func (s *PaymentService) ListPayments(ctx context.Context, ownerID string) ([]core.PaymentResult, error) {
	txs, err := s.recorder.ListTransactions(ctx, ownerID, core.TransactionFilter{Kind: core.Expense})
	if err != nil {
		return nil, err
	}

	out := make([]core.PaymentResult, len(txs))
	for i, t := range txs {
		out[i] = core.PaymentFromTransaction(t)
	}
	return out, nil
}
