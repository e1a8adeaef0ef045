package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"wallet/internal/core"
	applog "wallet/internal/log"
	"wallet/internal/storage"
)

// DashboardService builds period summaries from the ledger.
type DashboardService struct {
	store      storage.LedgerReader
	categories storage.CategoryResolver
	logger     *applog.Logger
	now        func() time.Time
}

func NewDashboardService(store storage.LedgerReader, categories storage.CategoryResolver, logger *applog.Logger) *DashboardService {
	if logger == nil {
		logger = applog.Nop()
	}
	return &DashboardService{
		store:      store,
		categories: categories,
		logger:     logger.WithComponent(applog.ComponentDashboard),
		now:        time.Now,
	}
}

// Summarize totals the owner's ledger over p. Unset bounds default to the
// month ending now. Balance is always the current one, not window-bound.
func (s *DashboardService) Summarize(ctx context.Context, ownerID string, p core.Period) (core.Summary, error) {
	if err := core.ValidateOwner(ownerID); err != nil {
		return core.Summary{}, err
	}
	p = p.WithDefaults(s.now())
	if err := p.Validate(); err != nil {
		return core.Summary{}, err
	}

	w, err := s.store.GetWallet(ctx, ownerID)
	if err != nil {
		return core.Summary{}, err
	}

	var (
		income, expense       core.Money
		incomeCat, expenseCat []core.CategoryTotal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		income, err = s.store.SumAmount(gctx, w.ID, core.Income, p)
		return err
	})
	g.Go(func() error {
		var err error
		expense, err = s.store.SumAmount(gctx, w.ID, core.Expense, p)
		return err
	})
	g.Go(func() error {
		var err error
		incomeCat, err = s.store.SumAmountByCategory(gctx, w.ID, core.Income, p)
		return err
	})
	g.Go(func() error {
		var err error
		expenseCat, err = s.store.SumAmountByCategory(gctx, w.ID, core.Expense, p)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Summary{}, fmt.Errorf("aggregate wallet %d: %w", w.ID, err)
	}

	return core.Summary{
		From:               p.From,
		To:                 p.To,
		TotalIncome:        income,
		TotalExpense:       expense,
		Balance:            w.Balance,
		IncomeByCategory:   s.describe(ctx, incomeCat),
		ExpensesByCategory: s.describe(ctx, expenseCat),
	}, nil
}

func (s *DashboardService) describe(ctx context.Context, totals []core.CategoryTotal) []core.CategorySummary {
	out := make([]core.CategorySummary, 0, len(totals))
	for _, t := range totals {
		c, err := resolveDisplay(ctx, s.categories, t.CategoryID)
		if err != nil && !errors.Is(err, core.ErrCategoryNotFound) {
			s.logger.WarnContext(ctx, "Category lookup failed, using fallback",
				applog.NewFields().WithCategory(t.CategoryID).WithError(err, "").ToSlice()...)
		}
		out = append(out, core.CategorySummary{
			CategoryID: t.CategoryID,
			Name:       c.Name,
			Color:      c.Color,
			Amount:     t.Amount,
		})
	}
	return out
}
