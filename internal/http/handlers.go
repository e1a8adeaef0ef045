package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"wallet/internal/core"
	applog "wallet/internal/log"
	"wallet/internal/services"
)

type walletResponse struct {
	ID        int64      `json:"id"`
	OwnerID   string     `json:"owner_id"`
	Balance   core.Money `json:"balance"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func newWalletResponse(w core.Wallet) walletResponse {
	return walletResponse{
		ID:        w.ID,
		OwnerID:   w.OwnerID,
		Balance:   w.Balance,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

type transactionResponse struct {
	ID          int64      `json:"id"`
	WalletID    int64      `json:"wallet_id"`
	Kind        core.Kind  `json:"kind"`
	Amount      core.Money `json:"amount"`
	Description string     `json:"description"`
	CategoryID  *int64     `json:"category_id"`
	CreatedAt   time.Time  `json:"created_at"`
}

func newTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		WalletID:    t.WalletID,
		Kind:        t.Kind,
		Amount:      t.Amount,
		Description: t.Description,
		CategoryID:  t.CategoryID,
		CreatedAt:   t.CreatedAt,
	}
}

type categoryResponse struct {
	ID     int64     `json:"id"`
	Name   string    `json:"name"`
	Color  string    `json:"color"`
	Kind   core.Kind `json:"kind"`
	Global bool      `json:"global"`
}

type createTransactionRequest struct {
	Kind        string     `json:"kind"`
	Amount      core.Money `json:"amount"`
	Description string     `json:"description"`
	CategoryID  *int64     `json:"category_id"`
}

type paymentRequest struct {
	Amount      core.Money `json:"amount"`
	Method      string     `json:"method"`
	Recipient   string     `json:"recipient"`
	Description string     `json:"description"`
}

// fail writes err as a JSON error and logs server-side failures.
func fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	resp := ErrorResponse(err)
	if resp.statusCode >= http.StatusInternalServerError {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			applog.NewFields().WithOperation(op).WithError(err, core.ErrorCode(err)).ToSlice()...)
	}
	resp.Write(w)
}

// withOwner resolves the caller identity before running fn.
func withOwner(w http.ResponseWriter, r *http.Request, op string, fn func(ctx context.Context, ownerID string)) {
	owner, err := OwnerID(r)
	if err != nil {
		fail(w, r, op, err)
		return
	}
	fn(r.Context(), owner)
}

func (s *Server) handleOpenWallet(w http.ResponseWriter, r *http.Request) {
	withOwner(w, r, applog.OpOpenWallet, func(ctx context.Context, owner string) {
		wallet, err := s.ledger.Wallets.OpenWallet(ctx, owner)
		if err != nil {
			fail(w, r, applog.OpOpenWallet, err)
			return
		}
		NewJSONResponse().Status(http.StatusCreated).Body(newWalletResponse(wallet)).Write(w)
	})
}

func (s *Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	withOwner(w, r, applog.OpRead, func(ctx context.Context, owner string) {
		wallet, err := s.ledger.Wallets.GetBalance(ctx, owner)
		if err != nil {
			fail(w, r, applog.OpRead, err)
			return
		}
		NewJSONResponse().Body(newWalletResponse(wallet)).Write(w)
	})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	withOwner(w, r, applog.OpRecord, func(ctx context.Context, owner string) {
		var req createTransactionRequest
		if err := DecodeJSON(r, &req); err != nil {
			if core.IsValidation(err) {
				fail(w, r, applog.OpRecord, err)
				return
			}
			BadRequestError(err.Error()).Write(w)
			return
		}

		kind, err := core.ParseKind(req.Kind)
		if err != nil {
			fail(w, r, applog.OpRecord, err)
			return
		}

		t, err := s.ledger.Transactions.CreateTransaction(ctx, owner, services.NewTransaction{
			Kind:        kind,
			Amount:      req.Amount,
			Description: req.Description,
			CategoryID:  req.CategoryID,
		})
		if err != nil {
			fail(w, r, applog.OpRecord, err)
			return
		}

		NewJSONResponse().
			Status(http.StatusCreated).
			Header("Location", "/transactions/"+strconv.FormatInt(t.ID, 10)).
			Body(newTransactionResponse(t)).
			Write(w)
	})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	withOwner(w, r, applog.OpList, func(ctx context.Context, owner string) {
		filter, err := ParseTransactionFilter(r.URL.Query())
		if err != nil {
			fail(w, r, applog.OpList, err)
			return
		}

		txs, err := s.ledger.Transactions.ListTransactions(ctx, owner, filter)
		if err != nil {
			fail(w, r, applog.OpList, err)
			return
		}

		out := make([]transactionResponse, len(txs))
		for i, t := range txs {
			out[i] = newTransactionResponse(t)
		}
		NewJSONResponse().Body(map[string]any{"transactions": out}).Write(w)
	})
}

// handleGetTransaction only returns transactions on the caller's own wallet.
func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	withOwner(w, r, applog.OpRead, func(ctx context.Context, owner string) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil || id <= 0 {
			fail(w, r, applog.OpRead, core.ErrTransactionNotFound)
			return
		}

		wallet, err := s.ledger.Wallets.GetBalance(ctx, owner)
		if err != nil {
			fail(w, r, applog.OpRead, err)
			return
		}
		t, err := s.ledger.Transactions.GetTransaction(ctx, id)
		if err != nil {
			fail(w, r, applog.OpRead, err)
			return
		}
		if t.WalletID != wallet.ID {
			fail(w, r, applog.OpRead, core.ErrTransactionNotFound)
			return
		}
		NewJSONResponse().Body(newTransactionResponse(t)).Write(w)
	})
}

func (s *Server) handleProcessPayment(w http.ResponseWriter, r *http.Request) {
	withOwner(w, r, applog.OpPay, func(ctx context.Context, owner string) {
		var req paymentRequest
		if err := DecodeJSON(r, &req); err != nil {
			if core.IsValidation(err) {
				fail(w, r, applog.OpPay, err)
				return
			}
			BadRequestError(err.Error()).Write(w)
			return
		}

		res, err := s.ledger.Payments.ProcessPayment(ctx, owner, core.PaymentRequest{
			Amount:      req.Amount,
			Method:      core.PaymentMethod(req.Method),
			Recipient:   req.Recipient,
			Description: req.Description,
		})
		if err != nil {
			fail(w, r, applog.OpPay, err)
			return
		}
		NewJSONResponse().Status(http.StatusCreated).Body(res).Write(w)
	})
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	withOwner(w, r, applog.OpList, func(ctx context.Context, owner string) {
		payments, err := s.ledger.Payments.ListPayments(ctx, owner)
		if err != nil {
			fail(w, r, applog.OpList, err)
			return
		}
		NewJSONResponse().Body(map[string]any{"payments": payments}).Write(w)
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	withOwner(w, r, applog.OpSummarize, func(ctx context.Context, owner string) {
		period, err := ParsePeriod(r.URL.Query())
		if err != nil {
			fail(w, r, applog.OpSummarize, err)
			return
		}

		summary, err := s.ledger.Dashboard.Summarize(ctx, owner, period)
		if err != nil {
			fail(w, r, applog.OpSummarize, err)
			return
		}
		NewJSONResponse().Body(summary).Write(w)
	})
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	withOwner(w, r, applog.OpList, func(ctx context.Context, owner string) {
		var kind core.Kind
		if v := r.URL.Query().Get("kind"); v != "" {
			k, err := core.ParseKind(v)
			if err != nil {
				fail(w, r, applog.OpList, err)
				return
			}
			kind = k
		}

		cats, err := s.ledger.Categories.ListCategories(ctx, owner, kind)
		if err != nil {
			fail(w, r, applog.OpList, err)
			return
		}

		out := make([]categoryResponse, len(cats))
		for i, c := range cats {
			out[i] = categoryResponse{ID: c.ID, Name: c.Name, Color: c.Color, Kind: c.Kind, Global: c.OwnerID == nil}
		}
		NewJSONResponse().Body(map[string]any{"categories": out}).Write(w)
	})
}
