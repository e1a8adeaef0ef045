package sheets

import (
	"context"
	"errors"
	"time"

	"wallet/internal/core"
)

var ErrEmptyRow = errors.New("export row has no transaction")

// Row is one exported ledger line, already resolved for display.
type Row struct {
	TransactionID int64
	WalletID      int64
	OwnerID       string
	Date          time.Time
	Kind          core.Kind
	Amount        core.Money
	Description   string
	Category      string
}

func NewRow(ownerID string, t core.Transaction, category string) Row {
	return Row{
		TransactionID: t.ID,
		WalletID:      t.WalletID,
		OwnerID:       ownerID,
		Date:          t.CreatedAt,
		Kind:          t.Kind,
		Amount:        t.Amount,
		Description:   t.Description,
		Category:      category,
	}
}

func (r Row) Validate() error {
	if r.TransactionID <= 0 {
		return ErrEmptyRow
	}
	if !r.Kind.Valid() {
		return core.ErrInvalidKind
	}
	return r.Amount.Validate()
}

// Values renders the row in sheet column order:
// Date, Kind, Amount, Description, Category, Owner, Transaction ID.
func (r Row) Values() []any {
	return []any{
		r.Date.UTC().Format("2006-01-02 15:04:05"),
		r.Kind.String(),
		r.Amount.String(),
		r.Description,
		r.Category,
		r.OwnerID,
		r.TransactionID,
	}
}

// Ports for outbound adapters.
type (
	TransactionExporter interface {
		Export(ctx context.Context, r Row) (rowRef string, err error)
	}
)
