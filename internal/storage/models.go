package storage

import (
	"database/sql"
	"time"

	"wallet/internal/core"
)

type Wallet struct {
	ID           int64
	OwnerID      string
	BalanceCents int64
	Version      int64
	CreatedAt    int64
	UpdatedAt    int64
}

type Transaction struct {
	ID          int64
	WalletID    int64
	Kind        string
	AmountCents int64
	Description string
	CategoryID  sql.NullInt64
	CreatedAt   int64
}

type Category struct {
	ID      int64
	Name    string
	Color   string
	Kind    string
	OwnerID sql.NullString
}

type CategorySum struct {
	CategoryID  sql.NullInt64
	TotalAmount int64
}

func (w Wallet) toCore() core.Wallet {
	return core.Wallet{
		ID:        w.ID,
		OwnerID:   w.OwnerID,
		Balance:   core.Money{Cents: w.BalanceCents},
		Version:   w.Version,
		CreatedAt: fromUnixNano(w.CreatedAt),
		UpdatedAt: fromUnixNano(w.UpdatedAt),
	}
}

func (t Transaction) toCore() core.Transaction {
	return core.Transaction{
		ID:          t.ID,
		WalletID:    t.WalletID,
		Kind:        core.Kind(t.Kind),
		Amount:      core.Money{Cents: t.AmountCents},
		Description: t.Description,
		CategoryID:  int64Ptr(t.CategoryID),
		CreatedAt:   fromUnixNano(t.CreatedAt),
	}
}

func (c Category) toCore() core.Category {
	out := core.Category{
		ID:    c.ID,
		Name:  c.Name,
		Color: c.Color,
		Kind:  core.Kind(c.Kind),
	}
	if c.OwnerID.Valid {
		owner := c.OwnerID.String
		out.OwnerID = &owner
	}
	return out
}

func fromUnixNano(ns int64) time.Time {
	return time.Unix(0, ns).UTC()
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}
