package storage

import (
	"context"
	"database/sql"
)

const getWalletByOwner = `-- name: GetWalletByOwner :one
SELECT id, owner_id, balance_cents, version, created_at, updated_at
FROM wallets
WHERE owner_id = ?
`

func (q *Queries) GetWalletByOwner(ctx context.Context, ownerID string) (Wallet, error) {
	row := q.db.QueryRowContext(ctx, getWalletByOwner, ownerID)
	var i Wallet
	err := row.Scan(&i.ID, &i.OwnerID, &i.BalanceCents, &i.Version, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const getWalletByIDQuery = `-- name: GetWalletByID :one
SELECT id, owner_id, balance_cents, version, created_at, updated_at
FROM wallets
WHERE id = ?
`

func (q *Queries) GetWalletByID(ctx context.Context, id int64) (Wallet, error) {
	row := q.db.QueryRowContext(ctx, getWalletByIDQuery, id)
	var i Wallet
	err := row.Scan(&i.ID, &i.OwnerID, &i.BalanceCents, &i.Version, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const createWallet = `-- name: CreateWallet :one
INSERT INTO wallets (owner_id, balance_cents, version, created_at, updated_at)
VALUES (?, ?, 0, ?, ?)
RETURNING id, owner_id, balance_cents, version, created_at, updated_at
`

type CreateWalletParams struct {
	OwnerID      string
	BalanceCents int64
	CreatedAt    int64
}

func (q *Queries) CreateWallet(ctx context.Context, arg CreateWalletParams) (Wallet, error) {
	row := q.db.QueryRowContext(ctx, createWallet, arg.OwnerID, arg.BalanceCents, arg.CreatedAt, arg.CreatedAt)
	var i Wallet
	err := row.Scan(&i.ID, &i.OwnerID, &i.BalanceCents, &i.Version, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const updateWalletBalance = `-- name: UpdateWalletBalance :one
UPDATE wallets
SET balance_cents = ?, version = version + 1, updated_at = ?
WHERE id = ? AND version = ?
RETURNING id, owner_id, balance_cents, version, created_at, updated_at
`

type UpdateWalletBalanceParams struct {
	BalanceCents int64
	UpdatedAt    int64
	ID           int64
	Version      int64
}

func (q *Queries) UpdateWalletBalance(ctx context.Context, arg UpdateWalletBalanceParams) (Wallet, error) {
	row := q.db.QueryRowContext(ctx, updateWalletBalance, arg.BalanceCents, arg.UpdatedAt, arg.ID, arg.Version)
	var i Wallet
	err := row.Scan(&i.ID, &i.OwnerID, &i.BalanceCents, &i.Version, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const createTransaction = `-- name: CreateTransaction :one
INSERT INTO transactions (wallet_id, kind, amount_cents, description, category_id, created_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id, wallet_id, kind, amount_cents, description, category_id, created_at
`

type CreateTransactionParams struct {
	WalletID    int64
	Kind        string
	AmountCents int64
	Description string
	CategoryID  sql.NullInt64
	CreatedAt   int64
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, createTransaction,
		arg.WalletID, arg.Kind, arg.AmountCents, arg.Description, arg.CategoryID, arg.CreatedAt)
	var i Transaction
	err := row.Scan(&i.ID, &i.WalletID, &i.Kind, &i.AmountCents, &i.Description, &i.CategoryID, &i.CreatedAt)
	return i, err
}

const getTransaction = `-- name: GetTransaction :one
SELECT id, wallet_id, kind, amount_cents, description, category_id, created_at
FROM transactions
WHERE id = ?
`

func (q *Queries) GetTransaction(ctx context.Context, id int64) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, getTransaction, id)
	var i Transaction
	err := row.Scan(&i.ID, &i.WalletID, &i.Kind, &i.AmountCents, &i.Description, &i.CategoryID, &i.CreatedAt)
	return i, err
}

// Each optional filter is passed twice: once for the IS NULL test, once for the comparison.
const listTransactions = `-- name: ListTransactions :many
SELECT id, wallet_id, kind, amount_cents, description, category_id, created_at
FROM transactions
WHERE wallet_id = ?
  AND (? IS NULL OR kind = ?)
  AND (? IS NULL OR category_id = ?)
  AND (? IS NULL OR created_at >= ?)
  AND (? IS NULL OR created_at <= ?)
ORDER BY created_at DESC, id DESC
`

type ListTransactionsParams struct {
	WalletID   int64
	Kind       sql.NullString
	CategoryID sql.NullInt64
	From       sql.NullInt64
	To         sql.NullInt64
}

func (q *Queries) ListTransactions(ctx context.Context, arg ListTransactionsParams) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions,
		arg.WalletID,
		arg.Kind, arg.Kind,
		arg.CategoryID, arg.CategoryID,
		arg.From, arg.From,
		arg.To, arg.To,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		var i Transaction
		if err := rows.Scan(&i.ID, &i.WalletID, &i.Kind, &i.AmountCents, &i.Description, &i.CategoryID, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const sumAmount = `-- name: SumAmount :one
SELECT CAST(COALESCE(SUM(amount_cents), 0) AS INTEGER)
FROM transactions
WHERE wallet_id = ? AND kind = ?
  AND (? IS NULL OR created_at >= ?)
  AND (? IS NULL OR created_at <= ?)
`

type SumAmountParams struct {
	WalletID int64
	Kind     string
	From     sql.NullInt64
	To       sql.NullInt64
}

func (q *Queries) SumAmount(ctx context.Context, arg SumAmountParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, sumAmount, arg.WalletID, arg.Kind, arg.From, arg.From, arg.To, arg.To)
	var total int64
	err := row.Scan(&total)
	return total, err
}

const sumAmountByCategory = `-- name: SumAmountByCategory :many
SELECT category_id, CAST(SUM(amount_cents) AS INTEGER) AS total_amount
FROM transactions
WHERE wallet_id = ? AND kind = ?
  AND (? IS NULL OR created_at >= ?)
  AND (? IS NULL OR created_at <= ?)
GROUP BY category_id
ORDER BY total_amount DESC
`

func (q *Queries) SumAmountByCategory(ctx context.Context, arg SumAmountParams) ([]CategorySum, error) {
	rows, err := q.db.QueryContext(ctx, sumAmountByCategory, arg.WalletID, arg.Kind, arg.From, arg.From, arg.To, arg.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CategorySum
	for rows.Next() {
		var i CategorySum
		if err := rows.Scan(&i.CategoryID, &i.TotalAmount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getCategory = `-- name: GetCategory :one
SELECT id, name, color, kind, owner_id
FROM categories
WHERE id = ?
`

func (q *Queries) GetCategory(ctx context.Context, id int64) (Category, error) {
	row := q.db.QueryRowContext(ctx, getCategory, id)
	var i Category
	err := row.Scan(&i.ID, &i.Name, &i.Color, &i.Kind, &i.OwnerID)
	return i, err
}

const listCategories = `-- name: ListCategories :many
SELECT id, name, color, kind, owner_id
FROM categories
WHERE (owner_id IS NULL OR owner_id = ?)
  AND (? IS NULL OR kind = ?)
ORDER BY owner_id IS NOT NULL, name
`

type ListCategoriesParams struct {
	OwnerID string
	Kind    sql.NullString
}

func (q *Queries) ListCategories(ctx context.Context, arg ListCategoriesParams) ([]Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategories, arg.OwnerID, arg.Kind, arg.Kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Category
	for rows.Next() {
		var i Category
		if err := rows.Scan(&i.ID, &i.Name, &i.Color, &i.Kind, &i.OwnerID); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createCategory = `-- name: CreateCategory :one
INSERT INTO categories (name, color, kind, owner_id)
VALUES (?, ?, ?, ?)
RETURNING id, name, color, kind, owner_id
`

type CreateCategoryParams struct {
	Name    string
	Color   string
	Kind    string
	OwnerID sql.NullString
}

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error) {
	row := q.db.QueryRowContext(ctx, createCategory, arg.Name, arg.Color, arg.Kind, arg.OwnerID)
	var i Category
	err := row.Scan(&i.ID, &i.Name, &i.Color, &i.Kind, &i.OwnerID)
	return i, err
}

const deleteCategory = `-- name: DeleteCategory :execrows
DELETE FROM categories WHERE id = ?
`

func (q *Queries) DeleteCategory(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteCategory, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
