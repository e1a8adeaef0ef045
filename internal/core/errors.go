package core

import (
	"errors"
	"fmt"
)

var (
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrWalletExists        = errors.New("wallet already exists")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidKind         = errors.New("invalid transaction kind")
	ErrDescriptionTooLong  = errors.New("description too long")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrInvalidPeriod       = errors.New("invalid period")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidOwner        = errors.New("invalid owner id")
	ErrInvalidCategory     = errors.New("invalid category")

	// ErrAmountOverflow is reported when a balance or total leaves the int64
	// cent range. It matches ErrInvalidAmount.
	ErrAmountOverflow = fmt.Errorf("%w: out of range", ErrInvalidAmount)
)

// Stable machine-readable error codes.
const (
	CodeWalletNotFound      = "WALLET_NOT_FOUND"
	CodeWalletExists        = "WALLET_EXISTS"
	CodeInvalidAmount       = "INVALID_AMOUNT"
	CodeInvalidKind         = "INVALID_KIND"
	CodeDescriptionTooLong  = "DESCRIPTION_TOO_LONG"
	CodeInsufficientFunds   = "INSUFFICIENT_FUNDS"
	CodeInvalidPeriod       = "INVALID_PERIOD"
	CodeTransactionNotFound = "TRANSACTION_NOT_FOUND"
	CodeInvalidOwner        = "INVALID_OWNER"
	CodeInvalidCategory     = "INVALID_CATEGORY"
	CodeInternal            = "INTERNAL"
)

// ValidationError reports a rejected input field. It unwraps to one of the
// sentinel errors above so callers can use errors.Is.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// InsufficientFundsError carries the balance seen when an expense was rejected.
type InsufficientFundsError struct {
	Current   Money
	Requested Money
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: current balance %s, attempted %s", e.Current, e.Requested)
}

func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// Shortfall is how much the wallet is missing to cover the request.
func (e *InsufficientFundsError) Shortfall() Money {
	return e.Requested.Sub(e.Current)
}

// ErrorCode maps err to its stable code. Unknown errors map to CodeInternal.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrWalletNotFound):
		return CodeWalletNotFound
	case errors.Is(err, ErrWalletExists):
		return CodeWalletExists
	case errors.Is(err, ErrInvalidAmount):
		return CodeInvalidAmount
	case errors.Is(err, ErrInvalidKind):
		return CodeInvalidKind
	case errors.Is(err, ErrDescriptionTooLong):
		return CodeDescriptionTooLong
	case errors.Is(err, ErrInsufficientFunds):
		return CodeInsufficientFunds
	case errors.Is(err, ErrInvalidPeriod):
		return CodeInvalidPeriod
	case errors.Is(err, ErrTransactionNotFound):
		return CodeTransactionNotFound
	case errors.Is(err, ErrInvalidOwner):
		return CodeInvalidOwner
	case errors.Is(err, ErrInvalidCategory):
		return CodeInvalidCategory
	default:
		return CodeInternal
	}
}

// IsValidation reports whether err is an input rejection detected before any store access.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidKind) ||
		errors.Is(err, ErrDescriptionTooLong) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInvalidOwner) ||
		errors.Is(err, ErrInvalidCategory)
}
