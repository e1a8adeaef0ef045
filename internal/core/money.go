// Package core provides money parsing and handling utilities.
//
// This file contains the fixed-point Money type used for every ledger
// computation. Amounts are held as integer cents; decimal strings are only
// produced or consumed at the edges.
package core

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxAmount is the largest amount, in whole units, a single entry may carry.
// Balances and totals still go through the checked arithmetic below.
const MaxAmount = 1_000_000_000_000

// Money is an amount in cents. The zero value is a valid zero amount.
type Money struct {
	Cents int64
}

// Zero is the canonical zero amount.
var Zero = Money{}

// NewMoney builds an amount from whole units and cents, e.g. NewMoney(100, 1) is 100.01.
func NewMoney(units, cents int64) Money {
	return Money{Cents: units*100 + cents}
}

// ParseMoney converts a decimal string to Money with half-up rounding on the
// third decimal place.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Negative
// values, exponents and malformed input are rejected with ErrInvalidAmount.
// Zero parses successfully; positivity is enforced where amounts are recorded.
//
// Examples:
//
//	ParseMoney("12.34")  -> 12.34
//	ParseMoney("12,34")  -> 12.34
//	ParseMoney("12.345") -> 12.35 (rounds up)
//	ParseMoney("12.344") -> 12.34
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") || strings.ContainsAny(s, "eE") {
		return Money{}, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	if d.GreaterThan(decimal.NewFromInt(MaxAmount)) {
		return Money{}, ErrInvalidAmount
	}

	return Money{Cents: d.Round(2).Shift(2).IntPart()}, nil
}

// MustParseMoney is ParseMoney for literals known to be valid. It panics otherwise.
func MustParseMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic("core: invalid money literal " + s)
	}
	return m
}

// MoneyFromDecimal rounds d half-up to the cent.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Round(2).Shift(2).IntPart()}
}

// Decimal returns the amount as a scale-2 decimal.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String renders the amount with exactly two decimals ("100.00").
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }

func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

// CheckedAdd is Add that fails with ErrAmountOverflow instead of wrapping.
func (m Money) CheckedAdd(o Money) (Money, error) {
	if (o.Cents > 0 && m.Cents > math.MaxInt64-o.Cents) ||
		(o.Cents < 0 && m.Cents < math.MinInt64-o.Cents) {
		return Money{}, ErrAmountOverflow
	}
	return Money{Cents: m.Cents + o.Cents}, nil
}

// CheckedSub is Sub that fails with ErrAmountOverflow instead of wrapping.
func (m Money) CheckedSub(o Money) (Money, error) {
	if o.Cents == math.MinInt64 {
		return Money{}, ErrAmountOverflow
	}
	return m.CheckedAdd(Money{Cents: -o.Cents})
}

// Cmp returns -1, 0 or +1.
func (m Money) Cmp(o Money) int {
	switch {
	case m.Cents < o.Cents:
		return -1
	case m.Cents > o.Cents:
		return 1
	default:
		return 0
	}
}

func (m Money) LessThan(o Money) bool { return m.Cents < o.Cents }

func (m Money) Equal(o Money) bool { return m.Cents == o.Cents }

func (m Money) GreaterOrEqual(o Money) bool { return m.Cents >= o.Cents }

func (m Money) IsZero() bool { return m.Cents == 0 }

func (m Money) IsNegative() bool { return m.Cents < 0 }

// Validate reports whether the amount can be recorded on a transaction.
func (m Money) Validate() error {
	if m.Cents <= 0 || m.Cents > MaxAmount*100 {
		return ErrInvalidAmount
	}
	return nil
}

// MarshalJSON encodes the amount as a decimal string to keep precision on the wire.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts a decimal string or a bare JSON number.
func (m *Money) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		*m = Money{}
		return nil
	}
	parsed, err := ParseMoney(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
