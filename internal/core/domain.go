package core

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	Income  Kind = "INCOME"
	Expense Kind = "EXPENSE"
)

// MaxDescriptionLength bounds transaction descriptions, counted in characters.
const MaxDescriptionLength = 500

type (
	// Kind tells whether a transaction adds to or subtracts from the balance.
	Kind string

	Wallet struct {
		ID        int64
		OwnerID   string
		Balance   Money
		Version   int64 // bumped on every persisted balance change
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	Transaction struct {
		ID          int64
		WalletID    int64
		Kind        Kind
		Amount      Money
		Description string
		CategoryID  *int64 // may point to a deleted category
		CreatedAt   time.Time
	}

	Category struct {
		ID      int64
		Name    string
		Color   string
		Kind    Kind
		OwnerID *string // nil for global categories
	}

	// TransactionFilter narrows a ledger query. Zero fields are unbounded.
	TransactionFilter struct {
		Kind       Kind
		CategoryID *int64
		From       time.Time
		To         time.Time
	}

	// Period is an inclusive time window.
	Period struct {
		From time.Time
		To   time.Time
	}
)

// ParseKind accepts INCOME or EXPENSE in any letter case.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToUpper(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", &ValidationError{Field: "kind", Value: s, Err: ErrInvalidKind}
	}
	return k, nil
}

func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

func (k Kind) String() string {
	return string(k)
}

// Apply returns balance moved by amount in the direction of k. It fails with
// ErrAmountOverflow when the result does not fit.
func (k Kind) Apply(balance, amount Money) (Money, error) {
	if k == Expense {
		return balance.CheckedSub(amount)
	}
	return balance.CheckedAdd(amount)
}

// ValidateDescription enforces the description length bound.
func ValidateDescription(desc string) error {
	if n := utf8.RuneCountInString(desc); n > MaxDescriptionLength {
		return &ValidationError{Field: "description", Err: ErrDescriptionTooLong}
	}
	return nil
}

// ValidateEntry checks a transaction's shape before anything touches the store.
func ValidateEntry(kind Kind, amount Money, desc string) error {
	if err := amount.Validate(); err != nil {
		return &ValidationError{Field: "amount", Value: amount.String(), Err: err}
	}
	if !kind.Valid() {
		return &ValidationError{Field: "kind", Value: string(kind), Err: ErrInvalidKind}
	}
	return ValidateDescription(desc)
}

// Validate rejects filters with an inverted window or an unknown kind.
func (f TransactionFilter) Validate() error {
	if f.Kind != "" && !f.Kind.Valid() {
		return &ValidationError{Field: "kind", Value: string(f.Kind), Err: ErrInvalidKind}
	}
	return Period{From: f.From, To: f.To}.Validate()
}

// Matches reports whether t passes every set field of the filter.
func (f TransactionFilter) Matches(t Transaction) bool {
	if f.Kind != "" && t.Kind != f.Kind {
		return false
	}
	if f.CategoryID != nil && (t.CategoryID == nil || *t.CategoryID != *f.CategoryID) {
		return false
	}
	return Period{From: f.From, To: f.To}.Contains(t.CreatedAt)
}

func (p Period) Validate() error {
	if !p.From.IsZero() && !p.To.IsZero() && p.From.After(p.To) {
		return &ValidationError{Field: "period", Value: p.From.Format(time.RFC3339) + ".." + p.To.Format(time.RFC3339), Err: ErrInvalidPeriod}
	}
	return nil
}

// Contains reports whether ts falls inside the window, bounds included.
func (p Period) Contains(ts time.Time) bool {
	if !p.From.IsZero() && ts.Before(p.From) {
		return false
	}
	if !p.To.IsZero() && ts.After(p.To) {
		return false
	}
	return true
}

// DefaultPeriod is the month leading up to now.
func DefaultPeriod(now time.Time) Period {
	return Period{From: now.AddDate(0, -1, 0), To: now}
}

// WithDefaults fills unset bounds from the default reporting window.
func (p Period) WithDefaults(now time.Time) Period {
	def := DefaultPeriod(now)
	if p.From.IsZero() {
		p.From = def.From
	}
	if p.To.IsZero() {
		p.To = def.To
	}
	return p
}

// ParseTimeBound accepts RFC 3339 or YYYY-MM-DD. A date-only value resolves
// to the start of that day, or its last nanosecond when endOfDay is set.
// An empty value is the zero time (unbounded).
func ParseTimeBound(field, value string, endOfDay bool) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	d, err := time.ParseInLocation("2006-01-02", value, time.UTC)
	if err != nil {
		return time.Time{}, &ValidationError{Field: field, Value: value, Err: ErrInvalidPeriod}
	}
	if endOfDay {
		d = d.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return d, nil
}

// ValidateOwner rejects a blank owner id.
func ValidateOwner(ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return &ValidationError{Field: "owner_id", Err: ErrInvalidOwner}
	}
	return nil
}
