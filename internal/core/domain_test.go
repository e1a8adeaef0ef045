package core

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

func TestParseKind(t *testing.T) {
	cases := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"INCOME", Income, true},
		{"expense", Expense, true},
		{" Income ", Income, true},
		{"PAYMENT", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseKind(tc.in)
		if tc.ok {
			if err != nil || got != tc.want {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.want, got, err)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidKind) {
			t.Fatalf("%q expected ErrInvalidKind, got %v", tc.in, err)
		}
	}
}

func TestKindApply(t *testing.T) {
	bal := MustParseMoney("100.00")
	if got, err := Income.Apply(bal, MustParseMoney("0.01")); err != nil || got.Cents != 10001 {
		t.Fatalf("income: got %s (err=%v)", got, err)
	}
	if got, err := Expense.Apply(bal, MustParseMoney("100.01")); err != nil || got.Cents != -1 {
		t.Fatalf("expense: got %s (err=%v)", got, err)
	}

	full := Money{Cents: math.MaxInt64}
	if _, err := Income.Apply(full, Money{Cents: 1}); !errors.Is(err, ErrAmountOverflow) {
		t.Fatalf("income past int64: expected ErrAmountOverflow, got %v", err)
	}
	if _, err := Expense.Apply(Money{Cents: math.MinInt64}, Money{Cents: 1}); !errors.Is(err, ErrAmountOverflow) {
		t.Fatalf("expense past int64: expected ErrAmountOverflow, got %v", err)
	}
}

func TestValidateEntry(t *testing.T) {
	one := Money{Cents: 1}
	cases := []struct {
		kind Kind
		amt  Money
		desc string
		err  error
	}{
		{Income, one, "", nil},
		{Expense, one, strings.Repeat("é", MaxDescriptionLength), nil},
		{Expense, Money{}, "", ErrInvalidAmount},
		{Expense, Money{Cents: -1}, "", ErrInvalidAmount},
		{"REFUND", one, "", ErrInvalidKind},
		{Income, one, strings.Repeat("a", MaxDescriptionLength+1), ErrDescriptionTooLong},
	}
	for i, tc := range cases {
		err := ValidateEntry(tc.kind, tc.amt, tc.desc)
		if tc.err == nil {
			if err != nil {
				t.Fatalf("case %d expected ok, got %v", i, err)
			}
			continue
		}
		if !errors.Is(err, tc.err) {
			t.Fatalf("case %d expected %v, got %v", i, tc.err, err)
		}
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("case %d expected *ValidationError, got %T", i, err)
		}
	}
}

func TestPeriod(t *testing.T) {
	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	if err := (Period{From: feb, To: jan}).Validate(); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
	p := Period{From: jan, To: feb}
	if err := p.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if !p.Contains(jan) || !p.Contains(feb) {
		t.Fatalf("bounds must be inclusive")
	}
	if p.Contains(feb.Add(time.Nanosecond)) || p.Contains(jan.Add(-time.Nanosecond)) {
		t.Fatalf("outside timestamps matched")
	}
	if !(Period{}).Contains(jan) {
		t.Fatalf("empty period must be unbounded")
	}

	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	d := Period{}.WithDefaults(now)
	if !d.From.Equal(time.Date(2025, 2, 15, 12, 0, 0, 0, time.UTC)) || !d.To.Equal(now) {
		t.Fatalf("unexpected default period %v..%v", d.From, d.To)
	}
	half := Period{From: jan}.WithDefaults(now)
	if !half.From.Equal(jan) || !half.To.Equal(now) {
		t.Fatalf("explicit bound was overwritten")
	}
}

func TestTransactionFilterMatches(t *testing.T) {
	cat := int64(7)
	other := int64(8)
	tx := Transaction{Kind: Expense, CategoryID: &cat, CreatedAt: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)}

	cases := []struct {
		f  TransactionFilter
		ok bool
	}{
		{TransactionFilter{}, true},
		{TransactionFilter{Kind: Expense}, true},
		{TransactionFilter{Kind: Income}, false},
		{TransactionFilter{CategoryID: &cat}, true},
		{TransactionFilter{CategoryID: &other}, false},
		{TransactionFilter{From: time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC)}, false},
		{TransactionFilter{Kind: Expense, CategoryID: &cat, To: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)}, true},
	}
	for i, tc := range cases {
		if got := tc.f.Matches(tx); got != tc.ok {
			t.Fatalf("case %d expected %v, got %v", i, tc.ok, got)
		}
	}

	uncategorized := Transaction{Kind: Expense}
	if (TransactionFilter{CategoryID: &cat}).Matches(uncategorized) {
		t.Fatalf("category filter matched a transaction without category")
	}
}

func TestErrorCode(t *testing.T) {
	cases := []struct {
		err  error
		code string
	}{
		{ErrWalletNotFound, CodeWalletNotFound},
		{&ValidationError{Field: "amount", Err: ErrInvalidAmount}, CodeInvalidAmount},
		{&InsufficientFundsError{Current: MustParseMoney("100"), Requested: MustParseMoney("100.01")}, CodeInsufficientFunds},
		{ErrWalletExists, CodeWalletExists},
		{errors.New("disk on fire"), CodeInternal},
	}
	for _, tc := range cases {
		if got := ErrorCode(tc.err); got != tc.code {
			t.Fatalf("%v: expected %s, got %s", tc.err, tc.code, got)
		}
	}
}

func TestInsufficientFundsMessage(t *testing.T) {
	err := &InsufficientFundsError{Current: MustParseMoney("100.00"), Requested: MustParseMoney("100.01")}
	want := "insufficient funds: current balance 100.00, attempted 100.01"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected errors.Is ErrInsufficientFunds")
	}
	if err.Shortfall().Cents != 1 {
		t.Fatalf("expected shortfall 0.01, got %s", err.Shortfall())
	}
}

func TestParseTimeBound(t *testing.T) {
	day := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name     string
		in       string
		endOfDay bool
		want     time.Time
		wantErr  bool
	}{
		{"empty is unbounded", "", false, time.Time{}, false},
		{"date start", "2025-03-09", false, day, false},
		{"date end", "2025-03-09", true, day.Add(24*time.Hour - time.Nanosecond), false},
		{"rfc3339 kept as is", "2025-03-09T10:00:00+02:00", true, time.Date(2025, 3, 9, 8, 0, 0, 0, time.UTC), false},
		{"garbage", "yesterday", false, time.Time{}, true},
		{"bad month", "2025-13-01", false, time.Time{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseTimeBound("to", tc.in, tc.endOfDay)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidPeriod) {
					t.Fatalf("expected ErrInvalidPeriod, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}
