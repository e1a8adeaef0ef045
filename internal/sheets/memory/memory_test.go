package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"wallet/internal/core"
	"wallet/internal/sheets"
)

func row(id int64) sheets.Row {
	return sheets.NewRow("alice", core.Transaction{
		ID:          id,
		WalletID:    1,
		Kind:        core.Expense,
		Amount:      core.Money{Cents: 1234},
		Description: "groceries",
		CreatedAt:   time.Date(2025, 2, 3, 9, 30, 0, 0, time.UTC),
	}, "Food")
}

func TestExporterAppendsAndDedupes(t *testing.T) {
	e := New()
	ctx := context.Background()

	ref, err := e.Export(ctx, row(10))
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected export: ref=%q err=%v", ref, err)
	}
	ref, err = e.Export(ctx, row(11))
	if err != nil || ref != "mem:2" {
		t.Fatalf("unexpected export: ref=%q err=%v", ref, err)
	}

	ref, err = e.Export(ctx, row(10))
	if err != nil || ref != "mem:1" {
		t.Fatalf("redelivery should reuse the row: ref=%q err=%v", ref, err)
	}
	if got := len(e.Rows()); got != 2 {
		t.Fatalf("rows = %d, want 2", got)
	}
}

func TestExporterRejectsInvalidRows(t *testing.T) {
	e := New()
	ctx := context.Background()

	if _, err := e.Export(ctx, sheets.Row{}); !errors.Is(err, sheets.ErrEmptyRow) {
		t.Fatalf("expected ErrEmptyRow, got %v", err)
	}

	bad := row(1)
	bad.Amount = core.Money{}
	if _, err := e.Export(ctx, bad); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := e.Export(cancelled, row(2)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(e.Rows()) != 0 {
		t.Fatalf("nothing should have been exported")
	}
}

func TestRowValues(t *testing.T) {
	got := row(7).Values()
	want := []any{"2025-02-03 09:30:00", "EXPENSE", "12.34", "groceries", "Food", "alice", int64(7)}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("column %d = %v, want %v", i, got[i], want[i])
		}
	}
}
