package seed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fazenda/internal/core"
	"fazenda/internal/store"
	"fazenda/internal/store/memory"
)

const sample = `{
  "expenses": [
    {"id": "new", "title": "Trator", "amount": 1200.00, "date": "2025-01-15T10:00:00Z",
     "paymentMethod": "Cartão de Crédito", "installments": "3", "user": {"id": "u1", "name": "Kim"}},
    {"id": "old", "title": "Ração", "amount": "45.5", "date": "2024-12-01"},
    {"id": "bad", "title": "", "amount": 10}
  ],
  "payments": [
    {"id": "p1", "category": "Mensalidade", "amount": 300, "date": "not a date", "user": {"id": "u2", "name": "Dery"}}
  ],
  "tasks": [
    {"id": "t1", "title": "Cerca", "status": "TODO", "priority": "HIGH", "dueDate": "2025-02-01"}
  ],
  "events": [{"id": "e1", "date": "2025-05-10", "title": "Vacinação"}],
  "comments": [
    {"id": "r1", "content": "Sim", "parentId": "c1", "createdAt": "2025-01-02T00:00:00Z"},
    {"id": "c1", "content": "Chegou?", "createdAt": "2025-01-01T00:00:00Z"}
  ]
}`

func TestDecode(t *testing.T) {
	d, err := Decode(strings.NewReader(sample), time.UTC)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(d.Expenses) != 3 {
		t.Fatalf("expected 3 expenses, got %d", len(d.Expenses))
	}
	e := d.Expenses[0]
	if e.Amount.Cents != 120000 || e.Installments != "3" || e.PaymentMethod != core.PaymentMethodCreditCard || e.User.Name != "Kim" {
		t.Errorf("expense = %+v", e)
	}
	if d.Expenses[1].Amount.Cents != 4550 || !d.Expenses[1].Date.Equal(time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("old expense = %+v", d.Expenses[1])
	}
	if !d.Payments[0].Date.IsZero() {
		t.Errorf("unparseable date should be zero, got %v", d.Payments[0].Date)
	}
	if d.Payments[0].User == nil || d.Payments[0].User.Name != "Dery" {
		t.Errorf("payment user = %+v", d.Payments[0].User)
	}
	if d.Tasks[0].DueDate == nil || d.Tasks[0].Assignee != nil {
		t.Errorf("task = %+v", d.Tasks[0])
	}
	if !d.Events[0].Date.Equal(core.NewDate(2025, 5, 10).Time) {
		t.Errorf("event date = %v", d.Events[0].Date)
	}
}

func TestDecodeRejectsBadAmount(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"expenses": [{"id": "x", "amount": "lots"}]}`), time.UTC)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	d, err := Load(t.TempDir(), time.UTC)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(d.Expenses)+len(d.Tasks)+len(d.Events) != 0 {
		t.Errorf("expected empty data, got %+v", d)
	}
}

func TestLoadAndApply(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(sample), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	d, err := Load(dir, time.UTC)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	ctx := context.Background()
	b := memory.New(store.DefaultCategories, store.DefaultMembers)
	res, err := Apply(ctx, b, d, nil)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if res.Applied != 7 || res.Skipped != 1 {
		t.Errorf("Apply() = %+v, want 7 applied and 1 skipped", res)
	}

	expenses, _ := b.ListExpenses(ctx)
	if len(expenses) != 2 || expenses[0].ID != "new" || expenses[1].ID != "old" {
		t.Errorf("expenses should keep file order, got %+v", expenses)
	}
	comments, _ := b.ListComments(ctx)
	if len(comments) != 2 || comments[0].ID != "r1" {
		t.Errorf("comments should keep file order, got %+v", comments)
	}
}

func TestApplyStopsOnCancelledContext(t *testing.T) {
	d, err := Decode(strings.NewReader(sample), time.UTC)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// the memory store ignores ctx, so only the rejected record notices it
	_, err = Apply(ctx, memory.New(nil, nil), d, nil)
	if err == nil {
		t.Fatal("expected context error")
	}
}
