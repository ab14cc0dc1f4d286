package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fazenda/internal/config"
	"fazenda/internal/core"
)

const seedJSON = `{
  "expenses": [
    {"id": "e1", "title": "Cerca", "amount": 300.00, "date": "2025-01-31T10:00:00Z",
     "paymentMethod": "Cartão de Crédito", "installments": "3", "category": "Infraestrutura"}
  ],
  "tasks": [
    {"id": "t1", "title": "Podar", "status": "TODO", "priority": "LOW", "createdAt": "2025-01-02T08:00:00Z"}
  ]
}`

func testConfig(t *testing.T, backend, dsn string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "seed.json"), []byte(seedJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	return &config.Config{
		DataBackend:          backend,
		DataDir:              dir,
		SQLiteDSN:            dsn,
		FeedLimit:            5,
		Timezone:             "UTC",
		CacheSize:            4,
		CacheTTL:             time.Minute,
		CacheCleanupInterval: time.Hour,
		LogLevel:             "info",
		LogFormat:            "text",
	}
}

func TestNew_SeedsMemoryBackend(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testConfig(t, "memory", ""), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close()

	rows, err := a.Finance.MonthlySums(ctx, 2025)
	if err != nil {
		t.Fatalf("MonthlySums() error = %v", err)
	}
	if len(rows) != 3 || rows[0].Month != 3 || rows[0].Total.Cents != 10000 {
		t.Errorf("MonthlySums() = %+v", rows)
	}

	sum, err := a.Dashboard.TaskSummary(ctx)
	if err != nil {
		t.Fatalf("TaskSummary() error = %v", err)
	}
	if sum.Todo != 1 {
		t.Errorf("TaskSummary() = %+v", sum)
	}

	cats, err := a.Store.ListCategories(ctx)
	if err != nil || len(cats) == 0 {
		t.Errorf("ListCategories() = %v, %v", cats, err)
	}
}

func TestStoreExpenseWritesRefreshFinance(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testConfig(t, "memory", ""), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close()

	if _, err := a.Finance.MonthlySums(ctx, 2025); err != nil {
		t.Fatalf("MonthlySums() error = %v", err)
	}
	saved, err := a.Store.AddExpense(ctx, core.Expense{Title: "Ração", Amount: core.Money{Cents: 500}, Date: time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("AddExpense() error = %v", err)
	}
	rows, _ := a.Finance.MonthlySums(ctx, 2025)
	if len(rows) == 0 || rows[0].Month != 3 || rows[0].Total.Cents != 10500 {
		t.Errorf("MonthlySums() after store write = %+v", rows)
	}

	if err := a.Store.DeleteExpense(ctx, saved.ID); err != nil {
		t.Fatalf("DeleteExpense() error = %v", err)
	}
	rows, _ = a.Finance.MonthlySums(ctx, 2025)
	if len(rows) == 0 || rows[0].Total.Cents != 10000 {
		t.Errorf("MonthlySums() after store delete = %+v", rows)
	}
}

func TestNew_SeedsSQLiteOnce(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, "sqlite", filepath.Join(t.TempDir(), "fazenda.db"))

	for run := 0; run < 2; run++ {
		a, err := New(ctx, cfg, nil)
		if err != nil {
			t.Fatalf("run %d: New() error = %v", run, err)
		}
		expenses, err := a.Store.ListExpenses(ctx)
		if err != nil {
			t.Fatalf("run %d: ListExpenses() error = %v", run, err)
		}
		if len(expenses) != 1 {
			t.Errorf("run %d: got %d expenses, want 1", run, len(expenses))
		}
		if err := a.Close(); err != nil {
			t.Fatalf("run %d: Close() error = %v", run, err)
		}
	}
}

func TestNew_InvalidBackend(t *testing.T) {
	if _, err := New(context.Background(), testConfig(t, "sheets", ""), nil); err == nil {
		t.Fatal("expected an error for an unknown backend")
	}
}
