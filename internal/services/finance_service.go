// Package services provides business logic and orchestration services.
package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"fazenda/internal/cache"
	"fazenda/internal/core"
	"fazenda/internal/installment"
	"fazenda/internal/log"
	"fazenda/internal/store"
)

// UncategorizedLabel groups expenses without a category in the overview.
const UncategorizedLabel = "Sem categoria"

var ErrInvalidPeriod = errors.New("invalid period")

// FinanceStore is what the finance views read from.
type FinanceStore interface {
	store.ExpenseStore
	store.IncomeStore
	store.PaymentStore
}

// FinanceService answers the monthly finance questions over the expense
// collection. Derived views are cached until the next expense write.
// Expense writes must go through the service for the cache to see them.
type FinanceService struct {
	store  FinanceStore
	sums   *cache.LRUCache[[]core.MonthTotal]
	months *cache.LRUCache[[]core.Expense]
	logger *log.Logger

	// gen counts invalidations; a view computed under an older generation
	// is returned but not cached.
	mu  sync.Mutex
	gen uint64
}

func NewFinanceService(s FinanceStore, cacheSize int, cacheTTL time.Duration, logger *log.Logger) *FinanceService {
	if logger == nil {
		logger = log.Discard()
	}
	return &FinanceService{
		store:  s,
		sums:   cache.NewLRUCache[[]core.MonthTotal](cacheSize, cacheTTL),
		months: cache.NewLRUCache[[]core.Expense](cacheSize, cacheTTL),
		logger: logger.WithComponent(log.ComponentFinance),
	}
}

// RegisterCaches hands the service caches to m for periodic cleanup.
func (s *FinanceService) RegisterCaches(m *cache.Manager) {
	m.Register(s.sums)
	m.Register(s.months)
}

func (s *FinanceService) invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.sums.Purge()
	s.months.Purge()
}

func (s *FinanceService) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// setIfCurrent runs set only when no write happened since gen was read.
func (s *FinanceService) setIfCurrent(gen uint64, set func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return false
	}
	set()
	return true
}

func (s *FinanceService) AddExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	saved, err := s.store.AddExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	s.invalidate()
	s.logger.InfoContext(ctx, "expense added", log.NewFields().
		WithOperation(log.OpCreate).
		WithEntity("expense", saved.ID).
		WithAmount(saved.Amount.Cents).
		ToSlice()...)
	return saved, nil
}

func (s *FinanceService) DeleteExpense(ctx context.Context, id string) error {
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	s.invalidate()
	return nil
}

// MonthlySums returns the month totals of year, latest month first.
func (s *FinanceService) MonthlySums(ctx context.Context, year int) ([]core.MonthTotal, error) {
	if year < 1 {
		return nil, fmt.Errorf("%w: year %d", ErrInvalidPeriod, year)
	}
	key := strconv.Itoa(year)
	if rows, ok := s.sums.Get(key); ok {
		s.logger.DebugContext(ctx, "monthly sums from cache", log.FieldYear, year, log.FieldCacheHit, true)
		return slices.Clone(rows), nil
	}

	gen := s.generation()
	expenses, err := s.store.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	rows := installment.MonthlySums(expenses, year)
	cached := s.setIfCurrent(gen, func() { s.sums.Set(key, rows) })
	s.logger.DebugContext(ctx, "monthly sums computed", log.FieldYear, year, log.FieldCount, len(rows), log.FieldCacheHit, false, "cached", cached)
	return slices.Clone(rows), nil
}

// ExpensesForMonth returns the expenses counted against year/month with
// installments materialized.
func (s *FinanceService) ExpensesForMonth(ctx context.Context, year, month int) ([]core.Expense, error) {
	if err := checkPeriod(year, month); err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%04d-%02d", year, month)
	if rows, ok := s.months.Get(key); ok {
		return slices.Clone(rows), nil
	}

	gen := s.generation()
	expenses, err := s.store.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	rows := installment.ExpensesForMonth(expenses, year, month)
	s.setIfCurrent(gen, func() { s.months.Set(key, rows) })
	s.logger.DebugContext(ctx, "month expenses computed", log.NewFields().
		WithPeriod(year, month).
		WithOperation(log.OpList).
		ToSlice()...)
	return slices.Clone(rows), nil
}

// MonthOverview totals one month: expenses by category from the
// materialized month view, income from incomes and payments dated in it.
func (s *FinanceService) MonthOverview(ctx context.Context, year, month int) (core.MonthOverview, error) {
	expenses, err := s.ExpensesForMonth(ctx, year, month)
	if err != nil {
		return core.MonthOverview{}, err
	}
	incomes, err := s.store.ListIncomes(ctx)
	if err != nil {
		return core.MonthOverview{}, fmt.Errorf("list incomes: %w", err)
	}
	payments, err := s.store.ListPayments(ctx)
	if err != nil {
		return core.MonthOverview{}, fmt.Errorf("list payments: %w", err)
	}

	ov := core.MonthOverview{Year: year, Month: month, Expenses: expenses}
	byCategory := map[string]int64{}
	for _, e := range expenses {
		ov.ExpenseTotal = ov.ExpenseTotal.Add(e.Amount)
		if !e.IsPaid {
			ov.PendingAmount = ov.PendingAmount.Add(e.Amount)
		}
		name := e.Category
		if name == "" {
			name = UncategorizedLabel
		}
		byCategory[name] += e.Amount.Cents
	}
	for name, cents := range byCategory {
		ov.ByCategory = append(ov.ByCategory, core.CategoryAmount{Name: name, Amount: core.Money{Cents: cents}})
	}
	slices.SortFunc(ov.ByCategory, func(a, b core.CategoryAmount) int {
		if c := cmp.Compare(b.Amount.Cents, a.Amount.Cents); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})

	for _, in := range incomes {
		if inMonth(in.Date, year, month) {
			ov.IncomeTotal = ov.IncomeTotal.Add(in.Amount)
		}
	}
	for _, p := range payments {
		if inMonth(p.Date, year, month) {
			ov.IncomeTotal = ov.IncomeTotal.Add(p.Amount)
		}
	}
	ov.Balance = ov.IncomeTotal.Sub(ov.ExpenseTotal)
	return ov, nil
}

func checkPeriod(year, month int) error {
	if year < 1 || month < 1 || month > 12 {
		return fmt.Errorf("%w: %d-%02d", ErrInvalidPeriod, year, month)
	}
	return nil
}

func inMonth(t time.Time, year, month int) bool {
	return !t.IsZero() && t.Year() == year && int(t.Month()) == month
}
