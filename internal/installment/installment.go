// Package installment splits credit-card expenses into monthly installments.
//
// An expense paid with the credit card and an installment count greater than
// one is read as a total spread over consecutive months starting at the
// expense date. Every other expense belongs to the single month of its date.
// Malformed input never fails: it degrades to the single-month reading.
package installment

import (
	"strconv"
	"strings"
	"time"

	"fazenda/internal/core"

	"github.com/shopspring/decimal"
)

// MaxInstallments bounds the installment count. A larger count is treated
// like any other malformed count: the expense falls back to its single month.
const MaxInstallments = 360

// Contribution is the share of an expense that falls into one month.
// Year and Month are zero when the expense has no usable date.
type Contribution struct {
	Year   int
	Month  int
	Day    int
	Amount core.Money
}

// Count returns the installment count of e and whether e is an installment
// expense at all. The count must parse strictly as an integer above one and
// the expense must carry a date. Counts above MaxInstallments are rejected.
func Count(e core.Expense) (int, bool) {
	if e.PaymentMethod != core.PaymentMethodCreditCard || e.Date.IsZero() {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(e.Installments))
	if err != nil || n <= 1 || n > MaxInstallments {
		return 0, false
	}
	return n, true
}

// IsInstallment reports whether e is split across months.
func IsInstallment(e core.Expense) bool {
	_, ok := Count(e)
	return ok
}

// InstallmentAmount divides total evenly into n parts rounded to the centavo.
// The remainder is not redistributed, so n*part may differ from total by up
// to n/2 centavos.
func InstallmentAmount(total core.Money, n int) core.Money {
	if n <= 1 {
		return total
	}
	part := decimal.NewFromInt(total.Cents).Div(decimal.NewFromInt(int64(n))).Round(0)
	return core.Money{Cents: part.IntPart()}
}

// MonthlyContributions returns one contribution per installment of e, or a
// single contribution with the full amount for a plain expense.
func MonthlyContributions(e core.Expense) []Contribution {
	if e.Date.IsZero() {
		return []Contribution{{Amount: e.Amount}}
	}
	n, ok := Count(e)
	if !ok {
		y, m, d := e.Date.Date()
		return []Contribution{{Year: y, Month: int(m), Day: d, Amount: e.Amount}}
	}

	part := InstallmentAmount(e.Amount, n)
	out := make([]Contribution, 0, n)
	for i := 0; i < n; i++ {
		y, m, d := shift(e.Date, i)
		out = append(out, Contribution{Year: y, Month: m, Day: d, Amount: part})
	}
	return out
}

// MonthlySums totals the contributions of expenses falling in year, one row
// per month that received any contribution, latest month first.
func MonthlySums(expenses []core.Expense, year int) []core.MonthTotal {
	var (
		totals [13]int64
		seen   [13]bool
	)
	for _, e := range expenses {
		for _, c := range MonthlyContributions(e) {
			if c.Year != year || c.Month < 1 || c.Month > 12 {
				continue
			}
			totals[c.Month] += c.Amount.Cents
			seen[c.Month] = true
		}
	}

	var out []core.MonthTotal
	for m := 12; m >= 1; m-- {
		if seen[m] {
			out = append(out, core.MonthTotal{Year: year, Month: m, Total: core.Money{Cents: totals[m]}})
		}
	}
	return out
}

// ExpensesForMonth returns the expenses that count against year/month.
// Plain expenses dated in the month are returned as they are, with any
// installment position cleared. Installment expenses active in the month are
// returned as a copy carrying the installment amount, the installment date
// and its "x of n" position. A source id is materialized at most once; the
// first occurrence wins.
func ExpensesForMonth(expenses []core.Expense, year, month int) []core.Expense {
	var out []core.Expense
	seen := make(map[string]bool)
	for _, e := range expenses {
		if e.ID != "" && seen[e.ID] {
			continue
		}

		var (
			row core.Expense
			hit bool
		)
		if n, ok := Count(e); ok {
			diff := (year-e.Date.Year())*12 + (month - int(e.Date.Month()))
			if diff >= 0 && diff < n {
				row = e
				row.Amount = InstallmentAmount(e.Amount, n)
				row.Date = installmentDate(e.Date, diff)
				row.InstallmentIndex = diff + 1
				row.InstallmentTotal = n
				hit = true
			}
		} else if !e.Date.IsZero() && e.Date.Year() == year && int(e.Date.Month()) == month {
			row = e
			row.InstallmentIndex = 0
			row.InstallmentTotal = 0
			hit = true
		}

		if !hit {
			continue
		}
		if e.ID != "" {
			seen[e.ID] = true
		}
		out = append(out, row)
	}
	return out
}

// shift moves t forward by i months, clamping the day to the target month.
func shift(t time.Time, i int) (year, month, day int) {
	base := int(t.Month()) - 1 + i
	year = t.Year() + base/12
	month = base%12 + 1
	day = min(t.Day(), core.LastDayOfMonth(year, month))
	return year, month, day
}

func installmentDate(t time.Time, i int) time.Time {
	y, m, d := shift(t, i)
	return time.Date(y, time.Month(m), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
