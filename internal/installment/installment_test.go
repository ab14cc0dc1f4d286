package installment

import (
	"strconv"
	"testing"
	"time"

	"fazenda/internal/core"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 30, 0, 0, time.UTC)
}

func card(id string, cents int64, date time.Time, n string) core.Expense {
	return core.Expense{
		ID:            id,
		Title:         "Trator",
		Amount:        core.Money{Cents: cents},
		Date:          date,
		PaymentMethod: core.PaymentMethodCreditCard,
		Installments:  n,
	}
}

func TestCount(t *testing.T) {
	date := day(2025, time.January, 15)
	tests := []struct {
		name   string
		method string
		n      string
		date   time.Time
		want   int
		wantOK bool
	}{
		{"credit card three", core.PaymentMethodCreditCard, "3", date, 3, true},
		{"padded count", core.PaymentMethodCreditCard, " 12 ", date, 12, true},
		{"single installment", core.PaymentMethodCreditCard, "1", date, 0, false},
		{"zero", core.PaymentMethodCreditCard, "0", date, 0, false},
		{"negative", core.PaymentMethodCreditCard, "-2", date, 0, false},
		{"not a number", core.PaymentMethodCreditCard, "três", date, 0, false},
		{"fractional", core.PaymentMethodCreditCard, "3.0", date, 0, false},
		{"empty", core.PaymentMethodCreditCard, "", date, 0, false},
		{"cash", core.PaymentMethodCash, "3", date, 0, false},
		{"no method", "", "3", date, 0, false},
		{"no date", core.PaymentMethodCreditCard, "3", time.Time{}, 0, false},
		{"at the bound", core.PaymentMethodCreditCard, strconv.Itoa(MaxInstallments), date, MaxInstallments, true},
		{"above the bound", core.PaymentMethodCreditCard, strconv.Itoa(MaxInstallments + 1), date, 0, false},
		{"huge", core.PaymentMethodCreditCard, "9000000000000000000", date, 0, false},
		{"overflow", core.PaymentMethodCreditCard, "99999999999999999999", date, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := core.Expense{PaymentMethod: tt.method, Installments: tt.n, Date: tt.date}
			got, ok := Count(e)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Count() = %d, %v, want %d, %v", got, ok, tt.want, tt.wantOK)
			}
			if IsInstallment(e) != tt.wantOK {
				t.Errorf("IsInstallment() = %v, want %v", !tt.wantOK, tt.wantOK)
			}
		})
	}
}

func TestInstallmentAmount(t *testing.T) {
	tests := []struct {
		total int64
		n     int
		want  int64
	}{
		{120000, 3, 40000},
		{10000, 3, 3333},
		{20000, 3, 6667},
		{5, 2, 3}, // 2.5 centavos rounds away from zero
		{100, 1, 100},
		{100, 0, 100},
	}
	for _, tt := range tests {
		got := InstallmentAmount(core.Money{Cents: tt.total}, tt.n)
		if got.Cents != tt.want {
			t.Errorf("InstallmentAmount(%d, %d) = %d, want %d", tt.total, tt.n, got.Cents, tt.want)
		}
	}
}

func TestMonthlyContributions_Installments(t *testing.T) {
	got := MonthlyContributions(card("e1", 120000, day(2025, time.January, 15), "3"))
	want := []Contribution{
		{2025, 1, 15, core.Money{Cents: 40000}},
		{2025, 2, 15, core.Money{Cents: 40000}},
		{2025, 3, 15, core.Money{Cents: 40000}},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d contributions, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("contribution %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestMonthlyContributions_ClampsDay(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		n     string
		days  []int
	}{
		{"31st over short february", day(2025, time.January, 31), "3", []int{31, 28, 31}},
		{"31st over leap february", day(2024, time.January, 31), "2", []int{31, 29}},
		{"31st over april", day(2025, time.March, 31), "3", []int{31, 30, 31}},
		{"28th stays on the 28th", day(2025, time.February, 28), "2", []int{28, 28}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MonthlyContributions(card("e", 30000, tt.start, tt.n))
			if len(got) != len(tt.days) {
				t.Fatalf("got %d contributions, want %d", len(got), len(tt.days))
			}
			for i, d := range tt.days {
				if got[i].Day != d {
					t.Errorf("installment %d day = %d, want %d", i+1, got[i].Day, d)
				}
			}
		})
	}
}

func TestMonthlyContributions_WrapsYear(t *testing.T) {
	got := MonthlyContributions(card("e", 40000, day(2025, time.November, 5), "4"))
	want := [][2]int{{2025, 11}, {2025, 12}, {2026, 1}, {2026, 2}}
	for i, ym := range want {
		if got[i].Year != ym[0] || got[i].Month != ym[1] {
			t.Errorf("installment %d = %d-%02d, want %d-%02d", i+1, got[i].Year, got[i].Month, ym[0], ym[1])
		}
	}

	long := MonthlyContributions(card("e", 240000, day(2025, time.June, 1), "24"))
	last := long[len(long)-1]
	if last.Year != 2027 || last.Month != 5 {
		t.Errorf("last installment = %d-%02d, want 2027-05", last.Year, last.Month)
	}
}

func TestMonthlyContributions_RoundingDrift(t *testing.T) {
	for _, n := range []int{2, 3, 6, 7, 11, 12} {
		e := card("e", 10001, day(2025, time.March, 10), strconv.Itoa(n))
		got := MonthlyContributions(e)
		if len(got) != n {
			t.Fatalf("n=%d: got %d contributions", n, len(got))
		}
		var sum int64
		for _, c := range got {
			sum += c.Amount.Cents
		}
		diff := sum - e.Amount.Cents
		if diff < 0 {
			diff = -diff
		}
		// each part is off by at most half a centavo
		if 2*diff > int64(n) {
			t.Errorf("n=%d: sum %d drifts %d from %d", n, sum, diff, e.Amount.Cents)
		}
	}
}

func TestMonthlyContributions_Plain(t *testing.T) {
	tests := []struct {
		name string
		e    core.Expense
	}{
		{"cash", core.Expense{Amount: core.Money{Cents: 5000}, Date: day(2025, time.May, 3), PaymentMethod: core.PaymentMethodCash, Installments: "3"}},
		{"bad count", card("e", 5000, day(2025, time.May, 3), "x")},
		{"one installment", card("e", 5000, day(2025, time.May, 3), "1")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MonthlyContributions(tt.e)
			want := Contribution{Year: 2025, Month: 5, Day: 3, Amount: core.Money{Cents: 5000}}
			if len(got) != 1 || got[0] != want {
				t.Errorf("MonthlyContributions() = %+v, want [%+v]", got, want)
			}
		})
	}
}

func TestMonthlyContributions_NoDate(t *testing.T) {
	got := MonthlyContributions(card("e", 9000, time.Time{}, "3"))
	if len(got) != 1 {
		t.Fatalf("got %d contributions, want 1", len(got))
	}
	if got[0].Year != 0 || got[0].Month != 0 || got[0].Amount.Cents != 9000 {
		t.Errorf("got %+v", got[0])
	}
}

func TestMonthlySums(t *testing.T) {
	expenses := []core.Expense{
		card("tractor", 120000, day(2025, time.November, 15), "3"),
		{ID: "feed", Amount: core.Money{Cents: 2500}, Date: day(2025, time.November, 2)},
		{ID: "fuel", Amount: core.Money{Cents: 1000}, Date: day(2025, time.March, 20)},
		{ID: "old", Amount: core.Money{Cents: 7000}, Date: day(2024, time.December, 20)},
		{ID: "undated", Amount: core.Money{Cents: 7000}},
	}

	got := MonthlySums(expenses, 2025)
	want := []core.MonthTotal{
		{Year: 2025, Month: 12, Total: core.Money{Cents: 40000}},
		{Year: 2025, Month: 11, Total: core.Money{Cents: 42500}},
		{Year: 2025, Month: 3, Total: core.Money{Cents: 1000}},
	}
	if len(got) != len(want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	next := MonthlySums(expenses, 2026)
	if len(next) != 1 || next[0].Month != 1 || next[0].Total.Cents != 40000 {
		t.Errorf("2026 sums = %+v", next)
	}

	if got := MonthlySums(nil, 2025); len(got) != 0 {
		t.Errorf("expected no rows for empty input, got %+v", got)
	}
}

func TestMonthlySums_OversizedCountIsPlain(t *testing.T) {
	expenses := []core.Expense{
		card("huge", 5000, day(2025, time.April, 9), "9000000000000000000"),
		card("big", 3000, day(2025, time.April, 10), "100000000"),
	}

	got := MonthlySums(expenses, 2025)
	if len(got) != 1 || got[0].Month != 4 || got[0].Total.Cents != 8000 {
		t.Errorf("MonthlySums() = %+v, want April with the full 8000", got)
	}

	rows := ExpensesForMonth(expenses, 2025, 4)
	if len(rows) != 2 || rows[0].InstallmentTotal != 0 || rows[0].Amount.Cents != 5000 {
		t.Errorf("ExpensesForMonth() = %+v", rows)
	}
	if c := MonthlyContributions(expenses[0]); len(c) != 1 {
		t.Errorf("MonthlyContributions() = %d contributions, want 1", len(c))
	}
}

func TestMonthlySums_StrictlyDescending(t *testing.T) {
	var expenses []core.Expense
	for m := time.January; m <= time.December; m++ {
		expenses = append(expenses, card("e"+strconv.Itoa(int(m)), 30000, day(2025, m, 31), "5"))
	}
	got := MonthlySums(expenses, 2025)
	if len(got) != 12 {
		t.Fatalf("got %d rows, want 12", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Month >= got[i-1].Month {
			t.Fatalf("rows not strictly descending at %d: %d after %d", i, got[i].Month, got[i-1].Month)
		}
	}
}

func TestExpensesForMonth(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	tractor := card("tractor", 30000, time.Date(2025, time.January, 31, 14, 5, 0, 0, loc), "3")
	plain := core.Expense{
		ID:               "feed",
		Amount:           core.Money{Cents: 2500},
		Date:             day(2025, time.February, 10),
		InstallmentIndex: 2,
		InstallmentTotal: 4,
	}
	other := core.Expense{ID: "fuel", Amount: core.Money{Cents: 1000}, Date: day(2025, time.March, 1)}

	got := ExpensesForMonth([]core.Expense{tractor, plain, other}, 2025, 2)
	if len(got) != 2 {
		t.Fatalf("got %d expenses, want 2", len(got))
	}

	m := got[0]
	if m.ID != "tractor" || m.Amount.Cents != 10000 {
		t.Errorf("materialized = %+v", m)
	}
	if m.InstallmentIndex != 2 || m.InstallmentTotal != 3 {
		t.Errorf("position = %d of %d, want 2 of 3", m.InstallmentIndex, m.InstallmentTotal)
	}
	wantDate := time.Date(2025, time.February, 28, 14, 5, 0, 0, loc)
	if !m.Date.Equal(wantDate) || m.Date.Location() != loc {
		t.Errorf("date = %v, want %v", m.Date, wantDate)
	}

	p := got[1]
	if p.ID != "feed" || p.InstallmentIndex != 0 || p.InstallmentTotal != 0 || p.Amount.Cents != 2500 {
		t.Errorf("plain = %+v", p)
	}

	// source records are untouched
	if tractor.Amount.Cents != 30000 || plain.InstallmentIndex != 2 {
		t.Errorf("inputs were mutated")
	}
}

func TestExpensesForMonth_OutsideSeries(t *testing.T) {
	tractor := card("tractor", 30000, day(2025, time.January, 31), "3")
	for _, ym := range [][2]int{{2024, 12}, {2025, 4}, {2026, 1}} {
		if got := ExpensesForMonth([]core.Expense{tractor}, ym[0], ym[1]); len(got) != 0 {
			t.Errorf("%d-%02d: got %+v, want none", ym[0], ym[1], got)
		}
	}
}

func TestExpensesForMonth_AtMostOncePerID(t *testing.T) {
	a := card("dup", 30000, day(2025, time.January, 10), "3")
	b := card("dup", 90000, day(2025, time.February, 10), "2")
	got := ExpensesForMonth([]core.Expense{a, b, a}, 2025, 2)
	if len(got) != 1 {
		t.Fatalf("got %d, want 1", len(got))
	}
	if got[0].Amount.Cents != 10000 {
		t.Errorf("first occurrence should win, got amount %d", got[0].Amount.Cents)
	}
}

func TestExpensesForMonth_ExactlyNMonths(t *testing.T) {
	e := card("e", 100000, day(2025, time.October, 31), "7")
	hits := 0
	for y := 2024; y <= 2027; y++ {
		for m := 1; m <= 12; m++ {
			hits += len(ExpensesForMonth([]core.Expense{e}, y, m))
		}
	}
	if hits != 7 {
		t.Errorf("installment expense appeared in %d months, want 7", hits)
	}
}
