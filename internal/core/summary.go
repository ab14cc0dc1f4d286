package core

// MonthTotal is the summed expense amount for one calendar month.
type MonthTotal struct {
	Year  int
	Month int
	Total Money
}

type CategoryAmount struct {
	Name   string
	Amount Money
}

// MonthOverview aggregates one month of the finance view.
type MonthOverview struct {
	Year          int
	Month         int
	ExpenseTotal  Money
	IncomeTotal   Money
	Balance       Money
	ByCategory    []CategoryAmount
	Expenses      []Expense
	PendingAmount Money // unpaid expenses of the month
}

// TaskSummary counts tasks per board column.
type TaskSummary struct {
	Todo       int
	InProgress int
	Done       int
}

func (s TaskSummary) Total() int {
	return s.Todo + s.InProgress + s.Done
}
