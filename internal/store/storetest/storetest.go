// Package storetest checks that a store.Backend behaves like the in-memory
// collections: newest first, no-op deletes, cascading comment deletes and
// saturating task moves.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"fazenda/internal/core"
	"fazenda/internal/store"
)

// Run exercises every collection of the backend returned by newBackend.
// newBackend is called once per subtest and must return an empty backend
// whose taxonomy is seeded with the store defaults.
func Run(t *testing.T, newBackend func(t *testing.T) store.Backend) {
	t.Helper()
	t.Run("expenses", func(t *testing.T) { testExpenses(t, newBackend(t)) })
	t.Run("incomes and payments", func(t *testing.T) { testIncomesPayments(t, newBackend(t)) })
	t.Run("tasks", func(t *testing.T) { testTasks(t, newBackend(t)) })
	t.Run("events and documents", func(t *testing.T) { testEventsDocuments(t, newBackend(t)) })
	t.Run("comments", func(t *testing.T) { testComments(t, newBackend(t)) })
	t.Run("taxonomy", func(t *testing.T) { testTaxonomy(t, newBackend(t)) })
}

var when = time.Date(2025, time.March, 31, 14, 30, 0, 0, time.UTC)

func testExpenses(t *testing.T, b store.Backend) {
	ctx := context.Background()

	first, err := b.AddExpense(ctx, core.Expense{
		Title:         "Trator",
		Amount:        core.Money{Cents: 1200000},
		Date:          when,
		Category:      "Maquinário",
		PaymentMethod: core.PaymentMethodCreditCard,
		Installments:  "12",
		User:          core.UserRef{ID: "u1", Name: "Kim"},
	})
	if err != nil {
		t.Fatalf("AddExpense() error = %v", err)
	}
	if first.ID == "" {
		t.Fatalf("expected generated id")
	}
	if _, err := b.AddExpense(ctx, core.Expense{ID: "fixed", Title: "Ração", Amount: core.Money{Cents: 4550}, Date: when, IsPaid: true}); err != nil {
		t.Fatalf("AddExpense() error = %v", err)
	}
	if _, err := b.AddExpense(ctx, core.Expense{Title: "", Amount: core.Money{Cents: 1}}); !errors.Is(err, core.ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}

	list, err := b.ListExpenses(ctx)
	if err != nil {
		t.Fatalf("ListExpenses() error = %v", err)
	}
	if len(list) != 2 || list[0].ID != "fixed" || list[1].ID != first.ID {
		t.Fatalf("expected newest first, got %+v", list)
	}
	got := list[1]
	if got.Installments != "12" || got.PaymentMethod != core.PaymentMethodCreditCard || got.User.Name != "Kim" {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if !got.Date.Equal(when) || got.Amount.Cents != 1200000 {
		t.Errorf("round trip date/amount = %v / %d", got.Date, got.Amount.Cents)
	}
	if !list[0].IsPaid {
		t.Errorf("IsPaid lost")
	}

	if err := b.DeleteExpense(ctx, "missing"); err != nil {
		t.Fatalf("DeleteExpense(missing) error = %v", err)
	}
	if err := b.DeleteExpense(ctx, "fixed"); err != nil {
		t.Fatalf("DeleteExpense() error = %v", err)
	}
	list, _ = b.ListExpenses(ctx)
	if len(list) != 1 || list[0].ID != first.ID {
		t.Fatalf("after delete: %+v", list)
	}
}

func testIncomesPayments(t *testing.T, b store.Backend) {
	ctx := context.Background()

	in, err := b.AddIncome(ctx, core.Income{Title: "Venda de gado", Amount: core.Money{Cents: 500000}, Date: when, PaidMembers: []string{"Dery", "Kim"}})
	if err != nil {
		t.Fatalf("AddIncome() error = %v", err)
	}
	incomes, _ := b.ListIncomes(ctx)
	if len(incomes) != 1 || len(incomes[0].PaidMembers) != 2 || incomes[0].PaidMembers[1] != "Kim" {
		t.Fatalf("ListIncomes() = %+v", incomes)
	}
	if err := b.DeleteIncome(ctx, in.ID); err != nil {
		t.Fatalf("DeleteIncome() error = %v", err)
	}
	if incomes, _ = b.ListIncomes(ctx); len(incomes) != 0 {
		t.Fatalf("expected no incomes, got %+v", incomes)
	}

	p, err := b.AddPayment(ctx, core.Payment{Category: "Mensalidade", Amount: core.Money{Cents: 30000}, Date: when, User: &core.UserRef{ID: "u2", Name: "Sílvia"}})
	if err != nil {
		t.Fatalf("AddPayment() error = %v", err)
	}
	if _, err := b.AddPayment(ctx, core.Payment{Category: "Mensalidade", Amount: core.Money{Cents: 30000}}); !errors.Is(err, core.ErrPaidMembersEmpty) {
		t.Fatalf("expected ErrPaidMembersEmpty, got %v", err)
	}
	payments, _ := b.ListPayments(ctx)
	if len(payments) != 1 || payments[0].User == nil || payments[0].User.Name != "Sílvia" {
		t.Fatalf("ListPayments() = %+v", payments)
	}
	if err := b.DeletePayment(ctx, p.ID); err != nil {
		t.Fatalf("DeletePayment() error = %v", err)
	}
}

func testTasks(t *testing.T, b store.Backend) {
	ctx := context.Background()

	due := time.Date(2025, time.April, 2, 0, 0, 0, 0, time.UTC)
	task, err := b.AddTask(ctx, core.Task{
		Title:     "Consertar cerca",
		Status:    core.StatusTodo,
		Priority:  core.PriorityMedium,
		DueDate:   &due,
		CreatedAt: when,
		CreatedBy: &core.UserRef{ID: "u1", Name: "Kim"},
	})
	if err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}

	moves := []struct {
		right bool
		want  core.TaskStatus
	}{
		{false, core.StatusTodo},
		{true, core.StatusInProgress},
		{true, core.StatusDone},
		{true, core.StatusDone},
		{false, core.StatusInProgress},
	}
	for i, m := range moves {
		var got core.Task
		if m.right {
			got, err = b.MoveTaskRight(ctx, task.ID)
		} else {
			got, err = b.MoveTaskLeft(ctx, task.ID)
		}
		if err != nil {
			t.Fatalf("move %d error = %v", i, err)
		}
		if got.Status != m.want {
			t.Fatalf("move %d status = %s, want %s", i, got.Status, m.want)
		}
	}

	title := "Consertar cerca norte"
	edited, err := b.EditTask(ctx, task.ID, store.TaskPatch{Title: &title, Assignee: &core.UserRef{ID: "u3", Name: "Rodrigo"}})
	if err != nil {
		t.Fatalf("EditTask() error = %v", err)
	}
	if edited.Title != title || edited.Status != core.StatusInProgress || edited.Assignee == nil || edited.Assignee.Name != "Rodrigo" {
		t.Errorf("EditTask() = %+v", edited)
	}

	tasks, _ := b.ListTasks(ctx)
	if len(tasks) != 1 || tasks[0].Title != title || tasks[0].DueDate == nil || !tasks[0].DueDate.Equal(due) {
		t.Fatalf("ListTasks() = %+v", tasks)
	}
	if tasks[0].CreatedBy == nil || tasks[0].CreatedBy.Name != "Kim" {
		t.Errorf("CreatedBy lost: %+v", tasks[0].CreatedBy)
	}

	if _, err := b.EditTask(ctx, "missing", store.TaskPatch{}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("EditTask(missing) error = %v", err)
	}
	if _, err := b.MoveTaskRight(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("MoveTaskRight(missing) error = %v", err)
	}
	if err := b.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}
	if tasks, _ = b.ListTasks(ctx); len(tasks) != 0 {
		t.Fatalf("expected no tasks, got %+v", tasks)
	}
}

func testEventsDocuments(t *testing.T, b store.Backend) {
	ctx := context.Background()

	ev, err := b.AddEvent(ctx, core.Event{Title: "Vacinação", Date: core.NewDate(2025, 5, 10)})
	if err != nil {
		t.Fatalf("AddEvent() error = %v", err)
	}
	events, _ := b.ListEvents(ctx)
	if len(events) != 1 || events[0].Date.String() != "2025-05-10" {
		t.Fatalf("ListEvents() = %+v", events)
	}
	if err := b.DeleteEvent(ctx, ev.ID); err != nil {
		t.Fatalf("DeleteEvent() error = %v", err)
	}

	doc, err := b.AddDocument(ctx, core.Document{
		Title:     "Escritura",
		Category:  core.DocumentDeed,
		FileURL:   "file:///docs/escritura.pdf",
		FileType:  "application/pdf",
		FileSize:  2048,
		CreatedAt: when,
		Uploader:  core.UserRef{ID: "u1", Name: "Kim"},
	})
	if err != nil {
		t.Fatalf("AddDocument() error = %v", err)
	}
	docs, _ := b.ListDocuments(ctx)
	if len(docs) != 1 || docs[0].Category != core.DocumentDeed || docs[0].FileSize != 2048 || docs[0].Uploader.Name != "Kim" {
		t.Fatalf("ListDocuments() = %+v", docs)
	}
	if err := b.DeleteDocument(ctx, doc.ID); err != nil {
		t.Fatalf("DeleteDocument() error = %v", err)
	}
}

func testComments(t *testing.T, b store.Backend) {
	ctx := context.Background()

	root, err := b.AddComment(ctx, core.Comment{Content: "Chegou o adubo?", CreatedAt: when, User: core.UserRef{Name: "Dery"}})
	if err != nil {
		t.Fatalf("AddComment() error = %v", err)
	}
	other, _ := b.AddComment(ctx, core.Comment{Content: "Outro assunto", CreatedAt: when})
	for _, c := range []string{"Sim", "Ontem"} {
		if _, err := b.AddComment(ctx, core.Comment{Content: c, ParentID: root.ID, CreatedAt: when}); err != nil {
			t.Fatalf("AddComment(reply) error = %v", err)
		}
	}
	if _, err := b.AddComment(ctx, core.Comment{Attachments: []string{"foto.jpg"}, ParentID: other.ID, CreatedAt: when}); err != nil {
		t.Fatalf("AddComment(attachment) error = %v", err)
	}

	comments, _ := b.ListComments(ctx)
	if len(comments) != 5 {
		t.Fatalf("expected 5 comments, got %d", len(comments))
	}
	if comments[0].ParentID != other.ID || len(comments[0].Attachments) != 1 {
		t.Errorf("newest comment = %+v", comments[0])
	}

	if err := b.DeleteComment(ctx, root.ID); err != nil {
		t.Fatalf("DeleteComment() error = %v", err)
	}
	comments, _ = b.ListComments(ctx)
	if len(comments) != 2 {
		t.Fatalf("expected replies removed with parent, got %+v", comments)
	}
	for _, c := range comments {
		if c.ID == root.ID || c.ParentID == root.ID {
			t.Errorf("comment %s survived delete", c.ID)
		}
	}
}

func testTaxonomy(t *testing.T, b store.Backend) {
	ctx := context.Background()

	cats, err := b.ListCategories(ctx)
	if err != nil || len(cats) != len(store.DefaultCategories) {
		t.Fatalf("ListCategories() = %v, %v", cats, err)
	}
	if err := b.AddCategory(ctx, " Gado "); err != nil {
		t.Fatalf("AddCategory() error = %v", err)
	}
	if err := b.AddCategory(ctx, "Gado"); err != nil {
		t.Fatalf("AddCategory(dup) error = %v", err)
	}
	if err := b.AddCategory(ctx, "  "); !errors.Is(err, core.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	cats, _ = b.ListCategories(ctx)
	if len(cats) != len(store.DefaultCategories)+1 || cats[len(cats)-1] != "Gado" {
		t.Fatalf("after add: %v", cats)
	}
	if err := b.DeleteCategory(ctx, "Outros"); err != nil {
		t.Fatalf("DeleteCategory() error = %v", err)
	}
	cats, _ = b.ListCategories(ctx)
	for _, c := range cats {
		if c == "Outros" {
			t.Fatalf("category not deleted: %v", cats)
		}
	}

	if err := b.AddMember(ctx, "Maria"); err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}
	if err := b.DeleteMember(ctx, "Kim"); err != nil {
		t.Fatalf("DeleteMember() error = %v", err)
	}
	members, _ := b.ListMembers(ctx)
	if len(members) != len(store.DefaultMembers) || members[len(members)-1] != "Maria" {
		t.Fatalf("ListMembers() = %v", members)
	}
}
