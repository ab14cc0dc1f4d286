// Package store defines the collections the application works on.
//
// Each collection keeps its records newest first: adding a record puts it at
// the head of the list. Deleting an unknown id is a no-op; editing or moving
// one returns ErrNotFound.
package store

import (
	"context"
	"errors"

	"fazenda/internal/core"
)

var ErrNotFound = errors.New("record not found")

// Ports for the per-domain collections.
type (
	ExpenseStore interface {
		// AddExpense validates e, assigns an id when empty and stores it.
		AddExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		DeleteExpense(ctx context.Context, id string) error
		ListExpenses(ctx context.Context) ([]core.Expense, error)
	}

	IncomeStore interface {
		AddIncome(ctx context.Context, in core.Income) (core.Income, error)
		DeleteIncome(ctx context.Context, id string) error
		ListIncomes(ctx context.Context) ([]core.Income, error)
	}

	PaymentStore interface {
		AddPayment(ctx context.Context, p core.Payment) (core.Payment, error)
		DeletePayment(ctx context.Context, id string) error
		ListPayments(ctx context.Context) ([]core.Payment, error)
	}

	TaskStore interface {
		AddTask(ctx context.Context, t core.Task) (core.Task, error)
		// EditTask merges patch over the stored task.
		EditTask(ctx context.Context, id string, patch TaskPatch) (core.Task, error)
		DeleteTask(ctx context.Context, id string) error
		// MoveTaskLeft and MoveTaskRight step the status one board column,
		// stopping at TODO and DONE.
		MoveTaskLeft(ctx context.Context, id string) (core.Task, error)
		MoveTaskRight(ctx context.Context, id string) (core.Task, error)
		ListTasks(ctx context.Context) ([]core.Task, error)
	}

	EventStore interface {
		AddEvent(ctx context.Context, e core.Event) (core.Event, error)
		DeleteEvent(ctx context.Context, id string) error
		ListEvents(ctx context.Context) ([]core.Event, error)
	}

	DocumentStore interface {
		AddDocument(ctx context.Context, d core.Document) (core.Document, error)
		DeleteDocument(ctx context.Context, id string) error
		ListDocuments(ctx context.Context) ([]core.Document, error)
	}

	CommentStore interface {
		AddComment(ctx context.Context, c core.Comment) (core.Comment, error)
		// DeleteComment removes the comment and its direct replies.
		DeleteComment(ctx context.Context, id string) error
		ListComments(ctx context.Context) ([]core.Comment, error)
	}

	TaxonomyStore interface {
		ListCategories(ctx context.Context) ([]string, error)
		AddCategory(ctx context.Context, name string) error
		DeleteCategory(ctx context.Context, name string) error
		ListMembers(ctx context.Context) ([]string, error)
		AddMember(ctx context.Context, name string) error
		DeleteMember(ctx context.Context, name string) error
	}

	// Backend is the full set of collections.
	Backend interface {
		ExpenseStore
		IncomeStore
		PaymentStore
		TaskStore
		EventStore
		DocumentStore
		CommentStore
		TaxonomyStore
	}
)
