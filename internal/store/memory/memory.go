// Package memory keeps every collection in process memory for the lifetime
// of a session.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"fazenda/internal/core"
	"fazenda/internal/log"
	"fazenda/internal/store"
)

var _ store.Backend = (*Store)(nil)

type Store struct {
	mu sync.Mutex

	categories []string
	members    []string

	expenses  []core.Expense
	incomes   []core.Income
	payments  []core.Payment
	tasks     []core.Task
	events    []core.Event
	documents []core.Document
	comments  []core.Comment

	logger *log.Logger
}

type Option func(*Store)

// WithLogger sets the logger used for deletions and cascades.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		s.logger = l.WithComponent(log.ComponentStore)
	}
}

func New(categories, members []string, opts ...Option) *Store {
	s := &Store{
		categories: store.Dedupe(categories),
		members:    store.Dedupe(members),
		logger:     log.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFromFiles seeds the taxonomy from the text files in base.
func NewFromFiles(base string, opts ...Option) *Store {
	cats, members := store.SeedTaxonomy(base)
	return New(cats, members, opts...)
}

func newID(id string) string {
	if strings.TrimSpace(id) != "" {
		return id
	}
	return uuid.NewString()
}

func prepend[T any](items []T, v T) []T {
	return append([]T{v}, items...)
}

// without drops the items matching drop and reports how many were removed.
func without[T any](items []T, drop func(T) bool) ([]T, int) {
	out := items[:0:0]
	for _, v := range items {
		if !drop(v) {
			out = append(out, v)
		}
	}
	return out, len(items) - len(out)
}

// Records go in and come out as deep copies: callers never share the
// pointer and slice fields held under the lock.
func cloneUser(u *core.UserRef) *core.UserRef {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func cloneIncome(in core.Income) core.Income {
	in.PaidMembers = slices.Clone(in.PaidMembers)
	return in
}

func clonePayment(p core.Payment) core.Payment {
	p.PaidMembers = slices.Clone(p.PaidMembers)
	p.User = cloneUser(p.User)
	return p
}

func cloneTask(t core.Task) core.Task {
	if t.DueDate != nil {
		due := *t.DueDate
		t.DueDate = &due
	}
	t.Assignee = cloneUser(t.Assignee)
	t.CreatedBy = cloneUser(t.CreatedBy)
	return t
}

func cloneComment(c core.Comment) core.Comment {
	c.Attachments = slices.Clone(c.Attachments)
	return c
}

func cloneAll[T any](items []T, clone func(T) T) []T {
	out := make([]T, len(items))
	for i, v := range items {
		out[i] = clone(v)
	}
	return out
}

func (s *Store) logDelete(entity, id string, removed int) {
	if removed == 0 {
		s.logger.Debug("delete of unknown id ignored", log.FieldEntityType, entity, log.FieldEntityID, id)
		return
	}
	s.logger.Debug("record deleted", log.NewFields().
		WithOperation(log.OpDelete).
		WithEntity(entity, id).
		ToSlice()...)
}

func (s *Store) AddExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("add expense: %w", err)
	}
	e.ID = newID(e.ID)
	e.InstallmentIndex, e.InstallmentTotal = 0, 0
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses = prepend(s.expenses, e)
	return e, nil
}

func (s *Store) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	s.expenses, n = without(s.expenses, func(e core.Expense) bool { return e.ID == id })
	s.logDelete("expense", id, n)
	return nil
}

func (s *Store) ListExpenses(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense(nil), s.expenses...), nil
}

func (s *Store) AddIncome(_ context.Context, in core.Income) (core.Income, error) {
	if err := in.Validate(); err != nil {
		return core.Income{}, fmt.Errorf("add income: %w", err)
	}
	in.ID = newID(in.ID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incomes = prepend(s.incomes, cloneIncome(in))
	return cloneIncome(in), nil
}

func (s *Store) DeleteIncome(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	s.incomes, n = without(s.incomes, func(in core.Income) bool { return in.ID == id })
	s.logDelete("income", id, n)
	return nil
}

func (s *Store) ListIncomes(_ context.Context) ([]core.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.incomes, cloneIncome), nil
}

func (s *Store) AddPayment(_ context.Context, p core.Payment) (core.Payment, error) {
	if err := p.Validate(); err != nil {
		return core.Payment{}, fmt.Errorf("add payment: %w", err)
	}
	p.ID = newID(p.ID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments = prepend(s.payments, clonePayment(p))
	return clonePayment(p), nil
}

func (s *Store) DeletePayment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	s.payments, n = without(s.payments, func(p core.Payment) bool { return p.ID == id })
	s.logDelete("payment", id, n)
	return nil
}

func (s *Store) ListPayments(_ context.Context) ([]core.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.payments, clonePayment), nil
}

func (s *Store) AddTask(_ context.Context, t core.Task) (core.Task, error) {
	if err := t.Validate(); err != nil {
		return core.Task{}, fmt.Errorf("add task: %w", err)
	}
	t.ID = newID(t.ID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = prepend(s.tasks, cloneTask(t))
	return cloneTask(t), nil
}

func (s *Store) EditTask(_ context.Context, id string, patch store.TaskPatch) (core.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.taskIndex(id)
	if i < 0 {
		return core.Task{}, fmt.Errorf("edit task %s: %w", id, store.ErrNotFound)
	}
	t, err := patch.Apply(s.tasks[i])
	if err != nil {
		return core.Task{}, fmt.Errorf("edit task %s: %w", id, err)
	}
	s.tasks[i] = cloneTask(t)
	return cloneTask(t), nil
}

func (s *Store) MoveTaskLeft(_ context.Context, id string) (core.Task, error) {
	return s.moveTask(id, core.TaskStatus.Prev)
}

func (s *Store) MoveTaskRight(_ context.Context, id string) (core.Task, error) {
	return s.moveTask(id, core.TaskStatus.Next)
}

func (s *Store) moveTask(id string, step func(core.TaskStatus) core.TaskStatus) (core.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.taskIndex(id)
	if i < 0 {
		return core.Task{}, fmt.Errorf("move task %s: %w", id, store.ErrNotFound)
	}
	s.tasks[i].Status = step(s.tasks[i].Status)
	return cloneTask(s.tasks[i]), nil
}

func (s *Store) taskIndex(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) DeleteTask(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	s.tasks, n = without(s.tasks, func(t core.Task) bool { return t.ID == id })
	s.logDelete("task", id, n)
	return nil
}

func (s *Store) ListTasks(_ context.Context) ([]core.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.tasks, cloneTask), nil
}

func (s *Store) AddEvent(_ context.Context, e core.Event) (core.Event, error) {
	if err := e.Validate(); err != nil {
		return core.Event{}, fmt.Errorf("add event: %w", err)
	}
	e.ID = newID(e.ID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = prepend(s.events, e)
	return e, nil
}

func (s *Store) DeleteEvent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	s.events, n = without(s.events, func(e core.Event) bool { return e.ID == id })
	s.logDelete("event", id, n)
	return nil
}

func (s *Store) ListEvents(_ context.Context) ([]core.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Event(nil), s.events...), nil
}

func (s *Store) AddDocument(_ context.Context, d core.Document) (core.Document, error) {
	if err := d.Validate(); err != nil {
		return core.Document{}, fmt.Errorf("add document: %w", err)
	}
	d.ID = newID(d.ID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents = prepend(s.documents, d)
	return d, nil
}

func (s *Store) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	s.documents, n = without(s.documents, func(d core.Document) bool { return d.ID == id })
	s.logDelete("document", id, n)
	return nil
}

func (s *Store) ListDocuments(_ context.Context) ([]core.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Document(nil), s.documents...), nil
}

func (s *Store) AddComment(_ context.Context, c core.Comment) (core.Comment, error) {
	if err := c.Validate(); err != nil {
		return core.Comment{}, fmt.Errorf("add comment: %w", err)
	}
	c.ID = newID(c.ID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments = prepend(s.comments, cloneComment(c))
	return cloneComment(c), nil
}

func (s *Store) DeleteComment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	s.comments, n = without(s.comments, func(c core.Comment) bool {
		return c.ID == id || c.ParentID == id
	})
	s.logDelete("comment", id, n)
	if n > 1 {
		s.logger.Info("comment replies removed", log.FieldEntityID, id, log.FieldCount, n-1)
	}
	return nil
}

func (s *Store) ListComments(_ context.Context) ([]core.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.comments, cloneComment), nil
}

func (s *Store) ListCategories(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.categories...), nil
}

func (s *Store) AddCategory(_ context.Context, name string) error {
	return s.addName(&s.categories, name)
}

func (s *Store) DeleteCategory(_ context.Context, name string) error {
	s.removeName(&s.categories, name)
	return nil
}

func (s *Store) ListMembers(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.members...), nil
}

func (s *Store) AddMember(_ context.Context, name string) error {
	return s.addName(&s.members, name)
}

func (s *Store) DeleteMember(_ context.Context, name string) error {
	s.removeName(&s.members, name)
	return nil
}

func (s *Store) addName(list *[]string, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.ErrEmptyName
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	*list = store.Dedupe(append(*list, name))
	return nil
}

func (s *Store) removeName(list *[]string, name string) {
	name = strings.TrimSpace(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	*list, _ = without(*list, func(v string) bool { return v == name })
}
