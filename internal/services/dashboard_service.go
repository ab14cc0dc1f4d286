package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"fazenda/internal/activity"
	"fazenda/internal/core"
	"fazenda/internal/log"
	"fazenda/internal/store"
)

// DashboardStore is what the dashboard reads from.
type DashboardStore interface {
	store.TaskStore
	store.EventStore
	store.ExpenseStore
	store.PaymentStore
	store.DocumentStore
	store.CommentStore
}

// DashboardService assembles the home screen views.
type DashboardService struct {
	store  DashboardStore
	limit  int
	now    func() time.Time
	logger *log.Logger
}

// NewDashboardService returns a service whose feed holds at most limit
// entries. now supplies the current time, including the location used for
// event days; nil means time.Now.
func NewDashboardService(s DashboardStore, limit int, now func() time.Time, logger *log.Logger) *DashboardService {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &DashboardService{
		store:  s,
		limit:  limit,
		now:    now,
		logger: logger.WithComponent(log.ComponentDashboard),
	}
}

// Snapshot reads the six collections concurrently.
func (s *DashboardService) Snapshot(ctx context.Context) (activity.Sources, error) {
	var src activity.Sources
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		src.Tasks, err = s.store.ListTasks(ctx)
		return wrap("tasks", err)
	})
	g.Go(func() (err error) {
		src.Events, err = s.store.ListEvents(ctx)
		return wrap("events", err)
	})
	g.Go(func() (err error) {
		src.Expenses, err = s.store.ListExpenses(ctx)
		return wrap("expenses", err)
	})
	g.Go(func() (err error) {
		src.Payments, err = s.store.ListPayments(ctx)
		return wrap("payments", err)
	})
	g.Go(func() (err error) {
		src.Documents, err = s.store.ListDocuments(ctx)
		return wrap("documents", err)
	})
	g.Go(func() (err error) {
		src.Comments, err = s.store.ListComments(ctx)
		return wrap("comments", err)
	})

	if err := g.Wait(); err != nil {
		return activity.Sources{}, err
	}
	return src, nil
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("list %s: %w", what, err)
	}
	return nil
}

// RecentActivity builds the activity feed as of now.
func (s *DashboardService) RecentActivity(ctx context.Context) ([]activity.Entry, error) {
	src, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	feed := activity.BuildFeed(src, s.now(), s.limit)
	s.logger.DebugContext(ctx, "activity feed built", log.FieldCount, len(feed), log.FieldLimit, s.limit)
	return feed, nil
}

// TaskSummary counts tasks per board column.
func (s *DashboardService) TaskSummary(ctx context.Context) (core.TaskSummary, error) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return core.TaskSummary{}, fmt.Errorf("list tasks: %w", err)
	}
	var sum core.TaskSummary
	for _, t := range tasks {
		switch t.Status {
		case core.StatusTodo:
			sum.Todo++
		case core.StatusInProgress:
			sum.InProgress++
		case core.StatusDone:
			sum.Done++
		}
	}
	return sum, nil
}

// Threads returns the comment threads, newest thread first.
func (s *DashboardService) Threads(ctx context.Context) ([]core.Thread, error) {
	comments, err := s.store.ListComments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return core.Threads(comments), nil
}
