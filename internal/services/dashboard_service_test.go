package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"fazenda/internal/activity"
	"fazenda/internal/core"
	"fazenda/internal/store/memory"
)

type failingComments struct {
	*memory.Store
}

var errBoom = errors.New("boom")

func (failingComments) ListComments(context.Context) ([]core.Comment, error) {
	return nil, errBoom
}

func TestDashboardService_RecentActivity(t *testing.T) {
	ctx := context.Background()
	loc := time.FixedZone("BRT", -3*3600)
	now := time.Date(2025, time.October, 15, 9, 0, 0, 0, loc)
	st := memory.New(nil, nil)

	mustAdd := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	_, err := st.AddEvent(ctx, core.Event{ID: "past", Title: "Feira", Date: core.NewDate(2025, 10, 14)})
	mustAdd(err)
	_, err = st.AddEvent(ctx, core.Event{ID: "next", Title: "Vacinação", Date: core.NewDate(2025, 10, 25)})
	mustAdd(err)
	for i, h := range []int{1, 2, 3} {
		_, err = st.AddTask(ctx, core.Task{
			ID: string(rune('a' + i)), Title: "Tarefa", Status: core.StatusTodo, Priority: core.PriorityLow,
			CreatedAt: now.Add(-time.Duration(h) * time.Hour),
		})
		mustAdd(err)
	}

	svc := NewDashboardService(st, 3, func() time.Time { return now }, nil)
	feed, err := svc.RecentActivity(ctx)
	if err != nil {
		t.Fatalf("RecentActivity() error = %v", err)
	}
	if len(feed) != 3 {
		t.Fatalf("got %d entries, want 3", len(feed))
	}
	if feed[0].EntityType != activity.EntityEvent || feed[0].EntityID != "next" {
		t.Errorf("first entry = %+v", feed[0])
	}
	if feed[1].EntityID != "a" || feed[2].EntityID != "b" {
		t.Errorf("tasks out of order: %s, %s", feed[1].EntityID, feed[2].EntityID)
	}
}

func TestDashboardService_SnapshotError(t *testing.T) {
	svc := NewDashboardService(failingComments{memory.New(nil, nil)}, 5, nil, nil)
	if _, err := svc.RecentActivity(context.Background()); !errors.Is(err, errBoom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	if _, err := svc.Threads(context.Background()); !errors.Is(err, errBoom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestDashboardService_TaskSummaryAndThreads(t *testing.T) {
	ctx := context.Background()
	st := memory.New(nil, nil)
	for _, s := range []core.TaskStatus{core.StatusTodo, core.StatusTodo, core.StatusInProgress, core.StatusDone} {
		if _, err := st.AddTask(ctx, core.Task{Title: "t", Status: s, Priority: core.PriorityMedium}); err != nil {
			t.Fatalf("AddTask() error = %v", err)
		}
	}
	root, _ := st.AddComment(ctx, core.Comment{Content: "Pergunta"})
	if _, err := st.AddComment(ctx, core.Comment{Content: "Resposta", ParentID: root.ID}); err != nil {
		t.Fatalf("AddComment() error = %v", err)
	}

	svc := NewDashboardService(st, 5, nil, nil)
	sum, err := svc.TaskSummary(ctx)
	if err != nil {
		t.Fatalf("TaskSummary() error = %v", err)
	}
	if sum.Todo != 2 || sum.InProgress != 1 || sum.Done != 1 || sum.Total() != 4 {
		t.Errorf("TaskSummary() = %+v", sum)
	}

	threads, err := svc.Threads(ctx)
	if err != nil {
		t.Fatalf("Threads() error = %v", err)
	}
	if len(threads) != 1 || len(threads[0].Replies) != 1 || threads[0].Replies[0].Content != "Resposta" {
		t.Errorf("Threads() = %+v", threads)
	}
}
