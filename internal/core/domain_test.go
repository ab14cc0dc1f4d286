package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{Title: "Ração", Amount: Money{Cents: 100}}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		e    Expense
		want error
	}{
		{"empty title", Expense{Title: "  ", Amount: Money{Cents: 1}}, ErrEmptyTitle},
		{"long title", Expense{Title: strings.Repeat("a", 201), Amount: Money{Cents: 1}}, ErrTitleTooLong},
		{"zero amount", Expense{Title: "a"}, ErrInvalidAmount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.e.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestPaymentValidate(t *testing.T) {
	ok := Payment{Category: "Mensalidade", Amount: Money{Cents: 500}, User: &UserRef{ID: "1", Name: "Kim"}}
	if err := ok.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	noMember := Payment{Category: "Mensalidade", Amount: Money{Cents: 500}}
	if err := noMember.Validate(); !errors.Is(err, ErrPaidMembersEmpty) {
		t.Fatalf("got %v", err)
	}
}

func TestTaskValidate(t *testing.T) {
	good := Task{Title: "Consertar cerca", Status: StatusTodo, Priority: PriorityHigh}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bad := good
	bad.Status = "BLOCKED"
	if err := bad.Validate(); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("got %v", err)
	}
	bad = good
	bad.Priority = ""
	if err := bad.Validate(); !errors.Is(err, ErrInvalidPriority) {
		t.Fatalf("got %v", err)
	}
}

func TestEventAndDocumentValidate(t *testing.T) {
	if err := (Event{Title: "Vacinação", Date: NewDate(2025, 5, 10)}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Event{Title: "Vacinação"}).Validate(); !errors.Is(err, ErrMissingDate) {
		t.Fatalf("got %v", err)
	}
	doc := Document{Title: "Escritura", Category: DocumentDeed, FileURL: "file://escritura.pdf"}
	if err := doc.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	doc.Category = "INVOICE"
	if err := doc.Validate(); !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("got %v", err)
	}
}

func TestCommentValidate(t *testing.T) {
	if err := (Comment{Attachments: []string{"foto.jpg"}}).Validate(); err != nil {
		t.Fatalf("attachment-only comment should be valid: %v", err)
	}
	if err := (Comment{Content: " "}).Validate(); !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("got %v", err)
	}
}

func TestTaskStatusMoves(t *testing.T) {
	cases := []struct {
		from, next, prev TaskStatus
	}{
		{StatusTodo, StatusInProgress, StatusTodo},
		{StatusInProgress, StatusDone, StatusTodo},
		{StatusDone, StatusDone, StatusInProgress},
	}
	for _, tc := range cases {
		t.Run(string(tc.from), func(t *testing.T) {
			if got := tc.from.Next(); got != tc.next {
				t.Fatalf("Next: got %s, want %s", got, tc.next)
			}
			if got := tc.from.Prev(); got != tc.prev {
				t.Fatalf("Prev: got %s, want %s", got, tc.prev)
			}
		})
	}
}

func TestLastDayOfMonth(t *testing.T) {
	cases := []struct{ y, m, want int }{
		{2025, 1, 31},
		{2025, 2, 28},
		{2024, 2, 29},
		{2025, 4, 30},
		{2025, 12, 31},
	}
	for _, tc := range cases {
		if got := LastDayOfMonth(tc.y, tc.m); got != tc.want {
			t.Fatalf("%d-%02d: got %d, want %d", tc.y, tc.m, got, tc.want)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2025-01-15T10:30:00Z", time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"2025-01-15", time.Date(2025, 1, 15, 0, 0, 0, 0, loc)},
		{"2025-01-15T08:00:00", time.Date(2025, 1, 15, 8, 0, 0, 0, loc)},
		{"15/01/2025", time.Time{}},
		{"", time.Time{}},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got := ParseTimestamp(tc.in, loc)
			if !got.Equal(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDateEndOfDay(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	got := NewDate(2025, 5, 10).EndOfDay(loc)
	want := time.Date(2025, 5, 10, 23, 59, 59, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if s := NewDate(2025, 5, 10).String(); s != "2025-05-10" {
		t.Fatalf("got %q", s)
	}
}

func TestThreads(t *testing.T) {
	// newest first, as stored
	comments := []Comment{
		{ID: "r2", ParentID: "c1", Content: "segunda resposta"},
		{ID: "c2", Content: "outro"},
		{ID: "rr", ParentID: "r1", Content: "resposta de resposta"},
		{ID: "orphan", ParentID: "gone", Content: "perdida"},
		{ID: "r1", ParentID: "c1", Content: "primeira resposta"},
		{ID: "c1", Content: "pergunta"},
	}
	threads := Threads(comments)
	if len(threads) != 2 {
		t.Fatalf("expected 2 threads, got %d", len(threads))
	}
	if threads[0].Comment.ID != "c2" || threads[1].Comment.ID != "c1" {
		t.Fatalf("unexpected thread order: %s, %s", threads[0].Comment.ID, threads[1].Comment.ID)
	}
	replies := threads[1].Replies
	if len(replies) != 2 || replies[0].ID != "r1" || replies[1].ID != "r2" {
		t.Fatalf("unexpected replies: %+v", replies)
	}
	if len(threads[0].Replies) != 0 {
		t.Fatalf("expected no replies for c2")
	}
}
