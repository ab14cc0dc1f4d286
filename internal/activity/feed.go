// Package activity builds the "recent activity" feed shown on the dashboard.
//
// The feed merges tasks, events, expenses, payments, documents and comments.
// Events that are today or upcoming are pinned above everything else; the
// remaining records follow newest first. The result is capped at a limit.
package activity

import (
	"sort"
	"time"

	"fazenda/internal/core"
)

// DefaultUserName labels entries whose author is unknown.
const DefaultUserName = "Usuário"

const (
	EntityTask     = "task"
	EntityEvent    = "event"
	EntityExpense  = "expense"
	EntityPayment  = "payment"
	EntityDocument = "document"
	EntityComment  = "comment"
)

const (
	ActionCreated   = "Created"
	ActionUploaded  = "Uploaded"
	ActionCommented = "Commented"
)

// Entry is one line of the feed. ID is the source record's id, so two
// entries of different types may share it; EntityType and EntityID together
// identify the source and route actions such as deletes.
type Entry struct {
	ID         string
	Action     string
	EntityType string
	EntityID   string
	Details    Details
	CreatedAt  time.Time
	UserName   string
}

// Details carries what the feed displays for an entry.
type Details struct {
	Title   string
	Amount  *core.Money // expenses and payments only
	Content string      // comments only
}

// Sources are the collections the feed is built from. They are read only.
type Sources struct {
	Tasks     []core.Task
	Events    []core.Event
	Expenses  []core.Expense
	Payments  []core.Payment
	Documents []core.Document
	Comments  []core.Comment
}

// BuildFeed returns at most limit entries: qualifying events first, latest
// first, then every other record latest first. Events dated before the
// start of now's day are left out. A limit of zero or less yields an empty
// feed. Records with unknown timestamps sort last within their group.
func BuildFeed(in Sources, now time.Time, limit int) []Entry {
	if limit <= 0 {
		return []Entry{}
	}

	loc := now.Location()
	today := core.StartOfDay(now)

	events := make([]Entry, 0, len(in.Events))
	for _, ev := range in.Events {
		at := ev.Date.EndOfDay(loc)
		if ev.Date.IsZero() || at.Before(today) {
			continue
		}
		events = append(events, newEntry(EntityEvent, ev.ID, ActionCreated, at, "", Details{Title: ev.Title}))
	}

	rest := make([]Entry, 0, len(in.Tasks)+len(in.Expenses)+len(in.Payments)+len(in.Documents)+len(in.Comments))
	for _, t := range in.Tasks {
		rest = append(rest, newEntry(EntityTask, t.ID, ActionCreated, taskTime(t, now), taskUser(t), Details{Title: t.Title}))
	}
	for _, e := range in.Expenses {
		amount := e.Amount
		rest = append(rest, newEntry(EntityExpense, e.ID, ActionCreated, e.Date, e.User.Name, Details{Title: e.Title, Amount: &amount}))
	}
	for _, p := range in.Payments {
		amount := p.Amount
		var user string
		if p.User != nil {
			user = p.User.Name
		}
		title := p.Title
		if title == "" {
			title = p.Category
		}
		rest = append(rest, newEntry(EntityPayment, p.ID, ActionCreated, p.Date, user, Details{Title: title, Amount: &amount}))
	}
	for _, d := range in.Documents {
		rest = append(rest, newEntry(EntityDocument, d.ID, ActionUploaded, d.CreatedAt, d.Uploader.Name, Details{Title: d.Title}))
	}
	for _, c := range in.Comments {
		rest = append(rest, newEntry(EntityComment, c.ID, ActionCommented, c.CreatedAt, c.User.Name, Details{Content: c.Content}))
	}

	sortLatestFirst(events)
	sortLatestFirst(rest)

	feed := append(events, rest...)
	if len(feed) > limit {
		feed = feed[:limit]
	}
	return feed
}

func newEntry(entityType, entityID, action string, at time.Time, user string, details Details) Entry {
	if user == "" {
		user = DefaultUserName
	}
	return Entry{
		ID:         entityID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
		CreatedAt:  at,
		UserName:   user,
	}
}

// taskTime is the due date when set, else the creation time, else now.
func taskTime(t core.Task, now time.Time) time.Time {
	if t.DueDate != nil && !t.DueDate.IsZero() {
		return *t.DueDate
	}
	if !t.CreatedAt.IsZero() {
		return t.CreatedAt
	}
	return now
}

func taskUser(t core.Task) string {
	if t.Assignee != nil && t.Assignee.Name != "" {
		return t.Assignee.Name
	}
	if t.CreatedBy != nil {
		return t.CreatedBy.Name
	}
	return ""
}

func sortLatestFirst(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
}
