package store

import (
	"time"

	"fazenda/internal/core"
)

// TaskPatch holds the fields of a task edit. Nil fields are left unchanged.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *core.TaskStatus
	Priority    *core.TaskPriority
	DueDate     *time.Time
	Assignee    *core.UserRef
}

// Apply merges p over t and validates the result.
func (p TaskPatch) Apply(t core.Task) (core.Task, error) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		due := *p.DueDate
		t.DueDate = &due
	}
	if p.Assignee != nil {
		a := *p.Assignee
		t.Assignee = &a
	}
	if err := t.Validate(); err != nil {
		return core.Task{}, err
	}
	return t, nil
}
