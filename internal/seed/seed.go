// Package seed loads the starting session data from seed.json.
//
// Records in the file are listed newest first, the way the app shows them.
// Timestamps are ISO strings; a value that does not parse is kept as the
// zero time rather than rejected.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"fazenda/internal/core"
	"fazenda/internal/log"
	"fazenda/internal/store"
)

// FileName is the seed file looked up in the data directory.
const FileName = "seed.json"

type (
	userJSON struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	expenseJSON struct {
		ID            string     `json:"id"`
		Title         string     `json:"title"`
		Description   string     `json:"description"`
		Amount        core.Money `json:"amount"`
		Date          string     `json:"date"`
		Category      string     `json:"category"`
		IsPaid        bool       `json:"isPaid"`
		PaymentMethod string     `json:"paymentMethod"`
		Installments  string     `json:"installments"`
		Receipt       string     `json:"receipt"`
		User          userJSON   `json:"user"`
	}

	incomeJSON struct {
		ID          string     `json:"id"`
		Title       string     `json:"title"`
		Category    string     `json:"category"`
		Amount      core.Money `json:"amount"`
		Date        string     `json:"date"`
		Description string     `json:"description"`
		PaidMembers []string   `json:"paidMembers"`
	}

	paymentJSON struct {
		incomeJSON
		User *userJSON `json:"user"`
	}

	taskJSON struct {
		ID          string    `json:"id"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		Status      string    `json:"status"`
		Priority    string    `json:"priority"`
		DueDate     string    `json:"dueDate"`
		CreatedAt   string    `json:"createdAt"`
		Assignee    *userJSON `json:"assignee"`
		CreatedBy   *userJSON `json:"createdBy"`
	}

	eventJSON struct {
		ID    string `json:"id"`
		Date  string `json:"date"`
		Title string `json:"title"`
	}

	documentJSON struct {
		ID          string   `json:"id"`
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Category    string   `json:"category"`
		FileURL     string   `json:"fileUrl"`
		FileType    string   `json:"fileType"`
		FileSize    int64    `json:"fileSize"`
		CreatedAt   string   `json:"createdAt"`
		Uploader    userJSON `json:"uploader"`
	}

	commentJSON struct {
		ID          string   `json:"id"`
		Content     string   `json:"content"`
		Attachments []string `json:"attachments"`
		CreatedAt   string   `json:"createdAt"`
		User        userJSON `json:"user"`
		ParentID    string   `json:"parentId"`
	}

	fileJSON struct {
		Expenses  []expenseJSON  `json:"expenses"`
		Incomes   []incomeJSON   `json:"incomes"`
		Payments  []paymentJSON  `json:"payments"`
		Tasks     []taskJSON     `json:"tasks"`
		Events    []eventJSON    `json:"events"`
		Documents []documentJSON `json:"documents"`
		Comments  []commentJSON  `json:"comments"`
	}
)

// Data is the decoded content of a seed file.
type Data struct {
	Expenses  []core.Expense
	Incomes   []core.Income
	Payments  []core.Payment
	Tasks     []core.Task
	Events    []core.Event
	Documents []core.Document
	Comments  []core.Comment
}

// Result counts what Apply stored and what it skipped.
type Result struct {
	Applied int
	Skipped int
}

// Load reads dir/seed.json. A missing file yields empty data. Timestamps
// without an offset are read in loc.
func Load(dir string, loc *time.Location) (*Data, error) {
	f, err := os.Open(filepath.Join(dir, FileName))
	if errors.Is(err, os.ErrNotExist) {
		return &Data{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return Decode(f, loc)
}

// Decode reads seed data from r.
func Decode(r io.Reader, loc *time.Location) (*Data, error) {
	var raw fileJSON
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}

	d := &Data{}
	for _, e := range raw.Expenses {
		d.Expenses = append(d.Expenses, core.Expense{
			ID:            e.ID,
			Title:         e.Title,
			Description:   e.Description,
			Amount:        e.Amount,
			Date:          core.ParseTimestamp(e.Date, loc),
			Category:      e.Category,
			IsPaid:        e.IsPaid,
			PaymentMethod: e.PaymentMethod,
			Installments:  e.Installments,
			Receipt:       e.Receipt,
			User:          core.UserRef(e.User),
		})
	}
	for _, in := range raw.Incomes {
		d.Incomes = append(d.Incomes, core.Income{
			ID:          in.ID,
			Title:       in.Title,
			Category:    in.Category,
			Amount:      in.Amount,
			Date:        core.ParseTimestamp(in.Date, loc),
			Description: in.Description,
			PaidMembers: in.PaidMembers,
		})
	}
	for _, p := range raw.Payments {
		d.Payments = append(d.Payments, core.Payment{
			ID:          p.ID,
			Title:       p.Title,
			Category:    p.Category,
			Amount:      p.Amount,
			Date:        core.ParseTimestamp(p.Date, loc),
			Description: p.Description,
			PaidMembers: p.PaidMembers,
			User:        userRef(p.User),
		})
	}
	for _, t := range raw.Tasks {
		task := core.Task{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Status:      core.TaskStatus(t.Status),
			Priority:    core.TaskPriority(t.Priority),
			CreatedAt:   core.ParseTimestamp(t.CreatedAt, loc),
			Assignee:    userRef(t.Assignee),
			CreatedBy:   userRef(t.CreatedBy),
		}
		if due := core.ParseTimestamp(t.DueDate, loc); !due.IsZero() {
			task.DueDate = &due
		}
		d.Tasks = append(d.Tasks, task)
	}
	for _, e := range raw.Events {
		date, _ := core.ParseDate(e.Date)
		d.Events = append(d.Events, core.Event{ID: e.ID, Date: date, Title: e.Title})
	}
	for _, doc := range raw.Documents {
		d.Documents = append(d.Documents, core.Document{
			ID:          doc.ID,
			Title:       doc.Title,
			Description: doc.Description,
			Category:    core.DocumentCategory(doc.Category),
			FileURL:     doc.FileURL,
			FileType:    doc.FileType,
			FileSize:    doc.FileSize,
			CreatedAt:   core.ParseTimestamp(doc.CreatedAt, loc),
			Uploader:    core.UserRef(doc.Uploader),
		})
	}
	for _, c := range raw.Comments {
		d.Comments = append(d.Comments, core.Comment{
			ID:          c.ID,
			Content:     c.Content,
			Attachments: c.Attachments,
			CreatedAt:   core.ParseTimestamp(c.CreatedAt, loc),
			User:        core.UserRef(c.User),
			ParentID:    c.ParentID,
		})
	}
	return d, nil
}

func userRef(u *userJSON) *core.UserRef {
	if u == nil {
		return nil
	}
	ref := core.UserRef(*u)
	return &ref
}

// Apply inserts d into b so that each collection lists in file order.
// Records the store rejects are skipped and logged.
func Apply(ctx context.Context, b store.Backend, d *Data, logger *log.Logger) (Result, error) {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentSeed)

	var res Result
	add := func(entity, id string, err error) error {
		if err == nil {
			res.Applied++
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		res.Skipped++
		logger.Warn("seed record skipped", log.NewFields().
			WithOperation(log.OpSeed).
			WithEntity(entity, id).
			WithError(err).
			ToSlice()...)
		return nil
	}

	// stores prepend, so insert oldest first
	for i := len(d.Expenses) - 1; i >= 0; i-- {
		_, err := b.AddExpense(ctx, d.Expenses[i])
		if err := add("expense", d.Expenses[i].ID, err); err != nil {
			return res, err
		}
	}
	for i := len(d.Incomes) - 1; i >= 0; i-- {
		_, err := b.AddIncome(ctx, d.Incomes[i])
		if err := add("income", d.Incomes[i].ID, err); err != nil {
			return res, err
		}
	}
	for i := len(d.Payments) - 1; i >= 0; i-- {
		_, err := b.AddPayment(ctx, d.Payments[i])
		if err := add("payment", d.Payments[i].ID, err); err != nil {
			return res, err
		}
	}
	for i := len(d.Tasks) - 1; i >= 0; i-- {
		_, err := b.AddTask(ctx, d.Tasks[i])
		if err := add("task", d.Tasks[i].ID, err); err != nil {
			return res, err
		}
	}
	for i := len(d.Events) - 1; i >= 0; i-- {
		_, err := b.AddEvent(ctx, d.Events[i])
		if err := add("event", d.Events[i].ID, err); err != nil {
			return res, err
		}
	}
	for i := len(d.Documents) - 1; i >= 0; i-- {
		_, err := b.AddDocument(ctx, d.Documents[i])
		if err := add("document", d.Documents[i].ID, err); err != nil {
			return res, err
		}
	}
	for i := len(d.Comments) - 1; i >= 0; i-- {
		_, err := b.AddComment(ctx, d.Comments[i])
		if err := add("comment", d.Comments[i].ID, err); err != nil {
			return res, err
		}
	}

	logger.Info("seed applied", "applied", res.Applied, "skipped", res.Skipped)
	return res, nil
}
