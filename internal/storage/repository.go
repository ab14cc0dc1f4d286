// Package storage keeps the session collections in SQLite.
//
// The default DSN is an in-memory database, so nothing outlives the process
// unless a file path is configured.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"fazenda/internal/core"
	"fazenda/internal/log"
	"fazenda/internal/store"
)

var _ store.Backend = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db     *sql.DB
	logger *log.Logger
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Open opens dsn with a single connection, creating the parent directory of
// a plain file path.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// every connection to :memory: is a fresh database
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// NewSQLiteRepository opens dsn, migrates it and seeds the taxonomy tables
// when they are empty.
func NewSQLiteRepository(ctx context.Context, dsn string, categories, members []string, logger *log.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = log.Discard()
	}
	db, err := Open(ctx, dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{
		db:     db,
		logger: logger.WithComponent(log.ComponentStorage),
	}
	if err := repo.seedNames(ctx, "categories", categories); err != nil {
		db.Close()
		return nil, err
	}
	if err := repo.seedNames(ctx, "members", members); err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) seedNames(ctx context.Context, table string, names []string) error {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return fmt.Errorf("count %s: %w", table, err)
	}
	if n > 0 {
		return nil
	}
	for _, name := range store.Dedupe(names) {
		if _, err := r.db.ExecContext(ctx, "INSERT OR IGNORE INTO "+table+" (name) VALUES (?)", name); err != nil {
			return fmt.Errorf("seed %s: %w", table, err)
		}
	}
	r.logger.Debug("taxonomy seeded", log.FieldOperation, log.OpSeed, "table", table, log.FieldCount, len(names))
	return nil
}

func newID(id string) string {
	if strings.TrimSpace(id) != "" {
		return id
	}
	return uuid.NewString()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

// parseTime reads a stored timestamp; unreadable values become zero.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil || t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func timePtr(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t := parseTime(s.String)
	if t.IsZero() {
		return nil
	}
	return &t
}

func nullUser(u *core.UserRef) (id, name sql.NullString) {
	if u == nil {
		return sql.NullString{}, sql.NullString{}
	}
	return sql.NullString{String: u.ID, Valid: true}, sql.NullString{String: u.Name, Valid: true}
}

func userPtr(id, name sql.NullString) *core.UserRef {
	if !id.Valid && !name.Valid {
		return nil
	}
	return &core.UserRef{ID: id.String, Name: name.String}
}

func encodeList(v []string) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeList(s string) []string {
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	return out
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// list runs query and scans every row with scan.
func list[T any](ctx context.Context, db *sql.DB, query string, scan func(*sql.Rows) (T, error)) ([]T, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) deleteByID(ctx context.Context, entity, table, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", entity, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		r.logger.Debug("delete of unknown id ignored", log.FieldEntityType, entity, log.FieldEntityID, id)
		return nil
	}
	r.logger.Debug("record deleted", log.NewFields().
		WithOperation(log.OpDelete).
		WithEntity(entity, id).
		ToSlice()...)
	return nil
}

func (r *SQLiteRepository) AddExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("add expense: %w", err)
	}
	e.ID = newID(e.ID)
	e.InstallmentIndex, e.InstallmentTotal = 0, 0
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (id, title, description, amount_cents, date, category, is_paid,
			payment_method, installments, receipt, user_id, user_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Title, e.Description, e.Amount.Cents, formatTime(e.Date), e.Category, boolToInt(e.IsPaid),
		e.PaymentMethod, e.Installments, e.Receipt, e.User.ID, e.User.Name)
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "expense", "expenses", id)
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	out, err := list(ctx, r.db, `
		SELECT id, title, description, amount_cents, date, category, is_paid,
			payment_method, installments, receipt, user_id, user_name
		FROM expenses ORDER BY seq DESC`,
		func(rows *sql.Rows) (core.Expense, error) {
			var (
				e      core.Expense
				date   string
				isPaid int
			)
			err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.Amount.Cents, &date, &e.Category, &isPaid,
				&e.PaymentMethod, &e.Installments, &e.Receipt, &e.User.ID, &e.User.Name)
			e.Date = parseTime(date)
			e.IsPaid = isPaid != 0
			return e, err
		})
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) AddIncome(ctx context.Context, in core.Income) (core.Income, error) {
	if err := in.Validate(); err != nil {
		return core.Income{}, fmt.Errorf("add income: %w", err)
	}
	in.ID = newID(in.ID)
	members, err := encodeList(in.PaidMembers)
	if err != nil {
		return core.Income{}, fmt.Errorf("encode paid members: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO incomes (id, title, category, amount_cents, date, description, paid_members)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.Title, in.Category, in.Amount.Cents, formatTime(in.Date), in.Description, members)
	if err != nil {
		return core.Income{}, fmt.Errorf("insert income: %w", err)
	}
	return in, nil
}

func (r *SQLiteRepository) DeleteIncome(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "income", "incomes", id)
}

func (r *SQLiteRepository) ListIncomes(ctx context.Context) ([]core.Income, error) {
	out, err := list(ctx, r.db, `
		SELECT id, title, category, amount_cents, date, description, paid_members
		FROM incomes ORDER BY seq DESC`,
		func(rows *sql.Rows) (core.Income, error) {
			var (
				in            core.Income
				date, members string
			)
			err := rows.Scan(&in.ID, &in.Title, &in.Category, &in.Amount.Cents, &date, &in.Description, &members)
			in.Date = parseTime(date)
			in.PaidMembers = decodeList(members)
			return in, err
		})
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) AddPayment(ctx context.Context, p core.Payment) (core.Payment, error) {
	if err := p.Validate(); err != nil {
		return core.Payment{}, fmt.Errorf("add payment: %w", err)
	}
	p.ID = newID(p.ID)
	members, err := encodeList(p.PaidMembers)
	if err != nil {
		return core.Payment{}, fmt.Errorf("encode paid members: %w", err)
	}
	userID, userName := nullUser(p.User)
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO payments (id, title, category, amount_cents, date, description, paid_members, user_id, user_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Category, p.Amount.Cents, formatTime(p.Date), p.Description, members, userID, userName)
	if err != nil {
		return core.Payment{}, fmt.Errorf("insert payment: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) DeletePayment(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "payment", "payments", id)
}

func (r *SQLiteRepository) ListPayments(ctx context.Context) ([]core.Payment, error) {
	out, err := list(ctx, r.db, `
		SELECT id, title, category, amount_cents, date, description, paid_members, user_id, user_name
		FROM payments ORDER BY seq DESC`,
		func(rows *sql.Rows) (core.Payment, error) {
			var (
				p                core.Payment
				date, members    string
				userID, userName sql.NullString
			)
			err := rows.Scan(&p.ID, &p.Title, &p.Category, &p.Amount.Cents, &date, &p.Description, &members, &userID, &userName)
			p.Date = parseTime(date)
			p.PaidMembers = decodeList(members)
			p.User = userPtr(userID, userName)
			return p, err
		})
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) AddTask(ctx context.Context, t core.Task) (core.Task, error) {
	if err := t.Validate(); err != nil {
		return core.Task{}, fmt.Errorf("add task: %w", err)
	}
	t.ID = newID(t.ID)
	assigneeID, assigneeName := nullUser(t.Assignee)
	creatorID, creatorName := nullUser(t.CreatedBy)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (id, title, description, status, priority, due_date, created_at,
			assignee_id, assignee_name, created_by_id, created_by_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Description, string(t.Status), string(t.Priority), nullTime(t.DueDate), formatTime(t.CreatedAt),
		assigneeID, assigneeName, creatorID, creatorName)
	if err != nil {
		return core.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

const selectTask = `
	SELECT id, title, description, status, priority, due_date, created_at,
		assignee_id, assignee_name, created_by_id, created_by_name
	FROM tasks`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (core.Task, error) {
	var (
		t                        core.Task
		status, priority         string
		due                      sql.NullString
		createdAt                string
		assigneeID, assigneeName sql.NullString
		creatorID, creatorName   sql.NullString
	)
	err := row.Scan(&t.ID, &t.Title, &t.Description, &status, &priority, &due, &createdAt,
		&assigneeID, &assigneeName, &creatorID, &creatorName)
	t.Status = core.TaskStatus(status)
	t.Priority = core.TaskPriority(priority)
	t.DueDate = timePtr(due)
	t.CreatedAt = parseTime(createdAt)
	t.Assignee = userPtr(assigneeID, assigneeName)
	t.CreatedBy = userPtr(creatorID, creatorName)
	return t, err
}

func getTask(ctx context.Context, q queryer, id string) (core.Task, error) {
	t, err := scanTask(q.QueryRowContext(ctx, selectTask+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Task{}, store.ErrNotFound
	}
	return t, err
}

func updateTask(ctx context.Context, q queryer, t core.Task) error {
	assigneeID, assigneeName := nullUser(t.Assignee)
	_, err := q.ExecContext(ctx, `
		UPDATE tasks SET title = ?, description = ?, status = ?, priority = ?, due_date = ?,
			assignee_id = ?, assignee_name = ?
		WHERE id = ?`,
		t.Title, t.Description, string(t.Status), string(t.Priority), nullTime(t.DueDate),
		assigneeID, assigneeName, t.ID)
	return err
}

// modifyTask reads, changes and writes a task in one transaction.
func (r *SQLiteRepository) modifyTask(ctx context.Context, op, id string, change func(core.Task) (core.Task, error)) (core.Task, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Task{}, fmt.Errorf("%s task %s: begin: %w", op, id, err)
	}
	defer tx.Rollback()

	current, err := getTask(ctx, tx, id)
	if err != nil {
		return core.Task{}, fmt.Errorf("%s task %s: %w", op, id, err)
	}
	next, err := change(current)
	if err != nil {
		return core.Task{}, fmt.Errorf("%s task %s: %w", op, id, err)
	}
	if err := updateTask(ctx, tx, next); err != nil {
		return core.Task{}, fmt.Errorf("%s task %s: %w", op, id, err)
	}
	if err := tx.Commit(); err != nil {
		return core.Task{}, fmt.Errorf("%s task %s: commit: %w", op, id, err)
	}
	return next, nil
}

func (r *SQLiteRepository) EditTask(ctx context.Context, id string, patch store.TaskPatch) (core.Task, error) {
	return r.modifyTask(ctx, "edit", id, patch.Apply)
}

func (r *SQLiteRepository) MoveTaskLeft(ctx context.Context, id string) (core.Task, error) {
	return r.modifyTask(ctx, "move", id, func(t core.Task) (core.Task, error) {
		t.Status = t.Status.Prev()
		return t, nil
	})
}

func (r *SQLiteRepository) MoveTaskRight(ctx context.Context, id string) (core.Task, error) {
	return r.modifyTask(ctx, "move", id, func(t core.Task) (core.Task, error) {
		t.Status = t.Status.Next()
		return t, nil
	})
}

func (r *SQLiteRepository) DeleteTask(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "task", "tasks", id)
}

func (r *SQLiteRepository) ListTasks(ctx context.Context) ([]core.Task, error) {
	out, err := list(ctx, r.db, selectTask+" ORDER BY seq DESC", func(rows *sql.Rows) (core.Task, error) {
		return scanTask(rows)
	})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) AddEvent(ctx context.Context, e core.Event) (core.Event, error) {
	if err := e.Validate(); err != nil {
		return core.Event{}, fmt.Errorf("add event: %w", err)
	}
	e.ID = newID(e.ID)
	_, err := r.db.ExecContext(ctx, "INSERT INTO events (id, date, title) VALUES (?, ?, ?)", e.ID, e.Date.String(), e.Title)
	if err != nil {
		return core.Event{}, fmt.Errorf("insert event: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) DeleteEvent(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "event", "events", id)
}

func (r *SQLiteRepository) ListEvents(ctx context.Context) ([]core.Event, error) {
	out, err := list(ctx, r.db, "SELECT id, date, title FROM events ORDER BY seq DESC",
		func(rows *sql.Rows) (core.Event, error) {
			var (
				e    core.Event
				date string
			)
			if err := rows.Scan(&e.ID, &date, &e.Title); err != nil {
				return e, err
			}
			// a malformed stored date reads back as the zero date
			e.Date, _ = core.ParseDate(date)
			return e, nil
		})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) AddDocument(ctx context.Context, d core.Document) (core.Document, error) {
	if err := d.Validate(); err != nil {
		return core.Document{}, fmt.Errorf("add document: %w", err)
	}
	d.ID = newID(d.ID)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO documents (id, title, description, category, file_url, file_type, file_size,
			created_at, uploader_id, uploader_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Title, d.Description, string(d.Category), d.FileURL, d.FileType, d.FileSize,
		formatTime(d.CreatedAt), d.Uploader.ID, d.Uploader.Name)
	if err != nil {
		return core.Document{}, fmt.Errorf("insert document: %w", err)
	}
	return d, nil
}

func (r *SQLiteRepository) DeleteDocument(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "document", "documents", id)
}

func (r *SQLiteRepository) ListDocuments(ctx context.Context) ([]core.Document, error) {
	out, err := list(ctx, r.db, `
		SELECT id, title, description, category, file_url, file_type, file_size,
			created_at, uploader_id, uploader_name
		FROM documents ORDER BY seq DESC`,
		func(rows *sql.Rows) (core.Document, error) {
			var (
				d                   core.Document
				category, createdAt string
			)
			err := rows.Scan(&d.ID, &d.Title, &d.Description, &category, &d.FileURL, &d.FileType, &d.FileSize,
				&createdAt, &d.Uploader.ID, &d.Uploader.Name)
			d.Category = core.DocumentCategory(category)
			d.CreatedAt = parseTime(createdAt)
			return d, err
		})
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) AddComment(ctx context.Context, c core.Comment) (core.Comment, error) {
	if err := c.Validate(); err != nil {
		return core.Comment{}, fmt.Errorf("add comment: %w", err)
	}
	c.ID = newID(c.ID)
	attachments, err := encodeList(c.Attachments)
	if err != nil {
		return core.Comment{}, fmt.Errorf("encode attachments: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO comments (id, content, attachments, created_at, user_id, user_name, parent_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Content, attachments, formatTime(c.CreatedAt), c.User.ID, c.User.Name, c.ParentID)
	if err != nil {
		return core.Comment{}, fmt.Errorf("insert comment: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) DeleteComment(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM comments WHERE id = ? OR parent_id = ?", id, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	n, _ := res.RowsAffected()
	r.logger.Debug("record deleted", log.NewFields().
		WithOperation(log.OpDelete).
		WithEntity("comment", id).
		ToSlice()...)
	if n > 1 {
		r.logger.Info("comment replies removed", log.FieldEntityID, id, log.FieldCount, n-1)
	}
	return nil
}

func (r *SQLiteRepository) ListComments(ctx context.Context) ([]core.Comment, error) {
	out, err := list(ctx, r.db, `
		SELECT id, content, attachments, created_at, user_id, user_name, parent_id
		FROM comments ORDER BY seq DESC`,
		func(rows *sql.Rows) (core.Comment, error) {
			var (
				c                      core.Comment
				attachments, createdAt string
			)
			err := rows.Scan(&c.ID, &c.Content, &attachments, &createdAt, &c.User.ID, &c.User.Name, &c.ParentID)
			c.Attachments = decodeList(attachments)
			c.CreatedAt = parseTime(createdAt)
			return c, err
		})
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) listNames(ctx context.Context, table string) ([]string, error) {
	out, err := list(ctx, r.db, "SELECT name FROM "+table+" ORDER BY seq", func(rows *sql.Rows) (string, error) {
		var name string
		err := rows.Scan(&name)
		return name, err
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	return out, nil
}

func (r *SQLiteRepository) addName(ctx context.Context, table, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.ErrEmptyName
	}
	if _, err := r.db.ExecContext(ctx, "INSERT OR IGNORE INTO "+table+" (name) VALUES (?)", name); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

func (r *SQLiteRepository) removeName(ctx context.Context, table, name string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE name = ?", strings.TrimSpace(name)); err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	return nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]string, error) {
	return r.listNames(ctx, "categories")
}

func (r *SQLiteRepository) AddCategory(ctx context.Context, name string) error {
	return r.addName(ctx, "categories", name)
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, name string) error {
	return r.removeName(ctx, "categories", name)
}

func (r *SQLiteRepository) ListMembers(ctx context.Context) ([]string, error) {
	return r.listNames(ctx, "members")
}

func (r *SQLiteRepository) AddMember(ctx context.Context, name string) error {
	return r.addName(ctx, "members", name)
}

func (r *SQLiteRepository) DeleteMember(ctx context.Context, name string) error {
	return r.removeName(ctx, "members", name)
}
