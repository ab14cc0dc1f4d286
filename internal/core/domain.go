package core

import (
	"errors"
	"strings"
	"time"
)

const (
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusDone       TaskStatus = "DONE"

	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"

	DocumentDeed        DocumentCategory = "DEED"
	DocumentMap         DocumentCategory = "MAP"
	DocumentCertificate DocumentCategory = "CERTIFICATE"
	DocumentReceipt     DocumentCategory = "RECEIPT"
	DocumentOther       DocumentCategory = "OTHER"
)

// Payment methods offered by the expense form. Only the credit card value
// enables installments.
const (
	PaymentMethodCash       = "Dinheiro"
	PaymentMethodCreditCard = "Cartão de Crédito"
)

const maxTitleLength = 200

type (
	TaskStatus       string
	TaskPriority     string
	DocumentCategory string

	// UserRef is the lightweight owner/author reference carried by records.
	UserRef struct {
		ID   string
		Name string
	}

	Expense struct {
		ID            string
		Title         string
		Description   string
		Amount        Money
		Date          time.Time
		Category      string
		IsPaid        bool
		PaymentMethod string
		Installments  string // raw count as typed in the form
		Receipt       string
		User          UserRef

		// Set only on a materialized month view ("x of n").
		InstallmentIndex int
		InstallmentTotal int
	}

	Income struct {
		ID          string
		Title       string
		Category    string
		Amount      Money
		Date        time.Time
		Description string
		PaidMembers []string
	}

	Payment struct {
		ID          string
		Title       string
		Category    string
		Amount      Money
		Date        time.Time
		Description string
		PaidMembers []string
		User        *UserRef
	}

	Task struct {
		ID          string
		Title       string
		Description string
		Status      TaskStatus
		Priority    TaskPriority
		DueDate     *time.Time
		CreatedAt   time.Time
		Assignee    *UserRef
		CreatedBy   *UserRef
	}

	Event struct {
		ID    string
		Date  Date
		Title string
	}

	Document struct {
		ID          string
		Title       string
		Description string
		Category    DocumentCategory
		FileURL     string
		FileType    string
		FileSize    int64
		CreatedAt   time.Time
		Uploader    UserRef
	}

	Comment struct {
		ID          string
		Content     string
		Attachments []string
		CreatedAt   time.Time
		User        UserRef
		ParentID    string // empty for top-level comments
	}
)

var (
	ErrEmptyTitle       = errors.New("empty title")
	ErrTitleTooLong     = errors.New("title too long (max 200 characters)")
	ErrEmptyContent     = errors.New("empty content")
	ErrEmptyName        = errors.New("empty name")
	ErrMissingDate      = errors.New("missing date")
	ErrInvalidStatus    = errors.New("invalid task status")
	ErrInvalidPriority  = errors.New("invalid task priority")
	ErrInvalidCategory  = errors.New("invalid document category")
	ErrEmptyFileURL     = errors.New("empty file url")
	ErrPaidMembersEmpty = errors.New("at least one paying member is required")
)

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	if len(title) > maxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}

// Validate mirrors the expense form: title and a positive amount are required.
// The date is not checked so that malformed dates can still be stored and
// degrade to the plain single-month interpretation.
func (e Expense) Validate() error {
	if err := validateTitle(e.Title); err != nil {
		return err
	}
	return e.Amount.Validate()
}

func (i Income) Validate() error {
	if err := validateTitle(i.Title); err != nil {
		return err
	}
	if err := i.Amount.Validate(); err != nil {
		return err
	}
	if i.Date.IsZero() {
		return ErrMissingDate
	}
	return nil
}

// Validate mirrors the payment form, which requires member, amount and category.
func (p Payment) Validate() error {
	if strings.TrimSpace(p.Category) == "" && strings.TrimSpace(p.Title) == "" {
		return ErrEmptyTitle
	}
	if err := p.Amount.Validate(); err != nil {
		return err
	}
	if len(p.PaidMembers) == 0 && (p.User == nil || strings.TrimSpace(p.User.Name) == "") {
		return ErrPaidMembersEmpty
	}
	return nil
}

func (t Task) Validate() error {
	if err := validateTitle(t.Title); err != nil {
		return err
	}
	if !t.Status.Valid() {
		return ErrInvalidStatus
	}
	switch t.Priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
	default:
		return ErrInvalidPriority
	}
	return nil
}

func (e Event) Validate() error {
	if err := validateTitle(e.Title); err != nil {
		return err
	}
	if e.Date.IsZero() {
		return ErrMissingDate
	}
	return nil
}

func (d Document) Validate() error {
	if err := validateTitle(d.Title); err != nil {
		return err
	}
	if !d.Category.Valid() {
		return ErrInvalidCategory
	}
	if strings.TrimSpace(d.FileURL) == "" {
		return ErrEmptyFileURL
	}
	return nil
}

// Validate accepts a comment with attachments only, as the comment form does.
func (c Comment) Validate() error {
	if strings.TrimSpace(c.Content) == "" && len(c.Attachments) == 0 {
		return ErrEmptyContent
	}
	return nil
}

// IsReply reports whether the comment answers another comment.
func (c Comment) IsReply() bool {
	return c.ParentID != ""
}

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Next returns the status one column to the right on the task board.
// DONE stays DONE.
func (s TaskStatus) Next() TaskStatus {
	switch s {
	case StatusTodo:
		return StatusInProgress
	case StatusInProgress:
		return StatusDone
	}
	return s
}

// Prev returns the status one column to the left. TODO stays TODO.
func (s TaskStatus) Prev() TaskStatus {
	switch s {
	case StatusInProgress:
		return StatusTodo
	case StatusDone:
		return StatusInProgress
	}
	return s
}

func (c DocumentCategory) Valid() bool {
	switch c {
	case DocumentDeed, DocumentMap, DocumentCertificate, DocumentReceipt, DocumentOther:
		return true
	}
	return false
}
