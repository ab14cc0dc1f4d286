// Package report renders the finance and dashboard views for the terminal.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"fazenda/internal/activity"
	"fazenda/internal/core"
)

const titleWidth = 32

var monthNames = [...]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// MonthName returns the pt-BR name of month (1-12).
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return "?"
	}
	return monthNames[month-1]
}

// Printer writes styled reports to w. Colors are chosen by the renderer
// from w, so plain buffers get unstyled text.
type Printer struct {
	w io.Writer

	heading lipgloss.Style
	muted   lipgloss.Style
	accent  lipgloss.Style
	alert   lipgloss.Style
	label   lipgloss.Style
	amount  lipgloss.Style
}

func New(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:       w,
		heading: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#89b4fa")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("#7f849c")),
		accent:  r.NewStyle().Foreground(lipgloss.Color("#a6e3a1")),
		alert:   r.NewStyle().Foreground(lipgloss.Color("#f38ba8")),
		label:   r.NewStyle().Width(titleWidth + 2),
		amount:  r.NewStyle().Width(16).Align(lipgloss.Right),
	}
}

func (p *Printer) write(lines []string) error {
	_, err := io.WriteString(p.w, strings.Join(lines, "\n")+"\n")
	return err
}

func (p *Printer) empty(lines []string, msg string) []string {
	return append(lines, p.muted.Render(msg))
}

func (p *Printer) money(m core.Money) string {
	s := p.amount.Render(m.String())
	if m.Cents < 0 {
		return p.alert.Render(s)
	}
	return s
}

func (p *Printer) row(name string, m core.Money) string {
	return p.label.Render(ansi.Truncate(name, titleWidth, "…")) + p.money(m)
}

// MonthlySums prints one line per month of year.
func (p *Printer) MonthlySums(year int, rows []core.MonthTotal) error {
	lines := []string{p.heading.Render(fmt.Sprintf("Despesas por mês - %d", year))}
	if len(rows) == 0 {
		return p.write(p.empty(lines, "Nenhuma despesa no ano."))
	}
	var total core.Money
	for _, r := range rows {
		lines = append(lines, p.row(MonthName(r.Month), r.Total))
		total = total.Add(r.Total)
	}
	lines = append(lines, p.accent.Render(p.row("Total", total)))
	return p.write(lines)
}

// Month prints the expenses counted against year/month.
func (p *Printer) Month(year, month int, expenses []core.Expense) error {
	lines := []string{p.heading.Render(fmt.Sprintf("%s de %d", MonthName(month), year))}
	if len(expenses) == 0 {
		return p.write(p.empty(lines, "Nenhuma despesa no mês."))
	}
	for _, e := range expenses {
		lines = append(lines, p.expenseLine(e))
	}
	return p.write(lines)
}

func (p *Printer) expenseLine(e core.Expense) string {
	title := e.Title
	if e.InstallmentTotal > 0 {
		title = fmt.Sprintf("%s (%d/%d)", title, e.InstallmentIndex, e.InstallmentTotal)
	}
	line := p.muted.Render(e.Date.Format("02/01")) + " " + p.row(title, e.Amount)
	if !e.IsPaid {
		line += " " + p.alert.Render("pendente")
	}
	return line
}

// Overview prints the month totals and the per-category breakdown.
func (p *Printer) Overview(ov core.MonthOverview) error {
	lines := []string{
		p.heading.Render(fmt.Sprintf("Resumo de %s de %d", MonthName(ov.Month), ov.Year)),
		p.row("Receitas", ov.IncomeTotal),
		p.row("Despesas", ov.ExpenseTotal),
		p.row("A pagar", ov.PendingAmount),
		p.accent.Render(p.row("Saldo", ov.Balance)),
		"",
		p.heading.Render("Por categoria"),
	}
	if len(ov.ByCategory) == 0 {
		return p.write(p.empty(lines, "Sem despesas."))
	}
	for _, c := range ov.ByCategory {
		lines = append(lines, p.row(c.Name, c.Amount))
	}
	return p.write(lines)
}

var entityLabels = map[string]string{
	activity.EntityTask:     "Tarefa",
	activity.EntityEvent:    "Evento",
	activity.EntityExpense:  "Despesa",
	activity.EntityPayment:  "Pagamento",
	activity.EntityDocument: "Documento",
	activity.EntityComment:  "Comentário",
}

// Feed prints the recent activity entries in order.
func (p *Printer) Feed(entries []activity.Entry) error {
	lines := []string{p.heading.Render("Atividade recente")}
	if len(entries) == 0 {
		return p.write(p.empty(lines, "Nenhuma atividade."))
	}
	for _, e := range entries {
		when := "--/--"
		if !e.CreatedAt.IsZero() {
			when = e.CreatedAt.Format("02/01 15:04")
		}
		text := e.Details.Title
		if text == "" {
			text = e.Details.Content
		}
		line := fmt.Sprintf("%s %-10s %s: %s", p.muted.Render(when), entityLabels[e.EntityType], e.UserName,
			ansi.Truncate(text, titleWidth, "…"))
		if e.Details.Amount != nil {
			line += " " + strings.TrimSpace(p.money(*e.Details.Amount))
		}
		lines = append(lines, line)
	}
	return p.write(lines)
}

// Tasks prints the task board grouped by column.
func (p *Printer) Tasks(tasks []core.Task, sum core.TaskSummary) error {
	lines := []string{p.heading.Render(fmt.Sprintf("Tarefas (%d)", sum.Total()))}
	columns := []struct {
		status core.TaskStatus
		name   string
		count  int
	}{
		{core.StatusTodo, "A fazer", sum.Todo},
		{core.StatusInProgress, "Em andamento", sum.InProgress},
		{core.StatusDone, "Concluídas", sum.Done},
	}
	for _, col := range columns {
		lines = append(lines, p.accent.Render(fmt.Sprintf("%s (%d)", col.name, col.count)))
		for _, t := range tasks {
			if t.Status != col.status {
				continue
			}
			line := "  " + ansi.Truncate(t.Title, titleWidth, "…")
			if t.DueDate != nil {
				line += " " + p.muted.Render("até "+t.DueDate.Format(time.DateOnly))
			}
			if t.Priority == core.PriorityHigh {
				line += " " + p.alert.Render("!")
			}
			lines = append(lines, line)
		}
	}
	return p.write(lines)
}

// Threads prints comment threads with their replies indented.
func (p *Printer) Threads(threads []core.Thread) error {
	lines := []string{p.heading.Render("Comentários")}
	if len(threads) == 0 {
		return p.write(p.empty(lines, "Nenhum comentário."))
	}
	for _, th := range threads {
		lines = append(lines, p.commentLine("", th.Comment))
		for _, r := range th.Replies {
			lines = append(lines, p.commentLine("  ↳ ", r))
		}
	}
	return p.write(lines)
}

func (p *Printer) commentLine(prefix string, c core.Comment) string {
	name := c.User.Name
	if name == "" {
		name = activity.DefaultUserName
	}
	return prefix + p.muted.Render(name+":") + " " + c.Content
}
