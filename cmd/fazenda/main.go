package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"fazenda/internal/app"
	"fazenda/internal/cli"
	"fazenda/internal/log"
	"fazenda/internal/report"
)

const usage = `usage: fazenda [-year YYYY] [-month M] <command>

commands:
  sums      expense totals per month of the year
  month     expenses counted against one month
  overview  income, expenses and balance of one month
  feed      recent activity
  tasks     task board
  comments  comment threads
`

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(nil)
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg)

	now := time.Now().In(cfg.Location())
	fs := flag.NewFlagSet("fazenda", flag.ExitOnError)
	year := fs.Int("year", now.Year(), "calendar year")
	month := fs.Int("month", int(now.Month()), "calendar month (1-12)")
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	_ = fs.Parse(os.Args[1:])

	command := "overview"
	if fs.NArg() > 0 {
		command = fs.Arg(0)
	}

	ctx, stop := cli.SignalContext(context.Background(), logger)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize application", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	err = run(ctx, a, report.New(os.Stdout), command, *year, *month)
	if cerr := a.Close(); cerr != nil {
		logger.Warn("Failed to close backend", log.FieldError, cerr)
	}
	if err != nil {
		logger.Error("Command failed", log.FieldError, err, "command", command)
		os.Exit(1)
	}
}

func run(ctx context.Context, a *app.App, p *report.Printer, command string, year, month int) error {
	switch command {
	case "sums":
		rows, err := a.Finance.MonthlySums(ctx, year)
		if err != nil {
			return err
		}
		return p.MonthlySums(year, rows)
	case "month":
		rows, err := a.Finance.ExpensesForMonth(ctx, year, month)
		if err != nil {
			return err
		}
		return p.Month(year, month, rows)
	case "overview":
		ov, err := a.Finance.MonthOverview(ctx, year, month)
		if err != nil {
			return err
		}
		return p.Overview(ov)
	case "feed":
		entries, err := a.Dashboard.RecentActivity(ctx)
		if err != nil {
			return err
		}
		return p.Feed(entries)
	case "tasks":
		tasks, err := a.Store.ListTasks(ctx)
		if err != nil {
			return err
		}
		sum, err := a.Dashboard.TaskSummary(ctx)
		if err != nil {
			return err
		}
		return p.Tasks(tasks, sum)
	case "comments":
		threads, err := a.Dashboard.Threads(ctx)
		if err != nil {
			return err
		}
		return p.Threads(threads)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}
