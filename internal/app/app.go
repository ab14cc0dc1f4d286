// Package app wires configuration, storage, seed data and services into a
// ready-to-use container for the commands.
package app

import (
	"context"
	"fmt"
	"time"

	"fazenda/internal/backend"
	"fazenda/internal/cache"
	"fazenda/internal/config"
	"fazenda/internal/core"
	"fazenda/internal/log"
	"fazenda/internal/seed"
	"fazenda/internal/services"
	"fazenda/internal/store"
)

// App holds the long-lived components of one process. Store routes expense
// writes through Finance so its cached views stay current.
type App struct {
	Config    *config.Config
	Store     store.Backend
	Finance   *services.FinanceService
	Dashboard *services.DashboardService

	backend *backend.BackendResult
	caches  *cache.Manager
	logger  *log.Logger
}

// New opens the configured backend, loads DATA_DIR/seed.json into it when it
// holds no records yet, and starts cache cleanup. Close releases everything.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	if logger == nil {
		logger = log.Discard()
	}
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("create backend: %w", err)
	}

	a := &App{
		Config:  cfg,
		Store:   res.Backend,
		backend: res,
		caches:  cache.NewManager(logger),
		logger:  logger.WithComponent(log.ComponentApp),
	}

	if err := a.seed(ctx); err != nil {
		_ = res.Close()
		return nil, err
	}

	loc := cfg.Location()
	a.Finance = services.NewFinanceService(res.Backend, cfg.CacheSize, cfg.CacheTTL, logger)
	a.Finance.RegisterCaches(a.caches)
	a.Store = financeWrites{Backend: res.Backend, finance: a.Finance}
	a.Dashboard = services.NewDashboardService(res.Backend, cfg.FeedLimit, func() time.Time {
		return time.Now().In(loc)
	}, logger)
	a.caches.StartCleanup(cfg.CacheCleanupInterval)
	return a, nil
}

func (a *App) seed(ctx context.Context) error {
	empty, err := isEmpty(ctx, a.Store)
	if err != nil {
		return fmt.Errorf("inspect store: %w", err)
	}
	if !empty {
		a.logger.Debug("store already populated, seed skipped")
		return nil
	}
	data, err := seed.Load(a.Config.DataDir, a.Config.Location())
	if err != nil {
		return fmt.Errorf("load seed: %w", err)
	}
	res, err := seed.Apply(ctx, a.Store, data, a.logger)
	if err != nil {
		return fmt.Errorf("apply seed: %w", err)
	}
	a.logger.Info("seed applied", log.FieldCount, res.Applied, "skipped", res.Skipped, log.FieldPath, a.Config.DataDir)
	return nil
}

// financeWrites sends expense writes through the finance service.
type financeWrites struct {
	store.Backend
	finance *services.FinanceService
}

func (w financeWrites) AddExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	return w.finance.AddExpense(ctx, e)
}

func (w financeWrites) DeleteExpense(ctx context.Context, id string) error {
	return w.finance.DeleteExpense(ctx, id)
}

func isEmpty(ctx context.Context, b store.Backend) (bool, error) {
	checks := []func() (int, error){
		func() (int, error) { return count[core.Expense](b.ListExpenses(ctx)) },
		func() (int, error) { return count[core.Income](b.ListIncomes(ctx)) },
		func() (int, error) { return count[core.Payment](b.ListPayments(ctx)) },
		func() (int, error) { return count[core.Task](b.ListTasks(ctx)) },
		func() (int, error) { return count[core.Event](b.ListEvents(ctx)) },
		func() (int, error) { return count[core.Document](b.ListDocuments(ctx)) },
		func() (int, error) { return count[core.Comment](b.ListComments(ctx)) },
	}
	for _, check := range checks {
		n, err := check()
		if err != nil {
			return false, err
		}
		if n > 0 {
			return false, nil
		}
	}
	return true, nil
}

func count[T any](items []T, err error) (int, error) {
	return len(items), err
}

// Close stops cache cleanup and closes the backend.
func (a *App) Close() error {
	a.caches.Stop()
	return a.backend.Close()
}
