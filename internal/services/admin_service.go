package services

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"productivity/internal/cache"
	"productivity/internal/core"
	"productivity/internal/log"
	"productivity/internal/query"
	"productivity/internal/summary"
)

const statsKey = "admin:stats"

// AdminService serves the cross-owner views. Every method checks the caller
// is an admin before touching the store.
type AdminService struct {
	store Store
	opts  Options
	stats *cache.LRUCache[summary.AdminStats]
	group singleflight.Group
}

// statsTimeout bounds one shared Stats computation.
const statsTimeout = 10 * time.Second

// NewAdminService caches Stats for statsTTL; a non-positive TTL disables the cache.
func NewAdminService(store Store, statsTTL time.Duration, opts Options) *AdminService {
	return &AdminService{
		store: store,
		opts:  opts.withDefaults(log.ComponentAdmin),
		stats: cache.NewLRUCache[summary.AdminStats](1, statsTTL),
	}
}

// StatsCache exposes the stats cache so it can join the cleanup manager.
func (s *AdminService) StatsCache() *cache.LRUCache[summary.AdminStats] {
	return s.stats
}

func (s *AdminService) ListUsers(ctx context.Context, id core.Identity, params url.Values) (query.Result[core.User], error) {
	if _, err := query.AdminScope(id); err != nil {
		return query.Result[core.User]{}, err
	}
	page, err := s.opts.listing(query.AdminUserListing).Resolve(params)
	if err != nil {
		return query.Result[core.User]{}, err
	}
	return listPage(ctx, "users", s.store.FindUsers, s.store.CountUsers, query.UserFilter(params), page)
}

// ListExpenses lists expenses of every owner, each with its owner attached.
func (s *AdminService) ListExpenses(ctx context.Context, id core.Identity, params url.Values) (query.Result[core.Expense], error) {
	scope, err := query.AdminScope(id)
	if err != nil {
		return query.Result[core.Expense]{}, err
	}
	f, err := query.ExpenseFilter(scope, params)
	if err != nil {
		return query.Result[core.Expense]{}, err
	}
	page, err := s.opts.listing(query.AdminExpenseListing).Resolve(params)
	if err != nil {
		return query.Result[core.Expense]{}, err
	}
	return listPage(ctx, "expenses", s.store.FindExpensesWithOwner, s.store.CountExpenses, f, page)
}

// ListTasks lists tasks of every owner, each with its owner attached.
func (s *AdminService) ListTasks(ctx context.Context, id core.Identity, params url.Values) (query.Result[core.Task], error) {
	scope, err := query.AdminScope(id)
	if err != nil {
		return query.Result[core.Task]{}, err
	}
	f, err := query.TaskFilter(scope, params)
	if err != nil {
		return query.Result[core.Task]{}, err
	}
	page, err := s.opts.listing(query.AdminTaskListing).Resolve(params)
	if err != nil {
		return query.Result[core.Task]{}, err
	}
	return listPage(ctx, "tasks", s.store.FindTasksWithOwner, s.store.CountTasks, f, page)
}

// Stats returns system-wide counts and summaries. Concurrent callers share
// one computation; the result is cached for the configured TTL.
func (s *AdminService) Stats(ctx context.Context, id core.Identity) (summary.AdminStats, error) {
	scope, err := query.AdminScope(id)
	if err != nil {
		return summary.AdminStats{}, err
	}
	if stats, ok := s.stats.Get(statsKey); ok {
		return stats, nil
	}

	v, err, shared := s.group.Do(statsKey, func() (any, error) {
		// Waiters share this computation, so it must outlive the caller that started it.
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), statsTimeout)
		defer cancel()
		stats, err := s.computeStats(cctx, scope.Filter())
		if err != nil {
			return summary.AdminStats{}, err
		}
		s.stats.Set(statsKey, stats)
		return stats, nil
	})
	if err != nil {
		return summary.AdminStats{}, fmt.Errorf("admin stats: %w", err)
	}
	if shared {
		s.opts.Logger.DebugContext(ctx, "Shared admin stats computation")
	}
	return v.(summary.AdminStats), nil
}

func (s *AdminService) computeStats(ctx context.Context, f query.Filter) (summary.AdminStats, error) {
	var (
		stats    summary.AdminStats
		expenses summary.ExpenseSummary
		byType   []summary.Group
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats.TotalUsers, err = s.store.CountUsers(gctx, query.Filter{})
		return err
	})
	g.Go(func() error {
		var err error
		stats.TotalExpenses, err = s.store.CountExpenses(gctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		stats.TotalTasks, err = s.store.CountTasks(gctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = expenseSummary(gctx, s.store, f)
		return err
	})
	g.Go(func() error {
		var err error
		byType, err = s.store.SumExpensesBy(gctx, f, query.FieldType)
		return err
	})
	g.Go(func() error {
		var err error
		stats.TaskSummary, err = taskSummary(gctx, s.store, f)
		return err
	})
	if err := g.Wait(); err != nil {
		return summary.AdminStats{}, err
	}

	stats.ExpenseSummary = expenses
	stats.ExpenseByType = summary.NewTypeTotals(byType).Breakdown()
	return stats, nil
}
