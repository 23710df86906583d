package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"productivity/internal/core"
	"productivity/internal/log"
	"productivity/internal/query"
	"productivity/internal/summary"
)

// RecentLimit is how many recent expenses and tasks the dashboard shows.
const RecentLimit = 5

type DashboardService struct {
	expenses ExpenseStore
	tasks    TaskStore
	opts     Options
}

func NewDashboardService(expenses ExpenseStore, tasks TaskStore, opts Options) *DashboardService {
	return &DashboardService{expenses: expenses, tasks: tasks, opts: opts.withDefaults(log.ComponentDashboard)}
}

// Dashboard gathers the caller's totals, charts and recent records
// concurrently; the first failure cancels the rest.
func (s *DashboardService) Dashboard(ctx context.Context, id core.Identity) (summary.Dashboard, error) {
	if err := requireIdentity(id); err != nil {
		return summary.Dashboard{}, err
	}
	scope := query.OwnerScope(id)
	base := scope.Filter()

	var (
		expenses       summary.ExpenseSummary
		tasks          summary.TaskSummary
		recentExpenses []core.Expense
		recentTasks    []core.Task
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = expenseSummary(gctx, s.expenses, base)
		return err
	})
	g.Go(func() error {
		var err error
		tasks, err = taskSummary(gctx, s.tasks, base)
		return err
	})
	g.Go(func() error {
		var err error
		recentExpenses, err = s.expenses.FindExpenses(gctx, base, query.Page{
			Number: 1, Limit: RecentLimit, Sort: query.Sort{Field: query.FieldDate, Desc: true},
		})
		return err
	})
	g.Go(func() error {
		var err error
		recentTasks, err = s.tasks.FindTasks(gctx, base, query.Page{
			Number: 1, Limit: RecentLimit, Sort: query.Sort{Field: query.FieldDueDate, Desc: true},
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return summary.Dashboard{}, fmt.Errorf("build dashboard: %w", err)
	}

	if recentExpenses == nil {
		recentExpenses = []core.Expense{}
	}
	if recentTasks == nil {
		recentTasks = []core.Task{}
	}
	return summary.Dashboard{
		ExpenseStats:   expenses.Summary,
		TaskStats:      tasks.Summary,
		ExpenseChart:   expenses.CategoryBreakdown,
		TaskChart:      tasks.StatusBreakdown,
		RecentExpenses: recentExpenses,
		RecentTasks:    recentTasks,
	}, nil
}
