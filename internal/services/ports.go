// Package services implements the API operations on top of the record store:
// owner-scoped expense and task CRUD, summaries, the dashboard, admin views
// and account management.
package services

import (
	"context"
	"fmt"
	"time"

	"productivity/internal/core"
	"productivity/internal/log"
	"productivity/internal/query"
	"productivity/internal/summary"
)

// ExpenseStore is the expense half of the record store.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, e core.Expense) error
	FindExpenses(ctx context.Context, f query.Filter, p query.Page) ([]core.Expense, error)
	FindExpensesWithOwner(ctx context.Context, f query.Filter, p query.Page) ([]core.Expense, error)
	CountExpenses(ctx context.Context, f query.Filter) (int64, error)
	GetExpense(ctx context.Context, scope query.Scope, id string) (core.Expense, error)
	UpdateExpense(ctx context.Context, scope query.Scope, id string, mutate func(*core.Expense) error) (core.Expense, error)
	DeleteExpense(ctx context.Context, scope query.Scope, id string) error
	SumExpensesBy(ctx context.Context, f query.Filter, by query.Field) ([]summary.Group, error)
}

// TaskStore is the task half of the record store.
type TaskStore interface {
	CreateTask(ctx context.Context, t core.Task) error
	FindTasks(ctx context.Context, f query.Filter, p query.Page) ([]core.Task, error)
	FindTasksWithOwner(ctx context.Context, f query.Filter, p query.Page) ([]core.Task, error)
	CountTasks(ctx context.Context, f query.Filter) (int64, error)
	GetTask(ctx context.Context, scope query.Scope, id string) (core.Task, error)
	UpdateTask(ctx context.Context, scope query.Scope, id string, mutate func(*core.Task) error) (core.Task, error)
	DeleteTask(ctx context.Context, scope query.Scope, id string) error
	CountTasksBy(ctx context.Context, f query.Filter, by query.Field) ([]summary.Group, error)
}

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u core.User) error
	GetUserByID(ctx context.Context, id string) (core.User, error)
	GetUserByEmail(ctx context.Context, email string) (core.User, error)
	FindUsers(ctx context.Context, f query.Filter, p query.Page) ([]core.User, error)
	CountUsers(ctx context.Context, f query.Filter) (int64, error)
	UpdateUser(ctx context.Context, id string, mutate func(*core.User) error) (core.User, error)
}

// Store is everything the services need from storage.
type Store interface {
	ExpenseStore
	TaskStore
	UserStore
}

// Notifier receives change events after a successful write.
type Notifier interface {
	Notify(ctx context.Context, resource, action, id, ownerID string) error
}

// Options are shared by every service constructor.
type Options struct {
	MaxPageLimit int
	Notifier     Notifier
	Logger       *log.Logger
	Now          func() time.Time
}

func (o Options) withDefaults(component string) Options {
	if o.Logger == nil {
		o.Logger = log.Discard()
	}
	o.Logger = o.Logger.WithComponent(component)
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

func (o Options) listing(l query.Listing) query.Listing {
	return l.WithMaxLimit(o.MaxPageLimit)
}

func (o Options) now() time.Time {
	return core.NormalizeTime(o.Now())
}

// requireIdentity rejects contexts that reached a service without a caller.
func requireIdentity(id core.Identity) error {
	if id.UserID == "" {
		return core.NewAuthenticationError("Authentication required")
	}
	return nil
}

// listPage fetches one page and the total count for the same filter.
func listPage[T any](
	ctx context.Context,
	resource string,
	find func(context.Context, query.Filter, query.Page) ([]T, error),
	count func(context.Context, query.Filter) (int64, error),
	f query.Filter,
	page query.Page,
) (query.Result[T], error) {
	items, err := find(ctx, f, page)
	if err != nil {
		return query.Result[T]{}, fmt.Errorf("list %s: %w", resource, err)
	}
	total, err := count(ctx, f)
	if err != nil {
		return query.Result[T]{}, fmt.Errorf("count %s: %w", resource, err)
	}
	return query.NewResult(items, total, page), nil
}
