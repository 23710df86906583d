package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"productivity/internal/core"
	"productivity/internal/log"
	"productivity/internal/query"
	"productivity/internal/summary"
)

// ExpenseInput is the JSON body of create and update requests. Nil fields are
// absent: create fills defaults, update leaves the stored value alone. There
// is no owner field; the owner always comes from the caller's identity.
type ExpenseInput struct {
	Title         *string     `json:"title"`
	Amount        *core.Money `json:"amount"`
	Type          *string     `json:"type"`
	Category      *string     `json:"category"`
	PaymentMethod *string     `json:"paymentMethod"`
	Date          *string     `json:"date"`
	Description   *string     `json:"description"`
}

func (in ExpenseInput) apply(e *core.Expense) error {
	if in.Title != nil {
		e.Title = strings.TrimSpace(*in.Title)
	}
	if in.Amount != nil {
		e.Amount = *in.Amount
	}
	if in.Type != nil {
		e.Type = core.ExpenseType(strings.TrimSpace(*in.Type))
	}
	if in.Category != nil {
		e.Category = strings.TrimSpace(*in.Category)
	}
	if in.PaymentMethod != nil {
		e.PaymentMethod = core.PaymentMethod(strings.TrimSpace(*in.PaymentMethod))
	}
	if in.Date != nil && strings.TrimSpace(*in.Date) != "" {
		d, err := core.ParseTime(*in.Date)
		if err != nil {
			return core.NewValidationError("date", "date must be a valid date")
		}
		e.Date = d
	}
	if in.Description != nil {
		e.Description = strings.TrimSpace(*in.Description)
	}
	return nil
}

// ExpenseService implements the owner-scoped expense operations.
type ExpenseService struct {
	store ExpenseStore
	opts  Options
}

func NewExpenseService(store ExpenseStore, opts Options) *ExpenseService {
	return &ExpenseService{store: store, opts: opts.withDefaults(log.ComponentExpense)}
}

// Create stores a new expense owned by the caller. Date defaults to now.
func (s *ExpenseService) Create(ctx context.Context, id core.Identity, in ExpenseInput) (core.Expense, error) {
	if err := requireIdentity(id); err != nil {
		return core.Expense{}, err
	}
	if in.Amount == nil {
		return core.Expense{}, core.NewValidationError("amount", "amount is required")
	}

	now := s.opts.now()
	e := core.Expense{ID: uuid.NewString(), Date: now, CreatedAt: now, UpdatedAt: now}
	if err := in.apply(&e); err != nil {
		return core.Expense{}, err
	}
	e.UserID = id.UserID
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	if err := s.store.CreateExpense(ctx, e); err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	s.opts.recordChanged(ctx, ResourceExpense, ActionCreated, e.ID, e.UserID)
	return e, nil
}

// List returns one page of the caller's expenses matching params.
func (s *ExpenseService) List(ctx context.Context, id core.Identity, params url.Values) (query.Result[core.Expense], error) {
	if err := requireIdentity(id); err != nil {
		return query.Result[core.Expense]{}, err
	}
	f, err := query.ExpenseFilter(query.OwnerScope(id), params)
	if err != nil {
		return query.Result[core.Expense]{}, err
	}
	page, err := s.opts.listing(query.ExpenseListing).Resolve(params)
	if err != nil {
		return query.Result[core.Expense]{}, err
	}
	return listPage(ctx, "expenses", s.store.FindExpenses, s.store.CountExpenses, f, page)
}

// Get returns one of the caller's expenses.
func (s *ExpenseService) Get(ctx context.Context, id core.Identity, expenseID string) (core.Expense, error) {
	if err := requireIdentity(id); err != nil {
		return core.Expense{}, err
	}
	e, err := s.store.GetExpense(ctx, query.OwnerScope(id), expenseID)
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

// Update applies the fields present in in, re-validates and returns the
// stored result.
func (s *ExpenseService) Update(ctx context.Context, id core.Identity, expenseID string, in ExpenseInput) (core.Expense, error) {
	if err := requireIdentity(id); err != nil {
		return core.Expense{}, err
	}
	e, err := s.store.UpdateExpense(ctx, query.OwnerScope(id), expenseID, func(e *core.Expense) error {
		if err := in.apply(e); err != nil {
			return err
		}
		e.UpdatedAt = s.opts.now()
		return e.Validate()
	})
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	s.opts.recordChanged(ctx, ResourceExpense, ActionUpdated, e.ID, e.UserID)
	return e, nil
}

// Delete removes one of the caller's expenses.
func (s *ExpenseService) Delete(ctx context.Context, id core.Identity, expenseID string) error {
	if err := requireIdentity(id); err != nil {
		return err
	}
	if err := s.store.DeleteExpense(ctx, query.OwnerScope(id), expenseID); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	s.opts.recordChanged(ctx, ResourceExpense, ActionDeleted, expenseID, id.UserID)
	return nil
}

// Summary totals the caller's expenses, optionally within startDate/endDate.
func (s *ExpenseService) Summary(ctx context.Context, id core.Identity, params url.Values) (summary.ExpenseSummary, error) {
	if err := requireIdentity(id); err != nil {
		return summary.ExpenseSummary{}, err
	}
	f, err := query.DateRangeFilter(query.OwnerScope(id), params, query.FieldDate)
	if err != nil {
		return summary.ExpenseSummary{}, err
	}
	return expenseSummary(ctx, s.store, f)
}

func expenseSummary(ctx context.Context, store ExpenseStore, f query.Filter) (summary.ExpenseSummary, error) {
	byType, err := store.SumExpensesBy(ctx, f, query.FieldType)
	if err != nil {
		return summary.ExpenseSummary{}, fmt.Errorf("expense summary: %w", err)
	}
	byCategory, err := store.SumExpensesBy(ctx, f.With(query.Eq(query.FieldType, string(core.TypeExpense))), query.FieldCategory)
	if err != nil {
		return summary.ExpenseSummary{}, fmt.Errorf("expense summary: %w", err)
	}
	return summary.NewExpenseSummary(byType, byCategory), nil
}
