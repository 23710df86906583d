package storage

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"productivity/internal/core"
	"productivity/internal/query"
	"productivity/internal/summary"
)

var expenseColumns = []string{
	"expenses.id", "expenses.user_id", "expenses.title", "expenses.amount_cents", "expenses.type",
	"expenses.category", "expenses.payment_method", "expenses.expense_date", "expenses.description",
	"expenses.created_at", "expenses.updated_at",
}

func expenseDest(e *core.Expense, typ, method *string) []any {
	return []any{
		&e.ID, &e.UserID, &e.Title, &e.Amount.Cents, typ, &e.Category, method,
		&e.Date, &e.Description, &e.CreatedAt, &e.UpdatedAt,
	}
}

func finishExpense(e *core.Expense, typ, method string) {
	e.Type = core.ExpenseType(typ)
	e.PaymentMethod = core.PaymentMethod(method)
	e.Date = e.Date.UTC()
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var e core.Expense
	var typ, method string
	if err := row.Scan(expenseDest(&e, &typ, &method)...); err != nil {
		return core.Expense{}, err
	}
	finishExpense(&e, typ, method)
	return e, nil
}

// CreateExpense inserts e as given; ids and timestamps are assigned by the caller.
func (s *Store) CreateExpense(ctx context.Context, e core.Expense) error {
	q := s.sb.Insert("expenses").
		Columns("id", "user_id", "title", "amount_cents", "type", "category", "payment_method",
			"expense_date", "description", "created_at", "updated_at").
		Values(e.ID, e.UserID, e.Title, e.Amount.Cents, string(e.Type), e.Category, string(e.PaymentMethod),
			e.Date.UTC(), e.Description, e.CreatedAt.UTC(), e.UpdatedAt.UTC())

	_, err := q.RunWith(s.db).ExecContext(ctx)
	return errors.Wrap(err, "create expense")
}

// FindExpenses returns one page of expenses matching f, sorted per p.
func (s *Store) FindExpenses(ctx context.Context, f query.Filter, p query.Page) ([]core.Expense, error) {
	q, err := s.pagedSelect(expensesTable, expenseColumns, f, p)
	if err != nil {
		return nil, errors.Wrap(err, "find expenses")
	}

	rows, err := q.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "find expenses")
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan expense")
		}
		out = append(out, e)
	}
	return out, errors.Wrap(rows.Err(), "find expenses")
}

// FindExpensesWithOwner is FindExpenses with each record's owner attached.
// Records whose owner no longer exists carry an owner with only the id set.
func (s *Store) FindExpensesWithOwner(ctx context.Context, f query.Filter, p query.Page) ([]core.Expense, error) {
	cols := append(append([]string{}, expenseColumns...), ownerColumns...)
	q, err := s.pagedSelect(expensesTable, cols, f, p)
	if err != nil {
		return nil, errors.Wrap(err, "find expenses")
	}
	q = q.LeftJoin("users ON users.id = expenses.user_id")

	rows, err := q.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "find expenses")
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		var e core.Expense
		var typ, method string
		var owner core.UserRef
		dest := append(expenseDest(&e, &typ, &method), &owner.Name, &owner.Email)
		if err := rows.Scan(dest...); err != nil {
			return nil, errors.Wrap(err, "scan expense")
		}
		finishExpense(&e, typ, method)
		owner.ID = e.UserID
		e.Owner = &owner
		out = append(out, e)
	}
	return out, errors.Wrap(rows.Err(), "find expenses")
}

func (s *Store) CountExpenses(ctx context.Context, f query.Filter) (int64, error) {
	n, err := s.count(ctx, expensesTable, f)
	return n, errors.Wrap(err, "count expenses")
}

// GetExpense returns the expense with id inside scope. Records outside the
// scope are reported exactly like missing ones.
func (s *Store) GetExpense(ctx context.Context, scope query.Scope, id string) (core.Expense, error) {
	return s.getExpense(ctx, s.db, scope, id)
}

func (s *Store) getExpense(ctx context.Context, runner sq.BaseRunner, scope query.Scope, id string) (core.Expense, error) {
	pred, err := expensesTable.where(scope.Record(id))
	if err != nil {
		return core.Expense{}, errors.Wrap(err, "get expense")
	}
	q := s.sb.Select(expenseColumns...).From("expenses").Where(pred).Limit(1)
	e, err := scanExpense(q.RunWith(runner).QueryRowContext(ctx))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, core.NewNotFoundError("Expense")
	}
	if err != nil {
		return core.Expense{}, errors.Wrap(err, "get expense")
	}
	return e, nil
}

// UpdateExpense applies mutate to the scoped record and persists the result
// in one transaction. The id and owner of the record never change.
func (s *Store) UpdateExpense(ctx context.Context, scope query.Scope, id string, mutate func(*core.Expense) error) (core.Expense, error) {
	var updated core.Expense
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		e, err := s.getExpense(ctx, tx, scope, id)
		if err != nil {
			return err
		}
		ownerID := e.UserID
		if err := mutate(&e); err != nil {
			return err
		}
		e.ID, e.UserID = id, ownerID

		pred, err := expensesTable.where(scope.Record(id))
		if err != nil {
			return errors.Wrap(err, "update expense")
		}
		q := s.sb.Update("expenses").
			Set("title", e.Title).
			Set("amount_cents", e.Amount.Cents).
			Set("type", string(e.Type)).
			Set("category", e.Category).
			Set("payment_method", string(e.PaymentMethod)).
			Set("expense_date", e.Date.UTC()).
			Set("description", e.Description).
			Set("updated_at", e.UpdatedAt.UTC()).
			Where(pred)
		res, err := q.RunWith(tx).ExecContext(ctx)
		if err != nil {
			return errors.Wrap(err, "update expense")
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return core.NewNotFoundError("Expense")
		}
		updated = e
		return nil
	})
	return updated, err
}

// DeleteExpense removes the scoped record; a miss is a not-found error.
func (s *Store) DeleteExpense(ctx context.Context, scope query.Scope, id string) error {
	return s.deleteRecord(ctx, expensesTable, scope, id, "Expense")
}

// SumExpensesBy returns SUM(amount) grouped by field for records matching f.
func (s *Store) SumExpensesBy(ctx context.Context, f query.Filter, by query.Field) ([]summary.Group, error) {
	groups, err := s.groupBy(ctx, expensesTable, f, by, "COALESCE(SUM(expenses.amount_cents), 0)")
	return groups, errors.Wrap(err, "sum expenses")
}
