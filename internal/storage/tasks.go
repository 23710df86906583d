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

var taskColumns = []string{
	"tasks.id", "tasks.user_id", "tasks.title", "tasks.description", "tasks.status", "tasks.priority",
	"tasks.category", "tasks.due_date", "tasks.created_at", "tasks.updated_at",
}

type taskRow struct {
	status, priority string
	due              sql.NullTime
}

func taskDest(t *core.Task, r *taskRow) []any {
	return []any{
		&t.ID, &t.UserID, &t.Title, &t.Description, &r.status, &r.priority,
		&t.Category, &r.due, &t.CreatedAt, &t.UpdatedAt,
	}
}

func finishTask(t *core.Task, r taskRow) {
	t.Status = core.TaskStatus(r.status)
	t.Priority = core.TaskPriority(r.priority)
	if r.due.Valid {
		due := r.due.Time.UTC()
		t.DueDate = &due
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
}

func scanTask(row rowScanner) (core.Task, error) {
	var t core.Task
	var r taskRow
	if err := row.Scan(taskDest(&t, &r)...); err != nil {
		return core.Task{}, err
	}
	finishTask(&t, r)
	return t, nil
}

func (s *Store) CreateTask(ctx context.Context, t core.Task) error {
	q := s.sb.Insert("tasks").
		Columns("id", "user_id", "title", "description", "status", "priority", "category",
			"due_date", "created_at", "updated_at").
		Values(t.ID, t.UserID, t.Title, t.Description, string(t.Status), string(t.Priority), t.Category,
			nullTime(t.DueDate), t.CreatedAt.UTC(), t.UpdatedAt.UTC())

	_, err := q.RunWith(s.db).ExecContext(ctx)
	return errors.Wrap(err, "create task")
}

func (s *Store) FindTasks(ctx context.Context, f query.Filter, p query.Page) ([]core.Task, error) {
	q, err := s.pagedSelect(tasksTable, taskColumns, f, p)
	if err != nil {
		return nil, errors.Wrap(err, "find tasks")
	}

	rows, err := q.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "find tasks")
	}
	defer rows.Close()

	var out []core.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan task")
		}
		out = append(out, t)
	}
	return out, errors.Wrap(rows.Err(), "find tasks")
}

func (s *Store) FindTasksWithOwner(ctx context.Context, f query.Filter, p query.Page) ([]core.Task, error) {
	cols := append(append([]string{}, taskColumns...), ownerColumns...)
	q, err := s.pagedSelect(tasksTable, cols, f, p)
	if err != nil {
		return nil, errors.Wrap(err, "find tasks")
	}
	q = q.LeftJoin("users ON users.id = tasks.user_id")

	rows, err := q.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "find tasks")
	}
	defer rows.Close()

	var out []core.Task
	for rows.Next() {
		var t core.Task
		var r taskRow
		var owner core.UserRef
		if err := rows.Scan(append(taskDest(&t, &r), &owner.Name, &owner.Email)...); err != nil {
			return nil, errors.Wrap(err, "scan task")
		}
		finishTask(&t, r)
		owner.ID = t.UserID
		t.Owner = &owner
		out = append(out, t)
	}
	return out, errors.Wrap(rows.Err(), "find tasks")
}

func (s *Store) CountTasks(ctx context.Context, f query.Filter) (int64, error) {
	n, err := s.count(ctx, tasksTable, f)
	return n, errors.Wrap(err, "count tasks")
}

func (s *Store) GetTask(ctx context.Context, scope query.Scope, id string) (core.Task, error) {
	return s.getTask(ctx, s.db, scope, id)
}

func (s *Store) getTask(ctx context.Context, runner sq.BaseRunner, scope query.Scope, id string) (core.Task, error) {
	pred, err := tasksTable.where(scope.Record(id))
	if err != nil {
		return core.Task{}, errors.Wrap(err, "get task")
	}
	q := s.sb.Select(taskColumns...).From("tasks").Where(pred).Limit(1)
	t, err := scanTask(q.RunWith(runner).QueryRowContext(ctx))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Task{}, core.NewNotFoundError("Task")
	}
	if err != nil {
		return core.Task{}, errors.Wrap(err, "get task")
	}
	return t, nil
}

// UpdateTask applies mutate to the scoped task inside one transaction.
func (s *Store) UpdateTask(ctx context.Context, scope query.Scope, id string, mutate func(*core.Task) error) (core.Task, error) {
	var updated core.Task
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		t, err := s.getTask(ctx, tx, scope, id)
		if err != nil {
			return err
		}
		ownerID := t.UserID
		if err := mutate(&t); err != nil {
			return err
		}
		t.ID, t.UserID = id, ownerID

		pred, err := tasksTable.where(scope.Record(id))
		if err != nil {
			return errors.Wrap(err, "update task")
		}
		q := s.sb.Update("tasks").
			Set("title", t.Title).
			Set("description", t.Description).
			Set("status", string(t.Status)).
			Set("priority", string(t.Priority)).
			Set("category", t.Category).
			Set("due_date", nullTime(t.DueDate)).
			Set("updated_at", t.UpdatedAt.UTC()).
			Where(pred)
		res, err := q.RunWith(tx).ExecContext(ctx)
		if err != nil {
			return errors.Wrap(err, "update task")
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return core.NewNotFoundError("Task")
		}
		updated = t
		return nil
	})
	return updated, err
}

func (s *Store) DeleteTask(ctx context.Context, scope query.Scope, id string) error {
	return s.deleteRecord(ctx, tasksTable, scope, id, "Task")
}

// CountTasksBy returns COUNT(*) grouped by field for tasks matching f.
func (s *Store) CountTasksBy(ctx context.Context, f query.Filter, by query.Field) ([]summary.Group, error) {
	groups, err := s.groupBy(ctx, tasksTable, f, by, "COUNT(*)")
	return groups, errors.Wrap(err, "count tasks")
}
