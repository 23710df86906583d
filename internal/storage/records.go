package storage

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"productivity/internal/core"
	"productivity/internal/query"
	"productivity/internal/summary"
)

// ownerColumns are appended to record columns when owners are joined in.
var ownerColumns = []string{"COALESCE(users.name, '')", "COALESCE(users.email, '')"}

func (s *Store) pagedSelect(t table, cols []string, f query.Filter, p query.Page) (sq.SelectBuilder, error) {
	pred, err := t.where(f)
	if err != nil {
		return sq.SelectBuilder{}, err
	}
	order, err := t.orderBy(p.Sort)
	if err != nil {
		return sq.SelectBuilder{}, err
	}
	return s.sb.Select(cols...).From(t.name).Where(pred).
		OrderBy(order...).
		Limit(uint64(p.Limit)).
		Offset(uint64(p.Offset())), nil
}

func (s *Store) count(ctx context.Context, t table, f query.Filter) (int64, error) {
	pred, err := t.where(f)
	if err != nil {
		return 0, err
	}
	var n int64
	err = s.sb.Select("COUNT(*)").From(t.name).Where(pred).RunWith(s.db).QueryRowContext(ctx).Scan(&n)
	return n, err
}

// groupBy runs SELECT key, agg ... GROUP BY key ordered by key.
func (s *Store) groupBy(ctx context.Context, t table, f query.Filter, by query.Field, agg string) ([]summary.Group, error) {
	col, err := t.column(by)
	if err != nil {
		return nil, err
	}
	pred, err := t.where(f)
	if err != nil {
		return nil, err
	}

	q := s.sb.Select(col, agg).From(t.name).Where(pred).GroupBy(col).OrderBy(col)
	rows, err := q.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []summary.Group
	for rows.Next() {
		var g summary.Group
		if err := rows.Scan(&g.Key, &g.Value); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *Store) deleteRecord(ctx context.Context, t table, scope query.Scope, id, resource string) error {
	pred, err := t.where(scope.Record(id))
	if err != nil {
		return errors.Wrap(err, "delete "+t.name)
	}
	res, err := s.sb.Delete(t.name).Where(pred).RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return errors.Wrap(err, "delete "+t.name)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "delete "+t.name)
	}
	if n == 0 {
		return core.NewNotFoundError(resource)
	}
	return nil
}
