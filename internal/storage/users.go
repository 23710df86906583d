package storage

import (
	"context"
	"database/sql"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"productivity/internal/core"
	"productivity/internal/query"
)

var userColumns = []string{
	"users.id", "users.name", "users.email", "users.role", "users.password_hash",
	"users.refresh_token_hash", "users.created_at", "users.updated_at",
}

func scanUser(row rowScanner) (core.User, error) {
	var u core.User
	var role string
	err := row.Scan(&u.ID, &u.Name, &u.Email, &role, &u.PasswordHash, &u.RefreshTokenHash, &u.CreatedAt, &u.UpdatedAt)
	u.Role = core.Role(role)
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, err
}

// CreateUser inserts u. A duplicate email is reported as a conflict.
func (s *Store) CreateUser(ctx context.Context, u core.User) error {
	q := s.sb.Insert("users").
		Columns("id", "name", "email", "role", "password_hash", "refresh_token_hash", "created_at", "updated_at").
		Values(u.ID, u.Name, u.Email, string(u.Role), u.PasswordHash, u.RefreshTokenHash, u.CreatedAt.UTC(), u.UpdatedAt.UTC())

	_, err := q.RunWith(s.db).ExecContext(ctx)
	if isUniqueViolation(err) {
		return core.NewConflictError("email", "Email is already registered")
	}
	return errors.Wrap(err, "create user")
}

func (s *Store) GetUserByID(ctx context.Context, id string) (core.User, error) {
	return s.getUser(ctx, s.db, sq.Eq{"users.id": id})
}

// GetUserByEmail looks up a normalized address.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	return s.getUser(ctx, s.db, sq.Eq{"users.email": core.NormalizeEmail(email)})
}

func (s *Store) getUser(ctx context.Context, runner sq.BaseRunner, pred sq.Sqlizer) (core.User, error) {
	q := s.sb.Select(userColumns...).From("users").Where(pred).Limit(1)
	u, err := scanUser(q.RunWith(runner).QueryRowContext(ctx))
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.NewNotFoundError("User")
	}
	if err != nil {
		return core.User{}, errors.Wrap(err, "get user")
	}
	return u, nil
}

// FindUsers returns one page of users matching f.
func (s *Store) FindUsers(ctx context.Context, f query.Filter, p query.Page) ([]core.User, error) {
	pred, err := usersTable.where(f)
	if err != nil {
		return nil, errors.Wrap(err, "find users")
	}
	order, err := usersTable.orderBy(p.Sort)
	if err != nil {
		return nil, errors.Wrap(err, "find users")
	}

	q := s.sb.Select(userColumns...).From("users").Where(pred).
		OrderBy(order...).Limit(uint64(p.Limit)).Offset(uint64(p.Offset()))

	rows, err := q.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "find users")
	}
	defer rows.Close()

	var out []core.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan user")
		}
		out = append(out, u)
	}
	return out, errors.Wrap(rows.Err(), "find users")
}

func (s *Store) CountUsers(ctx context.Context, f query.Filter) (int64, error) {
	pred, err := usersTable.where(f)
	if err != nil {
		return 0, errors.Wrap(err, "count users")
	}
	var n int64
	err = s.sb.Select("COUNT(*)").From("users").Where(pred).RunWith(s.db).QueryRowContext(ctx).Scan(&n)
	return n, errors.Wrap(err, "count users")
}

// UpdateUser loads the user, applies mutate and writes the result back in one
// transaction. Email changes that collide with another account are conflicts.
func (s *Store) UpdateUser(ctx context.Context, id string, mutate func(*core.User) error) (core.User, error) {
	var updated core.User
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		u, err := s.getUser(ctx, tx, sq.Eq{"users.id": id})
		if err != nil {
			return err
		}
		if err := mutate(&u); err != nil {
			return err
		}

		q := s.sb.Update("users").
			Set("name", u.Name).
			Set("email", u.Email).
			Set("role", string(u.Role)).
			Set("password_hash", u.PasswordHash).
			Set("refresh_token_hash", u.RefreshTokenHash).
			Set("updated_at", u.UpdatedAt.UTC()).
			Where(sq.Eq{"users.id": id})
		if _, err := q.RunWith(tx).ExecContext(ctx); err != nil {
			if isUniqueViolation(err) {
				return core.NewConflictError("email", "Email is already registered")
			}
			return errors.Wrap(err, "update user")
		}
		updated = u
		return nil
	})
	return updated, err
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
