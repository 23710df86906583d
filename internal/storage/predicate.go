package storage

import (
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"productivity/internal/core"
	"productivity/internal/query"
)

// table maps public field names to qualified columns. Only mapped fields can
// be filtered or sorted on.
type table struct {
	name     string
	columns  map[query.Field]string
	nullable map[query.Field]bool
}

func (t table) column(f query.Field) (string, error) {
	col, ok := t.columns[f]
	if !ok {
		return "", fmt.Errorf("field %q is not queryable on %s", f, t.name)
	}
	return col, nil
}

var (
	usersTable = table{
		name: "users",
		columns: map[query.Field]string{
			query.FieldID:        "users.id",
			query.FieldName:      "users.name",
			query.FieldEmail:     "users.email",
			query.FieldRole:      "users.role",
			query.FieldCreatedAt: "users.created_at",
			query.FieldUpdatedAt: "users.updated_at",
		},
	}

	expensesTable = table{
		name: "expenses",
		columns: map[query.Field]string{
			query.FieldID:            "expenses.id",
			query.FieldOwner:         "expenses.user_id",
			query.FieldTitle:         "expenses.title",
			query.FieldDescription:   "expenses.description",
			query.FieldAmount:        "expenses.amount_cents",
			query.FieldType:          "expenses.type",
			query.FieldCategory:      "expenses.category",
			query.FieldPaymentMethod: "expenses.payment_method",
			query.FieldDate:          "expenses.expense_date",
			query.FieldCreatedAt:     "expenses.created_at",
			query.FieldUpdatedAt:     "expenses.updated_at",
		},
	}

	tasksTable = table{
		name: "tasks",
		columns: map[query.Field]string{
			query.FieldID:          "tasks.id",
			query.FieldOwner:       "tasks.user_id",
			query.FieldTitle:       "tasks.title",
			query.FieldDescription: "tasks.description",
			query.FieldStatus:      "tasks.status",
			query.FieldPriority:    "tasks.priority",
			query.FieldCategory:    "tasks.category",
			query.FieldDueDate:     "tasks.due_date",
			query.FieldCreatedAt:   "tasks.created_at",
			query.FieldUpdatedAt:   "tasks.updated_at",
		},
		nullable: map[query.Field]bool{query.FieldDueDate: true},
	}
)

// where compiles the clause list into one AND predicate, in clause order.
func (t table) where(f query.Filter) (sq.And, error) {
	pred := sq.And{}
	for _, c := range f.Clauses() {
		switch c.Op {
		case query.OpEq, query.OpGte, query.OpLte:
			col, err := t.column(c.Field)
			if err != nil {
				return nil, err
			}
			v := bindValue(c.Value)
			switch c.Op {
			case query.OpEq:
				pred = append(pred, sq.Eq{col: v})
			case query.OpGte:
				pred = append(pred, sq.GtOrEq{col: v})
			default:
				pred = append(pred, sq.LtOrEq{col: v})
			}
		case query.OpSearch:
			term, _ := c.Value.(string)
			pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
			or := sq.Or{}
			for _, field := range c.Fields {
				col, err := t.column(field)
				if err != nil {
					return nil, err
				}
				or = append(or, sq.Expr("LOWER("+col+") LIKE ? ESCAPE '\\'", pattern))
			}
			pred = append(pred, or)
		default:
			return nil, fmt.Errorf("unsupported filter op %d", c.Op)
		}
	}
	return pred, nil
}

// orderBy sorts on the requested key, NULLs last in either direction, with
// the primary key as tiebreaker so offsets are stable.
func (t table) orderBy(s query.Sort) ([]string, error) {
	col, err := t.column(s.Field)
	if err != nil {
		return nil, err
	}
	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}
	var out []string
	if t.nullable[s.Field] {
		out = append(out, "("+col+" IS NULL) ASC")
	}
	return append(out, col+" "+dir, t.name+".id ASC"), nil
}

func bindValue(v any) any {
	switch x := v.(type) {
	case core.Money:
		return x.Cents
	case time.Time:
		return x.UTC()
	default:
		return v
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
