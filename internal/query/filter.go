// Package query turns request parameters into store-agnostic query
// descriptions: an ordered list of filter clauses, an ownership scope and a
// page/sort directive. Storage backends compile these into their own dialect.
package query

import (
	"net/url"
	"strings"

	"productivity/internal/core"
)

// Field names a queryable attribute using its public (JSON) name.
type Field string

const (
	FieldID            Field = "id"
	FieldOwner         Field = "userId"
	FieldTitle         Field = "title"
	FieldDescription   Field = "description"
	FieldAmount        Field = "amount"
	FieldType          Field = "type"
	FieldCategory      Field = "category"
	FieldPaymentMethod Field = "paymentMethod"
	FieldDate          Field = "date"
	FieldStatus        Field = "status"
	FieldPriority      Field = "priority"
	FieldDueDate       Field = "dueDate"
	FieldName          Field = "name"
	FieldEmail         Field = "email"
	FieldRole          Field = "role"
	FieldCreatedAt     Field = "createdAt"
	FieldUpdatedAt     Field = "updatedAt"
)

// Op is the comparison a clause applies.
type Op int

const (
	OpEq Op = iota
	OpGte
	OpLte
	// OpSearch is a case-insensitive substring match OR-ed across Fields.
	OpSearch
)

// Clause is one predicate. Value is a string, time.Time or core.Money.
type Clause struct {
	Op     Op
	Field  Field
	Fields []Field
	Value  any
}

// Filter is an ordered conjunction of clauses.
type Filter struct {
	clauses []Clause
}

// Clauses returns a copy of the clause list in insertion order.
func (f Filter) Clauses() []Clause {
	out := make([]Clause, len(f.clauses))
	copy(out, f.clauses)
	return out
}

func (f Filter) Len() int { return len(f.clauses) }

// With returns a new filter with c appended; f is left untouched.
func (f Filter) With(c ...Clause) Filter {
	out := make([]Clause, 0, len(f.clauses)+len(c))
	out = append(out, f.clauses...)
	out = append(out, c...)
	return Filter{clauses: out}
}

func Eq(field Field, v any) Clause  { return Clause{Op: OpEq, Field: field, Value: v} }
func Gte(field Field, v any) Clause { return Clause{Op: OpGte, Field: field, Value: v} }
func Lte(field Field, v any) Clause { return Clause{Op: OpLte, Field: field, Value: v} }

// Search matches term case-insensitively as a substring of any of fields.
func Search(term string, fields ...Field) Clause {
	return Clause{Op: OpSearch, Fields: fields, Value: term}
}

// ExpenseFilter builds the list/summary filter for expenses. Recognized
// parameters: type, category, paymentMethod, startDate, endDate, minAmount,
// maxAmount, search.
func ExpenseFilter(scope Scope, params url.Values) (Filter, error) {
	f := scope.Filter()
	f = f.With(exactMatches(params, FieldType, FieldCategory, FieldPaymentMethod)...)

	dates, err := rangeClauses(params, FieldDate, "startDate", "endDate", parseTimeParam)
	if err != nil {
		return Filter{}, err
	}
	f = f.With(dates...)

	amounts, err := rangeClauses(params, FieldAmount, "minAmount", "maxAmount", parseMoneyParam)
	if err != nil {
		return Filter{}, err
	}
	f = f.With(amounts...)

	if term, ok := present(params, "search"); ok {
		f = f.With(Search(term, FieldTitle, FieldDescription))
	}
	return f, nil
}

// TaskFilter builds the list/summary filter for tasks. Recognized parameters:
// status, priority, category, startDate, endDate (over dueDate), search.
func TaskFilter(scope Scope, params url.Values) (Filter, error) {
	f := scope.Filter()
	f = f.With(exactMatches(params, FieldStatus, FieldPriority, FieldCategory)...)

	dates, err := rangeClauses(params, FieldDueDate, "startDate", "endDate", parseTimeParam)
	if err != nil {
		return Filter{}, err
	}
	f = f.With(dates...)

	if term, ok := present(params, "search"); ok {
		f = f.With(Search(term, FieldTitle, FieldDescription))
	}
	return f, nil
}

// DateRangeFilter restricts scope to startDate/endDate over field. Summary
// endpoints use it so breakdowns share the time scope of their totals.
func DateRangeFilter(scope Scope, params url.Values, field Field) (Filter, error) {
	dates, err := rangeClauses(params, field, "startDate", "endDate", parseTimeParam)
	if err != nil {
		return Filter{}, err
	}
	return scope.Filter().With(dates...), nil
}

// UserFilter supports the admin user listing: role and search over name/email.
func UserFilter(params url.Values) Filter {
	var f Filter
	if role, ok := present(params, "role"); ok {
		f = f.With(Eq(FieldRole, role))
	}
	if term, ok := present(params, "search"); ok {
		f = f.With(Search(term, FieldName, FieldEmail))
	}
	return f
}

// present reports a parameter as set when its trimmed value is non-empty.
// "0" is present.
func present(params url.Values, key string) (string, bool) {
	v := strings.TrimSpace(params.Get(key))
	return v, v != ""
}

func exactMatches(params url.Values, fields ...Field) []Clause {
	var out []Clause
	for _, field := range fields {
		if v, ok := present(params, string(field)); ok {
			out = append(out, Eq(field, v))
		}
	}
	return out
}

func rangeClauses(params url.Values, field Field, minKey, maxKey string, parse func(key, v string) (any, error)) ([]Clause, error) {
	var out []Clause
	if v, ok := present(params, minKey); ok {
		parsed, err := parse(minKey, v)
		if err != nil {
			return nil, err
		}
		out = append(out, Gte(field, parsed))
	}
	if v, ok := present(params, maxKey); ok {
		parsed, err := parse(maxKey, v)
		if err != nil {
			return nil, err
		}
		out = append(out, Lte(field, parsed))
	}
	return out, nil
}

func parseTimeParam(key, v string) (any, error) {
	t, err := core.ParseTime(v)
	if err != nil {
		return nil, core.NewValidationError(key, "%s must be a valid date", key)
	}
	return t, nil
}

func parseMoneyParam(key, v string) (any, error) {
	m, err := core.ParseMoney(v)
	if err != nil {
		return nil, core.NewValidationError(key, "%s must be a number", key)
	}
	return m, nil
}
