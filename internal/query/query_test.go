package query

import (
	"math"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productivity/internal/core"
)

var alice = core.Identity{UserID: "alice", Role: core.RoleUser}
var root = core.Identity{UserID: "root", Role: core.RoleAdmin}

func params(kv ...string) url.Values {
	v := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		v.Set(kv[i], kv[i+1])
	}
	return v
}

func TestExpenseFilterOwnerClauseFirst(t *testing.T) {
	f, err := ExpenseFilter(OwnerScope(alice), params("type", "expense", "category", "Food"))
	require.NoError(t, err)

	clauses := f.Clauses()
	require.Len(t, clauses, 3)
	assert.Equal(t, Eq(FieldOwner, "alice"), clauses[0])
	assert.Equal(t, Eq(FieldType, "expense"), clauses[1])
	assert.Equal(t, Eq(FieldCategory, "Food"), clauses[2])
}

func TestExpenseFilterIgnoresClientOwner(t *testing.T) {
	f, err := ExpenseFilter(OwnerScope(alice), params("userId", "mallory"))
	require.NoError(t, err)
	assert.Equal(t, []Clause{Eq(FieldOwner, "alice")}, f.Clauses())
}

func TestExpenseFilterZeroMinAmountIsPresent(t *testing.T) {
	f, err := ExpenseFilter(OwnerScope(alice), params("minAmount", "0"))
	require.NoError(t, err)

	clauses := f.Clauses()
	require.Len(t, clauses, 2)
	assert.Equal(t, Gte(FieldAmount, core.Money{Cents: 0}), clauses[1])
}

func TestExpenseFilterRanges(t *testing.T) {
	f, err := ExpenseFilter(OwnerScope(alice), params(
		"startDate", "2024-01-01",
		"endDate", "2024-01-31T23:59:59Z",
		"minAmount", "1.50",
		"maxAmount", "20",
	))
	require.NoError(t, err)

	clauses := f.Clauses()
	require.Len(t, clauses, 5)
	assert.Equal(t, Gte(FieldDate, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)), clauses[1])
	assert.Equal(t, Lte(FieldDate, time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)), clauses[2])
	assert.Equal(t, Gte(FieldAmount, core.Money{Cents: 150}), clauses[3])
	assert.Equal(t, Lte(FieldAmount, core.Money{Cents: 2000}), clauses[4])
}

func TestExpenseFilterMalformedParams(t *testing.T) {
	for _, p := range []url.Values{
		params("minAmount", "cheap"),
		params("minAmount", "1,000"),
		params("startDate", "5"),
		params("endDate", "10:30"),
		params("maxAmount", "1.2.3"),
		params("startDate", "yesterday-ish"),
		params("endDate", "31/31/2024"),
	} {
		_, err := ExpenseFilter(OwnerScope(alice), p)
		assert.Equal(t, core.KindValidation, core.KindOf(err), p.Encode())
	}
}

func TestBlankParamsAreAbsent(t *testing.T) {
	f, err := ExpenseFilter(OwnerScope(alice), params("type", "  ", "search", "", "minAmount", ""))
	require.NoError(t, err)
	assert.Equal(t, 1, f.Len())
}

func TestSearchClause(t *testing.T) {
	f, err := TaskFilter(OwnerScope(alice), params("search", "cof", "status", "pending"))
	require.NoError(t, err)

	clauses := f.Clauses()
	require.Len(t, clauses, 3)
	assert.Equal(t, Search("cof", FieldTitle, FieldDescription), clauses[2])
}

func TestTaskFilterDueDateRange(t *testing.T) {
	f, err := TaskFilter(OwnerScope(alice), params("startDate", "2024-03-01"))
	require.NoError(t, err)
	assert.Equal(t, Gte(FieldDueDate, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)), f.Clauses()[1])
}

func TestAdminScope(t *testing.T) {
	_, err := AdminScope(alice)
	assert.Equal(t, core.KindAuthorization, core.KindOf(err))

	s, err := AdminScope(root)
	require.NoError(t, err)
	assert.True(t, s.All())
	assert.Equal(t, 0, s.Filter().Len())

	f, err := ExpenseFilter(s, params("type", "income"))
	require.NoError(t, err)
	assert.Equal(t, []Clause{Eq(FieldType, "income")}, f.Clauses())
}

func TestRecordFilter(t *testing.T) {
	f := OwnerScope(alice).Record("e1")
	assert.Equal(t, []Clause{Eq(FieldID, "e1"), Eq(FieldOwner, "alice")}, f.Clauses())

	var zero Scope
	owner, restricted := zero.OwnerID()
	assert.True(t, restricted)
	assert.Empty(t, owner)
}

func TestFilterWithDoesNotAlias(t *testing.T) {
	base := OwnerScope(alice).Filter()
	a := base.With(Eq(FieldType, "income"))
	b := base.With(Eq(FieldType, "expense"))
	assert.Equal(t, 1, base.Len())
	assert.Equal(t, "income", a.Clauses()[1].Value)
	assert.Equal(t, "expense", b.Clauses()[1].Value)
}

func TestResolveDefaults(t *testing.T) {
	p, err := ExpenseListing.Resolve(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, Page{Number: 1, Limit: 10, Sort: Sort{FieldDate, true}}, p)

	p, err = TaskListing.Resolve(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, Page{Number: 1, Limit: 10, Sort: Sort{FieldDueDate, false}}, p)

	p, err = AdminExpenseListing.Resolve(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, Page{Number: 1, Limit: 20, Sort: Sort{FieldCreatedAt, true}}, p)
}

func TestResolveOverrides(t *testing.T) {
	p, err := ExpenseListing.Resolve(params("page", "3", "limit", "25", "sortBy", "amount", "sortOrder", "ASC"))
	require.NoError(t, err)
	assert.Equal(t, Page{Number: 3, Limit: 25, Sort: Sort{FieldAmount, false}}, p)
	assert.Equal(t, int64(50), p.Offset())
}

func TestOffsetSaturates(t *testing.T) {
	p, err := ExpenseListing.Resolve(params("page", "9223372036854775807"))
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), p.Offset())

	p, err = ExpenseListing.Resolve(params("page", "92233720368547759"))
	require.NoError(t, err)
	assert.Equal(t, int64(922337203685477580), p.Offset())

	assert.Equal(t, int64(0), Page{Number: 1, Limit: 10}.Offset())
}

func TestResolveClampsLimit(t *testing.T) {
	p, err := ExpenseListing.Resolve(params("limit", "5000"))
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxLimit, p.Limit)

	p, err = ExpenseListing.WithMaxLimit(30).Resolve(params("limit", "31"))
	require.NoError(t, err)
	assert.Equal(t, 30, p.Limit)
}

func TestResolveRejects(t *testing.T) {
	for _, p := range []url.Values{
		params("page", "0"),
		params("page", "-2"),
		params("page", "two"),
		params("limit", "0"),
		params("limit", "1.5"),
		params("sortBy", "password"),
		params("sortOrder", "sideways"),
	} {
		_, err := ExpenseListing.Resolve(p)
		assert.Equal(t, core.KindValidation, core.KindOf(err), p.Encode())
	}
}

func TestPagination(t *testing.T) {
	for total := int64(0); total <= 45; total++ {
		for _, limit := range []int{1, 3, 10, 20} {
			pg := NewPagination(total, Page{Number: 1, Limit: limit})
			want := total / int64(limit)
			if total%int64(limit) != 0 {
				want++
			}
			assert.Equal(t, want, pg.Pages, "total=%d limit=%d", total, limit)
		}
	}
}

func TestNewResultEmptyItems(t *testing.T) {
	r := NewResult[int](nil, 3, Page{Number: 999, Limit: 10})
	assert.NotNil(t, r.Items)
	assert.Empty(t, r.Items)
	assert.Equal(t, int64(3), r.Pagination.Total)
	assert.Equal(t, int64(1), r.Pagination.Pages)
}
