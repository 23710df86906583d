// Package summary folds grouped store rows into the typed totals, breakdowns
// and dashboard shapes returned by the API.
package summary

import (
	"sort"

	"productivity/internal/core"
)

// Group is one raw aggregation row: a group key and its summed value
// (cents for expense sums, a count for task statuses).
type Group struct {
	Key   string
	Value int64
}

// TypeTotals maps expense types to their summed amount. Known types are
// always present; unknown keys from the store are kept.
type TypeTotals map[core.ExpenseType]core.Money

// NewTypeTotals seeds every known type at zero and adds groups.
func NewTypeTotals(groups []Group) TypeTotals {
	t := make(TypeTotals, len(core.ExpenseTypes))
	for _, typ := range core.ExpenseTypes {
		t[typ] = core.Money{}
	}
	for _, g := range groups {
		k := core.ExpenseType(g.Key)
		t[k] = t[k].Add(core.Money{Cents: g.Value})
	}
	return t
}

// ExpenseTotals is the income/expense/net triple.
type ExpenseTotals struct {
	TotalIncome  core.Money `json:"totalIncome"`
	TotalExpense core.Money `json:"totalExpense"`
	NetBalance   core.Money `json:"netBalance"`
}

// Totals derives netBalance = income - expense.
func (t TypeTotals) Totals() ExpenseTotals {
	income := t[core.TypeIncome]
	expense := t[core.TypeExpense]
	return ExpenseTotals{TotalIncome: income, TotalExpense: expense, NetBalance: income.Sub(expense)}
}

// TypeTotal is one entry of a per-type breakdown.
type TypeTotal struct {
	Type  core.ExpenseType `json:"type"`
	Total core.Money       `json:"total"`
}

// Breakdown lists known types in canonical order, then unknown types by name.
func (t TypeTotals) Breakdown() []TypeTotal {
	out := make([]TypeTotal, 0, len(t))
	for _, typ := range core.ExpenseTypes {
		out = append(out, TypeTotal{Type: typ, Total: t[typ]})
	}
	for _, k := range unknownKeys(t, func(k core.ExpenseType) bool { return k.Valid() }) {
		out = append(out, TypeTotal{Type: k, Total: t[k]})
	}
	return out
}

// CategoryTotal is one entry of the expense-by-category breakdown.
type CategoryTotal struct {
	Category string     `json:"category"`
	Total    core.Money `json:"total"`
}

// CategoryBreakdown merges duplicate keys and sorts by total descending,
// breaking ties by category name.
func CategoryBreakdown(groups []Group) []CategoryTotal {
	sums := make(map[string]int64, len(groups))
	for _, g := range groups {
		sums[g.Key] += g.Value
	}
	out := make([]CategoryTotal, 0, len(sums))
	for k, v := range sums {
		out = append(out, CategoryTotal{Category: k, Total: core.Money{Cents: v}})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total.Cents != out[j].Total.Cents {
			return out[i].Total.Cents > out[j].Total.Cents
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// ExpenseSummary is the response of the expense summary endpoint.
type ExpenseSummary struct {
	Summary           ExpenseTotals   `json:"summary"`
	CategoryBreakdown []CategoryTotal `json:"categoryBreakdown"`
}

// NewExpenseSummary combines the by-type and by-category (type=expense) rows.
func NewExpenseSummary(byType, byCategory []Group) ExpenseSummary {
	return ExpenseSummary{
		Summary:           NewTypeTotals(byType).Totals(),
		CategoryBreakdown: CategoryBreakdown(byCategory),
	}
}

// StatusCounts maps task statuses to counts, seeded with every known status.
type StatusCounts map[core.TaskStatus]int64

func NewStatusCounts(groups []Group) StatusCounts {
	c := make(StatusCounts, len(core.TaskStatuses))
	for _, s := range core.TaskStatuses {
		c[s] = 0
	}
	for _, g := range groups {
		c[core.TaskStatus(g.Key)] += g.Value
	}
	return c
}

// Total is the sum over every status, known or not.
func (c StatusCounts) Total() int64 {
	var n int64
	for _, v := range c {
		n += v
	}
	return n
}

// StatusCount is one entry of the task-by-status breakdown.
type StatusCount struct {
	Status core.TaskStatus `json:"status"`
	Count  int64           `json:"count"`
}

// Breakdown lists known statuses in canonical order, then unknown ones by name.
func (c StatusCounts) Breakdown() []StatusCount {
	out := make([]StatusCount, 0, len(c))
	for _, s := range core.TaskStatuses {
		out = append(out, StatusCount{Status: s, Count: c[s]})
	}
	for _, k := range unknownKeys(c, func(k core.TaskStatus) bool { return k.Valid() }) {
		out = append(out, StatusCount{Status: k, Count: c[k]})
	}
	return out
}

// TaskTotals is the headline task count block.
type TaskTotals struct {
	TotalTasks      int64 `json:"totalTasks"`
	PendingTasks    int64 `json:"pendingTasks"`
	InProgressTasks int64 `json:"inProgressTasks"`
	CompletedTasks  int64 `json:"completedTasks"`
}

func (c StatusCounts) Totals() TaskTotals {
	return TaskTotals{
		TotalTasks:      c.Total(),
		PendingTasks:    c[core.StatusPending],
		InProgressTasks: c[core.StatusInProgress],
		CompletedTasks:  c[core.StatusCompleted],
	}
}

// TaskSummary is the response of the task summary endpoint.
type TaskSummary struct {
	Summary         TaskTotals    `json:"summary"`
	StatusBreakdown []StatusCount `json:"statusBreakdown"`
}

func NewTaskSummary(byStatus []Group) TaskSummary {
	c := NewStatusCounts(byStatus)
	return TaskSummary{Summary: c.Totals(), StatusBreakdown: c.Breakdown()}
}

// Dashboard is the per-user overview.
type Dashboard struct {
	ExpenseStats   ExpenseTotals   `json:"expenseStats"`
	TaskStats      TaskTotals      `json:"taskStats"`
	ExpenseChart   []CategoryTotal `json:"expenseChart"`
	TaskChart      []StatusCount   `json:"taskChart"`
	RecentExpenses []core.Expense  `json:"recentExpenses"`
	RecentTasks    []core.Task     `json:"recentTasks"`
}

// AdminStats is the system-wide overview.
type AdminStats struct {
	TotalUsers     int64          `json:"totalUsers"`
	TotalExpenses  int64          `json:"totalExpenses"`
	TotalTasks     int64          `json:"totalTasks"`
	ExpenseSummary ExpenseSummary `json:"expenseSummary"`
	ExpenseByType  []TypeTotal    `json:"expenseByType"`
	TaskSummary    TaskSummary    `json:"taskSummary"`
}

func unknownKeys[K ~string, V any](m map[K]V, known func(K) bool) []K {
	var keys []K
	for k := range m {
		if !known(k) {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
