package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validExpense() Expense {
	return Expense{
		Title:         "Coffee",
		Amount:        Money{Cents: 500},
		Type:          TypeExpense,
		Category:      "Food",
		PaymentMethod: PaymentCash,
		Date:          time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		UserID:        "u1",
	}
}

func TestExpenseValidate(t *testing.T) {
	require.NoError(t, validExpense().Validate())

	cases := []struct {
		name  string
		mut   func(*Expense)
		field string
	}{
		{"blank title", func(e *Expense) { e.Title = "  " }, "title"},
		{"long title", func(e *Expense) { e.Title = strings.Repeat("x", MaxTitleLength+1) }, "title"},
		{"negative amount", func(e *Expense) { e.Amount = Money{Cents: -1} }, "amount"},
		{"bad type", func(e *Expense) { e.Type = "refund" }, "type"},
		{"missing category", func(e *Expense) { e.Category = "" }, "category"},
		{"bad payment method", func(e *Expense) { e.PaymentMethod = "Cheque" }, "paymentMethod"},
		{"zero date", func(e *Expense) { e.Date = time.Time{} }, "date"},
		{"no owner", func(e *Expense) { e.UserID = "" }, "userId"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := validExpense()
			tc.mut(&e)
			err := e.Validate()
			var de *Error
			require.True(t, errors.As(err, &de))
			assert.Equal(t, KindValidation, de.Kind)
			assert.Equal(t, tc.field, de.Field)
		})
	}
}

func TestZeroAmountIsValid(t *testing.T) {
	e := validExpense()
	e.Amount = Money{}
	assert.NoError(t, e.Validate())
}

func TestTaskValidate(t *testing.T) {
	task := Task{Title: "Write report", Status: StatusPending, Priority: PriorityMedium, UserID: "u1"}
	require.NoError(t, task.Validate())

	task.Status = "blocked"
	assert.Equal(t, KindValidation, KindOf(task.Validate()))

	task.Status = StatusCompleted
	task.Priority = "urgent"
	assert.Equal(t, KindValidation, KindOf(task.Validate()))
}

func TestUserValidate(t *testing.T) {
	u := User{Name: "Ana", Email: "ana@example.com", Role: RoleUser}
	require.NoError(t, u.Validate())

	for _, email := range []string{"ana", "ana@", "@example.com", "ana@example", "a na@example.com"} {
		u.Email = email
		assert.Error(t, u.Validate(), email)
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ana@example.com", NormalizeEmail("  Ana@Example.COM "))
}

func TestErrorKinds(t *testing.T) {
	err := fmt.Errorf("get expense: %w", NewNotFoundError("Expense"))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrForbidden))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "get expense: Expense not found", err.Error())

	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestParseTime(t *testing.T) {
	got, err := ParseTime("2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseTime("2024-01-15T10:30:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC), got)

	got, err = ParseTime("2024-01-15 10:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), got)

	for _, bad := range []string{"not-a-date", "5", "10:30", "12:00:00"} {
		_, err = ParseTime(bad)
		assert.Error(t, err, bad)
	}
}
