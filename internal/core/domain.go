// Package core holds the domain model shared by storage, services and transport:
// users, expenses, tasks, their enumerations and validation rules.
package core

import (
	"strings"
	"time"
)

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"

	TypeIncome  ExpenseType = "income"
	TypeExpense ExpenseType = "expense"

	PaymentCash         PaymentMethod = "Cash"
	PaymentCard         PaymentMethod = "Card"
	PaymentUPI          PaymentMethod = "UPI"
	PaymentBankTransfer PaymentMethod = "Bank Transfer"

	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"

	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

const (
	MaxTitleLength       = 200
	MaxCategoryLength    = 100
	MaxDescriptionLength = 1000
	MaxNameLength        = 100
	MinPasswordLength    = 6
)

type (
	Role          string
	ExpenseType   string
	PaymentMethod string
	TaskStatus    string
	TaskPriority  string

	// Identity is the authenticated caller of a request.
	Identity struct {
		UserID string
		Role   Role
	}

	User struct {
		ID               string    `json:"id"`
		Name             string    `json:"name"`
		Email            string    `json:"email"`
		Role             Role      `json:"role"`
		PasswordHash     string    `json:"-"`
		RefreshTokenHash string    `json:"-"`
		CreatedAt        time.Time `json:"createdAt"`
		UpdatedAt        time.Time `json:"updatedAt"`
	}

	// UserRef is the public projection of a record owner in admin listings.
	UserRef struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}

	Expense struct {
		ID            string        `json:"id"`
		Title         string        `json:"title"`
		Amount        Money         `json:"amount"`
		Type          ExpenseType   `json:"type"`
		Category      string        `json:"category"`
		PaymentMethod PaymentMethod `json:"paymentMethod"`
		Date          time.Time     `json:"date"`
		Description   string        `json:"description"`
		UserID        string        `json:"userId"`
		Owner         *UserRef      `json:"owner,omitempty"`
		CreatedAt     time.Time     `json:"createdAt"`
		UpdatedAt     time.Time     `json:"updatedAt"`
	}

	Task struct {
		ID          string       `json:"id"`
		Title       string       `json:"title"`
		Description string       `json:"description"`
		Status      TaskStatus   `json:"status"`
		Priority    TaskPriority `json:"priority"`
		Category    string       `json:"category"`
		DueDate     *time.Time   `json:"dueDate"`
		UserID      string       `json:"userId"`
		Owner       *UserRef     `json:"owner,omitempty"`
		CreatedAt   time.Time    `json:"createdAt"`
		UpdatedAt   time.Time    `json:"updatedAt"`
	}
)

// ExpenseTypes lists the known expense types in canonical order.
var ExpenseTypes = []ExpenseType{TypeIncome, TypeExpense}

// PaymentMethods lists the accepted payment methods.
var PaymentMethods = []PaymentMethod{PaymentCash, PaymentCard, PaymentUPI, PaymentBankTransfer}

// TaskStatuses lists the known task statuses in canonical order.
var TaskStatuses = []TaskStatus{StatusPending, StatusInProgress, StatusCompleted}

// TaskPriorities lists the accepted priorities.
var TaskPriorities = []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh}

func (r Role) Valid() bool { return r == RoleUser || r == RoleAdmin }

func (t ExpenseType) Valid() bool { return t == TypeIncome || t == TypeExpense }

func (p PaymentMethod) Valid() bool {
	for _, m := range PaymentMethods {
		if p == m {
			return true
		}
	}
	return false
}

func (s TaskStatus) Valid() bool {
	for _, v := range TaskStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func (p TaskPriority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// Ref returns the public projection of u.
func (u User) Ref() UserRef {
	return UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
}

// NormalizeEmail trims and lower-cases an address; emails are unique case-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate checks the user profile fields. Password rules live with the account service.
func (u User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return NewValidationError("name", "name is required")
	}
	if len(u.Name) > MaxNameLength {
		return NewValidationError("name", "name must be at most %d characters", MaxNameLength)
	}
	if u.Email == "" {
		return NewValidationError("email", "email is required")
	}
	if !validEmail(u.Email) {
		return NewValidationError("email", "email is not valid")
	}
	if !u.Role.Valid() {
		return NewValidationError("role", "role must be one of: user, admin")
	}
	return nil
}

// Validate checks an expense before it is written.
func (e Expense) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return NewValidationError("title", "title is required")
	}
	if len(e.Title) > MaxTitleLength {
		return NewValidationError("title", "title must be at most %d characters", MaxTitleLength)
	}
	if e.Amount.Cents < 0 {
		return NewValidationError("amount", "amount must be greater than or equal to 0")
	}
	if !e.Type.Valid() {
		return NewValidationError("type", "type must be one of: income, expense")
	}
	if strings.TrimSpace(e.Category) == "" {
		return NewValidationError("category", "category is required")
	}
	if len(e.Category) > MaxCategoryLength {
		return NewValidationError("category", "category must be at most %d characters", MaxCategoryLength)
	}
	if !e.PaymentMethod.Valid() {
		return NewValidationError("paymentMethod", "paymentMethod must be one of: Cash, Card, UPI, Bank Transfer")
	}
	if e.Date.IsZero() {
		return NewValidationError("date", "date is required")
	}
	if len(e.Description) > MaxDescriptionLength {
		return NewValidationError("description", "description must be at most %d characters", MaxDescriptionLength)
	}
	if e.UserID == "" {
		return NewValidationError("userId", "owner is required")
	}
	return nil
}

// Validate checks a task before it is written.
func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return NewValidationError("title", "title is required")
	}
	if len(t.Title) > MaxTitleLength {
		return NewValidationError("title", "title must be at most %d characters", MaxTitleLength)
	}
	if len(t.Description) > MaxDescriptionLength {
		return NewValidationError("description", "description must be at most %d characters", MaxDescriptionLength)
	}
	if !t.Status.Valid() {
		return NewValidationError("status", "status must be one of: pending, in-progress, completed")
	}
	if !t.Priority.Valid() {
		return NewValidationError("priority", "priority must be one of: low, medium, high")
	}
	if len(t.Category) > MaxCategoryLength {
		return NewValidationError("category", "category must be at most %d characters", MaxCategoryLength)
	}
	if t.UserID == "" {
		return NewValidationError("userId", "owner is required")
	}
	return nil
}

func validEmail(s string) bool {
	at := strings.LastIndex(s, "@")
	if at < 1 || at == len(s)-1 {
		return false
	}
	domain := s[at+1:]
	return strings.Contains(domain, ".") && !strings.ContainsAny(s, " \t\r\n") &&
		!strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}
