package backend

import (
	"context"

	"productivity/internal/auth"
	"productivity/internal/cache"
	"productivity/internal/services"
	"productivity/internal/storage"
)

// CleanupFunc releases what CreateBackend opened.
type CleanupFunc func() error

// Result is the wired application: the store, the services built on it and
// the background helpers that must be stopped on shutdown.
type Result struct {
	Store     *storage.Store
	Tokens    *auth.TokenIssuer
	Expenses  *services.ExpenseService
	Tasks     *services.TaskService
	Dashboard *services.DashboardService
	Admin     *services.AdminService
	Accounts  *services.AccountService
	Caches    *cache.Manager

	// Notifying reports whether change events are published.
	Notifying bool
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}
