// Package store is the gateway to the backing relational store. Rows are
// decoded into the typed entities of internal/core exactly once, at this
// boundary; nothing above it sees raw maps or JSON. Three interchangeable
// implementations exist: the hosted Supabase backend, a local SQLite file
// and an in-memory store for development and tests.
package store

import (
	"context"

	"wallet/internal/core"
)

// Store is the set of reads and writes the dashboard performs. Reads return
// fresh rows on every call; the application keeps no copies between renders.
// Writes are single statements with no retry, so a client re-submit can
// create a duplicate transaction row.
type Store interface {
	// Categories returns the full reference data set.
	Categories(ctx context.Context) ([]core.Category, error)

	// Transactions returns all transaction rows, newest first.
	Transactions(ctx context.Context) ([]core.Transaction, error)

	// CreateTransaction inserts a row and fills in the generated ID.
	CreateTransaction(ctx context.Context, tx *core.Transaction) error

	// Budgets returns the per-category budget rows for a month, in stable
	// (category) order.
	Budgets(ctx context.Context, month core.Month) ([]core.Budget, error)

	// UpsertBudget writes the limit for (category, month): one atomic
	// insert-or-update keyed on that pair, never a read-then-write.
	UpsertBudget(ctx context.Context, b core.Budget) error

	// GlobalBudget returns the single budget row for a month, or nil when
	// none is configured. Absence is not an error.
	GlobalBudget(ctx context.Context, month core.Month) (*core.GlobalBudget, error)

	// UpsertGlobalBudget writes the month's single limit, keyed on the month.
	UpsertGlobalBudget(ctx context.Context, g core.GlobalBudget) error

	Close() error
}
