package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"wallet/internal/core"
)

// MemoryStore keeps all rows in process memory. It backs local development
// and the test suites of the packages above the gateway.
type MemoryStore struct {
	mu         sync.Mutex
	categories []core.Category
	txs        []core.Transaction
	budgets    []core.Budget
	globals    []core.GlobalBudget
}

// NewMemoryStore returns an empty store seeded with the given categories.
func NewMemoryStore(categories []core.Category) *MemoryStore {
	s := &MemoryStore{}
	for _, c := range categories {
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		s.categories = append(s.categories, c)
	}
	return s
}

// DefaultCategories mirrors the seed reference data shipped with the SQLite
// migrations, so the memory backend behaves like a freshly migrated store.
func DefaultCategories() []core.Category {
	return []core.Category{
		{ID: "cat-salary", Name: "Salary", Type: core.Income},
		{ID: "cat-other-income", Name: "Other Income", Type: core.Income},
		{ID: "cat-food", Name: "Food", Type: core.Expense},
		{ID: "cat-rent", Name: "Rent", Type: core.Expense},
		{ID: "cat-transport", Name: "Transport", Type: core.Expense},
		{ID: "cat-entertainment", Name: "Entertainment", Type: core.Expense},
		{ID: "cat-other", Name: "Other", Type: core.Expense},
	}
}

func (s *MemoryStore) Categories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Category(nil), s.categories...), nil
}

func (s *MemoryStore) Transactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.Transaction(nil), s.txs...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	return out, nil
}

func (s *MemoryStore) CreateTransaction(_ context.Context, tx *core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	s.txs = append(s.txs, *tx)
	return nil
}

func (s *MemoryStore) Budgets(_ context.Context, month core.Month) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Budget
	for _, b := range s.budgets {
		if b.Month == month {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CategoryID < out[j].CategoryID
	})
	return out, nil
}

func (s *MemoryStore) UpsertBudget(_ context.Context, b core.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.budgets {
		if s.budgets[i].CategoryID == b.CategoryID && s.budgets[i].Month == b.Month {
			s.budgets[i].Limit = b.Limit
			return nil
		}
	}
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	s.budgets = append(s.budgets, b)
	return nil
}

func (s *MemoryStore) GlobalBudget(_ context.Context, month core.Month) (*core.GlobalBudget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.globals {
		if g.Month == month {
			out := g
			return &out, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) UpsertGlobalBudget(_ context.Context, g core.GlobalBudget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.globals {
		if s.globals[i].Month == g.Month {
			s.globals[i].Limit = g.Limit
			return nil
		}
	}
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	s.globals = append(s.globals, g)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
