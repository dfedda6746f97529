package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/supabase-community/supabase-go"

	"wallet/internal/core"
)

// SupabaseStore talks to the hosted backend through the PostgREST query
// builder. Row payloads carry amounts as JSON numerics; they are converted
// to integer cents exactly once, here.
type SupabaseStore struct {
	client *supabase.Client
}

func NewSupabaseStore(url, key string) (*SupabaseStore, error) {
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return &SupabaseStore{client: client}, nil
}

// Wire rows. Column names match the hosted schema; amounts travel as
// decimal numerics.
type (
	categoryRow struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name"`
		Type string `json:"type"`
	}

	transactionRow struct {
		ID          string    `json:"id,omitempty"`
		Amount      float64   `json:"amount"`
		Type        string    `json:"type"`
		CategoryID  *string   `json:"category_id,omitempty"`
		Description string    `json:"description"`
		Date        core.Date `json:"transaction_date"`
	}

	budgetRow struct {
		ID         string  `json:"id,omitempty"`
		CategoryID string  `json:"category_id"`
		Limit      float64 `json:"amount_limit"`
		Month      string  `json:"month_year"`
	}

	globalBudgetRow struct {
		ID    string  `json:"id,omitempty"`
		Limit float64 `json:"amount_limit"`
		Month string  `json:"month_year"`
	}
)

// toCents converts a backend numeric to integer cents without accumulating
// binary float error.
func toCents(amount float64) core.Money {
	return core.Money{Cents: decimal.NewFromFloat(amount).Shift(2).Round(0).IntPart()}
}

// fromCents renders cents as the numeric the backend column expects.
func fromCents(m core.Money) float64 {
	return decimal.New(m.Cents, -2).InexactFloat64()
}

func (s *SupabaseStore) Categories(ctx context.Context) ([]core.Category, error) {
	data, _, err := s.client.From("categories").
		Select("*", "", false).
		Order("name.asc", nil).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}

	var rows []categoryRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	out := make([]core.Category, len(rows))
	for i, r := range rows {
		out[i] = core.Category{ID: r.ID, Name: r.Name, Type: core.TransactionType(r.Type)}
	}
	return out, nil
}

func (s *SupabaseStore) Transactions(ctx context.Context) ([]core.Transaction, error) {
	data, _, err := s.client.From("transactions").
		Select("*", "", false).
		Order("transaction_date.desc", nil).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}

	var rows []transactionRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}
	out := make([]core.Transaction, len(rows))
	for i, r := range rows {
		categoryID := ""
		if r.CategoryID != nil {
			categoryID = *r.CategoryID
		}
		out[i] = core.Transaction{
			ID:          r.ID,
			Amount:      toCents(r.Amount),
			Type:        core.TransactionType(r.Type),
			CategoryID:  categoryID,
			Description: r.Description,
			Date:        r.Date,
		}
	}
	return out, nil
}

func (s *SupabaseStore) CreateTransaction(ctx context.Context, tx *core.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	row := transactionRow{
		ID:          tx.ID,
		Amount:      fromCents(tx.Amount),
		Type:        string(tx.Type),
		Description: tx.Description,
		Date:        tx.Date,
	}
	if tx.CategoryID != "" {
		row.CategoryID = &tx.CategoryID
	}

	_, _, err := s.client.From("transactions").
		Insert(row, false, "", "", "").
		Execute()
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (s *SupabaseStore) Budgets(ctx context.Context, month core.Month) ([]core.Budget, error) {
	data, _, err := s.client.From("budgets").
		Select("*", "", false).
		Eq("month_year", string(month)).
		Order("category_id.asc", nil).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("select budgets: %w", err)
	}

	var rows []budgetRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode budgets: %w", err)
	}
	out := make([]core.Budget, len(rows))
	for i, r := range rows {
		out[i] = core.Budget{
			ID:         r.ID,
			CategoryID: r.CategoryID,
			Limit:      toCents(r.Limit),
			Month:      core.Month(r.Month),
		}
	}
	return out, nil
}

// UpsertBudget relies on the store's native upsert keyed on the
// (category_id, month_year) unique constraint, so there is no window between
// an existence check and the write.
func (s *SupabaseStore) UpsertBudget(ctx context.Context, b core.Budget) error {
	// ID is left to the column default; sending one would also rewrite the
	// id of the row being updated on conflict.
	row := budgetRow{
		CategoryID: b.CategoryID,
		Limit:      fromCents(b.Limit),
		Month:      string(b.Month),
	}
	_, _, err := s.client.From("budgets").
		Insert(row, true, "category_id,month_year", "", "").
		Execute()
	if err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}
	return nil
}

func (s *SupabaseStore) GlobalBudget(ctx context.Context, month core.Month) (*core.GlobalBudget, error) {
	data, _, err := s.client.From("global_budgets").
		Select("*", "", false).
		Eq("month_year", string(month)).
		Limit(1, "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("select global budget: %w", err)
	}

	var rows []globalBudgetRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode global budget: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &core.GlobalBudget{
		ID:    rows[0].ID,
		Limit: toCents(rows[0].Limit),
		Month: core.Month(rows[0].Month),
	}, nil
}

func (s *SupabaseStore) UpsertGlobalBudget(ctx context.Context, g core.GlobalBudget) error {
	row := globalBudgetRow{
		Limit: fromCents(g.Limit),
		Month: string(g.Month),
	}
	_, _, err := s.client.From("global_budgets").
		Insert(row, true, "month_year", "", "").
		Execute()
	if err != nil {
		return fmt.Errorf("upsert global budget: %w", err)
	}
	return nil
}

func (s *SupabaseStore) Close() error { return nil }
