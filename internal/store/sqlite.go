package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"wallet/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the ledger in a local SQLite file. Amounts are stored as
// integer cents and dates as YYYY-MM-DD text, so no decoding ambiguity exists
// at this boundary.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Categories(ctx context.Context) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, type FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Type); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Transactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, amount_cents, type, COALESCE(category_id, ''), description, transaction_date
		 FROM transactions ORDER BY transaction_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			tx      core.Transaction
			dateStr string
		)
		if err := rows.Scan(&tx.ID, &tx.Amount.Cents, &tx.Type, &tx.CategoryID, &tx.Description, &dateStr); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		d, err := parseDBDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", tx.ID, err)
		}
		tx.Date = d
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CreateTransaction(ctx context.Context, tx *core.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	var categoryID any
	if tx.CategoryID != "" {
		categoryID = tx.CategoryID
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (id, amount_cents, type, category_id, description, transaction_date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.Amount.Cents, string(tx.Type), categoryID, tx.Description, tx.Date.Format("2006-01-02"))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Budgets(ctx context.Context, month core.Month) ([]core.Budget, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, category_id, amount_limit_cents, month_year
		 FROM budgets WHERE month_year = ? ORDER BY category_id`, string(month))
	if err != nil {
		return nil, fmt.Errorf("select budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var b core.Budget
		if err := rows.Scan(&b.ID, &b.CategoryID, &b.Limit.Cents, &b.Month); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpsertBudget is a single statement keyed on the (category_id, month_year)
// unique constraint; there is no read-then-write race.
func (s *SQLiteStore) UpsertBudget(ctx context.Context, b core.Budget) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO budgets (id, category_id, amount_limit_cents, month_year)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (category_id, month_year)
		 DO UPDATE SET amount_limit_cents = excluded.amount_limit_cents`,
		b.ID, b.CategoryID, b.Limit.Cents, string(b.Month))
	if err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GlobalBudget(ctx context.Context, month core.Month) (*core.GlobalBudget, error) {
	var g core.GlobalBudget
	err := s.db.QueryRowContext(ctx,
		`SELECT id, amount_limit_cents, month_year FROM global_budgets WHERE month_year = ?`,
		string(month)).Scan(&g.ID, &g.Limit.Cents, &g.Month)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select global budget: %w", err)
	}
	return &g, nil
}

func (s *SQLiteStore) UpsertGlobalBudget(ctx context.Context, g core.GlobalBudget) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO global_budgets (id, amount_limit_cents, month_year)
		 VALUES (?, ?, ?)
		 ON CONFLICT (month_year)
		 DO UPDATE SET amount_limit_cents = excluded.amount_limit_cents`,
		g.ID, g.Limit.Cents, string(g.Month))
	if err != nil {
		return fmt.Errorf("upsert global budget: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func parseDBDate(s string) (core.Date, error) {
	var d core.Date
	if err := d.UnmarshalJSON([]byte(`"` + s + `"`)); err != nil {
		return core.Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return d, nil
}
