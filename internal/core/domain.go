package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type (
	// TransactionType classifies a transaction or category as money in or out.
	TransactionType string

	// Date is a calendar date without a time-of-day component.
	Date struct {
		time.Time
	}

	// Month is a calendar month key in YYYY-MM form. Budget rows are matched
	// against it by exact string comparison.
	Month string

	// Category is static reference data; transactions and budgets point at it
	// via CategoryID.
	Category struct {
		ID   string          `json:"id,omitempty"`
		Name string          `json:"name"`
		Type TransactionType `json:"type"`
	}

	Transaction struct {
		ID          string          `json:"id,omitempty"`
		Amount      Money           `json:"-"`
		Type        TransactionType `json:"type"`
		CategoryID  string          `json:"category_id,omitempty"` // empty when no category selected
		Description string          `json:"description"`
		Date        Date            `json:"transaction_date"`
	}

	// Budget is a per-category monthly spending limit. At most one row exists
	// per (CategoryID, Month).
	Budget struct {
		ID         string `json:"id,omitempty"`
		CategoryID string `json:"category_id"`
		Limit      Money  `json:"-"`
		Month      Month  `json:"month_year"`
	}

	// GlobalBudget is a single monthly spending limit across all categories.
	// At most one row exists per Month.
	GlobalBudget struct {
		ID    string `json:"id,omitempty"`
		Limit Money  `json:"-"`
		Month Month  `json:"month_year"`
	}
)

var (
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidType          = errors.New("invalid transaction type")
	ErrInvalidDate          = errors.New("invalid date")
	ErrNoCategory           = errors.New("no category selected")
	ErrCategoryTypeMismatch = errors.New("category type does not match transaction type")
	ErrInvalidMonth         = errors.New("invalid month key")
)

// Valid reports whether the type is one of the two known values.
func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// NewDate creates a Date from year, month and day in the local time zone.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)}
}

// Month truncates the date to its calendar month.
func (d Date) Month() Month {
	return Month(d.Format("2006-01"))
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// MarshalJSON renders the date as a bare YYYY-MM-DD string, the form the
// backing store keeps in its date columns.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	// Some backends return a full timestamp for date columns.
	if len(s) > 10 {
		s = s[:10]
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return ErrInvalidDate
	}
	d.Time = t
	return nil
}

// MonthOf returns the month key for the given wall-clock instant.
func MonthOf(t time.Time) Month {
	return Month(t.Format("2006-01"))
}

func (m Month) Validate() error {
	if _, err := time.Parse("2006-01", string(m)); err != nil {
		return ErrInvalidMonth
	}
	return nil
}

// Validate checks the invariants enforced before any write: positive amount,
// known type, a real date, and type consistency with the selected category
// when one is referenced. The categories slice is the reference data the
// caller already holds; an ID not found there is tolerated (the reference
// may be stale) rather than rejected.
func (tx Transaction) Validate(categories []Category) error {
	if tx.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if !tx.Type.Valid() {
		return ErrInvalidType
	}
	if err := tx.Date.Validate(); err != nil {
		return err
	}
	if tx.CategoryID == "" {
		return ErrNoCategory
	}
	for _, c := range categories {
		if c.ID == tx.CategoryID {
			if c.Type != tx.Type {
				return ErrCategoryTypeMismatch
			}
			break
		}
	}
	return nil
}

func (b Budget) Validate() error {
	if b.CategoryID == "" {
		return ErrNoCategory
	}
	if b.Limit.Cents < 0 {
		return ErrInvalidAmount
	}
	return b.Month.Validate()
}

func (g GlobalBudget) Validate() error {
	if g.Limit.Cents < 0 {
		return ErrInvalidAmount
	}
	return g.Month.Validate()
}
