package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"wallet/internal/budget"
	"wallet/internal/core"
	"wallet/internal/report"
)

// renderTimeout bounds one dashboard render, store reads included.
const renderTimeout = 7 * time.Second

// ledger is one render's worth of refetched rows. Nothing is kept between
// renders; a write from another session lands on the next refetch.
type ledger struct {
	txs  []core.Transaction
	cats []core.Category
}

// fetchLedger reads the transaction and category tables, fanned out under an
// errgroup so one slow read does not serialize the other.
func (s *Server) fetchLedger(ctx context.Context) (ledger, error) {
	var l ledger
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		l.txs, err = s.store.Transactions(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		l.cats, err = s.store.Categories(ctx)
		return err
	})
	return l, g.Wait()
}

// fetchBudgetConfig reads whichever budget rows the configured mode needs
// for the given month.
func (s *Server) fetchBudgetConfig(ctx context.Context, month core.Month, cats []core.Category) (budget.Config, error) {
	cfg := budget.Config{Mode: s.budgetMode, Categories: cats}
	var err error
	if s.budgetMode == budget.ModeGlobal {
		cfg.Global, err = s.store.GlobalBudget(ctx, month)
	} else {
		cfg.Budgets, err = s.store.Budgets(ctx, month)
	}
	return cfg, err
}

// handleIndex renders the dashboard page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded")
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	l, err := s.fetchLedger(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to fetch ledger", "error", err)
		http.Error(w, storeUnavailable, http.StatusInternalServerError)
		return
	}

	month := core.MonthOf(s.now())
	cfg, err := s.fetchBudgetConfig(ctx, month, l.cats)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to fetch budgets", "error", err)
		http.Error(w, storeUnavailable, http.StatusInternalServerError)
		return
	}

	totals := report.ComputeTotals(l.txs)
	alerts := budget.Evaluate(l.txs, cfg, s.now())

	type txView struct {
		Date        string
		Type        string
		Category    string
		Amount      string
		Description string
	}
	names := make(map[string]string, len(l.cats))
	for _, c := range l.cats {
		names[c.ID] = c.Name
	}
	var recent []txView
	for i, tx := range l.txs {
		if i == 10 {
			break
		}
		name := names[tx.CategoryID]
		if name == "" {
			name = report.UnknownCategory
		}
		recent = append(recent, txView{
			Date:        tx.Date.Format("2006-01-02"),
			Type:        string(tx.Type),
			Category:    name,
			Amount:      tx.Amount.String(),
			Description: tx.Description,
		})
	}

	type catOption struct {
		ID   string
		Name string
		Type string
	}
	var expenseCats, options []catOption
	for _, c := range l.cats {
		opt := catOption{ID: c.ID, Name: c.Name, Type: string(c.Type)}
		options = append(options, opt)
		if c.Type == core.Expense {
			expenseCats = append(expenseCats, opt)
		}
	}

	data := struct {
		HasData     bool
		Balance     string
		Income      string
		Expense     string
		Alerts      []budget.Alert
		Recent      []txView
		Month       string
		GlobalMode  bool
		Categories  []catOption
		ExpenseCats []catOption
	}{
		HasData:     totals.HasData,
		Balance:     totals.Balance.String(),
		Income:      totals.Income.String(),
		Expense:     totals.Expense.String(),
		Alerts:      alerts,
		Recent:      recent,
		Month:       string(month),
		GlobalMode:  s.budgetMode == budget.ModeGlobal,
		Categories:  options,
		ExpenseCats: expenseCats,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "dashboard_page", data); err != nil {
		slog.ErrorContext(ctx, "Dashboard template execution failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleDashboard returns the headline totals and current alerts as JSON.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	l, err := s.fetchLedger(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to fetch ledger", "error", err)
		writeError(w, http.StatusInternalServerError, storeUnavailable)
		return
	}

	month := core.MonthOf(s.now())
	cfg, err := s.fetchBudgetConfig(ctx, month, l.cats)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to fetch budgets", "error", err)
		writeError(w, http.StatusInternalServerError, storeUnavailable)
		return
	}

	totals := report.ComputeTotals(l.txs)
	alerts := budget.Evaluate(l.txs, cfg, s.now())

	type alertView struct {
		Severity string `json:"severity"`
		Message  string `json:"message"`
		Spend    int64  `json:"spend_cents"`
		Limit    int64  `json:"limit_cents"`
		Category string `json:"category,omitempty"`
	}
	alertViews := make([]alertView, 0, len(alerts))
	for _, a := range alerts {
		alertViews = append(alertViews, alertView{
			Severity: string(a.Severity),
			Message:  a.Message,
			Spend:    a.Spend.Cents,
			Limit:    a.Limit.Cents,
			Category: a.Category,
		})
	}

	writeJSON(w, http.StatusOK, struct {
		HasData      bool        `json:"has_data"`
		IncomeCents  int64       `json:"income_cents"`
		ExpenseCents int64       `json:"expense_cents"`
		BalanceCents int64       `json:"balance_cents"`
		Income       string      `json:"income"`
		Expense      string      `json:"expense"`
		Balance      string      `json:"balance"`
		Month        string      `json:"month"`
		Alerts       []alertView `json:"alerts"`
	}{
		HasData:      totals.HasData,
		IncomeCents:  totals.Income.Cents,
		ExpenseCents: totals.Expense.Cents,
		BalanceCents: totals.Balance.Cents,
		Income:       totals.Income.String(),
		Expense:      totals.Expense.String(),
		Balance:      totals.Balance.String(),
		Month:        string(month),
		Alerts:       alertViews,
	})
}

// handleSeries returns the monthly income/expense series for charting.
func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	txs, err := s.store.Transactions(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to fetch transactions", "error", err)
		writeError(w, http.StatusInternalServerError, storeUnavailable)
		return
	}

	type point struct {
		Month string `json:"month"`
		Type  string `json:"type"`
		Cents int64  `json:"total_cents"`
	}
	series := report.MonthlySeries(txs)
	points := make([]point, 0, len(series))
	for _, p := range series {
		points = append(points, point{
			Month: string(p.Month),
			Type:  string(p.Type),
			Cents: p.Total.Cents,
		})
	}
	writeJSON(w, http.StatusOK, points)
}

// handleBreakdown returns the expense-by-category breakdown.
func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	l, err := s.fetchLedger(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to fetch ledger", "error", err)
		writeError(w, http.StatusInternalServerError, storeUnavailable)
		return
	}

	type slice struct {
		Name  string `json:"name"`
		Cents int64  `json:"total_cents"`
		Total string `json:"total"`
	}
	breakdown := report.CategoryBreakdown(l.txs, l.cats)
	slices := make([]slice, 0, len(breakdown))
	for _, c := range breakdown {
		slices = append(slices, slice{Name: c.Name, Cents: c.Total.Cents, Total: c.Total.String()})
	}
	writeJSON(w, http.StatusOK, slices)
}

// handleMonthlyChart renders the income-vs-expense bars as PNG.
func (s *Server) handleMonthlyChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	txs, err := s.store.Transactions(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to fetch transactions", "error", err)
		writeError(w, http.StatusInternalServerError, storeUnavailable)
		return
	}

	png, err := s.charts.MonthlyBars(report.MonthlySeries(txs))
	if err != nil {
		slog.ErrorContext(ctx, "Failed to render monthly chart", "error", err)
		writeError(w, http.StatusInternalServerError, "chart rendering failed")
		return
	}
	if png == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// handleCategoryChart renders the expense donut as PNG.
func (s *Server) handleCategoryChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	l, err := s.fetchLedger(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to fetch ledger", "error", err)
		writeError(w, http.StatusInternalServerError, storeUnavailable)
		return
	}

	png, err := s.charts.CategoryDonut(report.CategoryBreakdown(l.txs, l.cats))
	if err != nil {
		slog.ErrorContext(ctx, "Failed to render category chart", "error", err)
		writeError(w, http.StatusInternalServerError, "chart rendering failed")
		return
	}
	if png == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}
