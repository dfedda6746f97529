package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"wallet/internal/core"
	"wallet/internal/report"
)

// handleTransactions serves the transaction history on GET and records a new
// transaction on POST.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTransactions(w, r)
	case http.MethodPost:
		s.createTransaction(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	l, err := s.fetchLedger(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to fetch ledger", "error", err)
		writeError(w, http.StatusInternalServerError, storeUnavailable)
		return
	}

	names := make(map[string]string, len(l.cats))
	for _, c := range l.cats {
		names[c.ID] = c.Name
	}

	type txView struct {
		ID          string `json:"id"`
		Date        string `json:"date"`
		Type        string `json:"type"`
		Category    string `json:"category"`
		AmountCents int64  `json:"amount_cents"`
		Amount      string `json:"amount"`
		Description string `json:"description,omitempty"`
	}
	views := make([]txView, 0, len(l.txs))
	for _, tx := range l.txs {
		name := names[tx.CategoryID]
		if name == "" {
			name = report.UnknownCategory
		}
		views = append(views, txView{
			ID:          tx.ID,
			Date:        tx.Date.Format("2006-01-02"),
			Type:        string(tx.Type),
			Category:    name,
			AmountCents: tx.Amount.Cents,
			Amount:      tx.Amount.String(),
			Description: tx.Description,
		})
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}

	amount, err := core.ParseAmount(r.FormValue("amount"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}
	date, err := s.parseFormDate(r.FormValue("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	tx := core.Transaction{
		Amount:      amount,
		Type:        core.TransactionType(r.FormValue("type")),
		CategoryID:  r.FormValue("category_id"),
		Description: sanitizeInput(r.FormValue("description")),
		Date:        date,
	}

	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	cats, err := s.store.Categories(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to fetch categories", "error", err)
		writeError(w, http.StatusInternalServerError, storeUnavailable)
		return
	}
	if err := tx.Validate(cats); err != nil {
		writeError(w, http.StatusUnprocessableEntity, validationMessage(err))
		return
	}

	if err := s.store.CreateTransaction(ctx, &tx); err != nil {
		slog.ErrorContext(ctx, "Failed to create transaction", "error", err)
		writeError(w, http.StatusInternalServerError, storeUnavailable)
		return
	}
	slog.InfoContext(ctx, "Transaction recorded",
		"id", tx.ID, "type", tx.Type, "amount", tx.Amount.String())

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// validationMessage maps domain validation errors to user-facing text.
func validationMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		return "amount must be greater than zero"
	case errors.Is(err, core.ErrInvalidType):
		return "type must be income or expense"
	case errors.Is(err, core.ErrInvalidDate):
		return "invalid date"
	case errors.Is(err, core.ErrNoCategory):
		return "a category is required"
	case errors.Is(err, core.ErrCategoryTypeMismatch):
		return "the selected category does not match the transaction type"
	default:
		return err.Error()
	}
}
