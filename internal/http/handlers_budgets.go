package http

import (
	"context"
	"log/slog"
	"net/http"

	"wallet/internal/core"
)

// handleUpsertBudget sets or replaces a per-category limit for a month.
func (s *Server) handleUpsertBudget(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}

	limit, err := core.ParseAmount(r.FormValue("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	month, err := s.parseFormMonth(r.FormValue("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month, expected YYYY-MM")
		return
	}

	b := core.Budget{
		CategoryID: r.FormValue("category_id"),
		Limit:      limit,
		Month:      month,
	}
	if err := b.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	if err := s.store.UpsertBudget(ctx, b); err != nil {
		slog.ErrorContext(ctx, "Failed to upsert budget", "error", err)
		writeError(w, http.StatusInternalServerError, storeUnavailable)
		return
	}
	slog.InfoContext(ctx, "Budget saved",
		"category_id", b.CategoryID, "month", b.Month, "limit", b.Limit.String())

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleUpsertGlobalBudget sets or replaces the single monthly limit.
func (s *Server) handleUpsertGlobalBudget(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}

	limit, err := core.ParseAmount(r.FormValue("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	month, err := s.parseFormMonth(r.FormValue("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month, expected YYYY-MM")
		return
	}

	g := core.GlobalBudget{Limit: limit, Month: month}
	if err := g.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	if err := s.store.UpsertGlobalBudget(ctx, g); err != nil {
		slog.ErrorContext(ctx, "Failed to upsert global budget", "error", err)
		writeError(w, http.StatusInternalServerError, storeUnavailable)
		return
	}
	slog.InfoContext(ctx, "Global budget saved", "month", g.Month, "limit", g.Limit.String())

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
