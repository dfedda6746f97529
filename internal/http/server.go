// Package http is the presentation layer: a small server that refetches the
// ledger on every render, feeds it through the report and budget packages
// and serves the result as an HTML dashboard, JSON partials and PNG charts.
package http

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"wallet/internal/budget"
	"wallet/internal/charts"
	applog "wallet/internal/log"
	"wallet/internal/store"
	appweb "wallet/web"
)

type Server struct {
	http.Server
	store      store.Store
	charts     *charts.Generator
	budgetMode budget.Mode
	templates  *template.Template

	// now is the clock used to derive the current month; injectable in tests.
	now func() time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, st store.Store, mode budget.Mode, logger *applog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		store:      st,
		charts:     charts.NewGenerator(),
		budgetMode: mode,
		now:        time.Now,
	}

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	mux.HandleFunc("/", s.withSecurityHeaders(s.handleIndex))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/api/dashboard", s.withSecurityHeaders(s.handleDashboard))
	mux.HandleFunc("/api/series", s.withSecurityHeaders(s.handleSeries))
	mux.HandleFunc("/api/breakdown", s.withSecurityHeaders(s.handleBreakdown))

	mux.HandleFunc("/charts/monthly.png", s.withSecurityHeaders(s.handleMonthlyChart))
	mux.HandleFunc("/charts/categories.png", s.withSecurityHeaders(s.handleCategoryChart))

	mux.HandleFunc("/transactions", s.withSecurityHeaders(s.handleTransactions))
	mux.HandleFunc("/budgets", s.withSecurityHeaders(s.handleUpsertBudget))
	mux.HandleFunc("/budgets/global", s.withSecurityHeaders(s.handleUpsertGlobalBudget))

	var handler http.Handler = mux
	if logger != nil {
		handler = applog.RequestLogger(logger)(handler)
	}

	s.Server = http.Server{
		Addr:    addr,
		Handler: handler,
	}
	return s
}

// Shutdown stops the HTTP server; safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

// withSecurityHeaders sets the usual response hardening headers.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next(w, r)
	}
}
