package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet/internal/budget"
	"wallet/internal/core"
	"wallet/internal/store"
)

// testNow pins the clock inside May 2024 so current-month logic is stable.
var testNow = time.Date(2024, time.May, 20, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, mode budget.Mode) (*Server, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore(store.DefaultCategories())
	srv := NewServer(":0", st, mode, nil)
	srv.now = func() time.Time { return testNow }
	return srv, st
}

func seedSpendingMonth(t *testing.T, st *store.MemoryStore) {
	t.Helper()
	ctx := context.Background()
	txs := []core.Transaction{
		{Amount: core.Money{Cents: 5000}, Type: core.Expense, CategoryID: "cat-food",
			Description: "groceries", Date: core.NewDate(2024, 5, 3)},
		{Amount: core.Money{Cents: 3000}, Type: core.Expense, CategoryID: "cat-food",
			Description: "dinner out", Date: core.NewDate(2024, 5, 10)},
		{Amount: core.Money{Cents: 100000}, Type: core.Income, CategoryID: "cat-salary",
			Description: "salary", Date: core.NewDate(2024, 5, 1)},
	}
	for i := range txs {
		require.NoError(t, st.CreateTransaction(ctx, &txs[i]))
	}
}

func doRequest(srv *Server, method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, budget.ModePerCategory)

	rec := doRequest(srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = doRequest(srv, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", rec.Body.String())
}

func TestDashboardJSONTotals(t *testing.T) {
	srv, st := newTestServer(t, budget.ModePerCategory)
	seedSpendingMonth(t, st)

	rec := doRequest(srv, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		HasData      bool   `json:"has_data"`
		IncomeCents  int64  `json:"income_cents"`
		ExpenseCents int64  `json:"expense_cents"`
		BalanceCents int64  `json:"balance_cents"`
		Balance      string `json:"balance"`
		Month        string `json:"month"`
		Alerts       []struct {
			Severity string `json:"severity"`
			Message  string `json:"message"`
		} `json:"alerts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.True(t, body.HasData)
	assert.Equal(t, int64(100000), body.IncomeCents)
	assert.Equal(t, int64(8000), body.ExpenseCents)
	assert.Equal(t, int64(92000), body.BalanceCents)
	assert.Equal(t, "$920.00", body.Balance)
	assert.Equal(t, "2024-05", body.Month)
	assert.Empty(t, body.Alerts)
}

func TestDashboardJSONEmpty(t *testing.T) {
	srv, _ := newTestServer(t, budget.ModePerCategory)

	rec := doRequest(srv, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		HasData bool `json:"has_data"`
		Alerts  []struct {
			Message string `json:"message"`
		} `json:"alerts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.HasData)
	assert.Empty(t, body.Alerts)
}

func TestDashboardOverBudgetAlert(t *testing.T) {
	srv, st := newTestServer(t, budget.ModePerCategory)
	seedSpendingMonth(t, st)
	require.NoError(t, st.UpsertBudget(context.Background(), core.Budget{
		CategoryID: "cat-food",
		Limit:      core.Money{Cents: 6000},
		Month:      "2024-05",
	}))

	rec := doRequest(srv, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Alerts []struct {
			Severity string `json:"severity"`
			Message  string `json:"message"`
			Spend    int64  `json:"spend_cents"`
			Limit    int64  `json:"limit_cents"`
			Category string `json:"category"`
		} `json:"alerts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Alerts, 1)
	assert.Equal(t, "over", body.Alerts[0].Severity)
	assert.Equal(t, "Over budget: Food ($80.00 / $60.00)", body.Alerts[0].Message)
	assert.Equal(t, int64(8000), body.Alerts[0].Spend)
	assert.Equal(t, int64(6000), body.Alerts[0].Limit)
	assert.Equal(t, "Food", body.Alerts[0].Category)
}

func TestGlobalBudgetWarningFlow(t *testing.T) {
	srv, st := newTestServer(t, budget.ModeGlobal)
	seedSpendingMonth(t, st)

	// Set the limit through the handler, then read the alert back.
	rec := doRequest(srv, http.MethodPost, "/budgets/global", url.Values{
		"limit": {"85.00"},
		"month": {"2024-05"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	g, err := st.GlobalBudget(context.Background(), "2024-05")
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.Equal(t, int64(8500), g.Limit.Cents)

	rec = doRequest(srv, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Alerts []struct {
			Severity string `json:"severity"`
			Message  string `json:"message"`
		} `json:"alerts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Alerts, 1)
	assert.Equal(t, "warning", body.Alerts[0].Severity)
	assert.Equal(t, "Approaching your monthly budget: $80.00 / $85.00", body.Alerts[0].Message)
}

func TestSeriesJSON(t *testing.T) {
	srv, st := newTestServer(t, budget.ModePerCategory)
	seedSpendingMonth(t, st)

	rec := doRequest(srv, http.MethodGet, "/api/series", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var points []struct {
		Month string `json:"month"`
		Type  string `json:"type"`
		Cents int64  `json:"total_cents"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &points))
	require.Len(t, points, 2)
	assert.Equal(t, "2024-05", points[0].Month)
	assert.Equal(t, "income", points[0].Type)
	assert.Equal(t, int64(100000), points[0].Cents)
	assert.Equal(t, "expense", points[1].Type)
	assert.Equal(t, int64(8000), points[1].Cents)
}

func TestBreakdownJSON(t *testing.T) {
	srv, st := newTestServer(t, budget.ModePerCategory)
	seedSpendingMonth(t, st)

	rec := doRequest(srv, http.MethodGet, "/api/breakdown", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var slices []struct {
		Name  string `json:"name"`
		Cents int64  `json:"total_cents"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &slices))
	require.Len(t, slices, 1)
	assert.Equal(t, "Food", slices[0].Name)
	assert.Equal(t, int64(8000), slices[0].Cents)
}

func TestChartEndpoints(t *testing.T) {
	srv, st := newTestServer(t, budget.ModePerCategory)

	// Nothing to draw yet.
	rec := doRequest(srv, http.MethodGet, "/charts/monthly.png", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doRequest(srv, http.MethodGet, "/charts/categories.png", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	seedSpendingMonth(t, st)

	rec = doRequest(srv, http.MethodGet, "/charts/monthly.png", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "\x89PNG"))

	rec = doRequest(srv, http.MethodGet, "/charts/categories.png", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
}

func TestIndexPage(t *testing.T) {
	srv, st := newTestServer(t, budget.ModePerCategory)
	seedSpendingMonth(t, st)

	rec := doRequest(srv, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "$920.00")
	assert.Contains(t, body, "groceries")
	assert.Contains(t, body, "/charts/monthly.png")

	rec = doRequest(srv, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateTransaction(t *testing.T) {
	srv, st := newTestServer(t, budget.ModePerCategory)

	rec := doRequest(srv, http.MethodPost, "/transactions", url.Values{
		"amount":      {"42.50"},
		"type":        {"expense"},
		"category_id": {"cat-food"},
		"description": {"lunch"},
		"date":        {"2024-05-18"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	txs, err := st.Transactions(context.Background())
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.NotEmpty(t, txs[0].ID)
	assert.Equal(t, int64(4250), txs[0].Amount.Cents)
	assert.Equal(t, core.Expense, txs[0].Type)
	assert.Equal(t, "lunch", txs[0].Description)
}

func TestCreateTransactionDefaultsDateToToday(t *testing.T) {
	srv, st := newTestServer(t, budget.ModePerCategory)

	rec := doRequest(srv, http.MethodPost, "/transactions", url.Values{
		"amount":      {"10"},
		"type":        {"expense"},
		"category_id": {"cat-food"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	txs, err := st.Transactions(context.Background())
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "2024-05-20", txs[0].Date.Format("2006-01-02"))
}

func TestCreateTransactionRejectsBadInput(t *testing.T) {
	srv, _ := newTestServer(t, budget.ModePerCategory)

	tests := []struct {
		name     string
		form     url.Values
		wantCode int
	}{
		{
			name:     "invalid amount",
			form:     url.Values{"amount": {"abc"}, "type": {"expense"}, "category_id": {"cat-food"}},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "zero amount",
			form:     url.Values{"amount": {"0"}, "type": {"expense"}, "category_id": {"cat-food"}},
			wantCode: http.StatusUnprocessableEntity,
		},
		{
			name:     "negative amount",
			form:     url.Values{"amount": {"-5"}, "type": {"expense"}, "category_id": {"cat-food"}},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "bad type",
			form:     url.Values{"amount": {"5"}, "type": {"transfer"}, "category_id": {"cat-food"}},
			wantCode: http.StatusUnprocessableEntity,
		},
		{
			name:     "missing category",
			form:     url.Values{"amount": {"5"}, "type": {"expense"}},
			wantCode: http.StatusUnprocessableEntity,
		},
		{
			name:     "category type mismatch",
			form:     url.Values{"amount": {"5"}, "type": {"income"}, "category_id": {"cat-food"}},
			wantCode: http.StatusUnprocessableEntity,
		},
		{
			name:     "malformed date",
			form:     url.Values{"amount": {"5"}, "type": {"expense"}, "category_id": {"cat-food"}, "date": {"18/05/2024"}},
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(srv, http.MethodPost, "/transactions", tt.form)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestListTransactionsResolvesNames(t *testing.T) {
	srv, st := newTestServer(t, budget.ModePerCategory)
	seedSpendingMonth(t, st)
	// A row whose category no longer exists still lists, under Unknown.
	stale := core.Transaction{
		Amount: core.Money{Cents: 100}, Type: core.Expense,
		CategoryID: "cat-gone", Date: core.NewDate(2024, 5, 19),
	}
	require.NoError(t, st.CreateTransaction(context.Background(), &stale))

	rec := doRequest(srv, http.MethodGet, "/transactions", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var views []struct {
		Category string `json:"category"`
		Amount   string `json:"amount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 4)
	assert.Equal(t, "Unknown", views[0].Category)
	assert.Equal(t, "$1.00", views[0].Amount)
}

func TestUpsertBudget(t *testing.T) {
	srv, st := newTestServer(t, budget.ModePerCategory)

	rec := doRequest(srv, http.MethodPost, "/budgets", url.Values{
		"category_id": {"cat-food"},
		"limit":       {"60"},
		"month":       {"2024-05"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	// Same key again replaces rather than duplicates.
	rec = doRequest(srv, http.MethodPost, "/budgets", url.Values{
		"category_id": {"cat-food"},
		"limit":       {"75.50"},
		"month":       {"2024-05"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	budgets, err := st.Budgets(context.Background(), "2024-05")
	require.NoError(t, err)
	require.Len(t, budgets, 1)
	assert.Equal(t, int64(7550), budgets[0].Limit.Cents)
}

func TestUpsertBudgetDefaultsMonth(t *testing.T) {
	srv, st := newTestServer(t, budget.ModePerCategory)

	rec := doRequest(srv, http.MethodPost, "/budgets", url.Values{
		"category_id": {"cat-food"},
		"limit":       {"100"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	budgets, err := st.Budgets(context.Background(), "2024-05")
	require.NoError(t, err)
	require.Len(t, budgets, 1)
}

func TestUpsertBudgetRejectsBadInput(t *testing.T) {
	srv, _ := newTestServer(t, budget.ModePerCategory)

	tests := []struct {
		name     string
		form     url.Values
		wantCode int
	}{
		{
			name:     "negative limit",
			form:     url.Values{"category_id": {"cat-food"}, "limit": {"-10"}},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "missing category",
			form:     url.Values{"limit": {"10"}},
			wantCode: http.StatusUnprocessableEntity,
		},
		{
			name:     "malformed month",
			form:     url.Values{"category_id": {"cat-food"}, "limit": {"10"}, "month": {"May 2024"}},
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(srv, http.MethodPost, "/budgets", tt.form)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, budget.ModePerCategory)

	tests := []struct {
		method string
		target string
	}{
		{http.MethodPost, "/api/dashboard"},
		{http.MethodDelete, "/transactions"},
		{http.MethodGet, "/budgets"},
		{http.MethodGet, "/budgets/global"},
		{http.MethodPost, "/charts/monthly.png"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rec := doRequest(srv, tt.method, tt.target, nil)
			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv, _ := newTestServer(t, budget.ModePerCategory)

	rec := doRequest(srv, http.MethodGet, "/api/dashboard", nil)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}
