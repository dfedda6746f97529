// Package budget compares current-month spending against configured limits
// and produces the alerts shown at the top of the dashboard. Limits come in
// two granularities, selected by configuration: one limit per category, or a
// single figure for the whole month.
package budget

import (
	"fmt"
	"time"

	"wallet/internal/core"
	"wallet/internal/report"
)

const (
	SeverityOver    Severity = "over"
	SeverityWarning Severity = "warning"
)

const (
	ModePerCategory Mode = "category"
	ModeGlobal      Mode = "global"
)

type (
	// Severity grades an alert. "over" means the limit is exceeded,
	// "warning" that global spend is within 10% of it.
	Severity string

	// Mode selects the budget granularity.
	Mode string

	// Alert carries everything a caller needs to render it without
	// re-deriving figures. Category is empty in global mode.
	Alert struct {
		Severity Severity   `json:"severity"`
		Message  string     `json:"message"`
		Spend    core.Money `json:"spend"`
		Limit    core.Money `json:"limit"`
		Category string     `json:"category,omitempty"`
	}

	// Config is the budget state fetched for the evaluation: the mode plus
	// whichever rows that mode reads. Categories are only used to resolve
	// names for per-category messages.
	Config struct {
		Mode       Mode
		Budgets    []core.Budget
		Global     *core.GlobalBudget
		Categories []core.Category
	}
)

// Valid reports whether the mode is one of the two known granularities.
func (m Mode) Valid() bool {
	return m == ModePerCategory || m == ModeGlobal
}

// Evaluate produces the ordered alert list for the month containing now.
// Per-category mode walks the budget rows in their given order; global mode
// yields at most one alert. A month with no matching budget rows yields none.
func Evaluate(txs []core.Transaction, cfg Config, now time.Time) []Alert {
	month := core.MonthOf(now)
	if cfg.Mode == ModeGlobal {
		return evalGlobal(txs, cfg.Global, month)
	}
	return evalPerCategory(txs, cfg, month)
}

func evalPerCategory(txs []core.Transaction, cfg Config, month core.Month) []Alert {
	names := make(map[string]string, len(cfg.Categories))
	for _, c := range cfg.Categories {
		names[c.ID] = c.Name
	}
	spends := report.MonthExpenseByCategory(txs, month)

	var alerts []Alert
	for _, b := range cfg.Budgets {
		if b.Month != month {
			continue
		}
		spend := spends[b.CategoryID] // zero when the category has no spend
		if spend.Cents <= b.Limit.Cents {
			continue
		}
		name, ok := names[b.CategoryID]
		if !ok || name == "" {
			name = report.UnknownCategory
		}
		alerts = append(alerts, Alert{
			Severity: SeverityOver,
			Message:  fmt.Sprintf("Over budget: %s (%s / %s)", name, spend, b.Limit),
			Spend:    spend,
			Limit:    b.Limit,
			Category: name,
		})
	}
	return alerts
}

func evalGlobal(txs []core.Transaction, g *core.GlobalBudget, month core.Month) []Alert {
	if g == nil || g.Month != month {
		// No budget configured for this month is not an error.
		return nil
	}
	spend := report.MonthExpenseTotal(txs, month)
	limit := g.Limit

	switch {
	case spend.Cents > limit.Cents:
		return []Alert{{
			Severity: SeverityOver,
			Message:  fmt.Sprintf("You've spent %s / %s", spend, limit),
			Spend:    spend,
			Limit:    limit,
		}}
	// spend > 0.9*limit, in integer cents so exactly 90% never warns.
	case spend.Cents*10 > limit.Cents*9:
		return []Alert{{
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("Approaching your monthly budget: %s / %s", spend, limit),
			Spend:    spend,
			Limit:    limit,
		}}
	default:
		return nil
	}
}
