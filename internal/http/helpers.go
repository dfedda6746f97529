package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"wallet/internal/core"
)

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed encoding response", "error", err)
	}
}

// writeError sends a JSON error body. Store failures pass a generic message;
// the details stay in the log.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// storeUnavailable is the generic message shown when a read or write against
// the backing store fails. The action is aborted; retrying it is the recovery.
const storeUnavailable = "the data store is unavailable, please retry"

// parseFormDate parses a YYYY-MM-DD form value, defaulting to today when
// empty.
func (s *Server) parseFormDate(v string) (core.Date, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		now := s.now()
		return core.NewDate(now.Year(), int(now.Month()), now.Day()), nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return core.Date{}, core.ErrInvalidDate
	}
	return core.Date{Time: t}, nil
}

// parseFormMonth parses a YYYY-MM form value, defaulting to the current
// month when empty.
func (s *Server) parseFormMonth(v string) (core.Month, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return core.MonthOf(s.now()), nil
	}
	m := core.Month(v)
	if err := m.Validate(); err != nil {
		return "", err
	}
	return m, nil
}

// sanitizeInput trims whitespace and strips control characters.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
