// Package backend selects and constructs the store implementation named by
// configuration.
package backend

import (
	"fmt"
	"log/slog"

	"wallet/internal/config"
	"wallet/internal/store"
)

const (
	Supabase Type = "supabase"
	SQLite   Type = "sqlite"
	Memory   Type = "memory"
)

// Type names a store backend.
type Type string

func (t Type) String() string { return string(t) }

// IsValid returns true if the backend type is known.
func (t Type) IsValid() bool {
	switch t {
	case Supabase, SQLite, Memory:
		return true
	default:
		return false
	}
}

// Types lists every valid backend type.
func Types() []Type {
	return []Type{Supabase, SQLite, Memory}
}

// Open constructs the store named by the application config. The returned
// store is the single connection handle the process memoizes; every render
// reads through it afresh.
func Open(cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	t := Type(cfg.DataBackend)
	switch t {
	case Supabase:
		s, err := store.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey)
		if err != nil {
			return nil, fmt.Errorf("initialize supabase backend: %w", err)
		}
		logger.Info("Initialized Supabase backend", "url", cfg.SupabaseURL)
		return s, nil

	case SQLite:
		s, err := store.NewSQLiteStore(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite backend: %w", err)
		}
		logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return s, nil

	case Memory:
		logger.Info("Initialized memory backend")
		return store.NewMemoryStore(store.DefaultCategories()), nil

	default:
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}
}
