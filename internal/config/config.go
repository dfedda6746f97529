package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP Server
	Port string

	// Backend selection: supabase, sqlite or memory
	DataBackend string

	// Supabase
	SupabaseURL string
	SupabaseKey string

	// SQLite
	SQLiteDBPath string

	// Budget granularity: category or global
	BudgetMode string
}

// Load reads configuration from the environment, after loading a .env file
// when one is present. Missing keys fall back to local-development defaults.
func Load() *Config {
	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

	return &Config{
		Port:         getEnv("PORT", "8080"),
		DataBackend:  getEnv("DATA_BACKEND", "memory"),
		SupabaseURL:  getEnv("SUPABASE_URL", ""),
		SupabaseKey:  getEnv("SUPABASE_KEY", ""),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/wallet.db"),
		BudgetMode:   getEnv("BUDGET_MODE", "category"),
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case "memory":
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
		}
	case "supabase":
		if c.SupabaseURL == "" {
			errs = append(errs, "SUPABASE_URL is required when using supabase backend")
		} else if parsed, err := url.Parse(c.SupabaseURL); err != nil || parsed.Scheme == "" || parsed.Host == "" {
			errs = append(errs, fmt.Sprintf("invalid Supabase URL '%s'", c.SupabaseURL))
		}
		if c.SupabaseKey == "" {
			errs = append(errs, "SUPABASE_KEY is required when using supabase backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of [supabase sqlite memory]", c.DataBackend))
	}

	switch c.BudgetMode {
	case "category", "global":
	default:
		errs = append(errs, fmt.Sprintf("invalid budget mode '%s': must be 'category' or 'global'", c.BudgetMode))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
