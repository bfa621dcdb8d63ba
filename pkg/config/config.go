// Package config provides configuration loading for WealthWatch.
// Settings come from the environment (optionally seeded from a .env file)
// with built-in defaults, and may be overridden by a YAML file.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIURL          = "http://localhost:8000"
	DefaultAlphaVantageKey = "demo"
	DefaultUserID          = "demo"
	DefaultPort            = 8080
	DefaultRefreshSchedule = "@every 30s"
	DefaultRequestTimeout  = 10 * time.Second
)

// DefaultWatchlist mirrors the dashboard's starter watchlist.
var DefaultWatchlist = []string{"AAPL", "GOOGL", "MSFT", "TSLA", "NVDA"}

// Config holds all application configuration
type Config struct {
	// Primary backend and secondary quote provider
	APIURL             string
	AlphaVantageAPIKey string
	RequestTimeout     time.Duration

	// Storage; empty means in-memory only
	DatabaseURL string

	// Logging
	LogLevel  string
	LogPretty bool

	// Server
	Port int

	// Dashboard
	UserID          string
	Watchlist       []string
	RefreshSchedule string
	SeedBudgets     []BudgetSeed
}

// BudgetSeed describes a budget created when the ledger starts empty.
type BudgetSeed struct {
	Category string          `yaml:"category"`
	Limit    decimal.Decimal `yaml:"-"`
	Month    time.Month      `yaml:"-"`
	Year     int             `yaml:"year"`
}

// fileConfig is the YAML shape; amounts stay strings until parsed.
type fileConfig struct {
	APIURL          string           `yaml:"api_url,omitempty"`
	UserID          string           `yaml:"user_id,omitempty"`
	Watchlist       []string         `yaml:"watchlist,omitempty"`
	RefreshSchedule string           `yaml:"refresh_schedule,omitempty"`
	Budgets         []fileBudgetSeed `yaml:"budgets,omitempty"`
}

type fileBudgetSeed struct {
	Category string `yaml:"category"`
	Limit    string `yaml:"limit"`
	Month    int    `yaml:"month"`
	Year     int    `yaml:"year"`
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{
		APIURL:             strings.TrimRight(getEnv("WEALTHWATCH_API_URL", DefaultAPIURL), "/"),
		AlphaVantageAPIKey: getEnv("ALPHAVANTAGE_API_KEY", DefaultAlphaVantageKey),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		UserID:             getEnv("USER_ID", DefaultUserID),
		RefreshSchedule:    getEnv("REFRESH_SCHEDULE", DefaultRefreshSchedule),
		Watchlist:          ParseSymbols(getEnv("WATCHLIST", strings.Join(DefaultWatchlist, ","))),
	}

	var err error
	if cfg.Port, err = getEnvAsInt("PORT", DefaultPort); err != nil {
		return nil, err
	}
	if cfg.LogPretty, err = getEnvAsBool("LOG_PRETTY", false); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = getEnvAsDuration("REQUEST_TIMEOUT", DefaultRequestTimeout); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFile applies overrides from a YAML file on top of cfg.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read config file")
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return errors.Wrap(err, "parse config file")
	}

	if fc.APIURL != "" {
		cfg.APIURL = strings.TrimRight(fc.APIURL, "/")
	}
	if fc.UserID != "" {
		cfg.UserID = fc.UserID
	}
	if len(fc.Watchlist) > 0 {
		cfg.Watchlist = ParseSymbols(strings.Join(fc.Watchlist, ","))
	}
	if fc.RefreshSchedule != "" {
		cfg.RefreshSchedule = fc.RefreshSchedule
	}

	for i, b := range fc.Budgets {
		limit, err := decimal.NewFromString(b.Limit)
		if err != nil {
			return errors.Wrapf(err, "budget %d (%s): invalid limit %q", i, b.Category, b.Limit)
		}
		if limit.IsNegative() {
			return errors.Errorf("budget %d (%s): limit must not be negative", i, b.Category)
		}
		if b.Month < 1 || b.Month > 12 {
			return errors.Errorf("budget %d (%s): month %d out of range", i, b.Category, b.Month)
		}
		cfg.SeedBudgets = append(cfg.SeedBudgets, BudgetSeed{
			Category: b.Category,
			Limit:    limit,
			Month:    time.Month(b.Month),
			Year:     b.Year,
		})
	}

	return nil
}

// Load combines environment and, when WEALTHWATCH_CONFIG is set, file configuration
func Load() (*Config, error) {
	cfg, err := LoadFromEnv()
	if err != nil {
		return nil, errors.Wrap(err, "load from env")
	}

	if path := os.Getenv("WEALTHWATCH_CONFIG"); path != "" {
		if err := LoadFile(path, cfg); err != nil {
			return nil, errors.Wrap(err, "load from file")
		}
	}

	return cfg, nil
}

// ParseSymbols splits a comma separated symbol list, uppercasing and
// dropping blanks and duplicates.
func ParseSymbols(s string) []string {
	seen := make(map[string]bool)
	var symbols []string
	for _, part := range strings.Split(s, ",") {
		sym := strings.ToUpper(strings.TrimSpace(part))
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		symbols = append(symbols, sym)
	}
	return symbols
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.Wrapf(err, "%s must be an integer", key)
	}
	return n, nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, errors.Wrapf(err, "%s must be a boolean", key)
	}
	return b, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, errors.Wrapf(err, "%s must be a duration", key)
	}
	return d, nil
}
