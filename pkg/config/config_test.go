package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"WEALTHWATCH_API_URL", "ALPHAVANTAGE_API_KEY", "DATABASE_URL", "LOG_LEVEL",
		"LOG_PRETTY", "PORT", "USER_ID", "WATCHLIST", "REFRESH_SCHEDULE",
		"REQUEST_TIMEOUT", "WEALTHWATCH_CONFIG",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, DefaultAlphaVantageKey, cfg.AlphaVantageAPIKey)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout)
	assert.Equal(t, DefaultRefreshSchedule, cfg.RefreshSchedule)
	assert.Equal(t, DefaultWatchlist, cfg.Watchlist)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestLoadFromEnv_WithAllVars(t *testing.T) {
	clearEnv(t)
	t.Setenv("WEALTHWATCH_API_URL", "http://backend:9000/")
	t.Setenv("ALPHAVANTAGE_API_KEY", "test_alpha_key")
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_PRETTY", "true")
	t.Setenv("REQUEST_TIMEOUT", "3s")
	t.Setenv("WATCHLIST", "spy, qqq,,SPY, btc-usd")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "http://backend:9000", cfg.APIURL)
	assert.Equal(t, "test_alpha_key", cfg.AlphaVantageAPIKey)
	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.LogPretty)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"SPY", "QQQ", "BTC-USD"}, cfg.Watchlist)
}

func TestLoadFromEnv_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"PORT", "eighty"},
		{"LOG_PRETTY", "maybe"},
		{"REQUEST_TIMEOUT", "10"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := LoadFromEnv()
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "wealthwatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
user_id: alice
watchlist: [msft, "^gspc"]
refresh_schedule: "@every 1m"
budgets:
  - category: Food & Dining
    limit: "800"
    month: 12
    year: 2024
`), 0o600))
	t.Setenv("WEALTHWATCH_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "alice", cfg.UserID)
	assert.Equal(t, []string{"MSFT", "^GSPC"}, cfg.Watchlist)
	assert.Equal(t, "@every 1m", cfg.RefreshSchedule)
	require.Len(t, cfg.SeedBudgets, 1)
	assert.Equal(t, "Food & Dining", cfg.SeedBudgets[0].Category)
	assert.True(t, decimal.NewFromInt(800).Equal(cfg.SeedBudgets[0].Limit))
	assert.Equal(t, time.December, cfg.SeedBudgets[0].Month)
}

func TestLoadFile_InvalidBudget(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad limit", "budgets:\n  - {category: Food, limit: lots, month: 1, year: 2025}\n"},
		{"negative limit", "budgets:\n  - {category: Food, limit: \"-5\", month: 1, year: 2025}\n"},
		{"bad month", "budgets:\n  - {category: Food, limit: \"5\", month: 13, year: 2025}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cfg.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o600))

			err := LoadFile(path, &Config{})
			assert.Error(t, err)
		})
	}
}

func TestParseSymbols(t *testing.T) {
	assert.Nil(t, ParseSymbols(""))
	assert.Equal(t, []string{"AAPL"}, ParseSymbols(" aapl ,AAPL"))
}
