package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wealthwatch/pkg/app"
	"wealthwatch/pkg/config"
	"wealthwatch/services/ledger"
	"wealthwatch/services/quote"
)

var testNow = time.Date(2024, time.December, 15, 12, 0, 0, 0, time.UTC)

// newOfflineApp points the quote client at a backend that is always down,
// so every quote comes from the synthetic tier.
func newOfflineApp(t *testing.T) *app.App {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	a, err := app.New(context.Background(), &config.Config{
		APIURL:         srv.URL,
		DatabaseURL:    ":memory:",
		RequestTimeout: time.Second,
		UserID:         "demo",
		Watchlist:      []string{"AAPL", "MSFT"},
	}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestBudgetInput_Parse(t *testing.T) {
	tests := []struct {
		name    string
		in      budgetInput
		month   time.Month
		year    int
		wantErr bool
	}{
		{"defaults to now", budgetInput{Category: "Food", Limit: "800"}, time.December, 2024, false},
		{"explicit month", budgetInput{Category: "Food", Limit: "800", Month: "3", Year: "2025"}, time.March, 2025, false},
		{"bad limit", budgetInput{Category: "Food", Limit: "lots"}, 0, 0, true},
		{"month out of range", budgetInput{Category: "Food", Limit: "1", Month: "13"}, 0, 0, true},
		{"blank category", budgetInput{Category: " ", Limit: "1"}, 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.in.parse(testNow)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ledger.ErrInvalid))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.month, got.month)
			assert.Equal(t, tt.year, got.year)
		})
	}
}

func TestExpenseInput_Parse(t *testing.T) {
	got, err := expenseInput{Amount: "45.50", Category: "Food", Date: "2024-12-03"}.parse(testNow)
	require.NoError(t, err)
	assert.Equal(t, 3, got.date.Day())

	got, err = expenseInput{Amount: "1", Category: "Food"}.parse(testNow)
	require.NoError(t, err)
	assert.Equal(t, testNow, got.date)

	_, err = expenseInput{Amount: "-1", Category: "Food"}.parse(testNow)
	assert.Error(t, err)

	_, err = expenseInput{Amount: "1", Category: "Food", Date: "03/12/2024"}.parse(testNow)
	assert.Error(t, err)
}

func TestHoldingInput_Parse(t *testing.T) {
	got, err := holdingInput{Symbol: " aapl ", Shares: "10"}.parse()
	require.NoError(t, err)
	assert.Equal(t, "AAPL", got.symbol)
	assert.True(t, got.averageCost.IsZero())

	_, err = holdingInput{Symbol: "AAPL", Shares: "0"}.parse()
	assert.Error(t, err)
}

func TestFormValidators(t *testing.T) {
	assert.NoError(t, validDecimal("12.5"))
	assert.Error(t, validDecimal("abc"))
	assert.NoError(t, validOptionalDecimal(""))
	assert.NoError(t, validOptionalDate(""))
	assert.Error(t, validOptionalDate("tomorrow"))
	assert.Error(t, required("category")("  "))
}

func TestBudgetAndExpenseCommands(t *testing.T) {
	a := newOfflineApp(t)
	ctx := context.Background()
	var out bytes.Buffer

	require.NoError(t, runBudgetAdd(ctx, a, &out, budgetInput{Category: "Food & Dining", Limit: "100"}, testNow))
	budgets := a.Ledger.Budgets()
	require.Len(t, budgets, 1)
	assert.Contains(t, out.String(), "Created budget")

	out.Reset()
	err := runExpenseAdd(ctx, a, &out, expenseInput{Amount: "120", Category: "Food & Dining", BudgetID: budgets[0].ID}, testNow)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "over budget")

	out.Reset()
	err = runExpenseAdd(ctx, a, &out, expenseInput{Amount: "5", Category: "Misc", BudgetID: "missing"}, testNow)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "not found")

	snap, err := a.Store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Expenses, 2, "changes are persisted")

	out.Reset()
	printExpenses(&out, a.Ledger.Expenses(), a.Ledger.Budgets(), testNow)
	assert.Contains(t, out.String(), "2 expenses")
	assert.Contains(t, out.String(), "SPENDING BY BUDGET")

	out.Reset()
	printBudgets(&out, a.Ledger.Budgets())
	assert.Contains(t, out.String(), "over_budget")
}

func TestHoldingCommands(t *testing.T) {
	a := newOfflineApp(t)
	ctx := context.Background()
	var out bytes.Buffer

	require.NoError(t, runHoldingAdd(ctx, a, &out, holdingInput{Symbol: "aapl", Shares: "10", AverageCost: "150"}))
	holdings := a.Ledger.Holdings()
	require.Len(t, holdings, 1)
	assert.Equal(t, "AAPL", holdings[0].Symbol)
	assert.True(t, holdings[0].CurrentPrice.IsPositive())

	err := runHoldingAdd(ctx, a, &out, holdingInput{Symbol: "NOTREAL", Shares: "1"})
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "holdings.csv")
	csv := "symbol,shares,average_cost,current_price\nMSFT,5,300,\nNVDA,2,400,495.22\nbad\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o600))

	out.Reset()
	require.NoError(t, runHoldingImport(ctx, a, &out, path))
	assert.Contains(t, out.String(), "Imported 2 holdings")

	for _, h := range a.Ledger.Holdings() {
		assert.True(t, h.CurrentPrice.IsPositive(), h.Symbol)
	}

	out.Reset()
	require.NoError(t, runPortfolio(ctx, a, &out))
	assert.Contains(t, out.String(), "PORTFOLIO")
	assert.Contains(t, out.String(), "NVDA")
}

func TestStatus(t *testing.T) {
	a := newOfflineApp(t)
	var out bytes.Buffer

	ctx := context.Background()
	printStatus(&out, a.Dashboard.Refresh(ctx), storageStatus(ctx, a))

	assert.Contains(t, out.String(), "Net worth")
	assert.Contains(t, out.String(), "sqlite, healthy")
	assert.Contains(t, out.String(), "Prev Close")
	assert.Contains(t, out.String(), "WATCHLIST")
	assert.Contains(t, out.String(), "fallback")
}

func TestRunHistory(t *testing.T) {
	a := newOfflineApp(t)
	var out bytes.Buffer

	require.NoError(t, runHistory(context.Background(), a.Quotes, &out, "AAPL", "1M"))
	assert.Contains(t, out.String(), "AAPL")
	assert.Contains(t, out.String(), "synthetic")

	assert.Error(t, runHistory(context.Background(), a.Quotes, &out, "AAPL", "10Y"))
}

func TestStorageStatus(t *testing.T) {
	a := newOfflineApp(t)
	ctx := context.Background()

	assert.Equal(t, "sqlite, healthy", storageStatus(ctx, a))

	require.NoError(t, a.DB.Close())
	assert.Contains(t, storageStatus(ctx, a), "unhealthy")

	assert.Equal(t, "in memory", storageStatus(ctx, &app.App{}))
}

func TestRunRecorded(t *testing.T) {
	a := newOfflineApp(t)
	ctx := context.Background()
	var out bytes.Buffer

	err := runRecorded(ctx, a.Recorder, &out, []string{"AAPL"}, "")
	assert.True(t, errors.Is(err, quote.ErrNotFound))

	a.Dashboard.Refresh(ctx)

	out.Reset()
	require.NoError(t, runRecorded(ctx, a.Recorder, &out, []string{"aapl", "msft"}, ""))
	assert.Contains(t, out.String(), "RECORDED QUOTES")
	assert.Contains(t, out.String(), "AAPL")
	assert.Contains(t, out.String(), "MSFT")

	out.Reset()
	require.NoError(t, runRecorded(ctx, a.Recorder, &out, []string{"AAPL"}, time.Now().AddDate(0, 0, -1).Format(dateLayout)))
	assert.Contains(t, out.String(), "AAPL")

	out.Reset()
	require.NoError(t, runRecorded(ctx, a.Recorder, &out, []string{"AAPL"}, time.Now().AddDate(0, 0, 2).Format(dateLayout)))
	assert.Contains(t, out.String(), "Nothing recorded yet")

	assert.Error(t, runRecorded(ctx, a.Recorder, &out, []string{"AAPL"}, "last week"))
}

func TestRunSearch(t *testing.T) {
	a := newOfflineApp(t)
	var out bytes.Buffer

	require.NoError(t, runSearch(context.Background(), a.Quotes, &out, "micro"))
	assert.Contains(t, out.String(), "MSFT")
	assert.Contains(t, out.String(), "Microsoft Corporation")

	out.Reset()
	require.NoError(t, runSearch(context.Background(), a.Quotes, &out, "no such company"))
	assert.Contains(t, out.String(), "No matches")

	assert.Error(t, runSearch(context.Background(), a.Quotes, &out, " "))
}

func TestRunCrypto(t *testing.T) {
	a := newOfflineApp(t)
	var out bytes.Buffer

	require.NoError(t, runCrypto(context.Background(), a.Quotes, &out, []string{"btc", "ETH-USD"}))
	assert.Contains(t, out.String(), "BTC-USD")
	assert.Contains(t, out.String(), "ETH-USD")

	assert.Error(t, runCrypto(context.Background(), a.Quotes, &out, []string{"DOGE"}))
}

func TestBackendOnlyCommands_Offline(t *testing.T) {
	a := newOfflineApp(t)
	ctx := context.Background()
	var out bytes.Buffer

	printAccounts(&out, "demo", a.Quotes.Accounts(ctx, "demo"))
	assert.Contains(t, out.String(), "No accounts available")

	err := runRemoteHoldings(ctx, a.Quotes, &out, "demo")
	assert.True(t, errors.Is(err, quote.ErrUnreachable))
}

func TestPrintAccounts(t *testing.T) {
	var out bytes.Buffer
	printAccounts(&out, "demo", []quote.Account{
		{Name: "Chase Checking", Type: "checking", Balance: decimal.RequireFromString("12500.75"), Currency: "USD"},
	})
	assert.Contains(t, out.String(), "Chase Checking")
	assert.Contains(t, out.String(), "$12,500.75")
}

func TestSymbolOptions(t *testing.T) {
	matches := []quote.SymbolMatch{
		{Symbol: "AAPL", Name: "Apple Inc.", Region: "United States"},
	}

	opts := symbolOptions("apple", matches)
	require.Len(t, opts, 2)
	assert.Equal(t, "AAPL", opts[0].Value)
	assert.Contains(t, opts[0].Key, "Apple Inc.")
	assert.Equal(t, "APPLE", opts[1].Value)

	opts = symbolOptions("aapl", matches)
	require.Len(t, opts, 1, "a matching ticker is not offered twice")

	assert.Empty(t, symbolOptions(" ", nil))
}
