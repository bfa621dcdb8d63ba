package app

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wealthwatch/pkg/config"
	"wealthwatch/services/ledger"
)

func testConfig(dbURL string) *config.Config {
	return &config.Config{
		APIURL:          "http://127.0.0.1:1",
		DatabaseURL:     dbURL,
		RequestTimeout:  time.Second,
		UserID:          "demo",
		Watchlist:       []string{"AAPL"},
		RefreshSchedule: config.DefaultRefreshSchedule,
		SeedBudgets: []config.BudgetSeed{
			{Category: "Food & Dining", Limit: decimal.NewFromInt(800), Month: time.December, Year: 2024},
			{Category: "", Limit: decimal.NewFromInt(1), Month: time.December, Year: 2024},
			{Category: "Transport", Limit: decimal.NewFromInt(300), Month: time.January},
		},
	}
}

func TestNew_InMemory(t *testing.T) {
	a, err := New(context.Background(), testConfig(""), zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.DB)
	assert.Nil(t, a.Store)
	assert.Nil(t, a.Sync)
	assert.NoError(t, a.Save(context.Background()))

	budgets := a.Ledger.Budgets()
	require.Len(t, budgets, 2, "blank category is skipped")
	assert.Equal(t, time.Now().Year(), budgets[1].Year)
}

func TestNew_PersistsSeeds(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testConfig(":memory:"), zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.Store)
	snap, err := a.Store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Budgets, 2)
}

type brokenSaver struct{}

func (brokenSaver) Save(context.Context, ledger.Snapshot) error {
	return errors.New("database is locked")
}

func TestSeedBudgets_ReportsSaveFailure(t *testing.T) {
	l := ledger.New()
	a := &App{
		Config: testConfig(""),
		Log:    zerolog.Nop(),
		Ledger: l,
		Sync:   ledger.NewSyncer(l, brokenSaver{}),
	}

	err := a.seedBudgets(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
	assert.Len(t, l.Budgets(), 2, "seeds stay in memory")
}

func TestSave_SerializesThroughSyncer(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testConfig(":memory:"), zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.Sync)
	a.Ledger.AddExpense(decimal.NewFromInt(12), "Transport", "bus pass", time.Now(), "")
	require.NoError(t, a.Save(ctx))

	snap, err := a.Store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Expenses, 1)
}
