package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wealthwatch/pkg/database"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db, zerolog.Nop())
}

func TestStore_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	l := newTestLedger()
	b := l.CreateBudget("Food & Dining", d("800"), time.December, 2024)
	l.AddExpense(d("45.50"), "Food & Dining", "Groceries", day(2024, 12, 3), b.ID)
	l.AddExpense(d("9.99"), "Shopping", "Cable", day(2024, 12, 4), "")
	l.AddHolding("AAPL", "Apple Inc.", d("10"), d("150"), d("175.23"))

	require.NoError(t, s.Save(ctx, l.Snapshot()))

	snap, err := s.Load(ctx)
	require.NoError(t, err)

	require.Len(t, snap.Budgets, 1)
	assert.Equal(t, b.ID, snap.Budgets[0].ID)
	assert.True(t, snap.Budgets[0].Spent.Equal(d("45.50")))
	assert.Equal(t, time.December, snap.Budgets[0].Month)

	require.Len(t, snap.Expenses, 2)
	assert.Equal(t, b.ID, snap.Expenses[0].BudgetID)
	assert.Empty(t, snap.Expenses[1].BudgetID)
	assert.True(t, snap.Expenses[0].Date.Equal(day(2024, 12, 3)))

	require.Len(t, snap.Holdings, 1)
	assert.True(t, snap.Holdings[0].TotalValue.Equal(d("1752.30")))

	restored := New()
	restored.Restore(snap)
	assert.True(t, Aggregates(restored.Budgets()).TotalSpent.Equal(d("45.50")))
}

func TestStore_SaveReplaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	l := newTestLedger()
	l.CreateBudget("a", d("1"), time.December, 2024)
	l.CreateBudget("b", d("1"), time.December, 2024)
	require.NoError(t, s.Save(ctx, l.Snapshot()))

	l.DeleteBudget(l.Budgets()[0].ID)
	require.NoError(t, s.Save(ctx, l.Snapshot()))

	snap, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Budgets, 1)
	assert.Equal(t, "b", snap.Budgets[0].Category)
}

func TestStore_LoadEmpty(t *testing.T) {
	snap, err := newTestStore(t).Load(context.Background())
	require.NoError(t, err)

	assert.NotNil(t, snap.Budgets)
	assert.Empty(t, snap.Budgets)
	assert.Empty(t, snap.Expenses)
	assert.Empty(t, snap.Holdings)
}
