package ledger

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// newTestLedger uses sequential ids and a fixed clock
func newTestLedger() *Ledger {
	l := New()
	n := 0
	l.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	l.now = func() time.Time { return time.Date(2024, 12, 15, 12, 0, 0, 0, time.UTC) }
	return l
}

func day(y int, m time.Month, dd int) time.Time {
	return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
}

func TestCreateBudget(t *testing.T) {
	l := newTestLedger()

	b := l.CreateBudget("Food & Dining", d("800"), time.December, 2024)
	dup := l.CreateBudget("Food & Dining", d("800"), time.December, 2024)

	assert.NotEmpty(t, b.ID)
	assert.NotEqual(t, b.ID, dup.ID)
	assert.True(t, b.Spent.IsZero())
	assert.Len(t, l.Budgets(), 2, "duplicates are allowed")
}

func TestCreateBudget_UniqueIDs(t *testing.T) {
	l := New()
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		b := l.CreateBudget("x", d("1"), time.January, 2024)
		require.False(t, seen[b.ID])
		seen[b.ID] = true
	}
}

func TestAddExpense_FoldsIntoBudget(t *testing.T) {
	l := newTestLedger()
	b := l.CreateBudget("Food & Dining", d("800"), time.December, 2024)

	l.AddExpense(d("45.50"), "Food & Dining", "Groceries", day(2024, 12, 3), b.ID)
	l.AddExpense(d("12.25"), "Food & Dining", "Lunch", day(2024, 12, 4), b.ID)

	got, ok := l.Budget(b.ID)
	require.True(t, ok)
	assert.True(t, got.Spent.Equal(d("57.75")))
}

func TestAddExpense_CrossCategoryLinkAllowed(t *testing.T) {
	l := newTestLedger()
	b := l.CreateBudget("Transportation", d("400"), time.December, 2024)

	l.AddExpense(d("30"), "Entertainment", "Movies", day(2024, 12, 5), b.ID)

	got, _ := l.Budget(b.ID)
	assert.True(t, got.Spent.Equal(d("30")))
}

func TestAddExpense_UnknownBudgetIsNoop(t *testing.T) {
	l := newTestLedger()
	b := l.CreateBudget("Shopping", d("500"), time.December, 2024)

	e := l.AddExpense(d("20"), "Shopping", "Socks", day(2024, 12, 5), "missing")
	l.AddExpense(d("5"), "Shopping", "Gum", day(2024, 12, 5), "")

	assert.Equal(t, "missing", e.BudgetID)
	got, _ := l.Budget(b.ID)
	assert.True(t, got.Spent.IsZero())
	assert.Len(t, l.Expenses(), 2)
}

func TestDeleteExpense_Unfolds(t *testing.T) {
	l := newTestLedger()
	b := l.CreateBudget("Food & Dining", d("800"), time.December, 2024)
	e1 := l.AddExpense(d("45.50"), "Food & Dining", "Groceries", day(2024, 12, 3), b.ID)
	l.AddExpense(d("10"), "Food & Dining", "Coffee", day(2024, 12, 4), b.ID)

	require.True(t, l.DeleteExpense(e1.ID))
	assert.False(t, l.DeleteExpense(e1.ID))

	got, _ := l.Budget(b.ID)
	assert.True(t, got.Spent.Equal(d("10")))
	assert.Len(t, l.Expenses(), 1)
}

func TestDeleteExpense_FloorsAtZero(t *testing.T) {
	l := newTestLedger()
	b := l.CreateBudget("Food & Dining", d("800"), time.December, 2024)
	e := l.AddExpense(d("50"), "Food & Dining", "Dinner", day(2024, 12, 3), b.ID)

	// an inconsistent history restored from storage
	snap := l.Snapshot()
	snap.Budgets[0].Spent = d("20")
	l.Restore(snap)

	l.DeleteExpense(e.ID)

	got, _ := l.Budget(b.ID)
	assert.True(t, got.Spent.IsZero())
}

func TestDeleteBudget_KeepsExpenses(t *testing.T) {
	l := newTestLedger()
	b := l.CreateBudget("Entertainment", d("300"), time.December, 2024)
	e := l.AddExpense(d("25"), "Entertainment", "Concert", day(2024, 12, 6), b.ID)
	before := l.Expenses()

	require.True(t, l.DeleteBudget(b.ID))
	assert.False(t, l.DeleteBudget(b.ID))

	assert.Equal(t, before, l.Expenses())
	got, ok := l.Expense(e.ID)
	require.True(t, ok)
	assert.Equal(t, b.ID, got.BudgetID, "dangling reference is kept")

	// deleting the orphaned expense touches no budget
	assert.True(t, l.DeleteExpense(e.ID))
	assert.Empty(t, l.Budgets())
}

func TestSpentMatchesLinkedExpenses(t *testing.T) {
	rnd := rand.New(rand.NewPCG(1, 2))
	l := newTestLedger()

	var budgetIDs []string
	for i := 0; i < 4; i++ {
		budgetIDs = append(budgetIDs, l.CreateBudget(fmt.Sprintf("c%d", i), d("100"), time.December, 2024).ID)
	}
	budgetIDs = append(budgetIDs, "", "dangling")

	for step := 0; step < 500; step++ {
		expenses := l.Expenses()
		if len(expenses) > 0 && rnd.IntN(3) == 0 {
			l.DeleteExpense(expenses[rnd.IntN(len(expenses))].ID)
		} else {
			amount := decimal.New(int64(rnd.IntN(10000)+1), -2)
			l.AddExpense(amount, "c", "step", day(2024, 12, 1), budgetIDs[rnd.IntN(len(budgetIDs))])
		}

		sums := map[string]decimal.Decimal{}
		for _, e := range l.Expenses() {
			sums[e.BudgetID] = sums[e.BudgetID].Add(e.Amount)
		}
		for _, b := range l.Budgets() {
			require.True(t, b.Spent.Equal(sums[b.ID]), "step %d budget %s: spent %s, linked %s", step, b.ID, b.Spent, sums[b.ID])
		}
	}
}

func TestBudgetsFor(t *testing.T) {
	l := newTestLedger()
	l.CreateBudget("a", d("1"), time.November, 2024)
	l.CreateBudget("b", d("1"), time.December, 2024)
	l.CreateBudget("c", d("1"), time.December, 2023)

	got := l.BudgetsFor(time.December, 2024)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].Category)
	assert.NotNil(t, l.BudgetsFor(time.March, 2020))
}

func TestSnapshotIsACopy(t *testing.T) {
	l := newTestLedger()
	l.CreateBudget("a", d("1"), time.December, 2024)

	snap := l.Snapshot()
	snap.Budgets[0].Category = "changed"

	assert.Equal(t, "a", l.Budgets()[0].Category)
}
