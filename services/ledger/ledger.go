// Package ledger keeps budgets, expenses and stock holdings in memory and
// derives the totals shown on the dashboard.
//
// An expense may reference a budget by id. Adding the expense folds its
// amount into that budget's spent total and deleting it takes the amount
// back out, floored at zero. The reference is a plain id lookup: deleting
// a budget leaves linked expenses untouched, and a reference that no
// longer resolves is simply skipped.
package ledger

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Budget is a monthly spending limit for a category
type Budget struct {
	ID        string          `json:"id"`
	Category  string          `json:"category"`
	Limit     decimal.Decimal `json:"limit"`
	Spent     decimal.Decimal `json:"spent"`
	Month     time.Month      `json:"month"`
	Year      int             `json:"year"`
	CreatedAt time.Time       `json:"created_at"`
}

// Expense is a single purchase, optionally debiting a budget
type Expense struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	BudgetID    string          `json:"budget_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Ledger is safe for concurrent use. Its operations never fail; inputs are
// checked by the Validate helpers at the edges.
type Ledger struct {
	mu       sync.RWMutex
	budgets  []Budget
	expenses []Expense
	holdings []Holding
	newID    func() string
	now      func() time.Time
}

// New creates an empty ledger
func New() *Ledger {
	return &Ledger{
		newID: uuid.NewString,
		now:   time.Now,
	}
}

// CreateBudget adds a budget with nothing spent. Budgets for the same
// category and month may coexist.
func (l *Ledger) CreateBudget(category string, limit decimal.Decimal, month time.Month, year int) Budget {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := Budget{
		ID:        l.newID(),
		Category:  category,
		Limit:     limit,
		Spent:     decimal.Zero,
		Month:     month,
		Year:      year,
		CreatedAt: l.now(),
	}
	l.budgets = append(l.budgets, b)
	return b
}

// DeleteBudget removes a budget. Expenses that reference it keep their
// BudgetID. It reports whether the budget existed.
func (l *Ledger) DeleteBudget(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.budgetIndex(id)
	if i < 0 {
		return false
	}
	l.budgets = append(l.budgets[:i], l.budgets[i+1:]...)
	return true
}

// AddExpense records an expense. When budgetID resolves, the amount is
// added to that budget's spent total whatever its category.
func (l *Ledger) AddExpense(amount decimal.Decimal, category, description string, date time.Time, budgetID string) Expense {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := Expense{
		ID:          l.newID(),
		Amount:      amount,
		Category:    category,
		Description: description,
		Date:        date,
		BudgetID:    budgetID,
		CreatedAt:   l.now(),
	}
	l.expenses = append(l.expenses, e)

	if i := l.budgetIndex(budgetID); i >= 0 {
		l.budgets[i].Spent = l.budgets[i].Spent.Add(amount)
	}
	return e
}

// DeleteExpense removes an expense and takes its amount back out of the
// referenced budget, never below zero. It reports whether the expense
// existed.
func (l *Ledger) DeleteExpense(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := -1
	for i := range l.expenses {
		if l.expenses[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	e := l.expenses[idx]
	l.expenses = append(l.expenses[:idx], l.expenses[idx+1:]...)

	if i := l.budgetIndex(e.BudgetID); i >= 0 {
		l.budgets[i].Spent = decimal.Max(decimal.Zero, l.budgets[i].Spent.Sub(e.Amount))
	}
	return true
}

// budgetIndex returns -1 for empty or unknown ids. Callers hold the lock.
func (l *Ledger) budgetIndex(id string) int {
	if id == "" {
		return -1
	}
	for i := range l.budgets {
		if l.budgets[i].ID == id {
			return i
		}
	}
	return -1
}

// Budget looks up a budget by id
func (l *Ledger) Budget(id string) (Budget, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if i := l.budgetIndex(id); i >= 0 {
		return l.budgets[i], true
	}
	return Budget{}, false
}

// Budgets returns a copy of all budgets in creation order
func (l *Ledger) Budgets() []Budget {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Budget, len(l.budgets))
	copy(out, l.budgets)
	return out
}

// BudgetsFor returns the budgets of one month
func (l *Ledger) BudgetsFor(month time.Month, year int) []Budget {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := []Budget{}
	for _, b := range l.budgets {
		if b.Month == month && b.Year == year {
			out = append(out, b)
		}
	}
	return out
}

// Expense looks up an expense by id
func (l *Ledger) Expense(id string) (Expense, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, e := range l.expenses {
		if e.ID == id {
			return e, true
		}
	}
	return Expense{}, false
}

// Expenses returns a copy of all expenses in the order they were added
func (l *Ledger) Expenses() []Expense {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Expense, len(l.expenses))
	copy(out, l.expenses)
	return out
}

// Snapshot is the full ledger state, used for persistence
type Snapshot struct {
	Budgets  []Budget  `json:"budgets"`
	Expenses []Expense `json:"expenses"`
	Holdings []Holding `json:"holdings"`
}

// Snapshot copies the current state
func (l *Ledger) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s := Snapshot{
		Budgets:  make([]Budget, len(l.budgets)),
		Expenses: make([]Expense, len(l.expenses)),
		Holdings: make([]Holding, len(l.holdings)),
	}
	copy(s.Budgets, l.budgets)
	copy(s.Expenses, l.expenses)
	copy(s.Holdings, l.holdings)
	return s
}

// Restore replaces the ledger state with s. Spent totals are taken from
// the snapshot as stored.
func (l *Ledger) Restore(s Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.budgets = append([]Budget(nil), s.Budgets...)
	l.expenses = append([]Expense(nil), s.Expenses...)
	l.holdings = append([]Holding(nil), s.Holdings...)
}
