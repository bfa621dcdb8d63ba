package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"wealthwatch/services/ledger"
)

const dateLayout = "2006-01-02"

type budgetRequest struct {
	Category string          `json:"category"`
	Limit    decimal.Decimal `json:"limit"`
	Month    int             `json:"month"`
	Year     int             `json:"year"`
}

type expenseRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
	BudgetID    string          `json:"budget_id"`
}

type holdingRequest struct {
	Symbol      string          `json:"symbol"`
	Shares      decimal.Decimal `json:"shares"`
	AverageCost decimal.Decimal `json:"average_cost"`
}

type budgetView struct {
	ledger.Budget
	Remaining   decimal.Decimal `json:"remaining"`
	Utilization decimal.Decimal `json:"utilization"`
	Status      ledger.Status   `json:"status"`
}

func viewBudgets(budgets []ledger.Budget) []budgetView {
	out := make([]budgetView, len(budgets))
	for i, b := range budgets {
		out[i] = budgetView{
			Budget:      b,
			Remaining:   b.Remaining(),
			Utilization: b.Utilization().Round(2),
			Status:      b.Status(),
		}
	}
	return out
}

// persist saves the ledger when storage is configured. Failures are logged;
// the in-memory change stands.
func (s *Server) persist(ctx context.Context) {
	if s.sync == nil {
		return
	}
	if err := s.sync.Sync(ctx); err != nil {
		s.log.Error().Err(err).Msg("Failed to persist ledger")
	}
}

// handleListBudgets lists budgets, optionally for one month
// GET /api/budgets?month=12&year=2024
func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets := s.ledger.Budgets()

	q := r.URL.Query()
	if q.Get("month") != "" || q.Get("year") != "" {
		month, err1 := strconv.Atoi(q.Get("month"))
		year, err2 := strconv.Atoi(q.Get("year"))
		if err1 != nil || err2 != nil {
			s.writeError(w, http.StatusBadRequest, "month and year must both be integers")
			return
		}
		budgets = s.ledger.BudgetsFor(time.Month(month), year)
	}

	s.writeJSON(w, http.StatusOK, viewBudgets(budgets))
}

// handleCreateBudget adds a budget
// POST /api/budgets
func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decode(r, &req); err != nil {
		s.writeErr(w, err)
		return
	}

	now := s.now()
	if req.Month == 0 {
		req.Month = int(now.Month())
	}
	if req.Year == 0 {
		req.Year = now.Year()
	}
	category := strings.TrimSpace(req.Category)

	if err := ledger.ValidateBudget(category, req.Limit, time.Month(req.Month), req.Year); err != nil {
		s.writeErr(w, err)
		return
	}

	b := s.ledger.CreateBudget(category, req.Limit, time.Month(req.Month), req.Year)
	s.persist(r.Context())

	s.writeJSON(w, http.StatusCreated, viewBudgets([]ledger.Budget{b})[0])
}

// handleDeleteBudget removes a budget; linked expenses are kept
// DELETE /api/budgets/{id}
func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.ledger.DeleteBudget(id) {
		s.writeErr(w, errors.Wrapf(ledger.ErrNotFound, "budget %s", id))
		return
	}
	s.persist(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// handleBudgetSummary returns totals and the spending breakdown
// GET /api/budgets/summary
func (s *Server) handleBudgetSummary(w http.ResponseWriter, r *http.Request) {
	budgets := s.ledger.Budgets()

	over, near := 0, 0
	for _, b := range budgets {
		switch b.Status() {
		case ledger.StatusOver:
			over++
		case ledger.StatusNearLimit:
			near++
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"totals":      ledger.Aggregates(budgets),
		"categories":  ledger.CategoryShares(budgets),
		"over_budget": over,
		"near_limit":  near,
	})
}

// handleListExpenses lists expenses, newest first
// GET /api/expenses
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, ledger.NewestFirst(s.ledger.Expenses()))
}

// handleAddExpense records an expense
// POST /api/expenses
func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decode(r, &req); err != nil {
		s.writeErr(w, err)
		return
	}

	category := strings.TrimSpace(req.Category)
	if err := ledger.ValidateExpense(req.Amount, category); err != nil {
		s.writeErr(w, err)
		return
	}

	date := s.now()
	if req.Date != "" {
		parsed, err := parseDate(req.Date)
		if err != nil {
			s.writeErr(w, err)
			return
		}
		date = parsed
	}

	e := s.ledger.AddExpense(req.Amount, category, strings.TrimSpace(req.Description), date, req.BudgetID)
	s.persist(r.Context())

	s.writeJSON(w, http.StatusCreated, e)
}

// handleDeleteExpense removes an expense and credits its budget
// DELETE /api/expenses/{id}
func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.ledger.DeleteExpense(id) {
		s.writeErr(w, errors.Wrapf(ledger.ErrNotFound, "expense %s", id))
		return
	}
	s.persist(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// handleExpenseSummary returns expense totals
// GET /api/expenses/summary
func (s *Server) handleExpenseSummary(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, ledger.SummarizeExpenses(s.ledger.Expenses(), s.now()))
}

// handleListHoldings lists stock positions
// GET /api/holdings
func (s *Server) handleListHoldings(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.ledger.Holdings())
}

// handleAddHolding prices a new position from a live quote
// POST /api/holdings
func (s *Server) handleAddHolding(w http.ResponseWriter, r *http.Request) {
	var req holdingRequest
	if err := decode(r, &req); err != nil {
		s.writeErr(w, err)
		return
	}

	if err := ledger.ValidateHolding(req.Symbol, req.Shares, req.AverageCost); err != nil {
		s.writeErr(w, err)
		return
	}

	q, err := s.quotes.GetQuote(r.Context(), req.Symbol)
	if err != nil {
		s.writeErr(w, err)
		return
	}

	h := s.ledger.AddHolding(q.Symbol, q.Name, req.Shares, req.AverageCost, q.Price)
	s.persist(r.Context())

	s.writeJSON(w, http.StatusCreated, h)
}

// handleRemoveHolding deletes a position
// DELETE /api/holdings/{id}
func (s *Server) handleRemoveHolding(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.ledger.RemoveHolding(id) {
		s.writeErr(w, errors.Wrapf(ledger.ErrNotFound, "holding %s", id))
		return
	}
	s.persist(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// handlePortfolioSummary returns portfolio totals
// GET /api/holdings/summary
func (s *Server) handlePortfolioSummary(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, ledger.PortfolioAggregates(s.ledger.Holdings()))
}

// handleDashboard returns the latest snapshot, refreshing when there is none
// GET /api/dashboard
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.dashboard.Latest()
	if !ok {
		snap = s.dashboard.Refresh(r.Context())
	}
	s.writeJSON(w, http.StatusOK, snap)
}

// handleRefreshDashboard forces a refresh
// POST /api/dashboard/refresh
func (s *Server) handleRefreshDashboard(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.dashboard.Refresh(r.Context()))
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, errors.Wrapf(ledger.ErrInvalid, "invalid date %q", s)
}
