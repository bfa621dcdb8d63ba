package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"wealthwatch/services/ledger"
	"wealthwatch/services/quote"
)

const dateLayout = "2006-01-02"

// budgetInput is the raw text of a budget entered by flags or form
type budgetInput struct {
	Category string
	Limit    string
	Month    string
	Year     string
}

type expenseInput struct {
	Amount      string
	Category    string
	Description string
	Date        string
	BudgetID    string
}

type holdingInput struct {
	Query       string
	Symbol      string
	Shares      string
	AverageCost string
}

func (in budgetInput) complete() bool {
	return in.Category != "" && in.Limit != ""
}

func (in expenseInput) complete() bool {
	return in.Amount != "" && in.Category != ""
}

func (in holdingInput) complete() bool {
	return in.Symbol != "" && in.Shares != ""
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.Errorf("%s is required", field)
		}
		return nil
	}
}

func validDecimal(s string) error {
	_, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return errors.New("enter a number, e.g. 125.50")
	}
	return nil
}

func validOptionalDecimal(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return validDecimal(s)
}

func validOptionalDate(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := time.Parse(dateLayout, strings.TrimSpace(s)); err != nil {
		return errors.New("use YYYY-MM-DD")
	}
	return nil
}

func budgetForm(in *budgetInput) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Category").
				Description("e.g. Food & Dining").
				Value(&in.Category).
				Validate(required("category")),
			huh.NewInput().
				Title("Monthly limit").
				Value(&in.Limit).
				Validate(validDecimal),
			huh.NewInput().
				Title("Month").
				Description("1-12, blank for the current month").
				Value(&in.Month),
			huh.NewInput().
				Title("Year").
				Description("Blank for the current year").
				Value(&in.Year),
		),
	)
}

func expenseForm(in *expenseInput, budgets []ledger.Budget) *huh.Form {
	options := []huh.Option[string]{huh.NewOption("None", "")}
	for _, b := range budgets {
		label := b.Category + " (" + b.Month.String() + " " + strconv.Itoa(b.Year) + ")"
		options = append(options, huh.NewOption(label, b.ID))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Amount").
				Value(&in.Amount).
				Validate(validDecimal),
			huh.NewInput().
				Title("Category").
				Value(&in.Category).
				Validate(required("category")),
			huh.NewInput().
				Title("Description").
				Value(&in.Description),
			huh.NewInput().
				Title("Date").
				Description("YYYY-MM-DD, blank for today").
				Value(&in.Date).
				Validate(validOptionalDate),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Charge to budget").
				Options(options...).
				Value(&in.BudgetID),
		),
	)
}

// symbolOptions lists search matches for the symbol picker. The query itself
// is offered last so tickers the search misses can still be entered.
func symbolOptions(query string, matches []quote.SymbolMatch) []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(matches)+1)
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		opts = append(opts, huh.NewOption(fmt.Sprintf("%-10s %s (%s)", m.Symbol, m.Name, m.Region), m.Symbol))
		seen[m.Symbol] = true
	}
	if sym := quote.CanonicalSymbol(query); sym != "" && !seen[sym] {
		opts = append(opts, huh.NewOption(sym, sym))
	}
	return opts
}

// holdingForm asks for a search query and offers the matches, unless a
// symbol was already given
func holdingForm(in *holdingInput, search func(query string) []quote.SymbolMatch) *huh.Form {
	skipSearch := in.Symbol != ""
	hidden := func() bool { return skipSearch }

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Find a symbol").
				Description("Ticker or company name, e.g. apple").
				Value(&in.Query).
				Validate(required("search")),
		).WithHideFunc(hidden),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Ticker symbol").
				OptionsFunc(func() []huh.Option[string] {
					return symbolOptions(in.Query, search(in.Query))
				}, &in.Query).
				Value(&in.Symbol),
		).WithHideFunc(hidden),
		huh.NewGroup(
			huh.NewInput().
				Title("Shares").
				Value(&in.Shares).
				Validate(validDecimal),
			huh.NewInput().
				Title("Average cost per share").
				Description("Blank for zero").
				Value(&in.AverageCost).
				Validate(validOptionalDecimal),
		),
	)
}

type budgetArgs struct {
	category string
	limit    decimal.Decimal
	month    time.Month
	year     int
}

// parse fills blank month and year from now and validates the result
func (in budgetInput) parse(now time.Time) (budgetArgs, error) {
	var out budgetArgs
	var err error

	out.category = strings.TrimSpace(in.Category)
	if out.limit, err = decimal.NewFromString(strings.TrimSpace(in.Limit)); err != nil {
		return out, errors.Wrapf(ledger.ErrInvalid, "limit %q", in.Limit)
	}

	out.month = now.Month()
	if s := strings.TrimSpace(in.Month); s != "" {
		m, err := strconv.Atoi(s)
		if err != nil {
			return out, errors.Wrapf(ledger.ErrInvalid, "month %q", in.Month)
		}
		out.month = time.Month(m)
	}

	out.year = now.Year()
	if s := strings.TrimSpace(in.Year); s != "" {
		if out.year, err = strconv.Atoi(s); err != nil {
			return out, errors.Wrapf(ledger.ErrInvalid, "year %q", in.Year)
		}
	}

	return out, ledger.ValidateBudget(out.category, out.limit, out.month, out.year)
}

type expenseArgs struct {
	amount      decimal.Decimal
	category    string
	description string
	date        time.Time
	budgetID    string
}

func (in expenseInput) parse(now time.Time) (expenseArgs, error) {
	var out expenseArgs
	var err error

	if out.amount, err = decimal.NewFromString(strings.TrimSpace(in.Amount)); err != nil {
		return out, errors.Wrapf(ledger.ErrInvalid, "amount %q", in.Amount)
	}
	out.category = strings.TrimSpace(in.Category)
	out.description = strings.TrimSpace(in.Description)
	out.budgetID = strings.TrimSpace(in.BudgetID)

	out.date = now
	if s := strings.TrimSpace(in.Date); s != "" {
		if out.date, err = time.Parse(dateLayout, s); err != nil {
			return out, errors.Wrapf(ledger.ErrInvalid, "date %q", in.Date)
		}
	}

	return out, ledger.ValidateExpense(out.amount, out.category)
}

type holdingArgs struct {
	symbol      string
	shares      decimal.Decimal
	averageCost decimal.Decimal
}

func (in holdingInput) parse() (holdingArgs, error) {
	var out holdingArgs
	var err error

	out.symbol = strings.ToUpper(strings.TrimSpace(in.Symbol))
	if out.shares, err = decimal.NewFromString(strings.TrimSpace(in.Shares)); err != nil {
		return out, errors.Wrapf(ledger.ErrInvalid, "shares %q", in.Shares)
	}
	out.averageCost = decimal.Zero
	if s := strings.TrimSpace(in.AverageCost); s != "" {
		if out.averageCost, err = decimal.NewFromString(s); err != nil {
			return out, errors.Wrapf(ledger.ErrInvalid, "average cost %q", in.AverageCost)
		}
	}

	return out, ledger.ValidateHolding(out.symbol, out.shares, out.averageCost)
}
