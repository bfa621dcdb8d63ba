package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"wealthwatch/pkg/app"
	"wealthwatch/pkg/format"
	"wealthwatch/services/ledger"
)

var expenseFlags expenseInput

var expenseCmd = &cobra.Command{
	Use:   "expense",
	Short: "Record and review expenses",
}

var expenseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List expenses, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(_ context.Context, a *app.App, out io.Writer) error {
			printExpenses(out, a.Ledger.Expenses(), a.Ledger.Budgets(), time.Now())
			return nil
		})
	},
}

var expenseAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record an expense (interactive when --amount or --category is missing)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, out io.Writer) error {
			in := expenseFlags
			if !in.complete() {
				if err := expenseForm(&in, a.Ledger.Budgets()).Run(); err != nil {
					return err
				}
			}
			return runExpenseAdd(ctx, a, out, in, time.Now())
		})
	},
}

var expenseDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete an expense and credit its budget",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, out io.Writer) error {
			if !a.Ledger.DeleteExpense(args[0]) {
				return fmt.Errorf("expense %s not found", args[0])
			}
			if err := a.Save(ctx); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Deleted expense %s\n", args[0])
			return nil
		})
	},
}

func init() {
	f := expenseAddCmd.Flags()
	f.StringVar(&expenseFlags.Amount, "amount", "", "Amount spent")
	f.StringVar(&expenseFlags.Category, "category", "", "Spending category")
	f.StringVar(&expenseFlags.Description, "description", "", "What it was for")
	f.StringVar(&expenseFlags.Date, "date", "", "Date YYYY-MM-DD (default today)")
	f.StringVar(&expenseFlags.BudgetID, "budget", "", "Budget ID to charge")

	expenseCmd.AddCommand(expenseListCmd, expenseAddCmd, expenseDeleteCmd)
	rootCmd.AddCommand(expenseCmd)
}

func runExpenseAdd(ctx context.Context, a *app.App, out io.Writer, in expenseInput, now time.Time) error {
	args, err := in.parse(now)
	if err != nil {
		return err
	}

	if args.budgetID != "" {
		if _, ok := a.Ledger.Budget(args.budgetID); !ok {
			fmt.Fprintln(out, mutedStyle.Render("  Budget "+args.budgetID+" not found, expense recorded without one"))
		}
	}

	e := a.Ledger.AddExpense(args.amount, args.category, args.description, args.date, args.budgetID)
	if err := a.Save(ctx); err != nil {
		return err
	}

	fmt.Fprintf(out, "✓ Recorded %s for %s on %s\n", format.USD(e.Amount), e.Category, e.Date.Format(dateLayout))

	if b, ok := a.Ledger.Budget(e.BudgetID); ok {
		switch b.Status() {
		case ledger.StatusOver:
			fmt.Fprintln(out, lossStyle.Render(fmt.Sprintf("  %s is over budget by %s", b.Category, format.USD(b.Remaining().Neg()))))
		case ledger.StatusNearLimit:
			fmt.Fprintln(out, lossStyle.Render(fmt.Sprintf("  %s is at %s of its limit", b.Category, format.Percent(b.Utilization().Round(2)))))
		}
	}
	return nil
}

func printExpenses(out io.Writer, expenses []ledger.Expense, budgets []ledger.Budget, now time.Time) {
	printTitle(out, "EXPENSES")

	if len(expenses) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("  No expenses yet. Run 'wealthwatch expense add'."))
		return
	}

	rows := make([][]string, 0, len(expenses))
	for _, e := range ledger.NewestFirst(expenses) {
		rows = append(rows, []string{
			e.ID,
			e.Date.Format(dateLayout),
			e.Category,
			e.Description,
			format.USD(e.Amount),
		})
	}
	fmt.Fprintln(out, renderTable([]string{"ID", "Date", "Category", "Description", "Amount"}, rows))

	s := ledger.SummarizeExpenses(expenses, now)
	fmt.Fprintf(out, "  %d expenses, %s total, %s this month\n", s.Count, format.USD(s.Total), format.USD(s.ThisMonth))

	shares := ledger.CategoryShares(budgets)
	if len(shares) == 0 {
		return
	}
	printTitle(out, "SPENDING BY BUDGET")
	shareRows := make([][]string, 0, len(shares))
	for _, cs := range shares {
		shareRows = append(shareRows, []string{cs.Category, format.USD(cs.Spent), format.Percent(cs.Percent.Round(2))})
	}
	fmt.Fprintln(out, renderTable([]string{"Category", "Spent", "Share"}, shareRows))
}
