package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"wealthwatch/pkg/app"
	"wealthwatch/pkg/format"
	"wealthwatch/services/ledger"
)

var budgetFlags budgetInput

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Manage monthly budgets",
}

var budgetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List budgets with spending status",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(_ context.Context, a *app.App, out io.Writer) error {
			printBudgets(out, a.Ledger.Budgets())
			return nil
		})
	},
}

var budgetAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a budget (interactive when --category or --limit is missing)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		in := budgetFlags
		if !in.complete() {
			if err := budgetForm(&in).Run(); err != nil {
				return err
			}
		}
		return withApp(cmd, func(ctx context.Context, a *app.App, out io.Writer) error {
			return runBudgetAdd(ctx, a, out, in, time.Now())
		})
	},
}

var budgetDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a budget; its expenses are kept",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, out io.Writer) error {
			if !a.Ledger.DeleteBudget(args[0]) {
				return fmt.Errorf("budget %s not found", args[0])
			}
			if err := a.Save(ctx); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Deleted budget %s\n", args[0])
			return nil
		})
	},
}

func init() {
	f := budgetAddCmd.Flags()
	f.StringVar(&budgetFlags.Category, "category", "", "Spending category")
	f.StringVar(&budgetFlags.Limit, "limit", "", "Monthly limit")
	f.StringVar(&budgetFlags.Month, "month", "", "Month 1-12 (default current)")
	f.StringVar(&budgetFlags.Year, "year", "", "Year (default current)")

	budgetCmd.AddCommand(budgetListCmd, budgetAddCmd, budgetDeleteCmd)
	rootCmd.AddCommand(budgetCmd)
}

func runBudgetAdd(ctx context.Context, a *app.App, out io.Writer, in budgetInput, now time.Time) error {
	args, err := in.parse(now)
	if err != nil {
		return err
	}

	b := a.Ledger.CreateBudget(args.category, args.limit, args.month, args.year)
	if err := a.Save(ctx); err != nil {
		return err
	}

	fmt.Fprintf(out, "✓ Created budget %s: %s for %s %d\n", b.ID, format.USD(b.Limit), b.Month, b.Year)
	return nil
}

func printBudgets(out io.Writer, budgets []ledger.Budget) {
	printTitle(out, "BUDGETS")

	if len(budgets) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("  No budgets yet. Run 'wealthwatch budget add'."))
		return
	}

	rows := make([][]string, 0, len(budgets))
	for _, b := range budgets {
		status := gainStyle
		if b.Status() != ledger.StatusOK {
			status = lossStyle
		}
		rows = append(rows, []string{
			b.ID,
			b.Category,
			b.Month.String()[:3] + " " + strconv.Itoa(b.Year),
			format.USD(b.Spent),
			format.USD(b.Limit),
			format.USD(b.Remaining()),
			status.Render(string(b.Status())),
		})
	}
	fmt.Fprintln(out, renderTable([]string{"ID", "Category", "Month", "Spent", "Limit", "Remaining", "Status"}, rows))

	t := ledger.Aggregates(budgets)
	fmt.Fprintf(out, "  Total %s of %s spent, %s remaining\n",
		format.USD(t.TotalSpent), format.USD(t.TotalBudget), format.USD(t.TotalRemaining))
}
