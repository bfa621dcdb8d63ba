package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"wealthwatch/pkg/app"
	"wealthwatch/pkg/format"
	"wealthwatch/services/dashboard"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Refresh the dashboard once and print a summary",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, out io.Writer) error {
			printStatus(out, a.Dashboard.Refresh(ctx), storageStatus(ctx, a))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// storageStatus names the database driver and whether it answers a ping
func storageStatus(ctx context.Context, a *app.App) string {
	if a.DB == nil {
		return "in memory"
	}
	if err := a.DB.HealthCheck(ctx); err != nil {
		return fmt.Sprintf("%s, unhealthy: %v", a.DB.Driver(), err)
	}
	return a.DB.Driver() + ", healthy"
}

func printStatus(out io.Writer, snap dashboard.Snapshot, storage string) {
	printTitle(out, "WEALTHWATCH STATUS")

	rows := [][]string{
		{"Net worth", format.USD(snap.NetWorth)},
		{"Portfolio value", format.USD(snap.Portfolio.TotalValue)},
		{"Portfolio gain", format.SignedUSD(snap.Portfolio.TotalGainLoss)},
		{"Budgeted", format.USD(snap.Budget.TotalBudget)},
		{"Spent", format.USD(snap.Budget.TotalSpent)},
		{"Expenses this month", format.USD(snap.Expenses.ThisMonth)},
		{"Market regime", strings.ToUpper(string(snap.Market.Regime))},
		{"Storage", storage},
	}
	if snap.Accounts != nil {
		rows = append(rows, []string{"Account balances", format.USD(snap.Accounts.TotalBalance)})
	}
	fmt.Fprintln(out, renderTable([]string{"Metric", "Value"}, rows))

	if len(snap.Watchlist) > 0 {
		printQuotes(out, "WATCHLIST", snap.Watchlist, snap.Degraded)
	} else if snap.Degraded {
		fmt.Fprintln(out, mutedStyle.Render("  Backend unreachable, prices are fallback estimates"))
	}
}
