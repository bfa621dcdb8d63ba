package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"wealthwatch/pkg/app"
	"wealthwatch/pkg/format"
	"wealthwatch/services/quote"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Show the cash accounts the backend keeps for USER_ID",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, out io.Writer) error {
			printAccounts(out, a.Config.UserID, a.Quotes.Accounts(ctx, a.Config.UserID))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(accountsCmd)
}

func printAccounts(out io.Writer, userID string, accounts []quote.Account) {
	printTitle(out, fmt.Sprintf("ACCOUNTS (%s)", userID))

	if len(accounts) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("  No accounts available."))
		return
	}

	rows := make([][]string, 0, len(accounts))
	for _, acct := range accounts {
		rows = append(rows, []string{acct.Name, acct.Type, format.USD(acct.Balance), acct.Currency})
	}
	fmt.Fprintln(out, renderTable([]string{"Name", "Type", "Balance", "Currency"}, rows))
}
