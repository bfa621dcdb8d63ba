package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"wealthwatch/pkg/app"
	"wealthwatch/pkg/format"
	"wealthwatch/services/ledger"
	"wealthwatch/services/quote"
)

var holdingFlags holdingInput

var holdingCmd = &cobra.Command{
	Use:     "holding",
	Aliases: []string{"holdings"},
	Short:   "Manage stock holdings",
}

var holdingListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show holdings revalued at current prices",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, out io.Writer) error {
			return runPortfolio(ctx, a, out)
		})
	},
}

var holdingAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a holding priced at the current quote (interactive when --symbol or --shares is missing)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, out io.Writer) error {
			in := holdingFlags
			if !in.complete() {
				if err := holdingForm(&in, searchFunc(ctx, a.Quotes)).Run(); err != nil {
					return err
				}
			}
			return runHoldingAdd(ctx, a, out, in)
		})
	},
}

var holdingRemoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Show the holdings the backend keeps for USER_ID",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, out io.Writer) error {
			return runRemoteHoldings(ctx, a.Quotes, out, a.Config.UserID)
		})
	},
}

var holdingRemoveCmd = &cobra.Command{
	Use:   "remove ID",
	Short: "Remove a holding",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, out io.Writer) error {
			if !a.Ledger.RemoveHolding(args[0]) {
				return fmt.Errorf("holding %s not found", args[0])
			}
			if err := a.Save(ctx); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Removed holding %s\n", args[0])
			return nil
		})
	},
}

var holdingImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import holdings from a CSV file (symbol,shares[,average_cost[,current_price[,name]]])",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, out io.Writer) error {
			return runHoldingImport(ctx, a, out, args[0])
		})
	},
}

var holdingClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all holdings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, out io.Writer) error {
			n := 0
			for _, h := range a.Ledger.Holdings() {
				if a.Ledger.RemoveHolding(h.ID) {
					n++
				}
			}
			if err := a.Save(ctx); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Removed %d holdings\n", n)
			return nil
		})
	},
}

func init() {
	f := holdingAddCmd.Flags()
	f.StringVar(&holdingFlags.Symbol, "symbol", "", "Ticker symbol")
	f.StringVar(&holdingFlags.Shares, "shares", "", "Number of shares")
	f.StringVar(&holdingFlags.AverageCost, "cost", "", "Average cost per share")

	holdingCmd.AddCommand(holdingListCmd, holdingAddCmd, holdingRemoveCmd, holdingImportCmd, holdingClearCmd, holdingRemoteCmd)
	rootCmd.AddCommand(holdingCmd)
}

func runHoldingAdd(ctx context.Context, a *app.App, out io.Writer, in holdingInput) error {
	args, err := in.parse()
	if err != nil {
		return err
	}

	q, err := a.Quotes.GetQuote(ctx, args.symbol)
	if err != nil {
		return err
	}

	h := a.Ledger.AddHolding(q.Symbol, q.Name, args.shares, args.averageCost, q.Price)
	if err := a.Save(ctx); err != nil {
		return err
	}

	fmt.Fprintf(out, "✓ Saved %s: %s shares @ %s = %s\n", h.Symbol, h.Shares, format.USD(h.CurrentPrice), format.USD(h.TotalValue))
	return nil
}

// runHoldingImport adds every valid CSV row, then prices rows that came
// without a current price from a batch quote.
func runHoldingImport(ctx context.Context, a *app.App, out io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	rows, err := ledger.ParseHoldingsCSV(f, a.Log)
	if err != nil {
		return err
	}

	imported := a.Ledger.ImportHoldings(rows)

	var unpriced []string
	for _, h := range imported {
		if h.CurrentPrice.IsZero() {
			unpriced = append(unpriced, h.Symbol)
		}
	}
	if len(unpriced) > 0 {
		a.Ledger.Revalue(priceMap(a.Quotes.GetQuotes(ctx, unpriced)))
	}

	if err := a.Save(ctx); err != nil {
		return err
	}

	for _, h := range imported {
		fmt.Fprintf(out, "  ✓ %s: %s shares\n", h.Symbol, h.Shares)
	}
	fmt.Fprintf(out, "Imported %d holdings\n", len(imported))
	return nil
}

func runPortfolio(ctx context.Context, a *app.App, out io.Writer) error {
	if symbols := a.Ledger.Symbols(); len(symbols) > 0 {
		a.Ledger.Revalue(priceMap(a.Quotes.GetQuotes(ctx, symbols)))
		if err := a.Save(ctx); err != nil {
			return err
		}
	}

	holdings := a.Ledger.Holdings()
	printTitle(out, "PORTFOLIO")

	if len(holdings) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("  No holdings yet. Run 'wealthwatch holding add' or 'wealthwatch holding import'."))
		return nil
	}

	rows := make([][]string, 0, len(holdings))
	for _, h := range holdings {
		style := gainStyle
		if h.GainLoss.IsNegative() {
			style = lossStyle
		}
		rows = append(rows, []string{
			h.ID,
			h.Symbol,
			h.Shares.String(),
			format.USD(h.AverageCost),
			format.USD(h.CurrentPrice),
			format.USD(h.TotalValue),
			style.Render(format.SignedPercent(h.GainLossPercent)),
		})
	}
	fmt.Fprintln(out, renderTable([]string{"ID", "Symbol", "Shares", "Avg Cost", "Price", "Value", "Gain %"}, rows))

	p := ledger.PortfolioAggregates(holdings)
	fmt.Fprintf(out, "  Value %s, invested %s, gain %s (%s)\n",
		format.USD(p.TotalValue), format.USD(p.TotalInvested),
		format.SignedUSD(p.TotalGainLoss), format.SignedPercent(p.GainLossPercent.Round(2)))
	return nil
}

func runRemoteHoldings(ctx context.Context, c *quote.Client, out io.Writer, userID string) error {
	holdings, err := c.Holdings(ctx, userID)
	if err != nil {
		return err
	}

	printTitle(out, fmt.Sprintf("BACKEND HOLDINGS (%s)", userID))
	if len(holdings) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("  No holdings on the backend."))
		return nil
	}

	rows := make([][]string, 0, len(holdings))
	for _, h := range holdings {
		style := gainStyle
		if h.GainLoss.IsNegative() {
			style = lossStyle
		}
		rows = append(rows, []string{
			h.Symbol,
			h.Name,
			h.Shares.String(),
			format.USD(h.AverageCost),
			format.USD(h.CurrentPrice),
			format.USD(h.TotalValue),
			style.Render(format.SignedPercent(h.GainLossPercent)),
		})
	}
	fmt.Fprintln(out, renderTable([]string{"Symbol", "Name", "Shares", "Avg Cost", "Price", "Value", "Gain %"}, rows))
	return nil
}

// searchFunc adapts Client.Search for the holding form; errors give no matches
func searchFunc(ctx context.Context, c *quote.Client) func(string) []quote.SymbolMatch {
	return func(query string) []quote.SymbolMatch {
		matches, err := c.Search(ctx, query)
		if err != nil {
			return nil
		}
		return matches
	}
}

func priceMap(quotes []quote.Quote) map[string]decimal.Decimal {
	prices := make(map[string]decimal.Decimal, len(quotes))
	for _, q := range quotes {
		prices[q.Symbol] = q.Price
	}
	return prices
}
