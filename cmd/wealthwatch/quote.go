package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"wealthwatch/pkg/app"
	"wealthwatch/pkg/format"
	"wealthwatch/services/quote"
)

var (
	flagPeriod   string
	flagRecorded bool
	flagSince    string
)

// recordedQuotes reads quotes saved by earlier dashboard refreshes
type recordedQuotes interface {
	Latest(ctx context.Context, symbol string) (quote.Quote, error)
	History(ctx context.Context, symbol string, since time.Time) ([]quote.Quote, error)
}

var quoteCmd = &cobra.Command{
	Use:   "quote SYMBOL...",
	Short: "Show current quotes, or recorded ones with --recorded",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, out io.Writer) error {
			if flagRecorded || flagSince != "" {
				if a.Recorder == nil {
					return errors.New("recorded quotes need a database")
				}
				return runRecorded(ctx, a.Recorder, out, args, flagSince)
			}
			return runQuote(ctx, a.Quotes, out, args)
		})
	},
}

var searchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Find ticker symbols by name or ticker",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, out io.Writer) error {
			return runSearch(ctx, a.Quotes, out, strings.Join(args, " "))
		})
	},
}

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "Show popular stocks",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, out io.Writer) error {
			printQuotes(out, "TRENDING", a.Quotes.Trending(ctx), a.Quotes.Degraded())
			return nil
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history SYMBOL",
	Short: "Show daily price history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, out io.Writer) error {
			return runHistory(ctx, a.Quotes, out, args[0], flagPeriod)
		})
	},
}

var cryptoCmd = &cobra.Command{
	Use:   "crypto [COIN...]",
	Short: "Show top cryptocurrencies, or the given coins (BTC or BTC-USD)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App, out io.Writer) error {
			if len(args) > 0 {
				return runCrypto(ctx, a.Quotes, out, args)
			}
			quotes, err := a.Quotes.TopCrypto(ctx)
			if err != nil {
				return err
			}
			printQuotes(out, "TOP CRYPTO", quotes, a.Quotes.Degraded())
			return nil
		})
	},
}

func init() {
	historyCmd.Flags().StringVarP(&flagPeriod, "period", "p", string(quote.DefaultPeriod), "1M, 3M, 6M, YTD, 1Y or 3Y")
	quoteCmd.Flags().BoolVar(&flagRecorded, "recorded", false, "Show the latest recorded quote instead of a live one")
	quoteCmd.Flags().StringVar(&flagSince, "since", "", "With --recorded, list recorded quotes since YYYY-MM-DD")
	rootCmd.AddCommand(quoteCmd, historyCmd, cryptoCmd, searchCmd, trendingCmd)
}

func runQuote(ctx context.Context, c *quote.Client, out io.Writer, symbols []string) error {
	quotes := c.GetQuotes(ctx, symbols)
	if len(quotes) == 0 {
		return fmt.Errorf("no quotes found for %v", symbols)
	}
	printQuotes(out, "QUOTES", quotes, c.Degraded())
	return nil
}

func runCrypto(ctx context.Context, c *quote.Client, out io.Writer, coins []string) error {
	quotes := make([]quote.Quote, 0, len(coins))
	for _, coin := range coins {
		q, err := c.CryptoQuote(ctx, coin)
		if err != nil {
			return err
		}
		quotes = append(quotes, q)
	}
	printQuotes(out, "CRYPTO", quotes, c.Degraded())
	return nil
}

func runSearch(ctx context.Context, c *quote.Client, out io.Writer, query string) error {
	matches, err := c.Search(ctx, query)
	if err != nil {
		return err
	}

	printTitle(out, fmt.Sprintf("SEARCH %q", query))
	if len(matches) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("  No matches."))
		return nil
	}

	rows := make([][]string, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, []string{m.Symbol, m.Name, m.Type, m.Region})
	}
	fmt.Fprintln(out, renderTable([]string{"Symbol", "Name", "Type", "Region"}, rows))
	return nil
}

// runRecorded prints the latest recorded quote per symbol, or every quote
// recorded since the given day
func runRecorded(ctx context.Context, rec recordedQuotes, out io.Writer, symbols []string, since string) error {
	var day time.Time
	if since != "" {
		var err error
		if day, err = time.Parse(dateLayout, since); err != nil {
			return errors.Errorf("invalid --since %q, use YYYY-MM-DD", since)
		}
	}

	var quotes []quote.Quote
	for _, s := range symbols {
		sym := quote.CanonicalSymbol(s)
		if since == "" {
			q, err := rec.Latest(ctx, sym)
			if err != nil {
				return err
			}
			quotes = append(quotes, q)
			continue
		}

		history, err := rec.History(ctx, sym, day)
		if err != nil {
			return err
		}
		quotes = append(quotes, history...)
	}

	printTitle(out, "RECORDED QUOTES")
	if len(quotes) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("  Nothing recorded yet. Quotes are recorded by 'wealthwatch status' and the server."))
		return nil
	}

	rows := make([][]string, 0, len(quotes))
	for _, q := range quotes {
		rows = append(rows, []string{
			q.Timestamp.Local().Format("2006-01-02 15:04"),
			q.Symbol,
			format.USD(q.Price),
			format.SignedUSD(q.Change),
			string(q.Source),
		})
	}
	fmt.Fprintln(out, renderTable([]string{"Recorded", "Symbol", "Price", "Change", "Source"}, rows))
	return nil
}

func printQuotes(out io.Writer, title string, quotes []quote.Quote, degraded bool) {
	printTitle(out, title)

	rows := make([][]string, 0, len(quotes))
	for _, q := range quotes {
		change := gainStyle
		if q.Change.IsNegative() {
			change = lossStyle
		}
		rows = append(rows, []string{
			q.Symbol,
			q.Name,
			format.USD(q.Price),
			format.USD(q.PreviousClose()),
			change.Render(format.SignedUSD(q.Change)),
			change.Render(format.SignedPercent(q.ChangePercent)),
			string(q.Source),
		})
	}
	fmt.Fprintln(out, renderTable([]string{"Symbol", "Name", "Price", "Prev Close", "Change", "Change %", "Source"}, rows))

	if degraded {
		fmt.Fprintln(out, mutedStyle.Render("  Backend unreachable, prices are fallback estimates"))
	}
}

func runHistory(ctx context.Context, c *quote.Client, out io.Writer, symbol, rawPeriod string) error {
	period, err := quote.ParsePeriod(rawPeriod)
	if err != nil {
		return err
	}

	series, err := c.GetHistory(ctx, symbol, period)
	if err != nil {
		return err
	}

	printTitle(out, fmt.Sprintf("%s  %s  (%s)", series.Symbol, series.Period, series.Source))

	rows := make([][]string, 0, len(series.Points))
	for _, p := range series.Points {
		rsi := "-"
		if p.RSI != nil {
			rsi = fmt.Sprintf("%.2f", *p.RSI)
		}
		rows = append(rows, []string{
			p.Date.Format("2006-01-02"),
			p.Open.StringFixed(2),
			p.High.StringFixed(2),
			p.Low.StringFixed(2),
			p.Close.StringFixed(2),
			format.SignedPercent(p.DayChangePercent),
			rsi,
		})
	}
	fmt.Fprintln(out, renderTable([]string{"Date", "Open", "High", "Low", "Close", "Day %", "RSI"}, rows))
	return nil
}
