// Package main provides the wealthwatch command line: quotes, budgets,
// expenses and holdings from the terminal.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"wealthwatch/pkg/app"
	"wealthwatch/pkg/config"
	"wealthwatch/pkg/logger"
)

// defaultDatabaseURL keeps CLI changes between runs when DATABASE_URL is unset
const defaultDatabaseURL = "sqlite://wealthwatch.db"

var (
	flagDatabase string
	flagVerbose  bool
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2E8B57"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	gainStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	lossStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
)

var rootCmd = &cobra.Command{
	Use:           "wealthwatch",
	Short:         "Personal finance dashboard CLI",
	Long:          "Track budgets, expenses and stock holdings, and look up market quotes.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDatabase, "db", "", "Database URL (defaults to DATABASE_URL, then "+defaultDatabaseURL+")")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log to stderr")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, lossStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}
}

// openApp loads configuration and builds the services for one command
func openApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	switch {
	case flagDatabase != "":
		cfg.DatabaseURL = flagDatabase
	case cfg.DatabaseURL == "":
		cfg.DatabaseURL = defaultDatabaseURL
	}

	log := zerolog.Nop()
	if flagVerbose {
		log = logger.New(logger.Config{Level: cfg.LogLevel, Pretty: true})
	}

	return app.New(ctx, cfg, log)
}

// withApp runs fn against a freshly opened app and closes it afterwards
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App, out io.Writer) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a, cmd.OutOrStdout())
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		Rows(rows...).
		String()
}

func printTitle(out io.Writer, title string) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, headerStyle.Render(title))
}
