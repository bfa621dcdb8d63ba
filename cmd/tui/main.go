// Package main provides the terminal dashboard for WealthWatch.
// Built with Bubble Tea and Lip Gloss; every tick runs a dashboard refresh.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"wealthwatch/pkg/app"
	"wealthwatch/pkg/config"
	"wealthwatch/pkg/format"
	"wealthwatch/pkg/logger"
	"wealthwatch/services/dashboard"
	"wealthwatch/services/quote"
)

const (
	refreshInterval = 30 * time.Second
	refreshTimeout  = 20 * time.Second
	logFile         = "wealthwatch-tui.log"
)

var tabs = []string{"Watchlist", "Portfolio", "Budgets", "Market"}

// Refresher produces dashboard snapshots
type Refresher interface {
	Refresh(ctx context.Context) dashboard.Snapshot
}

type model struct {
	source        Refresher
	ready         bool
	width         int
	height        int
	activeTab     int
	snapshot      dashboard.Snapshot
	loaded        bool
	refreshing    bool
	watchTable    table.Model
	holdingsTable table.Model
	budgetTable   table.Model
	lastRefresh   time.Time
}

type tickMsg time.Time

type snapshotMsg dashboard.Snapshot

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// the terminal belongs to the UI, so logs go to a file
	f, err := tea.LogToFile(logFile, "")
	if err != nil {
		fmt.Printf("Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	log := logger.New(logger.Config{Level: cfg.LogLevel, Output: f})

	a, err := app.New(context.Background(), cfg, log)
	if err != nil {
		fmt.Printf("Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	p := tea.NewProgram(initialModel(a.Dashboard), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

func newTable(columns []table.Column, focused bool) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(focused),
		table.WithHeight(8),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(accent)).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color(accent)).
		Bold(false)
	t.SetStyles(s)
	return t
}

func initialModel(source Refresher) model {
	return model{
		source: source,
		watchTable: newTable([]table.Column{
			{Title: "Symbol", Width: 9},
			{Title: "Name", Width: 22},
			{Title: "Price", Width: 12},
			{Title: "Change", Width: 12},
			{Title: "Change %", Width: 10},
		}, true),
		holdingsTable: newTable([]table.Column{
			{Title: "Symbol", Width: 8},
			{Title: "Shares", Width: 10},
			{Title: "Avg Cost", Width: 12},
			{Title: "Price", Width: 12},
			{Title: "Value", Width: 14},
			{Title: "Gain %", Width: 10},
		}, false),
		budgetTable: newTable([]table.Column{
			{Title: "Category", Width: 18},
			{Title: "Spent", Width: 12},
			{Title: "Limit", Width: 12},
			{Title: "Remaining", Width: 12},
			{Title: "Status", Width: 12},
		}, false),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		refreshCmd(m.source),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func refreshCmd(source Refresher) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		return snapshotMsg(source.Refresh(ctx))
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % len(tabs)
			m.focusActive()
		case "shift+tab":
			m.activeTab = (m.activeTab + len(tabs) - 1) % len(tabs)
			m.focusActive()
		case "r":
			m.refreshing = true
			return m, refreshCmd(m.source)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case tickMsg:
		m.refreshing = true
		return m, tea.Batch(refreshCmd(m.source), tickCmd())

	case snapshotMsg:
		m.applySnapshot(dashboard.Snapshot(msg))
	}

	switch m.activeTab {
	case 0:
		m.watchTable, cmd = m.watchTable.Update(msg)
	case 1:
		m.holdingsTable, cmd = m.holdingsTable.Update(msg)
	case 2:
		m.budgetTable, cmd = m.budgetTable.Update(msg)
	}

	return m, cmd
}

func (m *model) focusActive() {
	m.watchTable.Blur()
	m.holdingsTable.Blur()
	m.budgetTable.Blur()
	switch m.activeTab {
	case 0:
		m.watchTable.Focus()
	case 1:
		m.holdingsTable.Focus()
	case 2:
		m.budgetTable.Focus()
	}
}

func (m *model) applySnapshot(snap dashboard.Snapshot) {
	m.snapshot = snap
	m.loaded = true
	m.refreshing = false
	m.lastRefresh = snap.UpdatedAt

	m.watchTable.SetRows(quoteRows(append(append([]quote.Quote{}, snap.Watchlist...), snap.Crypto...)))

	holdingRows := make([]table.Row, len(snap.Holdings))
	for i, h := range snap.Holdings {
		holdingRows[i] = table.Row{
			h.Symbol,
			h.Shares.String(),
			format.USD(h.AverageCost),
			format.USD(h.CurrentPrice),
			format.USD(h.TotalValue),
			format.SignedPercent(h.GainLossPercent),
		}
	}
	m.holdingsTable.SetRows(holdingRows)

	budgetRows := make([]table.Row, len(snap.Budgets))
	for i, b := range snap.Budgets {
		budgetRows[i] = table.Row{
			truncate(b.Category, 18),
			format.USD(b.Spent),
			format.USD(b.Limit),
			format.USD(b.Remaining()),
			string(b.Status()),
		}
	}
	m.budgetTable.SetRows(budgetRows)
}

func quoteRows(quotes []quote.Quote) []table.Row {
	rows := make([]table.Row, len(quotes))
	for i, q := range quotes {
		rows[i] = table.Row{
			q.Symbol,
			truncate(q.Name, 22),
			format.USD(q.Price),
			format.SignedUSD(q.Change),
			format.SignedPercent(q.ChangePercent),
		}
	}
	return rows
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
