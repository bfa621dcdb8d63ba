package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"wealthwatch/pkg/format"
	"wealthwatch/services/dashboard"
)

const logo = `
 _    _            _ _   _    _    _       _       _
| |  | |          | | | | |  | |  | |     | |     | |
| |  | | ___  __ _| | |_| |__| |  | | __ _| |_ ___| |__
| |/\| |/ _ \/ _' | | __| '_ \ |/\| |/ _' | __/ __| '_ \
\  /\  /  __/ (_| | | |_| | | \  /\  / (_| | || (__| | | |
 \/  \/ \___|\__,_|_|\__|_| |_|\/  \/ \__,_|\__\___|_| |_|
`

const accent = "#2E8B57"

var (
	logoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(accent)).
			Bold(true)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color(accent)).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(accent)).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(accent)).
			Padding(1, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			MarginTop(1)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#00FF00"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFF00"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000"))

	gainStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	lossStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)
)

func (m model) View() string {
	if !m.ready {
		return "\n  Loading WealthWatch..."
	}

	var b strings.Builder

	b.WriteString(logoStyle.Render(logo))

	dateLine := titleStyle.Render(fmt.Sprintf(" Net worth %s ", format.USD(m.snapshot.NetWorth)))
	b.WriteString(dateLine + "\n")

	b.WriteString(m.renderTabs() + "\n")

	if !m.loaded {
		b.WriteString("\n  Fetching quotes...\n")
	} else {
		switch m.activeTab {
		case 0:
			b.WriteString(m.renderWatchlistView())
		case 1:
			b.WriteString(m.renderPortfolioView())
		case 2:
			b.WriteString(m.renderBudgetView())
		case 3:
			b.WriteString(m.renderMarketView())
		}
	}

	b.WriteString(m.renderStatusBar())

	help := helpStyle.Render("Tab: Switch views • r: Refresh • q: Quit")
	b.WriteString("\n" + help)

	return b.String()
}

func (m model) renderTabs() string {
	var rendered []string

	for i, tab := range tabs {
		style := lipgloss.NewStyle().Padding(0, 2)
		if i == m.activeTab {
			style = style.
				Background(lipgloss.Color(accent)).
				Foreground(lipgloss.Color("#FAFAFA")).
				Bold(true)
		} else {
			style = style.
				Foreground(lipgloss.Color("#626262"))
		}
		rendered = append(rendered, style.Render(tab))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m model) renderWatchlistView() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Watchlist & Crypto") + "\n\n")

	if len(m.snapshot.Watchlist) == 0 && len(m.snapshot.Crypto) == 0 {
		b.WriteString(boxStyle.Render("No quotes available. Set WATCHLIST to track symbols.") + "\n")
		return b.String()
	}

	b.WriteString(m.watchTable.View() + "\n")
	return b.String()
}

func (m model) renderPortfolioView() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Portfolio Holdings") + "\n\n")

	if len(m.snapshot.Holdings) == 0 {
		b.WriteString(boxStyle.Render("No holdings yet. Run 'wealthwatch holding add' or 'wealthwatch holding import'.") + "\n")
		return b.String()
	}

	b.WriteString(m.holdingsTable.View() + "\n")

	p := m.snapshot.Portfolio
	style := gainStyle
	if p.TotalGainLoss.IsNegative() {
		style = lossStyle
	}

	summary := boxStyle.Render(fmt.Sprintf(
		"Total Value:    %s\n"+
			"Total Invested: %s\n"+
			"Total Gain:     %s",
		format.USD(p.TotalValue),
		format.USD(p.TotalInvested),
		style.Render(fmt.Sprintf("%s (%s)", format.SignedUSD(p.TotalGainLoss), format.SignedPercent(p.GainLossPercent.Round(2)))),
	))
	b.WriteString("\n" + summary)

	return b.String()
}

func (m model) renderBudgetView() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Budgets") + "\n\n")

	if len(m.snapshot.Budgets) == 0 {
		b.WriteString(boxStyle.Render("No budgets yet. Run 'wealthwatch budget add' to create one.") + "\n")
		return b.String()
	}

	b.WriteString(m.budgetTable.View() + "\n")

	t := m.snapshot.Budget
	remaining := okStyle
	if t.TotalRemaining.IsNegative() {
		remaining = errorStyle
	}
	e := m.snapshot.Expenses

	summary := boxStyle.Render(fmt.Sprintf(
		"Budgeted:   %s\n"+
			"Spent:      %s\n"+
			"Remaining:  %s\n\n"+
			"This month: %s across %d expenses",
		format.USD(t.TotalBudget),
		format.USD(t.TotalSpent),
		remaining.Render(format.USD(t.TotalRemaining)),
		format.USD(e.ThisMonth),
		e.Count,
	))
	b.WriteString("\n" + summary)

	return b.String()
}

func (m model) renderMarketView() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Market Status") + "\n\n")

	market := m.snapshot.Market

	regimeStyle := okStyle
	regimeEmoji := "🟢"
	switch market.Regime {
	case dashboard.RegimeVolatile:
		regimeStyle = errorStyle
		regimeEmoji = "🔴"
	case dashboard.RegimeCautious:
		regimeStyle = warnStyle
		regimeEmoji = "🟡"
	case dashboard.RegimeUnknown:
		regimeStyle = helpStyle
		regimeEmoji = "⚪"
	}

	var indices strings.Builder
	for _, q := range market.Indices {
		fmt.Fprintf(&indices, "\n   %-6s %12s  %s", q.Symbol, q.Price.StringFixed(2), format.SignedPercent(q.ChangePercent))
	}

	regimeBox := boxStyle.Render(fmt.Sprintf(
		"%s Market Regime: %s\n\n"+
			"   VIX: %s%s",
		regimeEmoji,
		regimeStyle.Render(strings.ToUpper(string(market.Regime))),
		market.VIX.StringFixed(2),
		indices.String(),
	))
	b.WriteString(regimeBox + "\n")

	var explanation string
	switch market.Regime {
	case dashboard.RegimeCalm:
		explanation = "Normal market conditions."
	case dashboard.RegimeCautious:
		explanation = "Elevated volatility."
	case dashboard.RegimeVolatile:
		explanation = "High volatility."
	default:
		explanation = "No VIX quote available."
	}
	b.WriteString("\n" + helpStyle.Render(explanation))

	return b.String()
}

func (m model) renderStatusBar() string {
	var status string
	switch {
	case m.refreshing:
		status = warnStyle.Render("Refreshing...")
	case !m.loaded:
		status = helpStyle.Render("Waiting for first refresh")
	case m.snapshot.Degraded:
		status = warnStyle.Render("Offline: showing fallback quotes") +
			helpStyle.Render(fmt.Sprintf(" • Last refresh: %s", m.lastRefresh.Format("15:04:05")))
	default:
		status = okStyle.Render("Connected") +
			helpStyle.Render(fmt.Sprintf(" • Last refresh: %s", m.lastRefresh.Format("15:04:05")))
	}
	return "\n" + status
}
