// Package dashboard assembles quotes, the ledger and backend summaries into
// the snapshot shown by the TUI and the HTTP API, and refreshes it on a
// cron schedule.
package dashboard

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"wealthwatch/services/ledger"
	"wealthwatch/services/quote"
)

// QuoteSource is the part of quote.Client the dashboard needs
type QuoteSource interface {
	GetQuotes(ctx context.Context, symbols []string) []quote.Quote
	TopCrypto(ctx context.Context) ([]quote.Quote, error)
	HoldingsSummary(ctx context.Context, userID string) (quote.HoldingsSummary, error)
	AccountsSummary(ctx context.Context, userID string) (quote.AccountsSummary, error)
	Degraded() bool
}

// QuoteRecorder persists refreshed quotes
type QuoteRecorder interface {
	SaveMultiple(ctx context.Context, quotes []quote.Quote) (int, []error)
}

// LedgerSync persists the ledger after holdings are revalued
type LedgerSync interface {
	Sync(ctx context.Context) error
}

// Snapshot is one complete dashboard refresh
type Snapshot struct {
	Watchlist      []quote.Quote          `json:"watchlist"`
	Crypto         []quote.Quote          `json:"crypto"`
	Market         MarketStatus           `json:"market"`
	Holdings       []ledger.Holding       `json:"holdings"`
	Portfolio      ledger.PortfolioTotals `json:"portfolio"`
	Budgets        []ledger.Budget        `json:"budgets"`
	Budget         ledger.Totals          `json:"budget"`
	Expenses       ledger.ExpenseSummary  `json:"expenses"`
	Accounts       *quote.AccountsSummary `json:"accounts,omitempty"`
	RemoteHoldings *quote.HoldingsSummary `json:"remote_holdings,omitempty"`
	NetWorth       decimal.Decimal        `json:"net_worth"`
	Degraded       bool                   `json:"degraded"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// Options configures a Service
type Options struct {
	Quotes    QuoteSource
	Ledger    *ledger.Ledger
	Recorder  QuoteRecorder
	Sync      LedgerSync
	UserID    string
	Watchlist []string
	Logger    zerolog.Logger
}

// Service refreshes dashboard snapshots. Refreshes are not coalesced:
// overlapping runs all complete and the last one to finish is kept.
type Service struct {
	quotes    QuoteSource
	ledger    *ledger.Ledger
	recorder  QuoteRecorder
	sync      LedgerSync
	userID    string
	watchlist []string
	log       zerolog.Logger
	latest    atomic.Pointer[Snapshot]
	cron      *cron.Cron
	now       func() time.Time
}

// New creates a dashboard service
func New(opts Options) *Service {
	log := opts.Logger.With().Str("component", "dashboard").Logger()
	parser := cron.NewParser(
		cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
	)

	return &Service{
		quotes:    opts.Quotes,
		ledger:    opts.Ledger,
		recorder:  opts.Recorder,
		sync:      opts.Sync,
		userID:    opts.UserID,
		watchlist: opts.Watchlist,
		log:       log,
		cron:      cron.New(cron.WithParser(parser)),
		now:       time.Now,
	}
}

// Latest returns the most recently completed snapshot
func (s *Service) Latest() (Snapshot, bool) {
	snap := s.latest.Load()
	if snap == nil {
		return Snapshot{}, false
	}
	return *snap, true
}

// Refresh builds a new snapshot and publishes it as the latest
func (s *Service) Refresh(ctx context.Context) Snapshot {
	start := s.now()

	var symbols []string
	seen := map[string]bool{}
	for _, group := range [][]string{s.watchlist, MarketIndices, s.ledger.Symbols()} {
		for _, sym := range group {
			sym = quote.CanonicalSymbol(sym)
			if !seen[sym] {
				seen[sym] = true
				symbols = append(symbols, sym)
			}
		}
	}

	quotes := s.quotes.GetQuotes(ctx, symbols)
	bySymbol := make(map[string]quote.Quote, len(quotes))
	prices := make(map[string]decimal.Decimal, len(quotes))
	for _, q := range quotes {
		bySymbol[q.Symbol] = q
		prices[q.Symbol] = q.Price
	}

	revalued := s.ledger.Revalue(prices)
	if revalued > 0 && s.sync != nil {
		if err := s.sync.Sync(ctx); err != nil {
			s.log.Error().Err(err).Msg("failed to persist revalued holdings")
		}
	}

	snap := Snapshot{
		Watchlist: pick(bySymbol, s.watchlist),
		Market:    marketStatus(pick(bySymbol, MarketIndices)),
		Holdings:  s.ledger.Holdings(),
		Budgets:   s.ledger.Budgets(),
		UpdatedAt: start,
	}
	snap.Portfolio = ledger.PortfolioAggregates(snap.Holdings)
	snap.Budget = ledger.Aggregates(snap.Budgets)
	snap.Expenses = ledger.SummarizeExpenses(s.ledger.Expenses(), start)

	crypto, err := s.quotes.TopCrypto(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("top crypto unavailable")
		crypto = []quote.Quote{}
	}
	snap.Crypto = crypto

	if accounts, err := s.quotes.AccountsSummary(ctx, s.userID); err != nil {
		s.log.Debug().Err(err).Msg("accounts summary unavailable")
	} else {
		snap.Accounts = &accounts
	}
	if holdings, err := s.quotes.HoldingsSummary(ctx, s.userID); err != nil {
		s.log.Debug().Err(err).Msg("holdings summary unavailable")
	} else {
		snap.RemoteHoldings = &holdings
	}

	snap.NetWorth = NetWorth(snap.Accounts, snap.Portfolio)
	snap.Degraded = s.quotes.Degraded()

	if s.recorder != nil && len(quotes) > 0 {
		saved, errs := s.recorder.SaveMultiple(ctx, quotes)
		for _, err := range errs {
			s.log.Warn().Err(err).Msg("failed to record quote")
		}
		s.log.Debug().Int("saved", saved).Msg("recorded quotes")
	}

	s.latest.Store(&snap)

	s.log.Info().
		Int("quotes", len(quotes)).
		Int("revalued", revalued).
		Str("regime", string(snap.Market.Regime)).
		Bool("degraded", snap.Degraded).
		Dur("took", s.now().Sub(start)).
		Msg("dashboard refreshed")

	return snap
}

// NetWorth is the accounts balance plus the portfolio value. Missing
// accounts count as zero.
func NetWorth(accounts *quote.AccountsSummary, portfolio ledger.PortfolioTotals) decimal.Decimal {
	total := portfolio.TotalValue
	if accounts != nil {
		total = total.Add(accounts.TotalBalance)
	}
	return total
}

// pick returns the quotes for symbols in order, skipping missing ones
func pick(bySymbol map[string]quote.Quote, symbols []string) []quote.Quote {
	out := make([]quote.Quote, 0, len(symbols))
	for _, sym := range symbols {
		if q, ok := bySymbol[quote.CanonicalSymbol(sym)]; ok {
			out = append(out, q)
		}
	}
	return out
}

// Start schedules refreshes. Each tick runs in its own goroutine and is
// not cancelled by later ticks.
// Schedule examples:
//   - "@every 30s"     - Every 30 seconds
//   - "*/5 * * * *"    - Every 5 minutes
//   - "0 30 9 * * MON-FRI" - 9:30 AM weekdays
func (s *Service) Start(schedule string) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.Refresh(context.Background())
	})
	if err != nil {
		return errors.Wrapf(err, "schedule %q", schedule)
	}

	s.cron.Start()
	s.log.Info().Str("schedule", schedule).Msg("refresher started")
	return nil
}

// Stop halts the schedule and waits for running refreshes
func (s *Service) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("refresher stopped")
}
