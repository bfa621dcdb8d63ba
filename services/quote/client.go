package quote

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const defaultTimeout = 10 * time.Second

// PopularSymbols feed the trending list, most followed first
var PopularSymbols = []string{"AAPL", "MSFT", "GOOGL", "TSLA", "AMZN", "NVDA", "META", "NFLX"}

const trendingCount = 6

// Options configures a Client
type Options struct {
	// BaseURL of the WealthWatch backend
	BaseURL string
	// AlphaVantageKey enables the secondary tier; empty skips it
	AlphaVantageKey string
	// AlphaVantageURL overrides DefaultAlphaVantageURL
	AlphaVantageURL string
	HTTPClient      *http.Client
	Logger          zerolog.Logger
	// Seed for the synthetic generator; zero picks one from the clock
	Seed uint64
}

// Client resolves quotes through the backend, Alpha Vantage and the
// synthetic generator, in that order.
//
// The first failed health probe marks the client degraded. The flag is
// never cleared and the probe is never retried, so every later call on the
// same Client goes straight to the secondary and synthetic tiers.
type Client struct {
	primary   *Backend
	secondary *AlphaVantage
	synthetic *Synthetic
	degraded  atomic.Bool
	log       zerolog.Logger
	now       func() time.Time
}

// NewClient creates a quote client
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	c := &Client{
		primary:   NewBackend(opts.BaseURL, httpClient),
		synthetic: NewSynthetic(seed),
		log:       opts.Logger.With().Str("component", "quote").Logger(),
		now:       time.Now,
	}
	if opts.AlphaVantageKey != "" {
		c.secondary = NewAlphaVantage(opts.AlphaVantageKey, opts.AlphaVantageURL, httpClient)
	}
	return c
}

// Degraded reports whether the backend has been marked unreachable
func (c *Client) Degraded() bool {
	return c.degraded.Load()
}

// live probes the backend unless the client is already degraded
func (c *Client) live(ctx context.Context) bool {
	if c.degraded.Load() {
		return false
	}
	if err := c.primary.Healthy(ctx); err != nil {
		if c.degraded.CompareAndSwap(false, true) {
			c.log.Warn().Err(err).Msg("backend unavailable, falling back to secondary and synthetic quotes")
		}
		return false
	}
	return true
}

// GetQuote resolves one symbol. Backend request errors are returned as is;
// only an unreachable backend triggers the fallback tiers.
func (c *Client) GetQuote(ctx context.Context, symbol string) (Quote, error) {
	sym := CanonicalSymbol(symbol)
	if sym == "" {
		return Quote{}, errors.Wrap(ErrInvalid, "empty symbol")
	}

	if c.live(ctx) {
		return c.primary.Quote(ctx, sym)
	}
	return c.fallbackQuote(ctx, sym)
}

func (c *Client) fallbackQuote(ctx context.Context, sym string) (Quote, error) {
	if c.secondary != nil {
		q, err := c.secondary.Quote(ctx, sym)
		if err == nil {
			return q, nil
		}
		c.log.Debug().Err(err).Str("symbol", sym).Msg("secondary quote failed")
	}
	return c.synthetic.Quote(sym)
}

// GetQuotes resolves a batch best-effort. Symbols that fail at every tier
// are logged and left out; the result is never nil.
func (c *Client) GetQuotes(ctx context.Context, symbols []string) []Quote {
	if len(symbols) == 0 {
		return []Quote{}
	}

	syms := make([]string, 0, len(symbols))
	seen := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		sym := CanonicalSymbol(s)
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		syms = append(syms, sym)
	}
	if len(syms) == 0 {
		return []Quote{}
	}

	resolve := c.fallbackQuote
	if c.live(ctx) {
		quotes, err := c.primary.Quotes(ctx, syms)
		if err == nil {
			return quotes
		}
		c.log.Warn().Err(err).Int("symbols", len(syms)).Msg("batch quote failed, resolving symbols one by one")
		resolve = c.primary.Quote
	}

	quotes := make([]Quote, 0, len(syms))
	for _, sym := range syms {
		q, err := resolve(ctx, sym)
		if err != nil {
			c.log.Debug().Err(err).Str("symbol", sym).Msg("dropping symbol from batch")
			continue
		}
		quotes = append(quotes, q)
	}
	return quotes
}

// GetHistory returns the daily series for symbol over period
func (c *Client) GetHistory(ctx context.Context, symbol string, period Period) (HistoricalSeries, error) {
	sym := CanonicalSymbol(symbol)
	if sym == "" {
		return HistoricalSeries{}, errors.Wrap(ErrInvalid, "empty symbol")
	}
	if period == "" {
		period = DefaultPeriod
	}

	if c.live(ctx) {
		s, err := c.primary.History(ctx, sym, period)
		if err != nil {
			return HistoricalSeries{}, err
		}
		return finalize(s, c.now(), false), nil
	}

	if c.secondary != nil {
		s, err := c.secondary.History(ctx, sym, period)
		if err == nil {
			return finalize(s, c.now(), true), nil
		}
		c.log.Debug().Err(err).Str("symbol", sym).Msg("secondary history failed")
	}

	s, err := c.synthetic.History(sym, period)
	if err != nil {
		return HistoricalSeries{}, err
	}
	return finalize(s, c.now(), true), nil
}

// TopCrypto returns the backend's top cryptocurrencies, or the synthetic
// set when degraded.
func (c *Client) TopCrypto(ctx context.Context) ([]Quote, error) {
	if c.live(ctx) {
		return c.primary.TopCrypto(ctx)
	}
	return c.synthetic.TopCrypto(), nil
}

// HoldingsSummary is only served by the backend
func (c *Client) HoldingsSummary(ctx context.Context, userID string) (HoldingsSummary, error) {
	if !c.live(ctx) {
		return HoldingsSummary{}, errors.Wrap(ErrUnreachable, "holdings summary requires the backend")
	}
	return c.primary.HoldingsSummary(ctx, userID)
}

// AccountsSummary is only served by the backend
func (c *Client) AccountsSummary(ctx context.Context, userID string) (AccountsSummary, error) {
	if !c.live(ctx) {
		return AccountsSummary{}, errors.Wrap(ErrUnreachable, "accounts summary requires the backend")
	}
	return c.primary.AccountsSummary(ctx, userID)
}

// Holdings lists the positions the backend keeps for userID
func (c *Client) Holdings(ctx context.Context, userID string) ([]RemoteHolding, error) {
	if !c.live(ctx) {
		return nil, errors.Wrap(ErrUnreachable, "holdings require the backend")
	}
	return c.primary.Holdings(ctx, userID)
}

// Accounts lists userID's cash accounts. Any failure yields an empty list.
func (c *Client) Accounts(ctx context.Context, userID string) []Account {
	if !c.live(ctx) {
		return []Account{}
	}
	accounts, err := c.primary.Accounts(ctx, userID)
	if err != nil {
		c.log.Warn().Err(err).Str("user", userID).Msg("accounts unavailable")
		return []Account{}
	}
	return accounts
}

// CryptoQuote resolves a coin given as BTC or BTC-USD
func (c *Client) CryptoQuote(ctx context.Context, symbol string) (Quote, error) {
	sym := CryptoSymbol(symbol)
	if sym == "" {
		return Quote{}, errors.Wrap(ErrInvalid, "empty symbol")
	}

	if c.live(ctx) {
		return c.primary.CryptoQuote(ctx, strings.TrimSuffix(sym, "-USD"))
	}
	return c.fallbackQuote(ctx, sym)
}

// Trending quotes the first few PopularSymbols, skipping failures
func (c *Client) Trending(ctx context.Context) []Quote {
	return c.GetQuotes(ctx, PopularSymbols[:trendingCount])
}

// Search looks symbols up by ticker or company name. Alpha Vantage answers
// when configured; without it, or when it fails, the seed table is searched.
func (c *Client) Search(ctx context.Context, query string) ([]SymbolMatch, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, errors.Wrap(ErrInvalid, "empty search query")
	}

	if c.secondary != nil {
		matches, err := c.secondary.Search(ctx, q)
		if err == nil {
			return matches, nil
		}
		c.log.Debug().Err(err).Str("query", q).Msg("secondary search failed")
	}
	return c.synthetic.Search(q), nil
}
