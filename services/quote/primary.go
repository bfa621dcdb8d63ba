package quote

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Backend talks to the WealthWatch market backend
type Backend struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

// NewBackend creates a backend client rooted at baseURL
func NewBackend(baseURL string, httpClient *http.Client) *Backend {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Backend{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		now:        time.Now,
	}
}

// backendQuote is the wire shape of a backend quote. Numeric fields are
// nullable so missing values can be told apart from zero.
type backendQuote struct {
	Symbol        string              `json:"symbol"`
	Name          string              `json:"name"`
	Price         decimal.NullDecimal `json:"price"`
	Change        decimal.NullDecimal `json:"change"`
	ChangePercent decimal.NullDecimal `json:"change_percent"`
	Volume        decimal.NullDecimal `json:"volume"`
	LastUpdated   string              `json:"last_updated"`
}

type backendPoint struct {
	Date             string              `json:"date"`
	Timestamp        int64               `json:"timestamp"`
	Open             decimal.Decimal     `json:"open"`
	High             decimal.Decimal     `json:"high"`
	Low              decimal.Decimal     `json:"low"`
	Close            decimal.NullDecimal `json:"close"`
	Volume           decimal.Decimal     `json:"volume"`
	DayChange        decimal.NullDecimal `json:"day_change"`
	DayChangePercent decimal.NullDecimal `json:"day_change_percent"`
	RSI              *float64            `json:"rsi"`
}

type backendHistory struct {
	Symbol string         `json:"symbol"`
	Period string         `json:"period"`
	Data   []backendPoint `json:"data"`
}

// Healthy probes GET /health. Any transport error or non-2xx reply is
// reported as ErrUnreachable.
func (b *Backend) Healthy(ctx context.Context) error {
	return b.do(ctx, http.MethodGet, "/health", nil, nil)
}

// Quote fetches a single quote
func (b *Backend) Quote(ctx context.Context, symbol string) (Quote, error) {
	var wire backendQuote
	if err := b.do(ctx, http.MethodGet, "/api/stocks/quote/"+url.PathEscape(symbol), nil, &wire); err != nil {
		return Quote{}, err
	}
	return b.normalize(symbol, wire)
}

// Quotes fetches a batch with POST /api/stocks/quotes
func (b *Backend) Quotes(ctx context.Context, symbols []string) ([]Quote, error) {
	var wire []backendQuote
	if err := b.do(ctx, http.MethodPost, "/api/stocks/quotes", symbols, &wire); err != nil {
		return nil, err
	}

	quotes := make([]Quote, 0, len(wire))
	for _, w := range wire {
		q, err := b.normalize(CanonicalSymbol(w.Symbol), w)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

// TopCrypto fetches GET /api/stocks/crypto/top
func (b *Backend) TopCrypto(ctx context.Context) ([]Quote, error) {
	var wire []backendQuote
	if err := b.do(ctx, http.MethodGet, "/api/stocks/crypto/top", nil, &wire); err != nil {
		return nil, err
	}

	quotes := make([]Quote, 0, len(wire))
	for _, w := range wire {
		q, err := b.normalize(CanonicalSymbol(w.Symbol), w)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

// History fetches GET /api/stocks/history/{symbol}?period=
func (b *Backend) History(ctx context.Context, symbol string, period Period) (HistoricalSeries, error) {
	path := "/api/stocks/history/" + url.PathEscape(symbol) + "?period=" + url.QueryEscape(string(period))

	var wire backendHistory
	if err := b.do(ctx, http.MethodGet, path, nil, &wire); err != nil {
		return HistoricalSeries{}, err
	}

	points := make([]Point, 0, len(wire.Data))
	for i, w := range wire.Data {
		if !w.Close.Valid {
			return HistoricalSeries{}, errors.Wrapf(ErrInvalid, "history %s: point %d has no close", symbol, i)
		}
		date, err := parseBackendDate(w.Date, w.Timestamp)
		if err != nil {
			return HistoricalSeries{}, errors.Wrapf(ErrInvalid, "history %s: point %d: %v", symbol, i, err)
		}
		p := Point{
			Date:   date,
			Open:   w.Open,
			High:   w.High,
			Low:    w.Low,
			Close:  w.Close.Decimal,
			Volume: w.Volume.IntPart(),
			RSI:    w.RSI,
		}
		if w.DayChange.Valid {
			p.DayChange = w.DayChange.Decimal
		}
		if w.DayChangePercent.Valid {
			p.DayChangePercent = w.DayChangePercent.Decimal
		}
		points = append(points, p)
	}

	return HistoricalSeries{
		Symbol: symbol,
		Period: period,
		Points: points,
		Source: SourcePrimary,
	}, nil
}

// HoldingsSummary fetches GET /api/assets/holdings/{userId}/summary
func (b *Backend) HoldingsSummary(ctx context.Context, userID string) (HoldingsSummary, error) {
	var s HoldingsSummary
	err := b.do(ctx, http.MethodGet, "/api/assets/holdings/"+url.PathEscape(userID)+"/summary", nil, &s)
	return s, err
}

// AccountsSummary fetches GET /api/accounts/{userId}/summary
func (b *Backend) AccountsSummary(ctx context.Context, userID string) (AccountsSummary, error) {
	var s AccountsSummary
	err := b.do(ctx, http.MethodGet, "/api/accounts/"+url.PathEscape(userID)+"/summary", nil, &s)
	return s, err
}

// CryptoQuote fetches GET /api/stocks/crypto/quote/{symbol}; the backend
// takes the bare coin symbol.
func (b *Backend) CryptoQuote(ctx context.Context, coin string) (Quote, error) {
	var wire backendQuote
	if err := b.do(ctx, http.MethodGet, "/api/stocks/crypto/quote/"+url.PathEscape(coin), nil, &wire); err != nil {
		return Quote{}, err
	}
	sym := CanonicalSymbol(wire.Symbol)
	if sym == "" {
		sym = coin
	}
	return b.normalize(sym, wire)
}

// Holdings fetches GET /api/assets/holdings/{userId}
func (b *Backend) Holdings(ctx context.Context, userID string) ([]RemoteHolding, error) {
	var holdings []RemoteHolding
	if err := b.do(ctx, http.MethodGet, "/api/assets/holdings/"+url.PathEscape(userID), nil, &holdings); err != nil {
		return nil, err
	}
	if holdings == nil {
		holdings = []RemoteHolding{}
	}
	return holdings, nil
}

// Accounts fetches GET /api/accounts/{userId}
func (b *Backend) Accounts(ctx context.Context, userID string) ([]Account, error) {
	var accounts []Account
	if err := b.do(ctx, http.MethodGet, "/api/accounts/"+url.PathEscape(userID), nil, &accounts); err != nil {
		return nil, err
	}
	if accounts == nil {
		accounts = []Account{}
	}
	return accounts, nil
}

func (b *Backend) normalize(symbol string, w backendQuote) (Quote, error) {
	if !w.Price.Valid {
		return Quote{}, errors.Wrapf(ErrInvalid, "quote %s: missing price", symbol)
	}
	if symbol == "" {
		return Quote{}, errors.Wrap(ErrInvalid, "quote without symbol")
	}

	q := Quote{
		Symbol:    symbol,
		Name:      w.Name,
		Price:     w.Price.Decimal,
		Timestamp: parseTimestamp(w.LastUpdated, b.now()),
		Source:    SourcePrimary,
	}
	if q.Name == "" {
		q.Name = symbol
	}
	if w.Change.Valid {
		q.Change = w.Change.Decimal
	}
	if w.ChangePercent.Valid {
		q.ChangePercent = w.ChangePercent.Decimal
	} else {
		q.ChangePercent = percentOf(q.Price, q.Change)
	}
	if w.Volume.Valid {
		q.Volume = w.Volume.Decimal.IntPart()
	}
	return q, nil
}

// do issues a JSON request and decodes the reply into out when out is
// non-nil. Error bodies are ignored.
func (b *Backend) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(ErrInvalid, "encode %s body: %v", path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reader)
	if err != nil {
		return errors.Wrapf(ErrInvalid, "create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(ErrUnreachable, "%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errors.Wrapf(ErrNotFound, "%s %s", method, path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Wrapf(ErrUnreachable, "%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(ErrInvalid, "decode %s: %v", path, err)
	}
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseTimestamp accepts RFC3339 and the naive ISO forms the backend emits;
// anything unparseable falls back to now.
func parseTimestamp(s string, now time.Time) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return now
}

func parseBackendDate(s string, unix int64) (time.Time, error) {
	if s == "" && unix > 0 {
		return time.Unix(unix, 0).UTC(), nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf("unparseable date %q", s)
}
