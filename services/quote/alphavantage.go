package quote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// DefaultAlphaVantageURL is the Alpha Vantage query endpoint
const DefaultAlphaVantageURL = "https://www.alphavantage.co/query"

// compactBars is how many daily bars outputsize=compact returns
const compactBars = 100

// GlobalQuote is the GLOBAL_QUOTE payload
type GlobalQuote struct {
	Symbol           string `json:"01. symbol"`
	Open             string `json:"02. open"`
	High             string `json:"03. high"`
	Low              string `json:"04. low"`
	Price            string `json:"05. price"`
	Volume           string `json:"06. volume"`
	LatestTradingDay string `json:"07. latest trading day"`
	PreviousClose    string `json:"08. previous close"`
	Change           string `json:"09. change"`
	ChangePercent    string `json:"10. change percent"`
}

// AlphaVantageQuote represents the GLOBAL_QUOTE response structure
type AlphaVantageQuote struct {
	GlobalQuote  GlobalQuote `json:"Global Quote"`
	ErrorMessage string      `json:"Error Message"`
	Note         string      `json:"Note"`
	Information  string      `json:"Information"`
}

// DailyBar is one entry of TIME_SERIES_DAILY
type DailyBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

// AlphaVantageSeries represents the TIME_SERIES_DAILY response structure
type AlphaVantageSeries struct {
	TimeSeries   map[string]DailyBar `json:"Time Series (Daily)"`
	ErrorMessage string              `json:"Error Message"`
	Note         string              `json:"Note"`
	Information  string              `json:"Information"`
}

// BestMatch is one entry of SYMBOL_SEARCH
type BestMatch struct {
	Symbol string `json:"1. symbol"`
	Name   string `json:"2. name"`
	Type   string `json:"3. type"`
	Region string `json:"4. region"`
}

// AlphaVantageSearch represents the SYMBOL_SEARCH response structure
type AlphaVantageSearch struct {
	BestMatches  []BestMatch `json:"bestMatches"`
	ErrorMessage string      `json:"Error Message"`
	Note         string      `json:"Note"`
	Information  string      `json:"Information"`
}

// AlphaVantage is the secondary quote provider
type AlphaVantage struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	now        func() time.Time
}

// NewAlphaVantage creates a provider using apiKey. An empty baseURL
// selects DefaultAlphaVantageURL.
func NewAlphaVantage(apiKey, baseURL string, httpClient *http.Client) *AlphaVantage {
	if baseURL == "" {
		baseURL = DefaultAlphaVantageURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &AlphaVantage{
		apiKey:     apiKey,
		httpClient: httpClient,
		baseURL:    baseURL,
		now:        time.Now,
	}
}

// Quote fetches the current quote for a ticker
func (a *AlphaVantage) Quote(ctx context.Context, symbol string) (Quote, error) {
	var resp AlphaVantageQuote
	if err := a.get(ctx, url.Values{"function": {"GLOBAL_QUOTE"}, "symbol": {symbol}}, &resp); err != nil {
		return Quote{}, err
	}
	if err := apiError(resp.ErrorMessage, resp.Note, resp.Information); err != nil {
		return Quote{}, errors.Wrapf(err, "quote %s", symbol)
	}

	// Validate response
	if resp.GlobalQuote.Symbol == "" {
		return Quote{}, errors.Wrapf(ErrNotFound, "empty response for %s", symbol)
	}

	return parseQuote(symbol, resp.GlobalQuote, a.now())
}

// parseQuote converts a GLOBAL_QUOTE payload to a Quote
func parseQuote(symbol string, g GlobalQuote, now time.Time) (Quote, error) {
	price, err := decimal.NewFromString(g.Price)
	if err != nil {
		return Quote{}, errors.Wrapf(ErrInvalid, "parse price %q", g.Price)
	}

	q := Quote{
		Symbol:    symbol,
		Name:      symbol,
		Price:     price,
		Timestamp: now,
		Source:    SourceSecondary,
	}

	if g.Change != "" {
		q.Change, err = decimal.NewFromString(g.Change)
		if err != nil {
			return Quote{}, errors.Wrapf(ErrInvalid, "parse change %q", g.Change)
		}
	} else if g.PreviousClose != "" {
		prev, err := decimal.NewFromString(g.PreviousClose)
		if err != nil {
			return Quote{}, errors.Wrapf(ErrInvalid, "parse previous close %q", g.PreviousClose)
		}
		q.Change = price.Sub(prev)
	}

	if pct := strings.TrimSuffix(strings.TrimSpace(g.ChangePercent), "%"); pct != "" {
		q.ChangePercent, err = decimal.NewFromString(pct)
		if err != nil {
			return Quote{}, errors.Wrapf(ErrInvalid, "parse change percent %q", g.ChangePercent)
		}
		q.ChangePercent = q.ChangePercent.Round(2)
	} else {
		q.ChangePercent = percentOf(q.Price, q.Change)
	}

	if g.Volume != "" {
		q.Volume, err = strconv.ParseInt(g.Volume, 10, 64)
		if err != nil {
			return Quote{}, errors.Wrapf(ErrInvalid, "parse volume %q", g.Volume)
		}
	}

	return q, nil
}

// History fetches TIME_SERIES_DAILY and returns the bars inside the period
// window, ascending.
func (a *AlphaVantage) History(ctx context.Context, symbol string, period Period) (HistoricalSeries, error) {
	now := a.now()
	outputSize := "compact"
	if period.TradingDays(now) > compactBars {
		outputSize = "full"
	}

	var resp AlphaVantageSeries
	params := url.Values{
		"function":   {"TIME_SERIES_DAILY"},
		"symbol":     {symbol},
		"outputsize": {outputSize},
	}
	if err := a.get(ctx, params, &resp); err != nil {
		return HistoricalSeries{}, err
	}
	if err := apiError(resp.ErrorMessage, resp.Note, resp.Information); err != nil {
		return HistoricalSeries{}, errors.Wrapf(err, "history %s", symbol)
	}
	if len(resp.TimeSeries) == 0 {
		return HistoricalSeries{}, errors.Wrapf(ErrNotFound, "empty series for %s", symbol)
	}

	points := make([]Point, 0, len(resp.TimeSeries))
	for day, bar := range resp.TimeSeries {
		p, err := parseBar(day, bar)
		if err != nil {
			return HistoricalSeries{}, errors.Wrapf(err, "history %s", symbol)
		}
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })

	return HistoricalSeries{
		Symbol: symbol,
		Period: period,
		Points: points,
		Source: SourceSecondary,
	}, nil
}

// Search runs SYMBOL_SEARCH and keeps the best MaxSearchResults matches
func (a *AlphaVantage) Search(ctx context.Context, keywords string) ([]SymbolMatch, error) {
	var resp AlphaVantageSearch
	if err := a.get(ctx, url.Values{"function": {"SYMBOL_SEARCH"}, "keywords": {keywords}}, &resp); err != nil {
		return nil, err
	}
	if err := apiError(resp.ErrorMessage, resp.Note, resp.Information); err != nil {
		return nil, errors.Wrapf(err, "search %q", keywords)
	}

	matches := make([]SymbolMatch, 0, MaxSearchResults)
	for _, m := range resp.BestMatches {
		if len(matches) == MaxSearchResults {
			break
		}
		matches = append(matches, SymbolMatch{
			Symbol: m.Symbol,
			Name:   m.Name,
			Type:   m.Type,
			Region: m.Region,
		})
	}
	return matches, nil
}

func parseBar(day string, bar DailyBar) (Point, error) {
	date, err := time.Parse(dateLayout, day)
	if err != nil {
		return Point{}, errors.Wrapf(ErrInvalid, "parse date %q", day)
	}

	p := Point{Date: date}
	for _, f := range []struct {
		raw string
		dst *decimal.Decimal
	}{
		{bar.Open, &p.Open},
		{bar.High, &p.High},
		{bar.Low, &p.Low},
		{bar.Close, &p.Close},
	} {
		if *f.dst, err = decimal.NewFromString(f.raw); err != nil {
			return Point{}, errors.Wrapf(ErrInvalid, "%s: parse %q", day, f.raw)
		}
	}

	if p.Volume, err = strconv.ParseInt(bar.Volume, 10, 64); err != nil {
		return Point{}, errors.Wrapf(ErrInvalid, "%s: parse volume %q", day, bar.Volume)
	}
	return p, nil
}

func (a *AlphaVantage) get(ctx context.Context, params url.Values, out any) error {
	params.Set("apikey", a.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return errors.Wrapf(ErrInvalid, "create request: %v", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(ErrUnreachable, "alpha vantage %s: %v", params.Get("function"), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Wrapf(ErrUnreachable, "alpha vantage %s: unexpected status %d", params.Get("function"), resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(ErrUnreachable, "read response: %v", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrapf(ErrInvalid, "unmarshal %s: %v", params.Get("function"), err)
	}
	return nil
}

// apiError maps the in-band error fields Alpha Vantage returns with a 200
func apiError(message, note, information string) error {
	switch {
	case message != "":
		return errors.Wrap(ErrNotFound, message)
	case note != "":
		return errors.Wrap(ErrUnreachable, note)
	case information != "":
		return errors.Wrap(ErrUnreachable, information)
	}
	return nil
}
