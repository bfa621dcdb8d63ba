package quote

import (
	"sort"
	"strings"
	"time"

	"github.com/markcheno/go-talib"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// RSIPeriod is the lookback of the relative strength index on history points
const RSIPeriod = 14

// Period is a history window ending now
type Period string

const (
	Period1M  Period = "1M"
	Period3M  Period = "3M"
	Period6M  Period = "6M"
	PeriodYTD Period = "YTD"
	Period1Y  Period = "1Y"
	Period3Y  Period = "3Y"
)

// DefaultPeriod is used when no period is requested
const DefaultPeriod = Period3M

// Periods lists every supported window, shortest first
var Periods = []Period{Period1M, Period3M, Period6M, PeriodYTD, Period1Y, Period3Y}

var periodAliases = map[string]Period{
	"1MO": Period1M,
	"3MO": Period3M,
	"6MO": Period6M,
}

// ParsePeriod accepts 1M, 3M, 6M, YTD, 1Y and 3Y in any case, plus the
// 1mo/3mo/6mo spellings. An empty string yields DefaultPeriod.
func ParsePeriod(s string) (Period, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return DefaultPeriod, nil
	}
	if p, ok := periodAliases[s]; ok {
		return p, nil
	}
	for _, p := range Periods {
		if string(p) == s {
			return p, nil
		}
	}
	return "", errors.Wrapf(ErrInvalid, "unknown period %q", s)
}

// Start returns the first day included in the window ending at now
func (p Period) Start(now time.Time) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch p {
	case Period1M:
		return day.AddDate(0, -1, 0)
	case Period6M:
		return day.AddDate(0, -6, 0)
	case PeriodYTD:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	case Period1Y:
		return day.AddDate(-1, 0, 0)
	case Period3Y:
		return day.AddDate(-3, 0, 0)
	default:
		return day.AddDate(0, -3, 0)
	}
}

// TradingDays estimates the number of weekdays in the window
func (p Period) TradingDays(now time.Time) int {
	days := 0
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for d := p.Start(now); !d.After(end); d = d.AddDate(0, 0, 1) {
		if isWeekday(d) {
			days++
		}
	}
	return days
}

func isWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// finalize sorts points ascending, keeps the ones inside the window and
// fills derived fields. Day changes are only computed when recompute is
// set or the point carries none; RSI is filled where missing.
func finalize(s HistoricalSeries, now time.Time, recompute bool) HistoricalSeries {
	sort.SliceStable(s.Points, func(i, j int) bool { return s.Points[i].Date.Before(s.Points[j].Date) })

	// full points are kept for the RSI lookback, then trimmed
	enrichRSI(s.Points)

	start := s.Period.Start(now)
	first := sort.Search(len(s.Points), func(i int) bool { return !s.Points[i].Date.Before(start) })

	var prev *Point
	if first > 0 {
		prev = &s.Points[first-1]
	}

	kept := make([]Point, 0, len(s.Points)-first)
	for i := first; i < len(s.Points); i++ {
		p := s.Points[i]
		if recompute || (p.DayChange.IsZero() && p.DayChangePercent.IsZero()) {
			p.DayChange, p.DayChangePercent = dayChange(prev, p)
		}
		kept = append(kept, p)
		prev = &s.Points[i]
	}

	s.Points = kept
	return s
}

// dayChange measures close against the previous close, or against the
// open for the first point of a series.
func dayChange(prev *Point, p Point) (decimal.Decimal, decimal.Decimal) {
	base := p.Open
	if prev != nil {
		base = prev.Close
	}
	change := p.Close.Sub(base).Round(2)
	if base.IsZero() {
		return change, decimal.Zero
	}
	return change, p.Close.Sub(base).Div(base).Mul(hundred).Round(2)
}

// enrichRSI sets RSI on points that have enough lookback and none yet
func enrichRSI(points []Point) {
	if len(points) <= RSIPeriod {
		return
	}

	closes := make([]float64, len(points))
	for i, p := range points {
		closes[i] = p.Close.InexactFloat64()
	}

	rsi := talib.Rsi(closes, RSIPeriod)
	for i := RSIPeriod; i < len(points) && i < len(rsi); i++ {
		if points[i].RSI != nil {
			continue
		}
		v := decimal.NewFromFloat(rsi[i]).Round(2).InexactFloat64()
		points[i].RSI = &v
	}
}
