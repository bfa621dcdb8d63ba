package quote

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in      string
		want    Period
		wantErr bool
	}{
		{in: "", want: Period3M},
		{in: "1M", want: Period1M},
		{in: "ytd", want: PeriodYTD},
		{in: " 3y ", want: Period3Y},
		{in: "6mo", want: Period6M},
		{in: "5Y", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePeriod(tt.in)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalid))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPeriodStart(t *testing.T) {
	now := time.Date(2024, 5, 15, 13, 30, 0, 0, time.UTC)

	tests := []struct {
		period Period
		want   string
	}{
		{Period1M, "2024-04-15"},
		{Period3M, "2024-02-15"},
		{Period6M, "2023-11-15"},
		{PeriodYTD, "2024-01-01"},
		{Period1Y, "2023-05-15"},
		{Period3Y, "2021-05-15"},
	}

	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.period.Start(now).Format(dateLayout))
		})
	}
}

func TestTradingDays(t *testing.T) {
	// Monday 2024-05-13 back to Monday 2024-04-13 is a Saturday
	now := time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 21, Period1M.TradingDays(now))
	assert.Greater(t, Period1Y.TradingDays(now), compactBars)
}

func bars(start time.Time, closes ...float64) []Point {
	points := make([]Point, len(closes))
	for i, c := range closes {
		points[i] = Point{
			Date:  start.AddDate(0, 0, i),
			Open:  decimal.NewFromFloat(c - 1),
			Close: decimal.NewFromFloat(c),
		}
	}
	return points
}

func TestFinalize_TrimsAndDerivesDayChange(t *testing.T) {
	now := time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)
	start := Period1M.Start(now)

	// two days before the window, three inside, shuffled
	points := bars(start.AddDate(0, 0, -2), 100, 102, 101, 103, 99)
	points[0], points[4] = points[4], points[0]

	s := finalize(HistoricalSeries{Symbol: "X", Period: Period1M, Points: points}, now, true)

	require.Len(t, s.Points, 3)
	assert.Equal(t, start, s.Points[0].Date)

	// first in-window point measures against the last trimmed close
	assert.True(t, s.Points[0].DayChange.Equal(decimal.NewFromInt(-1)), s.Points[0].DayChange.String())
	assert.True(t, s.Points[0].DayChangePercent.Equal(decimal.RequireFromString("-0.98")))
	assert.True(t, s.Points[1].DayChange.Equal(decimal.NewFromInt(2)))
	assert.True(t, s.Points[2].DayChange.Equal(decimal.NewFromInt(-4)))
}

func TestFinalize_FirstPointUsesOpen(t *testing.T) {
	now := time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)
	points := bars(now.AddDate(0, 0, -1), 50)

	s := finalize(HistoricalSeries{Period: Period1M, Points: points}, now, true)

	require.Len(t, s.Points, 1)
	assert.True(t, s.Points[0].DayChange.Equal(decimal.NewFromInt(1)))
	assert.True(t, s.Points[0].DayChangePercent.Equal(decimal.RequireFromString("2.04")))
}

func TestFinalize_KeepsProvidedDayChange(t *testing.T) {
	now := time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)
	points := bars(now.AddDate(0, 0, -2), 50, 60)
	points[1].DayChange = decimal.RequireFromString("7.5")

	s := finalize(HistoricalSeries{Period: Period1M, Points: points}, now, false)

	assert.True(t, s.Points[1].DayChange.Equal(decimal.RequireFromString("7.5")))
	assert.True(t, s.Points[0].DayChange.Equal(decimal.NewFromInt(1)))
}

func TestEnrichRSI(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	points := bars(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), closes...)

	enrichRSI(points)

	assert.Nil(t, points[RSIPeriod-1].RSI)
	require.NotNil(t, points[RSIPeriod].RSI)
	assert.InDelta(t, 100, *points[RSIPeriod].RSI, 0.01)
	require.NotNil(t, points[len(points)-1].RSI)
}

func TestEnrichRSI_ShortSeries(t *testing.T) {
	points := bars(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 1, 2, 3)
	enrichRSI(points)

	for _, p := range points {
		assert.Nil(t, p.RSI)
	}
}
