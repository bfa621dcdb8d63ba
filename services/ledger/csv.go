package ledger

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// HoldingRow is one parsed line of a holdings CSV
type HoldingRow struct {
	Line         int
	Symbol       string
	Shares       decimal.Decimal
	AverageCost  decimal.Decimal
	CurrentPrice decimal.Decimal
	Name         string
}

// ParseHoldingsCSV reads rows of symbol,shares[,average_cost[,current_price[,name]]].
// The first line is a header. Blank lines, # comments and malformed rows
// are skipped with a warning.
func ParseHoldingsCSV(r io.Reader, log zerolog.Logger) ([]HoldingRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.Comment = '#'
	reader.TrimLeadingSpace = true

	var rows []HoldingRow
	lineNum := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "read holdings csv")
		}
		lineNum++

		// Skip header
		if lineNum == 1 {
			continue
		}
		line, _ := reader.FieldPos(0)

		row, err := parseHoldingRecord(record)
		if err != nil {
			log.Warn().Int("line", line).Err(err).Msg("skipping holdings row")
			continue
		}
		row.Line = line
		rows = append(rows, row)
	}

	return rows, nil
}

func parseHoldingRecord(record []string) (HoldingRow, error) {
	field := func(i int) string {
		if i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	row := HoldingRow{
		Symbol:       strings.ToUpper(field(0)),
		AverageCost:  decimal.Zero,
		CurrentPrice: decimal.Zero,
		Name:         field(4),
	}
	if len(record) < 2 {
		return row, errors.New("expected at least symbol and shares")
	}

	var err error
	if row.Shares, err = decimal.NewFromString(field(1)); err != nil {
		return row, errors.Errorf("invalid shares %q", field(1))
	}
	if s := field(2); s != "" {
		if row.AverageCost, err = decimal.NewFromString(s); err != nil {
			return row, errors.Errorf("invalid average cost %q", s)
		}
	}
	if s := field(3); s != "" {
		if row.CurrentPrice, err = decimal.NewFromString(s); err != nil {
			return row, errors.Errorf("invalid current price %q", s)
		}
	}

	if err := ValidateHolding(row.Symbol, row.Shares, row.AverageCost); err != nil {
		return row, err
	}
	return row, nil
}

// ImportHoldings adds every row as a holding
func (l *Ledger) ImportHoldings(rows []HoldingRow) []Holding {
	out := make([]Holding, 0, len(rows))
	for _, r := range rows {
		out = append(out, l.AddHolding(r.Symbol, r.Name, r.Shares, r.AverageCost, r.CurrentPrice))
	}
	return out
}
