package quote

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"wealthwatch/pkg/database"
)

// Store records quotes so the dashboard can show recent prices offline
type Store struct {
	db  *database.DB
	log zerolog.Logger
}

// NewStore creates a new quote store
func NewStore(db *database.DB, log zerolog.Logger) *Store {
	return &Store{db: db, log: log.With().Str("component", "quote_store").Logger()}
}

// Save stores one quote
func (s *Store) Save(ctx context.Context, q Quote) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := s.db.Rebind(`
		INSERT INTO quotes (symbol, name, price, change, change_percent, source, quoted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)

	_, err := s.db.ExecContext(ctx, query,
		q.Symbol,
		q.Name,
		q.Price.String(),
		q.Change.String(),
		q.ChangePercent.String(),
		string(q.Source),
		database.FormatTime(q.Timestamp),
	)
	if err != nil {
		return errors.Wrapf(err, "save quote %s", q.Symbol)
	}

	s.log.Debug().Str("symbol", q.Symbol).Str("price", q.Price.String()).Msg("saved quote")
	return nil
}

// SaveMultiple stores a batch and reports how many were written
func (s *Store) SaveMultiple(ctx context.Context, quotes []Quote) (int, []error) {
	saved := 0
	var errs []error

	for _, q := range quotes {
		if err := s.Save(ctx, q); err != nil {
			errs = append(errs, err)
		} else {
			saved++
		}
	}

	return saved, errs
}

// Latest retrieves the most recent quote for a symbol
func (s *Store) Latest(ctx context.Context, symbol string) (Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := s.db.Rebind(`
		SELECT symbol, name, price, change, change_percent, source, quoted_at
		FROM quotes
		WHERE symbol = ?
		ORDER BY quoted_at DESC
		LIMIT 1
	`)

	q, err := scanQuote(s.db.QueryRowContext(ctx, query, symbol))
	if err == sql.ErrNoRows {
		return Quote{}, errors.Wrapf(ErrNotFound, "no recorded quote for %s", symbol)
	}
	if err != nil {
		return Quote{}, errors.Wrap(err, "query quote")
	}
	return q, nil
}

// History retrieves recorded quotes for symbol since the given time,
// oldest first.
func (s *Store) History(ctx context.Context, symbol string, since time.Time) ([]Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	query := s.db.Rebind(`
		SELECT symbol, name, price, change, change_percent, source, quoted_at
		FROM quotes
		WHERE symbol = ? AND quoted_at >= ?
		ORDER BY quoted_at ASC
	`)

	rows, err := s.db.QueryContext(ctx, query, symbol, database.FormatTime(since))
	if err != nil {
		return nil, errors.Wrap(err, "query quote history")
	}
	defer rows.Close()

	results := []Quote{}
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan row")
		}
		results = append(results, q)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate rows")
	}

	return results, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuote(row scanner) (Quote, error) {
	var (
		q                          Quote
		price, change, pct, source string
		quotedAt                   string
	)
	if err := row.Scan(&q.Symbol, &q.Name, &price, &change, &pct, &source, &quotedAt); err != nil {
		return Quote{}, err
	}

	var err error
	if q.Price, err = decimal.NewFromString(price); err != nil {
		return Quote{}, errors.Wrap(err, "parse price")
	}
	if q.Change, err = decimal.NewFromString(change); err != nil {
		return Quote{}, errors.Wrap(err, "parse change")
	}
	if q.ChangePercent, err = decimal.NewFromString(pct); err != nil {
		return Quote{}, errors.Wrap(err, "parse change percent")
	}
	if q.Timestamp, err = database.ParseTime(quotedAt); err != nil {
		return Quote{}, errors.Wrap(err, "parse quoted_at")
	}
	q.Source = Source(source)
	return q, nil
}
