package ledger

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"wealthwatch/pkg/database"
)

// Store persists ledger snapshots
type Store struct {
	db  *database.DB
	log zerolog.Logger
}

// NewStore creates a new ledger store
func NewStore(db *database.DB, log zerolog.Logger) *Store {
	return &Store{db: db, log: log.With().Str("component", "ledger_store").Logger()}
}

// Save replaces the stored ledger with s in one transaction
func (s *Store) Save(ctx context.Context, snap Snapshot) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"budgets", "expenses", "holdings"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return errors.Wrapf(err, "clear %s", table)
		}
	}

	insertBudget := s.db.Rebind(`
		INSERT INTO budgets (id, category, amount_limit, spent, month, year, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	for _, b := range snap.Budgets {
		if _, err := tx.ExecContext(ctx, insertBudget,
			b.ID, b.Category, b.Limit.String(), b.Spent.String(),
			int(b.Month), b.Year, database.FormatTime(b.CreatedAt),
		); err != nil {
			return errors.Wrapf(err, "insert budget %s", b.ID)
		}
	}

	insertExpense := s.db.Rebind(`
		INSERT INTO expenses (id, amount, category, description, spent_on, budget_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	for _, e := range snap.Expenses {
		if _, err := tx.ExecContext(ctx, insertExpense,
			e.ID, e.Amount.String(), e.Category, e.Description,
			database.FormatTime(e.Date), e.BudgetID, database.FormatTime(e.CreatedAt),
		); err != nil {
			return errors.Wrapf(err, "insert expense %s", e.ID)
		}
	}

	insertHolding := s.db.Rebind(`
		INSERT INTO holdings (id, symbol, name, shares, average_cost, current_price, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	for _, h := range snap.Holdings {
		if _, err := tx.ExecContext(ctx, insertHolding,
			h.ID, h.Symbol, h.Name, h.Shares.String(), h.AverageCost.String(),
			h.CurrentPrice.String(), database.FormatTime(h.CreatedAt),
		); err != nil {
			return errors.Wrapf(err, "insert holding %s", h.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit ledger")
	}

	s.log.Debug().
		Int("budgets", len(snap.Budgets)).
		Int("expenses", len(snap.Expenses)).
		Int("holdings", len(snap.Holdings)).
		Msg("saved ledger")
	return nil
}

// Load reads the stored ledger. An empty database yields an empty snapshot.
func (s *Store) Load(ctx context.Context) (Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	snap := Snapshot{Budgets: []Budget{}, Expenses: []Expense{}, Holdings: []Holding{}}

	err := s.query(ctx, `
		SELECT id, category, amount_limit, spent, month, year, created_at
		FROM budgets ORDER BY created_at, id
	`, func(rows *sql.Rows) error {
		var (
			b                       Budget
			limit, spent, createdAt string
			month                   int
		)
		if err := rows.Scan(&b.ID, &b.Category, &limit, &spent, &month, &b.Year, &createdAt); err != nil {
			return err
		}
		b.Month = time.Month(month)
		if err := parseFields(
			decimalField(&b.Limit, limit),
			decimalField(&b.Spent, spent),
			timeField(&b.CreatedAt, createdAt),
		); err != nil {
			return errors.Wrapf(err, "budget %s", b.ID)
		}
		snap.Budgets = append(snap.Budgets, b)
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}

	err = s.query(ctx, `
		SELECT id, amount, category, description, spent_on, budget_id, created_at
		FROM expenses ORDER BY created_at, id
	`, func(rows *sql.Rows) error {
		var (
			e                        Expense
			amount, date, createdAt string
		)
		if err := rows.Scan(&e.ID, &amount, &e.Category, &e.Description, &date, &e.BudgetID, &createdAt); err != nil {
			return err
		}
		if err := parseFields(
			decimalField(&e.Amount, amount),
			timeField(&e.Date, date),
			timeField(&e.CreatedAt, createdAt),
		); err != nil {
			return errors.Wrapf(err, "expense %s", e.ID)
		}
		snap.Expenses = append(snap.Expenses, e)
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}

	err = s.query(ctx, `
		SELECT id, symbol, name, shares, average_cost, current_price, created_at
		FROM holdings ORDER BY created_at, id
	`, func(rows *sql.Rows) error {
		var (
			h                               Holding
			shares, cost, price, createdAt string
		)
		if err := rows.Scan(&h.ID, &h.Symbol, &h.Name, &shares, &cost, &price, &createdAt); err != nil {
			return err
		}
		var current decimal.Decimal
		if err := parseFields(
			decimalField(&h.Shares, shares),
			decimalField(&h.AverageCost, cost),
			decimalField(&current, price),
			timeField(&h.CreatedAt, createdAt),
		); err != nil {
			return errors.Wrapf(err, "holding %s", h.ID)
		}
		snap.Holdings = append(snap.Holdings, h.Reprice(current))
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}

	return snap, nil
}

func (s *Store) query(ctx context.Context, query string, scan func(*sql.Rows) error) error {
	rows, err := s.db.QueryContext(ctx, s.db.Rebind(query))
	if err != nil {
		return errors.Wrap(err, "query ledger")
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return errors.Wrap(err, "scan row")
		}
	}
	if err := rows.Err(); err != nil {
		return errors.Wrap(err, "iterate rows")
	}
	return nil
}

type fieldParser func() error

func decimalField(dst *decimal.Decimal, raw string) fieldParser {
	return func() (err error) {
		*dst, err = decimal.NewFromString(raw)
		return errors.Wrapf(err, "parse decimal %q", raw)
	}
}

func timeField(dst *time.Time, raw string) fieldParser {
	return func() (err error) {
		*dst, err = database.ParseTime(raw)
		return errors.Wrapf(err, "parse time %q", raw)
	}
}

func parseFields(parsers ...fieldParser) error {
	for _, p := range parsers {
		if err := p(); err != nil {
			return err
		}
	}
	return nil
}
