package database

import "time"

// TimeLayout is the fixed-width UTC layout used for timestamp columns, so
// text comparison orders rows chronologically.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

// FormatTime renders t for a timestamp column
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime reads a timestamp column
func ParseTime(s string) (time.Time, error) {
	return time.Parse(TimeLayout, s)
}

// Amounts are stored as decimal strings and timestamps as fixed-width UTC text so
// the same schema round-trips exactly on PostgreSQL and SQLite.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS budgets (
		id         TEXT PRIMARY KEY,
		category   TEXT NOT NULL,
		amount_limit TEXT NOT NULL,
		spent      TEXT NOT NULL,
		month      INTEGER NOT NULL,
		year       INTEGER NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS expenses (
		id          TEXT PRIMARY KEY,
		amount      TEXT NOT NULL,
		category    TEXT NOT NULL,
		description TEXT NOT NULL,
		spent_on    TEXT NOT NULL,
		budget_id   TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS holdings (
		id            TEXT PRIMARY KEY,
		symbol        TEXT NOT NULL,
		name          TEXT NOT NULL,
		shares        TEXT NOT NULL,
		average_cost  TEXT NOT NULL,
		current_price TEXT NOT NULL,
		created_at    TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS quotes (
		symbol         TEXT NOT NULL,
		name           TEXT NOT NULL,
		price          TEXT NOT NULL,
		change         TEXT NOT NULL,
		change_percent TEXT NOT NULL,
		source         TEXT NOT NULL,
		quoted_at      TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_quotes_symbol_time ON quotes (symbol, quoted_at)`,
}
