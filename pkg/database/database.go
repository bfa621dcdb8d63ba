// Package database provides SQL connection utilities for WealthWatch.
// It opens PostgreSQL (lib/pq) or SQLite (modernc) from a single URL,
// applies the schema and rewrites placeholders for the active driver.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// Driver names as registered with database/sql
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DB wraps sql.DB with the driver it was opened with
type DB struct {
	*sql.DB
	driver string
}

// Config holds database connection configuration
type Config struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns the default database configuration for url
func DefaultConfig(url string) Config {
	return Config{
		URL:             url,
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// ParseURL resolves the driver and data source name for url.
// postgres:// and postgresql:// select lib/pq; sqlite://path, file: URIs,
// :memory: and bare *.db paths select SQLite.
func ParseURL(url string) (driver, dsn string, err error) {
	switch {
	case url == "":
		return "", "", errors.New("database URL is not set")
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DriverPostgres, url, nil
	case strings.HasPrefix(url, "sqlite://"):
		return DriverSQLite, strings.TrimPrefix(url, "sqlite://"), nil
	case strings.HasPrefix(url, "file:"), url == ":memory:", strings.HasSuffix(url, ".db"):
		return DriverSQLite, url, nil
	default:
		return "", "", errors.Errorf("unsupported database URL %q", url)
	}
}

// New creates a new database connection and applies the schema
func New(cfg Config) (*DB, error) {
	driver, dsn, err := ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	if driver == DriverSQLite {
		// one writer, and :memory: databases are per connection
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ping database")
	}

	wrapped := &DB{DB: db, driver: driver}
	if err := wrapped.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return wrapped, nil
}

// Open creates a connection with the default pool settings
func Open(url string) (*DB, error) {
	return New(DefaultConfig(url))
}

// Driver returns the database/sql driver name
func (db *DB) Driver() string {
	return db.driver
}

// Migrate creates missing tables
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.DB.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "apply schema")
		}
	}
	return nil
}

// HealthCheck verifies the database connection is healthy
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return errors.Wrap(err, "health check failed")
	}

	return nil
}

// Rebind rewrites ? placeholders into $n for PostgreSQL
func (db *DB) Rebind(query string) string {
	if db.driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// BeginTx starts a new transaction with context
func (db *DB) BeginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "begin transaction")
	}

	return tx, nil
}
