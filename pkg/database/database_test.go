package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("postgres://localhost/wealth")

	assert.Equal(t, 25, cfg.MaxOpenConns)
	assert.Equal(t, 5, cfg.MaxIdleConns)
	assert.Equal(t, 5*time.Minute, cfg.ConnMaxLifetime)
}

func TestParseURL(t *testing.T) {
	tests := []struct {
		url        string
		wantDriver string
		wantDSN    string
		wantErr    bool
	}{
		{url: "postgres://u:p@localhost/db", wantDriver: DriverPostgres, wantDSN: "postgres://u:p@localhost/db"},
		{url: "postgresql://localhost/db", wantDriver: DriverPostgres, wantDSN: "postgresql://localhost/db"},
		{url: "sqlite:///tmp/w.sqlite", wantDriver: DriverSQLite, wantDSN: "/tmp/w.sqlite"},
		{url: "file:w.db?cache=shared", wantDriver: DriverSQLite, wantDSN: "file:w.db?cache=shared"},
		{url: ":memory:", wantDriver: DriverSQLite, wantDSN: ":memory:"},
		{url: "data/wealth.db", wantDriver: DriverSQLite, wantDSN: "data/wealth.db"},
		{url: "", wantErr: true},
		{url: "mysql://localhost/db", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			driver, dsn, err := ParseURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDriver, driver)
			assert.Equal(t, tt.wantDSN, dsn)
		})
	}
}

func TestNew_MissingURL(t *testing.T) {
	_, err := New(Config{URL: ""})
	assert.Error(t, err)
}

func TestOpen_SQLiteMemoryMigrates(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, DriverSQLite, db.Driver())
	require.NoError(t, db.HealthCheck(context.Background()))

	for _, table := range []string{"budgets", "expenses", "holdings", "quotes"} {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count)
		require.NoError(t, err, table)
		assert.Zero(t, count, table)
	}

	// schema is idempotent
	require.NoError(t, db.Migrate(context.Background()))
}

func TestRebind(t *testing.T) {
	pg := &DB{driver: DriverPostgres}
	lite := &DB{driver: DriverSQLite}

	q := "INSERT INTO t (a, b) VALUES (?, ?)"
	assert.Equal(t, "INSERT INTO t (a, b) VALUES ($1, $2)", pg.Rebind(q))
	assert.Equal(t, q, lite.Rebind(q))
}

func TestFormatTime_SortsChronologically(t *testing.T) {
	a := time.Date(2024, 12, 15, 10, 0, 5, 0, time.UTC)
	b := a.Add(500 * time.Millisecond)

	assert.Less(t, FormatTime(a), FormatTime(b))

	parsed, err := ParseTime(FormatTime(b))
	require.NoError(t, err)
	assert.True(t, parsed.Equal(b))
}
