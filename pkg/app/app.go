// Package app wires configuration, storage and services into the runtime
// shared by the server, the TUI and the CLI.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"wealthwatch/pkg/config"
	"wealthwatch/pkg/database"
	"wealthwatch/services/dashboard"
	"wealthwatch/services/ledger"
	"wealthwatch/services/quote"
)

// App holds the constructed services
type App struct {
	Config    *config.Config
	Log       zerolog.Logger
	DB        *database.DB
	Quotes    *quote.Client
	Ledger    *ledger.Ledger
	Store     *ledger.Store
	Sync      *ledger.Syncer
	Recorder  *quote.Store
	Dashboard *dashboard.Service
}

// New builds the services described by cfg. Without a DATABASE_URL the
// ledger lives in memory and quotes are not recorded.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Log:    log,
		Ledger: ledger.New(),
		Quotes: quote.NewClient(quote.Options{
			BaseURL:         cfg.APIURL,
			AlphaVantageKey: cfg.AlphaVantageAPIKey,
			HTTPClient:      &http.Client{Timeout: cfg.RequestTimeout},
			Logger:          log,
		}),
	}

	if cfg.DatabaseURL != "" {
		if err := a.openStorage(ctx); err != nil {
			return nil, err
		}
	} else {
		log.Info().Msg("DATABASE_URL not set, ledger kept in memory")
	}

	if err := a.seedBudgets(ctx); err != nil {
		a.Close()
		return nil, errors.Wrap(err, "persist seed budgets")
	}

	opts := dashboard.Options{
		Quotes:    a.Quotes,
		Ledger:    a.Ledger,
		UserID:    cfg.UserID,
		Watchlist: cfg.Watchlist,
		Logger:    log,
	}
	if a.Recorder != nil {
		opts.Recorder = a.Recorder
	}
	if a.Sync != nil {
		opts.Sync = a.Sync
	}
	a.Dashboard = dashboard.New(opts)

	return a, nil
}

func (a *App) openStorage(ctx context.Context) error {
	db, err := database.Open(a.Config.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "open database")
	}
	a.DB = db
	a.Store = ledger.NewStore(db, a.Log)
	a.Sync = ledger.NewSyncer(a.Ledger, a.Store)
	a.Recorder = quote.NewStore(db, a.Log)

	snap, err := a.Store.Load(ctx)
	if err != nil {
		db.Close()
		return errors.Wrap(err, "load ledger")
	}
	a.Ledger.Restore(snap)

	a.Log.Info().
		Str("driver", db.Driver()).
		Int("budgets", len(snap.Budgets)).
		Int("expenses", len(snap.Expenses)).
		Int("holdings", len(snap.Holdings)).
		Msg("Ledger loaded")
	return nil
}

// seedBudgets creates the configured budgets when the ledger has none
func (a *App) seedBudgets(ctx context.Context) error {
	if len(a.Config.SeedBudgets) == 0 || len(a.Ledger.Budgets()) > 0 {
		return nil
	}
	now := time.Now()
	for _, b := range a.Config.SeedBudgets {
		if b.Year == 0 {
			b.Year = now.Year()
		}
		if err := ledger.ValidateBudget(b.Category, b.Limit, b.Month, b.Year); err != nil {
			a.Log.Warn().Err(err).Str("category", b.Category).Msg("Skipping seed budget")
			continue
		}
		a.Ledger.CreateBudget(b.Category, b.Limit, b.Month, b.Year)
	}
	return a.Save(ctx)
}

// Save persists the ledger when storage is configured
func (a *App) Save(ctx context.Context) error {
	if a.Sync == nil {
		return nil
	}
	if err := a.Sync.Sync(ctx); err != nil {
		a.Log.Error().Err(err).Msg("Failed to save ledger")
		return err
	}
	return nil
}

// Close stops the refresher and closes the database
func (a *App) Close() error {
	if a.Dashboard != nil {
		a.Dashboard.Stop()
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
