// Package api serves quotes, the ledger and the dashboard snapshot over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"wealthwatch/services/dashboard"
	"wealthwatch/services/ledger"
	"wealthwatch/services/quote"
)

// QuoteService is the part of quote.Client the API needs
type QuoteService interface {
	GetQuote(ctx context.Context, symbol string) (quote.Quote, error)
	GetQuotes(ctx context.Context, symbols []string) []quote.Quote
	GetHistory(ctx context.Context, symbol string, period quote.Period) (quote.HistoricalSeries, error)
	TopCrypto(ctx context.Context) ([]quote.Quote, error)
	CryptoQuote(ctx context.Context, symbol string) (quote.Quote, error)
	Trending(ctx context.Context) []quote.Quote
	Search(ctx context.Context, query string) ([]quote.SymbolMatch, error)
	Holdings(ctx context.Context, userID string) ([]quote.RemoteHolding, error)
	Accounts(ctx context.Context, userID string) []quote.Account
	Degraded() bool
}

// QuoteLog reads back quotes recorded by dashboard refreshes
type QuoteLog interface {
	Latest(ctx context.Context, symbol string) (quote.Quote, error)
	History(ctx context.Context, symbol string, since time.Time) ([]quote.Quote, error)
}

// LedgerSync persists the ledger after each change. Implementations must
// serialize saves; ledger.Syncer does.
type LedgerSync interface {
	Sync(ctx context.Context) error
}

// Config holds server configuration
type Config struct {
	Port      int
	Log       zerolog.Logger
	Quotes    QuoteService
	Recorded  QuoteLog
	Ledger    *ledger.Ledger
	Sync      LedgerSync
	Dashboard *dashboard.Service
	DevMode   bool
}

// Server represents the HTTP server
type Server struct {
	router    *chi.Mux
	server    *http.Server
	log       zerolog.Logger
	port      int
	quotes    QuoteService
	recorded  QuoteLog
	ledger    *ledger.Ledger
	sync      LedgerSync
	dashboard *dashboard.Service
	now       func() time.Time
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		log:       cfg.Log.With().Str("component", "server").Logger(),
		port:      cfg.Port,
		quotes:    cfg.Quotes,
		recorded:  cfg.Recorded,
		ledger:    cfg.Ledger,
		sync:      cfg.Sync,
		dashboard: cfg.Dashboard,
		now:       time.Now,
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler exposes the router
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/stocks", func(r chi.Router) {
			r.Get("/quote/{symbol}", s.handleGetQuote)
			r.Post("/quotes", s.handleGetQuotes)
			r.Get("/history/{symbol}", s.handleGetHistory)
			r.Get("/crypto/top", s.handleTopCrypto)
			r.Get("/crypto/quote/{symbol}", s.handleCryptoQuote)
			r.Get("/trending", s.handleTrending)
			r.Get("/search/{query}", s.handleSearch)
			r.Get("/recorded/{symbol}", s.handleRecordedQuotes)
			r.Get("/recorded/{symbol}/latest", s.handleLatestRecorded)
		})

		r.Get("/accounts/{userID}", s.handleAccounts)
		r.Get("/assets/holdings/{userID}", s.handleRemoteHoldings)

		r.Route("/budgets", func(r chi.Router) {
			r.Get("/", s.handleListBudgets)
			r.Post("/", s.handleCreateBudget)
			r.Get("/summary", s.handleBudgetSummary)
			r.Delete("/{id}", s.handleDeleteBudget)
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", s.handleListExpenses)
			r.Post("/", s.handleAddExpense)
			r.Get("/summary", s.handleExpenseSummary)
			r.Delete("/{id}", s.handleDeleteExpense)
		})

		r.Route("/holdings", func(r chi.Router) {
			r.Get("/", s.handleListHoldings)
			r.Post("/", s.handleAddHolding)
			r.Get("/summary", s.handlePortfolioSummary)
			r.Delete("/{id}", s.handleRemoveHolding)
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/", s.handleDashboard)
			r.Post("/refresh", s.handleRefreshDashboard)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"degraded": s.quotes.Degraded(),
	})
}
