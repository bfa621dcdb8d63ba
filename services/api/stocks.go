package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"wealthwatch/services/quote"
)

// recordedWindow is how far back recorded quotes go without ?since
const recordedWindow = 30 * 24 * time.Hour

// handleGetQuote returns one quote
// GET /api/stocks/quote/{symbol}
func (s *Server) handleGetQuote(w http.ResponseWriter, r *http.Request) {
	q, err := s.quotes.GetQuote(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, q)
}

// handleGetQuotes resolves a batch; unknown symbols are left out
// POST /api/stocks/quotes ["AAPL","MSFT"]
func (s *Server) handleGetQuotes(w http.ResponseWriter, r *http.Request) {
	var symbols []string
	if err := decode(r, &symbols); err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.quotes.GetQuotes(r.Context(), symbols))
}

// handleGetHistory returns the daily series
// GET /api/stocks/history/{symbol}?period=3M
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	period, err := quote.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		s.writeErr(w, err)
		return
	}

	series, err := s.quotes.GetHistory(r.Context(), chi.URLParam(r, "symbol"), period)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, series)
}

// handleTopCrypto returns the top cryptocurrencies
// GET /api/stocks/crypto/top
func (s *Server) handleTopCrypto(w http.ResponseWriter, r *http.Request) {
	quotes, err := s.quotes.TopCrypto(r.Context())
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, quotes)
}

// handleCryptoQuote returns one coin, given as BTC or BTC-USD
// GET /api/stocks/crypto/quote/{symbol}
func (s *Server) handleCryptoQuote(w http.ResponseWriter, r *http.Request) {
	q, err := s.quotes.CryptoQuote(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, q)
}

// handleTrending quotes the popular symbols that resolve
// GET /api/stocks/trending
func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.quotes.Trending(r.Context()))
}

// handleSearch finds symbols by ticker or company name
// GET /api/stocks/search/{query}
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	matches, err := s.quotes.Search(r.Context(), chi.URLParam(r, "query"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, matches)
}

// handleRecordedQuotes returns recorded quotes, oldest first
// GET /api/stocks/recorded/{symbol}?since=2024-12-01
func (s *Server) handleRecordedQuotes(w http.ResponseWriter, r *http.Request) {
	if s.recorded == nil {
		s.writeError(w, http.StatusServiceUnavailable, "quote recording is disabled")
		return
	}

	since := s.now().Add(-recordedWindow)
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			s.writeErr(w, err)
			return
		}
		since = parsed
	}

	quotes, err := s.recorded.History(r.Context(), quote.CanonicalSymbol(chi.URLParam(r, "symbol")), since)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, quotes)
}

// handleLatestRecorded returns the newest recorded quote
// GET /api/stocks/recorded/{symbol}/latest
func (s *Server) handleLatestRecorded(w http.ResponseWriter, r *http.Request) {
	if s.recorded == nil {
		s.writeError(w, http.StatusServiceUnavailable, "quote recording is disabled")
		return
	}

	q, err := s.recorded.Latest(r.Context(), quote.CanonicalSymbol(chi.URLParam(r, "symbol")))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, q)
}

// handleAccounts lists a user's backend accounts; empty when unavailable
// GET /api/accounts/{userID}
func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.quotes.Accounts(r.Context(), chi.URLParam(r, "userID")))
}

// handleRemoteHoldings lists the positions the backend keeps for a user
// GET /api/assets/holdings/{userID}
func (s *Server) handleRemoteHoldings(w http.ResponseWriter, r *http.Request) {
	holdings, err := s.quotes.Holdings(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, holdings)
}
