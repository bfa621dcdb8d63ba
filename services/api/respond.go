package api

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"wealthwatch/services/ledger"
	"wealthwatch/services/quote"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// writeErr maps domain errors onto status codes
func (s *Server) writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quote.ErrNotFound), errors.Is(err, ledger.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, quote.ErrInvalid), errors.Is(err, ledger.ErrInvalid):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, quote.ErrUnreachable):
		s.writeError(w, http.StatusBadGateway, err.Error())
	default:
		s.log.Error().Err(err).Msg("Request failed")
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decode reads a JSON body into v, reporting malformed input as ErrInvalid
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrapf(ledger.ErrInvalid, "decode body: %v", err)
	}
	return nil
}
