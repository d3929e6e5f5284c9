package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/shopspring/decimal"

	"spreadwatch/internal/infra/http/middleware"
	"spreadwatch/internal/infra/log"
	"spreadwatch/internal/spread"
)

const maxRequestBytes = 1 << 20

const (
	msgSpreadFailed   = "Error fetching spread for market"
	msgMarketsFailed  = "Error fetching markets"
	msgAlertRequired  = "Both market_id and spread are required"
	msgNoAlert        = "Market ID not provided"
	msgCurrentFailed  = "Could not fetch current spread"
	msgAlertSetFormat = "Alert spread set for market_id: %s"
)

type Server struct {
	mux    *http.ServeMux
	svc    *spread.Service
	logger log.Logger
}

func New(svc *spread.Service, logger log.Logger) *Server {
	s := &Server{mux: http.NewServeMux(), svc: svc, logger: logger}
	s.mux.HandleFunc("GET /spreads", s.getSpreads)
	s.mux.HandleFunc("POST /set_alert_spread", s.setAlertSpread)
	s.mux.HandleFunc("GET /poll_alert_spread", s.pollAlertSpread)

	// namespaced routes
	s.mux.HandleFunc("GET /markets", s.listMarkets)
	s.mux.HandleFunc("GET /markets/{$}", s.listMarkets)
	s.mux.HandleFunc("GET /markets/spreads", s.getSpreads)
	s.mux.HandleFunc("POST /markets/alert_spread", s.setAlertSpread)
	s.mux.HandleFunc("GET /markets/alert_spread", s.pollAlertSpread)
	return s
}

func (s *Server) Handler() http.Handler { return s.mux }

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type setAlertRequest struct {
	MarketID string `json:"market_id"`
	// Spread may be sent by clients but the recorded value is always fetched.
	Spread *float64 `json:"spread,omitempty"`
}

type alertStatusResponse struct {
	MarketID      string  `json:"market_id"`
	CurrentSpread float64 `json:"current_spread"`
	AlertSpread   float64 `json:"alert_spread"`
	Status        string  `json:"status"`
}

func (s *Server) getSpreads(w http.ResponseWriter, r *http.Request) {
	if id := r.URL.Query().Get("market_id"); id != "" {
		sp, err := s.svc.GetSpread(r.Context(), id)
		if err != nil {
			s.reqLogger(r).Warn().Err(err).Str("market", id).Msg("spread lookup failed")
			writeJSON(w, http.StatusInternalServerError, messageResponse{Message: msgSpreadFailed})
			return
		}
		writeJSON(w, http.StatusOK, map[string]float64{id: number(sp)})
		return
	}

	all, err := s.svc.GetAllSpreads(r.Context())
	if err != nil {
		s.reqLogger(r).Warn().Err(err).Msg("market listing failed")
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: msgMarketsFailed})
		return
	}
	out := make(map[string]float64, len(all))
	for id, sp := range all {
		out[id] = number(sp)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) setAlertSpread(w http.ResponseWriter, r *http.Request) {
	var req setAlertRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(&req); err != nil {
		s.reqLogger(r).Debug().Err(err).Msg("invalid alert request body")
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: msgAlertRequired})
		return
	}
	id, err := s.svc.SetAlert(r.Context(), req.MarketID)
	if err != nil {
		ev := s.reqLogger(r).Warn()
		if errors.Is(err, spread.ErrValidation) {
			ev = s.reqLogger(r).Debug()
		}
		ev.Err(err).Str("market", req.MarketID).Msg("alert not set")
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: msgAlertRequired})
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: fmt.Sprintf(msgAlertSetFormat, id)})
}

func (s *Server) pollAlertSpread(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.PollAlert(r.Context())
	switch {
	case errors.Is(err, spread.ErrNoAlert):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgNoAlert})
		return
	case err != nil:
		s.reqLogger(r).Warn().Err(err).Msg("alert poll failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msgCurrentFailed})
		return
	}
	writeJSON(w, http.StatusOK, alertStatusResponse{
		MarketID:      st.MarketID,
		CurrentSpread: number(st.CurrentSpread),
		AlertSpread:   number(st.AlertSpread),
		Status:        string(st.Status),
	})
}

func (s *Server) listMarkets(w http.ResponseWriter, r *http.Request) {
	markets, err := s.svc.ListMarkets(r.Context())
	if err != nil {
		s.reqLogger(r).Warn().Err(err).Msg("market listing failed")
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: msgMarketsFailed})
		return
	}
	writeJSON(w, http.StatusOK, markets)
}

func (s *Server) reqLogger(r *http.Request) *log.Logger {
	l := s.logger.With().Str("rid", middleware.GetRequestID(r.Context())).Logger()
	return &l
}

// number converts a spread for the JSON boundary; comparisons never use it.
func number(d decimal.Decimal) float64 { return d.InexactFloat64() }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
