package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"cartera/internal/dashboard"
	"cartera/internal/domain"
	"cartera/internal/engine"
	"cartera/internal/market"
	"cartera/internal/store"
)

// Server serves the portfolio HTTP API.
type Server struct {
	store  store.Store
	market market.Gateway
	log    *slog.Logger
}

// NewServer creates a portfolio API server over the given backends.
func NewServer(st store.Store, gw market.Gateway, log *slog.Logger) *Server {
	return &Server{store: st, market: gw, log: log}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/funds", s.handleListFunds)
	mux.HandleFunc("POST /api/funds", s.handleCreateFund)
	mux.HandleFunc("PUT /api/funds/{id}", s.handleUpdateFund)
	mux.HandleFunc("DELETE /api/funds/{id}", s.handleDeleteFund)
	mux.HandleFunc("GET /api/funds/table", s.handleFundsTable)
	mux.HandleFunc("GET /api/charts/funds/types", s.handleFundsChart)
	mux.HandleFunc("GET /api/charts/funds/distribution", s.handleFundsDistribution)
	mux.HandleFunc("GET /api/charts/funds/performance", s.handleFundsPerformance)

	mux.HandleFunc("GET /api/stocks", s.handleListStocks)
	mux.HandleFunc("POST /api/stocks", s.handleCreateStock)
	mux.HandleFunc("PUT /api/stocks/{id}", s.handleUpdateStock)
	mux.HandleFunc("DELETE /api/stocks/{id}", s.handleDeleteStock)
	mux.HandleFunc("GET /api/stocks/table", s.handleStocksTable)
	mux.HandleFunc("GET /api/charts/stocks/sectors", s.handleStocksChart)
	mux.HandleFunc("GET /api/charts/stocks/distribution", s.handleStocksDistribution)
	mux.HandleFunc("GET /api/charts/stocks/performance", s.handleStocksPerformance)
}

// Handler returns an http.Handler with CORS and request-ID middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(requestIDMiddleware(mux))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestIDMiddleware tags every response with a request ID, honoring one
// supplied by the caller.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ----- funds -----

func (s *Server) handleListFunds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.ListFunds(r.Context()))
}

func (s *Server) handleCreateFund(w http.ResponseWriter, r *http.Request) {
	var f domain.Fund
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	f.Normalize()
	if err := f.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created := s.store.CreateFund(r.Context(), f)
	if created == nil {
		writeError(w, http.StatusBadGateway, "store unavailable")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateFund(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var f domain.Fund
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	f.Normalize()
	if err := f.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.store.UpdateFund(r.Context(), id, f) {
		writeError(w, http.StatusBadGateway, "update failed")
		return
	}
	writeJSON(w, http.StatusOK, statusOK)
}

func (s *Server) handleDeleteFund(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if !s.store.DeleteFund(r.Context(), id) {
		writeError(w, http.StatusBadGateway, "delete failed")
		return
	}
	writeJSON(w, http.StatusOK, statusOK)
}

func (s *Server) handleFundsTable(w http.ResponseWriter, r *http.Request) {
	rows := engine.EnrichFunds(r.Context(), s.market, s.store.ListFunds(r.Context()))
	writeJSON(w, http.StatusOK, dashboard.BuildTable(rows))
}

func (s *Server) handleFundsChart(w http.ResponseWriter, r *http.Request) {
	rows := engine.EnrichFunds(r.Context(), s.market, s.store.ListFunds(r.Context()))
	writeJSON(w, http.StatusOK, dashboard.BuildChart(rows))
}

func (s *Server) handleFundsDistribution(w http.ResponseWriter, r *http.Request) {
	rows := engine.EnrichFunds(r.Context(), s.market, s.store.ListFunds(r.Context()))
	writeJSON(w, http.StatusOK, dashboard.BuildDistributionChart(rows))
}

func (s *Server) handleFundsPerformance(w http.ResponseWriter, r *http.Request) {
	rows := engine.EnrichFunds(r.Context(), s.market, s.store.ListFunds(r.Context()))
	writeJSON(w, http.StatusOK, dashboard.BuildPerformanceChart(rows))
}

// ----- stocks -----

func (s *Server) handleListStocks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.ListStocks(r.Context()))
}

func (s *Server) handleCreateStock(w http.ResponseWriter, r *http.Request) {
	var st domain.Stock
	if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	st.Normalize()
	if err := st.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created := s.store.CreateStock(r.Context(), st)
	if created == nil {
		writeError(w, http.StatusBadGateway, "store unavailable")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateStock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var st domain.Stock
	if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	st.Normalize()
	if err := st.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.store.UpdateStock(r.Context(), id, st) {
		writeError(w, http.StatusBadGateway, "update failed")
		return
	}
	writeJSON(w, http.StatusOK, statusOK)
}

func (s *Server) handleDeleteStock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if !s.store.DeleteStock(r.Context(), id) {
		writeError(w, http.StatusBadGateway, "delete failed")
		return
	}
	writeJSON(w, http.StatusOK, statusOK)
}

func (s *Server) handleStocksTable(w http.ResponseWriter, r *http.Request) {
	rows := engine.EnrichStocks(r.Context(), s.market, s.store.ListStocks(r.Context()))
	writeJSON(w, http.StatusOK, dashboard.BuildTable(rows))
}

func (s *Server) handleStocksChart(w http.ResponseWriter, r *http.Request) {
	rows := engine.EnrichStocks(r.Context(), s.market, s.store.ListStocks(r.Context()))
	writeJSON(w, http.StatusOK, dashboard.BuildChart(rows))
}

func (s *Server) handleStocksDistribution(w http.ResponseWriter, r *http.Request) {
	rows := engine.EnrichStocks(r.Context(), s.market, s.store.ListStocks(r.Context()))
	writeJSON(w, http.StatusOK, dashboard.BuildDistributionChart(rows))
}

func (s *Server) handleStocksPerformance(w http.ResponseWriter, r *http.Request) {
	rows := engine.EnrichStocks(r.Context(), s.market, s.store.ListStocks(r.Context()))
	writeJSON(w, http.StatusOK, dashboard.BuildPerformanceChart(rows))
}
