package server

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/brvalue/fleuriet/internal/modules/analysis"
	"github.com/brvalue/fleuriet/internal/modules/ranking"
)

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	payload := map[string]interface{}{
		"status":  "healthy",
		"service": "fleuriet",
	}

	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mem, err := proc.MemoryInfo(); err == nil {
			payload["memory_rss_mb"] = float64(mem.RSS) / 1024 / 1024
		}
	}

	s.writeJSON(w, http.StatusOK, payload)
}

// handleLatestAnalysis returns the most recent persisted run.
func (s *Server) handleLatestAnalysis(w http.ResponseWriter, r *http.Request) {
	result, err := s.results.LatestRun()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to load latest run", err)
		return
	}
	if result == nil {
		s.writeError(w, http.StatusNotFound, "no analysis run available yet", nil)
		return
	}

	// Collection-level outputs are derived, not stored
	if s.analysis != nil {
		s.analysis.Hydrate(result)
	}
	s.writeJSON(w, http.StatusOK, result)
}

// handleRunAnalysis triggers a synchronous batch run.
func (s *Server) handleRunAnalysis(w http.ResponseWriter, r *http.Request) {
	result, err := s.analysis.Run(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "analysis run failed", err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// handleListCompanies returns the registered company universe.
func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := s.companies.ListAll()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to list companies", err)
		return
	}
	s.writeJSON(w, http.StatusOK, companies)
}

// handleCompany returns the analysis history of one ticker.
func (s *Server) handleCompany(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(chi.URLParam(r, "ticker"))

	history, err := s.results.CompanyHistory(ticker, 10)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to load company history", err)
		return
	}
	if len(history) == 0 {
		s.writeError(w, http.StatusNotFound, "no results for ticker "+ticker, nil)
		return
	}
	s.writeJSON(w, http.StatusOK, history)
}

// handleRanking returns the latest run's ranking for one metric.
func (s *Server) handleRanking(w http.ResponseWriter, r *http.Request) {
	metric := chi.URLParam(r, "metric")
	switch metric {
	case ranking.MetricEVAPct, ranking.MetricEFVPct, ranking.MetricUpsidePct, ranking.MetricROIC, ranking.MetricLiquidity:
	default:
		s.writeError(w, http.StatusBadRequest, "unknown metric "+metric, nil)
		return
	}

	result, err := s.results.LatestRun()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to load latest run", err)
		return
	}
	if result == nil {
		s.writeError(w, http.StatusNotFound, "no analysis run available yet", nil)
		return
	}

	metrics := analysis.MetricsFrom(result)
	entries := ranking.NewService(s.log).RankBy(metrics, metric)
	s.writeJSON(w, http.StatusOK, entries)
}

// writeJSON writes a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		s.log.Error().Err(err).Msg(message)
	}
	s.writeJSON(w, status, map[string]string{"error": message})
}
