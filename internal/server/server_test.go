package server

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/brvalue/fleuriet/internal/config"
	"github.com/brvalue/fleuriet/internal/modules/analysis"
	"github.com/brvalue/fleuriet/internal/modules/universe"
)

func setupServer(t *testing.T) *Server {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
		CREATE TABLE companies (
			id INTEGER PRIMARY KEY,
			ticker TEXT UNIQUE NOT NULL,
			name TEXT NOT NULL,
			cvm_code TEXT NOT NULL,
			sector TEXT
		);
		CREATE TABLE analysis_runs (
			id INTEGER PRIMARY KEY,
			run_id TEXT UNIQUE NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			status TEXT NOT NULL,
			companies_total INTEGER NOT NULL DEFAULT 0,
			companies_ok INTEGER NOT NULL DEFAULT 0,
			companies_failed INTEGER NOT NULL DEFAULT 0,
			risk_free_rate REAL,
			error TEXT
		);
		CREATE TABLE company_results (
			id INTEGER PRIMARY KEY,
			run_id TEXT NOT NULL,
			ticker TEXT NOT NULL,
			structure_type INTEGER, structure_label TEXT,
			ncg REAL, cdg REAL, t REAL,
			z_score REAL, risk_class TEXT,
			roic REAL, wacc REAL, eva REAL, eva_pct REAL,
			efv REAL, efv_pct REAL, fair_price REAL, upside_pct REAL,
			combined_score REAL, rank INTEGER, cluster INTEGER,
			payload_json TEXT
		);
		CREATE TABLE run_failures (
			id INTEGER PRIMARY KEY,
			run_id TEXT NOT NULL,
			ticker TEXT NOT NULL,
			stage TEXT NOT NULL,
			reason TEXT NOT NULL
		);
	`)
	require.NoError(t, err)

	log := zerolog.Nop()
	return New(Config{
		Log:       log,
		Cfg:       &config.Config{},
		Results:   analysis.NewRepository(db, log),
		Companies: universe.NewCompanyRepository(db, log),
		Port:      0,
	})
}

func TestHealthEndpoint(t *testing.T) {
	srv := setupServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestLatestAnalysisNotFound(t *testing.T) {
	srv := setupServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/analysis/", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRankingRejectsUnknownMetric(t *testing.T) {
	srv := setupServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/rankings/bogus", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompanyHistoryNotFound(t *testing.T) {
	srv := setupServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/companies/WEGE3", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListCompaniesEmpty(t *testing.T) {
	srv := setupServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/companies", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
