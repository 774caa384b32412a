package analysis

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/brvalue/fleuriet/internal/database"
	"github.com/brvalue/fleuriet/internal/domain"
)

// Repository persists analysis runs in the results database.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a results repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "results").Logger(),
	}
}

// SaveRun stores the run summary, per-company results and failures in one
// transaction.
func (r *Repository) SaveRun(result *Result) error {
	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO analysis_runs
				(run_id, started_at, finished_at, status, companies_total, companies_ok, companies_failed, risk_free_rate, error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			result.RunID,
			result.StartedAt.Format(time.RFC3339),
			result.FinishedAt.Format(time.RFC3339),
			result.Status,
			len(result.Companies)+len(result.Failures),
			len(result.Companies),
			len(result.Failures),
			result.RiskFreeRate,
			nullIfEmpty(result.Reason),
		)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		rankByTicker := make(map[string]int, len(result.Composite))
		for _, entry := range result.Composite {
			rankByTicker[entry.Ticker] = entry.Rank
		}
		scoreByTicker := make(map[string]float64, len(result.Composite))
		for _, entry := range result.Composite {
			scoreByTicker[entry.Ticker] = entry.Score
		}

		for _, company := range result.Companies {
			payload, err := json.Marshal(company)
			if err != nil {
				return fmt.Errorf("failed to marshal result for %s: %w", company.Ticker, err)
			}

			var structureType interface{}
			var structureLabel interface{}
			var ncg, cdg, treasury interface{}
			if len(company.Periods) > 0 {
				head := company.Periods[0]
				structureType = int(head.Structure)
				structureLabel = head.Structure.Label()
				ncg, cdg, treasury = head.NCG, head.CDG, head.T
			}

			var zScore, riskClass interface{}
			if !company.Risk.InsufficientData {
				zScore = company.Risk.Z
				riskClass = string(company.Risk.Class)
			}

			cluster := nullableCluster(result, company.Ticker)

			_, err = tx.Exec(`
				INSERT INTO company_results
					(run_id, ticker, structure_type, structure_label, ncg, cdg, t,
					 z_score, risk_class, roic, wacc, eva, eva_pct, efv, efv_pct,
					 fair_price, upside_pct, combined_score, rank, cluster, payload_json)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				result.RunID,
				company.Ticker,
				structureType,
				structureLabel,
				ncg, cdg, treasury,
				zScore,
				riskClass,
				nullableValue(company.Valuation.ROIC),
				nullableValue(company.Valuation.WACC),
				nullableValue(company.Valuation.EVA),
				nullableValue(company.Valuation.EVAPct),
				nullableValue(company.Valuation.EFV),
				nullableValue(company.Valuation.EFVPct),
				nullableValue(company.Valuation.FairPrice),
				nullableValue(company.Valuation.UpsidePct),
				scoreByTicker[company.Ticker],
				nullIfZero(rankByTicker[company.Ticker]),
				cluster,
				string(payload),
			)
			if err != nil {
				return fmt.Errorf("failed to insert result for %s: %w", company.Ticker, err)
			}
		}

		for _, failure := range result.Failures {
			_, err := tx.Exec(`
				INSERT INTO run_failures (run_id, ticker, stage, reason)
				VALUES (?, ?, ?, ?)`,
				result.RunID, failure.Ticker, failure.Stage, failure.Reason)
			if err != nil {
				return fmt.Errorf("failed to insert failure for %s: %w", failure.Ticker, err)
			}
		}

		return nil
	})
}

// LatestRun loads the most recent persisted run, reconstructed from the
// per-company payloads. Returns nil when no run exists yet.
func (r *Repository) LatestRun() (*Result, error) {
	row := r.db.QueryRow(`
		SELECT run_id, started_at, finished_at, status, risk_free_rate, COALESCE(error, '')
		FROM analysis_runs ORDER BY started_at DESC LIMIT 1`)

	var (
		result      Result
		startedRaw  string
		finishedRaw sql.NullString
	)
	err := row.Scan(&result.RunID, &startedRaw, &finishedRaw, &result.Status, &result.RiskFreeRate, &result.Reason)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest run: %w", err)
	}

	if result.StartedAt, err = time.Parse(time.RFC3339, startedRaw); err != nil {
		return nil, fmt.Errorf("invalid started_at %q: %w", startedRaw, err)
	}
	if finishedRaw.Valid && finishedRaw.String != "" {
		if result.FinishedAt, err = time.Parse(time.RFC3339, finishedRaw.String); err != nil {
			return nil, fmt.Errorf("invalid finished_at %q: %w", finishedRaw.String, err)
		}
	}

	rows, err := r.db.Query(
		"SELECT payload_json FROM company_results WHERE run_id = ? ORDER BY rank, ticker", result.RunID)
	if err != nil {
		return nil, fmt.Errorf("failed to load run companies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan company payload: %w", err)
		}
		var company CompanyAnalysis
		if err := json.Unmarshal([]byte(payload), &company); err != nil {
			return nil, fmt.Errorf("failed to decode company payload: %w", err)
		}
		result.Companies = append(result.Companies, company)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	failures, err := r.loadFailures(result.RunID)
	if err != nil {
		return nil, err
	}
	result.Failures = failures

	return &result, nil
}

// CompanyHistory returns the persisted results of one ticker across runs,
// most recent first.
func (r *Repository) CompanyHistory(ticker string, limit int) ([]CompanyAnalysis, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.Query(`
		SELECT cr.payload_json
		FROM company_results cr
		JOIN analysis_runs ar ON ar.run_id = cr.run_id
		WHERE cr.ticker = ?
		ORDER BY ar.started_at DESC
		LIMIT ?`, ticker, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load company history: %w", err)
	}
	defer rows.Close()

	var out []CompanyAnalysis
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan company payload: %w", err)
		}
		var company CompanyAnalysis
		if err := json.Unmarshal([]byte(payload), &company); err != nil {
			return nil, fmt.Errorf("failed to decode company payload: %w", err)
		}
		out = append(out, company)
	}
	return out, rows.Err()
}

func (r *Repository) loadFailures(runID string) ([]Failure, error) {
	rows, err := r.db.Query(
		"SELECT ticker, stage, reason FROM run_failures WHERE run_id = ?", runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load run failures: %w", err)
	}
	defer rows.Close()

	var failures []Failure
	for rows.Next() {
		var f Failure
		if err := rows.Scan(&f.Ticker, &f.Stage, &f.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan failure: %w", err)
		}
		failures = append(failures, f)
	}
	return failures, rows.Err()
}

// nullableValue maps an undefined value to SQL NULL, never to zero.
func nullableValue(v domain.Value) interface{} {
	if f, ok := v.Float(); ok {
		return f
	}
	return nil
}

func nullableCluster(result *Result, ticker string) interface{} {
	if result.Clusters.InsufficientData {
		return nil
	}
	if cluster, ok := result.Clusters.Assignments[ticker]; ok {
		return cluster
	}
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullIfZero(n int) interface{} {
	if n == 0 {
		return nil
	}
	return n
}
