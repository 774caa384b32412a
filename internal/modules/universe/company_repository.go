// Package universe stores the company registry, raw statement rows and
// market data snapshots backing the analysis engine.
package universe

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/brvalue/fleuriet/internal/domain"
)

// CompanyRepository handles company registry database operations.
type CompanyRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewCompanyRepository creates a new company repository.
func NewCompanyRepository(db *sql.DB, log zerolog.Logger) *CompanyRepository {
	return &CompanyRepository{
		db:  db,
		log: log.With().Str("repo", "companies").Logger(),
	}
}

// Upsert inserts or updates a company keyed by ticker and returns its id.
func (r *CompanyRepository) Upsert(company domain.Company) (int, error) {
	ticker := strings.ToUpper(strings.TrimSpace(company.Ticker))
	if ticker == "" {
		return 0, fmt.Errorf("company ticker is required")
	}

	_, err := r.db.Exec(`
		INSERT INTO companies (ticker, name, cvm_code, sector)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(ticker) DO UPDATE SET
			name = excluded.name,
			cvm_code = excluded.cvm_code,
			sector = excluded.sector`,
		ticker, company.Name, company.CVMCode, company.Sector)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert company %s: %w", ticker, err)
	}

	var id int
	if err := r.db.QueryRow("SELECT id FROM companies WHERE ticker = ?", ticker).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to resolve company id for %s: %w", ticker, err)
	}
	return id, nil
}

// GetByTicker returns a company by ticker, or nil when absent.
func (r *CompanyRepository) GetByTicker(ticker string) (*domain.Company, error) {
	row := r.db.QueryRow(
		"SELECT ticker, name, cvm_code, COALESCE(sector, '') FROM companies WHERE ticker = ?",
		strings.ToUpper(strings.TrimSpace(ticker)))

	var c domain.Company
	if err := row.Scan(&c.Ticker, &c.Name, &c.CVMCode, &c.Sector); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query company by ticker: %w", err)
	}
	return &c, nil
}

// IDByTicker resolves the internal company id for a ticker.
func (r *CompanyRepository) IDByTicker(ticker string) (int, error) {
	var id int
	err := r.db.QueryRow("SELECT id FROM companies WHERE ticker = ?",
		strings.ToUpper(strings.TrimSpace(ticker))).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("unknown ticker %s", ticker)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve company id: %w", err)
	}
	return id, nil
}

// ListAll returns every registered company ordered by ticker.
func (r *CompanyRepository) ListAll() ([]domain.Company, error) {
	rows, err := r.db.Query(
		"SELECT ticker, name, cvm_code, COALESCE(sector, '') FROM companies ORDER BY ticker")
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var companies []domain.Company
	for rows.Next() {
		var c domain.Company
		if err := rows.Scan(&c.Ticker, &c.Name, &c.CVMCode, &c.Sector); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// SaveSnapshot stores a market data snapshot for a ticker.
func (r *CompanyRepository) SaveSnapshot(ticker string, price, marketCap, shares, debt, cash float64, at time.Time) error {
	_, err := r.db.Exec(`
		INSERT INTO market_snapshots
			(ticker, stock_price, market_cap, shares_outstanding, total_debt, cash, collected_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		strings.ToUpper(strings.TrimSpace(ticker)),
		price, marketCap, shares, debt, cash, at.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save market snapshot for %s: %w", ticker, err)
	}
	return nil
}
