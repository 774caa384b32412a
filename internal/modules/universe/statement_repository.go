package universe

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/brvalue/fleuriet/internal/database"
	"github.com/brvalue/fleuriet/internal/domain"
)

// StatementRepository handles raw CVM statement row persistence. Rows are
// append-only; restatements get a higher version and readers resolve the
// preferred one.
type StatementRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewStatementRepository creates a new statement repository.
func NewStatementRepository(db *sql.DB, log zerolog.Logger) *StatementRepository {
	return &StatementRepository{
		db:  db,
		log: log.With().Str("repo", "statements").Logger(),
	}
}

// SaveRows stores a batch of statement rows in one transaction. Malformed
// rows abort the batch: ingestion is the validation boundary.
func (r *StatementRepository) SaveRows(rows []domain.StatementRow) error {
	for i := range rows {
		if err := rows[i].Validate(); err != nil {
			return fmt.Errorf("statement row %d rejected: %w", i, err)
		}
	}

	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO statement_rows
				(company_id, reference_date, account_code, account_desc, value, statement_type, version)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement row insert: %w", err)
		}
		defer stmt.Close()

		for _, row := range rows {
			_, err := stmt.Exec(
				row.CompanyID,
				row.ReferenceDate.UTC().Format("2006-01-02"),
				row.AccountCode,
				row.AccountDesc,
				row.Value,
				string(row.StatementType),
				row.Version,
			)
			if err != nil {
				return fmt.Errorf("failed to insert statement row %s: %w", row.AccountCode, err)
			}
		}
		return nil
	})
}

// RowsForPeriod returns the statement rows of one company and reference
// date. All stored versions are returned; the reclassifier applies the
// consolidated-then-latest-version preference.
func (r *StatementRepository) RowsForPeriod(companyID int, referenceDate time.Time) ([]domain.StatementRow, error) {
	rows, err := r.db.Query(`
		SELECT company_id, reference_date, account_code, COALESCE(account_desc, ''),
		       value, statement_type, version
		FROM statement_rows
		WHERE company_id = ? AND reference_date = ?
		ORDER BY account_code, version`,
		companyID, referenceDate.UTC().Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to query statement rows: %w", err)
	}
	defer rows.Close()

	return scanStatementRows(rows)
}

// ReferenceDates returns the distinct reference dates stored for a
// company, most recent first.
func (r *StatementRepository) ReferenceDates(companyID int) ([]time.Time, error) {
	rows, err := r.db.Query(`
		SELECT DISTINCT reference_date
		FROM statement_rows
		WHERE company_id = ?
		ORDER BY reference_date DESC`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reference dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan reference date: %w", err)
		}
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, fmt.Errorf("invalid reference date %q: %w", raw, err)
		}
		dates = append(dates, date)
	}
	return dates, rows.Err()
}

func scanStatementRows(rows *sql.Rows) ([]domain.StatementRow, error) {
	var out []domain.StatementRow
	for rows.Next() {
		var (
			row     domain.StatementRow
			rawDate string
			rawType string
		)
		err := rows.Scan(&row.CompanyID, &rawDate, &row.AccountCode, &row.AccountDesc,
			&row.Value, &rawType, &row.Version)
		if err != nil {
			return nil, fmt.Errorf("failed to scan statement row: %w", err)
		}

		row.ReferenceDate, err = time.Parse("2006-01-02", rawDate)
		if err != nil {
			return nil, fmt.Errorf("invalid reference date %q: %w", rawDate, err)
		}
		row.StatementType = domain.StatementType(rawType)
		out = append(out, row)
	}
	return out, rows.Err()
}
