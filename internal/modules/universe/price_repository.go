package universe

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/brvalue/fleuriet/internal/database"
)

// PriceRepository stores daily close prices used for beta estimation.
type PriceRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewPriceRepository creates a new price repository.
func NewPriceRepository(db *sql.DB, log zerolog.Logger) *PriceRepository {
	return &PriceRepository{
		db:  db,
		log: log.With().Str("repo", "prices").Logger(),
	}
}

// PricePoint is one daily close.
type PricePoint struct {
	Date  time.Time
	Close float64
}

// SaveSeries stores a price series for a ticker, replacing duplicates for
// the same day.
func (r *PriceRepository) SaveSeries(ticker string, points []PricePoint) error {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO price_history (ticker, date, close)
			VALUES (?, ?, ?)
			ON CONFLICT(ticker, date) DO UPDATE SET close = excluded.close`)
		if err != nil {
			return fmt.Errorf("failed to prepare price insert: %w", err)
		}
		defer stmt.Close()

		for _, p := range points {
			if _, err := stmt.Exec(ticker, p.Date.UTC().Format("2006-01-02"), p.Close); err != nil {
				return fmt.Errorf("failed to insert price for %s: %w", ticker, err)
			}
		}
		return nil
	})
}

// ClosesSince returns the close prices of a ticker from a start date
// onward, oldest first.
func (r *PriceRepository) ClosesSince(ticker string, since time.Time) ([]float64, error) {
	rows, err := r.db.Query(`
		SELECT close FROM price_history
		WHERE ticker = ? AND date >= ?
		ORDER BY date`,
		strings.ToUpper(strings.TrimSpace(ticker)), since.UTC().Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to query price history: %w", err)
	}
	defer rows.Close()

	var closes []float64
	for rows.Next() {
		var c float64
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan close price: %w", err)
		}
		closes = append(closes, c)
	}
	return closes, rows.Err()
}
