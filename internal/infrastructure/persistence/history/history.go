package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"foliotrack/internal/application"
	"foliotrack/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	ts              INTEGER NOT NULL,
	symbol          TEXT    NOT NULL,
	name            TEXT    NOT NULL,
	allocation      REAL    NOT NULL,
	shares          REAL    NOT NULL,
	initial_price   TEXT    NOT NULL,
	current_price   TEXT    NOT NULL,
	profit_loss     TEXT    NOT NULL,
	purchase_date   TEXT    NOT NULL,
	days_owned      INTEGER,
	portfolio_value TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_symbol_ts ON snapshots(symbol, ts);

CREATE TABLE IF NOT EXISTS totals (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	ts          INTEGER NOT NULL,
	total_pl    TEXT    NOT NULL,
	total_value TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_totals_ts ON totals(ts);
`

// Store mirrors refresh output into a local sqlite database so the
// plotting and commentary consumers can query history instead of
// re-parsing the CSV logs. Rows are append-only, like the logs.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=3000;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma busy_timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RecordSnapshot appends one per-holding row.
func (s *Store) RecordSnapshot(snap application.Snapshot) error {
	var days any
	if snap.HasDays {
		days = snap.DaysOwned
	}
	_, err := s.db.Exec(
		`INSERT INTO snapshots (ts, symbol, name, allocation, shares, initial_price,
			current_price, profit_loss, purchase_date, days_owned, portfolio_value)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.Timestamp.Unix(), snap.Symbol, snap.Name, snap.Allocation, snap.Shares,
		snap.InitialPrice, snap.CurrentPrice, snap.ProfitLoss,
		snap.PurchaseDate, days, snap.PortfolioValue,
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// RecordTotals appends the portfolio-wide row.
func (s *Store) RecordTotals(t application.Totals) error {
	_, err := s.db.Exec(
		`INSERT INTO totals (ts, total_pl, total_value) VALUES (?, ?, ?)`,
		t.Timestamp.Unix(), t.TotalPL, t.TotalValue,
	)
	if err != nil {
		return fmt.Errorf("insert totals: %w", err)
	}
	return nil
}

// RecentTotals returns the most recent totals rows, newest first.
func (s *Store) RecentTotals(ctx context.Context, limit int) ([]application.Totals, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT ts, total_pl, total_value FROM totals ORDER BY ts DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query totals: %w", err)
	}
	defer rows.Close()

	var out []application.Totals
	for rows.Next() {
		var ts int64
		var pl, value domain.Decimal
		if err := rows.Scan(&ts, &pl, &value); err != nil {
			return nil, fmt.Errorf("scan totals row: %w", err)
		}
		out = append(out, application.Totals{
			Timestamp:  time.Unix(ts, 0),
			TotalPL:    pl,
			TotalValue: value,
		})
	}
	return out, rows.Err()
}

// SymbolHistory returns the most recent snapshot rows for one symbol,
// newest first.
func (s *Store) SymbolHistory(ctx context.Context, symbol string, limit int) ([]application.Snapshot, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT ts, symbol, name, allocation, shares, initial_price, current_price,
			profit_loss, purchase_date, days_owned, portfolio_value
		 FROM snapshots WHERE symbol = ? ORDER BY ts DESC LIMIT ?`,
		domain.CanonicalSymbol(symbol), limit)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var out []application.Snapshot
	for rows.Next() {
		var (
			ts   int64
			days sql.NullInt64
			snap application.Snapshot
		)
		if err := rows.Scan(&ts, &snap.Symbol, &snap.Name, &snap.Allocation, &snap.Shares,
			&snap.InitialPrice, &snap.CurrentPrice, &snap.ProfitLoss,
			&snap.PurchaseDate, &days, &snap.PortfolioValue); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		snap.Timestamp = time.Unix(ts, 0)
		if days.Valid {
			snap.DaysOwned = int(days.Int64)
			snap.HasDays = true
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}
