package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/niveshq/backtest/ledger"
	"github.com/niveshq/backtest/market"
	"github.com/niveshq/backtest/report"
)

// SQLite stores trades and report rows in a single database file per run.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(t ledger.ClosedTrade) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(key, exit_time, symbol, entry_price, exit_price, quantity, direction, pnl, exit_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Key, t.ExitTime, t.Symbol, t.EntryPrice,
		t.ExitPrice, t.Quantity, int(t.Direction), t.RealizedPnl, t.ExitType,
	)
	return err
}

func (j *SQLite) RecordRow(r report.Row) error {
	_, err := j.db.Exec(`
		INSERT INTO mtm_report
		(time, open_trades, capital_invested, cumulative_pnl, mtm_pnl, peak, drawdown)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.Time, r.OpenTrades, r.CapitalInvested, r.CumulativePnl, r.MtmPnl, r.Peak, r.Drawdown,
	)
	return err
}

// ListTrades returns the full closed-trade log ordered by entry time.
func (j *SQLite) ListTrades() ([]ledger.ClosedTrade, error) {
	rows, err := j.db.Query(`
		SELECT key, exit_time, symbol, entry_price, exit_price, quantity, direction, pnl, exit_type
		FROM trades
		ORDER BY key ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTrades(rows)
}

// ListTradesClosedBetween returns trades whose exit_time is within
// [start, end), ordered by exit time.
func (j *SQLite) ListTradesClosedBetween(start, end time.Time) ([]ledger.ClosedTrade, error) {
	rows, err := j.db.Query(`
		SELECT key, exit_time, symbol, entry_price, exit_price, quantity, direction, pnl, exit_type
		FROM trades
		WHERE exit_time >= ? AND exit_time < ?
		ORDER BY exit_time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTrades(rows)
}

func scanTrades(rows *sql.Rows) ([]ledger.ClosedTrade, error) {
	var out []ledger.ClosedTrade
	for rows.Next() {
		var rec ledger.ClosedTrade
		var dir int
		if err := rows.Scan(
			&rec.Key,
			&rec.ExitTime,
			&rec.Symbol,
			&rec.EntryPrice,
			&rec.ExitPrice,
			&rec.Quantity,
			&dir,
			&rec.RealizedPnl,
			&rec.ExitType,
		); err != nil {
			return nil, err
		}
		rec.Direction = market.Direction(dir)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListRows returns the stored report series ordered by time.
func (j *SQLite) ListRows() ([]report.Row, error) {
	rows, err := j.db.Query(`
		SELECT time, open_trades, capital_invested, cumulative_pnl, mtm_pnl, peak, drawdown
		FROM mtm_report
		ORDER BY time ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []report.Row
	for rows.Next() {
		var r report.Row
		if err := rows.Scan(
			&r.Time,
			&r.OpenTrades,
			&r.CapitalInvested,
			&r.CumulativePnl,
			&r.MtmPnl,
			&r.Peak,
			&r.Drawdown,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// RecordAll inserts a whole trade log and report series in one
// transaction.
func (j *SQLite) RecordAll(trades []ledger.ClosedTrade, rows []report.Row) error {
	tx, err := j.db.Begin()
	if err != nil {
		return err
	}
	for _, t := range trades {
		if _, err := tx.Exec(`
			INSERT INTO trades
			(key, exit_time, symbol, entry_price, exit_price, quantity, direction, pnl, exit_type)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.Key, t.ExitTime, t.Symbol, t.EntryPrice,
			t.ExitPrice, t.Quantity, int(t.Direction), t.RealizedPnl, t.ExitType,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record trade %s: %w", t.Symbol, err)
		}
	}
	for _, r := range rows {
		if _, err := tx.Exec(`
			INSERT INTO mtm_report
			(time, open_trades, capital_invested, cumulative_pnl, mtm_pnl, peak, drawdown)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.Time, r.OpenTrades, r.CapitalInvested, r.CumulativePnl, r.MtmPnl, r.Peak, r.Drawdown,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record row %s: %w", r.Time.Format(time.RFC3339), err)
		}
	}
	return tx.Commit()
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
