// Package journal persists closed trades and MTM report rows durably,
// with SQLite and CSV backends. The engine treats it as fire-and-forget;
// queries exist for report drivers reading a finished run back.
package journal

import (
	"github.com/niveshq/backtest/ledger"
	"github.com/niveshq/backtest/report"
)

// Journal records a run's trade log and report series.
type Journal interface {
	RecordTrade(ledger.ClosedTrade) error
	RecordRow(report.Row) error
	Close() error
}

var tradeHeader = []string{"key", "exit_time", "symbol", "entry_price", "exit_price", "quantity", "direction", "pnl", "exit_type"}

var rowHeader = []string{"time", "open_trades", "capital_invested", "cumulative_pnl", "mtm_pnl", "peak", "drawdown"}
