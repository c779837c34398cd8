package journal

const schema = `
CREATE TABLE IF NOT EXISTS trades (
	key DATETIME NOT NULL,
	exit_time DATETIME NOT NULL,
	symbol TEXT NOT NULL,
	entry_price REAL NOT NULL,
	exit_price REAL NOT NULL,
	quantity INTEGER NOT NULL,
	direction INTEGER NOT NULL,
	pnl REAL NOT NULL,
	exit_type TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS mtm_report (
	time DATETIME NOT NULL,
	open_trades INTEGER NOT NULL,
	capital_invested REAL NOT NULL,
	cumulative_pnl REAL NOT NULL,
	mtm_pnl REAL NOT NULL,
	peak REAL NOT NULL,
	drawdown REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_key ON trades(key);
CREATE INDEX IF NOT EXISTS idx_trades_exit_time ON trades(exit_time);
CREATE INDEX IF NOT EXISTS idx_mtm_report_time ON mtm_report(time);
`
