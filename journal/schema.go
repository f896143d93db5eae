// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS fills (
	fill_id TEXT PRIMARY KEY,
	time DATETIME NOT NULL,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	price REAL NOT NULL,
	total REAL NOT NULL,
	avg_cost REAL NOT NULL,
	realized_per_share REAL NOT NULL,
	cash_after REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS equity (
	time DATETIME NOT NULL,
	tick INTEGER NOT NULL,
	cash REAL NOT NULL,
	positions_value REAL NOT NULL,
	total REAL NOT NULL,
	unrealized_pnl REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fills_symbol ON fills(symbol);
CREATE INDEX IF NOT EXISTS idx_equity_time ON equity(time);
`
