package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordFill(f FillRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO fills
		(fill_id, time, symbol, side, quantity, price, total, avg_cost, realized_per_share, cash_after)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.FillID, f.Time, f.Symbol, f.Side, f.Quantity, f.Price,
		f.Total, f.AvgCost, f.RealizedPerShare, f.CashAfter,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(time, tick, cash, positions_value, total, unrealized_pnl)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.Time, e.Tick, e.Cash, e.PositionsValue, e.Total, e.UnrealizedPnL,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
