package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const fillColumns = `fill_id, time, symbol, side, quantity, price, total, avg_cost, realized_per_share, cash_after`

type scanner interface {
	Scan(dest ...any) error
}

func scanFill(s scanner) (FillRecord, error) {
	var rec FillRecord
	err := s.Scan(
		&rec.FillID,
		&rec.Time,
		&rec.Symbol,
		&rec.Side,
		&rec.Quantity,
		&rec.Price,
		&rec.Total,
		&rec.AvgCost,
		&rec.RealizedPerShare,
		&rec.CashAfter,
	)
	return rec, err
}

// GetFill returns a single fill by ID.
func (j *SQLite) GetFill(fillID string) (FillRecord, error) {
	row := j.db.QueryRow(`SELECT `+fillColumns+` FROM fills WHERE fill_id = ?`, fillID)

	rec, err := scanFill(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return FillRecord{}, fmt.Errorf("fill %q not found", fillID)
		}
		return FillRecord{}, err
	}
	return rec, nil
}

// ListFills returns fills in time order. An empty symbol matches all.
func (j *SQLite) ListFills(symbol string) ([]FillRecord, error) {
	q := `SELECT ` + fillColumns + ` FROM fills`
	var args []any
	if symbol != "" {
		q += ` WHERE symbol = ?`
		args = append(args, symbol)
	}
	q += ` ORDER BY time ASC, fill_id ASC`

	rows, err := j.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FillRecord
	for rows.Next() {
		rec, err := scanFill(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListEquityBetween returns snapshots whose time is within [start, end).
func (j *SQLite) ListEquityBetween(start, end time.Time) ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`
		SELECT time, tick, cash, positions_value, total, unrealized_pnl
		FROM equity
		WHERE time >= ? AND time < ?
		ORDER BY time ASC, tick ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var e EquitySnapshot
		if err := rows.Scan(&e.Time, &e.Tick, &e.Cash, &e.PositionsValue, &e.Total, &e.UnrealizedPnL); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// RealizedSummary totals realized P&L across sells.
type RealizedSummary struct {
	Sells       int
	GrossProfit float64
	GrossLoss   float64
}

func (s RealizedSummary) Net() float64 { return s.GrossProfit - s.GrossLoss }

// SummarizeRealized computes realized P&L from sell fills.
func SummarizeRealized(fills []FillRecord) RealizedSummary {
	var s RealizedSummary
	for _, f := range fills {
		if f.Side != "sell" {
			continue
		}
		s.Sells++
		pl := f.RealizedPerShare * float64(f.Quantity)
		if pl >= 0 {
			s.GrossProfit += pl
		} else {
			s.GrossLoss -= pl
		}
	}
	return s
}
