// journal/journal.go
package journal

import "time"

// FillRecord is one executed paper order.
type FillRecord struct {
	FillID           string
	Time             time.Time
	Symbol           string
	Side             string // "buy" or "sell"
	Quantity         int
	Price            float64
	Total            float64
	AvgCost          float64 // average cost after a buy, at the time of sale for a sell
	RealizedPerShare float64 // zero for buys
	CashAfter        float64
}

// EquitySnapshot is the portfolio valuation after a market tick.
type EquitySnapshot struct {
	Time           time.Time
	Tick           int64
	Cash           float64
	PositionsValue float64
	Total          float64
	UnrealizedPnL  float64
}

// Journal is a write-only sink for fills and equity snapshots.
type Journal interface {
	RecordFill(FillRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordFill(FillRecord) error       { return nil }
func (Nop) RecordEquity(EquitySnapshot) error { return nil }
func (Nop) Close() error                      { return nil }
