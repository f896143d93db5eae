package session

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/papertrade/annotate"
	"github.com/rustyeddy/papertrade/journal"
	"github.com/rustyeddy/papertrade/ledger"
	"github.com/rustyeddy/papertrade/sim"
)

// State is a plain copy of everything a presentation layer would show.
type State struct {
	Tick        int64                 `json:"tick"`
	Time        time.Time             `json:"time"`
	Instruments []sim.InstrumentState `json:"instruments"`
	Portfolio   Portfolio             `json:"portfolio"`
	Log         []journal.Entry       `json:"log"`
	Annotation  annotate.Annotation   `json:"annotation"`
}

type Portfolio struct {
	Cash           float64        `json:"cash"`
	StartingCash   float64        `json:"starting_cash"`
	PositionsValue float64        `json:"positions_value"`
	Total          float64        `json:"total"`
	UnrealizedPnL  float64        `json:"unrealized_pnl"`
	ReturnPct      float64        `json:"return_pct"`
	Positions      []PositionView `json:"positions"`
}

// PositionView is a holding marked to the snapshot price.
type PositionView struct {
	ledger.Position
	Price       float64 `json:"price"`
	MarketValue float64 `json:"market_value"`
	PnL         float64 `json:"pnl"`
}

// State captures the market, portfolio and log from one snapshot.
func (s *Session) State() State {
	snap := s.engine.Snapshot()
	prices := snap.Prices()

	v := s.ledger.Valuate(prices)
	start := s.ledger.StartingCash()
	pnl := decimal.NewFromFloat(v.Total).Sub(decimal.NewFromFloat(start)).Round(2)

	pf := Portfolio{
		Cash:           v.Cash,
		StartingCash:   start,
		PositionsValue: v.PositionsValue,
		Total:          v.Total,
		UnrealizedPnL:  pnl.InexactFloat64(),
		ReturnPct:      pnl.Div(decimal.NewFromFloat(start)).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64(),
	}
	for _, pos := range s.ledger.Positions() {
		pv := PositionView{Position: pos}
		if px, ok := prices[pos.Symbol]; ok {
			pv.Price = px
			pv.MarketValue = decimal.NewFromFloat(px).Mul(decimal.NewFromInt(int64(pos.Shares))).Round(2).InexactFloat64()
			pv.PnL, _ = s.ledger.PositionPnL(pos.Symbol, px)
		}
		pf.Positions = append(pf.Positions, pv)
	}

	states := make([]sim.InstrumentState, len(snap.States))
	for i, st := range snap.States {
		st.Series = st.Series.Clone()
		states[i] = st
	}

	return State{
		Tick:        snap.Tick,
		Time:        snap.Time,
		Instruments: states,
		Portfolio:   pf,
		Log:         s.log.Entries(),
		Annotation:  s.tracker.Current(),
	}
}

// formatDollars renders x with thousands separators and cents.
func formatDollars(x float64) string {
	s := decimal.NewFromFloat(x).StringFixed(2)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, cents, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "." + cents
}
