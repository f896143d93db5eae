// Package ledger holds the paper portfolio: cash, positions and their average
// cost. Every order either applies completely or leaves the ledger untouched.
package ledger

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/papertrade/journal"
	"github.com/rustyeddy/papertrade/pkg/id"
)

var (
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrInvalidPrice       = errors.New("price must be a positive finite number")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInsufficientShares = errors.New("insufficient shares")
)

type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Fill describes an order that was applied to the ledger.
type Fill struct {
	ID               string    `json:"id"`
	Time             time.Time `json:"time"`
	Symbol           string    `json:"symbol"`
	Side             Side      `json:"side"`
	Quantity         int       `json:"quantity"`
	Price            float64   `json:"price"`
	Total            float64   `json:"total"`
	AvgCost          float64   `json:"avg_cost"`
	RealizedPerShare float64   `json:"realized_per_share"`
	CashAfter        float64   `json:"cash_after"`
}

// Record converts the fill to its journal form.
func (f Fill) Record() journal.FillRecord {
	return journal.FillRecord{
		FillID:           f.ID,
		Time:             f.Time,
		Symbol:           f.Symbol,
		Side:             string(f.Side),
		Quantity:         f.Quantity,
		Price:            f.Price,
		Total:            f.Total,
		AvgCost:          f.AvgCost,
		RealizedPerShare: f.RealizedPerShare,
		CashAfter:        f.CashAfter,
	}
}

// Position is a read-only view of a holding.
type Position struct {
	Symbol  string  `json:"symbol"`
	Shares  int     `json:"shares"`
	AvgCost float64 `json:"avg_cost"`
}

type position struct {
	shares  int64
	avgCost decimal.Decimal
}

// Valuation is the portfolio marked to a set of prices.
type Valuation struct {
	Cash           float64 `json:"cash"`
	PositionsValue float64 `json:"positions_value"`
	Total          float64 `json:"total"`
}

type Option func(*Ledger)

// WithClock sets the time source for fills. Defaults to time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithIDs sets the fill id generator. Defaults to id.NewAt.
func WithIDs(newID func(time.Time) string) Option {
	return func(l *Ledger) { l.newID = newID }
}

type Ledger struct {
	mu        sync.Mutex
	starting  decimal.Decimal
	cash      decimal.Decimal
	positions map[string]*position
	log       *journal.ActivityLog
	now       func() time.Time
	newID     func(time.Time) string
}

// New creates a ledger holding startingCash and no positions. Order outcomes
// are written to log, which may be nil.
func New(startingCash float64, log *journal.ActivityLog, opts ...Option) *Ledger {
	start := decimal.NewFromFloat(startingCash).Round(2)
	l := &Ledger{
		starting:  start,
		cash:      start,
		positions: make(map[string]*position),
		log:       log,
		now:       time.Now,
		newID:     id.NewAt,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Buy purchases qty shares of symbol at price.
func (l *Ledger) Buy(symbol string, qty int, price float64) (Fill, error) {
	if qty <= 0 {
		return Fill{}, fmt.Errorf("buy %s: %w", symbol, ErrInvalidQuantity)
	}
	if !validPrice(price) {
		return Fill{}, fmt.Errorf("buy %s at %v: %w", symbol, price, ErrInvalidPrice)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	px := decimal.NewFromFloat(price)
	q := decimal.NewFromInt(int64(qty))
	gross := px.Mul(q)

	if gross.GreaterThan(l.cash) {
		l.info(fmt.Sprintf("Insufficient funds for %d × %s", qty, symbol))
		return Fill{}, fmt.Errorf("buy %d %s: %w", qty, symbol, ErrInsufficientFunds)
	}

	cost := gross.Round(2)
	l.cash = l.cash.Sub(cost)

	pos, ok := l.positions[symbol]
	if !ok {
		pos = &position{avgCost: px}
		l.positions[symbol] = pos
	} else {
		held := decimal.NewFromInt(pos.shares)
		pos.avgCost = pos.avgCost.Mul(held).Add(px.Mul(q)).Div(held.Add(q))
	}
	pos.shares += int64(qty)

	fill := l.fill(symbol, SideBuy, qty, px, cost, pos.avgCost, decimal.Zero)
	l.append(journal.CategoryBuy, fmt.Sprintf("BUY %d × %s @ $%s = $%s",
		qty, symbol, px.StringFixed(2), cost.StringFixed(2)))
	return fill, nil
}

// Sell disposes of qty shares of symbol at price. The average cost of any
// remaining shares is unchanged.
func (l *Ledger) Sell(symbol string, qty int, price float64) (Fill, error) {
	if qty <= 0 {
		return Fill{}, fmt.Errorf("sell %s: %w", symbol, ErrInvalidQuantity)
	}
	if !validPrice(price) {
		return Fill{}, fmt.Errorf("sell %s at %v: %w", symbol, price, ErrInvalidPrice)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	pos, ok := l.positions[symbol]
	if !ok || pos.shares < int64(qty) {
		l.info(fmt.Sprintf("Insufficient shares to sell %d × %s", qty, symbol))
		return Fill{}, fmt.Errorf("sell %d %s: %w", qty, symbol, ErrInsufficientShares)
	}

	px := decimal.NewFromFloat(price)
	proceeds := px.Mul(decimal.NewFromInt(int64(qty))).Round(2)
	perShare := px.Sub(pos.avgCost)
	avg := pos.avgCost

	l.cash = l.cash.Add(proceeds)
	pos.shares -= int64(qty)
	if pos.shares == 0 {
		delete(l.positions, symbol)
	}

	fill := l.fill(symbol, SideSell, qty, px, proceeds, avg, perShare)
	l.append(journal.CategorySell, fmt.Sprintf("SELL %d × %s @ $%s | PnL/share: %s",
		qty, symbol, px.StringFixed(2), signedDollars(perShare)))
	return fill, nil
}

func validPrice(p float64) bool {
	return p > 0 && !math.IsInf(p, 0) && !math.IsNaN(p)
}

func (l *Ledger) fill(symbol string, side Side, qty int, px, total, avg, perShare decimal.Decimal) Fill {
	ts := l.now()
	return Fill{
		ID:               l.newID(ts),
		Time:             ts,
		Symbol:           symbol,
		Side:             side,
		Quantity:         qty,
		Price:            px.InexactFloat64(),
		Total:            total.InexactFloat64(),
		AvgCost:          avg.InexactFloat64(),
		RealizedPerShare: perShare.Round(2).InexactFloat64(),
		CashAfter:        l.cash.InexactFloat64(),
	}
}

func (l *Ledger) append(cat journal.Category, msg string) {
	if l.log != nil {
		l.log.Append(cat, msg)
	}
}

func (l *Ledger) info(msg string) { l.append(journal.CategoryInfo, msg) }

// signedDollars renders d as "+$5.50" or "-$2.25".
func signedDollars(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Abs().StringFixed(2)
	}
	return "+$" + d.StringFixed(2)
}

func (l *Ledger) Cash() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cash.InexactFloat64()
}

func (l *Ledger) StartingCash() float64 {
	return l.starting.InexactFloat64()
}

// Position returns the holding for symbol, if any.
func (l *Ledger) Position(symbol string) (Position, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pos, ok := l.positions[symbol]
	if !ok {
		return Position{}, false
	}
	return Position{Symbol: symbol, Shares: int(pos.shares), AvgCost: pos.avgCost.InexactFloat64()}, true
}

// Positions returns all holdings sorted by symbol.
func (l *Ledger) Positions() []Position {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Position, 0, len(l.positions))
	for sym, pos := range l.positions {
		out = append(out, Position{Symbol: sym, Shares: int(pos.shares), AvgCost: pos.avgCost.InexactFloat64()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Valuate marks the portfolio to prices. Held symbols missing from prices
// contribute nothing.
func (l *Ledger) Valuate(prices map[string]float64) Valuation {
	l.mu.Lock()
	defer l.mu.Unlock()

	posValue := decimal.Zero
	for sym, pos := range l.positions {
		px, ok := prices[sym]
		if !ok {
			continue
		}
		posValue = posValue.Add(decimal.NewFromFloat(px).Mul(decimal.NewFromInt(pos.shares)))
	}
	posValue = posValue.Round(2)

	return Valuation{
		Cash:           l.cash.InexactFloat64(),
		PositionsValue: posValue.InexactFloat64(),
		Total:          l.cash.Add(posValue).InexactFloat64(),
	}
}

// UnrealizedPnL is the marked total less the starting cash.
func (l *Ledger) UnrealizedPnL(prices map[string]float64) float64 {
	v := l.Valuate(prices)
	return decimal.NewFromFloat(v.Total).Sub(l.starting).Round(2).InexactFloat64()
}

// PositionPnL returns the open profit on symbol at price, or false when
// nothing is held.
func (l *Ledger) PositionPnL(symbol string, price float64) (float64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pos, ok := l.positions[symbol]
	if !ok {
		return 0, false
	}
	pnl := decimal.NewFromFloat(price).Sub(pos.avgCost).Mul(decimal.NewFromInt(pos.shares))
	return pnl.Round(2).InexactFloat64(), true
}
