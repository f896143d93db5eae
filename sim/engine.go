// Package sim runs the synthetic market: it owns the per-instrument state and
// publishes a fresh snapshot on every tick.
package sim

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rustyeddy/papertrade/indicators"
	"github.com/rustyeddy/papertrade/market"
	"github.com/rustyeddy/papertrade/signals"
)

var (
	ErrNotInitialized     = errors.New("market not initialized")
	ErrAlreadyInitialized = errors.New("market already initialized")
)

// momentum is the share of the previous change carried into the next one.
const momentum = 0.7

type Option func(*Engine)

// WithWindow sets the series length. Defaults to market.DefaultWindow.
func WithWindow(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.window = n
		}
	}
}

// WithClock sets the time stamped on snapshots.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

type Engine struct {
	mu     sync.Mutex // serializes Initialize and Tick
	gen    *market.Generator
	basket []market.Instrument
	window int
	now    func() time.Time

	states []InstrumentState // engine-owned; published snapshots get copies
	snap   atomic.Pointer[Snapshot]
}

func NewEngine(basket []market.Instrument, gen *market.Generator, opts ...Option) *Engine {
	e := &Engine{
		gen:    gen,
		basket: append([]market.Instrument(nil), basket...),
		window: market.DefaultWindow,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Basket returns the instruments the engine simulates.
func (e *Engine) Basket() []market.Instrument {
	return append([]market.Instrument(nil), e.basket...)
}

// Initialize builds the starting history for every instrument and publishes
// tick zero.
func (e *Engine) Initialize() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.snap.Load() != nil {
		return fmt.Errorf("initialize: %w", ErrAlreadyInitialized)
	}

	states := make([]InstrumentState, len(e.basket))
	for i, inst := range e.basket {
		series := e.gen.Initialize(inst.BasePrice, e.window)
		price, prev := series.Last(), series.Prev()

		var change float64
		if prev > 0 {
			change = market.Round2((price - prev) / prev * 100)
		}
		states[i] = derive(inst, series, prev, change)
	}

	e.states = states
	e.snap.Store(newSnapshot(0, e.now(), cloneStates(states)))
	return nil
}

// Tick advances every instrument by one step and publishes the result.
func (e *Engine) Tick() (*Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur := e.snap.Load()
	if cur == nil {
		return nil, fmt.Errorf("tick: %w", ErrNotInitialized)
	}

	states := make([]InstrumentState, len(e.states))
	for i, old := range e.states {
		series := e.gen.Tick(old.Series)
		price := series.Last()

		var change float64
		if old.Price > 0 {
			change = market.Round2((price-old.Price)/old.Price*100 + momentum*old.ChangePct)
		}
		states[i] = derive(old.Instrument, series, old.Price, change)
	}

	e.states = states
	next := newSnapshot(cur.Tick+1, e.now(), cloneStates(states))
	e.snap.Store(next)
	return next, nil
}

// Snapshot returns the latest published snapshot, or nil before Initialize.
func (e *Engine) Snapshot() *Snapshot {
	return e.snap.Load()
}

func cloneStates(states []InstrumentState) []InstrumentState {
	out := make([]InstrumentState, len(states))
	for i, st := range states {
		st.Series = st.Series.Clone()
		out[i] = st
	}
	return out
}

func derive(inst market.Instrument, series market.Series, prev, change float64) InstrumentState {
	snap := indicators.Compute(series)
	return InstrumentState{
		Instrument: inst,
		Series:     series,
		Indicators: snap,
		Signal:     signals.Classify(series, snap),
		Price:      series.Last(),
		PrevPrice:  prev,
		ChangePct:  change,
	}
}
