// Package session ties the simulated market to a paper portfolio. It is the
// one place orders, ticks and annotation requests enter the system.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rustyeddy/papertrade/annotate"
	"github.com/rustyeddy/papertrade/journal"
	"github.com/rustyeddy/papertrade/ledger"
	"github.com/rustyeddy/papertrade/market"
	"github.com/rustyeddy/papertrade/metrics"
	"github.com/rustyeddy/papertrade/signals"
	"github.com/rustyeddy/papertrade/sim"
)

var ErrUnknownSymbol = errors.New("unknown symbol")

const DefaultStartingCash = 100000

// Options configures New. Zero values pick defaults.
type Options struct {
	Basket       []market.Instrument
	StartingCash float64
	Window       int
	Seed         int64
	Rand         market.Rand // overrides Seed
	Clock        func() time.Time

	Journal         journal.Journal
	Annotator       annotate.Annotator
	AnnotateTimeout time.Duration
	Metrics         *metrics.Metrics
	Logger          *slog.Logger
}

type Session struct {
	engine  *sim.Engine
	ledger  *ledger.Ledger
	log     *journal.ActivityLog
	journal journal.Journal
	tracker *annotate.Tracker
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New builds the market, opens the portfolio and writes the startup entries
// to the activity log.
func New(opts Options) (*Session, error) {
	if opts.Basket == nil {
		opts.Basket = market.DefaultBasket
	}
	if opts.StartingCash <= 0 {
		opts.StartingCash = DefaultStartingCash
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Journal == nil {
		opts.Journal = journal.Nop{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	for _, in := range opts.Basket {
		if err := in.Validate(); err != nil {
			return nil, fmt.Errorf("new session: %w", err)
		}
	}

	var gen *market.Generator
	if opts.Rand != nil {
		gen = market.NewGeneratorWithRand(opts.Rand)
	} else {
		gen = market.NewGenerator(opts.Seed)
	}

	s := &Session{
		engine:  sim.NewEngine(opts.Basket, gen, sim.WithWindow(opts.Window), sim.WithClock(opts.Clock)),
		log:     journal.NewActivityLog(opts.Clock),
		journal: opts.Journal,
		metrics: opts.Metrics,
		logger:  opts.Logger,
	}
	s.ledger = ledger.New(opts.StartingCash, s.log, ledger.WithClock(opts.Clock))

	trackerOpts := []annotate.TrackerOption{
		annotate.WithTrackerLogger(opts.Logger),
		annotate.WithRequestTimeout(opts.AnnotateTimeout),
	}
	if s.metrics != nil {
		trackerOpts = append(trackerOpts, annotate.WithOnUpdate(s.countAnnotation))
	}
	s.tracker = annotate.NewTracker(opts.Annotator, trackerOpts...)

	if err := s.engine.Initialize(); err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}

	s.log.Infof("Paper trading session initialized. Paper trading mode active.")
	s.log.Infof("Starting capital: $%s", formatDollars(s.ledger.StartingCash()))

	s.logger.Info("session started",
		"instruments", len(opts.Basket),
		"starting_cash", s.ledger.StartingCash(),
	)
	s.observe(s.engine.Snapshot())
	return s, nil
}

func (s *Session) Engine() *sim.Engine            { return s.engine }
func (s *Session) Ledger() *ledger.Ledger         { return s.ledger }
func (s *Session) Activity() *journal.ActivityLog { return s.log }
func (s *Session) Snapshot() *sim.Snapshot        { return s.engine.Snapshot() }

// Buy fills qty shares of symbol at the current price.
func (s *Session) Buy(symbol string, qty int) (ledger.Fill, error) {
	return s.order(ledger.SideBuy, symbol, qty)
}

// Sell disposes of qty shares of symbol at the current price.
func (s *Session) Sell(symbol string, qty int) (ledger.Fill, error) {
	return s.order(ledger.SideSell, symbol, qty)
}

func (s *Session) order(side ledger.Side, symbol string, qty int) (ledger.Fill, error) {
	// One load, so the price cannot change between lookup and fill.
	snap := s.engine.Snapshot()
	st, ok := snap.Get(symbol)
	if !ok {
		return ledger.Fill{}, fmt.Errorf("%s %s: %w", side, symbol, ErrUnknownSymbol)
	}

	var (
		fill ledger.Fill
		err  error
	)
	if side == ledger.SideBuy {
		fill, err = s.ledger.Buy(symbol, qty, st.Price)
	} else {
		fill, err = s.ledger.Sell(symbol, qty, st.Price)
	}

	if err != nil {
		s.countOrder(side, "rejected")
		s.logger.Info("order rejected", "side", side, "symbol", symbol, "qty", qty, "err", err)
		return fill, err
	}

	s.countOrder(side, "filled")
	s.logger.Info("order filled",
		"id", fill.ID,
		"side", side,
		"symbol", symbol,
		"qty", qty,
		"price", fill.Price,
		"cash", fill.CashAfter,
	)
	if jerr := s.journal.RecordFill(fill.Record()); jerr != nil {
		s.logger.Warn("journal fill failed", "id", fill.ID, "err", jerr)
	}
	s.observePortfolio(snap)
	return fill, nil
}

// Tick advances the market one step and records the marked portfolio.
func (s *Session) Tick() (*sim.Snapshot, error) {
	snap, err := s.engine.Tick()
	if err != nil {
		return nil, err
	}

	v := s.ledger.Valuate(snap.Prices())
	eq := journal.EquitySnapshot{
		Time:           snap.Time,
		Tick:           snap.Tick,
		Cash:           v.Cash,
		PositionsValue: v.PositionsValue,
		Total:          v.Total,
		UnrealizedPnL:  market.Round2(v.Total - s.ledger.StartingCash()),
	}
	if err := s.journal.RecordEquity(eq); err != nil {
		s.logger.Warn("journal equity failed", "tick", snap.Tick, "err", err)
	}

	if s.metrics != nil {
		s.metrics.Ticks.Inc()
	}
	s.observe(snap)
	s.logger.Debug("market tick", "tick", snap.Tick, "total", v.Total)
	return snap, nil
}

// TickJob adapts Tick to the scheduler.
func (s *Session) TickJob(context.Context) error {
	_, err := s.Tick()
	return err
}

// AutoTrade follows the current signals: qty shares of every BUY that cash
// covers, and up to qty held shares of every SELL.
func (s *Session) AutoTrade(qty int) []ledger.Fill {
	if qty <= 0 {
		return nil
	}

	var fills []ledger.Fill
	for _, st := range s.engine.Snapshot().States {
		switch st.Signal.Type {
		case signals.Buy:
			if s.ledger.Cash() < st.Price*float64(qty) {
				continue
			}
			if f, err := s.Buy(st.Symbol, qty); err == nil {
				fills = append(fills, f)
			}
		case signals.Sell:
			pos, ok := s.ledger.Position(st.Symbol)
			if !ok {
				continue
			}
			if f, err := s.Sell(st.Symbol, min(qty, pos.Shares)); err == nil {
				fills = append(fills, f)
			}
		}
	}
	return fills
}

// Select starts an annotation for symbol, superseding any earlier one.
func (s *Session) Select(ctx context.Context, symbol string) (uint64, error) {
	st, ok := s.engine.Snapshot().Get(symbol)
	if !ok {
		return 0, fmt.Errorf("select %s: %w", symbol, ErrUnknownSymbol)
	}
	return s.tracker.Request(ctx, annotate.NewRequest(st)), nil
}

// Annotation returns the current annotation state.
func (s *Session) Annotation() annotate.Annotation { return s.tracker.Current() }

// WaitAnnotation blocks until outstanding annotation calls return.
func (s *Session) WaitAnnotation() { s.tracker.Wait() }

// Valuation marks the portfolio to the current snapshot.
func (s *Session) Valuation() ledger.Valuation {
	return s.ledger.Valuate(s.engine.Snapshot().Prices())
}

// Close cancels any annotation in flight and closes the journal.
func (s *Session) Close() error {
	s.tracker.Close()
	return s.journal.Close()
}

func (s *Session) countOrder(side ledger.Side, result string) {
	if s.metrics != nil {
		s.metrics.Orders.WithLabelValues(string(side), result).Inc()
	}
}

func (s *Session) countAnnotation(a annotate.Annotation) {
	if a.Loading {
		return
	}
	result := "ok"
	switch a.Text {
	case annotate.TextUnavailable:
		result = "unavailable"
	case annotate.TextOffline:
		result = "offline"
	}
	s.metrics.Annotations.WithLabelValues(result).Inc()
}

func (s *Session) observe(snap *sim.Snapshot) {
	if s.metrics == nil {
		return
	}
	for _, t := range []signals.Type{signals.Buy, signals.Sell, signals.Hold} {
		s.metrics.Signals.WithLabelValues(string(t)).Set(float64(snap.Count(t)))
	}
	s.observePortfolio(snap)
}

func (s *Session) observePortfolio(snap *sim.Snapshot) {
	if s.metrics == nil {
		return
	}
	v := s.ledger.Valuate(snap.Prices())
	s.metrics.Cash.Set(v.Cash)
	s.metrics.Equity.Set(v.Total)
	s.metrics.UnrealizedPnL.Set(v.Total - s.ledger.StartingCash())
}
