package sim

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/papertrade/market"
	"github.com/rustyeddy/papertrade/signals"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	ts := time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)
	return NewEngine(market.DefaultBasket, market.NewGenerator(42), WithClock(func() time.Time { return ts }))
}

func TestInitializeBuildsEveryInstrument(t *testing.T) {
	e := newTestEngine(t)
	require.Nil(t, e.Snapshot())
	require.NoError(t, e.Initialize())

	snap := e.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, int64(0), snap.Tick)
	require.Len(t, snap.States, len(market.DefaultBasket))

	for i, st := range snap.States {
		assert.Equal(t, market.DefaultBasket[i].Symbol, st.Symbol)
		require.Len(t, st.Series, market.DefaultWindow)
		assert.Equal(t, st.Series.Last(), st.Price)
		assert.Equal(t, st.Series.Prev(), st.PrevPrice)
		want := market.Round2((st.Price - st.PrevPrice) / st.PrevPrice * 100)
		assert.InDelta(t, want, st.ChangePct, 1e-9)
		for _, p := range st.Series {
			assert.Greater(t, p, 0.0)
		}
		assert.LessOrEqual(t, st.Indicators.Bollinger.Lower, st.Indicators.Bollinger.Middle)
		assert.LessOrEqual(t, st.Indicators.Bollinger.Middle, st.Indicators.Bollinger.Upper)
		assert.GreaterOrEqual(t, st.Signal.Strength, 0.0)
		assert.LessOrEqual(t, st.Signal.Strength, 100.0)
	}
}

func TestInitializeTwice(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Initialize())

	err := e.Initialize()
	assert.True(t, errors.Is(err, ErrAlreadyInitialized))
}

func TestTickBeforeInitialize(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Tick()
	assert.True(t, errors.Is(err, ErrNotInitialized))
}

func TestTickPublishesNewSnapshot(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Initialize())

	before := e.Snapshot()
	aaplBefore, ok := before.Get("AAPL")
	require.True(t, ok)
	seriesBefore := before.States[0].Series.Clone()

	after, err := e.Tick()
	require.NoError(t, err)
	assert.Same(t, after, e.Snapshot())
	assert.NotSame(t, before, after)
	assert.Equal(t, int64(1), after.Tick)

	// The old snapshot is untouched.
	assert.Equal(t, seriesBefore, before.States[0].Series)

	aaplAfter, ok := after.Get("AAPL")
	require.True(t, ok)
	require.Len(t, aaplAfter.Series, market.DefaultWindow)
	assert.Equal(t, aaplBefore.Series[1:], aaplAfter.Series[:market.DefaultWindow-1])
	assert.Equal(t, aaplBefore.Price, aaplAfter.PrevPrice)

	want := market.Round2((aaplAfter.Price-aaplBefore.Price)/aaplBefore.Price*100 + 0.7*aaplBefore.ChangePct)
	assert.InDelta(t, want, aaplAfter.ChangePct, 1e-9)
}

func TestSnapshotGetCopiesSeries(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Initialize())

	st, ok := e.Snapshot().Get("MSFT")
	require.True(t, ok)
	st.Series[0] = -1

	again, _ := e.Snapshot().Get("MSFT")
	assert.NotEqual(t, -1.0, again.Series[0])

	_, ok = e.Snapshot().Get("NOPE")
	assert.False(t, ok)
}

func TestSnapshotPrices(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Initialize())

	snap := e.Snapshot()
	prices := snap.Prices()
	require.Len(t, prices, len(snap.States))
	for _, st := range snap.States {
		assert.Equal(t, st.Price, prices[st.Symbol])
	}
}

func TestTopSignals(t *testing.T) {
	snap := newSnapshot(0, time.Time{}, []InstrumentState{
		{Instrument: market.Instrument{Symbol: "A"}, Signal: signals.Signal{Type: signals.Buy, Strength: 66}},
		{Instrument: market.Instrument{Symbol: "B"}, Signal: signals.Signal{Type: signals.Sell, Strength: 74}},
		{Instrument: market.Instrument{Symbol: "C"}, Signal: signals.Signal{Type: signals.Buy, Strength: 82}},
		{Instrument: market.Instrument{Symbol: "D"}, Signal: signals.Signal{Type: signals.Buy, Strength: 66}},
		{Instrument: market.Instrument{Symbol: "E"}, Signal: signals.Signal{Type: signals.Hold, Strength: 50}},
	})

	top := snap.TopSignals(signals.Buy, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "C", top[0].Symbol)
	assert.Equal(t, "A", top[1].Symbol)

	all := snap.TopSignals(signals.Buy, 0)
	require.Len(t, all, 3)
	assert.Equal(t, "D", all[2].Symbol)

	assert.Equal(t, 3, snap.Count(signals.Buy))
	assert.Equal(t, 1, snap.Count(signals.Sell))
	assert.Len(t, snap.TopSignals(signals.Sell, 0), 1)
}

func TestConcurrentReadersDuringTicks(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Initialize())

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap := e.Snapshot()
				for _, st := range snap.States {
					if len(st.Series) != market.DefaultWindow || st.Price != st.Series.Last() {
						t.Errorf("torn state for %s", st.Symbol)
						return
					}
				}
			}
		}()
	}

	for i := 0; i < 50; i++ {
		_, err := e.Tick()
		require.NoError(t, err)
	}
	close(stop)
	wg.Wait()

	assert.Equal(t, int64(50), e.Snapshot().Tick)
}

func TestSameSeedSameMarket(t *testing.T) {
	a := newTestEngine(t)
	b := newTestEngine(t)
	require.NoError(t, a.Initialize())
	require.NoError(t, b.Initialize())

	_, err := a.Tick()
	require.NoError(t, err)
	_, err = b.Tick()
	require.NoError(t, err)

	assert.Equal(t, a.Snapshot().Prices(), b.Snapshot().Prices())
}

func TestWritesToSnapshotDoNotReachEngine(t *testing.T) {
	mutated := newTestEngine(t)
	clean := newTestEngine(t)
	require.NoError(t, mutated.Initialize())
	require.NoError(t, clean.Initialize())

	snap := mutated.Snapshot()
	last := len(snap.States[0].Series) - 1
	snap.States[0].Series[last] = -5
	snap.States[0].Price = -5
	snap.States[1] = InstrumentState{}

	got, err := mutated.Tick()
	require.NoError(t, err)
	want, err := clean.Tick()
	require.NoError(t, err)

	assert.Equal(t, want.States, got.States)
	for _, st := range got.States {
		assert.Greater(t, st.Price, 0.0)
		assert.Greater(t, st.PrevPrice, 0.0)
		for _, p := range st.Series {
			assert.Greater(t, p, 0.0)
		}
	}

	// The next published snapshot is independent of the previous one too.
	got.States[2].Series[0] = -1
	again, err := mutated.Tick()
	require.NoError(t, err)
	for _, p := range again.States[2].Series {
		assert.Greater(t, p, 0.0)
	}
}
