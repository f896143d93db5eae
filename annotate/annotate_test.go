package annotate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/papertrade/indicators"
	"github.com/rustyeddy/papertrade/market"
	"github.com/rustyeddy/papertrade/signals"
	"github.com/rustyeddy/papertrade/sim"
)

func testRequest() Request {
	return Request{
		Symbol:    "AAPL",
		Name:      "Apple Inc.",
		Price:     189.5,
		RSI:       28.4,
		MACD:      indicators.MACDValue{MACD: 1.25, Signal: 1.13, Histogram: 0.13},
		Bollinger: indicators.Bands{Upper: 195.1, Middle: 190, Lower: 184.9},
		Signal:    signals.Signal{Type: signals.Buy, Strength: 82},
		ChangePct: -0.42,
	}
}

func TestNewRequestFromState(t *testing.T) {
	st := sim.InstrumentState{
		Instrument: market.Instrument{Symbol: "MSFT", Name: "Microsoft Corp."},
		Indicators: indicators.Snapshot{RSI: 61.2, MACD: indicators.MACDValue{MACD: 2}},
		Signal:     signals.Signal{Type: signals.Hold, Strength: 50},
		Price:      415.2,
		ChangePct:  0.31,
	}

	req := NewRequest(st)
	assert.Equal(t, "MSFT", req.Symbol)
	assert.Equal(t, "Microsoft Corp.", req.Name)
	assert.Equal(t, 415.2, req.Price)
	assert.Equal(t, 61.2, req.RSI)
	assert.Equal(t, 2.0, req.MACD.MACD)
	assert.Equal(t, signals.Hold, req.Signal.Type)
	assert.Equal(t, 0.31, req.ChangePct)
}

func TestPrompt(t *testing.T) {
	p := Prompt(testRequest())

	assert.Contains(t, p, "Analyze AAPL (Apple Inc.) with these indicators:")
	assert.Contains(t, p, "- Current Price: $189.5\n")
	assert.Contains(t, p, "- RSI(14): 28.4\n")
	assert.Contains(t, p, "- MACD: 1.25 | Signal: 1.13 | Histogram: 0.13\n")
	assert.Contains(t, p, "- Bollinger Bands: Upper $195.1 | Mid $190 | Lower $184.9\n")
	assert.Contains(t, p, "- Signal: BUY (strength: 82%)\n")
	assert.Contains(t, p, "- Day Change: -0.42%\n")
	assert.Contains(t, p, "Give a 2-sentence paper trading insight.")
}
