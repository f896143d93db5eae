package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/papertrade/indicators"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name     string
		scores   Scores
		wantType Type
		wantStr  float64
	}{
		{name: "bull leads by 3", scores: Scores{Bull: 5, Bear: 2}, wantType: Buy, wantStr: 90},
		{name: "bull leads by 1", scores: Scores{Bull: 4, Bear: 3}, wantType: Hold, wantStr: 50},
		{name: "bull leads by exactly 2", scores: Scores{Bull: 4, Bear: 2}, wantType: Hold, wantStr: 50},
		{name: "bear leads by 3", scores: Scores{Bull: 1, Bear: 4}, wantType: Sell, wantStr: 82},
		{name: "tie", scores: Scores{Bull: 3, Bear: 3}, wantType: Hold, wantStr: 50},
		{name: "strength capped", scores: Scores{Bull: 7, Bear: 0}, wantType: Buy, wantStr: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.scores)
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tt.wantStr, got.Strength)
			assert.Equal(t, tt.scores, got.Scores)
		})
	}
}

func snap(rsi, macd, sig, hist, upper, middle, lower float64) indicators.Snapshot {
	return indicators.Snapshot{
		RSI:       rsi,
		MACD:      indicators.MACDValue{MACD: macd, Signal: sig, Histogram: hist},
		Bollinger: indicators.Bands{Upper: upper, Middle: middle, Lower: lower},
	}
}

func TestScoreRSIThresholds(t *testing.T) {
	// Price inside the bands, flat trend, negative MACD so the other rules
	// contribute a fixed bear 3 (histogram, line vs signal, trend).
	prices := []float64{100, 100, 100, 100, 100}
	tests := []struct {
		rsi      float64
		wantBull int
		wantBear int
	}{
		{rsi: 29.9, wantBull: 2, wantBear: 3},
		{rsi: 30, wantBull: 1, wantBear: 3},
		{rsi: 44.9, wantBull: 1, wantBear: 3},
		{rsi: 45, wantBull: 0, wantBear: 3},
		{rsi: 55, wantBull: 0, wantBear: 3},
		{rsi: 55.1, wantBull: 0, wantBear: 4},
		{rsi: 70, wantBull: 0, wantBear: 4},
		{rsi: 70.1, wantBull: 0, wantBear: 5},
	}

	for _, tt := range tests {
		got := Score(prices, snap(tt.rsi, -1, -0.9, -0.1, 110, 100, 90))
		assert.Equal(t, Scores{Bull: tt.wantBull, Bear: tt.wantBear}, got, "rsi=%v", tt.rsi)
	}
}

func TestScoreBandsAndTrend(t *testing.T) {
	neutral := func(upper, lower float64) indicators.Snapshot {
		return snap(50, 1, 0.9, 0.1, upper, (upper+lower)/2, lower)
	}

	// below lower band and trending up vs prices[n-5]
	s := Score([]float64{80, 81, 82, 83, 85}, neutral(100, 90))
	assert.Equal(t, Scores{Bull: 5, Bear: 0}, s)

	// above upper band and trending down
	s = Score([]float64{130, 129, 128, 127, 120}, neutral(110, 100))
	assert.Equal(t, Scores{Bull: 2, Bear: 3}, s)

	// equal to reference counts as bear
	s = Score([]float64{100, 99, 101, 102, 100}, neutral(110, 90))
	assert.Equal(t, Scores{Bull: 2, Bear: 1}, s)
}

func TestScoreShortSeriesTrendIsBear(t *testing.T) {
	s := Score([]float64{90, 95, 100}, snap(50, 1, 0.9, 0.1, 110, 100, 90))
	assert.Equal(t, Scores{Bull: 2, Bear: 1}, s)

	s = Score(nil, snap(50, 1, 0.9, 0.1, 0, 0, 0))
	assert.Equal(t, Scores{Bull: 2, Bear: 1}, s)
}

func TestClassifyEndToEnd(t *testing.T) {
	// A long decline followed by a short bounce: the slow EMA still sits
	// above the fast one while every recent transition is a gain.
	prices := make([]float64, 0, 30)
	for i := 0; i < 16; i++ {
		prices = append(prices, 200-float64(i)*5)
	}
	for i := 0; i < 14; i++ {
		prices = append(prices, 126+float64(i))
	}

	snap := indicators.Compute(prices)
	assert.Equal(t, 100.0, snap.RSI)
	assert.Less(t, snap.MACD.MACD, 0.0)

	sig := Classify(prices, snap)
	assert.Equal(t, Scores{Bull: 1, Bear: 4}, sig.Scores)
	assert.Equal(t, Sell, sig.Type)
	assert.Equal(t, 82.0, sig.Strength)
}
