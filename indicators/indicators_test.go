package indicators

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ramp(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func randomWalk(seed int64, n int) []float64 {
	r := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	p := 100.0
	for i := range out {
		p += (r.Float64() - 0.5) * 4
		if p < 1 {
			p = 1
		}
		out[i] = p
	}
	return out
}

func TestRSI(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		period int
		want   float64
	}{
		{name: "not enough history", prices: ramp(14, 100, 1), period: 14, want: 50},
		{name: "empty", prices: nil, period: 14, want: 50},
		{name: "all gains", prices: ramp(15, 100, 1), period: 14, want: 100},
		{name: "flat window has no losses", prices: ramp(15, 100, 0), period: 14, want: 100},
		{name: "all losses", prices: ramp(15, 100, -1), period: 14, want: 0},
		{name: "balanced", prices: []float64{1, 2, 1}, period: 2, want: 50},
		{name: "two to one", prices: []float64{10, 11, 10.5}, period: 2, want: 66.7},
		{name: "only last period transitions count", prices: []float64{50, 10, 11, 10.5}, period: 2, want: 66.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RSI(tt.prices, tt.period))
		})
	}
}

func TestRSIBounded(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		v := RSI(randomWalk(seed, 30), RSIPeriod)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	}
}

func TestMACDShortSeriesIsZero(t *testing.T) {
	assert.Equal(t, MACDValue{}, MACD(ramp(25, 100, 1)))
}

func TestMACDFlatIsZero(t *testing.T) {
	assert.Equal(t, MACDValue{}, MACD(ramp(30, 100, 0)))
}

func TestMACDRisingSeries(t *testing.T) {
	prices := ramp(30, 100, 1)
	m := MACD(prices)

	line := EMAOf(prices, MACDFast) - EMAOf(prices, MACDSlow)
	require.Greater(t, line, 0.0)

	assert.InDelta(t, line, m.MACD, 0.005)
	assert.InDelta(t, line*0.9, m.Signal, 0.005)
	assert.InDelta(t, line*0.1, m.Histogram, 0.005)
	assert.Greater(t, m.MACD, m.Signal)
	assert.Greater(t, m.Histogram, 0.0)
}

func TestBollingerKnown(t *testing.T) {
	// mean 5, population sd 2
	b := Bollinger([]float64{2, 4, 4, 4, 5, 5, 7, 9}, 8)
	assert.Equal(t, Bands{Upper: 9, Middle: 5, Lower: 1}, b)
	assert.Equal(t, 8.0, b.Width())
}

func TestBollingerUsesLastPeriod(t *testing.T) {
	prices := append([]float64{1000, 1000}, 2, 4, 4, 4, 5, 5, 7, 9)
	assert.Equal(t, Bands{Upper: 9, Middle: 5, Lower: 1}, Bollinger(prices, 8))
}

func TestBollingerShortSeriesUsesAll(t *testing.T) {
	b := Bollinger([]float64{4, 6}, 20)
	assert.Equal(t, Bands{Upper: 7, Middle: 5, Lower: 3}, b)
}

func TestBollingerEmpty(t *testing.T) {
	assert.Equal(t, Bands{}, Bollinger(nil, 20))
}

func TestBollingerOrderedAndSymmetric(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		b := Bollinger(randomWalk(seed, 30), BollingerPeriod)
		assert.LessOrEqual(t, b.Lower, b.Middle)
		assert.LessOrEqual(t, b.Middle, b.Upper)
		assert.InDelta(t, b.Upper-b.Middle, b.Middle-b.Lower, 1e-9)
	}
}

func TestMA(t *testing.T) {
	ma, err := MA([]float64{102, 105, 106, 111, 113, 114, 116, 118}, 5)
	require.NoError(t, err)
	// 113+114+116+118+111 = 572 / 5
	assert.InDelta(t, 114.4, ma, 0.001)

	_, err = MA([]float64{1, 2}, 5)
	assert.Error(t, err)
	_, err = MA([]float64{1, 2}, 0)
	assert.Error(t, err)
}

func TestSimpleMAStreaming(t *testing.T) {
	ma := NewMA(3)
	assert.Equal(t, "MA(3)", ma.Name())
	assert.Equal(t, 3, ma.Warmup())
	assert.False(t, ma.Ready())
	assert.Equal(t, 0.0, ma.Value())

	ma.Update(102)
	ma.Update(105)
	assert.False(t, ma.Ready())
	ma.Update(106)
	assert.True(t, ma.Ready())
	assert.InDelta(t, (102.0+105.0+106.0)/3.0, ma.Value(), 0.001)

	ma.Update(108)
	assert.InDelta(t, (105.0+106.0+108.0)/3.0, ma.Value(), 0.001)

	ma.Reset()
	assert.False(t, ma.Ready())
	assert.Equal(t, 0.0, ma.StdDev())
}

func TestCompute(t *testing.T) {
	prices := randomWalk(3, 30)
	s := Compute(prices)
	assert.Equal(t, RSI(prices, 14), s.RSI)
	assert.Equal(t, MACD(prices), s.MACD)
	assert.Equal(t, Bollinger(prices, 20), s.Bollinger)
}
