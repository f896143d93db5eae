package indicators

import "github.com/rustyeddy/papertrade/market"

// Bands are Bollinger Bands; Lower <= Middle <= Upper always holds.
type Bands struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// Width is Upper - Lower.
func (b Bands) Width() float64 { return b.Upper - b.Lower }

// Bollinger computes mean +/- 2 population standard deviations of the last
// period prices (all of them when the slice is shorter). The middle and the
// band offset are each rounded to 2 decimals before the bands are formed, so
// the bands stay symmetric around the displayed middle. An empty slice
// yields zero bands.
func Bollinger(prices []float64, period int) Bands {
	if len(prices) == 0 || period <= 0 {
		return Bands{}
	}

	ma := NewMA(period)
	for _, p := range prices {
		ma.Update(p)
	}

	var mu, sd float64
	if ma.Ready() {
		mu, sd = ma.Value(), ma.StdDev()
	} else {
		mu = mean(prices)
		sd = stddev(prices, mu)
	}

	middle := market.Round2(mu)
	offset := market.Round2(BollingerWidth * sd)
	return Bands{
		Upper:  market.Round2(middle + offset),
		Middle: middle,
		Lower:  market.Round2(middle - offset),
	}
}
