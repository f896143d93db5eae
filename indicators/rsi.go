package indicators

import "github.com/rustyeddy/papertrade/market"

// NeutralRSI is returned when there is not enough history.
const NeutralRSI = 50.0

// RSI computes a simple (non-Wilder) Relative Strength Index over the last
// period transitions, rounded to one decimal. Fewer than period+1 prices
// return NeutralRSI; a window with no losses returns 100.
func RSI(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period+1 {
		return NeutralRSI
	}

	var gains, losses float64
	for i := len(prices) - period; i < len(prices); i++ {
		diff := prices[i] - prices[i-1]
		if diff > 0 {
			gains += diff
		} else {
			losses -= diff
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss
	return market.RoundTo(100-100/(1+rs), 1)
}
