// Package indicators provides the technical indicators the signal engine
// fuses: RSI, EMA-based MACD and Bollinger Bands. All functions are pure and
// operate on a price slice, oldest first.
package indicators

// Default periods.
const (
	RSIPeriod       = 14
	MACDFast        = 12
	MACDSlow        = 26
	BollingerPeriod = 20
	BollingerWidth  = 2.0
)

// Indicator computes a single streaming value from prices.
type Indicator interface {
	// Name returns a stable identifier like "EMA(12)".
	Name() string

	// Warmup returns how many updates are needed before Ready() can be true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next price.
	Update(price float64)

	// Ready reports whether Value() is meaningful.
	Ready() bool

	Value() float64
}

// Snapshot is the per-tick indicator reading for one instrument.
type Snapshot struct {
	RSI       float64   `json:"rsi"`
	MACD      MACDValue `json:"macd"`
	Bollinger Bands     `json:"bollinger"`
}

// Compute evaluates all indicators with their default periods.
func Compute(prices []float64) Snapshot {
	return Snapshot{
		RSI:       RSI(prices, RSIPeriod),
		MACD:      MACD(prices),
		Bollinger: Bollinger(prices, BollingerPeriod),
	}
}
