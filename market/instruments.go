// market/instruments.go
package market

import "fmt"

// Instrument is the fixed identity of a tradeable equity. It is set at
// startup and never mutated.
type Instrument struct {
	Symbol    string  `json:"symbol" yaml:"symbol"`
	Name      string  `json:"name" yaml:"name"`
	Sector    string  `json:"sector" yaml:"sector"`
	BasePrice float64 `json:"base_price" yaml:"base_price"`
}

func (i Instrument) Validate() error {
	if i.Symbol == "" {
		return fmt.Errorf("instrument symbol is required")
	}
	if !(i.BasePrice >= MinPrice) {
		return fmt.Errorf("instrument %s: base_price must be at least %.2f", i.Symbol, MinPrice)
	}
	return nil
}

// DefaultBasket is the large-cap basket the simulator trades when no
// instruments are configured.
var DefaultBasket = []Instrument{
	{Symbol: "AAPL", Name: "Apple Inc.", Sector: "Technology", BasePrice: 189.5},
	{Symbol: "MSFT", Name: "Microsoft Corp.", Sector: "Technology", BasePrice: 415.2},
	{Symbol: "GOOGL", Name: "Alphabet Inc.", Sector: "Technology", BasePrice: 175.8},
	{Symbol: "AMZN", Name: "Amazon.com Inc.", Sector: "Consumer Discretionary", BasePrice: 198.4},
	{Symbol: "NVDA", Name: "NVIDIA Corp.", Sector: "Technology", BasePrice: 875.3},
	{Symbol: "META", Name: "Meta Platforms", Sector: "Technology", BasePrice: 512.6},
	{Symbol: "BRK", Name: "Berkshire Hathaway", Sector: "Financials", BasePrice: 398.1},
	{Symbol: "JPM", Name: "JPMorgan Chase", Sector: "Financials", BasePrice: 198.7},
	{Symbol: "JNJ", Name: "Johnson & Johnson", Sector: "Healthcare", BasePrice: 152.3},
	{Symbol: "V", Name: "Visa Inc.", Sector: "Financials", BasePrice: 278.9},
	{Symbol: "PG", Name: "Procter & Gamble", Sector: "Consumer Staples", BasePrice: 165.4},
	{Symbol: "XOM", Name: "ExxonMobil Corp.", Sector: "Energy", BasePrice: 112.8},
	{Symbol: "HD", Name: "Home Depot Inc.", Sector: "Consumer Discretionary", BasePrice: 375.2},
	{Symbol: "CVX", Name: "Chevron Corp.", Sector: "Energy", BasePrice: 158.9},
	{Symbol: "MRK", Name: "Merck & Co.", Sector: "Healthcare", BasePrice: 128.4},
	{Symbol: "ABBV", Name: "AbbVie Inc.", Sector: "Healthcare", BasePrice: 172.6},
	{Symbol: "KO", Name: "Coca-Cola Co.", Sector: "Consumer Staples", BasePrice: 61.8},
	{Symbol: "PEP", Name: "PepsiCo Inc.", Sector: "Consumer Staples", BasePrice: 172.3},
	{Symbol: "BAC", Name: "Bank of America", Sector: "Financials", BasePrice: 38.9},
	{Symbol: "TMO", Name: "Thermo Fisher", Sector: "Healthcare", BasePrice: 562.1},
}

// Lookup finds an instrument by symbol in the given basket.
func Lookup(basket []Instrument, symbol string) (Instrument, bool) {
	for _, in := range basket {
		if in.Symbol == symbol {
			return in, true
		}
	}
	return Instrument{}, false
}
