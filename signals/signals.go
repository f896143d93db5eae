// Package signals fuses indicator readings into a BUY/SELL/HOLD call.
package signals

import (
	"math"

	"github.com/rustyeddy/papertrade/indicators"
)

// Type is the direction of a signal.
type Type string

const (
	Buy  Type = "BUY"
	Sell Type = "SELL"
	Hold Type = "HOLD"
)

// Signal is derived from the current indicators and price series; it is
// never stored apart from them.
type Signal struct {
	Type     Type    `json:"type"`
	Strength float64 `json:"strength"`
	Scores   Scores  `json:"scores"`
}

// Scores are the bull and bear accumulators behind a signal.
type Scores struct {
	Bull int `json:"bull"`
	Bear int `json:"bear"`
}

const (
	// margin a side must lead by before the call leaves HOLD
	decisionMargin = 2

	baseStrength  = 50
	pointStrength = 8
	maxStrength   = 100

	// trendLookback counts the current point: prices[n-5] is four ticks back.
	trendLookback = 5
)

// Score applies the five scoring rules to a series and its indicators.
func Score(prices []float64, snap indicators.Snapshot) Scores {
	var s Scores

	switch rsi := snap.RSI; {
	case rsi < 30:
		s.Bull += 2
	case rsi < 45:
		s.Bull++
	case rsi > 70:
		s.Bear += 2
	case rsi > 55:
		s.Bear++
	}

	if snap.MACD.Histogram > 0 {
		s.Bull++
	} else {
		s.Bear++
	}

	if snap.MACD.MACD > snap.MACD.Signal {
		s.Bull++
	} else {
		s.Bear++
	}

	n := len(prices)
	if n == 0 {
		// no price to place against the bands or trend
		s.Bear++
		return s
	}
	price := prices[n-1]

	if price < snap.Bollinger.Lower {
		s.Bull += 2
	} else if price > snap.Bollinger.Upper {
		s.Bear += 2
	}

	// Without a reference point the trend cannot be called up.
	if n >= trendLookback && price > prices[n-trendLookback] {
		s.Bull++
	} else {
		s.Bear++
	}

	return s
}

// Decide turns scores into a signal. One side must lead by more than the
// margin; close scores stay HOLD so the call does not flicker tick to tick.
func Decide(s Scores) Signal {
	switch {
	case s.Bull > s.Bear+decisionMargin:
		return Signal{Type: Buy, Strength: strength(s.Bull), Scores: s}
	case s.Bear > s.Bull+decisionMargin:
		return Signal{Type: Sell, Strength: strength(s.Bear), Scores: s}
	default:
		return Signal{Type: Hold, Strength: baseStrength, Scores: s}
	}
}

// Classify scores and decides in one step.
func Classify(prices []float64, snap indicators.Snapshot) Signal {
	return Decide(Score(prices, snap))
}

func strength(points int) float64 {
	return math.Min(maxStrength, float64(baseStrength+points*pointStrength))
}
