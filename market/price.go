package market

import "math"

// Round2 rounds to currency precision. Every price the simulator stores goes
// through here so displayed and computed values stay identical.
func Round2(x float64) float64 {
	return RoundTo(x, 2)
}

// RoundTo rounds x half away from zero to the given number of decimals.
func RoundTo(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
