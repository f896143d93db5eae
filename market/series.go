package market

// DefaultWindow is the number of prices kept per instrument.
const DefaultWindow = 30

// Series is an ordered price history, oldest first.
type Series []float64

// Last returns the most recent price, or 0 for an empty series.
func (s Series) Last() float64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1]
}

// Prev returns the price before the most recent one. A single-point series
// returns its only point.
func (s Series) Prev() float64 {
	switch len(s) {
	case 0:
		return 0
	case 1:
		return s[0]
	}
	return s[len(s)-2]
}

// Clone returns a copy that shares no storage with s.
func (s Series) Clone() Series {
	out := make(Series, len(s))
	copy(out, s)
	return out
}
