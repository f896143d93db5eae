package indicators

import "fmt"

// EMA is a streaming Exponential Moving Average. The first price seeds the
// average; each later price blends in with k = 2/(period+1).
type EMA struct {
	n     int
	alpha float64

	seen  int
	value float64
	ready bool

	name string
}

func NewEMA(period int) *EMA {
	if period <= 0 {
		panic("EMA period must be > 0")
	}
	return &EMA{
		n:     period,
		alpha: 2.0 / float64(period+1),
		name:  fmt.Sprintf("EMA(%d)", period),
	}
}

func (e *EMA) Name() string   { return e.name }
func (e *EMA) Warmup() int    { return e.n }
func (e *EMA) Ready() bool    { return e.ready }
func (e *EMA) Value() float64 { return e.value }

func (e *EMA) Reset() {
	e.seen = 0
	e.value = 0
	e.ready = false
}

func (e *EMA) Update(x float64) {
	e.seen++
	if e.seen == 1 {
		e.value = x
	} else {
		e.value = x*e.alpha + e.value*(1.0-e.alpha)
	}

	if e.seen >= e.n {
		e.ready = true
	}
}

// EMAOf runs an EMA across the whole slice and returns the final value.
// An empty slice yields 0.
func EMAOf(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}
	e := NewEMA(period)
	for _, p := range prices {
		e.Update(p)
	}
	return e.Value()
}
