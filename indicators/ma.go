package indicators

import (
	"fmt"
	"math"
)

// MA calculates the Simple Moving Average of the last period prices.
func MA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(prices) < period {
		return 0, fmt.Errorf("not enough prices: need %d, got %d", period, len(prices))
	}
	return mean(prices[len(prices)-period:]), nil
}

// SimpleMA is a streaming Simple Moving Average over a sliding window.
type SimpleMA struct {
	period int
	window []float64
}

func NewMA(period int) *SimpleMA {
	return &SimpleMA{
		period: period,
		window: make([]float64, 0, period),
	}
}

func (m *SimpleMA) Name() string { return fmt.Sprintf("MA(%d)", m.period) }
func (m *SimpleMA) Warmup() int  { return m.period }
func (m *SimpleMA) Reset()       { m.window = m.window[:0] }
func (m *SimpleMA) Ready() bool  { return len(m.window) >= m.period }

func (m *SimpleMA) Update(price float64) {
	m.window = append(m.window, price)
	if len(m.window) > m.period {
		m.window = m.window[1:]
	}
}

func (m *SimpleMA) Value() float64 {
	if !m.Ready() {
		return 0
	}
	return mean(m.window)
}

// StdDev returns the population standard deviation of the current window.
func (m *SimpleMA) StdDev() float64 {
	if len(m.window) == 0 {
		return 0
	}
	return stddev(m.window, mean(m.window))
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stddev is the population standard deviation around mu.
func stddev(xs []float64, mu float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	v := 0.0
	for _, x := range xs {
		d := x - mu
		v += d * d
	}
	return math.Sqrt(v / float64(len(xs)))
}
