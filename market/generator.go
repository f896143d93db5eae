package market

import (
	"math"
	"math/rand"
	"sync"
)

// Rand is the source of uniform [0,1) draws used by the generator.
type Rand interface {
	Float64() float64
}

// Walk parameters for the bounded random walk.
const (
	seedLow   = 0.85
	seedSpan  = 0.10
	initBias  = 0.48
	initScale = 0.02
	initFloor = 0.5 // fraction of the running price

	tickBias  = 0.49
	tickScale = 0.008
	tickFloor = 1.0 // absolute price floor
)

// MinPrice is the smallest price a series may hold: one cent.
const MinPrice = 0.01

// Generator produces synthetic price histories. It holds no state besides its
// random source; Tick is a pure function of the series it is given.
type Generator struct {
	mu  sync.Mutex
	rnd Rand
}

// NewGenerator seeds a math/rand source. A zero seed is used as given, so two
// generators with the same seed produce the same market.
func NewGenerator(seed int64) *Generator {
	return NewGeneratorWithRand(rand.New(rand.NewSource(seed)))
}

func NewGeneratorWithRand(r Rand) *Generator {
	return &Generator{rnd: r}
}

func (g *Generator) float() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.Float64()
}

// Initialize builds a history of length points starting somewhere in
// [0.85, 0.95] x basePrice. Each step moves about 2% with a slight downward
// bias and never drops below half the running price or MinPrice.
func (g *Generator) Initialize(basePrice float64, length int) Series {
	if length <= 0 {
		length = DefaultWindow
	}

	price := basePrice * (seedLow + g.float()*seedSpan)
	out := make(Series, 0, length)
	for i := 0; i < length; i++ {
		change := (g.float() - initBias) * price * initScale
		price = math.Max(price+change, price*initFloor)
		out = append(out, math.Max(Round2(price), MinPrice))
	}
	return out
}

// Tick drops the oldest price and appends one new step of about 0.8%,
// floored at 1.0. The input series is not modified.
func (g *Generator) Tick(s Series) Series {
	if len(s) == 0 {
		return Series{}
	}

	last := s.Last()
	change := (g.float() - tickBias) * last * tickScale
	next := Round2(math.Max(last+change, tickFloor))

	out := make(Series, 0, len(s))
	out = append(out, s[1:]...)
	return append(out, next)
}
