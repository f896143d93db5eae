package sim

import (
	"sort"
	"time"

	"github.com/rustyeddy/papertrade/indicators"
	"github.com/rustyeddy/papertrade/market"
	"github.com/rustyeddy/papertrade/signals"
)

// InstrumentState is everything the simulator knows about one instrument at
// a given tick.
type InstrumentState struct {
	market.Instrument
	Series     market.Series       `json:"series"`
	Indicators indicators.Snapshot `json:"indicators"`
	Signal     signals.Signal      `json:"signal"`
	Price      float64             `json:"price"`
	PrevPrice  float64             `json:"prev_price"`
	ChangePct  float64             `json:"change_pct"`
}

// Snapshot is a view of the whole market at one tick. Each snapshot owns its
// States, so writes to it never reach the engine or later snapshots.
type Snapshot struct {
	Tick   int64             `json:"tick"`
	Time   time.Time         `json:"time"`
	States []InstrumentState `json:"states"`

	index map[string]int
}

func newSnapshot(tick int64, ts time.Time, states []InstrumentState) *Snapshot {
	idx := make(map[string]int, len(states))
	for i, st := range states {
		idx[st.Symbol] = i
	}
	return &Snapshot{Tick: tick, Time: ts, States: states, index: idx}
}

// Get returns the state for symbol. The series is copied so the caller may
// keep or modify it.
func (s *Snapshot) Get(symbol string) (InstrumentState, bool) {
	i, ok := s.index[symbol]
	if !ok {
		return InstrumentState{}, false
	}
	st := s.States[i]
	st.Series = st.Series.Clone()
	return st, true
}

// Prices maps each symbol to its current price.
func (s *Snapshot) Prices() map[string]float64 {
	out := make(map[string]float64, len(s.States))
	for _, st := range s.States {
		out[st.Symbol] = st.Price
	}
	return out
}

// TopSignals returns up to n states whose signal is t, strongest first.
// Equal strengths keep basket order. n <= 0 returns all matches.
func (s *Snapshot) TopSignals(t signals.Type, n int) []InstrumentState {
	var out []InstrumentState
	for _, st := range s.States {
		if st.Signal.Type == t {
			out = append(out, st)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Signal.Strength > out[j].Signal.Strength
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Count returns how many instruments currently carry signal t.
func (s *Snapshot) Count(t signals.Type) int {
	n := 0
	for _, st := range s.States {
		if st.Signal.Type == t {
			n++
		}
	}
	return n
}
