// Package annotate asks an external language model for a short commentary on
// one instrument. Failures never escape the package as errors when going
// through a Tracker; they become placeholder text.
package annotate

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rustyeddy/papertrade/indicators"
	"github.com/rustyeddy/papertrade/signals"
	"github.com/rustyeddy/papertrade/sim"
)

// ErrAnnotationUnavailable means the annotator answered but gave nothing usable.
var ErrAnnotationUnavailable = errors.New("annotation unavailable")

const (
	TextUnavailable = "Analysis unavailable."
	TextOffline     = "Analysis engine offline. Check API connectivity."
)

// Request carries the facts the annotator sees about one instrument.
type Request struct {
	Symbol    string               `json:"symbol"`
	Name      string               `json:"name"`
	Price     float64              `json:"price"`
	RSI       float64              `json:"rsi"`
	MACD      indicators.MACDValue `json:"macd"`
	Bollinger indicators.Bands     `json:"bollinger"`
	Signal    signals.Signal       `json:"signal"`
	ChangePct float64              `json:"change_pct"`
}

func NewRequest(st sim.InstrumentState) Request {
	return Request{
		Symbol:    st.Symbol,
		Name:      st.Name,
		Price:     st.Price,
		RSI:       st.Indicators.RSI,
		MACD:      st.Indicators.MACD,
		Bollinger: st.Indicators.Bollinger,
		Signal:    st.Signal,
		ChangePct: st.ChangePct,
	}
}

// Annotator turns a Request into commentary.
type Annotator interface {
	Annotate(ctx context.Context, req Request) (string, error)
}

// AnnotatorFunc adapts a function to Annotator.
type AnnotatorFunc func(ctx context.Context, req Request) (string, error)

func (f AnnotatorFunc) Annotate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// ErrOffline is returned by Offline.
var ErrOffline = errors.New("annotator not configured")

// Offline is used when no API key is configured. Every call fails as a
// transport error would.
type Offline struct{}

func (Offline) Annotate(context.Context, Request) (string, error) { return "", ErrOffline }

// Prompt renders the analyst prompt for req.
func Prompt(req Request) string {
	return fmt.Sprintf(`You are a concise financial analyst. Analyze %s (%s) with these indicators:
- Current Price: $%s
- RSI(14): %s
- MACD: %s | Signal: %s | Histogram: %s
- Bollinger Bands: Upper $%s | Mid $%s | Lower $%s
- Signal: %s (strength: %s%%)
- Day Change: %s%%

Give a 2-sentence paper trading insight. Be specific about what the indicators suggest. Note this is simulated/educational.`,
		req.Symbol, req.Name,
		num(req.Price),
		num(req.RSI),
		num(req.MACD.MACD), num(req.MACD.Signal), num(req.MACD.Histogram),
		num(req.Bollinger.Upper), num(req.Bollinger.Middle), num(req.Bollinger.Lower),
		req.Signal.Type, num(req.Signal.Strength),
		num(req.ChangePct),
	)
}

// num prints the shortest decimal form, so 189.5 stays "189.5".
func num(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
