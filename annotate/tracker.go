package annotate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Annotation is the tracker's view of the latest request.
type Annotation struct {
	Token   uint64 `json:"token"`
	Symbol  string `json:"symbol"`
	Text    string `json:"text"`
	Loading bool   `json:"loading"`
}

type TrackerOption func(*Tracker)

// WithRequestTimeout bounds each annotator call. Zero means no bound.
func WithRequestTimeout(d time.Duration) TrackerOption {
	return func(t *Tracker) { t.timeout = d }
}

func WithTrackerLogger(l *slog.Logger) TrackerOption {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithOnUpdate is called whenever the current annotation changes.
func WithOnUpdate(fn func(Annotation)) TrackerOption {
	return func(t *Tracker) { t.onUpdate = fn }
}

// Tracker keeps only the most recent request alive. Each new request gets a
// larger token and cancels the one in flight; a reply is applied only when its
// token is still the latest.
type Tracker struct {
	ann      Annotator
	timeout  time.Duration
	logger   *slog.Logger
	onUpdate func(Annotation)

	mu     sync.Mutex
	token  uint64
	cancel context.CancelFunc
	cur    Annotation

	wg sync.WaitGroup
}

func NewTracker(ann Annotator, opts ...TrackerOption) *Tracker {
	if ann == nil {
		ann = Offline{}
	}
	t := &Tracker{ann: ann, logger: slog.Default()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Request supersedes any in-flight request and starts a new one. It returns
// the new token without waiting for the reply.
func (t *Tracker) Request(ctx context.Context, req Request) uint64 {
	var cctx context.Context
	var cancel context.CancelFunc
	if t.timeout > 0 {
		cctx, cancel = context.WithTimeout(ctx, t.timeout)
	} else {
		cctx, cancel = context.WithCancel(ctx)
	}

	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
	}
	t.token++
	token := t.token
	t.cancel = cancel
	t.cur = Annotation{Token: token, Symbol: req.Symbol, Loading: true}
	cur := t.cur
	t.mu.Unlock()

	t.notify(cur)

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				t.apply(token, req.Symbol, TextOffline, fmt.Errorf("annotator panic: %v", r))
			}
		}()

		text, err := t.ann.Annotate(cctx, req)
		t.apply(token, req.Symbol, resolve(text, err), err)
	}()
	return token
}

// Annotate requests commentary and waits for the reply. The returned
// annotation may belong to a newer request if one superseded this call.
func (t *Tracker) Annotate(ctx context.Context, req Request) Annotation {
	t.Request(ctx, req)
	t.Wait()
	return t.Current()
}

func (t *Tracker) apply(token uint64, symbol, text string, err error) {
	t.mu.Lock()
	if token != t.token {
		t.mu.Unlock()
		t.logger.Debug("discarding superseded annotation", "symbol", symbol, "token", token)
		return
	}
	t.cur.Text = text
	t.cur.Loading = false
	t.cancel = nil
	cur := t.cur
	t.mu.Unlock()

	if err != nil {
		t.logger.Warn("annotation failed", "symbol", symbol, "err", err)
	}
	t.notify(cur)
}

func (t *Tracker) notify(a Annotation) {
	if t.onUpdate != nil {
		t.onUpdate(a)
	}
}

// Current returns the latest annotation state.
func (t *Tracker) Current() Annotation {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cur
}

// Wait blocks until every started request has returned.
func (t *Tracker) Wait() { t.wg.Wait() }

// Close cancels the in-flight request and waits for it.
func (t *Tracker) Close() {
	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
	}
	t.mu.Unlock()
	t.wg.Wait()
}

// resolve maps an annotator outcome to display text.
func resolve(text string, err error) string {
	switch {
	case err == nil && strings.TrimSpace(text) != "":
		return text
	case err == nil, errors.Is(err, ErrAnnotationUnavailable):
		return TextUnavailable
	default:
		return TextOffline
	}
}
