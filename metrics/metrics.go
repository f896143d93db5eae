// Package metrics exposes session counters and gauges to Prometheus.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "papertrade"

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	Orders        *prometheus.CounterVec // side, result
	Ticks         prometheus.Counter
	Cash          prometheus.Gauge
	Equity        prometheus.Gauge
	UnrealizedPnL prometheus.Gauge
	Signals       *prometheus.GaugeVec   // type
	Annotations   *prometheus.CounterVec // result
	BreakerState  *prometheus.GaugeVec   // name
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: reg}

	m.Orders = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_total",
		Help:      "Paper orders by side and result",
	}, []string{"side", "result"})

	m.Ticks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "market_ticks_total",
		Help:      "Market ticks published",
	})

	m.Cash = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "portfolio_cash_dollars",
		Help:      "Uninvested cash",
	})

	m.Equity = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "portfolio_equity_dollars",
		Help:      "Cash plus marked positions",
	})

	m.UnrealizedPnL = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "portfolio_unrealized_pnl_dollars",
		Help:      "Equity less starting cash",
	})

	m.Signals = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "signals",
		Help:      "Instruments currently carrying each signal",
	}, []string{"type"})

	m.Annotations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "annotations_total",
		Help:      "Completed annotation requests by result",
	}, []string{"result"})

	m.BreakerState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "circuit_breaker_state",
		Help:      "Circuit breaker state (0: closed, 1: half-open, 2: open)",
	}, []string{"name"})

	reg.MustRegister(m.Orders, m.Ticks, m.Cash, m.Equity, m.UnrealizedPnL, m.Signals, m.Annotations, m.BreakerState)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("metrics server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
