package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rustyeddy/papertrade/config"
	"github.com/rustyeddy/papertrade/metrics"
	"github.com/rustyeddy/papertrade/session"
	"github.com/rustyeddy/papertrade/sim"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a live paper trading session",
	Long: `Run a paper trading session on a timer. The market ticks every interval and
the signal table is printed after each tick.

Example:
  papertrade run -f papertrade.yaml --ticks 20 --interval 1s --auto
  papertrade run --buy AAPL:10 --buy KO:50 --metrics-addr :9090`,
	RunE: runRun,
}

var (
	runConfigPath  string
	runTicks       int64
	runInterval    time.Duration
	runAuto        bool
	runOrders      []string
	runMetricsAddr string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "file", "f", "", "path to config file (YAML or JSON)")
	runCmd.Flags().Int64Var(&runTicks, "ticks", 0, "stop after N ticks (0 runs until interrupted)")
	runCmd.Flags().DurationVar(&runInterval, "interval", 0, "tick interval (overrides session.tick_interval)")
	runCmd.Flags().BoolVar(&runAuto, "auto", false, "trade the signals automatically after each tick")
	runCmd.Flags().StringArrayVar(&runOrders, "buy", nil, "initial order SYMBOL:QTY (repeatable)")
	runCmd.Flags().StringVar(&runMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// parseOrder splits "AAPL:10".
func parseOrder(s string) (string, int, error) {
	sym, qtyStr, ok := strings.Cut(s, ":")
	if !ok || sym == "" {
		return "", 0, fmt.Errorf("order %q: want SYMBOL:QTY", s)
	}
	qty, err := strconv.Atoi(qtyStr)
	if err != nil || qty <= 0 {
		return "", 0, fmt.Errorf("order %q: quantity must be a positive integer", s)
	}
	return strings.ToUpper(sym), qty, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(runConfigPath)
	if err != nil {
		return err
	}

	interval := runInterval
	if interval <= 0 {
		if interval, err = cfg.Session.Interval(); err != nil {
			return fmt.Errorf("tick interval: %w", err)
		}
	}

	addr := runMetricsAddr
	if addr == "" {
		addr = cfg.Metrics.Addr
	}
	var m *metrics.Metrics
	if addr != "" {
		m = metrics.New()
	}

	s, err := session.FromConfig(cfg, m, logger)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer s.Close()

	for _, o := range runOrders {
		sym, qty, err := parseOrder(o)
		if err != nil {
			return err
		}
		if _, err := s.Buy(sym, qty); err != nil {
			fmt.Fprintf(out, "order %s rejected: %v\n", o, err)
		}
	}

	fmt.Fprintf(out, "Paper trading %d instruments every %s", len(s.Engine().Basket()), interval)
	if runTicks > 0 {
		fmt.Fprintf(out, " for %d ticks", runTicks)
	}
	fmt.Fprintln(out)
	printActivity(out, s.Activity().Entries(), 0)
	fmt.Fprintln(out)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	qty := cfg.Session.OrderQty
	sched := sim.NewScheduler(interval, s.TickJob,
		sim.WithLimit(runTicks),
		sim.WithLogger(logger),
		sim.WithOnTick(func(ctx context.Context, n int64) {
			if runAuto {
				for _, f := range s.AutoTrade(qty) {
					printFill(out, f)
				}
			}
			printSignals(out, s.Snapshot())
			fmt.Fprintln(out)
		}),
	)

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		if err := sched.Start(gctx); err != nil {
			return err
		}
		select {
		case <-sched.Done():
		case <-gctx.Done():
		}
		sched.Stop()
		cancel()
		return nil
	})
	if m != nil {
		g.Go(func() error { return m.Serve(gctx, addr) })
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Fprintln(out, "Final portfolio:")
	st := s.State()
	printPortfolio(out, st)
	fmt.Fprintln(out, "\nRecent activity:")
	printActivity(out, st.Log, 10)

	switch cfg.Journal.Type {
	case "csv":
		fmt.Fprintf(out, "\nResults saved to:\n  - %s\n  - %s\n", cfg.Journal.FillsFile, cfg.Journal.EquityFile)
	case "sqlite":
		fmt.Fprintf(out, "\nResults saved to: %s\n", cfg.Journal.DBPath)
	}
	return nil
}
