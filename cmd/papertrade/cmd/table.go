package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rustyeddy/papertrade/journal"
	"github.com/rustyeddy/papertrade/ledger"
	"github.com/rustyeddy/papertrade/session"
	"github.com/rustyeddy/papertrade/signals"
	"github.com/rustyeddy/papertrade/sim"
)

func printSignals(w io.Writer, snap *sim.Snapshot) {
	fmt.Fprintf(w, "Tick %d  %s  (%d BUY / %d SELL / %d HOLD)\n",
		snap.Tick, snap.Time.Format("15:04:05"),
		snap.Count(signals.Buy), snap.Count(signals.Sell), snap.Count(signals.Hold))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tPRICE\tCHG%\tRSI\tMACD\tHIST\tBB LOW\tBB UP\tSIGNAL\tSTR")
	for _, st := range snap.States {
		ind := st.Indicators
		fmt.Fprintf(tw, "%s\t%.2f\t%s\t%.1f\t%.2f\t%.2f\t%.2f\t%.2f\t%s\t%.0f\n",
			st.Symbol, st.Price, change(st.ChangePct), ind.RSI, ind.MACD.MACD, ind.MACD.Histogram,
			ind.Bollinger.Lower, ind.Bollinger.Upper, st.Signal.Type, st.Signal.Strength)
	}
	_ = tw.Flush()
}

func printTopBuys(w io.Writer, snap *sim.Snapshot, n int) {
	top := snap.TopSignals(signals.Buy, n)
	if len(top) == 0 {
		fmt.Fprintln(w, "No BUY signals.")
		return
	}
	fmt.Fprintln(w, "Top BUY signals:")
	for _, st := range top {
		fmt.Fprintf(w, "  %-6s %-22s $%.2f  strength %.0f\n", st.Symbol, st.Name, st.Price, st.Signal.Strength)
	}
}

func printPortfolio(w io.Writer, st session.State) {
	pf := st.Portfolio
	fmt.Fprintf(w, "Cash:        $%.2f\n", pf.Cash)
	fmt.Fprintf(w, "Positions:   $%.2f\n", pf.PositionsValue)
	fmt.Fprintf(w, "Total:       $%.2f\n", pf.Total)
	fmt.Fprintf(w, "P&L:         %s (%.2f%% return)\n", signed(pf.UnrealizedPnL), pf.ReturnPct)

	if len(pf.Positions) > 0 {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "\nSYMBOL\tSHARES\tAVG COST\tPRICE\tVALUE\tP&L")
		for _, p := range pf.Positions {
			fmt.Fprintf(tw, "%s\t%d\t%.2f\t%.2f\t%.2f\t%s\n",
				p.Symbol, p.Shares, p.AvgCost, p.Price, p.MarketValue, signed(p.PnL))
		}
		_ = tw.Flush()
	}
}

func printActivity(w io.Writer, entries []journal.Entry, n int) {
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	for _, e := range entries {
		fmt.Fprintf(w, "  %s [%-4s] %s\n", e.Time.Format("15:04:05"), e.Category, e.Message)
	}
}

func printFill(w io.Writer, f ledger.Fill) {
	fmt.Fprintf(w, "  %s %d %s @ $%.2f (cash $%.2f)\n", f.Side, f.Quantity, f.Symbol, f.Price, f.CashAfter)
}

func change(pct float64) string {
	if pct >= 0 {
		return fmt.Sprintf("+%.2f", pct)
	}
	return fmt.Sprintf("%.2f", pct)
}

func signed(x float64) string {
	if x >= 0 {
		return fmt.Sprintf("+$%.2f", x)
	}
	return fmt.Sprintf("-$%.2f", -x)
}
