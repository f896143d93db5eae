package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/papertrade/journal"
	"github.com/rustyeddy/papertrade/ledger"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Walk through a buy and sell on fixed prices",
	Long: `Demonstrates the ledger with fixed prices.

Shows the basic workflow of:
  1. Opening a $100,000 paper portfolio
  2. Buying 10 AAPL at $189.50
  3. Marking the position at $195.00
  4. Selling all 10 shares and realizing $5.50 per share`,
	Args: cobra.NoArgs,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	log := journal.NewActivityLog(nil)
	l := ledger.New(100000, log)
	fmt.Fprintf(out, "Starting cash: $%.2f\n\n", l.Cash())

	fill, err := l.Buy("AAPL", 10, 189.50)
	if err != nil {
		return fmt.Errorf("buy: %w", err)
	}
	fmt.Fprintf(out, "Bought %d AAPL @ $%.2f, cost $%.2f\n", fill.Quantity, fill.Price, fill.Total)
	fmt.Fprintf(out, "  Cash: $%.2f\n", l.Cash())

	prices := map[string]float64{"AAPL": 195.00}
	v := l.Valuate(prices)
	pnl, _ := l.PositionPnL("AAPL", 195.00)
	fmt.Fprintf(out, "\nAAPL marked at $195.00\n")
	fmt.Fprintf(out, "  Positions: $%.2f  Total: $%.2f  Open P&L: %s\n", v.PositionsValue, v.Total, signed(pnl))

	fill, err = l.Sell("AAPL", 10, 195.00)
	if err != nil {
		return fmt.Errorf("sell: %w", err)
	}
	fmt.Fprintf(out, "\nSold %d AAPL @ $%.2f, realized %s/share\n", fill.Quantity, fill.Price, signed(fill.RealizedPerShare))
	fmt.Fprintf(out, "  Cash: $%.2f  P&L: %s\n", l.Cash(), signed(l.UnrealizedPnL(nil)))

	fmt.Fprintln(out, "\nActivity:")
	printActivity(out, log.Entries(), 0)
	return nil
}
