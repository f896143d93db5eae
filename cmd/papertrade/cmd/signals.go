package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/papertrade/session"
)

var signalsCmd = &cobra.Command{
	Use:   "signals",
	Short: "Print the signal table after N ticks",
	Long: `Generate a market, advance it N ticks without trading and print the
indicators and signal for every instrument.

Example:
  papertrade signals --ticks 10 --seed 42`,
	Args: cobra.NoArgs,
	RunE: runSignals,
}

var (
	signalsTicks int
	signalsSeed  int64
	signalsTop   int
)

func init() {
	rootCmd.AddCommand(signalsCmd)

	signalsCmd.Flags().IntVar(&signalsTicks, "ticks", 0, "ticks to advance before printing")
	signalsCmd.Flags().Int64Var(&signalsSeed, "seed", 1, "random seed for the market")
	signalsCmd.Flags().IntVar(&signalsTop, "top", 5, "how many top BUY signals to list")
}

func runSignals(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	s, err := session.New(session.Options{Seed: signalsSeed, Logger: logger})
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer s.Close()

	for i := 0; i < signalsTicks; i++ {
		if _, err := s.Tick(); err != nil {
			return fmt.Errorf("tick %d: %w", i+1, err)
		}
	}

	snap := s.Snapshot()
	printSignals(out, snap)
	fmt.Fprintln(out)
	printTopBuys(out, snap, signalsTop)
	return nil
}
