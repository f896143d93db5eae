package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/papertrade/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the fill and equity journal",
	Long: `Query and display journal records from a SQLite database.

Subcommands:
  fills   - List fills, optionally for one symbol
  fill    - Show a single fill by ID
  equity  - List equity snapshots for a day

Examples:
  papertrade journal fills --symbol AAPL
  papertrade journal fill 01HZX...
  papertrade journal equity --day 2024-01-15`,
}

var journalFillsCmd = &cobra.Command{
	Use:   "fills",
	Short: "List fills",
	Args:  cobra.NoArgs,
	RunE:  runJournalFills,
}

var journalFillCmd = &cobra.Command{
	Use:   "fill <fill-id>",
	Short: "Show details of a fill",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalFill,
}

var journalEquityCmd = &cobra.Command{
	Use:   "equity",
	Short: "List equity snapshots for a day",
	Args:  cobra.NoArgs,
	RunE:  runJournalEquity,
}

var (
	journalDBPath string
	journalSymbol string
	journalDay    string
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalFillsCmd)
	journalCmd.AddCommand(journalFillCmd)
	journalCmd.AddCommand(journalEquityCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./papertrade.sqlite", "path to SQLite journal DB")
	journalFillsCmd.Flags().StringVar(&journalSymbol, "symbol", "", "only fills for this symbol")
	journalEquityCmd.Flags().StringVar(&journalDay, "day", "", "day as YYYY-MM-DD (default today)")
}

func runJournalFills(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	fills, err := j.ListFills(journalSymbol)
	if err != nil {
		return fmt.Errorf("query fills: %w", err)
	}

	fmt.Fprintln(out, journal.FormatFillsOrg(fills))

	sum := journal.SummarizeRealized(fills)
	fmt.Fprintf(out, "\n%d fills, %d sells, realized %s\n", len(fills), sum.Sells, signed(sum.Net()))
	return nil
}

func runJournalFill(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	rec, err := j.GetFill(args[0])
	if err != nil {
		return fmt.Errorf("get fill: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatFillOrg(rec))
	return nil
}

func runJournalEquity(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	loc := time.Local
	day := journalDay
	if day == "" {
		day = time.Now().In(loc).Format("2006-01-02")
	}
	start, end, err := dayBounds(loc, day)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	snaps, err := j.ListEquityBetween(start, end)
	if err != nil {
		return fmt.Errorf("query equity: %w", err)
	}

	for _, e := range snaps {
		fmt.Fprintf(out, "%s  tick %-5d cash $%.2f  positions $%.2f  total $%.2f  %s\n",
			e.Time.In(loc).Format("15:04:05"), e.Tick, e.Cash, e.PositionsValue, e.Total, signed(e.UnrealizedPnL))
	}
	fmt.Fprintf(out, "%d snapshots on %s\n", len(snaps), day)
	return nil
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.Add(24 * time.Hour)
	return start, end, nil
}
