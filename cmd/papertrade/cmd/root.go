package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/papertrade/logging"
)

var rootCmd = &cobra.Command{
	Use:   "papertrade",
	Short: "A paper trading simulator with technical signals",
	Long: `Papertrade simulates a market for a basket of large-cap equities and lets
you trade it with virtual cash.

It provides tools for:
  - Generating a synthetic market that ticks on a timer
  - Computing RSI, MACD and Bollinger Bands per instrument
  - Deriving BUY/SELL/HOLD signals from those indicators
  - Paper buying and selling against a virtual cash balance
  - Journaling fills and equity to CSV or SQLite
  - Optional AI commentary on a selected instrument`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
}

var (
	logLevel  string
	logFile   string
	logFormat string

	logger    = slog.Default()
	logCloser io.Closer
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug|info|warn|error")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to a rotated file instead of stderr")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text|json")
}

func setupLogging(cmd *cobra.Command, args []string) error {
	cfg := logging.Default()
	cfg.Level = logLevel
	cfg.Format = logFormat
	if logFile != "" {
		cfg.File = logFile
		cfg.MaxSize = 10
		cfg.MaxBackups = 3
	}

	l, closer, err := logging.New(cfg, os.Stderr)
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	logger, logCloser = l, closer
	slog.SetDefault(l)
	return nil
}
