package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/papertrade/session"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <symbol>",
	Short: "Ask the annotator for commentary on one instrument",
	Long: `Build a market, select one instrument and print the annotator's commentary.
The API key is read from the variable named by annotator.api_key_env; without
one the offline placeholder is printed.

Example:
  ANTHROPIC_API_KEY=... papertrade analyze NVDA`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var analyzeConfigPath string

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeConfigPath, "file", "f", "", "path to config file (YAML or JSON)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(analyzeConfigPath)
	if err != nil {
		return err
	}
	cfg.Journal.Type = "none"

	s, err := session.FromConfig(cfg, nil, logger)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer s.Close()

	symbol := strings.ToUpper(args[0])
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := s.Select(ctx, symbol); err != nil {
		return err
	}
	s.WaitAnnotation()

	st, _ := s.Snapshot().Get(symbol)
	fmt.Fprintf(out, "%s (%s) $%.2f  %s %.0f\n", st.Symbol, st.Name, st.Price, st.Signal.Type, st.Signal.Strength)
	fmt.Fprintf(out, "  RSI %.1f  MACD %.2f/%.2f  BB %.2f-%.2f\n\n",
		st.Indicators.RSI, st.Indicators.MACD.MACD, st.Indicators.MACD.Signal,
		st.Indicators.Bollinger.Lower, st.Indicators.Bollinger.Upper)
	fmt.Fprintln(out, s.Annotation().Text)
	return nil
}
