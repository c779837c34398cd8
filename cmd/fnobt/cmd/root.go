package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fnobt",
	Short: "Backtest accounting and MTM report toolkit for Indian equity and F&O markets",
	Long: `fnobt reconstructs position ledgers, capital requirements and
mark-to-market reports from completed backtest trade logs.

It provides tools for:
  - Building time-windowed MTM reports from a closed-trade log
  - Spread-aware option margin / capital computation
  - Drawdown and capital-utilization summaries
  - Capping a trade log to a maximum invested capital`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
