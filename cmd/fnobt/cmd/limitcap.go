package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/niveshq/backtest/journal"
	"github.com/niveshq/backtest/report"
)

var limitCmd = &cobra.Command{
	Use:   "limit-capital",
	Short: "Cap a trade log to a maximum invested capital",
	Long: `Limit-capital replays a closed-trade log and drops the
most-recently-entered open trade whenever invested capital exceeds the
cap, writing the filtered log to a new CSV.

Example:
  fnobt limit-capital --trades closePnl.csv --max 1000000 --out filtered.csv`,
	RunE: runLimitCapital,
}

var (
	lcTradesPath string
	lcMaxCapital float64
	lcOptions    bool
	lcOutPath    string
)

func init() {
	rootCmd.AddCommand(limitCmd)

	limitCmd.Flags().StringVarP(&lcTradesPath, "trades", "t", "", "path to closed-trade CSV (required)")
	limitCmd.Flags().Float64VarP(&lcMaxCapital, "max", "m", 0, "maximum invested capital (required)")
	limitCmd.Flags().BoolVar(&lcOptions, "options", true, "use the option spread-netting capital model")
	limitCmd.Flags().StringVarP(&lcOutPath, "out", "o", "filteredPnl.csv", "output CSV for the filtered log")
	limitCmd.MarkFlagRequired("trades")
	limitCmd.MarkFlagRequired("max")
}

func runLimitCapital(cmd *cobra.Command, args []string) error {
	trades, err := journal.LoadTradesCSV(lcTradesPath)
	if err != nil {
		return err
	}

	kept := report.LimitCapital(trades, lcMaxCapital, lcOptions)

	if err := journal.SaveTradesCSV(lcOutPath, kept); err != nil {
		return err
	}

	fmt.Printf("kept %d of %d trades under capital %.2f, wrote %s\n",
		len(kept), len(trades), lcMaxCapital, lcOutPath)
	return nil
}
