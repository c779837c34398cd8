package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/niveshq/backtest/internal/runlog"
	"github.com/niveshq/backtest/journal"
	"github.com/niveshq/backtest/ledger"
	"github.com/niveshq/backtest/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build the MTM report from a closed-trade log",
	Long: `Report reads a finished run's closed-trade log (CSV or SQLite),
aggregates it into time buckets inside exchange trading hours, and writes
the report table, a combined JSON export and a text summary into a fresh
run directory.

Example:
  fnobt report --trades closePnl.csv --timeframe 5m --options --out ./BacktestResults`,
	RunE: runReport,
}

var (
	repTradesPath string
	repDBPath     string
	repTimeframe  time.Duration
	repOptions    bool
	repOutDir     string
	repMaxCapital float64
)

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&repTradesPath, "trades", "t", "", "path to closed-trade CSV")
	reportCmd.Flags().StringVarP(&repDBPath, "db", "d", "", "path to SQLite journal DB (alternative to --trades)")
	reportCmd.Flags().DurationVar(&repTimeframe, "timeframe", 24*time.Hour, "report bucket granularity")
	reportCmd.Flags().BoolVar(&repOptions, "options", true, "use the option spread-netting capital model")
	reportCmd.Flags().StringVarP(&repOutDir, "out", "o", "./BacktestResults", "results base directory")
	reportCmd.Flags().Float64Var(&repMaxCapital, "max-capital", 0, "drop trades until capital fits this cap (0 disables)")
}

func runReport(cmd *cobra.Command, args []string) error {
	trades, err := loadTrades()
	if err != nil {
		return err
	}
	if len(trades) == 0 {
		return fmt.Errorf("no closed trades to report on")
	}

	if repMaxCapital > 0 {
		before := len(trades)
		trades = report.LimitCapital(trades, repMaxCapital, repOptions)
		fmt.Printf("capital limiter kept %d of %d trades\n", len(trades), before)
	}

	exp := report.NewExporter(repOutDir)
	log, closer, err := runlog.New(exp.Dir(), "report")
	if err != nil {
		return err
	}
	defer closer.Close()

	rows, err := report.Build(trades, report.Options{
		TimeFrame:     repTimeframe,
		OptionsMarket: repOptions,
		Logger:        log,
	})
	if err != nil {
		return err
	}

	if err := exp.WriteAll(rows, trades); err != nil {
		return err
	}

	sum := report.Summarize(rows)
	fmt.Printf("wrote %d buckets to %s\n", len(rows), exp.Dir())
	fmt.Printf("final cumulative pnl: %.2f  max drawdown: %.2f\n",
		sum.FinalCumulativePnl, sum.MaxDrawdown)
	return nil
}

func loadTrades() ([]ledger.ClosedTrade, error) {
	switch {
	case repTradesPath != "":
		return journal.LoadTradesCSV(repTradesPath)
	case repDBPath != "":
		j, err := journal.NewSQLite(repDBPath)
		if err != nil {
			return nil, err
		}
		defer j.Close()
		return j.ListTrades()
	}
	return nil, fmt.Errorf("one of --trades or --db is required")
}
