package journal

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/niveshq/backtest/ledger"
	"github.com/niveshq/backtest/market"
	"github.com/niveshq/backtest/report"
)

// CSV journals trades and report rows into two CSV files, flushed per
// record so a crashed run still leaves a usable log.
type CSV struct {
	trades *csv.Writer
	rows   *csv.Writer
	tf, rf *os.File
}

func NewCSV(tradesPath, reportPath string) (*CSV, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}
	rf, err := os.Create(reportPath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	tw := csv.NewWriter(tf)
	rw := csv.NewWriter(rf)

	writeHeaders := func() error {
		if err := tw.Write(tradeHeader); err != nil {
			return err
		}
		if err := rw.Write(rowHeader); err != nil {
			return err
		}
		tw.Flush()
		if err := tw.Error(); err != nil {
			return err
		}
		rw.Flush()
		return rw.Error()
	}
	if err := writeHeaders(); err != nil {
		tf.Close()
		rf.Close()
		return nil, err
	}

	return &CSV{trades: tw, rows: rw, tf: tf, rf: rf}, nil
}

func (j *CSV) RecordTrade(t ledger.ClosedTrade) error {
	err := j.trades.Write(tradeFields(t))
	if err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSV) RecordRow(r report.Row) error {
	err := j.rows.Write([]string{
		r.Time.Format(time.RFC3339),
		strconv.Itoa(r.OpenTrades),
		f(r.CapitalInvested),
		f(r.CumulativePnl),
		f(r.MtmPnl),
		f(r.Peak),
		f(r.Drawdown),
	})
	if err != nil {
		return err
	}
	j.rows.Flush()
	return j.rows.Error()
}

func (j *CSV) Close() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	j.rows.Flush()
	if err := j.rows.Error(); err != nil {
		return err
	}

	if err := j.tf.Close(); err != nil {
		return err
	}
	return j.rf.Close()
}

func tradeFields(t ledger.ClosedTrade) []string {
	return []string{
		t.Key.Format(time.RFC3339),
		t.ExitTime.Format(time.RFC3339),
		t.Symbol,
		f(t.EntryPrice),
		f(t.ExitPrice),
		strconv.Itoa(t.Quantity),
		strconv.Itoa(int(t.Direction)),
		f(t.RealizedPnl),
		t.ExitType,
	}
}

// SaveTradesCSV writes a closed-trade log to path in the canonical
// column layout.
func SaveTradesCSV(path string, trades []ledger.ClosedTrade) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(tradeHeader); err != nil {
		return err
	}
	for _, t := range trades {
		if err := w.Write(tradeFields(t)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// LoadTradesCSV reads a closed-trade log previously written by a CSV
// journal or exporter.
func LoadTradesCSV(path string) ([]ledger.ClosedTrade, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var out []ledger.ClosedTrade
	for i, rec := range records[1:] { // skip header
		if len(rec) != len(tradeHeader) {
			return nil, fmt.Errorf("%s row %d: want %d fields, got %d", path, i+2, len(tradeHeader), len(rec))
		}
		key, err := time.Parse(time.RFC3339, rec[0])
		if err != nil {
			return nil, fmt.Errorf("%s row %d key: %w", path, i+2, err)
		}
		exitTime, err := time.Parse(time.RFC3339, rec[1])
		if err != nil {
			return nil, fmt.Errorf("%s row %d exit_time: %w", path, i+2, err)
		}
		entry, err := strconv.ParseFloat(rec[3], 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d entry_price: %w", path, i+2, err)
		}
		exit, err := strconv.ParseFloat(rec[4], 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d exit_price: %w", path, i+2, err)
		}
		qty, err := strconv.Atoi(rec[5])
		if err != nil {
			return nil, fmt.Errorf("%s row %d quantity: %w", path, i+2, err)
		}
		dir, err := strconv.Atoi(rec[6])
		if err != nil {
			return nil, fmt.Errorf("%s row %d direction: %w", path, i+2, err)
		}
		pnl, err := strconv.ParseFloat(rec[7], 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d pnl: %w", path, i+2, err)
		}

		out = append(out, ledger.ClosedTrade{
			Key:         key,
			ExitTime:    exitTime,
			Symbol:      rec[2],
			EntryPrice:  entry,
			ExitPrice:   exit,
			Quantity:    qty,
			Direction:   market.Direction(dir),
			RealizedPnl: pnl,
			ExitType:    rec[8],
		})
	}
	return out, nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
