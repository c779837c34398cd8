package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/niveshq/backtest/ledger"
)

// FileSnapshotter implements ledger.Snapshotter by rewriting open/closed
// snapshot CSVs in a directory. An empty label yields a single
// accumulating pair for the run; a date label yields one pair per
// simulated day.
type FileSnapshotter struct {
	Dir string
}

func NewFileSnapshotter(dir string) (*FileSnapshotter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileSnapshotter{Dir: dir}, nil
}

func (s *FileSnapshotter) SnapshotOpen(label string, open []ledger.Position) error {
	file, err := os.Create(filepath.Join(s.Dir, snapshotName("openPnl", label)))
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"entry_time", "symbol", "entry_price", "current_price", "quantity", "direction", "pnl"}); err != nil {
		return err
	}
	for _, p := range open {
		if err := w.Write([]string{
			p.EntryTime.Format(time.RFC3339),
			p.Symbol,
			f(p.EntryPrice),
			f(p.CurrentPrice),
			strconv.Itoa(p.Quantity),
			strconv.Itoa(int(p.Direction)),
			f(p.UnrealizedPnl),
		}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (s *FileSnapshotter) SnapshotClosed(label string, closed []ledger.ClosedTrade) error {
	file, err := os.Create(filepath.Join(s.Dir, snapshotName("closePnl", label)))
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(tradeHeader); err != nil {
		return err
	}
	for _, t := range closed {
		if err := w.Write(tradeFields(t)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func snapshotName(kind, label string) string {
	if label == "" {
		return kind + ".csv"
	}
	return label + "_" + kind + ".csv"
}
