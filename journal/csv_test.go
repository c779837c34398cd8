package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niveshq/backtest/ledger"
	"github.com/niveshq/backtest/market"
	"github.com/niveshq/backtest/report"
)

func TestCSVJournal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tradesPath := filepath.Join(dir, "closePnl.csv")
	reportPath := filepath.Join(dir, "mtmReport.csv")

	j, err := NewCSV(tradesPath, reportPath)
	require.NoError(t, err)

	tue := ist(2024, time.January, 9, 0, 0)
	tr := sampleTrade("NIFTY25JAN2421500CE", tue.Add(10*time.Hour), tue.Add(14*time.Hour), 50, 40, 50, market.Short)
	require.NoError(t, j.RecordTrade(tr))
	require.NoError(t, j.RecordRow(report.Row{Time: tue.Add(10 * time.Hour), OpenTrades: 1, CapitalInvested: 100_000}))
	require.NoError(t, j.Close())

	tf, err := os.Open(tradesPath)
	require.NoError(t, err)
	defer tf.Close()
	recs, err := csv.NewReader(tf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, tradeHeader, recs[0])
	assert.Equal(t, "NIFTY25JAN2421500CE", recs[1][2])
	assert.Equal(t, "-1", recs[1][6])

	rf, err := os.Open(reportPath)
	require.NoError(t, err)
	defer rf.Close()
	recs, err = csv.NewReader(rf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, rowHeader, recs[0])
	assert.Equal(t, "1", recs[1][1])
}

func TestNewCSVBadPaths(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := NewCSV(filepath.Join(dir, "missing", "closePnl.csv"), filepath.Join(dir, "mtmReport.csv"))
	assert.Error(t, err)

	_, err = NewCSV(filepath.Join(dir, "closePnl.csv"), filepath.Join(dir, "missing", "mtmReport.csv"))
	assert.Error(t, err)

	// the successfully created trades file must not be left open: a
	// fresh journal on the same path still works
	j, err := NewCSV(filepath.Join(dir, "closePnl.csv"), filepath.Join(dir, "mtmReport.csv"))
	require.NoError(t, err)
	require.NoError(t, j.Close())
}

func TestSaveLoadTradesCSV(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trades.csv")
	tue := ist(2024, time.January, 9, 0, 0)
	want := []ledger.ClosedTrade{
		sampleTrade("A", tue.Add(10*time.Hour), tue.Add(14*time.Hour), 100.5, 110.25, 10, market.Long),
		sampleTrade("B", tue.Add(11*time.Hour), tue.Add(15*time.Hour), 80, 60, 50, market.Short),
	}

	require.NoError(t, SaveTradesCSV(path, want))

	got, err := LoadTradesCSV(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for i := range want {
		assert.True(t, got[i].Key.Equal(want[i].Key))
		assert.True(t, got[i].ExitTime.Equal(want[i].ExitTime))
		assert.Equal(t, want[i].Symbol, got[i].Symbol)
		assert.InDelta(t, want[i].EntryPrice, got[i].EntryPrice, 1e-6)
		assert.InDelta(t, want[i].ExitPrice, got[i].ExitPrice, 1e-6)
		assert.Equal(t, want[i].Quantity, got[i].Quantity)
		assert.Equal(t, want[i].Direction, got[i].Direction)
		assert.InDelta(t, want[i].RealizedPnl, got[i].RealizedPnl, 1e-6)
		assert.Equal(t, want[i].ExitType, got[i].ExitType)
	}
}

func TestLoadTradesCSVBadRow(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trades.csv")
	content := "key,exit_time,symbol,entry_price,exit_price,quantity,direction,pnl,exit_type\n" +
		"not-a-time,2024-01-09T14:00:00+05:30,A,100,110,10,1,100,TimeUp\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := LoadTradesCSV(path)
	assert.ErrorContains(t, err, "row 2")
}

func TestLoadTradesCSVMissing(t *testing.T) {
	t.Parallel()

	_, err := LoadTradesCSV(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}
