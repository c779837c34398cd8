package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niveshq/backtest/ledger"
	"github.com/niveshq/backtest/market"
	"github.com/niveshq/backtest/report"
)

func ist(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, market.Exchange)
}

func sampleTrade(sym string, key, exit time.Time, entry, exitPx float64, qty int, dir market.Direction) ledger.ClosedTrade {
	return ledger.ClosedTrade{
		Key:         key,
		ExitTime:    exit,
		Symbol:      sym,
		EntryPrice:  entry,
		ExitPrice:   exitPx,
		Quantity:    qty,
		Direction:   dir,
		RealizedPnl: (exitPx - entry) * float64(qty) * float64(dir),
		ExitType:    "TargetHit",
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	t.Parallel()

	j, err := NewSQLite(filepath.Join(t.TempDir(), "run.db"))
	require.NoError(t, err)
	defer j.Close()

	tue := ist(2024, time.January, 9, 0, 0)
	t1 := sampleTrade("NIFTY25JAN2421500CE", tue.Add(10*time.Hour), tue.Add(14*time.Hour), 50, 40, 50, market.Short)
	t2 := sampleTrade("RELIANCE", tue.Add(11*time.Hour), tue.Add(12*time.Hour), 2500, 2520, 10, market.Long)

	// insert out of entry order; listing sorts by key
	require.NoError(t, j.RecordTrade(t2))
	require.NoError(t, j.RecordTrade(t1))

	got, err := j.ListTrades()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "NIFTY25JAN2421500CE", got[0].Symbol)
	assert.Equal(t, market.Short, got[0].Direction)
	assert.InDelta(t, 500.0, got[0].RealizedPnl, 1e-9)
	assert.True(t, got[0].Key.Equal(t1.Key))
	assert.Equal(t, "RELIANCE", got[1].Symbol)

	row := report.Row{
		Time:            tue.Add(10 * time.Hour),
		OpenTrades:      1,
		CapitalInvested: 100_000,
		CumulativePnl:   12.5,
		MtmPnl:          12.5,
		Peak:            12.5,
	}
	require.NoError(t, j.RecordRow(row))

	rows, err := j.ListRows()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].OpenTrades)
	assert.InDelta(t, 100_000.0, rows[0].CapitalInvested, 1e-9)
	assert.True(t, rows[0].Time.Equal(row.Time))
}

func TestSQLiteListTradesClosedBetween(t *testing.T) {
	t.Parallel()

	j, err := NewSQLite(filepath.Join(t.TempDir(), "run.db"))
	require.NoError(t, err)
	defer j.Close()

	tue := ist(2024, time.January, 9, 0, 0)
	wed := ist(2024, time.January, 10, 0, 0)
	require.NoError(t, j.RecordTrade(sampleTrade("A", tue.Add(10*time.Hour), tue.Add(14*time.Hour), 100, 110, 1, market.Long)))
	require.NoError(t, j.RecordTrade(sampleTrade("B", tue.Add(11*time.Hour), wed.Add(11*time.Hour), 100, 120, 1, market.Long)))
	require.NoError(t, j.RecordTrade(sampleTrade("C", wed.Add(10*time.Hour), wed.Add(14*time.Hour), 100, 90, 1, market.Long)))

	// Tuesday's session only
	got, err := j.ListTradesClosedBetween(tue, wed)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Symbol)

	// half-open interval: an exit exactly at end is excluded
	got, err = j.ListTradesClosedBetween(tue, tue.Add(14*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteRecordAll(t *testing.T) {
	t.Parallel()

	j, err := NewSQLite(filepath.Join(t.TempDir(), "run.db"))
	require.NoError(t, err)
	defer j.Close()

	tue := ist(2024, time.January, 9, 0, 0)
	trades := []ledger.ClosedTrade{
		sampleTrade("A", tue.Add(10*time.Hour), tue.Add(14*time.Hour), 100, 110, 1, market.Long),
		sampleTrade("B", tue.Add(11*time.Hour), tue.Add(15*time.Hour), 100, 95, 2, market.Long),
	}
	rows := []report.Row{
		{Time: tue.Add(10 * time.Hour), OpenTrades: 1, CumulativePnl: 0},
		{Time: tue.Add(14 * time.Hour), OpenTrades: 1, CumulativePnl: 10, MtmPnl: 10, Peak: 10},
	}

	require.NoError(t, j.RecordAll(trades, rows))

	gotTrades, err := j.ListTrades()
	require.NoError(t, err)
	assert.Len(t, gotTrades, 2)

	gotRows, err := j.ListRows()
	require.NoError(t, err)
	assert.Len(t, gotRows, 2)
}
