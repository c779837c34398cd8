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
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return recs
}

func TestSnapshotName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "openPnl.csv", snapshotName("openPnl", ""))
	assert.Equal(t, "2024-01-09_closePnl.csv", snapshotName("closePnl", "2024-01-09"))
}

// Accumulating snapshots rewrite one open/closed pair that tracks the
// ledger through the run.
func TestFileSnapshotterAccumulating(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	snap, err := NewFileSnapshotter(dir)
	require.NoError(t, err)

	l := ledger.New()
	l.SetSnapshots(ledger.SnapshotAccumulating, snap)

	tue := ist(2024, time.January, 9, 0, 0)
	l.Advance(tue.Add(10 * time.Hour))
	id, err := l.Enter(50, "NIFTY25JAN2421500CE", 50, market.Short, nil)
	require.NoError(t, err)

	recs := readCSV(t, filepath.Join(dir, "openPnl.csv"))
	require.Len(t, recs, 2)
	assert.Equal(t, "NIFTY25JAN2421500CE", recs[1][1])

	closed := readCSV(t, filepath.Join(dir, "closePnl.csv"))
	assert.Len(t, closed, 1) // header only, nothing realized yet

	l.Advance(tue.Add(14 * time.Hour))
	_, err = l.ExitAt(id, "TargetHit", 40)
	require.NoError(t, err)

	recs = readCSV(t, filepath.Join(dir, "openPnl.csv"))
	assert.Len(t, recs, 1)
	closed = readCSV(t, filepath.Join(dir, "closePnl.csv"))
	require.Len(t, closed, 2)
	assert.Equal(t, "TargetHit", closed[1][8])
}

// Per-day snapshots key the files by the simulated calendar day.
func TestFileSnapshotterPerDay(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	snap, err := NewFileSnapshotter(dir)
	require.NoError(t, err)

	l := ledger.New()
	l.SetSnapshots(ledger.SnapshotPerDay, snap)

	tue := ist(2024, time.January, 9, 0, 0)
	wed := ist(2024, time.January, 10, 0, 0)

	l.Advance(tue.Add(10 * time.Hour))
	id, err := l.Enter(100, "RELIANCE", 10, market.Long, nil)
	require.NoError(t, err)

	l.Advance(wed.Add(11 * time.Hour))
	_, err = l.ExitAt(id, "TimeUp", 110)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "2024-01-09_openPnl.csv"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "2024-01-10_closePnl.csv"))
	assert.NoError(t, err)

	closed := readCSV(t, filepath.Join(dir, "2024-01-10_closePnl.csv"))
	require.Len(t, closed, 2)
	assert.Equal(t, "RELIANCE", closed[1][2])
}

// A failing snapshotter never breaks trading operations.
func TestSnapshotFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	l := ledger.New()
	l.SetSnapshots(ledger.SnapshotAccumulating, &FileSnapshotter{Dir: "/nonexistent/path"})

	l.Advance(ist(2024, time.January, 9, 10, 0))
	id, err := l.Enter(100, "RELIANCE", 10, market.Long, nil)
	require.NoError(t, err)
	_, err = l.Exit(id, "TimeUp")
	assert.NoError(t, err)
}
