package ledger

// SnapshotPolicy selects how durable open/closed snapshots are keyed.
// The intraday and overnight bookkeeping variants differ only here: one
// snapshot file per simulated day versus a single accumulating pair.
type SnapshotPolicy int

const (
	// SnapshotNone disables snapshots.
	SnapshotNone SnapshotPolicy = iota
	// SnapshotAccumulating rewrites one open/closed snapshot pair for
	// the whole run after every entry and exit.
	SnapshotAccumulating
	// SnapshotPerDay keys snapshots by the simulated calendar day, one
	// pair per day.
	SnapshotPerDay
)

// Snapshotter persists point-in-time copies of the ledger tables. The
// journal package provides a CSV file implementation.
type Snapshotter interface {
	SnapshotOpen(label string, open []Position) error
	SnapshotClosed(label string, closed []ClosedTrade) error
}

func (l *Ledger) snapshot() {
	if l.policy == SnapshotNone || l.snap == nil {
		return
	}

	label := ""
	if l.policy == SnapshotPerDay {
		label = l.now.Format("2006-01-02")
	}

	if err := l.snap.SnapshotOpen(label, l.OpenPositions()); err != nil {
		l.log.Warn("open snapshot failed", "err", err)
	}
	if err := l.snap.SnapshotClosed(label, l.ClosedTrades()); err != nil {
		l.log.Warn("closed snapshot failed", "err", err)
	}
}
