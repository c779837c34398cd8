package report

import (
	"sort"
	"time"

	"github.com/niveshq/backtest/ledger"
	"github.com/niveshq/backtest/margin"
)

// LimitCapital filters a closed-trade log so that invested capital never
// exceeds maxCapital. Capital is evaluated at every instant the open set
// changes — each entry and each exit — which covers every date boundary
// in between. Exits matter under spread netting: a pairing long's exit
// turns a cheap spread into a full-margin naked short without any entry
// to flag it. Whenever an instant breaks the cap, the
// most-recently-entered trade still open at that instant is dropped from
// the log and the scan restarts, until every instant fits. The result is
// a new log; the input is not modified.
func LimitCapital(trades []ledger.ClosedTrade, maxCapital float64, options bool) []ledger.ClosedTrade {
	if maxCapital <= 0 || len(trades) == 0 {
		return append([]ledger.ClosedTrade(nil), trades...)
	}

	kept := make([]ledger.ClosedTrade, len(trades))
	copy(kept, trades)
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Key.Before(kept[j].Key) })

	for {
		at, over := firstBreach(kept, maxCapital, options)
		if !over {
			return kept
		}
		drop := mostRecentOpenAt(kept, at)
		if drop < 0 {
			return kept
		}
		kept = append(kept[:drop], kept[drop+1:]...)
	}
}

// firstBreach scans the open-set change instants of kept in ascending
// order and returns the first whose capital exceeds maxCapital.
func firstBreach(kept []ledger.ClosedTrade, maxCapital float64, options bool) (time.Time, bool) {
	instants := make([]time.Time, 0, 2*len(kept))
	for _, tr := range kept {
		instants = append(instants, tr.Key, tr.ExitTime)
	}
	sort.Slice(instants, func(i, j int) bool { return instants[i].Before(instants[j]) })

	for _, at := range instants {
		if capitalAt(kept, at, options) > maxCapital {
			return at, true
		}
	}
	return time.Time{}, false
}

// capitalAt computes the invested capital of the trades open at an
// instant, in entry order.
func capitalAt(kept []ledger.ClosedTrade, at time.Time, options bool) float64 {
	var legs []margin.Leg
	for _, tr := range kept {
		if tr.Key.After(at) {
			break
		}
		if tr.ExitTime.After(at) {
			legs = append(legs, margin.Leg{
				EntryPrice: tr.EntryPrice,
				Quantity:   tr.Quantity,
				Direction:  tr.Direction,
			})
		}
	}
	return margin.Capital(legs, options)
}

// mostRecentOpenAt returns the index of the latest-entered trade still
// open at the instant, or -1.
func mostRecentOpenAt(kept []ledger.ClosedTrade, at time.Time) int {
	for i := len(kept) - 1; i >= 0; i-- {
		tr := kept[i]
		if !tr.Key.After(at) && tr.ExitTime.After(at) {
			return i
		}
	}
	return -1
}
