// Package margin computes the capital required to hold a set of
// concurrently open positions. For option books a short leg paired with
// a long leg approximates a defined-risk spread and is charged far less
// than a naked short.
package margin

import (
	"github.com/niveshq/backtest/ledger"
	"github.com/niveshq/backtest/market"
)

// Broker margin per paired spread and per naked short option position,
// in account currency.
const (
	SpreadMargin     = 30_000
	NakedShortMargin = 100_000
)

// Leg is the slice of an open position the capital model reads.
type Leg struct {
	EntryPrice float64
	Quantity   int
	Direction  market.Direction
}

// Legs projects open ledger positions onto capital-model legs,
// preserving entry order.
func Legs(open []ledger.Position) []Leg {
	out := make([]Leg, len(open))
	for i, p := range open {
		out[i] = Leg{EntryPrice: p.EntryPrice, Quantity: p.Quantity, Direction: p.Direction}
	}
	return out
}

// Capital returns the total capital requirement for the open legs.
//
// Options mode walks the legs in entry order. A short pairs against the
// oldest queued unmatched long, otherwise it counts as a naked short; a
// long pairs against an outstanding naked short, otherwise it queues
// with its entry notional. Capital is then
//
//	spreads×SpreadMargin + nakedShorts×NakedShortMargin + Σ unmatched long notional.
//
// Pairing is one row per leg regardless of Quantity: a quantity-5
// position still counts as a single spread leg. That matches broker
// behavior only approximately and is kept deliberately.
//
// Equity mode is plain Σ entryPrice×quantity over all legs.
func Capital(legs []Leg, options bool) float64 {
	if !options {
		var total float64
		for _, l := range legs {
			total += l.EntryPrice * float64(l.Quantity)
		}
		return total
	}

	var (
		spreads    int
		nakedShort int
		longQueue  []float64 // entry notional of unmatched longs, FIFO
	)

	for _, l := range legs {
		switch l.Direction {
		case market.Short:
			if len(longQueue) > 0 {
				longQueue = longQueue[1:]
				spreads++
			} else {
				nakedShort++
			}
		case market.Long:
			if nakedShort > 0 {
				nakedShort--
				spreads++
			} else {
				longQueue = append(longQueue, l.EntryPrice*float64(l.Quantity))
			}
		}
	}

	capital := float64(spreads)*SpreadMargin + float64(nakedShort)*NakedShortMargin
	for _, notional := range longQueue {
		capital += notional
	}
	return capital
}
