// Package ledger keeps the in-memory accounting state of one backtest
// run: the table of open positions and the immutable log of closed
// trades. A single strategy loop drives it; there is no locking because
// a run never shares a ledger.
package ledger

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/niveshq/backtest/internal/id"
	"github.com/niveshq/backtest/internal/runlog"
	"github.com/niveshq/backtest/market"
)

var (
	// ErrNotFound is returned when an exit references an unknown or
	// already-closed position, a programming error in the strategy.
	ErrNotFound = errors.New("ledger: position not found")

	// ErrInvalidArgument is returned on caller contract violations such
	// as a non-positive quantity.
	ErrInvalidArgument = errors.New("ledger: invalid argument")
)

// Position is one still-live trade.
type Position struct {
	ID            string
	EntryTime     time.Time
	Symbol        string
	EntryPrice    float64
	CurrentPrice  float64
	Quantity      int
	Direction     market.Direction
	UnrealizedPnl float64

	// Extra carries strategy-defined entry-time bookkeeping (targets,
	// stops, expiry tags). Dropped when the position closes.
	Extra map[string]float64
}

// ClosedTrade is the immutable record of a completed trade. Key is the
// entry time, the matching identifier back to any earlier per-symbol
// open snapshot.
type ClosedTrade struct {
	Key         time.Time
	ExitTime    time.Time
	Symbol      string
	EntryPrice  float64
	ExitPrice   float64
	Quantity    int
	Direction   market.Direction
	RealizedPnl float64
	ExitType    string
}

// Ledger is the open-position table plus the closed-trade log and the
// running PnL aggregates.
type Ledger struct {
	now    time.Time
	open   []*Position
	byID   map[string]*Position
	closed []ClosedTrade

	unrealized float64
	realized   float64

	log    *slog.Logger
	policy SnapshotPolicy
	snap   Snapshotter
}

func New() *Ledger {
	return &Ledger{
		byID: make(map[string]*Position),
		log:  runlog.Discard(),
	}
}

// SetLogger installs the run-owned logger. The ledger never shares
// logging state between runs.
func (l *Ledger) SetLogger(lg *slog.Logger) {
	if lg != nil {
		l.log = lg
	}
}

// SetSnapshots configures durable open/closed snapshots written after
// every entry and exit. Snapshot failures are logged and dropped, never
// propagated into the strategy loop.
func (l *Ledger) SetSnapshots(policy SnapshotPolicy, s Snapshotter) {
	l.policy = policy
	l.snap = s
}

// Advance moves the simulation clock. Entry and exit timestamps are
// taken from the last Advance.
func (l *Ledger) Advance(t time.Time) { l.now = t }

// Now returns the current simulation time.
func (l *Ledger) Now() time.Time { return l.now }

// Enter opens a position at price and returns its ID. Quantity must be a
// positive integer and direction must be Long or Short. The ledger does
// not enforce one position per symbol; two live positions on the same
// symbol are the strategy's policy call.
func (l *Ledger) Enter(price float64, symbol string, quantity int, dir market.Direction, extra map[string]float64) (string, error) {
	if quantity <= 0 {
		return "", fmt.Errorf("enter %s: quantity %d: %w", symbol, quantity, ErrInvalidArgument)
	}
	if !dir.Valid() {
		return "", fmt.Errorf("enter %s: direction %d: %w", symbol, dir, ErrInvalidArgument)
	}

	p := &Position{
		ID:           id.New(),
		EntryTime:    l.now,
		Symbol:       symbol,
		EntryPrice:   price,
		CurrentPrice: price,
		Quantity:     quantity,
		Direction:    dir,
	}
	if len(extra) > 0 {
		p.Extra = make(map[string]float64, len(extra))
		for k, v := range extra {
			p.Extra[k] = v
		}
	}

	l.open = append(l.open, p)
	l.byID[p.ID] = p

	l.log.Info("entry order executed",
		"time", l.now, "side", dir.String(), "symbol", symbol,
		"price", price, "quantity", quantity)

	l.snapshot()
	return p.ID, nil
}

// Exit closes the position at its last marked price.
func (l *Ledger) Exit(positionID, exitType string) (ClosedTrade, error) {
	p, ok := l.byID[positionID]
	if !ok {
		return ClosedTrade{}, fmt.Errorf("exit %s: %w", positionID, ErrNotFound)
	}
	return l.ExitAt(positionID, exitType, p.CurrentPrice)
}

// ExitAt closes the position at an explicit price, removes it from the
// open set and appends the realized trade to the closed log. Exiting the
// same ID twice fails with ErrNotFound.
func (l *Ledger) ExitAt(positionID, exitType string, exitPrice float64) (ClosedTrade, error) {
	p, ok := l.byID[positionID]
	if !ok {
		return ClosedTrade{}, fmt.Errorf("exit %s: %w", positionID, ErrNotFound)
	}

	delete(l.byID, positionID)
	for i, q := range l.open {
		if q == p {
			l.open = append(l.open[:i], l.open[i+1:]...)
			break
		}
	}

	ct := ClosedTrade{
		Key:         p.EntryTime,
		ExitTime:    l.now,
		Symbol:      p.Symbol,
		EntryPrice:  p.EntryPrice,
		ExitPrice:   exitPrice,
		Quantity:    p.Quantity,
		Direction:   p.Direction,
		RealizedPnl: (exitPrice - p.EntryPrice) * float64(p.Quantity) * float64(p.Direction),
		ExitType:    exitType,
	}
	l.closed = append(l.closed, ct)

	l.log.Info("exit order executed",
		"time", l.now, "symbol", p.Symbol, "price", exitPrice,
		"exitType", exitType, "realizedPnl", ct.RealizedPnl)

	l.snapshot()
	return ct, nil
}

// MarkPrices updates CurrentPrice for every open position whose symbol
// is present in the map. Symbols without a quote keep their last mark.
func (l *Ledger) MarkPrices(priceBySymbol map[string]float64) {
	for _, p := range l.open {
		if px, ok := priceBySymbol[p.Symbol]; ok {
			p.CurrentPrice = px
		}
	}
}

// RecomputePnl refreshes every open position's unrealized PnL and the
// unrealized/realized aggregates from current state. Pure function of
// the tables, safe to call every tick.
func (l *Ledger) RecomputePnl() {
	var unrealized float64
	for _, p := range l.open {
		p.UnrealizedPnl = (p.CurrentPrice - p.EntryPrice) * float64(p.Quantity) * float64(p.Direction)
		unrealized += p.UnrealizedPnl
	}
	var realized float64
	for _, ct := range l.closed {
		realized += ct.RealizedPnl
	}
	l.unrealized = unrealized
	l.realized = realized
}

// Unrealized returns the open-position PnL sum as of the last recompute.
func (l *Ledger) Unrealized() float64 { return l.unrealized }

// Realized returns the closed-trade PnL sum as of the last recompute.
func (l *Ledger) Realized() float64 { return l.realized }

// Net returns realized plus unrealized PnL as of the last recompute.
func (l *Ledger) Net() float64 { return l.unrealized + l.realized }

// OpenPositions returns a copy of the open table in entry order.
func (l *Ledger) OpenPositions() []Position {
	out := make([]Position, len(l.open))
	for i, p := range l.open {
		out[i] = *p
	}
	return out
}

// ClosedTrades returns a copy of the closed-trade log in close order.
func (l *Ledger) ClosedTrades() []ClosedTrade {
	out := make([]ClosedTrade, len(l.closed))
	copy(out, l.closed)
	return out
}
