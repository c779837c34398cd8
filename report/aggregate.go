// Package report turns a completed run's closed-trade log into the
// time-indexed mark-to-market report: open exposure, capital
// requirement, cumulative and intraday PnL per bucket, annotated with
// peak and drawdown.
package report

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/niveshq/backtest/internal/runlog"
	"github.com/niveshq/backtest/ledger"
	"github.com/niveshq/backtest/margin"
	"github.com/niveshq/backtest/market"
)

// Row is one emitted report bucket. Peak and Drawdown are filled by the
// second pass over the finished sequence.
type Row struct {
	Time            time.Time
	OpenTrades      int
	CapitalInvested float64
	CumulativePnl   float64
	MtmPnl          float64
	Peak            float64
	Drawdown        float64
}

// Options configures one aggregation pass.
type Options struct {
	// TimeFrame is the bucket granularity. Defaults to one day.
	TimeFrame time.Duration

	// MarkToMarket revalues open positions with the bar open price at
	// each bucket instead of carrying only realized PnL.
	MarkToMarket bool

	// OptionsMarket selects the spread-netting capital model instead of
	// plain notional.
	OptionsMarket bool

	// Bars is required when MarkToMarket is set.
	Bars market.BarProvider

	Logger *slog.Logger
}

// Build walks a trading-calendar-aware time axis from the first entry
// and emits one Row per in-session bucket, stopping once an emitted
// row's bucket covers the last exit. A row stamped t covers
// [t, t+frame): trades entered before the bucket ends contribute, exits
// before the bucket ends count as realized. The axis extends past the
// last exit when that instant falls inside a calendar-skipped bucket
// (e.g. a sub-daily bucket stamped before the session open), so the
// final row always carries every realized trade.
//
// The aggregator runs post-hoc: the open set at a bucket is derived from
// the eventual closed-trade records (entered before the bucket ends,
// exited at or after it). A missing bar during a mark-to-market pass
// freezes the bucket's cumulative value at the previous bucket's;
// provider failures other than missing data abort the pass.
func Build(trades []ledger.ClosedTrade, opts Options) ([]Row, error) {
	if len(trades) == 0 {
		return nil, nil
	}
	frame := opts.TimeFrame
	if frame <= 0 {
		frame = 24 * time.Hour
	}
	log := opts.Logger
	if log == nil {
		log = runlog.Discard()
	}
	if opts.MarkToMarket && opts.Bars == nil {
		return nil, fmt.Errorf("report: mark-to-market pass needs a bar provider")
	}

	sorted := make([]ledger.ClosedTrade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Key.Before(sorted[j].Key) })

	lastExit := sorted[0].ExitTime
	for _, tr := range sorted {
		if tr.ExitTime.After(lastExit) {
			lastExit = tr.ExitTime
		}
	}

	var (
		rows      []Row
		prevCum   float64
		dayAnchor float64
		prevTime  time.Time
	)

	// The walk stops after the first emitted bucket whose end passes the
	// last exit. limit bounds frames whose stamps never intersect the
	// session and would otherwise walk forever.
	limit := lastExit.Add(7 * 24 * time.Hour)
	for t := frameStart(sorted[0].Key, frame); t.Before(limit); t = t.Add(frame) {
		if !market.IsMarketOpen(t) {
			continue
		}
		bucketEnd := t.Add(frame)

		var (
			closedSum float64
			openSet   []ledger.ClosedTrade
		)
		for _, tr := range sorted {
			if !tr.Key.Before(bucketEnd) {
				break
			}
			if tr.ExitTime.Before(bucketEnd) {
				closedSum += tr.RealizedPnl
			} else {
				openSet = append(openSet, tr)
			}
		}

		capital := margin.Capital(openLegs(openSet), opts.OptionsMarket)

		cum := closedSum
		if opts.MarkToMarket && len(openSet) > 0 {
			unrealized, err := markOpenSet(openSet, t, opts.Bars)
			switch {
			case errors.Is(err, market.ErrNoData):
				// Stale-data fallback: carry the previous bucket's value
				// rather than failing the whole aggregation.
				log.Warn("price gap, freezing cumulative pnl", "time", t)
				cum = prevCum
			case err != nil:
				return nil, fmt.Errorf("report: mark open set at %s: %w", t.Format(time.RFC3339), err)
			default:
				cum = closedSum + unrealized
			}
		}

		if !prevTime.IsZero() && !market.SameSessionDay(prevTime, t) {
			dayAnchor = prevCum
		}

		rows = append(rows, Row{
			Time:            t,
			OpenTrades:      len(openSet),
			CapitalInvested: capital,
			CumulativePnl:   cum,
			MtmPnl:          cum - dayAnchor,
		})
		prevCum = cum
		prevTime = t

		if bucketEnd.After(lastExit) {
			break
		}
	}

	Annotate(rows)
	return rows, nil
}

// markOpenSet values the open trades with each symbol's bar open at t.
func markOpenSet(openSet []ledger.ClosedTrade, t time.Time, bars market.BarProvider) (float64, error) {
	var unrealized float64
	for _, tr := range openSet {
		bar, err := bars.GetBar(tr.Symbol, t)
		if err != nil {
			return 0, err
		}
		unrealized += (bar.Open - tr.EntryPrice) * float64(tr.Quantity) * float64(tr.Direction)
	}
	return unrealized, nil
}

func openLegs(openSet []ledger.ClosedTrade) []margin.Leg {
	legs := make([]margin.Leg, len(openSet))
	for i, tr := range openSet {
		legs[i] = margin.Leg{EntryPrice: tr.EntryPrice, Quantity: tr.Quantity, Direction: tr.Direction}
	}
	return legs
}

// frameStart aligns the first trade's entry down to a bucket boundary.
// Daily and coarser frames stamp buckets at the session open so every
// emitted row carries an in-session timestamp; finer frames align to
// frame multiples within the exchange-local day.
func frameStart(t time.Time, frame time.Duration) time.Time {
	lt := t.In(market.Exchange)
	y, m, d := lt.Date()
	if frame >= 24*time.Hour {
		return time.Date(y, m, d, market.SessionOpenHour, market.SessionOpenMinute, 0, 0, market.Exchange)
	}
	midnight := time.Date(y, m, d, 0, 0, 0, 0, market.Exchange)
	offset := lt.Sub(midnight)
	return midnight.Add(offset - offset%frame)
}
