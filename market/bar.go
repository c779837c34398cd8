package market

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrNoData is returned by bar lookups that find no matching record.
var ErrNoData = errors.New("market: no data")

// Bar is one OHLC record for a symbol at a minute (or resampled) boundary.
type Bar struct {
	Time         time.Time
	Open         float64
	High         float64
	Low          float64
	Close        float64
	Volume       float64
	OpenInterest float64
}

// Series is an ascending, time-indexed sequence of bars for one symbol.
type Series struct {
	Symbol string
	Bars   []Bar
}

// BarProvider supplies historical price data. Implementations live outside
// this module (data store, broker dump, fixtures); the engine only does
// point-in-time lookups against it.
type BarProvider interface {
	// GetBar returns the bar at or shortly after t. ErrNoData when the
	// store has nothing near t.
	GetBar(symbol string, t time.Time) (Bar, error)

	// GetSeries returns bars in [start, end] resampled to interval,
	// ascending. ErrNoData when the range is empty.
	GetSeries(symbol string, start, end time.Time, interval time.Duration) (Series, error)
}

// At returns the first bar whose time is >= t, provided it falls within
// maxGap of t. A store can miss the odd minute, so the lookup scans
// forward rather than demanding an exact hit.
func (s Series) At(t time.Time, maxGap time.Duration) (Bar, error) {
	i := sort.Search(len(s.Bars), func(i int) bool {
		return !s.Bars[i].Time.Before(t)
	})
	if i >= len(s.Bars) {
		return Bar{}, fmt.Errorf("%s at %s: %w", s.Symbol, t.Format(time.RFC3339), ErrNoData)
	}
	if maxGap > 0 && s.Bars[i].Time.Sub(t) > maxGap {
		return Bar{}, fmt.Errorf("%s at %s: nearest bar %s too far: %w",
			s.Symbol, t.Format(time.RFC3339), s.Bars[i].Time.Format(time.RFC3339), ErrNoData)
	}
	return s.Bars[i], nil
}

// Between returns the sub-series with times in [start, end].
func (s Series) Between(start, end time.Time) Series {
	lo := sort.Search(len(s.Bars), func(i int) bool {
		return !s.Bars[i].Time.Before(start)
	})
	hi := sort.Search(len(s.Bars), func(i int) bool {
		return s.Bars[i].Time.After(end)
	})
	return Series{Symbol: s.Symbol, Bars: s.Bars[lo:hi]}
}

// First returns the earliest bar, or false on an empty series.
func (s Series) First() (Bar, bool) {
	if len(s.Bars) == 0 {
		return Bar{}, false
	}
	return s.Bars[0], true
}

// Last returns the latest bar, or false on an empty series.
func (s Series) Last() (Bar, bool) {
	if len(s.Bars) == 0 {
		return Bar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}
