package market

import (
	"fmt"
	"time"
)

// SeriesCache memoizes minute series per option symbol for the lifetime of
// one run. Each symbol's series spans from first use to the contract's
// expiry; an entry is evicted only once the simulated clock has passed
// that expiry, so long multi-symbol runs stay bounded without ever
// dropping a still-live contract.
type SeriesCache struct {
	provider BarProvider
	interval time.Duration
	maxSize  int

	series map[string]Series
	expiry map[string]time.Time
}

const defaultMaxCacheSize = 100

func NewSeriesCache(p BarProvider, interval time.Duration) *SeriesCache {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SeriesCache{
		provider: p,
		interval: interval,
		maxSize:  defaultMaxCacheSize,
		series:   make(map[string]Series),
		expiry:   make(map[string]time.Time),
	}
}

// Bar returns the bar for symbol at or just after t, fetching and caching
// the symbol's series through its expiry on first use. now is the current
// simulated time and drives eviction of expired contracts.
func (c *SeriesCache) Bar(symbol string, t, now time.Time) (Bar, error) {
	if len(c.series) > c.maxSize {
		c.evictExpired(now)
	}

	s, ok := c.series[symbol]
	if !ok {
		exp, err := SymbolExpiry(symbol)
		if err != nil {
			return Bar{}, err
		}
		s, err = c.provider.GetSeries(symbol, t, exp, c.interval)
		if err != nil {
			return Bar{}, fmt.Errorf("series %s: %w", symbol, err)
		}
		c.series[symbol] = s
		c.expiry[symbol] = exp
	}

	return s.At(t, 15*time.Minute)
}

// evictExpired drops cached series whose contracts expired before now.
func (c *SeriesCache) evictExpired(now time.Time) {
	for sym, exp := range c.expiry {
		if now.After(exp) {
			delete(c.series, sym)
			delete(c.expiry, sym)
		}
	}
}

// SetMaxCacheSize overrides the cached-symbol count above which expired
// contracts are evicted.
func (c *SeriesCache) SetMaxCacheSize(n int) {
	if n > 0 {
		c.maxSize = n
	}
}

// Len reports the number of cached symbols.
func (c *SeriesCache) Len() int { return len(c.series) }
