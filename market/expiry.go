package market

import (
	"fmt"
	"sort"
	"time"
)

// ExpiryRecord describes the tradable contract chain for a base symbol as
// of one date: the current expiry code, the strike spacing, and the lot
// size. Records come from an external metadata store and are read-only.
type ExpiryRecord struct {
	Date       time.Time // record effective date, normalized to market close
	Expiry     string    // expiry code appended to option symbols, e.g. "25JAN24"
	StrikeDist float64
	LotSize    int
}

// ExpiryProvider fetches the full expiry chain for a base symbol.
type ExpiryProvider interface {
	Expiries(baseSymbol string) ([]ExpiryRecord, error)
}

// ExpiryStore caches expiry chains per base symbol for the lifetime of one
// run, sorted by date, and answers nearest-at-or-after lookups with a
// binary search. Population is a plain fetch-then-read, no retry.
type ExpiryStore struct {
	provider ExpiryProvider
	cache    map[string][]ExpiryRecord
}

func NewExpiryStore(p ExpiryProvider) *ExpiryStore {
	return &ExpiryStore{
		provider: p,
		cache:    make(map[string][]ExpiryRecord),
	}
}

// Lookup returns the expiry record applicable at asOf: the first record
// whose date is at or after asOf's market close. Records for the symbol
// are fetched and cached on first use.
func (s *ExpiryStore) Lookup(baseSymbol string, asOf time.Time) (ExpiryRecord, error) {
	recs, ok := s.cache[baseSymbol]
	if !ok {
		fetched, err := s.provider.Expiries(baseSymbol)
		if err != nil {
			return ExpiryRecord{}, fmt.Errorf("expiry fetch %s: %w", baseSymbol, err)
		}
		recs = make([]ExpiryRecord, len(fetched))
		for i, r := range fetched {
			r.Date = MarketClose(r.Date)
			recs[i] = r
		}
		sort.Slice(recs, func(i, j int) bool { return recs[i].Date.Before(recs[j].Date) })
		s.cache[baseSymbol] = recs
	}

	at := MarketClose(asOf)
	i := sort.Search(len(recs), func(i int) bool {
		return !recs[i].Date.Before(at)
	})
	if i >= len(recs) {
		return ExpiryRecord{}, fmt.Errorf("expiry for %s at %s: %w",
			baseSymbol, at.Format("2006-01-02"), ErrNoData)
	}
	return recs[i], nil
}
