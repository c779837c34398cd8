package market

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stubExpiryProvider struct {
	recs  map[string][]ExpiryRecord
	calls int
}

func (p *stubExpiryProvider) Expiries(baseSymbol string) ([]ExpiryRecord, error) {
	p.calls++
	recs, ok := p.recs[baseSymbol]
	if !ok {
		return nil, errors.New("unknown symbol")
	}
	return recs, nil
}

func TestExpiryStoreLookup(t *testing.T) {
	t.Parallel()

	p := &stubExpiryProvider{recs: map[string][]ExpiryRecord{
		"NIFTY": {
			// deliberately unsorted
			{Date: ist(2024, time.January, 25, 0, 0), Expiry: "25JAN24", StrikeDist: 50, LotSize: 50},
			{Date: ist(2024, time.January, 11, 0, 0), Expiry: "11JAN24", StrikeDist: 50, LotSize: 50},
			{Date: ist(2024, time.January, 18, 0, 0), Expiry: "18JAN24", StrikeDist: 50, LotSize: 50},
		},
	}}
	store := NewExpiryStore(p)

	// mid-week lands on the next expiry
	rec, err := store.Lookup("NIFTY", ist(2024, time.January, 15, 10, 0))
	assert.NoError(t, err)
	assert.Equal(t, "18JAN24", rec.Expiry)

	// expiry day itself still maps to that expiry
	rec, err = store.Lookup("NIFTY", ist(2024, time.January, 18, 11, 0))
	assert.NoError(t, err)
	assert.Equal(t, "18JAN24", rec.Expiry)

	// past the chain
	_, err = store.Lookup("NIFTY", ist(2024, time.February, 1, 10, 0))
	assert.ErrorIs(t, err, ErrNoData)

	// chain is cached, one provider call total
	assert.Equal(t, 1, p.calls)
}

func TestExpiryStoreProviderError(t *testing.T) {
	t.Parallel()

	store := NewExpiryStore(&stubExpiryProvider{recs: map[string][]ExpiryRecord{}})
	_, err := store.Lookup("BANKNIFTY", ist(2024, time.January, 15, 10, 0))
	assert.Error(t, err)
}
