// Package id issues the identifiers used for positions and run
// directories.
package id

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var gen = &generator{entropy: ulid.Monotonic(rand.Reader, 0)}

// generator serializes ULID creation so IDs minted within the same
// millisecond stay strictly increasing.
type generator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func (g *generator) next() ulid.ULID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), g.entropy)
}

// New returns a fresh ULID string: time-sortable, safe as a file name,
// and index-friendly in SQLite.
func New() string {
	return gen.next().String()
}
