// Package id hands out ULIDs for journal runs and simulated orders.
package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator produces ULIDs that are strictly increasing, even when several
// are requested for the same millisecond.
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
}

// NewGenerator seeds a monotonic generator. A zero seed is replaced by one
// read from crypto/rand, falling back to the clock.
func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{entropy: ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)}
}

// At returns an id whose time component is t. Simulated orders use the
// market time of the bar that created them so ids sort with the replay.
func (g *Generator) At(t time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	v, err := ulid.New(ulid.Timestamp(t.UTC()), g.entropy)
	if err != nil {
		// Only possible if t is before the epoch or the monotonic counter
		// overflows within one millisecond.
		panic(err)
	}
	return v.String()
}

// New returns an id stamped with the current time.
func (g *Generator) New() string { return g.At(time.Now()) }

var std = NewGenerator(0)

// New returns a time-sortable id from the package generator.
func New() string { return std.New() }

// Time extracts the timestamp encoded in an id.
func Time(s string) (time.Time, error) {
	v, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(v.Time()), nil
}
