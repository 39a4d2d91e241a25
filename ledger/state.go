// Package ledger derives an account's cash, reserved cash and accumulated
// commission from the stream of order and market events it receives.
//
// A State is a value. Transition never modifies the State it is given; it
// returns a new one, so callers may keep earlier states around (for undo,
// speculative branches, reports) without copying them.
package ledger

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is a point-in-time copy of the balance fields.
type Snapshot struct {
	Cash         decimal.Decimal `json:"cash"`
	ReservedCash decimal.Decimal `json:"reservedCash"`
	Commission   decimal.Decimal `json:"commission"`
	Timestamp    time.Time       `json:"timestamp"`
}

// Equal compares balances by decimal value and timestamps by instant.
func (s Snapshot) Equal(o Snapshot) bool {
	return s.Cash.Equal(o.Cash) &&
		s.ReservedCash.Equal(o.ReservedCash) &&
		s.Commission.Equal(o.Commission) &&
		s.Timestamp.Equal(o.Timestamp)
}

// State is the account as seen by the ledger.
type State struct {
	Cash         decimal.Decimal `json:"cash"`
	ReservedCash decimal.Decimal `json:"reservedCash"`
	Commission   decimal.Decimal `json:"commission"`

	// History holds one snapshot per initialization, fill and bar, in the
	// order they were applied. It is only ever appended to.
	History []Snapshot `json:"history"`
}

// New returns the empty account: zero balances and no history.
func New() State {
	return State{
		Cash:         decimal.Zero,
		ReservedCash: decimal.Zero,
		Commission:   decimal.Zero,
		History:      []Snapshot{},
	}
}

// Snapshot copies the current balances, stamped with ts.
func (s State) Snapshot(ts time.Time) Snapshot {
	return Snapshot{
		Cash:         s.Cash,
		ReservedCash: s.ReservedCash,
		Commission:   s.Commission,
		Timestamp:    ts,
	}
}

// Last returns the newest history entry.
func (s State) Last() (Snapshot, bool) {
	if len(s.History) == 0 {
		return Snapshot{}, false
	}
	return s.History[len(s.History)-1], true
}

// Equal reports whether both states hold the same balances and histories.
func (s State) Equal(o State) bool {
	if !s.Cash.Equal(o.Cash) || !s.ReservedCash.Equal(o.ReservedCash) || !s.Commission.Equal(o.Commission) {
		return false
	}
	return slices.EqualFunc(s.History, o.History, Snapshot.Equal)
}

// record returns s with a snapshot of its current balances appended. The
// history is copied first so states sharing the old backing array never see
// the new entry.
func (s State) record(ts time.Time) State {
	h := make([]Snapshot, len(s.History), len(s.History)+1)
	copy(h, s.History)
	s.History = append(h, s.Snapshot(ts))
	return s
}
