// Package replay drives a ledger from a recorded event stream and journals
// the history it produces.
package replay

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/capital/id"
	"github.com/rustyeddy/capital/journal"
	"github.com/rustyeddy/capital/ledger"
)

// Source yields events in the order they happened.
type Source interface {
	Next() (ledger.Event, bool, error)
}

// SliceSource replays a fixed list of events.
type SliceSource struct {
	events []ledger.Event
}

func NewSliceSource(events ...ledger.Event) *SliceSource {
	return &SliceSource{events: events}
}

func (s *SliceSource) Next() (ledger.Event, bool, error) {
	if len(s.events) == 0 {
		return nil, false, nil
	}
	e := s.events[0]
	s.events = s.events[1:]
	return e, true, nil
}

// Stats summarises a run.
type Stats struct {
	Events    map[ledger.Kind]int
	Snapshots int
}

// Runner applies events one at a time and writes every snapshot the ledger
// appends to the journal.
type Runner struct {
	Journal   journal.Journal // optional
	Log       zerolog.Logger
	RunID     string
	AccountID string
	Currency  string
}

// Run folds src into s. It stops at the first source or journal error, or
// when ctx is done, returning the state reached so far.
func (r *Runner) Run(ctx context.Context, s ledger.State, src Source) (ledger.State, Stats, error) {
	if r.RunID == "" {
		r.RunID = id.New()
	}
	stats := Stats{Events: make(map[ledger.Kind]int)}
	log := r.Log.With().Str("run", r.RunID).Logger()

	if rr, ok := r.Journal.(journal.RunRecorder); ok {
		err := rr.RecordRun(journal.Run{
			RunID:     r.RunID,
			AccountID: r.AccountID,
			Currency:  r.Currency,
			StartedAt: time.Now(),
		})
		if err != nil {
			return s, stats, fmt.Errorf("record run: %w", err)
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return s, stats, err
		}

		ev, ok, err := src.Next()
		if err != nil {
			return s, stats, fmt.Errorf("read event: %w", err)
		}
		if !ok {
			break
		}

		from := len(s.History)
		if ini, ok := ev.(ledger.Initialized); ok && ini.Overrides.History != nil {
			// The history was replaced wholesale; journal all of it.
			from = 0
		}

		kind := ledger.KindUnknown
		if ev != nil {
			kind = ev.Kind()
		}

		s = ledger.Transition(s, ev)
		stats.Events[kind]++

		if r.Journal != nil {
			for _, snap := range s.History[from:] {
				if err := r.Journal.RecordSnapshot(r.RunID, snap); err != nil {
					return s, stats, fmt.Errorf("record snapshot: %w", err)
				}
				stats.Snapshots++
			}
		}

		log.Debug().
			Stringer("event", kind).
			Stringer("cash", s.Cash).
			Stringer("reserved", s.ReservedCash).
			Stringer("commission", s.Commission).
			Msg("applied")
	}

	log.Info().
		Int("snapshots", stats.Snapshots).
		Stringer("cash", s.Cash).
		Stringer("reserved", s.ReservedCash).
		Stringer("commission", s.Commission).
		Msg("replay finished")

	return s, stats, nil
}
