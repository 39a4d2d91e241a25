package cmd

import (
	"time"

	"github.com/rustyeddy/capital/ledger"
	"github.com/rustyeddy/capital/replay"
)

// seededSource starts a stream with an Initialized event carrying the
// configured balances, unless the stream already begins with one. The seed
// is stamped with the first event's time, or now when it has none.
type seededSource struct {
	src       replay.Source
	overrides ledger.Overrides
	now       func() time.Time

	started bool
	held    ledger.Event
}

func newSeededSource(src replay.Source, o ledger.Overrides) *seededSource {
	return &seededSource{src: src, overrides: o, now: time.Now}
}

func (s *seededSource) Next() (ledger.Event, bool, error) {
	if s.held != nil {
		ev := s.held
		s.held = nil
		return ev, true, nil
	}
	if s.started {
		return s.src.Next()
	}
	s.started = true

	ev, ok, err := s.src.Next()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return s.seed(s.now()), true, nil
	}
	if _, isInit := ev.(ledger.Initialized); isInit {
		return ev, true, nil
	}

	s.held = ev
	at, stamped := eventTime(ev)
	if !stamped {
		at = s.now()
	}
	return s.seed(at), true, nil
}

func (s *seededSource) seed(at time.Time) ledger.Initialized {
	return ledger.Initialized{Timestamp: at, Overrides: s.overrides}
}

func eventTime(ev ledger.Event) (time.Time, bool) {
	switch e := ev.(type) {
	case ledger.OrderFilled:
		return e.Timestamp, true
	case ledger.BarReceived:
		return e.Timestamp, true
	}
	return time.Time{}, false
}
