package journal

import (
	"sync"

	"github.com/rustyeddy/capital/ledger"
)

// Memory keeps snapshots in memory, per run, for tests and dry runs.
type Memory struct {
	mu    sync.Mutex
	runs  map[string]Run
	snaps map[string][]ledger.Snapshot
}

// NewMemory creates an empty journal sized for about capacity runs.
func NewMemory(capacity int) *Memory {
	if capacity < 0 {
		capacity = 0
	}
	return &Memory{
		runs:  make(map[string]Run),
		snaps: make(map[string][]ledger.Snapshot, capacity),
	}
}

func (m *Memory) RecordRun(r Run) error {
	m.mu.Lock()
	m.runs[r.RunID] = r
	m.mu.Unlock()
	return nil
}

func (m *Memory) RecordSnapshot(runID string, s ledger.Snapshot) error {
	m.mu.Lock()
	m.snaps[runID] = append(m.snaps[runID], s)
	m.mu.Unlock()
	return nil
}

// Run returns the metadata recorded for runID.
func (m *Memory) Run(runID string) (Run, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[runID]
	return r, ok
}

// Snapshots returns a copy of the snapshots recorded for runID.
func (m *Memory) Snapshots(runID string) []ledger.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ledger.Snapshot, len(m.snaps[runID]))
	copy(out, m.snaps[runID])
	return out
}

// Reset drops everything recorded so far.
func (m *Memory) Reset() {
	m.mu.Lock()
	m.runs = make(map[string]Run)
	m.snaps = make(map[string][]ledger.Snapshot)
	m.mu.Unlock()
}

func (m *Memory) Close() error { return nil }
