// Package journal persists the snapshots a ledger appends to its history so
// runs can be inspected after the fact.
package journal

import (
	"fmt"
	"time"

	"github.com/rustyeddy/capital/config"
	"github.com/rustyeddy/capital/ledger"
)

// Journal receives ledger snapshots in the order the ledger produced them.
type Journal interface {
	RecordSnapshot(runID string, s ledger.Snapshot) error
	Close() error
}

// Run describes one replay of an event stream.
type Run struct {
	RunID     string
	AccountID string
	Currency  string
	StartedAt time.Time
}

// RunRecorder is implemented by journals that keep run metadata.
type RunRecorder interface {
	RecordRun(Run) error
}

// Open creates the journal selected by cfg.
func Open(cfg config.JournalConfig) (Journal, error) {
	switch cfg.Type {
	case "sqlite":
		return NewSQLite(cfg.DBPath)
	case "csv":
		return NewCSV(cfg.SnapshotsFile)
	case "memory":
		return NewMemory(0), nil
	default:
		return nil, fmt.Errorf("unknown journal type %q", cfg.Type)
	}
}
