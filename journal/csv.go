package journal

import (
	"encoding/csv"
	"os"
	"sync"
	"time"

	"github.com/rustyeddy/capital/ledger"
)

var csvHeader = []string{"run_id", "time", "cash", "reserved_cash", "commission"}

// CSV appends snapshots to a single file, one row per snapshot.
type CSV struct {
	mu sync.Mutex
	w  *csv.Writer
	f  *os.File
}

func NewCSV(path string) (*CSV, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		_ = f.Close()
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return nil, err
	}

	return &CSV{w: w, f: f}, nil
}

func (j *CSV) RecordSnapshot(runID string, s ledger.Snapshot) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	err := j.w.Write([]string{
		runID,
		s.Timestamp.UTC().Format(time.RFC3339Nano),
		s.Cash.String(),
		s.ReservedCash.String(),
		s.Commission.String(),
	})
	if err != nil {
		return err
	}

	j.w.Flush()
	return j.w.Error()
}

func (j *CSV) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.w.Flush()
	if err := j.w.Error(); err != nil {
		return err
	}
	return j.f.Close()
}
