package journal

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rustyeddy/capital/ledger"
)

// GetRun returns a single run by ID.
func (j *SQLite) GetRun(runID string) (Run, error) {
	var r Run
	err := j.db.QueryRow(`
		SELECT run_id, account_id, currency, started_at
		FROM runs
		WHERE run_id = ?`, runID).Scan(&r.RunID, &r.AccountID, &r.Currency, &r.StartedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, fmt.Errorf("run %q not found", runID)
		}
		return Run{}, err
	}
	return r, nil
}

// ListRuns returns all runs, oldest first.
func (j *SQLite) ListRuns() ([]Run, error) {
	rows, err := j.db.Query(`
		SELECT run_id, account_id, currency, started_at
		FROM runs
		ORDER BY started_at ASC, run_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.AccountID, &r.Currency, &r.StartedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListSnapshots returns a run's snapshots in the order they were recorded.
func (j *SQLite) ListSnapshots(runID string) ([]ledger.Snapshot, error) {
	rows, err := j.db.Query(`
		SELECT time, cash, reserved_cash, commission
		FROM snapshots
		WHERE run_id = ?
		ORDER BY id ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.Snapshot
	for rows.Next() {
		var s ledger.Snapshot
		if err := rows.Scan(&s.Timestamp, &s.Cash, &s.ReservedCash, &s.Commission); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
