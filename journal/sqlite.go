package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/capital/ledger"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordRun(r Run) error {
	_, err := j.db.Exec(`
		INSERT INTO runs (run_id, account_id, currency, started_at)
		VALUES (?, ?, ?, ?)`,
		r.RunID, r.AccountID, r.Currency, r.StartedAt.UTC(),
	)
	return err
}

func (j *SQLite) RecordSnapshot(runID string, s ledger.Snapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO snapshots (run_id, time, cash, reserved_cash, commission)
		VALUES (?, ?, ?, ?, ?)`,
		runID, s.Timestamp.UTC(), s.Cash.String(), s.ReservedCash.String(), s.Commission.String(),
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
