package journal

// Schema creates the journal tables. Balances are TEXT so the decimal digits
// written by the ledger come back exactly.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	account_id TEXT NOT NULL,
	currency TEXT NOT NULL,
	started_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	time DATETIME NOT NULL,
	cash TEXT NOT NULL,
	reserved_cash TEXT NOT NULL,
	commission TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_run ON snapshots(run_id, id);
`
