package db

// Schema defines the SQLite journal of processed notification records.
// One row is appended per record handled by the pipeline, including skips.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    bucket TEXT NOT NULL,
    source_key TEXT NOT NULL,
    output_key TEXT,
    outcome TEXT NOT NULL CHECK(outcome IN ('skipped', 'succeeded', 'failed')),
    reason TEXT,
    error_message TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(bucket, source_key);
CREATE INDEX IF NOT EXISTS idx_runs_outcome ON runs(outcome);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

// Run is one journal entry
type Run struct {
	ID           int64
	Bucket       string
	SourceKey    string
	OutputKey    string
	Outcome      string
	Reason       string
	ErrorMessage string
	CreatedAt    string
}
