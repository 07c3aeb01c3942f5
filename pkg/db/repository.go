package db

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/hello-bedrock/promptimage/pkg/errors"
	"github.com/hello-bedrock/promptimage/pkg/pipeline"
	_ "modernc.org/sqlite"
)

// Repository provides journal operations
type Repository struct {
	db *sql.DB
}

// NewRepository opens (or creates) the journal at dbPath
func NewRepository(dbPath string) (*Repository, error) {
	slog.Info("database_init", "db_path", dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		slog.Error("database_open_failed", "db_path", dbPath, "error", err)
		return nil, errors.Wrap(err, "failed to open database")
	}

	slog.Info("database_create_schema", "db_path", dbPath)
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		slog.Error("database_schema_failed", "db_path", dbPath, "error", err)
		return nil, errors.Wrap(err, "failed to create schema")
	}

	slog.Info("database_ready", "db_path", dbPath)
	return &Repository{db: db}, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// Record appends a pipeline result to the journal
func (r *Repository) Record(ctx context.Context, res pipeline.Result) error {
	run := &Run{
		Bucket:    res.Record.Bucket,
		SourceKey: res.Record.Key,
		OutputKey: res.OutputKey,
		Outcome:   string(res.Outcome),
		Reason:    res.Reason,
	}
	if res.Err != nil {
		run.ErrorMessage = res.Err.Error()
	}
	return r.Create(ctx, run)
}

// Create inserts a journal entry
func (r *Repository) Create(ctx context.Context, run *Run) error {
	query := `
		INSERT INTO runs (bucket, source_key, output_key, outcome, reason, error_message)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		run.Bucket, run.SourceKey, run.OutputKey, run.Outcome, run.Reason, run.ErrorMessage)
	if err != nil {
		slog.Error("database_insert_failed", "s3_key", run.SourceKey, "error", err)
		return errors.Wrap(err, "failed to insert run")
	}

	id, err := result.LastInsertId()
	if err != nil {
		slog.Error("database_last_insert_id_failed", "s3_key", run.SourceKey, "error", err)
		return errors.Wrap(err, "failed to get last insert id")
	}
	run.ID = id

	slog.Info("database_run_recorded", "run_id", run.ID, "s3_key", run.SourceKey, "outcome", run.Outcome)
	return nil
}

// ListBySource returns the journal entries for one source object, oldest first
func (r *Repository) ListBySource(ctx context.Context, bucket, sourceKey string) ([]*Run, error) {
	query := `
		SELECT id, bucket, source_key, output_key, outcome, reason, error_message, created_at
		FROM runs WHERE bucket = ? AND source_key = ? ORDER BY id ASC
	`
	return r.query(ctx, query, bucket, sourceKey)
}

// List returns the most recent journal entries, newest first. A non-positive
// limit returns all entries.
func (r *Repository) List(ctx context.Context, limit int) ([]*Run, error) {
	query := `
		SELECT id, bucket, source_key, output_key, outcome, reason, error_message, created_at
		FROM runs ORDER BY id DESC
	`
	if limit > 0 {
		return r.query(ctx, query+" LIMIT ?", limit)
	}
	return r.query(ctx, query)
}

// CountByOutcome returns the number of entries per outcome
func (r *Repository) CountByOutcome(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT outcome, COUNT(*) FROM runs GROUP BY outcome`)
	if err != nil {
		slog.Error("database_count_query_failed", "error", err)
		return nil, errors.Wrap(err, "failed to count runs")
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, errors.Wrap(err, "failed to scan row")
		}
		counts[outcome] = n
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "rows error")
	}
	return counts, nil
}

func (r *Repository) query(ctx context.Context, query string, args ...any) ([]*Run, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Error("database_list_query_failed", "error", err)
		return nil, errors.Wrap(err, "failed to list runs")
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var run Run
		var outputKey, reason, errorMessage sql.NullString

		err := rows.Scan(
			&run.ID, &run.Bucket, &run.SourceKey, &outputKey,
			&run.Outcome, &reason, &errorMessage, &run.CreatedAt)
		if err != nil {
			slog.Error("database_scan_row_failed", "error", err)
			return nil, errors.Wrap(err, "failed to scan row")
		}

		// Handle nullable fields
		run.OutputKey = outputKey.String
		run.Reason = reason.String
		run.ErrorMessage = errorMessage.String

		runs = append(runs, &run)
	}

	if err := rows.Err(); err != nil {
		slog.Error("database_rows_error", "error", err)
		return nil, errors.Wrap(err, "rows error")
	}

	return runs, nil
}
