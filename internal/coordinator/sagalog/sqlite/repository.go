// Package sqlite provides a SQLite-backed implementation of sagalog.Repository.
//
// WAL mode is enabled on Open so the saga goroutines can write while the
// admin endpoint reads.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PrashanthPremchand/ecommerce-microservices-app/internal/coordinator/sagalog"

	// Pure-Go driver, no CGO needed in the Alpine images.
	_ "modernc.org/sqlite"
)

// The table is append-only: each row is an immutable event in a saga's
// lifecycle and the row with the highest id is the current state.
const schema = `
CREATE TABLE IF NOT EXISTS saga_logs (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    saga_id         TEXT    NOT NULL,
    status          TEXT    NOT NULL,
    current_step    TEXT    NOT NULL DEFAULT '',
    furthest_step   TEXT    NOT NULL DEFAULT '',
    order_id        INTEGER NOT NULL DEFAULT 0,
    -- request JSON, written once on STARTED
    payload         TEXT,
    error_messages  TEXT    NOT NULL DEFAULT '[]',
    trace_id        TEXT    NOT NULL DEFAULT '',
    span_id         TEXT    NOT NULL DEFAULT '',
    updated_at      TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_saga_logs_saga_id ON saga_logs(saga_id, id);
CREATE INDEX IF NOT EXISTS idx_saga_logs_trace_id ON saga_logs(trace_id);
`

const columns = `saga_id, status, current_step, furthest_step, order_id, COALESCE(payload, ''),
       error_messages, trace_id, span_id, updated_at`

type Repository struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path and applies the schema.
//
//	repo, err := sqlite.Open("./data/saga.db")
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	// "sqlite", not "sqlite3", for the modernc driver.
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// Save inserts a new saga log entry. It is safe to call concurrently.
func (r *Repository) Save(ctx context.Context, entry *sagalog.SagaLog) error {
	const q = `
		INSERT INTO saga_logs
			(saga_id, status, current_step, furthest_step, order_id, payload,
			 error_messages, trace_id, span_id, updated_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	errs := entry.Errors
	if errs == nil {
		errs = []string{}
	}
	errJSON, err := json.Marshal(errs)
	if err != nil {
		return fmt.Errorf("sqlite: encode errors for %q: %w", entry.SagaID, err)
	}

	_, err = r.db.ExecContext(ctx, q,
		entry.SagaID,
		string(entry.Status),
		entry.CurrentStep,
		entry.FurthestStep,
		entry.OrderID,
		nullableString(entry.Payload),
		string(errJSON),
		entry.TraceID,
		entry.SpanID,
		formatTime(entry.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save saga log for %q: %w", entry.SagaID, err)
	}
	return nil
}

// GetLatest returns the most recent log entry for a given saga ID.
func (r *Repository) GetLatest(ctx context.Context, sagaID string) (*sagalog.SagaLog, error) {
	q := `SELECT ` + columns + ` FROM saga_logs WHERE saga_id = ? ORDER BY id DESC LIMIT 1`

	entry, err := scanEntry(r.db.QueryRowContext(ctx, q, sagaID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sqlite: saga %q not found", sagaID)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get latest for %q: %w", sagaID, err)
	}
	return entry, nil
}

// ListStuck returns the latest row of each stuck saga whose furthest step is
// one of furthestSteps, oldest first. Completed sagas are dropped in SQL; the
// idle check runs on the parsed rows since timestamps are stored as text.
func (r *Repository) ListStuck(ctx context.Context, idleSince time.Time, furthestSteps ...string) ([]sagalog.SagaLog, error) {
	if len(furthestSteps) == 0 {
		return []sagalog.SagaLog{}, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(furthestSteps)), ", ")
	q := `SELECT ` + columns + `
		FROM saga_logs l
		WHERE l.id = (SELECT MAX(id) FROM saga_logs WHERE saga_id = l.saga_id)
		  AND l.status NOT IN (?, ?)
		  AND l.furthest_step IN (` + placeholders + `)
		ORDER BY l.id`

	args := make([]any, 0, len(furthestSteps)+2)
	args = append(args, string(sagalog.StatusCompleted), string(sagalog.StatusCompletedDegraded))
	for _, s := range furthestSteps {
		args = append(args, s)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list stuck sagas: %w", err)
	}
	defer rows.Close()

	out := []sagalog.SagaLog{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan stuck saga: %w", err)
		}
		if entry.Stuck(idleSince) {
			out = append(out, *entry)
		}
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*sagalog.SagaLog, error) {
	var entry sagalog.SagaLog
	var errJSON, updatedAt string
	err := row.Scan(
		&entry.SagaID,
		&entry.Status,
		&entry.CurrentStep,
		&entry.FurthestStep,
		&entry.OrderID,
		&entry.Payload,
		&errJSON,
		&entry.TraceID,
		&entry.SpanID,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(errJSON), &entry.Errors); err != nil {
		return nil, fmt.Errorf("sqlite: decode errors: %w", err)
	}
	if len(entry.Errors) == 0 {
		entry.Errors = nil
	}
	if entry.UpdatedAt, err = parseRFC3339(updatedAt); err != nil {
		return nil, err
	}
	return &entry, nil
}

// nullableString stores NULL instead of an empty payload on non-STARTED rows.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
