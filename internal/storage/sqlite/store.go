// Package sqlite provides a SQLite-backed InvocationStore.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/trackops/issuegate/internal/storage"
)

// Store is a SQLite implementation of storage.InvocationStore.
type Store struct {
	db *sql.DB
}

var _ storage.InvocationStore = (*Store)(nil)

// New opens (or creates) the database at dbPath and initializes the schema.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS invocations (
		id TEXT PRIMARY KEY,
		request_id TEXT,
		tool_name TEXT NOT NULL,
		params TEXT,
		success INTEGER NOT NULL,
		error_code TEXT,
		duration_ns INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_invocations_tool
		ON invocations(tool_name, created_at)`)
	return err
}

func (s *Store) RecordInvocation(ctx context.Context, rec *storage.InvocationRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO invocations (id, request_id, tool_name, params, success, error_code, duration_ns, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.RequestID, rec.ToolName, rec.Params,
		rec.Success, rec.ErrorCode, rec.Duration.Nanoseconds(), rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert invocation: %w", err)
	}
	return nil
}

func (s *Store) ListInvocations(ctx context.Context, opts storage.ListOptions) ([]*storage.InvocationRecord, error) {
	query := `SELECT id, request_id, tool_name, params, success, error_code, duration_ns, created_at
		FROM invocations`
	var args []any
	if opts.ToolName != "" {
		query += " WHERE tool_name = ?"
		args = append(args, opts.ToolName)
	}
	query += " ORDER BY created_at"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query invocations: %w", err)
	}
	defer rows.Close()

	var out []*storage.InvocationRecord
	for rows.Next() {
		var rec storage.InvocationRecord
		var durationNS int64
		if err := rows.Scan(&rec.ID, &rec.RequestID, &rec.ToolName, &rec.Params,
			&rec.Success, &rec.ErrorCode, &durationNS, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan invocation: %w", err)
		}
		rec.Duration = time.Duration(durationNS)
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
