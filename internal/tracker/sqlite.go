package tracker

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sechaba/ragwatch/pkg/types"
)

// SQLiteTracker implements the Tracker interface using SQLite
type SQLiteTracker struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteTracker creates a new SQLite-backed tracker, applying migrations
func NewSQLiteTracker(dbPath string) (*SQLiteTracker, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteTracker{db: db}, nil
}

// Close closes the database connection
func (t *SQLiteTracker) Close() error {
	return t.db.Close()
}

func (t *SQLiteTracker) Lookup(ctx context.Context, path string) (*types.TrackedFile, error) {
	query := `
		SELECT path, fingerprint, size_bytes, mod_time, status, fail_reason,
		       chunk_ids, last_indexed_at, created_at, updated_at
		FROM files
		WHERE path = ?
	`
	return scanTrackedFile(t.db.QueryRowContext(ctx, query, path))
}

func (t *SQLiteTracker) HasChanged(ctx context.Context, path, candidate string) (bool, error) {
	var fingerprint string
	var status types.FileStatus
	err := t.db.QueryRowContext(ctx,
		"SELECT fingerprint, status FROM files WHERE path = ?", path).Scan(&fingerprint, &status)
	if err == sql.ErrNoRows {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read fingerprint: %w", err)
	}
	// A failed entry always needs work, even when the fingerprint matches the
	// last successful index: processing it flips the status back to indexed
	if status != types.StatusIndexed {
		return true, nil
	}
	return fingerprint != candidate, nil
}

func (t *SQLiteTracker) RecordSuccess(ctx context.Context, path, fingerprint string, sizeBytes int64, modTime time.Time, chunkIDs []string) error {
	ids, err := json.Marshal(chunkIDs)
	if err != nil {
		return fmt.Errorf("failed to encode chunk IDs: %w", err)
	}

	// Single-statement upsert keeps fingerprint and chunk_ids visible to
	// readers only as a pair
	query := `
		INSERT INTO files (path, fingerprint, size_bytes, mod_time, status, fail_reason,
		                   chunk_ids, last_indexed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, '', ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			fingerprint = excluded.fingerprint,
			size_bytes = excluded.size_bytes,
			mod_time = excluded.mod_time,
			status = excluded.status,
			fail_reason = '',
			chunk_ids = excluded.chunk_ids,
			last_indexed_at = excluded.last_indexed_at,
			updated_at = excluded.updated_at
	`
	now := time.Now()
	if _, err := t.db.ExecContext(ctx, query,
		path, fingerprint, sizeBytes, modTime, types.StatusIndexed, string(ids), now, now, now); err != nil {
		return fmt.Errorf("failed to record success: %w", err)
	}
	return nil
}

func (t *SQLiteTracker) RecordFailure(ctx context.Context, path, reason string) error {
	// On conflict only status, reason and updated_at change; the previous
	// fingerprint and chunk_ids stay put so the last good index survives
	query := `
		INSERT INTO files (path, status, fail_reason, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			status = excluded.status,
			fail_reason = excluded.fail_reason,
			updated_at = excluded.updated_at
	`
	now := time.Now()
	if _, err := t.db.ExecContext(ctx, query,
		path, types.StatusFailed, reason, now, now); err != nil {
		return fmt.Errorf("failed to record failure: %w", err)
	}
	return nil
}

func (t *SQLiteTracker) RecordDeletion(ctx context.Context, path string) ([]string, error) {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var raw string
	err = tx.QueryRowContext(ctx,
		"SELECT chunk_ids FROM files WHERE path = ?", path).Scan(&raw)
	if err == sql.ErrNoRows {
		// Never tracked; nothing to purge, but there may be stale tombstones
		// from an earlier deletion of the same path
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read chunk IDs: %w", err)
	}

	var chunkIDs []string
	if err := json.Unmarshal([]byte(raw), &chunkIDs); err != nil {
		return nil, fmt.Errorf("failed to decode chunk IDs: %w", err)
	}

	now := time.Now()
	for _, id := range chunkIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO pending_purges (chunk_id, path, recorded_at) VALUES (?, ?, ?)",
			id, path, now); err != nil {
			return nil, fmt.Errorf("failed to record pending purge: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM files WHERE path = ?", path); err != nil {
		return nil, fmt.Errorf("failed to delete file record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit deletion: %w", err)
	}
	return chunkIDs, nil
}

func (t *SQLiteTracker) RecordPurges(ctx context.Context, path string, chunkIDs []string) error {
	if len(chunkIDs) == 0 {
		return nil
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now()
	for _, id := range chunkIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO pending_purges (chunk_id, path, recorded_at) VALUES (?, ?, ?)",
			id, path, now); err != nil {
			return fmt.Errorf("failed to record pending purge: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit pending purges: %w", err)
	}
	return nil
}

func (t *SQLiteTracker) ResolvePurge(ctx context.Context, chunkIDs []string) error {
	if len(chunkIDs) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?,", len(chunkIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]interface{}, len(chunkIDs))
	for i, id := range chunkIDs {
		args[i] = id
	}

	query := fmt.Sprintf("DELETE FROM pending_purges WHERE chunk_id IN (%s)", placeholders)
	if _, err := t.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to resolve purge: %w", err)
	}
	return nil
}

func (t *SQLiteTracker) ListPendingPurges(ctx context.Context) ([]PendingPurge, error) {
	rows, err := t.db.QueryContext(ctx,
		"SELECT chunk_id, path, recorded_at FROM pending_purges ORDER BY recorded_at, chunk_id")
	if err != nil {
		return nil, fmt.Errorf("failed to list pending purges: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var purges []PendingPurge
	for rows.Next() {
		var p PendingPurge
		if err := rows.Scan(&p.ChunkID, &p.Path, &p.RecordedAt); err != nil {
			return nil, err
		}
		purges = append(purges, p)
	}
	return purges, rows.Err()
}

func (t *SQLiteTracker) ListFiles(ctx context.Context) ([]*types.TrackedFile, error) {
	query := `
		SELECT path, fingerprint, size_bytes, mod_time, status, fail_reason,
		       chunk_ids, last_indexed_at, created_at, updated_at
		FROM files
		ORDER BY path
	`
	rows, err := t.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var files []*types.TrackedFile
	for rows.Next() {
		f, err := scanTrackedFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTrackedFile(s rowScanner) (*types.TrackedFile, error) {
	var f types.TrackedFile
	var rawIDs string
	var modTime, lastIndexedAt sql.NullTime
	err := s.Scan(
		&f.Path, &f.Fingerprint, &f.SizeBytes, &modTime, &f.Status, &f.FailReason,
		&rawIDs, &lastIndexedAt, &f.CreatedAt, &f.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if modTime.Valid {
		f.ModTime = modTime.Time
	}
	if lastIndexedAt.Valid {
		f.LastIndexedAt = lastIndexedAt.Time
	}
	if err := json.Unmarshal([]byte(rawIDs), &f.ChunkIDs); err != nil {
		return nil, fmt.Errorf("failed to decode chunk IDs: %w", err)
	}
	return &f, nil
}
