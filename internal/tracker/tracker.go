package tracker

import (
	"context"
	"errors"
	"time"

	"github.com/sechaba/ragwatch/pkg/types"
)

var (
	// ErrNotFound is returned when no record exists for a path
	ErrNotFound = errors.New("not found")
)

// PendingPurge is a chunk ID whose vector-store deletion has been recorded
// but not yet confirmed. Rows survive process restarts so a failed purge is
// never silently lost.
type PendingPurge struct {
	ChunkID    string
	Path       string
	RecordedAt time.Time
}

// Tracker owns the durable record of what the sync engine has already
// processed and decides, per filesystem event, whether work is required.
//
// Every mutation is atomic with respect to concurrent readers: a reader never
// observes a fingerprint without its matching chunk IDs.
type Tracker interface {
	// Lookup returns the record for a normalized path, or ErrNotFound
	Lookup(ctx context.Context, path string) (*types.TrackedFile, error)

	// HasChanged reports whether the path needs (re-)indexing: true when no
	// record exists, the entry is not in indexed status, or the recorded
	// fingerprint differs from candidate
	HasChanged(ctx context.Context, path, candidate string) (bool, error)

	// RecordSuccess atomically replaces the entry's fingerprint, chunk IDs
	// and stat info, setting status to indexed
	RecordSuccess(ctx context.Context, path, fingerprint string, sizeBytes int64, modTime time.Time, chunkIDs []string) error

	// RecordFailure marks the path failed with a diagnostic reason, leaving
	// the previous fingerprint and chunk IDs untouched. Creates the entry if
	// the path has never been indexed.
	RecordFailure(ctx context.Context, path, reason string) error

	// RecordDeletion removes the entry and returns the chunk IDs that must
	// now be purged from the vector store. The IDs are simultaneously written
	// to the pending-purge table; the caller confirms the purge with
	// ResolvePurge once the store delete succeeded.
	RecordDeletion(ctx context.Context, path string) ([]string, error)

	// RecordPurges enqueues chunk IDs for vector-store deletion without
	// touching the file entry. Used for chunks superseded by a re-index,
	// where the file itself still exists.
	RecordPurges(ctx context.Context, path string, chunkIDs []string) error

	// ResolvePurge clears pending-purge rows for chunk IDs whose vector-store
	// deletion has been confirmed
	ResolvePurge(ctx context.Context, chunkIDs []string) error

	// ListPendingPurges returns all unconfirmed deletions, oldest first
	ListPendingPurges(ctx context.Context) ([]PendingPurge, error)

	// ListFiles returns every tracked file, ordered by path
	ListFiles(ctx context.Context) ([]*types.TrackedFile, error)

	Close() error
}
