// Package tracker provides SQLite-based persistence of sync state.
//
// The tracker is the single durable record of what the sync engine has already
// processed: per-path content fingerprints, index status, and the vector-store
// chunk IDs derived from each file. It survives process restarts so relaunching
// never re-embeds unchanged files.
//
// # Tables
//
//   - files: one row per path (fingerprint, status, chunk_ids, timestamps)
//   - pending_purges: recorded-but-unconfirmed vector-store deletions
//   - schema_version: applied migrations
//
// # Atomicity
//
// RecordSuccess is a single-statement upsert: concurrent readers see either
// the old (fingerprint, chunk_ids) pair or the new one, never a mix.
// RecordDeletion runs in a transaction that moves the file's chunk IDs into
// pending_purges before dropping the row, so a crash or failed store purge
// leaves a durable to-do instead of a silently orphaned vector entry.
//
// # Basic Usage
//
//	tr, err := tracker.NewSQLiteTracker("~/.ragwatch/index.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tr.Close()
//
//	changed, _ := tr.HasChanged(ctx, path, fingerprint)
//	if !changed {
//	    return // up to date
//	}
//
// # Build Tags
//
// Two SQLite drivers are supported:
//
//   - default: modernc.org/sqlite (pure Go, CGO_ENABLED=0)
//   - cgo_sqlite tag: github.com/mattn/go-sqlite3 (CGO)
package tracker
