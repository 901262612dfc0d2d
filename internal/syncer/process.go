package syncer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sechaba/ragwatch/internal/embedder"
	"github.com/sechaba/ragwatch/internal/tracker"
	"github.com/sechaba/ragwatch/pkg/types"
)

const (
	// purgeAttempts bounds retries of a vector-store delete before leaving
	// the tombstone for a later PurgePending pass
	purgeAttempts = 3

	purgeBackoff = 200 * time.Millisecond
)

// Fingerprint computes the content fingerprint used for change detection:
// the hex SHA-256 of the file bytes.
func Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// processUpsert brings the index up to date with the file's current content.
// The ordering matters for crash safety: superseded chunk IDs are recorded
// as pending purges before the tracker entry is replaced, so a crash between
// the two leaves tombstones rather than orphaned vectors.
func (e *Engine) processUpsert(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// The file vanished between the event and now; treat as a delete
			return e.processDelete(ctx, path)
		}
		return e.recordFailure(ctx, path, fmt.Sprintf("stat: %v", err))
	}
	if info.IsDir() {
		return nil
	}
	if info.Size() > e.extractor.MaxFileSize() {
		e.stats.Failed.Add(1)
		return e.tracker.RecordFailure(ctx, path,
			fmt.Sprintf("file too large: %d bytes", info.Size()))
	}

	fingerprint, err := Fingerprint(path)
	if err != nil {
		return e.recordFailure(ctx, path, fmt.Sprintf("fingerprint: %v", err))
	}

	changed, err := e.tracker.HasChanged(ctx, path, fingerprint)
	if err != nil {
		return fmt.Errorf("change check for %s: %w", path, err)
	}
	if !changed {
		e.stats.Skipped.Add(1)
		e.logger.Debug("unchanged, skipping", "path", path)
		return nil
	}

	// Old chunk IDs are needed to compute which chunks this re-index
	// supersedes. A missing record just means nothing to supersede.
	var oldIDs []string
	if prev, err := e.tracker.Lookup(ctx, path); err == nil {
		oldIDs = prev.ChunkIDs
	} else if !errors.Is(err, tracker.ErrNotFound) {
		return fmt.Errorf("lookup %s: %w", path, err)
	}

	text, err := e.extractor.Extract(path)
	if err != nil {
		return e.recordFailure(ctx, path, fmt.Sprintf("extract: %v", err))
	}

	chunks := e.chunker.Split(path, text)
	if len(chunks) == 0 {
		// Empty or whitespace-only content indexes successfully with zero
		// chunks; any previous chunks are superseded.
		return e.commit(ctx, path, fingerprint, info, nil, oldIDs)
	}

	vectors, err := e.embedChunks(ctx, chunks)
	if err != nil {
		return e.recordFailure(ctx, path, err.Error())
	}

	newIDs := make([]string, len(chunks))
	newSet := make(map[string]struct{}, len(chunks))
	for i, c := range chunks {
		newIDs[i] = c.ID
		newSet[c.ID] = struct{}{}
	}
	stale := make([]string, 0, len(oldIDs))
	for _, id := range oldIDs {
		if _, ok := newSet[id]; !ok {
			stale = append(stale, id)
		}
	}

	// Tombstone the superseded IDs before the upsert so they are never lost
	if len(stale) > 0 {
		if err := e.tracker.RecordPurges(ctx, path, stale); err != nil {
			return fmt.Errorf("record purges for %s: %w", path, err)
		}
	}

	if err := e.store.Upsert(ctx, chunks, vectors); err != nil {
		// Roll back what this attempt added. IDs shared with the previous
		// successful index stay; the tracker still points at them.
		added := make([]string, 0, len(newIDs))
		oldSet := make(map[string]struct{}, len(oldIDs))
		for _, id := range oldIDs {
			oldSet[id] = struct{}{}
		}
		for _, id := range newIDs {
			if _, ok := oldSet[id]; !ok {
				added = append(added, id)
			}
		}
		if len(added) > 0 {
			if derr := e.store.Delete(ctx, added); derr != nil {
				e.logger.Warn("rollback delete failed", "path", path, "error", derr)
			}
		}
		return e.recordFailure(ctx, path, fmt.Sprintf("store upsert: %v", err))
	}

	if err := e.tracker.RecordSuccess(ctx, path, fingerprint, info.Size(), info.ModTime(), newIDs); err != nil {
		return fmt.Errorf("record success for %s: %w", path, err)
	}
	e.stats.Indexed.Add(1)
	e.logger.Info("indexed", "path", path, "chunks", len(chunks))

	if len(stale) > 0 {
		e.purgeChunks(ctx, path, stale)
	}
	return nil
}

// commit records an index result that produced no chunks, purging everything
// the file previously contributed
func (e *Engine) commit(ctx context.Context, path, fingerprint string, info os.FileInfo, chunkIDs, oldIDs []string) error {
	if len(oldIDs) > 0 {
		if err := e.tracker.RecordPurges(ctx, path, oldIDs); err != nil {
			return fmt.Errorf("record purges for %s: %w", path, err)
		}
	}
	if err := e.tracker.RecordSuccess(ctx, path, fingerprint, info.Size(), info.ModTime(), chunkIDs); err != nil {
		return fmt.Errorf("record success for %s: %w", path, err)
	}
	e.stats.Indexed.Add(1)
	e.logger.Info("indexed", "path", path, "chunks", len(chunkIDs))
	if len(oldIDs) > 0 {
		e.purgeChunks(ctx, path, oldIDs)
	}
	return nil
}

// processDelete removes the file's record and purges its chunks from the
// vector store. Unknown paths are a no-op.
func (e *Engine) processDelete(ctx context.Context, path string) error {
	chunkIDs, err := e.tracker.RecordDeletion(ctx, path)
	if err != nil {
		return fmt.Errorf("record deletion for %s: %w", path, err)
	}
	if chunkIDs == nil {
		return nil
	}
	e.stats.Deleted.Add(1)
	e.logger.Info("removed from index", "path", path, "chunks", len(chunkIDs))
	if len(chunkIDs) > 0 {
		e.purgeChunks(ctx, path, chunkIDs)
	}
	return nil
}

// purgeChunks deletes chunk IDs from the vector store and resolves their
// tombstones. Failures are logged, not returned: the tombstones survive and
// PurgePending retries them later.
func (e *Engine) purgeChunks(ctx context.Context, path string, chunkIDs []string) {
	if err := e.deleteWithRetry(ctx, chunkIDs); err != nil {
		e.logger.Warn("purge deferred", "path", path, "chunks", len(chunkIDs), "error", err)
		return
	}
	if err := e.tracker.ResolvePurge(ctx, chunkIDs); err != nil {
		e.logger.Warn("purge resolution failed", "path", path, "error", err)
		return
	}
	e.stats.Purged.Add(int64(len(chunkIDs)))
}

// deleteWithRetry retries the store delete on transient errors only
func (e *Engine) deleteWithRetry(ctx context.Context, chunkIDs []string) error {
	var err error
	for attempt := 0; attempt < purgeAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(purgeBackoff * time.Duration(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		err = e.store.Delete(ctx, chunkIDs)
		if err == nil {
			return nil
		}
		if !types.IsTransientStoreError(err) {
			return err
		}
	}
	return err
}

// PurgePending retries every unconfirmed vector-store deletion. Returns the
// number of chunk IDs purged.
func (e *Engine) PurgePending(ctx context.Context) (int, error) {
	pending, err := e.tracker.ListPendingPurges(ctx)
	if err != nil {
		return 0, fmt.Errorf("list pending purges: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	ids := make([]string, len(pending))
	for i, p := range pending {
		ids[i] = p.ChunkID
	}
	if err := e.deleteWithRetry(ctx, ids); err != nil {
		return 0, fmt.Errorf("purge %d chunks: %w", len(ids), err)
	}
	if err := e.tracker.ResolvePurge(ctx, ids); err != nil {
		return 0, fmt.Errorf("resolve purges: %w", err)
	}
	e.stats.Purged.Add(int64(len(ids)))
	e.logger.Info("purged pending deletions", "chunks", len(ids))
	return len(ids), nil
}

// Reconcile walks root and converges tracker, vector store, and filesystem:
// files on disk are (re-)indexed if changed, tracked files no longer on disk
// are removed, and pending purges are retried. Useful at startup to catch
// changes that happened while the watcher was not running.
func (e *Engine) Reconcile(ctx context.Context, root string) error {
	root, err := types.NormalizePath(root)
	if err != nil {
		return err
	}

	onDisk := make(map[string]struct{})
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		base := filepath.Base(path)
		if d.IsDir() {
			if path != root && base[0] == '.' {
				return filepath.SkipDir
			}
			return nil
		}
		if base[0] == '.' || !d.Type().IsRegular() {
			return nil
		}
		norm, err := types.NormalizePath(path)
		if err != nil {
			return nil
		}
		onDisk[norm] = struct{}{}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk %s: %w", root, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cap(e.sem))
	for path := range onDisk {
		g.Go(func() error {
			return e.processUpsert(gctx, path)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	tracked, err := e.tracker.ListFiles(ctx)
	if err != nil {
		return fmt.Errorf("list tracked files: %w", err)
	}
	for _, f := range tracked {
		if _, ok := onDisk[f.Path]; ok {
			continue
		}
		if err := e.processDelete(ctx, f.Path); err != nil {
			return err
		}
	}

	if _, err := e.PurgePending(ctx); err != nil {
		e.logger.Warn("pending purge retry failed", "error", err)
	}
	return nil
}

// recordFailure marks the path failed and counts it. Tracker errors are
// returned; the per-file failure itself is not.
func (e *Engine) recordFailure(ctx context.Context, path, reason string) error {
	e.stats.Failed.Add(1)
	e.logger.Warn("indexing failed", "path", path, "reason", reason)
	if err := e.tracker.RecordFailure(ctx, path, reason); err != nil {
		return fmt.Errorf("record failure for %s: %w", path, err)
	}
	return nil
}

// embedChunks embeds chunk texts in provider-sized batches, preserving order
func (e *Engine) embedChunks(ctx context.Context, chunks []types.Chunk) ([][]float32, error) {
	vectors := make([][]float32, 0, len(chunks))
	for start := 0; start < len(chunks); start += embedder.DefaultBatchSize {
		end := start + embedder.DefaultBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		texts := make([]string, end-start)
		for i, c := range chunks[start:end] {
			texts[i] = c.Text
		}
		resp, err := e.embedder.GenerateBatch(ctx, embedder.BatchEmbeddingRequest{Texts: texts})
		if err != nil {
			return nil, err
		}
		for _, emb := range resp.Embeddings {
			vectors = append(vectors, emb.Vector)
		}
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedding count mismatch: %d chunks, %d vectors", len(chunks), len(vectors))
	}
	return vectors, nil
}
