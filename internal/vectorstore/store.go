package vectorstore

import (
	"context"

	"github.com/sechaba/ragwatch/pkg/types"
)

// Result is a single vector search hit
type Result struct {
	ChunkID    string
	SourcePath string
	ChunkIndex int
	Text       string
	Score      float32
}

// Store persists chunk vectors and serves similarity queries.
// Implementations report failures as *types.StoreError so callers can tell
// transient outages from permanent rejections.
type Store interface {
	// EnsureCollection creates the backing collection if it does not exist
	EnsureCollection(ctx context.Context, dimension int) error

	// Upsert writes chunks with their vectors. Existing entries with the
	// same chunk ID are overwritten.
	Upsert(ctx context.Context, chunks []types.Chunk, vectors [][]float32) error

	// Delete removes entries by chunk ID. Missing IDs are not an error.
	Delete(ctx context.Context, chunkIDs []string) error

	// Query returns the limit nearest entries to the given vector
	Query(ctx context.Context, vector []float32, limit int) ([]Result, error)

	// Count returns the number of stored entries
	Count(ctx context.Context) (uint64, error)

	// Close releases the underlying connection
	Close() error
}
