package vectorstore

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/sechaba/ragwatch/pkg/types"
)

// MemoryStore is an in-memory Store using exact cosine similarity.
// It backs tests and API-key-free runs where no Qdrant instance exists.
type MemoryStore struct {
	mu        sync.RWMutex
	dimension int
	entries   map[string]memoryEntry
}

type memoryEntry struct {
	chunk  types.Chunk
	vector []float32
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
	}
}

func (s *MemoryStore) EnsureCollection(ctx context.Context, dimension int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	return nil
}

func (s *MemoryStore) Upsert(ctx context.Context, chunks []types.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return &types.StoreError{Op: "upsert", Err: errVectorCountMismatch}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, chunk := range chunks {
		vec := make([]float32, len(vectors[i]))
		copy(vec, vectors[i])
		s.entries[chunk.ID] = memoryEntry{chunk: chunk, vector: vec}
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, chunkIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range chunkIDs {
		delete(s.entries, id)
	}
	return nil
}

func (s *MemoryStore) Query(ctx context.Context, vector []float32, limit int) ([]Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]Result, 0, len(s.entries))
	for _, entry := range s.entries {
		results = append(results, Result{
			ChunkID:    entry.chunk.ID,
			SourcePath: entry.chunk.SourcePath,
			ChunkIndex: entry.chunk.Index,
			Text:       entry.chunk.Text,
			Score:      cosineSimilarity(vector, entry.vector),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *MemoryStore) Count(ctx context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.entries)), nil
}

func (s *MemoryStore) Close() error {
	return nil
}

var errVectorCountMismatch = errors.New("chunk and vector counts differ")

// cosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched lengths and zero vectors score zero.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
