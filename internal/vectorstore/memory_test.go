package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/sechaba/ragwatch/pkg/types"
)

func TestMemoryStoreUpsertAndQuery(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.EnsureCollection(ctx, 3))

	chunks := []types.Chunk{
		types.NewChunk("/docs/a.txt", 0, "about cats"),
		types.NewChunk("/docs/b.txt", 0, "about dogs"),
	}
	vectors := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
	}
	require.NoError(t, store.Upsert(ctx, chunks, vectors))

	results, err := store.Query(ctx, []float32{0.9, 0.1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "/docs/a.txt", results[0].SourcePath)
	assert.Equal(t, "about cats", results[0].Text)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestMemoryStoreUpsertOverwrites(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	chunk := types.NewChunk("/docs/a.txt", 0, "old text")
	require.NoError(t, store.Upsert(ctx, []types.Chunk{chunk}, [][]float32{{1, 0}}))

	updated := types.NewChunk("/docs/a.txt", 0, "new text")
	require.NoError(t, store.Upsert(ctx, []types.Chunk{updated}, [][]float32{{0, 1}}))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	results, err := store.Query(ctx, []float32{0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "new text", results[0].Text)
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	chunks := []types.Chunk{
		types.NewChunk("/docs/a.txt", 0, "first"),
		types.NewChunk("/docs/a.txt", 1, "second"),
	}
	require.NoError(t, store.Upsert(ctx, chunks, [][]float32{{1, 0}, {0, 1}}))

	require.NoError(t, store.Delete(ctx, []string{chunks[0].ID}))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	// Deleting unknown IDs is a no-op
	require.NoError(t, store.Delete(ctx, []string{"00000000-0000-0000-0000-000000000000"}))
}

func TestMemoryStoreQueryLimit(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		chunk := types.NewChunk("/docs/a.txt", i, "text")
		require.NoError(t, store.Upsert(ctx, []types.Chunk{chunk}, [][]float32{{float32(i), 1}}))
	}

	results, err := store.Query(ctx, []float32{1, 1}, 3)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestMemoryStoreVectorCountMismatch(t *testing.T) {
	store := NewMemoryStore()

	chunk := types.NewChunk("/docs/a.txt", 0, "text")
	err := store.Upsert(context.Background(), []types.Chunk{chunk}, nil)

	var se *types.StoreError
	require.ErrorAs(t, err, &se)
	assert.False(t, se.Transient)
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float32
	}{
		{name: "identical", a: []float32{1, 2}, b: []float32{1, 2}, want: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: -1},
		{name: "length mismatch", a: []float32{1}, b: []float32{1, 0}, want: 0},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 0}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, cosineSimilarity(tt.a, tt.b), 1e-6)
		})
	}
}

func TestIsTransientCode(t *testing.T) {
	assert.True(t, isTransientCode(codes.Unavailable))
	assert.True(t, isTransientCode(codes.DeadlineExceeded))
	assert.False(t, isTransientCode(codes.InvalidArgument))
	assert.False(t, isTransientCode(codes.NotFound))
}

func TestWrapStoreError(t *testing.T) {
	err := wrapStoreError("upsert", status.Error(codes.Unavailable, "connection refused"))
	assert.True(t, types.IsTransientStoreError(err))

	err = wrapStoreError("upsert", status.Error(codes.InvalidArgument, "bad vector"))
	assert.False(t, types.IsTransientStoreError(err))
}
