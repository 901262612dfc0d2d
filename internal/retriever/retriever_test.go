package retriever

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sechaba/ragwatch/internal/embedder"
	"github.com/sechaba/ragwatch/internal/tracker"
	"github.com/sechaba/ragwatch/internal/vectorstore"
	"github.com/sechaba/ragwatch/pkg/types"
)

func setupRetriever(t *testing.T) (*Retriever, vectorstore.Store, tracker.Tracker, embedder.Embedder) {
	t.Helper()

	tr, err := tracker.NewSQLiteTracker(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = tr.Close() })

	emb, err := embedder.NewLocalProvider(nil)
	require.NoError(t, err)

	store := vectorstore.NewMemoryStore()
	return New(emb, store, tr), store, tr, emb
}

// seed indexes one chunk of text under path via the store and tracker
func seed(t *testing.T, store vectorstore.Store, tr tracker.Tracker, emb embedder.Embedder, path, text string) types.Chunk {
	t.Helper()
	ctx := context.Background()

	chunk := types.NewChunk(path, 0, text)
	e, err := emb.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: text})
	require.NoError(t, err)
	require.NoError(t, store.Upsert(ctx, []types.Chunk{chunk}, [][]float32{e.Vector}))
	require.NoError(t, tr.RecordSuccess(ctx, path, "fp-"+path, int64(len(text)), time.Now(), []string{chunk.ID}))
	return chunk
}

func TestSearchReturnsNearestChunk(t *testing.T) {
	r, store, tr, emb := setupRetriever(t)
	ctx := context.Background()

	seed(t, store, tr, emb, "/docs/a.txt", "notes about gardening")
	target := seed(t, store, tr, emb, "/docs/b.txt", "the exact query text")

	resp, err := r.Search(ctx, SearchRequest{Query: "the exact query text", TopK: 1})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)

	// The local provider is deterministic, so identical text wins outright
	assert.Equal(t, target.ID, resp.Results[0].ChunkID)
	assert.Equal(t, "/docs/b.txt", resp.Results[0].SourcePath)
	assert.False(t, resp.Results[0].Stale)
	assert.InDelta(t, 1.0, resp.Results[0].Score, 1e-5)
}

func TestSearchEmptyQuery(t *testing.T) {
	r, _, _, _ := setupRetriever(t)

	_, err := r.Search(context.Background(), SearchRequest{Query: ""})
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestSearchEmptyStore(t *testing.T) {
	r, _, _, _ := setupRetriever(t)

	resp, err := r.Search(context.Background(), SearchRequest{Query: "anything"})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
}

func TestSearchFlagsFailedSource(t *testing.T) {
	r, store, tr, emb := setupRetriever(t)
	ctx := context.Background()

	seed(t, store, tr, emb, "/docs/flaky.txt", "content that later failed")
	require.NoError(t, tr.RecordFailure(ctx, "/docs/flaky.txt", "extract: unreadable"))

	resp, err := r.Search(ctx, SearchRequest{Query: "content that later failed"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
	assert.True(t, resp.Results[0].Stale)
}

func TestSearchFlagsUntrackedSource(t *testing.T) {
	r, store, _, emb := setupRetriever(t)
	ctx := context.Background()

	// Vector exists but no tracker record, as after an interrupted delete
	chunk := types.NewChunk("/docs/ghost.txt", 0, "orphaned text")
	e, err := emb.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: "orphaned text"})
	require.NoError(t, err)
	require.NoError(t, store.Upsert(ctx, []types.Chunk{chunk}, [][]float32{e.Vector}))

	resp, err := r.Search(ctx, SearchRequest{Query: "orphaned text"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
	assert.True(t, resp.Results[0].Stale)
}

func TestSearchTopKClamping(t *testing.T) {
	r, store, tr, emb := setupRetriever(t)
	ctx := context.Background()

	for _, path := range []string{"/a.txt", "/b.txt", "/c.txt"} {
		seed(t, store, tr, emb, path, "shared subject matter "+path)
	}

	resp, err := r.Search(ctx, SearchRequest{Query: "shared subject matter", TopK: 2})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 2)

	// Zero TopK falls back to the default
	resp, err = r.Search(ctx, SearchRequest{Query: "shared subject matter"})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 3)
}

func TestSearchCacheHit(t *testing.T) {
	r, store, tr, emb := setupRetriever(t)
	ctx := context.Background()

	seed(t, store, tr, emb, "/docs/a.txt", "cached content")

	req := SearchRequest{Query: "cached content", UseCache: true}
	first, err := r.Search(ctx, req)
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	second, err := r.Search(ctx, req)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Results, second.Results)

	// Mutating the cached copy must not poison later hits
	second.Results[0].Text = "tampered"
	third, err := r.Search(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "cached content", third.Results[0].Text)
}

func TestSearchCacheExpiry(t *testing.T) {
	r, store, tr, emb := setupRetriever(t)
	ctx := context.Background()

	seed(t, store, tr, emb, "/docs/a.txt", "short lived")

	req := SearchRequest{Query: "short lived", UseCache: true, CacheTTL: 10 * time.Millisecond}
	_, err := r.Search(ctx, req)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	resp, err := r.Search(ctx, req)
	require.NoError(t, err)
	assert.False(t, resp.CacheHit)
}

func TestClearCache(t *testing.T) {
	r, store, tr, emb := setupRetriever(t)
	ctx := context.Background()

	seed(t, store, tr, emb, "/docs/a.txt", "clearable")

	req := SearchRequest{Query: "clearable", UseCache: true}
	_, err := r.Search(ctx, req)
	require.NoError(t, err)

	r.ClearCache()

	resp, err := r.Search(ctx, req)
	require.NoError(t, err)
	assert.False(t, resp.CacheHit)
}
