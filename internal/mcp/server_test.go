package mcp

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sechaba/ragwatch/internal/chunker"
	"github.com/sechaba/ragwatch/internal/embedder"
	"github.com/sechaba/ragwatch/internal/extractor"
	"github.com/sechaba/ragwatch/internal/retriever"
	"github.com/sechaba/ragwatch/internal/syncer"
	"github.com/sechaba/ragwatch/internal/tracker"
	"github.com/sechaba/ragwatch/internal/vectorstore"
	"github.com/sechaba/ragwatch/pkg/types"
)

func setupServer(t *testing.T) (*Server, vectorstore.Store, tracker.Tracker, embedder.Embedder) {
	t.Helper()

	tr, err := tracker.NewSQLiteTracker(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = tr.Close() })

	emb, err := embedder.NewLocalProvider(nil)
	require.NoError(t, err)

	store := vectorstore.NewMemoryStore()
	logger := log.New(io.Discard)
	eng := syncer.New(tr, extractor.New(0), chunker.New(0, 0), emb, store,
		syncer.Config{}, logger)

	return NewServer(retriever.New(emb, store, tr), tr, eng, logger), store, tr, emb
}

func seedDocument(t *testing.T, store vectorstore.Store, tr tracker.Tracker, emb embedder.Embedder, path, text string) {
	t.Helper()
	ctx := context.Background()

	chunk := types.NewChunk(path, 0, text)
	e, err := emb.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: text})
	require.NoError(t, err)
	require.NoError(t, store.Upsert(ctx, []types.Chunk{chunk}, [][]float32{e.Vector}))
	require.NoError(t, tr.RecordSuccess(ctx, path, "fp", int64(len(text)), time.Now(), []string{chunk.ID}))
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()

	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &decoded))
	return decoded
}

func TestSearchDocumentsTool(t *testing.T) {
	srv, store, tr, emb := setupServer(t)
	seedDocument(t, store, tr, emb, "/docs/notes.md", "goroutines are cheap")

	result, err := srv.handleSearchDocuments(context.Background(), callRequest(map[string]interface{}{
		"query": "goroutines are cheap",
	}))
	require.NoError(t, err)

	decoded := resultText(t, result)
	results, ok := decoded["results"].([]interface{})
	require.True(t, ok)
	require.Len(t, results, 1)

	first := results[0].(map[string]interface{})
	assert.Equal(t, "/docs/notes.md", first["path"])
	assert.Equal(t, false, first["stale"])
	assert.NotEmpty(t, first["text"])
}

func TestSearchDocumentsRequiresQuery(t *testing.T) {
	srv, _, _, _ := setupServer(t)

	_, err := srv.handleSearchDocuments(context.Background(), callRequest(map[string]interface{}{}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeEmptyQuery, mcpErr.Code)
}

func TestSearchDocumentsRejectsBadLimit(t *testing.T) {
	srv, _, _, _ := setupServer(t)

	_, err := srv.handleSearchDocuments(context.Background(), callRequest(map[string]interface{}{
		"query": "anything",
		"limit": float64(500),
	}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestIndexStatusTool(t *testing.T) {
	srv, store, tr, emb := setupServer(t)
	ctx := context.Background()

	seedDocument(t, store, tr, emb, "/docs/good.md", "fine content")
	require.NoError(t, tr.RecordFailure(ctx, "/docs/bad.md", "extract: unreadable"))

	result, err := srv.handleIndexStatus(ctx, callRequest(map[string]interface{}{}))
	require.NoError(t, err)

	decoded := resultText(t, result)
	assert.Equal(t, float64(2), decoded["files_total"])
	assert.Equal(t, float64(1), decoded["files_indexed"])
	assert.Equal(t, float64(1), decoded["files_failed"])
	assert.NotContains(t, decoded, "files")
}

func TestIndexStatusIncludesFiles(t *testing.T) {
	srv, _, tr, _ := setupServer(t)
	ctx := context.Background()

	require.NoError(t, tr.RecordFailure(ctx, "/docs/bad.md", "extract: unreadable"))

	result, err := srv.handleIndexStatus(ctx, callRequest(map[string]interface{}{
		"include_files": true,
	}))
	require.NoError(t, err)

	decoded := resultText(t, result)
	files, ok := decoded["files"].([]interface{})
	require.True(t, ok)
	require.Len(t, files, 1)

	entry := files[0].(map[string]interface{})
	assert.Equal(t, "/docs/bad.md", entry["path"])
	assert.Equal(t, "failed", entry["status"])
	assert.Equal(t, "extract: unreadable", entry["fail_reason"])
}

func TestPurgePendingTool(t *testing.T) {
	srv, store, tr, emb := setupServer(t)
	ctx := context.Background()

	// A chunk whose delete never completed: tombstone exists, vector exists
	seedDocument(t, store, tr, emb, "/docs/doomed.md", "to be removed")
	ids, err := tr.RecordDeletion(ctx, "/docs/doomed.md")
	require.NoError(t, err)
	require.NotEmpty(t, ids)

	result, err := srv.handlePurgePending(ctx, callRequest(map[string]interface{}{}))
	require.NoError(t, err)

	decoded := resultText(t, result)
	assert.Equal(t, float64(len(ids)), decoded["purged"])

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	pending, err := tr.ListPendingPurges(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestServerRegistersTools(t *testing.T) {
	srv, _, _, _ := setupServer(t)
	assert.NotNil(t, srv.mcp)
	assert.NotNil(t, srv.retriever)
	assert.NotNil(t, srv.tracker)
	assert.NotNil(t, srv.engine)
}
