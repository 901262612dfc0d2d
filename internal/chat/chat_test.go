package chat

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sechaba/ragwatch/internal/embedder"
	"github.com/sechaba/ragwatch/internal/retriever"
	"github.com/sechaba/ragwatch/internal/tracker"
	"github.com/sechaba/ragwatch/internal/vectorstore"
	"github.com/sechaba/ragwatch/pkg/types"
)

// stubGenerator records prompts and returns a canned answer
type stubGenerator struct {
	prompts []string
	answer  string
	err     error
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

func (s *stubGenerator) Close() error { return nil }

func setupSession(t *testing.T, gen Generator) (*Session, vectorstore.Store, tracker.Tracker, embedder.Embedder) {
	t.Helper()

	tr, err := tracker.NewSQLiteTracker(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = tr.Close() })

	emb, err := embedder.NewLocalProvider(nil)
	require.NoError(t, err)

	store := vectorstore.NewMemoryStore()
	r := retriever.New(emb, store, tr)
	return NewSession(r, gen, Config{}, log.New(io.Discard)), store, tr, emb
}

func seedChunk(t *testing.T, store vectorstore.Store, tr tracker.Tracker, emb embedder.Embedder, path, text string) {
	t.Helper()
	ctx := context.Background()

	chunk := types.NewChunk(path, 0, text)
	e, err := emb.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: text})
	require.NoError(t, err)
	require.NoError(t, store.Upsert(ctx, []types.Chunk{chunk}, [][]float32{e.Vector}))
	require.NoError(t, tr.RecordSuccess(ctx, path, "fp", int64(len(text)), time.Now(), []string{chunk.ID}))
}

func TestAskGroundsPromptInRetrievedContext(t *testing.T) {
	gen := &stubGenerator{answer: "grounded answer"}
	sess, store, tr, emb := setupSession(t, gen)

	seedChunk(t, store, tr, emb, "/notes/go.md", "goroutines are cheap threads")

	answer, stale, err := sess.Ask(context.Background(), "what are goroutines")
	require.NoError(t, err)
	assert.Equal(t, "grounded answer", answer)
	assert.Empty(t, stale)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "goroutines are cheap threads")
	assert.Contains(t, gen.prompts[0], "QUERY: what are goroutines")
}

func TestAskEmptyIndexSendsBareQuery(t *testing.T) {
	gen := &stubGenerator{answer: "unguided answer"}
	sess, _, _, _ := setupSession(t, gen)

	_, _, err := sess.Ask(context.Background(), "just a question")
	require.NoError(t, err)

	require.Len(t, gen.prompts, 1)
	assert.Equal(t, "just a question", gen.prompts[0])
}

func TestAskReportsStaleSources(t *testing.T) {
	gen := &stubGenerator{answer: "answer"}
	sess, store, tr, emb := setupSession(t, gen)
	ctx := context.Background()

	seedChunk(t, store, tr, emb, "/notes/old.md", "possibly outdated material")
	require.NoError(t, tr.RecordFailure(ctx, "/notes/old.md", "extract failed"))

	_, stale, err := sess.Ask(ctx, "possibly outdated material")
	require.NoError(t, err)
	assert.Equal(t, []string{"/notes/old.md"}, stale)
}

func TestRunExitsOnCommand(t *testing.T) {
	gen := &stubGenerator{answer: "hi"}
	sess, _, _, _ := setupSession(t, gen)

	var out strings.Builder
	in := strings.NewReader("exit\n")
	require.NoError(t, sess.Run(context.Background(), in, &out))
	assert.Empty(t, gen.prompts)
}

func TestRunAnswersThenEOF(t *testing.T) {
	gen := &stubGenerator{answer: "the answer"}
	sess, store, tr, emb := setupSession(t, gen)

	seedChunk(t, store, tr, emb, "/notes/a.md", "relevant text")

	var out strings.Builder
	in := strings.NewReader("a question\n")
	require.NoError(t, sess.Run(context.Background(), in, &out))

	assert.Len(t, gen.prompts, 1)
	assert.Contains(t, out.String(), "the answer")
}

func TestRunContinuesAfterGenerationError(t *testing.T) {
	gen := &stubGenerator{err: errors.New("model offline")}
	sess, _, _, _ := setupSession(t, gen)

	var out strings.Builder
	in := strings.NewReader("first\nquit\n")
	require.NoError(t, sess.Run(context.Background(), in, &out))
	assert.Contains(t, out.String(), "model offline")
}

func TestBuildPromptOrdering(t *testing.T) {
	contexts := []retriever.SearchResult{
		{Text: "first chunk"},
		{Text: "second chunk"},
	}
	prompt := BuildPrompt("the question", contexts)

	firstIdx := strings.Index(prompt, "first chunk")
	secondIdx := strings.Index(prompt, "second chunk")
	queryIdx := strings.Index(prompt, "QUERY: the question")
	require.True(t, firstIdx >= 0 && secondIdx >= 0 && queryIdx >= 0)
	assert.Less(t, firstIdx, secondIdx)
	assert.Less(t, secondIdx, queryIdx)
}
