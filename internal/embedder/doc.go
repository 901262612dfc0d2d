// Package embedder generates vector embeddings for document chunks and
// search queries.
//
// # Providers
//
// Three providers implement the Embedder interface:
//   - gemini: Gemini API (text-embedding-004, 768 dimensions)
//   - openai: OpenAI API (text-embedding-3-small, 1536 dimensions)
//   - local: deterministic hash vectors (384 dimensions, no API key)
//
// The local provider produces no semantic signal and exists for offline
// runs and tests.
//
// # Basic Usage
//
//	emb, err := embedder.New(ctx, embedder.Config{
//	    Provider:  "gemini",
//	    CacheSize: 10000,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer emb.Close()
//
//	resp, err := emb.GenerateBatch(ctx, embedder.BatchEmbeddingRequest{
//	    Texts: []string{"first chunk", "second chunk"},
//	})
//
// # Caching
//
// Embeddings are cached in memory keyed by the SHA-256 hash of their text,
// with LRU eviction. Re-indexing a file whose chunks mostly survived a small
// edit only pays for the chunks that changed.
//
// # Retry and Error Classification
//
// API calls retry with exponential backoff. Failures are classified so the
// caller can distinguish a rate limit (retryable, surfaced as such when
// retries run out) from invalid input (never retried) and generic service
// errors. Classification uses the provider SDK's typed errors.
package embedder
