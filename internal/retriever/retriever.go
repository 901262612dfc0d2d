package retriever

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/sechaba/ragwatch/internal/embedder"
	"github.com/sechaba/ragwatch/internal/tracker"
	"github.com/sechaba/ragwatch/internal/vectorstore"
	"github.com/sechaba/ragwatch/pkg/types"
)

const (
	// DefaultTopK is the number of contexts returned when the request
	// does not say otherwise
	DefaultTopK = 5

	// MaxTopK bounds a single retrieval
	MaxTopK = 50

	cacheSize       = 256
	defaultCacheTTL = 5 * time.Minute
)

var (
	// ErrEmptyQuery is returned for blank query text
	ErrEmptyQuery = errors.New("query text is empty")
)

// SearchRequest contains parameters for one retrieval
type SearchRequest struct {
	Query    string
	TopK     int
	UseCache bool
	CacheTTL time.Duration
}

// SearchResult is one retrieved context with its index state
type SearchResult struct {
	ChunkID    string
	SourcePath string
	ChunkIndex int
	Text       string
	Score      float32

	// Stale is true when the source file's tracker entry is not in indexed
	// status, meaning the text may not reflect the file's current content
	Stale bool
}

// SearchResponse contains ranked results and retrieval metadata
type SearchResponse struct {
	Results  []SearchResult
	Duration time.Duration
	CacheHit bool
}

type cacheEntry struct {
	response  *SearchResponse
	expiresAt time.Time
}

// Retriever answers queries against the vector store, annotating each hit
// with freshness information from the tracker
type Retriever struct {
	embedder embedder.Embedder
	store    vectorstore.Store
	tracker  tracker.Tracker

	cache   *lru.Cache[[32]byte, *cacheEntry]
	cacheMu sync.Mutex
}

// New creates a Retriever over the given embedder, store, and tracker
func New(emb embedder.Embedder, store vectorstore.Store, tr tracker.Tracker) *Retriever {
	cache, err := lru.New[[32]byte, *cacheEntry](cacheSize)
	if err != nil {
		panic(fmt.Sprintf("failed to create retrieval cache: %v", err))
	}
	return &Retriever{
		embedder: emb,
		store:    store,
		tracker:  tr,
		cache:    cache,
	}
}

// Search embeds the query, retrieves the top-k nearest chunks, and flags any
// whose source file is not currently indexed
func (r *Retriever) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	start := time.Now()

	if req.Query == "" {
		return nil, ErrEmptyQuery
	}
	if req.TopK <= 0 {
		req.TopK = DefaultTopK
	}
	if req.TopK > MaxTopK {
		req.TopK = MaxTopK
	}

	key := cacheKey(req)
	if req.UseCache {
		if cached := r.checkCache(key); cached != nil {
			cached.CacheHit = true
			cached.Duration = time.Since(start)
			return cached, nil
		}
	}

	emb, err := r.embedder.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: req.Query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	hits, err := r.store.Query(ctx, emb.Vector, req.TopK)
	if err != nil {
		return nil, fmt.Errorf("vector query failed: %w", err)
	}

	results, err := r.annotate(ctx, hits)
	if err != nil {
		return nil, err
	}

	resp := &SearchResponse{
		Results:  results,
		Duration: time.Since(start),
	}
	if req.UseCache && len(results) > 0 {
		r.storeInCache(key, resp, req.CacheTTL)
	}
	return resp, nil
}

// annotate marks results whose source file is failed or no longer tracked.
// Tracker state is consulted once per distinct path.
func (r *Retriever) annotate(ctx context.Context, hits []vectorstore.Result) ([]SearchResult, error) {
	staleByPath := make(map[string]bool, len(hits))
	results := make([]SearchResult, 0, len(hits))
	for _, hit := range hits {
		stale, seen := staleByPath[hit.SourcePath]
		if !seen {
			rec, err := r.tracker.Lookup(ctx, hit.SourcePath)
			switch {
			case errors.Is(err, tracker.ErrNotFound):
				stale = true
			case err != nil:
				return nil, fmt.Errorf("tracker lookup for %s: %w", hit.SourcePath, err)
			default:
				stale = rec.Status != types.StatusIndexed
			}
			staleByPath[hit.SourcePath] = stale
		}
		results = append(results, SearchResult{
			ChunkID:    hit.ChunkID,
			SourcePath: hit.SourcePath,
			ChunkIndex: hit.ChunkIndex,
			Text:       hit.Text,
			Score:      hit.Score,
			Stale:      stale,
		})
	}
	return results, nil
}

func cacheKey(req SearchRequest) [32]byte {
	return sha256.Sum256(fmt.Appendf(nil, "%s|%d", req.Query, req.TopK))
}

func (r *Retriever) checkCache(key [32]byte) *SearchResponse {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	entry, ok := r.cache.Get(key)
	if !ok {
		return nil
	}
	if time.Now().After(entry.expiresAt) {
		r.cache.Remove(key)
		return nil
	}

	// Copy so callers cannot mutate the cached results
	cp := *entry.response
	cp.Results = make([]SearchResult, len(entry.response.Results))
	copy(cp.Results, entry.response.Results)
	return &cp
}

func (r *Retriever) storeInCache(key [32]byte, resp *SearchResponse, ttl time.Duration) {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()
	r.cache.Add(key, &cacheEntry{
		response:  resp,
		expiresAt: time.Now().Add(ttl),
	})
}

// ClearCache drops all cached responses. Call after index mutations when
// cached staleness flags must not outlive the change.
func (r *Retriever) ClearCache() {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()
	r.cache.Purge()
}
