package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// LocalProvider generates deterministic embeddings from content hashes.
// Vectors carry no semantic signal; the provider exists so indexing, change
// detection, and retrieval plumbing can run offline and in tests without an
// API key.
type LocalProvider struct {
	model string
	cache *Cache
}

// NewLocalProvider creates a new local embedder
func NewLocalProvider(cache *Cache) (*LocalProvider, error) {
	return &LocalProvider{
		model: "local-hash",
		cache: cache,
	}, nil
}

func (l *LocalProvider) GenerateEmbedding(ctx context.Context, req EmbeddingRequest) (*Embedding, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	// Check cache
	hash := ComputeHash(req.Text)
	if l.cache != nil {
		if emb, ok := l.cache.Get(hash); ok {
			return emb, nil
		}
	}

	emb := &Embedding{
		Vector:    hashVector(req.Text, LocalDimension),
		Dimension: LocalDimension,
		Provider:  ProviderLocal,
		Model:     l.model,
		Hash:      hash,
	}

	if l.cache != nil {
		l.cache.Set(hash, emb)
	}

	return emb, nil
}

func (l *LocalProvider) GenerateBatch(ctx context.Context, req BatchEmbeddingRequest) (*BatchEmbeddingResponse, error) {
	if err := ValidateBatchRequest(req); err != nil {
		return nil, err
	}

	embeddings := make([]*Embedding, len(req.Texts))
	for i, text := range req.Texts {
		emb, err := l.GenerateEmbedding(ctx, EmbeddingRequest{Text: text, Model: req.Model})
		if err != nil {
			return nil, fmt.Errorf("embedding text %d: %w", i, err)
		}
		embeddings[i] = emb
	}

	return &BatchEmbeddingResponse{
		Embeddings: embeddings,
		Provider:   ProviderLocal,
		Model:      l.model,
	}, nil
}

// hashVector fills a unit vector of the given dimension by chaining SHA-256
// over the text. Identical text always yields an identical vector.
func hashVector(text string, dim int) []float32 {
	vector := make([]float32, dim)
	digest := sha256.Sum256([]byte(text))

	for i := 0; i < dim; {
		for j := 0; j < len(digest) && i < dim; j, i = j+1, i+1 {
			vector[i] = float32(digest[j])/127.5 - 1.0
		}
		var counter [8]byte
		binary.BigEndian.PutUint64(counter[:], uint64(i))
		digest = sha256.Sum256(append(digest[:], counter[:]...))
	}

	return NormalizeVector(vector)
}

func (l *LocalProvider) Dimension() int {
	return LocalDimension
}

func (l *LocalProvider) Provider() string {
	return ProviderLocal
}

func (l *LocalProvider) Model() string {
	return l.model
}

func (l *LocalProvider) Close() error {
	return nil
}
