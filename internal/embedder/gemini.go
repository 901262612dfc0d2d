package embedder

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/sechaba/ragwatch/pkg/types"
)

// GeminiProvider implements Embedder using the Gemini API
type GeminiProvider struct {
	client *genai.Client
	em     *genai.EmbeddingModel
	model  string
	cache  *Cache
}

// NewGeminiProvider creates a new Gemini embedder. An empty apiKey falls back
// to GOOGLE_API_KEY, then GEMINI_API_KEY.
func NewGeminiProvider(ctx context.Context, apiKey, model string, cache *Cache) (*GeminiProvider, error) {
	if apiKey == "" {
		apiKey = os.Getenv(EnvGoogleAPIKey)
	}
	if apiKey == "" {
		apiKey = os.Getenv(EnvGeminiAPIKey)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s or %s not set", ErrNoProviderEnabled, EnvGoogleAPIKey, EnvGeminiAPIKey)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	if model == "" {
		model = DefaultGeminiModel
	}

	return &GeminiProvider{
		client: client,
		em:     client.EmbeddingModel(model),
		model:  model,
		cache:  cache,
	}, nil
}

func (g *GeminiProvider) GenerateEmbedding(ctx context.Context, req EmbeddingRequest) (*Embedding, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	// Check cache
	hash := ComputeHash(req.Text)
	if g.cache != nil {
		if emb, ok := g.cache.Get(hash); ok {
			return emb, nil
		}
	}

	// Use batch API for consistency
	resp, err := g.GenerateBatch(ctx, BatchEmbeddingRequest{
		Texts: []string{req.Text},
		Model: req.Model,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Embeddings) == 0 {
		return nil, fmt.Errorf("%w: no embeddings returned", ErrProviderFailed)
	}

	return resp.Embeddings[0], nil
}

func (g *GeminiProvider) GenerateBatch(ctx context.Context, req BatchEmbeddingRequest) (*BatchEmbeddingResponse, error) {
	if err := ValidateBatchRequest(req); err != nil {
		return nil, err
	}

	if len(req.Texts) > MaxBatchSize {
		return nil, fmt.Errorf("%w: max %d texts allowed", ErrBatchTooLarge, MaxBatchSize)
	}

	model := req.Model
	if model == "" {
		model = g.model
	}

	config := DefaultRetryConfig()
	embeddings, err := retryWithBackoff(ctx, config, func() ([]*Embedding, error) {
		return g.callAPI(ctx, req.Texts, model)
	})
	if err != nil {
		return nil, err
	}

	// Cache successful embeddings
	if g.cache != nil {
		for i, emb := range embeddings {
			hash := ComputeHash(req.Texts[i])
			emb.Hash = hash
			g.cache.Set(hash, emb)
		}
	}

	return &BatchEmbeddingResponse{
		Embeddings: embeddings,
		Provider:   ProviderGemini,
		Model:      model,
	}, nil
}

func (g *GeminiProvider) callAPI(ctx context.Context, texts []string, model string) ([]*Embedding, error) {
	em := g.em
	if model != g.model {
		em = g.client.EmbeddingModel(model)
	}

	batch := em.NewBatch()
	for _, text := range texts {
		batch.AddContent(genai.Text(text))
	}

	resp, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, classifyGeminiError(err)
	}
	if resp == nil || len(resp.Embeddings) != len(texts) {
		return nil, types.NewEmbeddingError(types.EmbedServiceError,
			fmt.Errorf("%w: expected %d embeddings", ErrProviderFailed, len(texts)))
	}

	embeddings := make([]*Embedding, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		embeddings[i] = &Embedding{
			Vector:    emb.Values,
			Dimension: len(emb.Values),
			Provider:  ProviderGemini,
			Model:     model,
		}
	}

	return embeddings, nil
}

// classifyGeminiError maps API failures onto embedding error kinds so callers
// can tell a rate limit from a bad request
func classifyGeminiError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusTooManyRequests:
			return types.NewEmbeddingError(types.EmbedRateLimited, err)
		case http.StatusBadRequest:
			return types.NewEmbeddingError(types.EmbedInvalidInput, err)
		}
	}
	return types.NewEmbeddingError(types.EmbedServiceError, err)
}

func (g *GeminiProvider) Dimension() int {
	return GeminiDimension
}

func (g *GeminiProvider) Provider() string {
	return ProviderGemini
}

func (g *GeminiProvider) Model() string {
	return g.model
}

func (g *GeminiProvider) Close() error {
	return g.client.Close()
}
