package embedder

import (
	"context"
	"errors"
	"math"
	"net/http"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/sechaba/ragwatch/pkg/types"
)

func TestLocalProviderDeterministic(t *testing.T) {
	provider, err := NewLocalProvider(nil)
	require.NoError(t, err)
	defer provider.Close()

	ctx := context.Background()
	first, err := provider.GenerateEmbedding(ctx, EmbeddingRequest{Text: "same text"})
	require.NoError(t, err)
	second, err := provider.GenerateEmbedding(ctx, EmbeddingRequest{Text: "same text"})
	require.NoError(t, err)

	assert.Equal(t, first.Vector, second.Vector)
	assert.Len(t, first.Vector, LocalDimension)
}

func TestLocalProviderDistinctTexts(t *testing.T) {
	provider, err := NewLocalProvider(nil)
	require.NoError(t, err)
	defer provider.Close()

	ctx := context.Background()
	a, err := provider.GenerateEmbedding(ctx, EmbeddingRequest{Text: "alpha"})
	require.NoError(t, err)
	b, err := provider.GenerateEmbedding(ctx, EmbeddingRequest{Text: "beta"})
	require.NoError(t, err)

	assert.NotEqual(t, a.Vector, b.Vector)
}

func TestLocalProviderUnitNorm(t *testing.T) {
	provider, err := NewLocalProvider(nil)
	require.NoError(t, err)
	defer provider.Close()

	emb, err := provider.GenerateEmbedding(context.Background(), EmbeddingRequest{Text: "normalize me"})
	require.NoError(t, err)

	var sum float64
	for _, v := range emb.Vector {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-4)
}

func TestLocalProviderEmptyText(t *testing.T) {
	provider, err := NewLocalProvider(nil)
	require.NoError(t, err)
	defer provider.Close()

	_, err = provider.GenerateEmbedding(context.Background(), EmbeddingRequest{})
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestLocalProviderBatchOrder(t *testing.T) {
	provider, err := NewLocalProvider(nil)
	require.NoError(t, err)
	defer provider.Close()

	ctx := context.Background()
	resp, err := provider.GenerateBatch(ctx, BatchEmbeddingRequest{
		Texts: []string{"one", "two", "three"},
	})
	require.NoError(t, err)
	require.Len(t, resp.Embeddings, 3)

	for i, text := range []string{"one", "two", "three"} {
		single, err := provider.GenerateEmbedding(ctx, EmbeddingRequest{Text: text})
		require.NoError(t, err)
		assert.Equal(t, single.Vector, resp.Embeddings[i].Vector)
	}
}

func TestLocalProviderUsesCache(t *testing.T) {
	cache := NewCache(10)
	provider, err := NewLocalProvider(cache)
	require.NoError(t, err)
	defer provider.Close()

	ctx := context.Background()
	_, err = provider.GenerateEmbedding(ctx, EmbeddingRequest{Text: "cache me"})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Size())

	cached, ok := cache.Get(ComputeHash("cache me"))
	require.True(t, ok)
	assert.Equal(t, ProviderLocal, cached.Provider)
}

func TestClassifyOpenAIError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind types.EmbeddingErrorKind
	}{
		{
			name:     "rate limit",
			err:      &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests},
			wantKind: types.EmbedRateLimited,
		},
		{
			name:     "bad request",
			err:      &openai.APIError{HTTPStatusCode: http.StatusBadRequest},
			wantKind: types.EmbedInvalidInput,
		},
		{
			name:     "server error",
			err:      &openai.APIError{HTTPStatusCode: http.StatusInternalServerError},
			wantKind: types.EmbedServiceError,
		},
		{
			name:     "plain error",
			err:      errors.New("connection reset"),
			wantKind: types.EmbedServiceError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := classifyOpenAIError(tt.err)
			var ee *types.EmbeddingError
			require.True(t, errors.As(classified, &ee))
			assert.Equal(t, tt.wantKind, ee.Kind)
		})
	}
}

func TestClassifyGeminiError(t *testing.T) {
	rateLimited := classifyGeminiError(&googleapi.Error{Code: http.StatusTooManyRequests})
	assert.True(t, types.IsRateLimited(rateLimited))

	var ee *types.EmbeddingError
	badRequest := classifyGeminiError(&googleapi.Error{Code: http.StatusBadRequest})
	require.True(t, errors.As(badRequest, &ee))
	assert.Equal(t, types.EmbedInvalidInput, ee.Kind)

	unknown := classifyGeminiError(errors.New("dial timeout"))
	require.True(t, errors.As(unknown, &ee))
	assert.Equal(t, types.EmbedServiceError, ee.Kind)
}

func TestHashVectorCoversDimension(t *testing.T) {
	v := hashVector("coverage", 100)
	require.Len(t, v, 100)

	nonZero := 0
	for _, val := range v {
		if val != 0 {
			nonZero++
		}
	}
	assert.Greater(t, nonZero, 90, "hash expansion should fill the vector")
}
