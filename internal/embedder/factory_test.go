package embedder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocal(t *testing.T) {
	emb, err := New(context.Background(), Config{Provider: "local", CacheSize: 100})
	require.NoError(t, err)
	defer emb.Close()

	assert.Equal(t, ProviderLocal, emb.Provider())
	assert.Equal(t, LocalDimension, emb.Dimension())
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New(context.Background(), Config{Provider: "cohere"})
	assert.ErrorIs(t, err, ErrUnsupportedModel)
}

func TestNewProviderCaseInsensitive(t *testing.T) {
	emb, err := New(context.Background(), Config{Provider: "LOCAL"})
	require.NoError(t, err)
	defer emb.Close()
	assert.Equal(t, ProviderLocal, emb.Provider())
}

func TestNewOpenAIWithoutKey(t *testing.T) {
	t.Setenv(EnvOpenAIAPIKey, "")

	_, err := New(context.Background(), Config{Provider: "openai"})
	assert.ErrorIs(t, err, ErrNoProviderEnabled)
}

func TestNewGeminiWithoutKey(t *testing.T) {
	t.Setenv(EnvGoogleAPIKey, "")
	t.Setenv(EnvGeminiAPIKey, "")

	_, err := New(context.Background(), Config{Provider: "gemini"})
	assert.ErrorIs(t, err, ErrNoProviderEnabled)
}

func TestDetectProvider(t *testing.T) {
	t.Setenv(EnvProvider, "")
	t.Setenv(EnvGoogleAPIKey, "")
	t.Setenv(EnvGeminiAPIKey, "")
	t.Setenv(EnvOpenAIAPIKey, "")

	assert.Equal(t, ProviderLocal, DetectProvider())

	t.Setenv(EnvOpenAIAPIKey, "sk-test")
	assert.Equal(t, ProviderOpenAI, DetectProvider())

	t.Setenv(EnvGeminiAPIKey, "test-key")
	assert.Equal(t, ProviderGemini, DetectProvider())

	t.Setenv(EnvProvider, "local")
	assert.Equal(t, ProviderLocal, DetectProvider())
}

func TestNewFromEnvDefaultsToLocal(t *testing.T) {
	t.Setenv(EnvProvider, "")
	t.Setenv(EnvGoogleAPIKey, "")
	t.Setenv(EnvGeminiAPIKey, "")
	t.Setenv(EnvOpenAIAPIKey, "")

	emb, err := NewFromEnv(context.Background())
	require.NoError(t, err)
	defer emb.Close()

	assert.Equal(t, ProviderLocal, emb.Provider())
}
