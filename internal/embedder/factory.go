package embedder

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Config holds embedder configuration
type Config struct {
	Provider  string
	Model     string
	APIKey    string
	CacheSize int
}

// EnvProvider overrides provider auto-detection
const EnvProvider = "RAGWATCH_EMBEDDING_PROVIDER"

// NewFromEnv creates an embedder based on environment variables
// Priority:
// 1. RAGWATCH_EMBEDDING_PROVIDER (gemini, openai, local)
// 2. Check for API keys: GOOGLE_API_KEY/GEMINI_API_KEY, OPENAI_API_KEY
// 3. Default to local if no API keys found
func NewFromEnv(ctx context.Context) (Embedder, error) {
	return New(ctx, Config{
		Provider:  DetectProvider(),
		CacheSize: 10000,
	})
}

// New creates an embedder with explicit configuration
func New(ctx context.Context, cfg Config) (Embedder, error) {
	var cache *Cache
	if cfg.CacheSize > 0 {
		cache = NewCache(cfg.CacheSize)
	}

	provider := strings.ToLower(cfg.Provider)
	switch provider {
	case ProviderGemini:
		return NewGeminiProvider(ctx, cfg.APIKey, cfg.Model, cache)
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cfg.Model, cache)
	case ProviderLocal:
		return NewLocalProvider(cache)
	default:
		return nil, fmt.Errorf("%w: unknown provider %s", ErrUnsupportedModel, cfg.Provider)
	}
}

// DetectProvider returns the provider that would be used based on current environment
func DetectProvider() string {
	provider := os.Getenv(EnvProvider)
	if provider != "" {
		return strings.ToLower(provider)
	}

	if os.Getenv(EnvGoogleAPIKey) != "" || os.Getenv(EnvGeminiAPIKey) != "" {
		return ProviderGemini
	}
	if os.Getenv(EnvOpenAIAPIKey) != "" {
		return ProviderOpenAI
	}

	return ProviderLocal
}
