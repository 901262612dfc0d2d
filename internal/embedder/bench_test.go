package embedder

import (
	"context"
	"fmt"
	"testing"
)

func BenchmarkComputeHash(b *testing.B) {
	texts := []string{
		"short",
		"medium length text for hashing",
		"this is a longer text that represents a typical document chunk embedded for semantic search over a watched directory",
	}

	for _, text := range texts {
		b.Run(fmt.Sprintf("len=%d", len(text)), func(b *testing.B) {
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = ComputeHash(text)
			}
		})
	}
}

func BenchmarkCache(b *testing.B) {
	cache := NewCache(10000)
	emb := &Embedding{
		Vector:    make([]float32, GeminiDimension),
		Dimension: GeminiDimension,
		Provider:  ProviderGemini,
		Model:     "test",
		Hash:      "test-hash",
	}

	b.Run("set", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			hash := fmt.Sprintf("hash-%d", i%1000)
			cache.Set(hash, emb)
		}
	})

	b.Run("get", func(b *testing.B) {
		cache.Set("hot", emb)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = cache.Get("hot")
		}
	})
}

func BenchmarkLocalProvider(b *testing.B) {
	provider, err := NewLocalProvider(nil)
	if err != nil {
		b.Fatal(err)
	}
	defer provider.Close()

	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := provider.GenerateEmbedding(ctx, EmbeddingRequest{
			Text: fmt.Sprintf("document chunk %d", i),
		})
		if err != nil {
			b.Fatal(err)
		}
	}
}
