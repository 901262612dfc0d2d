package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/sechaba/ragwatch/internal/chunker"
	"github.com/sechaba/ragwatch/internal/embedder"
	"github.com/sechaba/ragwatch/internal/extractor"
	"github.com/sechaba/ragwatch/internal/retriever"
	"github.com/sechaba/ragwatch/internal/syncer"
	"github.com/sechaba/ragwatch/internal/tracker"
	"github.com/sechaba/ragwatch/internal/vectorstore"
)

// app holds the wired pipeline shared by commands. The embedder instance is
// shared between engine and retriever so embeddings cached during indexing
// serve queries too.
type app struct {
	tracker   tracker.Tracker
	store     vectorstore.Store
	embedder  embedder.Embedder
	engine    *syncer.Engine
	retriever *retriever.Retriever
}

// newApp builds the pipeline from the loaded config
func newApp(ctx context.Context) (*app, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	tr, err := tracker.NewSQLiteTracker(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open tracker: %w", err)
	}

	provider := cfg.Embedder.Provider
	if provider == "" {
		provider = embedder.DetectProvider()
	}
	cacheSize := cfg.Embedder.CacheSize
	if cacheSize <= 0 {
		cacheSize = 10000
	}
	emb, err := embedder.New(ctx, embedder.Config{
		Provider:  provider,
		Model:     cfg.Embedder.Model,
		APIKey:    cfg.Embedder.APIKey,
		CacheSize: cacheSize,
	})
	if err != nil {
		_ = tr.Close()
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	logger.Info("embedder ready", "provider", emb.Provider(), "model", emb.Model())

	store, err := newStore(ctx, emb.Dimension())
	if err != nil {
		_ = tr.Close()
		_ = emb.Close()
		return nil, err
	}

	ex := extractor.New(cfg.MaxFileSizeBytes)
	ch := chunker.New(cfg.ChunkSizeTokens, cfg.ChunkOverlapTokens)
	eng := syncer.New(tr, ex, ch, emb, store, syncer.Config{}, logger)

	return &app{
		tracker:   tr,
		store:     store,
		embedder:  emb,
		engine:    eng,
		retriever: retriever.New(emb, store, tr),
	}, nil
}

func newStore(ctx context.Context, dimension int) (vectorstore.Store, error) {
	var store vectorstore.Store
	switch cfg.VectorStore.Type {
	case "qdrant", "":
		q := cfg.VectorStore.Qdrant
		s, err := vectorstore.NewQdrantStore(vectorstore.QdrantConfig{
			Host:       q.Host,
			Port:       q.Port,
			APIKey:     q.APIKey,
			Collection: q.Collection,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to qdrant: %w", err)
		}
		store = s
	case "memory":
		store = vectorstore.NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown vector store type %q", cfg.VectorStore.Type)
	}

	if err := store.EnsureCollection(ctx, dimension); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to ensure collection: %w", err)
	}
	return store, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		logger.Warn("vector store close failed", "error", err)
	}
	if err := a.embedder.Close(); err != nil {
		logger.Warn("embedder close failed", "error", err)
	}
	if err := a.tracker.Close(); err != nil {
		logger.Warn("tracker close failed", "error", err)
	}
}
