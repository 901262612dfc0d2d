package vectorstore

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/sechaba/ragwatch/pkg/types"
)

// DefaultCollection is the collection name used when none is configured
const DefaultCollection = "ragwatch_documents"

// QdrantStore implements Store backed by a Qdrant instance over gRPC
type QdrantStore struct {
	client     *qdrant.Client
	collection string
}

// QdrantConfig holds connection settings for a Qdrant instance
type QdrantConfig struct {
	Host       string
	Port       int
	APIKey     string
	Collection string
}

// NewQdrantStore connects to Qdrant. Defaults: localhost:6334, collection
// "ragwatch_documents".
func NewQdrantStore(cfg QdrantConfig) (*QdrantStore, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to qdrant at %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	return &QdrantStore{
		client:     client,
		collection: cfg.Collection,
	}, nil
}

func (s *QdrantStore) EnsureCollection(ctx context.Context, dimension int) error {
	existing, err := s.client.ListCollections(ctx)
	if err != nil {
		return wrapStoreError("list collections", err)
	}

	for _, name := range existing {
		if name == s.collection {
			return nil
		}
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return wrapStoreError("create collection", err)
	}
	return nil
}

func (s *QdrantStore) Upsert(ctx context.Context, chunks []types.Chunk, vectors [][]float32) error {
	if len(chunks) == 0 {
		return nil
	}
	if len(chunks) != len(vectors) {
		return &types.StoreError{
			Op:  "upsert",
			Err: fmt.Errorf("%d chunks but %d vectors", len(chunks), len(vectors)),
		}
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(chunk.ID),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]interface{}{
				"path":        chunk.SourcePath,
				"chunk_index": chunk.Index,
				"content":     chunk.Text,
				"token_count": chunk.TokenCount,
			}),
		}
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
	})
	if err != nil {
		return wrapStoreError("upsert", err)
	}
	return nil
}

func (s *QdrantStore) Delete(ctx context.Context, chunkIDs []string) error {
	if len(chunkIDs) == 0 {
		return nil
	}

	ids := make([]*qdrant.PointId, len(chunkIDs))
	for i, id := range chunkIDs {
		ids[i] = qdrant.NewID(id)
	}

	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Points{
				Points: &qdrant.PointsIdsList{Ids: ids},
			},
		},
	})
	if err != nil {
		return wrapStoreError("delete", err)
	}
	return nil
}

func (s *QdrantStore) Query(ctx context.Context, vector []float32, limit int) ([]Result, error) {
	qlimit := uint64(limit)
	hits, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &qlimit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, wrapStoreError("query", err)
	}

	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		payload := hit.GetPayload()
		if payload == nil {
			continue
		}
		results = append(results, Result{
			ChunkID:    hit.GetId().GetUuid(),
			SourcePath: payload["path"].GetStringValue(),
			ChunkIndex: int(payload["chunk_index"].GetIntegerValue()),
			Text:       payload["content"].GetStringValue(),
			Score:      hit.GetScore(),
		})
	}
	return results, nil
}

func (s *QdrantStore) Count(ctx context.Context) (uint64, error) {
	count, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collection,
	})
	if err != nil {
		return 0, wrapStoreError("count", err)
	}
	return count, nil
}

func (s *QdrantStore) Close() error {
	return s.client.Close()
}

// wrapStoreError classifies a gRPC failure. Connection-level failures are
// transient and worth retrying; everything else is permanent.
func wrapStoreError(op string, err error) error {
	return &types.StoreError{
		Op:        op,
		Transient: isTransientCode(status.Code(err)),
		Err:       err,
	}
}

func isTransientCode(code codes.Code) bool {
	switch code {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
		return true
	default:
		return false
	}
}
