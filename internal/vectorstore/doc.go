// Package vectorstore persists chunk embeddings and serves similarity search.
//
// Two implementations are provided:
//   - QdrantStore: a Qdrant collection over gRPC, cosine distance. Point IDs
//     are the chunks' deterministic UUIDs, so upserting a re-indexed file
//     overwrites its previous generation in place.
//   - MemoryStore: exact in-memory cosine search for tests and offline runs.
//
// All failures are *types.StoreError. gRPC Unavailable, DeadlineExceeded,
// ResourceExhausted, and Aborted mark the error transient; callers retry
// those and treat the rest as permanent.
package vectorstore
