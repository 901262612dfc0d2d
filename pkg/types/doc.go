// Package types provides shared type definitions for ragwatch.
//
// This package defines the domain types used across components: tracked file
// records, filesystem events, text chunks, and the error families of the three
// external collaborators (extractor, embedder, vector store).
//
// # Core Types
//
// TrackedFile is the durable record of one path the sync engine has processed:
//
//	tf := &types.TrackedFile{
//	    Path:        "/home/user/notes/report.md",
//	    Fingerprint: "9f86d081...",
//	    Status:      types.StatusIndexed,
//	    ChunkIDs:    []string{"..."},
//	}
//
// FileEvent is one observed filesystem change. Events for the same path must
// be applied in observation order; Modified-then-Deleted and
// Deleted-then-Modified are different histories with different correct
// outcomes.
//
// Chunk is a bounded slice of extracted text. Chunk IDs are UUIDv5 values
// derived from (path, chunk index), so re-indexing a file overwrites its
// previous vector-store entries instead of duplicating them:
//
//	id := types.ChunkID("/home/user/notes/report.md", 0)
//
// # Error Families
//
// Each external collaborator has a typed error carrying a kind:
//
//	ExtractionError: unsupported, corrupted, too_large, io_error
//	EmbeddingError:  rate_limited, invalid_input, service_error
//	StoreError:      transient vs permanent
//
// Rate-limited embedding failures and transient store failures are the two
// cases callers treat specially (backoff and retry rather than fail outright).
package types
