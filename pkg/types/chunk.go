package types

import (
	"fmt"

	"github.com/google/uuid"
)

// chunkNamespace is the UUID namespace for deriving chunk IDs.
// Fixed so the same (path, index) pair always yields the same ID across runs.
var chunkNamespace = uuid.MustParse("8e2bb79c-0e3d-4a9f-9f3e-5b1f6d1a7c42")

// Chunk is a bounded-size slice of a file's extracted text, embedded and
// stored as its own vector-store entry
type Chunk struct {
	// ID is derived deterministically from (SourcePath, Index) so re-runs
	// overwrite the same vector-store entry rather than duplicating it
	ID string

	SourcePath string
	Index      int

	Text       string
	TokenCount int
}

// ChunkID derives the deterministic vector-store ID for a chunk of the given
// file. Qdrant requires UUID point IDs, so this is a UUIDv5 over the path and
// chunk index.
func ChunkID(path string, index int) string {
	return uuid.NewSHA1(chunkNamespace, []byte(fmt.Sprintf("%s#%d", path, index))).String()
}

// NewChunk builds a chunk with its derived ID
func NewChunk(path string, index int, text string) Chunk {
	return Chunk{
		ID:         ChunkID(path, index),
		SourcePath: path,
		Index:      index,
		Text:       text,
	}
}
