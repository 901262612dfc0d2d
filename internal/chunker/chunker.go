package chunker

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"

	"github.com/sechaba/ragwatch/pkg/types"
)

const (
	// DefaultChunkSize is the target token count per chunk
	DefaultChunkSize = 512

	// DefaultOverlap is how many tokens consecutive chunks share
	DefaultOverlap = 64

	// TokensPerChar is the heuristic for estimating tokens (chars/4) when
	// the tokenizer is unavailable
	TokensPerChar = 4
)

// Bundle the BPE tables into the binary so chunking works offline
func init() {
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
	encodingErr  error
)

// getEncoding loads the cl100k_base tokenizer once per process
func getEncoding() (*tiktoken.Tiktoken, error) {
	encodingOnce.Do(func() {
		encoding, encodingErr = tiktoken.GetEncoding("cl100k_base")
	})
	return encoding, encodingErr
}

// Chunker splits extracted text into fixed-size token windows with overlap.
// Chunk boundaries are measured in tokens so every chunk fits an embedding
// model's input budget regardless of language or formatting.
type Chunker struct {
	chunkSize int
	overlap   int
}

// New creates a Chunker with the given token budget and overlap.
// A non-positive chunkSize and a negative overlap select the defaults;
// overlap is clamped below chunkSize so windows always advance.
func New(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 2
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}
}

// Split breaks text into chunks for the given source path. Chunk IDs are
// derived from (path, index), so splitting the same content twice yields
// identical chunks. Whitespace-only input yields no chunks.
func (c *Chunker) Split(path, text string) []types.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	enc, err := getEncoding()
	if err != nil {
		return c.splitByChars(path, text)
	}

	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= c.chunkSize {
		chunk := types.NewChunk(path, 0, text)
		chunk.TokenCount = len(tokens)
		return []types.Chunk{chunk}
	}

	stride := c.chunkSize - c.overlap
	chunks := make([]types.Chunk, 0, (len(tokens)+stride-1)/stride)
	for start, index := 0, 0; start < len(tokens); start, index = start+stride, index+1 {
		end := start + c.chunkSize
		if end > len(tokens) {
			end = len(tokens)
		}

		window := tokens[start:end]
		chunk := types.NewChunk(path, index, enc.Decode(window))
		chunk.TokenCount = len(window)
		chunks = append(chunks, chunk)

		if end == len(tokens) {
			break
		}
	}
	return chunks
}

// splitByChars is the fallback splitter using the chars/4 token estimate.
// Windows are measured in runes so multi-byte text never splits mid-character.
func (c *Chunker) splitByChars(path, text string) []types.Chunk {
	runes := []rune(text)
	size := c.chunkSize * TokensPerChar
	overlap := c.overlap * TokensPerChar

	if len(runes) <= size {
		chunk := types.NewChunk(path, 0, text)
		chunk.TokenCount = EstimateTokenCount(text)
		return []types.Chunk{chunk}
	}

	stride := size - overlap
	var chunks []types.Chunk
	for start, index := 0, 0; start < len(runes); start, index = start+stride, index+1 {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}

		segment := string(runes[start:end])
		chunk := types.NewChunk(path, index, segment)
		chunk.TokenCount = EstimateTokenCount(segment)
		chunks = append(chunks, chunk)

		if end == len(runes) {
			break
		}
	}
	return chunks
}

// CountTokens returns the token count of text, falling back to the chars/4
// estimate when the tokenizer cannot load
func CountTokens(text string) int {
	enc, err := getEncoding()
	if err != nil {
		return EstimateTokenCount(text)
	}
	return len(enc.Encode(text, nil, nil))
}

// EstimateTokenCount estimates the number of tokens in a string
func EstimateTokenCount(text string) int {
	return len(text) / TokensPerChar
}
