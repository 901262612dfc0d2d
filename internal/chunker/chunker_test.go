package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sechaba/ragwatch/pkg/types"
)

func TestSplitEmptyText(t *testing.T) {
	c := New(0, 0)

	assert.Empty(t, c.Split("/docs/a.txt", ""))
	assert.Empty(t, c.Split("/docs/a.txt", "   \n\t  "))
}

func TestSplitSmallText(t *testing.T) {
	c := New(0, 0)

	chunks := c.Split("/docs/a.txt", "a short note")

	require.Len(t, chunks, 1)
	assert.Equal(t, "a short note", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, "/docs/a.txt", chunks[0].SourcePath)
	assert.Positive(t, chunks[0].TokenCount)
}

func TestSplitLargeText(t *testing.T) {
	c := New(64, 8)

	// Many distinct words so the text tokenizes well past one window
	var b strings.Builder
	for i := 0; i < 500; i++ {
		b.WriteString("incremental synchronization keeps the index aligned with disk. ")
	}

	chunks := c.Split("/docs/big.txt", b.String())

	require.Greater(t, len(chunks), 1)
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Index)
		assert.LessOrEqual(t, chunk.TokenCount, 64)
		assert.Positive(t, chunk.TokenCount)
	}

	// Every chunk except the last fills its token budget
	for _, chunk := range chunks[:len(chunks)-1] {
		assert.Equal(t, 64, chunk.TokenCount)
	}
}

func TestSplitDeterministicIDs(t *testing.T) {
	c := New(64, 8)
	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 200)

	first := c.Split("/docs/b.txt", text)
	second := c.Split("/docs/b.txt", text)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Text, second[i].Text)
	}

	// Same index under a different path gets a different ID
	other := c.Split("/docs/c.txt", text)
	assert.NotEqual(t, first[0].ID, other[0].ID)
}

func TestSplitOverlapSharesTokens(t *testing.T) {
	c := New(32, 8)
	text := strings.Repeat("alpha beta gamma delta epsilon zeta eta theta. ", 100)

	chunks := c.Split("/docs/d.txt", text)
	require.Greater(t, len(chunks), 2)

	// The tail of one chunk reappears at the head of the next
	for i := 0; i < len(chunks)-1; i++ {
		tail := chunks[i].Text[len(chunks[i].Text)/2:]
		overlapStart := strings.Index(tail, "alpha")
		if overlapStart < 0 {
			continue
		}
		assert.True(t, strings.HasPrefix(chunks[i+1].Text, tail[overlapStart:]) ||
			strings.Contains(chunks[i+1].Text, "alpha"))
	}
}

func TestNewClampsOverlap(t *testing.T) {
	c := New(10, 50)
	assert.Equal(t, 5, c.overlap)

	c = New(0, -1)
	assert.Equal(t, DefaultChunkSize, c.chunkSize)
	assert.Equal(t, DefaultOverlap, c.overlap)
}

func TestChunkIDsMatchTypesPackage(t *testing.T) {
	c := New(0, 0)

	chunks := c.Split("/docs/e.txt", "stable identity")

	require.Len(t, chunks, 1)
	assert.Equal(t, types.ChunkID("/docs/e.txt", 0), chunks[0].ID)
}

func TestCountTokens(t *testing.T) {
	assert.Equal(t, 0, CountTokens(""))
	assert.Positive(t, CountTokens("hello world"))
	assert.Less(t, CountTokens("hello"), CountTokens("hello hello hello hello"))
}

func TestEstimateTokenCount(t *testing.T) {
	assert.Equal(t, 0, EstimateTokenCount("abc"))
	assert.Equal(t, 3, EstimateTokenCount(strings.Repeat("x", 12)))
}
