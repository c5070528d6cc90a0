package chunking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedSizeChunk(t *testing.T) {
	c := NewFixedSize(WithChunkSize(10), WithOverlap(2))
	text := "abcdefghijklmnopqrst" // 20 chars

	chunks := c.Chunk(text)
	require.Len(t, chunks, 3)
	assert.Equal(t, "abcdefghij", chunks[0])
	assert.Equal(t, "ijklmnopqr", chunks[1])
	assert.Equal(t, "qrst", chunks[2])
}

func TestFixedSizeShortInput(t *testing.T) {
	c := NewFixedSize(WithChunkSize(100), WithOverlap(10))
	chunks := c.Chunk("short")
	require.Len(t, chunks, 1)
	assert.Equal(t, "short", chunks[0])
}

func TestFixedSizeOverlapGuard(t *testing.T) {
	// overlap >= chunkSize would make the step non-positive. The chunker must
	// emit exactly one chunk and terminate.
	c := NewFixedSize(WithChunkSize(10), WithOverlap(10))
	text := strings.Repeat("x", 25)

	chunks := c.Chunk(text)
	require.Len(t, chunks, 1)
	assert.Equal(t, strings.Repeat("x", 10), chunks[0])

	c = NewFixedSize(WithChunkSize(10), WithOverlap(15))
	chunks = c.Chunk(text)
	require.Len(t, chunks, 1)
}

func TestFixedSizeEmptyInput(t *testing.T) {
	c := NewFixedSize()
	assert.Empty(t, c.Chunk(""))
	assert.Empty(t, c.Chunk("   \n\t "))
}

func TestFixedSizeCoversWholeInput(t *testing.T) {
	c := NewFixedSize(WithChunkSize(7), WithOverlap(3))
	text := "the quick brown fox jumps over the lazy dog"

	chunks := c.Chunk(text)
	require.NotEmpty(t, chunks)

	// Reconstruct the input from the chunks using the known step.
	step := 7 - 3
	var sb strings.Builder
	for i, chunk := range chunks {
		if i == len(chunks)-1 {
			sb.WriteString(chunk)
			break
		}
		sb.WriteString(chunk[:step])
	}
	assert.Equal(t, text, sb.String())
}
