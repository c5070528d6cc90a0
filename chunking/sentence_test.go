package chunking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSentences(t *testing.T) {
	sentences := splitSentences("Hello world. This is Go. Short!")
	require.Len(t, sentences, 3)
	assert.Equal(t, "Hello world.", sentences[0])
	assert.Equal(t, "This is Go.", sentences[1])
	assert.Equal(t, "Short!", sentences[2])
}

func TestSplitSentencesNoBoundary(t *testing.T) {
	// Lowercase after punctuation is not a sentence boundary.
	sentences := splitSentences("visit example.com for details")
	require.Len(t, sentences, 1)

	sentences = splitSentences("no punctuation at all")
	require.Len(t, sentences, 1)
}

func TestSentenceAwareChunk(t *testing.T) {
	c := NewSentenceAware(WithTargetSize(30), WithSentenceOverlap(10))
	text := "First sentence here. Second sentence here. Third sentence here."

	chunks := c.Chunk(text)
	require.GreaterOrEqual(t, len(chunks), 2)

	// Every sentence must appear in some chunk.
	joined := strings.Join(chunks, " ")
	assert.Contains(t, joined, "First sentence here.")
	assert.Contains(t, joined, "Second sentence here.")
	assert.Contains(t, joined, "Third sentence here.")

	// Consecutive chunks share overlap text carried from the closed chunk.
	tail := chunks[0][len(chunks[0])-5:]
	assert.Contains(t, chunks[1], tail)
}

func TestSentenceAwareSingleChunk(t *testing.T) {
	c := NewSentenceAware(WithTargetSize(500), WithSentenceOverlap(50))
	text := "One sentence. Another sentence. A third one."

	chunks := c.Chunk(text)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestSentenceAwareEmptyInput(t *testing.T) {
	c := NewSentenceAware()
	assert.Empty(t, c.Chunk(""))
	assert.Empty(t, c.Chunk(" \n "))
}
