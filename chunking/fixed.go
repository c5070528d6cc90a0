package chunking

import "strings"

// FixedSize splits text into segments of chunkSize characters, advancing by
// chunkSize - overlap each step.
type FixedSize struct {
	chunkSize int
	overlap   int
}

var _ Strategy = (*FixedSize)(nil)

// FixedSizeOption configures a FixedSize chunker.
type FixedSizeOption func(*FixedSize)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) FixedSizeOption {
	return func(c *FixedSize) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between consecutive chunks in characters.
// An overlap greater than or equal to the chunk size is allowed; Chunk then
// emits a single chunk instead of looping.
func WithOverlap(overlap int) FixedSizeOption {
	return func(c *FixedSize) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// NewFixedSize creates a fixed-size sliding-window chunker.
func NewFixedSize(opts ...FixedSizeOption) *FixedSize {
	c := &FixedSize{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chunk splits text into overlapping fixed-size segments.
func (c *FixedSize) Chunk(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	step := c.chunkSize - c.overlap
	var chunks []string
	for i := 0; i < len(text); i += step {
		end := i + c.chunkSize
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[i:end])

		// A non-positive step would never advance. Emit exactly one chunk
		// and stop.
		if step <= 0 {
			break
		}
	}
	return chunks
}
