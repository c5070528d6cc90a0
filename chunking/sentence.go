package chunking

import (
	"regexp"
	"strings"
)

// sentenceBoundary matches the gap between two sentences: terminal
// punctuation, whitespace, then a capital letter opening the next sentence.
var sentenceBoundary = regexp.MustCompile(`[.!?]\s+[A-Z]`)

// SentenceAware accumulates whole sentences until the running chunk would
// exceed the target size, then closes the chunk and carries its trailing
// overlap characters into the next one.
type SentenceAware struct {
	targetSize int
	overlap    int
}

var _ Strategy = (*SentenceAware)(nil)

// SentenceAwareOption configures a SentenceAware chunker.
type SentenceAwareOption func(*SentenceAware)

// WithTargetSize sets the target chunk size in characters.
func WithTargetSize(size int) SentenceAwareOption {
	return func(c *SentenceAware) {
		if size > 0 {
			c.targetSize = size
		}
	}
}

// WithSentenceOverlap sets how many trailing characters of a closed chunk are
// carried into the next chunk.
func WithSentenceOverlap(overlap int) SentenceAwareOption {
	return func(c *SentenceAware) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// NewSentenceAware creates a sentence-aware chunker.
func NewSentenceAware(opts ...SentenceAwareOption) *SentenceAware {
	c := &SentenceAware{
		targetSize: DefaultChunkSize,
		overlap:    DefaultOverlap,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chunk splits text into sentence-aligned chunks of roughly targetSize
// characters. Trailing accumulation is flushed as a final chunk if non-empty.
func (c *SentenceAware) Chunk(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var chunks []string
	current := ""

	for _, sentence := range splitSentences(text) {
		if len(current)+len(sentence) > c.targetSize && current != "" {
			chunks = append(chunks, strings.TrimSpace(current))

			// Carry the tail of the closed chunk forward as overlap.
			overlapStart := len(current) - c.overlap
			if overlapStart < 0 {
				overlapStart = 0
			}
			current = current[overlapStart:] + " " + sentence
			continue
		}

		if current == "" {
			current = sentence
		} else {
			current += " " + sentence
		}
	}

	if strings.TrimSpace(current) != "" {
		chunks = append(chunks, strings.TrimSpace(current))
	}
	return chunks
}

// splitSentences splits text on sentence-boundary punctuation followed by a
// capital letter. The punctuation stays with the preceding sentence; the
// capital opens the next one.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for _, m := range sentenceBoundary.FindAllStringIndex(text, -1) {
		end := m[0] + 1  // keep the punctuation with the sentence
		next := m[1] - 1 // the capital starting the next sentence
		sentences = append(sentences, text[start:end])
		start = next
	}
	sentences = append(sentences, text[start:])
	return sentences
}
