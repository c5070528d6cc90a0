// Package chunking provides strategies for splitting raw document text into
// overlapping segments prior to embedding.
//
// Two interchangeable strategies are provided:
//   - FixedSize: sliding window of a fixed character count
//   - SentenceAware: accumulates whole sentences up to a target size
//
// Both return no chunks for empty or whitespace-only input.
package chunking

// Strategy splits raw text into an ordered sequence of substrings.
// Implementations must be safe for concurrent use.
type Strategy interface {
	Chunk(text string) []string
}

// DefaultChunkSize is the default chunk size in characters.
const DefaultChunkSize = 512

// DefaultOverlap is the default number of characters carried over between
// consecutive chunks.
const DefaultOverlap = 50
