package badger

import (
	"math"

	"github.com/dgraph-io/badger/v4"
)

// collectKeys gathers up to limit keys under prefix, starting at seek.
// Values are not prefetched; only key copies are returned.
func collectKeys(tx *badger.Txn, prefix, seek []byte, limit int) [][]byte {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var keys [][]byte
	for iter.Seek(seek); iter.ValidForPrefix(prefix) && len(keys) < limit; iter.Next() {
		keys = append(keys, iter.Item().KeyCopy(nil))
	}
	return keys
}

// nextSeekKey returns the smallest key strictly greater than key, used to
// resume a paginated scan after the last key of the previous page.
func nextSeekKey(key []byte) []byte {
	next := make([]byte, len(key)+1)
	copy(next, key)
	return next
}

// cosineSimilarity computes the normalized cosine similarity of two vectors,
// in [-1,1] and nominally [0,1] for typical embeddings. Mismatched lengths
// are scored over the shorter prefix; a zero vector scores 0.
func cosineSimilarity(a, b []float32) float64 {
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < minLen; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
