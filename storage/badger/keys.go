package badger

import "strings"

// Key prefixes for different data types
const (
	chunkPrefix    = "docchk" // docchk:{chunkID} -> chunk
	chunkDocPrefix = "docidx" // docidx:{documentID}:{chunkID} -> chunkID
	cachePrefix    = "cacent" // cacent:{entryID} -> cache entry
	cacheRefPrefix = "cacref" // cacref:{chunkID}:{entryID} -> entryID
)

// pageSize is the fixed page size for paginated scans and deletes.
const pageSize = 1000

// makeChunkKey generates the primary key for a chunk by id.
func makeChunkKey(chunkID string) []byte {
	return []byte(chunkPrefix + ":" + chunkID)
}

// makeChunkDocKey generates a composite key for the documentId index.
// Format: prefix:documentID:chunkID
func makeChunkDocKey(documentID, chunkID string) []byte {
	return []byte(chunkDocPrefix + ":" + documentID + ":" + chunkID)
}

// makePartialChunkDocKey generates the iteration prefix for all chunks of a
// document.
func makePartialChunkDocKey(documentID string) []byte {
	return []byte(chunkDocPrefix + ":" + documentID + ":")
}

// makeCacheEntryKey generates the primary key for a cache entry by id.
func makeCacheEntryKey(entryID string) []byte {
	return []byte(cachePrefix + ":" + entryID)
}

// makeCacheRefKey generates a composite key for the chunk-reference index.
// Format: prefix:chunkID:entryID
func makeCacheRefKey(chunkID, entryID string) []byte {
	return []byte(cacheRefPrefix + ":" + chunkID + ":" + entryID)
}

// makePartialCacheRefKey generates the iteration prefix for all cache entries
// referencing a chunk.
func makePartialCacheRefKey(chunkID string) []byte {
	return []byte(cacheRefPrefix + ":" + chunkID + ":")
}

// idFromIndexKey extracts the trailing id from a composite index key.
// Generated ids contain no colons, so the segment after the last colon is
// always the id even when the middle segment does.
func idFromIndexKey(key []byte) string {
	s := string(key)
	i := strings.LastIndexByte(s, ':')
	if i < 0 {
		return s
	}
	return s[i+1:]
}
