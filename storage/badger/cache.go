package badger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/semcache/core"
	"github.com/poiesic/semcache/storage"
)

// DefaultCacheTTL is applied when an entry arrives with an expiry that has
// already elapsed, instead of storing an already-dead entry.
const DefaultCacheTTL = 24 * time.Hour

// CacheStore implements storage.SemanticCacheStore on BadgerDB. Entries are
// stored with a native TTL and mirrored into a chunk-reference index so the
// invalidation cascade can find entries by source chunk id without scanning
// the whole cache.
type CacheStore struct {
	backend    *Backend
	defaultTTL time.Duration
	logger     *slog.Logger
}

var _ storage.SemanticCacheStore = (*CacheStore)(nil)

// CacheStoreOption configures a CacheStore.
type CacheStoreOption func(*CacheStore)

// WithDefaultTTL sets the fallback TTL for entries stored after their expiry.
func WithDefaultTTL(ttl time.Duration) CacheStoreOption {
	return func(s *CacheStore) {
		if ttl > 0 {
			s.defaultTTL = ttl
		}
	}
}

// NewCacheStore creates a semantic cache store on the given backend.
func NewCacheStore(backend *Backend, opts ...CacheStoreOption) (storage.SemanticCacheStore, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}
	s := &CacheStore{
		backend:    backend,
		defaultTTL: DefaultCacheTTL,
		logger:     slog.Default().With("component", "cache-store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close is a no-op; the shared backend owns the database handle.
func (s *CacheStore) Close() error {
	return nil
}

// Store upserts a cache entry with its remaining lifetime as the TTL. The
// chunk-reference index entries carry the same TTL so they expire together
// with the entry.
func (s *CacheStore) Store(ctx context.Context, entry *core.CacheEntry) error {
	if err := core.ValidateCacheEntry(entry); err != nil {
		return err
	}

	value, err := storage.MarshalCacheEntry(entry)
	if err != nil {
		return err
	}

	ttl := time.Until(entry.ExpiresAt)
	if ttl <= 0 {
		s.logger.Warn("cache entry already expired at store time, using default TTL",
			"entryId", entry.ID, "expiresAt", entry.ExpiresAt)
		ttl = s.defaultTTL
	}

	return s.backend.WithTx(func(tx *badger.Txn) error {
		e := badger.NewEntry(makeCacheEntryKey(entry.ID), value).WithTTL(ttl)
		if err := tx.SetEntry(e); err != nil {
			return err
		}
		for _, chunkID := range entry.SourceChunkIDs {
			ref := badger.NewEntry(makeCacheRefKey(chunkID, entry.ID), []byte(entry.ID)).WithTTL(ttl)
			if err := tx.SetEntry(ref); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// SearchNearest scans live entries and returns the single best match by
// cosine similarity, or nil when the cache holds no live entries.
func (s *CacheStore) SearchNearest(ctx context.Context, vector []float32) (*core.SimilarityResult[*core.CacheEntry], error) {
	var best *core.SimilarityResult[*core.CacheEntry]
	now := time.Now()

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(cachePrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var entry *core.CacheEntry
			err := iter.Item().Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalCacheEntry(val)
				return err
			})
			if err != nil {
				return err
			}
			if entry == nil || len(entry.Vector) == 0 {
				continue
			}
			// Badger removes expired entries lazily; skip anything past its
			// recorded expiry regardless.
			if entry.ExpiresAt.Before(now) {
				continue
			}

			score := cosineSimilarity(vector, entry.Vector)
			if best == nil || score > best.Score {
				best = &core.SimilarityResult[*core.CacheEntry]{Item: entry, Score: score}
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return best, nil
}

// InvalidateByChunkIds deletes every entry whose source-chunk-id set
// intersects ids. The chunk-reference index is walked one page at a time per
// chunk id until exhausted; deleting an entry also removes all of its index
// entries, including those under other chunk ids.
func (s *CacheStore) InvalidateByChunkIds(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	invalidated := 0
	for _, chunkID := range ids {
		prefix := makePartialCacheRefKey(chunkID)

		for {
			if err := ctx.Err(); err != nil {
				return err
			}

			// Always restart from the prefix head: each pass deletes what it
			// found.
			var page [][]byte
			err := s.backend.WithTx(func(tx *badger.Txn) error {
				page = collectKeys(tx, prefix, prefix, pageSize)
				return nil
			}, false)
			if err != nil {
				return err
			}
			if len(page) == 0 {
				break
			}

			err = s.backend.WithTx(func(tx *badger.Txn) error {
				for _, refKey := range page {
					entryID := idFromIndexKey(refKey)
					if err := s.deleteEntry(tx, entryID); err != nil {
						return err
					}
					// The entry's own refs may not have covered this key when
					// the primary was already gone.
					if err := tx.Delete(refKey); err != nil {
						return err
					}
					invalidated++
				}
				return tx.Commit()
			}, true)
			if err != nil {
				return err
			}
		}
	}

	s.logger.Info("invalidated cache entries by chunk ids", "chunkIds", len(ids), "entries", invalidated)
	return nil
}

// deleteEntry removes an entry and all of its chunk-reference index keys.
// A missing primary (expired or already invalidated) is not an error.
func (s *CacheStore) deleteEntry(tx *badger.Txn, entryID string) error {
	key := makeCacheEntryKey(entryID)
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	}

	var entry *core.CacheEntry
	err = item.Value(func(val []byte) error {
		var err error
		entry, err = storage.UnmarshalCacheEntry(val)
		return err
	})
	if err != nil {
		return err
	}

	for _, chunkID := range entry.SourceChunkIDs {
		if err := tx.Delete(makeCacheRefKey(chunkID, entryID)); err != nil {
			return err
		}
	}
	return tx.Delete(key)
}
