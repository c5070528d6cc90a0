package badger

import (
	"context"
	"log/slog"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/semcache/core"
	"github.com/poiesic/semcache/storage"
)

// DocumentStore implements storage.DocumentStore on BadgerDB. Chunks are
// stored under a primary key and mirrored into a documentId index so that
// listing and deletion by document never scan the whole keyspace.
type DocumentStore struct {
	backend *Backend
	logger  *slog.Logger
}

var _ storage.DocumentStore = (*DocumentStore)(nil)

// NewDocumentStore creates a document store on the given backend.
func NewDocumentStore(backend *Backend) (storage.DocumentStore, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}
	return &DocumentStore{
		backend: backend,
		logger:  slog.Default().With("component", "document-store"),
	}, nil
}

// Close is a no-op; the shared backend owns the database handle.
func (s *DocumentStore) Close() error {
	return nil
}

// StoreChunk upserts a chunk and its documentId index entry.
func (s *DocumentStore) StoreChunk(ctx context.Context, chunk *core.DocumentChunk) error {
	value, err := storage.MarshalChunk(chunk)
	if err != nil {
		return err
	}

	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeChunkKey(chunk.ID), value); err != nil {
			return err
		}
		if err := tx.Set(makeChunkDocKey(chunk.DocumentID, chunk.ID), []byte(chunk.ID)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// SearchByVector scans all chunks, scores them by cosine similarity against
// the query vector, and returns the topK best matches in descending score
// order.
func (s *DocumentStore) SearchByVector(ctx context.Context, vector []float32, topK int) ([]core.SimilarityResult[*core.DocumentChunk], error) {
	if topK < 1 {
		return nil, storage.ErrInvalidQuery
	}

	var results []core.SimilarityResult[*core.DocumentChunk]

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var chunk *core.DocumentChunk
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(val)
				return err
			})
			if err != nil {
				return err
			}
			if chunk == nil || len(chunk.Vector) == 0 {
				continue
			}

			results = append(results, core.SimilarityResult[*core.DocumentChunk]{
				Item:  chunk,
				Score: cosineSimilarity(vector, chunk.Vector),
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(results, func(a, b core.SimilarityResult[*core.DocumentChunk]) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// ListChunkIDsByDocumentID returns the ids of all chunks of a document,
// reading the documentId index one page at a time until exhausted.
func (s *DocumentStore) ListChunkIDsByDocumentID(ctx context.Context, documentID string) ([]string, error) {
	prefix := makePartialChunkDocKey(documentID)
	seek := prefix

	var ids []string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var page [][]byte
		err := s.backend.WithTx(func(tx *badger.Txn) error {
			page = collectKeys(tx, prefix, seek, pageSize)
			return nil
		}, false)
		if err != nil {
			return nil, err
		}

		for _, key := range page {
			ids = append(ids, idFromIndexKey(key))
		}
		if len(page) < pageSize {
			return ids, nil
		}
		seek = nextSeekKey(page[len(page)-1])
	}
}

// DeleteByDocumentID removes all chunks of a document, page by page until the
// index reports no more matches.
func (s *DocumentStore) DeleteByDocumentID(ctx context.Context, documentID string) error {
	prefix := makePartialChunkDocKey(documentID)
	deleted := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		// Always restart from the prefix head: each pass deletes what it found.
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
			for _, indexKey := range page {
				chunkID := idFromIndexKey(indexKey)
				if err := tx.Delete(makeChunkKey(chunkID)); err != nil {
					return err
				}
				if err := tx.Delete(indexKey); err != nil {
					return err
				}
			}
			return tx.Commit()
		}, true)
		if err != nil {
			return err
		}
		deleted += len(page)
	}

	s.logger.Info("deleted chunks for document", "documentId", documentID, "count", deleted)
	return nil
}
