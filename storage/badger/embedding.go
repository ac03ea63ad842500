// Copyright 2025 Studium Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"bytes"
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/studium-hq/studium/core"
	"github.com/studium-hq/studium/storage"
)

// EmbeddingRepository implements storage.EmbeddingRepository for BadgerDB.
type EmbeddingRepository struct {
	backend *Backend
}

var _ storage.EmbeddingRepository = (*EmbeddingRepository)(nil)

// NewEmbeddingRepository creates a new EmbeddingRepository.
func NewEmbeddingRepository(backend *Backend) *EmbeddingRepository {
	return &EmbeddingRepository{
		backend: backend,
	}
}

// Close is a no-op; the repository holds no resources of its own.
func (r *EmbeddingRepository) Close() error {
	return nil
}

// FindSimilar delegates to the backend.
func (r *EmbeddingRepository) FindSimilar(ctx context.Context, tenantID string, vector []float32, minSimilarity float32, limit int) ([]*core.SegmentMatch, error) {
	return r.backend.FindSimilar(ctx, tenantID, vector, minSimilarity, limit)
}

// WithTransaction delegates to the backend.
func (r *EmbeddingRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// PutEmbedding stores a segment embedding, overwriting any embedding with
// the same key.
func (r *EmbeddingRepository) PutEmbedding(ctx context.Context, tenantID string, embedding *core.Embedding) (*core.Embedding, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if embedding.InsertedAt.IsZero() {
			embedding.InsertedAt = time.Now().UTC()
		}

		key := makeEmbeddingKey(tenantID, embedding.SourceId, embedding.SegmentIndex)
		if err := tx.Set(key, storage.MarshalEmbedding(embedding)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return embedding, err
}

// GetEmbedding retrieves a segment embedding by its key.
func (r *EmbeddingRepository) GetEmbedding(ctx context.Context, tenantID, key string) (*core.Embedding, error) {
	sourceID, index, err := core.ParseSegmentKey(key)
	if err != nil {
		return nil, err
	}

	var result *core.Embedding
	err = r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeEmbeddingKey(tenantID, sourceID, index))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			result, unmarshalErr = storage.UnmarshalEmbedding(val)
			return unmarshalErr
		})
	}, false)
	return result, err
}

// ListSourceEmbeddings retrieves all embeddings of a source, ordered by
// segment index.
func (r *EmbeddingRepository) ListSourceEmbeddings(ctx context.Context, tenantID string, sourceID core.ID) ([]*core.Embedding, error) {
	var results []*core.Embedding
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeSourceEmbeddingPrefix(tenantID, sourceID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var embedding *core.Embedding
			err := iter.Item().Value(func(val []byte) error {
				var err error
				embedding, err = storage.UnmarshalEmbedding(val)
				return err
			})
			if err != nil {
				return err
			}
			if embedding != nil {
				results = append(results, embedding)
			}
		}
		return nil
	}, false)

	return results, err
}

// DeleteSourceEmbeddings removes all embeddings of a source and returns
// the number removed.
func (r *EmbeddingRepository) DeleteSourceEmbeddings(ctx context.Context, tenantID string, sourceID core.ID) (int, error) {
	var deleted int
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		deleted, err = deleteEmbeddings(tx, tenantID, sourceID)
		if err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	return deleted, err
}

// deleteEmbeddings removes all embedding keys of a source within tx.
func deleteEmbeddings(tx *badger.Txn, tenantID string, sourceID core.ID) (int, error) {
	prefix := makeSourceEmbeddingPrefix(tenantID, sourceID)

	// Collect keys first; deleting while iterating invalidates the iterator.
	var keys [][]byte
	iter := tx.NewIterator(badger.DefaultIteratorOptions)
	for iter.Seek(prefix); iter.Valid(); iter.Next() {
		key := iter.Item().Key()
		if !bytes.HasPrefix(key, prefix) {
			break
		}
		keys = append(keys, iter.Item().KeyCopy(nil))
	}
	iter.Close()

	for _, key := range keys {
		if err := tx.Delete(key); err != nil {
			return 0, err
		}
	}
	return len(keys), nil
}
