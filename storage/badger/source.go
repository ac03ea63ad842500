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

// SourceRepository implements storage.SourceRepository for BadgerDB.
type SourceRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.SourceRepository = (*SourceRepository)(nil)

// NewSourceRepository creates a new SourceRepository.
func NewSourceRepository(backend *Backend) (*SourceRepository, error) {
	idSeq, err := backend.GetSequence(sourceIDSeq)
	if err != nil {
		return nil, err
	}

	return &SourceRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *SourceRepository) Close() error {
	return r.idSeq.Release()
}

// FindSimilar delegates to the backend.
func (r *SourceRepository) FindSimilar(ctx context.Context, tenantID string, vector []float32, minSimilarity float32, limit int) ([]*core.SegmentMatch, error) {
	return r.backend.FindSimilar(ctx, tenantID, vector, minSimilarity, limit)
}

// WithTransaction delegates to the backend.
func (r *SourceRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddSource adds a source to storage.
func (r *SourceRepository) AddSource(ctx context.Context, source *core.Source) (*core.Source, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if source.Id == 0 {
			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			// BadgerDB sequences can return 0 on first call, so we skip it
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			source.Id = core.ID(nextID)
		}

		if source.CreatedAt.IsZero() {
			source.CreatedAt = time.Now().UTC()
		}
		source.UpdatedAt = source.CreatedAt

		// Store primary record
		key := makeSourceKey(source.TenantId, source.Id)
		value := storage.MarshalSource(source)
		if err := tx.Set(key, value); err != nil {
			return err
		}

		// Update course index
		courseKey := makeCourseKey(source.TenantId, source.CourseId, source.CreatedAt, source.Id)
		if err := tx.Set(courseKey, storage.MarshalID(source.Id)); err != nil {
			return err
		}

		return tx.Commit()
	}, true)

	return source, err
}

// GetSource retrieves a single source by ID within a tenant.
func (r *SourceRepository) GetSource(ctx context.Context, tenantID string, id core.ID) (*core.Source, error) {
	var result *core.Source
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeSourceKey(tenantID, id)
		var err error
		result, err = readSource(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return &storage.NotFoundError{ID: id, TenantID: tenantID}
		}
		return nil
	}, false)
	return result, err
}

// ListCourseSources retrieves all sources of a course, newest first.
func (r *SourceRepository) ListCourseSources(ctx context.Context, tenantID, courseID string) ([]*core.Source, error) {
	var results []*core.Source
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makeCoursePrefix(tenantID, courseID)

		// Reverse iteration walks the BigEndian createdAt suffix newest first.
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Seek past the last possible key under this prefix.
		startKey := append(append([]byte{}, prefix...), 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if !bytes.HasPrefix(key, prefix) {
				break
			}

			var sourceID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				sourceID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			source, err := readSource(tx, makeSourceKey(tenantID, sourceID))
			if err != nil {
				return err
			}
			if source != nil {
				results = append(results, source)
			}
		}
		return nil
	}, false)

	return results, err
}

// ListSourcesByStatus retrieves sources in the given status with UpdatedAt
// before updatedBefore, across all tenants.
func (r *SourceRepository) ListSourcesByStatus(ctx context.Context, status core.SourceStatus, updatedBefore time.Time) ([]*core.Source, error) {
	var results []*core.Source
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeSourceScanPrefix()
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var source *core.Source
			err := iter.Item().Value(func(val []byte) error {
				var err error
				source, err = storage.UnmarshalSource(val)
				return err
			})
			if err != nil {
				return err
			}
			if source == nil {
				continue
			}
			if source.Status == status && source.UpdatedAt.Before(updatedBefore) {
				results = append(results, source)
			}
		}
		return nil
	}, false)

	return results, err
}

// UpdateSourceIf applies patch only if the source's current status equals
// expected. A missing source or a status mismatch skips the write and
// returns (nil, false, nil).
func (r *SourceRepository) UpdateSourceIf(ctx context.Context, tenantID string, id core.ID, expected core.SourceStatus, patch core.SourcePatch) (*core.Source, bool, error) {
	var (
		updated *core.Source
		applied bool
	)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeSourceKey(tenantID, id)
		source, err := readSource(tx, key)
		if err != nil {
			return err
		}
		if source == nil || source.Status != expected {
			return nil
		}

		source.Status = patch.Status
		source.RawContent = patch.RawContent
		source.ChunkCount = patch.ChunkCount
		source.ErrorMessage = patch.ErrorMessage
		if patch.Metadata != nil {
			source.Metadata = patch.Metadata
		}
		source.UpdatedAt = time.Now().UTC()

		if err := tx.Set(key, storage.MarshalSource(source)); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}

		updated = source
		applied = true
		return nil
	}, true)

	return updated, applied, err
}

// DeleteSource removes a source, its course index entry, and all of its
// segment embeddings.
func (r *SourceRepository) DeleteSource(ctx context.Context, tenantID string, id core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeSourceKey(tenantID, id)
		source, err := readSource(tx, key)
		if err != nil {
			return err
		}
		if source == nil {
			return &storage.NotFoundError{ID: id, TenantID: tenantID}
		}

		courseKey := makeCourseKey(tenantID, source.CourseId, source.CreatedAt, source.Id)
		if err := tx.Delete(courseKey); err != nil {
			return err
		}

		if _, err := deleteEmbeddings(tx, tenantID, id); err != nil {
			return err
		}

		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// readSource reads a source from the transaction.
func readSource(tx *badger.Txn, key []byte) (*core.Source, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var source *core.Source
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		source, unmarshalErr = storage.UnmarshalSource(val)
		return unmarshalErr
	})
	return source, err
}
