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


package reembed

import (
	"context"

	"github.com/studium-hq/studium/core"
	"github.com/studium-hq/studium/storage"
)

const (
	// DefaultBatchSize is the default number of segments to process in each batch
	DefaultBatchSize = 100
)

// SegmentIterator iterates over the segment embeddings of a course in batches.
// Only segments belonging to READY sources are visited; sources still being
// processed keep their in-flight embeddings untouched.
type SegmentIterator struct {
	sources    storage.SourceRepository
	embeddings storage.EmbeddingRepository
	batchSize  int
}

// NewSegmentIterator creates a new segment iterator.
// batchSize: number of segments to visit in each batch (must be > 0)
func NewSegmentIterator(sources storage.SourceRepository, embeddings storage.EmbeddingRepository, batchSize int) *SegmentIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &SegmentIterator{
		sources:    sources,
		embeddings: embeddings,
		batchSize:  batchSize,
	}
}

// Count returns the total number of segments the iterator would visit.
func (it *SegmentIterator) Count(ctx context.Context, tenantID, courseID string) (int, error) {
	segments, err := it.collect(ctx, tenantID, courseID)
	if err != nil {
		return 0, err
	}
	return len(segments), nil
}

// ForEach iterates over the course's segments, calling fn for each batch.
// Iteration stops on first error from fn or when all segments are visited.
// Context cancellation is checked between batches.
func (it *SegmentIterator) ForEach(ctx context.Context, tenantID, courseID string, fn func([]*core.Embedding) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	segments, err := it.collect(ctx, tenantID, courseID)
	if err != nil {
		return err
	}

	if len(segments) == 0 {
		return nil
	}

	for i := 0; i < len(segments); i += it.batchSize {
		end := i + it.batchSize
		if end > len(segments) {
			end = len(segments)
		}

		if err := fn(segments[i:end]); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	return nil
}

// collect gathers every embedding of the course's READY sources, grouped
// by source in listing order.
func (it *SegmentIterator) collect(ctx context.Context, tenantID, courseID string) ([]*core.Embedding, error) {
	sources, err := it.sources.ListCourseSources(ctx, tenantID, courseID)
	if err != nil {
		return nil, err
	}

	var segments []*core.Embedding
	for _, source := range sources {
		if source.Status != core.StatusReady {
			continue
		}
		embeddings, err := it.embeddings.ListSourceEmbeddings(ctx, tenantID, source.Id)
		if err != nil {
			return nil, err
		}
		segments = append(segments, embeddings...)
	}

	return segments, nil
}
