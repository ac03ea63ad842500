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
	"fmt"
	"io"
	"time"

	"github.com/studium-hq/studium/ai"
	"github.com/studium-hq/studium/core"
	"github.com/studium-hq/studium/storage"
)

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of segments to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of segments)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reembedder regenerates the segment embeddings of a course, typically after
// switching to a different embedding model.
type Reembedder struct {
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *SegmentIterator
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(sources storage.SourceRepository, embeddings storage.EmbeddingRepository, embedder ai.Embedder, config *Config, progress io.Writer) *Reembedder {
	if config == nil {
		config = DefaultConfig()
	}

	processor := NewBatchProcessor(embeddings, embedder, config.MaxRetries, config.RetryDelay)
	iterator := NewSegmentIterator(sources, embeddings, config.BatchSize)

	return &Reembedder{
		config:    config,
		progress:  progress,
		processor: processor,
		iterator:  iterator,
	}
}

// Run executes the reembedding operation for one course.
// Every segment of the course's READY sources is reembedded with the
// configured embedder. Progress is reported to the configured writer.
func (r *Reembedder) Run(ctx context.Context, tenantID, courseID string) error {
	totalSegments, err := r.iterator.Count(ctx, tenantID, courseID)
	if err != nil {
		return fmt.Errorf("failed to count segments: %w", err)
	}

	if totalSegments == 0 {
		fmt.Fprintf(r.progress, "No segments found for course %s (0 segments)\n", courseID)
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d segments (batch size: %d)\n",
		totalSegments, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, totalSegments, r.config.ReportInterval)
	tracker.Start()

	processed := 0

	err = r.iterator.ForEach(ctx, tenantID, courseID, func(segments []*core.Embedding) error {
		if err := r.processor.Process(ctx, tenantID, segments); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}

		processed += len(segments)
		tracker.Update(processed)

		return nil
	})

	if err != nil {
		return err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d segments in %v (%.1f segments/sec)\n",
		totalSegments, elapsed.Round(time.Second), float64(totalSegments)/elapsed.Seconds())

	return nil
}
