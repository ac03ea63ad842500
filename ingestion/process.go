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


package ingestion

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/studium-hq/studium/core"
)

// processSource runs the full background flow for one source:
// claim, extract, segment, vectorize, finish.
//
// Every status write is guarded on the expected current status, so a source
// deleted mid-flight (or claimed by a competing worker) makes the remaining
// writes silent no-ops.
func (p *Pipeline) processSource(ctx context.Context, tenantID string, id core.ID) {
	logger := p.logger.With("source", id, "tenant", tenantID)

	// Claim: PENDING -> PROCESSING
	source, claimed, err := p.sources.UpdateSourceIf(ctx, tenantID, id, core.StatusPending, core.SourcePatch{
		Status: core.StatusProcessing,
	})
	if err != nil {
		logger.Error("failed to claim source", "err", err)
		return
	}
	if !claimed {
		logger.Debug("source not claimable, skipping")
		return
	}

	logger.Info("processing source", "kind", source.Kind, "title", source.Title)

	// Extract
	extractCtx, cancel := context.WithTimeout(ctx, p.extractTimeout)
	extraction, err := p.registry.Extract(extractCtx, source.Kind, source.Origin)
	cancel()
	if err != nil {
		logger.Warn("extraction failed", "err", err)
		p.failSource(ctx, tenantID, id, source.Metadata, err.Error())
		return
	}

	// Segment
	segments := p.segmenter.Segment(extraction.Text)

	// Vectorize: per-segment failures lower the chunk count but never fail
	// the source.
	vectorized := p.vectorizeAll(ctx, tenantID, id, segments)
	if vectorized < len(segments) {
		logger.Warn("some segments failed to vectorize",
			"segments", len(segments), "vectorized", vectorized)
	}

	// Finish: PROCESSING -> READY
	metadata := mergeMetadata(source.Metadata, extraction.Metadata, extraction.Text)
	chunkCount := vectorized
	_, finished, err := p.sources.UpdateSourceIf(ctx, tenantID, id, core.StatusProcessing, core.SourcePatch{
		Status:     core.StatusReady,
		RawContent: &extraction.Text,
		ChunkCount: &chunkCount,
		Metadata:   metadata,
	})
	if err != nil {
		logger.Error("failed to finish source", "err", err)
		return
	}
	if !finished {
		logger.Debug("source vanished before finish, skipping")
		return
	}

	logger.Info("source ready", "chunks", chunkCount)
}

// failSource records a terminal extraction failure.
func (p *Pipeline) failSource(ctx context.Context, tenantID string, id core.ID, metadata map[string]string, message string) {
	_, _, err := p.sources.UpdateSourceIf(ctx, tenantID, id, core.StatusProcessing, core.SourcePatch{
		Status:       core.StatusFailed,
		ErrorMessage: &message,
		Metadata:     metadata,
	})
	if err != nil {
		p.logger.Error("failed to mark source failed", "source", id, "err", err)
	}
}

// vectorizeAll fans segments out to the vectorize pool and waits for all of
// them. Returns the number of segments vectorized successfully.
func (p *Pipeline) vectorizeAll(ctx context.Context, tenantID string, id core.ID, segments []core.Segment) int {
	if len(segments) == 0 {
		return 0
	}

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int64
	)

	for _, seg := range segments {
		seg := seg
		wg.Add(1)
		err := p.vectorExec.Submit(func() {
			defer wg.Done()
			vecCtx, cancel := context.WithTimeout(ctx, p.vectorizeTimeout)
			defer cancel()
			if _, err := p.vectorizer.Vectorize(vecCtx, tenantID, id, seg); err != nil {
				p.logger.Warn("segment vectorization failed",
					"source", id, "segment", seg.Index, "err", err)
				return
			}
			succeeded.Add(1)
		})
		if err != nil {
			// Counted as a failed segment
			wg.Done()
			p.logger.Warn("failed to schedule segment vectorization",
				"source", id, "segment", seg.Index, "err", err)
		}
	}

	wg.Wait()
	return int(succeeded.Load())
}

// mergeMetadata combines the source's own metadata, the extractor's
// metadata, and computed content stats. Extractor keys win over the
// source's; computed keys win over both.
func mergeMetadata(sourceMeta, extractionMeta map[string]string, text string) map[string]string {
	merged := make(map[string]string, len(sourceMeta)+len(extractionMeta)+2)
	for k, v := range sourceMeta {
		merged[k] = v
	}
	for k, v := range extractionMeta {
		merged[k] = v
	}
	merged["word_count"] = strconv.Itoa(len(strings.Fields(text)))
	merged["content_digest"] = core.ContentDigest(text)
	return merged
}
