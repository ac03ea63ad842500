package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/studium-hq/studium/ai"
	"github.com/studium-hq/studium/core"
	"github.com/studium-hq/studium/storage"
)

// BatchProcessor handles embedding regeneration for batches of segments.
type BatchProcessor struct {
	embeddings     storage.EmbeddingRepository
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(embeddings storage.EmbeddingRepository, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		embeddings:     embeddings,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process regenerates the vectors of a batch of segments and writes them back.
// Vectors are normalized after embedding to ensure compatibility with cosine similarity.
func (bp *BatchProcessor) Process(ctx context.Context, tenantID string, segments []*core.Embedding) error {
	if len(segments) == 0 {
		return nil
	}

	texts := make([]string, len(segments))
	for i, segment := range segments {
		texts[i] = segment.Text
	}

	// Generate embeddings with retry
	var vectors [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		vectors, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)

	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(vectors) != len(segments) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(segments), len(vectors))
	}

	for i, segment := range segments {
		segment.Vector = NormalizeVector(vectors[i])
		if _, err := bp.embeddings.PutEmbedding(ctx, tenantID, segment); err != nil {
			return fmt.Errorf("failed to update segment %s: %w", segment.Key, err)
		}
	}

	return nil
}
