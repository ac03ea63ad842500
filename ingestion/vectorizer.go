package ingestion

import (
	"context"
	"log/slog"

	"github.com/studium-hq/studium/ai"
	"github.com/studium-hq/studium/core"
	"github.com/studium-hq/studium/storage"
)

// Vectorizer turns one segment into a persisted embedding and returns the
// embedding's key. Vectorizing the same (source, index) twice overwrites the
// previous embedding, so retries are idempotent.
// Implementations must be thread-safe; segments of one source are vectorized
// concurrently.
type Vectorizer interface {
	Vectorize(ctx context.Context, tenantID string, sourceID core.ID, seg core.Segment) (string, error)
}

// embeddingVectorizer embeds segment text and stores the result in the
// embedding repository.
type embeddingVectorizer struct {
	embeddings storage.EmbeddingRepository
	embedder   ai.Embedder
	logger     *slog.Logger
}

var _ Vectorizer = (*embeddingVectorizer)(nil)

// NewVectorizer creates the default embedding-backed vectorizer.
func NewVectorizer(embeddings storage.EmbeddingRepository, embedder ai.Embedder, logger *slog.Logger) (Vectorizer, error) {
	if embeddings == nil {
		return nil, ErrEmbeddingRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingVectorizer{
		embeddings: embeddings,
		embedder:   embedder,
		logger:     logger.With("component", "vectorizer"),
	}, nil
}

func (v *embeddingVectorizer) Vectorize(ctx context.Context, tenantID string, sourceID core.ID, seg core.Segment) (string, error) {
	vector, err := v.embedder.EmbedText(ctx, seg.Text)
	if err != nil {
		return "", err
	}

	key := core.SegmentKey(sourceID, seg.Index)
	_, err = v.embeddings.PutEmbedding(ctx, tenantID, &core.Embedding{
		Key:          key,
		SourceId:     sourceID,
		SegmentIndex: seg.Index,
		Text:         seg.Text,
		Vector:       vector,
	})
	if err != nil {
		return "", err
	}

	return key, nil
}
