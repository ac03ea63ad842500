package storage

import (
	"context"
	"time"

	"github.com/studium-hq/studium/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// FindSimilar finds segment embeddings similar to the given vector within
	// a tenant. Returns matches with similarity >= minSimilarity, up to limit
	// results, ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, tenantID string, vector []float32, minSimilarity float32, limit int) ([]*core.SegmentMatch, error)

	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// SourceRepository provides operations for managing knowledge sources.
type SourceRepository interface {
	Repository
	// AddSource adds a source to storage.
	// For a source with ID=0, generates a new ID from sequence.
	// Sets CreatedAt and UpdatedAt timestamps if not already set.
	// Returns the source with the generated ID and timestamps populated.
	AddSource(ctx context.Context, source *core.Source) (*core.Source, error)

	// GetSource retrieves a single source by ID within a tenant.
	// Returns a *NotFoundError (matching ErrNotFound) if the source does not
	// exist or belongs to a different tenant.
	GetSource(ctx context.Context, tenantID string, id core.ID) (*core.Source, error)

	// ListCourseSources retrieves all sources of a course within a tenant,
	// ordered by creation time descending (newest first).
	ListCourseSources(ctx context.Context, tenantID, courseID string) ([]*core.Source, error)

	// ListSourcesByStatus retrieves sources in the given status whose
	// UpdatedAt is before updatedBefore, across all tenants. Used by the
	// stalled-source sweeper.
	ListSourcesByStatus(ctx context.Context, status core.SourceStatus, updatedBefore time.Time) ([]*core.Source, error)

	// UpdateSourceIf applies patch to the source only if its current status
	// equals expected. Returns the updated source and true when the patch
	// was applied. A missing source or a status mismatch is not an error:
	// the write is skipped and (nil, false, nil) is returned.
	// UpdatedAt is refreshed on every applied patch.
	UpdateSourceIf(ctx context.Context, tenantID string, id core.ID, expected core.SourceStatus, patch core.SourcePatch) (*core.Source, bool, error)

	// DeleteSource removes a source and all of its segment embeddings.
	// Returns a *NotFoundError (matching ErrNotFound) if the source does not
	// exist within the tenant.
	DeleteSource(ctx context.Context, tenantID string, id core.ID) error
}

// EmbeddingRepository provides operations for managing segment embeddings.
type EmbeddingRepository interface {
	Repository
	// PutEmbedding stores a segment embedding, overwriting any embedding
	// with the same key. Sets InsertedAt if not already set.
	PutEmbedding(ctx context.Context, tenantID string, embedding *core.Embedding) (*core.Embedding, error)

	// GetEmbedding retrieves a segment embedding by its key.
	// Returns ErrNotFound if the embedding does not exist.
	GetEmbedding(ctx context.Context, tenantID, key string) (*core.Embedding, error)

	// ListSourceEmbeddings retrieves all embeddings of a source, ordered by
	// segment index.
	ListSourceEmbeddings(ctx context.Context, tenantID string, sourceID core.ID) ([]*core.Embedding, error)

	// DeleteSourceEmbeddings removes all embeddings of a source.
	// Missing embeddings are not an error; returns the number removed.
	DeleteSourceEmbeddings(ctx context.Context, tenantID string, sourceID core.ID) (int, error)
}
