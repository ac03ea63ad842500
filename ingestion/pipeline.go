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
	"log/slog"
	"runtime"
	"time"

	"github.com/studium-hq/studium/ai"
	"github.com/studium-hq/studium/core"
	"github.com/studium-hq/studium/extract"
	"github.com/studium-hq/studium/segment"
	"github.com/studium-hq/studium/storage"
)

const (
	defaultExtractTimeout   = 2 * time.Minute
	defaultVectorizeTimeout = 30 * time.Second
)

// Pipeline orchestrates the ingestion and processing of knowledge sources.
// Source creation is synchronous and cheap; extraction, segmentation, and
// vectorization run in the background on worker pools.
type Pipeline struct {
	sources        storage.SourceRepository
	embeddings     storage.EmbeddingRepository
	registry       *extract.Registry
	segmenter      segment.Segmenter
	vectorizer     Vectorizer
	sourceExec       Executor
	vectorExec       Executor
	extractTimeout   time.Duration
	vectorizeTimeout time.Duration
	logger           *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for background processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old executors
		if p.sourceExec != nil {
			p.sourceExec.Release()
		}
		if p.vectorExec != nil {
			p.vectorExec.Release()
		}

		sourceExec, err := NewPoolExecutor(size)
		if err != nil {
			return err
		}

		vectorExec, err := NewPoolExecutor(size)
		if err != nil {
			sourceExec.Release()
			return err
		}

		p.sourceExec = sourceExec
		p.vectorExec = vectorExec
		return nil
	}
}

// WithExecutors replaces both executors. Used by tests to make background
// processing deterministic.
func WithExecutors(sourceExec, vectorExec Executor) Option {
	return func(p *Pipeline) error {
		if p.sourceExec != nil {
			p.sourceExec.Release()
		}
		if p.vectorExec != nil {
			p.vectorExec.Release()
		}
		p.sourceExec = sourceExec
		p.vectorExec = vectorExec
		return nil
	}
}

// WithRegistry sets the extractor registry.
// Default is extract.DefaultRegistry().
func WithRegistry(registry *extract.Registry) Option {
	return func(p *Pipeline) error {
		p.registry = registry
		return nil
	}
}

// WithSegmenter sets the segmenter.
// Default is segment.NewRecursiveSegmenter().
func WithSegmenter(s segment.Segmenter) Option {
	return func(p *Pipeline) error {
		p.segmenter = s
		return nil
	}
}

// WithVectorizer sets the vectorizer.
// Default embeds segments and stores them in the embedding repository.
func WithVectorizer(v Vectorizer) Option {
	return func(p *Pipeline) error {
		p.vectorizer = v
		return nil
	}
}

// WithExtractTimeout bounds how long a single extraction may run.
// Default is 2 minutes.
func WithExtractTimeout(d time.Duration) Option {
	return func(p *Pipeline) error {
		if d > 0 {
			p.extractTimeout = d
		}
		return nil
	}
}

// WithVectorizeTimeout bounds how long embedding a single segment may run.
// Default is 30 seconds.
func WithVectorizeTimeout(d time.Duration) Option {
	return func(p *Pipeline) error {
		if d > 0 {
			p.vectorizeTimeout = d
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	sources storage.SourceRepository,
	embeddings storage.EmbeddingRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if sources == nil {
		return nil, ErrSourceRepositoryRequired
	}
	if embeddings == nil {
		return nil, ErrEmbeddingRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	sourceExec, err := NewPoolExecutor(poolSize)
	if err != nil {
		return nil, err
	}

	vectorExec, err := NewPoolExecutor(poolSize)
	if err != nil {
		sourceExec.Release()
		return nil, err
	}

	p := &Pipeline{
		sources:          sources,
		embeddings:       embeddings,
		registry:         extract.DefaultRegistry(),
		segmenter:        segment.NewRecursiveSegmenter(),
		sourceExec:       sourceExec,
		vectorExec:       vectorExec,
		extractTimeout:   defaultExtractTimeout,
		vectorizeTimeout: defaultVectorizeTimeout,
		logger:           slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	// Create the vectorizer after options are applied (so it gets the final logger)
	if p.vectorizer == nil {
		vectorizer, err := NewVectorizer(embeddings, provider.Embedder(), p.logger)
		if err != nil {
			p.Release()
			return nil, err
		}
		p.vectorizer = vectorizer
	}

	return p, nil
}

// CreateSourceRequest holds the caller-supplied fields of a new source.
type CreateSourceRequest struct {
	TenantID string
	CourseID string
	Title    string
	Kind     core.SourceKind
	Origin   string
	Metadata map[string]string
}

// CreateSource persists a new PENDING source and schedules its background
// processing. The returned source reflects the state at creation time; its
// status advances asynchronously. If scheduling fails the source stays
// PENDING and is picked up by a later sweep.
func (p *Pipeline) CreateSource(ctx context.Context, req CreateSourceRequest) (*core.Source, error) {
	source := &core.Source{
		TenantId: req.TenantID,
		CourseId: req.CourseID,
		Title:    req.Title,
		Kind:     req.Kind,
		Origin:   req.Origin,
		Status:   core.StatusPending,
		Metadata: req.Metadata,
	}

	if err := core.ValidateSource(source); err != nil {
		return nil, err
	}

	added, err := p.sources.AddSource(ctx, source)
	if err != nil {
		return nil, err
	}

	p.schedule(added.TenantId, added.Id)

	return added, nil
}

// GetSource retrieves a source by ID within a tenant.
func (p *Pipeline) GetSource(ctx context.Context, tenantID string, id core.ID) (*core.Source, error) {
	return p.sources.GetSource(ctx, tenantID, id)
}

// ListCourseSources retrieves all sources of a course, newest first.
func (p *Pipeline) ListCourseSources(ctx context.Context, tenantID, courseID string) ([]*core.Source, error) {
	return p.sources.ListCourseSources(ctx, tenantID, courseID)
}

// DeleteSource removes a source and its embeddings. Sources are deletable
// in any status; a processing run racing the delete finishes without effect.
func (p *Pipeline) DeleteSource(ctx context.Context, tenantID string, id core.ID) error {
	return p.sources.DeleteSource(ctx, tenantID, id)
}

// schedule submits a source for background processing. Scheduling failures
// are logged, not returned: the record is already durable in PENDING.
func (p *Pipeline) schedule(tenantID string, id core.ID) {
	err := p.sourceExec.Submit(func() {
		p.processSource(context.Background(), tenantID, id)
	})
	if err != nil {
		p.logger.Error("failed to schedule source processing", "source", id, "err", err)
	}
}

// Release releases resources including worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.sourceExec != nil {
		p.sourceExec.Release()
	}
	if p.vectorExec != nil {
		p.vectorExec.Release()
	}
}
