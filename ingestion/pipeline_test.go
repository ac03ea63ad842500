package ingestion

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studium-hq/studium/ai/mock"
	"github.com/studium-hq/studium/core"
	"github.com/studium-hq/studium/segment"
	"github.com/studium-hq/studium/storage"
	"github.com/studium-hq/studium/storage/badger"
)

// manualExecutor queues tasks until RunAll is called, making background
// processing deterministic in tests.
type manualExecutor struct {
	mu    sync.Mutex
	tasks []func()
}

func (e *manualExecutor) Submit(task func()) error {
	e.mu.Lock()
	e.tasks = append(e.tasks, task)
	e.mu.Unlock()
	return nil
}

func (e *manualExecutor) RunAll() {
	for {
		e.mu.Lock()
		if len(e.tasks) == 0 {
			e.mu.Unlock()
			return
		}
		task := e.tasks[0]
		e.tasks = e.tasks[1:]
		e.mu.Unlock()
		task()
	}
}

func (e *manualExecutor) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.tasks)
}

func (e *manualExecutor) Release() {}

// inlineExecutor runs tasks synchronously on Submit.
type inlineExecutor struct{}

func (inlineExecutor) Submit(task func()) error { task(); return nil }
func (inlineExecutor) Release()                 {}

// failingVectorizer wraps a Vectorizer, failing for segments whose text
// matches failOn. An empty failOn fails everything.
type failingVectorizer struct {
	inner  Vectorizer
	failOn string
}

func (v *failingVectorizer) Vectorize(ctx context.Context, tenantID string, sourceID core.ID, seg core.Segment) (string, error) {
	if v.failOn == "" || seg.Text == v.failOn {
		return "", errors.New("embedding service unavailable")
	}
	return v.inner.Vectorize(ctx, tenantID, sourceID, seg)
}

type testEnv struct {
	pipeline   *Pipeline
	sources    storage.SourceRepository
	embeddings storage.EmbeddingRepository
	sourceExec *manualExecutor
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()

	sourceRepo, embeddingRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		embeddingRepo.Close()
		sourceRepo.Close()
		backend.Close()
	})

	sourceExec := &manualExecutor{}
	baseOpts := []Option{
		WithExecutors(sourceExec, inlineExecutor{}),
		WithSegmenter(segment.NewRecursiveSegmenter(segment.WithChunkSize(10), segment.WithChunkOverlap(0))),
	}

	pipeline, err := NewPipeline(sourceRepo, embeddingRepo, mock.NewMockProvider(), append(baseOpts, opts...)...)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	return &testEnv{
		pipeline:   pipeline,
		sources:    sourceRepo,
		embeddings: embeddingRepo,
		sourceExec: sourceExec,
	}
}

func TestNewPipeline_Validation(t *testing.T) {
	sourceRepo, embeddingRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		embeddingRepo.Close()
		sourceRepo.Close()
		backend.Close()
	}()

	_, err = NewPipeline(nil, embeddingRepo, mock.NewMockProvider())
	assert.ErrorIs(t, err, ErrSourceRepositoryRequired)

	_, err = NewPipeline(sourceRepo, nil, mock.NewMockProvider())
	assert.ErrorIs(t, err, ErrEmbeddingRepositoryRequired)

	_, err = NewPipeline(sourceRepo, embeddingRepo, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)
}

func TestCreateSource_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  CreateSourceRequest
	}{
		{
			name: "empty tenant",
			req:  CreateSourceRequest{CourseID: "c", Title: "t", Kind: core.KindText, Origin: "o"},
		},
		{
			name: "empty course",
			req:  CreateSourceRequest{TenantID: "a", Title: "t", Kind: core.KindText, Origin: "o"},
		},
		{
			name: "empty title",
			req:  CreateSourceRequest{TenantID: "a", CourseID: "c", Kind: core.KindText, Origin: "o"},
		},
		{
			name: "empty origin",
			req:  CreateSourceRequest{TenantID: "a", CourseID: "c", Title: "t", Kind: core.KindText},
		},
		{
			name: "invalid kind",
			req:  CreateSourceRequest{TenantID: "a", CourseID: "c", Title: "t", Origin: "o"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.pipeline.CreateSource(ctx, tt.req)
			assert.ErrorIs(t, err, core.ErrInvalidSource)
		})
	}

	// Nothing was scheduled for invalid requests
	assert.Zero(t, env.sourceExec.Pending())
}

func TestCreateSource_ReturnsPending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.pipeline.CreateSource(ctx, CreateSourceRequest{
		TenantID: "tenant-a",
		CourseID: "course-1",
		Title:    "Syllabus",
		Kind:     core.KindText,
		Origin:   "alpha\n\nbravo\n\ncharlie",
	})
	require.NoError(t, err)

	assert.NotZero(t, created.Id)
	assert.Equal(t, core.StatusPending, created.Status)
	assert.Nil(t, created.RawContent)
	assert.Nil(t, created.ChunkCount)
	assert.Nil(t, created.ErrorMessage)

	// Readable before processing runs
	fetched, err := env.pipeline.GetSource(ctx, "tenant-a", created.Id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusPending, fetched.Status)

	assert.Equal(t, 1, env.sourceExec.Pending())
}

func TestProcessSource_Success(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.pipeline.CreateSource(ctx, CreateSourceRequest{
		TenantID: "tenant-a",
		CourseID: "course-1",
		Title:    "Syllabus",
		Kind:     core.KindText,
		Origin:   "alpha\n\nbravo\n\ncharlie",
		Metadata: map[string]string{"week": "1"},
	})
	require.NoError(t, err)

	env.sourceExec.RunAll()

	final, err := env.pipeline.GetSource(ctx, "tenant-a", created.Id)
	require.NoError(t, err)

	assert.Equal(t, core.StatusReady, final.Status)
	require.NotNil(t, final.RawContent)
	assert.Equal(t, "alpha\n\nbravo\n\ncharlie", *final.RawContent)
	require.NotNil(t, final.ChunkCount)
	assert.Nil(t, final.ErrorMessage)

	// Caller metadata survives, computed metadata added
	assert.Equal(t, "1", final.Metadata["week"])
	assert.Equal(t, "text", final.Metadata["format"])
	assert.Equal(t, "3", final.Metadata["word_count"])
	assert.NotEmpty(t, final.Metadata["content_digest"])

	// Embeddings persisted, one per counted chunk
	stored, err := env.embeddings.ListSourceEmbeddings(ctx, "tenant-a", created.Id)
	require.NoError(t, err)
	assert.Len(t, stored, *final.ChunkCount)
	require.NotEmpty(t, stored)
	for _, e := range stored {
		assert.Equal(t, created.Id, e.SourceId)
		assert.Equal(t, core.SegmentKey(created.Id, e.SegmentIndex), e.Key)
		assert.NotEmpty(t, e.Vector)
		assert.NotEmpty(t, e.Text)
	}
}

func TestProcessSource_ExtractionFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.pipeline.CreateSource(ctx, CreateSourceRequest{
		TenantID: "tenant-a",
		CourseID: "course-1",
		Title:    "Blank",
		Kind:     core.KindText,
		Origin:   "   ",
	})
	require.NoError(t, err)

	env.sourceExec.RunAll()

	final, err := env.pipeline.GetSource(ctx, "tenant-a", created.Id)
	require.NoError(t, err)

	assert.Equal(t, core.StatusFailed, final.Status)
	require.NotNil(t, final.ErrorMessage)
	assert.NotEmpty(t, *final.ErrorMessage)
	assert.Nil(t, final.RawContent)
	assert.Nil(t, final.ChunkCount)

	stored, err := env.embeddings.ListSourceEmbeddings(ctx, "tenant-a", created.Id)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestProcessSource_PartialVectorization(t *testing.T) {
	sourceRepo, embeddingRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		embeddingRepo.Close()
		sourceRepo.Close()
		backend.Close()
	}()

	provider := mock.NewMockProvider()
	inner, err := NewVectorizer(embeddingRepo, provider.Embedder(), nil)
	require.NoError(t, err)

	sourceExec := &manualExecutor{}
	pipeline, err := NewPipeline(sourceRepo, embeddingRepo, provider,
		WithExecutors(sourceExec, inlineExecutor{}),
		WithSegmenter(segment.NewRecursiveSegmenter(segment.WithChunkSize(10), segment.WithChunkOverlap(0))),
		WithVectorizer(&failingVectorizer{inner: inner, failOn: "bravo"}),
	)
	require.NoError(t, err)
	defer pipeline.Release()

	ctx := context.Background()
	created, err := pipeline.CreateSource(ctx, CreateSourceRequest{
		TenantID: "tenant-a",
		CourseID: "course-1",
		Title:    "Syllabus",
		Kind:     core.KindText,
		Origin:   "alpha\n\nbravo\n\ncharlie",
	})
	require.NoError(t, err)

	sourceExec.RunAll()

	final, err := pipeline.GetSource(ctx, "tenant-a", created.Id)
	require.NoError(t, err)

	// A failed segment lowers the count but the source is still READY
	assert.Equal(t, core.StatusReady, final.Status)
	require.NotNil(t, final.ChunkCount)
	assert.Equal(t, 2, *final.ChunkCount)
	assert.Nil(t, final.ErrorMessage)

	stored, err := embeddingRepo.ListSourceEmbeddings(ctx, "tenant-a", created.Id)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
	for _, e := range stored {
		assert.NotEqual(t, "bravo", e.Text)
	}
}

func TestProcessSource_AllVectorizationFails(t *testing.T) {
	sourceRepo, embeddingRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		embeddingRepo.Close()
		sourceRepo.Close()
		backend.Close()
	}()

	sourceExec := &manualExecutor{}
	pipeline, err := NewPipeline(sourceRepo, embeddingRepo, mock.NewMockProvider(),
		WithExecutors(sourceExec, inlineExecutor{}),
		WithVectorizer(&failingVectorizer{}),
	)
	require.NoError(t, err)
	defer pipeline.Release()

	ctx := context.Background()
	created, err := pipeline.CreateSource(ctx, CreateSourceRequest{
		TenantID: "tenant-a",
		CourseID: "course-1",
		Title:    "Syllabus",
		Kind:     core.KindText,
		Origin:   "some perfectly extractable content",
	})
	require.NoError(t, err)

	sourceExec.RunAll()

	final, err := pipeline.GetSource(ctx, "tenant-a", created.Id)
	require.NoError(t, err)

	// Zero vectorized chunks is still a READY outcome
	assert.Equal(t, core.StatusReady, final.Status)
	require.NotNil(t, final.ChunkCount)
	assert.Equal(t, 0, *final.ChunkCount)
	require.NotNil(t, final.RawContent)
}

// blockingVectorizer blocks until the call's context is done.
type blockingVectorizer struct{}

func (blockingVectorizer) Vectorize(ctx context.Context, tenantID string, sourceID core.ID, seg core.Segment) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestProcessSource_VectorizationTimeout(t *testing.T) {
	env := newTestEnv(t,
		WithVectorizer(blockingVectorizer{}),
		WithVectorizeTimeout(10*time.Millisecond),
	)

	ctx := context.Background()
	created, err := env.pipeline.CreateSource(ctx, CreateSourceRequest{
		TenantID: "tenant-a",
		CourseID: "course-1",
		Title:    "Syllabus",
		Kind:     core.KindText,
		Origin:   "alpha",
	})
	require.NoError(t, err)

	// A hung embedder must not pin the worker; the per-segment timeout
	// bounds the call and processing finishes.
	done := make(chan struct{})
	go func() {
		env.sourceExec.RunAll()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("processing did not finish within the vectorization timeout")
	}

	final, err := env.pipeline.GetSource(ctx, "tenant-a", created.Id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusReady, final.Status)
	require.NotNil(t, final.ChunkCount)
	assert.Equal(t, 0, *final.ChunkCount)
}

func TestProcessSource_DeletedBeforeRun(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.pipeline.CreateSource(ctx, CreateSourceRequest{
		TenantID: "tenant-a",
		CourseID: "course-1",
		Title:    "Doomed",
		Kind:     core.KindText,
		Origin:   "content",
	})
	require.NoError(t, err)

	require.NoError(t, env.pipeline.DeleteSource(ctx, "tenant-a", created.Id))

	// The queued task must be a silent no-op
	env.sourceExec.RunAll()

	_, err = env.pipeline.GetSource(ctx, "tenant-a", created.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	stored, err := env.embeddings.ListSourceEmbeddings(ctx, "tenant-a", created.Id)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestProcessSource_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.pipeline.CreateSource(ctx, CreateSourceRequest{
		TenantID: "tenant-a",
		CourseID: "course-1",
		Title:    "Syllabus",
		Kind:     core.KindText,
		Origin:   "alpha\n\nbravo",
	})
	require.NoError(t, err)

	env.sourceExec.RunAll()

	// Running the task again must not touch the READY record
	env.pipeline.processSource(ctx, "tenant-a", created.Id)

	final, err := env.pipeline.GetSource(ctx, "tenant-a", created.Id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusReady, final.Status)
}

func TestListCourseSources_ViaPipeline(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := env.pipeline.CreateSource(ctx, CreateSourceRequest{
			TenantID: "tenant-a",
			CourseID: "course-1",
			Title:    fmt.Sprintf("Source %d", i),
			Kind:     core.KindText,
			Origin:   "content",
		})
		require.NoError(t, err)
	}

	listed, err := env.pipeline.ListCourseSources(ctx, "tenant-a", "course-1")
	require.NoError(t, err)
	assert.Len(t, listed, 3)
}
