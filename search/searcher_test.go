package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studium-hq/studium/ai"
	"github.com/studium-hq/studium/ai/mock"
	"github.com/studium-hq/studium/core"
	"github.com/studium-hq/studium/storage"
	"github.com/studium-hq/studium/storage/badger"
)

// keywordVector maps text to a fixed unit vector so similarity scores in
// tests are exact dot products.
func keywordVector(text string) []float32 {
	switch {
	case contains(text, "alpha") && contains(text, "bravo"):
		return []float32{0.8, 0.6, 0}
	case contains(text, "alpha"):
		return []float32{1, 0, 0}
	case contains(text, "bravo"):
		return []float32{0, 1, 0}
	default:
		return []float32{0, 0, 1}
	}
}

func contains(text, word string) bool {
	return containsAllQueryTerms(text, word)
}

func newKeywordProvider() ai.AIProvider {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(_ context.Context, text string) ([]float32, error) {
		return keywordVector(text), nil
	}
	return mock.NewMockProviderWithEmbedder(embedder)
}

type searchEnv struct {
	searcher   *Searcher
	sources    storage.SourceRepository
	embeddings storage.EmbeddingRepository
}

func newSearchEnv(t *testing.T, opts ...Option) *searchEnv {
	t.Helper()

	sourceRepo, embeddingRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		embeddingRepo.Close()
		sourceRepo.Close()
		backend.Close()
	})

	searcher, err := NewSearcher(sourceRepo, embeddingRepo, newKeywordProvider(), opts...)
	require.NoError(t, err)

	return &searchEnv{
		searcher:   searcher,
		sources:    sourceRepo,
		embeddings: embeddingRepo,
	}
}

func (env *searchEnv) addReadySource(t *testing.T, tenantID, title string, segments ...string) *core.Source {
	t.Helper()
	ctx := context.Background()

	raw := ""
	for _, seg := range segments {
		raw += seg + "\n"
	}
	count := len(segments)

	source, err := env.sources.AddSource(ctx, &core.Source{
		TenantId:   tenantID,
		CourseId:   "course-1",
		Title:      title,
		Kind:       core.KindText,
		Origin:     raw,
		Status:     core.StatusReady,
		RawContent: &raw,
		ChunkCount: &count,
	})
	require.NoError(t, err)

	for i, seg := range segments {
		_, err := env.embeddings.PutEmbedding(ctx, tenantID, &core.Embedding{
			Key:          core.SegmentKey(source.Id, i),
			SourceId:     source.Id,
			SegmentIndex: i,
			Text:         seg,
			Vector:       keywordVector(seg),
			InsertedAt:   time.Now().UTC(),
		})
		require.NoError(t, err)
	}

	return source
}

func TestNewSearcher_Validation(t *testing.T) {
	sourceRepo, embeddingRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		embeddingRepo.Close()
		sourceRepo.Close()
		backend.Close()
	}()

	_, err = NewSearcher(nil, embeddingRepo, newKeywordProvider())
	assert.ErrorIs(t, err, ErrSourceRepositoryRequired)

	_, err = NewSearcher(sourceRepo, nil, newKeywordProvider())
	assert.ErrorIs(t, err, ErrEmbeddingRepositoryRequired)

	_, err = NewSearcher(sourceRepo, embeddingRepo, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)

	_, err = NewSearcher(sourceRepo, embeddingRepo, newKeywordProvider(), WithMinSimilarity(1.5))
	assert.ErrorIs(t, err, ErrInvalidSimilarity)
}

func TestFindSegments_Empty(t *testing.T) {
	env := newSearchEnv(t)

	hits, err := env.searcher.FindSegments(context.Background(), "tenant-a", "alpha", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestFindSegments_ResolvesSource(t *testing.T) {
	env := newSearchEnv(t)
	source := env.addReadySource(t, "tenant-a", "Notes", "alpha notes", "bravo notes")

	hits, err := env.searcher.FindSegments(context.Background(), "tenant-a", "alpha", 10)
	require.NoError(t, err)

	require.Len(t, hits, 1)
	assert.Equal(t, source.Id, hits[0].Source.Id)
	assert.Equal(t, "Notes", hits[0].Source.Title)
	assert.Equal(t, "alpha notes", hits[0].SegmentText)
	assert.Equal(t, 0, hits[0].SegmentIndex)
	assert.Greater(t, hits[0].Score, float32(DefaultMinSimilarity))
}

func TestFindSegments_RankedByScore(t *testing.T) {
	env := newSearchEnv(t)
	env.addReadySource(t, "tenant-a", "Notes",
		"alpha only segment",
		"alpha and bravo mixed segment",
		"bravo only segment",
	)

	hits, err := env.searcher.FindSegments(context.Background(), "tenant-a", "alpha", 10)
	require.NoError(t, err)

	// The exact-alpha segment scores 1.0 plus the verbatim boost, the mixed
	// segment 0.8 plus boost, the bravo segment falls under the floor.
	require.Len(t, hits, 2)
	assert.Equal(t, "alpha only segment", hits[0].SegmentText)
	assert.Equal(t, "alpha and bravo mixed segment", hits[1].SegmentText)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}

func TestFindSegments_VerbatimBoost(t *testing.T) {
	env := newSearchEnv(t)
	env.addReadySource(t, "tenant-a", "Notes", "alpha segment")

	hits, err := env.searcher.FindSegments(context.Background(), "tenant-a", "alpha", 10)
	require.NoError(t, err)

	require.Len(t, hits, 1)
	assert.InDelta(t, 1.0+verbatimBoost, hits[0].Score, 0.001)
}

func TestFindSegments_TenantIsolation(t *testing.T) {
	env := newSearchEnv(t)
	env.addReadySource(t, "tenant-a", "A Notes", "alpha in tenant a")
	env.addReadySource(t, "tenant-b", "B Notes", "alpha in tenant b")

	hits, err := env.searcher.FindSegments(context.Background(), "tenant-a", "alpha", 10)
	require.NoError(t, err)

	require.Len(t, hits, 1)
	assert.Equal(t, "alpha in tenant a", hits[0].SegmentText)
}

func TestFindSegments_DropsNonReadySource(t *testing.T) {
	env := newSearchEnv(t)
	ctx := context.Background()

	source, err := env.sources.AddSource(ctx, &core.Source{
		TenantId: "tenant-a",
		CourseId: "course-1",
		Title:    "In Flight",
		Kind:     core.KindText,
		Origin:   "alpha content",
		Status:   core.StatusProcessing,
	})
	require.NoError(t, err)

	_, err = env.embeddings.PutEmbedding(ctx, "tenant-a", &core.Embedding{
		Key:          core.SegmentKey(source.Id, 0),
		SourceId:     source.Id,
		SegmentIndex: 0,
		Text:         "alpha content",
		Vector:       keywordVector("alpha content"),
	})
	require.NoError(t, err)

	hits, err := env.searcher.FindSegments(ctx, "tenant-a", "alpha", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestFindSegments_DropsOrphanedSegment(t *testing.T) {
	env := newSearchEnv(t)
	ctx := context.Background()

	// An embedding whose source was never written
	_, err := env.embeddings.PutEmbedding(ctx, "tenant-a", &core.Embedding{
		Key:          core.SegmentKey(999, 0),
		SourceId:     999,
		SegmentIndex: 0,
		Text:         "alpha orphan",
		Vector:       keywordVector("alpha orphan"),
	})
	require.NoError(t, err)

	hits, err := env.searcher.FindSegments(ctx, "tenant-a", "alpha", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestFindSegments_MaxHits(t *testing.T) {
	env := newSearchEnv(t)
	env.addReadySource(t, "tenant-a", "Notes",
		"alpha one", "alpha two", "alpha three", "alpha four",
	)

	hits, err := env.searcher.FindSegments(context.Background(), "tenant-a", "alpha", 2)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

// recordingMonitor captures every callback for assertions.
type recordingMonitor struct {
	started      bool
	semanticKeys []string
	resolved     []*core.Source
	dropped      []string
	verbatim     []string
	finished     []*Hit
}

func (m *recordingMonitor) Start(_ string)                    { m.started = true }
func (m *recordingMonitor) AfterSemanticSearch(keys []string) { m.semanticKeys = keys }
func (m *recordingMonitor) ResolvedSource(s *core.Source)     { m.resolved = append(m.resolved, s) }
func (m *recordingMonitor) DroppedHit(key string)             { m.dropped = append(m.dropped, key) }
func (m *recordingMonitor) VerbatimHit(key string)            { m.verbatim = append(m.verbatim, key) }
func (m *recordingMonitor) Finish(hits []*Hit)                { m.finished = hits }

func TestFindSegmentsWithMonitor(t *testing.T) {
	env := newSearchEnv(t)
	source := env.addReadySource(t, "tenant-a", "Notes", "alpha segment")

	monitor := &recordingMonitor{}
	hits, err := env.searcher.FindSegmentsWithMonitor(context.Background(), "tenant-a", "alpha", 10, monitor)
	require.NoError(t, err)

	require.Len(t, hits, 1)
	assert.True(t, monitor.started)
	assert.Equal(t, []string{core.SegmentKey(source.Id, 0)}, monitor.semanticKeys)
	require.Len(t, monitor.resolved, 1)
	assert.Equal(t, source.Id, monitor.resolved[0].Id)
	assert.Equal(t, []string{core.SegmentKey(source.Id, 0)}, monitor.verbatim)
	assert.Empty(t, monitor.dropped)
	assert.Equal(t, hits, monitor.finished)
}

func TestTokenizeAndFilter(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"simple", "Alpha Bravo", []string{"alpha", "bravo"}},
		{"stop words removed", "the alpha and the bravo", []string{"alpha", "bravo"}},
		{"punctuation trimmed", "alpha, bravo!", []string{"alpha", "bravo"}},
		{"only stop words", "the and of", []string{}},
		{"empty", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tokenizeAndFilter(tt.input))
		})
	}
}

func TestContainsAllQueryTerms(t *testing.T) {
	tests := []struct {
		name    string
		segment string
		query   string
		want    bool
	}{
		{"all present", "mitochondria produce energy", "mitochondria energy", true},
		{"missing term", "mitochondria produce energy", "chloroplast energy", false},
		{"stop words ignored", "the cell divides", "the divides", true},
		{"case insensitive", "Cell Division", "cell division", true},
		{"empty query", "some segment", "", false},
		{"query of stop words", "some segment", "the and", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, containsAllQueryTerms(tt.segment, tt.query))
		})
	}
}
