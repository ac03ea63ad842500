package search

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/studium-hq/studium/ai"
	"github.com/studium-hq/studium/core"
	"github.com/studium-hq/studium/storage"
)

// DefaultMinSimilarity is the similarity floor applied to vector matches.
const DefaultMinSimilarity = 0.60

// verbatimBoost is added to a hit whose segment contains every query term.
const verbatimBoost = 0.3

// Hit is a single scored search result: a segment of text together with
// the source it was extracted from.
type Hit struct {
	Source       *core.Source
	SegmentText  string
	SegmentIndex int
	Score        float32
}

// Searcher provides semantic search over vectorized source segments.
type Searcher struct {
	sources       storage.SourceRepository
	embeddings    storage.EmbeddingRepository
	embedder      ai.Embedder
	minSimilarity float32
	logger        *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithMinSimilarity sets the similarity floor for vector matches.
// Default is DefaultMinSimilarity.
func WithMinSimilarity(min float32) Option {
	return func(s *Searcher) error {
		if min < 0 || min > 1 {
			return ErrInvalidSimilarity
		}
		s.minSimilarity = min
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	sources storage.SourceRepository,
	embeddings storage.EmbeddingRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Searcher, error) {
	if sources == nil {
		return nil, ErrSourceRepositoryRequired
	}
	if embeddings == nil {
		return nil, ErrEmbeddingRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		sources:       sources,
		embeddings:    embeddings,
		embedder:      provider.Embedder(),
		minSimilarity: DefaultMinSimilarity,
		logger:        slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// FindSegments searches for segments similar to the query within a tenant.
// Returns up to maxHits results, ranked by relevance score.
func (s *Searcher) FindSegments(ctx context.Context, tenantID, query string, maxHits int) ([]*Hit, error) {
	return s.FindSegmentsWithMonitor(ctx, tenantID, query, maxHits, nil)
}

// FindSegmentsWithMonitor searches for segments similar to the query with
// monitoring. The monitor receives callbacks at each stage of the search.
// Returns up to maxHits results, ranked by relevance score.
func (s *Searcher) FindSegmentsWithMonitor(ctx context.Context, tenantID, query string, maxHits int, monitor SearchMonitor) ([]*Hit, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query)

	vector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}

	matches, err := s.embeddings.FindSimilar(ctx, tenantID, vector, s.minSimilarity, maxHits)
	if err != nil {
		s.logger.Error("error querying for similar segments", "err", err)
		return nil, err
	}

	matchKeys := make([]string, 0, len(matches))
	for _, match := range matches {
		matchKeys = append(matchKeys, match.Embedding.Key)
	}
	monitor.AfterSemanticSearch(matchKeys)

	// Resolve parent sources once per distinct source ID. A segment whose
	// source has since been deleted or is not READY is dropped.
	sourceCache := make(map[core.ID]*core.Source)
	hits := make([]*Hit, 0, len(matches))

	for _, match := range matches {
		source, ok := sourceCache[match.Embedding.SourceId]
		if !ok {
			source, err = s.sources.GetSource(ctx, tenantID, match.Embedding.SourceId)
			if err != nil {
				if !errors.Is(err, storage.ErrNotFound) {
					s.logger.Error("error retrieving source for segment",
						"sourceID", match.Embedding.SourceId, "err", err)
					return nil, err
				}
				s.logger.Debug("segment references missing source",
					"key", match.Embedding.Key)
				source = nil
			}
			sourceCache[match.Embedding.SourceId] = source
		}
		if source == nil || source.Status != core.StatusReady {
			monitor.DroppedHit(match.Embedding.Key)
			continue
		}
		monitor.ResolvedSource(source)

		score := match.Score
		if containsAllQueryTerms(match.Embedding.Text, query) {
			score += verbatimBoost
			monitor.VerbatimHit(match.Embedding.Key)
		}

		hits = append(hits, &Hit{
			Source:       source,
			SegmentText:  match.Embedding.Text,
			SegmentIndex: match.Embedding.SegmentIndex,
			Score:        score,
		})
	}

	// Sort by score descending
	sort.Slice(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if maxHits > 0 && len(hits) > maxHits {
		hits = hits[:maxHits]
	}
	monitor.Finish(hits)

	return hits, nil
}
