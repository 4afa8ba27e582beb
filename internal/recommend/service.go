package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"NewsRecommender/internal/domain"
	"NewsRecommender/internal/ports"
)

// Mode selects how recommendations are scored.
type Mode string

const (
	// ModeContent ranks purely by content similarity.
	ModeContent Mode = "content"
	// ModeHybrid blends content similarity with popularity.
	ModeHybrid Mode = "hybrid"
)

// displayContentLimit caps article content returned for display.
const displayContentLimit = 200

// Params is the tunable surface of the recommendation service.
type Params struct {
	TopN             int
	MinSimilarity    float64
	CategoryBoost    float64
	ContentWeight    float64
	PopularityWeight float64
	NearDuplicate    float64
}

// DefaultParams returns the stock tuning.
func DefaultParams() Params {
	return Params{
		TopN:             5,
		MinSimilarity:    0.1,
		CategoryBoost:    1.3,
		ContentWeight:    0.7,
		PopularityWeight: 0.3,
		NearDuplicate:    0.98,
	}
}

func (p Params) withDefaults() Params {
	defaults := DefaultParams()
	if p.TopN <= 0 {
		p.TopN = defaults.TopN
	}
	if p.CategoryBoost <= 0 {
		p.CategoryBoost = defaults.CategoryBoost
	}
	if p.ContentWeight <= 0 {
		p.ContentWeight = defaults.ContentWeight
	}
	if p.PopularityWeight < 0 {
		p.PopularityWeight = defaults.PopularityWeight
	}
	if p.NearDuplicate <= 0 {
		p.NearDuplicate = defaults.NearDuplicate
	}
	return p
}

// snapshot bundles everything one corpus build produces. Immutable once
// published; concurrent queries share it without locking.
type snapshot struct {
	index      *Index
	popularity map[int64]float64
	builtAt    time.Time
}

// Service is the recommendation facade: it builds the snapshot, matrix, and
// popularity cache once, answers repeated queries against them, and swaps in
// a freshly built snapshot on Rebuild.
type Service struct {
	articles     ports.ArticleStore
	interactions ports.InteractionStore
	strategy     Strategy
	params       Params
	logger       *slog.Logger

	current atomic.Pointer[snapshot]
	buildMu sync.Mutex
}

// NewService wires the stores and the chosen vector strategy. Nothing is
// loaded until the first query or an explicit Rebuild.
func NewService(articles ports.ArticleStore, interactions ports.InteractionStore, strategy Strategy, params Params, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		articles:     articles,
		interactions: interactions,
		strategy:     strategy,
		params:       params.withDefaults(),
		logger:       logger,
	}
}

// Ready reports whether a snapshot has been built.
func (s *Service) Ready() bool {
	return s.current.Load() != nil
}

// Rebuild constructs a new snapshot off to the side and atomically swaps it
// in; in-flight queries keep reading the previous one.
func (s *Service) Rebuild(ctx context.Context) error {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	snap, err := s.build(ctx)
	if err != nil {
		return err
	}

	s.current.Store(snap)
	s.logger.Info("snapshot rebuilt",
		"strategy", s.strategy.Name(),
		"articles", snap.index.Len())
	return nil
}

// GetArticle returns the snapshot view of one article with content truncated
// for display, or ErrArticleNotFound.
func (s *Service) GetArticle(ctx context.Context, id int64) (domain.Article, error) {
	snap, err := s.ensure(ctx)
	if err != nil {
		return domain.Article{}, err
	}

	article, ok := snap.index.Article(id)
	if !ok {
		return domain.Article{}, fmt.Errorf("%w: id %d", ErrArticleNotFound, id)
	}

	article.Content = truncateForDisplay(article.Content)
	article.Embedding = nil
	return article, nil
}

// Recommend returns up to topN recommendations for the seed article. An
// unknown seed yields ErrArticleNotFound; a seed with no qualifying
// candidates yields an empty list.
func (s *Service) Recommend(ctx context.Context, seedID int64, topN int, mode Mode) ([]domain.Recommendation, error) {
	if topN <= 0 {
		topN = s.params.TopN
	}

	snap, err := s.ensure(ctx)
	if err != nil {
		return nil, err
	}

	query := QueryParams{
		CategoryBoost: s.params.CategoryBoost,
		MinSimilarity: s.params.MinSimilarity,
		NearDuplicate: s.params.NearDuplicate,
	}

	switch mode {
	case ModeContent:
		candidates, err := snap.index.Query(seedID, topN, query)
		if err != nil {
			return nil, err
		}
		recs := make([]domain.Recommendation, 0, len(candidates))
		for _, c := range candidates {
			recs = append(recs, domain.Recommendation{
				ArticleID:         c.Article.ID,
				Title:             c.Article.Title,
				Category:          c.Article.Category,
				Source:            c.Article.Source,
				PublishedAt:       c.Article.PublishedAt,
				ContentSimilarity: c.Similarity,
				HybridScore:       c.Similarity,
			})
		}
		return recs, nil

	case ModeHybrid:
		candidates, err := snap.index.Query(seedID, topN*candidateOversample, query)
		if err != nil {
			return nil, err
		}
		return RankHybrid(candidates, snap.popularity,
			topN, s.params.ContentWeight, s.params.PopularityWeight), nil

	default:
		return nil, fmt.Errorf("unknown recommendation mode %q", mode)
	}
}

// ensure returns the current snapshot, building it on first use.
func (s *Service) ensure(ctx context.Context) (*snapshot, error) {
	if snap := s.current.Load(); snap != nil {
		return snap, nil
	}

	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	if snap := s.current.Load(); snap != nil {
		return snap, nil
	}

	snap, err := s.build(ctx)
	if err != nil {
		return nil, err
	}
	s.current.Store(snap)
	return snap, nil
}

func (s *Service) build(ctx context.Context) (*snapshot, error) {
	started := time.Now()

	articles, err := s.articles.Snapshot(ctx, s.strategy.RequiresEmbeddings())
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	index, err := BuildIndex(articles, s.strategy)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}

	stats, err := s.interactions.AggregateStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("load interaction stats: %w", err)
	}

	ids := make([]int64, len(articles))
	for i, article := range articles {
		ids[i] = article.ID
	}

	s.logger.Debug("snapshot built",
		"articles", len(articles),
		"interacted_articles", len(stats),
		"elapsed", time.Since(started))

	return &snapshot{
		index:      index,
		popularity: ScorePopularity(stats, ids),
		builtAt:    time.Now(),
	}, nil
}

func truncateForDisplay(content string) string {
	runes := []rune(content)
	if len(runes) <= displayContentLimit {
		return content
	}
	return string(runes[:displayContentLimit]) + "..."
}
