package recommend

import (
	"fmt"
	"math"
	"sort"

	"NewsRecommender/internal/domain"
)

// indexedArticle pairs one snapshot article with its feature vector, so the
// metadata and the matrix row can never drift out of alignment.
type indexedArticle struct {
	article domain.Article
	vector  []float64
}

// Index holds the immutable in-memory similarity matrix for one corpus
// snapshot. Safe for concurrent reads; rebuilds produce a fresh Index.
type Index struct {
	rows []indexedArticle
	byID map[int64]int // article id -> first row holding it
}

// Candidate is one similarity-ranked article emitted by a query.
type Candidate struct {
	Article    domain.Article
	Similarity float64
}

// QueryParams tune a similarity query.
type QueryParams struct {
	// CategoryBoost multiplies the similarity of candidates sharing the
	// seed's category. Applied after the raw cosine; boosted scores may
	// exceed 1.0 and are not clamped.
	CategoryBoost float64
	// MinSimilarity is an early-exit threshold: once the ranked walk reaches
	// a score below it, nothing further is considered.
	MinSimilarity float64
	// NearDuplicate excludes candidates above this similarity as re-published
	// copies of the seed.
	NearDuplicate float64
}

// BuildIndex vectorizes the snapshot with the given strategy and assembles
// the queryable index. Articles sharing an id keep only their first row in
// the id map; the duplicate rows remain rankable and are deduplicated at
// query time.
func BuildIndex(articles []domain.Article, strategy Strategy) (*Index, error) {
	matrix, err := strategy.Vectorize(articles)
	if err != nil {
		return nil, fmt.Errorf("vectorize corpus: %w", err)
	}
	if len(matrix) != len(articles) {
		return nil, fmt.Errorf("strategy %s returned %d vectors for %d articles",
			strategy.Name(), len(matrix), len(articles))
	}

	rows := make([]indexedArticle, len(articles))
	byID := make(map[int64]int, len(articles))
	for i, article := range articles {
		rows[i] = indexedArticle{article: article, vector: matrix[i]}
		if _, ok := byID[article.ID]; !ok {
			byID[article.ID] = i
		}
	}

	return &Index{rows: rows, byID: byID}, nil
}

// Len returns the number of indexed rows.
func (ix *Index) Len() int {
	return len(ix.rows)
}

// Article returns the snapshot article for an id.
func (ix *Index) Article(id int64) (domain.Article, bool) {
	row, ok := ix.byID[id]
	if !ok {
		return domain.Article{}, false
	}
	return ix.rows[row].article, true
}

// Query ranks every indexed article against the seed and emits up to limit
// candidates: the seed itself is excluded, near-duplicates of the seed are
// skipped, the walk stops permanently at the first score below
// MinSimilarity, and repeated article ids keep only their best-scoring row.
func (ix *Index) Query(seedID int64, limit int, params QueryParams) ([]Candidate, error) {
	if ix == nil || ix.byID == nil {
		return nil, ErrIndexNotBuilt
	}

	seedRow, ok := ix.byID[seedID]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrArticleNotFound, seedID)
	}
	if limit <= 0 {
		return nil, nil
	}

	seed := ix.rows[seedRow]
	similarities := make([]float64, len(ix.rows))
	for i := range ix.rows {
		similarities[i] = cosineSimilarity(seed.vector, ix.rows[i].vector)
		if i != seedRow && ix.rows[i].article.Category == seed.article.Category {
			similarities[i] *= params.CategoryBoost
		}
	}

	// Descending by similarity; SliceStable keeps snapshot order for ties.
	order := make([]int, len(ix.rows))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return similarities[order[a]] > similarities[order[b]]
	})

	candidates := make([]Candidate, 0, limit)
	seen := map[int64]struct{}{seedID: {}}

	for _, row := range order {
		if row == seedRow {
			continue
		}

		score := similarities[row]
		if score > params.NearDuplicate {
			continue
		}
		if score < params.MinSimilarity {
			break
		}

		id := ix.rows[row].article.ID
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		candidates = append(candidates, Candidate{
			Article:    ix.rows[row].article,
			Similarity: score,
		})
		if len(candidates) >= limit {
			break
		}
	}

	return candidates, nil
}

func cosineSimilarity(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
