package recommend

import (
	"sort"

	"NewsRecommender/internal/domain"
)

// candidateOversample controls how many similarity candidates the hybrid
// ranker pulls per requested slot, leaving headroom for re-ranking.
const candidateOversample = 3

// RankHybrid re-ranks similarity candidates by blending content similarity
// with popularity. Candidate similarities are normalized by the maximum in
// the set (0 when the max is 0); popularity falls back to the cold-start
// baseline for unknown ids. The result is sorted by hybrid score descending,
// stable on candidate order, and truncated to topN.
//
// An empty candidate set yields an empty slice: graceful degradation, not an
// error.
func RankHybrid(candidates []Candidate, popularity map[int64]float64, topN int, contentWeight, popularityWeight float64) []domain.Recommendation {
	if len(candidates) == 0 || topN <= 0 {
		return []domain.Recommendation{}
	}

	maxSimilarity := 0.0
	for _, c := range candidates {
		if c.Similarity > maxSimilarity {
			maxSimilarity = c.Similarity
		}
	}

	recs := make([]domain.Recommendation, 0, len(candidates))
	for _, c := range candidates {
		contentScore := 0.0
		if maxSimilarity > 0 {
			contentScore = c.Similarity / maxSimilarity
		}

		popScore, ok := popularity[c.Article.ID]
		if !ok {
			popScore = coldArticleScore
		}

		recs = append(recs, domain.Recommendation{
			ArticleID:         c.Article.ID,
			Title:             c.Article.Title,
			Category:          c.Article.Category,
			Source:            c.Article.Source,
			PublishedAt:       c.Article.PublishedAt,
			ContentSimilarity: c.Similarity,
			PopularityScore:   popScore,
			HybridScore:       contentWeight*contentScore + popularityWeight*popScore,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].HybridScore > recs[j].HybridScore
	})

	if len(recs) > topN {
		recs = recs[:topN]
	}
	return recs
}
