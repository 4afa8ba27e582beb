package recommend

import "NewsRecommender/internal/domain"

const (
	viewWeight   = 0.4
	clickWeight  = 0.3
	ratingWeight = 0.3

	// coldArticleScore is the baseline for articles with zero interactions.
	coldArticleScore = 0.1
	// coldCorpusScore is returned uniformly when nothing at all has been
	// logged yet, so the hybrid blend stays neutral.
	coldCorpusScore = 0.5
)

// ScorePopularity folds per-article interaction aggregates into a normalized
// popularity score in [0,1] for every id in the snapshot.
//
// Policy (multi-factor): views normalized by the corpus-wide maximum carry
// 40%, clicks normalized likewise carry 30%, and the mean rating mapped from
// [1,5] to [0,1] carries 30%. Articles absent from the log get a small
// baseline; a corpus with no interactions at all scores uniformly.
func ScorePopularity(stats []domain.InteractionStat, articleIDs []int64) map[int64]float64 {
	scores := make(map[int64]float64, len(articleIDs))

	if len(stats) == 0 {
		for _, id := range articleIDs {
			scores[id] = coldCorpusScore
		}
		return scores
	}

	var maxViews, maxClicks int64
	for _, stat := range stats {
		if stat.Views > maxViews {
			maxViews = stat.Views
		}
		if stat.Clicks > maxClicks {
			maxClicks = stat.Clicks
		}
	}
	if maxViews == 0 {
		maxViews = 1
	}
	if maxClicks == 0 {
		maxClicks = 1
	}

	for _, stat := range stats {
		viewScore := float64(stat.Views) / float64(maxViews)
		clickScore := float64(stat.Clicks) / float64(maxClicks)
		ratingScore := (stat.AvgRating - 1) / 4

		scores[stat.ArticleID] = viewWeight*viewScore +
			clickWeight*clickScore +
			ratingWeight*ratingScore
	}

	for _, id := range articleIDs {
		if _, ok := scores[id]; !ok {
			scores[id] = coldArticleScore
		}
	}

	return scores
}
