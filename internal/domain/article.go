package domain

import "time"

// Article is a core entity: one news item persisted by the article store.
// Rows are immutable after insert except for the embedding backfill.
type Article struct {
	ID          int64
	Title       string
	Content     string
	Category    string
	Source      string
	PublishedAt time.Time
	CreatedAt   time.Time

	// Embedding holds the precomputed dense vector, decoded from the stored
	// JSON array. Nil when no embedding has been generated yet.
	Embedding []float64
}

// InteractionType enumerates trackable user actions.
type InteractionType string

const (
	InteractionView    InteractionType = "view"
	InteractionClick   InteractionType = "click"
	InteractionLike    InteractionType = "like"
	InteractionDislike InteractionType = "dislike"
)

// Valid reports whether the type is one of the known interaction kinds.
func (t InteractionType) Valid() bool {
	switch t {
	case InteractionView, InteractionClick, InteractionLike, InteractionDislike:
		return true
	}
	return false
}

// InteractionEvent is an append-only fact about a user touching an article.
type InteractionEvent struct {
	UserID    string
	ArticleID int64
	Type      InteractionType
	Rating    *float64 // 1..5 when present
	CreatedAt time.Time
}

// InteractionStat is the per-article aggregate the popularity scorer consumes.
// AvgRating substitutes the neutral rating 3 for events without one.
type InteractionStat struct {
	ArticleID int64
	Views     int64
	Clicks    int64
	AvgRating float64
	LastAt    time.Time
}

// Recommendation is a transient per-request output record; never persisted.
type Recommendation struct {
	ArticleID         int64
	Title             string
	Category          string
	Source            string
	PublishedAt       time.Time
	ContentSimilarity float64
	PopularityScore   float64
	HybridScore       float64
}

// CorpusStats summarizes the stored corpus for the stats endpoint.
type CorpusStats struct {
	TotalArticles int64
	Categories    map[string]int64
	Sources       map[string]int64
}
