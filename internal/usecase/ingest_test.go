package usecase

import (
	"context"
	"errors"
	"testing"

	"NewsRecommender/internal/domain"
	"NewsRecommender/internal/ports"
	"NewsRecommender/internal/textclean"
)

type fakeSource struct {
	byCategory map[string][]domain.Article
	failing    map[string]bool
}

var _ ports.ArticleSource = (*fakeSource)(nil)

func (f *fakeSource) FetchCategory(ctx context.Context, category string) ([]domain.Article, error) {
	if f.failing[category] {
		return nil, errors.New("provider down")
	}
	return f.byCategory[category], nil
}

type fakeStore struct {
	seen     map[string]bool
	inserted []domain.Article
}

var _ ports.ArticleStore = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{seen: map[string]bool{}}
}

func (f *fakeStore) Insert(ctx context.Context, article domain.Article) (bool, error) {
	key := article.Source + "|" + article.Title
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	f.inserted = append(f.inserted, article)
	return true, nil
}

func (f *fakeStore) GetByID(ctx context.Context, id int64) (domain.Article, error) {
	return domain.Article{}, errors.New("not found")
}

func (f *fakeStore) List(ctx context.Context, q ports.ArticleQuery) ([]domain.Article, int64, error) {
	return f.inserted, int64(len(f.inserted)), nil
}

func (f *fakeStore) Snapshot(ctx context.Context, withEmbeddings bool) ([]domain.Article, error) {
	return f.inserted, nil
}

func (f *fakeStore) MissingEmbeddings(ctx context.Context, limit int) ([]domain.Article, error) {
	var pending []domain.Article
	for _, a := range f.inserted {
		if len(a.Embedding) == 0 {
			pending = append(pending, a)
			if len(pending) == limit {
				break
			}
		}
	}
	return pending, nil
}

func (f *fakeStore) SaveEmbedding(ctx context.Context, id int64, embedding []float64) error {
	for i := range f.inserted {
		if f.inserted[i].ID == id {
			f.inserted[i].Embedding = embedding
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeStore) Stats(ctx context.Context) (domain.CorpusStats, error) {
	return domain.CorpusStats{TotalArticles: int64(len(f.inserted))}, nil
}

func TestIngesterCleansAndStores(t *testing.T) {
	t.Parallel()

	source := &fakeSource{byCategory: map[string][]domain.Article{
		"technology": {
			{Title: "<b>Chips</b> get faster", Content: "<p>A new   node ships.</p>", Source: "Wired", Category: "technology"},
			{Title: "Empty body", Content: "<p></p>", Source: "Wired", Category: "technology"},
		},
	}}
	store := newFakeStore()

	ingester := NewIngester(source, store, textclean.New(), []string{"technology"}, nil)
	report, err := ingester.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if report.Inserted != 1 || report.Dropped != 1 {
		t.Fatalf("expected 1 inserted and 1 dropped, got %+v", report)
	}
	if got := store.inserted[0].Title; got != "Chips get faster" {
		t.Fatalf("expected cleaned title, got %q", got)
	}
	if got := store.inserted[0].Content; got != "A new node ships." {
		t.Fatalf("expected cleaned content, got %q", got)
	}
}

func TestIngesterCountsDuplicates(t *testing.T) {
	t.Parallel()

	article := domain.Article{Title: "Same story", Content: "Body.", Source: "Wire", Category: "business"}
	source := &fakeSource{byCategory: map[string][]domain.Article{
		"business": {article, article},
	}}
	store := newFakeStore()

	report, err := NewIngester(source, store, textclean.New(), []string{"business"}, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Inserted != 1 || report.Duplicates != 1 {
		t.Fatalf("expected 1 inserted and 1 duplicate, got %+v", report)
	}
}

func TestIngesterSurvivesFailingCategory(t *testing.T) {
	t.Parallel()

	source := &fakeSource{
		byCategory: map[string][]domain.Article{
			"health": {{Title: "Trial results", Content: "Phase three data.", Source: "Lancet", Category: "health"}},
		},
		failing: map[string]bool{"sports": true},
	}
	store := newFakeStore()

	report, err := NewIngester(source, store, textclean.New(), []string{"sports", "health"}, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Inserted != 1 {
		t.Fatalf("expected healthy category stored, got %+v", report)
	}
	if len(report.FailedCategories) != 1 || report.FailedCategories[0] != "sports" {
		t.Fatalf("expected sports flagged, got %v", report.FailedCategories)
	}
}

func TestIngesterFailsWhenEverythingFails(t *testing.T) {
	t.Parallel()

	source := &fakeSource{failing: map[string]bool{"sports": true, "health": true}}

	_, err := NewIngester(source, newFakeStore(), textclean.New(), []string{"sports", "health"}, nil).Run(context.Background())
	if err == nil {
		t.Fatalf("expected error when every category fails")
	}
}
