package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"NewsRecommender/internal/domain"
	"NewsRecommender/internal/ports"
	"NewsRecommender/internal/recommend"
)

// PostgresRepository implements article and interaction persistence on
// Postgres. Embeddings are stored as JSONB alongside the article row.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var (
	_ ports.ArticleStore     = (*PostgresRepository)(nil)
	_ ports.InteractionStore = (*PostgresRepository)(nil)
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Insert stores one article, skipping rows that collide on (source, title).
// The returned flag reports whether a new row was created.
func (r *PostgresRepository) Insert(ctx context.Context, article domain.Article) (bool, error) {
	query, args, err := r.builder.
		Insert("articles").
		Columns("title", "content", "category", "source", "published_at").
		Values(article.Title, article.Content, article.Category, article.Source, article.PublishedAt).
		Suffix("ON CONFLICT (source, title) DO NOTHING RETURNING id").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build insert query: %w", err)
	}

	var id int64
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert article: %w", err)
	}
	return true, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (domain.Article, error) {
	query, args, err := r.builder.
		Select("id", "title", "content", "category", "source", "published_at", "created_at", "embedding").
		From("articles").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return domain.Article{}, fmt.Errorf("build get query: %w", err)
	}

	article, err := scanArticle(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Article{}, recommend.ErrArticleNotFound
	}
	if err != nil {
		return domain.Article{}, fmt.Errorf("get article %d: %w", id, err)
	}
	return article, nil
}

// List returns one page of articles plus the total count for the same filter.
func (r *PostgresRepository) List(ctx context.Context, q ports.ArticleQuery) ([]domain.Article, int64, error) {
	filter := func(b sq.SelectBuilder) sq.SelectBuilder {
		if q.Category != "" {
			b = b.Where(sq.Eq{"category": q.Category})
		}
		if q.Search != "" {
			b = b.Where(sq.ILike{"title": "%" + q.Search + "%"})
		}
		return b
	}

	countQuery, countArgs, err := filter(r.builder.Select("COUNT(*)").From("articles")).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count articles: %w", err)
	}

	offset := (q.Page - 1) * q.PageSize
	query, args, err := filter(r.builder.
		Select("id", "title", "content", "category", "source", "published_at", "created_at", "embedding").
		From("articles")).
		OrderBy("published_at DESC", "id DESC").
		Limit(uint64(q.PageSize)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}

	articles, err := r.queryArticles(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list articles: %w", err)
	}
	return articles, total, nil
}

// Snapshot loads the corpus the similarity index is built from, ordered by id
// so vectorization stays deterministic. When withEmbeddings is set, only rows
// that already carry a stored vector qualify.
func (r *PostgresRepository) Snapshot(ctx context.Context, withEmbeddings bool) ([]domain.Article, error) {
	b := r.builder.
		Select("id", "title", "content", "category", "source", "published_at", "created_at", "embedding").
		From("articles").
		OrderBy("id ASC")
	if withEmbeddings {
		b = b.Where("embedding IS NOT NULL")
	} else {
		b = b.Where("content IS NOT NULL AND content <> ''")
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build snapshot query: %w", err)
	}

	articles, err := r.queryArticles(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("snapshot articles: %w", err)
	}
	return articles, nil
}

// MissingEmbeddings returns articles still waiting for a vector.
func (r *PostgresRepository) MissingEmbeddings(ctx context.Context, limit int) ([]domain.Article, error) {
	query, args, err := r.builder.
		Select("id", "title", "content", "category", "source", "published_at", "created_at", "embedding").
		From("articles").
		Where("embedding IS NULL").
		Where("content IS NOT NULL AND content <> ''").
		OrderBy("id ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build missing-embeddings query: %w", err)
	}

	articles, err := r.queryArticles(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("missing embeddings: %w", err)
	}
	return articles, nil
}

func (r *PostgresRepository) SaveEmbedding(ctx context.Context, id int64, embedding []float64) error {
	payload, err := json.Marshal(embedding)
	if err != nil {
		return fmt.Errorf("encode embedding: %w", err)
	}

	query, args, err := r.builder.
		Update("articles").
		Set("embedding", payload).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build embedding update: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("save embedding for article %d: %w", id, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return recommend.ErrArticleNotFound
	}
	return nil
}

// Stats aggregates corpus-wide counts per category and source.
func (r *PostgresRepository) Stats(ctx context.Context) (domain.CorpusStats, error) {
	stats := domain.CorpusStats{
		Categories: map[string]int64{},
		Sources:    map[string]int64{},
	}

	countQuery, _, err := r.builder.Select("COUNT(*)").From("articles").ToSql()
	if err != nil {
		return domain.CorpusStats{}, fmt.Errorf("build total query: %w", err)
	}
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&stats.TotalArticles); err != nil {
		return domain.CorpusStats{}, fmt.Errorf("count articles: %w", err)
	}

	groupings := []struct {
		column string
		into   map[string]int64
	}{
		{"category", stats.Categories},
		{"source", stats.Sources},
	}
	for _, g := range groupings {
		query, _, err := r.builder.
			Select(g.column, "COUNT(*)").
			From("articles").
			GroupBy(g.column).
			ToSql()
		if err != nil {
			return domain.CorpusStats{}, fmt.Errorf("build %s stats query: %w", g.column, err)
		}

		rows, err := r.db.QueryContext(ctx, query)
		if err != nil {
			return domain.CorpusStats{}, fmt.Errorf("query %s stats: %w", g.column, err)
		}
		for rows.Next() {
			var key string
			var count int64
			if err := rows.Scan(&key, &count); err != nil {
				rows.Close()
				return domain.CorpusStats{}, fmt.Errorf("scan %s stats: %w", g.column, err)
			}
			g.into[key] = count
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return domain.CorpusStats{}, fmt.Errorf("iterate %s stats: %w", g.column, err)
		}
		rows.Close()
	}

	return stats, nil
}

// Append records one interaction event.
func (r *PostgresRepository) Append(ctx context.Context, event domain.InteractionEvent) error {
	query, args, err := r.builder.
		Insert("interactions").
		Columns("user_id", "article_id", "interaction_type", "rating", "created_at").
		Values(event.UserID, event.ArticleID, string(event.Type), event.Rating, event.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build interaction insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("append interaction: %w", err)
	}
	return nil
}

// AggregateStats rolls interaction events up into per-article counters.
// Missing ratings count as neutral 3.
func (r *PostgresRepository) AggregateStats(ctx context.Context) ([]domain.InteractionStat, error) {
	const query = `
		SELECT article_id,
			SUM(CASE WHEN interaction_type = 'view' THEN 1 ELSE 0 END) AS views,
			SUM(CASE WHEN interaction_type = 'click' THEN 1 ELSE 0 END) AS clicks,
			AVG(COALESCE(rating, 3)) AS avg_rating,
			MAX(created_at) AS last_at
		FROM interactions
		GROUP BY article_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("aggregate interactions: %w", err)
	}
	defer rows.Close()

	var stats []domain.InteractionStat
	for rows.Next() {
		var stat domain.InteractionStat
		if err := rows.Scan(&stat.ArticleID, &stat.Views, &stat.Clicks, &stat.AvgRating, &stat.LastAt); err != nil {
			return nil, fmt.Errorf("scan interaction stats: %w", err)
		}
		stats = append(stats, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interaction stats: %w", err)
	}
	return stats, nil
}

func (r *PostgresRepository) queryArticles(ctx context.Context, query string, args ...any) ([]domain.Article, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return articles, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (domain.Article, error) {
	var (
		article domain.Article
		content sql.NullString
		payload []byte
	)
	err := row.Scan(
		&article.ID,
		&article.Title,
		&content,
		&article.Category,
		&article.Source,
		&article.PublishedAt,
		&article.CreatedAt,
		&payload,
	)
	if err != nil {
		return domain.Article{}, err
	}

	article.Content = content.String
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &article.Embedding); err != nil {
			return domain.Article{}, fmt.Errorf("decode embedding for article %d: %w", article.ID, err)
		}
	}
	return article, nil
}
