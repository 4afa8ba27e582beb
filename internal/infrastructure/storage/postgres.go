package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return db, nil
}

// EnsureSchema creates the articles and interactions tables when absent.
// The (source, title) uniqueness constraint backs duplicate-free ingestion.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS articles (
			id SERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			content TEXT,
			category VARCHAR(50) NOT NULL,
			source VARCHAR(200) NOT NULL,
			published_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			embedding JSONB,
			UNIQUE (source, title)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_category ON articles (category)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_published_at ON articles (published_at)`,
		`CREATE TABLE IF NOT EXISTS interactions (
			id SERIAL PRIMARY KEY,
			user_id VARCHAR(100) NOT NULL,
			article_id INTEGER NOT NULL REFERENCES articles (id),
			interaction_type VARCHAR(20) NOT NULL,
			rating REAL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_article ON interactions (article_id)`,
	}

	for _, statement := range statements {
		if _, err := db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	return nil
}
