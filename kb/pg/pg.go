// Package pg implements the knowledge-base store on PostgreSQL with the
// pgvector extension.
package pg

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/adanianlabs/hrassist/kb"
)

// Store persists articles and embedded chunks in PostgreSQL.
type Store struct {
	db        *sql.DB
	dimension int
}

var _ kb.Store = (*Store)(nil)

// Config holds PostgreSQL connection settings.
type Config struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	SSLMode   string
	Dimension int // embedding dimension (default: 768 for embedding-001)
}

// DefaultConfig returns a local development configuration.
func DefaultConfig() *Config {
	return &Config{
		Host:      "127.0.0.1",
		Port:      5432,
		User:      "postgres",
		Password:  "postgres",
		DBName:    "hrassist",
		SSLMode:   "disable",
		Dimension: 768,
	}
}

// New connects to PostgreSQL and ensures the schema exists.
func New(config *Config) (*Store, error) {
	if config == nil {
		config = DefaultConfig()
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	store := &Store{db: db, dimension: config.Dimension}
	if err := store.setup(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to setup schema: %w", err)
	}
	return store, nil
}

func (s *Store) setup(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	articleSQL := `
	CREATE TABLE IF NOT EXISTS kb_article (
		id SERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		body TEXT NOT NULL,
		source_url TEXT,
		tags TEXT[],
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := s.db.ExecContext(ctx, articleSQL); err != nil {
		return fmt.Errorf("failed to create kb_article table: %w", err)
	}

	chunkSQL := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS kb_chunk (
		id SERIAL PRIMARY KEY,
		article_id INTEGER NOT NULL REFERENCES kb_article(id) ON DELETE CASCADE,
		chunk_index INTEGER NOT NULL,
		content TEXT NOT NULL,
		embedding vector(%d) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`, s.dimension)
	if _, err := s.db.ExecContext(ctx, chunkSQL); err != nil {
		return fmt.Errorf("failed to create kb_chunk table: %w", err)
	}

	return nil
}

// CreateArticle inserts an article and returns its identifier.
func (s *Store) CreateArticle(ctx context.Context, article *kb.Article) (string, error) {
	if article == nil {
		return "", fmt.Errorf("article cannot be nil")
	}

	var id int64
	query := `
	INSERT INTO kb_article (title, body, source_url, tags)
	VALUES ($1, $2, NULLIF($3, ''), $4)
	RETURNING id`
	err := s.db.QueryRowContext(ctx, query,
		article.Title, article.Body, article.SourceURL, pq.Array(article.Tags),
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to insert article: %w", err)
	}
	return fmt.Sprintf("%d", id), nil
}

// AddChunks inserts embedded chunks for existing articles.
func (s *Store) AddChunks(ctx context.Context, chunks []kb.ChunkRecord) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO kb_chunk (article_id, chunk_index, content, embedding)
	VALUES ($1, $2, $3, $4::vector)`)
	if err != nil {
		return fmt.Errorf("failed to prepare chunk insert: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		if len(chunk.Embedding) != s.dimension {
			return fmt.Errorf("chunk embedding dimension mismatch: expected %d, got %d", s.dimension, len(chunk.Embedding))
		}
		if _, err := stmt.ExecContext(ctx, chunk.ArticleID, chunk.Index, chunk.Content, vectorToString(chunk.Embedding)); err != nil {
			return fmt.Errorf("failed to insert chunk %d of article %s: %w", chunk.Index, chunk.ArticleID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chunk insert: %w", err)
	}
	return nil
}

// SearchSimilar returns chunks ordered by cosine similarity to the query
// vector, filtered by threshold and capped at limit.
func (s *Store) SearchSimilar(ctx context.Context, queryVector []float32, threshold float32, limit int) ([]kb.Match, error) {
	if len(queryVector) == 0 {
		return nil, fmt.Errorf("query vector cannot be empty")
	}
	if len(queryVector) != s.dimension {
		return nil, fmt.Errorf("query vector dimension mismatch: expected %d, got %d", s.dimension, len(queryVector))
	}
	if limit <= 0 {
		limit = 5
	}

	query := `
	SELECT c.content, a.title, 1 - (c.embedding <=> $1::vector) AS similarity
	FROM kb_chunk c
	JOIN kb_article a ON a.id = c.article_id
	WHERE 1 - (c.embedding <=> $1::vector) >= $2
	ORDER BY c.embedding <=> $1::vector
	LIMIT $3`

	rows, err := s.db.QueryContext(ctx, query, vectorToString(queryVector), threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}
	defer rows.Close()

	matches := make([]kb.Match, 0, limit)
	for rows.Next() {
		var m kb.Match
		if err := rows.Scan(&m.Content, &m.ArticleTitle, &m.Similarity); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matches: %w", err)
	}
	return matches, nil
}

// Stats reports article and chunk counts.
func (s *Store) Stats(ctx context.Context) (kb.Stats, error) {
	var stats kb.Stats
	query := `
	SELECT
		(SELECT COUNT(*) FROM kb_article),
		(SELECT COUNT(*) FROM kb_chunk)`
	if err := s.db.QueryRowContext(ctx, query).Scan(&stats.TotalArticles, &stats.TotalChunks); err != nil {
		return kb.Stats{}, fmt.Errorf("failed to count articles: %w", err)
	}
	if stats.TotalArticles > 0 {
		stats.AvgChunksPerArticle = float64(stats.TotalChunks) / float64(stats.TotalArticles)
	}
	return stats, nil
}

// Clear removes all articles and chunks.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "TRUNCATE TABLE kb_article CASCADE"); err != nil {
		return fmt.Errorf("failed to clear knowledge base: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func vectorToString(vec []float32) string {
	parts := make([]string, len(vec))
	for i, v := range vec {
		parts[i] = fmt.Sprintf("%f", v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
