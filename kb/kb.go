package kb

import (
	"context"
	"fmt"

	"github.com/adanianlabs/hrassist/pkg/errors"
)

// ErrArticleNotFound reports a chunk referencing an unknown article.
var ErrArticleNotFound = fmt.Errorf("article: %w", errors.ErrNotFound)

// Match is a single chunk returned from similarity search. Similarity is in
// [0,1], higher is more relevant; a missing score is treated as 0 downstream.
type Match struct {
	Content      string  `json:"content"`
	ArticleTitle string  `json:"article_title"`
	Similarity   float32 `json:"similarity"`
}

// Article is a knowledge base document.
type Article struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	SourceURL string   `json:"source_url,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// ChunkRecord is a stored slice of an article together with its embedding.
type ChunkRecord struct {
	ArticleID string
	Index     int
	Content   string
	Embedding []float32
}

// Stats summarises knowledge base contents.
type Stats struct {
	TotalArticles       int     `json:"total_articles"`
	TotalChunks         int     `json:"total_chunks"`
	AvgChunksPerArticle float64 `json:"avg_chunks_per_article"`
}

// Store is the durable article/chunk storage with vector similarity search.
type Store interface {
	// CreateArticle persists an article and returns its identifier.
	CreateArticle(ctx context.Context, article *Article) (string, error)

	// AddChunks stores embedded chunks for an article.
	AddChunks(ctx context.Context, chunks []ChunkRecord) error

	// SearchSimilar returns chunks whose embedding similarity to the query
	// vector is at least threshold, ordered by descending similarity,
	// at most limit results.
	SearchSimilar(ctx context.Context, queryVector []float32, threshold float32, limit int) ([]Match, error)

	// Stats reports article and chunk counts.
	Stats(ctx context.Context) (Stats, error)

	// Clear removes all articles and chunks.
	Clear(ctx context.Context) error
}

// Searcher is the query-side view consumed by the answer engine.
type Searcher interface {
	SearchChunks(ctx context.Context, query string, threshold float32, limit int) ([]Match, error)
}
