// Package inmemory provides an in-memory knowledge-base store suitable for
// tests and small deployments.
package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/adanianlabs/hrassist/kb"
	"github.com/adanianlabs/hrassist/vector"
)

// Store keeps articles and chunks in memory with brute-force cosine search.
type Store struct {
	mu       sync.RWMutex
	articles map[string]*kb.Article
	chunks   []kb.ChunkRecord
	nextID   int
}

var _ kb.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{articles: make(map[string]*kb.Article)}
}

// CreateArticle stores an article and returns its generated ID.
func (s *Store) CreateArticle(ctx context.Context, article *kb.Article) (string, error) {
	if article == nil {
		return "", fmt.Errorf("article is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := fmt.Sprintf("article_%d", s.nextID)
	stored := *article
	stored.ID = id
	s.articles[id] = &stored
	return id, nil
}

// AddChunks appends embedded chunks for previously created articles.
func (s *Store) AddChunks(ctx context.Context, records []kb.ChunkRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range records {
		if _, ok := s.articles[rec.ArticleID]; !ok {
			return fmt.Errorf("unknown article %s: %w", rec.ArticleID, kb.ErrArticleNotFound)
		}
	}
	s.chunks = append(s.chunks, records...)
	return nil
}

// SearchSimilar returns up to limit chunks whose cosine similarity to the
// query vector meets the threshold, ordered by descending similarity.
func (s *Store) SearchSimilar(ctx context.Context, queryVector []float32, threshold float32, limit int) ([]kb.Match, error) {
	if len(queryVector) == 0 {
		return nil, fmt.Errorf("query vector is empty")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []kb.Match
	for _, chunk := range s.chunks {
		sim := vector.CosineSimilarity(queryVector, chunk.Embedding)
		if sim < threshold {
			continue
		}
		title := ""
		if article, ok := s.articles[chunk.ArticleID]; ok {
			title = article.Title
		}
		matches = append(matches, kb.Match{
			Content:      chunk.Content,
			ArticleTitle: title,
			Similarity:   sim,
		})
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// Stats reports article and chunk counts.
func (s *Store) Stats(ctx context.Context) (kb.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := kb.Stats{
		TotalArticles: len(s.articles),
		TotalChunks:   len(s.chunks),
	}
	if stats.TotalArticles > 0 {
		stats.AvgChunksPerArticle = float64(stats.TotalChunks) / float64(stats.TotalArticles)
	}
	return stats, nil
}

// Clear removes all data.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.articles = make(map[string]*kb.Article)
	s.chunks = nil
	s.nextID = 0
	return nil
}
