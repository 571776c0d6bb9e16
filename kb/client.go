package kb

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/adanianlabs/hrassist/ingest"
	"github.com/adanianlabs/hrassist/pkg/logging"
	"github.com/adanianlabs/hrassist/vector"
)

// Client combines an embedder and a Store into the knowledge-base operations
// the rest of the system consumes: ingestion on the write side, threshold'd
// chunk search on the read side.
type Client struct {
	store     Store
	embedder  vector.Embedder
	chunker   *ingest.Chunker
	batchSize int
	logger    *slog.Logger
}

// ClientOption customises the client.
type ClientOption func(*Client)

// WithBatchSize caps how many chunks are embedded per upstream call (default 10).
func WithBatchSize(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithChunker overrides the chunking strategy used during ingestion.
func WithChunker(ch *ingest.Chunker) ClientOption {
	return func(c *Client) {
		if ch != nil {
			c.chunker = ch
		}
	}
}

// NewClient creates a knowledge-base client.
func NewClient(store Store, embedder vector.Embedder, opts ...ClientOption) (*Client, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	c := &Client{
		store:     store,
		embedder:  embedder,
		batchSize: 10,
		logger:    logging.WithComponent("kb_client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.chunker == nil {
		chunker, err := ingest.NewChunker()
		if err != nil {
			return nil, fmt.Errorf("create default chunker: %w", err)
		}
		c.chunker = chunker
	}
	return c, nil
}

// SearchChunks embeds the query and runs similarity search against the store.
func (c *Client) SearchChunks(ctx context.Context, query string, threshold float32, limit int) ([]Match, error) {
	queryVec, err := c.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	matches, err := c.store.SearchSimilar(ctx, queryVec, threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	c.logger.Debug("chunk search completed",
		"query", trimForLog(query, 60),
		"threshold", threshold,
		"hits", len(matches),
	)
	return matches, nil
}

// Ingest persists an article, chunks its body, embeds the chunks in batches,
// and stores them.
func (c *Client) Ingest(ctx context.Context, article *Article) (string, error) {
	if article == nil || strings.TrimSpace(article.Body) == "" {
		return "", fmt.Errorf("article body cannot be empty")
	}

	articleID, err := c.store.CreateArticle(ctx, article)
	if err != nil {
		return "", fmt.Errorf("create article %q: %w", article.Title, err)
	}

	chunks := c.chunker.Chunk(article.Body)
	c.logger.Info("ingesting article", "title", article.Title, "chunks", len(chunks))

	for start := 0; start < len(chunks); start += c.batchSize {
		end := start + c.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = chunk.Content
		}
		embeddings, err := c.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return "", fmt.Errorf("embed chunk batch for article %s: %w", articleID, err)
		}

		records := make([]ChunkRecord, len(batch))
		for i, chunk := range batch {
			records[i] = ChunkRecord{
				ArticleID: articleID,
				Index:     chunk.Index,
				Content:   chunk.Content,
				Embedding: embeddings[i],
			}
		}
		if err := c.store.AddChunks(ctx, records); err != nil {
			return "", fmt.Errorf("store chunk batch for article %s: %w", articleID, err)
		}
	}

	return articleID, nil
}

// Stats reports knowledge base statistics.
func (c *Client) Stats(ctx context.Context) (Stats, error) {
	return c.store.Stats(ctx)
}

// Clear removes all stored articles and chunks.
func (c *Client) Clear(ctx context.Context) error {
	c.logger.Warn("clearing knowledge base")
	return c.store.Clear(ctx)
}

func trimForLog(text string, limit int) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if limit <= 0 || len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
