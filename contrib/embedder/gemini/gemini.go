package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/adanianlabs/hrassist/vector"
)

var _ vector.Embedder = (*Embedder)(nil)

const defaultModel = "embedding-001"

// Embedder implements vector.Embedder using Gemini embedding models.
type Embedder struct {
	client    *genai.Client
	model     string
	dimension int
	taskType  genai.TaskType
}

// Option customises the embedder.
type Option func(*Embedder)

// WithModel overrides the embedding model name.
func WithModel(model string) Option {
	return func(e *Embedder) {
		if model != "" {
			e.model = model
		}
	}
}

// WithTaskType sets the embedding task type. Document ingestion should use
// TaskTypeRetrievalDocument, query-time embedding TaskTypeRetrievalQuery.
func WithTaskType(t genai.TaskType) Option {
	return func(e *Embedder) {
		e.taskType = t
	}
}

// New creates a Gemini-backed embedder.
func New(ctx context.Context, apiKey string, dimension int, opts ...Option) (*Embedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	e := &Embedder{
		client:    client,
		model:     defaultModel,
		dimension: dimension,
		taskType:  genai.TaskTypeRetrievalDocument,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Dimension returns the number of embedding dimensions.
func (e *Embedder) Dimension() int {
	return e.dimension
}

// Embed converts text to a vector embedding.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	em := e.client.EmbeddingModel(e.model)
	em.TaskType = e.taskType
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	if res == nil || res.Embedding == nil {
		return nil, fmt.Errorf("gemini embed: empty result")
	}
	return res.Embedding.Values, nil
}

// EmbedBatch converts multiple texts to embeddings in one request.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	em := e.client.EmbeddingModel(e.model)
	em.TaskType = e.taskType
	batch := em.NewBatch()
	for _, text := range texts {
		batch.AddContent(genai.Text(text))
	}
	res, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("gemini embed batch: %w", err)
	}
	if len(res.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(res.Embeddings))
	}
	out := make([][]float32, len(res.Embeddings))
	for i, emb := range res.Embeddings {
		out[i] = emb.Values
	}
	return out, nil
}

// Close releases the underlying client.
func (e *Embedder) Close() error {
	return e.client.Close()
}
