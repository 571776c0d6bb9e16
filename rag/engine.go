// Package rag implements the retrieval-augmented answer engine for the HR
// knowledge base: intent analysis, progressive multi-variation retrieval,
// context quality scoring, and grounded answer synthesis.
package rag

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/adanianlabs/hrassist/kb"
	"github.com/adanianlabs/hrassist/llm"
	"github.com/adanianlabs/hrassist/pkg/logging"
)

// Engine composes the answer pipeline. Construction wires the collaborators
// once; each Ask call is independent and safe to run concurrently.
type Engine struct {
	cfg      *Config
	analyzer *intentAnalyzer
	searcher *retriever
	writer   *synthesizer
	logger   *slog.Logger
}

// NewEngine creates the answer engine around a text-generation client and a
// knowledge-base searcher.
func NewEngine(client llm.Client, searcher kb.Searcher, opts ...Option) (*Engine, error) {
	if client == nil {
		return nil, fmt.Errorf("llm client is required")
	}
	if searcher == nil {
		return nil, fmt.Errorf("knowledge base searcher is required")
	}
	cfg := applyOptions(nil, opts)
	logger := logging.WithComponent("rag_engine").With("engine", cfg.Name)

	e := &Engine{
		cfg:      cfg,
		analyzer: newIntentAnalyzer(client, cfg, logger),
		searcher: newRetriever(searcher, cfg, logger),
		writer:   newSynthesizer(client, cfg, logger),
		logger:   logger,
	}
	logger.Info("rag engine initialised",
		"top_k", cfg.TopK,
		"thresholds", cfg.Thresholds,
		"max_variations", cfg.MaxVariations,
	)
	return e, nil
}

// AskOption adjusts a single Ask call.
type AskOption func(*askSettings)

type askSettings struct {
	includeSources bool
}

// WithoutSources omits the retrieved chunks from the returned envelope.
func WithoutSources() AskOption {
	return func(s *askSettings) {
		s.includeSources = false
	}
}

// Ask answers a question from the knowledge base. It always returns a fully
// populated envelope; failures of any stage are folded into it rather than
// returned as errors.
func (e *Engine) Ask(ctx context.Context, question string, opts ...AskOption) (answer *Answer) {
	settings := askSettings{includeSources: true}
	for _, opt := range opts {
		opt(&settings)
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("answer pipeline panicked", "panic", r)
			answer = e.errorEnvelope(fmt.Sprintf("%v", r))
		}
	}()

	e.logger.Info("processing question", "question", trimForLog(question, 120))
	processed := preprocessQuery(question)

	analysis := e.analyzer.Analyze(ctx, processed)
	e.logger.Debug("intent analysed",
		"topic", analysis.PrimaryTopic,
		"intent", analysis.Intent,
		"variations_hint", len(analysis.SearchKeywords),
	)

	chunks, err := e.searcher.Retrieve(ctx, processed, analysis, e.cfg.TopK)
	if err != nil {
		e.logger.Error("retrieval failed", "error", err)
		chunks = nil
	}

	if len(chunks) == 0 {
		e.logger.Info("no chunks retrieved, taking conversational fallback")
		return &Answer{
			Answer:          e.writer.noResultsFallback(ctx, question),
			ConfidenceLevel: confidenceLabel(RecommendationInsufficient),
			ConfidenceScore: 0,
			SourcesUsed:     0,
			Coverage:        CoverageNone,
			QueryType:       QueryTypeDocument,
			GeneratedAt:     time.Now(),
		}
	}

	quality := scoreContext(chunks, e.cfg.MinChunksForConfidence)
	e.logger.Debug("context scored",
		"confidence", quality.Confidence,
		"coverage", quality.Coverage,
		"sources", quality.SourceDiversity,
	)

	prompt := e.writer.buildPrompt(processed, chunks, quality, analysis)
	text := e.writer.generate(ctx, prompt, quality)
	if quality.Confidence < e.cfg.EnhanceBelowConfidence {
		text = e.writer.enhance(ctx, question, text)
	}

	answer = &Answer{
		Answer:          text,
		ConfidenceLevel: confidenceLabel(quality.Recommendation),
		ConfidenceScore: quality.Confidence,
		SourcesUsed:     quality.SourceDiversity,
		Coverage:        quality.Coverage,
		QueryType:       QueryTypeDocument,
		GeneratedAt:     time.Now(),
	}
	if settings.includeSources {
		answer.Chunks = chunks
	}
	e.logger.Info("answer generated",
		"confidence", answer.ConfidenceScore,
		"sources", answer.SourcesUsed,
	)
	return answer
}

func (e *Engine) errorEnvelope(detail string) *Answer {
	return &Answer{
		Answer:          fmt.Sprintf("I encountered an error while processing your question: %s. Please try again.", detail),
		ConfidenceLevel: "Error",
		ConfidenceScore: 0,
		SourcesUsed:     0,
		Coverage:        CoverageNone,
		QueryType:       QueryTypeError,
		GeneratedAt:     time.Now(),
	}
}

var whitespaceRe = regexp.MustCompile(`\s+`)

var hrKeywords = []string{"policy", "leave", "benefits", "recruitment", "performance", "hr", "employee"}

// preprocessQuery normalises whitespace and anchors vague questions in the HR
// domain before retrieval.
func preprocessQuery(query string) string {
	query = whitespaceRe.ReplaceAllString(strings.TrimSpace(query), " ")
	lower := strings.ToLower(query)
	for _, keyword := range hrKeywords {
		if strings.Contains(lower, keyword) {
			return query
		}
	}
	return "HR " + query
}

func trimForLog(text string, limit int) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if limit <= 0 || len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
