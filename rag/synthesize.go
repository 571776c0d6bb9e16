package rag

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/adanianlabs/hrassist/llm"
)

const generationApology = "I apologize, but I encountered an error while generating a response. Please try again or contact support."

type synthesizer struct {
	llm                 llm.Client
	maxChunksPerArticle int
	maxPassageChars     int
	maxPassages         int
	fallbackContact     string
	logger              *slog.Logger
}

func newSynthesizer(client llm.Client, cfg *Config, logger *slog.Logger) *synthesizer {
	return &synthesizer{
		llm:                 client,
		maxChunksPerArticle: cfg.MaxChunksPerArticle,
		maxPassageChars:     cfg.MaxPassageChars,
		maxPassages:         cfg.MaxPassages,
		fallbackContact:     cfg.FallbackContact,
		logger:              logger,
	}
}

// buildPrompt groups chunks by source article, keeps the strongest passages,
// and emits one instructed generation prompt. Passage and character caps
// bound prompt size.
func (s *synthesizer) buildPrompt(question string, chunks []Chunk, quality ContextQuality, analysis *QueryAnalysis) string {
	type group struct {
		title  string
		chunks []Chunk
	}
	var groups []group
	index := make(map[string]int)
	for _, chunk := range chunks {
		title := chunk.ArticleTitle
		if title == "" {
			title = "Unknown Document"
		}
		i, ok := index[title]
		if !ok {
			i = len(groups)
			index[title] = i
			groups = append(groups, group{title: title})
		}
		groups[i].chunks = append(groups[i].chunks, chunk)
	}

	var contextBlock strings.Builder
	included := 0
	for _, g := range groups {
		if included >= s.maxPassages {
			break
		}
		sort.SliceStable(g.chunks, func(i, j int) bool {
			return g.chunks[i].Similarity > g.chunks[j].Similarity
		})
		kept := g.chunks
		if len(kept) > s.maxChunksPerArticle {
			kept = kept[:s.maxChunksPerArticle]
		}
		fmt.Fprintf(&contextBlock, "\n## %s\n", g.title)
		for _, chunk := range kept {
			if included >= s.maxPassages {
				break
			}
			content := strings.TrimSpace(chunk.Content)
			if runes := []rune(content); len(runes) > s.maxPassageChars {
				content = string(runes[:s.maxPassageChars]) + "..."
			}
			fmt.Fprintf(&contextBlock, "[Relevance: %.2f] %s\n", chunk.Similarity, content)
			included++
		}
	}

	topic := TopicGeneral
	intent := IntentInformational
	if analysis != nil {
		if analysis.PrimaryTopic != "" {
			topic = analysis.PrimaryTopic
		}
		if analysis.Intent != "" {
			intent = analysis.Intent
		}
	}

	return fmt.Sprintf(`You are an expert HR assistant with access to company policies and procedures.
Your role is to provide accurate, helpful, and professional responses to HR-related questions.

QUESTION ANALYSIS:
- Detected Topic: %s
- Question Intent: %s

CONTEXT QUALITY:
- Confidence: %.2f (%s)
- Information Coverage: %s
- Sources Available: %d different documents

RELEVANT CONTEXT FROM COMPANY DOCUMENTS:
%s

USER QUESTION: %s

RESPONSE GUIDELINES:
1. Base your answer primarily on the provided context
2. Always cite which document(s) your information comes from
3. Use a warm, conversational, professional tone
4. If the context only partially covers the question, say so clearly
5. Provide actionable advice when possible
6. End by offering to help with anything further

RESPONSE:`,
		topic, intent,
		quality.Confidence, quality.Recommendation,
		quality.Coverage,
		quality.SourceDiversity,
		contextBlock.String(),
		question,
	)
}

// generate runs the model with temperature tied to context strength: strong
// context favours determinism, weak context favours hedged phrasing. A model
// failure yields a fixed apology rather than an error.
func (s *synthesizer) generate(ctx context.Context, prompt string, quality ContextQuality) string {
	var temperature float32
	switch {
	case quality.Confidence > 0.7:
		temperature = 0.4
	case quality.Confidence > 0.5:
		temperature = 0.6
	default:
		temperature = 0.7
	}

	resp, err := s.llm.Generate(ctx, &llm.Request{
		Messages:    llm.Prompt(prompt),
		Temperature: temperature,
		MaxTokens:   1000,
		TopP:        0.95,
		TopK:        40,
	})
	if err != nil {
		s.logger.Error("answer generation failed", "error", err)
		return generationApology
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return generationApology
	}
	return ensureComplete(text)
}

// ensureComplete appends a continuation offer when the model stopped
// mid-sentence instead of truncating silently.
func ensureComplete(text string) string {
	trimmed := strings.TrimRight(text, " \n\t")
	if strings.HasSuffix(trimmed, ".") || strings.HasSuffix(trimmed, "!") || strings.HasSuffix(trimmed, "?") {
		return trimmed
	}
	return trimmed + "... Let me know if you'd like me to elaborate on any part of this."
}

// enhance rewrites a low-confidence answer with empathetic framing while
// preserving its factual content. On failure the original answer is returned
// unchanged.
func (s *synthesizer) enhance(ctx context.Context, question, answer string) string {
	prompt := fmt.Sprintf(`Rewrite the following HR assistant answer so it acknowledges uncertainty with an
empathetic, supportive tone. Keep every factual statement and citation intact. Do not
add new facts.

ORIGINAL QUESTION: %s

ANSWER TO REWRITE:
%s

REWRITTEN ANSWER:`, question, answer)

	resp, err := s.llm.Generate(ctx, &llm.Request{
		Messages:    llm.Prompt(prompt),
		Temperature: 0.5,
		MaxTokens:   1000,
	})
	if err != nil {
		s.logger.Warn("low-confidence enhancement failed, keeping original answer", "error", err)
		return answer
	}
	enhanced := strings.TrimSpace(resp.Text())
	if enhanced == "" {
		return answer
	}
	return enhanced
}

// noResultsFallback produces a conversational reply when retrieval found
// nothing, with a deterministic template behind the model call.
func (s *synthesizer) noResultsFallback(ctx context.Context, question string) string {
	templated := fmt.Sprintf(
		"I looked through the HR knowledge base but couldn't find anything that specifically answers %q. "+
			"You could try rephrasing the question with different wording, or reach out to %s for a definitive answer.",
		question, s.fallbackContact,
	)

	if s.llm == nil {
		return templated
	}
	prompt := fmt.Sprintf(`You are a friendly HR assistant. The knowledge base search found no documents
matching the employee's question. Write a short, warm reply that acknowledges the
question, explains that no specific match was found, and suggests rephrasing or
contacting %s. Do not invent policy details.

QUESTION: %s

REPLY:`, s.fallbackContact, question)

	resp, err := s.llm.Generate(ctx, &llm.Request{
		Messages:    llm.Prompt(prompt),
		Temperature: 0.7,
		MaxTokens:   300,
	})
	if err != nil {
		s.logger.Warn("fallback generation failed, using template", "error", err)
		return templated
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return templated
	}
	return text
}
